package database

import (
	"context"
	"fmt"
	"lexorial/models"
	"lexorial/progression"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Connect("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func levelPtr(v int) *int { return &v }

func seedModule(t *testing.T, db *gorm.DB, level *int, lessons int) models.Module {
	t.Helper()
	m := models.Module{Title: "Module", Level: level}
	require.NoError(t, db.Create(&m).Error)
	for i := 1; i <= lessons; i++ {
		require.NoError(t, db.Create(&models.Lesson{ModuleID: m.ID, Title: fmt.Sprintf("Lesson %d", i), OrderIndex: i}).Error)
	}
	return m
}

func TestLoadProgressMissingRow(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))

	snap, err := repo.LoadProgress(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, snap.Exists)
}

func TestSaveProgressInsertThenCompareAndSwap(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()
	user := uuid.New()

	ok, err := repo.SaveProgress(ctx, user, progression.Snapshot{Progress: progression.DefaultProgress()},
		progression.Progress{Level: 1, LevelLesson: 1},
		progression.EventMeta{Source: progression.SourceLearner, Details: map[string]string{"ip": "10.0.0.1"}})
	require.NoError(t, err)
	require.True(t, ok)

	snap, err := repo.LoadProgress(ctx, user)
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.Equal(t, int64(1), snap.Version)
	assert.Equal(t, 1, snap.LevelLesson)

	// a second insert for the same learner loses
	ok, err = repo.SaveProgress(ctx, user, progression.Snapshot{Progress: progression.DefaultProgress()},
		progression.Progress{Level: 1, LevelLesson: 1}, progression.EventMeta{})
	require.NoError(t, err)
	assert.False(t, ok)

	// stale version loses
	ok, err = repo.SaveProgress(ctx, user, progression.Snapshot{Progress: snap.Progress, Version: 0, Exists: true},
		progression.Progress{Level: 1, LevelLesson: 2}, progression.EventMeta{})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.SaveProgress(ctx, user, snap, progression.Progress{Level: 2, LevelLesson: 0},
		progression.EventMeta{Source: progression.SourceLearner, LeveledUp: true})
	require.NoError(t, err)
	assert.True(t, ok)

	snap, err = repo.LoadProgress(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, progression.Progress{Level: 2, LevelLesson: 0}, snap.Progress)
	assert.Equal(t, int64(2), snap.Version)

	var events []models.ProgressEvent
	require.NoError(t, db.Order("id asc").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].FromLevel)
	assert.Equal(t, 1, events[0].ToLevelLesson)
	assert.JSONEq(t, `{"ip":"10.0.0.1"}`, string(events[0].Payload))
	assert.True(t, events[1].LeveledUp)
}

func TestConcurrentAdvanceAgainstSQLite(t *testing.T) {
	db := newTestDB(t)
	svc := progression.NewService(NewProgressRepository(db), 50)
	user := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Advance(context.Background(), user, 3)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := svc.Current(context.Background(), user)
	require.NoError(t, err)
	// 8 completions with 3 lessons per module
	assert.Equal(t, progression.Progress{Level: 3, LevelLesson: 2}, p)

	var count int64
	require.NoError(t, db.Model(&models.ProgressEvent{}).Count(&count).Error)
	assert.Equal(t, int64(8), count)
}

func TestCurrentModuleUsesFallbackLevels(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedModule(t, db, levelPtr(1), 3)
	second := seedModule(t, db, nil, 2)

	m, total, err := CurrentModule(ctx, db, 2)
	require.NoError(t, err)
	assert.Equal(t, second.ID, m.ID)
	assert.Equal(t, 2, total)

	_, _, err = CurrentModule(ctx, db, 9)
	assert.ErrorIs(t, err, progression.ErrNotFound)

	level, err := ResolvedModuleLevel(ctx, db, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, level)
}

func TestFindOverflowing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedModule(t, db, levelPtr(1), 2)
	seedModule(t, db, levelPtr(2), 0)

	over := uuid.New()
	fine := uuid.New()
	empty := uuid.New()
	require.NoError(t, db.Create(&models.UserProgress{UserID: over.String(), Level: 1, LevelLesson: 3, Version: 4}).Error)
	require.NoError(t, db.Create(&models.UserProgress{UserID: fine.String(), Level: 1, LevelLesson: 1, Version: 1}).Error)
	require.NoError(t, db.Create(&models.UserProgress{UserID: empty.String(), Level: 2, LevelLesson: 0, Version: 1}).Error)

	repo := NewProgressRepository(db)
	rows, err := repo.FindOverflowing(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, over, rows[0].UserID)
	assert.Equal(t, 2, rows[0].TotalLessons)
	assert.Equal(t, int64(4), rows[0].Snapshot.Version)

	out, err := progression.NewService(repo, 1).ReconcileSnapshot(ctx, rows[0].UserID, rows[0].Snapshot, rows[0].TotalLessons)
	require.NoError(t, err)
	assert.Equal(t, progression.Progress{Level: 2, LevelLesson: 0}, out.Progress)
}
