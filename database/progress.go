package database

import (
	"context"
	"encoding/json"
	"errors"
	"lexorial/models"
	"lexorial/progression"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository is the GORM backed progression.Store
type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// LoadProgress reads the learner's row. A missing row is not an error.
func (r *ProgressRepository) LoadProgress(ctx context.Context, userID uuid.UUID) (progression.Snapshot, error) {
	var row models.UserProgress
	err := r.db.WithContext(ctx).Where("user_id = ?", userID.String()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return progression.Snapshot{}, nil
	}
	if err != nil {
		return progression.Snapshot{}, err
	}
	return snapshotOf(row), nil
}

// SaveProgress writes next only if the row still has prev's version (or is
// still missing) and records a ProgressEvent in the same transaction.
func (r *ProgressRepository) SaveProgress(ctx context.Context, userID uuid.UUID, prev progression.Snapshot, next progression.Progress, meta progression.EventMeta) (bool, error) {
	payload, err := json.Marshal(meta.Details)
	if err != nil {
		return false, err
	}

	saved := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res *gorm.DB
		if prev.Exists {
			res = tx.Model(&models.UserProgress{}).
				Where("user_id = ? AND version = ?", userID.String(), prev.Version).
				Updates(map[string]interface{}{
					"level":        next.Level,
					"level_lesson": next.LevelLesson,
					"version":      gorm.Expr("version + 1"),
				})
		} else {
			res = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoNothing: true,
			}).Create(&models.UserProgress{
				UserID:      userID.String(),
				Level:       next.Level,
				LevelLesson: next.LevelLesson,
				Version:     1,
			})
		}
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		event := models.ProgressEvent{
			UserID:          userID.String(),
			LessonID:        meta.LessonID,
			Source:          meta.Source,
			FromLevel:       prev.Level,
			FromLevelLesson: prev.LevelLesson,
			ToLevel:         next.Level,
			ToLevelLesson:   next.LevelLesson,
			LeveledUp:       meta.LeveledUp,
			Payload:         datatypes.JSON(payload),
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		saved = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return saved, nil
}

// OverflowRow is a learner whose level_lesson reached the lesson count of the
// module at their level.
type OverflowRow struct {
	UserID       uuid.UUID
	Snapshot     progression.Snapshot
	TotalLessons int
}

// FindOverflowing lists progress rows that need a rollover because lessons
// were removed from the learner's current module.
func (r *ProgressRepository) FindOverflowing(ctx context.Context) ([]OverflowRow, error) {
	totals, err := LevelTotals(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var out []OverflowRow
	for level, total := range totals {
		if total <= 0 {
			continue
		}
		var rows []models.UserProgress
		if err := r.db.WithContext(ctx).
			Where("level = ? AND level_lesson >= ?", level, total).
			Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			id, err := uuid.Parse(row.UserID)
			if err != nil {
				continue
			}
			out = append(out, OverflowRow{UserID: id, Snapshot: snapshotOf(row), TotalLessons: total})
		}
	}
	return out, nil
}

func snapshotOf(row models.UserProgress) progression.Snapshot {
	return progression.Snapshot{
		Progress: progression.Progress{Level: row.Level, LevelLesson: row.LevelLesson},
		Version:  row.Version,
		Exists:   true,
	}
}
