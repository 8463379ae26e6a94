package utils

import (
	"context"
	"errors"
	"fmt"
	"lexorial/database"
	"lexorial/progression"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[PROGRESS-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// ReconcileProgress rolls over every learner whose current module now has
// fewer lessons than they finished. Rows changed concurrently are skipped and
// picked up by the next run.
func ReconcileProgress(ctx context.Context, db *gorm.DB, maxAttempts int) (int, error) {
	repo := database.NewProgressRepository(db)
	rows, err := repo.FindOverflowing(ctx)
	if err != nil {
		return 0, err
	}

	svc := progression.NewService(repo, maxAttempts)
	rolled := 0
	for _, row := range rows {
		out, err := svc.ReconcileSnapshot(ctx, row.UserID, row.Snapshot, row.TotalLessons)
		if errors.Is(err, progression.ErrConflict) {
			logScheduler(fmt.Sprintf("Skipped %s: progress changed concurrently", row.UserID))
			continue
		}
		if err != nil {
			return rolled, err
		}
		if out.Advanced {
			rolled++
			logScheduler(fmt.Sprintf("Learner %s rolled over %d/%d -> %d/%d",
				row.UserID, out.Previous.Level, out.Previous.LevelLesson, out.Progress.Level, out.Progress.LevelLesson))
		}
	}
	return rolled, nil
}

// InitializeProgressSchedulers starts the reconciliation job on the given
// cron spec
func InitializeProgressSchedulers(spec string, maxAttempts int) (*cron.Cron, error) {
	logScheduler("Initializing progress schedulers...")

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		n, err := ReconcileProgress(ctx, database.Database.Db, maxAttempts)
		if err != nil {
			logScheduler("Error reconciling progress: " + err.Error())
			return
		}
		if n > 0 {
			logScheduler(fmt.Sprintf("Reconciled %d learners", n))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_CRON %q: %w", spec, err)
	}

	c.Start()
	logScheduler("Progress reconciliation scheduled: " + spec)
	return c, nil
}
