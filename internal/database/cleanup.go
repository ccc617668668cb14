package database

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// PruneRuns keeps the newest keep runs of kind and deletes the older ones
// with their rows. keep <= 0 keeps everything.
func PruneRuns(db *gorm.DB, kind string, keep int, logger *pterm.Logger) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	result := db.Exec(`
		DELETE FROM analysis_runs
		WHERE kind = ? AND id NOT IN (
			SELECT id FROM analysis_runs
			WHERE kind = ?
			ORDER BY id DESC
			LIMIT ?
		)
	`, kind, kind, keep)
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		logger.Info("Pruned old analysis runs",
			logger.Args("kind", kind, "deleted", result.RowsAffected, "kept", keep))
	}
	return result.RowsAffected, nil
}

// Vacuum reclaims the space freed by pruning
func Vacuum(db *gorm.DB, logger *pterm.Logger) error {
	logger.Debug("Running VACUUM to reclaim disk space")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := db.WithContext(ctx).Exec("VACUUM").Error; err != nil {
		logger.WithCaller().Error("Failed to run VACUUM", logger.Args("error", err))
		return err
	}

	logger.Debug("VACUUM completed", logger.Args("duration", time.Since(startTime).Round(time.Millisecond)))
	return nil
}
