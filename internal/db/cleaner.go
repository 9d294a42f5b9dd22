package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartContactCleaner deletes old contact submissions with interval
func StartContactCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				res, err := db.ExecContext(ctx, `
                    DELETE FROM records
                     WHERE resource = 'contacts'
                       AND created_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to clean old contact submissions", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned old contact submissions", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
