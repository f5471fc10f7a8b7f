package tasks

import (
	"context"
	"fmt"
)

// newMessageRetentionTask deletes logged messages older than the configured
// retention. A zero retention keeps everything.
func newMessageRetentionTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", MessageRetention)

	return func(ctx context.Context) error {
		retention := deps.Config.Database.Retention
		if retention <= 0 {
			log.DebugContext(ctx, "Message retention disabled")
			return nil
		}

		cutoff := deps.now().Add(-retention)
		deleted, err := deps.Store.DeleteMessagesBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("delete messages before %s: %w", cutoff.Format("2006-01-02T15:04:05Z07:00"), err)
		}

		log.InfoContext(ctx, "Pruned old messages", "deleted", deleted, "cutoff", cutoff)
		return nil
	}
}
