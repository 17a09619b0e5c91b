package entrypoint

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/legalshelf/internal/config"
	"github.com/mrlokans/legalshelf/internal/scheduler"
	"github.com/mrlokans/legalshelf/internal/tasks"
)

type taskEnqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// maintenanceJobs returns the periodic jobs. With a task queue the jobs only
// enqueue, so retries and history come from backlite; without one they do the
// work inline.
func maintenanceJobs(cfg config.Scheduler, lib tasks.LibraryRefresher, cleaner tasks.OrphanNotesCleaner, queue taskEnqueuer) []scheduler.Job {
	var jobs []scheduler.Job

	if cfg.RefreshEnabled && cfg.RefreshSchedule != "" {
		jobs = append(jobs, scheduler.Job{
			Name:     tasks.QueueRefreshLibrary,
			Schedule: cfg.RefreshSchedule,
			Run: func(ctx context.Context) error {
				if queue != nil {
					_, err := queue.Enqueue(tasks.RefreshLibraryTask{})
					return err
				}
				_, err := lib.RefetchBooks(ctx)
				return err
			},
		})
	}

	if cfg.CleanupSchedule != "" {
		jobs = append(jobs, scheduler.Job{
			Name:     tasks.QueueCleanupOrphanNotes,
			Schedule: cfg.CleanupSchedule,
			Run: func(ctx context.Context) error {
				if queue != nil {
					_, err := queue.Enqueue(tasks.CleanupOrphanNotesTask{})
					return err
				}
				_, err := cleaner.DeleteOrphanNotes(ctx)
				return err
			},
		})
	}

	return jobs
}
