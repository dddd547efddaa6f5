package outbound

import "github.com/google/uuid"

// ProgressNotifier pushes import pipeline stage updates to whoever is
// watching a job. Publishing to an unwatched job is a no-op.
type ProgressNotifier interface {
	Publish(jobID uuid.UUID, stage string, detail string)
}
