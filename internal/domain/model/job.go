// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/fplpicks/internal/domain/extract"
)

// JobStatus is the lifecycle state of an extraction job.
type JobStatus string

// Job statuses. Pending and running are the only non-terminal ones.
const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobDone      JobStatus = "done"
	JobFailed    JobStatus = "failed"
	JobAbandoned JobStatus = "abandoned"
)

// Terminal reports whether no further transition can happen.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobDone, JobFailed, JobAbandoned:
		return true
	default:
		return false
	}
}

// Job is a screenshot extraction request for one session.
type Job struct {
	ID         string          // unique job id
	SessionID  string          // owning session
	Key        string          // content key used for duplicate detection
	Images     []extract.Image // images in upload order
	EnqueuedAt time.Time
}
