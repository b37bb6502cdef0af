package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fplpicks/internal/adapters/mq/queue"
	"github.com/okian/fplpicks/internal/domain/dedupe"
	"github.com/okian/fplpicks/internal/domain/extract"
	"github.com/okian/fplpicks/internal/domain/model"
	"github.com/okian/fplpicks/pkg/logger"
	"github.com/okian/fplpicks/pkg/metrics"
)

// JobView is the read model of an extraction job.
type JobView struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"session_id"`
	Status     model.JobStatus `json:"status"`
	Images     int             `json:"images"`
	Rejected   []string        `json:"rejected"`
	Extraction *extract.Result `json:"extraction,omitempty"`
	Import     *ImportResult   `json:"import,omitempty"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type jobRecord struct {
	view   JobView
	key    string
	cancel context.CancelFunc
}

// StartExtraction validates the uploaded files and queues an extraction job
// for the accepted ones. An identical upload for the same session is refused
// while the first is still pending.
func (s *Service) StartExtraction(ctx context.Context, id string, files []extract.Image) (JobView, error) {
	if !s.isStarted() {
		return JobView{}, ErrNotStarted
	}
	if _, err := s.resolve(ctx, id); err != nil {
		return JobView{}, err
	}

	accepted, rejected := extract.ValidateImages(files)
	if len(accepted) == 0 {
		return JobView{Rejected: rejected}, fmt.Errorf("%w: %d file(s) rejected", ErrNoValidImages, len(rejected))
	}

	parts := make([][]byte, len(accepted))
	for i, img := range accepted {
		parts[i] = img.Data
	}
	key := dedupe.ContentKey(id, parts...)
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordJobDuplicate()
		return JobView{}, ErrDuplicateJob
	}

	now := s.now().UTC()
	job := model.Job{
		ID:         uuid.New().String(),
		SessionID:  id,
		Key:        key,
		Images:     accepted,
		EnqueuedAt: now,
	}
	rec := &jobRecord{
		key: key,
		view: JobView{
			ID:        job.ID,
			SessionID: id,
			Status:    model.JobPending,
			Images:    len(accepted),
			Rejected:  rejected,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	s.jobsMu.Lock()
	s.jobs[job.ID] = rec
	s.jobsMu.Unlock()

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		s.jobsMu.Lock()
		delete(s.jobs, job.ID)
		s.jobsMu.Unlock()
		s.deduper.Unrecord(ctx, key)
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
			return JobView{}, fmt.Errorf("%w: %w", ErrBusy, err)
		}
		return JobView{}, err
	}

	s.logger.Info(ctx, "extraction queued",
		logger.String("job_id", job.ID),
		logger.String("session_id", id),
		logger.Int("images", len(accepted)),
		logger.Int("rejected", len(rejected)),
	)
	return rec.view, nil
}

// Job returns the job view if it belongs to session id.
func (s *Service) Job(_ context.Context, id, jobID string) (JobView, error) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	rec, ok := s.jobs[jobID]
	if !ok || rec.view.SessionID != id {
		return JobView{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return rec.view, nil
}

// handle runs one job on a worker. Results for a job abandoned in the
// meantime are discarded.
func (s *Service) handle(ctx context.Context, job model.Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	defer s.deduper.Unrecord(ctx, job.Key)

	ctx = logger.ContextWith(ctx, logger.String("job_id", job.ID), logger.String("session_id", job.SessionID))
	jctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	s.jobsMu.Lock()
	rec, ok := s.jobs[job.ID]
	if !ok || rec.view.Status != model.JobPending {
		s.jobsMu.Unlock()
		return nil
	}
	rec.cancel = cancel
	rec.view.Status = model.JobRunning
	rec.view.UpdatedAt = s.now().UTC()
	s.jobsMu.Unlock()

	res, err := s.extractor.Extract(jctx, job.Images)
	if err != nil {
		if s.finish(job.ID, model.JobFailed, func(v *JobView) { v.Error = err.Error() }) {
			return err
		}
		return nil
	}

	sess, ok := s.lookup(job.SessionID)
	if !ok {
		s.finish(job.ID, model.JobAbandoned, nil)
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.deleted || s.status(job.ID) != model.JobRunning {
		s.finish(job.ID, model.JobAbandoned, nil)
		return nil
	}
	imported := s.importLocked(ctx, sess, res.Names, true)
	s.finish(job.ID, model.JobDone, func(v *JobView) {
		v.Extraction = &res
		v.Import = &imported
	})
	return nil
}

func (s *Service) status(jobID string) model.JobStatus {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if rec, ok := s.jobs[jobID]; ok {
		return rec.view.Status
	}
	return model.JobAbandoned
}

// finish moves a running job to a terminal status unless it already has one.
// It reports whether the transition happened.
func (s *Service) finish(jobID string, status model.JobStatus, update func(*JobView)) bool {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	rec, ok := s.jobs[jobID]
	if !ok || rec.view.Status.Terminal() {
		return false
	}
	rec.view.Status = status
	rec.view.UpdatedAt = s.now().UTC()
	rec.cancel = nil
	if update != nil {
		update(&rec.view)
	}
	metrics.RecordJobFinished(string(status))
	return true
}

// abandonJobs marks every unfinished job of a session abandoned and cancels
// the running ones.
func (s *Service) abandonJobs(sessionID string) int {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	n := 0
	now := s.now().UTC()
	for _, rec := range s.jobs {
		if rec.view.SessionID != sessionID || rec.view.Status.Terminal() {
			continue
		}
		if rec.cancel != nil {
			rec.cancel()
			rec.cancel = nil
		}
		rec.view.Status = model.JobAbandoned
		rec.view.UpdatedAt = now
		metrics.RecordJobFinished(string(model.JobAbandoned))
		n++
	}
	return n
}

// pruneJobs forgets finished jobs older than the retention window.
func (s *Service) pruneJobs() int {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	cutoff := s.now().Add(-s.jobRetention)
	n := 0
	for id, rec := range s.jobs {
		if rec.view.Status.Terminal() && rec.view.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			n++
		}
	}
	return n
}
