package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/fplpicks/internal/adapters/mq/queue"
	"github.com/okian/fplpicks/internal/adapters/mq/worker"
	"github.com/okian/fplpicks/internal/domain/model"
	logging "github.com/okian/fplpicks/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logging.Init()
}

type mockQueue struct {
	jobs chan model.Job
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan model.Job, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan model.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.jobs) })
	return nil
}

type recordingHandler struct {
	mu     sync.Mutex
	seen   map[string]int
	errs   map[string]error
	panics map[string]bool
	delay  time.Duration
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{seen: map[string]int{}, errs: map[string]error{}, panics: map[string]bool{}}
}

func (h *recordingHandler) Handle(ctx context.Context, j model.Job) error { //nolint:gocritic // hugeParam
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen[j.ID]++
	if h.panics[j.ID] {
		panic("boom")
	}
	return h.errs[j.ID]
}

func (h *recordingHandler) count(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.seen[id]
}

func (h *recordingHandler) total() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.seen {
		n += c
	}
	return n
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		q := newMockQueue()
		h := newRecordingHandler()
		stats := &worker.Stats{}
		w := worker.NewInMemoryWorker(q, h, worker.WithName("test-worker"), worker.WithStats(stats))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a job arrives", func() {
			q.jobs <- model.Job{ID: "job-1", SessionID: "s1"}

			convey.Convey("Then the handler sees it once", func() {
				convey.So(waitFor(func() bool { return stats.Snapshot().Processed == 1 }), convey.ShouldBeTrue)
				convey.So(h.count("job-1"), convey.ShouldEqual, 1)
				convey.So(stats.Snapshot().Failed, convey.ShouldEqual, int64(0))
			})
		})

		convey.Convey("When the handler fails", func() {
			h.errs["job-2"] = errors.New("recognizer down")
			q.jobs <- model.Job{ID: "job-2"}

			convey.Convey("Then the failure is counted and the worker keeps going", func() {
				convey.So(waitFor(func() bool { return stats.Snapshot().Failed == 1 }), convey.ShouldBeTrue)
				q.jobs <- model.Job{ID: "job-3"}
				convey.So(waitFor(func() bool { return h.count("job-3") == 1 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the handler panics", func() {
			h.panics["job-4"] = true
			q.jobs <- model.Job{ID: "job-4"}
			q.jobs <- model.Job{ID: "job-5"}

			convey.Convey("Then the panic becomes a failure", func() {
				convey.So(waitFor(func() bool { return h.count("job-5") == 1 }), convey.ShouldBeTrue)
				convey.So(stats.Snapshot().Failed, convey.ShouldEqual, int64(1))
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a worker whose queue closes", t, func() {
		q := newMockQueue()
		w := worker.NewInMemoryWorker(q, newRecordingHandler())
		finished := make(chan struct{})
		go func() {
			w.Run(context.Background())
			close(finished)
		}()

		_ = q.Close()

		convey.So(waitFor(func() bool {
			select {
			case <-finished:
				return true
			default:
				return false
			}
		}), convey.ShouldBeTrue)
	})
}

func TestHandlerFunc(t *testing.T) {
	convey.Convey("Given a plain function", t, func() {
		called := ""
		h := worker.HandlerFunc(func(_ context.Context, j model.Job) error {
			called = j.ID
			return nil
		})

		convey.So(h.Handle(context.Background(), model.Job{ID: "x"}), convey.ShouldBeNil)
		convey.So(called, convey.ShouldEqual, "x")
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		h := newRecordingHandler()
		h.delay = time.Millisecond
		pool := worker.NewPool(4, q, h)
		convey.So(pool.Size(), convey.ShouldEqual, 4)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When many jobs are enqueued", func() {
			for i := 0; i < 40; i++ {
				convey.So(q.Enqueue(ctx, model.Job{ID: fmt.Sprintf("job-%d", i)}), convey.ShouldBeNil)
			}

			convey.Convey("Then shutdown drains every job exactly once", func() {
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
				convey.So(h.total(), convey.ShouldEqual, 40)
				for i := 0; i < 40; i++ {
					convey.So(h.count(fmt.Sprintf("job-%d", i)), convey.ShouldEqual, 1)
				}
				convey.So(pool.Stats().Processed, convey.ShouldEqual, int64(40))
				convey.So(pool.Stats().Active, convey.ShouldEqual, int64(0))
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool with the default worker count", t, func() {
		pool := worker.NewPool(0, newMockQueue(), newRecordingHandler())

		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)

		convey.Convey("Then shutting down before start returns at once", func() {
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
		})
	})
}
