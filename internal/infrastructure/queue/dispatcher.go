package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/timeclerk/timesheet-engine/internal/api/metrics"
	"github.com/timeclerk/timesheet-engine/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes recalculation jobs to a fixed set of workers using
// consistent hashing on the user id, so at most one worker recalculates a
// given user's entries at a time.
type Dispatcher struct {
	workers []chan ports.RecalcInput
	service ports.RecalcService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.RecalcService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.RecalcInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.RecalcInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a recalculation job to the worker responsible for its user.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(job ports.RecalcInput) {
	idx := d.shardIndex(job.UserID)
	d.workers[idx] <- job
	metrics.RecalcQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.RecalcInput) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			start := time.Now()
			result := "ok"
			if err := d.service.Process(ctx, job); err != nil {
				result = "error"
				d.log.Error().Err(err).
					Str("user_id", job.UserID).
					Int("worker_id", id).
					Msg("recalculation failed")
			}
			metrics.RecalcDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
			metrics.RecalcQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
		}
	}
}
