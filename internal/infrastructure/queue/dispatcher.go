package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bookxchange/marketplace/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ObjectDeleter removes stored objects by key.
type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Dispatcher deletes stale image objects in the background. Keys are routed
// to a fixed set of workers by hashing, so repeated deletes of one key are
// handled in order by the same worker.
type Dispatcher struct {
	workers []chan string
	store   ObjectDeleter
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store ObjectDeleter, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker started by Start has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue schedules key for deletion. It never blocks: when the owning
// worker's buffer is full the key is dropped and the object is orphaned.
func (d *Dispatcher) Enqueue(key string) {
	if key == "" {
		return
	}
	idx := d.shardIndex(key)
	select {
	case d.workers[idx] <- key:
		metrics.ImageCleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.ImageCleanupTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("object_key", key).Int("worker_id", idx).Msg("image cleanup queue full, dropping key")
	}
}

// shardIndex maps an object key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	depth := metrics.ImageCleanupQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case key, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			if err := d.store.Delete(ctx, key); err != nil {
				metrics.ImageCleanupTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("object_key", key).
					Int("worker_id", id).
					Msg("image cleanup failed")
				continue
			}
			metrics.ImageCleanupTotal.WithLabelValues("deleted").Inc()
		}
	}
}
