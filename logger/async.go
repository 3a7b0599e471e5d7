package logger

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/turboprint/turboprint/core"
)

// OverflowPolicy decides the fate of a record that meets a full async
// queue.
type OverflowPolicy int

const (
	// DropNewest discards the incoming record.
	DropNewest OverflowPolicy = iota
	// DropOldest discards the oldest queued record to make room.
	DropOldest
	// Block waits for room up to the block timeout, then drops.
	Block
)

// String returns the policy name.
func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "DropNewest"
	case DropOldest:
		return "DropOldest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

// DefaultLevelPolicy maps levels to overflow policies: ERROR and
// above block for room, everything below is droppable.
func DefaultLevelPolicy() map[core.Level]OverflowPolicy {
	return map[core.Level]OverflowPolicy{
		core.DebugLevel:   DropNewest,
		core.InfoLevel:    DropNewest,
		core.SuccessLevel: DropNewest,
		core.NoticeLevel:  DropNewest,
		core.WarnLevel:    DropNewest,
		core.ErrorLevel:   Block,
		core.FatalLevel:   Block,
	}
}

// Stats tracks async queue counters. All methods are safe for
// concurrent use.
type Stats struct {
	dropped   sync.Map // core.Level -> *atomic.Uint64
	blocked   atomic.Uint64
	processed atomic.Uint64
}

// IncrementDropped counts one dropped record at the level.
func (s *Stats) IncrementDropped(level core.Level) {
	v, _ := s.dropped.LoadOrStore(level, new(atomic.Uint64))
	v.(*atomic.Uint64).Add(1)
}

// IncrementBlocked counts one blocked enqueue.
func (s *Stats) IncrementBlocked() { s.blocked.Add(1) }

// IncrementProcessed counts one drained record.
func (s *Stats) IncrementProcessed() { s.processed.Add(1) }

// Dropped returns the dropped count for the level.
func (s *Stats) Dropped(level core.Level) uint64 {
	if v, ok := s.dropped.Load(level); ok {
		return v.(*atomic.Uint64).Load()
	}
	return 0
}

// TotalDropped returns the dropped count across all levels.
func (s *Stats) TotalDropped() uint64 {
	var total uint64
	s.dropped.Range(func(_, v interface{}) bool {
		total += v.(*atomic.Uint64).Load()
		return true
	})
	return total
}

// Blocked returns the blocked enqueue count.
func (s *Stats) Blocked() uint64 { return s.blocked.Load() }

// Processed returns the drained record count.
func (s *Stats) Processed() uint64 { return s.processed.Load() }

// AsyncConfig configures a logger's async dispatch mode.
type AsyncConfig struct {
	// QueueSize bounds the in-flight queue (default 1024).
	QueueSize int
	// Policies overrides the per-level overflow policy (default:
	// DefaultLevelPolicy).
	Policies map[core.Level]OverflowPolicy
	// BlockTimeout bounds how long a Block policy waits for room
	// (default 100ms).
	BlockTimeout time.Duration
}

// asyncQueue is the bounded dispatch queue behind a logger in async
// mode. Admission stays on the caller; deliver runs on one worker so
// ordering per logger is preserved.
type asyncQueue struct {
	logger       *Logger
	queue        chan *core.Record
	policies     map[core.Level]OverflowPolicy
	blockTimeout time.Duration
	stats        *Stats

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// EnableAsync switches the logger to async dispatch. Records are
// admitted inline and delivered by a single background worker.
// Enabling twice is a configuration error; Close drains the queue.
func (l *Logger) EnableAsync(cfg AsyncConfig) (*Stats, error) {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.Policies == nil {
		cfg.Policies = DefaultLevelPolicy()
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 100 * time.Millisecond
	}

	q := &asyncQueue{
		logger:       l,
		queue:        make(chan *core.Record, cfg.QueueSize),
		policies:     cfg.Policies,
		blockTimeout: cfg.BlockTimeout,
		stats:        &Stats{},
	}

	l.mu.Lock()
	if l.async != nil {
		l.mu.Unlock()
		return nil, core.NewConfigurationError("logger %q is already async", l.name)
	}
	l.async = q
	l.mu.Unlock()

	q.wg.Add(1)
	go q.run()
	return q.stats, nil
}

func (q *asyncQueue) run() {
	defer q.wg.Done()
	for rec := range q.queue {
		q.logger.deliver(rec)
		q.stats.IncrementProcessed()
	}
}

// policyFor resolves the overflow policy for a level; unmapped levels
// block at ERROR and above and drop below.
func (q *asyncQueue) policyFor(level core.Level) OverflowPolicy {
	if p, ok := q.policies[level]; ok {
		return p
	}
	if level >= core.ErrorLevel {
		return Block
	}
	return DropNewest
}

// enqueue offers the record to the queue, applying the overflow
// policy when full. Reports whether the record was accepted.
func (q *asyncQueue) enqueue(rec *core.Record) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}

	select {
	case q.queue <- rec:
		return true
	default:
	}

	switch q.policyFor(rec.Level) {
	case DropOldest:
		select {
		case old := <-q.queue:
			q.stats.IncrementDropped(old.Level)
		default:
		}
		select {
		case q.queue <- rec:
			return true
		default:
			q.stats.IncrementDropped(rec.Level)
			return false
		}
	case Block:
		q.stats.IncrementBlocked()
		timer := time.NewTimer(q.blockTimeout)
		defer timer.Stop()
		select {
		case q.queue <- rec:
			return true
		case <-timer.C:
			q.stats.IncrementDropped(rec.Level)
			return false
		}
	default:
		q.stats.IncrementDropped(rec.Level)
		return false
	}
}

// close stops intake, drains the queue and waits for the worker.
func (q *asyncQueue) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.queue)
	q.wg.Wait()
}
