package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrNilCompleter is returned when NewProcessor is given no Completer.
var ErrNilCompleter = errors.New("completer cannot be nil")

// entry is the processor's private record for one queued item. The pointer
// identity of an entry distinguishes it from any later item reusing its ID.
type entry struct {
	item  Item
	timer *time.Timer
}

// command is a closure executed on the scheduling goroutine.
type command struct {
	fn   func()
	done chan struct{}
}

// settlement carries the outcome of one completion operation.
type settlement struct {
	entry  *entry
	result any
	err    error
}

// Processor drains a queue of items through a Completer with bounded
// concurrency, per-item retries and a global pause on rate limiting.
type Processor struct {
	completer Completer
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time

	// Owned by the scheduling goroutine.
	config  Config
	entries []*entry
	index   map[string]*entry
	active  int
	paused  bool
	busy    bool

	commands    chan command
	settlements chan settlement
	expired     chan *entry

	ctx      context.Context
	cancel   context.CancelFunc
	loopDone chan struct{}
	inflight sync.WaitGroup
	stopOnce sync.Once
}

// NewProcessor validates cfg and starts a processor. A nil notifier discards
// notifications and a nil logger falls back to slog.Default. The returned
// processor runs until Stop is called.
func NewProcessor(cfg Config, completer Completer, notifier Notifier, logger *slog.Logger) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if completer == nil {
		return nil, ErrNilCompleter
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Processor{
		completer:   completer,
		notifier:    notifier,
		logger:      logger.With("component", "queue_processor"),
		now:         time.Now,
		config:      cfg,
		index:       make(map[string]*entry),
		commands:    make(chan command),
		settlements: make(chan settlement),
		expired:     make(chan *entry),
		ctx:         ctx,
		cancel:      cancel,
		loopDone:    make(chan struct{}),
	}

	p.logger.Info("starting queue processor",
		"concurrency_limit", cfg.ConcurrencyLimit,
		"max_retries", cfg.MaxRetries,
		"backoff_base", cfg.BackoffBase.String())

	go p.run()
	return p, nil
}

// Stop cancels in-flight operations, stops all backoff timers and waits for
// the scheduling goroutine and every in-flight operation to return.
func (p *Processor) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("stopping queue processor")
		p.cancel()
		<-p.loopDone
		p.inflight.Wait()
		p.logger.Info("queue processor stopped")
	})
}

// Enqueue appends every item whose ID is not already queued and returns the
// number added.
func (p *Processor) Enqueue(items []NewItem) (int, error) {
	var added int
	err := p.exec(func() {
		now := p.now()
		for _, ni := range items {
			if ni.ID == "" {
				p.logger.Warn("skipping item without id")
				continue
			}
			if _, exists := p.index[ni.ID]; exists {
				continue
			}
			e := &entry{item: Item{
				ID:         ni.ID,
				Payload:    ni.Payload,
				Status:     StatusPending,
				EnqueuedAt: now,
				UpdatedAt:  now,
			}}
			p.entries = append(p.entries, e)
			p.index[ni.ID] = e
			added++
		}

		p.logger.Debug("items enqueued", "requested", len(items), "added", added)
		p.notify(SeverityInfo, fmt.Sprintf("%d item(s) added to queue", added))
		p.tryAdmit()
	})
	return added, err
}

// Pause stops admission. Items already processing run to completion.
func (p *Processor) Pause() error {
	return p.exec(func() {
		if !p.paused {
			p.logger.Info("queue paused")
		}
		p.paused = true
	})
}

// Resume clears the paused flag and admits pending items.
func (p *Processor) Resume() error {
	return p.exec(func() {
		if p.paused {
			p.logger.Info("queue resumed")
		}
		p.paused = false
		p.tryAdmit()
	})
}

// Remove deletes the item regardless of its status. The outcome of an
// in-flight operation for a removed item is discarded. Removing a processing
// item frees its slot in the count at once, but the next pending item is only
// admitted when the abandoned operation settles.
func (p *Processor) Remove(id string) (bool, error) {
	var removed bool
	err := p.exec(func() {
		e, ok := p.index[id]
		if !ok {
			return
		}
		if e.item.Status == StatusProcessing && p.active > 0 {
			p.active--
		}
		p.detach(e)
		for i, candidate := range p.entries {
			if candidate == e {
				p.entries = append(p.entries[:i], p.entries[i+1:]...)
				break
			}
		}
		removed = true
		p.logger.Debug("item removed", "item_id", id, "status", string(e.item.Status))
		p.checkDrained()
	})
	return removed, err
}

// RetryFailed moves every failed item back to pending with a fresh retry
// budget and returns the number requeued.
func (p *Processor) RetryFailed() (int, error) {
	var requeued int
	err := p.exec(func() {
		now := p.now()
		for _, e := range p.entries {
			if e.item.Status != StatusFailed {
				continue
			}
			e.item.Status = StatusPending
			e.item.RetryCount = 0
			e.item.Error = ""
			e.item.UpdatedAt = now
			requeued++
		}
		if requeued > 0 {
			p.notify(SeverityInfo, fmt.Sprintf("%d failed item(s) requeued", requeued))
		}
		p.tryAdmit()
	})
	return requeued, err
}

// ClearCompleted removes every completed item and returns the number removed.
func (p *Processor) ClearCompleted() (int, error) {
	var removed int
	err := p.exec(func() {
		kept := p.entries[:0]
		for _, e := range p.entries {
			if e.item.Status == StatusCompleted {
				delete(p.index, e.item.ID)
				removed++
				continue
			}
			kept = append(kept, e)
		}
		clearTail(p.entries, len(kept))
		p.entries = kept
	})
	return removed, err
}

// ClearAll removes every item and cancels every pending backoff.
func (p *Processor) ClearAll() error {
	return p.exec(func() {
		for _, e := range p.entries {
			p.detach(e)
		}
		p.entries = nil
		p.active = 0
		p.busy = false
		p.logger.Info("queue cleared")
	})
}

// SetConcurrencyLimit changes the admission limit. Lowering it never preempts
// in-flight work; raising it admits more items immediately.
func (p *Processor) SetConcurrencyLimit(n int) error {
	if n < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidConcurrency, n)
	}
	return p.exec(func() {
		p.logger.Info("concurrency limit changed", "from", p.config.ConcurrencyLimit, "to", n)
		p.config.ConcurrencyLimit = n
		p.tryAdmit()
	})
}

// Snapshot returns counts by status together with the scheduler state.
func (p *Processor) Snapshot() (Snapshot, error) {
	var s Snapshot
	err := p.exec(func() {
		for _, e := range p.entries {
			switch e.item.Status {
			case StatusPending:
				s.Pending++
			case StatusProcessing:
				s.Processing++
			case StatusRetrying:
				s.Retrying++
			case StatusCompleted:
				s.Completed++
			case StatusFailed:
				s.Failed++
			}
		}
		s.Total = len(p.entries)
		s.Active = p.active
		s.ConcurrencyLimit = p.config.ConcurrencyLimit
		s.Paused = p.paused
		s.HasPending = s.Pending+s.Processing+s.Retrying > 0
	})
	return s, err
}

// Items returns copies of all items in queue order.
func (p *Processor) Items() ([]Item, error) {
	var items []Item
	err := p.exec(func() {
		items = make([]Item, 0, len(p.entries))
		for _, e := range p.entries {
			items = append(items, e.item)
		}
	})
	return items, err
}

// Item returns a copy of the item with the given ID.
func (p *Processor) Item(id string) (Item, bool, error) {
	var (
		item Item
		ok   bool
	)
	err := p.exec(func() {
		var e *entry
		if e, ok = p.index[id]; ok {
			item = e.item
		}
	})
	return item, ok, err
}

// exec runs fn on the scheduling goroutine and waits for it to finish.
func (p *Processor) exec(fn func()) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case p.commands <- cmd:
	case <-p.loopDone:
		return ErrProcessorStopped
	}
	<-cmd.done
	return nil
}

// run is the scheduling goroutine.
func (p *Processor) run() {
	defer close(p.loopDone)
	for {
		select {
		case <-p.ctx.Done():
			for _, e := range p.entries {
				if e.timer != nil {
					e.timer.Stop()
				}
			}
			return
		case cmd := <-p.commands:
			cmd.fn()
			close(cmd.done)
		case s := <-p.settlements:
			p.settle(s)
		case e := <-p.expired:
			p.requeue(e)
		}
	}
}

// tryAdmit starts pending items in FIFO order until the concurrency limit is
// reached, the queue is paused or nothing is pending.
func (p *Processor) tryAdmit() {
	for !p.paused && p.active < p.config.ConcurrencyLimit {
		e := p.nextPending()
		if e == nil {
			break
		}
		e.item.Status = StatusProcessing
		e.item.UpdatedAt = p.now()
		p.active++
		p.busy = true
		p.dispatch(e)
	}
	p.checkDrained()
}

func (p *Processor) nextPending() *entry {
	for _, e := range p.entries {
		if e.item.Status == StatusPending {
			return e
		}
	}
	return nil
}

// dispatch runs the completion operation for e on its own goroutine.
func (p *Processor) dispatch(e *entry) {
	item := e.item
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		result, err := p.complete(item)
		select {
		case p.settlements <- settlement{entry: e, result: result, err: err}:
		case <-p.ctx.Done():
		}
	}()
}

// complete invokes the completer, converting a panic into a transient error.
func (p *Processor) complete(item Item) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("completer panicked", "item_id", item.ID, "panic", r)
			err = fmt.Errorf("completer panicked: %v", r)
		}
	}()
	return p.completer.Complete(p.ctx, item)
}

// settle applies the outcome of a completion operation.
func (p *Processor) settle(s settlement) {
	e := s.entry
	if p.index[e.item.ID] != e || e.item.Status != StatusProcessing {
		// The item was removed or cleared while in flight.
		p.logger.Debug("discarding outcome of detached item", "item_id", e.item.ID)
		p.tryAdmit()
		return
	}

	log := p.logger.With("item_id", e.item.ID)
	e.item.UpdatedAt = p.now()

	switch classify(s.err) {
	case outcomeSuccess:
		e.item.Status = StatusCompleted
		e.item.Result = s.result
		e.item.Error = ""
		log.Debug("item completed", "retry_count", e.item.RetryCount)

	case outcomeRateLimited:
		e.item.Status = StatusPending
		e.item.RetryCount = 0
		e.item.Error = ""
		p.active--
		p.paused = true
		log.Warn("rate limit reached, pausing queue", "error", s.err)
		p.notify(SeverityError,
			"AI service rate limit reached; the queue is paused. Resume later or lower the concurrency limit.")
		return

	case outcomePermanent:
		e.item.Status = StatusFailed
		e.item.Error = s.err.Error()
		log.Warn("item failed permanently", "error", s.err)
		p.notify(SeverityWarning, fmt.Sprintf("item %s failed: %s", e.item.ID, e.item.Error))

	case outcomeTransient:
		if e.item.RetryCount < p.config.MaxRetries {
			e.item.Status = StatusRetrying
			e.item.RetryCount++
			e.item.Error = s.err.Error()
			delay := p.config.backoff(e.item.RetryCount)
			log.Info("item failed, retry scheduled",
				"retry_count", e.item.RetryCount,
				"delay", delay.String(),
				"error", s.err)
			e.timer = time.AfterFunc(delay, func() {
				select {
				case p.expired <- e:
				case <-p.ctx.Done():
				}
			})
		} else {
			e.item.Status = StatusFailed
			e.item.Error = s.err.Error()
			log.Warn("item failed, retries exhausted",
				"retry_count", e.item.RetryCount,
				"error", s.err)
			p.notify(SeverityWarning, fmt.Sprintf("item %s failed after %d retries: %s",
				e.item.ID, e.item.RetryCount, e.item.Error))
		}
	}

	p.active--
	p.tryAdmit()
}

// requeue moves a retrying item back to pending once its backoff expires.
func (p *Processor) requeue(e *entry) {
	if p.index[e.item.ID] != e || e.item.Status != StatusRetrying {
		return
	}
	e.timer = nil
	e.item.Status = StatusPending
	e.item.Error = ""
	e.item.UpdatedAt = p.now()
	p.logger.Debug("backoff expired, item requeued", "item_id", e.item.ID, "retry_count", e.item.RetryCount)
	p.tryAdmit()
}

// detach unlinks e from the index and cancels its backoff timer.
func (p *Processor) detach(e *entry) {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if p.index[e.item.ID] == e {
		delete(p.index, e.item.ID)
	}
}

// checkDrained emits one notification when a busy period ends.
func (p *Processor) checkDrained() {
	if !p.busy || p.active > 0 {
		return
	}
	var completed, failed int
	for _, e := range p.entries {
		switch e.item.Status {
		case StatusPending, StatusProcessing, StatusRetrying:
			return
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		}
	}
	p.busy = false
	p.logger.Info("queue drained", "completed", completed, "failed", failed)
	p.notify(SeveritySuccess, fmt.Sprintf("batch drained: %d completed, %d failed", completed, failed))
}

func (p *Processor) notify(severity Severity, text string) {
	p.notifier.Notify(p.ctx, severity, text)
}

// clearTail nils out the entries past n so removed entries can be collected.
func clearTail(entries []*entry, n int) {
	for i := n; i < len(entries); i++ {
		entries[i] = nil
	}
}
