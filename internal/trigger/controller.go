// Package trigger turns hover events into debounced, cancellable price
// evaluations with at most one in flight.
package trigger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/price-check/internal/config"
	"github.com/sells-group/price-check/internal/model"
)

// Processor runs one evaluation.
type Processor interface {
	Process(ctx context.Context, itemID uint32, hq bool) (*model.PricedItem, bool)
}

// State is the player state consulted before starting an evaluation.
type State interface {
	HomeWorld() uint32
	InCombat() bool
	InRestrictedContent() bool
	KeybindPressed() bool
}

// Task is one scheduled evaluation.
type Task struct {
	ItemID uint32
	HQ     bool

	cancel  context.CancelFunc
	done    chan struct{}
	result  *model.PricedItem
	applied bool
}

// Done is closed once the task finished, was cancelled, or timed out.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task ends and reports its result. The bool is
// false when the evaluation was abandoned.
func (t *Task) Wait() (*model.PricedItem, bool) {
	<-t.done
	return t.result, t.applied
}

// Controller owns the single in-flight task and its cancellation.
type Controller struct {
	proc  Processor
	state State
	cfg   func() *config.Config
	delay func(*config.Config) time.Duration

	base     context.Context
	stopBase context.CancelFunc

	mu      sync.Mutex
	current *Task
	memo    *model.InterestEvent
	closed  bool
	wg      sync.WaitGroup
}

// NewController creates a Controller. cfg is read on every event.
func NewController(proc Processor, state State, cfg func() *config.Config) *Controller {
	base, stop := context.WithCancel(context.Background())
	return &Controller{
		proc:     proc,
		state:    state,
		cfg:      cfg,
		delay:    func(c *config.Config) time.Duration { return c.Pricing.HoverDelay() },
		base:     base,
		stopBase: stop,
	}
}

func (c *Controller) config() *config.Config {
	if cfg := c.cfg(); cfg != nil {
		return cfg
	}
	return &config.Config{}
}

// Interest handles a raw hover id. It always cancels the in-flight task
// first. Raw 0 only cancels. The started task, if any, is returned.
func (c *Controller) Interest(raw uint64) (task *Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	defer c.recoverLocked(&task)

	c.cancelLocked()
	if raw == 0 {
		return nil
	}

	ev := model.NormalizeInterest(raw)
	if ev.ItemID == 0 {
		zap.L().Debug("trigger: ignoring hover without an item", zap.Uint64("raw", raw))
		return nil
	}
	c.memo = nil
	cfg := c.config()

	if cfg.Keybind.Enabled && !c.state.KeybindPressed() {
		if cfg.Keybind.AllowAfterHover {
			c.memo = &ev
			zap.L().Debug("trigger: keybind not pressed, remembering item",
				zap.Uint32("item_id", ev.ItemID), zap.Bool("hq", ev.HQ))
		} else {
			zap.L().Debug("trigger: keybind not pressed", zap.Uint32("item_id", ev.ItemID))
		}
		return nil
	}
	return c.startLocked(cfg, ev)
}

// Tick fires a remembered item once the keybind is pressed. It is meant
// to be called on every refresh and does constant work.
func (c *Controller) Tick() (task *Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.memo == nil {
		return nil
	}
	defer c.recoverLocked(&task)

	cfg := c.config()
	if !cfg.Keybind.Enabled || !cfg.Keybind.AllowAfterHover || !c.state.KeybindPressed() {
		return nil
	}

	ev := *c.memo
	c.memo = nil
	if ev.ItemID == 0 {
		return nil
	}
	c.cancelLocked()
	return c.startLocked(cfg, ev)
}

// Current returns the most recently started task, possibly finished.
func (c *Controller) Current() *Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Pending reports whether an item is waiting for the keybind.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memo != nil
}

// Close cancels the in-flight task and waits for it. Later calls to
// Interest and Tick do nothing. Safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.memo = nil
	c.cancelLocked()
	c.stopBase()
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Controller) gate(cfg *config.Config) string {
	switch {
	case !cfg.Pricing.Enabled:
		return "disabled"
	case c.state.HomeWorld() == 0:
		return "no home world"
	case cfg.Filters.RestrictInCombat && c.state.InCombat():
		return "in combat"
	case cfg.Filters.RestrictInContent && c.state.InRestrictedContent():
		return "in restricted content"
	default:
		return ""
	}
}

func (c *Controller) startLocked(cfg *config.Config, ev model.InterestEvent) *Task {
	if reason := c.gate(cfg); reason != "" {
		zap.L().Debug("trigger: evaluation skipped", zap.String("reason", reason), zap.Uint32("item_id", ev.ItemID))
		return nil
	}

	ctx, cancel := context.WithTimeout(c.base, cfg.Market.RequestTimeout()*2)
	t := &Task{
		ItemID: ev.ItemID,
		HQ:     ev.HQ,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.current = t

	c.wg.Add(1)
	go c.run(ctx, t, c.delay(cfg))
	zap.L().Debug("trigger: evaluation scheduled", zap.Uint32("item_id", ev.ItemID), zap.Bool("hq", ev.HQ))
	return t
}

func (c *Controller) run(ctx context.Context, t *Task, delay time.Duration) {
	defer c.wg.Done()
	defer close(t.done)
	defer t.cancel()
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("trigger: evaluation panicked", zap.Any("panic", r), zap.Uint32("item_id", t.ItemID))
			c.reset(t)
		}
	}()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			zap.L().Debug("trigger: cancelled during hover delay", zap.Uint32("item_id", t.ItemID))
			return
		case <-timer.C:
		}
	}
	if ctx.Err() != nil {
		return
	}
	t.result, t.applied = c.proc.Process(ctx, t.ItemID, t.HQ)
}

func (c *Controller) cancelLocked() {
	if c.current != nil {
		c.current.cancel()
	}
}

// reset clears pending state after a failure in task t.
func (c *Controller) reset(t *Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == t {
		c.memo = nil
	}
}

func (c *Controller) recoverLocked(task **Task) {
	if r := recover(); r != nil {
		zap.L().Error("trigger: failed to schedule evaluation", zap.Any("panic", r))
		c.cancelLocked()
		c.memo = nil
		*task = nil
	}
}
