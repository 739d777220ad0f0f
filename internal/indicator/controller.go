package indicator

import (
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/shini4i/nettraffic/internal/config"
	"github.com/shini4i/nettraffic/internal/format"
	"github.com/shini4i/nettraffic/internal/traffic"
)

// refreshDebounce is the quiet window after a burst of configuration
// changes before the display is re-evaluated.
const refreshDebounce = time.Second

// Options configures a Controller.
type Options struct {
	// Source provides the cumulative byte counters.
	Source traffic.CounterSource
	// Sink receives display updates.
	Sink RenderSink
	// SampleInterval is the period between counter samples.
	// Defaults to traffic.DefaultSampleInterval.
	SampleInterval time.Duration
	// Clock allows tests to drive the timers. Defaults to the real clock.
	Clock clock.Clock
}

// Controller coordinates the traffic indicator: it owns the sampling
// and refresh timers, runs each sample through mode resolution,
// formatting and the visibility policy, and emits render commands only
// for values that changed since the last emission.
//
// All handlers serialize on one mutex, which is the Go mapping of the
// original single event-thread model: handlers are reentrant-safe
// against each other but never re-entered concurrently.
type Controller struct {
	mu sync.Mutex

	clk     clock.Clock
	source  traffic.CounterSource
	sink    RenderSink
	sampler *traffic.Sampler
	log     *slog.Logger

	sampleInterval time.Duration

	attached bool
	enabled  bool
	autoHide bool
	unitMode format.UnitMode

	connectionAvailable bool
	lockScreenShowing   bool
	aboveThreshold      bool

	pendingTint Tint

	sampleTimer  *clock.Timer
	refreshTimer *clock.Timer

	last renderState
}

// New creates a detached controller.
func New(opts Options) *Controller {
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = traffic.DefaultSampleInterval
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	return &Controller{
		clk:            opts.Clock,
		source:         opts.Source,
		sink:           opts.Sink,
		sampler:        traffic.NewSampler(opts.SampleInterval),
		sampleInterval: opts.SampleInterval,
		log:            slog.Default(),
		// Assume connectivity until the first event says otherwise.
		connectionAvailable: true,
		pendingTint:         DefaultTint,
	}
}

// Attach activates the controller and requests one immediate render
// pass. Safe to call once per detach; a second call is a no-op.
func (c *Controller) Attach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attached {
		return
	}
	c.attached = true
	c.log = slog.With("component", "indicator", "session", uuid.NewString())
	c.log.Info("Indicator attached")
	c.refreshLocked()
}

// Detach cancels all pending timers and deactivates the controller.
// Subsequent ticks and handler calls are no-ops. Idempotent.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached {
		return
	}
	c.attached = false
	c.stopTimersLocked()
	c.sampler.Reset()
	c.log.Info("Indicator detached")
}

// HandleConfigChange applies a single changed configuration key.
// Unknown keys are ignored. Any change schedules a debounced refresh;
// the enabled flag flipping on additionally resets sampling state and
// refreshes immediately.
func (c *Controller) HandleConfigChange(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached {
		return
	}

	switch key {
	case config.KeyEnabled:
		wasEnabled := c.enabled
		c.enabled = config.ParseIntegerSwitch(value, false)
		c.log.Info("Indicator enabled flag changed", "enabled", c.enabled)
		if c.enabled && !wasEnabled {
			// Fresh start: discard the stale baseline and render now.
			// The immediate refresh supersedes any pending debounce.
			if c.refreshTimer != nil {
				c.refreshTimer.Stop()
				c.refreshTimer = nil
			}
			c.sampler.Reset()
			c.refreshLocked()
			return
		}
	case config.KeyAutoHide:
		c.autoHide = config.ParseIntegerSwitch(value, false)
	case config.KeyUnitType:
		if config.ParseInteger(value, config.UnitTypeBytes) == config.UnitTypeBits {
			c.unitMode = format.UnitBits
		} else {
			c.unitMode = format.UnitBytes
		}
	default:
		c.log.Debug("Ignoring unknown config key", "key", key)
		return
	}

	c.scheduleRefreshLocked()
}

// HandleConnectivityChange records whether a connection is available
// and re-evaluates visibility immediately, without resampling.
func (c *Controller) HandleConnectivityChange(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached {
		return
	}
	c.connectionAvailable = available
	c.updateVisibilityLocked()
}

// HandleTintChange stores the new tint. It is applied to the sink
// immediately when the indicator is visible; while hidden it is
// buffered and flushed on the next visibility-true transition.
func (c *Controller) HandleTintChange(tint Tint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pendingTint = tint
	c.flushTintLocked()
}

// HandleLockStateChange records whether the lock screen is showing and
// re-evaluates visibility immediately.
func (c *Controller) HandleLockStateChange(showing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached {
		return
	}
	c.lockScreenShowing = showing
	c.updateVisibilityLocked()
}

// onSampleTick runs one sampling period: read counters, derive rates,
// evaluate the display, and re-arm the timer.
func (c *Controller) onSampleTick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached {
		return
	}

	var sample traffic.Sample
	if rx, tx, err := c.source.Totals(); err != nil {
		// Each tick is independent; the next sample self-corrects.
		c.log.Debug("Counter read failed", "error", err)
	} else {
		snapshot := traffic.Snapshot{RxTotal: rx, TxTotal: tx, At: c.clk.Now()}
		if s, ok := c.sampler.Sample(snapshot); ok {
			sample = s
		}
	}

	c.evaluateLocked(sample)
	c.scheduleSampleLocked()
}

// onRefresh is the debounced refresh timer callback.
func (c *Controller) onRefresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached {
		return
	}
	c.refreshLocked()
}

// refreshLocked re-evaluates the display with zero rates (a refresh is
// not a resample) and restarts the periodic sampling chain.
func (c *Controller) refreshLocked() {
	c.evaluateLocked(traffic.Sample{})
	c.scheduleSampleLocked()
}

// evaluateLocked runs one sample through the full pipeline: mode
// resolution, formatting, visibility, and edge-triggered emission.
// The displayed mode and text always derive from the same sample.
func (c *Controller) evaluateLocked(sample traffic.Sample) {
	c.aboveThreshold = AboveThreshold(sample.RxRate, sample.TxRate)

	mode, shownRate := ResolveMode(sample.RxRate, sample.TxRate)
	if sample.RxRate == 0 && sample.TxRate == 0 {
		mode = ModeIdle
	}

	active := c.connectionAvailable && (!c.autoHide || c.aboveThreshold)
	if c.enabled && active {
		value, unit := format.Format(shownRate, c.unitMode)
		if value != c.last.value || unit != c.last.unit {
			c.last.value = value
			c.last.unit = unit
			c.sink.SetText(value, unit)
		}
	}

	c.updateVisibilityLocked()

	// Icon updates only while visible, and only on a mode edge.
	if c.last.visible && (!c.last.iconSet || c.last.icon != mode) {
		c.last.icon = mode
		c.last.iconSet = true
		c.sink.SetIcon(mode)
	}

	c.log.Debug("Evaluated sample",
		"rx", sample.RxRate, "tx", sample.TxRate,
		"mode", mode, "visible", c.last.visible)
}

// updateVisibilityLocked recomputes the visibility decision and emits
// a single visibility change on edges, flushing any buffered tint when
// the indicator becomes visible.
func (c *Controller) updateVisibilityLocked() {
	visible := DecideVisible(VisibilityInputs{
		Enabled:             c.enabled,
		ConnectionAvailable: c.connectionAvailable,
		AutoHide:            c.autoHide,
		AboveThreshold:      c.aboveThreshold,
		LockScreenShowing:   c.lockScreenShowing,
		HasText:             c.last.value != "",
	})
	if visible == c.last.visible {
		return
	}
	c.last.visible = visible
	c.sink.SetVisible(visible)
	c.flushTintLocked()
}

// flushTintLocked applies the pending tint once the indicator is
// visible and the tint differs from the last applied one.
func (c *Controller) flushTintLocked() {
	if !c.last.visible {
		return
	}
	if c.last.tintSet && c.last.tint == c.pendingTint {
		return
	}
	c.last.tint = c.pendingTint
	c.last.tintSet = true
	c.sink.SetTint(c.pendingTint)
}

// scheduleSampleLocked re-arms the periodic sample timer. Scheduling
// always cancels a pending timer of the same class first; the tick is
// a self-rescheduling one-shot, so delayed processing never piles up.
func (c *Controller) scheduleSampleLocked() {
	if c.sampleTimer != nil {
		c.sampleTimer.Stop()
		c.sampleTimer = nil
	}
	if !c.attached || !c.enabled {
		return
	}
	c.sampleTimer = c.clk.AfterFunc(c.sampleInterval, c.onSampleTick)
}

// scheduleRefreshLocked (re)starts the debounced refresh timer,
// coalescing a burst of configuration changes into one refresh.
func (c *Controller) scheduleRefreshLocked() {
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
	}
	c.refreshTimer = c.clk.AfterFunc(refreshDebounce, c.onRefresh)
}

func (c *Controller) stopTimersLocked() {
	if c.sampleTimer != nil {
		c.sampleTimer.Stop()
		c.sampleTimer = nil
	}
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
}
