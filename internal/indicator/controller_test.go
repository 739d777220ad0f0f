package indicator

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shini4i/nettraffic/internal/config"
	"github.com/shini4i/nettraffic/internal/traffic"
)

const waitFor = 2 * time.Second

type fakeSource struct {
	mu    sync.Mutex
	rx    uint64
	tx    uint64
	err   error
	calls int
}

func (f *fakeSource) Totals() (uint64, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.rx, f.tx, f.err
}

func (f *fakeSource) set(rx, tx uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rx = rx
	f.tx = tx
}

func (f *fakeSource) add(rx, tx uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rx += rx
	f.tx += tx
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordedText struct {
	value, unit string
}

type recordingSink struct {
	mu         sync.Mutex
	texts      []recordedText
	icons      []Mode
	tints      []Tint
	visibility []bool
}

func (s *recordingSink) SetText(value, unit string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, recordedText{value, unit})
}

func (s *recordingSink) SetIcon(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.icons = append(s.icons, mode)
}

func (s *recordingSink) SetTint(tint Tint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tints = append(s.tints, tint)
}

func (s *recordingSink) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visibility = append(s.visibility, visible)
}

func (s *recordingSink) lastText() (recordedText, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.texts) == 0 {
		return recordedText{}, false
	}
	return s.texts[len(s.texts)-1], true
}

func (s *recordingSink) lastIcon() (Mode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.icons) == 0 {
		return ModeIdle, false
	}
	return s.icons[len(s.icons)-1], true
}

func (s *recordingSink) textCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.texts)
}

func (s *recordingSink) iconCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.icons)
}

func (s *recordingSink) tintValues() []Tint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Tint(nil), s.tints...)
}

func (s *recordingSink) visibilityEdges() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.visibility...)
}

func newTestController(t *testing.T) (*Controller, *fakeSource, *recordingSink, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	source := &fakeSource{}
	sink := &recordingSink{}
	ctrl := New(Options{
		Source:         source,
		Sink:           sink,
		SampleInterval: 2 * time.Second,
		Clock:          mock,
	})
	t.Cleanup(ctrl.Detach)
	return ctrl, source, sink, mock
}

// enable attaches the controller and flips the enabled flag, which
// performs a synchronous render pass.
func enable(ctrl *Controller) {
	ctrl.Attach()
	ctrl.HandleConfigChange(config.KeyEnabled, "1")
}

// tick advances the mock clock by one sample interval and waits until
// the tick goroutine has read the counters.
func tick(t *testing.T, mock *clock.Mock, source *fakeSource) {
	t.Helper()
	before := source.callCount()
	mock.Add(2 * time.Second)
	require.Eventually(t, func() bool {
		return source.callCount() > before
	}, waitFor, 5*time.Millisecond)
}

func TestController_EnableRendersImmediately(t *testing.T) {
	ctrl, _, sink, _ := newTestController(t)

	enable(ctrl)

	text, ok := sink.lastText()
	require.True(t, ok)
	assert.Equal(t, recordedText{"0", "KB/s"}, text)
	assert.Equal(t, []bool{true}, sink.visibilityEdges())
	assert.Equal(t, []Tint{DefaultTint}, sink.tintValues())

	icon, ok := sink.lastIcon()
	require.True(t, ok)
	assert.Equal(t, ModeIdle, icon)
}

func TestController_AttachIsIdempotent(t *testing.T) {
	ctrl, _, sink, _ := newTestController(t)

	ctrl.Attach()
	ctrl.Attach()

	// Disabled by default, so the render pass emits nothing.
	assert.Zero(t, sink.textCount())
	assert.Empty(t, sink.visibilityEdges())
}

func TestController_EndToEnd_DownstreamTraffic(t *testing.T) {
	ctrl, source, sink, mock := newTestController(t)
	source.set(10_000, 10_000)

	enable(ctrl)

	// First tick only establishes the counter baseline.
	tick(t, mock, source)
	text, _ := sink.lastText()
	assert.Equal(t, recordedText{"0", "KB/s"}, text)

	// 2,000,000 rx bytes over 2s is 1 MB/s downstream.
	source.add(2_000_000, 0)
	tick(t, mock, source)

	require.Eventually(t, func() bool {
		text, ok := sink.lastText()
		return ok && text == recordedText{"1", "MB/s"}
	}, waitFor, 5*time.Millisecond)

	icon, ok := sink.lastIcon()
	require.True(t, ok)
	assert.Equal(t, ModeDownload, icon)
	assert.Equal(t, []bool{true}, sink.visibilityEdges())
}

func TestController_RepeatedRatesEmitOnce(t *testing.T) {
	ctrl, source, sink, mock := newTestController(t)

	enable(ctrl)
	tick(t, mock, source) // baseline

	source.add(2_000_000, 0)
	tick(t, mock, source)
	require.Eventually(t, func() bool {
		text, ok := sink.lastText()
		return ok && text == recordedText{"1", "MB/s"}
	}, waitFor, 5*time.Millisecond)

	texts := sink.textCount()
	icons := sink.iconCount()

	// Identical delta on the next tick: same text, same mode, so no
	// further render commands are issued.
	source.add(2_000_000, 0)
	tick(t, mock, source)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, texts, sink.textCount())
	assert.Equal(t, icons, sink.iconCount())
}

func TestController_BitsMode(t *testing.T) {
	ctrl, source, sink, mock := newTestController(t)

	ctrl.Attach()
	ctrl.HandleConfigChange(config.KeyUnitType, "1")
	ctrl.HandleConfigChange(config.KeyEnabled, "1")

	tick(t, mock, source) // baseline
	source.add(250_000, 0)
	tick(t, mock, source)

	// 125,000 B/s is one megabit per second.
	require.Eventually(t, func() bool {
		text, ok := sink.lastText()
		return ok && text == recordedText{"1", "Mb/s"}
	}, waitFor, 5*time.Millisecond)
}

func TestController_AutoHideRefreshIsDebounced(t *testing.T) {
	ctrl, _, sink, mock := newTestController(t)

	enable(ctrl)
	assert.Equal(t, []bool{true}, sink.visibilityEdges())

	// Turning auto-hide on changes nothing until the debounce window
	// elapses.
	ctrl.HandleConfigChange(config.KeyAutoHide, "1")
	assert.Equal(t, []bool{true}, sink.visibilityEdges())

	mock.Add(time.Second)
	require.Eventually(t, func() bool {
		edges := sink.visibilityEdges()
		return len(edges) == 2 && !edges[1]
	}, waitFor, 5*time.Millisecond)
}

func TestController_ConfigBurstCoalescesIntoOneRefresh(t *testing.T) {
	ctrl, _, sink, mock := newTestController(t)

	enable(ctrl)

	// Two changes 500ms apart restart the quiet window; nothing fires
	// at the original deadline.
	ctrl.HandleConfigChange(config.KeyAutoHide, "1")
	mock.Add(500 * time.Millisecond)
	ctrl.HandleConfigChange(config.KeyUnitType, "1")
	mock.Add(999 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []bool{true}, sink.visibilityEdges())

	mock.Add(time.Millisecond)
	require.Eventually(t, func() bool {
		edges := sink.visibilityEdges()
		return len(edges) == 2 && !edges[1]
	}, waitFor, 5*time.Millisecond)
}

func TestController_UnknownConfigKeyIgnored(t *testing.T) {
	ctrl, _, sink, mock := newTestController(t)

	ctrl.Attach()
	ctrl.HandleConfigChange("networktraffic.bogus", "1")

	mock.Add(5 * time.Second)
	time.Sleep(20 * time.Millisecond)

	assert.Zero(t, sink.textCount())
	assert.Empty(t, sink.visibilityEdges())
}

func TestController_ConnectivityEdges(t *testing.T) {
	ctrl, _, sink, _ := newTestController(t)

	enable(ctrl)
	assert.Equal(t, []bool{true}, sink.visibilityEdges())

	ctrl.HandleConnectivityChange(false)
	assert.Equal(t, []bool{true, false}, sink.visibilityEdges())

	// Repeating the same state emits nothing.
	ctrl.HandleConnectivityChange(false)
	assert.Equal(t, []bool{true, false}, sink.visibilityEdges())

	ctrl.HandleConnectivityChange(true)
	assert.Equal(t, []bool{true, false, true}, sink.visibilityEdges())
}

func TestController_LockScreenHides(t *testing.T) {
	ctrl, _, sink, _ := newTestController(t)

	enable(ctrl)

	ctrl.HandleLockStateChange(true)
	assert.Equal(t, []bool{true, false}, sink.visibilityEdges())

	ctrl.HandleLockStateChange(false)
	assert.Equal(t, []bool{true, false, true}, sink.visibilityEdges())
}

func TestController_TintDeferredWhileHidden(t *testing.T) {
	ctrl, _, sink, _ := newTestController(t)

	ctrl.Attach()

	// Indicator is disabled, hence hidden: the tint is buffered.
	ctrl.HandleTintChange(0xFF00FF00)
	assert.Empty(t, sink.tintValues())

	// It is flushed on the visibility-true transition.
	ctrl.HandleConfigChange(config.KeyEnabled, "1")
	assert.Equal(t, []Tint{0xFF00FF00}, sink.tintValues())
}

func TestController_TintAppliedWhileVisible(t *testing.T) {
	ctrl, _, sink, _ := newTestController(t)

	enable(ctrl)
	assert.Equal(t, []Tint{DefaultTint}, sink.tintValues())

	ctrl.HandleTintChange(0xFFCC0000)
	assert.Equal(t, []Tint{DefaultTint, 0xFFCC0000}, sink.tintValues())

	// Same tint again is suppressed.
	ctrl.HandleTintChange(0xFFCC0000)
	assert.Equal(t, []Tint{DefaultTint, 0xFFCC0000}, sink.tintValues())
}

func TestController_DetachStopsSampling(t *testing.T) {
	ctrl, source, sink, mock := newTestController(t)

	enable(ctrl)
	tick(t, mock, source)

	ctrl.Detach()
	ctrl.Detach() // idempotent

	calls := source.callCount()
	texts := sink.textCount()

	mock.Add(10 * time.Second)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, calls, source.callCount())
	assert.Equal(t, texts, sink.textCount())

	// Handlers are no-ops while detached.
	ctrl.HandleConfigChange(config.KeyEnabled, "1")
	ctrl.HandleConnectivityChange(false)
	assert.Equal(t, texts, sink.textCount())
}

func TestController_CounterReadFailureSkipsTick(t *testing.T) {
	ctrl, source, sink, mock := newTestController(t)
	source.err = traffic.ErrNoCounters

	enable(ctrl)
	text, _ := sink.lastText()
	assert.Equal(t, recordedText{"0", "KB/s"}, text)
	texts := sink.textCount()

	// Failing reads keep the display unchanged; sampling continues.
	tick(t, mock, source)
	tick(t, mock, source)
	assert.Equal(t, texts, sink.textCount())
}
