// Package ui provides the system tray rendering surface for the
// traffic indicator.
package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fyne.io/systray"

	"github.com/shini4i/nettraffic/internal/indicator"
)

var (
	// ErrTrayAlreadyRunning is returned when attempting to modify callbacks after Run() has been called.
	ErrTrayAlreadyRunning = errors.New("cannot modify callbacks after Tray.Run() is called")
	// ErrTrayRunTwice is returned when Run() is called more than once.
	ErrTrayRunTwice = errors.New("Tray.Run() called twice")
	// ErrTrayMissingCallbacks is returned when Run() is called without the quit callback set.
	ErrTrayMissingCallbacks = errors.New("OnQuit must be set before calling Run()")
)

// Tray renders the traffic indicator in the system tray. It implements
// indicator.RenderSink: the controller pushes text, icon, tint and
// visibility; the tray projects them onto the systray item.
type Tray struct {
	mu sync.RWMutex

	// Last pushed render values
	value   string
	unit    string
	mode    indicator.Mode
	tint    indicator.Tint
	visible bool

	// Menu items
	menuRate *systray.MenuItem
	menuQuit *systray.MenuItem

	// Callback - must be set before Run() is called
	onQuit func()

	// Done channel to signal goroutine termination
	done chan struct{}

	// Lifecycle flags
	ready     bool
	running   bool
	closeOnce sync.Once
}

// Compile-time check that Tray satisfies the render sink contract.
var _ indicator.RenderSink = (*Tray)(nil)

// NewTray creates a new system tray renderer.
func NewTray() *Tray {
	return &Tray{
		tint: indicator.DefaultTint,
		done: make(chan struct{}),
	}
}

// OnQuit registers a callback for when Quit is clicked in the tray.
// Must be called before Run(). Returns ErrTrayAlreadyRunning if called after Run().
func (t *Tray) OnQuit(callback func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return ErrTrayAlreadyRunning
	}
	t.onQuit = callback
	return nil
}

// SetText updates the displayed rate value and unit label.
func (t *Tray) SetText(value, unit string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.value = value
	t.unit = unit
	t.renderLocked()
}

// SetIcon switches the arrow icon variant.
func (t *Tray) SetIcon(mode indicator.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = mode
	t.renderLocked()
}

// SetTint recolors the icon.
func (t *Tray) SetTint(tint indicator.Tint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tint = tint
	t.renderLocked()
}

// SetVisible shows or hides the indicator.
func (t *Tray) SetVisible(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = visible
	t.renderLocked()
}

// Run starts the system tray. It blocks until the tray is closed, so
// call it from the main goroutine. OnQuit must be registered before
// calling Run(). Returns ErrTrayRunTwice if called more than once.
func (t *Tray) Run() error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return ErrTrayRunTwice
	}
	if t.onQuit == nil {
		t.mu.Unlock()
		return ErrTrayMissingCallbacks
	}
	t.running = true
	t.mu.Unlock()

	systray.Run(t.onReady, t.onExit)
	return nil
}

// Quit closes the system tray and terminates the click handler
// goroutine. Safe to call multiple times.
func (t *Tray) Quit() {
	t.closeOnce.Do(func() {
		close(t.done)
		systray.Quit()
	})
}

// onReady is called when the tray is ready to be configured.
func (t *Tray) onReady() {
	systray.SetTitle("")
	systray.SetTooltip("Network traffic")
	systray.SetIcon(transparentIconPNG)

	t.mu.Lock()
	t.menuRate = systray.AddMenuItem("", "Current traffic rate")
	t.menuRate.Disable()
	t.menuRate.Hide()

	systray.AddSeparator()
	t.menuQuit = systray.AddMenuItem("Quit", "Quit the indicator")

	t.ready = true
	t.renderLocked()
	t.mu.Unlock()

	go t.handleMenuClicks()

	slog.Info("System tray initialized")
}

// onExit is called when the tray is being closed.
func (t *Tray) onExit() {
	slog.Info("System tray closed")
}

// handleMenuClicks processes menu item clicks.
func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.done:
			return
		case _, ok := <-t.menuQuit.ClickedCh:
			if !ok {
				return
			}
			if t.onQuit != nil {
				t.onQuit()
			}
		}
	}
}

// renderLocked projects the current render values onto the systray
// item. Callers must hold t.mu.
func (t *Tray) renderLocked() {
	if !t.ready {
		return
	}

	if !t.visible {
		systray.SetTitle("")
		systray.SetTooltip("Network traffic")
		systray.SetIcon(transparentIconPNG)
		if t.menuRate != nil {
			t.menuRate.Hide()
		}
		return
	}

	text := fmt.Sprintf("%s %s", t.value, t.unit)
	systray.SetTitle(text)
	systray.SetTooltip("Network traffic: " + text)
	systray.SetIcon(iconFor(t.mode, t.tint))
	if t.menuRate != nil {
		t.menuRate.SetTitle(text)
		t.menuRate.Show()
	}
}
