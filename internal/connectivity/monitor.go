// Package connectivity reports whether the host has a usable network
// connection.
package connectivity

import (
	"log/slog"
	"net"
	"sync"
	"time"
)

// DefaultPollInterval is the default interval between connectivity checks.
const DefaultPollInterval = 5 * time.Second

// Monitor polls the host's interfaces and reports availability changes.
// Notifications are edge-triggered: the callback fires once with the
// initial state and then only when the state flips.
type Monitor struct {
	pollInterval time.Duration

	// probe reports current availability. Replaceable in tests.
	probe func() bool

	mu        sync.Mutex
	onChange  func(available bool)
	available bool
	started   bool

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMonitor creates a connectivity monitor with the given poll
// interval. If pollInterval is 0, DefaultPollInterval is used.
func NewMonitor(pollInterval time.Duration) *Monitor {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Monitor{
		pollInterval: pollInterval,
		probe:        hasActiveInterface,
		stopChan:     make(chan struct{}),
	}
}

// OnChange registers a callback invoked on availability edges.
// The callback is called from the polling goroutine.
func (m *Monitor) OnChange(callback func(available bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = callback
}

// Start begins polling. The current state is reported immediately.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	go m.pollLoop()

	slog.Info("Connectivity monitor started", "interval", m.pollInterval)
}

// Stop stops the monitor. Safe to call multiple times.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

func (m *Monitor) pollLoop() {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	// Report the initial state right away.
	m.check(true)

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.check(false)
		}
	}
}

// check probes availability and emits the callback on edges, or
// unconditionally when initial is set.
func (m *Monitor) check(initial bool) {
	available := m.probe()

	m.mu.Lock()
	changed := initial || available != m.available
	m.available = available
	callback := m.onChange
	m.mu.Unlock()

	if changed {
		slog.Debug("Connectivity state", "available", available)
		if callback != nil {
			callback(available)
		}
	}
}

// hasActiveInterface returns true if any interface is up, not a
// loopback, and carries a global unicast address.
func hasActiveInterface() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			if ip != nil && ip.IsGlobalUnicast() {
				return true
			}
		}
	}

	return false
}
