package traffic

import (
	"errors"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// ErrNoCounters is returned when the host reports no network counters.
var ErrNoCounters = errors.New("no network counters available")

// CounterSource returns cumulative total received/transmitted byte
// counts since boot. Implementations must be pure queries with no
// side effects.
type CounterSource interface {
	Totals() (rx, tx uint64, err error)
}

// SystemSource reads the host-wide aggregate counters across all
// network interfaces.
type SystemSource struct{}

// Totals returns the summed rx/tx byte counters for all interfaces.
func (SystemSource) Totals() (uint64, uint64, error) {
	counters, err := psnet.IOCounters(false)
	if err != nil {
		return 0, 0, err
	}
	if len(counters) == 0 {
		return 0, 0, ErrNoCounters
	}
	return counters[0].BytesRecv, counters[0].BytesSent, nil
}
