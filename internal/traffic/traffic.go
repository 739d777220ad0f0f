// Package traffic reads system-wide network byte counters and converts
// consecutive readings into instantaneous transfer rates.
package traffic

import "time"

// DefaultSampleInterval is the default interval between counter samples.
const DefaultSampleInterval = 2 * time.Second

// Snapshot is a single reading of the cumulative byte counters.
type Snapshot struct {
	// RxTotal is the total bytes received since boot.
	RxTotal uint64
	// TxTotal is the total bytes transmitted since boot.
	TxTotal uint64

	// At is when the counters were read. The monotonic clock reading
	// carried by time.Time makes interval arithmetic immune to wall
	// clock adjustments.
	At time.Time
}

// Sample is an instantaneous transfer rate derived from two snapshots.
type Sample struct {
	// RxRate is the receive rate in bytes per second.
	RxRate uint64
	// TxRate is the transmit rate in bytes per second.
	TxRate uint64
}
