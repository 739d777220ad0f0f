package traffic

import (
	"math"
	"time"
)

// driftTolerance accepts intervals down to 95% of the nominal period.
// Timers can fire marginally early; dividing a delta by a too-small
// interval would produce a rate spike.
const driftTolerance = 0.95

// Sampler turns consecutive counter snapshots into transfer rates.
// It retains only the most recent accepted snapshot as baseline.
// Sampler is not safe for concurrent use; the owning controller
// serializes access.
type Sampler struct {
	minInterval time.Duration
	baseline    *Snapshot
}

// NewSampler creates a sampler for the given nominal sample interval.
// If minInterval is 0, DefaultSampleInterval is used.
func NewSampler(minInterval time.Duration) *Sampler {
	if minInterval <= 0 {
		minInterval = DefaultSampleInterval
	}
	return &Sampler{minInterval: minInterval}
}

// Sample computes the transfer rates between the stored baseline and now.
// It returns ok=false when no rate can be produced:
//   - on the first call, now only establishes the baseline;
//   - when less than 95% of the nominal interval has elapsed, the
//     reading is discarded and the baseline is left unchanged.
//
// On success the baseline advances to now.
func (s *Sampler) Sample(now Snapshot) (Sample, bool) {
	if s.baseline == nil {
		s.baseline = &now
		return Sample{}, false
	}

	elapsed := now.At.Sub(s.baseline.At)
	if float64(elapsed) < float64(s.minInterval)*driftTolerance {
		return Sample{}, false
	}

	sample := Sample{
		RxRate: rate(s.baseline.RxTotal, now.RxTotal, elapsed),
		TxRate: rate(s.baseline.TxTotal, now.TxTotal, elapsed),
	}
	s.baseline = &now
	return sample, true
}

// Reset discards the stored baseline. The next Sample call only
// re-establishes it.
func (s *Sampler) Reset() {
	s.baseline = nil
}

// rate divides the counter delta by the elapsed time, rounding to the
// nearest byte per second. A counter that moved backwards (reset) is
// treated as a zero delta rather than wrapping around.
func rate(prev, cur uint64, elapsed time.Duration) uint64 {
	if cur < prev {
		return 0
	}
	return uint64(math.Round(float64(cur-prev) / elapsed.Seconds()))
}
