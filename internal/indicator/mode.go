// Package indicator drives the status-bar network traffic indicator:
// it samples transfer rates on a timer, resolves the dominant traffic
// direction, formats the rate text, and pushes display updates to a
// render sink only when something actually changed.
package indicator

// Mode identifies which traffic direction dominates the current sample
// and therefore which icon variant to show.
type Mode int

const (
	// ModeIdle indicates no traffic in either direction.
	ModeIdle Mode = iota
	// ModeUpload indicates the transmit rate exceeds the receive rate.
	ModeUpload
	// ModeDownload indicates the receive rate exceeds the transmit rate.
	ModeDownload
	// ModeBoth indicates both directions carry the same nonzero rate.
	ModeBoth
)

// String returns a human-readable name for logging.
func (m Mode) String() string {
	switch m {
	case ModeUpload:
		return "upload"
	case ModeDownload:
		return "download"
	case ModeBoth:
		return "both"
	default:
		return "idle"
	}
}

// ResolveMode picks the display mode and the rate rendered next to it.
// Equal rates resolve to ModeBoth using the downstream value; callers
// fold the both-zero case into ModeIdle before rendering.
func ResolveMode(rxRate, txRate uint64) (Mode, uint64) {
	switch {
	case txRate > rxRate:
		return ModeUpload, txRate
	case txRate < rxRate:
		return ModeDownload, rxRate
	default:
		return ModeBoth, rxRate
	}
}
