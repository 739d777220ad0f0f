package indicator

// Tint is an ARGB color applied to the indicator's text and icon.
type Tint uint32

// DefaultTint is opaque white, the usual status-bar foreground.
const DefaultTint Tint = 0xFFFFFFFF

// RenderSink receives display updates from the controller. Each method
// is invoked only when its argument changed since the previous call.
// Implementations must not call back into the controller from within a
// sink method.
type RenderSink interface {
	// SetText updates the numeric value and unit label.
	SetText(value, unit string)
	// SetIcon switches the icon variant for the given display mode.
	SetIcon(mode Mode)
	// SetTint recolors the indicator.
	SetTint(tint Tint)
	// SetVisible shows or hides the indicator.
	SetVisible(visible bool)
}

// renderState is the last set of values pushed to the sink, retained
// solely to suppress redundant render calls.
type renderState struct {
	value   string
	unit    string
	icon    Mode
	iconSet bool
	tint    Tint
	tintSet bool
	visible bool
}
