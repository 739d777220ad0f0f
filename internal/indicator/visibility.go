package indicator

// AutoHideThreshold is the rate, in bytes per second, either direction
// must exceed for the indicator to stay visible while auto-hide is on.
const AutoHideThreshold = 10_000

// AboveThreshold reports whether either direction exceeds the
// auto-hide threshold.
func AboveThreshold(rxRate, txRate uint64) bool {
	return rxRate > AutoHideThreshold || txRate > AutoHideThreshold
}

// VisibilityInputs are the independent conditions that feed the
// visible/hidden decision.
type VisibilityInputs struct {
	Enabled             bool
	ConnectionAvailable bool
	AutoHide            bool
	AboveThreshold      bool
	LockScreenShowing   bool
	HasText             bool
}

// DecideVisible reduces the visibility conditions to a single boolean.
// The caller diffs the result against the previously emitted value and
// notifies the render sink only on edges.
func DecideVisible(in VisibilityInputs) bool {
	return in.Enabled &&
		!in.LockScreenShowing &&
		in.HasText &&
		(!in.AutoHide || in.AboveThreshold) &&
		in.ConnectionAvailable
}
