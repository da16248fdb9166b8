package ui

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops
	// secondary details.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth is the threshold above which the result list
	// gives more room to the field pane.
	LayoutExtraWideWidth = 160
)
