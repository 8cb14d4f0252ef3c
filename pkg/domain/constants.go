package domain

// Edge colors.
const (
	ColorNeutral = "#A9ADC1"
	ColorTrue    = "#22C55E"
	ColorFalse   = "#EF4444"
)

// Edge presentation defaults.
const (
	EdgeTypeSmoothStep = "smoothstep"
	MarkerArrowClosed  = "arrowclosed"
	EdgeStrokeWidth    = 1.5
	MarkerSize         = 15
)

// CustomVariablePrefix namespaces every user-defined variable.
const CustomVariablePrefix = "variables."
