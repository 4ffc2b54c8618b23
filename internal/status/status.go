package status

// State is the classified health of the automation backend.
type State string

const (
	StateOnline   State = "online"
	StateDegraded State = "degraded"
	StateOffline  State = "offline"
)

// Classify maps a health report (or a probe failure) to a state. A
// probe error of any kind reads as offline; a live backend without AI
// features is degraded.
func Classify(h *Health, err error) State {
	if err != nil || h == nil || !h.N8NLive {
		return StateOffline
	}
	if !h.AIFeaturesAvailable {
		return StateDegraded
	}
	return StateOnline
}

// Indicator is the presentation of one state: badge label, color and
// icon plus the tooltip line.
type Indicator struct {
	State   State  `json:"state"`
	Label   string `json:"label"`
	Color   string `json:"color"`
	Icon    string `json:"icon"`
	Tooltip string `json:"tooltip"`
}

// Describe renders a state as its dashboard indicator. details, when
// non-empty, becomes the tooltip.
func Describe(state State, details string) Indicator {
	ind := Indicator{State: state, Tooltip: details}
	switch state {
	case StateOnline:
		ind.Label = "AI Assistant Online"
		ind.Color = "green"
		ind.Icon = "fa-circle-check"
		if ind.Tooltip == "" {
			ind.Tooltip = "All systems operational"
		}
	case StateDegraded:
		ind.Label = "Limited Mode"
		ind.Color = "yellow"
		ind.Icon = "fa-triangle-exclamation"
		if ind.Tooltip == "" {
			ind.Tooltip = "Automation is up but AI features are unavailable"
		}
	default:
		ind.Label = "AI Assistant Offline"
		ind.Color = "red"
		ind.Icon = "fa-circle-xmark"
		if ind.Tooltip == "" {
			ind.Tooltip = "Automation backend is unreachable"
		}
	}
	return ind
}

// gaugeValue is the metrics encoding of a state.
func gaugeValue(state State) float64 {
	switch state {
	case StateOnline:
		return 2
	case StateDegraded:
		return 1
	default:
		return 0
	}
}
