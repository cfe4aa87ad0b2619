package world

// Penetration and intensity buckets.
const (
	PenetrationNone    = "none"
	PenetrationPartial = "partial"
	PenetrationSevere  = "severe"

	IntensityLow    = "low"
	IntensityMedium = "medium"
	IntensityHigh   = "high"
)

// AssaultOutcome classifies a resolved engagement.
type AssaultOutcome struct {
	ThreatBudget      int     `json:"threat_budget"`
	Duration          int     `json:"duration"`
	Spawned           int     `json:"spawned"`
	Killed            int     `json:"killed"`
	Retreated         int     `json:"retreated"`
	Remaining         int     `json:"remaining"`
	AttackerLossRatio float64 `json:"attacker_loss_ratio"`
	Intensity         string  `json:"intensity"`
	Penetration       string  `json:"penetration"`
}

func NewAssaultOutcome(threatBudget, duration, spawned, killed, retreated, remaining int) AssaultOutcome {
	o := AssaultOutcome{
		ThreatBudget: threatBudget,
		Duration:     duration,
		Spawned:      spawned,
		Killed:       killed,
		Retreated:    retreated,
		Remaining:    remaining,
	}
	if spawned > 0 {
		o.AttackerLossRatio = clamp(float64(killed+retreated)/float64(spawned), 0, 1)
	}
	switch {
	case threatBudget < 40:
		o.Intensity = IntensityLow
	case threatBudget < 80:
		o.Intensity = IntensityMedium
	default:
		o.Intensity = IntensityHigh
	}
	switch {
	case remaining == 0:
		o.Penetration = PenetrationNone
	case o.AttackerLossRatio >= 0.7:
		o.Penetration = PenetrationPartial
	default:
		o.Penetration = PenetrationSevere
	}
	return o
}
