// Package policy maps operator slider levels (0..4) to engine multipliers.
package policy

const (
	MinLevel     = 0
	MaxLevel     = 4
	DefaultLevel = 2
)

type Table [MaxLevel + 1]float64

var (
	RepairSpeed        = Table{0.5, 0.75, 1.0, 1.4, 1.8}
	RepairMaterial     = Table{0.5, 0.75, 1.0, 1.5, 1.7}
	RepairPower        = Table{0.8, 0.9, 1.0, 1.2, 1.4}
	DefenseMult        = Table{0.6, 0.8, 1.0, 1.3, 1.6}
	DefensePower       = Table{0.7, 0.85, 1.0, 1.25, 1.5}
	WearRate           = Table{0.5, 0.75, 1.0, 1.3, 1.6}
	DetectionSpeed     = Table{0.6, 0.8, 1.0, 1.3, 1.6}
	FidelityBuffer     = Table{0.5, 0.75, 1.0, 1.2, 1.5}
	SurveillancePower  = Table{0.6, 0.8, 1.0, 1.3, 1.6}
	FortificationMult  = Table{1.0, 1.1, 1.25, 1.5, 1.8}
	FortificationPower = Table{0.0, 0.05, 0.1, 0.15, 0.25}
)

// At returns the multiplier for a level, clamping out-of-range levels.
func (t Table) At(level int) float64 {
	return t[ClampLevel(level)]
}

func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

func ValidLevel(level int) bool {
	return level >= MinLevel && level <= MaxLevel
}

// Fabrication allocation categories.
const (
	FabDefense = "DEFENSE"
	FabDrones  = "DRONES"
	FabRepairs = "REPAIRS"
	FabArchive = "ARCHIVE"
)

var FabCategories = []string{FabDefense, FabDrones, FabRepairs, FabArchive}

func IsFabCategory(name string) bool {
	for _, c := range FabCategories {
		if c == name {
			return true
		}
	}
	return false
}
