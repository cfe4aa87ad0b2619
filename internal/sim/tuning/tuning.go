package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds every numeric knob of the engine. Zero values in a loaded file
// fall back to Defaults().
type Tuning struct {
	Threat   Threat   `yaml:"threat"`
	Events   Events   `yaml:"events"`
	Assault  Assault  `yaml:"assault"`
	Failure  Failure  `yaml:"failure"`
	Start    Start    `yaml:"start"`
	Tactical Tactical `yaml:"tactical"`

	LedgerCap      int `yaml:"ledger_cap"`
	OperatorLogCap int `yaml:"operator_log_cap"`
	MaxWaitTicks   int `yaml:"max_wait_ticks"`
}

type Threat struct {
	Growth              float64 `yaml:"growth"`
	PowerDamageMult     float64 `yaml:"power_damage_mult"`
	AlertnessDecay      float64 `yaml:"alertness_decay"`
	AlertnessFromDamage float64 `yaml:"alertness_from_damage"`
	StorageDecayMult    float64 `yaml:"storage_decay_mult"`
	RecoveryGate        float64 `yaml:"recovery_gate"`
	RecoveryFloor       float64 `yaml:"recovery_floor"`
	RecoveryRate        float64 `yaml:"recovery_rate"`
}

type Events struct {
	ChanceBase      float64 `yaml:"chance_base"`
	ChancePerThreat float64 `yaml:"chance_per_threat"`
	ChanceMax       float64 `yaml:"chance_max"`
	ChainChance     float64 `yaml:"chain_chance"`
	HangarBonus     float64 `yaml:"hangar_bonus"`
	BrownoutBonus   float64 `yaml:"brownout_bonus_max"`
}

type Assault struct {
	SpawnThreshold     float64 `yaml:"spawn_threshold"`
	SpawnBase          float64 `yaml:"spawn_base"`
	SpawnPerThreat     float64 `yaml:"spawn_per_threat"`
	SpawnMax           float64 `yaml:"spawn_max"`
	MaxApproaches      int     `yaml:"max_approaches"`
	EdgeTravelTicks    int     `yaml:"edge_travel_ticks"`
	ThreatBudgetBase   int     `yaml:"threat_budget_base"`
	DamagePerTick      float64 `yaml:"damage_per_tick"`
	AlertnessPerTick   float64 `yaml:"alertness_per_tick"`
	ThreatPerTick      float64 `yaml:"threat_per_tick"`
	DefenseDamageMult  float64 `yaml:"defense_damage_mult"`
	FocusTargets       int     `yaml:"focus_targets"`
	AutonomyBonus      float64 `yaml:"autonomy_bonus"`
	RegressProtectBias float64 `yaml:"regress_protect_bias"`
}

type Failure struct {
	CommandBreachDamage  float64 `yaml:"command_breach_damage"`
	CommandRecoveryTicks int     `yaml:"command_recovery_ticks"`
	ArchiveLossLimit     int     `yaml:"archive_loss_limit"`
}

type Start struct {
	Materials    int `yaml:"materials"`
	TurretAmmo   int `yaml:"turret_ammo"`
	RepairDrones int `yaml:"repair_drones"`
}

type Tactical struct {
	TurretDamage   float64 `yaml:"turret_damage"`
	RetreatMorale  float64 `yaml:"retreat_morale"`
	IdleOutput     float64 `yaml:"idle_output"`
	IdleCooldown   int     `yaml:"idle_cooldown"`
	EmptyAmmoScale float64 `yaml:"empty_ammo_scale"`
}

func Defaults() Tuning {
	return Tuning{
		Threat: Threat{
			Growth:              0.015,
			PowerDamageMult:     1.2,
			AlertnessDecay:      0.01,
			AlertnessFromDamage: 0.01,
			StorageDecayMult:    0.5,
			RecoveryGate:        1.8,
			RecoveryFloor:       1.5,
			RecoveryRate:        0.03,
		},
		Events: Events{
			ChanceBase:      0.03,
			ChancePerThreat: 0.012,
			ChanceMax:       0.4,
			ChainChance:     0.5,
			HangarBonus:     0.05,
			BrownoutBonus:   0.12,
		},
		Assault: Assault{
			SpawnThreshold:     1.5,
			SpawnBase:          0.08,
			SpawnPerThreat:     0.06,
			SpawnMax:           0.65,
			MaxApproaches:      2,
			EdgeTravelTicks:    2,
			ThreatBudgetBase:   100,
			DamagePerTick:      0.2,
			AlertnessPerTick:   0.3,
			ThreatPerTick:      0.1,
			DefenseDamageMult:  1.25,
			FocusTargets:       3,
			AutonomyBonus:      0,
			RegressProtectBias: 1.2,
		},
		Failure: Failure{
			CommandBreachDamage:  2.0,
			CommandRecoveryTicks: 3,
			ArchiveLossLimit:     3,
		},
		Start: Start{
			Materials:    5,
			TurretAmmo:   6,
			RepairDrones: 1,
		},
		Tactical: Tactical{
			TurretDamage:   6,
			RetreatMorale:  12,
			IdleOutput:     0.2,
			IdleCooldown:   3,
			EmptyAmmoScale: 0.5,
		},
		LedgerCap:      2000,
		OperatorLogCap: 300,
		MaxWaitTicks:   50,
	}
}

// Load reads a tuning file. Keys missing from the file keep their defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	switch {
	case t.Assault.EdgeTravelTicks <= 0:
		return fmt.Errorf("assault.edge_travel_ticks must be > 0")
	case t.Assault.MaxApproaches <= 0:
		return fmt.Errorf("assault.max_approaches must be > 0")
	case t.Assault.FocusTargets <= 0:
		return fmt.Errorf("assault.focus_targets must be > 0")
	case t.Failure.CommandRecoveryTicks < 0:
		return fmt.Errorf("failure.command_recovery_ticks must be >= 0")
	case t.Failure.ArchiveLossLimit <= 0:
		return fmt.Errorf("failure.archive_loss_limit must be > 0")
	case t.LedgerCap <= 0 || t.OperatorLogCap <= 0:
		return fmt.Errorf("ledger_cap and operator_log_cap must be > 0")
	case t.Start.Materials < 0 || t.Start.TurretAmmo < 0 || t.Start.RepairDrones < 0:
		return fmt.Errorf("start resources must be >= 0")
	case t.Tactical.TurretDamage <= 0:
		return fmt.Errorf("tactical.turret_damage must be > 0")
	}
	return nil
}
