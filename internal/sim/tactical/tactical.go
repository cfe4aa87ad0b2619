// Package tactical resolves an engaged assault between spawned enemies and
// sector turrets. It knows nothing about the world model; the caller supplies
// sectors, a spawner and a per-tick callback.
package tactical

import "math"

type Enemy struct {
	Name   string
	Type   string
	HP     float64
	Morale float64
	Alive  bool
}

func NewEnemy(name, typ string, hp, morale float64) *Enemy {
	return &Enemy{Name: name, Type: typ, HP: hp, Morale: morale, Alive: true}
}

func (e *Enemy) TakeDamage(d float64) {
	e.HP -= d
	e.Morale -= d * 0.5
	if e.HP <= 0 {
		e.Alive = false
	}
}

// Turret fires at the first living enemy in its sector. Output scales damage
// and throttles the fire rate.
type Turret struct {
	Damage float64
	Output float64

	// IdleBelow and IdleCooldown describe the brown-out behaviour.
	IdleBelow    float64
	IdleCooldown int

	// Fire is called once per shot and returns the damage scale for it
	// (ammo accounting lives with the caller). Nil means 1.
	Fire func() float64

	cooldown int
	Shots    int
}

// Activate runs one tick of the turret at the given output multiplier.
func (t *Turret) Activate(enemies []*Enemy, mult float64) {
	if t.cooldown > 0 {
		t.cooldown--
		return
	}
	out := t.Output * mult
	if out < t.IdleBelow {
		t.cooldown = t.IdleCooldown
		return
	}
	for _, e := range enemies {
		if !e.Alive {
			continue
		}
		scale := 1.0
		if t.Fire != nil {
			scale = t.Fire()
		}
		e.TakeDamage(t.Damage * out * scale)
		t.Shots++
		t.cooldown = cooldownFor(out)
		return
	}
}

func cooldownFor(out float64) int {
	if out <= 0 {
		return 0
	}
	cd := int(math.Round(1/out - 1))
	if cd < 0 {
		return 0
	}
	return cd
}

type Sector struct {
	Name     string
	Enemies  []*Enemy
	Defenses []*Turret
}

func (s *Sector) HasHostiles() bool {
	for _, e := range s.Enemies {
		if e.Alive {
			return true
		}
	}
	return false
}

// Doctrine output multipliers applied by the autopilot.
var doctrineOutput = map[string]float64{
	"AGGRESSIVE":      1.2,
	"SENSOR_PRIORITY": 0.9,
}

// OutputMultiplier combines the doctrine factor with the clamped allocation bias.
func OutputMultiplier(doctrine string, bias float64) float64 {
	m := 1.0
	if v, ok := doctrineOutput[doctrine]; ok {
		m = v
	}
	return m * math.Max(0.75, math.Min(1.25, bias))
}

// RunAutopilot activates every turret in a sector that has hostiles.
func RunAutopilot(s *Sector, doctrine string, bias float64) {
	if !s.HasHostiles() {
		return
	}
	mult := OutputMultiplier(doctrine, bias)
	for _, d := range s.Defenses {
		d.Activate(s.Enemies, mult)
	}
}
