package tactical

// Summary is the count ledger of one resolved engagement.
type Summary struct {
	Duration  int
	Spawned   int
	Killed    int
	Retreated int
	Remaining int
}

// Spawner places the enemies scheduled for a tick and returns how many it spawned.
type Spawner interface {
	SpawnAt(tick int, sectors map[string]*Sector) int
}

type Config struct {
	Duration int
	Doctrine string
	// Bias returns the allocation bias for a tactical sector.
	Bias func(sector string) float64
	// RetreatMorale is the morale at or below which a living enemy flees.
	RetreatMorale float64
	// OnTick runs after the sweep of every tick.
	OnTick func(sectors []*Sector, tick int)
}

func ShouldRetreat(e *Enemy, threshold float64) bool {
	return e.Alive && e.Morale <= threshold
}

// Resolve runs the engagement tick by tick: spawn, autopilot, sweep, callback.
func Resolve(sectors []*Sector, sp Spawner, cfg Config) Summary {
	sum := Summary{Duration: cfg.Duration}
	lookup := make(map[string]*Sector, len(sectors))
	for _, s := range sectors {
		lookup[s.Name] = s
	}

	for tick := 0; tick < cfg.Duration; tick++ {
		if sp != nil {
			sum.Spawned += sp.SpawnAt(tick, lookup)
		}
		for _, s := range sectors {
			bias := 1.0
			if cfg.Bias != nil {
				bias = cfg.Bias(s.Name)
			}
			RunAutopilot(s, cfg.Doctrine, bias)
		}
		for _, s := range sectors {
			kept := s.Enemies[:0]
			for _, e := range s.Enemies {
				switch {
				case !e.Alive:
					sum.Killed++
				case ShouldRetreat(e, cfg.RetreatMorale):
					sum.Retreated++
				default:
					kept = append(kept, e)
				}
			}
			for i := len(kept); i < len(s.Enemies); i++ {
				s.Enemies[i] = nil
			}
			s.Enemies = kept
		}
		if cfg.OnTick != nil {
			cfg.OnTick(sectors, tick)
		}
	}

	for _, s := range sectors {
		sum.Remaining += len(s.Enemies)
	}
	return sum
}
