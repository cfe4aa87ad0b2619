package world

import (
	"strings"

	"github.com/braydio/custodian/internal/sim/catalogs"
)

// FactionProfile describes the hostile cell for a session. Only Ideology and
// Doctrine feed back into the engine (enemy composition).
type FactionProfile struct {
	Ideology       string `json:"ideology"`
	IdeologyShort  string `json:"ideology_short"`
	IdeologyGoal   string `json:"ideology_goal"`
	Form           string `json:"form"`
	FormShort      string `json:"form_short"`
	Tech           string `json:"tech_expression"`
	TechShort      string `json:"tech_short"`
	Doctrine       string `json:"doctrine"`
	DoctrineShort  string `json:"doctrine_short"`
	Signature      string `json:"signature"`
	SignatureShort string `json:"signature_short"`
	Aggression     string `json:"aggression"`
	Cohesion       string `json:"cohesion"`
	TargetPriority string `json:"target_priority"`
	TargetShort    string `json:"target_short"`
	Label          string `json:"label"`
}

func pickPhrase(rng Source, xs []catalogs.Phrase) catalogs.Phrase {
	if len(xs) == 0 {
		return catalogs.Phrase{}
	}
	return xs[rng.Intn(len(xs))]
}

func pickWeighted(rng Source, xs []catalogs.WeightedName) string {
	weights := make([]float64, len(xs))
	for i, x := range xs {
		weights[i] = float64(x.Weight)
	}
	if i := weightedIndex(rng, weights); i >= 0 {
		return xs[i].Name
	}
	return ""
}

// BuildFactionProfile draws a profile from the seeded source. The draw order
// is fixed so a seed always yields the same cell.
func BuildFactionProfile(rng Source, fc catalogs.FactionCatalog) FactionProfile {
	ideology := pickPhrase(rng, fc.Ideologies)
	form := pickPhrase(rng, fc.Forms)
	tech := pickPhrase(rng, fc.Tech)
	doctrine := pickPhrase(rng, fc.Doctrines)
	signature := pickPhrase(rng, fc.Signatures)
	aggression := pickWeighted(rng, fc.Aggression)
	cohesion := pickWeighted(rng, fc.Cohesion)
	target := pickPhrase(rng, fc.TargetPriorities)
	return FactionProfile{
		Ideology:       ideology.Full,
		IdeologyShort:  ideology.Short,
		IdeologyGoal:   fc.IdeologyGoals[ideology.Full],
		Form:           form.Full,
		FormShort:      form.Short,
		Tech:           tech.Full,
		TechShort:      tech.Short,
		Doctrine:       doctrine.Full,
		DoctrineShort:  doctrine.Short,
		Signature:      signature.Full,
		SignatureShort: signature.Short,
		Aggression:     aggression,
		Cohesion:       cohesion,
		TargetPriority: target.Full,
		TargetShort:    target.Short,
		Label:          ideology.Short + " " + form.Short + " cell",
	}
}

// PrimaryEnemyType follows the ideology: zealots for the devout, iconoclasts
// for iconoclasts, raiders otherwise.
func (f FactionProfile) PrimaryEnemyType() string {
	switch {
	case strings.Contains(f.Ideology, "Cult"),
		strings.Contains(f.Ideology, "Preservation"),
		strings.Contains(f.Ideology, "Continuity"):
		return catalogs.EnemyZealot
	case strings.Contains(f.Ideology, "Iconoclast"):
		return catalogs.EnemyIconoclast
	}
	return catalogs.EnemyRaider
}

func (f FactionProfile) SecondaryEnemyType(primary string) string {
	if strings.Contains(f.Doctrine, "sabotage") || strings.Contains(f.Doctrine, "stealth") {
		return catalogs.EnemyIconoclast
	}
	if primary != catalogs.EnemyRaider {
		return catalogs.EnemyRaider
	}
	return catalogs.EnemyZealot
}
