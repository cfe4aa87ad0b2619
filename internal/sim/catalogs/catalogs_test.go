package catalogs

import (
	"reflect"
	"testing"
)

func TestRoute_IngressToArchive(t *testing.T) {
	got := Default().Graph.Route(IngressNorth, Archive)
	want := []string{IngressNorth, TransitNorth, Archive}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("route=%v want=%v", got, want)
	}
}

func TestRoute_EverySectorReachableFromEveryIngress(t *testing.T) {
	c := Default()
	for _, in := range c.Graph.Ingress {
		for _, name := range c.Sectors.Names() {
			r := c.Graph.Route(in, name)
			if len(r) < 2 || r[0] != in || r[len(r)-1] != name {
				t.Fatalf("route %s->%s = %v", in, name, r)
			}
			for i := 1; i < len(r); i++ {
				if !contains(c.Graph.Neighbors(r[i-1]), r[i]) {
					t.Fatalf("route %v uses non-edge %s-%s", r, r[i-1], r[i])
				}
			}
		}
	}
	if c.Graph.Route("NOWHERE", Archive) != nil {
		t.Fatalf("unknown node should have no route")
	}
}

func TestStructures_OneCorePerSectorPlusTools(t *testing.T) {
	c := Default()
	if got, want := len(c.Structures.Defs), len(c.Sectors.Defs)+1; got != want {
		t.Fatalf("structures=%d want=%d", got, want)
	}
	fb := c.Structures.InSector(Fabrication)
	if !reflect.DeepEqual(fb, []string{DroneBay, FabTools}) {
		t.Fatalf("fabrication structures=%v", fb)
	}
	for _, d := range c.Structures.Defs {
		if d.MinPower != 0.4 || d.StandardPower != 1.0 {
			t.Fatalf("%s thresholds=%v/%v", d.ID, d.MinPower, d.StandardPower)
		}
	}
}

func TestSectors_ResolveAliases(t *testing.T) {
	c := Default()
	for _, tok := range []string{"defense grid", "DEFENSE_GRID", "df"} {
		d, ok := c.Sectors.Resolve(tok)
		if !ok || d.Name != DefenseGrid {
			t.Fatalf("resolve %q = %v,%v", tok, d.Name, ok)
		}
	}
	if _, ok := c.Sectors.Resolve("moon"); ok {
		t.Fatalf("unexpected resolve")
	}
}

func TestEvents_EligibilityFilters(t *testing.T) {
	c := Default()
	cut := c.Events.ByID[EventConduitCut]
	pw := c.Sectors.ByName[Power]
	if cut.Eligible(2.9, pw, 0.5, 0) {
		t.Fatalf("below min threat should be ineligible")
	}
	if cut.Eligible(3.5, pw, 1.0, 0) {
		t.Fatalf("power above max_power should be ineligible")
	}
	if !cut.Eligible(3.5, pw, 0.8, 0) {
		t.Fatalf("conduit cut should be eligible in POWER")
	}
	if cut.Eligible(3.5, c.Sectors.ByName[Archive], 0.8, 0) {
		t.Fatalf("tag mismatch should be ineligible")
	}
	fat := c.Events.ByID[EventStructuralFatigue]
	if fat.Eligible(3, c.Sectors.ByName[Storage], 1, 0.1) {
		t.Fatalf("min damage not enforced")
	}
}

func TestDigests_Stable(t *testing.T) {
	a := build()
	b := build()
	if !reflect.DeepEqual(a.Digests(), b.Digests()) {
		t.Fatalf("catalog digests not stable")
	}
	for name, d := range a.Digests() {
		if len(d) != 64 {
			t.Fatalf("%s digest=%q", name, d)
		}
		if len(a.JSON(name)) == 0 {
			t.Fatalf("%s json empty", name)
		}
	}
}

func TestRecipes_Resolve(t *testing.T) {
	c := Default()
	for _, tok := range []string{"turret_ammo", "TURRET AMMO", "turret ammunition"} {
		r, ok := c.Recipes.Resolve(tok)
		if !ok || r.ID != "TURRET_AMMO" {
			t.Fatalf("resolve %q = %v,%v", tok, r.ID, ok)
		}
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
