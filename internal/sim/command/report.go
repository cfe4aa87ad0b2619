package command

import (
	"strings"

	"github.com/braydio/custodian/internal/sim/world"
)

// Vague report lines used below FULL fidelity.
const (
	reportIrregularSignals   = "[EVENT] IRREGULAR SIGNALS DETECTED"
	reportMaintenanceSignals = "[EVENT] MAINTENANCE SIGNALS DETECTED"
	reportFabSignals         = "[EVENT] FABRICATION SIGNALS DETECTED"
	reportHostilesReported   = "[WARNING] HOSTILE ACTIVITY REPORTED"
	reportHostilesPossible   = "[ASSAULT] HOSTILE ACTIVITY POSSIBLE"
	reportStructuralStress   = "[WARNING] STRUCTURAL STRESS INDICATED"
	reportBreachUncertain    = "[WARNING] COMMAND CENTER INTEGRITY UNCERTAIN"
	reportSalvageRecovered   = "[SALVAGE] MATERIALS RECOVERED"
	reportBreachDegraded     = "[WARNING] COMMAND CENTER BREACH."
	interferenceLine         = "[EVENT] SIGNAL INTERFERENCE DETECTED"
	failurePrefix            = "[FAILURE] "
)

// tickReport renders the lines of the tick that just ran as the operator
// sees them at the current comms fidelity. FULL passes everything through;
// DEGRADED drops locations and numbers; FRAGMENTED collapses to signal
// classes; LOST keeps only first-hand field reports and failures.
func tickReport(s *world.GameState) []string {
	l := s.Lines
	fid := s.Fidelity
	switch fid {
	case world.FidelityFull:
		return l.All()
	case world.FidelityLost:
		out := append([]string(nil), l.Field...)
		return append(out, failureLines(l.Failure)...)
	}

	var out []string
	add := func(line string) {
		if line == "" {
			return
		}
		for _, seen := range out {
			if seen == line {
				return
			}
		}
		out = append(out, line)
	}
	for _, line := range l.Events {
		add(vagueEvent(line, fid))
	}
	for _, line := range l.Assault {
		add(vagueAssault(line, fid))
	}
	for _, line := range l.Repairs {
		if fid == world.FidelityDegraded {
			add(line)
		} else {
			add(reportMaintenanceSignals)
		}
	}
	for _, line := range l.Fabrication {
		if fid == world.FidelityDegraded {
			add(line)
		} else {
			add(reportFabSignals)
		}
	}
	out = append(out, l.Field...)
	out = append(out, l.Fidelity...)
	for _, line := range l.Failure {
		add(vagueFailure(line, fid))
	}
	return append(out, l.Faults...)
}

func failureLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if strings.HasPrefix(line, failurePrefix) {
			out = append(out, line)
		}
	}
	return out
}

// vagueEvent drops the affected sector and chain lines.
func vagueEvent(line, fid string) string {
	if strings.HasPrefix(line, "  -> ") {
		return ""
	}
	if fid != world.FidelityDegraded {
		return reportIrregularSignals
	}
	if i := strings.LastIndex(line, " IN "); i > 0 {
		return line[:i]
	}
	return line
}

func vagueAssault(line, fid string) string {
	structural := strings.HasPrefix(line, "[WARNING]") && !strings.HasPrefix(line, "[WARNING] HOSTILE MOVEMENT")
	if fid == world.FidelityFragmented {
		switch {
		case line == interferenceLine:
			return line
		case structural:
			return reportStructuralStress
		case strings.HasPrefix(line, "REPAIR ABORTED"):
			return reportMaintenanceSignals
		}
		return reportHostilesPossible
	}
	switch {
	case strings.HasPrefix(line, "[WARNING] HOSTILE MOVEMENT"):
		return reportHostilesReported
	case strings.HasPrefix(line, "[ASSAULT] HOSTILES ENGAGING"):
		return "[ASSAULT] HOSTILES ENGAGING."
	case strings.HasPrefix(line, "REPAIR ABORTED: "):
		if i := strings.Index(line, " ("); i > 0 {
			return line[:i]
		}
	case strings.HasPrefix(line, "[SALVAGE]"):
		return reportSalvageRecovered
	case strings.HasPrefix(line, "POLICY LOAD:"):
		return ""
	}
	return line
}

func vagueFailure(line, fid string) string {
	if !strings.HasPrefix(line, "[WARNING] COMMAND CENTER BREACH") {
		return line
	}
	if fid == world.FidelityDegraded {
		return reportBreachDegraded
	}
	return reportBreachUncertain
}
