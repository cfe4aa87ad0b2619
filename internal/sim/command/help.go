package command

import (
	"strings"

	"github.com/braydio/custodian/internal/sim/world"
)

var helpTopics = map[string][]string{
	"CORE": {
		"HELP > CORE",
		"- STATUS  View current operational summary",
		"- WAIT [N|NX]  Advance 1-50 ticks",
		"- HELP [TOPIC]  Show command tree or topic details",
		"- RESET | REBOOT  Restart the session on the same seed",
	},
	"MOVEMENT": {
		"HELP > MOVEMENT",
		"- DEPLOY <TARGET>  Exit command center via transit",
		"- MOVE <TARGET>  Traverse connected sectors/routes",
		"- RETURN  Return to command center authority",
	},
	"SYSTEMS": {
		"HELP > SYSTEMS",
		"- FOCUS <SECTOR>  Prioritize protection for one sector",
		"- HARDEN  Shift to system-wide defensive posture",
		"- REPAIR <STRUCTURE> [LOCAL]  Queue a remote repair, or a manual one with LOCAL",
		"- REPAIR CANCEL <STRUCTURE>  Cancel a repair for a partial refund",
		"- SCAVENGE  Run one material recovery cycle",
	},
	"POLICY": {
		"HELP > POLICY",
		"- SET <REPAIR|DEFENSE|SURVEILLANCE> <0-4>  Set policy weight",
		"- SET FAB <DEFENSE|DRONES|REPAIRS|ARCHIVE> <0-4>  Set fabrication priority",
		"- FORTIFY <SECTOR> <0-4>  Set passive fortification level",
		"- CONFIG DOCTRINE <NAME>  Switch defense doctrine preset",
		"- ALLOCATE DEFENSE <SECTOR|GROUP> <PERCENT>  Bias defense routing",
	},
	"FABRICATION": {
		"HELP > FABRICATION",
		"- FAB ADD <ITEM>  Queue item production",
		"- FAB QUEUE  View active fabrication queue",
		"- FAB CANCEL <ITEM>  Cancel queued fabrication job",
		"- FAB PRIORITY <ITEM>  Move a job to the head of the queue",
	},
	"RELAYS": {
		"HELP > RELAYS",
		"- SCAN RELAYS  Scan relay network links from command",
		"- STABILIZE <RELAY>  Field stabilization task at the relay's location",
		"- SYNC  Convert stabilized relay packets to knowledge",
	},
}

var helpTopicNames = "CORE | MOVEMENT | SYSTEMS | POLICY | FABRICATION | RELAYS"

func handleHelp(_ *Processor, _ *world.GameState, args []string) Result {
	if len(args) == 0 {
		return ok(
			"COMMAND TREE",
			"USE: HELP <TOPIC>",
			"TOPICS: "+helpTopicNames,
			"VERBS: "+strings.Join(Verbs(), " "),
		)
	}
	if lines, found := helpTopics[args[0]]; found {
		return ok(lines...)
	}
	return fail("UNKNOWN HELP TOPIC.", "USE: HELP <TOPIC>", "TOPICS: "+helpTopicNames)
}
