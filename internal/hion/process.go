package hion

// ProcessType tags the physical process family of an action. The zero value
// means "no process" and is never a valid committed process.
type ProcessType int

const (
	ProcessNone ProcessType = iota
	ProcessElastic
	ProcessTwoToOne
	ProcessTwoToTwo
	ProcessDecay
	ProcessWall
	ProcessStringSoft
	ProcessStringHard
	ProcessMultiThreePionsToOmega
)

// IDProcessForced is the reserved process id for externally forced
// processes. Conservation violations under this id are always fatal, since
// a forced process has no approximate-conservation excuse.
const IDProcessForced uint32 = 0xFFFFFFFF

// String returns a short name for the process type.
func (pt ProcessType) String() string {
	switch pt {
	case ProcessNone:
		return "none"
	case ProcessElastic:
		return "elastic"
	case ProcessTwoToOne:
		return "two-to-one"
	case ProcessTwoToTwo:
		return "two-to-two"
	case ProcessDecay:
		return "decay"
	case ProcessWall:
		return "wall"
	case ProcessStringSoft:
		return "string-soft"
	case ProcessStringHard:
		return "string-hard"
	case ProcessMultiThreePionsToOmega:
		return "three-pions-to-omega"
	default:
		return "unknown"
	}
}

// isStringProcess reports whether the type belongs to the string
// fragmentation regime, where energy-momentum conservation is known to be
// approximate and violations are tolerated.
func (pt ProcessType) isStringProcess() bool {
	return pt == ProcessStringSoft || pt == ProcessStringHard
}
