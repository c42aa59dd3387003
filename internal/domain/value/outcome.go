package value

import "fmt"

// Outcome: результат разбора одного оффера.
type Outcome uint8

const (
	OutcomeUnknown Outcome = iota
	OutcomeAccepted
	OutcomeBlacklisted
	OutcomeIgnored
	OutcomeRejected
	// OutcomeTryAgain не является окончательным решением: оффер будет
	// разобран заново на следующем проходе.
	OutcomeTryAgain
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnknown:
		return "Unknown"
	case OutcomeAccepted:
		return "Accepted"
	case OutcomeBlacklisted:
		return "Blacklisted"
	case OutcomeIgnored:
		return "Ignored"
	case OutcomeRejected:
		return "Rejected"
	case OutcomeTryAgain:
		return "TryAgain"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// IsOverridable сообщает, может ли внешний хук перевернуть исход в Accepted.
func (o Outcome) IsOverridable() bool {
	switch o {
	case OutcomeBlacklisted, OutcomeIgnored, OutcomeRejected:
		return true
	default:
		return false
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
