package value

import "fmt"

// OfferState: состояние трейд-оффера на стороне площадки.
type OfferState uint8

const (
	OfferStateUnknown OfferState = iota
	OfferStateInvalid
	OfferStateActive
	OfferStateAccepted
	OfferStateCountered
	OfferStateExpired
	OfferStateCanceled
	OfferStateDeclined
	OfferStateInvalidItems
	OfferStateCreatedNeedsConfirmation
	OfferStateCanceledBySecondFactor
	OfferStateInEscrow
)

func (s OfferState) String() string {
	switch s {
	case OfferStateUnknown:
		return "Unknown"
	case OfferStateInvalid:
		return "Invalid"
	case OfferStateActive:
		return "Active"
	case OfferStateAccepted:
		return "Accepted"
	case OfferStateCountered:
		return "Countered"
	case OfferStateExpired:
		return "Expired"
	case OfferStateCanceled:
		return "Canceled"
	case OfferStateDeclined:
		return "Declined"
	case OfferStateInvalidItems:
		return "InvalidItems"
	case OfferStateCreatedNeedsConfirmation:
		return "CreatedNeedsConfirmation"
	case OfferStateCanceledBySecondFactor:
		return "CanceledBySecondFactor"
	case OfferStateInEscrow:
		return "InEscrow"
	default:
		return fmt.Sprintf("OfferState(%d)", uint8(s))
	}
}
