package domain

import "fmt"

// ConfirmationType is what happened to an ad. The string values are the ones
// the ad server expects in confirmation payloads.
type ConfirmationType string

const (
	ConfirmationTypeServed      ConfirmationType = "served"
	ConfirmationTypeViewed      ConfirmationType = "view"
	ConfirmationTypeClicked     ConfirmationType = "click"
	ConfirmationTypeDismissed   ConfirmationType = "dismiss"
	ConfirmationTypeLanded      ConfirmationType = "landed"
	ConfirmationTypeTransferred ConfirmationType = "transferred"
	ConfirmationTypeFlagged     ConfirmationType = "flag"
	ConfirmationTypeSaved       ConfirmationType = "bookmark"
	ConfirmationTypeUpvoted     ConfirmationType = "upvote"
	ConfirmationTypeDownvoted   ConfirmationType = "downvote"
	ConfirmationTypeConversion  ConfirmationType = "conversion"
)

var confirmationTypes = []ConfirmationType{
	ConfirmationTypeServed,
	ConfirmationTypeViewed,
	ConfirmationTypeClicked,
	ConfirmationTypeDismissed,
	ConfirmationTypeLanded,
	ConfirmationTypeTransferred,
	ConfirmationTypeFlagged,
	ConfirmationTypeSaved,
	ConfirmationTypeUpvoted,
	ConfirmationTypeDownvoted,
	ConfirmationTypeConversion,
}

// ParseConfirmationType validates s as a confirmation type.
func ParseConfirmationType(s string) (ConfirmationType, error) {
	for _, t := range confirmationTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown confirmation type %q", s)
}

// IsBillable reports whether events of this type are confirmed to the ad
// server. Served events only feed local frequency caps.
func (t ConfirmationType) IsBillable() bool {
	return t != ConfirmationTypeServed
}
