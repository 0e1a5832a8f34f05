package models

import (
	"regexp"

	dErrors "downloadgate/pkg/domain-errors"
	textutil "downloadgate/pkg/platform/strings"
)

// Rejection messages. A filled honeypot reports MsgValidationFailed and must
// stay indistinguishable from any other generic failure.
const (
	MsgValidationFailed         = "Validation failed."
	MsgFirstNameRequired        = "First name is required."
	MsgLastNameRequired         = "Last name is required."
	MsgEmailInvalid             = "Email format is invalid."
	MsgTermsConsentRequired     = "Terms consent is required."
	MsgUpdatesConsentRequired   = "Updates consent is required."
	MsgPurposeRequired          = "At least one use purpose is required."
	MsgPurposeOtherRequired     = "Please describe other purpose."
	MsgAffiliationRequired      = "At least one affiliation is required."
	MsgAffiliationNoneExclusive = `Affiliation "none" cannot be combined with other options.`
	MsgInstitutionOtherRequired = "Please provide other institution."
)

const (
	minNameLen             = 2
	minPurposeOtherLen     = 3
	minInstitutionOtherLen = 2
)

// emailPattern accepts local@domain.tld with no whitespace and a single @.
// Whitespace is the ECMAScript set: ASCII space and controls, \v, Unicode
// separators and the BOM.
var emailPattern = regexp.MustCompile(`^[^\s\v\x{FEFF}\p{Z}@]+@[^\s\v\x{FEFF}\p{Z}@]+\.[^\s\v\x{FEFF}\p{Z}@]+$`)

// Validate applies the business rules in order and returns the first failure
// as a CodeValidation error, or nil when the candidate is acceptable.
// It has no side effects and depends on nothing but c.
func Validate(c SubmissionCandidate) error {
	if msg := firstViolation(c); msg != "" {
		return dErrors.New(dErrors.CodeValidation, msg)
	}
	return nil
}

func firstViolation(c SubmissionCandidate) string {
	switch {
	case c.Website != "":
		return MsgValidationFailed
	case textutil.Len(c.FirstName) < minNameLen:
		return MsgFirstNameRequired
	case textutil.Len(c.LastName) < minNameLen:
		return MsgLastNameRequired
	case !emailPattern.MatchString(c.Email):
		return MsgEmailInvalid
	case !c.ConsentTerms:
		return MsgTermsConsentRequired
	case !c.ConsentUpdates:
		return MsgUpdatesConsentRequired
	case len(c.Purposes) == 0 && textutil.Len(c.PurposeOther) < minPurposeOtherLen:
		return MsgPurposeRequired
	case c.HasPurpose(PurposeOther) && textutil.Len(c.PurposeOther) < minPurposeOtherLen:
		return MsgPurposeOtherRequired
	case len(c.Affiliations) == 0:
		return MsgAffiliationRequired
	case c.HasAffiliation(AffiliationNone) && len(c.Affiliations) > 1:
		return MsgAffiliationNoneExclusive
	case c.HasAffiliation(AffiliationOther) && textutil.Len(c.InstitutionOther) < minInstitutionOtherLen:
		return MsgInstitutionOtherRequired
	}
	return ""
}
