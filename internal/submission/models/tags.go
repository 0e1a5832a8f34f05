package models

import dErrors "downloadgate/pkg/domain-errors"

// Purpose is a declared intended use of the download.
// Invariant: the value is one of the supported purposes.
//
// Usage: construct via ParsePurpose at trust boundaries; direct casting
// bypasses the allowlist.
type Purpose string

const (
	PurposeStudent        Purpose = "student"
	PurposeAcademicStaff  Purpose = "academic_staff"
	PurposeResearcher     Purpose = "researcher"
	PurposeSoundDesigner  Purpose = "sound_designer"
	PurposeSoundDirector  Purpose = "sound_director"
	PurposeComposer       Purpose = "composer"
	PurposeEvaluationTest Purpose = "evaluation_test"
	PurposeCommercialRD   Purpose = "commercial_rd"
	PurposeOther          Purpose = "other"
)

var validPurposes = map[Purpose]bool{
	PurposeStudent:        true,
	PurposeAcademicStaff:  true,
	PurposeResearcher:     true,
	PurposeSoundDesigner:  true,
	PurposeSoundDirector:  true,
	PurposeComposer:       true,
	PurposeEvaluationTest: true,
	PurposeCommercialRD:   true,
	PurposeOther:          true,
}

// ParsePurpose constructs a Purpose from external input.
func ParsePurpose(s string) (Purpose, error) {
	p := Purpose(s)
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid purpose")
	}
	return p, nil
}

// IsValid checks if the purpose is one of the supported values.
func (p Purpose) IsValid() bool {
	return validPurposes[p]
}

func (p Purpose) String() string {
	return string(p)
}

// Affiliation is the submitter's declared institutional affiliation.
// "none" is mutually exclusive with every other affiliation.
type Affiliation string

const (
	AffiliationAMFN  Affiliation = "amfn"
	AffiliationOther Affiliation = "other"
	AffiliationNone  Affiliation = "none"
)

var validAffiliations = map[Affiliation]bool{
	AffiliationAMFN:  true,
	AffiliationOther: true,
	AffiliationNone:  true,
}

// ParseAffiliation constructs an Affiliation from external input.
func ParseAffiliation(s string) (Affiliation, error) {
	a := Affiliation(s)
	if !a.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid affiliation")
	}
	return a, nil
}

// IsValid checks if the affiliation is one of the supported values.
func (a Affiliation) IsValid() bool {
	return validAffiliations[a]
}

func (a Affiliation) String() string {
	return string(a)
}
