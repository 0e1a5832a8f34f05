// Package models holds the download-request domain types and the pure
// normalize/validate rules applied to them.
package models

import (
	"strings"

	textutil "downloadgate/pkg/platform/strings"
)

// Field caps, in code points, applied at ingestion.
const (
	MaxNameLen             = 80
	MaxEmailLen            = 180
	MaxPurposeTagLen       = 60
	MaxPurposeOtherLen     = 280
	MaxAffiliationTagLen   = 30
	MaxInstitutionOtherLen = 140
	MaxInstitutionLen      = 120
	MaxLangLen             = 10
	MaxPluginVersionLen    = 64
	MaxHoneypotLen         = 180
	MaxUserAgentLen        = 300
)

// SubmissionCandidate is a request body coerced into the expected shape but
// not yet checked against business rules. Website is the honeypot field.
type SubmissionCandidate struct {
	FirstName        string        `json:"firstName"`
	LastName         string        `json:"lastName"`
	Email            string        `json:"email"`
	Purposes         []Purpose     `json:"purposes"`
	PurposeOther     string        `json:"purposeOther"`
	Affiliations     []Affiliation `json:"affiliations"`
	InstitutionOther string        `json:"institutionOther"`
	Institution      string        `json:"institution"`
	ConsentTerms     bool          `json:"consentTerms"`
	ConsentStats     bool          `json:"consentStats"`
	ConsentUpdates   bool          `json:"consentUpdates"`
	Lang             string        `json:"lang"`
	PluginVersion    string        `json:"pluginVersion"`
	Website          string        `json:"website"`
}

// Normalize coerces a decoded JSON body into a SubmissionCandidate.
//
// Every field is type-checked and capped independently: a field of the wrong
// type becomes its zero value instead of failing the request, so Validate
// stays the single source of rejections. Tag lists keep only known values,
// deduplicated in first-seen order. ok is false only when body is not a JSON
// object.
func Normalize(body any) (candidate *SubmissionCandidate, ok bool) {
	input, ok := body.(map[string]any)
	if !ok || input == nil {
		return nil, false
	}

	return &SubmissionCandidate{
		FirstName:        text(input["firstName"], MaxNameLen),
		LastName:         text(input["lastName"], MaxNameLen),
		Email:            strings.ToLower(text(input["email"], MaxEmailLen)),
		Purposes:         purposes(input["purposes"]),
		PurposeOther:     text(input["purposeOther"], MaxPurposeOtherLen),
		Affiliations:     affiliations(input["affiliations"]),
		InstitutionOther: text(input["institutionOther"], MaxInstitutionOtherLen),
		Institution:      text(input["institution"], MaxInstitutionLen),
		ConsentTerms:     flag(input["consentTerms"]),
		ConsentStats:     flag(input["consentStats"]),
		ConsentUpdates:   flag(input["consentUpdates"]),
		Lang:             text(input["lang"], MaxLangLen),
		PluginVersion:    text(input["pluginVersion"], MaxPluginVersionLen),
		Website:          text(input["website"], MaxHoneypotLen),
	}, true
}

func text(v any, max int) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return textutil.Clip(s, max)
}

func flag(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func purposes(v any) []Purpose {
	items, ok := v.([]any)
	if !ok {
		return []Purpose{}
	}
	out := make([]Purpose, 0, len(items))
	for _, item := range items {
		if p, err := ParsePurpose(text(item, MaxPurposeTagLen)); err == nil {
			out = append(out, p)
		}
	}
	return textutil.Dedupe(out)
}

func affiliations(v any) []Affiliation {
	items, ok := v.([]any)
	if !ok {
		return []Affiliation{}
	}
	out := make([]Affiliation, 0, len(items))
	for _, item := range items {
		if a, err := ParseAffiliation(text(item, MaxAffiliationTagLen)); err == nil {
			out = append(out, a)
		}
	}
	return textutil.Dedupe(out)
}

// HasPurpose reports whether p was declared.
func (c SubmissionCandidate) HasPurpose(p Purpose) bool {
	for _, v := range c.Purposes {
		if v == p {
			return true
		}
	}
	return false
}

// HasAffiliation reports whether a was declared.
func (c SubmissionCandidate) HasAffiliation(a Affiliation) bool {
	for _, v := range c.Affiliations {
		if v == a {
			return true
		}
	}
	return false
}
