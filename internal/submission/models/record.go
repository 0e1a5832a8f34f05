package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	textutil "downloadgate/pkg/platform/strings"
)

// CreatedAtLayout renders CreatedAt as UTC ISO-8601 with milliseconds.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

// SubmissionRecord is one accepted download request as persisted.
// Records are written once and never updated or deleted by this service.
type SubmissionRecord struct {
	ID               string
	CreatedAt        string
	CreatedAtMs      int64
	FirstName        string
	LastName         string
	Email            string
	PurposesJSON     string
	PurposeOther     string
	Institution      string
	AffiliationsJSON string
	InstitutionOther string
	ConsentTerms     int
	ConsentStats     int
	ConsentUpdates   int
	Lang             string
	PluginVersion    string
	UserAgent        string
	IPHash           string
}

// NewSubmissionRecord builds the persisted form of an accepted candidate.
func NewSubmissionRecord(c SubmissionCandidate, ipHash, userAgent string, now time.Time) (*SubmissionRecord, error) {
	purposes, err := json.Marshal(nonNil(c.Purposes))
	if err != nil {
		return nil, err
	}
	affiliations, err := json.Marshal(nonNil(c.Affiliations))
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &SubmissionRecord{
		ID:               uuid.NewString(),
		CreatedAt:        now.Format(CreatedAtLayout),
		CreatedAtMs:      now.UnixMilli(),
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Email:            c.Email,
		PurposesJSON:     string(purposes),
		PurposeOther:     c.PurposeOther,
		Institution:      c.Institution,
		AffiliationsJSON: string(affiliations),
		InstitutionOther: c.InstitutionOther,
		ConsentTerms:     boolInt(c.ConsentTerms),
		ConsentStats:     boolInt(c.ConsentStats),
		ConsentUpdates:   boolInt(c.ConsentUpdates),
		Lang:             c.Lang,
		PluginVersion:    c.PluginVersion,
		UserAgent:        textutil.Clip(userAgent, MaxUserAgentLen),
		IPHash:           ipHash,
	}, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// DownloadReference is the success payload returned to the caller.
type DownloadReference struct {
	DownloadURL string `json:"downloadUrl"`
	SHA256      string `json:"sha256"`
}
