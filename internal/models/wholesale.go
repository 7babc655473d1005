package models

import (
	"encoding/json"
	"time"
)

// WholesaleSource names a wholesale site.
type WholesaleSource string

const (
	SourceDomeggook WholesaleSource = "domeggook"
	SourceOwnerclan WholesaleSource = "ownerclan"
)

// RawListing is one scraped wholesale listing before filtering.
type RawListing struct {
	Name  string
	Price int
	URL   string
}

// WholesaleCandidate is a listing that survived every filter stage.
type WholesaleCandidate struct {
	Keyword string          `json:"keyword"`
	Source  WholesaleSource `json:"source"`
	Name    string          `json:"name"`
	Price   int             `json:"price"`
	URL     string          `json:"url"`
}

// RejectionStage names the point at which a keyword left the sourcing path.
type RejectionStage string

const (
	StageGradeGate     RejectionStage = "grade_gate"
	StageNoListings    RejectionStage = "no_listings"
	StageRelevance     RejectionStage = "relevance"
	StagePriceBand     RejectionStage = "price_band"
	StageBulkShipping  RejectionStage = "bulk_shipping"
	StageSourceBlocked RejectionStage = "source_blocked"
	StageMargin        RejectionStage = "margin"
)

// Rejection is one entry of the rejection trail.
type Rejection struct {
	Keyword string         `json:"keyword"`
	Stage   RejectionStage `json:"stage"`
	Detail  string         `json:"detail,omitempty"`

	// Verify is set when a blocked source was never searched, so the
	// elimination may be wrong and needs a manual check.
	Verify bool `json:"verification_needed,omitempty"`
}

// LoginStatus records which wholesale sources accepted the configured login.
// It serializes flat: {"domeggook": true, "ownerclan": false, "timestamp": "..."}.
type LoginStatus struct {
	Sources   map[WholesaleSource]bool
	CheckedAt time.Time
}

const loginTimestampKey = "timestamp"

func (s LoginStatus) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(s.Sources)+1)
	for source, ok := range s.Sources {
		flat[string(source)] = ok
	}
	flat[loginTimestampKey] = s.CheckedAt.Format(time.RFC3339)
	return json.Marshal(flat)
}

func (s *LoginStatus) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	s.Sources = make(map[WholesaleSource]bool, len(flat))
	for key, raw := range flat {
		if key == loginTimestampKey {
			var ts string
			if err := json.Unmarshal(raw, &ts); err != nil {
				return err
			}
			parsed, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				return err
			}
			s.CheckedAt = parsed
			continue
		}
		var ok bool
		if err := json.Unmarshal(raw, &ok); err != nil {
			return err
		}
		s.Sources[WholesaleSource(key)] = ok
	}
	return nil
}
