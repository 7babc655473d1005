// Package models defines the value objects passed between pipeline stages.
// Values are created by one stage and never mutated after leaving it.
package models

// KeywordCandidate is one trending keyword emitted by trend collection.
type KeywordCandidate struct {
	// Text is the keyword as shown by the ranking source.
	Text string `json:"keyword"`

	// Category is the ranking category the keyword was first seen in.
	Category string `json:"category"`

	// Rank is category-relative from the ranking source, or a dense 1..N
	// rank by descending search volume once volume enrichment ran.
	Rank int `json:"rank"`

	// RankChange is the ranking source's movement indicator (e.g. "up", "+3").
	RankChange string `json:"change_trend"`

	// SearchVolume is the monthly search volume, nil when not enriched.
	SearchVolume *int `json:"search_volume,omitempty"`
}

// HasVolume reports whether volume enrichment produced a value.
func (k KeywordCandidate) HasVolume() bool {
	return k.SearchVolume != nil
}

// IntPtr is a helper for optional integer fields.
func IntPtr(v int) *int {
	return &v
}
