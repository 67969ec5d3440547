package uniqueness

import (
	"time"

	"pressroom/internal/textutil"
)

// Record is the stored fingerprint of one published article. Records are
// created once, on accept, and never mutated.
type Record struct {
	ID                  string                        `json:"id"`
	Keyword             string                        `json:"keyword"`
	PublishedAt         time.Time                     `json:"published_at"`
	DocumentFingerprint textutil.SimHash              `json:"document_fingerprint"`
	Shingles            []uint64                      `json:"shingles"`
	SectionFingerprints map[string]SectionFingerprint `json:"section_fingerprints"`
}

// SectionFingerprint is the term-count vector of one eligible section.
type SectionFingerprint struct {
	Words int                `json:"words"`
	Terms map[string]float64 `json:"terms"`
}

// NewRecord fingerprints an accepted draft. Only sections the section stage
// would compare are kept, keyed by normalized heading.
func (g *Guard) NewRecord(id, keyword string, draft Draft, at time.Time) Record {
	rec := Record{
		ID:                  id,
		Keyword:             keyword,
		PublishedAt:         at.UTC(),
		DocumentFingerprint: textutil.NewSimHash(draft.Text),
		Shingles:            textutil.Shingles(draft.Text, g.opts.ShingleSize),
		SectionFingerprints: map[string]SectionFingerprint{},
	}
	for _, s := range g.eligibleSections(draft) {
		fp := textutil.NewFingerprint(s.Text)
		if fp == nil {
			continue
		}
		heading := NormalizeHeading(s.Heading)
		// Duplicate headings within one draft: keep the longer section.
		if existing, ok := rec.SectionFingerprints[heading]; ok && existing.Words >= s.Words {
			continue
		}
		rec.SectionFingerprints[heading] = SectionFingerprint{Words: s.Words, Terms: fp.Counts()}
	}
	return rec
}

// Age returns how long ago the record was published relative to now.
func (r Record) Age(now time.Time) time.Duration {
	return now.Sub(r.PublishedAt)
}
