// Package uniqueness decides whether a draft is too close to recently
// published articles.
//
// The document stage compares 64-bit SimHash fingerprints; any prior within
// the Hamming threshold is confirmed exactly once with word-shingle Jaccard
// similarity, and the Jaccard value alone decides. The section stage runs
// only when the document stage passes and compares same-heading sections by
// TF-IDF cosine. The guard is a pure function of its inputs: it performs no
// I/O and no retries.
package uniqueness

import (
	"sort"
	"time"

	"pressroom/internal/config"
	"pressroom/internal/textutil"
)

// Reason codes returned on reject.
type Reason string

const (
	ReasonDocument Reason = "document_near_duplicate"
	ReasonSection  Reason = "section_near_duplicate"
)

// Options configures thresholds.
type Options struct {
	HammingThreshold   int
	DocumentSimilarity float64
	SectionSimilarity  float64
	MinSectionWords    int
	ShingleSize        int
	Window             time.Duration
	ExcludedHeadings   []string
}

// OptionsFromConfig maps the uniqueness config section.
func OptionsFromConfig(cfg config.Uniqueness) Options {
	return Options{
		HammingThreshold:   cfg.HammingThreshold,
		DocumentSimilarity: cfg.DocumentSimilarity,
		SectionSimilarity:  cfg.SectionSimilarity,
		MinSectionWords:    cfg.MinSectionWords,
		ShingleSize:        cfg.ShingleSize,
		Window:             time.Duration(cfg.WindowDays) * 24 * time.Hour,
		ExcludedHeadings:   cfg.ExcludedHeadings,
	}
}

// Verdict is the guard's decision.
type Verdict struct {
	Accepted   bool    `json:"accepted"`
	Reason     Reason  `json:"reason,omitempty"`
	PriorID    string  `json:"prior_id,omitempty"`
	Heading    string  `json:"heading,omitempty"`
	Similarity float64 `json:"similarity"`
	Hamming    int     `json:"hamming"`
	// Candidates is the number of priors that passed the Hamming prefilter.
	Candidates int `json:"candidates"`
}

// Guard holds thresholds. It is safe for concurrent use.
type Guard struct {
	opts     Options
	excluded map[string]struct{}
}

// New returns a guard. Zero-valued options fall back to the stock thresholds.
func New(opts Options) *Guard {
	if opts.ShingleSize < 1 {
		opts.ShingleSize = 3
	}
	if opts.MinSectionWords < 1 {
		opts.MinSectionWords = 200
	}
	if opts.Window <= 0 {
		opts.Window = 90 * 24 * time.Hour
	}
	if opts.DocumentSimilarity <= 0 {
		opts.DocumentSimilarity = 0.30
	}
	if opts.SectionSimilarity <= 0 {
		opts.SectionSimilarity = 0.45
	}
	excluded := make(map[string]struct{}, len(opts.ExcludedHeadings))
	for _, h := range opts.ExcludedHeadings {
		excluded[NormalizeHeading(h)] = struct{}{}
	}
	return &Guard{opts: opts, excluded: excluded}
}

// Check runs both stages for draft against the records inside the window.
func (g *Guard) Check(draft Draft, window []Record, now time.Time) Verdict {
	active := g.active(window, now)
	candidate := g.NewRecord("", "", draft, now)

	verdict := Verdict{Accepted: true, Hamming: -1}
	var best Record
	for _, prior := range active {
		distance := textutil.Hamming(candidate.DocumentFingerprint, prior.DocumentFingerprint)
		if verdict.Hamming < 0 || distance < verdict.Hamming {
			verdict.Hamming = distance
		}
		if distance > g.opts.HammingThreshold {
			continue
		}
		verdict.Candidates++
		sim := g.Confirm(candidate, prior)
		if sim > verdict.Similarity {
			verdict.Similarity = sim
			best = prior
		}
	}
	if verdict.Candidates > 0 && verdict.Similarity >= g.opts.DocumentSimilarity {
		verdict.Accepted = false
		verdict.Reason = ReasonDocument
		verdict.PriorID = best.ID
		return verdict
	}

	if rejected, ok := g.checkSections(candidate, active); ok {
		rejected.Hamming = verdict.Hamming
		rejected.Candidates = verdict.Candidates
		return rejected
	}
	return verdict
}

// Confirm is the document-stage similarity between two records. It is
// symmetric.
func (g *Guard) Confirm(a, b Record) float64 {
	return textutil.Jaccard(a.Shingles, b.Shingles)
}

func (g *Guard) checkSections(candidate Record, active []Record) (Verdict, bool) {
	if len(candidate.SectionFingerprints) == 0 {
		return Verdict{}, false
	}

	corpus := textutil.NewCorpus()
	for _, rec := range active {
		for _, sf := range rec.SectionFingerprints {
			corpus.Add(textutil.FingerprintFromCounts(sf.Terms))
		}
	}
	for _, sf := range candidate.SectionFingerprints {
		corpus.Add(textutil.FingerprintFromCounts(sf.Terms))
	}
	idf := corpus.IDF()

	headings := make([]string, 0, len(candidate.SectionFingerprints))
	for heading := range candidate.SectionFingerprints {
		headings = append(headings, heading)
	}
	sort.Strings(headings)

	var (
		worst   Verdict
		matched bool
	)
	for _, heading := range headings {
		draftVec := textutil.FingerprintFromCounts(candidate.SectionFingerprints[heading].Terms).WithIDF(idf)
		for _, prior := range active {
			sf, ok := prior.SectionFingerprints[heading]
			if !ok {
				continue
			}
			sim := textutil.CosineSimilarity(draftVec, textutil.FingerprintFromCounts(sf.Terms).WithIDF(idf))
			if sim < g.opts.SectionSimilarity || sim <= worst.Similarity {
				continue
			}
			worst = Verdict{
				Accepted:   false,
				Reason:     ReasonSection,
				PriorID:    prior.ID,
				Heading:    heading,
				Similarity: sim,
			}
			matched = true
		}
	}
	return worst, matched
}

func (g *Guard) eligibleSections(draft Draft) []Section {
	out := make([]Section, 0, len(draft.Sections))
	for _, s := range draft.Sections {
		heading := NormalizeHeading(s.Heading)
		if heading == "" {
			continue
		}
		if _, skip := g.excluded[heading]; skip {
			continue
		}
		if s.Words < g.opts.MinSectionWords {
			continue
		}
		out = append(out, s)
	}
	return out
}

// active returns the records inside the window, newest first with ID as the
// tie-break.
func (g *Guard) active(records []Record, now time.Time) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.Age(now) <= g.opts.Window {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Prune drops records older than the window.
func (g *Guard) Prune(records []Record, now time.Time) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.Age(now) <= g.opts.Window {
			out = append(out, rec)
		}
	}
	return out
}
