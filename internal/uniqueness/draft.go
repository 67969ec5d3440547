package uniqueness

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"

	"pressroom/internal/textutil"
)

// Section is a heading and the text under it, up to the next section heading.
type Section struct {
	Heading string `json:"heading"`
	Text    string `json:"-"`
	Words   int    `json:"words"`
}

// Draft is an article candidate as seen by the guard.
type Draft struct {
	Title    string
	Text     string
	Sections []Section
}

// NewDraft assembles a draft from already-split sections. Text is the
// concatenation of the title and every section.
func NewDraft(title string, sections []Section) Draft {
	parts := make([]string, 0, len(sections)+1)
	if title != "" {
		parts = append(parts, title)
	}
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		s.Words = len(textutil.Words(s.Text))
		out = append(out, s)
		if s.Heading != "" {
			parts = append(parts, s.Heading)
		}
		parts = append(parts, s.Text)
	}
	return Draft{Title: title, Text: strings.Join(parts, "\n"), Sections: out}
}

// ParseMarkdown renders markdown to HTML and splits it on h2 headings. The
// first h1 becomes the title; h3 and deeper stay inside their h2 section.
// Text before the first h2 forms a section with an empty heading.
func ParseMarkdown(src []byte) (Draft, error) {
	var html bytes.Buffer
	if err := goldmark.Convert(src, &html); err != nil {
		return Draft{}, fmt.Errorf("render markdown: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(&html)
	if err != nil {
		return Draft{}, fmt.Errorf("parse rendered markdown: %w", err)
	}

	var (
		title    string
		sections []Section
		current  = Section{}
		body     []string
	)
	flush := func() {
		current.Text = strings.Join(body, "\n")
		if current.Heading != "" || strings.TrimSpace(current.Text) != "" {
			sections = append(sections, current)
		}
		body = nil
	}

	doc.Find("body").Children().Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		switch goquery.NodeName(sel) {
		case "h1":
			if title == "" {
				title = text
				return
			}
			body = append(body, text)
		case "h2":
			flush()
			current = Section{Heading: text}
		default:
			if text != "" {
				body = append(body, text)
			}
		}
	})
	flush()
	return NewDraft(title, sections), nil
}

// ParseText splits plain text on lines starting with "## ". A leading "# "
// line becomes the title. Lines of any length are kept.
func ParseText(text string) Draft {
	var (
		title    string
		sections []Section
		current  = Section{}
		body     []string
	)
	flush := func() {
		current.Text = strings.Join(body, "\n")
		if current.Heading != "" || strings.TrimSpace(current.Text) != "" {
			sections = append(sections, current)
		}
		body = nil
	}
	for line := range strings.Lines(text) {
		line = strings.TrimRight(line, "\r\n")
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "## "):
			flush()
			current = Section{Heading: strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))}
		case strings.HasPrefix(trimmed, "# ") && title == "" && len(sections) == 0 && len(body) == 0:
			title = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		default:
			body = append(body, line)
		}
	}
	flush()
	return NewDraft(title, sections)
}

// NormalizeHeading folds a heading for same-heading comparison.
func NormalizeHeading(heading string) string {
	return textutil.NormalizePhrase(heading)
}
