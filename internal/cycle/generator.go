package cycle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"pressroom/internal/lineup"
	"pressroom/internal/textutil"
	"pressroom/internal/uniqueness"
)

// ErrNoDraft reports that the generator has nothing for the requested angle.
var ErrNoDraft = errors.New("no draft for angle")

// DraftRequest asks the content generator for one draft.
type DraftRequest struct {
	Entry   lineup.Entry
	Angle   lineup.Angle
	Attempt int
}

// Generator produces article drafts. Content generation itself happens
// outside pressroom.
type Generator interface {
	Generate(ctx context.Context, req DraftRequest) (uniqueness.Draft, error)
}

// FileGenerator reads pre-generated Markdown drafts named
// <slug>--<angle>.md from Dir.
type FileGenerator struct {
	Dir string
}

// DraftPath returns where the draft for entry and angle is expected.
func (g FileGenerator) DraftPath(entry lineup.Entry, angle lineup.Angle) string {
	return filepath.Join(g.Dir, DraftFileName(entry.Keyword, angle))
}

// DraftFileName is the file name a generator writes for phrase and angle.
func DraftFileName(phrase string, angle lineup.Angle) string {
	return textutil.Slug(phrase) + "--" + string(angle) + ".md"
}

// Generate implements Generator.
func (g FileGenerator) Generate(_ context.Context, req DraftRequest) (uniqueness.Draft, error) {
	path := g.DraftPath(req.Entry, req.Angle)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return uniqueness.Draft{}, fmt.Errorf("%w: %s", ErrNoDraft, filepath.Base(path))
		}
		return uniqueness.Draft{}, fmt.Errorf("read draft: %w", err)
	}
	return uniqueness.ParseMarkdown(data)
}
