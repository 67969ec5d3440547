package images

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pressroom/internal/keyword"
)

// Pool names a fallback tier a candidate belongs to.
type Pool string

const (
	// PoolTopical holds category images that are not in the general folder.
	PoolTopical Pool = "topical"
	// PoolGeneral holds <category>/general images.
	PoolGeneral Pool = "general"
	// PoolScene holds scenes/<scene> images shared by every category.
	PoolScene Pool = "scene"
)

const (
	scenesDir  = "scenes"
	generalDir = "general"
)

// Candidate is one image in the pool. Everything except the usage count,
// which lives in the usage store, is static metadata scanned from disk.
type Candidate struct {
	ID       string    `json:"id"`
	Path     string    `json:"path"`
	Category string    `json:"category,omitempty"`
	Scene    string    `json:"scene,omitempty"`
	Pool     Pool      `json:"pool"`
	Tokens   []string  `json:"tokens"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	AddedAt  time.Time `json:"added_at"`
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
}

// Scan walks root and returns every decodable image. The layout is
// <root>/<category>/..., with <root>/<category>/general/ as the
// category-general pool and <root>/scenes/<scene>/ as the scene pool.
// Files directly under root are ignored. IDs are slash-separated paths
// relative to root.
func Scan(root string) ([]Candidate, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat image dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("image dir %s is not a directory", root)
	}

	var out []Candidate
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 2 {
			return nil
		}
		cand, ok, err := describe(path, parts)
		if err != nil {
			return err
		}
		if ok {
			out = append(out, cand)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan image dir: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func describe(path string, parts []string) (Candidate, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return Candidate{}, false, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		// Unreadable or truncated images are not candidates.
		return Candidate{}, false, nil
	}
	stat, err := f.Stat()
	if err != nil {
		return Candidate{}, false, err
	}

	cand := Candidate{
		ID:      strings.Join(parts, "/"),
		Path:    path,
		Width:   cfg.Width,
		Height:  cfg.Height,
		AddedAt: stat.ModTime().UTC(),
		Tokens:  FilenameTokens(parts[len(parts)-1]),
	}
	top := strings.ToLower(parts[0])
	switch {
	case top == scenesDir:
		if len(parts) < 3 {
			return Candidate{}, false, nil
		}
		cand.Pool = PoolScene
		cand.Scene = strings.ToLower(parts[1])
	case len(parts) >= 3 && strings.ToLower(parts[1]) == generalDir:
		cand.Pool = PoolGeneral
		cand.Category = top
	default:
		cand.Pool = PoolTopical
		cand.Category = top
	}
	return cand, true, nil
}

// FilenameTokens extracts topic tokens from an image file name.
func FilenameTokens(name string) []string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	tokens := keyword.Tokens(base)
	out := tokens[:0]
	for _, token := range tokens {
		if isNumeric(token) {
			continue
		}
		out = append(out, token)
	}
	return out
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
