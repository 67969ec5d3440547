package signals

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Seed is one keyword the operator wants tracked.
//
//	seeds:
//	  - phrase: best mesh wifi system
//	    category: networking
//	    tags: [review, deals]
//	    difficulty: 0.4
type Seed struct {
	Phrase     string   `yaml:"phrase"`
	Category   string   `yaml:"category"`
	Tags       []string `yaml:"tags"`
	Difficulty *float64 `yaml:"difficulty"`
}

type seedsFile struct {
	Seeds []Seed `yaml:"seeds"`
}

type feedsFile struct {
	Feeds []string `yaml:"feeds"`
}

// LoadSeeds reads the seed keyword list from a YAML file. Entries without a
// phrase are dropped; a difficulty outside [0,1] is an error.
func LoadSeeds(path string) ([]Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seeds: %w", err)
	}
	var doc seedsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seeds %s: %w", path, err)
	}
	seeds := make([]Seed, 0, len(doc.Seeds))
	for _, seed := range doc.Seeds {
		seed.Phrase = strings.TrimSpace(seed.Phrase)
		if seed.Phrase == "" {
			continue
		}
		seed.Category = strings.ToLower(strings.TrimSpace(seed.Category))
		if seed.Difficulty != nil && (*seed.Difficulty < 0 || *seed.Difficulty > 1) {
			return nil, fmt.Errorf("seed %q: difficulty must be between 0 and 1", seed.Phrase)
		}
		seeds = append(seeds, seed)
	}
	if len(seeds) == 0 {
		return nil, errors.New("seeds file contains no keywords")
	}
	return seeds, nil
}

// LoadFeeds reads the RSS/Atom feed URL list from a YAML file.
//
//	feeds:
//	  - https://example.com/rss
func LoadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds: %w", err)
	}
	defer f.Close()

	var doc feedsFile
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse feeds %s: %w", path, err)
	}
	urls := make([]string, 0, len(doc.Feeds))
	for _, url := range doc.Feeds {
		if url = strings.TrimSpace(url); url != "" {
			urls = append(urls, url)
		}
	}
	if len(urls) == 0 {
		return nil, errors.New("feeds file contains no urls")
	}
	return urls, nil
}
