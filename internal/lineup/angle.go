package lineup

import (
	"strings"

	"pressroom/internal/keyword"
)

// Angle is a fixed content framing assigned to a lineup entry.
type Angle string

const (
	AngleBestOf          Angle = "best-of"
	AngleAlternatives    Angle = "alternatives"
	AngleSetupGuide      Angle = "setup-guide"
	AngleTroubleshooting Angle = "troubleshooting"
	AngleUseCase         Angle = "use-case"
	AngleComparison      Angle = "comparison"
)

// Angles is the round-robin order.
var Angles = []Angle{
	AngleBestOf,
	AngleAlternatives,
	AngleSetupGuide,
	AngleTroubleshooting,
	AngleUseCase,
	AngleComparison,
}

// Valid reports whether a is one of the enumerated angles.
func (a Angle) Valid() bool {
	for _, known := range Angles {
		if a == known {
			return true
		}
	}
	return false
}

// ParseAngle returns the angle named by value.
func ParseAngle(value string) (Angle, bool) {
	a := Angle(strings.ToLower(strings.TrimSpace(value)))
	return a, a.Valid()
}

// intentRule maps phrase cues to an angle. Rules are tried in order.
type intentRule struct {
	angle   Angle
	words   []string
	phrases []string
}

var intentRules = []intentRule{
	{angle: AngleComparison, words: []string{"vs", "versus"}},
	{angle: AngleAlternatives, words: []string{"alternative", "alternatives"}},
	{angle: AngleSetupGuide, words: []string{"setup", "install", "installation"}, phrases: []string{"how to", "set up"}},
	{angle: AngleTroubleshooting, words: []string{"fix", "troubleshoot", "troubleshooting"}, phrases: []string{"not working"}},
	{angle: AngleBestOf, words: []string{"best", "top"}},
	{angle: AngleUseCase, words: []string{"for"}},
}

// DetectAngle returns the angle implied by the phrase's wording, if any.
func DetectAngle(phrase string) (Angle, bool) {
	normalized := " " + keyword.Normalize(phrase) + " "
	words := make(map[string]struct{})
	for _, word := range strings.Fields(normalized) {
		words[word] = struct{}{}
	}
	for _, rule := range intentRules {
		for _, w := range rule.words {
			if _, ok := words[w]; ok {
				return rule.angle, true
			}
		}
		for _, p := range rule.phrases {
			if strings.Contains(normalized, " "+p+" ") {
				return rule.angle, true
			}
		}
	}
	return "", false
}

// AlternateAngles returns the retry order after entry's assigned angle: the
// rest of the enumeration, starting just past the assigned angle.
func AlternateAngles(entry Entry) []Angle {
	start := 0
	for i, a := range Angles {
		if a == entry.Angle {
			start = i + 1
			break
		}
	}
	out := make([]Angle, 0, len(Angles)-1)
	for i := 0; i < len(Angles); i++ {
		a := Angles[(start+i)%len(Angles)]
		if a == entry.Angle {
			continue
		}
		out = append(out, a)
	}
	return out
}

// angleAssigner hands out angles for one day's lineup.
type angleAssigner struct {
	cursor int
	used   map[Angle]struct{}
}

func newAngleAssigner(offset int) *angleAssigner {
	return &angleAssigner{cursor: offset % len(Angles), used: make(map[Angle]struct{})}
}

// next returns the detected angle when the phrase implies one, otherwise the
// next round-robin angle not yet used today. When every angle is used the
// plain round-robin angle is returned.
func (a *angleAssigner) next(phrase string) (Angle, string) {
	if detected, ok := DetectAngle(phrase); ok {
		a.used[detected] = struct{}{}
		return detected, "intent"
	}
	for i := 0; i < len(Angles); i++ {
		candidate := Angles[(a.cursor+i)%len(Angles)]
		if _, taken := a.used[candidate]; taken {
			continue
		}
		a.cursor = (a.cursor + i + 1) % len(Angles)
		a.used[candidate] = struct{}{}
		return candidate, "round_robin"
	}
	candidate := Angles[a.cursor]
	a.cursor = (a.cursor + 1) % len(Angles)
	return candidate, "round_robin"
}
