package scoring

import (
	"fmt"
	"time"

	"pressroom/internal/config"
)

type season struct {
	name       string
	startMonth time.Month
	startDay   int
	endMonth   time.Month
	endDay     int
	lead       int
	tail       int
	terms      []string
}

func parseSeasons(cfg []config.Season) ([]season, error) {
	out := make([]season, 0, len(cfg))
	for _, s := range cfg {
		start, err := time.Parse("01-02", s.Start)
		if err != nil {
			return nil, fmt.Errorf("season %s start: %w", s.Name, err)
		}
		end, err := time.Parse("01-02", s.End)
		if err != nil {
			return nil, fmt.Errorf("season %s end: %w", s.Name, err)
		}
		out = append(out, season{
			name:       s.Name,
			startMonth: start.Month(),
			startDay:   start.Day(),
			endMonth:   end.Month(),
			endDay:     end.Day(),
			lead:       max(0, s.LeadDays),
			tail:       max(0, s.TailDays),
			terms:      s.Terms,
		})
	}
	return out, nil
}

// window returns the period occurrence beginning in year. A period whose end
// precedes its start wraps into the following year.
func (s season) window(year int) (time.Time, time.Time) {
	start := time.Date(year, s.startMonth, s.startDay, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, s.endMonth, s.endDay, 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		end = end.AddDate(1, 0, 0)
	}
	return start, end
}

// strength is 1 inside the period, decays linearly to 0 across the lead days
// before it and the tail days after it, and is 0 elsewhere.
func (s season) strength(day time.Time) (float64, string) {
	best, note := 0.0, ""
	for _, year := range []int{day.Year() - 1, day.Year(), day.Year() + 1} {
		start, end := s.window(year)
		var value float64
		var desc string
		switch {
		case !day.Before(start) && !day.After(end):
			value, desc = 1, fmt.Sprintf("inside %s", s.name)
		case day.Before(start):
			until := daysBetween(day, start)
			if s.lead > 0 && until < s.lead {
				value = 1 - float64(until)/float64(s.lead)
				desc = fmt.Sprintf("%d days before %s", until, s.name)
			}
		default:
			since := daysBetween(end, day)
			if s.tail > 0 && since < s.tail {
				value = 1 - float64(since)/float64(s.tail)
				desc = fmt.Sprintf("%d days after %s", since, s.name)
			}
		}
		if value > best {
			best, note = value, desc
		}
	}
	return best, note
}

func (s *Scorer) seasonality(f features, at time.Time) (float64, string) {
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	matched := false
	best, note := 0.0, ""
	for _, period := range s.seasons {
		if !period.matches(f) {
			continue
		}
		matched = true
		value, desc := period.strength(day)
		if value > best {
			best, note = value, desc
		}
	}
	if !matched {
		return s.evergreen, "evergreen, no seasonal terms"
	}
	if best == 0 {
		return 0, "seasonal topic out of season"
	}
	return best, note
}

func (s season) matches(f features) bool {
	for _, term := range s.terms {
		if f.has(term) {
			return true
		}
	}
	return false
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
