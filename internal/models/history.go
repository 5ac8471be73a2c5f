package models

import (
	"fmt"
	"time"
)

// MaxIngredientsStored caps how much raw ingredient text a history entry keeps.
const MaxIngredientsStored = 200

// ScanEntry is one past analysis in the device's scan history. Entries are
// never mutated after creation except for DisplayTime, which is derived
// from Timestamp and may be refreshed at any point.
type ScanEntry struct {
	ID                  int64          `json:"id"`
	Timestamp           string         `json:"timestamp"`
	DisplayTime         string         `json:"displayTime"`
	ProductName         string         `json:"productName"`
	Ingredients         string         `json:"ingredients"`
	Verdict             Verdict        `json:"verdict"`
	Confidence          int            `json:"confidence"`
	PersonalizedForUser bool           `json:"personalizedForUser"`
	En                  *LanguageBlock `json:"en,omitempty"`
	Hi                  *LanguageBlock `json:"hi,omitempty"`
	SimpleSummary       string         `json:"simpleSummary"`
}

// ScanStats aggregates verdict totals over the history.
type ScanStats struct {
	Total   int `json:"total"`
	Safe    int `json:"safe"`
	Caution int `json:"caution"`
	Avoid   int `json:"avoid"`
}

// RelativeTime buckets the distance between t and now into a short display
// string; beyond a week it falls back to an absolute date.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	mins := int(diff.Minutes())
	hours := int(diff.Hours())
	days := int(diff.Hours() / 24)

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%d min ago", mins)
	case hours < 24:
		return fmt.Sprintf("%d %s ago", hours, plural("hour", hours))
	case days < 7:
		return fmt.Sprintf("%d %s ago", days, plural("day", days))
	case t.Year() != now.Year():
		return t.Format("2 Jan 2006")
	default:
		return t.Format("2 Jan")
	}
}

func plural(unit string, n int) string {
	if n > 1 {
		return unit + "s"
	}
	return unit
}
