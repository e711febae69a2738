// Package timeline projects a health record into dated display events.
package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/caresynapse/healthsummary/internal/record"
)

// Event kinds
const (
	KindLab        = "lab"
	KindDiagnosis  = "diagnosis"
	KindMedication = "medication"
	KindImaging    = "imaging"
)

// Event is one entry on the timeline
type Event struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	SourceID    string `json:"sourceId,omitempty"`
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01",
	"2006",
}

// Project returns the record's events, most recent first. Dates that do not
// parse sort after every calendar date; ties keep section order (labs,
// diagnoses, medications, imaging) and then item order.
func Project(rec record.HealthRecord) []Event {
	n := len(rec.LabResults) + len(rec.Diagnoses) + len(rec.Medications) + len(rec.ImagingReports)
	events := make([]Event, 0, n)

	for _, l := range rec.LabResults {
		events = append(events, Event{
			Date:        l.Date,
			Title:       "Lab: " + l.Name,
			Description: fmt.Sprintf("Value: %s %s", l.Value, l.Unit),
			Kind:        KindLab,
			SourceID:    l.ID,
		})
	}
	for _, d := range rec.Diagnoses {
		events = append(events, Event{
			Date:        d.Date,
			Title:       "Diagnosis: " + d.Description,
			Description: "Status: " + d.Status,
			Kind:        KindDiagnosis,
			SourceID:    d.ID,
		})
	}
	for _, m := range rec.Medications {
		events = append(events, Event{
			Date:        m.StartDate,
			Title:       "Medication: " + m.Name,
			Description: fmt.Sprintf("%s, %s", m.Dose, m.Frequency),
			Kind:        KindMedication,
			SourceID:    m.ID,
		})
	}
	for _, img := range rec.ImagingReports {
		events = append(events, Event{
			Date:        img.Date,
			Title:       "Imaging: " + img.Type,
			Description: "Key findings available.",
			Kind:        KindImaging,
			SourceID:    img.ID,
		})
	}

	keys := make([]sortKey, len(events))
	for i, e := range events {
		keys[i] = keyFor(e.Date)
	}
	idx := make([]int, len(events))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]].after(keys[idx[b]])
	})

	out := make([]Event, len(events))
	for i, j := range idx {
		out[i] = events[j]
	}
	return out
}

type sortKey struct {
	t  time.Time
	ok bool
}

func (k sortKey) after(o sortKey) bool {
	switch {
	case k.ok && o.ok:
		return k.t.After(o.t)
	default:
		return k.ok && !o.ok
	}
}

func keyFor(date string) sortKey {
	t, ok := ParseDate(date)
	return sortKey{t: t, ok: ok}
}

// ParseDate parses the calendar forms used by the record: full dates, year
// and month, bare years and RFC 3339 timestamps.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
