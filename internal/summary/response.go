package summary

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/caresynapse/healthsummary/internal/record"
)

var fenceRe = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// ParseResponse validates raw summarizer output and converts it to
// summaries. It returns *MalformedResponseError when the text is not JSON
// and *UnexpectedResponseShapeError when the keys or types are wrong.
func ParseResponse(raw string) (record.AiSummaries, error) {
	text := stripFence(strings.TrimSpace(raw))

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return record.AiSummaries{}, &MalformedResponseError{Excerpt: excerpt(text), Cause: err}
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return record.AiSummaries{}, &UnexpectedResponseShapeError{Reason: "top-level value is not an object"}
	}

	doctor, ok := obj["doctorSummary"].(string)
	if !ok {
		return record.AiSummaries{}, &UnexpectedResponseShapeError{Field: "doctorSummary", Reason: "is not a string"}
	}
	patient, ok := obj["patientSummary"].(string)
	if !ok {
		return record.AiSummaries{}, &UnexpectedResponseShapeError{Field: "patientSummary", Reason: "is not a string"}
	}
	items, ok := obj["alerts"].([]any)
	if !ok {
		return record.AiSummaries{}, &UnexpectedResponseShapeError{Field: "alerts", Reason: "is not an array"}
	}

	alerts := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return record.AiSummaries{}, &UnexpectedResponseShapeError{Field: "alerts", Reason: "contains a non-string element"}
		}
		alerts = append(alerts, s)
	}

	return record.AiSummaries{
		DoctorSummary:  doctor,
		PatientSummary: patient,
		Alerts:         alerts,
	}, nil
}

// stripFence removes a code fence spanning the whole text. An empty fence
// body leaves the text as is.
func stripFence(text string) string {
	m := fenceRe.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	if inner := strings.TrimSpace(m[2]); inner != "" {
		return inner
	}
	return text
}
