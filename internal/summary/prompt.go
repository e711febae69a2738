package summary

import (
	"encoding/json"
	"fmt"

	"github.com/caresynapse/healthsummary/internal/record"
)

const promptTemplate = `Given the following patient health record:
` + "```json" + `
%s
` + "```" + `

Generate the following as a single, well-formed JSON object:
1. "doctorSummary": A concise clinical summary in SOAP format (Subjective, Objective, Assessment, Plan). Clearly delineate each section (Subjective, Objective, Assessment, Plan), using markdown bold for the titles.
2. "patientSummary": An easy-to-understand summary for the patient in plain language. Use bullet points and short sentences where appropriate.
3. "alerts": An array of strings detailing critical alerts such as potential medication conflicts, critical lab values or contraindications implied by the data. If no critical alerts are found, the array must contain a single string: "%s"

The JSON output must have exactly these three keys: "doctorSummary" (string), "patientSummary" (string), and "alerts" (array of strings).
Do not include any other text outside the JSON object.`

// BuildPrompt renders the summarization prompt for rec. Identity tokens are
// stripped first, so records with the same clinical content produce the
// same prompt.
func BuildPrompt(rec record.HealthRecord) (string, error) {
	body, err := json.MarshalIndent(rec.WithoutIDs(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize record: %w", err)
	}
	return fmt.Sprintf(promptTemplate, body, record.NoAlertsMessage), nil
}
