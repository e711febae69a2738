package record

import "fmt"

// Clone returns a deep copy. Nil sequences become empty ones.
func (r HealthRecord) Clone() HealthRecord {
	return HealthRecord{
		PatientInfo:        r.PatientInfo,
		LabResults:         cloneItems(r.LabResults),
		Diagnoses:          cloneItems(r.Diagnoses),
		Vitals:             cloneItems(r.Vitals),
		Medications:        cloneItems(r.Medications),
		ImagingReports:     cloneItems(r.ImagingReports),
		Allergies:          cloneItems(r.Allergies),
		PastMedicalHistory: cloneItems(r.PastMedicalHistory),
		SurgicalHistory:    cloneItems(r.SurgicalHistory),
		DentalRecords:      cloneItems(r.DentalRecords),
	}
}

// Normalize returns a deep copy with every sequence present and every
// identity populated and unique. Missing or duplicate identities are
// replaced with fresh ones.
func (r HealthRecord) Normalize() HealthRecord {
	out := r.Clone()
	seen := make(map[string]struct{})
	claim := func(id string) string {
		if _, dup := seen[id]; id == "" || dup {
			id = NewID()
		}
		seen[id] = struct{}{}
		return id
	}

	out.PatientInfo.ID = claim(out.PatientInfo.ID)
	assignIDs(out.LabResults, claim)
	assignIDs(out.Diagnoses, claim)
	assignIDs(out.Vitals, claim)
	assignIDs(out.Medications, claim)
	assignIDs(out.ImagingReports, claim)
	assignIDs(out.Allergies, claim)
	assignIDs(out.PastMedicalHistory, claim)
	assignIDs(out.SurgicalHistory, claim)
	assignIDs(out.DentalRecords, claim)
	return out
}

// WithoutIDs returns a deep copy with all identity tokens cleared
func (r HealthRecord) WithoutIDs() HealthRecord {
	out := r.Clone()
	blank := func(string) string { return "" }
	out.PatientInfo.ID = ""
	assignIDs(out.LabResults, blank)
	assignIDs(out.Diagnoses, blank)
	assignIDs(out.Vitals, blank)
	assignIDs(out.Medications, blank)
	assignIDs(out.ImagingReports, blank)
	assignIDs(out.Allergies, blank)
	assignIDs(out.PastMedicalHistory, blank)
	assignIDs(out.SurgicalHistory, blank)
	assignIDs(out.DentalRecords, blank)
	return out
}

// Len returns the number of items in a section
func (r *HealthRecord) Len(section Section) int {
	switch section {
	case SectionLabResults:
		return len(r.LabResults)
	case SectionDiagnoses:
		return len(r.Diagnoses)
	case SectionVitals:
		return len(r.Vitals)
	case SectionMedications:
		return len(r.Medications)
	case SectionImagingReports:
		return len(r.ImagingReports)
	case SectionAllergies:
		return len(r.Allergies)
	case SectionPastMedicalHistory:
		return len(r.PastMedicalHistory)
	case SectionSurgicalHistory:
		return len(r.SurgicalHistory)
	case SectionDentalRecords:
		return len(r.DentalRecords)
	}
	return 0
}

// UpdatePatientField sets one demographic field
func (r *HealthRecord) UpdatePatientField(field, value string) error {
	f, ok := r.PatientInfo.Field(field)
	if !ok {
		return fmt.Errorf("%w: patientInfo.%s", ErrUnknownField, field)
	}
	*f = value
	return nil
}

// AddItem appends a new item to section, starting from the section's
// template, applying fields and assigning a fresh identity.
func (r *HealthRecord) AddItem(section Section, fields map[string]string) (string, error) {
	switch section {
	case SectionLabResults:
		return addItem(&r.LabResults, NewLabResult(), fields)
	case SectionDiagnoses:
		return addItem(&r.Diagnoses, NewDiagnosis(), fields)
	case SectionVitals:
		return addItem(&r.Vitals, NewVitalSign(), fields)
	case SectionMedications:
		return addItem(&r.Medications, NewMedication(), fields)
	case SectionImagingReports:
		return addItem(&r.ImagingReports, NewImagingReport(), fields)
	case SectionAllergies:
		return addItem(&r.Allergies, NewAllergy(), fields)
	case SectionPastMedicalHistory:
		return addItem(&r.PastMedicalHistory, NewHistoryItem(), fields)
	case SectionSurgicalHistory:
		return addItem(&r.SurgicalHistory, NewHistoryItem(), fields)
	case SectionDentalRecords:
		return addItem(&r.DentalRecords, NewDentalRecord(), fields)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, section)
}

// UpdateItemField sets one field of the item matched by id
func (r *HealthRecord) UpdateItemField(section Section, id, field, value string) error {
	fields := map[string]string{field: value}
	switch section {
	case SectionLabResults:
		return updateItem(r.LabResults, id, fields)
	case SectionDiagnoses:
		return updateItem(r.Diagnoses, id, fields)
	case SectionVitals:
		return updateItem(r.Vitals, id, fields)
	case SectionMedications:
		return updateItem(r.Medications, id, fields)
	case SectionImagingReports:
		return updateItem(r.ImagingReports, id, fields)
	case SectionAllergies:
		return updateItem(r.Allergies, id, fields)
	case SectionPastMedicalHistory:
		return updateItem(r.PastMedicalHistory, id, fields)
	case SectionSurgicalHistory:
		return updateItem(r.SurgicalHistory, id, fields)
	case SectionDentalRecords:
		return updateItem(r.DentalRecords, id, fields)
	}
	return fmt.Errorf("%w: %q", ErrUnknownSection, section)
}

// RemoveItem deletes the item matched by id, preserving the order of the rest
func (r *HealthRecord) RemoveItem(section Section, id string) error {
	switch section {
	case SectionLabResults:
		return removeItem(&r.LabResults, id)
	case SectionDiagnoses:
		return removeItem(&r.Diagnoses, id)
	case SectionVitals:
		return removeItem(&r.Vitals, id)
	case SectionMedications:
		return removeItem(&r.Medications, id)
	case SectionImagingReports:
		return removeItem(&r.ImagingReports, id)
	case SectionAllergies:
		return removeItem(&r.Allergies, id)
	case SectionPastMedicalHistory:
		return removeItem(&r.PastMedicalHistory, id)
	case SectionSurgicalHistory:
		return removeItem(&r.SurgicalHistory, id)
	case SectionDentalRecords:
		return removeItem(&r.DentalRecords, id)
	}
	return fmt.Errorf("%w: %q", ErrUnknownSection, section)
}

func cloneItems[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

func assignIDs[T any, P entityPtr[T]](items []T, next func(string) string) {
	for i := range items {
		p := P(&items[i])
		p.SetID(next(p.GetID()))
	}
}

func addItem[T any, P entityPtr[T]](items *[]T, item T, fields map[string]string) (string, error) {
	p := P(&item)
	if err := SetFields(p, fields); err != nil {
		return "", err
	}
	id := NewID()
	p.SetID(id)
	*items = append(*items, item)
	return id, nil
}

func updateItem[T any, P entityPtr[T]](items []T, id string, fields map[string]string) error {
	for i := range items {
		p := P(&items[i])
		if p.GetID() != id {
			continue
		}
		// validate before writing so a bad field leaves the item untouched
		for name := range fields {
			if _, ok := p.Field(name); !ok {
				return fmt.Errorf("%w: %q", ErrUnknownField, name)
			}
		}
		return SetFields(p, fields)
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

func removeItem[T any, P entityPtr[T]](items *[]T, id string) error {
	for i := range *items {
		if P(&(*items)[i]).GetID() == id {
			*items = append((*items)[:i], (*items)[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// Items returns the section's items as entities. The entities point into r.
func (r *HealthRecord) Items(section Section) []Entity {
	switch section {
	case SectionLabResults:
		return entities(r.LabResults)
	case SectionDiagnoses:
		return entities(r.Diagnoses)
	case SectionVitals:
		return entities(r.Vitals)
	case SectionMedications:
		return entities(r.Medications)
	case SectionImagingReports:
		return entities(r.ImagingReports)
	case SectionAllergies:
		return entities(r.Allergies)
	case SectionPastMedicalHistory:
		return entities(r.PastMedicalHistory)
	case SectionSurgicalHistory:
		return entities(r.SurgicalHistory)
	case SectionDentalRecords:
		return entities(r.DentalRecords)
	}
	return nil
}

func entities[T any, P entityPtr[T]](items []T) []Entity {
	out := make([]Entity, len(items))
	for i := range items {
		out[i] = P(&items[i])
	}
	return out
}
