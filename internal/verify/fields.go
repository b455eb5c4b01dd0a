package verify

import "time"

// FieldName identifies a verifiable document field.
type FieldName string

// Recognized field names.
const (
	FieldFirstName          FieldName = "firstName"
	FieldLastName           FieldName = "lastName"
	FieldFullName           FieldName = "fullName"
	FieldRegistrationNumber FieldName = "registrationNumber"
	FieldDate               FieldName = "date"
	FieldFacilityName       FieldName = "facilityName"
)

// ExpectedFields carries the values to look for in a document. All fields
// are optional; only non-empty fields are checked. The closed struct makes
// an unrecognized field a compile-time error instead of a silently ignored
// map key.
type ExpectedFields struct {
	FirstName          string `json:"first_name,omitempty"`
	LastName           string `json:"last_name,omitempty"`
	FullName           string `json:"full_name,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	Date               string `json:"date,omitempty"`
	FacilityName       string `json:"facility_name,omitempty"`
}

// expectedField is one non-empty field scheduled for matching.
type expectedField struct {
	name  FieldName
	value string

	// numeric fields are compared on their digit sequence with substring
	// containment instead of edit distance.
	numeric bool
}

// list returns the non-empty fields in a stable order.
func (e ExpectedFields) list() []expectedField {
	all := []expectedField{
		{FieldFirstName, e.FirstName, false},
		{FieldLastName, e.LastName, false},
		{FieldFullName, e.FullName, false},
		{FieldRegistrationNumber, e.RegistrationNumber, true},
		{FieldDate, e.Date, true},
		{FieldFacilityName, e.FacilityName, false},
	}

	fields := make([]expectedField, 0, len(all))
	for _, f := range all {
		if f.value != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// FieldVerification is the per-field verification outcome.
type FieldVerification struct {
	// Found is true when the expected value was located in the extracted
	// text above the similarity threshold.
	Found bool `json:"found"`

	// Similarity is the best-match similarity score in [0, 1]. For
	// digit-matched fields it is binary: 1 when found, 0 otherwise.
	Similarity float64 `json:"similarity"`

	// ExpectedValue echoes the original expected string for display and debugging.
	ExpectedValue string `json:"expected_value"`

	// MatchedWord is the token from the extracted text that matched, when found.
	MatchedWord string `json:"matched_word,omitempty"`
}

// Result is the aggregate outcome of one verification call. It is
// constructed fresh per call and carries no identity or persistence.
type Result struct {
	// Success is true iff at least one field was checked and every checked
	// field was found. Partial matches never pass automatically; they are
	// surfaced through OverallScore for human review.
	Success bool `json:"success"`

	// OverallScore is the percentage of checked fields that were found, in [0, 100].
	OverallScore float64 `json:"overall_score"`

	// Fields maps each checked field to its verification outcome.
	Fields map[FieldName]FieldVerification `json:"fields"`

	// RawText is the unmodified OCR output, concatenated across pages.
	RawText string `json:"raw_text"`

	// CleanedText is the normalized version of RawText.
	CleanedText string `json:"cleaned_text"`

	// ProcessedAt is the timestamp of completion.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingTime is the wall-clock duration of the whole pipeline.
	ProcessingTime time.Duration `json:"processing_time"`
}
