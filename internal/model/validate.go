package model

import (
	"bytes"
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// add appends a field error.
func (e *ValidationError) add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// DefaultExhibitMaxBytes is the size ceiling applied to exhibit uploads
// when no explicit limit is configured.
const DefaultExhibitMaxBytes = 25 << 20 // 25 MiB

// exhibitSignatures maps a detectable document signature to its content
// type. Exhibits are documents or images of documents; anything else is
// rejected.
var exhibitSignatures = []struct {
	magic       []byte
	contentType string
}{
	{[]byte("%PDF-"), "application/pdf"},
	{[]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
	{[]byte{0xFF, 0xD8, 0xFF}, "image/jpeg"},
}

// SniffExhibitType returns the content type detected from the artifact's
// leading bytes, or "" when the format is not recognized.
func SniffExhibitType(data []byte) string {
	for _, sig := range exhibitSignatures {
		if bytes.HasPrefix(data, sig.magic) {
			return sig.contentType
		}
	}
	return ""
}

// ValidateExhibitFile checks an uploaded artifact before it is accepted.
// maxBytes <= 0 applies DefaultExhibitMaxBytes. The returned error wraps
// ErrInvalidFile with enough detail for the caller to fix the input.
func ValidateExhibitFile(data []byte, filename string, maxBytes int64) (contentType string, err error) {
	if maxBytes <= 0 {
		maxBytes = DefaultExhibitMaxBytes
	}
	if strings.TrimSpace(filename) == "" {
		return "", fmt.Errorf("%w: filename is required", ErrInvalidFile)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: file is empty", ErrInvalidFile)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: file is %d bytes, limit is %d", ErrInvalidFile, len(data), maxBytes)
	}
	contentType = SniffExhibitType(data)
	if contentType == "" {
		return "", fmt.Errorf("%w: unrecognized format (accepted: PDF, PNG, JPEG)", ErrInvalidFile)
	}
	return contentType, nil
}

// ValidateScheduleInput checks the metadata needed to schedule a session.
func ValidateScheduleInput(tournamentID, presidingJudge string) error {
	var ve ValidationError
	if strings.TrimSpace(tournamentID) == "" {
		ve.add("tournament_id", "is required")
	}
	if strings.TrimSpace(presidingJudge) == "" {
		ve.add("presiding_judge", "is required")
	}
	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateStartTurnInput checks the metadata needed to start a turn.
func ValidateStartTurnInput(side Side, turnType TurnType, allocatedSeconds int) error {
	var ve ValidationError
	if !side.IsValid() {
		ve.add("side", fmt.Sprintf("invalid value %q", side))
	}
	if !turnType.IsValid() {
		ve.add("turn_type", "is required")
	}
	if allocatedSeconds <= 0 {
		ve.add("allocated_seconds", fmt.Sprintf("must be positive, got %d", allocatedSeconds))
	}
	if ve.HasErrors() {
		return &ve
	}
	return nil
}
