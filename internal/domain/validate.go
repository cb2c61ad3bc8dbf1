package domain

import "strings"

// Rejection reasons returned by ValidateCandidate
const (
	ReasonWrongType = "wrong_type"
	ReasonTooLarge  = "too_large"
)

// ValidationResult is the outcome of validating an upload candidate:
// either Ok, or Rejected with a reason.
type ValidationResult struct {
	reason string
}

// Ok reports whether the candidate passed validation
func (r ValidationResult) Ok() bool { return r.reason == "" }

// Reason returns the rejection reason, empty when Ok
func (r ValidationResult) Reason() string { return r.reason }

// Rejected builds a failed validation result
func Rejected(reason string) ValidationResult { return ValidationResult{reason: reason} }

// ValidateCandidate checks a candidate's metadata before transfer. Rules run
// in order and the first failure wins: the name must end in ".pdf"
// (case-insensitive; the declared MIME type is advisory only since browsers
// and filesystems report it inconsistently), and the size must not exceed
// MaxUploadBytes. Pure: no network, no side effects.
func ValidateCandidate(c UploadCandidate) ValidationResult {
	if !strings.HasSuffix(strings.ToLower(c.FileName), AllowedExtension) {
		return Rejected(ReasonWrongType)
	}
	if c.SizeBytes > MaxUploadBytes {
		return Rejected(ReasonTooLarge)
	}
	return ValidationResult{}
}
