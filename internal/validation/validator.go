package validation

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"lesson-byte/internal/domain"
	"lesson-byte/internal/util"
)

const (
	maxAnswerLength  = 2000
	maxConceptLength = 200
	maxScriptLength  = 5000
)

// Validator provides request validation functionality
type Validator struct {
	maxUploadBytes int64
}

// NewValidator creates a validator. maxUploadBytes <= 0 disables the upload
// size check.
func NewValidator(maxUploadBytes int64) *Validator {
	return &Validator{maxUploadBytes: maxUploadBytes}
}

// ValidateSessionID checks that id is a ULID.
func (v *Validator) ValidateSessionID(id string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError("session_id"))
	} else if !util.IsULID(id) {
		errors = append(errors, domain.NewInvalidFormatError("session_id", id))
	}
	return errors
}

func (v *Validator) ValidateConcept(concept string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	n := utf8.RuneCountInString(strings.TrimSpace(concept))
	if n == 0 {
		errors = append(errors, domain.NewMissingFieldError("concept"))
	} else if n > maxConceptLength {
		errors = append(errors, domain.NewOutOfRangeError("concept", n, 1, maxConceptLength))
	}
	return errors
}

// ValidateAnswer is used for both scenario answers and quiz options.
func (v *Validator) ValidateAnswer(answer string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(answer) == "" {
		errors = append(errors, domain.NewMissingFieldError("answer"))
	} else if n := utf8.RuneCountInString(answer); n > maxAnswerLength {
		errors = append(errors, domain.NewOutOfRangeError("answer", n, 1, maxAnswerLength))
	}
	return errors
}

// ValidateScript allows an empty script, which means "narrate the explanation".
func (v *Validator) ValidateScript(script string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if n := utf8.RuneCountInString(script); n > maxScriptLength {
		errors = append(errors, domain.NewOutOfRangeError("script", n, 0, maxScriptLength))
	}
	return errors
}

// ValidateUpload accepts non-empty PDF files within the size limit.
func (v *Validator) ValidateUpload(fileName string, size int64) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(fileName) == "" {
		errors = append(errors, domain.NewMissingFieldError("file"))
		return errors
	}
	if !strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		errors = append(errors, domain.NewInvalidFormatError("file", fileName))
	}
	if size <= 0 || (v.maxUploadBytes > 0 && size > v.maxUploadBytes) {
		errors = append(errors, domain.NewOutOfRangeError("file", size, 1, int(v.maxUploadBytes)))
	}
	return errors
}
