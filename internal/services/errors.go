package services

import (
	"errors"
	"fmt"
	"strings"

	"alfredoptarigan/ats-checker/internal/logger"
)

var (
	// ErrInvalidInput is returned before any network use when the document or job description is missing.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExtraction is returned when the document cannot be turned into text.
	ErrExtraction = errors.New("document extraction failed")
	// ErrModelCall matches every *ModelCallError.
	ErrModelCall = errors.New("model call failed")
)

type ModelErrorKind string

const (
	ModelErrTransport   ModelErrorKind = "transport"
	ModelErrStatus      ModelErrorKind = "status"
	ModelErrEmptyAnswer ModelErrorKind = "empty_answer"
)

const maxErrorBodyLength = 512

// ModelCallError reports why the remote model produced no answer.
type ModelCallError struct {
	Kind       ModelErrorKind
	Provider   string
	StatusCode int
	Body       string
	Err        error

	// secret is scrubbed from the rendered message; Err keeps the raw cause.
	secret string
}

func (e *ModelCallError) Error() string {
	return redactSecret(e.message(), e.secret)
}

func (e *ModelCallError) message() string {
	switch e.Kind {
	case ModelErrStatus:
		return fmt.Sprintf("model call failed: %s returned status %d: %s",
			e.Provider, e.StatusCode, logger.TruncateForLog(e.Body, maxErrorBodyLength))
	case ModelErrEmptyAnswer:
		if e.Err != nil {
			return fmt.Sprintf("model call failed: %s returned no answer: %v", e.Provider, e.Err)
		}
		return fmt.Sprintf("model call failed: %s returned no answer", e.Provider)
	default:
		return fmt.Sprintf("model call failed: %s unreachable: %v", e.Provider, e.Err)
	}
}

func (e *ModelCallError) Unwrap() error {
	return e.Err
}

func (e *ModelCallError) Is(target error) bool {
	return target == ErrModelCall
}

// redactSecret removes every occurrence of secret from s.
func redactSecret(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "[REDACTED]")
}
