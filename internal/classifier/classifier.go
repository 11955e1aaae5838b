// Package classifier suggests priority, subject code and an action text for
// a problem report. Callers never see a hard failure: every implementation
// degrades to a fixed default classification.
package classifier

import (
	"context"

	"github.com/spec-kit/diario-de-bordo/internal/domain"
)

// Default texts returned when no classification could be produced.
const (
	FallbackAction         = "Verificar relato."
	UnavailableAction      = "Verificar relato (IA indisponível)."
	FallbackNextStep       = "Investigação manual necessária."
	FallbackSubjectCode    = domain.SubjectCode1200
	FallbackTicketPriority = domain.TicketPriorityMedium
)

// Classification is the structured result of analysing a problem report.
type Classification struct {
	Priority          domain.TicketPriority `json:"priority"`
	SubjectCode       domain.SubjectCode    `json:"subjectCode"`
	AnalystAction     string                `json:"analystAction"`
	SuggestedNextStep string                `json:"suggestedNextStep"`
	// Degraded is set when the default was returned instead of a real answer.
	Degraded bool `json:"degraded"`
}

// Valid reports whether the enumerated fields hold known values.
func (c Classification) Valid() bool {
	return c.Priority.Valid() && c.SubjectCode.Valid()
}

// Classifier maps free text to a classification.
type Classifier interface {
	Classify(ctx context.Context, description, clientName string) Classification
}

// Fallback returns the safe default with the given action text.
func Fallback(action string) Classification {
	return Classification{
		Priority:          FallbackTicketPriority,
		SubjectCode:       FallbackSubjectCode,
		AnalystAction:     action,
		SuggestedNextStep: FallbackNextStep,
		Degraded:          true,
	}
}

// NoopClassifier is used when no AI credentials are configured.
type NoopClassifier struct{}

// Classify always returns the "AI unavailable" default.
func (NoopClassifier) Classify(context.Context, string, string) Classification {
	return Fallback(UnavailableAction)
}
