package events

import (
	"time"

	"github.com/spec-kit/diario-de-bordo/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketUpdated   EventType = "ticket_updated"
	EventTicketValidated EventType = "ticket_validated"
)

// Event represents a domain event emitted by the ticket service.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticketId"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ClientName  string                `json:"clientName"`
	TaskTicket  string                `json:"taskTicket"`
	SubjectCode domain.SubjectCode    `json:"subjectCode"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
}

// TicketUpdatedPayload lists the stored columns the update touched.
type TicketUpdatedPayload struct {
	Fields    []string            `json:"fields"`
	OldStatus domain.TicketStatus `json:"oldStatus"`
	NewStatus domain.TicketStatus `json:"newStatus"`
}

// TicketValidatedPayload payload.
type TicketValidatedPayload struct {
	Tag         string `json:"tag"`
	WitnessName string `json:"witnessName"`
	WitnessID   string `json:"witnessId"`
	ValidatedAt string `json:"validatedAt"`
}
