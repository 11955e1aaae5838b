package domain

import (
	"strings"
	"time"
)

// SupportTimeLayout is the minute-precision local layout of the support
// start/end fields.
const SupportTimeLayout = "2006-01-02T15:04"

// NewTicket fills the creation defaults into draft. ID and CreatedAt are
// cleared because the store assigns them; validation flags and closure audit
// fields always start unset.
func NewTicket(draft Ticket, now time.Time) Ticket {
	t := draft.Clone()
	t.ID = ""
	t.CreatedAt = time.Time{}
	t.TagVLDD = false
	t.TagNVLDD = false
	t.ValidatedBy = nil
	t.ValidatedAt = nil

	if t.SubjectCode == "" {
		t.SubjectCode = SubjectCode1200
	}
	if t.Priority == "" {
		t.Priority = TicketPriorityMedium
	}
	if t.Status == "" {
		t.Status = TicketStatusOpen
	}
	stamp := now.Format(SupportTimeLayout)
	if strings.TrimSpace(t.SupportStartTime) == "" {
		t.SupportStartTime = stamp
	}
	if strings.TrimSpace(t.SupportEndTime) == "" {
		t.SupportEndTime = stamp
	}
	if !t.TrocouPeca {
		t.PecaTrocada = nil
	}
	return t
}

// MissingRequiredFields lists the wire names of the descriptive fields that
// are blank.
func (t *Ticket) MissingRequiredFields() []string {
	required := []struct {
		name  string
		value string
	}{
		{FieldClientName, t.ClientName},
		{FieldAnalystName, t.AnalystName},
		{FieldLocationName, t.LocationName},
		{FieldTaskTicket, t.TaskTicket},
		{FieldServiceRequest, t.ServiceRequest},
		{FieldDescription, t.Description},
		{FieldAnalystAction, t.AnalystAction},
	}
	var missing []string
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}
