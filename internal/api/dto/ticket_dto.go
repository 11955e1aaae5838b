package dto

import (
	"time"

	"github.com/spec-kit/diario-de-bordo/internal/domain"
)

// TicketResponse is the wire shape of a ticket. Field names match the stored
// column names.
type TicketResponse struct {
	ID                  string                `json:"id"`
	ClientName          string                `json:"clientName"`
	AnalystName         string                `json:"analystName"`
	SupportStartTime    string                `json:"supportStartTime"`
	SupportEndTime      string                `json:"supportEndTime"`
	LocationName        string                `json:"locationName"`
	TaskTicket          string                `json:"taskTicket"`
	ServiceRequest      string                `json:"serviceRequest"`
	SubjectCode         domain.SubjectCode    `json:"subjectCode"`
	AnalystAction       string                `json:"analystAction"`
	Description         string                `json:"description"`
	LigacaoDevida       bool                  `json:"ligacaoDevida"`
	UtilizouACFS        bool                  `json:"utilizouACFS"`
	OcorreuEntintamento bool                  `json:"ocorreuEntintamento"`
	TrocouPeca          bool                  `json:"trocouPeca"`
	PecaTrocada         *string               `json:"pecaTrocada,omitempty"`
	TagVLDD             bool                  `json:"tagVLDD"`
	TagNVLDD            bool                  `json:"tagNVLDD"`
	CustomerWitnessName string                `json:"customerWitnessName"`
	CustomerWitnessID   string                `json:"customerWitnessID"`
	ValidatedBy         *string               `json:"validatedBy,omitempty"`
	ValidatedAt         *string               `json:"validatedAt,omitempty"`
	Priority            domain.TicketPriority `json:"priority"`
	Status              domain.TicketStatus   `json:"status"`
	CreatedAt           time.Time             `json:"createdAt"`
	AIAnalysis          *string               `json:"aiAnalysis,omitempty"`
}

// TicketListResponse carries the filtered collection and the loading flag.
type TicketListResponse struct {
	Tickets  []TicketResponse `json:"tickets"`
	Count    int              `json:"count"`
	Loading  bool             `json:"loading"`
	LoadedAt *time.Time       `json:"loadedAt,omitempty"`
}

// CreateTicketRequest payload. Omitted enums and support times receive the
// creation defaults.
type CreateTicketRequest struct {
	ClientName          string                `json:"clientName"`
	AnalystName         string                `json:"analystName"`
	SupportStartTime    string                `json:"supportStartTime"`
	SupportEndTime      string                `json:"supportEndTime"`
	LocationName        string                `json:"locationName"`
	TaskTicket          string                `json:"taskTicket"`
	ServiceRequest      string                `json:"serviceRequest"`
	SubjectCode         domain.SubjectCode    `json:"subjectCode"`
	AnalystAction       string                `json:"analystAction"`
	Description         string                `json:"description"`
	LigacaoDevida       bool                  `json:"ligacaoDevida"`
	UtilizouACFS        bool                  `json:"utilizouACFS"`
	OcorreuEntintamento bool                  `json:"ocorreuEntintamento"`
	TrocouPeca          bool                  `json:"trocouPeca"`
	PecaTrocada         *string               `json:"pecaTrocada"`
	CustomerWitnessName string                `json:"customerWitnessName"`
	CustomerWitnessID   string                `json:"customerWitnessID"`
	Priority            domain.TicketPriority `json:"priority"`
	Status              domain.TicketStatus   `json:"status"`
	AIAnalysis          *string               `json:"aiAnalysis"`
}

// UpdateTicketRequest is a partial update. Absent and null fields stay
// untouched; id and createdAt are not part of the shape, so a payload carrying
// them has no effect on those columns.
type UpdateTicketRequest struct {
	ClientName          *string                `json:"clientName"`
	AnalystName         *string                `json:"analystName"`
	SupportStartTime    *string                `json:"supportStartTime"`
	SupportEndTime      *string                `json:"supportEndTime"`
	LocationName        *string                `json:"locationName"`
	TaskTicket          *string                `json:"taskTicket"`
	ServiceRequest      *string                `json:"serviceRequest"`
	SubjectCode         *domain.SubjectCode    `json:"subjectCode"`
	AnalystAction       *string                `json:"analystAction"`
	Description         *string                `json:"description"`
	LigacaoDevida       *bool                  `json:"ligacaoDevida"`
	UtilizouACFS        *bool                  `json:"utilizouACFS"`
	OcorreuEntintamento *bool                  `json:"ocorreuEntintamento"`
	TrocouPeca          *bool                  `json:"trocouPeca"`
	PecaTrocada         *string                `json:"pecaTrocada"`
	TagVLDD             *bool                  `json:"tagVLDD"`
	TagNVLDD            *bool                  `json:"tagNVLDD"`
	CustomerWitnessName *string                `json:"customerWitnessName"`
	CustomerWitnessID   *string                `json:"customerWitnessID"`
	ValidatedBy         *string                `json:"validatedBy"`
	ValidatedAt         *string                `json:"validatedAt"`
	Priority            *domain.TicketPriority `json:"priority"`
	Status              *domain.TicketStatus   `json:"status"`
	AIAnalysis          *string                `json:"aiAnalysis"`
}

// ReportResponse carries the rendered attendance summary.
type ReportResponse struct {
	TicketID string `json:"ticketId"`
	Text     string `json:"text"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                  t.ID,
		ClientName:          t.ClientName,
		AnalystName:         t.AnalystName,
		SupportStartTime:    t.SupportStartTime,
		SupportEndTime:      t.SupportEndTime,
		LocationName:        t.LocationName,
		TaskTicket:          t.TaskTicket,
		ServiceRequest:      t.ServiceRequest,
		SubjectCode:         t.SubjectCode,
		AnalystAction:       t.AnalystAction,
		Description:         t.Description,
		LigacaoDevida:       t.LigacaoDevida,
		UtilizouACFS:        t.UtilizouACFS,
		OcorreuEntintamento: t.OcorreuEntintamento,
		TrocouPeca:          t.TrocouPeca,
		PecaTrocada:         t.PecaTrocada,
		TagVLDD:             t.TagVLDD,
		TagNVLDD:            t.TagNVLDD,
		CustomerWitnessName: t.CustomerWitnessName,
		CustomerWitnessID:   t.CustomerWitnessID,
		ValidatedBy:         t.ValidatedBy,
		ValidatedAt:         t.ValidatedAt,
		Priority:            t.Priority,
		Status:              t.Status,
		CreatedAt:           t.CreatedAt,
		AIAnalysis:          t.AIAnalysis,
	}
}

// NewTicketResponses maps a collection, never returning nil.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(tickets[i]))
	}
	return out
}

// ToDomain builds the draft ticket handed to the service.
func (r CreateTicketRequest) ToDomain() domain.Ticket {
	return domain.Ticket{
		ClientName:          r.ClientName,
		AnalystName:         r.AnalystName,
		SupportStartTime:    r.SupportStartTime,
		SupportEndTime:      r.SupportEndTime,
		LocationName:        r.LocationName,
		TaskTicket:          r.TaskTicket,
		ServiceRequest:      r.ServiceRequest,
		SubjectCode:         r.SubjectCode,
		AnalystAction:       r.AnalystAction,
		Description:         r.Description,
		LigacaoDevida:       r.LigacaoDevida,
		UtilizouACFS:        r.UtilizouACFS,
		OcorreuEntintamento: r.OcorreuEntintamento,
		TrocouPeca:          r.TrocouPeca,
		PecaTrocada:         r.PecaTrocada,
		CustomerWitnessName: r.CustomerWitnessName,
		CustomerWitnessID:   r.CustomerWitnessID,
		Priority:            r.Priority,
		Status:              r.Status,
		AIAnalysis:          r.AIAnalysis,
	}
}

// ToPatch converts the request into a domain patch.
func (r UpdateTicketRequest) ToPatch() domain.TicketPatch {
	return domain.TicketPatch{
		ClientName:          r.ClientName,
		AnalystName:         r.AnalystName,
		SupportStartTime:    r.SupportStartTime,
		SupportEndTime:      r.SupportEndTime,
		LocationName:        r.LocationName,
		TaskTicket:          r.TaskTicket,
		ServiceRequest:      r.ServiceRequest,
		SubjectCode:         r.SubjectCode,
		AnalystAction:       r.AnalystAction,
		Description:         r.Description,
		LigacaoDevida:       r.LigacaoDevida,
		UtilizouACFS:        r.UtilizouACFS,
		OcorreuEntintamento: r.OcorreuEntintamento,
		TrocouPeca:          r.TrocouPeca,
		PecaTrocada:         r.PecaTrocada,
		TagVLDD:             r.TagVLDD,
		TagNVLDD:            r.TagNVLDD,
		CustomerWitnessName: r.CustomerWitnessName,
		CustomerWitnessID:   r.CustomerWitnessID,
		ValidatedBy:         r.ValidatedBy,
		ValidatedAt:         r.ValidatedAt,
		Priority:            r.Priority,
		Status:              r.Status,
		AIAnalysis:          r.AIAnalysis,
	}
}
