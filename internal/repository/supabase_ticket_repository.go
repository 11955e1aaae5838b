package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/spec-kit/diario-de-bordo/internal/domain"
	apperrors "github.com/spec-kit/diario-de-bordo/pkg/util/errorutil"
)

// PostgREST error codes for a missing relation or a rejected JWT/role.
const (
	postgrestSchemaCacheMissing = "PGRST205"
	postgrestSchemaNotExposed   = "PGRST106"
	postgrestJWTInvalid         = "PGRST301"
	postgrestAnonDisabled       = "PGRST302"
)

// ticketRow is the JSON shape of a row as PostgREST returns it.
type ticketRow struct {
	ID                  string    `json:"id,omitempty"`
	ClientName          string    `json:"clientName"`
	AnalystName         string    `json:"analystName"`
	SupportStartTime    string    `json:"supportStartTime"`
	SupportEndTime      string    `json:"supportEndTime"`
	LocationName        string    `json:"locationName"`
	TaskTicket          string    `json:"taskTicket"`
	ServiceRequest      string    `json:"serviceRequest"`
	SubjectCode         string    `json:"subjectCode"`
	AnalystAction       string    `json:"analystAction"`
	Description         string    `json:"description"`
	LigacaoDevida       bool      `json:"ligacaoDevida"`
	UtilizouACFS        bool      `json:"utilizouACFS"`
	OcorreuEntintamento bool      `json:"ocorreuEntintamento"`
	TrocouPeca          bool      `json:"trocouPeca"`
	PecaTrocada         *string   `json:"pecaTrocada"`
	TagVLDD             bool      `json:"tagVLDD"`
	TagNVLDD            bool      `json:"tagNVLDD"`
	CustomerWitnessName string    `json:"customerWitnessName"`
	CustomerWitnessID   string    `json:"customerWitnessID"`
	ValidatedBy         *string   `json:"validatedBy"`
	ValidatedAt         *string   `json:"validatedAt"`
	Priority            string    `json:"priority"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
	AIAnalysis          *string   `json:"aiAnalysis"`
}

// insertRow omits id and createdAt so the table defaults assign them.
type insertRow struct {
	ClientName          string  `json:"clientName"`
	AnalystName         string  `json:"analystName"`
	SupportStartTime    string  `json:"supportStartTime"`
	SupportEndTime      string  `json:"supportEndTime"`
	LocationName        string  `json:"locationName"`
	TaskTicket          string  `json:"taskTicket"`
	ServiceRequest      string  `json:"serviceRequest"`
	SubjectCode         string  `json:"subjectCode"`
	AnalystAction       string  `json:"analystAction"`
	Description         string  `json:"description"`
	LigacaoDevida       bool    `json:"ligacaoDevida"`
	UtilizouACFS        bool    `json:"utilizouACFS"`
	OcorreuEntintamento bool    `json:"ocorreuEntintamento"`
	TrocouPeca          bool    `json:"trocouPeca"`
	PecaTrocada         *string `json:"pecaTrocada,omitempty"`
	TagVLDD             bool    `json:"tagVLDD"`
	TagNVLDD            bool    `json:"tagNVLDD"`
	CustomerWitnessName string  `json:"customerWitnessName"`
	CustomerWitnessID   string  `json:"customerWitnessID"`
	ValidatedBy         *string `json:"validatedBy,omitempty"`
	ValidatedAt         *string `json:"validatedAt,omitempty"`
	Priority            string  `json:"priority"`
	Status              string  `json:"status"`
	AIAnalysis          *string `json:"aiAnalysis,omitempty"`
}

// postgrestError is the error body PostgREST sends with 4xx/5xx responses.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *postgrestError) Error() string {
	return fmt.Sprintf("postgrest %s: %s", e.Code, e.Message)
}

type supabaseTicketRepository struct {
	client *resty.Client
	table  string
}

// NewSupabaseTicketRepository builds a repository over a Supabase PostgREST
// client whose base URL already points at /rest/v1.
func NewSupabaseTicketRepository(client *resty.Client, table string) TicketRepository {
	return &supabaseTicketRepository{client: client, table: table}
}

func (r *supabaseTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	var rows []ticketRow
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", domain.FieldCreatedAt+".desc").
		SetResult(&rows).
		SetError(&postgrestError{}).
		Get("/" + r.table)
	if err := r.classify(resp, err); err != nil {
		return nil, err
	}

	tickets := make([]domain.Ticket, 0, len(rows))
	for _, row := range rows {
		tickets = append(tickets, row.toDomain())
	}
	return tickets, nil
}

func (r *supabaseTicketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	var created []ticketRow
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody([]insertRow{newInsertRow(ticket)}).
		SetResult(&created).
		SetError(&postgrestError{}).
		Post("/" + r.table)
	if err := r.classify(resp, err); err != nil {
		return err
	}
	if len(created) == 0 || created[0].ID == "" {
		return apperrors.NewInternalError(errors.New("postgrest insert returned no row"))
	}
	ticket.ID = created[0].ID
	ticket.CreatedAt = created[0].CreatedAt
	return nil
}

func (r *supabaseTicketRepository) Update(ctx context.Context, id string, patch domain.TicketPatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}
	var updated []ticketRow
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam(domain.FieldID, "eq."+id).
		SetBody(fields).
		SetResult(&updated).
		SetError(&postgrestError{}).
		Patch("/" + r.table)
	if err := r.classify(resp, err); err != nil {
		return err
	}
	if len(updated) == 0 {
		return apperrors.NewNotFound("chamado", map[string]any{"id": id})
	}
	return nil
}

// classify maps transport failures and PostgREST error bodies to the
// errorutil taxonomy.
func (r *supabaseTicketRepository) classify(resp *resty.Response, err error) error {
	if err != nil {
		return apperrors.NewConnectionError(err)
	}
	if !resp.IsError() {
		return nil
	}

	body, _ := resp.Error().(*postgrestError)
	if body == nil {
		body = &postgrestError{Message: resp.Status()}
	}
	switch body.Code {
	case sqlStateUndefinedTable, postgrestSchemaCacheMissing, postgrestSchemaNotExposed:
		return apperrors.NewSchemaError(r.table, body)
	case sqlStateInsufficientPrivil, postgrestJWTInvalid, postgrestAnonDisabled:
		return apperrors.NewPermissionError(body)
	}
	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.NewPermissionError(body)
	case http.StatusNotFound:
		return apperrors.NewSchemaError(r.table, body)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return apperrors.NewConnectionError(body)
	}
	return apperrors.NewInternalError(body)
}

func (row ticketRow) toDomain() domain.Ticket {
	return domain.Ticket{
		ID:                  row.ID,
		ClientName:          row.ClientName,
		AnalystName:         row.AnalystName,
		SupportStartTime:    row.SupportStartTime,
		SupportEndTime:      row.SupportEndTime,
		LocationName:        row.LocationName,
		TaskTicket:          row.TaskTicket,
		ServiceRequest:      row.ServiceRequest,
		SubjectCode:         domain.SubjectCode(row.SubjectCode),
		AnalystAction:       row.AnalystAction,
		Description:         row.Description,
		LigacaoDevida:       row.LigacaoDevida,
		UtilizouACFS:        row.UtilizouACFS,
		OcorreuEntintamento: row.OcorreuEntintamento,
		TrocouPeca:          row.TrocouPeca,
		PecaTrocada:         row.PecaTrocada,
		TagVLDD:             row.TagVLDD,
		TagNVLDD:            row.TagNVLDD,
		CustomerWitnessName: row.CustomerWitnessName,
		CustomerWitnessID:   row.CustomerWitnessID,
		ValidatedBy:         row.ValidatedBy,
		ValidatedAt:         row.ValidatedAt,
		Priority:            domain.TicketPriority(row.Priority),
		Status:              domain.TicketStatus(row.Status),
		CreatedAt:           row.CreatedAt,
		AIAnalysis:          row.AIAnalysis,
	}
}

func newInsertRow(t *domain.Ticket) insertRow {
	return insertRow{
		ClientName:          t.ClientName,
		AnalystName:         t.AnalystName,
		SupportStartTime:    t.SupportStartTime,
		SupportEndTime:      t.SupportEndTime,
		LocationName:        t.LocationName,
		TaskTicket:          t.TaskTicket,
		ServiceRequest:      t.ServiceRequest,
		SubjectCode:         string(t.SubjectCode),
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
		Priority:            string(t.Priority),
		Status:              string(t.Status),
		AIAnalysis:          t.AIAnalysis,
	}
}
