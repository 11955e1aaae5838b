package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/diario-de-bordo/internal/domain"
	apperrors "github.com/spec-kit/diario-de-bordo/pkg/util/errorutil"
)

// pgxQuerier is the subset of *pgxpool.Pool used by the repository.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// selectColumns lists the columns in scan order.
var selectColumns = []string{
	domain.FieldID,
	domain.FieldClientName,
	domain.FieldAnalystName,
	domain.FieldSupportStartTime,
	domain.FieldSupportEndTime,
	domain.FieldLocationName,
	domain.FieldTaskTicket,
	domain.FieldServiceRequest,
	domain.FieldSubjectCode,
	domain.FieldAnalystAction,
	domain.FieldDescription,
	domain.FieldLigacaoDevida,
	domain.FieldUtilizouACFS,
	domain.FieldOcorreuEntintamento,
	domain.FieldTrocouPeca,
	domain.FieldPecaTrocada,
	domain.FieldTagVLDD,
	domain.FieldTagNVLDD,
	domain.FieldCustomerWitnessName,
	domain.FieldCustomerWitnessID,
	domain.FieldValidatedBy,
	domain.FieldValidatedAt,
	domain.FieldPriority,
	domain.FieldStatus,
	domain.FieldAIAnalysis,
	domain.FieldCreatedAt,
}

// insertColumns are the columns written on insert; id and createdAt come
// from table defaults.
var insertColumns = selectColumns[1 : len(selectColumns)-1]

type postgresTicketRepository struct {
	pool  pgxQuerier
	table string
}

// NewPostgresTicketRepository instantiates the pgx-backed repository.
func NewPostgresTicketRepository(pool pgxQuerier, table string) TicketRepository {
	return &postgresTicketRepository{pool: pool, table: table}
}

func (r *postgresTicketRepository) tableIdent() string {
	return pgx.Identifier{r.table}.Sanitize()
}

func (r *postgresTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s DESC`,
		selectList(), r.tableIdent(), quote(domain.FieldCreatedAt))

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, classifyPostgresError(r.table, err)
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, classifyPostgresError(r.table, err)
	}
	return tickets, nil
}

func (r *postgresTicketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	placeholders := make([]string, len(insertColumns))
	quoted := make([]string, len(insertColumns))
	for i, column := range insertColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		quoted[i] = quote(column)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s::text, %s`,
		r.tableIdent(), strings.Join(quoted, ", "), strings.Join(placeholders, ", "),
		quote(domain.FieldID), quote(domain.FieldCreatedAt))

	err := r.pool.QueryRow(ctx, query,
		ticket.ClientName,
		ticket.AnalystName,
		ticket.SupportStartTime,
		ticket.SupportEndTime,
		ticket.LocationName,
		ticket.TaskTicket,
		ticket.ServiceRequest,
		string(ticket.SubjectCode),
		ticket.AnalystAction,
		ticket.Description,
		ticket.LigacaoDevida,
		ticket.UtilizouACFS,
		ticket.OcorreuEntintamento,
		ticket.TrocouPeca,
		ticket.PecaTrocada,
		ticket.TagVLDD,
		ticket.TagNVLDD,
		ticket.CustomerWitnessName,
		ticket.CustomerWitnessID,
		ticket.ValidatedBy,
		ticket.ValidatedAt,
		string(ticket.Priority),
		string(ticket.Status),
		ticket.AIAnalysis,
	).Scan(&ticket.ID, &ticket.CreatedAt)
	return classifyPostgresError(r.table, err)
}

func (r *postgresTicketRepository) Update(ctx context.Context, id string, patch domain.TicketPatch) error {
	query, args := buildUpdate(r.tableIdent(), id, patch)
	if query == "" {
		return nil
	}
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return classifyPostgresError(r.table, err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("chamado", map[string]any{"id": id})
	}
	return nil
}

// buildUpdate renders the UPDATE statement for the set fields of patch, in
// column-name order. It returns an empty query when nothing is set.
func buildUpdate(table, id string, patch domain.TicketPatch) (string, []any) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return "", nil
	}
	columns := make([]string, 0, len(fields))
	for column := range fields {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	sets := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+1)
	for _, column := range columns {
		args = append(args, fields[column])
		sets = append(sets, fmt.Sprintf("%s=$%d", quote(column), len(args)))
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s::text=$%d`,
		table, strings.Join(sets, ", "), quote(domain.FieldID), len(args))
	return query, args
}

func selectList() string {
	quoted := make([]string, len(selectColumns))
	for i, column := range selectColumns {
		quoted[i] = quote(column)
		if column == domain.FieldID {
			quoted[i] += "::text"
		}
	}
	return strings.Join(quoted, ", ")
}

func quote(column string) string {
	return pgx.Identifier{column}.Sanitize()
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := make([]domain.Ticket, 0)
	for rows.Next() {
		var (
			ticket   domain.Ticket
			subject  string
			priority string
			status   string
		)
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ClientName,
			&ticket.AnalystName,
			&ticket.SupportStartTime,
			&ticket.SupportEndTime,
			&ticket.LocationName,
			&ticket.TaskTicket,
			&ticket.ServiceRequest,
			&subject,
			&ticket.AnalystAction,
			&ticket.Description,
			&ticket.LigacaoDevida,
			&ticket.UtilizouACFS,
			&ticket.OcorreuEntintamento,
			&ticket.TrocouPeca,
			&ticket.PecaTrocada,
			&ticket.TagVLDD,
			&ticket.TagNVLDD,
			&ticket.CustomerWitnessName,
			&ticket.CustomerWitnessID,
			&ticket.ValidatedBy,
			&ticket.ValidatedAt,
			&priority,
			&status,
			&ticket.AIAnalysis,
			&ticket.CreatedAt,
		); err != nil {
			return nil, err
		}
		ticket.SubjectCode = domain.SubjectCode(subject)
		ticket.Priority = domain.TicketPriority(priority)
		ticket.Status = domain.TicketStatus(status)
		result = append(result, ticket)
	}
	return result, rows.Err()
}
