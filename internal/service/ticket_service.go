package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/diario-de-bordo/internal/classifier"
	"github.com/spec-kit/diario-de-bordo/internal/dashboard"
	"github.com/spec-kit/diario-de-bordo/internal/domain"
	"github.com/spec-kit/diario-de-bordo/internal/escalation"
	"github.com/spec-kit/diario-de-bordo/internal/events"
	"github.com/spec-kit/diario-de-bordo/internal/report"
	"github.com/spec-kit/diario-de-bordo/internal/repository"
	apperrors "github.com/spec-kit/diario-de-bordo/pkg/util/errorutil"
)

// reloadTimeout bounds a compensating reload run after a failed write.
const reloadTimeout = 10 * time.Second

// TicketService owns the ticket collection. Every mutation goes through
// Refresh, Create, Update or CommitValidation; reads work on the local copy.
type TicketService struct {
	tickets    repository.TicketRepository
	classifier classifier.Classifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
	location   *time.Location
	clock      func() time.Time

	// op serialises store round-trips so list/create/update never interleave.
	op sync.Mutex

	mu        sync.RWMutex
	items     []domain.Ticket
	loaded    bool
	loading   bool
	lastError error
	loadedAt  time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Classifier classifier.Classifier
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Location decides what "today" means on the dashboard. Defaults to time.Local.
	Location *time.Location
	Clock    func() time.Time
}

// Snapshot is a consistent view of the collection.
type Snapshot struct {
	Tickets  []domain.Ticket
	Loading  bool
	LoadedAt time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:    deps.TicketRepo,
		classifier: deps.Classifier,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		location:   deps.Location,
		clock:      deps.Clock,
	}
	if s.classifier == nil {
		s.classifier = classifier.NoopClassifier{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// Refresh reloads the whole collection from the store. On failure the prior
// collection is kept and the error is remembered until the next successful
// load.
func (s *TicketService) Refresh(ctx context.Context) (Snapshot, error) {
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.refreshLocked(ctx); err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(""), nil
}

// Tickets returns the collection filtered by search. The first call loads
// from the store; after a failed load every read reports that failure until
// a refresh succeeds.
func (s *TicketService) Tickets(ctx context.Context, search string) (Snapshot, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(search), nil
}

// Get returns one ticket from the local collection.
func (s *TicketService) Get(ctx context.Context, id string) (domain.Ticket, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Ticket{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Ticket{}, ticketNotFound(id)
	}
	return s.items[idx].Clone(), nil
}

// Create validates draft, applies the creation defaults, inserts it and
// reloads the collection. A failed insert leaves the collection untouched.
func (s *TicketService) Create(ctx context.Context, draft domain.Ticket) (domain.Ticket, error) {
	if missing := draft.MissingRequiredFields(); len(missing) > 0 {
		return domain.Ticket{}, apperrors.NewValidationError("campos obrigatórios não preenchidos", map[string]any{"fields": missing})
	}
	if err := validateDraftEnums(draft); err != nil {
		return domain.Ticket{}, err
	}
	if draft.IsResolved() {
		return domain.Ticket{}, apperrors.NewValidationError("chamados só podem ser resolvidos pela validação de encerramento", map[string]any{
			"fields": []string{domain.FieldStatus},
		})
	}
	ticket := domain.NewTicket(draft, s.now())

	s.op.Lock()
	defer s.op.Unlock()

	s.setLoading(true)
	if err := s.tickets.Insert(ctx, &ticket); err != nil {
		s.setLoading(false)
		s.logger.Warn("ticket insert failed", zap.Error(err))
		return domain.Ticket{}, err
	}
	reloadCtx, cancel := reloadContext(ctx)
	defer cancel()
	if err := s.refreshLocked(reloadCtx); err != nil {
		s.logger.Warn("reload after create failed", zap.Error(err))
	}

	s.publishEvent(ctx, events.New(events.EventTicketCreated, ticket.ID, events.TicketCreatedPayload{
		ClientName:  ticket.ClientName,
		TaskTicket:  ticket.TaskTicket,
		SubjectCode: ticket.SubjectCode,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
	}))
	return ticket, nil
}

// Update applies a generic partial update. Resolving a ticket and writing the
// closure audit fields are reserved for CommitValidation.
func (s *TicketService) Update(ctx context.Context, id string, patch domain.TicketPatch) (domain.Ticket, error) {
	if patch.IsEmpty() {
		return domain.Ticket{}, apperrors.NewValidationError("nenhum campo para atualizar", nil)
	}
	if patch.TouchesClosureFields() {
		return domain.Ticket{}, apperrors.NewValidationError("chamados só podem ser resolvidos pela validação de encerramento", map[string]any{
			"fields": closureFieldsIn(patch),
		})
	}
	if err := validatePatchEnums(patch); err != nil {
		return domain.Ticket{}, err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Ticket{}, err
	}

	s.op.Lock()
	defer s.op.Unlock()

	before, after, err := s.applyRemote(ctx, id, patch)
	if err != nil {
		return domain.Ticket{}, err
	}

	fields := make([]string, 0)
	for name := range patch.Fields() {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	s.publishEvent(ctx, events.New(events.EventTicketUpdated, id, events.TicketUpdatedPayload{
		Fields:    fields,
		OldStatus: before.Status,
		NewStatus: after.Status,
	}))
	return after, nil
}

// Dashboard computes the aggregates over the current collection.
func (s *TicketService) Dashboard(ctx context.Context) (dashboard.Summary, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return dashboard.Summary{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dashboard.Build(s.items, s.now(), dashboard.DefaultRecentLimit), nil
}

// EscalationBoard returns the unresolved high-urgency or escalated tickets.
func (s *TicketService) EscalationBoard(ctx context.Context) ([]domain.Ticket, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	board := escalation.Board(s.items)
	for i := range board {
		board[i] = board[i].Clone()
	}
	return board, nil
}

// OpenValidation seeds a closure form from the ticket's current data.
func (s *TicketService) OpenValidation(ctx context.Context, id string) (domain.Ticket, escalation.ValidationForm, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return domain.Ticket{}, escalation.ValidationForm{}, err
	}
	return ticket, escalation.NewValidationForm(ticket), nil
}

// ValidationSummary renders the audit text for a form without committing it.
func (s *TicketService) ValidationSummary(ctx context.Context, id string, form escalation.ValidationForm) (string, error) {
	if !form.Tag.Valid() {
		return "", invalidTag(form.Tag)
	}
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return escalation.Summary(ticket, form), nil
}

// CommitValidation resolves the ticket with the closure form. It does nothing
// and touches no store when the witness data is incomplete.
func (s *TicketService) CommitValidation(ctx context.Context, id string, form escalation.ValidationForm) (domain.Ticket, error) {
	if !form.CanCommit() {
		return domain.Ticket{}, apperrors.NewValidationError("nome e matrícula da testemunha são obrigatórios", map[string]any{
			"fields": []string{domain.FieldCustomerWitnessName, domain.FieldCustomerWitnessID},
		})
	}
	if !form.Tag.Valid() {
		return domain.Ticket{}, invalidTag(form.Tag)
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Ticket{}, err
	}

	patch := escalation.ClosurePatch(form, s.clock())

	s.op.Lock()
	defer s.op.Unlock()

	_, after, err := s.applyRemote(ctx, id, patch)
	if err != nil {
		return domain.Ticket{}, err
	}

	s.publishEvent(ctx, events.New(events.EventTicketValidated, id, events.TicketValidatedPayload{
		Tag:         string(form.Tag),
		WitnessName: form.WitnessName,
		WitnessID:   form.WitnessID,
		ValidatedAt: *patch.ValidatedAt,
	}))
	return after, nil
}

// Classify runs the AI classifier. It never fails on AI errors; only a blank
// description is rejected.
func (s *TicketService) Classify(ctx context.Context, description, clientName string) (classifier.Classification, error) {
	if strings.TrimSpace(description) == "" {
		return classifier.Classification{}, apperrors.NewValidationError("descrição é obrigatória para a análise", map[string]any{
			"fields": []string{domain.FieldDescription},
		})
	}
	return s.classifier.Classify(ctx, description, clientName), nil
}

// Report renders the attendance summary of a ticket.
func (s *TicketService) Report(ctx context.Context, id string) (string, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return report.Attendance(ticket), nil
}

// applyRemote performs the optimistic two-phase update. The patch is applied
// locally first; if the store rejects it the collection is reloaded, and if
// that reload fails too the pre-patch collection is restored. Caller holds op.
func (s *TicketService) applyRemote(ctx context.Context, id string, patch domain.TicketPatch) (domain.Ticket, domain.Ticket, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Ticket{}, domain.Ticket{}, ticketNotFound(id)
	}
	previous := cloneAll(s.items)
	before := s.items[idx].Clone()
	s.items[idx].Apply(patch)
	after := s.items[idx].Clone()
	s.mu.Unlock()

	if err := s.tickets.Update(ctx, id, patch); err != nil {
		s.logger.Warn("ticket update failed; reloading", zap.String("ticket_id", id), zap.Error(err))
		s.mu.Lock()
		s.items = previous
		s.mu.Unlock()
		reloadCtx, cancel := reloadContext(ctx)
		defer cancel()
		if reloadErr := s.refreshLocked(reloadCtx); reloadErr != nil {
			s.logger.Warn("reload after failed update failed; kept previous state", zap.Error(reloadErr))
		}
		return domain.Ticket{}, domain.Ticket{}, err
	}
	return before, after, nil
}

func (s *TicketService) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded, lastErr := s.loaded, s.lastError
	s.mu.RUnlock()
	if lastErr != nil {
		return lastErr
	}
	if loaded {
		return nil
	}

	s.op.Lock()
	defer s.op.Unlock()
	s.mu.RLock()
	loaded, lastErr = s.loaded, s.lastError
	s.mu.RUnlock()
	if lastErr != nil {
		return lastErr
	}
	if loaded {
		return nil
	}
	return s.refreshLocked(ctx)
}

// refreshLocked lists from the store. Caller holds op.
func (s *TicketService) refreshLocked(ctx context.Context) error {
	s.setLoading(true)
	tickets, err := s.tickets.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastError = err
		s.logger.Warn("ticket list failed", zap.Error(err))
		return err
	}
	s.items = tickets
	s.loaded = true
	s.lastError = nil
	s.loadedAt = s.clock()
	return nil
}

func (s *TicketService) snapshot(search string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filtered := dashboard.Filter(s.items, search)
	for i := range filtered {
		filtered[i] = filtered[i].Clone()
	}
	return Snapshot{Tickets: filtered, Loading: s.loading, LoadedAt: s.loadedAt}
}

func (s *TicketService) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// indexOf expects mu to be held.
func (s *TicketService) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *TicketService) now() time.Time {
	return s.clock().In(s.location)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// reloadContext keeps the caller's values but not its deadline, which may be
// the reason the write failed.
func reloadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), reloadTimeout)
}

func cloneAll(tickets []domain.Ticket) []domain.Ticket {
	out := make([]domain.Ticket, len(tickets))
	for i := range tickets {
		out[i] = tickets[i].Clone()
	}
	return out
}

func ticketNotFound(id string) error {
	return apperrors.NewNotFound("chamado", map[string]any{"id": id})
}

func invalidTag(tag escalation.ValidationTag) error {
	return apperrors.NewValidationError("tag de validação inválida", map[string]any{
		"tag":     string(tag),
		"allowed": []string{string(escalation.TagValidated), string(escalation.TagNotValidated)},
	})
}

// enumCheck is one enumerated field to validate.
type enumCheck struct {
	field string
	value string
	valid bool
}

func checkEnums(checks ...enumCheck) error {
	invalid := map[string]any{}
	for _, c := range checks {
		if !c.valid {
			invalid[c.field] = c.value
		}
	}
	if len(invalid) > 0 {
		return apperrors.NewValidationError("valor fora das opções permitidas", invalid)
	}
	return nil
}

// validateDraftEnums accepts empty values, which the creation defaults fill.
func validateDraftEnums(t domain.Ticket) error {
	return checkEnums(
		enumCheck{domain.FieldSubjectCode, string(t.SubjectCode), t.SubjectCode == "" || t.SubjectCode.Valid()},
		enumCheck{domain.FieldPriority, string(t.Priority), t.Priority == "" || t.Priority.Valid()},
		enumCheck{domain.FieldStatus, string(t.Status), t.Status == "" || t.Status.Valid()},
	)
}

func validatePatchEnums(p domain.TicketPatch) error {
	var checks []enumCheck
	if p.SubjectCode != nil {
		checks = append(checks, enumCheck{domain.FieldSubjectCode, string(*p.SubjectCode), p.SubjectCode.Valid()})
	}
	if p.Priority != nil {
		checks = append(checks, enumCheck{domain.FieldPriority, string(*p.Priority), p.Priority.Valid()})
	}
	if p.Status != nil {
		checks = append(checks, enumCheck{domain.FieldStatus, string(*p.Status), p.Status.Valid()})
	}
	return checkEnums(checks...)
}

func closureFieldsIn(patch domain.TicketPatch) []string {
	var fields []string
	if patch.Status != nil && *patch.Status == domain.TicketStatusResolved {
		fields = append(fields, domain.FieldStatus)
	}
	if patch.ValidatedBy != nil {
		fields = append(fields, domain.FieldValidatedBy)
	}
	if patch.ValidatedAt != nil {
		fields = append(fields, domain.FieldValidatedAt)
	}
	return fields
}
