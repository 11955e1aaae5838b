package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/diario-de-bordo/internal/classifier"
	"github.com/spec-kit/diario-de-bordo/internal/domain"
	"github.com/spec-kit/diario-de-bordo/internal/escalation"
	"github.com/spec-kit/diario-de-bordo/internal/events"
	"github.com/spec-kit/diario-de-bordo/internal/repository"
	apperrors "github.com/spec-kit/diario-de-bordo/pkg/util/errorutil"
)

var fixedNow = time.Date(2024, 6, 3, 15, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, seed ...domain.Ticket) (*TicketService, *repository.MemoryTicketRepository) {
	t.Helper()
	clock := fixedNow
	repo := repository.NewMemoryTicketRepository().WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	repo.Seed(seed...)
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Location:   time.UTC,
		Clock:      func() time.Time { return fixedNow },
	})
	return svc, repo
}

func draftTicket(priority domain.TicketPriority) domain.Ticket {
	return domain.Ticket{
		ClientName:     "Banco Central",
		AnalystName:    "João",
		LocationName:   "Agência 0001",
		TaskTicket:     "TASK-1",
		ServiceRequest: "SR-1",
		Description:    "Terminal não dispensa notas",
		AnalystAction:  "Limpeza do dispensador",
		Priority:       priority,
		Status:         domain.TicketStatusOpen,
	}
}

func validForm() escalation.ValidationForm {
	return escalation.ValidationForm{
		Tag:           escalation.TagValidated,
		WitnessName:   "Maria",
		WitnessID:     "123",
		AnalystAction: "Dispensador substituído",
	}
}

func TestEndToEndClosure(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, draftTicket(domain.TicketPriorityHigh))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	summary, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.OpenCount)
	assert.Equal(t, 1, summary.TotalCount)

	board, err := svc.EscalationBoard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, created.ID, board[0].ID)

	resolved, err := svc.CommitValidation(ctx, created.ID, validForm())
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, resolved.Status)
	assert.True(t, resolved.TagVLDD)
	assert.False(t, resolved.TagNVLDD)
	assert.Equal(t, "Maria", resolved.CustomerWitnessName)
	assert.Equal(t, "123", resolved.CustomerWitnessID)
	require.NotNil(t, resolved.ValidatedBy)
	assert.Equal(t, escalation.SystemValidator, *resolved.ValidatedBy)
	require.NotNil(t, resolved.ValidatedAt)
	assert.Equal(t, "2024-06-03T15:30:00.000Z", *resolved.ValidatedAt)

	board, err = svc.EscalationBoard(ctx)
	require.NoError(t, err)
	assert.Empty(t, board)

	// The store holds the same result after a reload.
	snap, err := svc.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Tickets, 1)
	assert.Equal(t, domain.TicketStatusResolved, snap.Tickets[0].Status)
}

func TestCreateRejectsMissingFieldsBeforeStore(t *testing.T) {
	svc, repo := newTestService(t)
	draft := draftTicket(domain.TicketPriorityLow)
	draft.ServiceRequest = " "

	_, err := svc.Create(context.Background(), draft)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Zero(t, repo.Calls(repository.OpInsert))
}

func TestCreateRejectsUnknownEnum(t *testing.T) {
	svc, repo := newTestService(t)
	draft := draftTicket("Urgente")

	_, err := svc.Create(context.Background(), draft)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Zero(t, repo.Calls(repository.OpInsert))
}

func TestCreateCannotStartResolved(t *testing.T) {
	svc, repo := newTestService(t)
	draft := draftTicket(domain.TicketPriorityLow)
	draft.Status = domain.TicketStatusResolved

	_, err := svc.Create(context.Background(), draft)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Zero(t, repo.Calls(repository.OpInsert))
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	draft := draftTicket("")
	draft.Status = ""

	created, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityMedium, created.Priority)
	assert.Equal(t, domain.TicketStatusOpen, created.Status)
	assert.Equal(t, domain.SubjectCode1200, created.SubjectCode)
	assert.Equal(t, "2024-06-03T15:30", created.SupportStartTime)
}

func TestCreateFailureLeavesCollection(t *testing.T) {
	existing := domain.Ticket{ID: "t-1", ClientName: "Antigo", Status: domain.TicketStatusOpen, CreatedAt: fixedNow}
	svc, repo := newTestService(t, existing)
	ctx := context.Background()

	_, err := svc.Tickets(ctx, "")
	require.NoError(t, err)

	repo.FailWith(repository.OpInsert, apperrors.NewPermissionError(errors.New("rls")))
	_, err = svc.Create(ctx, draftTicket(domain.TicketPriorityLow))
	assert.True(t, apperrors.HasCode(err, apperrors.CodePermission))

	snap, err := svc.Tickets(ctx, "")
	require.NoError(t, err)
	require.Len(t, snap.Tickets, 1)
	assert.Equal(t, "t-1", snap.Tickets[0].ID)
	assert.False(t, snap.Loading)
	assert.Equal(t, 1, repo.Calls(repository.OpList))
}

func TestListFailureKeepsStateUntilRefresh(t *testing.T) {
	existing := domain.Ticket{ID: "t-1", Status: domain.TicketStatusOpen, CreatedAt: fixedNow}
	svc, repo := newTestService(t, existing)
	ctx := context.Background()

	_, err := svc.Tickets(ctx, "")
	require.NoError(t, err)

	schemaErr := apperrors.NewSchemaError("tickets", errors.New("42P01"))
	repo.FailWith(repository.OpList, schemaErr)
	_, err = svc.Refresh(ctx)
	assert.ErrorIs(t, err, schemaErr)

	_, err = svc.Dashboard(ctx)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSchema))

	repo.FailWith(repository.OpList, nil)
	snap, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Tickets, 1)
}

func TestUpdateAppliesPatch(t *testing.T) {
	existing := domain.Ticket{ID: "t-1", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, CreatedAt: fixedNow}
	svc, _ := newTestService(t, existing)
	ctx := context.Background()

	updated, err := svc.Update(ctx, "t-1", domain.TicketPatch{
		Status:   domain.Ptr(domain.TicketStatusEscalated),
		Priority: domain.Ptr(domain.TicketPriorityCritical),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusEscalated, updated.Status)
	assert.Equal(t, fixedNow, updated.CreatedAt)

	board, err := svc.EscalationBoard(ctx)
	require.NoError(t, err)
	assert.Len(t, board, 1)
}

func TestUpdateRejectsClosureFields(t *testing.T) {
	existing := domain.Ticket{ID: "t-1", Status: domain.TicketStatusOpen, CreatedAt: fixedNow}
	svc, repo := newTestService(t, existing)
	ctx := context.Background()

	cases := []domain.TicketPatch{
		{Status: domain.Ptr(domain.TicketStatusResolved)},
		{ValidatedBy: domain.Ptr("eu")},
		{ValidatedAt: domain.Ptr("2024-01-01T00:00:00.000Z")},
	}
	for _, patch := range cases {
		_, err := svc.Update(ctx, "t-1", patch)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	}
	_, err := svc.Update(ctx, "t-1", domain.TicketPatch{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	_, err = svc.Update(ctx, "t-1", domain.TicketPatch{Status: domain.Ptr(domain.TicketStatus("Fechado"))})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Zero(t, repo.Calls(repository.OpUpdate))
}

func TestUpdateUnknownTicket(t *testing.T) {
	svc, repo := newTestService(t)
	_, err := svc.Update(context.Background(), "nope", domain.TicketPatch{Description: domain.Ptr("x")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.Zero(t, repo.Calls(repository.OpUpdate))
}

func TestUpdateFailureRevertsToStore(t *testing.T) {
	existing := domain.Ticket{ID: "t-1", Status: domain.TicketStatusOpen, CreatedAt: fixedNow}
	svc, repo := newTestService(t, existing)
	ctx := context.Background()
	_, err := svc.Tickets(ctx, "")
	require.NoError(t, err)

	connErr := apperrors.NewConnectionError(errors.New("reset"))
	repo.FailWith(repository.OpUpdate, connErr)
	_, err = svc.Update(ctx, "t-1", domain.TicketPatch{Status: domain.Ptr(domain.TicketStatusEscalated)})
	assert.ErrorIs(t, err, connErr)
	assert.Equal(t, 2, repo.Calls(repository.OpList))

	got, err := svc.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, got.Status)
}

func TestUpdateTimeoutReloadsWithoutLatchingError(t *testing.T) {
	existing := domain.Ticket{ID: "t-1", Status: domain.TicketStatusOpen, CreatedAt: fixedNow}
	svc, repo := newTestService(t, existing)
	_, err := svc.Tickets(context.Background(), "")
	require.NoError(t, err)

	repo.Delay(repository.OpUpdate, 300*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = svc.Update(ctx, "t-1", domain.TicketPatch{Status: domain.Ptr(domain.TicketStatusEscalated)})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConnection))
	assert.Equal(t, 2, repo.Calls(repository.OpList))

	snap, err := svc.Tickets(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, snap.Tickets, 1)
	assert.Equal(t, domain.TicketStatusOpen, snap.Tickets[0].Status)

	_, err = svc.Dashboard(context.Background())
	assert.NoError(t, err)
}

func TestUpdateFailureWithFailedReloadRestoresSnapshot(t *testing.T) {
	existing := domain.Ticket{ID: "t-1", Status: domain.TicketStatusOpen, CreatedAt: fixedNow}
	svc, repo := newTestService(t, existing)
	ctx := context.Background()
	_, err := svc.Tickets(ctx, "")
	require.NoError(t, err)

	repo.FailWith(repository.OpUpdate, apperrors.NewConnectionError(errors.New("reset")))
	repo.FailWith(repository.OpList, apperrors.NewConnectionError(errors.New("down")))
	_, err = svc.Update(ctx, "t-1", domain.TicketPatch{Status: domain.Ptr(domain.TicketStatusEscalated)})
	assert.Error(t, err)

	repo.FailWith(repository.OpList, nil)
	svc.mu.RLock()
	status := svc.items[0].Status
	svc.mu.RUnlock()
	assert.Equal(t, domain.TicketStatusOpen, status)
}

func TestCommitBlockedWithoutWitness(t *testing.T) {
	existing := domain.Ticket{ID: "t-1", Priority: domain.TicketPriorityCritical, Status: domain.TicketStatusOpen, CreatedAt: fixedNow}
	svc, repo := newTestService(t, existing)
	ctx := context.Background()
	before, err := svc.Get(ctx, "t-1")
	require.NoError(t, err)

	form := validForm()
	form.WitnessName = ""
	_, err = svc.CommitValidation(ctx, "t-1", form)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	form = validForm()
	form.WitnessID = "   "
	_, err = svc.CommitValidation(ctx, "t-1", form)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	assert.Zero(t, repo.Calls(repository.OpUpdate))
	after, err := svc.Get(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCommitIsIdempotentExceptTimestamp(t *testing.T) {
	existing := domain.Ticket{ID: "t-1", Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusEscalated, CreatedAt: fixedNow}
	svc, _ := newTestService(t, existing)
	ctx := context.Background()
	now := fixedNow
	svc.clock = func() time.Time {
		now = now.Add(time.Minute)
		return now
	}

	first, err := svc.CommitValidation(ctx, "t-1", validForm())
	require.NoError(t, err)
	second, err := svc.CommitValidation(ctx, "t-1", validForm())
	require.NoError(t, err)

	assert.NotEqual(t, *first.ValidatedAt, *second.ValidatedAt)
	first.ValidatedAt, second.ValidatedAt = nil, nil
	assert.Equal(t, first, second)
}

func TestCommitNotValidatedTag(t *testing.T) {
	existing := domain.Ticket{ID: "t-1", Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusOpen, TagVLDD: true, CreatedAt: fixedNow}
	svc, _ := newTestService(t, existing)

	form := validForm()
	form.Tag = escalation.TagNotValidated
	got, err := svc.CommitValidation(context.Background(), "t-1", form)
	require.NoError(t, err)
	assert.False(t, got.TagVLDD)
	assert.True(t, got.TagNVLDD)

	form.Tag = "#OUTRO#"
	_, err = svc.CommitValidation(context.Background(), "t-1", form)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestOpenValidationAndSummary(t *testing.T) {
	existing := domain.Ticket{
		ID: "t-1", ClientName: "Banco X", LocationName: "Loja", TaskTicket: "T-7",
		Description: "Falha", AnalystAction: "Reset", TagNVLDD: true,
		Priority: domain.TicketPriorityCritical, Status: domain.TicketStatusOpen, CreatedAt: fixedNow,
	}
	svc, _ := newTestService(t, existing)
	ctx := context.Background()

	ticket, form, err := svc.OpenValidation(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "Banco X", ticket.ClientName)
	assert.Equal(t, escalation.TagNotValidated, form.Tag)
	assert.Equal(t, "Reset", form.AnalystAction)

	text, err := svc.ValidationSummary(ctx, "t-1", form)
	require.NoError(t, err)
	assert.Contains(t, text, "STATUS: #NLVDD#")
	assert.Contains(t, text, "CLIENTE: Banco X")

	_, _, err = svc.OpenValidation(ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestTicketsSearch(t *testing.T) {
	svc, _ := newTestService(t,
		domain.Ticket{ID: "a", ClientName: "Banco Azul", CreatedAt: fixedNow},
		domain.Ticket{ID: "b", ClientName: "Mercado", TaskTicket: "TSK-AZ", CreatedAt: fixedNow.Add(-time.Hour)},
		domain.Ticket{ID: "c", ClientName: "Loja", CreatedAt: fixedNow.Add(-2 * time.Hour)},
	)

	snap, err := svc.Tickets(context.Background(), "az")
	require.NoError(t, err)
	require.Len(t, snap.Tickets, 2)
	assert.Equal(t, "a", snap.Tickets[0].ID)
	assert.Equal(t, "b", snap.Tickets[1].ID)
}

func TestClassifyDegradesAndValidates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.Classify(ctx, "sem comunicação", "Banco")
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, classifier.UnavailableAction, result.AnalystAction)

	_, err = svc.Classify(ctx, "  ", "Banco")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestReport(t *testing.T) {
	svc, _ := newTestService(t, domain.Ticket{ID: "t-1", ClientName: "Banco", CreatedAt: fixedNow})
	text, err := svc.Report(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Contains(t, text, "Banco")
}

func TestEventsPublished(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var seen []events.EventType
	record := func(_ context.Context, e events.Event) error {
		seen = append(seen, e.Type)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketCreated, record)
	dispatcher.Subscribe(events.EventTicketUpdated, record)
	dispatcher.Subscribe(events.EventTicketValidated, record)

	svc := NewTicketService(TicketDependencies{
		TicketRepo: repository.NewMemoryTicketRepository(),
		Dispatcher: dispatcher,
		Clock:      func() time.Time { return fixedNow },
	})
	ctx := context.Background()

	created, err := svc.Create(ctx, draftTicket(domain.TicketPriorityHigh))
	require.NoError(t, err)
	_, err = svc.Update(ctx, created.ID, domain.TicketPatch{Status: domain.Ptr(domain.TicketStatusInProgress)})
	require.NoError(t, err)
	_, err = svc.CommitValidation(ctx, created.ID, validForm())
	require.NoError(t, err)

	assert.Equal(t, []events.EventType{events.EventTicketCreated, events.EventTicketUpdated, events.EventTicketValidated}, seen)
}

func TestCreateOverSupabaseCarriesStoreID(t *testing.T) {
	const storeID = "3f6c2d9a-5b1e-4a7f-9c2d-0000000000aa"
	row := `{"id":"` + storeID + `","clientName":"Banco Central","priority":"Alta","status":"Aberto",
		"subjectCode":"1200 - Duvida técnica","createdAt":"2024-06-03T15:30:00+00:00"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
		}
		_, _ = io.WriteString(w, "["+row+"]")
	}))
	defer server.Close()

	dispatcher := events.NewInMemoryDispatcher()
	var createdEvent events.Event
	dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, e events.Event) error {
		createdEvent = e
		return nil
	})

	client := resty.New().SetBaseURL(server.URL + "/rest/v1")
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repository.NewSupabaseTicketRepository(client, "tickets"),
		Dispatcher: dispatcher,
		Location:   time.UTC,
		Clock:      func() time.Time { return fixedNow },
	})

	created, err := svc.Create(context.Background(), draftTicket(domain.TicketPriorityHigh))
	require.NoError(t, err)
	assert.Equal(t, storeID, created.ID)
	assert.Equal(t, fixedNow, created.CreatedAt.UTC())
	assert.Equal(t, storeID, createdEvent.TicketID)
}
