package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/diario-de-bordo/internal/domain"
)

func fixture(now time.Time) []domain.Ticket {
	return []domain.Ticket{
		{ID: "1", ClientName: "Banco A", TaskTicket: "TASK001", AnalystAction: "Troca de sensor", SubjectCode: domain.SubjectCode1200, Priority: domain.TicketPriorityCritical, Status: domain.TicketStatusResolved, CreatedAt: now.Add(-time.Hour)},
		{ID: "2", ClientName: "Posto B", TaskTicket: "TASK002", AnalystAction: "Reinicio", SubjectCode: domain.SubjectCode1206, Priority: domain.TicketPriorityLow, Status: domain.TicketStatusOpen, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "3", ClientName: "Mercado C", TaskTicket: "TASK003", SubjectCode: domain.SubjectCode1200, Priority: domain.TicketPriorityMedium, Status: domain.TicketStatusEscalated, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "4", ClientName: "Banco D", TaskTicket: "TASK004", SubjectCode: domain.SubjectCode1101, Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusOpen, CreatedAt: now.Add(-72 * time.Hour)},
		{ID: "5", ClientName: "Loja E", TaskTicket: "TASK005", SubjectCode: domain.SubjectCode1206, Priority: domain.TicketPriorityLow, Status: domain.TicketStatusResolved, CreatedAt: now.Add(-96 * time.Hour)},
	}
}

func TestOpenCount(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, OpenCount(fixture(now)))
	assert.Equal(t, 0, OpenCount(nil))
}

func TestEscalatedCountIncludesResolvedCritical(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	// 1 (Crítica, resolved), 3 (Escalado), 4 (Alta)
	assert.Equal(t, 3, EscalatedCount(fixture(now)))
}

func TestResolvedTodayCountUsesCreationDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, loc)
	tickets := []domain.Ticket{
		{Status: domain.TicketStatusResolved, CreatedAt: time.Date(2024, 5, 10, 3, 30, 0, 0, time.UTC)}, // 00:30 local
		{Status: domain.TicketStatusResolved, CreatedAt: time.Date(2024, 5, 10, 2, 30, 0, 0, time.UTC)}, // 23:30 previous day local
		{Status: domain.TicketStatusOpen, CreatedAt: now},
		{Status: domain.TicketStatusResolved, CreatedAt: now.AddDate(-1, 0, 0)},
		{Status: domain.TicketStatusResolved, CreatedAt: now.AddDate(0, -1, 0)},
	}
	assert.Equal(t, 1, ResolvedTodayCount(tickets, now))
}

func TestSubjectVolumeGroupsByPrefixInFirstSeenOrder(t *testing.T) {
	tickets := []domain.Ticket{
		{SubjectCode: domain.SubjectCode("1206 - Erro de HW")},
		{SubjectCode: domain.SubjectCode("1200 - Duvida técnica")},
		{SubjectCode: domain.SubjectCode("1200 - Duvida técnica")},
	}
	assert.Equal(t, []SubjectBucket{
		{Name: "1206", Count: 1},
		{Name: "1200", Count: 2},
	}, SubjectVolume(tickets))
	assert.Empty(t, SubjectVolume(nil))
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: "a", ClientName: "Banco A", TaskTicket: "T1"},
		{ID: "b", ClientName: "Posto B", TaskTicket: "T2"},
	}
	result := Filter(tickets, "banco")
	require.Len(t, result, 1)
	assert.Equal(t, "a", result[0].ID)

	assert.Len(t, Filter(tickets, ""), 2)
}

func TestFilterMatchesActionAndTask(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	tickets := fixture(now)

	byAction := Filter(tickets, "SENSOR")
	require.Len(t, byAction, 1)
	assert.Equal(t, "1", byAction[0].ID)

	byTask := Filter(tickets, "task004")
	require.Len(t, byTask, 1)
	assert.Equal(t, "4", byTask[0].ID)

	assert.Empty(t, Filter(tickets, "inexistente"))
}

func TestBuild(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	summary := Build(fixture(now), now, DefaultRecentLimit)

	assert.Equal(t, 5, summary.TotalCount)
	assert.Equal(t, 2, summary.OpenCount)
	assert.Equal(t, 3, summary.EscalatedCount)
	assert.Equal(t, 1, summary.ResolvedTodayCount)
	assert.Len(t, summary.SubjectVolume, 3)
	require.Len(t, summary.Recent, 4)
	assert.Equal(t, "1", summary.Recent[0].ID)

	small := Build(fixture(now)[:2], now, DefaultRecentLimit)
	assert.Len(t, small.Recent, 2)
}
