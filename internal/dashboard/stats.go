// Package dashboard computes the aggregates shown on the operator dashboard.
// Everything here is a pure function of the ticket collection and the
// supplied clock; nothing is cached.
package dashboard

import (
	"strings"
	"time"

	"github.com/spec-kit/diario-de-bordo/internal/domain"
)

// DefaultRecentLimit is the size of the "recent activity" list.
const DefaultRecentLimit = 4

// SubjectBucket is one bar of the per-subject volume chart.
type SubjectBucket struct {
	Name  string
	Count int
}

// Summary bundles every dashboard aggregate.
type Summary struct {
	TotalCount         int
	OpenCount          int
	EscalatedCount     int
	ResolvedTodayCount int
	SubjectVolume      []SubjectBucket
	Recent             []domain.Ticket
}

// Build computes all aggregates for tickets at instant now.
func Build(tickets []domain.Ticket, now time.Time, recentLimit int) Summary {
	if recentLimit < 0 {
		recentLimit = 0
	}
	if recentLimit > len(tickets) {
		recentLimit = len(tickets)
	}
	return Summary{
		TotalCount:         len(tickets),
		OpenCount:          OpenCount(tickets),
		EscalatedCount:     EscalatedCount(tickets),
		ResolvedTodayCount: ResolvedTodayCount(tickets, now),
		SubjectVolume:      SubjectVolume(tickets),
		Recent:             append([]domain.Ticket(nil), tickets[:recentLimit]...),
	}
}

// OpenCount counts tickets with status Aberto.
func OpenCount(tickets []domain.Ticket) int {
	count := 0
	for i := range tickets {
		if tickets[i].Status == domain.TicketStatusOpen {
			count++
		}
	}
	return count
}

// EscalatedCount counts tickets that are Alta/Crítica or Escalado. Resolved
// tickets are counted too; the escalation board is the view that drops them.
func EscalatedCount(tickets []domain.Ticket) int {
	count := 0
	for i := range tickets {
		if tickets[i].Priority.IsEscalationPriority() || tickets[i].Status == domain.TicketStatusEscalated {
			count++
		}
	}
	return count
}

// ResolvedTodayCount counts Resolvido tickets created on now's calendar day,
// evaluated in now's location. Resolution time is not tracked.
func ResolvedTodayCount(tickets []domain.Ticket, now time.Time) int {
	year, month, day := now.Date()
	count := 0
	for i := range tickets {
		if tickets[i].Status != domain.TicketStatusResolved {
			continue
		}
		y, m, d := tickets[i].CreatedAt.In(now.Location()).Date()
		if y == year && m == month && d == day {
			count++
		}
	}
	return count
}

// SubjectVolume groups tickets by subject prefix in first-seen order.
func SubjectVolume(tickets []domain.Ticket) []SubjectBucket {
	index := make(map[string]int)
	buckets := make([]SubjectBucket, 0)
	for i := range tickets {
		key := tickets[i].SubjectCode.Prefix()
		pos, ok := index[key]
		if !ok {
			index[key] = len(buckets)
			buckets = append(buckets, SubjectBucket{Name: key, Count: 1})
			continue
		}
		buckets[pos].Count++
	}
	return buckets
}

// Filter returns the tickets whose client name, analyst action or task
// number contains term, ignoring case. An empty term returns every ticket.
func Filter(tickets []domain.Ticket, term string) []domain.Ticket {
	if term == "" {
		return append([]domain.Ticket(nil), tickets...)
	}
	needle := strings.ToLower(term)
	result := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if strings.Contains(strings.ToLower(ticket.ClientName), needle) ||
			strings.Contains(strings.ToLower(ticket.AnalystAction), needle) ||
			strings.Contains(strings.ToLower(ticket.TaskTicket), needle) {
			result = append(result, ticket)
		}
	}
	return result
}
