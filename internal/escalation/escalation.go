// Package escalation holds the escalation board filter and the closure
// protocol used to validate and resolve escalated tickets.
package escalation

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/diario-de-bordo/internal/domain"
)

// ValidationTag is the closure marker chosen by the operator.
type ValidationTag string

const (
	TagValidated    ValidationTag = "#VLDD#"
	TagNotValidated ValidationTag = "#NLVDD#"
)

// SystemValidator is recorded as validatedBy on every closure.
const SystemValidator = "Sistema"

// ValidatedAtLayout is the ISO-8601 UTC layout used for validatedAt.
const ValidatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

const descriptionPreviewLen = 100

// Valid reports whether the tag is one of the two closure markers.
func (t ValidationTag) Valid() bool {
	return t == TagValidated || t == TagNotValidated
}

// Board returns the active escalation work: tickets that are Alta/Crítica or
// Escalado, excluding Resolvido.
func Board(tickets []domain.Ticket) []domain.Ticket {
	result := make([]domain.Ticket, 0)
	for _, ticket := range tickets {
		if OnBoard(&ticket) {
			result = append(result, ticket)
		}
	}
	return result
}

// OnBoard reports whether a single ticket belongs on the escalation board.
func OnBoard(ticket *domain.Ticket) bool {
	if ticket.IsResolved() {
		return false
	}
	return ticket.Priority.IsEscalationPriority() || ticket.Status == domain.TicketStatusEscalated
}

// SICChecks are the independent SIC sub-checks captured at closure.
type SICChecks struct {
	Saques        bool
	Depositos     bool
	Sensoriamento bool
	Smartpower    bool
}

// Items returns the labels of the checked items in fixed order.
func (s SICChecks) Items() []string {
	items := make([]string, 0, 4)
	if s.Saques {
		items = append(items, "Saques")
	}
	if s.Depositos {
		items = append(items, "Depósitos")
	}
	if s.Sensoriamento {
		items = append(items, "Sensoriamento")
	}
	if s.Smartpower {
		items = append(items, "Smartpower")
	}
	return items
}

// ValidationForm is the operator input for the closure protocol. It is never
// persisted; discarding it is the cancel path.
type ValidationForm struct {
	Tag           ValidationTag
	WitnessName   string
	WitnessID     string
	AnalystAction string
	PartReplaced  bool
	PartName      string
	CardTest      bool
	SIC           SICChecks
}

// NewValidationForm seeds a form from the ticket's current data.
func NewValidationForm(ticket domain.Ticket) ValidationForm {
	tag := TagValidated
	if ticket.TagNVLDD {
		tag = TagNotValidated
	}
	partName := ""
	if ticket.PecaTrocada != nil {
		partName = *ticket.PecaTrocada
	}
	return ValidationForm{
		Tag:           tag,
		WitnessName:   ticket.CustomerWitnessName,
		WitnessID:     ticket.CustomerWitnessID,
		AnalystAction: ticket.AnalystAction,
		PartReplaced:  ticket.TrocouPeca,
		PartName:      partName,
	}
}

// CanCommit reports whether the witness data required for closure is present.
func (f ValidationForm) CanCommit() bool {
	return strings.TrimSpace(f.WitnessName) != "" && strings.TrimSpace(f.WitnessID) != ""
}

// ClosurePatch builds the update that resolves a ticket from the form.
func ClosurePatch(form ValidationForm, now time.Time) domain.TicketPatch {
	return domain.TicketPatch{
		TagVLDD:             domain.Ptr(form.Tag == TagValidated),
		TagNVLDD:            domain.Ptr(form.Tag == TagNotValidated),
		CustomerWitnessName: domain.Ptr(form.WitnessName),
		CustomerWitnessID:   domain.Ptr(form.WitnessID),
		AnalystAction:       domain.Ptr(form.AnalystAction),
		Status:              domain.Ptr(domain.TicketStatusResolved),
		ValidatedBy:         domain.Ptr(SystemValidator),
		ValidatedAt:         domain.Ptr(now.UTC().Format(ValidatedAtLayout)),
	}
}

// Summary renders the human-readable validation summary for audit display.
func Summary(ticket domain.Ticket, form ValidationForm) string {
	sic := "Nenhum"
	if items := form.SIC.Items(); len(items) > 0 {
		sic = strings.Join(items, ", ")
	}
	part := "Não"
	if form.PartReplaced {
		part = fmt.Sprintf("Sim (%s)", form.PartName)
	}

	var b strings.Builder
	b.WriteString("RESUMO DE VALIDAÇÃO\n")
	b.WriteString("--------------------------------\n")
	fmt.Fprintf(&b, "STATUS: %s\n", form.Tag)
	fmt.Fprintf(&b, "CLIENTE: %s\n", ticket.ClientName)
	fmt.Fprintf(&b, "LOCAL: %s\n", ticket.LocationName)
	fmt.Fprintf(&b, "TASK: %s\n", ticket.TaskTicket)
	fmt.Fprintf(&b, "DEFEITO RECLAMADO: %s\n", truncate(ticket.Description, descriptionPreviewLen))
	fmt.Fprintf(&b, "AÇÃO TÉCNICO: %s\n", form.AnalystAction)
	b.WriteString("\n")
	b.WriteString("VALIDAÇÃO TÉCNICA:\n")
	fmt.Fprintf(&b, "- Houve Troca de Peça: %s\n", part)
	fmt.Fprintf(&b, "- Teste com Cartão: %s\n", yesNo(form.CardTest))
	b.WriteString("\n")
	b.WriteString("VALIDAÇÃO SIC:\n")
	fmt.Fprintf(&b, "- Itens validados: %s\n", sic)
	b.WriteString("\n")
	fmt.Fprintf(&b, "VALIDADO POR: %s (Matrícula: %s)\n", form.WitnessName, form.WitnessID)
	b.WriteString("--------------------------------")
	return strings.TrimSpace(b.String())
}

// truncate cuts s to max characters, appending "..." when it was longer.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func yesNo(v bool) string {
	if v {
		return "Sim"
	}
	return "Não"
}
