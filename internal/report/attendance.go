// Package report renders the attendance summary analysts paste into the
// customer's ticketing channel.
package report

import (
	"fmt"
	"strings"

	"github.com/spec-kit/diario-de-bordo/internal/domain"
)

const separator = "--------------------------"

// Attendance renders the "RESUMO DO ATENDIMENTO" text for a ticket.
func Attendance(t domain.Ticket) string {
	var tags []string
	if t.TagVLDD {
		tags = append(tags, "#VLDD#")
	}
	if t.TagNVLDD {
		tags = append(tags, "#NLVDD#")
	}
	part := "Não"
	if t.TrocouPeca {
		name := ""
		if t.PecaTrocada != nil {
			name = *t.PecaTrocada
		}
		part = fmt.Sprintf("Sim (%s)", name)
	}

	var b strings.Builder
	b.WriteString("*RESUMO DO ATENDIMENTO*\n")
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "*Analista:* %s\n", t.AnalystName)
	fmt.Fprintf(&b, "*Cliente:* %s\n", t.ClientName)
	fmt.Fprintf(&b, "*Local:* %s\n", t.LocationName)
	fmt.Fprintf(&b, "*Task:* %s | *SR:* %s\n", t.TaskTicket, t.ServiceRequest)
	fmt.Fprintf(&b, "*Início:* %s | *Fim:* %s\n", formatSupportTime(t.SupportStartTime), formatSupportTime(t.SupportEndTime))
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "*Assunto:* %s\n", t.SubjectCode)
	fmt.Fprintf(&b, "*Prioridade:* %s\n", t.Priority)
	fmt.Fprintf(&b, "*Tags:* %s\n", strings.Join(tags, " "))
	b.WriteString("\n")
	b.WriteString("*Acompanhamento:*\n")
	fmt.Fprintf(&b, "Nome: %s | Matrícula: %s\n", t.CustomerWitnessName, t.CustomerWitnessID)
	b.WriteString("\n")
	b.WriteString("*Relato do Problema:*\n")
	b.WriteString(t.Description + "\n")
	b.WriteString("\n")
	b.WriteString("*Ação do Analista:*\n")
	b.WriteString(t.AnalystAction + "\n")
	b.WriteString("\n")
	b.WriteString("*Checklist:*\n")
	fmt.Fprintf(&b, "- Ligação Devida: %s\n", yesNo(t.LigacaoDevida))
	fmt.Fprintf(&b, "- ACFS Utilizado: %s\n", yesNo(t.UtilizouACFS))
	fmt.Fprintf(&b, "- Entintamento: %s\n", yesNo(t.OcorreuEntintamento))
	fmt.Fprintf(&b, "- Troca de Peça: %s\n", part)
	b.WriteString(separator)
	return b.String()
}

// formatSupportTime turns the form value "2024-05-10T08:30" into "2024-05-10 08:30".
func formatSupportTime(v string) string {
	return strings.Replace(v, "T", " ", 1)
}

func yesNo(v bool) string {
	if v {
		return "Sim"
	}
	return "Não"
}
