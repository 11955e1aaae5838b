package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Aberto"
	TicketStatusInProgress TicketStatus = "Em Atendimento"
	TicketStatusResolved   TicketStatus = "Resolvido"
	TicketStatusEscalated  TicketStatus = "Escalado"
)

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Baixa"
	TicketPriorityMedium   TicketPriority = "Média"
	TicketPriorityHigh     TicketPriority = "Alta"
	TicketPriorityCritical TicketPriority = "Crítica"
)

// SubjectCode is the problem category. The literal values are stored as-is.
type SubjectCode string

const (
	SubjectCode1100 SubjectCode = "1100 - Codigo"
	SubjectCode1101 SubjectCode = "1101 - Codigo de peças"
	SubjectCode1102 SubjectCode = "1102 - Codigo de midia"
	SubjectCode1200 SubjectCode = "1200 - Duvida técnica"
	SubjectCode1201 SubjectCode = "1201 - Interpretação defeito"
	SubjectCode1202 SubjectCode = "1202 - Testes perifericos"
	SubjectCode1203 SubjectCode = "1203 - Sistema de ensinamento"
	SubjectCode1204 SubjectCode = "1204 - Status sensores"
	SubjectCode1205 SubjectCode = "1205 - Diag não carrega"
	SubjectCode1206 SubjectCode = "1206 - Erro de HW"
	SubjectCode1207 SubjectCode = "1207 - Duvida em configuração"
)

// subjectSeparator splits the numeric prefix from the label.
const subjectSeparator = " - "

var (
	allStatuses   = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusEscalated}
	allPriorities = []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical}
	allSubjects   = []SubjectCode{
		SubjectCode1100, SubjectCode1101, SubjectCode1102,
		SubjectCode1200, SubjectCode1201, SubjectCode1202, SubjectCode1203,
		SubjectCode1204, SubjectCode1205, SubjectCode1206, SubjectCode1207,
	}
)

// Priorities returns every priority in declaration order.
func Priorities() []TicketPriority { return append([]TicketPriority(nil), allPriorities...) }

// SubjectCodes returns the 11 subject codes in declaration order.
func SubjectCodes() []SubjectCode { return append([]SubjectCode(nil), allSubjects...) }

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	for _, candidate := range allStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	for _, candidate := range allPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// Valid reports whether c is one of the fixed subject codes.
func (c SubjectCode) Valid() bool {
	for _, candidate := range allSubjects {
		if candidate == c {
			return true
		}
	}
	return false
}

// Prefix returns the numeric part of the code, e.g. "1200".
func (c SubjectCode) Prefix() string {
	code := string(c)
	if idx := strings.Index(code, subjectSeparator); idx >= 0 {
		return code[:idx]
	}
	return code
}

// IsEscalationPriority reports whether p puts a ticket on the escalation board.
func (p TicketPriority) IsEscalationPriority() bool {
	return p == TicketPriorityCritical || p == TicketPriorityHigh
}

// Ticket is a single support visit record.
type Ticket struct {
	ID               string
	ClientName       string
	AnalystName      string
	SupportStartTime string
	SupportEndTime   string
	LocationName     string
	TaskTicket       string
	ServiceRequest   string

	SubjectCode   SubjectCode
	AnalystAction string
	Description   string

	LigacaoDevida       bool
	UtilizouACFS        bool
	OcorreuEntintamento bool
	TrocouPeca          bool
	PecaTrocada         *string

	TagVLDD  bool
	TagNVLDD bool

	CustomerWitnessName string
	CustomerWitnessID   string

	ValidatedBy *string
	ValidatedAt *string

	Priority   TicketPriority
	Status     TicketStatus
	CreatedAt  time.Time
	AIAnalysis *string
}

// IsResolved reports whether the ticket reached its terminal status.
func (t *Ticket) IsResolved() bool {
	return t.Status == TicketStatusResolved
}

// Apply merges the non-nil fields of patch into the ticket. ID and CreatedAt
// are never touched.
func (t *Ticket) Apply(patch TicketPatch) {
	setString(&t.ClientName, patch.ClientName)
	setString(&t.AnalystName, patch.AnalystName)
	setString(&t.SupportStartTime, patch.SupportStartTime)
	setString(&t.SupportEndTime, patch.SupportEndTime)
	setString(&t.LocationName, patch.LocationName)
	setString(&t.TaskTicket, patch.TaskTicket)
	setString(&t.ServiceRequest, patch.ServiceRequest)
	setString(&t.AnalystAction, patch.AnalystAction)
	setString(&t.Description, patch.Description)
	setString(&t.CustomerWitnessName, patch.CustomerWitnessName)
	setString(&t.CustomerWitnessID, patch.CustomerWitnessID)
	setBool(&t.LigacaoDevida, patch.LigacaoDevida)
	setBool(&t.UtilizouACFS, patch.UtilizouACFS)
	setBool(&t.OcorreuEntintamento, patch.OcorreuEntintamento)
	setBool(&t.TrocouPeca, patch.TrocouPeca)
	setBool(&t.TagVLDD, patch.TagVLDD)
	setBool(&t.TagNVLDD, patch.TagNVLDD)
	if patch.SubjectCode != nil {
		t.SubjectCode = *patch.SubjectCode
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.PecaTrocada != nil {
		t.PecaTrocada = cloneString(patch.PecaTrocada)
	}
	if patch.ValidatedBy != nil {
		t.ValidatedBy = cloneString(patch.ValidatedBy)
	}
	if patch.ValidatedAt != nil {
		t.ValidatedAt = cloneString(patch.ValidatedAt)
	}
	if patch.AIAnalysis != nil {
		t.AIAnalysis = cloneString(patch.AIAnalysis)
	}
}

// Clone returns a deep copy of the ticket.
func (t Ticket) Clone() Ticket {
	t.PecaTrocada = cloneString(t.PecaTrocada)
	t.ValidatedBy = cloneString(t.ValidatedBy)
	t.ValidatedAt = cloneString(t.ValidatedAt)
	t.AIAnalysis = cloneString(t.AIAnalysis)
	return t
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
