package domain

// Column names shared by every row store. They are the persisted camelCase
// attribute names and must not change.
const (
	FieldID                  = "id"
	FieldClientName          = "clientName"
	FieldAnalystName         = "analystName"
	FieldSupportStartTime    = "supportStartTime"
	FieldSupportEndTime      = "supportEndTime"
	FieldLocationName        = "locationName"
	FieldTaskTicket          = "taskTicket"
	FieldServiceRequest      = "serviceRequest"
	FieldSubjectCode         = "subjectCode"
	FieldAnalystAction       = "analystAction"
	FieldDescription         = "description"
	FieldLigacaoDevida       = "ligacaoDevida"
	FieldUtilizouACFS        = "utilizouACFS"
	FieldOcorreuEntintamento = "ocorreuEntintamento"
	FieldTrocouPeca          = "trocouPeca"
	FieldPecaTrocada         = "pecaTrocada"
	FieldTagVLDD             = "tagVLDD"
	FieldTagNVLDD            = "tagNVLDD"
	FieldCustomerWitnessName = "customerWitnessName"
	FieldCustomerWitnessID   = "customerWitnessID"
	FieldValidatedBy         = "validatedBy"
	FieldValidatedAt         = "validatedAt"
	FieldPriority            = "priority"
	FieldStatus              = "status"
	FieldCreatedAt           = "createdAt"
	FieldAIAnalysis          = "aiAnalysis"
)

// TicketPatch is a partial update. Nil fields are left untouched. It has no
// ID or CreatedAt field: both are immutable once the store assigns them.
type TicketPatch struct {
	ClientName       *string
	AnalystName      *string
	SupportStartTime *string
	SupportEndTime   *string
	LocationName     *string
	TaskTicket       *string
	ServiceRequest   *string

	SubjectCode   *SubjectCode
	AnalystAction *string
	Description   *string

	LigacaoDevida       *bool
	UtilizouACFS        *bool
	OcorreuEntintamento *bool
	TrocouPeca          *bool
	PecaTrocada         *string

	TagVLDD  *bool
	TagNVLDD *bool

	CustomerWitnessName *string
	CustomerWitnessID   *string

	ValidatedBy *string
	ValidatedAt *string

	Priority   *TicketPriority
	Status     *TicketStatus
	AIAnalysis *string
}

// IsEmpty reports whether the patch changes nothing.
func (p TicketPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// TouchesClosureFields reports whether the patch sets a field owned by the
// closure workflow.
func (p TicketPatch) TouchesClosureFields() bool {
	return p.ValidatedBy != nil || p.ValidatedAt != nil ||
		(p.Status != nil && *p.Status == TicketStatusResolved)
}

// Fields returns the column/value pairs of the set fields, keyed by the
// stored column name. The result never contains id or createdAt.
func (p TicketPatch) Fields() map[string]any {
	fields := make(map[string]any)
	putString(fields, FieldClientName, p.ClientName)
	putString(fields, FieldAnalystName, p.AnalystName)
	putString(fields, FieldSupportStartTime, p.SupportStartTime)
	putString(fields, FieldSupportEndTime, p.SupportEndTime)
	putString(fields, FieldLocationName, p.LocationName)
	putString(fields, FieldTaskTicket, p.TaskTicket)
	putString(fields, FieldServiceRequest, p.ServiceRequest)
	putString(fields, FieldAnalystAction, p.AnalystAction)
	putString(fields, FieldDescription, p.Description)
	putString(fields, FieldPecaTrocada, p.PecaTrocada)
	putString(fields, FieldCustomerWitnessName, p.CustomerWitnessName)
	putString(fields, FieldCustomerWitnessID, p.CustomerWitnessID)
	putString(fields, FieldValidatedBy, p.ValidatedBy)
	putString(fields, FieldValidatedAt, p.ValidatedAt)
	putString(fields, FieldAIAnalysis, p.AIAnalysis)
	putBool(fields, FieldLigacaoDevida, p.LigacaoDevida)
	putBool(fields, FieldUtilizouACFS, p.UtilizouACFS)
	putBool(fields, FieldOcorreuEntintamento, p.OcorreuEntintamento)
	putBool(fields, FieldTrocouPeca, p.TrocouPeca)
	putBool(fields, FieldTagVLDD, p.TagVLDD)
	putBool(fields, FieldTagNVLDD, p.TagNVLDD)
	if p.SubjectCode != nil {
		fields[FieldSubjectCode] = string(*p.SubjectCode)
	}
	if p.Priority != nil {
		fields[FieldPriority] = string(*p.Priority)
	}
	if p.Status != nil {
		fields[FieldStatus] = string(*p.Status)
	}
	delete(fields, FieldID)
	delete(fields, FieldCreatedAt)
	return fields
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

func putString(fields map[string]any, key string, v *string) {
	if v != nil {
		fields[key] = *v
	}
}

func putBool(fields map[string]any, key string, v *bool) {
	if v != nil {
		fields[key] = *v
	}
}
