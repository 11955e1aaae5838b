package dto

import (
	"github.com/spec-kit/diario-de-bordo/internal/escalation"
)

// SICChecks payload.
type SICChecks struct {
	Saques        bool `json:"saques"`
	Depositos     bool `json:"depositos"`
	Sensoriamento bool `json:"sensoriamento"`
	Smartpower    bool `json:"smartpower"`
}

// ValidationForm is the closure form exchanged with the client.
type ValidationForm struct {
	Tag           escalation.ValidationTag `json:"tag"`
	WitnessName   string                   `json:"witnessName"`
	WitnessID     string                   `json:"witnessId"`
	AnalystAction string                   `json:"analystAction"`
	PartReplaced  bool                     `json:"partReplaced"`
	PartName      string                   `json:"partName"`
	CardTest      bool                     `json:"cardTest"`
	SIC           SICChecks                `json:"sic"`
}

// ValidationFormResponse returns a seeded form with its current summary.
type ValidationFormResponse struct {
	Ticket    TicketResponse `json:"ticket"`
	Form      ValidationForm `json:"form"`
	Summary   string         `json:"summary"`
	CanCommit bool           `json:"canCommit"`
}

// ValidationSummaryResponse carries the rendered summary.
type ValidationSummaryResponse struct {
	Summary   string `json:"summary"`
	CanCommit bool   `json:"canCommit"`
}

// NewValidationForm maps a domain form.
func NewValidationForm(f escalation.ValidationForm) ValidationForm {
	return ValidationForm{
		Tag:           f.Tag,
		WitnessName:   f.WitnessName,
		WitnessID:     f.WitnessID,
		AnalystAction: f.AnalystAction,
		PartReplaced:  f.PartReplaced,
		PartName:      f.PartName,
		CardTest:      f.CardTest,
		SIC: SICChecks{
			Saques:        f.SIC.Saques,
			Depositos:     f.SIC.Depositos,
			Sensoriamento: f.SIC.Sensoriamento,
			Smartpower:    f.SIC.Smartpower,
		},
	}
}

// ToDomain converts the payload into the workflow form.
func (f ValidationForm) ToDomain() escalation.ValidationForm {
	return escalation.ValidationForm{
		Tag:           f.Tag,
		WitnessName:   f.WitnessName,
		WitnessID:     f.WitnessID,
		AnalystAction: f.AnalystAction,
		PartReplaced:  f.PartReplaced,
		PartName:      f.PartName,
		CardTest:      f.CardTest,
		SIC: escalation.SICChecks{
			Saques:        f.SIC.Saques,
			Depositos:     f.SIC.Depositos,
			Sensoriamento: f.SIC.Sensoriamento,
			Smartpower:    f.SIC.Smartpower,
		},
	}
}
