package dto

import (
	"github.com/spec-kit/diario-de-bordo/internal/classifier"
	"github.com/spec-kit/diario-de-bordo/internal/dashboard"
)

// SubjectVolumeEntry is one bar of the subject chart.
type SubjectVolumeEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DashboardResponse mirrors dashboard.Summary.
type DashboardResponse struct {
	TotalCount         int                  `json:"totalCount"`
	OpenCount          int                  `json:"openCount"`
	EscalatedCount     int                  `json:"escalatedCount"`
	ResolvedTodayCount int                  `json:"resolvedTodayCount"`
	SubjectVolume      []SubjectVolumeEntry `json:"subjectVolume"`
	Recent             []TicketResponse     `json:"recent"`
}

// ClassifyRequest payload.
type ClassifyRequest struct {
	Description string `json:"description"`
	ClientName  string `json:"clientName"`
}

// ClassifyResponse is the classifier output.
type ClassifyResponse = classifier.Classification

// NewDashboardResponse maps the aggregates.
func NewDashboardResponse(s dashboard.Summary) DashboardResponse {
	volume := make([]SubjectVolumeEntry, 0, len(s.SubjectVolume))
	for _, bucket := range s.SubjectVolume {
		volume = append(volume, SubjectVolumeEntry{Name: bucket.Name, Count: bucket.Count})
	}
	return DashboardResponse{
		TotalCount:         s.TotalCount,
		OpenCount:          s.OpenCount,
		EscalatedCount:     s.EscalatedCount,
		ResolvedTodayCount: s.ResolvedTodayCount,
		SubjectVolume:      volume,
		Recent:             NewTicketResponses(s.Recent),
	}
}
