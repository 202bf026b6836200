package models

import "time"

type AlertStatus string

const (
	AlertStatusObserved AlertStatus = "observed"
	AlertStatusOngoing  AlertStatus = "ongoing"
	AlertStatusResolved AlertStatus = "resolved"
)

func (s AlertStatus) Valid() bool {
	switch s {
	case AlertStatusObserved, AlertStatusOngoing, AlertStatusResolved:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// FloodAlert is a community-reported flood observation. Alerts are immutable
// once created; the server assigns ID and CreatedAt.
type FloodAlert struct {
	ID         string      `json:"id"`
	Location   string      `json:"location"`
	Status     AlertStatus `json:"status"`
	Severity   Severity    `json:"severity"`
	CreatedAt  time.Time   `json:"created_at"`
	ReportedBy string      `json:"reported_by"`
}
