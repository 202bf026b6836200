package models

import "time"

type ResourceKind string

const (
	ResourceKindRequest ResourceKind = "request"
	ResourceKindOffer   ResourceKind = "offer"
)

func (k ResourceKind) Valid() bool {
	return k == ResourceKindRequest || k == ResourceKindOffer
}

// Opposite returns the counterpart kind used for matching.
func (k ResourceKind) Opposite() ResourceKind {
	if k == ResourceKindRequest {
		return ResourceKindOffer
	}
	return ResourceKindRequest
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

type Availability string

const (
	AvailabilityImmediate  Availability = "immediate"
	AvailabilityWithin24h  Availability = "within 24 hours"
	AvailabilityWithinWeek Availability = "within a week"
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityImmediate, AvailabilityWithin24h, AvailabilityWithinWeek:
		return true
	}
	return false
}

type ResourceStatus string

const (
	ResourceStatusPending   ResourceStatus = "pending"
	ResourceStatusFulfilled ResourceStatus = "fulfilled"
	ResourceStatusCancelled ResourceStatus = "cancelled"
)

// Resource is a community need or offer. Kind discriminates the variant:
// requests carry Urgency, offers carry Availability. Status is written once
// at creation ("pending") and never transitioned by this service.
type Resource struct {
	ID           string         `json:"id"`
	Kind         ResourceKind   `json:"kind"`
	Item         string         `json:"item"`
	Quantity     int            `json:"quantity"`
	Location     string         `json:"location"`
	Contact      string         `json:"contact"`
	Urgency      Urgency        `json:"urgency,omitempty"`
	Availability Availability   `json:"availability,omitempty"`
	Status       ResourceStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UserID       string         `json:"user_id"`
}
