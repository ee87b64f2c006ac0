package models

import "time"

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestFulfilled RequestStatus = "fulfilled"
	RequestCancelled RequestStatus = "cancelled"
	RequestRejected  RequestStatus = "rejected"
)

// RequestFlow tells which of the two request shapes a record follows.
// Direct requests are accepted or rejected by the donor of the target
// medicine; open requests are asks that get fulfilled outright.
type RequestFlow string

const (
	FlowDirect RequestFlow = "direct"
	FlowOpen   RequestFlow = "open"
)

const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

type Request struct {
	ID           string        `json:"id" bson:"_id"`
	Flow         RequestFlow   `json:"flow" bson:"flow"`
	Medicine     string        `json:"medicine" bson:"medicine"`
	MedicineName string        `json:"medicineName" bson:"medicineName"`
	Requester    string        `json:"requester" bson:"requester"`
	Description  string        `json:"description" bson:"description"`
	Quantity     int           `json:"quantity" bson:"quantity"`
	Urgency      string        `json:"urgency" bson:"urgency"`
	Status       RequestStatus `json:"status" bson:"status"`
	FulfilledBy  string        `json:"fulfilledBy,omitempty" bson:"fulfilledBy,omitempty"`
	FulfilledAt  *time.Time    `json:"fulfilledAt,omitempty" bson:"fulfilledAt,omitempty"`
	CreatedAt    time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// RequestView is a Request with medicine, requester and fulfiller populated.
type RequestView struct {
	Request
	MedicineDoc  *Medicine `json:"medicineDoc,omitempty"`
	RequesterRef *UserRef  `json:"requesterRef,omitempty"`
	FulfillerRef *UserRef  `json:"fulfillerRef,omitempty"`
}
