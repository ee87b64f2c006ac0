package models

import (
	"time"
)

type MedicineStatus string

const (
	MedicineAvailable MedicineStatus = "available"
	MedicineRequested MedicineStatus = "requested"
	MedicineDonated   MedicineStatus = "donated"
)

// PlaceholderManufacturer is stored on medicines synthesized for a request.
const PlaceholderManufacturer = "Unknown"

type Medicine struct {
	ID           string         `json:"id" bson:"_id"`
	Name         string         `json:"name" bson:"name"`
	Description  string         `json:"description" bson:"description"`
	Quantity     int            `json:"quantity" bson:"quantity"`
	ExpiryDate   time.Time      `json:"expiryDate" bson:"expiryDate"`
	Donor        string         `json:"donor" bson:"donor"`
	Manufacturer string         `json:"manufacturer" bson:"manufacturer"`
	Status       MedicineStatus `json:"status" bson:"status"`
	IsDonated    bool           `json:"isDonated" bson:"isDonated"`
	DonatedTo    string         `json:"donatedTo,omitempty" bson:"donatedTo,omitempty"`
	DonationDate *time.Time     `json:"donationDate,omitempty" bson:"donationDate,omitempty"`
	Placeholder  bool           `json:"placeholder" bson:"placeholder"`
	CreatedAt    time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// MedicineView is a Medicine with its donor populated.
type MedicineView struct {
	Medicine
	DonorRef *UserRef `json:"donorRef,omitempty"`
}
