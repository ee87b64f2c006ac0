package models

import "time"

type ContactPerson struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone" bson:"phone"`
}

type Manufacturer struct {
	ID            string        `json:"id" bson:"_id"`
	Name          string        `json:"name" bson:"name"`
	LicenseNumber string        `json:"licenseNumber" bson:"licenseNumber"`
	Address       string        `json:"address" bson:"address"`
	Website       string        `json:"website" bson:"website"`
	Description   string        `json:"description" bson:"description"`
	ContactPerson ContactPerson `json:"contactPerson" bson:"contactPerson"`
	IsVerified    bool          `json:"isVerified" bson:"isVerified"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updatedAt"`
}
