// Package store declares the persistence contract of the catalog and request
// collections. Implementations live in mongostore and memstore.
package store

import (
	"context"
	"errors"
	"time"

	"MedShare/models"
)

var (
	ErrNotFound = errors.New("store: document not found")
	// ErrConflict reports that a conditional update matched the document id
	// but not its precondition.
	ErrConflict = errors.New("store: precondition not met")
)

const (
	ManufacturerCollection = "MANUFACTURERS"
	MedicineCollection     = "MEDICINES"
	RequestCollection      = "REQUESTS"
	UserCollection         = "USERS"
)

type MedicineFilter struct {
	Status models.MedicineStatus
	Donor  string
	// Search is matched against the text-indexed fields (name, description,
	// manufacturer).
	Search string
}

type MedicinePatch struct {
	Name         *string
	Description  *string
	Quantity     *int
	ExpiryDate   *time.Time
	Manufacturer *string
}

func (p MedicinePatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Quantity == nil && p.ExpiryDate == nil && p.Manufacturer == nil
}

// MedicineChange is what a lifecycle transition writes.
type MedicineChange struct {
	Status       models.MedicineStatus
	IsDonated    bool
	DonatedTo    string
	DonationDate *time.Time
}

type RequestFilter struct {
	Flow      models.RequestFlow
	Status    models.RequestStatus
	Requester string
	Medicine  string
}

// RequestChange is what a lifecycle transition writes. FulfilledBy and
// FulfilledAt are written only when both are set.
type RequestChange struct {
	Status      models.RequestStatus
	FulfilledBy string
	FulfilledAt *time.Time
}

type ManufacturerPatch struct {
	Name          *string
	LicenseNumber *string
	Address       *string
	Website       *string
	Description   *string
	IsVerified    *bool
}

func (p ManufacturerPatch) Empty() bool {
	return p.Name == nil && p.LicenseNumber == nil && p.Address == nil && p.Website == nil &&
		p.Description == nil && p.IsVerified == nil
}

type Medicines interface {
	InsertMedicine(ctx context.Context, m *models.Medicine) error
	FindMedicine(ctx context.Context, id string) (*models.Medicine, error)
	FindMedicineByName(ctx context.Context, name string) (*models.Medicine, error)
	ListMedicines(ctx context.Context, f MedicineFilter) ([]models.Medicine, error)
	PatchMedicine(ctx context.Context, id string, p MedicinePatch) (*models.Medicine, error)
	DeleteMedicine(ctx context.Context, id string) error
	// TransitionMedicine applies change only while the medicine is not
	// donated and its status is one of from.
	TransitionMedicine(ctx context.Context, id string, from []models.MedicineStatus, change MedicineChange) (*models.Medicine, error)
}

type Requests interface {
	InsertRequest(ctx context.Context, r *models.Request) error
	FindRequest(ctx context.Context, id string) (*models.Request, error)
	ListRequests(ctx context.Context, f RequestFilter) ([]models.Request, error)
	// TransitionRequest applies change only while the request status is one
	// of from.
	TransitionRequest(ctx context.Context, id string, from []models.RequestStatus, change RequestChange) (*models.Request, error)
}

type Manufacturers interface {
	InsertManufacturer(ctx context.Context, m *models.Manufacturer) error
	FindManufacturer(ctx context.Context, id string) (*models.Manufacturer, error)
	ListManufacturers(ctx context.Context) ([]models.Manufacturer, error)
	PatchManufacturer(ctx context.Context, id string, p ManufacturerPatch) (*models.Manufacturer, error)
	DeleteManufacturer(ctx context.Context, id string) error
}

type Users interface {
	SaveProfile(ctx context.Context, p models.UserProfile) error
	FindProfiles(ctx context.Context, ids []string) (map[string]models.UserProfile, error)
}

// Transactor runs fn as one unit of work. Store calls made with the ctx
// handed to fn take part in it.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Store interface {
	Medicines
	Requests
	Manufacturers
	Users
	Transactor
}
