package services

import (
	"context"
	"errors"
	"strings"

	"MedShare/apperr"
	"MedShare/cache"
	"MedShare/events"
	"MedShare/gate"
	"MedShare/models"
	"MedShare/role"
	"MedShare/store"

	"github.com/google/logger"
)

type CreateManufacturerInput struct {
	Name          string `json:"name" validate:"required"`
	LicenseNumber string `json:"licenseNumber"`
	Address       string `json:"address"`
	Website       string `json:"website" validate:"omitempty,url"`
	Description   string `json:"description"`
}

type UpdateManufacturerInput struct {
	Name          *string `json:"name" validate:"omitempty,min=1"`
	LicenseNumber *string `json:"licenseNumber"`
	Address       *string `json:"address"`
	Website       *string `json:"website" validate:"omitempty,url"`
	Description   *string `json:"description"`
	IsVerified    *bool   `json:"isVerified"`
}

type ManufacturerService struct {
	Deps
}

func NewManufacturerService(d Deps) *ManufacturerService {
	return &ManufacturerService{Deps: d.withDefaults()}
}

/*
* Only manufacturers can create a profile
* Contact person is taken from the actor, never from the input
* Every profile starts unverified
 */
func (s *ManufacturerService) Create(ctx context.Context, actor models.Actor, in CreateManufacturerInput) (*models.Manufacturer, error) {
	if err := gate.Authorize(actor, gate.CreateManufacturer, gate.Resource{}); err != nil {
		return nil, fail("manufacturer.create", err)
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Website = strings.TrimSpace(in.Website)
	if err := validateInput(in); err != nil {
		return nil, fail("manufacturer.create", err)
	}
	manufacturer := &models.Manufacturer{
		Name:          in.Name,
		LicenseNumber: strings.TrimSpace(in.LicenseNumber),
		Address:       strings.TrimSpace(in.Address),
		Website:       in.Website,
		Description:   strings.TrimSpace(in.Description),
		ContactPerson: models.ContactPerson{Name: actor.Name, Email: actor.Email, Phone: actor.Phone},
	}
	if err := s.Store.InsertManufacturer(ctx, manufacturer); err != nil {
		logger.Errorf("Error from insertManufacturer: %v", err)
		return nil, fail("manufacturer.create", storeError(err, apperr.MANUFACTURER_NOT_FOUND))
	}
	s.saveProfile(ctx, actor)
	s.publish(ctx, events.Event{Type: events.ManufacturerCreated, EntityID: manufacturer.ID, ActorID: actor.ID})
	return manufacturer, nil
}

func (s *ManufacturerService) load(ctx context.Context, id string) (*models.Manufacturer, error) {
	manufacturer, err := s.Store.FindManufacturer(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Errorf("Error from findManufacturer %s: %v", id, err)
		}
		return nil, storeError(err, apperr.MANUFACTURER_NOT_FOUND)
	}
	return manufacturer, nil
}

func (s *ManufacturerService) Get(ctx context.Context, id string) (*models.Manufacturer, error) {
	key := cache.ManufacturerKey + id
	var cached models.Manufacturer
	if found, err := s.Cache.Get(ctx, key, &cached); err == nil && found {
		return &cached, nil
	} else if err != nil {
		logger.Errorf("Error from cache get %s: %v", key, err)
	}
	manufacturer, err := s.load(ctx, id)
	if err != nil {
		return nil, fail("manufacturer.get", err)
	}
	s.remember(ctx, key, manufacturer)
	return manufacturer, nil
}

func (s *ManufacturerService) List(ctx context.Context) ([]models.Manufacturer, error) {
	manufacturers, err := s.Store.ListManufacturers(ctx)
	if err != nil {
		logger.Errorf("Error from listManufacturers: %v", err)
		return nil, fail("manufacturer.list", storeError(err, apperr.MANUFACTURER_NOT_FOUND))
	}
	return manufacturers, nil
}

/*
* The contact person or an admin may update the profile
* isVerified can only be changed by an admin
* Delete from cache
 */
func (s *ManufacturerService) Update(ctx context.Context, actor models.Actor, id string, in UpdateManufacturerInput) (*models.Manufacturer, error) {
	manufacturer, err := s.load(ctx, id)
	if err != nil {
		return nil, fail("manufacturer.update", err)
	}
	if err := gate.Authorize(actor, gate.UpdateManufacturer, gate.Resource{Manufacturer: manufacturer}); err != nil {
		return nil, fail("manufacturer.update", err)
	}
	if in.IsVerified != nil && role.Normalize(actor.Role) != role.Admin {
		return nil, fail("manufacturer.update", apperr.Forbidden(apperr.ONLY_ADMIN_CAN_VERIFY_MANUFACTURER))
	}
	in.Name = trimmed(in.Name)
	in.LicenseNumber = trimmed(in.LicenseNumber)
	in.Address = trimmed(in.Address)
	in.Website = trimmed(in.Website)
	in.Description = trimmed(in.Description)
	if err := validateInput(in); err != nil {
		return nil, fail("manufacturer.update", err)
	}
	patch := store.ManufacturerPatch{
		Name:          in.Name,
		LicenseNumber: in.LicenseNumber,
		Address:       in.Address,
		Website:       in.Website,
		Description:   in.Description,
		IsVerified:    in.IsVerified,
	}
	if patch.Empty() {
		return nil, fail("manufacturer.update", apperr.Validation(apperr.NO_FIELDS_TO_UPDATE, nil))
	}
	updated, err := s.Store.PatchManufacturer(ctx, id, patch)
	if err != nil {
		logger.Errorf("Error from patchManufacturer %s: %v", id, err)
		return nil, fail("manufacturer.update", storeError(err, apperr.MANUFACTURER_NOT_FOUND))
	}
	s.forget(ctx, cache.ManufacturerKey+id)
	s.publish(ctx, events.Event{Type: events.ManufacturerUpdated, EntityID: id, ActorID: actor.ID})
	return updated, nil
}

// Verify marks the manufacturer verified. Verifying twice is not an error.
func (s *ManufacturerService) Verify(ctx context.Context, actor models.Actor, id string) (*models.Manufacturer, error) {
	if err := gate.Authorize(actor, gate.VerifyManufacturer, gate.Resource{}); err != nil {
		return nil, fail("manufacturer.verify", err)
	}
	verified := true
	updated, err := s.Store.PatchManufacturer(ctx, id, store.ManufacturerPatch{IsVerified: &verified})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Errorf("Error from patchManufacturer (verify) %s: %v", id, err)
		}
		return nil, fail("manufacturer.verify", storeError(err, apperr.MANUFACTURER_NOT_FOUND))
	}
	s.forget(ctx, cache.ManufacturerKey+id)
	s.publish(ctx, events.Event{Type: events.ManufacturerVerified, EntityID: id, ActorID: actor.ID})
	return updated, nil
}

func (s *ManufacturerService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := gate.Authorize(actor, gate.DeleteManufacturer, gate.Resource{}); err != nil {
		return fail("manufacturer.delete", err)
	}
	if err := s.Store.DeleteManufacturer(ctx, id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Errorf("Error from deleteManufacturer %s: %v", id, err)
		}
		return fail("manufacturer.delete", storeError(err, apperr.MANUFACTURER_NOT_FOUND))
	}
	s.forget(ctx, cache.ManufacturerKey+id)
	s.publish(ctx, events.Event{Type: events.ManufacturerDeleted, EntityID: id, ActorID: actor.ID})
	return nil
}
