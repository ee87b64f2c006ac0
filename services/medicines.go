package services

import (
	"context"
	"errors"
	"strings"

	"MedShare/apperr"
	"MedShare/cache"
	"MedShare/events"
	"MedShare/gate"
	"MedShare/metrics"
	"MedShare/models"
	"MedShare/store"

	"github.com/google/logger"
)

// medicineTransitions is the medicine state graph. Donated has no way out.
var medicineTransitions = map[models.MedicineStatus][]models.MedicineStatus{
	models.MedicineAvailable: {models.MedicineRequested, models.MedicineDonated},
	models.MedicineRequested: {models.MedicineAvailable, models.MedicineDonated},
}

func canMoveMedicine(from, to models.MedicineStatus) bool {
	for _, next := range medicineTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func parseMedicineStatus(raw string) (models.MedicineStatus, error) {
	status := models.MedicineStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case models.MedicineAvailable, models.MedicineRequested, models.MedicineDonated:
		return status, nil
	}
	return "", apperr.Validation(apperr.INVALID_MEDICINE_STATUS, map[string]string{"status": "oneof=available requested donated"})
}

type CreateMedicineInput struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	Quantity     int    `json:"quantity" validate:"required,min=1"`
	ExpiryDate   string `json:"expiryDate" validate:"required"`
	Manufacturer string `json:"manufacturer" validate:"required"`
}

type UpdateMedicineInput struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Description  *string `json:"description"`
	Quantity     *int    `json:"quantity" validate:"omitempty,min=1"`
	ExpiryDate   *string `json:"expiryDate" validate:"omitempty,min=1"`
	Manufacturer *string `json:"manufacturer" validate:"omitempty,min=1"`
}

type MedicineService struct {
	Deps
}

func NewMedicineService(d Deps) *MedicineService {
	return &MedicineService{Deps: d.withDefaults()}
}

/*
* Validate the input fields
* Normalize the expiryDate
* Bind the donor from the actor, status starts as available
* Create in db, remember the donor's profile
 */
func (s *MedicineService) Create(ctx context.Context, actor models.Actor, in CreateMedicineInput) (*models.Medicine, error) {
	if actor.ID == "" {
		return nil, fail("medicine.create", apperr.Forbidden(apperr.AUTHENTICATION_MISSING))
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Manufacturer = strings.TrimSpace(in.Manufacturer)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		return nil, fail("medicine.create", err)
	}
	expiry, err := parseDate("expiryDate", in.ExpiryDate)
	if err != nil {
		return nil, fail("medicine.create", err)
	}
	medicine := &models.Medicine{
		Name:         in.Name,
		Description:  in.Description,
		Quantity:     in.Quantity,
		ExpiryDate:   expiry,
		Donor:        actor.ID,
		Manufacturer: in.Manufacturer,
		Status:       models.MedicineAvailable,
	}
	if err := s.Store.InsertMedicine(ctx, medicine); err != nil {
		logger.Errorf("Error from insertMedicine: %v", err)
		return nil, fail("medicine.create", storeError(err, apperr.MEDICINE_NOT_FOUND))
	}
	s.saveProfile(ctx, actor)
	metrics.Transition("medicine", string(medicine.Status))
	s.publish(ctx, events.Event{Type: events.MedicineCreated, EntityID: medicine.ID, ActorID: actor.ID, Status: string(medicine.Status)})
	return medicine, nil
}

func (s *MedicineService) load(ctx context.Context, id string) (*models.Medicine, error) {
	medicine, err := s.Store.FindMedicine(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Errorf("Error from findMedicine %s: %v", id, err)
		}
		return nil, storeError(err, apperr.MEDICINE_NOT_FOUND)
	}
	return medicine, nil
}

/*
* Look in cache first
* If not cached, fetch from db and populate the donor
* Set in cache
 */
func (s *MedicineService) Get(ctx context.Context, id string) (*models.MedicineView, error) {
	key := cache.MedicineKey + id
	var cached models.MedicineView
	if found, err := s.Cache.Get(ctx, key, &cached); err == nil && found {
		return &cached, nil
	} else if err != nil {
		logger.Errorf("Error from cache get %s: %v", key, err)
	}
	medicine, err := s.load(ctx, id)
	if err != nil {
		return nil, fail("medicine.get", err)
	}
	views, err := s.medicineViews(ctx, []models.Medicine{*medicine})
	if err != nil {
		return nil, fail("medicine.get", err)
	}
	s.remember(ctx, key, views[0])
	return &views[0], nil
}

// List returns the available medicines, newest first, optionally narrowed by
// a text search.
func (s *MedicineService) List(ctx context.Context, search string) ([]models.MedicineView, error) {
	medicines, err := s.Store.ListMedicines(ctx, store.MedicineFilter{
		Status: models.MedicineAvailable,
		Search: strings.TrimSpace(search),
	})
	if err != nil {
		logger.Errorf("Error from listMedicines: %v", err)
		return nil, fail("medicine.list", storeError(err, apperr.MEDICINE_NOT_FOUND))
	}
	views, err := s.medicineViews(ctx, medicines)
	if err != nil {
		return nil, fail("medicine.list", err)
	}
	return views, nil
}

/*
* Fetch the medicine, only the donor or an admin may change it
* Trim and validate the provided fields, normalize expiryDate
* Status and donation fields are never patched here
* Delete from cache
 */
func (s *MedicineService) Update(ctx context.Context, actor models.Actor, id string, in UpdateMedicineInput) (*models.Medicine, error) {
	medicine, err := s.load(ctx, id)
	if err != nil {
		return nil, fail("medicine.update", err)
	}
	if err := gate.Authorize(actor, gate.UpdateMedicine, gate.Resource{Medicine: medicine}); err != nil {
		return nil, fail("medicine.update", err)
	}
	in.Name = trimmed(in.Name)
	in.Description = trimmed(in.Description)
	in.Manufacturer = trimmed(in.Manufacturer)
	in.ExpiryDate = trimmed(in.ExpiryDate)
	if err := validateInput(in); err != nil {
		return nil, fail("medicine.update", err)
	}
	patch := store.MedicinePatch{
		Name:         in.Name,
		Description:  in.Description,
		Quantity:     in.Quantity,
		Manufacturer: in.Manufacturer,
	}
	if in.ExpiryDate != nil {
		expiry, err := parseDate("expiryDate", *in.ExpiryDate)
		if err != nil {
			return nil, fail("medicine.update", err)
		}
		patch.ExpiryDate = &expiry
	}
	if patch.Empty() {
		return nil, fail("medicine.update", apperr.Validation(apperr.NO_FIELDS_TO_UPDATE, nil))
	}
	updated, err := s.Store.PatchMedicine(ctx, id, patch)
	if err != nil {
		logger.Errorf("Error from patchMedicine %s: %v", id, err)
		return nil, fail("medicine.update", storeError(err, apperr.MEDICINE_NOT_FOUND))
	}
	s.forget(ctx, cache.MedicineKey+id)
	s.publish(ctx, events.Event{Type: events.MedicineUpdated, EntityID: id, ActorID: actor.ID, Status: string(updated.Status)})
	return updated, nil
}

func (s *MedicineService) Delete(ctx context.Context, actor models.Actor, id string) error {
	medicine, err := s.load(ctx, id)
	if err != nil {
		return fail("medicine.delete", err)
	}
	if err := gate.Authorize(actor, gate.DeleteMedicine, gate.Resource{Medicine: medicine}); err != nil {
		return fail("medicine.delete", err)
	}
	if err := s.Store.DeleteMedicine(ctx, id); err != nil {
		logger.Errorf("Error from deleteMedicine %s: %v", id, err)
		return fail("medicine.delete", storeError(err, apperr.MEDICINE_NOT_FOUND))
	}
	s.forget(ctx, cache.MedicineKey+id)
	s.publish(ctx, events.Event{Type: events.MedicineDeleted, EntityID: id, ActorID: actor.ID})
	return nil
}

// MarkRequested reserves an available medicine for an accepted request.
func (s *MedicineService) MarkRequested(ctx context.Context, id string) (*models.Medicine, error) {
	medicine, err := s.transition(ctx, id, models.MedicineAvailable, models.MedicineRequested)
	if err != nil {
		return nil, fail("medicine.mark_requested", err)
	}
	return medicine, nil
}

func (s *MedicineService) transition(ctx context.Context, id string, from, to models.MedicineStatus) (*models.Medicine, error) {
	updated, err := s.Store.TransitionMedicine(ctx, id, []models.MedicineStatus{from}, store.MedicineChange{Status: to})
	if errors.Is(err, store.ErrConflict) {
		if to == models.MedicineRequested {
			return nil, apperr.Conflict(apperr.MEDICINE_NOT_AVAILABLE)
		}
		return nil, apperr.Conflict(apperr.INVALID_MEDICINE_TRANSITION)
	}
	if err != nil {
		return nil, storeError(err, apperr.MEDICINE_NOT_FOUND)
	}
	s.forget(ctx, cache.MedicineKey+id)
	metrics.Transition("medicine", string(to))
	return updated, nil
}

/*
* Any authenticated caller may record a donation
* The write is conditional on isDonated still being false, so a second attempt fails as a conflict
* Status moves to donated together with the donation fields
 */
func (s *MedicineService) Donate(ctx context.Context, actor models.Actor, id string, donatedTo string) (*models.Medicine, error) {
	medicine, err := s.load(ctx, id)
	if err != nil {
		return nil, fail("medicine.donate", err)
	}
	if err := gate.Authorize(actor, gate.DonateMedicine, gate.Resource{Medicine: medicine}); err != nil {
		return nil, fail("medicine.donate", err)
	}
	if medicine.IsDonated {
		return nil, fail("medicine.donate", apperr.Conflict(apperr.MEDICINE_ALREADY_DONATED))
	}
	donated, err := s.donate(ctx, id, strings.TrimSpace(donatedTo))
	if err != nil {
		return nil, fail("medicine.donate", err)
	}
	s.publish(ctx, events.Event{Type: events.MedicineDonated, EntityID: id, ActorID: actor.ID, Status: string(donated.Status)})
	return donated, nil
}

func (s *MedicineService) donate(ctx context.Context, id, donatedTo string) (*models.Medicine, error) {
	at := s.now()
	donated, err := s.Store.TransitionMedicine(ctx, id,
		[]models.MedicineStatus{models.MedicineAvailable, models.MedicineRequested},
		store.MedicineChange{Status: models.MedicineDonated, IsDonated: true, DonatedTo: donatedTo, DonationDate: &at},
	)
	if errors.Is(err, store.ErrConflict) {
		return nil, apperr.Conflict(apperr.MEDICINE_ALREADY_DONATED)
	}
	if err != nil {
		logger.Errorf("Error from transitionMedicine (donate) %s: %v", id, err)
		return nil, storeError(err, apperr.MEDICINE_NOT_FOUND)
	}
	s.forget(ctx, cache.MedicineKey+id)
	metrics.Transition("medicine", string(models.MedicineDonated))
	return donated, nil
}

// ensureNotReserved refuses to release a medicine an accepted request still
// holds.
func (s *MedicineService) ensureNotReserved(ctx context.Context, id string) error {
	holders, err := s.Store.ListRequests(ctx, store.RequestFilter{Status: models.RequestAccepted, Medicine: id})
	if err != nil {
		logger.Errorf("Error from listRequests (reservation) %s: %v", id, err)
		return storeError(err, apperr.REQUEST_NOT_FOUND)
	}
	if len(holders) > 0 {
		return apperr.Conflict(apperr.MEDICINE_RESERVED)
	}
	return nil
}

/*
* Only the donor may set the status, admins included
* The value must be in the vocabulary and follow the state graph
* A medicine held by an accepted request cannot go back to available
* Setting the current status again changes nothing
 */
func (s *MedicineService) SetStatus(ctx context.Context, actor models.Actor, id string, raw string) (*models.Medicine, error) {
	medicine, err := s.load(ctx, id)
	if err != nil {
		return nil, fail("medicine.set_status", err)
	}
	if err := gate.Authorize(actor, gate.SetMedicineStatus, gate.Resource{Medicine: medicine}); err != nil {
		return nil, fail("medicine.set_status", err)
	}
	status, err := parseMedicineStatus(raw)
	if err != nil {
		return nil, fail("medicine.set_status", err)
	}
	if status == medicine.Status {
		return medicine, nil
	}
	if !canMoveMedicine(medicine.Status, status) {
		return nil, fail("medicine.set_status", apperr.Conflict(apperr.INVALID_MEDICINE_TRANSITION))
	}
	if medicine.Status == models.MedicineRequested && status == models.MedicineAvailable {
		if err := s.ensureNotReserved(ctx, id); err != nil {
			return nil, fail("medicine.set_status", err)
		}
	}
	var updated *models.Medicine
	if status == models.MedicineDonated {
		updated, err = s.donate(ctx, id, "")
	} else {
		updated, err = s.transition(ctx, id, medicine.Status, status)
	}
	if err != nil {
		return nil, fail("medicine.set_status", err)
	}
	s.publish(ctx, events.Event{Type: events.MedicineStatusChanged, EntityID: id, ActorID: actor.ID, Status: string(updated.Status)})
	return updated, nil
}
