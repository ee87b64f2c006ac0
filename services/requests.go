package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"MedShare/apperr"
	"MedShare/events"
	"MedShare/gate"
	"MedShare/metrics"
	"MedShare/models"
	"MedShare/store"

	"github.com/google/logger"
)

// placeholderShelfLife is the expiry given to medicines synthesized for a
// request.
const placeholderShelfLife = 365 * 24 * time.Hour

type CreateRequestInput struct {
	MedicineID   string `json:"medicineId"`
	MedicineName string `json:"medicineName" validate:"required_without=MedicineID"`
	Description  string `json:"description"`
	Quantity     int    `json:"quantity" validate:"omitempty,min=1"`
	Urgency      string `json:"urgency" validate:"omitempty,oneof=low medium high critical"`
}

type RequestQuery struct {
	Flow   models.RequestFlow
	Status string
	// Mine narrows the listing to the caller's own requests.
	Mine bool
}

type RequestService struct {
	Deps
	medicines *MedicineService
}

func NewRequestService(d Deps, medicines *MedicineService) *RequestService {
	return &RequestService{Deps: d.withDefaults(), medicines: medicines}
}

func parseRequestStatus(raw string) (models.RequestStatus, bool) {
	status := models.RequestStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case models.RequestPending, models.RequestAccepted, models.RequestFulfilled, models.RequestCancelled, models.RequestRejected:
		return status, true
	}
	return "", false
}

func unsupportedStatusChange() error {
	return apperr.Validation(apperr.UNSUPPORTED_REQUEST_STATUS_CHANGE, map[string]string{"status": "oneof=accepted fulfilled rejected"})
}

/*
* Validate the input, quantity defaults to 1 and urgency to medium
* Resolve the target medicine by id, else by name
* If no medicine has that name, synthesize a placeholder owned by the requester
* Placeholder and request are written as one unit of work
 */
func (s *RequestService) Create(ctx context.Context, actor models.Actor, flow models.RequestFlow, in CreateRequestInput) (*models.RequestView, error) {
	if actor.ID == "" {
		return nil, fail("request.create", apperr.Forbidden(apperr.AUTHENTICATION_MISSING))
	}
	in.MedicineID = strings.TrimSpace(in.MedicineID)
	in.MedicineName = strings.TrimSpace(in.MedicineName)
	in.Description = strings.TrimSpace(in.Description)
	in.Urgency = strings.ToLower(strings.TrimSpace(in.Urgency))
	if err := validateInput(in); err != nil {
		return nil, fail("request.create", err)
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Urgency == "" {
		in.Urgency = models.UrgencyMedium
	}
	if flow != models.FlowOpen {
		flow = models.FlowDirect
	}

	request := &models.Request{
		Flow:        flow,
		Requester:   actor.ID,
		Description: in.Description,
		Quantity:    in.Quantity,
		Urgency:     in.Urgency,
		Status:      models.RequestPending,
	}
	var synthesized *models.Medicine
	err := s.Store.WithinTransaction(ctx, func(ctx context.Context) error {
		medicine, created, err := s.resolveMedicine(ctx, actor, in)
		if err != nil {
			return err
		}
		if created {
			synthesized = medicine
		}
		request.Medicine = medicine.ID
		request.MedicineName = medicine.Name
		if err := s.Store.InsertRequest(ctx, request); err != nil {
			logger.Errorf("Error from insertRequest: %v", err)
			return storeError(err, apperr.REQUEST_NOT_FOUND)
		}
		return nil
	})
	if err != nil {
		return nil, fail("request.create", err)
	}
	s.saveProfile(ctx, actor)
	if synthesized != nil {
		metrics.Transition("medicine", string(synthesized.Status))
		s.publish(ctx, events.Event{Type: events.MedicineCreated, EntityID: synthesized.ID, ActorID: actor.ID, Status: string(synthesized.Status)})
	}
	metrics.Transition("request", string(request.Status))
	s.publish(ctx, events.Event{Type: events.RequestCreated, EntityID: request.ID, ActorID: actor.ID, Status: string(request.Status)})

	views, err := s.requestViews(ctx, []models.Request{*request})
	if err != nil {
		return nil, fail("request.create", err)
	}
	return &views[0], nil
}

func (s *RequestService) resolveMedicine(ctx context.Context, actor models.Actor, in CreateRequestInput) (*models.Medicine, bool, error) {
	if in.MedicineID != "" {
		medicine, err := s.medicines.load(ctx, in.MedicineID)
		return medicine, false, err
	}
	medicine, err := s.Store.FindMedicineByName(ctx, in.MedicineName)
	if err == nil {
		return medicine, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		logger.Errorf("Error from findMedicineByName %q: %v", in.MedicineName, err)
		return nil, false, storeError(err, apperr.MEDICINE_NOT_FOUND)
	}
	placeholder := &models.Medicine{
		Name:         in.MedicineName,
		Description:  in.Description,
		Quantity:     1,
		ExpiryDate:   s.now().Add(placeholderShelfLife),
		Donor:        actor.ID,
		Manufacturer: models.PlaceholderManufacturer,
		Status:       models.MedicineRequested,
		Placeholder:  true,
	}
	if err := s.Store.InsertMedicine(ctx, placeholder); err != nil {
		logger.Errorf("Error from insertMedicine (placeholder): %v", err)
		return nil, false, storeError(err, apperr.MEDICINE_NOT_FOUND)
	}
	return placeholder, true, nil
}

func (s *RequestService) load(ctx context.Context, id string) (*models.Request, error) {
	request, err := s.Store.FindRequest(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Errorf("Error from findRequest %s: %v", id, err)
		}
		return nil, storeError(err, apperr.REQUEST_NOT_FOUND)
	}
	return request, nil
}

// loadWithMedicine fetches a request and its target medicine, the pair every
// donor-side rule looks at.
func (s *RequestService) loadWithMedicine(ctx context.Context, id string) (*models.Request, *models.Medicine, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	medicine, err := s.medicines.load(ctx, request.Medicine)
	if err != nil {
		return nil, nil, err
	}
	return request, medicine, nil
}

func (s *RequestService) Get(ctx context.Context, id string) (*models.RequestView, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, fail("request.get", err)
	}
	views, err := s.requestViews(ctx, []models.Request{*request})
	if err != nil {
		return nil, fail("request.get", err)
	}
	return &views[0], nil
}

func (s *RequestService) List(ctx context.Context, actor models.Actor, q RequestQuery) ([]models.RequestView, error) {
	filter := store.RequestFilter{Flow: q.Flow}
	if q.Status != "" {
		status, ok := parseRequestStatus(q.Status)
		if !ok {
			return nil, fail("request.list", apperr.Validation(apperr.INVALID_REQUEST_STATUS_FILTER,
				map[string]string{"status": "oneof=pending accepted fulfilled cancelled rejected"}))
		}
		filter.Status = status
	}
	if q.Mine {
		if actor.ID == "" {
			return nil, fail("request.list", apperr.Forbidden(apperr.AUTHENTICATION_MISSING))
		}
		filter.Requester = actor.ID
	}
	requests, err := s.Store.ListRequests(ctx, filter)
	if err != nil {
		logger.Errorf("Error from listRequests: %v", err)
		return nil, fail("request.list", storeError(err, apperr.REQUEST_NOT_FOUND))
	}
	views, err := s.requestViews(ctx, requests)
	if err != nil {
		return nil, fail("request.list", err)
	}
	return views, nil
}

func (s *RequestService) move(ctx context.Context, id string, from []models.RequestStatus, change store.RequestChange) (*models.Request, error) {
	updated, err := s.Store.TransitionRequest(ctx, id, from, change)
	if errors.Is(err, store.ErrConflict) {
		return nil, apperr.Conflict(apperr.REQUEST_NOT_PENDING)
	}
	if err != nil {
		logger.Errorf("Error from transitionRequest %s: %v", id, err)
		return nil, storeError(err, apperr.REQUEST_NOT_FOUND)
	}
	return updated, nil
}

func (s *RequestService) Accept(ctx context.Context, actor models.Actor, id string) (*models.Request, error) {
	request, medicine, err := s.loadWithMedicine(ctx, id)
	if err != nil {
		return nil, fail("request.accept", err)
	}
	if err := gate.Authorize(actor, gate.UpdateRequestStatus, gate.Resource{Request: request, Medicine: medicine}); err != nil {
		return nil, fail("request.accept", err)
	}
	accepted, err := s.accept(ctx, actor, request, medicine)
	if err != nil {
		return nil, fail("request.accept", err)
	}
	return accepted, nil
}

/*
* Only pending direct requests can be accepted
* The target medicine must be available, a placeholder already marked requested is taken as is
* Request and medicine are updated in one unit of work
 */
func (s *RequestService) accept(ctx context.Context, actor models.Actor, request *models.Request, medicine *models.Medicine) (*models.Request, error) {
	if request.Flow == models.FlowOpen {
		return nil, apperr.Conflict(apperr.ACCEPT_NOT_ALLOWED_FOR_OPEN_FLOW)
	}
	if request.Status != models.RequestPending {
		return nil, apperr.Conflict(apperr.REQUEST_NOT_PENDING)
	}
	reserve := true
	switch {
	case medicine.Status == models.MedicineAvailable:
	case medicine.Status == models.MedicineRequested && medicine.Placeholder:
		reserve = false
	default:
		return nil, apperr.Conflict(apperr.MEDICINE_NOT_AVAILABLE)
	}

	at := s.now()
	var accepted *models.Request
	err := s.Store.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		accepted, err = s.move(ctx, request.ID, []models.RequestStatus{models.RequestPending}, store.RequestChange{
			Status:      models.RequestAccepted,
			FulfilledBy: actor.ID,
			FulfilledAt: &at,
		})
		if err != nil {
			return err
		}
		if reserve {
			if _, err := s.medicines.transition(ctx, medicine.ID, models.MedicineAvailable, models.MedicineRequested); err != nil {
				logger.Errorf("Error reserving medicine %s for request %s: %v", medicine.ID, request.ID, err)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Transition("request", string(accepted.Status))
	s.publish(ctx, events.Event{Type: events.RequestAccepted, EntityID: accepted.ID, ActorID: actor.ID, Status: string(accepted.Status)})
	return accepted, nil
}

func (s *RequestService) Fulfill(ctx context.Context, actor models.Actor, id string) (*models.Request, error) {
	request, medicine, err := s.loadWithMedicine(ctx, id)
	if err != nil {
		return nil, fail("request.fulfill", err)
	}
	if err := gate.Authorize(actor, gate.FulfillRequest, gate.Resource{Request: request, Medicine: medicine}); err != nil {
		return nil, fail("request.fulfill", err)
	}
	fulfilled, err := s.fulfill(ctx, actor, request, medicine)
	if err != nil {
		return nil, fail("request.fulfill", err)
	}
	return fulfilled, nil
}

/*
* Pending requests get fulfilledBy and fulfilledAt stamped now
* Accepted requests keep the stamps set on acceptance
* A real medicine must still be undonated, it is donated to the requester first
* The request is closed only once the medicine write succeeded
 */
func (s *RequestService) fulfill(ctx context.Context, actor models.Actor, request *models.Request, medicine *models.Medicine) (*models.Request, error) {
	change := store.RequestChange{Status: models.RequestFulfilled}
	switch request.Status {
	case models.RequestPending:
		at := s.now()
		change.FulfilledBy = actor.ID
		change.FulfilledAt = &at
	case models.RequestAccepted:
	default:
		return nil, apperr.Conflict(apperr.REQUEST_CANNOT_BE_FULFILLED)
	}
	if !medicine.Placeholder && medicine.IsDonated {
		return nil, apperr.Conflict(apperr.MEDICINE_ALREADY_DONATED)
	}

	var fulfilled *models.Request
	err := s.Store.WithinTransaction(ctx, func(ctx context.Context) error {
		if !medicine.Placeholder {
			if _, err := s.medicines.donate(ctx, medicine.ID, request.Requester); err != nil {
				logger.Errorf("Error donating medicine %s for request %s: %v", medicine.ID, request.ID, err)
				return err
			}
		}
		var err error
		fulfilled, err = s.move(ctx, request.ID, []models.RequestStatus{request.Status}, change)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.Transition("request", string(fulfilled.Status))
	s.publish(ctx, events.Event{Type: events.RequestFulfilled, EntityID: fulfilled.ID, ActorID: actor.ID, Status: string(fulfilled.Status)})
	if !medicine.Placeholder {
		s.publish(ctx, events.Event{Type: events.MedicineDonated, EntityID: medicine.ID, ActorID: actor.ID, Status: string(models.MedicineDonated)})
	}
	return fulfilled, nil
}

func (s *RequestService) Reject(ctx context.Context, actor models.Actor, id string) (*models.Request, error) {
	request, medicine, err := s.loadWithMedicine(ctx, id)
	if err != nil {
		return nil, fail("request.reject", err)
	}
	if err := gate.Authorize(actor, gate.RejectRequest, gate.Resource{Request: request, Medicine: medicine}); err != nil {
		return nil, fail("request.reject", err)
	}
	rejected, err := s.reject(ctx, actor, request)
	if err != nil {
		return nil, fail("request.reject", err)
	}
	return rejected, nil
}

func (s *RequestService) reject(ctx context.Context, actor models.Actor, request *models.Request) (*models.Request, error) {
	rejected, err := s.move(ctx, request.ID, []models.RequestStatus{models.RequestPending}, store.RequestChange{Status: models.RequestRejected})
	if err != nil {
		return nil, err
	}
	metrics.Transition("request", string(rejected.Status))
	s.publish(ctx, events.Event{Type: events.RequestRejected, EntityID: rejected.ID, ActorID: actor.ID, Status: string(rejected.Status)})
	return rejected, nil
}

/*
* Only the requester may cancel, whatever the current status
* Only pending requests can be cancelled
 */
func (s *RequestService) Cancel(ctx context.Context, actor models.Actor, id string) (*models.Request, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, fail("request.cancel", err)
	}
	if err := gate.Authorize(actor, gate.CancelRequest, gate.Resource{Request: request}); err != nil {
		return nil, fail("request.cancel", err)
	}
	cancelled, err := s.move(ctx, id, []models.RequestStatus{models.RequestPending}, store.RequestChange{Status: models.RequestCancelled})
	if err != nil {
		return nil, fail("request.cancel", err)
	}
	metrics.Transition("request", string(cancelled.Status))
	s.publish(ctx, events.Event{Type: events.RequestCancelled, EntityID: id, ActorID: actor.ID, Status: string(cancelled.Status)})
	return cancelled, nil
}

// UpdateStatus is the donor-side status action of direct requests.
func (s *RequestService) UpdateStatus(ctx context.Context, actor models.Actor, id string, raw string) (*models.Request, error) {
	request, medicine, err := s.loadWithMedicine(ctx, id)
	if err != nil {
		return nil, fail("request.update_status", err)
	}
	if err := gate.Authorize(actor, gate.UpdateRequestStatus, gate.Resource{Request: request, Medicine: medicine}); err != nil {
		return nil, fail("request.update_status", err)
	}
	status, ok := parseRequestStatus(raw)
	if !ok {
		return nil, fail("request.update_status", unsupportedStatusChange())
	}
	var updated *models.Request
	switch status {
	case models.RequestAccepted:
		updated, err = s.accept(ctx, actor, request, medicine)
	case models.RequestFulfilled:
		updated, err = s.fulfill(ctx, actor, request, medicine)
	case models.RequestRejected:
		updated, err = s.reject(ctx, actor, request)
	default:
		err = unsupportedStatusChange()
	}
	if err != nil {
		return nil, fail("request.update_status", err)
	}
	return updated, nil
}

/*
* Find accepted requests whose medicine is available again
* Only a reservation lost between the two writes of accept leaves that state, the donor cannot release it
* Reserve the medicine again
* Returns how many were repaired
 */
func (s *RequestService) Reconcile(ctx context.Context) (int, error) {
	accepted, err := s.Store.ListRequests(ctx, store.RequestFilter{Status: models.RequestAccepted})
	if err != nil {
		logger.Errorf("Error from listRequests (reconcile): %v", err)
		return 0, fail("request.reconcile", storeError(err, apperr.REQUEST_NOT_FOUND))
	}
	repaired := 0
	for _, request := range accepted {
		medicine, err := s.Store.FindMedicine(ctx, request.Medicine)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			logger.Errorf("Error from findMedicine (reconcile) %s: %v", request.Medicine, err)
			return repaired, fail("request.reconcile", storeError(err, apperr.MEDICINE_NOT_FOUND))
		}
		if medicine.Status != models.MedicineAvailable {
			continue
		}
		if _, err := s.medicines.transition(ctx, medicine.ID, models.MedicineAvailable, models.MedicineRequested); err != nil {
			if apperr.Is(err, apperr.KindConflict) {
				continue
			}
			return repaired, fail("request.reconcile", err)
		}
		logger.Infof("Reconciled medicine %s for accepted request %s", medicine.ID, request.ID)
		repaired++
	}
	return repaired, nil
}
