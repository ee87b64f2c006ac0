// Package gate decides whether an actor may perform an action on a
// resource. It never touches storage.
package gate

import (
	"MedShare/apperr"
	"MedShare/models"
	"MedShare/role"
)

type Action string

const (
	CreateManufacturer  Action = "manufacturer:create"
	UpdateManufacturer  Action = "manufacturer:update"
	VerifyManufacturer  Action = "manufacturer:verify"
	DeleteManufacturer  Action = "manufacturer:delete"
	UpdateMedicine      Action = "medicine:update"
	DeleteMedicine      Action = "medicine:delete"
	DonateMedicine      Action = "medicine:donate"
	SetMedicineStatus   Action = "medicine:status"
	CancelRequest       Action = "request:cancel"
	FulfillRequest      Action = "request:fulfill"
	UpdateRequestStatus Action = "request:status"
	RejectRequest       Action = "request:reject"
)

// Resource carries the ownership facts the rules look at. Only the fields
// relevant to the action need to be set.
type Resource struct {
	Manufacturer *models.Manufacturer
	Medicine     *models.Medicine
	Request      *models.Request
}

/*
* Unauthenticated actors are denied everything
* Manufacturer profiles: create by manufacturers, update by contact or admin, verify/delete by admin
* Medicines: update/delete by donor or admin, status only by donor, donate by anyone
* Requests: cancel by requester, respond by the donor of the target medicine
 */
func Authorize(actor models.Actor, action Action, res Resource) error {
	if actor.ID == "" {
		return apperr.Forbidden(apperr.AUTHENTICATION_MISSING)
	}
	isAdmin := role.Normalize(actor.Role) == role.Admin

	switch action {
	case CreateManufacturer:
		if role.Normalize(actor.Role) != role.Manufacturer {
			return apperr.Forbidden(apperr.ONLY_MANUFACTURERS_CAN_CREATE)
		}
		return nil
	case UpdateManufacturer:
		if res.Manufacturer != nil && res.Manufacturer.ContactPerson.Email != "" &&
			res.Manufacturer.ContactPerson.Email == actor.Email {
			return nil
		}
		if isAdmin {
			return nil
		}
		return apperr.Forbidden(apperr.NOT_AUTHORIZED_TO_UPDATE_PROFILE)
	case VerifyManufacturer:
		if !isAdmin {
			return apperr.Forbidden(apperr.ONLY_ADMIN_CAN_VERIFY_MANUFACTURER)
		}
		return nil
	case DeleteManufacturer:
		if !isAdmin {
			return apperr.Forbidden(apperr.ONLY_ADMIN_CAN_DELETE_MANUFACTURER)
		}
		return nil
	case UpdateMedicine:
		if isDonor(actor, res.Medicine) || isAdmin {
			return nil
		}
		return apperr.Forbidden(apperr.NOT_AUTHORIZED_TO_UPDATE_MEDICINE)
	case DeleteMedicine:
		if isDonor(actor, res.Medicine) || isAdmin {
			return nil
		}
		return apperr.Forbidden(apperr.NOT_AUTHORIZED_TO_DELETE_MEDICINE)
	case DonateMedicine:
		// No ownership rule: any authenticated caller may record a donation.
		return nil
	case SetMedicineStatus:
		// Admin is not exempt here, unlike update and delete.
		if isDonor(actor, res.Medicine) {
			return nil
		}
		return apperr.Forbidden(apperr.ONLY_DONOR_CAN_SET_STATUS)
	case CancelRequest:
		if res.Request != nil && res.Request.Requester == actor.ID {
			return nil
		}
		return apperr.Forbidden(apperr.NOT_AUTHORIZED_TO_CANCEL_REQUEST)
	case FulfillRequest, UpdateRequestStatus, RejectRequest:
		if isDonor(actor, res.Medicine) {
			return nil
		}
		return apperr.Forbidden(apperr.ONLY_MEDICINE_DONOR_CAN_RESPOND)
	}
	return apperr.Forbidden("Unknown action " + string(action))
}

func isDonor(actor models.Actor, m *models.Medicine) bool {
	return m != nil && m.Donor != "" && m.Donor == actor.ID
}
