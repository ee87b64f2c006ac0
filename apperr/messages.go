package apperr

const (
	INVALID_INPUT          = "Invalid input"
	NO_FIELDS_TO_UPDATE    = "No fields provided to update"
	AUTHENTICATION_MISSING = "Authentication required"
	INVALID_TOKEN          = "Invalid or expired token"

	MANUFACTURER_NOT_FOUND             = "Manufacturer not found"
	ONLY_MANUFACTURERS_CAN_CREATE      = "Only manufacturers can create profiles"
	NOT_AUTHORIZED_TO_UPDATE_PROFILE   = "Not authorized to update this profile"
	ONLY_ADMIN_CAN_VERIFY_MANUFACTURER = "Only admin can verify manufacturers"
	ONLY_ADMIN_CAN_DELETE_MANUFACTURER = "Only admin can delete manufacturers"

	MEDICINE_NOT_FOUND                = "Medicine not found"
	NOT_AUTHORIZED_TO_UPDATE_MEDICINE = "Not authorized to update this medicine"
	NOT_AUTHORIZED_TO_DELETE_MEDICINE = "Not authorized to delete this medicine"
	ONLY_DONOR_CAN_SET_STATUS         = "Only the donor can change the medicine status"
	MEDICINE_ALREADY_DONATED          = "Medicine already donated"
	MEDICINE_RESERVED                 = "Medicine is reserved by an accepted request"
	MEDICINE_NOT_AVAILABLE            = "Medicine is not available"
	INVALID_MEDICINE_STATUS           = "Invalid medicine status"
	INVALID_MEDICINE_TRANSITION       = "Medicine status cannot change that way"
	INVALID_EXPIRY_DATE               = "Invalid expiry date"

	REQUEST_NOT_FOUND                 = "Request not found"
	REQUEST_NOT_PENDING               = "Request is not pending"
	REQUEST_CANNOT_BE_FULFILLED       = "Request cannot be fulfilled in its current status"
	NOT_AUTHORIZED_TO_CANCEL_REQUEST  = "Not authorized to cancel this request"
	ONLY_MEDICINE_DONOR_CAN_RESPOND   = "Only the donor of the medicine can respond to this request"
	ACCEPT_NOT_ALLOWED_FOR_OPEN_FLOW  = "Open requests are fulfilled, not accepted"
	INVALID_REQUEST_STATUS_FILTER     = "Unknown request status filter"
	UNSUPPORTED_REQUEST_STATUS_CHANGE = "Unsupported request status change"

	DRUG_SEARCH_QUERY_MISSING = "Search query not provided"
	DRUG_SEARCH_UNAVAILABLE   = "Drug information service unavailable"
	STORE_UNAVAILABLE         = "Store unavailable"
)
