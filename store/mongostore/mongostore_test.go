package mongostore

import (
	"testing"
	"time"

	"MedShare/models"
	"MedShare/store"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMedicineFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, medicineFilter(store.MedicineFilter{}))
	assert.Equal(t, bson.M{
		"status": models.MedicineAvailable,
		"$text":  bson.M{"$search": "insulin"},
	}, medicineFilter(store.MedicineFilter{Status: models.MedicineAvailable, Search: "insulin"}))
}

func TestMedicineTransitionGuardsDonation(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	from := []models.MedicineStatus{models.MedicineAvailable, models.MedicineRequested}
	filter, update := medicineTransition("m1", from, store.MedicineChange{
		Status: models.MedicineDonated, IsDonated: true, DonatedTo: "clinic", DonationDate: &now,
	}, now)

	assert.Equal(t, false, filter["isDonated"])
	assert.Equal(t, bson.M{"$in": from}, filter["status"])
	set := update["$set"].(bson.M)
	assert.Equal(t, true, set["isDonated"])
	assert.Equal(t, "clinic", set["donatedTo"])
	assert.Equal(t, models.MedicineDonated, set["status"])
}

func TestRequestTransitionStampsTogether(t *testing.T) {
	now := time.Now()
	_, update := requestTransition("r1", []models.RequestStatus{models.RequestPending}, store.RequestChange{
		Status: models.RequestFulfilled, FulfilledBy: "u1",
	}, now)
	set := update["$set"].(bson.M)
	assert.NotContains(t, set, "fulfilledBy")
	assert.NotContains(t, set, "fulfilledAt")

	_, update = requestTransition("r1", []models.RequestStatus{models.RequestPending}, store.RequestChange{
		Status: models.RequestFulfilled, FulfilledBy: "u1", FulfilledAt: &now,
	}, now)
	set = update["$set"].(bson.M)
	assert.Equal(t, "u1", set["fulfilledBy"])
	assert.Equal(t, &now, set["fulfilledAt"])
}

func TestPatchesOnlySetProvidedFields(t *testing.T) {
	now := time.Now()
	name := "Cetirizine"
	set := medicinePatch(store.MedicinePatch{Name: &name}, now)["$set"].(bson.M)
	assert.Equal(t, bson.M{"name": name, "updatedAt": now}, set)

	verified := true
	set = manufacturerPatch(store.ManufacturerPatch{IsVerified: &verified}, now)["$set"].(bson.M)
	assert.Equal(t, bson.M{"isVerified": true, "updatedAt": now}, set)
}

func TestRequestFilter(t *testing.T) {
	assert.Equal(t, bson.M{"flow": models.FlowOpen, "requester": "u1"},
		requestFilter(store.RequestFilter{Flow: models.FlowOpen, Requester: "u1"}))
	assert.Equal(t, bson.M{"status": models.RequestAccepted, "medicine": "m1"},
		requestFilter(store.RequestFilter{Status: models.RequestAccepted, Medicine: "m1"}))
}

func TestByNameOrderPrefersUndonatedOldest(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "isDonated", Value: 1}, {Key: "createdAt", Value: 1}}, byNameOrder().Sort)
}
