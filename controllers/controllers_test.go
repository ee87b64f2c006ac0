package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MedShare/middleware"
	"MedShare/models"
	"MedShare/role"
	"MedShare/services"
	"MedShare/store"
	"MedShare/store/memstore"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "controller-secret"

var (
	donor     = models.Actor{ID: "d1", Name: "Dana", Email: "dana@example.com", Role: role.Donor}
	requester = models.Actor{ID: "r1", Name: "Rae", Email: "rae@example.com", Role: role.Donor}
	admin     = models.Actor{ID: "a1", Name: "Ada", Email: "ada@example.com", Role: role.Admin}
	maker     = models.Actor{ID: "m1", Name: "Milo", Email: "milo@example.com", Role: role.Manufacturer}
)

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	store  *memstore.Store
}

func newAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fda := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	t.Cleanup(fda.Close)

	st := memstore.New()
	deps := services.Deps{Store: st}
	medicines := services.NewMedicineService(deps)
	requests := services.NewRequestService(deps, medicines)
	router := gin.New()
	auth := middleware.Authenticate(secret)
	Manufacturers(router, auth, services.NewManufacturerService(deps))
	Medicines(router, auth, medicines, requests, services.NewDrugSearchService(fda.URL, time.Second))
	Requests(router, auth, requests)
	return &testAPI{t: t, router: router, store: st}
}

// do sends body as JSON on behalf of actor, anonymously when actor is nil.
func (a *testAPI) do(method, path string, actor *models.Actor, body interface{}) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		token, err := middleware.SignToken(secret, *actor, time.Hour)
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w.Code
}

func (a *testAPI) onlyRequest() string {
	a.t.Helper()
	requests, err := a.store.ListRequests(context.Background(), store.RequestFilter{})
	require.NoError(a.t, err)
	require.Len(a.t, requests, 1)
	return requests[0].ID
}

func (a *testAPI) listMedicine(actor models.Actor, name string) string {
	a.t.Helper()
	code := a.do(http.MethodPost, "/medicines", &actor, map[string]interface{}{
		"name": name, "quantity": 5, "expiryDate": "2027-03-01", "manufacturer": "Acme",
	})
	require.Equal(a.t, http.StatusCreated, code)
	medicine, err := a.store.FindMedicineByName(context.Background(), name)
	require.NoError(a.t, err)
	return medicine.ID
}

func TestMedicineRoutes(t *testing.T) {
	api := newAPI(t)
	medicineID := api.listMedicine(donor, "Paracetamol")

	code := api.do(http.MethodPost, "/medicines", nil, map[string]interface{}{"name": "X"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code = api.do(http.MethodPost, "/medicines", &donor, map[string]interface{}{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, code)

	code = api.do(http.MethodGet, "/medicines?search=paracetamol", nil, nil)
	assert.Equal(t, http.StatusOK, code)
	code = api.do(http.MethodGet, "/medicines/"+medicineID, nil, nil)
	assert.Equal(t, http.StatusOK, code)
	code = api.do(http.MethodGet, "/medicines/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code = api.do(http.MethodPatch, "/medicines/"+medicineID, &requester, map[string]interface{}{"quantity": 2})
	assert.Equal(t, http.StatusForbidden, code)
	code = api.do(http.MethodPatch, "/medicines/"+medicineID+"/status", &admin, map[string]string{"status": "requested"})
	assert.Equal(t, http.StatusForbidden, code)
	code = api.do(http.MethodPatch, "/medicines/"+medicineID+"/status", &donor, map[string]string{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, code)

	code = api.do(http.MethodPost, "/medicines/"+medicineID+"/donate", &requester, map[string]string{"donatedTo": "Clinic"})
	assert.Equal(t, http.StatusOK, code)
	code = api.do(http.MethodPost, "/medicines/"+medicineID+"/donate", &requester, nil)
	assert.Equal(t, http.StatusConflict, code)

	code = api.do(http.MethodDelete, "/medicines/"+medicineID, &admin, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestDrugSearchRoute(t *testing.T) {
	api := newAPI(t)
	code := api.do(http.MethodGet, "/medicines/search?query=tylenol", nil, nil)
	assert.Equal(t, http.StatusOK, code)
	code = api.do(http.MethodGet, "/medicines/search", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestOpenRequestRoutes(t *testing.T) {
	api := newAPI(t)
	medicineID := api.listMedicine(donor, "Ventolin")

	code := api.do(http.MethodPost, "/medicines/request", &requester, map[string]interface{}{"medicineId": medicineID})
	require.Equal(t, http.StatusCreated, code)
	requestID := api.onlyRequest()

	code = api.do(http.MethodGet, "/medicines/requests/all", &requester, nil)
	assert.Equal(t, http.StatusOK, code)
	code = api.do(http.MethodGet, "/medicines/requests/my", &requester, nil)
	assert.Equal(t, http.StatusOK, code)

	code = api.do(http.MethodPost, "/medicines/requests/"+requestID+"/cancel", &donor, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code = api.do(http.MethodPost, "/medicines/requests/"+requestID+"/fulfill", &requester, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code = api.do(http.MethodPost, "/medicines/requests/"+requestID+"/fulfill", &donor, nil)
	assert.Equal(t, http.StatusOK, code)
	code = api.do(http.MethodPost, "/medicines/requests/"+requestID+"/cancel", &requester, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestDirectRequestRoutes(t *testing.T) {
	api := newAPI(t)
	medicineID := api.listMedicine(donor, "Keppra")

	code := api.do(http.MethodGet, "/requests", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code = api.do(http.MethodPost, "/requests", &requester, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)

	code = api.do(http.MethodPost, "/requests", &requester, map[string]interface{}{"medicineName": "Keppra", "urgency": "high"})
	require.Equal(t, http.StatusCreated, code)
	requestID := api.onlyRequest()

	code = api.do(http.MethodGet, "/requests/"+requestID, &donor, nil)
	assert.Equal(t, http.StatusOK, code)
	code = api.do(http.MethodGet, "/requests?mine=true&status=pending", &requester, nil)
	assert.Equal(t, http.StatusOK, code)

	code = api.do(http.MethodPatch, "/requests/"+requestID+"/status", &requester, map[string]string{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, code)
	code = api.do(http.MethodPatch, "/requests/"+requestID+"/status", &donor, map[string]string{"status": "accepted"})
	assert.Equal(t, http.StatusOK, code)

	medicine, err := api.store.FindMedicine(context.Background(), medicineID)
	require.NoError(t, err)
	assert.Equal(t, models.MedicineRequested, medicine.Status)

	code = api.do(http.MethodPost, "/requests/"+requestID+"/cancel", &requester, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestManufacturerRoutes(t *testing.T) {
	api := newAPI(t)

	code := api.do(http.MethodPost, "/manufacturers", &donor, map[string]string{"name": "Acme"})
	assert.Equal(t, http.StatusForbidden, code)
	code = api.do(http.MethodPost, "/manufacturers", &maker, map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusCreated, code)
	manufacturers, err := api.store.ListManufacturers(context.Background())
	require.NoError(t, err)
	require.Len(t, manufacturers, 1)
	manufacturerID := manufacturers[0].ID

	code = api.do(http.MethodGet, "/manufacturers", nil, nil)
	assert.Equal(t, http.StatusOK, code)
	code = api.do(http.MethodGet, "/manufacturers/"+manufacturerID, nil, nil)
	assert.Equal(t, http.StatusOK, code)

	code = api.do(http.MethodPatch, "/manufacturers/"+manufacturerID, &maker, map[string]bool{"isVerified": true})
	assert.Equal(t, http.StatusForbidden, code)
	code = api.do(http.MethodPatch, "/manufacturers/"+manufacturerID+"/verify", &maker, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code = api.do(http.MethodPatch, "/manufacturers/"+manufacturerID+"/verify", &admin, nil)
	assert.Equal(t, http.StatusOK, code)
	code = api.do(http.MethodPatch, "/manufacturers/"+manufacturerID+"/verify", &admin, nil)
	assert.Equal(t, http.StatusOK, code)

	code = api.do(http.MethodDelete, "/manufacturers/"+manufacturerID, &maker, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code = api.do(http.MethodDelete, "/manufacturers/"+manufacturerID, &admin, nil)
	assert.Equal(t, http.StatusOK, code)
}
