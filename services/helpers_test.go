package services

import (
	"context"
	"testing"
	"time"

	"MedShare/apperr"
	"MedShare/cache"
	"MedShare/events"
	"MedShare/models"
	"MedShare/role"
	"MedShare/store"
	"MedShare/store/memstore"

	"github.com/stretchr/testify/require"
)

var (
	donor     = models.Actor{ID: "u-donor", Name: "Dana Donor", Email: "dana@example.com", Role: role.Donor}
	requester = models.Actor{ID: "u-req", Name: "Rae Requester", Email: "rae@example.com", Role: role.Donor}
	stranger  = models.Actor{ID: "u-other", Name: "Sam", Email: "sam@example.com", Role: role.Donor}
	admin     = models.Actor{ID: "u-admin", Name: "Ada Admin", Email: "ada@example.com", Role: role.Admin}
	maker     = models.Actor{ID: "u-maker", Name: "Milo", Email: "milo@pharma.example", Phone: "555-0100", Role: role.Manufacturer}
)

var fixedNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store         *memstore.Store
	cache         *cache.Memory
	events        *events.Recorder
	medicines     *MedicineService
	requests      *RequestService
	manufacturers *ManufacturerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, nil)
}

// newFixtureOn builds the services over wrap(memory store) when wrap is set.
func newFixtureOn(t *testing.T, wrap func(*memstore.Store) store.Store) *fixture {
	t.Helper()
	f := &fixture{
		store:  memstore.New(),
		cache:  cache.NewMemory(),
		events: &events.Recorder{},
	}
	var st store.Store = f.store
	if wrap != nil {
		st = wrap(f.store)
	}
	deps := Deps{Store: st, Cache: f.cache, Events: f.events, Now: func() time.Time { return fixedNow }}
	f.medicines = NewMedicineService(deps)
	f.requests = NewRequestService(deps, f.medicines)
	f.manufacturers = NewManufacturerService(deps)
	return f
}

func (f *fixture) listMedicine(t *testing.T, owner models.Actor, name string) *models.Medicine {
	t.Helper()
	m, err := f.medicines.Create(context.Background(), owner, CreateMedicineInput{
		Name:         name,
		Description:  name + " tablets",
		Quantity:     10,
		ExpiryDate:   "2027-06-30",
		Manufacturer: "Acme Pharma",
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) request(t *testing.T, flow models.RequestFlow, medicine *models.Medicine) *models.RequestView {
	t.Helper()
	r, err := f.requests.Create(context.Background(), requester, flow, CreateRequestInput{MedicineID: medicine.ID, Quantity: 2})
	require.NoError(t, err)
	return r
}

func requireKind(t *testing.T, kind apperr.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
}

// sequentialStore runs units of work without rollback, like a MongoDB
// deployment without transactions.
type sequentialStore struct {
	*memstore.Store
}

func (s sequentialStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// staleStore serves medicine reads from a copy frozen by freeze, as a reader
// racing a concurrent writer would see them.
type staleStore struct {
	sequentialStore
	frozen map[string]models.Medicine
}

func (s *staleStore) freeze(t *testing.T, id string) {
	t.Helper()
	m, err := s.Store.FindMedicine(context.Background(), id)
	require.NoError(t, err)
	s.frozen[id] = *m
}

func (s *staleStore) FindMedicine(ctx context.Context, id string) (*models.Medicine, error) {
	if m, ok := s.frozen[id]; ok {
		return &m, nil
	}
	return s.Store.FindMedicine(ctx, id)
}
