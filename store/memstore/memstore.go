// Package memstore is an in-process implementation of store.Store. It backs
// the test suites and the STORE_DRIVER=memory mode.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"MedShare/models"
	"MedShare/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu            sync.Mutex
	txMu          sync.Mutex // held by a unit of work and by medicine/request writes outside one
	medicines     map[string]models.Medicine
	requests      map[string]models.Request
	manufacturers map[string]models.Manufacturer
	users         map[string]models.UserProfile
	now           func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		medicines:     make(map[string]models.Medicine),
		requests:      make(map[string]models.Request),
		manufacturers: make(map[string]models.Manufacturer),
		users:         make(map[string]models.UserProfile),
		now:           time.Now,
	}
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

func (s *Store) stamp(created, updated *time.Time) {
	now := s.now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func (s *Store) InsertMedicine(ctx context.Context, m *models.Medicine) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = newID()
	}
	s.stamp(&m.CreatedAt, &m.UpdatedAt)
	s.medicines[m.ID] = *m
	return nil
}

func (s *Store) FindMedicine(_ context.Context, id string) (*models.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.medicines[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (s *Store) FindMedicineByName(_ context.Context, name string) (*models.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *models.Medicine
	for _, m := range s.medicines {
		if m.Name != name {
			continue
		}
		if found == nil || preferByName(m, *found) {
			m := m
			found = &m
		}
	}
	if found == nil {
		return nil, store.ErrNotFound
	}
	return found, nil
}

// preferByName orders name matches: medicines still on offer first, then the
// oldest listing.
func preferByName(a, b models.Medicine) bool {
	if a.IsDonated != b.IsDonated {
		return !a.IsDonated
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func (s *Store) ListMedicines(_ context.Context, f store.MedicineFilter) ([]models.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	terms := strings.Fields(strings.ToLower(f.Search))
	out := make([]models.Medicine, 0)
	for _, m := range s.medicines {
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.Donor != "" && m.Donor != f.Donor {
			continue
		}
		if len(terms) > 0 && !matchesAny(terms, m.Name, m.Description, m.Manufacturer) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// matchesAny mirrors a text index: a document matches when any term occurs
// in any indexed field.
func matchesAny(terms []string, fields ...string) bool {
	for _, field := range fields {
		field = strings.ToLower(field)
		for _, term := range terms {
			if strings.Contains(field, term) {
				return true
			}
		}
	}
	return false
}

func (s *Store) PatchMedicine(ctx context.Context, id string, p store.MedicinePatch) (*models.Medicine, error) {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.medicines[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Quantity != nil {
		m.Quantity = *p.Quantity
	}
	if p.ExpiryDate != nil {
		m.ExpiryDate = *p.ExpiryDate
	}
	if p.Manufacturer != nil {
		m.Manufacturer = *p.Manufacturer
	}
	m.UpdatedAt = s.now().UTC()
	s.medicines[id] = m
	return &m, nil
}

func (s *Store) DeleteMedicine(ctx context.Context, id string) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.medicines[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.medicines, id)
	return nil
}

func (s *Store) TransitionMedicine(ctx context.Context, id string, from []models.MedicineStatus, change store.MedicineChange) (*models.Medicine, error) {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.medicines[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if m.IsDonated || !containsStatus(from, m.Status) {
		return nil, store.ErrConflict
	}
	m.Status = change.Status
	if change.IsDonated {
		m.IsDonated = true
		m.DonatedTo = change.DonatedTo
		m.DonationDate = change.DonationDate
	}
	m.UpdatedAt = s.now().UTC()
	s.medicines[id] = m
	return &m, nil
}

func containsStatus[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (s *Store) InsertRequest(ctx context.Context, r *models.Request) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = newID()
	}
	s.stamp(&r.CreatedAt, &r.UpdatedAt)
	s.requests[r.ID] = *r
	return nil
}

func (s *Store) FindRequest(_ context.Context, id string) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *Store) ListRequests(_ context.Context, f store.RequestFilter) ([]models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Request, 0)
	for _, r := range s.requests {
		if f.Flow != "" && r.Flow != f.Flow {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Requester != "" && r.Requester != f.Requester {
			continue
		}
		if f.Medicine != "" && r.Medicine != f.Medicine {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) TransitionRequest(ctx context.Context, id string, from []models.RequestStatus, change store.RequestChange) (*models.Request, error) {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !containsStatus(from, r.Status) {
		return nil, store.ErrConflict
	}
	r.Status = change.Status
	if change.FulfilledBy != "" && change.FulfilledAt != nil {
		r.FulfilledBy = change.FulfilledBy
		r.FulfilledAt = change.FulfilledAt
	}
	r.UpdatedAt = s.now().UTC()
	s.requests[id] = r
	return &r, nil
}

func (s *Store) InsertManufacturer(_ context.Context, m *models.Manufacturer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = newID()
	}
	s.stamp(&m.CreatedAt, &m.UpdatedAt)
	s.manufacturers[m.ID] = *m
	return nil
}

func (s *Store) FindManufacturer(_ context.Context, id string) (*models.Manufacturer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.manufacturers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (s *Store) ListManufacturers(_ context.Context) ([]models.Manufacturer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Manufacturer, 0, len(s.manufacturers))
	for _, m := range s.manufacturers {
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) PatchManufacturer(_ context.Context, id string, p store.ManufacturerPatch) (*models.Manufacturer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.manufacturers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.LicenseNumber != nil {
		m.LicenseNumber = *p.LicenseNumber
	}
	if p.Address != nil {
		m.Address = *p.Address
	}
	if p.Website != nil {
		m.Website = *p.Website
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.IsVerified != nil {
		m.IsVerified = *p.IsVerified
	}
	m.UpdatedAt = s.now().UTC()
	s.manufacturers[id] = m
	return &m, nil
}

func (s *Store) DeleteManufacturer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.manufacturers[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.manufacturers, id)
	return nil
}

func (s *Store) SaveProfile(_ context.Context, p models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[p.ID] = p
	return nil
}

func (s *Store) FindProfiles(_ context.Context, ids []string) (map[string]models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.UserProfile, len(ids))
	for _, id := range ids {
		if p, ok := s.users[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type txKey struct{}

// exclusive keeps medicine and request writes out of a running unit of work.
// Writes issued from inside the unit carry its marker and pass straight
// through.
func (s *Store) exclusive(ctx context.Context) func() {
	if ctx.Value(txKey{}) == s {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

// WithinTransaction serialises units of work and restores the previous
// contents when fn fails. A nested call joins the outer unit.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == s {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	medicines := cloneMap(s.medicines)
	requests := cloneMap(s.requests)
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.mu.Lock()
		s.medicines = medicines
		s.requests = requests
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
