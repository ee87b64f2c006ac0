// Package mongostore implements store.Store on the MongoDB connection opened
// by the Core server bootstrap.
package mongostore

import (
	"context"
	"errors"
	"time"

	"MedShare/models"
	"MedShare/store"

	db "github.com/KanapuramVaishnavi/Core/config/db"
	"github.com/google/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Options struct {
	// Transactions enables multi-document transactions. Standalone servers
	// do not support them.
	Transactions bool
	// Collection and Client resolve handles lazily so the store can be built
	// before the bootstrap has connected.
	Collection func(name string) *mongo.Collection
	Client     func() *mongo.Client
}

type Store struct {
	opts Options
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

func New(opts Options) *Store {
	if opts.Collection == nil {
		opts.Collection = db.OpenCollections
	}
	if opts.Client == nil {
		opts.Client = func() *mongo.Client { return db.DB.Client() }
	}
	return &Store{opts: opts, now: time.Now}
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.opts.Collection(name)
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

func translate(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

/*
* Run the update guarded by the precondition filter
* If nothing matched, look the id up again to tell a missing document from a failed precondition
 */
func (s *Store) conditionalUpdate(ctx context.Context, collName, id string, filter, update bson.M, out interface{}) error {
	collection := s.coll(collName)
	err := collection.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(out)
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		logger.Errorf("Error from findOneAndUpdate on %s: %v", collName, err)
		return err
	}
	count, err := collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Errorf("Error from countDocuments on %s: %v", collName, err)
		return err
	}
	if count == 0 {
		return store.ErrNotFound
	}
	return store.ErrConflict
}

func (s *Store) findOne(ctx context.Context, collName string, filter bson.M, out interface{}) error {
	collection := s.coll(collName)
	if err := db.FindOne(ctx, collection, filter, out); err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) findAll(ctx context.Context, collName string, filter bson.M, out interface{}) error {
	cursor, err := s.coll(collName).Find(ctx, filter, newestFirst())
	if err != nil {
		logger.Errorf("Error from find on %s: %v", collName, err)
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func (s *Store) deleteOne(ctx context.Context, collName, id string) error {
	deleted, err := db.DeleteOne(ctx, s.coll(collName), bson.M{"_id": id})
	if err != nil {
		logger.Errorf("Error from deleteOne on %s: %v", collName, err)
		return err
	}
	if deleted.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) stamp(created, updated *time.Time) {
	now := s.now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func (s *Store) InsertMedicine(ctx context.Context, m *models.Medicine) error {
	if m.ID == "" {
		m.ID = newID()
	}
	s.stamp(&m.CreatedAt, &m.UpdatedAt)
	_, err := db.CreateOne(ctx, s.coll(store.MedicineCollection), m)
	return err
}

func (s *Store) FindMedicine(ctx context.Context, id string) (*models.Medicine, error) {
	var m models.Medicine
	if err := s.findOne(ctx, store.MedicineCollection, bson.M{"_id": id}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// byNameOrder resolves a name to a medicine still on offer when there is
// one, the oldest listing first.
func byNameOrder() *options.FindOneOptions {
	return options.FindOne().SetSort(bson.D{{Key: "isDonated", Value: 1}, {Key: "createdAt", Value: 1}})
}

func (s *Store) FindMedicineByName(ctx context.Context, name string) (*models.Medicine, error) {
	var m models.Medicine
	err := s.coll(store.MedicineCollection).FindOne(ctx, bson.M{"name": name}, byNameOrder()).Decode(&m)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			logger.Errorf("Error from findOne on %s by name: %v", store.MedicineCollection, err)
		}
		return nil, translate(err)
	}
	return &m, nil
}

func (s *Store) ListMedicines(ctx context.Context, f store.MedicineFilter) ([]models.Medicine, error) {
	out := make([]models.Medicine, 0)
	if err := s.findAll(ctx, store.MedicineCollection, medicineFilter(f), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func medicineFilter(f store.MedicineFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Donor != "" {
		filter["donor"] = f.Donor
	}
	if f.Search != "" {
		filter["$text"] = bson.M{"$search": f.Search}
	}
	return filter
}

func medicinePatch(p store.MedicinePatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Quantity != nil {
		set["quantity"] = *p.Quantity
	}
	if p.ExpiryDate != nil {
		set["expiryDate"] = *p.ExpiryDate
	}
	if p.Manufacturer != nil {
		set["manufacturer"] = *p.Manufacturer
	}
	return bson.M{"$set": set}
}

func (s *Store) PatchMedicine(ctx context.Context, id string, p store.MedicinePatch) (*models.Medicine, error) {
	var m models.Medicine
	err := s.coll(store.MedicineCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, medicinePatch(p, s.now().UTC()), afterUpdate()).
		Decode(&m)
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *Store) DeleteMedicine(ctx context.Context, id string) error {
	return s.deleteOne(ctx, store.MedicineCollection, id)
}

func medicineTransition(id string, from []models.MedicineStatus, change store.MedicineChange, now time.Time) (bson.M, bson.M) {
	filter := bson.M{
		"_id":       id,
		"isDonated": false,
		"status":    bson.M{"$in": from},
	}
	set := bson.M{"status": change.Status, "updatedAt": now}
	if change.IsDonated {
		set["isDonated"] = true
		set["donatedTo"] = change.DonatedTo
		set["donationDate"] = change.DonationDate
	}
	return filter, bson.M{"$set": set}
}

func (s *Store) TransitionMedicine(ctx context.Context, id string, from []models.MedicineStatus, change store.MedicineChange) (*models.Medicine, error) {
	filter, update := medicineTransition(id, from, change, s.now().UTC())
	var m models.Medicine
	if err := s.conditionalUpdate(ctx, store.MedicineCollection, id, filter, update, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) InsertRequest(ctx context.Context, r *models.Request) error {
	if r.ID == "" {
		r.ID = newID()
	}
	s.stamp(&r.CreatedAt, &r.UpdatedAt)
	_, err := db.CreateOne(ctx, s.coll(store.RequestCollection), r)
	return err
}

func (s *Store) FindRequest(ctx context.Context, id string) (*models.Request, error) {
	var r models.Request
	if err := s.findOne(ctx, store.RequestCollection, bson.M{"_id": id}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func requestFilter(f store.RequestFilter) bson.M {
	filter := bson.M{}
	if f.Flow != "" {
		filter["flow"] = f.Flow
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Requester != "" {
		filter["requester"] = f.Requester
	}
	if f.Medicine != "" {
		filter["medicine"] = f.Medicine
	}
	return filter
}

func (s *Store) ListRequests(ctx context.Context, f store.RequestFilter) ([]models.Request, error) {
	out := make([]models.Request, 0)
	if err := s.findAll(ctx, store.RequestCollection, requestFilter(f), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func requestTransition(id string, from []models.RequestStatus, change store.RequestChange, now time.Time) (bson.M, bson.M) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": from},
	}
	set := bson.M{"status": change.Status, "updatedAt": now}
	if change.FulfilledBy != "" && change.FulfilledAt != nil {
		set["fulfilledBy"] = change.FulfilledBy
		set["fulfilledAt"] = change.FulfilledAt
	}
	return filter, bson.M{"$set": set}
}

func (s *Store) TransitionRequest(ctx context.Context, id string, from []models.RequestStatus, change store.RequestChange) (*models.Request, error) {
	filter, update := requestTransition(id, from, change, s.now().UTC())
	var r models.Request
	if err := s.conditionalUpdate(ctx, store.RequestCollection, id, filter, update, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) InsertManufacturer(ctx context.Context, m *models.Manufacturer) error {
	if m.ID == "" {
		m.ID = newID()
	}
	s.stamp(&m.CreatedAt, &m.UpdatedAt)
	_, err := db.CreateOne(ctx, s.coll(store.ManufacturerCollection), m)
	return err
}

func (s *Store) FindManufacturer(ctx context.Context, id string) (*models.Manufacturer, error) {
	var m models.Manufacturer
	if err := s.findOne(ctx, store.ManufacturerCollection, bson.M{"_id": id}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) ListManufacturers(ctx context.Context) ([]models.Manufacturer, error) {
	out := make([]models.Manufacturer, 0)
	if err := s.findAll(ctx, store.ManufacturerCollection, bson.M{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func manufacturerPatch(p store.ManufacturerPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.LicenseNumber != nil {
		set["licenseNumber"] = *p.LicenseNumber
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.Website != nil {
		set["website"] = *p.Website
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.IsVerified != nil {
		set["isVerified"] = *p.IsVerified
	}
	return bson.M{"$set": set}
}

func (s *Store) PatchManufacturer(ctx context.Context, id string, p store.ManufacturerPatch) (*models.Manufacturer, error) {
	var m models.Manufacturer
	err := s.coll(store.ManufacturerCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, manufacturerPatch(p, s.now().UTC()), afterUpdate()).
		Decode(&m)
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *Store) DeleteManufacturer(ctx context.Context, id string) error {
	return s.deleteOne(ctx, store.ManufacturerCollection, id)
}

func (s *Store) SaveProfile(ctx context.Context, p models.UserProfile) error {
	_, err := s.coll(store.UserCollection).UpdateOne(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$set": bson.M{"name": p.Name, "email": p.Email, "phone": p.Phone}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *Store) FindProfiles(ctx context.Context, ids []string) (map[string]models.UserProfile, error) {
	out := make(map[string]models.UserProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := s.coll(store.UserCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		logger.Errorf("Error from find on %s: %v", store.UserCollection, err)
		return nil, err
	}
	defer cursor.Close(ctx)
	var profiles []models.UserProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out, nil
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.opts.Transactions {
		return fn(ctx)
	}
	session, err := s.opts.Client().StartSession()
	if err != nil {
		logger.Errorf("Error from startSession: %v", err)
		return err
	}
	defer session.EndSession(ctx)
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
