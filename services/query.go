package services

import (
	"context"
	"errors"

	"MedShare/apperr"
	"MedShare/models"
	"MedShare/store"

	"github.com/google/logger"
)

func (d Deps) profiles(ctx context.Context, ids ...string) (map[string]models.UserProfile, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	found, err := d.Store.FindProfiles(ctx, unique)
	if err != nil {
		logger.Errorf("Error from findProfiles: %v", err)
		return nil, storeError(err, apperr.STORE_UNAVAILABLE)
	}
	return found, nil
}

// refOf populates a user reference. Users the directory has never seen keep
// their id with an empty name.
func refOf(profiles map[string]models.UserProfile, id string) *models.UserRef {
	if id == "" {
		return nil
	}
	if p, ok := profiles[id]; ok {
		return &models.UserRef{ID: id, Name: p.Name}
	}
	return &models.UserRef{ID: id}
}

func (d Deps) medicineViews(ctx context.Context, medicines []models.Medicine) ([]models.MedicineView, error) {
	ids := make([]string, 0, len(medicines))
	for _, m := range medicines {
		ids = append(ids, m.Donor)
	}
	profiles, err := d.profiles(ctx, ids...)
	if err != nil {
		return nil, err
	}
	views := make([]models.MedicineView, 0, len(medicines))
	for _, m := range medicines {
		views = append(views, models.MedicineView{Medicine: m, DonorRef: refOf(profiles, m.Donor)})
	}
	return views, nil
}

/*
* Collect requester and fulfiller ids and resolve their names in one lookup
* Load each distinct target medicine once
* A medicine deleted after the request was made leaves the request without a medicine document
 */
func (d Deps) requestViews(ctx context.Context, requests []models.Request) ([]models.RequestView, error) {
	ids := make([]string, 0, 2*len(requests))
	for _, r := range requests {
		ids = append(ids, r.Requester, r.FulfilledBy)
	}
	profiles, err := d.profiles(ctx, ids...)
	if err != nil {
		return nil, err
	}
	medicines := make(map[string]*models.Medicine)
	for _, r := range requests {
		if r.Medicine == "" {
			continue
		}
		if _, done := medicines[r.Medicine]; done {
			continue
		}
		m, err := d.Store.FindMedicine(ctx, r.Medicine)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			logger.Errorf("Error from findMedicine while populating request: %v", err)
			return nil, storeError(err, apperr.MEDICINE_NOT_FOUND)
		}
		medicines[r.Medicine] = m
	}
	views := make([]models.RequestView, 0, len(requests))
	for _, r := range requests {
		views = append(views, models.RequestView{
			Request:      r,
			MedicineDoc:  medicines[r.Medicine],
			RequesterRef: refOf(profiles, r.Requester),
			FulfillerRef: refOf(profiles, r.FulfilledBy),
		})
	}
	return views, nil
}

// saveProfile refreshes the directory entry of an actor who just wrote
// something, so later reads can show their name.
func (d Deps) saveProfile(ctx context.Context, actor models.Actor) {
	if err := d.Store.SaveProfile(ctx, actor.Profile()); err != nil {
		logger.Errorf("Error from saveProfile for %s: %v", actor.ID, err)
	}
}
