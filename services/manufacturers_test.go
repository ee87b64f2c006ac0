package services

import (
	"context"
	"testing"

	"MedShare/apperr"
	"MedShare/cache"
	"MedShare/events"
	"MedShare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createManufacturer(t *testing.T, f *fixture) *models.Manufacturer {
	t.Helper()
	m, err := f.manufacturers.Create(context.Background(), maker, CreateManufacturerInput{
		Name:          " Acme Pharma ",
		LicenseNumber: "LIC-2231",
		Website:       "https://acme.example.com",
	})
	require.NoError(t, err)
	return m
}

func TestCreateManufacturer(t *testing.T) {
	f := newFixture(t)
	m := createManufacturer(t, f)

	assert.Equal(t, "Acme Pharma", m.Name)
	assert.False(t, m.IsVerified)
	assert.Equal(t, models.ContactPerson{Name: maker.Name, Email: maker.Email, Phone: maker.Phone}, m.ContactPerson)
	assert.Equal(t, []string{events.ManufacturerCreated}, f.events.Types())
}

func TestCreateManufacturerRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manufacturers.Create(ctx, donor, CreateManufacturerInput{Name: "Nope"})
	requireKind(t, apperr.KindForbidden, err)

	_, err = f.manufacturers.Create(ctx, maker, CreateManufacturerInput{Name: "Acme", Website: "not a url"})
	requireKind(t, apperr.KindValidation, err)

	_, err = f.manufacturers.Create(ctx, maker, CreateManufacturerInput{})
	requireKind(t, apperr.KindValidation, err)
}

func TestVerifyManufacturer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := createManufacturer(t, f)

	_, err := f.manufacturers.Verify(ctx, maker, m.ID)
	requireKind(t, apperr.KindForbidden, err)
	_, err = f.manufacturers.Verify(ctx, donor, m.ID)
	requireKind(t, apperr.KindForbidden, err)

	first, err := f.manufacturers.Verify(ctx, admin, m.ID)
	require.NoError(t, err)
	assert.True(t, first.IsVerified)

	second, err := f.manufacturers.Verify(ctx, admin, m.ID)
	require.NoError(t, err)
	assert.True(t, second.IsVerified)

	_, err = f.manufacturers.Verify(ctx, admin, "missing")
	requireKind(t, apperr.KindNotFound, err)
}

func TestUpdateManufacturer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := createManufacturer(t, f)

	address := "1 Main St"
	_, err := f.manufacturers.Update(ctx, donor, m.ID, UpdateManufacturerInput{Address: &address})
	requireKind(t, apperr.KindForbidden, err)

	updated, err := f.manufacturers.Update(ctx, maker, m.ID, UpdateManufacturerInput{Address: &address})
	require.NoError(t, err)
	assert.Equal(t, address, updated.Address)

	verified := true
	_, err = f.manufacturers.Update(ctx, maker, m.ID, UpdateManufacturerInput{IsVerified: &verified})
	requireKind(t, apperr.KindForbidden, err)

	byAdmin, err := f.manufacturers.Update(ctx, admin, m.ID, UpdateManufacturerInput{IsVerified: &verified})
	require.NoError(t, err)
	assert.True(t, byAdmin.IsVerified)

	_, err = f.manufacturers.Update(ctx, maker, m.ID, UpdateManufacturerInput{})
	requireKind(t, apperr.KindValidation, err)
}

func TestGetAndDeleteManufacturer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := createManufacturer(t, f)

	got, err := f.manufacturers.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)

	var cached models.Manufacturer
	found, err := f.cache.Get(ctx, cache.ManufacturerKey+m.ID, &cached)
	require.NoError(t, err)
	assert.True(t, found)

	listed, err := f.manufacturers.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	requireKind(t, apperr.KindForbidden, f.manufacturers.Delete(ctx, maker, m.ID))
	require.NoError(t, f.manufacturers.Delete(ctx, admin, m.ID))
	assert.Equal(t, 0, f.cache.Len())

	_, err = f.manufacturers.Get(ctx, m.ID)
	requireKind(t, apperr.KindNotFound, err)
	requireKind(t, apperr.KindNotFound, f.manufacturers.Delete(ctx, admin, m.ID))
}
