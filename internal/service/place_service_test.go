package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"places-api/internal/domain"
	"places-api/internal/geocode"
	"places-api/internal/repository"
)

func messageOf(t *testing.T, err error) string {
	t.Helper()
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr), "expected *service.Error, got %T", err)
	return svcErr.Message
}

func TestCreatePlaceStoresGeocodedLocation(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")

	place := f.createPlace(t, owner.UserID, "Empire")

	assert.NotZero(t, place.ID)
	assert.Equal(t, f.geocoder.coords, place.Location)
	assert.Equal(t, owner.UserID, place.CreatorID)
	assert.Equal(t, "uploads/images/Empire.png", place.Image)
	assert.Equal(t, []string{"20 W 34th St, New York, NY 10001"}, f.geocoder.addresses)

	stored, err := f.placeSvc.GetPlace(context.Background(), place.ID)
	require.NoError(t, err)
	assert.Equal(t, f.geocoder.coords, stored.Location)

	assert.Equal(t, []int64{place.ID}, f.placeIDsOf(t, owner.UserID))
}

func TestCreatePlaceAppendsToOwnerList(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")

	first := f.createPlace(t, owner.UserID, "First")
	second := f.createPlace(t, owner.UserID, "Second")

	assert.Equal(t, []int64{first.ID, second.ID}, f.placeIDsOf(t, owner.UserID))
}

func TestCreatePlaceValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")
	ctx := context.Background()

	tests := []struct {
		name  string
		input NewPlace
		image string
	}{
		{name: "empty title", input: NewPlace{Title: "  ", Description: "long enough", Address: "x"}, image: "a.png"},
		{name: "short description", input: NewPlace{Title: "T", Description: "four", Address: "x"}, image: "a.png"},
		{name: "empty address", input: NewPlace{Title: "T", Description: "long enough"}, image: "a.png"},
		{name: "missing image", input: NewPlace{Title: "T", Description: "long enough", Address: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.placeSvc.CreatePlace(ctx, tt.input, tt.image, owner.UserID)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	assert.Empty(t, f.geocoder.addresses)
	assert.Empty(t, f.placeIDsOf(t, owner.UserID))
}

func TestCreatePlaceUnknownAddress(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")
	f.geocoder.err = geocode.ErrNoResults

	_, err := f.placeSvc.CreatePlace(context.Background(), NewPlace{Title: "T", Description: "long enough", Address: "nowhere"}, "a.png", owner.UserID)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Could not find location for the specified address. Please enter a valid address.", messageOf(t, err))
}

func TestCreatePlaceGeocoderFailure(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")
	f.geocoder.err = errors.New("provider down")

	_, err := f.placeSvc.CreatePlace(context.Background(), NewPlace{Title: "T", Description: "long enough", Address: "x"}, "a.png", owner.UserID)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, f.placeIDsOf(t, owner.UserID))
}

func TestCreatePlaceUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.placeSvc.CreatePlace(context.Background(), NewPlace{Title: "T", Description: "long enough", Address: "x"}, "a.png", 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Could not find user for provided id.", messageOf(t, err))
}

func TestCreatePlaceRollsBackWhenListUpdateFails(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")
	f.uow.failAdd = true

	_, err := f.placeSvc.CreatePlace(context.Background(), NewPlace{Title: "T", Description: "long enough", Address: "x"}, "a.png", owner.UserID)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, "Creating place failed, please try again.", messageOf(t, err))

	places, err := f.places.ListByCreator(context.Background(), owner.UserID)
	require.NoError(t, err)
	assert.Empty(t, places)
	assert.Empty(t, f.placeIDsOf(t, owner.UserID))
}

func TestGetPlaceNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.placeSvc.GetPlace(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListPlacesByUser(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")
	other := f.signup(t, "other@test.com")
	f.createPlace(t, owner.UserID, "First")
	f.createPlace(t, owner.UserID, "Second")

	places, err := f.placeSvc.ListPlacesByUser(context.Background(), owner.UserID)
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "First", places[0].Title)

	empty, err := f.placeSvc.ListPlacesByUser(context.Background(), other.UserID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	unknown, err := f.placeSvc.ListPlacesByUser(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestUpdatePlaceByOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")
	place := f.createPlace(t, owner.UserID, "Old")

	updated, err := f.placeSvc.UpdatePlace(context.Background(), place.ID, PlaceChanges{Title: "New", Description: "Brand new text"}, owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "Brand new text", updated.Description)
	assert.Equal(t, place.Address, updated.Address)
	assert.Equal(t, place.Location, updated.Location)

	stored, err := f.placeSvc.GetPlace(context.Background(), place.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", stored.Title)
}

func TestUpdatePlaceRejectsNonOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")
	intruder := f.signup(t, "intruder@test.com")
	place := f.createPlace(t, owner.UserID, "Mine")

	_, err := f.placeSvc.UpdatePlace(context.Background(), place.ID, PlaceChanges{Title: "Hacked", Description: "Hacked text"}, intruder.UserID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "You are not allowed to edit this place.", messageOf(t, err))

	stored, err := f.placeSvc.GetPlace(context.Background(), place.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", stored.Title)
}

func TestUpdatePlaceErrors(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")
	place := f.createPlace(t, owner.UserID, "Mine")

	_, err := f.placeSvc.UpdatePlace(context.Background(), place.ID, PlaceChanges{Title: "", Description: "long enough"}, owner.UserID)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.placeSvc.UpdatePlace(context.Background(), place.ID+100, PlaceChanges{Title: "T", Description: "long enough"}, owner.UserID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Could not find place for this id.", messageOf(t, err))
}

func TestDeletePlaceByOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")
	keep := f.createPlace(t, owner.UserID, "Keep")
	gone := f.createPlace(t, owner.UserID, "Gone")

	require.NoError(t, f.placeSvc.DeletePlace(context.Background(), gone.ID, owner.UserID))

	_, err := f.placeSvc.GetPlace(context.Background(), gone.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []int64{keep.ID}, f.placeIDsOf(t, owner.UserID))
	assert.Equal(t, []string{gone.Image}, f.images.removed)
}

func TestDeletePlaceIgnoresImageCleanupFailure(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")
	place := f.createPlace(t, owner.UserID, "Gone")
	f.images.err = errors.New("disk gone")

	require.NoError(t, f.placeSvc.DeletePlace(context.Background(), place.ID, owner.UserID))
	assert.Empty(t, f.placeIDsOf(t, owner.UserID))
}

func TestDeletePlaceRejectsNonOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")
	intruder := f.signup(t, "intruder@test.com")
	place := f.createPlace(t, owner.UserID, "Mine")

	err := f.placeSvc.DeletePlace(context.Background(), place.ID, intruder.UserID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "You are not allowed to delete this place.", messageOf(t, err))

	_, err = f.placeSvc.GetPlace(context.Background(), place.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{place.ID}, f.placeIDsOf(t, owner.UserID))
	assert.Empty(t, f.images.removed)
}

func TestDeletePlaceNotFound(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")

	err := f.placeSvc.DeletePlace(context.Background(), 77, owner.UserID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Could not find place for this id.", messageOf(t, err))
}

func TestDeletePlaceRollsBackOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		inject func(u *injectingUnitOfWork)
	}{
		{name: "list update fails", inject: func(u *injectingUnitOfWork) { u.failRemove = true }},
		{name: "place delete fails", inject: func(u *injectingUnitOfWork) { u.failDelete = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			owner := f.signup(t, "owner@test.com")
			place := f.createPlace(t, owner.UserID, "Mine")
			tt.inject(f.uow)

			err := f.placeSvc.DeletePlace(context.Background(), place.ID, owner.UserID)
			assert.ErrorIs(t, err, ErrInternal)
			assert.Equal(t, "Something went wrong, could not delete place.", messageOf(t, err))

			_, err = f.placeSvc.GetPlace(context.Background(), place.ID)
			require.NoError(t, err)
			assert.Equal(t, []int64{place.ID}, f.placeIDsOf(t, owner.UserID))
			assert.Empty(t, f.images.removed)
		})
	}
}

func TestPlaceOwnership(t *testing.T) {
	place := domain.Place{CreatorID: 7}
	assert.True(t, place.IsOwnedBy(7))
	assert.False(t, place.IsOwnedBy(8))
}

func TestUpdatePlaceChecksOwnershipBeforeInput(t *testing.T) {
	f := newFixture(t)
	owner := f.signup(t, "owner@test.com")
	intruder := f.signup(t, "intruder@test.com")
	place := f.createPlace(t, owner.UserID, "Mine")

	_, err := f.placeSvc.UpdatePlace(context.Background(), place.ID, PlaceChanges{Title: "", Description: "x"}, intruder.UserID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.placeSvc.UpdatePlace(context.Background(), place.ID, PlaceChanges{Title: "", Description: "x"}, owner.UserID)
	assert.ErrorIs(t, err, ErrValidation)
}
