package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"places-api/internal/domain"
	"places-api/internal/geocode"
	"places-api/internal/metrics"
	"places-api/internal/repository"
)

// NewPlace carries the client supplied fields of a place being created.
type NewPlace struct {
	Title       string `validate:"required"`
	Description string `validate:"min=5"`
	Address     string `validate:"required"`
}

// PlaceChanges carries the mutable fields of an existing place.
type PlaceChanges struct {
	Title       string `validate:"required"`
	Description string `validate:"min=5"`
}

// ImageRemover deletes stored place images.
type ImageRemover interface {
	Remove(path string) error
}

// PlaceService coordinates the place lifecycle: lookups, creation with
// geocoding, and owner-only updates and deletes. Creation and deletion keep
// the place and its creator's place list consistent in one transaction.
type PlaceService interface {
	GetPlace(ctx context.Context, id int64) (*domain.Place, error)
	// ListPlacesByUser returns an empty slice when the user has no places.
	ListPlacesByUser(ctx context.Context, userID int64) ([]domain.Place, error)
	CreatePlace(ctx context.Context, input NewPlace, imagePath string, userID int64) (*domain.Place, error)
	UpdatePlace(ctx context.Context, id int64, changes PlaceChanges, userID int64) (*domain.Place, error)
	DeletePlace(ctx context.Context, id, userID int64) error
}

type placeService struct {
	places   repository.PlaceRepository
	users    repository.UserRepository
	uow      repository.UnitOfWork
	geocoder geocode.Geocoder
	images   ImageRemover
	logger   logrus.FieldLogger
}

func NewPlaceService(
	places repository.PlaceRepository,
	users repository.UserRepository,
	uow repository.UnitOfWork,
	geocoder geocode.Geocoder,
	images ImageRemover,
	logger logrus.FieldLogger,
) PlaceService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &placeService{
		places:   places,
		users:    users,
		uow:      uow,
		geocoder: geocoder,
		images:   images,
		logger:   logger,
	}
}

func (s *placeService) GetPlace(ctx context.Context, id int64) (*domain.Place, error) {
	place, err := s.places.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Could not find a place for the provided id.", err)
		}
		return nil, Internal("Something went wrong, could not find a place.", err)
	}
	return place, nil
}

func (s *placeService) ListPlacesByUser(ctx context.Context, userID int64) ([]domain.Place, error) {
	places, err := s.places.ListByCreator(ctx, userID)
	if err != nil {
		return nil, Internal("Fetching places failed, please try again later.", err)
	}
	if places == nil {
		places = []domain.Place{}
	}
	return places, nil
}

func (s *placeService) CreatePlace(ctx context.Context, input NewPlace, imagePath string, userID int64) (*domain.Place, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Address = strings.TrimSpace(input.Address)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if imagePath == "" {
		return nil, Validation("An image is required.", nil)
	}

	coords, err := s.geocoder.Geocode(ctx, input.Address)
	if err != nil {
		if errors.Is(err, geocode.ErrNoResults) {
			return nil, Validation("Could not find location for the specified address. Please enter a valid address.", err)
		}
		return nil, Internal("Could not resolve the address, please try again later.", err)
	}

	place := &domain.Place{
		Title:       input.Title,
		Description: input.Description,
		Address:     input.Address,
		Location:    coords,
		Image:       imagePath,
		CreatorID:   userID,
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Could not find user for provided id.", err)
		}
		return nil, Internal("Creating place failed, please try again.", err)
	}

	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Places.Create(ctx, place); err != nil {
			return err
		}
		return repos.Users.AddPlace(ctx, user.ID, place.ID)
	})
	if err != nil {
		metrics.PlaceOperations.WithLabelValues("create", "error").Inc()
		return nil, Internal("Creating place failed, please try again.", err)
	}

	metrics.PlaceOperations.WithLabelValues("create", "ok").Inc()
	s.logger.WithFields(logrus.Fields{"place_id": place.ID, "user_id": user.ID}).Info("place created")
	return place, nil
}

func (s *placeService) UpdatePlace(ctx context.Context, id int64, changes PlaceChanges, userID int64) (*domain.Place, error) {
	place, err := s.places.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Could not find place for this id.", err)
		}
		return nil, Internal("Something went wrong, could not update place.", err)
	}

	// ownership is settled before the body is looked at
	if !place.IsOwnedBy(userID) {
		return nil, Forbidden("You are not allowed to edit this place.", nil)
	}

	changes.Title = strings.TrimSpace(changes.Title)
	changes.Description = strings.TrimSpace(changes.Description)
	if err := validateInput(changes); err != nil {
		return nil, err
	}

	place.Title = changes.Title
	place.Description = changes.Description
	if err := s.places.Update(ctx, place); err != nil {
		metrics.PlaceOperations.WithLabelValues("update", "error").Inc()
		return nil, Internal("Something went wrong, could not update place.", err)
	}

	metrics.PlaceOperations.WithLabelValues("update", "ok").Inc()
	return place, nil
}

func (s *placeService) DeletePlace(ctx context.Context, id, userID int64) error {
	place, creator, err := s.places.GetWithCreator(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("Could not find place for this id.", err)
		}
		return Internal("Something went wrong, could not delete place.", err)
	}

	if creator.ID != userID {
		return Forbidden("You are not allowed to delete this place.", nil)
	}

	imagePath := place.Image

	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Users.RemovePlace(ctx, creator.ID, place.ID); err != nil {
			return err
		}
		return repos.Places.Delete(ctx, place.ID)
	})
	if err != nil {
		metrics.PlaceOperations.WithLabelValues("delete", "error").Inc()
		return Internal("Something went wrong, could not delete place.", err)
	}
	metrics.PlaceOperations.WithLabelValues("delete", "ok").Inc()

	// best effort: cleanup failures never fail the request
	if s.images != nil {
		if err := s.images.Remove(imagePath); err != nil {
			metrics.ImageCleanupFailures.Inc()
			s.logger.WithError(err).WithField("place_id", place.ID).Warn("remove place image")
		}
	}
	return nil
}
