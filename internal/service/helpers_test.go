package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"places-api/internal/auth"
	"places-api/internal/domain"
	"places-api/internal/repository"
	"places-api/internal/repository/sqlite"
)

var errInjected = errors.New("injected failure")

type fakeGeocoder struct {
	coords    domain.Coordinates
	err       error
	addresses []string
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (domain.Coordinates, error) {
	g.addresses = append(g.addresses, address)
	return g.coords, g.err
}

type fakeStorage struct {
	mu        sync.Mutex
	err       error
	deleteErr error
	uploads   []string
	deleted   []string
}

func (s *fakeStorage) Upload(_ context.Context, localPath, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.uploads = append(s.uploads, localPath)
	return "https://cdn.test/users/" + name, nil
}

func (s *fakeStorage) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, name)
	return s.deleteErr
}

type failingTokens struct{}

func (failingTokens) Issue(int64, string) (string, error) {
	return "", errInjected
}

type fakeImages struct {
	err     error
	removed []string
}

func (f *fakeImages) Remove(path string) error {
	f.removed = append(f.removed, path)
	return f.err
}

// failingUsers fails selected user writes.
type failingUsers struct {
	repository.UserRepository
	failCreate bool
	failAdd    bool
	failRemove bool
}

func (f failingUsers) Create(ctx context.Context, user *domain.User) (int64, error) {
	if f.failCreate {
		return 0, errInjected
	}
	return f.UserRepository.Create(ctx, user)
}

func (f failingUsers) AddPlace(ctx context.Context, userID, placeID int64) error {
	if f.failAdd {
		return errInjected
	}
	return f.UserRepository.AddPlace(ctx, userID, placeID)
}

func (f failingUsers) RemovePlace(ctx context.Context, userID, placeID int64) error {
	if f.failRemove {
		return errInjected
	}
	return f.UserRepository.RemovePlace(ctx, userID, placeID)
}

// failingPlaces fails deletes inside a unit of work.
type failingPlaces struct {
	repository.PlaceRepository
	failDelete bool
}

func (f failingPlaces) Delete(ctx context.Context, id int64) error {
	if f.failDelete {
		return errInjected
	}
	return f.PlaceRepository.Delete(ctx, id)
}

// injectingUnitOfWork decorates the transactional repositories handed to fn.
type injectingUnitOfWork struct {
	inner      repository.UnitOfWork
	failAdd    bool
	failRemove bool
	failDelete bool
}

func (u *injectingUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return u.inner.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		repos.Users = failingUsers{UserRepository: repos.Users, failAdd: u.failAdd, failRemove: u.failRemove}
		repos.Places = failingPlaces{PlaceRepository: repos.Places, failDelete: u.failDelete}
		return fn(ctx, repos)
	})
}

type fixture struct {
	db         *sql.DB
	logger     logrus.FieldLogger
	users      *sqlite.UserRepository
	places     *sqlite.PlaceRepository
	uow        *injectingUnitOfWork
	geocoder   *fakeGeocoder
	storage    *fakeStorage
	images     *fakeImages
	userImages *fakeImages
	tokens     *auth.TokenManager
	placeSvc   PlaceService
	userSvc    UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "places.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(ctx, db))

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	tokens, err := auth.NewTokenManager("test-secret", 0)
	require.NoError(t, err)

	f := &fixture{
		db:         db,
		logger:     logger,
		users:      sqlite.NewUserRepository(db),
		places:     sqlite.NewPlaceRepository(db),
		uow:        &injectingUnitOfWork{inner: sqlite.NewUnitOfWork(db, logger)},
		geocoder:   &fakeGeocoder{coords: domain.Coordinates{Lat: 40.7484474, Lng: -73.9871516}},
		storage:    &fakeStorage{},
		images:     &fakeImages{},
		userImages: &fakeImages{},
		tokens:     tokens,
	}
	f.placeSvc = NewPlaceService(f.places, f.users, f.uow, f.geocoder, f.images, logger)
	f.userSvc = f.newUserService(f.users, tokens)
	return f
}

func (f *fixture) newUserService(users repository.UserRepository, tokens TokenIssuer) UserService {
	return NewUserService(users, auth.NewPasswordHasher(bcrypt.MinCost), tokens, f.storage, f.userImages, f.logger)
}

func (f *fixture) signup(t *testing.T, email string) *AuthResult {
	t.Helper()
	res, err := f.userSvc.Signup(context.Background(), SignupInput{Name: "Max", Email: email, Password: "secret1"}, "uploads/images/"+email+".png")
	require.NoError(t, err)
	return res
}

func (f *fixture) createPlace(t *testing.T, userID int64, title string) *domain.Place {
	t.Helper()
	place, err := f.placeSvc.CreatePlace(context.Background(), NewPlace{
		Title:       title,
		Description: "A lovely place to visit",
		Address:     "20 W 34th St, New York, NY 10001",
	}, "uploads/images/"+title+".png", userID)
	require.NoError(t, err)
	return place
}

func (f *fixture) placeIDsOf(t *testing.T, userID int64) []int64 {
	t.Helper()
	user, err := f.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	return user.Places
}
