package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"places-api/internal/domain"
	"places-api/internal/metrics"
	"places-api/internal/repository"
	"places-api/internal/storage"
)

const invalidCredentialsMessage = "Invalid credentials, could not login."

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	UserID int64
	Email  string
	Token  string
}

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs credentials for authenticated users.
type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

// UserService describes user lifecycle operations.
type UserService interface {
	Signup(ctx context.Context, input SignupInput, imagePath string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type userService struct {
	users   repository.UserRepository
	hasher  PasswordHasher
	tokens  TokenIssuer
	storage storage.Service
	images  ImageRemover
	logger  logrus.FieldLogger
}

func NewUserService(
	users repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	store storage.Service,
	images ImageRemover,
	logger logrus.FieldLogger,
) UserService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &userService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		storage: store,
		images:  images,
		logger:  logger,
	}
}

func (s *userService) Signup(ctx context.Context, input SignupInput, imagePath string) (*AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if imagePath == "" {
		return nil, Validation("An image is required.", nil)
	}

	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, Internal("Signing up failed, please try again later.", err)
	}
	if existing != nil {
		return nil, Conflict("User exists already, please login instead.", nil)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, Internal("Could not create user, please try again.", err)
	}

	// no record is written unless the image reached storage
	objectName := filepath.Base(imagePath)
	imageURL, err := s.storage.Upload(ctx, imagePath, objectName)
	if err != nil {
		return nil, Internal("Error uploading file to storage, please try again.", err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		ImageURL:     imageURL,
		Places:       []int64{},
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		s.discardObject(ctx, objectName)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Conflict("User exists already, please login instead.", err)
		}
		return nil, Internal("Signing up failed, please try again.", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.discardObject(ctx, objectName)
		return nil, Internal("Signing up failed, please try again.", err)
	}

	// the account now points at the stored object; the local copy is unused
	s.removeLocalImage(imagePath)

	s.logger.WithField("user_id", user.ID).Info("user signed up")
	return &AuthResult{UserID: user.ID, Email: user.Email, Token: token}, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, newError(ErrInvalidCredentials, invalidCredentialsMessage, nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrInvalidCredentials, invalidCredentialsMessage, err)
		}
		return nil, Internal("Logging in failed, please try again later.", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, newError(ErrInvalidCredentials, invalidCredentialsMessage, err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, Internal("Logging in failed, please try again.", err)
	}

	return &AuthResult{UserID: user.ID, Email: user.Email, Token: token}, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, Internal("Fetching users failed, please try again later.", err)
	}

	sanitized := make([]domain.User, 0, len(users))
	for i := range users {
		sanitized = append(sanitized, *sanitizeUser(&users[i]))
	}
	return sanitized, nil
}

// discardObject deletes an uploaded object whose account was never written.
// Failures are logged only.
func (s *userService) discardObject(ctx context.Context, name string) {
	if err := s.storage.Delete(ctx, name); err != nil {
		metrics.ImageCleanupFailures.Inc()
		s.logger.WithError(err).WithField("object", name).Warn("delete orphaned user image")
	}
}

func (s *userService) removeLocalImage(path string) {
	if s.images == nil {
		return
	}
	if err := s.images.Remove(path); err != nil {
		metrics.ImageCleanupFailures.Inc()
		s.logger.WithError(err).WithField("path", path).Warn("remove local user image")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		ImageURL:  user.ImageURL,
		Places:    user.Places,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
