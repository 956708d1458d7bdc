package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dwisetyawan/account-service/internal/domain/entity"
	"github.com/dwisetyawan/account-service/internal/domain/rules"
	repo "github.com/dwisetyawan/account-service/internal/domain/repository"
	"github.com/dwisetyawan/account-service/pkg/helpers"
	"github.com/dwisetyawan/account-service/pkg/mailer"
)

// ImageStore is the blob-storage collaborator used by ChangeImage. The GCS
// implementation lives in pkg/helpers; tests substitute their own.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// ProfileCache holds JSON-encoded public account views keyed by account id.
// The redis-backed implementation lives in pkg/helpers.
type ProfileCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

const profileCacheTTL = 10 * time.Minute

func profileKey(id string) string {
	return "account:profile:" + id
}

// Service orchestrates validation, hashing, and repository calls for the
// account use cases. The cache, publisher, and Elasticsearch are optional;
// a nil collaborator disables that side effect.
type Service struct {
	Repo    repo.AccountRepository
	Images  ImageStore
	Cache   ProfileCache
	Pub     *helpers.RabbitPublisher
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
}

func NewService(repo repo.AccountRepository, images ImageStore, cache ProfileCache, pub *helpers.RabbitPublisher, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *Service {
	return &Service{
		Repo:    repo,
		Images:  images,
		Cache:   cache,
		Pub:     pub,
		Logger:  logger,
		ES:      es,
		ESIndex: esIndex,
	}
}

// RegisterInput carries the full profile plus the password pair.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	PhoneNumber     string
	BirthDate       *time.Time
}

// Register creates a new active account. The username/email availability
// pre-checks are a fast path only; the store's unique constraints decide
// races, and both paths surface the same *entity.ConflictError.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.Account, error) {
	if err := s.validateRegistration(in); err != nil {
		return nil, err
	}
	if _, err := s.Repo.FindByUsername(ctx, in.Username); err == nil {
		return nil, &entity.ConflictError{Field: "username", Value: in.Username}
	} else if !isNotFound(err) {
		return nil, err
	}
	if _, err := s.Repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, &entity.ConflictError{Field: "email", Value: in.Email}
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	a := &entity.Account{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		BirthDate:    in.BirthDate,
		IsActive:     true,
	}
	if err := s.Repo.Insert(ctx, a); err != nil {
		return nil, err
	}

	s.publishWelcome(ctx, a)
	s.indexAccount(ctx, a)

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"account_id": a.ID, "username": a.Username}).Info("account registered")
	}
	return a, nil
}

func (s *Service) validateRegistration(in RegisterInput) error {
	if !rules.ValidUsername(in.Username) {
		return &entity.ValidationError{Field: "username", Reason: "must be at least 4 characters"}
	}
	if !rules.ValidEmail(in.Email) {
		return &entity.ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if !rules.PasswordsMatch(in.Password, in.ConfirmPassword) {
		return &entity.ValidationError{Field: "confirm_password", Reason: "does not match password"}
	}
	if !rules.ValidPhone(in.PhoneNumber) {
		return &entity.ValidationError{Field: "phone_number", Reason: "must be + followed by 1-15 digits"}
	}
	if !rules.BirthDateValid(in.BirthDate, time.Now()) {
		return &entity.ValidationError{Field: "birth_date", Reason: "must not be in the future"}
	}
	return nil
}

// Authenticate verifies email/password. An unknown email and a wrong
// password produce the same (nil, false, nil) result so callers cannot tell
// which one failed. On success the account's last_login is stamped and the
// updated record returned.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.Account, bool, error) {
	a, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !helpers.CompareHashAndPassword(a.PasswordHash, password) {
		return nil, false, nil
	}

	at, err := s.Repo.UpdateLastLogin(ctx, a.ID)
	if err != nil {
		return nil, false, err
	}
	a.LastLogin = &at
	a.Modified = at
	s.invalidateProfile(ctx, a.ID)
	return a, true, nil
}

// ChangePassword rehashes and stores a new password. Reuse of the current
// password is rejected by verifying the candidate against the stored hash,
// which keeps working even if that hash predates an algorithm upgrade.
func (s *Service) ChangePassword(ctx context.Context, id, newPassword, confirmPassword string) error {
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !rules.PasswordsMatch(newPassword, confirmPassword) {
		return &entity.ValidationError{Field: "confirm_password", Reason: "does not match password"}
	}
	if rules.IsSamePassword(newPassword, a.PasswordHash, helpers.CompareHashAndPassword) {
		return &entity.ValidationError{Field: "password", Reason: "must differ from the current password"}
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	s.invalidateProfile(ctx, id)
	if s.Logger != nil {
		s.Logger.WithField("account_id", id).Info("password changed")
	}
	return nil
}

// ChangeUsername moves the account to a new unique username.
func (s *Service) ChangeUsername(ctx context.Context, id, newUsername string) (*entity.Account, error) {
	if !rules.ValidUsername(newUsername) {
		return nil, &entity.ValidationError{Field: "username", Reason: "must be at least 4 characters"}
	}
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if other, err := s.Repo.FindByUsername(ctx, newUsername); err == nil && other.ID != a.ID {
		return nil, &entity.ConflictError{Field: "username", Value: newUsername}
	}
	if err := s.Repo.UpdateUsername(ctx, id, newUsername); err != nil {
		return nil, err
	}
	a.Username = newUsername
	s.invalidateProfile(ctx, id)
	s.indexAccount(ctx, a)
	return a, nil
}

// ChangeImage uploads the payload to blob storage under
// avatars/<id>/<uuid><ext> and records the returned reference. Any storage
// failure wraps into *entity.UploadError.
func (s *Service) ChangeImage(ctx context.Context, id string, r io.Reader, filename, contentType string) (*entity.Account, error) {
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Images == nil {
		return nil, &entity.UploadError{Err: errors.New("no image store configured")}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", id, uuid.NewString()+ext))
	path, err := s.Images.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return nil, &entity.UploadError{Err: err}
	}

	if err := s.Repo.UpdateImagePath(ctx, id, path); err != nil {
		return nil, err
	}
	a.ImagePath = path
	s.invalidateProfile(ctx, id)
	s.indexAccount(ctx, a)
	return a, nil
}

// GetAccount serves lookups by id, with a short-lived Redis cache of the
// public view when a client is configured.
func (s *Service) GetAccount(ctx context.Context, id string) (*entity.Account, error) {
	if s.Cache != nil {
		var cached entity.Account
		if ok, err := s.Cache.GetJSON(ctx, profileKey(id), &cached); err == nil && ok {
			// The hash is stripped before caching.
			return &cached, nil
		}
	}
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		public := *a
		public.PasswordHash = ""
		if err := s.Cache.SetJSON(ctx, profileKey(id), &public, profileCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", id).Warn("profile cache write failed")
		}
	}
	return a, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]*entity.Account, error) {
	return s.Repo.List(ctx)
}

func (s *Service) invalidateProfile(ctx context.Context, id string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, profileKey(id)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("account_id", id).Warn("profile cache invalidation failed")
	}
}

func (s *Service) publishWelcome(ctx context.Context, a *entity.Account) {
	if s.Pub == nil {
		return
	}
	job := mailer.EmailJob{
		To:       a.Email,
		Template: mailer.TemplateWelcome,
		Data: map[string]any{
			"Username": a.Username,
			"Name":     a.FullName(),
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("account_id", a.ID).Warn("welcome email enqueue failed")
	}
}

func isNotFound(err error) bool {
	var nf *entity.NotFoundError
	return errors.As(err, &nf)
}
