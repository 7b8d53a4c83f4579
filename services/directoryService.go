package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"civicreporter-be/apperror"
	"civicreporter-be/credentials"
	"civicreporter-be/models"
	"civicreporter-be/policy"
	"civicreporter-be/store"
)

// LoginResult is returned by Login and Refresh.
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *models.User `json:"user"`
}

// DirectoryService authenticates accounts and resolves callers.
type DirectoryService struct {
	users  UserRepository
	tokens *credentials.TokenManager
	hasher *credentials.Hasher
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewDirectoryService(users UserRepository, tokens *credentials.TokenManager, hasher *credentials.Hasher, log logrus.FieldLogger) *DirectoryService {
	return &DirectoryService{users: users, tokens: tokens, hasher: hasher, log: log, now: time.Now}
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *DirectoryService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.Unauthorized("incorrect email or password")
		}
		return nil, lookupErr(err, "user")
	}
	if !s.hasher.Matches(password, user.PasswordHash) {
		return nil, apperror.Unauthorized("incorrect email or password")
	}
	if !user.IsActive {
		return nil, apperror.Unauthorized("account is deactivated")
	}

	now := s.now()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		return nil, writeErr(err, "record login")
	}
	user.LastLoginAt = &now

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user logged in")
	return s.issue(user)
}

// Authenticate verifies a bearer token and resolves the caller behind it.
func (s *DirectoryService) Authenticate(ctx context.Context, token string) (policy.Caller, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return policy.Anonymous, apperror.Unauthorized("invalid authentication credentials")
	}
	caller, _, err := s.ResolveCaller(ctx, subject)
	return caller, err
}

// ResolveCaller loads the account named by a token subject. Missing and
// deactivated accounts are both unauthorized.
func (s *DirectoryService) ResolveCaller(ctx context.Context, subject string) (policy.Caller, *models.User, error) {
	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return policy.Anonymous, nil, apperror.Unauthorized("invalid authentication credentials")
		}
		return policy.Anonymous, nil, lookupErr(err, "user")
	}
	if !user.IsActive {
		return policy.Anonymous, nil, apperror.Unauthorized("account is deactivated")
	}
	return policy.CallerFromUser(user), user, nil
}

func (s *DirectoryService) Me(ctx context.Context, caller policy.Caller) (*models.User, error) {
	if err := policy.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	return user, nil
}

// Refresh issues a fresh token for the current caller.
func (s *DirectoryService) Refresh(ctx context.Context, caller policy.Caller) (*LoginResult, error) {
	user, err := s.Me(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *DirectoryService) GetUser(ctx context.Context, caller policy.Caller, id string) (*models.User, error) {
	if err := policy.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	if !policy.CanViewUser(caller, id) {
		return nil, apperror.Forbidden("view this profile")
	}
	return user, nil
}

func (s *DirectoryService) ListUsers(ctx context.Context, caller policy.Caller, role models.Role, page store.Page) ([]models.User, error) {
	if err := policy.RequireAdmin(caller, "list users"); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, role, page.Clamp(store.DefaultLimit, store.MaxLimit))
	if err != nil {
		return nil, lookupErr(err, "users")
	}
	return users, nil
}

// SetActive activates or deactivates an account. A deactivated account can
// no longer log in or use an existing token.
func (s *DirectoryService) SetActive(ctx context.Context, caller policy.Caller, id string, active bool) error {
	if err := policy.RequireAdmin(caller, "change account status"); err != nil {
		return err
	}
	if err := s.users.SetActive(ctx, id, active, s.now()); err != nil {
		return lookupErr(err, "user")
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "active": active, "by": caller.ID}).Info("account status changed")
	return nil
}

func (s *DirectoryService) issue(user *models.User) (*LoginResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to issue token")
	}
	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		User:        user,
	}, nil
}
