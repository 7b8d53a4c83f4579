package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"civicreporter-be/apperror"
	"civicreporter-be/credentials"
	"civicreporter-be/models"
	"civicreporter-be/policy"
	"civicreporter-be/store"
)

const (
	defaultApprovalResponse = "Registration approved"
	resetApprovalResponse   = "Password reset approved"
)

type RegisterInput struct {
	Name        string
	Email       string
	Phone       string
	Password    string
	Role        models.Role
	Location    string
	Department  models.Department
	Designation string
	IDNumber    string
	Reason      string
}

// RegisterResult tells the caller which path a registration took: public
// sign-ups get a User straight away, everyone else a pending request.
type RegisterResult struct {
	User    *models.User
	Request *models.RegistrationRequest
}

func (r *RegisterResult) Pending() bool { return r.Request != nil }

type PasswordResetInput struct {
	Email       string
	Reason      string
	NewPassword string
}

// RegistrationService runs the sign-up and password reset pipelines that
// need an admin's decision.
type RegistrationService struct {
	users    UserRepository
	requests RegistrationRepository
	resets   PasswordResetRepository
	hasher   *credentials.Hasher
	notifier Notifier
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewRegistrationService(
	users UserRepository,
	requests RegistrationRepository,
	resets PasswordResetRepository,
	hasher *credentials.Hasher,
	notifier Notifier,
	log logrus.FieldLogger,
) *RegistrationService {
	return &RegistrationService{
		users:    users,
		requests: requests,
		resets:   resets,
		hasher:   hasher,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Register creates a public account immediately and files a registration
// request for any other role.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	in.Email = NormalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || in.Email == "" || in.Password == "" {
		return nil, apperror.Validation("name, email and password are required")
	}
	if in.Role == "" {
		in.Role = models.RolePublic
	}
	if !in.Role.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown user type %q", in.Role))
	}
	if in.Department != "" && !in.Department.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown department %q", in.Department))
	}

	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperror.Internal(err, "failed to hash password")
	}
	now := s.now()

	if in.Role == models.RolePublic {
		user := &models.User{
			ID:           newID(),
			Name:         in.Name,
			Email:        in.Email,
			Phone:        in.Phone,
			Role:         models.RolePublic,
			Location:     in.Location,
			IsActive:     true,
			PasswordHash: hash,
			CreatedAt:    now,
		}
		if err := s.insertUser(ctx, user); err != nil {
			return nil, err
		}
		s.log.WithField("user_id", user.ID).Info("public user registered")
		return &RegisterResult{User: user}, nil
	}

	reason := in.Reason
	if reason == "" {
		reason = fmt.Sprintf("Registration as %s", in.Role)
	}
	req := &models.RegistrationRequest{
		ID:           newID(),
		FullName:     in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Location,
		IDNumber:     in.IDNumber,
		Reason:       reason,
		PasswordHash: hash,
		UserType:     in.Role,
		Department:   in.Department,
		Designation:  in.Designation,
		Status:       models.RegistrationNotified,
		RequestDate:  now,
	}
	if err := s.requests.Insert(ctx, req); err != nil {
		return nil, writeErr(err, "create registration request")
	}
	s.log.WithFields(logrus.Fields{"request_id": req.ID, "user_type": req.UserType}).Info("registration request filed")
	return &RegisterResult{Request: req}, nil
}

func (s *RegistrationService) ensureEmailFree(ctx context.Context, email string) error {
	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return lookupErr(err, "user")
	}
	if taken {
		return apperror.Conflict("user with this email already exists")
	}
	pending, err := s.requests.LiveExists(ctx, email)
	if err != nil {
		return lookupErr(err, "registration request")
	}
	if pending {
		return apperror.Conflict("registration request for this email already exists")
	}
	return nil
}

func (s *RegistrationService) insertUser(ctx context.Context, u *models.User) error {
	err := s.users.Insert(ctx, u)
	if errors.Is(err, store.ErrDuplicate) {
		return apperror.Conflict("user with this email already exists")
	}
	if err != nil {
		return writeErr(err, "create user")
	}
	return nil
}

func (s *RegistrationService) ListRegistrationRequests(ctx context.Context, caller policy.Caller, status models.RegistrationStatus, page store.Page) ([]models.RegistrationRequest, error) {
	if err := policy.RequireAdmin(caller, "list registration requests"); err != nil {
		return nil, err
	}
	list, err := s.requests.List(ctx, status, page.Clamp(store.DefaultLimit, store.MaxLimit))
	if err != nil {
		return nil, lookupErr(err, "registration requests")
	}
	return list, nil
}

// ApproveRegistration creates the requested account, reusing the password
// hash captured at registration. The request's current status is not
// checked; a second approval fails only because the account now exists.
func (s *RegistrationService) ApproveRegistration(ctx context.Context, caller policy.Caller, id, response string) (*models.User, error) {
	if err := policy.RequireAdmin(caller, "approve registration requests"); err != nil {
		return nil, err
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "registration request")
	}
	taken, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	if taken {
		return nil, apperror.Conflict("user with this email already exists")
	}

	now := s.now()
	user := &models.User{
		ID:           newID(),
		Name:         req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         req.UserType,
		Department:   req.Department,
		Location:     req.Address,
		IsActive:     true,
		PasswordHash: req.PasswordHash,
		CreatedAt:    now,
	}
	if err := s.insertUser(ctx, user); err != nil {
		return nil, err
	}

	if response == "" {
		response = defaultApprovalResponse
	}
	res := store.Resolution{Response: response, RespondedBy: caller.ID, At: now}
	if err := s.requests.Resolve(ctx, id, models.RegistrationRegistered, res); err != nil {
		return nil, writeErr(err, "update registration request")
	}
	s.log.WithFields(logrus.Fields{"request_id": id, "user_id": user.ID, "by": caller.ID}).Info("registration approved")
	return user, nil
}

// RejectRegistration archives a request. An empty response is recorded as
// given.
func (s *RegistrationService) RejectRegistration(ctx context.Context, caller policy.Caller, id, response string) error {
	if err := policy.RequireAdmin(caller, "reject registration requests"); err != nil {
		return err
	}
	res := store.Resolution{Response: response, RespondedBy: caller.ID, At: s.now()}
	if err := s.requests.Resolve(ctx, id, models.RegistrationArchived, res); err != nil {
		return lookupErr(err, "registration request")
	}
	s.log.WithFields(logrus.Fields{"request_id": id, "by": caller.ID}).Info("registration rejected")
	return nil
}

// RequestPasswordReset files a reset for an existing account. The new
// password is hashed now and only applied once an admin approves.
func (s *RegistrationService) RequestPasswordReset(ctx context.Context, in PasswordResetInput) (*models.PasswordResetRequest, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.NewPassword == "" {
		return nil, apperror.Validation("email and new password are required")
	}
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		return nil, lookupErr(err, "user")
	}
	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return nil, apperror.Internal(err, "failed to hash password")
	}
	req := &models.PasswordResetRequest{
		ID:              newID(),
		Email:           email,
		Reason:          in.Reason,
		NewPasswordHash: hash,
		Status:          models.ResetPending,
		RequestDate:     s.now(),
	}
	if err := s.resets.Insert(ctx, req); err != nil {
		return nil, writeErr(err, "create password reset request")
	}
	s.log.WithField("request_id", req.ID).Info("password reset requested")
	return req, nil
}

func (s *RegistrationService) ListPasswordResets(ctx context.Context, caller policy.Caller, page store.Page) ([]models.PasswordResetRequest, error) {
	if err := policy.RequireAdmin(caller, "list password reset requests"); err != nil {
		return nil, err
	}
	list, err := s.resets.List(ctx, page.Clamp(store.DefaultLimit, store.MaxLimit))
	if err != nil {
		return nil, lookupErr(err, "password reset requests")
	}
	return list, nil
}

// ApprovePasswordReset copies the held hash onto the account. Like
// registrations, the request's current status is not checked.
func (s *RegistrationService) ApprovePasswordReset(ctx context.Context, caller policy.Caller, id string) error {
	if err := policy.RequireAdmin(caller, "approve password resets"); err != nil {
		return err
	}
	req, err := s.resets.FindByID(ctx, id)
	if err != nil {
		return lookupErr(err, "password reset request")
	}

	now := s.now()
	if err := s.users.SetPasswordHash(ctx, req.Email, req.NewPasswordHash, now); err != nil {
		return lookupErr(err, "user")
	}
	res := store.Resolution{Response: resetApprovalResponse, RespondedBy: caller.ID, At: now}
	if err := s.resets.Resolve(ctx, id, models.ResetApproved, res); err != nil {
		return writeErr(err, "update password reset request")
	}
	s.log.WithFields(logrus.Fields{"request_id": id, "by": caller.ID}).Info("password reset approved")

	s.notifyAccount(ctx, req.Email, &models.Notification{
		Title:   "Password reset approved",
		Message: "Your password reset request was approved. You can now log in with your new password.",
		Type:    models.NotifyPasswordResetApproved,
	})
	return nil
}

func (s *RegistrationService) RejectPasswordReset(ctx context.Context, caller policy.Caller, id, response string) error {
	if err := policy.RequireAdmin(caller, "reject password resets"); err != nil {
		return err
	}
	req, err := s.resets.FindByID(ctx, id)
	if err != nil {
		return lookupErr(err, "password reset request")
	}
	res := store.Resolution{Response: response, RespondedBy: caller.ID, At: s.now()}
	if err := s.resets.Resolve(ctx, id, models.ResetRejected, res); err != nil {
		return writeErr(err, "update password reset request")
	}
	s.log.WithFields(logrus.Fields{"request_id": id, "by": caller.ID}).Info("password reset rejected")

	message := "Your password reset request was rejected."
	if response != "" {
		message += " " + response
	}
	s.notifyAccount(ctx, req.Email, &models.Notification{
		Title:   "Password reset rejected",
		Message: message,
		Type:    models.NotifyPasswordResetRejected,
	})
	return nil
}

// notifyAccount sends n to the account owning email. Failures are logged;
// the adjudication they follow has already been stored.
func (s *RegistrationService) notifyAccount(ctx context.Context, email string, n *models.Notification) {
	if s.notifier == nil {
		return
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.log.WithError(err).Warn("no account to notify about password reset")
		return
	}
	n.UserID = &user.ID
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to send password reset notification")
	}
}

// AdminSeed describes the bootstrap administrator created by EnsureAdmin.
type AdminSeed struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Location string
}

// EnsureAdmin creates an active admin account unless one already exists. It
// reports whether an account was created.
func (s *RegistrationService) EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	exists, err := s.users.RoleExists(ctx, models.RoleAdmin)
	if err != nil {
		return false, lookupErr(err, "admin")
	}
	if exists {
		return false, nil
	}
	if seed.Email == "" || seed.Password == "" {
		return false, apperror.Validation("admin email and password are required")
	}

	hash, err := s.hasher.Hash(seed.Password)
	if err != nil {
		return false, apperror.Internal(err, "failed to hash password")
	}
	name := seed.Name
	if name == "" {
		name = "System Administrator"
	}
	user := &models.User{
		ID:           newID(),
		Name:         name,
		Email:        NormalizeEmail(seed.Email),
		Phone:        seed.Phone,
		Role:         models.RoleAdmin,
		Department:   models.Others,
		Location:     seed.Location,
		IsActive:     true,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.insertUser(ctx, user); err != nil {
		return false, err
	}
	s.log.WithField("user_id", user.ID).Info("default admin created")
	return true, nil
}
