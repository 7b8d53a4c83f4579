package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	"civicreporter-be/credentials"
	"civicreporter-be/models"
	"civicreporter-be/policy"
	"civicreporter-be/store/storetest"
)

var (
	ctx     = context.Background()
	fixedAt = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
)

// env wires every service over in-memory stores.
type env struct {
	userStore         *storetest.Users
	reportStore       *storetest.Reports
	notificationStore *storetest.Notifications
	registrationStore *storetest.Registrations
	resetStore        *storetest.PasswordResets

	hasher *credentials.Hasher
	tokens *credentials.TokenManager
	logs   *test.Hook

	directory     *DirectoryService
	reports       *ReportService
	registrations *RegistrationService
	notifications *NotificationService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	e := &env{
		userStore:         storetest.NewUsers(),
		reportStore:       storetest.NewReports(),
		notificationStore: storetest.NewNotifications(),
		registrationStore: storetest.NewRegistrations(),
		resetStore:        storetest.NewPasswordResets(),
		hasher:            credentials.NewHasher(bcrypt.MinCost),
		tokens:            credentials.NewTokenManager("test-secret-test-secret-test-secret", time.Hour),
		logs:              hook,
	}
	e.notifications = NewNotificationService(e.notificationStore, log)
	e.directory = NewDirectoryService(e.userStore, e.tokens, e.hasher, log)
	e.reports = NewReportService(e.reportStore, e.notifications, log)
	e.registrations = NewRegistrationService(e.userStore, e.registrationStore, e.resetStore, e.hasher, e.notifications, log)
	return e
}

func (e *env) addUser(t *testing.T, id string, role models.Role, dept models.Department) policy.Caller {
	t.Helper()
	hash, err := e.hasher.Hash("password-" + id)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := models.User{
		ID:           id,
		Name:         "name-" + id,
		Email:        id + "@example.com",
		Role:         role,
		Department:   dept,
		IsActive:     true,
		PasswordHash: hash,
		CreatedAt:    fixedAt,
	}
	if err := e.userStore.Insert(ctx, &u); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return policy.CallerFromUser(&u)
}

func ptr(s string) *string { return &s }

func report(id string, dept models.Department, reporter string, assigned *string) models.Report {
	r := models.Report{
		ID:                id,
		Title:             "report " + id,
		Status:            models.StatusSubmitted,
		Priority:          models.PriorityMedium,
		Department:        dept,
		ReporterID:        reporter,
		AssignedOfficerID: assigned,
		CreatedAt:         fixedAt,
		UpdatedAt:         fixedAt,
	}
	if assigned != nil {
		r.AssignedOfficerName = ptr("officer " + *assigned)
	}
	return r
}
