package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"civicreporter-be/controllers"
	"civicreporter-be/credentials"
	"civicreporter-be/logger"
	"civicreporter-be/middlewares"
	"civicreporter-be/models"
	"civicreporter-be/services"
	"civicreporter-be/store/storetest"
)

type testAPI struct {
	router        *gin.Engine
	reports       *storetest.Reports
	notifications *storetest.Notifications
	registrations *services.RegistrationService
	limited       []string
}

func newTestAPI(t *testing.T, checks map[string]controllers.Pinger) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Discard()

	users := storetest.NewUsers()
	api := &testAPI{
		reports:       storetest.NewReports(),
		notifications: storetest.NewNotifications(),
	}
	hasher := credentials.NewHasher(bcrypt.MinCost)
	tokens := credentials.NewTokenManager("routes-test-secret-routes-test-secret", time.Hour)

	notifications := services.NewNotificationService(api.notifications, log)
	directory := services.NewDirectoryService(users, tokens, hasher, log)
	reports := services.NewReportService(api.reports, notifications, log)
	api.registrations = services.NewRegistrationService(users, storetest.NewRegistrations(), storetest.NewPasswordResets(), hasher, notifications, log)

	if checks == nil {
		checks = map[string]controllers.Pinger{}
	}
	api.router = NewRouter(Handlers{
		Auth:          controllers.NewAuthController(directory, api.registrations),
		Users:         controllers.NewUserController(directory, api.registrations),
		Reports:       controllers.NewReportController(reports),
		Notifications: controllers.NewNotificationController(notifications),
		Health:        controllers.NewHealthController(checks),
		Authenticator: directory,
		ReportLimiter: func(c *gin.Context) {
			api.limited = append(api.limited, middlewares.CallerFrom(c).ID)
		},
	}, Options{Log: log})
	return api
}

func (api *testAPI) do(t *testing.T, method, path, token string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (api *testAPI) list(t *testing.T, path, token string) (int, []map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)

	var out []map[string]interface{}
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (api *testAPI) login(t *testing.T, email, password string) string {
	t.Helper()
	code, body := api.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, code, body)
	return body["access_token"].(string)
}

func (api *testAPI) adminToken(t *testing.T) string {
	t.Helper()
	_, err := api.registrations.EnsureAdmin(context.Background(), services.AdminSeed{Email: "admin@example.com", Password: "admin-pass"})
	require.NoError(t, err)
	return api.login(t, "admin@example.com", "admin-pass")
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t, map[string]controllers.Pinger{
		"mongodb": func(ctx context.Context) error { return nil },
	})
	code, body := api.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pong", body["message"])

	code, body = api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])

	down := newTestAPI(t, map[string]controllers.Pinger{
		"mongodb": func(ctx context.Context) error { return errors.New("no reachable servers") },
	})
	code, body = down.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "no reachable servers", body["dependencies"].(map[string]interface{})["mongodb"])
}

func TestPublicSignupAndSession(t *testing.T) {
	api := newTestAPI(t, nil)

	code, body := api.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "Registration successful! You can now login.", body["message"])
	assert.Equal(t, "approved", body["status"])

	code, body = api.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Asha again",
		"email":    "ASHA@example.com",
		"password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusBadRequest, code, "conflicts surface as 400")
	assert.Equal(t, "user with this email already exists", body["error"])

	code, _ = api.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "asha@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)

	token := api.login(t, "asha@example.com", "s3cret-pass")
	code, body = api.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "asha@example.com", body["email"])
	assert.Nil(t, body["password_hash"], "the hash never leaves the service")

	code, body = api.do(t, http.MethodPost, "/api/auth/refresh", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "bearer", body["token_type"])

	code, body = api.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Successfully logged out", body["message"])

	code, _ = api.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestOfficerApprovalFlow(t *testing.T) {
	api := newTestAPI(t, nil)
	admin := api.adminToken(t)

	code, body := api.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":       "Meera",
		"email":      "meera@example.com",
		"password":   "s3cret-pass",
		"user_type":  "officer",
		"department": "Drainage",
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "pending_approval", body["status"])
	requestID := body["request_id"].(string)

	code, _ = api.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "meera@example.com", "password": "s3cret-pass"})
	assert.Equal(t, http.StatusUnauthorized, code, "no account until approval")

	code, pending := api.list(t, "/api/users/registration-requests/?status_filter=notified", admin)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, pending, 1)
	assert.Nil(t, pending[0]["password_hash"])

	code, _ = api.list(t, "/api/users/registration-requests/?status_filter=maybe", admin)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = api.do(t, http.MethodPost, "/api/users/registration-requests/"+requestID+"/approve", admin, gin.H{"admin_response": "welcome"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Registration request approved and user created", body["message"])
	assert.Equal(t, "meera@example.com", body["user_email"])

	code, _ = api.do(t, http.MethodPost, "/api/users/registration-requests/"+requestID+"/approve", admin, nil)
	assert.Equal(t, http.StatusBadRequest, code, "the account already exists")

	officer := api.login(t, "meera@example.com", "s3cret-pass")
	code, body = api.do(t, http.MethodGet, "/api/auth/me", officer, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "officer", body["user_type"])
	assert.Equal(t, "drainage", body["department"])

	code, _ = api.do(t, http.MethodPost, "/api/users/registration-requests/"+requestID+"/reject", officer, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(t, http.MethodPost, "/api/users/registration-requests/missing/reject?admin_response=no", admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUserAdministration(t *testing.T) {
	api := newTestAPI(t, nil)
	admin := api.adminToken(t)
	api.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "Asha", "email": "asha@example.com", "password": "s3cret-pass"})
	asha := api.login(t, "asha@example.com", "s3cret-pass")

	code, users := api.list(t, "/api/users/?user_type_filter=public", admin)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, users, 1)
	ashaID := users[0]["id"].(string)

	code, _ = api.list(t, "/api/users/", asha)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.list(t, "/api/users/?limit=0", admin)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := api.do(t, http.MethodGet, "/api/users/"+ashaID, asha, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "asha@example.com", body["email"])

	code, body = api.do(t, http.MethodPut, "/api/users/"+ashaID+"/deactivate", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User deactivated successfully", body["message"])

	code, _ = api.do(t, http.MethodGet, "/api/auth/me", asha, nil)
	assert.Equal(t, http.StatusUnauthorized, code, "existing tokens stop working")

	code, body = api.do(t, http.MethodPut, "/api/users/"+ashaID+"/activate", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User activated successfully", body["message"])

	code, _ = api.do(t, http.MethodPut, "/api/users/missing/activate", admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPasswordResetFlow(t *testing.T) {
	api := newTestAPI(t, nil)
	admin := api.adminToken(t)
	api.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "Asha", "email": "asha@example.com", "password": "s3cret-pass"})

	code, body := api.do(t, http.MethodPost, "/api/users/password-reset-requests/", "", gin.H{
		"email":        "asha@example.com",
		"reason":       "forgot",
		"new_password": "brand-new-pass",
	})
	require.Equal(t, http.StatusCreated, code, body)
	requestID := body["request_id"].(string)

	code, _ = api.do(t, http.MethodPost, "/api/users/password-reset-requests/", "", gin.H{
		"email":        "ghost@example.com",
		"new_password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, resets := api.list(t, "/api/users/password-reset-requests/", admin)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resets, 1)

	code, body = api.do(t, http.MethodPost, "/api/users/password-reset-requests/"+requestID+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Password reset approved and user password updated", body["message"])

	asha := api.login(t, "asha@example.com", "brand-new-pass")
	code, count := api.do(t, http.MethodGet, "/api/notifications/stats/unread-count", asha, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), count["unread_count"])
}

func TestReportLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	admin := api.adminToken(t)
	api.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "Asha", "email": "asha@example.com", "password": "s3cret-pass"})
	asha := api.login(t, "asha@example.com", "s3cret-pass")

	code, body := api.do(t, http.MethodPost, "/api/reports/", asha, gin.H{
		"title":      "Broken street light",
		"category":   "lighting",
		"department": "streetLights",
		"latitude":   12.97,
		"longitude":  77.59,
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "Report created successfully", body["message"])
	assert.Equal(t, "submitted", body["status"])
	reportID := body["report_id"].(string)

	code, body = api.do(t, http.MethodPost, "/api/reports/", "", gin.H{"title": "Overflowing drain", "department": "drainage"})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, models.AnonymousReporter, body["report"].(map[string]interface{})["reporter_id"])
	require.Len(t, api.limited, 2)
	assert.NotEmpty(t, api.limited[0], "the limiter sees the resolved caller")
	assert.Empty(t, api.limited[1])

	code, _ = api.do(t, http.MethodPost, "/api/reports/", "bad-token", gin.H{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, code, "a bad token is not downgraded to anonymous")

	code, _ = api.do(t, http.MethodPost, "/api/reports/", "", gin.H{"title": "x", "latitude": 123.0})
	assert.Equal(t, http.StatusBadRequest, code)

	code, mine := api.list(t, "/api/reports/", asha)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, mine, 1, "citizens see their own reports")

	code, all := api.list(t, "/api/reports/?department_filter=drainage", admin)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, all, 1)

	code, _ = api.list(t, "/api/reports/?status_filter=lost", admin)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = api.do(t, http.MethodPut, "/api/reports/"+reportID+"/status", asha, gin.H{"new_status": "done"})
	assert.Equal(t, http.StatusForbidden, code, body)

	code, body = api.do(t, http.MethodPut, "/api/reports/"+reportID+"/status", admin, gin.H{"new_status": "in_progress", "update_message": "crew dispatched"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Report status updated successfully", body["message"])
	assert.Equal(t, "in_progress", body["new_status"])
	assert.Equal(t, "System Administrator", body["updated_by"])

	code, body = api.do(t, http.MethodPut, "/api/reports/"+reportID+"/status?new_status=done", admin, nil)
	require.Equal(t, http.StatusOK, code, body)

	code, _ = api.do(t, http.MethodPut, "/api/reports/"+reportID+"/status", admin, gin.H{"new_status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = api.do(t, http.MethodPut, "/api/reports/"+reportID+"/status", admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = api.do(t, http.MethodPut, "/api/reports/missing/status", admin, gin.H{"new_status": "done"})
	assert.Equal(t, http.StatusNotFound, code)

	code, body = api.do(t, http.MethodGet, "/api/reports/"+reportID, asha, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "done", body["status"])
	assert.Len(t, body["updates"], 2)

	code, stats := api.do(t, http.MethodGet, "/api/reports/stats/summary", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), stats["total"])
	assert.Equal(t, float64(1), stats["done"])
	assert.Equal(t, float64(1), stats["submitted"])

	code, _ = api.do(t, http.MethodGet, "/api/reports/stats/summary", asha, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, notices := api.list(t, "/api/notifications/?notification_type=statusUpdate", asha)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, notices, 2, "one notice per transition")
}

func TestNotificationEndpoints(t *testing.T) {
	api := newTestAPI(t, nil)
	admin := api.adminToken(t)
	api.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "Asha", "email": "asha@example.com", "password": "s3cret-pass"})
	asha := api.login(t, "asha@example.com", "s3cret-pass")
	code, users := api.list(t, "/api/users/?user_type_filter=public", admin)
	require.Equal(t, http.StatusOK, code)
	ashaID := users[0]["id"].(string)

	code, body := api.do(t, http.MethodPost, "/api/notifications/", admin, gin.H{"title": "Hello", "user_id": ashaID})
	require.Equal(t, http.StatusCreated, code, body)
	directID := body["notification_id"].(string)

	code, body = api.do(t, http.MethodPost, "/api/notifications/broadcast", admin, gin.H{"title": "Water outage", "type": "urgent"})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "Broadcast notification created successfully", body["message"])

	code, _ = api.do(t, http.MethodPost, "/api/notifications/broadcast", asha, gin.H{"title": "spam"})
	assert.Equal(t, http.StatusForbidden, code)

	code, inbox := api.list(t, "/api/notifications/", asha)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, inbox, 2)

	code, urgent := api.list(t, "/api/notifications/?notification_type=urgent&unread_only=true", asha)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, urgent, 1)

	code, _ = api.list(t, "/api/notifications/?unread_only=maybe", asha)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = api.do(t, http.MethodPut, "/api/notifications/"+directID+"/read", asha, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Notification marked as read", body["message"])

	code, body = api.do(t, http.MethodPut, "/api/notifications/mark-all-read", asha, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, fmt.Sprintf("Marked %d notifications as read", 1), body["message"])

	code, body = api.do(t, http.MethodGet, "/api/notifications/stats/unread-count", asha, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["unread_count"])

	code, body = api.do(t, http.MethodGet, "/api/notifications/"+directID, asha, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["is_read"])

	code, all := api.list(t, "/api/notifications/admin/all", admin)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, all, 2)
	code, _ = api.list(t, "/api/notifications/admin/all", asha)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = api.do(t, http.MethodDelete, "/api/notifications/"+directID, asha, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Notification deleted successfully", body["message"])
	code, _ = api.do(t, http.MethodDelete, "/api/notifications/"+directID, asha, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = api.list(t, "/api/notifications/", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}
