package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicreporter-be/apperror"
	"civicreporter-be/models"
	"civicreporter-be/store"
)

func testContext(method, target, body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c
}

func TestPageFrom(t *testing.T) {
	page, err := pageFrom(testContext(http.MethodGet, "/?skip=20&limit=10", ""))
	require.NoError(t, err)
	assert.Equal(t, store.Page{Skip: 20, Limit: 10}, page)

	page, err = pageFrom(testContext(http.MethodGet, "/", ""))
	require.NoError(t, err)
	assert.Equal(t, store.Page{}, page)

	for _, q := range []string{"skip=-1", "skip=x", "limit=0", "limit=ten"} {
		_, err := pageFrom(testContext(http.MethodGet, "/?"+q, ""))
		assert.True(t, apperror.IsValidation(err), q)
	}
}

func TestQueryEnum(t *testing.T) {
	c := testContext(http.MethodGet, "/?department=WaterSupply", "")
	dept, err := queryEnum(c, models.ParseDepartment, "department_filter", "department")
	require.NoError(t, err)
	assert.Equal(t, models.WaterSupply, dept)

	c = testContext(http.MethodGet, "/?department_filter=drainage&department=others", "")
	dept, err = queryEnum(c, models.ParseDepartment, "department_filter", "department")
	require.NoError(t, err)
	assert.Equal(t, models.Drainage, dept, "the first name wins")

	_, err = queryEnum(testContext(http.MethodGet, "/?status=lost", ""), models.ParseReportStatus, "status")
	assert.True(t, apperror.IsValidation(err))

	status, err := queryEnum(testContext(http.MethodGet, "/", ""), models.ParseReportStatus, "status")
	require.NoError(t, err)
	assert.Empty(t, status)
}

func TestAdminResponse(t *testing.T) {
	got, err := adminResponse(testContext(http.MethodPost, "/", `{"admin_response":"welcome"}`))
	require.NoError(t, err)
	assert.Equal(t, "welcome", got)

	got, err = adminResponse(testContext(http.MethodPost, "/?admin_response=from+query", ""))
	require.NoError(t, err)
	assert.Equal(t, "from query", got)

	_, err = adminResponse(testContext(http.MethodPost, "/", `{"admin_response":`))
	assert.True(t, apperror.IsValidation(err))
}
