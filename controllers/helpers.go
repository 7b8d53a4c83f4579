package controllers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"civicreporter-be/apperror"
	"civicreporter-be/middlewares"
	"civicreporter-be/policy"
	"civicreporter-be/store"
)

const requestTimeout = 10 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func caller(c *gin.Context) policy.Caller {
	return middlewares.CallerFrom(c)
}

// fail hands err to the error middleware.
func fail(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
}

func badRequest(c *gin.Context, err error) {
	fail(c, apperror.Validation(err.Error()))
}

// pageFrom reads skip and limit from the query string. Zero limit means the
// listing's default.
func pageFrom(c *gin.Context) (store.Page, error) {
	var page store.Page
	if raw := c.Query("skip"); raw != "" {
		skip, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || skip < 0 {
			return page, apperror.Validation("skip must be a non-negative integer")
		}
		page.Skip = skip
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 1 {
			return page, apperror.Validation("limit must be a positive integer")
		}
		page.Limit = limit
	}
	return page, nil
}

// queryEnum parses an optional enum query parameter, trying each name in
// turn.
func queryEnum[T ~string](c *gin.Context, parse func(string) (T, bool), names ...string) (T, error) {
	var zero T
	for _, name := range names {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, ok := parse(raw)
		if !ok {
			return zero, apperror.Validation("invalid value for " + name + ": " + raw)
		}
		return v, nil
	}
	return zero, nil
}

// adminResponse reads the optional admin_response from the JSON body or the
// query string.
func adminResponse(c *gin.Context) (string, error) {
	var body struct {
		AdminResponse *string `json:"admin_response"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			return "", apperror.Validation(err.Error())
		}
		if body.AdminResponse != nil {
			return *body.AdminResponse, nil
		}
	}
	return c.Query("admin_response"), nil
}
