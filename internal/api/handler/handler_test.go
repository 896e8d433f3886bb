package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusshelf/library-system/internal/api/middleware"
	"github.com/campusshelf/library-system/internal/core/domain"
)

// newTestContext builds an echo context wired with the validator and error
// handler the router installs.
func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.New(io.Discard))

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withActor(c echo.Context, userID string, role domain.Role) {
	c.Set(middleware.KeyUserID, userID)
	c.Set(middleware.KeyRole, string(role))
	c.Set(middleware.KeyTokenID, "tok-"+userID)
	c.Set(middleware.KeyTokenExp, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
}

// serve runs h and, on error, renders it through the error handler.
func serve(c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		c.Echo().HTTPErrorHandler(err, c)
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return v
}
