package httpx

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonasLeetTheWay/eventbook/internal/apperr"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorRendersKindStatus(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))

	cases := []struct {
		err        error
		wantStatus int
		wantBody   string
	}{
		{apperr.Validation("Missing required fields"), http.StatusBadRequest, `{"error":"Missing required fields"}`},
		{apperr.Auth("Invalid credentials"), http.StatusUnauthorized, `{"error":"Invalid credentials"}`},
		{apperr.NotFound("Event not found"), http.StatusNotFound, `{"error":"Event not found"}`},
		{errors.New("disk on fire"), http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rr)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		Error(c, log, tc.err)

		if rr.Code != tc.wantStatus {
			t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
		}
		if rr.Body.String() != tc.wantBody {
			t.Fatalf("body = %s, want %s", rr.Body.String(), tc.wantBody)
		}
	}
	if !strings.Contains(logs.String(), "disk on fire") {
		t.Fatalf("unexpected error was not logged: %q", logs.String())
	}
	if strings.Contains(logs.String(), "Event not found") {
		t.Fatalf("client error was logged: %q", logs.String())
	}
}

func TestBindJSON(t *testing.T) {
	type body struct {
		Email string `json:"email" binding:"required"`
	}
	cases := []struct {
		payload string
		wantErr string
	}{
		{`{"email":"a@b.c"}`, ""},
		{`{}`, "Missing required fields"},
		{`{not json`, "Invalid request data"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rr)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.payload))
		c.Request.Header.Set("Content-Type", "application/json")

		var b body
		err := BindJSON(c, &b)
		switch {
		case tc.wantErr == "" && err != nil:
			t.Fatalf("BindJSON(%s): %v", tc.payload, err)
		case tc.wantErr != "" && (err == nil || apperr.PublicMessage(err) != tc.wantErr):
			t.Fatalf("BindJSON(%s) = %v, want %q", tc.payload, err, tc.wantErr)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS("*"))
	r.GET("/events", func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/events", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q", got)
	}
}
