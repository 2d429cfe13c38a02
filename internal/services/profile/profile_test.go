package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonasLeetTheWay/eventbook/internal/apperr"
	"github.com/JonasLeetTheWay/eventbook/internal/dbtest"
	"github.com/JonasLeetTheWay/eventbook/internal/logger"
	"github.com/JonasLeetTheWay/eventbook/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "x", Role: role}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func strOrNil(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestUserProfileReplaceSemantics(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, logger.Discard())
	ctx := context.Background()
	bob := seedUser(t, db, "bob@x.com", models.RoleUser)

	name := "Bob"
	res, err := svc.UpdateUserProfile(ctx, bob.ID, &name, Address{Country: "IN", City: "Pune"})
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	if strOrNil(res.Profile.Country) != "IN" || strOrNil(res.Profile.City) != "Pune" {
		t.Fatalf("profile = %+v", res.Profile)
	}

	res, err = svc.UpdateUserProfile(ctx, bob.ID, &name, Address{City: "Mumbai"})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if res.Profile.Country != nil {
		t.Fatalf("country = %q, want null", *res.Profile.Country)
	}
	if strOrNil(res.Profile.City) != "Mumbai" {
		t.Fatalf("city = %s, want Mumbai", strOrNil(res.Profile.City))
	}

	got, err := svc.GetUserProfile(ctx, bob.ID)
	if err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	if got.Profile == nil || got.Profile.Country != nil || strOrNil(got.Profile.City) != "Mumbai" {
		t.Fatalf("stored profile = %+v", got.Profile)
	}
	if strOrNil(got.User.Name) != "Bob" {
		t.Fatalf("name = %s", strOrNil(got.User.Name))
	}

	var count int64
	db.Model(&models.UserProfile{}).Where("user_id = ?", bob.ID).Count(&count)
	if count != 1 {
		t.Fatalf("profile rows = %d, want 1", count)
	}
}

func TestUpdateUserProfileClearsName(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, logger.Discard())
	bob := seedUser(t, db, "bob@x.com", models.RoleUser)
	name := "Bob"
	if _, err := svc.UpdateUserProfile(context.Background(), bob.ID, &name, Address{}); err != nil {
		t.Fatalf("update: %v", err)
	}

	res, err := svc.UpdateUserProfile(context.Background(), bob.ID, nil, Address{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.User.Name != nil {
		t.Fatalf("name = %q, want null", *res.User.Name)
	}
}

func TestUserProfileErrors(t *testing.T) {
	svc := NewService(dbtest.Open(t), logger.Discard())
	ctx := context.Background()

	if _, err := svc.GetUserProfile(ctx, ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if _, err := svc.GetUserProfile(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if _, err := svc.UpdateUserProfile(ctx, "missing", nil, Address{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if _, err := svc.SaveAddress(ctx, "missing", Address{City: "Pune"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestGetUserProfileWithoutRecord(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, logger.Discard())
	bob := seedUser(t, db, "bob@x.com", models.RoleUser)

	got, err := svc.GetUserProfile(context.Background(), bob.ID)
	if err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	if got.Profile != nil {
		t.Fatalf("profile = %+v, want nil", got.Profile)
	}
}

func TestOrganizerProfileCreateThenReplace(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, logger.Discard())
	ctx := context.Background()
	jane := seedUser(t, db, "jane@x.com", models.RoleOrganizer)

	org, err := svc.GetOrganizerProfile(ctx, jane.ID)
	if err != nil || org != nil {
		t.Fatalf("GetOrganizerProfile = %+v, %v; want nil, nil", org, err)
	}

	created, err := svc.UpdateOrganizerProfile(ctx, OrganizerInput{
		UserID: jane.ID, Name: "Jane Smith Events", Bio: "Tech events", VideoURL: "https://v",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateOrganizerProfile(ctx, OrganizerInput{UserID: jane.ID, Name: "Jane Events"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("organizer id changed: %s -> %s", created.ID, updated.ID)
	}
	if updated.Name != "Jane Events" || updated.Bio != nil || updated.VideoURL != nil {
		t.Fatalf("updated = %+v", updated)
	}

	if _, err := svc.UpdateOrganizerProfile(ctx, OrganizerInput{UserID: jane.ID}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("missing name err = %v, want validation", err)
	}
}

func TestHTTPUserProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	svc := NewService(db, logger.Discard())
	bob := seedUser(t, db, "bob@x.com", models.RoleUser)
	r := gin.New()
	svc.SetupRoutes(r)

	req := httptest.NewRequest(http.MethodPut, "/user/profile", strings.NewReader(
		`{"userId":"`+bob.ID+`","name":"Bob","profile":{"country":"IN","city":"Pune","pinCode":"411001"}}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("put status = %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/user/profile?userId="+bob.ID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	var body struct {
		User    map[string]any `json:"user"`
		Profile map[string]any `json:"profile"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Profile["pinCode"] != "411001" || body.Profile["state"] != nil {
		t.Fatalf("profile = %v", body.Profile)
	}
	if _, ok := body.User["password"]; ok {
		t.Fatalf("user leaks password: %v", body.User)
	}

	req = httptest.NewRequest(http.MethodPut, "/user/profile", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "User ID is required") {
		t.Fatalf("missing userId = %d %s", rr.Code, rr.Body.String())
	}
}
