package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/apperr"
	"github.com/JonasLeetTheWay/eventbook/internal/dbtest"
	"github.com/JonasLeetTheWay/eventbook/internal/logger"
	"github.com/JonasLeetTheWay/eventbook/internal/models"
	"github.com/JonasLeetTheWay/eventbook/internal/money"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func seedOrganizer(t *testing.T, db *gorm.DB, email string) models.Organizer {
	t.Helper()
	user := models.User{Email: email, Password: "x", Role: models.RoleOrganizer}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	org := models.Organizer{
		UserID:   user.ID,
		Name:     "Org " + email,
		Bio:      models.StringPtr("bio"),
		VideoURL: models.StringPtr("https://example.com/v"),
	}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("create organizer: %v", err)
	}
	return org
}

func seedEvent(t *testing.T, db *gorm.DB, orgID, title string, createdAt time.Time) models.Event {
	t.Helper()
	e := models.Event{
		OrganizerID: orgID,
		Title:       title,
		Type:        models.EventWorkshop,
		Price:       money.FromMinor(5000),
		CreatedAt:   createdAt,
	}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("create event: %v", err)
	}
	return e
}

func TestListEventsNewestFirst(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, logger.Discard())
	org := seedOrganizer(t, db, "o@x.com")

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedEvent(t, db, org.ID, "old", base)
	seedEvent(t, db, org.ID, "new", base.Add(time.Hour))

	events, err := svc.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Title != "new" || events[1].Title != "old" {
		t.Fatalf("order = %q, %q", events[0].Title, events[1].Title)
	}
	if events[0].Organizer.Name != org.Name {
		t.Fatalf("organizer not loaded: %+v", events[0].Organizer)
	}
}

func TestGetEventNotFound(t *testing.T) {
	svc := NewService(dbtest.Open(t), logger.Discard())
	_, err := svc.GetEvent(context.Background(), "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestListOrganizerEventsFilters(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, logger.Discard())
	a := seedOrganizer(t, db, "a@x.com")
	b := seedOrganizer(t, db, "b@x.com")
	now := time.Now()
	seedEvent(t, db, a.ID, "a1", now)
	seedEvent(t, db, b.ID, "b1", now)

	events, err := svc.ListOrganizerEvents(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("ListOrganizerEvents: %v", err)
	}
	if len(events) != 1 || events[0].Title != "a1" {
		t.Fatalf("events = %+v", events)
	}

	if _, err := svc.ListOrganizerEvents(context.Background(), ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestCreateEventValidation(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, logger.Discard())
	org := seedOrganizer(t, db, "o@x.com")
	price := money.FromMinor(100)
	negative := money.FromMinor(-1)

	cases := []CreateEventInput{
		{Title: "t", Type: models.EventOther, Price: &price},
		{OrganizerID: org.ID, Type: models.EventOther, Price: &price},
		{OrganizerID: org.ID, Title: "t", Price: &price},
		{OrganizerID: org.ID, Title: "t", Type: models.EventOther},
		{OrganizerID: org.ID, Title: "t", Type: "PARTY", Price: &price},
		{OrganizerID: org.ID, Title: "t", Type: models.EventOther, Price: &negative},
	}
	for _, in := range cases {
		if _, err := svc.CreateEvent(context.Background(), in); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("CreateEvent(%+v) err = %v, want validation", in, err)
		}
	}

	free := money.FromMinor(0)
	event, err := svc.CreateEvent(context.Background(), CreateEventInput{
		OrganizerID: org.ID, Title: "Free meetup", Type: models.EventOther, Price: &free,
	})
	if err != nil {
		t.Fatalf("CreateEvent free: %v", err)
	}
	if event.ID == "" || event.Description != nil {
		t.Fatalf("event = %+v", event)
	}
}

func TestHTTPEventEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	svc := NewService(db, logger.Discard())
	org := seedOrganizer(t, db, "o@x.com")
	r := gin.New()
	svc.SetupRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/organizer/events", strings.NewReader(
		`{"organizerId":"`+org.ID+`","title":"Conf","type":"CONFERENCE","price":299.99}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rr.Code, rr.Body.String())
	}
	var created struct {
		Event struct {
			ID    string  `json:"id"`
			Price float64 `json:"price"`
		} `json:"event"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Event.Price != 299.99 {
		t.Fatalf("price = %v, want 299.99", created.Event.Price)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events/"+created.Event.ID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"videoUrl":"https://example.com/v"`) {
		t.Fatalf("get body missing organizer video: %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d, want 404", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/organizer/events", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("organizer events without id = %d, want 400", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/organizer/events", strings.NewReader(
		`{"organizerId":"`+org.ID+`","title":"NoPrice","type":"CONFERENCE"}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "Missing required fields") {
		t.Fatalf("create without price = %d %s", rr.Code, rr.Body.String())
	}
}
