package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/dbtest"
	"github.com/JonasLeetTheWay/eventbook/internal/logger"
	"github.com/JonasLeetTheWay/eventbook/internal/models"
	"github.com/JonasLeetTheWay/eventbook/internal/money"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	jane := models.User{Email: "jane@x.com", Password: "x", Role: models.RoleOrganizer}
	bob := models.User{Email: "bob@x.com", Password: "x", Name: models.StringPtr("Bob"), Role: models.RoleUser}
	for _, u := range []*models.User{&jane, &bob} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	org := models.Organizer{UserID: jane.ID, Name: "Jane"}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("create organizer: %v", err)
	}

	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	conf := models.Event{OrganizerID: org.ID, Title: "Conf", Type: models.EventConference, Price: money.FromMinor(29999), CreatedAt: base}
	work := models.Event{OrganizerID: org.ID, Title: "Workshop", Type: models.EventWorkshop, Price: money.FromMinor(5000), CreatedAt: base.Add(time.Hour)}
	empty := models.Event{OrganizerID: org.ID, Title: "Empty", Type: models.EventOther, Price: 0, CreatedAt: base.Add(2 * time.Hour)}
	for _, e := range []*models.Event{&conf, &work, &empty} {
		if err := db.Create(e).Error; err != nil {
			t.Fatalf("create event: %v", err)
		}
	}

	orders := []models.Order{
		{EventID: conf.ID, FinalCost: conf.Price, PaymentStatus: models.PaymentCompleted, PaymentMethod: "UPI Payment"},
		{EventID: conf.ID, FinalCost: conf.Price, PaymentStatus: models.PaymentCompleted, PaymentMethod: "Online Payment"},
		{EventID: conf.ID, FinalCost: conf.Price, PaymentStatus: models.PaymentPending, PaymentMethod: "Cash on Delivery"},
		{EventID: work.ID, FinalCost: work.Price, PaymentStatus: models.PaymentFailed, PaymentMethod: "UPI Payment"},
	}
	for i := range orders {
		orders[i].UserID = bob.ID
		orders[i].BookingDate = base.Add(time.Duration(i) * 24 * time.Hour)
		orders[i].SelectedDateTime = base.Add(30 * 24 * time.Hour)
		if err := db.Create(&orders[i]).Error; err != nil {
			t.Fatalf("create order: %v", err)
		}
	}
}

func TestReport(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	svc := NewService(db, logger.Discard())

	rep, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	if rep.TotalRegistrations != 4 {
		t.Fatalf("total = %d, want 4", rep.TotalRegistrations)
	}
	var sum int64
	for _, s := range rep.RegistrationsByStatus {
		sum += s.Count
	}
	if sum != rep.TotalRegistrations {
		t.Fatalf("status counts sum to %d, want %d", sum, rep.TotalRegistrations)
	}
	if len(rep.RegistrationsByStatus) != 3 {
		t.Fatalf("status groups = %+v", rep.RegistrationsByStatus)
	}

	if rep.TotalRevenue != money.FromMinor(59998) {
		t.Fatalf("revenue = %s, want 599.98", rep.TotalRevenue)
	}

	if rep.RegistrationsByEventType[models.EventConference] != 3 || rep.RegistrationsByEventType[models.EventWorkshop] != 1 {
		t.Fatalf("by type = %v", rep.RegistrationsByEventType)
	}
	if _, ok := rep.RegistrationsByEventType[models.EventOther]; ok {
		t.Fatalf("event type without orders present: %v", rep.RegistrationsByEventType)
	}

	if len(rep.TopEvents) != 3 {
		t.Fatalf("top events = %+v", rep.TopEvents)
	}
	if rep.TopEvents[0].Title != "Conf" || rep.TopEvents[0].Registrations != 3 || rep.TopEvents[2].Registrations != 0 {
		t.Fatalf("top events = %+v", rep.TopEvents)
	}
	if rep.TopEvents[0].Price != money.FromMinor(29999) {
		t.Fatalf("top price = %s", rep.TopEvents[0].Price)
	}

	if len(rep.RecentRegistrations) != 4 {
		t.Fatalf("recent = %d, want 4", len(rep.RecentRegistrations))
	}
	latest := rep.RecentRegistrations[0]
	if latest.Event.Title != "Workshop" || latest.User.Email != "bob@x.com" {
		t.Fatalf("latest = %+v", latest)
	}
}

func TestReportEmpty(t *testing.T) {
	svc := NewService(dbtest.Open(t), logger.Discard())
	rep, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if rep.TotalRegistrations != 0 || rep.TotalRevenue != 0 {
		t.Fatalf("report = %+v", rep)
	}

	data, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"registrationsByStatus":[]`, `"topEvents":[]`, `"recentRegistrations":[]`, `"totalRevenue":0`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("json %s missing %s", data, want)
		}
	}
}

func TestPrint(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	rep, err := NewService(db, logger.Discard()).Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	var buf bytes.Buffer
	if err := Print(&buf, rep); err != nil {
		t.Fatalf("Print: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Total Registrations: 4",
		"COMPLETED: 2",
		"Total Revenue: 599.98",
		"1. Conf (CONFERENCE) - 3 registrations",
		"1. Bob - Workshop",
		"WORKSHOP: 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHTTPReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	seed(t, db)
	r := gin.New()
	NewService(db, logger.Discard()).SetupRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/registrations", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		TotalRegistrations       int            `json:"totalRegistrations"`
		TotalRevenue             float64        `json:"totalRevenue"`
		RegistrationsByEventType map[string]int `json:"registrationsByEventType"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.TotalRegistrations != 4 || body.TotalRevenue != 599.98 || body.RegistrationsByEventType["CONFERENCE"] != 3 {
		t.Fatalf("body = %s", rr.Body.String())
	}
}
