package stats

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/apperr"
	"github.com/JonasLeetTheWay/eventbook/internal/httpx"
	"github.com/JonasLeetTheWay/eventbook/internal/models"
	"github.com/JonasLeetTheWay/eventbook/internal/money"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	topEventsLimit = 10
	recentLimit    = 20
)

type Service struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewService(db *gorm.DB, log *slog.Logger) *Service {
	return &Service{db: db, log: log.With("component", "stats")}
}

func (s *Service) SetupRoutes(r gin.IRouter) {
	r.GET("/registrations", s.handleReport)
}

type StatusCount struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	Count         int64                `json:"count"`
}

type EventCount struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Type          models.EventType `json:"type"`
	Price         money.Amount     `json:"price"`
	Registrations int64            `json:"registrations"`
}

type Registration struct {
	ID            string               `json:"id"`
	BookingDate   time.Time            `json:"bookingDate"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	FinalCost     money.Amount         `json:"finalCost"`
	User          struct {
		ID    string  `json:"id"`
		Email string  `json:"email"`
		Name  *string `json:"name"`
	} `json:"user"`
	Event struct {
		ID    string           `json:"id"`
		Title string           `json:"title"`
		Type  models.EventType `json:"type"`
	} `json:"event"`
}

type typeCount struct {
	Type  models.EventType
	Count int64
}

// Report is a point-in-time rollup of all orders. The status counts always
// add up to TotalRegistrations.
type Report struct {
	TotalRegistrations       int64                      `json:"totalRegistrations"`
	RegistrationsByStatus    []StatusCount              `json:"registrationsByStatus"`
	TotalRevenue             money.Amount               `json:"totalRevenue"`
	RegistrationsByEventType map[models.EventType]int64 `json:"registrationsByEventType"`
	TopEvents                []EventCount               `json:"topEvents"`
	RecentRegistrations      []Registration             `json:"recentRegistrations"`
}

// Report runs every rollup inside one read transaction so the numbers agree
// with each other.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	var rep Report
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Count(&rep.TotalRegistrations).Error; err != nil {
			return apperr.Unexpected("count orders", err)
		}

		rep.RegistrationsByStatus = []StatusCount{}
		err := tx.Model(&models.Order{}).
			Select("payment_status, COUNT(*) AS count").
			Group("payment_status").
			Order("payment_status").
			Scan(&rep.RegistrationsByStatus).Error
		if err != nil {
			return apperr.Unexpected("group orders by status", err)
		}

		var revenue int64
		err = tx.Model(&models.Order{}).
			Select("CAST(COALESCE(SUM(final_cost), 0) AS BIGINT)").
			Where("payment_status = ?", models.PaymentCompleted).
			Scan(&revenue).Error
		if err != nil {
			return apperr.Unexpected("sum revenue", err)
		}
		rep.TotalRevenue = money.FromMinor(revenue)

		var byType []typeCount
		err = tx.Model(&models.Order{}).
			Select("events.type AS type, COUNT(*) AS count").
			Joins("JOIN events ON events.id = orders.event_id").
			Group("events.type").
			Scan(&byType).Error
		if err != nil {
			return apperr.Unexpected("group orders by event type", err)
		}
		rep.RegistrationsByEventType = make(map[models.EventType]int64, len(byType))
		for _, row := range byType {
			rep.RegistrationsByEventType[row.Type] = row.Count
		}

		rep.TopEvents = []EventCount{}
		err = tx.Model(&models.Event{}).
			Select("events.id, events.title, events.type, events.price, COUNT(orders.id) AS registrations").
			Joins("LEFT JOIN orders ON orders.event_id = events.id").
			Group("events.id, events.title, events.type, events.price").
			Order("registrations DESC, events.created_at").
			Limit(topEventsLimit).
			Scan(&rep.TopEvents).Error
		if err != nil {
			return apperr.Unexpected("rank events", err)
		}

		var recent []models.Order
		err = tx.Preload("User").Preload("Event").
			Order("booking_date DESC").
			Limit(recentLimit).
			Find(&recent).Error
		if err != nil {
			return apperr.Unexpected("recent orders", err)
		}
		rep.RecentRegistrations = make([]Registration, 0, len(recent))
		for i := range recent {
			rep.RecentRegistrations = append(rep.RecentRegistrations, newRegistration(&recent[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func newRegistration(o *models.Order) Registration {
	r := Registration{
		ID:            o.ID,
		BookingDate:   o.BookingDate.UTC(),
		PaymentStatus: o.PaymentStatus,
		FinalCost:     o.FinalCost,
	}
	r.User.ID = o.User.ID
	r.User.Email = o.User.Email
	r.User.Name = o.User.Name
	r.Event.ID = o.Event.ID
	r.Event.Title = o.Event.Title
	r.Event.Type = o.Event.Type
	return r
}

func (s *Service) handleReport(c *gin.Context) {
	rep, err := s.Report(c.Request.Context())
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}
