package orders

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/apperr"
	"github.com/JonasLeetTheWay/eventbook/internal/models"
	"github.com/JonasLeetTheWay/eventbook/internal/money"

	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewService(db *gorm.DB, log *slog.Logger) *Service {
	return &Service{db: db, log: log.With("component", "orders")}
}

type CreateOrderInput struct {
	UserID           string
	EventID          string
	BookingDate      *time.Time
	SelectedDateTime *time.Time
	FinalCost        *money.Amount
	PaymentMethod    string
	PaymentStatus    models.PaymentStatus // optional, PENDING when empty
}

// CreateOrder records a checkout. Only absent fields are rejected; a zero
// final cost is a valid free booking. User and event existence is left to the
// store's foreign keys.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if in.UserID == "" || in.EventID == "" || in.BookingDate == nil ||
		in.SelectedDateTime == nil || in.FinalCost == nil || in.PaymentMethod == "" {
		return nil, apperr.Validation("Missing required fields")
	}
	status := in.PaymentStatus
	if status == "" {
		status = models.PaymentPending
	}
	if !status.Valid() {
		return nil, apperr.Validation("Invalid payment status")
	}

	order := models.Order{
		UserID:                in.UserID,
		EventID:               in.EventID,
		BookingDate:           *in.BookingDate,
		SelectedDateTime:      *in.SelectedDateTime,
		FinalCost:             *in.FinalCost,
		PaymentMethod:         in.PaymentMethod,
		PaymentStatus:         status,
		OrganizerConfirmation: models.ConfirmationPending,
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, apperr.Unexpected("create order", err)
	}

	if err := s.db.WithContext(ctx).Preload("Event.Organizer").First(&order, "id = ?", order.ID).Error; err != nil {
		return nil, apperr.Unexpected("reload order", err)
	}

	s.log.Info("order created",
		"order_id", order.ID,
		"event_id", order.EventID,
		"payment_status", order.PaymentStatus,
	)
	return &order, nil
}

func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, apperr.Validation("User ID is required")
	}
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Event.Organizer").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Unexpected("list user orders", err)
	}
	return orders, nil
}

// ListOrganizerOrders returns orders placed against the organizer's events,
// optionally narrowed to one confirmation state.
func (s *Service) ListOrganizerOrders(ctx context.Context, organizerID string, status models.Confirmation) ([]models.Order, error) {
	if organizerID == "" {
		return nil, apperr.Validation("Organizer ID is required")
	}
	if status != "" && !status.Valid() {
		return nil, apperr.Validation("Invalid status")
	}

	q := s.db.WithContext(ctx).
		Joins("JOIN events ON events.id = orders.event_id").
		Where("events.organizer_id = ?", organizerID)
	if status != "" {
		q = q.Where("orders.organizer_confirmation = ?", status)
	}

	var orders []models.Order
	err := q.Preload("User").Preload("Event").
		Order("orders.created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Unexpected("list organizer orders", err)
	}
	return orders, nil
}

type UpdateConfirmationInput struct {
	OrderID     string
	Status      models.Confirmation
	OrganizerID string // caller; must own the order's event
}

// UpdateConfirmation lets the owning organizer confirm or cancel an order.
// Payment status is never touched.
func (s *Service) UpdateConfirmation(ctx context.Context, in UpdateConfirmationInput) (*models.Order, error) {
	if !in.Status.Settable() {
		return nil, apperr.Validation("Invalid status")
	}
	if in.OrderID == "" {
		return nil, apperr.Validation("Order ID is required")
	}
	if in.OrganizerID == "" {
		return nil, apperr.Validation("Organizer ID is required")
	}

	var order models.Order
	err := s.db.WithContext(ctx).Preload("Event").First(&order, "id = ?", in.OrderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, apperr.Unexpected("get order", err)
	}
	if order.Event.OrganizerID != in.OrganizerID {
		s.log.Warn("confirmation by non-owner rejected",
			"order_id", order.ID,
			"organizer_id", in.OrganizerID,
		)
		return nil, apperr.Forbidden("Order does not belong to this organizer")
	}

	err = s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("organizer_confirmation", in.Status).Error
	if err != nil {
		return nil, apperr.Unexpected("update order confirmation", err)
	}

	if err := s.db.WithContext(ctx).Preload("User").Preload("Event").First(&order, "id = ?", order.ID).Error; err != nil {
		return nil, apperr.Unexpected("reload order", err)
	}

	s.log.Info("order confirmation updated", "order_id", order.ID, "status", order.OrganizerConfirmation)
	return &order, nil
}

// ResolveOrganizerID maps a user id to its organizer id.
func (s *Service) ResolveOrganizerID(ctx context.Context, userID string) (string, error) {
	var org models.Organizer
	err := s.db.WithContext(ctx).Select("id").First(&org, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.Forbidden("Caller is not an organizer")
		}
		return "", apperr.Unexpected("resolve organizer", err)
	}
	return org.ID, nil
}

func confirmationMessage(status models.Confirmation) string {
	return "Order " + strings.ToLower(string(status)) + " successfully"
}
