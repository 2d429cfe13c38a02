package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/apperr"
	"github.com/JonasLeetTheWay/eventbook/internal/httpx"
	"github.com/JonasLeetTheWay/eventbook/internal/models"
	"github.com/JonasLeetTheWay/eventbook/internal/payment"
	"github.com/JonasLeetTheWay/eventbook/internal/services/orders"
	"github.com/JonasLeetTheWay/eventbook/internal/services/profile"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EventFinder interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
}

type AddressSaver interface {
	SaveAddress(ctx context.Context, userID string, addr profile.Address) (*models.UserProfile, error)
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, in orders.CreateOrderInput) (*models.Order, error)
}

type PaymentProcessor interface {
	Process(ctx context.Context, req *payment.Request) (*payment.Result, error)
}

// Deps are the collaborators a booking needs along the way.
type Deps struct {
	Store    Store
	Events   EventFinder
	Profiles AddressSaver
	Orders   OrderCreator
	Payments PaymentProcessor
}

type Service struct {
	Deps
	minLeadTime time.Duration
	now         func() time.Time
	log         *slog.Logger
}

func NewService(deps Deps, minLeadTime time.Duration, log *slog.Logger) *Service {
	return &Service{
		Deps:        deps,
		minLeadTime: minLeadTime,
		now:         time.Now,
		log:         log.With("component", "booking"),
	}
}

func (s *Service) SetupRoutes(r gin.IRouter) {
	r.POST("/bookings", s.handleStart)
	r.GET("/bookings/:id", s.handleGet)
	r.PUT("/bookings/:id/address", s.handleSubmitAddress)
	r.POST("/bookings/:id/payment", s.handleChoosePayment)
	r.DELETE("/bookings/:id", s.handleCancel)
}

// Start opens a session for an event slot. The slot must be at least the
// minimum lead time in the future.
func (s *Service) Start(ctx context.Context, userID, eventID string, at *time.Time) (*Session, error) {
	if userID == "" || eventID == "" || at == nil {
		return nil, apperr.Validation("Missing required fields")
	}
	now := s.now()
	if at.Before(now.Add(s.minLeadTime)) {
		return nil, apperr.Validation(fmt.Sprintf("Selected time must be at least %s from now", formatLead(s.minLeadTime)))
	}

	event, err := s.Events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	sess := newSession(uuid.NewString(), userID, now)
	if err := sess.SelectSlot(event.ID, at.UTC(), event.Price, now); err != nil {
		return nil, stepErr(err)
	}
	if err := s.Store.Save(ctx, sess); err != nil {
		return nil, apperr.Unexpected("save booking session", err)
	}

	s.log.Info("booking started", "booking_id", sess.ID, "event_id", event.ID)
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (*Session, error) {
	sess, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// SubmitAddress saves the address to the user's profile right away and moves
// the session on to payment.
func (s *Service) SubmitAddress(ctx context.Context, id, userID string, addr profile.Address) (*Session, *models.UserProfile, error) {
	if addr.Country == "" || addr.State == "" || addr.City == "" || addr.PinCode == "" || addr.Address == "" {
		return nil, nil, apperr.Validation("Missing required fields")
	}

	unlock, err := s.lock(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	sess, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	if err := sess.SetAddress(addr, s.now()); err != nil {
		return nil, nil, stepErr(err)
	}

	saved, err := s.Profiles.SaveAddress(ctx, userID, addr)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Store.Save(ctx, sess); err != nil {
		return nil, nil, apperr.Unexpected("save booking session", err)
	}
	return sess, saved, nil
}

// ChoosePayment runs the simulated payment and places the order. The session
// is locked for the duration so a double submit cannot create two orders.
func (s *Service) ChoosePayment(ctx context.Context, id, userID, method string) (*Session, *models.Order, error) {
	if !payment.SupportedMethod(method) {
		return nil, nil, apperr.Validation("Invalid payment method")
	}

	unlock, err := s.lock(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	sess, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	if err := sess.ReadyForPayment(); err != nil {
		return nil, nil, stepErr(err)
	}

	res, err := s.Payments.Process(ctx, &payment.Request{
		Method:  method,
		Amount:  *sess.FinalCost,
		UserID:  userID,
		EventID: sess.EventID,
	})
	if err != nil {
		return nil, nil, apperr.Unexpected("process payment", err)
	}

	now := s.now()
	order, err := s.Orders.CreateOrder(ctx, orders.CreateOrderInput{
		UserID:           userID,
		EventID:          sess.EventID,
		BookingDate:      &now,
		SelectedDateTime: sess.SelectedDateTime,
		FinalCost:        sess.FinalCost,
		PaymentMethod:    method,
		PaymentStatus:    res.Status,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := sess.Submit(method, res.ID, order.ID, now); err != nil {
		return nil, nil, stepErr(err)
	}
	if err := s.Store.Save(ctx, sess); err != nil {
		// The order exists; the client can still find it under its orders.
		s.log.Error("save submitted booking session", "booking_id", sess.ID, "order_id", order.ID, "error", err)
	}

	s.log.Info("booking submitted",
		"booking_id", sess.ID,
		"order_id", order.ID,
		"payment_status", res.Status,
	)
	return sess, order, nil
}

// Cancel discards a session in any state. Orders it already placed stay.
func (s *Service) Cancel(ctx context.Context, id, userID string) error {
	unlock, err := s.lock(ctx, id, userID)
	if err != nil {
		return err
	}
	defer unlock()

	sess, err := s.load(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, sess.ID); err != nil {
		return apperr.Unexpected("delete booking session", err)
	}
	s.log.Info("booking cancelled", "booking_id", sess.ID, "state", sess.State)
	return nil
}

func (s *Service) load(ctx context.Context, id, userID string) (*Session, error) {
	if id == "" || userID == "" {
		return nil, apperr.Validation("Booking ID and user ID are required")
	}
	sess, err := s.Store.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, apperr.NotFound("Booking not found")
	}
	if err != nil {
		return nil, apperr.Unexpected("load booking session", err)
	}
	if sess.UserID != userID {
		return nil, apperr.Forbidden("Booking belongs to another user")
	}
	return sess, nil
}

func (s *Service) lock(ctx context.Context, id, userID string) (func(), error) {
	unlock, err := s.Store.Lock(ctx, id, userID)
	if errors.Is(err, ErrSessionBusy) {
		return nil, apperr.Conflict("Booking is currently being processed")
	}
	if err != nil {
		return nil, apperr.Unexpected("lock booking session", err)
	}
	return unlock, nil
}

func stepErr(err error) error {
	var step *StepError
	switch {
	case errors.As(err, &step):
		return apperr.Validation(fmt.Sprintf("Please complete the %s step first", step.Step))
	case errors.Is(err, ErrSubmitted):
		return apperr.Validation("Booking has already been submitted")
	}
	return apperr.Unexpected("booking transition", err)
}

func formatLead(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d > 0 && d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	}
	return d.String()
}

func (s *Service) handleStart(c *gin.Context) {
	var req struct {
		UserID           string      `json:"userId" binding:"required"`
		EventID          string      `json:"eventId" binding:"required"`
		SelectedDateTime *httpx.Time `json:"selectedDateTime" binding:"required"`
	}
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	sess, err := s.Start(c.Request.Context(), req.UserID, req.EventID, req.SelectedDateTime.Std())
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": sess})
}

func (s *Service) handleGet(c *gin.Context) {
	sess, err := s.Get(c.Request.Context(), c.Param("id"), c.Query("userId"))
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": sess})
}

func (s *Service) handleSubmitAddress(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
		profile.Address
	}
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	sess, saved, err := s.SubmitAddress(c.Request.Context(), c.Param("id"), req.UserID, req.Address)
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": sess, "profile": saved})
}

func (s *Service) handleChoosePayment(c *gin.Context) {
	var req struct {
		UserID        string `json:"userId" binding:"required"`
		PaymentMethod string `json:"paymentMethod" binding:"required"`
	}
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	sess, order, err := s.ChoosePayment(c.Request.Context(), c.Param("id"), req.UserID, req.PaymentMethod)
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order placed successfully",
		"booking": sess,
		"order":   orders.NewUserOrderView(order),
	})
}

func (s *Service) handleCancel(c *gin.Context) {
	if err := s.Cancel(c.Request.Context(), c.Param("id"), c.Query("userId")); err != nil {
		httpx.Error(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}
