package orders

import (
	"net/http"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/apperr"
	"github.com/JonasLeetTheWay/eventbook/internal/auth"
	"github.com/JonasLeetTheWay/eventbook/internal/httpx"
	"github.com/JonasLeetTheWay/eventbook/internal/models"
	"github.com/JonasLeetTheWay/eventbook/internal/money"

	"github.com/gin-gonic/gin"
)

func (s *Service) SetupRoutes(r gin.IRouter) {
	r.POST("/orders", s.handleCreateOrder)
	r.GET("/user/orders", s.handleListUserOrders)
	r.GET("/organizer/orders", s.handleListOrganizerOrders)
	r.PUT("/organizer/orders/:id", s.handleUpdateConfirmation)
}

type eventSummary struct {
	ID        string           `json:"id,omitempty"`
	Title     string           `json:"title"`
	Type      models.EventType `json:"type"`
	Price     *money.Amount    `json:"price,omitempty"`
	Organizer *organizerName   `json:"organizer,omitempty"`
}

type organizerName struct {
	Name string `json:"name"`
}

type userSummary struct {
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

type orderView struct {
	ID                    string               `json:"id"`
	BookingDate           time.Time            `json:"bookingDate"`
	SelectedDateTime      time.Time            `json:"selectedDateTime"`
	FinalCost             money.Amount         `json:"finalCost"`
	PaymentStatus         models.PaymentStatus `json:"paymentStatus"`
	OrganizerConfirmation models.Confirmation  `json:"organizerConfirmation"`
	PaymentMethod         string               `json:"paymentMethod,omitempty"`
	User                  *userSummary         `json:"user,omitempty"`
	Event                 eventSummary         `json:"event"`
}

// NewUserOrderView is the shape a customer sees: full event summary with the
// organizer's name.
func NewUserOrderView(o *models.Order) orderView {
	price := o.Event.Price
	return orderView{
		ID:                    o.ID,
		BookingDate:           o.BookingDate.UTC(),
		SelectedDateTime:      o.SelectedDateTime.UTC(),
		FinalCost:             o.FinalCost,
		PaymentStatus:         o.PaymentStatus,
		OrganizerConfirmation: o.OrganizerConfirmation,
		PaymentMethod:         o.PaymentMethod,
		Event: eventSummary{
			ID:        o.Event.ID,
			Title:     o.Event.Title,
			Type:      o.Event.Type,
			Price:     &price,
			Organizer: &organizerName{Name: o.Event.Organizer.Name},
		},
	}
}

// NewOrganizerOrderView is the shape an organizer sees: who booked and what.
func NewOrganizerOrderView(o *models.Order) orderView {
	return orderView{
		ID:                    o.ID,
		BookingDate:           o.BookingDate.UTC(),
		SelectedDateTime:      o.SelectedDateTime.UTC(),
		FinalCost:             o.FinalCost,
		PaymentStatus:         o.PaymentStatus,
		OrganizerConfirmation: o.OrganizerConfirmation,
		User:                  &userSummary{Name: o.User.Name, Email: o.User.Email},
		Event:                 eventSummary{Title: o.Event.Title, Type: o.Event.Type},
	}
}

func (s *Service) handleCreateOrder(c *gin.Context) {
	var req struct {
		UserID           string               `json:"userId" binding:"required"`
		EventID          string               `json:"eventId" binding:"required"`
		BookingDate      *httpx.Time          `json:"bookingDate" binding:"required"`
		SelectedDateTime *httpx.Time          `json:"selectedDateTime" binding:"required"`
		FinalCost        *money.Amount        `json:"finalCost" binding:"required"`
		PaymentMethod    string               `json:"paymentMethod" binding:"required"`
		PaymentStatus    models.PaymentStatus `json:"paymentStatus"`
	}
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	order, err := s.CreateOrder(c.Request.Context(), CreateOrderInput{
		UserID:           req.UserID,
		EventID:          req.EventID,
		BookingDate:      req.BookingDate.Std(),
		SelectedDateTime: req.SelectedDateTime.Std(),
		FinalCost:        req.FinalCost,
		PaymentMethod:    req.PaymentMethod,
		PaymentStatus:    req.PaymentStatus,
	})
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   NewUserOrderView(order),
	})
}

func (s *Service) handleListUserOrders(c *gin.Context) {
	orders, err := s.ListUserOrders(c.Request.Context(), c.Query("userId"))
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, NewUserOrderView(&orders[i]))
	}
	c.JSON(http.StatusOK, gin.H{"orders": views})
}

func (s *Service) handleListOrganizerOrders(c *gin.Context) {
	orders, err := s.ListOrganizerOrders(c.Request.Context(),
		c.Query("organizerId"), models.Confirmation(c.Query("status")))
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, NewOrganizerOrderView(&orders[i]))
	}
	c.JSON(http.StatusOK, gin.H{"orders": views})
}

func (s *Service) handleUpdateConfirmation(c *gin.Context) {
	var req struct {
		Status      models.Confirmation `json:"status"`
		OrganizerID string              `json:"organizerId"`
	}
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.Error(c, s.log, err)
		return
	}
	// Reject bad statuses before touching the store.
	if !req.Status.Settable() {
		httpx.Error(c, s.log, apperr.Validation("Invalid status"))
		return
	}

	organizerID, err := s.callerOrganizerID(c, req.OrganizerID)
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	order, err := s.UpdateConfirmation(c.Request.Context(), UpdateConfirmationInput{
		OrderID:     c.Param("id"),
		Status:      req.Status,
		OrganizerID: organizerID,
	})
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": confirmationMessage(order.OrganizerConfirmation),
		"order":   NewOrganizerOrderView(order),
	})
}

// callerOrganizerID picks the acting organizer from the request body or, when
// a bearer token was sent, from the token. Both present and disagreeing is
// forbidden.
func (s *Service) callerOrganizerID(c *gin.Context, fromBody string) (string, error) {
	userID, ok := auth.CallerID(c)
	if !ok {
		return fromBody, nil
	}
	fromToken, err := s.ResolveOrganizerID(c.Request.Context(), userID)
	if err != nil {
		return "", err
	}
	if fromBody != "" && fromBody != fromToken {
		return "", apperr.Forbidden("Organizer ID does not match the logged-in account")
	}
	return fromToken, nil
}
