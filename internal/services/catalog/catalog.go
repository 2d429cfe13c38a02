package catalog

import (
	"context"
	"errors"
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

type Service struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewService(db *gorm.DB, log *slog.Logger) *Service {
	return &Service{db: db, log: log.With("component", "catalog")}
}

func (s *Service) SetupRoutes(r gin.IRouter) {
	r.GET("/events", s.handleListEvents)
	r.GET("/events/:id", s.handleGetEvent)
	r.GET("/organizer/events", s.handleListOrganizerEvents)
	r.POST("/organizer/events", s.handleCreateEvent)
}

// ListEvents returns every event with its organizer, newest first.
func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Preload("Organizer").
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, apperr.Unexpected("list events", err)
	}
	return events, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if id == "" {
		return nil, apperr.Validation("Event ID is required")
	}
	var event models.Event
	err := s.db.WithContext(ctx).Preload("Organizer").First(&event, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Event not found")
		}
		return nil, apperr.Unexpected("get event", err)
	}
	return &event, nil
}

func (s *Service) ListOrganizerEvents(ctx context.Context, organizerID string) ([]models.Event, error) {
	if organizerID == "" {
		return nil, apperr.Validation("Organizer ID is required")
	}
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, apperr.Unexpected("list organizer events", err)
	}
	return events, nil
}

type CreateEventInput struct {
	OrganizerID string
	Title       string
	Description string
	Type        models.EventType
	Price       *money.Amount
}

func (s *Service) CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	if in.OrganizerID == "" || in.Title == "" || in.Type == "" || in.Price == nil {
		return nil, apperr.Validation("Missing required fields")
	}
	if !in.Type.Valid() {
		return nil, apperr.Validation("Invalid event type")
	}
	if in.Price.IsNegative() {
		return nil, apperr.Validation("Price must not be negative")
	}

	event := models.Event{
		OrganizerID: in.OrganizerID,
		Title:       in.Title,
		Description: models.StringPtr(in.Description),
		Type:        in.Type,
		Price:       *in.Price,
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, apperr.Unexpected("create event", err)
	}

	s.log.Info("event created", "event_id", event.ID, "organizer_id", event.OrganizerID)
	return &event, nil
}

type organizerSummary struct {
	Name     string  `json:"name"`
	Bio      *string `json:"bio"`
	VideoURL *string `json:"videoUrl,omitempty"`
}

type eventView struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Type        models.EventType  `json:"type"`
	Price       money.Amount      `json:"price"`
	CreatedAt   *time.Time        `json:"createdAt,omitempty"`
	Organizer   *organizerSummary `json:"organizer,omitempty"`
}

func newEventView(e *models.Event) eventView {
	return eventView{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Type:        e.Type,
		Price:       e.Price,
	}
}

func (s *Service) handleListEvents(c *gin.Context) {
	events, err := s.ListEvents(c.Request.Context())
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	views := make([]eventView, 0, len(events))
	for i := range events {
		v := newEventView(&events[i])
		v.Organizer = &organizerSummary{Name: events[i].Organizer.Name, Bio: events[i].Organizer.Bio}
		views = append(views, v)
	}
	c.JSON(http.StatusOK, gin.H{"events": views})
}

func (s *Service) handleGetEvent(c *gin.Context) {
	event, err := s.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	v := newEventView(event)
	v.Organizer = &organizerSummary{
		Name:     event.Organizer.Name,
		Bio:      event.Organizer.Bio,
		VideoURL: event.Organizer.VideoURL,
	}
	c.JSON(http.StatusOK, gin.H{"event": v})
}

func (s *Service) handleListOrganizerEvents(c *gin.Context) {
	events, err := s.ListOrganizerEvents(c.Request.Context(), c.Query("organizerId"))
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	views := make([]eventView, 0, len(events))
	for i := range events {
		v := newEventView(&events[i])
		v.CreatedAt = &events[i].CreatedAt
		views = append(views, v)
	}
	c.JSON(http.StatusOK, gin.H{"events": views})
}

func (s *Service) handleCreateEvent(c *gin.Context) {
	var req struct {
		OrganizerID string           `json:"organizerId" binding:"required"`
		Title       string           `json:"title" binding:"required"`
		Description string           `json:"description"`
		Type        models.EventType `json:"type" binding:"required"`
		Price       *money.Amount    `json:"price" binding:"required"`
	}
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	event, err := s.CreateEvent(c.Request.Context(), CreateEventInput{
		OrganizerID: req.OrganizerID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Price:       req.Price,
	})
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	v := newEventView(event)
	v.CreatedAt = &event.CreatedAt
	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully",
		"event":   v,
	})
}
