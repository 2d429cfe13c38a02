package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonasLeetTheWay/eventbook/internal/apperr"
	"github.com/JonasLeetTheWay/eventbook/internal/auth"
	"github.com/JonasLeetTheWay/eventbook/internal/httpx"
	"github.com/JonasLeetTheWay/eventbook/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// placeholderOrganizerName is used for organizers who register without a name.
const placeholderOrganizerName = "Organizer"

type Service struct {
	db         *gorm.DB
	tokens     *auth.TokenIssuer
	bcryptCost int
	log        *slog.Logger
}

func NewService(db *gorm.DB, tokens *auth.TokenIssuer, bcryptCost int, log *slog.Logger) *Service {
	return &Service{
		db:         db,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		log:        log.With("component", "account"),
	}
}

func (s *Service) SetupRoutes(r gin.IRouter) {
	r.POST("/auth/register", s.handleRegister)
	r.POST("/auth/login", s.handleLogin)
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     models.Role
}

// Register creates the user and, for organizers, a stub organizer profile in
// the same transaction. Emails are matched exactly, without normalization.
// The unique index on email decides duplicates, so two concurrent
// registrations cannot both succeed.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, apperr.Validation("Missing required fields")
	}
	if !in.Role.Valid() {
		return nil, apperr.Validation("Invalid role")
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Unexpected("hash password", err)
	}

	user := models.User{
		Email:    in.Email,
		Password: hash,
		Name:     models.StringPtr(in.Name),
		Role:     in.Role,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if in.Role != models.RoleOrganizer {
			return nil
		}
		name := in.Name
		if name == "" {
			name = placeholderOrganizerName
		}
		return tx.Create(&models.Organizer{UserID: user.ID, Name: name}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict("User already exists")
	}
	if err != nil {
		return nil, apperr.Unexpected("create user", err)
	}

	s.log.Info("user registered", "user_id", user.ID, "role", user.Role)
	return &user, nil
}

type LoginInput struct {
	Email    string
	Password string
	Role     models.Role
}

type LoginResult struct {
	User  *models.User
	Token string
}

// Login never reveals whether the email, the role or the password was wrong.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, apperr.Validation("Missing required fields")
	}

	q := s.db.WithContext(ctx).Where("email = ? AND role = ?", in.Email, in.Role)
	if in.Role == models.RoleOrganizer {
		q = q.Preload("Organizer")
	}
	var user models.User
	if err := q.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Auth("Invalid credentials")
		}
		return nil, apperr.Unexpected("find user", err)
	}

	if !auth.VerifyPassword(in.Password, user.Password) {
		return nil, apperr.Auth("Invalid credentials")
	}

	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperr.Unexpected("generate token", err)
	}
	return &LoginResult{User: &user, Token: token}, nil
}

func (s *Service) handleRegister(c *gin.Context) {
	var req struct {
		Email    string      `json:"email" binding:"required"`
		Password string      `json:"password" binding:"required"`
		Name     string      `json:"name"`
		Role     models.Role `json:"role" binding:"required"`
	}
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	user, err := s.Register(c.Request.Context(), RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"user":    user.Public(),
	})
}

func (s *Service) handleLogin(c *gin.Context) {
	var req struct {
		Email    string      `json:"email" binding:"required"`
		Password string      `json:"password" binding:"required"`
		Role     models.Role `json:"role" binding:"required"`
	}
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	res, err := s.Login(c.Request.Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    res.User.Public(),
		"token":   res.Token,
	})
}
