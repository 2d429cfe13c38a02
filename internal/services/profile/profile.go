package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonasLeetTheWay/eventbook/internal/apperr"
	"github.com/JonasLeetTheWay/eventbook/internal/httpx"
	"github.com/JonasLeetTheWay/eventbook/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewService(db *gorm.DB, log *slog.Logger) *Service {
	return &Service{db: db, log: log.With("component", "profile")}
}

func (s *Service) SetupRoutes(r gin.IRouter) {
	r.GET("/user/profile", s.handleGetUserProfile)
	r.PUT("/user/profile", s.handleUpdateUserProfile)
	r.GET("/organizer/profile", s.handleGetOrganizerProfile)
	r.PUT("/organizer/profile", s.handleUpdateOrganizerProfile)
}

// Address is the postal part of a user profile. Empty fields are stored as
// null.
type Address struct {
	Country string `json:"country"`
	State   string `json:"state"`
	City    string `json:"city"`
	PinCode string `json:"pinCode"`
	Address string `json:"address"`
}

func (a Address) toProfile(userID string) models.UserProfile {
	return models.UserProfile{
		UserID:  userID,
		Country: models.StringPtr(a.Country),
		State:   models.StringPtr(a.State),
		City:    models.StringPtr(a.City),
		PinCode: models.StringPtr(a.PinCode),
		Address: models.StringPtr(a.Address),
	}
}

type UserProfile struct {
	User    models.PublicUser   `json:"user"`
	Profile *models.UserProfile `json:"profile"`
}

func (s *Service) GetUserProfile(ctx context.Context, userID string) (*UserProfile, error) {
	if userID == "" {
		return nil, apperr.Validation("User ID is required")
	}
	user, err := findUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	var profile models.UserProfile
	err = s.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &UserProfile{User: user.Public()}, nil
	case err != nil:
		return nil, apperr.Unexpected("get user profile", err)
	}
	return &UserProfile{User: user.Public(), Profile: &profile}, nil
}

// UpdateUserProfile sets the user's name and replaces the whole profile
// record in one transaction. A nil name clears it.
func (s *Service) UpdateUserProfile(ctx context.Context, userID string, name *string, addr Address) (*UserProfile, error) {
	if userID == "" {
		return nil, apperr.Validation("User ID is required")
	}

	var out UserProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := findUser(tx, userID)
		if err != nil {
			return err
		}

		var newName *string
		if name != nil {
			newName = models.StringPtr(*name)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("name", newName).Error; err != nil {
			return apperr.Unexpected("update user name", err)
		}
		user.Name = newName

		profile, err := upsertProfile(tx, userID, addr)
		if err != nil {
			return err
		}
		out = UserProfile{User: user.Public(), Profile: profile}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user profile updated", "user_id", userID)
	return &out, nil
}

// SaveAddress replaces only the profile record, leaving the user row alone.
func (s *Service) SaveAddress(ctx context.Context, userID string, addr Address) (*models.UserProfile, error) {
	if userID == "" {
		return nil, apperr.Validation("User ID is required")
	}
	var profile *models.UserProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findUser(tx, userID); err != nil {
			return err
		}
		var err error
		profile, err = upsertProfile(tx, userID, addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func upsertProfile(tx *gorm.DB, userID string, addr Address) (*models.UserProfile, error) {
	profile := addr.toProfile(userID)
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"country", "state", "city", "pin_code", "address", "updated_at"}),
	}).Create(&profile).Error
	if err != nil {
		return nil, apperr.Unexpected("upsert user profile", err)
	}

	if err := tx.First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, apperr.Unexpected("reload user profile", err)
	}
	return &profile, nil
}

func findUser(db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Unexpected("get user", err)
	}
	return &user, nil
}

// GetOrganizerProfile returns nil without error when the user has no
// organizer record yet.
func (s *Service) GetOrganizerProfile(ctx context.Context, userID string) (*models.Organizer, error) {
	if userID == "" {
		return nil, apperr.Validation("User ID is required")
	}
	var org models.Organizer
	err := s.db.WithContext(ctx).First(&org, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Unexpected("get organizer profile", err)
	}
	return &org, nil
}

type OrganizerInput struct {
	UserID   string
	Name     string
	Bio      string
	VideoURL string
}

func (s *Service) UpdateOrganizerProfile(ctx context.Context, in OrganizerInput) (*models.Organizer, error) {
	if in.UserID == "" || in.Name == "" {
		return nil, apperr.Validation("User ID and name are required")
	}

	var org models.Organizer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findUser(tx, in.UserID); err != nil {
			return err
		}

		err := tx.First(&org, "user_id = ?", in.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			org = models.Organizer{
				UserID:   in.UserID,
				Name:     in.Name,
				Bio:      models.StringPtr(in.Bio),
				VideoURL: models.StringPtr(in.VideoURL),
			}
			if err := tx.Create(&org).Error; err != nil {
				return apperr.Unexpected("create organizer", err)
			}
			return nil
		}
		if err != nil {
			return apperr.Unexpected("get organizer", err)
		}

		err = tx.Model(&org).Updates(map[string]any{
			"name":      in.Name,
			"bio":       models.StringPtr(in.Bio),
			"video_url": models.StringPtr(in.VideoURL),
		}).Error
		if err != nil {
			return apperr.Unexpected("update organizer", err)
		}
		if err := tx.First(&org, "id = ?", org.ID).Error; err != nil {
			return apperr.Unexpected("reload organizer", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("organizer profile saved", "organizer_id", org.ID, "user_id", in.UserID)
	return &org, nil
}

func (s *Service) handleGetUserProfile(c *gin.Context) {
	res, err := s.GetUserProfile(c.Request.Context(), c.Query("userId"))
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Service) handleUpdateUserProfile(c *gin.Context) {
	var req struct {
		UserID  string  `json:"userId" binding:"required"`
		Name    *string `json:"name"`
		Profile Address `json:"profile"`
	}
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.Error(c, s.log, apperr.Validation("User ID is required"))
		return
	}

	res, err := s.UpdateUserProfile(c.Request.Context(), req.UserID, req.Name, req.Profile)
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    res.User,
		"profile": res.Profile,
	})
}

func (s *Service) handleGetOrganizerProfile(c *gin.Context) {
	org, err := s.GetOrganizerProfile(c.Request.Context(), c.Query("userId"))
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizer": org})
}

func (s *Service) handleUpdateOrganizerProfile(c *gin.Context) {
	var req struct {
		UserID   string `json:"userId" binding:"required"`
		Name     string `json:"name" binding:"required"`
		Bio      string `json:"bio"`
		VideoURL string `json:"videoUrl"`
	}
	if err := httpx.BindJSON(c, &req); err != nil {
		httpx.Error(c, s.log, apperr.Validation("User ID and name are required"))
		return
	}

	org, err := s.UpdateOrganizerProfile(c.Request.Context(), OrganizerInput{
		UserID:   req.UserID,
		Name:     req.Name,
		Bio:      req.Bio,
		VideoURL: req.VideoURL,
	})
	if err != nil {
		httpx.Error(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Organizer profile updated successfully",
		"organizer": org,
	})
}
