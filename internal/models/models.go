package models

import (
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/money"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser      Role = "USER"
	RoleOrganizer Role = "ORGANIZER"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleOrganizer
}

type EventType string

const (
	EventConference EventType = "CONFERENCE"
	EventFestival   EventType = "FESTIVAL"
	EventSummit     EventType = "SUMMIT"
	EventWorkshop   EventType = "WORKSHOP"
	EventSeminar    EventType = "SEMINAR"
	EventOther      EventType = "OTHER"
)

func (t EventType) Valid() bool {
	switch t {
	case EventConference, EventFestival, EventSummit, EventWorkshop, EventSeminar, EventOther:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type Confirmation string

const (
	ConfirmationPending   Confirmation = "PENDING"
	ConfirmationConfirmed Confirmation = "CONFIRMED"
	ConfirmationCancelled Confirmation = "CANCELLED"
)

func (c Confirmation) Valid() bool {
	return c == ConfirmationPending || c == ConfirmationConfirmed || c == ConfirmationCancelled
}

// Settable reports whether an organizer may move an order into c.
func (c Confirmation) Settable() bool {
	return c == ConfirmationConfirmed || c == ConfirmationCancelled
}

type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      *string   `json:"name"`
	Role      Role      `gorm:"size:16;not null;default:'USER'" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relationships
	Organizer *Organizer   `gorm:"foreignKey:UserID" json:"organizer,omitempty"`
	Profile   *UserProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

type Organizer struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex" json:"userId"`
	Name      string    `gorm:"not null" json:"name"`
	Bio       *string   `json:"bio"`
	VideoURL  *string   `gorm:"column:video_url" json:"videoUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Events []Event `gorm:"foreignKey:OrganizerID" json:"-"`
}

type Event struct {
	ID          string       `gorm:"primaryKey;size:36" json:"id"`
	OrganizerID string       `gorm:"size:36;not null;index" json:"organizerId"`
	Title       string       `gorm:"not null" json:"title"`
	Description *string      `json:"description"`
	Type        EventType    `gorm:"size:16;not null" json:"type"`
	Price       money.Amount `gorm:"not null" json:"price"`
	CreatedAt   time.Time    `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`

	// Relationships
	Organizer Organizer `gorm:"foreignKey:OrganizerID" json:"-"`
	Orders    []Order   `gorm:"foreignKey:EventID" json:"-"`
}

type Order struct {
	ID                    string        `gorm:"primaryKey;size:36" json:"id"`
	UserID                string        `gorm:"size:36;not null;index" json:"userId"`
	EventID               string        `gorm:"size:36;not null;index" json:"eventId"`
	BookingDate           time.Time     `gorm:"not null;index" json:"bookingDate"`
	SelectedDateTime      time.Time     `gorm:"not null" json:"selectedDateTime"`
	FinalCost             money.Amount  `gorm:"not null" json:"finalCost"`
	PaymentMethod         string        `gorm:"not null" json:"paymentMethod"`
	PaymentStatus         PaymentStatus `gorm:"size:16;not null;default:'PENDING';index" json:"paymentStatus"`
	OrganizerConfirmation Confirmation  `gorm:"size:16;not null;default:'PENDING'" json:"organizerConfirmation"`
	CreatedAt             time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Event Event `gorm:"foreignKey:EventID" json:"-"`
}

// UserProfile replaces all of its optional fields on every save.
type UserProfile struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"userId"`
	Country   *string   `json:"country"`
	State     *string   `json:"state"`
	City      *string   `json:"city"`
	PinCode   *string   `gorm:"column:pin_code" json:"pinCode"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (o *Organizer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Migrate creates or updates every table in dependency order.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Organizer{},
		&Event{},
		&Order{},
		&UserProfile{},
	)
}

// StringPtr returns nil for an empty string, mirroring nullable columns.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
