package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/money"
	"github.com/JonasLeetTheWay/eventbook/internal/services/profile"
)

type State string

const (
	StateSelectingSlot   State = "SELECTING_SLOT"
	StateEnteringAddress State = "ENTERING_ADDRESS"
	StateChoosingPayment State = "CHOOSING_PAYMENT"
	StateSubmitted       State = "SUBMITTED"
)

// ErrSubmitted is returned for any transition out of a finished session.
var ErrSubmitted = errors.New("booking already submitted")

// StepError names the earlier step a session still needs.
type StepError struct {
	Step string // "slot" or "address"
}

func (e *StepError) Error() string {
	return fmt.Sprintf("booking step %q is incomplete", e.Step)
}

// Session is the server-held state of one checkout, from slot selection to
// the created order.
type Session struct {
	ID               string           `json:"id"`
	UserID           string           `json:"userId"`
	State            State            `json:"state"`
	EventID          string           `json:"eventId,omitempty"`
	SelectedDateTime *time.Time       `json:"selectedDateTime,omitempty"`
	FinalCost        *money.Amount    `json:"finalCost,omitempty"`
	Address          *profile.Address `json:"address,omitempty"`
	PaymentMethod    string           `json:"paymentMethod,omitempty"`
	PaymentID        string           `json:"paymentId,omitempty"`
	OrderID          string           `json:"orderId,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func newSession(id, userID string, now time.Time) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		State:     StateSelectingSlot,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SelectSlot records the event, time and price. Re-selecting keeps any
// address already entered.
func (s *Session) SelectSlot(eventID string, at time.Time, cost money.Amount, now time.Time) error {
	if s.State == StateSubmitted {
		return ErrSubmitted
	}
	s.EventID = eventID
	s.SelectedDateTime = &at
	s.FinalCost = &cost
	s.State = StateEnteringAddress
	if s.Address != nil {
		s.State = StateChoosingPayment
	}
	s.UpdatedAt = now
	return nil
}

func (s *Session) SetAddress(addr profile.Address, now time.Time) error {
	if s.State == StateSubmitted {
		return ErrSubmitted
	}
	if !s.hasSlot() {
		return &StepError{Step: "slot"}
	}
	s.Address = &addr
	s.State = StateChoosingPayment
	s.UpdatedAt = now
	return nil
}

// ReadyForPayment reports the first missing step, if any.
func (s *Session) ReadyForPayment() error {
	if s.State == StateSubmitted {
		return ErrSubmitted
	}
	if !s.hasSlot() {
		return &StepError{Step: "slot"}
	}
	if s.Address == nil {
		return &StepError{Step: "address"}
	}
	return nil
}

func (s *Session) Submit(method, paymentID, orderID string, now time.Time) error {
	if err := s.ReadyForPayment(); err != nil {
		return err
	}
	s.PaymentMethod = method
	s.PaymentID = paymentID
	s.OrderID = orderID
	s.State = StateSubmitted
	s.UpdatedAt = now
	return nil
}

func (s *Session) hasSlot() bool {
	return s.EventID != "" && s.SelectedDateTime != nil && s.FinalCost != nil
}
