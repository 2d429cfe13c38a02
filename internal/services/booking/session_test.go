package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/money"
	"github.com/JonasLeetTheWay/eventbook/internal/services/profile"
)

func TestSessionTransitions(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newSession("b1", "u1", now)
	if s.State != StateSelectingSlot {
		t.Fatalf("state = %s, want %s", s.State, StateSelectingSlot)
	}

	var step *StepError
	if err := s.SetAddress(profile.Address{City: "Pune"}, now); !errors.As(err, &step) || step.Step != "slot" {
		t.Fatalf("address before slot err = %v, want slot step", err)
	}
	if err := s.ReadyForPayment(); !errors.As(err, &step) || step.Step != "slot" {
		t.Fatalf("ready err = %v, want slot step", err)
	}

	if err := s.SelectSlot("e1", now.Add(2*time.Hour), money.FromMinor(5000), now); err != nil {
		t.Fatalf("SelectSlot: %v", err)
	}
	if s.State != StateEnteringAddress {
		t.Fatalf("state = %s, want %s", s.State, StateEnteringAddress)
	}
	if err := s.ReadyForPayment(); !errors.As(err, &step) || step.Step != "address" {
		t.Fatalf("ready err = %v, want address step", err)
	}

	if err := s.SetAddress(profile.Address{City: "Pune"}, now); err != nil {
		t.Fatalf("SetAddress: %v", err)
	}
	if s.State != StateChoosingPayment {
		t.Fatalf("state = %s, want %s", s.State, StateChoosingPayment)
	}

	// Picking another slot keeps the address.
	if err := s.SelectSlot("e1", now.Add(3*time.Hour), money.FromMinor(5000), now); err != nil {
		t.Fatalf("SelectSlot again: %v", err)
	}
	if s.State != StateChoosingPayment {
		t.Fatalf("state after reselect = %s", s.State)
	}

	if err := s.Submit("UPI Payment", "pay_1", "o1", now); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if s.State != StateSubmitted || s.OrderID != "o1" {
		t.Fatalf("session = %+v", s)
	}

	for name, err := range map[string]error{
		"select":  s.SelectSlot("e2", now, 0, now),
		"address": s.SetAddress(profile.Address{}, now),
		"submit":  s.Submit("UPI Payment", "pay_2", "o2", now),
	} {
		if !errors.Is(err, ErrSubmitted) {
			t.Fatalf("%s after submit err = %v, want ErrSubmitted", name, err)
		}
	}
	if s.OrderID != "o1" {
		t.Fatalf("order id overwritten: %s", s.OrderID)
	}
}
