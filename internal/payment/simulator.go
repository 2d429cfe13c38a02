package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/models"
	"github.com/JonasLeetTheWay/eventbook/internal/money"
	"github.com/google/uuid"
)

// Payment methods offered at checkout.
const (
	MethodOnline = "Online Payment"
	MethodUPI    = "UPI Payment"
	MethodCOD    = "Cash on Delivery"
)

var ErrUnsupportedMethod = errors.New("unsupported payment method")

func SupportedMethod(method string) bool {
	switch method {
	case MethodOnline, MethodUPI, MethodCOD:
		return true
	}
	return false
}

// Simulator stands in for a payment gateway. It never calls out: cash on
// delivery stays PENDING until collected, every other method is reported
// COMPLETED unconditionally.
type Simulator struct {
	now func() time.Time
}

type Request struct {
	Method  string
	Amount  money.Amount
	UserID  string
	EventID string
}

type Result struct {
	ID          string               `json:"id"`
	Method      string               `json:"method"`
	Amount      money.Amount         `json:"amount"`
	Status      models.PaymentStatus `json:"status"`
	ProcessedAt time.Time            `json:"processedAt"`
}

func NewSimulator() *Simulator {
	return &Simulator{now: time.Now}
}

func (s *Simulator) Process(ctx context.Context, req *Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !SupportedMethod(req.Method) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.Method)
	}

	status := models.PaymentCompleted
	if req.Method == MethodCOD {
		status = models.PaymentPending
	}

	return &Result{
		ID:          "pay_sim_" + uuid.NewString(),
		Method:      req.Method,
		Amount:      req.Amount,
		Status:      status,
		ProcessedAt: s.now(),
	}, nil
}
