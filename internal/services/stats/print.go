package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/JonasLeetTheWay/eventbook/internal/models"
)

const printLimit = 5

// Print writes a human-readable summary of rep to w.
func Print(w io.Writer, rep *Report) error {
	p := &printer{w: w}

	p.printf("Event Management System - Registration Statistics\n\n")
	p.printf("Total Registrations: %d\n", rep.TotalRegistrations)

	p.printf("\nRegistrations by Payment Status:\n")
	for _, s := range rep.RegistrationsByStatus {
		p.printf("  %s: %d\n", s.PaymentStatus, s.Count)
	}

	p.printf("\nTotal Revenue: %s\n", rep.TotalRevenue)

	p.printf("\nTop %d Events by Registrations:\n", printLimit)
	for i, e := range head(rep.TopEvents, printLimit) {
		p.printf("  %d. %s (%s) - %d registrations\n", i+1, e.Title, e.Type, e.Registrations)
	}

	p.printf("\nRecent %d Registrations:\n", printLimit)
	for i, r := range head(rep.RecentRegistrations, printLimit) {
		who := r.User.Email
		if r.User.Name != nil && *r.User.Name != "" {
			who = *r.User.Name
		}
		p.printf("  %d. %s - %s\n", i+1, who, r.Event.Title)
		p.printf("     Status: %s, Amount: %s\n", r.PaymentStatus, r.FinalCost)
		p.printf("     Date: %s\n", r.BookingDate.Format("2006-01-02"))
	}

	p.printf("\nEvent Type Distribution:\n")
	types := make([]models.EventType, 0, len(rep.RegistrationsByEventType))
	for t := range rep.RegistrationsByEventType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		p.printf("  %s: %d\n", t, rep.RegistrationsByEventType[t])
	}

	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
