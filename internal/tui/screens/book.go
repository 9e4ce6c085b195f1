package screens

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/sitecrew/internal/form"
	"github.com/emilianohg/sitecrew/internal/models"
)

const (
	pathClientBook     = "/dashboard/client/book"
	pathClientBookings = "/dashboard/client/bookings"
)

// NewClientBook is the client's booking request form. Overlapping bookings
// are left for the office to sort out.
func NewClientBook(d Deps) Screen {
	return NewFormScreen(FormPage{
		Title: "Create Booking",
		Intro: "Describe the work you need done",
		Build: func() *form.Form { return clientBookingForm("New booking", models.Booking{}) },
		Submit: func(ctx context.Context, f *form.Form) (tea.Cmd, error) {
			in, err := bookingInput(f)
			if err != nil {
				return nil, err
			}
			if err := d.Client.CreateBooking(ctx, in); err != nil {
				return nil, err
			}
			return tea.Batch(Notify(Success, "Booking requested"), Navigate(pathClientBookings)), nil
		},
		Cancel: Navigate(pathClientBookings),
		Hint:   "[esc] Back to my bookings",
	})
}
