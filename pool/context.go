package pool

import "context"

// Ticket identifies one job occupancy: the slot it was placed in and the
// pool-unique job ID. Job IDs start at 1.
type Ticket struct {
	Slot int
	ID   uint64
}

type ticketKey struct{}

func withTicket(ctx context.Context, t Ticket) context.Context {
	return context.WithValue(ctx, ticketKey{}, t)
}

// TicketFromContext returns the ticket of the job whose routine received ctx.
func TicketFromContext(ctx context.Context) (Ticket, bool) {
	t, ok := ctx.Value(ticketKey{}).(Ticket)
	return t, ok
}

// SlotFromContext returns the slot index of the job whose routine received ctx.
func SlotFromContext(ctx context.Context) (int, bool) {
	t, ok := TicketFromContext(ctx)
	return t.Slot, ok
}
