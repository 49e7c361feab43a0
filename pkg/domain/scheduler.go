package domain

import (
	"context"
	"time"
)

// AppointmentRequest carries the arguments of a scheduling attempt.
type AppointmentRequest struct {
	PatientID   ID
	PhysicianID ID
	RoomID      ID
	At          time.Time
	AmountCents int64
}

// Scheduler books appointments inside a transaction. Implementations report
// failures as *SchedulingError; callers return them unchanged.
type Scheduler interface {
	ScheduleAppointment(ctx context.Context, tx Transaction, req AppointmentRequest) (Appointment, error)
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(ctx context.Context, tx Transaction, req AppointmentRequest) (Appointment, error)

// ScheduleAppointment calls f.
func (f SchedulerFunc) ScheduleAppointment(ctx context.Context, tx Transaction, req AppointmentRequest) (Appointment, error) {
	return f(ctx, tx, req)
}
