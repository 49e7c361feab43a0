// Package scheduling provides the default appointment scheduler used by the
// core service.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hospitalcore/pkg/domain"
)

// DefaultSlot is the length of time an appointment occupies its physician,
// room and patient.
const DefaultSlot = 30 * time.Minute

// Causes wrapped by the *domain.SchedulingError values returned by Manager.
var (
	ErrPastTimestamp = errors.New("timestamp is in the past")
	ErrSlotTaken     = errors.New("slot already booked")
	ErrUnknownActor  = errors.New("participant not registered")
)

// Manager books appointments after checking the request against the
// participants' existing agendas.
type Manager struct {
	slot time.Duration
	now  func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithSlot overrides the booking slot length. Non-positive values are ignored.
func WithSlot(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.slot = d
		}
	}
}

// WithClock overrides the time source used to reject past timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager constructs a Manager with a 30 minute slot and the wall clock.
func NewManager(opts ...Option) *Manager {
	m := &Manager{slot: DefaultSlot, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ domain.Scheduler = (*Manager)(nil)

// Slot returns the configured slot length.
func (m *Manager) Slot() time.Duration { return m.slot }

// ScheduleAppointment validates req and records the appointment in tx. Every
// failure is reported as a *domain.SchedulingError.
func (m *Manager) ScheduleAppointment(ctx context.Context, tx domain.Transaction, req domain.AppointmentRequest) (domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Appointment{}, &domain.SchedulingError{Reason: "request cancelled", Err: err}
	}
	switch {
	case req.At.IsZero():
		return domain.Appointment{}, &domain.SchedulingError{Reason: "timestamp is required"}
	case req.At.Before(m.now()):
		return domain.Appointment{}, &domain.SchedulingError{Reason: req.At.Format(time.RFC3339), Err: ErrPastTimestamp}
	case req.AmountCents < 0:
		return domain.Appointment{}, &domain.SchedulingError{Reason: fmt.Sprintf("negative amount %d", req.AmountCents)}
	}
	if err := m.requireParticipants(tx, req); err != nil {
		return domain.Appointment{}, err
	}
	if err := m.checkAgendas(tx, req); err != nil {
		return domain.Appointment{}, err
	}

	appt, err := domain.NewAppointment(domain.AppointmentParams{
		PatientID:   req.PatientID,
		PhysicianID: req.PhysicianID,
		RoomID:      req.RoomID,
		At:          req.At,
		AmountCents: req.AmountCents,
	})
	if err != nil {
		return domain.Appointment{}, &domain.SchedulingError{Reason: "invalid appointment", Err: err}
	}
	created, err := tx.CreateAppointment(appt)
	if err != nil {
		return domain.Appointment{}, &domain.SchedulingError{Reason: "record appointment", Err: err}
	}
	return created, nil
}

func (m *Manager) requireParticipants(tx domain.TransactionView, req domain.AppointmentRequest) error {
	missing := func(entity domain.EntityType, id domain.ID) error {
		return &domain.SchedulingError{
			Reason: fmt.Sprintf("%s %q", entity, id),
			Err:    fmt.Errorf("%w: %w", ErrUnknownActor, domain.NotFoundError{Entity: entity, ID: id}),
		}
	}
	if _, ok := tx.Patient(req.PatientID); !ok {
		return missing(domain.EntityPatient, req.PatientID)
	}
	if _, ok := tx.Physician(req.PhysicianID); !ok {
		return missing(domain.EntityPhysician, req.PhysicianID)
	}
	if _, ok := tx.Room(req.RoomID); !ok {
		return missing(domain.EntityRoom, req.RoomID)
	}
	return nil
}

func (m *Manager) checkAgendas(tx domain.TransactionView, req domain.AppointmentRequest) error {
	agendas := []struct {
		entity domain.EntityType
		id     domain.ID
		booked []domain.Appointment
	}{
		{domain.EntityPhysician, req.PhysicianID, tx.PhysicianAppointments(req.PhysicianID)},
		{domain.EntityRoom, req.RoomID, tx.RoomAppointments(req.RoomID)},
		{domain.EntityPatient, req.PatientID, tx.PatientAppointments(req.PatientID)},
	}
	for _, agenda := range agendas {
		for _, a := range agenda.booked {
			if !a.Status().Active() || !m.overlaps(a.At(), req.At) {
				continue
			}
			return &domain.SchedulingError{
				Reason: fmt.Sprintf("%s %s has appointment %s at %s", agenda.entity, agenda.id, a.ID(), a.At().Format(time.RFC3339)),
				Err:    ErrSlotTaken,
			}
		}
	}
	return nil
}

func (m *Manager) overlaps(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d < m.slot
}
