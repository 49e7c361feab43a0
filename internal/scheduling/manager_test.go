package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospitalcore/internal/infra/persistence/memory"
	"hospitalcore/pkg/domain"
)

var now = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

type agenda struct {
	store     *memory.Store
	patient   domain.ID
	other     domain.ID
	physician domain.ID
	colleague domain.ID
	room      domain.ID
	spare     domain.ID
}

func newAgenda(t *testing.T) agenda {
	t.Helper()
	var a agenda
	a.store = memory.NewStore(nil)
	_, err := a.store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		d, err := domain.NewDepartment(domain.DepartmentParams{Name: "Neurología", Specialty: domain.SpecialtyNeurology})
		require.NoError(t, err)
		d, err = tx.CreateDepartment(d)
		require.NoError(t, err)

		for i, number := range []string{"S-201", "S-202"} {
			r, err := domain.NewRoom(domain.RoomParams{Number: number, Type: "Consultorio", Department: d.ID()})
			require.NoError(t, err)
			r, err = tx.CreateRoom(r)
			require.NoError(t, err)
			if i == 0 {
				a.room = r.ID()
			} else {
				a.spare = r.ID()
			}
		}

		for i, license := range []string{"MP-45678", "MP-334455"} {
			m, err := domain.NewPhysician(domain.PhysicianParams{
				Person:    domain.PersonParams{Name: "Médico", Surname: license, DNI: "3088899" + string(rune('0'+i)), BirthDate: time.Date(1984, time.April, 19, 0, 0, 0, 0, time.UTC), BloodType: domain.BloodOPositive},
				Specialty: domain.SpecialtyNeurology,
				License:   domain.MustLicenseNumber(license),
			})
			require.NoError(t, err)
			m, err = tx.CreatePhysician(m)
			require.NoError(t, err)
			if i == 0 {
				a.physician = m.ID()
			} else {
				a.colleague = m.ID()
			}
		}

		for i, dni := range []string{"40222111", "38999123"} {
			p, err := domain.NewPatient(domain.PatientParams{
				Person: domain.PersonParams{Name: "Paciente", Surname: dni, DNI: dni, BirthDate: time.Date(1999, time.February, 11, 0, 0, 0, 0, time.UTC), BloodType: domain.BloodABPositive},
				Phone:  "+54 261 600-1000", Address: "Colón 520",
			})
			require.NoError(t, err)
			p, _, err = tx.CreatePatient(p)
			require.NoError(t, err)
			if i == 0 {
				a.patient = p.ID()
			} else {
				a.other = p.ID()
			}
		}
		return nil
	})
	require.NoError(t, err)
	return a
}

func (a agenda) schedule(m *Manager, req domain.AppointmentRequest) (domain.Appointment, error) {
	var out domain.Appointment
	_, err := a.store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		out, err = m.ScheduleAppointment(context.Background(), tx, req)
		return err
	})
	return out, err
}

func (a agenda) request(at time.Time) domain.AppointmentRequest {
	return domain.AppointmentRequest{PatientID: a.patient, PhysicianID: a.physician, RoomID: a.room, At: at, AmountCents: 1800000}
}

func fixedClock() Option { return WithClock(func() time.Time { return now }) }

func TestScheduleAppointmentRecordsOnEveryAgenda(t *testing.T) {
	a := newAgenda(t)
	appt, err := a.schedule(NewManager(fixedClock()), a.request(now.Add(24*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentScheduled, appt.Status())
	assert.Equal(t, int64(1800000), appt.AmountCents())

	_ = a.store.View(context.Background(), func(v domain.TransactionView) error {
		assert.Equal(t, []domain.Appointment{appt}, v.PatientAppointments(a.patient))
		assert.Equal(t, []domain.Appointment{appt}, v.PhysicianAppointments(a.physician))
		assert.Equal(t, []domain.Appointment{appt}, v.RoomAppointments(a.room))
		return nil
	})
}

func TestScheduleAppointmentRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(a agenda, r *domain.AppointmentRequest)
		cause  error
	}{
		{"past timestamp", func(_ agenda, r *domain.AppointmentRequest) { r.At = now.Add(-time.Minute) }, ErrPastTimestamp},
		{"unknown patient", func(_ agenda, r *domain.AppointmentRequest) { r.PatientID = "ghost" }, domain.ErrNotFound},
		{"unknown physician", func(_ agenda, r *domain.AppointmentRequest) { r.PhysicianID = "ghost" }, ErrUnknownActor},
		{"unknown room", func(_ agenda, r *domain.AppointmentRequest) { r.RoomID = "ghost" }, ErrUnknownActor},
		{"negative amount", func(_ agenda, r *domain.AppointmentRequest) { r.AmountCents = -1 }, domain.ErrScheduling},
		{"zero timestamp", func(_ agenda, r *domain.AppointmentRequest) { r.At = time.Time{} }, domain.ErrScheduling},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newAgenda(t)
			req := a.request(now.Add(time.Hour))
			tc.mutate(a, &req)

			_, err := a.schedule(NewManager(fixedClock()), req)
			var se *domain.SchedulingError
			require.ErrorAs(t, err, &se)
			assert.ErrorIs(t, err, domain.ErrScheduling)
			assert.ErrorIs(t, err, tc.cause)
			assert.Empty(t, a.store.UpcomingAppointments(now))
		})
	}
}

func TestScheduleAppointmentDetectsDoubleBooking(t *testing.T) {
	at := now.Add(48 * time.Hour)
	cases := []struct {
		name   string
		entity domain.EntityType
		mutate func(a agenda, r *domain.AppointmentRequest)
	}{
		{"same physician", domain.EntityPhysician, func(a agenda, r *domain.AppointmentRequest) { r.PatientID, r.RoomID = a.other, a.spare }},
		{"same room", domain.EntityRoom, func(a agenda, r *domain.AppointmentRequest) { r.PatientID, r.PhysicianID = a.other, a.colleague }},
		{"same patient", domain.EntityPatient, func(a agenda, r *domain.AppointmentRequest) { r.RoomID, r.PhysicianID = a.spare, a.colleague }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newAgenda(t)
			m := NewManager(fixedClock())
			_, err := a.schedule(m, a.request(at))
			require.NoError(t, err)

			req := a.request(at.Add(15 * time.Minute))
			tc.mutate(a, &req)
			_, err = a.schedule(m, req)
			require.ErrorIs(t, err, ErrSlotTaken)
			var se *domain.SchedulingError
			require.ErrorAs(t, err, &se)
			assert.Contains(t, se.Reason, string(tc.entity))
		})
	}
}

func TestScheduleAppointmentFreesCancelledSlots(t *testing.T) {
	a := newAgenda(t)
	m := NewManager(fixedClock(), WithSlot(time.Hour))
	at := now.Add(72 * time.Hour)
	first, err := a.schedule(m, a.request(at))
	require.NoError(t, err)

	_, err = a.schedule(m, a.request(at.Add(59*time.Minute)))
	require.ErrorIs(t, err, ErrSlotTaken)

	_, err = a.store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.SetAppointmentStatus(first.ID(), domain.AppointmentCancelled)
		return err
	})
	require.NoError(t, err)

	_, err = a.schedule(m, a.request(at))
	require.NoError(t, err)
	_, err = a.schedule(m, a.request(at.Add(time.Hour)))
	require.NoError(t, err)
}

func TestScheduleAppointmentHonoursCancelledContext(t *testing.T) {
	a := newAgenda(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := NewManager(fixedClock()).ScheduleAppointment(ctx, tx, a.request(now.Add(time.Hour)))
		return err
	})
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, domain.ErrScheduling)
}

func TestNewManagerDefaults(t *testing.T) {
	m := NewManager(WithSlot(0), WithClock(nil))
	assert.Equal(t, DefaultSlot, m.Slot())
	assert.NotNil(t, m.now)
}
