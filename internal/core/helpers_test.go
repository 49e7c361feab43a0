package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hospitalcore/pkg/domain"
)

var (
	testNow = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	birth   = time.Date(1984, time.April, 19, 0, 0, 0, 0, time.UTC)
)

func fixedClock() ClockFunc { return func() time.Time { return testNow } }

func newHospital(t *testing.T, name string) domain.Hospital {
	t.Helper()
	h, err := domain.NewHospital(domain.HospitalParams{Name: name, Address: "Ituzaingó 1450, Ciudad", Phone: "+54 261 555-0101"})
	require.NoError(t, err)
	return h
}

func newDepartment(t *testing.T, name string, sp domain.Specialty) domain.Department {
	t.Helper()
	d, err := domain.NewDepartment(domain.DepartmentParams{Name: name, Specialty: sp})
	require.NoError(t, err)
	return d
}

func newRoom(t *testing.T, number string, dept domain.ID) domain.Room {
	t.Helper()
	r, err := domain.NewRoom(domain.RoomParams{Number: number, Type: "Consultorio", Department: dept})
	require.NoError(t, err)
	return r
}

func newPhysician(t *testing.T, name, surname, dni, license string, sp domain.Specialty) domain.Physician {
	t.Helper()
	m, err := domain.NewPhysician(domain.PhysicianParams{
		Person:    domain.PersonParams{Name: name, Surname: surname, DNI: dni, BirthDate: birth, BloodType: domain.BloodOPositive},
		Specialty: sp,
		License:   domain.MustLicenseNumber(license),
	})
	require.NoError(t, err)
	return m
}

func newPatient(t *testing.T, name, surname, dni string) domain.Patient {
	t.Helper()
	p, err := domain.NewPatient(domain.PatientParams{
		Person:  domain.PersonParams{Name: name, Surname: surname, DNI: dni, BirthDate: birth, BloodType: domain.BloodABPositive},
		Phone:   "+54 261 600-1000",
		Address: "Colón 520, Godoy Cruz",
	})
	require.NoError(t, err)
	return p
}

// ward is a hospital with one neurology department, a room, a physician and
// a patient, all created through the service.
type ward struct {
	svc       *Service
	hospital  domain.Hospital
	dept      domain.Department
	room      domain.Room
	physician domain.Physician
	patient   domain.Patient
	history   domain.ClinicalHistory
}

func newWard(t *testing.T, opts ...Option) *ward {
	t.Helper()
	ctx := context.Background()
	w := &ward{svc: NewInMemoryService(nil, append([]Option{WithClock(fixedClock())}, opts...)...)}
	var err error
	w.hospital, _, err = w.svc.CreateHospital(ctx, newHospital(t, "Hospital San Martín Central"))
	require.NoError(t, err)
	w.dept, _, err = w.svc.CreateDepartment(ctx, newDepartment(t, "Neurología", domain.SpecialtyNeurology), w.hospital.ID())
	require.NoError(t, err)
	w.room, _, err = w.svc.CreateRoom(ctx, newRoom(t, "S-201", w.dept.ID()))
	require.NoError(t, err)
	w.physician, _, err = w.svc.RegisterPhysician(ctx, newPhysician(t, "Andrés", "Álvarez", "30888999", "MP-45678", domain.SpecialtyNeurology), w.dept.ID())
	require.NoError(t, err)
	w.patient, w.history, _, err = w.svc.AdmitPatient(ctx, newPatient(t, "María", "López", "40222111"), w.hospital.ID())
	require.NoError(t, err)
	return w
}

func (w *ward) request(at time.Time) domain.AppointmentRequest {
	return domain.AppointmentRequest{
		PatientID:   w.patient.ID(),
		PhysicianID: w.physician.ID(),
		RoomID:      w.room.ID(),
		At:          at,
		AmountCents: 1_800_000,
	}
}

func (w *ward) view(t *testing.T, fn func(v domain.TransactionView)) {
	t.Helper()
	require.NoError(t, w.svc.Store().View(context.Background(), func(v domain.TransactionView) error {
		fn(v)
		return nil
	}))
}
