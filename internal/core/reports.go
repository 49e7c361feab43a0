package core

import (
	"context"

	"hospitalcore/pkg/domain"
)

// Summary counts the records reachable from one hospital.
type Summary struct {
	Hospital     domain.Hospital
	Departments  int
	Rooms        int
	Physicians   int
	Patients     int
	Appointments map[domain.AppointmentStatus]int
}

// PhysiciansBySpecialty lists physicians holding sp ordered by surname then
// name.
func (s *Service) PhysiciansBySpecialty(ctx context.Context, sp domain.Specialty) ([]domain.Physician, error) {
	var out []domain.Physician
	err := s.store.View(ctx, func(v domain.TransactionView) error {
		out = domain.PhysiciansBySpecialty(v, sp)
		return nil
	})
	return out, err
}

// UpcomingAppointments lists active appointments after the service clock's
// current time, earliest first.
func (s *Service) UpcomingAppointments(ctx context.Context) ([]domain.Appointment, error) {
	now := s.clock.Now()
	var out []domain.Appointment
	err := s.store.View(ctx, func(v domain.TransactionView) error {
		out = domain.UpcomingAppointments(v, now)
		return nil
	})
	return out, err
}

// FindHospitalByName looks a hospital up by exact name.
func (s *Service) FindHospitalByName(ctx context.Context, name string) (domain.Hospital, bool, error) {
	var (
		h  domain.Hospital
		ok bool
	)
	err := s.store.View(ctx, func(v domain.TransactionView) error {
		h, ok = v.FindHospitalByName(name)
		return nil
	})
	return h, ok, err
}

// FindPersonByDNI returns every physician and patient registered with dni.
func (s *Service) FindPersonByDNI(ctx context.Context, dni string) ([]domain.Actor, error) {
	var out []domain.Actor
	err := s.store.View(ctx, func(v domain.TransactionView) error {
		out = v.FindPersonByDNI(dni)
		return nil
	})
	return out, err
}

// Summary reports counts for hospitalID. Appointment counts cover every
// appointment involving one of the hospital's patients.
func (s *Service) Summary(ctx context.Context, hospitalID domain.ID) (Summary, error) {
	var sum Summary
	err := s.store.View(ctx, func(v domain.TransactionView) error {
		h, ok := v.Hospital(hospitalID)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntityHospital, ID: hospitalID}
		}
		sum.Hospital = h
		for _, d := range v.HospitalDepartments(hospitalID) {
			sum.Departments++
			sum.Rooms += len(v.DepartmentRooms(d.ID()))
			sum.Physicians += len(v.DepartmentPhysicians(d.ID()))
		}
		patients := v.HospitalPatients(hospitalID)
		sum.Patients = len(patients)
		sum.Appointments = make(map[domain.AppointmentStatus]int)
		for _, p := range patients {
			for _, a := range v.PatientAppointments(p.ID()) {
				sum.Appointments[a.Status()]++
			}
		}
		return nil
	})
	return sum, err
}
