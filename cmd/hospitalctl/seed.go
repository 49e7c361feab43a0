package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hospitalcore/pkg/domain"
)

const demoHospital = "Hospital San Martín Central"

type seedDepartment struct {
	name      string
	specialty domain.Specialty
	room      string
	roomType  string
}

type seedPerson struct {
	name, surname, dni string
	born               time.Time
	blood              domain.BloodType
}

type seedPhysician struct {
	seedPerson
	specialty domain.Specialty
	license   string
}

type seedPatient struct {
	seedPerson
	phone, address string
}

// seedAppointment books patient with physician in room, days after today at
// the given time of day (UTC).
type seedAppointment struct {
	patientDNI  string
	license     string
	room        string
	days        int
	timeOfDay   time.Duration
	amountCents int64
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

var (
	seedDepartments = []seedDepartment{
		{"Neurología", domain.SpecialtyNeurology, "S-201", "Consulta Neurológica"},
		{"Cirugía General", domain.SpecialtyGeneralSurgery, "S-305", "Quirofano 3"},
		{"Dermatología", domain.SpecialtyDermatology, "S-112", "DermatoBox A"},
	}
	seedPhysicians = []seedPhysician{
		{seedPerson{"Andrés", "Álvarez", "30888999", date(1984, time.April, 19), domain.BloodOPositive}, domain.SpecialtyNeurology, "MP-45678"},
		{seedPerson{"Lucía", "Rojas", "29555111", date(1987, time.January, 7), domain.BloodAPositive}, domain.SpecialtyGeneralSurgery, "MP-334455"},
		{seedPerson{"Julián", "Pereyra", "31222444", date(1990, time.September, 2), domain.BloodBNegative}, domain.SpecialtyDermatology, "MP-778899"},
	}
	seedPatients = []seedPatient{
		{seedPerson{"María", "López", "40222111", date(1999, time.February, 11), domain.BloodABPositive}, "+54 261 600-1000", "Colón 520, Godoy Cruz"},
		{seedPerson{"Sebastián", "Benítez", "38999123", date(1995, time.June, 23), domain.BloodONegative}, "+54 261 600-2000", "Sarmiento 220, Guaymallén"},
		{seedPerson{"Camila", "Herrera", "37777123", date(2001, time.November, 5), domain.BloodBPositive}, "+54 261 600-3000", "Belgrano 900, Las Heras"},
	}
	seedAppointments = []seedAppointment{
		{"40222111", "MP-45678", "S-201", 1, 9*time.Hour + 30*time.Minute, 1_800_000},
		{"38999123", "MP-334455", "S-305", 2, 14 * time.Hour, 4_500_000},
		{"37777123", "MP-778899", "S-112", 3, 11*time.Hour + 15*time.Minute, 1_250_000},
	}
)

func (p seedPerson) params() domain.PersonParams {
	return domain.PersonParams{Name: p.name, Surname: p.surname, DNI: p.dni, BirthDate: p.born, BloodType: p.blood}
}

func seedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo hospital and book its first appointments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.seed(cmd.Context())
		},
	}
}

// seed creates the demo hospital unless it exists, then books the demo
// appointments unless upcoming appointments exist.
func (a *app) seed(ctx context.Context) error {
	_, found, err := a.svc.FindHospitalByName(ctx, demoHospital)
	if err != nil {
		return err
	}
	if found {
		fmt.Fprintln(a.out, "==> Base data already present, not reinserted.")
	} else {
		if _, err := a.svc.RunInTransaction(ctx, "seed_hospital", seedHospital); err != nil {
			return fmt.Errorf("seed hospital: %w", err)
		}
		fmt.Fprintln(a.out, "==> Base data created (hospital, departments, rooms, physicians, patients).")
	}

	upcoming, err := a.svc.UpcomingAppointments(ctx)
	if err != nil {
		return err
	}
	if len(upcoming) > 0 {
		fmt.Fprintln(a.out, "==> Upcoming appointments exist, not rescheduled.")
		return nil
	}
	n, err := a.scheduleDemoAppointments(ctx)
	if err != nil {
		return fmt.Errorf("schedule appointments: %w", err)
	}
	fmt.Fprintf(a.out, "==> Appointments scheduled (%d new).\n", n)
	return nil
}

func seedHospital(tx domain.Transaction) error {
	h, err := domain.NewHospital(domain.HospitalParams{Name: demoHospital, Address: "Ituzaingó 1450, Ciudad", Phone: "+54 261 555-0101"})
	if err != nil {
		return err
	}
	if h, err = tx.CreateHospital(h); err != nil {
		return err
	}

	bySpecialty := make(map[domain.Specialty]domain.ID)
	for _, sd := range seedDepartments {
		d, err := domain.NewDepartment(domain.DepartmentParams{Name: sd.name, Specialty: sd.specialty})
		if err != nil {
			return err
		}
		if d, err = tx.CreateDepartment(d); err != nil {
			return err
		}
		if err := tx.AddDepartment(h.ID(), d.ID()); err != nil {
			return err
		}
		r, err := domain.NewRoom(domain.RoomParams{Number: sd.room, Type: sd.roomType, Department: d.ID()})
		if err != nil {
			return err
		}
		if _, err := tx.CreateRoom(r); err != nil {
			return err
		}
		bySpecialty[sd.specialty] = d.ID()
	}

	for _, sp := range seedPhysicians {
		license, err := domain.NewLicenseNumber(sp.license)
		if err != nil {
			return err
		}
		m, err := domain.NewPhysician(domain.PhysicianParams{Person: sp.params(), Specialty: sp.specialty, License: license})
		if err != nil {
			return err
		}
		if m, err = tx.CreatePhysician(m); err != nil {
			return err
		}
		if err := tx.AddPhysician(bySpecialty[sp.specialty], m.ID()); err != nil {
			return err
		}
	}

	for _, sp := range seedPatients {
		p, err := domain.NewPatient(domain.PatientParams{Person: sp.params(), Phone: sp.phone, Address: sp.address})
		if err != nil {
			return err
		}
		if p, _, err = tx.CreatePatient(p); err != nil {
			return err
		}
		if err := tx.AddPatient(h.ID(), p.ID()); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) scheduleDemoAppointments(ctx context.Context) (int, error) {
	var reqs []domain.AppointmentRequest
	today := a.clock.Now().UTC().Truncate(24 * time.Hour)
	err := a.svc.Store().View(ctx, func(v domain.TransactionView) error {
		for _, sa := range seedAppointments {
			p, ok := v.FindPatientByDNI(sa.patientDNI)
			if !ok {
				return domain.NotFoundError{Entity: domain.EntityPatient, ID: domain.ID(sa.patientDNI)}
			}
			m, ok := v.FindPhysicianByLicense(sa.license)
			if !ok {
				return domain.NotFoundError{Entity: domain.EntityPhysician, ID: domain.ID(sa.license)}
			}
			r, ok := v.FindRoomByNumber(sa.room)
			if !ok {
				return domain.NotFoundError{Entity: domain.EntityRoom, ID: domain.ID(sa.room)}
			}
			reqs = append(reqs, domain.AppointmentRequest{
				PatientID:   p.ID(),
				PhysicianID: m.ID(),
				RoomID:      r.ID(),
				At:          today.AddDate(0, 0, sa.days).Add(sa.timeOfDay),
				AmountCents: sa.amountCents,
			})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for i, req := range reqs {
		if _, _, err := a.svc.ScheduleAppointment(ctx, req); err != nil {
			return i, err
		}
	}
	return len(reqs), nil
}
