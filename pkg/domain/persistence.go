package domain

import (
	"context"
	"time"
)

var _ TransactionView = (*Graph)(nil)

// TransactionView provides read-only access to graph state for rules,
// reports and queries.
type TransactionView interface {
	Hospital(id ID) (Hospital, bool)
	Department(id ID) (Department, bool)
	Room(id ID) (Room, bool)
	Physician(id ID) (Physician, bool)
	Patient(id ID) (Patient, bool)
	Appointment(id ID) (Appointment, bool)

	Hospitals() []Hospital
	Departments() []Department
	Rooms() []Room
	Physicians() []Physician
	Patients() []Patient
	ClinicalHistories() []ClinicalHistory
	Appointments() []Appointment

	HospitalDepartments(id ID) []Department
	HospitalPatients(id ID) []Patient
	DepartmentPhysicians(id ID) []Physician
	DepartmentRooms(id ID) []Room
	RoomAppointments(id ID) []Appointment
	PhysicianAppointments(id ID) []Appointment
	PatientAppointments(id ID) []Appointment

	DepartmentHospital(id ID) (Hospital, bool)
	PatientHospital(id ID) (Hospital, bool)
	PhysicianDepartment(id ID) (Department, bool)
	RoomDepartment(id ID) (Department, bool)
	PatientHistory(id ID) (ClinicalHistory, bool)

	FindPhysicianByLicense(license string) (Physician, bool)
	FindPatientByDNI(dni string) (Patient, bool)
	FindPersonByDNI(dni string) []Actor
	FindRoomByNumber(number string) (Room, bool)
	FindHospitalByName(name string) (Hospital, bool)

	Verify() []IntegrityIssue
}

// Transaction exposes the graph operations a persistence implementation must
// support within an atomic scope. Any error returned from the unit of work
// discards every mutation made through the Transaction.
type Transaction interface {
	TransactionView

	CreateHospital(Hospital) (Hospital, error)
	CreateDepartment(Department) (Department, error)
	CreateRoom(Room) (Room, error)
	CreatePhysician(Physician) (Physician, error)
	CreatePatient(Patient) (Patient, ClinicalHistory, error)
	CreateAppointment(Appointment) (Appointment, error)

	AddDepartment(hospitalID, departmentID ID) error
	SetDepartmentHospital(departmentID, hospitalID ID) error
	AddPatient(hospitalID, patientID ID) error
	SetPatientHospital(patientID, hospitalID ID) error
	AddPhysician(departmentID, physicianID ID) error
	SetPhysicianDepartment(physicianID, departmentID ID) error
	SetRoomDepartment(roomID, departmentID ID) error
	SetAppointmentStatus(id ID, status AppointmentStatus) (Appointment, error)

	DeleteHospital(id ID) error
	DeleteDepartment(id ID) error
	DeleteRoom(id ID) error
	DeletePhysician(id ID) error
	DeletePatient(id ID) error
	DeleteAppointment(id ID) error
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error

	FindPhysicianByLicense(license string) (Physician, bool)
	FindPatientByDNI(dni string) (Patient, bool)
	PhysiciansBySpecialty(s Specialty) []Physician
	UpcomingAppointments(after time.Time) []Appointment
	CountPatients(hospitalID ID) int
	CountAppointmentsByStatus() map[AppointmentStatus]int

	ExportState() Snapshot
	ImportState(Snapshot) error
}

// PhysiciansBySpecialty returns the physicians holding s ordered by surname
// then name.
func PhysiciansBySpecialty(v TransactionView, s Specialty) []Physician {
	matching := Select(v.Physicians(), func(m Physician) bool { return m.Specialty() == s })
	return SortBy(SortBy(matching, Physician.Name), Physician.Surname)
}

// UpcomingAppointments returns active appointments strictly after the given
// instant, earliest first.
func UpcomingAppointments(v TransactionView, after time.Time) []Appointment {
	matching := Select(v.Appointments(), func(a Appointment) bool {
		return a.Status().Active() && a.At().After(after)
	})
	return SortBy(matching, func(a Appointment) int64 { return a.At().UnixNano() })
}

// CountPatients counts the patients attached to a hospital.
func CountPatients(v TransactionView, hospitalID ID) int {
	return len(v.HospitalPatients(hospitalID))
}

// CountAppointmentsByStatus tallies appointments per status. Statuses with no
// appointments are omitted.
func CountAppointmentsByStatus(v TransactionView) map[AppointmentStatus]int {
	all := v.Appointments()
	out := make(map[AppointmentStatus]int)
	for _, status := range []AppointmentStatus{
		AppointmentScheduled, AppointmentConfirmed, AppointmentInProgress,
		AppointmentCompleted, AppointmentCancelled, AppointmentNoShow,
	} {
		if n := Count(all, func(a Appointment) bool { return a.Status() == status }); n > 0 {
			out[status] = n
		}
	}
	return out
}
