package domain

import (
	"encoding/json"
	"time"
)

// Records in this file are immutable once constructed. Parent links live in
// the Graph's relationship table, never on the record itself.

// HospitalParams describes a hospital to construct.
type HospitalParams struct {
	ID      ID
	Name    string
	Address string
	Phone   string
}

// Hospital is the aggregate root owning departments and patients.
type Hospital struct {
	id      ID
	name    string
	address string
	phone   string
}

// NewHospital validates p and returns the record.
func NewHospital(p HospitalParams) (Hospital, error) {
	var g guard
	h := Hospital{
		id:      p.ID,
		name:    g.nonBlank(p.Name, "name"),
		address: g.nonBlank(p.Address, "address"),
		phone:   g.nonBlank(p.Phone, "phone"),
	}
	if g.err != nil {
		return Hospital{}, g.err
	}
	return h, nil
}

func (h Hospital) ID() ID          { return h.id }
func (h Hospital) Name() string    { return h.name }
func (h Hospital) Address() string { return h.address }
func (h Hospital) Phone() string   { return h.phone }

type hospitalDocument struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// MarshalJSON implements json.Marshaler.
func (h Hospital) MarshalJSON() ([]byte, error) {
	return json.Marshal(hospitalDocument{ID: h.id, Name: h.name, Address: h.address, Phone: h.phone})
}

// UnmarshalJSON re-runs construction guards on the decoded fields.
func (h *Hospital) UnmarshalJSON(data []byte) error {
	var doc hospitalDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	built, err := NewHospital(HospitalParams(doc))
	if err != nil {
		return err
	}
	if err := requireStoredID(doc.ID); err != nil {
		return err
	}
	*h = built
	return nil
}

// DepartmentParams describes a department to construct.
type DepartmentParams struct {
	ID        ID
	Name      string
	Specialty Specialty
}

// Department groups physicians and rooms under one specialty.
type Department struct {
	id        ID
	name      string
	specialty Specialty
}

// NewDepartment validates p and returns the record.
func NewDepartment(p DepartmentParams) (Department, error) {
	var g guard
	d := Department{
		id:        p.ID,
		name:      g.nonBlank(p.Name, "name"),
		specialty: p.Specialty,
	}
	g.check(p.Specialty.Valid(), "specialty", "must be a known specialty")
	if g.err != nil {
		return Department{}, g.err
	}
	return d, nil
}

func (d Department) ID() ID               { return d.id }
func (d Department) Name() string         { return d.name }
func (d Department) Specialty() Specialty { return d.specialty }

type departmentDocument struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	Specialty Specialty `json:"specialty"`
}

// MarshalJSON implements json.Marshaler.
func (d Department) MarshalJSON() ([]byte, error) {
	return json.Marshal(departmentDocument{ID: d.id, Name: d.name, Specialty: d.specialty})
}

// UnmarshalJSON re-runs construction guards on the decoded fields.
func (d *Department) UnmarshalJSON(data []byte) error {
	var doc departmentDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	built, err := NewDepartment(DepartmentParams(doc))
	if err != nil {
		return err
	}
	if err := requireStoredID(doc.ID); err != nil {
		return err
	}
	*d = built
	return nil
}

// RoomParams describes a room to construct. Department is mandatory.
type RoomParams struct {
	ID         ID
	Number     string
	Type       string
	Department ID
}

// Room is a facility resource that always belongs to a department.
type Room struct {
	id       ID
	number   string
	roomType string
	// placement is the department the room was built for; RegisterRoom
	// moves it into the relationship table.
	placement ID
}

// NewRoom validates p. An empty Department fails with ErrInvalidArgument.
func NewRoom(p RoomParams) (Room, error) {
	var g guard
	r := Room{
		id:        p.ID,
		number:    g.nonBlank(p.Number, "number"),
		roomType:  g.nonBlank(p.Type, "type"),
		placement: g.id(p.Department, "department"),
	}
	if g.err != nil {
		return Room{}, g.err
	}
	return r, nil
}

func (r Room) ID() ID         { return r.id }
func (r Room) Number() string { return r.number }
func (r Room) Type() string   { return r.roomType }

type roomDocument struct {
	ID     ID     `json:"id"`
	Number string `json:"number"`
	Type   string `json:"type"`
}

// MarshalJSON implements json.Marshaler. The owning department is persisted
// with the graph links.
func (r Room) MarshalJSON() ([]byte, error) {
	return json.Marshal(roomDocument{ID: r.id, Number: r.number, Type: r.roomType})
}

// UnmarshalJSON re-runs the field guards on the decoded fields.
func (r *Room) UnmarshalJSON(data []byte) error {
	var doc roomDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	var g guard
	built := Room{
		id:       g.id(doc.ID, "id"),
		number:   g.nonBlank(doc.Number, "number"),
		roomType: g.nonBlank(doc.Type, "type"),
	}
	if g.err != nil {
		return g.err
	}
	*r = built
	return nil
}

// PhysicianParams describes a physician to construct. License must come from
// NewLicenseNumber; it is only checked for presence here.
type PhysicianParams struct {
	ID        ID
	Person    PersonParams
	Specialty Specialty
	License   LicenseNumber
}

// Physician is a specialty-holding actor.
type Physician struct {
	PersonRecord
	id        ID
	specialty Specialty
	license   LicenseNumber
}

// NewPhysician validates p and returns the record.
func NewPhysician(p PhysicianParams) (Physician, error) {
	person, err := NewPersonRecord(p.Person)
	if err != nil {
		return Physician{}, err
	}
	var g guard
	g.check(!p.License.IsZero(), "license_number", "must be set")
	g.check(p.Specialty.Valid(), "specialty", "must be a known specialty")
	if g.err != nil {
		return Physician{}, g.err
	}
	return Physician{PersonRecord: person, id: p.ID, specialty: p.Specialty, license: p.License}, nil
}

func (m Physician) ID() ID                 { return m.id }
func (m Physician) Specialty() Specialty   { return m.specialty }
func (m Physician) License() LicenseNumber { return m.license }

// Actor returns the role-agnostic view of the physician.
func (m Physician) Actor() Actor {
	return Actor{ID: m.id, Person: m.PersonRecord, Role: PhysicianRole{Specialty: m.specialty, License: m.license}}
}

type personDocument struct {
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	DNI       string    `json:"dni"`
	BirthDate time.Time `json:"birth_date"`
	BloodType BloodType `json:"blood_type"`
}

type physicianDocument struct {
	ID ID `json:"id"`
	personDocument
	Specialty Specialty     `json:"specialty"`
	License   LicenseNumber `json:"license_number"`
}

// MarshalJSON implements json.Marshaler.
func (m Physician) MarshalJSON() ([]byte, error) {
	return json.Marshal(physicianDocument{
		ID:             m.id,
		personDocument: personDocument(m.params()),
		Specialty:      m.specialty,
		License:        m.license,
	})
}

// UnmarshalJSON re-runs construction guards on the decoded fields.
func (m *Physician) UnmarshalJSON(data []byte) error {
	var doc physicianDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	built, err := NewPhysician(PhysicianParams{
		ID:        doc.ID,
		Person:    PersonParams(doc.personDocument),
		Specialty: doc.Specialty,
		License:   doc.License,
	})
	if err != nil {
		return err
	}
	if err := requireStoredID(doc.ID); err != nil {
		return err
	}
	*m = built
	return nil
}

// PatientParams describes a patient to construct.
type PatientParams struct {
	ID      ID
	Person  PersonParams
	Phone   string
	Address string
}

// Patient is a care recipient. Its clinical history is created by the Graph
// on registration.
type Patient struct {
	PersonRecord
	id      ID
	phone   string
	address string
}

// NewPatient validates p and returns the record.
func NewPatient(p PatientParams) (Patient, error) {
	person, err := NewPersonRecord(p.Person)
	if err != nil {
		return Patient{}, err
	}
	var g guard
	pt := Patient{
		PersonRecord: person,
		id:           p.ID,
		phone:        g.nonBlank(p.Phone, "phone"),
		address:      g.nonBlank(p.Address, "address"),
	}
	if g.err != nil {
		return Patient{}, g.err
	}
	return pt, nil
}

func (p Patient) ID() ID          { return p.id }
func (p Patient) Phone() string   { return p.phone }
func (p Patient) Address() string { return p.address }

// Actor returns the role-agnostic view of the patient.
func (p Patient) Actor() Actor {
	return Actor{ID: p.id, Person: p.PersonRecord, Role: PatientRole{Phone: p.phone, Address: p.address}}
}

type patientDocument struct {
	ID ID `json:"id"`
	personDocument
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// MarshalJSON implements json.Marshaler.
func (p Patient) MarshalJSON() ([]byte, error) {
	return json.Marshal(patientDocument{
		ID:             p.id,
		personDocument: personDocument(p.params()),
		Phone:          p.phone,
		Address:        p.address,
	})
}

// UnmarshalJSON re-runs construction guards on the decoded fields.
func (p *Patient) UnmarshalJSON(data []byte) error {
	var doc patientDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	built, err := NewPatient(PatientParams{
		ID:      doc.ID,
		Person:  PersonParams(doc.personDocument),
		Phone:   doc.Phone,
		Address: doc.Address,
	})
	if err != nil {
		return err
	}
	if err := requireStoredID(doc.ID); err != nil {
		return err
	}
	*p = built
	return nil
}

// ClinicalHistory is the per-patient record opened alongside the patient.
type ClinicalHistory struct {
	id        ID
	patientID ID
	openedAt  time.Time
}

func (c ClinicalHistory) ID() ID              { return c.id }
func (c ClinicalHistory) PatientID() ID       { return c.patientID }
func (c ClinicalHistory) OpenedAt() time.Time { return c.openedAt }

type clinicalHistoryDocument struct {
	ID        ID        `json:"id"`
	PatientID ID        `json:"patient_id"`
	OpenedAt  time.Time `json:"opened_at"`
}

// MarshalJSON implements json.Marshaler.
func (c ClinicalHistory) MarshalJSON() ([]byte, error) {
	return json.Marshal(clinicalHistoryDocument{ID: c.id, PatientID: c.patientID, OpenedAt: c.openedAt})
}

// UnmarshalJSON validates the decoded ids.
func (c *ClinicalHistory) UnmarshalJSON(data []byte) error {
	var doc clinicalHistoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	var g guard
	built := ClinicalHistory{
		id:        g.id(doc.ID, "id"),
		patientID: g.id(doc.PatientID, "patient_id"),
		openedAt:  doc.OpenedAt,
	}
	if g.err != nil {
		return g.err
	}
	*c = built
	return nil
}

// AppointmentParams describes an appointment to construct.
type AppointmentParams struct {
	ID          ID
	PatientID   ID
	PhysicianID ID
	RoomID      ID
	At          time.Time
	AmountCents int64
	Status      AppointmentStatus
}

// Appointment links a patient, a physician and a room at a point in time.
type Appointment struct {
	id          ID
	patientID   ID
	physicianID ID
	roomID      ID
	at          time.Time
	amountCents int64
	status      AppointmentStatus
}

// NewAppointment validates p. An empty Status defaults to scheduled.
func NewAppointment(p AppointmentParams) (Appointment, error) {
	if p.Status == "" {
		p.Status = AppointmentScheduled
	}
	var g guard
	a := Appointment{
		id:          p.ID,
		patientID:   g.id(p.PatientID, "patient_id"),
		physicianID: g.id(p.PhysicianID, "physician_id"),
		roomID:      g.id(p.RoomID, "room_id"),
		at:          g.date(p.At, "at"),
		amountCents: p.AmountCents,
		status:      p.Status,
	}
	g.check(p.AmountCents >= 0, "amount", "must not be negative")
	g.check(p.Status.Valid(), "status", "must be a known appointment status")
	if g.err != nil {
		return Appointment{}, g.err
	}
	return a, nil
}

func (a Appointment) ID() ID                    { return a.id }
func (a Appointment) PatientID() ID             { return a.patientID }
func (a Appointment) PhysicianID() ID           { return a.physicianID }
func (a Appointment) RoomID() ID                { return a.roomID }
func (a Appointment) At() time.Time             { return a.at }
func (a Appointment) AmountCents() int64        { return a.amountCents }
func (a Appointment) Status() AppointmentStatus { return a.status }

type appointmentDocument struct {
	ID          ID                `json:"id"`
	PatientID   ID                `json:"patient_id"`
	PhysicianID ID                `json:"physician_id"`
	RoomID      ID                `json:"room_id"`
	At          time.Time         `json:"at"`
	AmountCents int64             `json:"amount_cents"`
	Status      AppointmentStatus `json:"status"`
}

// MarshalJSON implements json.Marshaler.
func (a Appointment) MarshalJSON() ([]byte, error) {
	return json.Marshal(appointmentDocument{
		ID:          a.id,
		PatientID:   a.patientID,
		PhysicianID: a.physicianID,
		RoomID:      a.roomID,
		At:          a.at,
		AmountCents: a.amountCents,
		Status:      a.status,
	})
}

// UnmarshalJSON re-runs construction guards on the decoded fields.
func (a *Appointment) UnmarshalJSON(data []byte) error {
	var doc appointmentDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	built, err := NewAppointment(AppointmentParams(doc))
	if err != nil {
		return err
	}
	if err := requireStoredID(doc.ID); err != nil {
		return err
	}
	*a = built
	return nil
}

func requireStoredID(id ID) error {
	var g guard
	g.id(id, "id")
	return g.err
}
