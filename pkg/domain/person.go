package domain

import "time"

// PersonParams carries the identity fields shared by physicians and patients.
type PersonParams struct {
	Name      string
	Surname   string
	DNI       string
	BirthDate time.Time
	BloodType BloodType
}

// PersonRecord holds validated, immutable identity attributes. Physician and
// Patient embed it.
type PersonRecord struct {
	name      string
	surname   string
	dni       string
	birthDate time.Time
	bloodType BloodType
}

// NewPersonRecord validates p and returns the record.
func NewPersonRecord(p PersonParams) (PersonRecord, error) {
	var g guard
	rec := PersonRecord{
		name:      g.nonBlank(p.Name, "name"),
		surname:   g.nonBlank(p.Surname, "surname"),
		dni:       g.dni(p.DNI),
		birthDate: g.date(p.BirthDate, "birth_date"),
		bloodType: p.BloodType,
	}
	g.check(p.BloodType.Valid(), "blood_type", "must be a known blood group")
	if g.err != nil {
		return PersonRecord{}, g.err
	}
	return rec, nil
}

func (p PersonRecord) Name() string         { return p.name }
func (p PersonRecord) Surname() string      { return p.surname }
func (p PersonRecord) DNI() string          { return p.dni }
func (p PersonRecord) BirthDate() time.Time { return p.birthDate }
func (p PersonRecord) BloodType() BloodType { return p.bloodType }

// FullName joins name and surname with a single space.
func (p PersonRecord) FullName() string {
	return p.name + " " + p.surname
}

// Age is the difference between now's year and the birth year. It does not
// check whether the birthday has already passed this year.
func (p PersonRecord) Age(now time.Time) int {
	return now.Year() - p.birthDate.Year()
}

func (p PersonRecord) params() PersonParams {
	return PersonParams{
		Name:      p.name,
		Surname:   p.surname,
		DNI:       p.dni,
		BirthDate: p.birthDate,
		BloodType: p.bloodType,
	}
}

// RoleKind discriminates the Role union.
type RoleKind string

// Role kinds.
const (
	RolePhysician RoleKind = "physician"
	RolePatient   RoleKind = "patient"
)

// Role captures the fields only one kind of person carries. The set of
// implementations is closed: PhysicianRole and PatientRole.
type Role interface {
	Kind() RoleKind
	sealed()
}

// PhysicianRole holds physician-only attributes.
type PhysicianRole struct {
	Specialty Specialty
	License   LicenseNumber
}

// Kind implements Role.
func (PhysicianRole) Kind() RoleKind { return RolePhysician }
func (PhysicianRole) sealed()        {}

// PatientRole holds patient-only attributes.
type PatientRole struct {
	Phone   string
	Address string
}

// Kind implements Role.
func (PatientRole) Kind() RoleKind { return RolePatient }
func (PatientRole) sealed()        {}

// Actor is the role-agnostic read model of a registered person.
type Actor struct {
	ID     ID
	Person PersonRecord
	Role   Role
}
