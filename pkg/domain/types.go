// Package domain defines the hospital organizational graph: validated
// immutable records, the registry that owns them by id, and the
// relationship bookkeeping that keeps every two-way association in sync.
package domain

import (
	"fmt"
	"strings"
)

// ID is an opaque surrogate key assigned when a record is registered.
type ID string

// EntityType identifies the type of record held by the graph.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	EntityHospital        EntityType = "hospital"
	EntityDepartment      EntityType = "department"
	EntityRoom            EntityType = "room"
	EntityPhysician       EntityType = "physician"
	EntityPatient         EntityType = "patient"
	EntityClinicalHistory EntityType = "clinical_history"
	EntityAppointment     EntityType = "appointment"
)

// Specialty is the closed set of medical specialties.
type Specialty string

// Medical specialties recognised by departments and physicians.
const (
	SpecialtyCardiology     Specialty = "CARDIOLOGY"
	SpecialtyDermatology    Specialty = "DERMATOLOGY"
	SpecialtyGeneralSurgery Specialty = "GENERAL_SURGERY"
	SpecialtyGynecology     Specialty = "GYNECOLOGY"
	SpecialtyNeurology      Specialty = "NEUROLOGY"
	SpecialtyOncology       Specialty = "ONCOLOGY"
	SpecialtyOphthalmology  Specialty = "OPHTHALMOLOGY"
	SpecialtyPediatrics     Specialty = "PEDIATRICS"
	SpecialtyPsychiatry     Specialty = "PSYCHIATRY"
	SpecialtyTraumatology   Specialty = "TRAUMATOLOGY"
)

var specialties = []Specialty{
	SpecialtyCardiology,
	SpecialtyDermatology,
	SpecialtyGeneralSurgery,
	SpecialtyGynecology,
	SpecialtyNeurology,
	SpecialtyOncology,
	SpecialtyOphthalmology,
	SpecialtyPediatrics,
	SpecialtyPsychiatry,
	SpecialtyTraumatology,
}

// Specialties lists every valid specialty.
func Specialties() []Specialty {
	return append([]Specialty(nil), specialties...)
}

// Valid reports whether s belongs to the enumeration.
func (s Specialty) Valid() bool {
	for _, known := range specialties {
		if s == known {
			return true
		}
	}
	return false
}

// ParseSpecialty accepts the canonical name, case-insensitively.
func ParseSpecialty(raw string) (Specialty, error) {
	s := Specialty(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", &ValidationError{Field: "specialty", Reason: fmt.Sprintf("unknown value %q", raw)}
	}
	return s, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Specialty) MarshalText() ([]byte, error) { return []byte(s), nil }

// UnmarshalText rejects values outside the enumeration.
func (s *Specialty) UnmarshalText(text []byte) error {
	parsed, err := ParseSpecialty(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// BloodType is the closed set of ABO/Rh groups.
type BloodType string

// Blood groups.
const (
	BloodAPositive  BloodType = "A_POSITIVE"
	BloodANegative  BloodType = "A_NEGATIVE"
	BloodBPositive  BloodType = "B_POSITIVE"
	BloodBNegative  BloodType = "B_NEGATIVE"
	BloodABPositive BloodType = "AB_POSITIVE"
	BloodABNegative BloodType = "AB_NEGATIVE"
	BloodOPositive  BloodType = "O_POSITIVE"
	BloodONegative  BloodType = "O_NEGATIVE"
)

var bloodSymbols = map[BloodType]string{
	BloodAPositive:  "A+",
	BloodANegative:  "A-",
	BloodBPositive:  "B+",
	BloodBNegative:  "B-",
	BloodABPositive: "AB+",
	BloodABNegative: "AB-",
	BloodOPositive:  "O+",
	BloodONegative:  "O-",
}

// Valid reports whether b belongs to the enumeration.
func (b BloodType) Valid() bool {
	_, ok := bloodSymbols[b]
	return ok
}

// Symbol renders the conventional short form, e.g. "AB+".
func (b BloodType) Symbol() string { return bloodSymbols[b] }

// ParseBloodType accepts either the canonical name or the short symbol.
func ParseBloodType(raw string) (BloodType, error) {
	trimmed := strings.TrimSpace(raw)
	if b := BloodType(strings.ToUpper(trimmed)); b.Valid() {
		return b, nil
	}
	for b, symbol := range bloodSymbols {
		if strings.EqualFold(symbol, trimmed) {
			return b, nil
		}
	}
	return "", &ValidationError{Field: "blood_type", Reason: fmt.Sprintf("unknown value %q", raw)}
}

// MarshalText implements encoding.TextMarshaler.
func (b BloodType) MarshalText() ([]byte, error) { return []byte(b), nil }

// UnmarshalText rejects values outside the enumeration.
func (b *BloodType) UnmarshalText(text []byte) error {
	parsed, err := ParseBloodType(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// AppointmentStatus enumerates appointment workflow states.
type AppointmentStatus string

// Appointment statuses. Status changes never move an appointment between lists.
const (
	AppointmentScheduled  AppointmentStatus = "scheduled"
	AppointmentConfirmed  AppointmentStatus = "confirmed"
	AppointmentInProgress AppointmentStatus = "in_progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
	AppointmentNoShow     AppointmentStatus = "no_show"
)

// Valid reports whether s belongs to the enumeration.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentInProgress,
		AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

// Active reports whether the appointment still occupies its slot.
func (s AppointmentStatus) Active() bool {
	return s != AppointmentCancelled && s != AppointmentNoShow
}
