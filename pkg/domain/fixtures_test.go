package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var birth = time.Date(1980, time.March, 14, 0, 0, 0, 0, time.UTC)

func sequentialIDs() func() ID {
	n := 0
	return func() ID {
		n++
		return ID(fmt.Sprintf("id-%03d", n))
	}
}

func newTestGraph() *Graph {
	return NewGraph(
		WithIDGenerator(sequentialIDs()),
		WithGraphClock(func() time.Time { return birth }),
	)
}

func person(name, surname, dni string) PersonParams {
	return PersonParams{Name: name, Surname: surname, DNI: dni, BirthDate: birth, BloodType: BloodOPositive}
}

func mustHospital(t *testing.T, g *Graph, name string) Hospital {
	t.Helper()
	h, err := NewHospital(HospitalParams{Name: name, Address: "Av. Libertador 1234", Phone: "011-4567-8901"})
	require.NoError(t, err)
	h, err = g.RegisterHospital(h)
	require.NoError(t, err)
	return h
}

func mustDepartment(t *testing.T, g *Graph, name string, s Specialty) Department {
	t.Helper()
	d, err := NewDepartment(DepartmentParams{Name: name, Specialty: s})
	require.NoError(t, err)
	d, err = g.RegisterDepartment(d)
	require.NoError(t, err)
	return d
}

func mustPhysician(t *testing.T, g *Graph, name, surname, dni, license string, s Specialty) Physician {
	t.Helper()
	m, err := NewPhysician(PhysicianParams{
		Person:    person(name, surname, dni),
		Specialty: s,
		License:   MustLicenseNumber(license),
	})
	require.NoError(t, err)
	m, err = g.RegisterPhysician(m)
	require.NoError(t, err)
	return m
}

func mustPatient(t *testing.T, g *Graph, name, surname, dni string) Patient {
	t.Helper()
	p, err := NewPatient(PatientParams{Person: person(name, surname, dni), Phone: "011-1111-2222", Address: "Calle 1"})
	require.NoError(t, err)
	p, _, err = g.RegisterPatient(p)
	require.NoError(t, err)
	return p
}

func ids[T interface{ ID() ID }](items []T) []ID {
	out := make([]ID, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID())
	}
	return out
}
