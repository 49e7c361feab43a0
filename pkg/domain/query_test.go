package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhysiciansBySpecialtyOrdersBySurname(t *testing.T) {
	g := newTestGraph()
	mustPhysician(t, g, "Lucía", "Rojas", "27999888", "MP-334455", SpecialtyNeurology)
	mustPhysician(t, g, "Andrés", "Álvarez", "30888999", "MP-45678", SpecialtyNeurology)
	mustPhysician(t, g, "Bruno", "Acosta", "29111333", "MP-5555", SpecialtyNeurology)
	mustPhysician(t, g, "Julián", "Pereyra", "32111222", "MP-778899", SpecialtyDermatology)

	got := PhysiciansBySpecialty(g, SpecialtyNeurology)
	surnames := make([]string, 0, len(got))
	for _, m := range got {
		surnames = append(surnames, m.Surname())
	}
	// Byte-wise ordering: "Á" sorts after ASCII letters.
	assert.Equal(t, []string{"Acosta", "Rojas", "Álvarez"}, surnames)
}

func TestUpcomingAppointmentsAndCounts(t *testing.T) {
	g := newTestGraph()
	h := mustHospital(t, g, "H")
	d := mustDepartment(t, g, "Neurología", SpecialtyNeurology)
	room, err := g.CreateRoom(d.ID(), "S-201", "Consultorio")
	require.NoError(t, err)
	m := mustPhysician(t, g, "Andrés", "Álvarez", "30888999", "MP-45678", SpecialtyNeurology)
	p := mustPatient(t, g, "María", "López", "40222111")
	require.NoError(t, g.AddPatient(h.ID(), p.ID()))

	base := time.Date(2026, time.May, 4, 9, 0, 0, 0, time.UTC)
	book := func(offset time.Duration, status AppointmentStatus) Appointment {
		a, err := NewAppointment(AppointmentParams{
			PatientID: p.ID(), PhysicianID: m.ID(), RoomID: room.ID(), At: base.Add(offset), Status: status,
		})
		require.NoError(t, err)
		a, err = g.RecordAppointment(a)
		require.NoError(t, err)
		return a
	}
	late := book(3*time.Hour, AppointmentScheduled)
	early := book(time.Hour, AppointmentConfirmed)
	book(2*time.Hour, AppointmentCancelled)
	book(-time.Hour, AppointmentCompleted)

	upcoming := UpcomingAppointments(g, base)
	assert.Equal(t, []ID{early.ID(), late.ID()}, ids(upcoming))

	assert.Equal(t, map[AppointmentStatus]int{
		AppointmentScheduled: 1,
		AppointmentConfirmed: 1,
		AppointmentCancelled: 1,
		AppointmentCompleted: 1,
	}, CountAppointmentsByStatus(g))
	assert.Equal(t, 1, CountPatients(g, h.ID()))
}

func TestSelectSortCount(t *testing.T) {
	nums := []int{5, 2, 8, 1}
	even := func(n int) bool { return n%2 == 0 }
	assert.Equal(t, []int{2, 8}, Select(nums, even))
	assert.Equal(t, 2, Count(nums, even))
	assert.Equal(t, []int{1, 2, 5, 8}, SortBy(nums, func(n int) int { return n }))
	assert.Equal(t, []int{5, 2, 8, 1}, nums)
}
