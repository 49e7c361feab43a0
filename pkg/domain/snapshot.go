package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Snapshot is the serialisable form of a Graph. Each field maps to one
// persistence bucket.
type Snapshot struct {
	Hospitals    map[ID]Hospital        `json:"hospitals"`
	Departments  map[ID]Department      `json:"departments"`
	Rooms        map[ID]Room            `json:"rooms"`
	Physicians   map[ID]Physician       `json:"physicians"`
	Patients     map[ID]Patient         `json:"patients"`
	Histories    map[ID]ClinicalHistory `json:"clinical_histories"`
	Appointments map[ID]Appointment     `json:"appointments"`
	Links        Links                  `json:"links"`
}

// Links holds the ordered child lists of every relationship keyed by parent id.
type Links struct {
	HospitalDepartments   map[ID][]ID `json:"hospital_departments"`
	HospitalPatients      map[ID][]ID `json:"hospital_patients"`
	DepartmentPhysicians  map[ID][]ID `json:"department_physicians"`
	DepartmentRooms       map[ID][]ID `json:"department_rooms"`
	RoomAppointments      map[ID][]ID `json:"room_appointments"`
	PhysicianAppointments map[ID][]ID `json:"physician_appointments"`
	PatientAppointments   map[ID][]ID `json:"patient_appointments"`
}

// Snapshot copies the graph into its serialisable form.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{
		Hospitals:    maps.Clone(g.hospitals),
		Departments:  maps.Clone(g.departments),
		Rooms:        maps.Clone(g.rooms),
		Physicians:   maps.Clone(g.physicians),
		Patients:     maps.Clone(g.patients),
		Histories:    maps.Clone(g.histories),
		Appointments: maps.Clone(g.appointments),
		Links: Links{
			HospitalDepartments:   g.hospitalDepartments.links(),
			HospitalPatients:      g.hospitalPatients.links(),
			DepartmentPhysicians:  g.departmentPhysicians.links(),
			DepartmentRooms:       g.departmentRooms.links(),
			RoomAppointments:      g.roomAppointments.links(),
			PhysicianAppointments: g.physicianAppointments.links(),
			PatientAppointments:   g.patientAppointments.links(),
		},
	}
}

// ErrInconsistentSnapshot is returned by GraphFromSnapshot when the restored
// relationships do not verify.
var ErrInconsistentSnapshot = errors.New("inconsistent snapshot")

// GraphFromSnapshot rebuilds a Graph and verifies it. Map keys take
// precedence over ids stored inside the records.
func GraphFromSnapshot(s Snapshot, opts ...GraphOption) (*Graph, error) {
	g := NewGraph(opts...)
	restore(g.hospitals, s.Hospitals, func(v *Hospital, id ID) { v.id = id })
	restore(g.departments, s.Departments, func(v *Department, id ID) { v.id = id })
	restore(g.rooms, s.Rooms, func(v *Room, id ID) { v.id = id; v.placement = "" })
	restore(g.physicians, s.Physicians, func(v *Physician, id ID) { v.id = id })
	restore(g.patients, s.Patients, func(v *Patient, id ID) { v.id = id })
	restore(g.histories, s.Histories, func(v *ClinicalHistory, id ID) { v.id = id })
	restore(g.appointments, s.Appointments, func(v *Appointment, id ID) { v.id = id })
	for id, h := range g.histories {
		g.patientHistory[h.patientID] = id
	}

	restoreEdge(g.hospitalDepartments, s.Links.HospitalDepartments)
	restoreEdge(g.hospitalPatients, s.Links.HospitalPatients)
	restoreEdge(g.departmentPhysicians, s.Links.DepartmentPhysicians)
	restoreEdge(g.departmentRooms, s.Links.DepartmentRooms)
	restoreEdge(g.roomAppointments, s.Links.RoomAppointments)
	restoreEdge(g.physicianAppointments, s.Links.PhysicianAppointments)
	restoreEdge(g.patientAppointments, s.Links.PatientAppointments)

	if issues := g.Verify(); len(issues) > 0 {
		return nil, fmt.Errorf("%w: %s (and %d more)", ErrInconsistentSnapshot, issues[0], len(issues)-1)
	}
	return g, nil
}

func restore[T any](dst, src map[ID]T, setID func(*T, ID)) {
	for id, v := range src {
		setID(&v, id)
		dst[id] = v
	}
}

// restoreEdge replays links in stored order so child lists keep their order.
// Parents are visited in sorted order so a child listed twice resolves the
// same way on every run; Verify reports it either way.
func restoreEdge(e edge, links map[ID][]ID) {
	for _, parent := range slices.Sorted(maps.Keys(links)) {
		for _, child := range links[parent] {
			if _, claimed := e.parent[child]; !claimed {
				e.parent[child] = parent
			}
			e.children[parent] = append(e.children[parent], child)
		}
	}
}
