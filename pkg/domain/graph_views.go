package domain

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// Every view returns a fresh slice; callers may modify it freely without
// touching the graph.

func lookup[T any](m map[ID]T, ids []ID) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if v, ok := m[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

func sortedValues[T any](m map[ID]T) []T {
	keys := slices.Sorted(maps.Keys(m))
	return lookup(m, keys)
}

// HospitalDepartments lists the hospital's departments in attach order.
func (g *Graph) HospitalDepartments(id ID) []Department {
	return lookup(g.departments, g.hospitalDepartments.childrenOf(id))
}

// HospitalPatients lists the hospital's patients in attach order.
func (g *Graph) HospitalPatients(id ID) []Patient {
	return lookup(g.patients, g.hospitalPatients.childrenOf(id))
}

// DepartmentPhysicians lists the department's physicians in attach order.
func (g *Graph) DepartmentPhysicians(id ID) []Physician {
	return lookup(g.physicians, g.departmentPhysicians.childrenOf(id))
}

// DepartmentRooms lists the department's rooms in attach order.
func (g *Graph) DepartmentRooms(id ID) []Room {
	return lookup(g.rooms, g.departmentRooms.childrenOf(id))
}

// RoomAppointments lists appointments booked in the room in record order.
func (g *Graph) RoomAppointments(id ID) []Appointment {
	return lookup(g.appointments, g.roomAppointments.childrenOf(id))
}

// PhysicianAppointments lists the physician's appointments in record order.
func (g *Graph) PhysicianAppointments(id ID) []Appointment {
	return lookup(g.appointments, g.physicianAppointments.childrenOf(id))
}

// PatientAppointments lists the patient's appointments in record order.
func (g *Graph) PatientAppointments(id ID) []Appointment {
	return lookup(g.appointments, g.patientAppointments.childrenOf(id))
}

// DepartmentHospital returns the hospital owning the department, if any.
func (g *Graph) DepartmentHospital(id ID) (Hospital, bool) {
	return parentRecord(g.hospitalDepartments, g.hospitals, id)
}

// PatientHospital returns the hospital the patient is registered with, if any.
func (g *Graph) PatientHospital(id ID) (Hospital, bool) {
	return parentRecord(g.hospitalPatients, g.hospitals, id)
}

// PhysicianDepartment returns the physician's department, if assigned.
func (g *Graph) PhysicianDepartment(id ID) (Department, bool) {
	return parentRecord(g.departmentPhysicians, g.departments, id)
}

// RoomDepartment returns the room's department. It is always set for a
// registered room.
func (g *Graph) RoomDepartment(id ID) (Department, bool) {
	return parentRecord(g.departmentRooms, g.departments, id)
}

// PatientHistory returns the clinical history opened for the patient.
func (g *Graph) PatientHistory(id ID) (ClinicalHistory, bool) {
	hid, ok := g.patientHistory[id]
	if !ok {
		return ClinicalHistory{}, false
	}
	h, ok := g.histories[hid]
	return h, ok
}

func parentRecord[T any](e edge, m map[ID]T, child ID) (T, bool) {
	var zero T
	pid, ok := e.parentOf(child)
	if !ok {
		return zero, false
	}
	v, ok := m[pid]
	return v, ok
}

func (g *Graph) Hospital(id ID) (Hospital, bool) {
	v, ok := g.hospitals[id]
	return v, ok
}

func (g *Graph) Department(id ID) (Department, bool) {
	v, ok := g.departments[id]
	return v, ok
}

func (g *Graph) Room(id ID) (Room, bool) {
	v, ok := g.rooms[id]
	return v, ok
}

func (g *Graph) Physician(id ID) (Physician, bool) {
	v, ok := g.physicians[id]
	return v, ok
}

func (g *Graph) Patient(id ID) (Patient, bool) {
	v, ok := g.patients[id]
	return v, ok
}

func (g *Graph) Appointment(id ID) (Appointment, bool) {
	v, ok := g.appointments[id]
	return v, ok
}

// Hospitals lists every hospital ordered by id. The remaining list methods
// follow the same ordering.
func (g *Graph) Hospitals() []Hospital {
	return sortedValues(g.hospitals)
}

func (g *Graph) Departments() []Department {
	return sortedValues(g.departments)
}

func (g *Graph) Rooms() []Room {
	return sortedValues(g.rooms)
}

func (g *Graph) Physicians() []Physician {
	return sortedValues(g.physicians)
}

func (g *Graph) Patients() []Patient {
	return sortedValues(g.patients)
}

func (g *Graph) ClinicalHistories() []ClinicalHistory {
	return sortedValues(g.histories)
}

func (g *Graph) Appointments() []Appointment {
	return sortedValues(g.appointments)
}

// FindPhysicianByLicense looks a physician up by license number.
func (g *Graph) FindPhysicianByLicense(license string) (Physician, bool) {
	for _, m := range g.Physicians() {
		if m.license.String() == license {
			return m, true
		}
	}
	return Physician{}, false
}

// FindPatientByDNI looks a patient up by DNI.
func (g *Graph) FindPatientByDNI(dni string) (Patient, bool) {
	for _, p := range g.Patients() {
		if p.DNI() == dni {
			return p, true
		}
	}
	return Patient{}, false
}

// FindPersonByDNI returns every registered person carrying dni, physicians
// first. A physician may also be registered as a patient.
func (g *Graph) FindPersonByDNI(dni string) []Actor {
	var out []Actor
	for _, m := range g.Physicians() {
		if m.DNI() == dni {
			out = append(out, m.Actor())
		}
	}
	for _, p := range g.Patients() {
		if p.DNI() == dni {
			out = append(out, p.Actor())
		}
	}
	return out
}

// FindRoomByNumber looks a room up by its number.
func (g *Graph) FindRoomByNumber(number string) (Room, bool) {
	for _, r := range g.Rooms() {
		if r.number == number {
			return r, true
		}
	}
	return Room{}, false
}

// FindHospitalByName looks a hospital up by exact name.
func (g *Graph) FindHospitalByName(name string) (Hospital, bool) {
	for _, h := range g.Hospitals() {
		if h.name == name {
			return h, true
		}
	}
	return Hospital{}, false
}

// IntegrityIssue describes one broken relationship found by Verify.
type IntegrityIssue struct {
	Entity  EntityType
	ID      ID
	Problem string
}

func (i IntegrityIssue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Entity, i.ID, i.Problem)
}

// Verify checks every relationship in both directions and returns the
// problems found, ordered by entity and id. A consistent graph returns nil.
func (g *Graph) Verify() []IntegrityIssue {
	var issues []IntegrityIssue
	report := func(entity EntityType, id ID, format string, args ...any) {
		issues = append(issues, IntegrityIssue{Entity: entity, ID: id, Problem: fmt.Sprintf(format, args...)})
	}
	checkEdge := func(e edge, child, parent EntityType, children, parents func(ID) bool) {
		for c, p := range e.parent {
			if !children(c) {
				report(child, c, "linked but not registered")
			}
			if !parents(p) {
				report(child, c, "linked to unknown %s %s", parent, p)
			}
			if !e.contains(p, c) {
				report(child, c, "missing from %s %s", parent, p)
			}
		}
		for p, kids := range e.children {
			seen := make(map[ID]struct{}, len(kids))
			for _, c := range kids {
				if _, dup := seen[c]; dup {
					report(parent, p, "lists %s %s twice", child, c)
				}
				seen[c] = struct{}{}
				if got, ok := e.parent[c]; !ok || got != p {
					report(parent, p, "lists %s %s which points elsewhere", child, c)
				}
			}
		}
	}
	checkEdge(g.hospitalDepartments, EntityDepartment, EntityHospital, has(g.departments), has(g.hospitals))
	checkEdge(g.hospitalPatients, EntityPatient, EntityHospital, has(g.patients), has(g.hospitals))
	checkEdge(g.departmentPhysicians, EntityPhysician, EntityDepartment, has(g.physicians), has(g.departments))
	checkEdge(g.departmentRooms, EntityRoom, EntityDepartment, has(g.rooms), has(g.departments))
	checkEdge(g.roomAppointments, EntityAppointment, EntityRoom, has(g.appointments), has(g.rooms))
	checkEdge(g.physicianAppointments, EntityAppointment, EntityPhysician, has(g.appointments), has(g.physicians))
	checkEdge(g.patientAppointments, EntityAppointment, EntityPatient, has(g.appointments), has(g.patients))

	for id := range g.rooms {
		if _, ok := g.departmentRooms.parentOf(id); !ok {
			report(EntityRoom, id, "has no department")
		}
	}
	for id := range g.patients {
		hid, ok := g.patientHistory[id]
		if !ok {
			report(EntityPatient, id, "has no clinical history")
			continue
		}
		if h, ok := g.histories[hid]; !ok || h.patientID != id {
			report(EntityPatient, id, "clinical history %s does not belong to it", hid)
		}
	}
	for id, h := range g.histories {
		if g.patientHistory[h.patientID] != id {
			report(EntityClinicalHistory, id, "orphaned from patient %s", h.patientID)
		}
	}
	for id, a := range g.appointments {
		if p, _ := g.patientAppointments.parentOf(id); p != a.patientID {
			report(EntityAppointment, id, "not listed under patient %s", a.patientID)
		}
		if p, _ := g.physicianAppointments.parentOf(id); p != a.physicianID {
			report(EntityAppointment, id, "not listed under physician %s", a.physicianID)
		}
		if p, _ := g.roomAppointments.parentOf(id); p != a.roomID {
			report(EntityAppointment, id, "not listed under room %s", a.roomID)
		}
	}

	slices.SortFunc(issues, func(a, b IntegrityIssue) int {
		return cmp.Or(cmp.Compare(a.Entity, b.Entity), cmp.Compare(a.ID, b.ID), cmp.Compare(a.Problem, b.Problem))
	})
	return issues
}
