package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Graph owns every registered record by id together with the relationship
// table linking them. It performs no locking; callers serialize mutations.
type Graph struct {
	hospitals    map[ID]Hospital
	departments  map[ID]Department
	rooms        map[ID]Room
	physicians   map[ID]Physician
	patients     map[ID]Patient
	histories    map[ID]ClinicalHistory
	appointments map[ID]Appointment

	hospitalDepartments   edge
	hospitalPatients      edge
	departmentPhysicians  edge
	departmentRooms       edge
	roomAppointments      edge
	physicianAppointments edge
	patientAppointments   edge
	patientHistory        map[ID]ID

	newID func() ID
	now   func() time.Time
}

// GraphOption customises a Graph.
type GraphOption func(*Graph)

// WithIDGenerator replaces the uuid-based id source.
func WithIDGenerator(fn func() ID) GraphOption {
	return func(g *Graph) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// WithGraphClock replaces time.Now for clinical history timestamps.
func WithGraphClock(fn func() time.Time) GraphOption {
	return func(g *Graph) {
		if fn != nil {
			g.now = fn
		}
	}
}

// NewGraph returns an empty registry.
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		hospitals:             make(map[ID]Hospital),
		departments:           make(map[ID]Department),
		rooms:                 make(map[ID]Room),
		physicians:            make(map[ID]Physician),
		patients:              make(map[ID]Patient),
		histories:             make(map[ID]ClinicalHistory),
		appointments:          make(map[ID]Appointment),
		hospitalDepartments:   newEdge(),
		hospitalPatients:      newEdge(),
		departmentPhysicians:  newEdge(),
		departmentRooms:       newEdge(),
		roomAppointments:      newEdge(),
		physicianAppointments: newEdge(),
		patientAppointments:   newEdge(),
		patientHistory:        make(map[ID]ID),
		newID:                 func() ID { return ID(uuid.NewString()) },
		now:                   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Clone returns a deep copy sharing no mutable state with g.
func (g *Graph) Clone() *Graph {
	return &Graph{
		hospitals:             maps.Clone(g.hospitals),
		departments:           maps.Clone(g.departments),
		rooms:                 maps.Clone(g.rooms),
		physicians:            maps.Clone(g.physicians),
		patients:              maps.Clone(g.patients),
		histories:             maps.Clone(g.histories),
		appointments:          maps.Clone(g.appointments),
		hospitalDepartments:   g.hospitalDepartments.clone(),
		hospitalPatients:      g.hospitalPatients.clone(),
		departmentPhysicians:  g.departmentPhysicians.clone(),
		departmentRooms:       g.departmentRooms.clone(),
		roomAppointments:      g.roomAppointments.clone(),
		physicianAppointments: g.physicianAppointments.clone(),
		patientAppointments:   g.patientAppointments.clone(),
		patientHistory:        maps.Clone(g.patientHistory),
		newID:                 g.newID,
		now:                   g.now,
	}
}

func (g *Graph) assignID(current ID, entity EntityType, exists func(ID) bool) (ID, error) {
	if current == "" {
		current = g.newID()
	}
	if exists(current) {
		return "", DuplicateError{Entity: entity, Key: string(current)}
	}
	return current, nil
}

func has[T any](m map[ID]T) func(ID) bool {
	return func(id ID) bool {
		_, ok := m[id]
		return ok
	}
}

// RegisterHospital stores h, assigning an id when it has none.
func (g *Graph) RegisterHospital(h Hospital) (Hospital, error) {
	id, err := g.assignID(h.id, EntityHospital, has(g.hospitals))
	if err != nil {
		return Hospital{}, err
	}
	h.id = id
	g.hospitals[id] = h
	return h, nil
}

// RegisterDepartment stores d without a hospital.
func (g *Graph) RegisterDepartment(d Department) (Department, error) {
	id, err := g.assignID(d.id, EntityDepartment, has(g.departments))
	if err != nil {
		return Department{}, err
	}
	d.id = id
	g.departments[id] = d
	return d, nil
}

// RegisterRoom stores r and attaches it to the department it was built for.
func (g *Graph) RegisterRoom(r Room) (Room, error) {
	if _, ok := g.departments[r.placement]; !ok {
		return Room{}, AssociationError{Entity: EntityRoom, Parent: EntityDepartment, ID: r.placement}
	}
	id, err := g.assignID(r.id, EntityRoom, has(g.rooms))
	if err != nil {
		return Room{}, err
	}
	dept := r.placement
	r.id = id
	r.placement = ""
	g.rooms[id] = r
	g.departmentRooms.set(id, dept)
	return r, nil
}

// RegisterPhysician stores m without a department.
func (g *Graph) RegisterPhysician(m Physician) (Physician, error) {
	id, err := g.assignID(m.id, EntityPhysician, has(g.physicians))
	if err != nil {
		return Physician{}, err
	}
	m.id = id
	g.physicians[id] = m
	return m, nil
}

// RegisterPatient stores p and opens its clinical history. Exactly one
// history exists per registered patient.
func (g *Graph) RegisterPatient(p Patient) (Patient, ClinicalHistory, error) {
	id, err := g.assignID(p.id, EntityPatient, has(g.patients))
	if err != nil {
		return Patient{}, ClinicalHistory{}, err
	}
	hid, err := g.assignID("", EntityClinicalHistory, has(g.histories))
	if err != nil {
		return Patient{}, ClinicalHistory{}, err
	}
	p.id = id
	h := ClinicalHistory{id: hid, patientID: id, openedAt: g.now()}
	g.patients[id] = p
	g.histories[hid] = h
	g.patientHistory[id] = hid
	return p, h, nil
}

// RecordAppointment stores a and appends it to the patient, physician and
// room appointment lists. All three must be registered.
func (g *Graph) RecordAppointment(a Appointment) (Appointment, error) {
	if _, ok := g.patients[a.patientID]; !ok {
		return Appointment{}, AssociationError{Entity: EntityAppointment, Parent: EntityPatient, ID: a.patientID}
	}
	if _, ok := g.physicians[a.physicianID]; !ok {
		return Appointment{}, AssociationError{Entity: EntityAppointment, Parent: EntityPhysician, ID: a.physicianID}
	}
	if _, ok := g.rooms[a.roomID]; !ok {
		return Appointment{}, AssociationError{Entity: EntityAppointment, Parent: EntityRoom, ID: a.roomID}
	}
	id, err := g.assignID(a.id, EntityAppointment, has(g.appointments))
	if err != nil {
		return Appointment{}, err
	}
	a.id = id
	g.appointments[id] = a
	g.patientAppointments.set(id, a.patientID)
	g.physicianAppointments.set(id, a.physicianID)
	g.roomAppointments.set(id, a.roomID)
	return a, nil
}

// AddDepartment attaches department to hospital, moving it from any previous
// hospital. An empty departmentID or an existing link is a no-op.
func (g *Graph) AddDepartment(hospitalID, departmentID ID) error {
	if _, ok := g.hospitals[hospitalID]; !ok {
		return NotFoundError{Entity: EntityHospital, ID: hospitalID}
	}
	if departmentID == "" {
		return nil
	}
	return g.SetDepartmentHospital(departmentID, hospitalID)
}

// SetDepartmentHospital re-parents a department. An empty hospitalID detaches it.
func (g *Graph) SetDepartmentHospital(departmentID, hospitalID ID) error {
	if _, ok := g.departments[departmentID]; !ok {
		return NotFoundError{Entity: EntityDepartment, ID: departmentID}
	}
	if hospitalID != "" {
		if _, ok := g.hospitals[hospitalID]; !ok {
			return NotFoundError{Entity: EntityHospital, ID: hospitalID}
		}
	}
	g.hospitalDepartments.set(departmentID, hospitalID)
	return nil
}

// AddPatient attaches patient to hospital. An empty patientID or an existing
// link is a no-op.
func (g *Graph) AddPatient(hospitalID, patientID ID) error {
	if _, ok := g.hospitals[hospitalID]; !ok {
		return NotFoundError{Entity: EntityHospital, ID: hospitalID}
	}
	if patientID == "" {
		return nil
	}
	return g.SetPatientHospital(patientID, hospitalID)
}

// SetPatientHospital re-parents a patient. An empty hospitalID detaches it.
func (g *Graph) SetPatientHospital(patientID, hospitalID ID) error {
	if _, ok := g.patients[patientID]; !ok {
		return NotFoundError{Entity: EntityPatient, ID: patientID}
	}
	if hospitalID != "" {
		if _, ok := g.hospitals[hospitalID]; !ok {
			return NotFoundError{Entity: EntityHospital, ID: hospitalID}
		}
	}
	g.hospitalPatients.set(patientID, hospitalID)
	return nil
}

// AddPhysician attaches physician to department. An empty physicianID or an
// existing link is a no-op.
func (g *Graph) AddPhysician(departmentID, physicianID ID) error {
	if _, ok := g.departments[departmentID]; !ok {
		return NotFoundError{Entity: EntityDepartment, ID: departmentID}
	}
	if physicianID == "" {
		return nil
	}
	return g.SetPhysicianDepartment(physicianID, departmentID)
}

// SetPhysicianDepartment re-parents a physician. An empty departmentID
// unassigns it.
func (g *Graph) SetPhysicianDepartment(physicianID, departmentID ID) error {
	if _, ok := g.physicians[physicianID]; !ok {
		return NotFoundError{Entity: EntityPhysician, ID: physicianID}
	}
	if departmentID != "" {
		if _, ok := g.departments[departmentID]; !ok {
			return NotFoundError{Entity: EntityDepartment, ID: departmentID}
		}
	}
	g.departmentPhysicians.set(physicianID, departmentID)
	return nil
}

// CreateRoom builds, registers and attaches a room in one step.
func (g *Graph) CreateRoom(departmentID ID, number, roomType string) (Room, error) {
	r, err := NewRoom(RoomParams{Number: number, Type: roomType, Department: departmentID})
	if err != nil {
		return Room{}, err
	}
	return g.RegisterRoom(r)
}

// SetRoomDepartment moves a room. Rooms cannot be left without a department.
func (g *Graph) SetRoomDepartment(roomID, departmentID ID) error {
	if _, ok := g.rooms[roomID]; !ok {
		return NotFoundError{Entity: EntityRoom, ID: roomID}
	}
	if _, ok := g.departments[departmentID]; !ok {
		return AssociationError{Entity: EntityRoom, Parent: EntityDepartment, ID: departmentID}
	}
	g.departmentRooms.set(roomID, departmentID)
	return nil
}

// SetAppointmentStatus replaces the status of an appointment. List membership
// is unaffected.
func (g *Graph) SetAppointmentStatus(id ID, status AppointmentStatus) (Appointment, error) {
	a, ok := g.appointments[id]
	if !ok {
		return Appointment{}, NotFoundError{Entity: EntityAppointment, ID: id}
	}
	if !status.Valid() {
		return Appointment{}, &ValidationError{Field: "status", Reason: "must be a known appointment status"}
	}
	a.status = status
	g.appointments[id] = a
	return a, nil
}

// RemoveAppointment drops an appointment from every list that holds it.
func (g *Graph) RemoveAppointment(id ID) ([]Change, error) {
	a, ok := g.appointments[id]
	if !ok {
		return nil, NotFoundError{Entity: EntityAppointment, ID: id}
	}
	g.patientAppointments.dropChild(id)
	g.physicianAppointments.dropChild(id)
	g.roomAppointments.dropChild(id)
	delete(g.appointments, id)
	return []Change{Deleted(EntityAppointment, id, a)}, nil
}

func (g *Graph) removeAppointments(ids []ID) []Change {
	var changes []Change
	for _, id := range ids {
		c, err := g.RemoveAppointment(id)
		if err == nil {
			changes = append(changes, c...)
		}
	}
	return changes
}

// RemoveRoom deletes a room and its appointments.
func (g *Graph) RemoveRoom(id ID) ([]Change, error) {
	r, ok := g.rooms[id]
	if !ok {
		return nil, NotFoundError{Entity: EntityRoom, ID: id}
	}
	changes := g.removeAppointments(g.roomAppointments.childrenOf(id))
	g.departmentRooms.dropChild(id)
	delete(g.rooms, id)
	return append(changes, Deleted(EntityRoom, id, r)), nil
}

// RemovePhysician deletes a physician and its appointments.
func (g *Graph) RemovePhysician(id ID) ([]Change, error) {
	m, ok := g.physicians[id]
	if !ok {
		return nil, NotFoundError{Entity: EntityPhysician, ID: id}
	}
	changes := g.removeAppointments(g.physicianAppointments.childrenOf(id))
	g.departmentPhysicians.dropChild(id)
	delete(g.physicians, id)
	return append(changes, Deleted(EntityPhysician, id, m)), nil
}

// RemovePatient deletes a patient, its clinical history and its appointments.
func (g *Graph) RemovePatient(id ID) ([]Change, error) {
	p, ok := g.patients[id]
	if !ok {
		return nil, NotFoundError{Entity: EntityPatient, ID: id}
	}
	changes := g.removeAppointments(g.patientAppointments.childrenOf(id))
	if hid, ok := g.patientHistory[id]; ok {
		changes = append(changes, Deleted(EntityClinicalHistory, hid, g.histories[hid]))
		delete(g.histories, hid)
		delete(g.patientHistory, id)
	}
	g.hospitalPatients.dropChild(id)
	delete(g.patients, id)
	return append(changes, Deleted(EntityPatient, id, p)), nil
}

// RemoveDepartment deletes a department. Its physicians stay registered but
// unassigned; its rooms are deleted since a room cannot exist without one.
func (g *Graph) RemoveDepartment(id ID) ([]Change, error) {
	d, ok := g.departments[id]
	if !ok {
		return nil, NotFoundError{Entity: EntityDepartment, ID: id}
	}
	var changes []Change
	for _, mid := range g.departmentPhysicians.dropParent(id) {
		m := g.physicians[mid]
		changes = append(changes, Updated(EntityPhysician, mid, m, m))
	}
	for _, rid := range g.departmentRooms.childrenOf(id) {
		c, err := g.RemoveRoom(rid)
		if err != nil {
			return nil, err
		}
		changes = append(changes, c...)
	}
	g.hospitalDepartments.dropChild(id)
	delete(g.departments, id)
	return append(changes, Deleted(EntityDepartment, id, d)), nil
}

// RemoveHospital deletes a hospital and detaches its departments and
// patients, which remain registered.
func (g *Graph) RemoveHospital(id ID) ([]Change, error) {
	h, ok := g.hospitals[id]
	if !ok {
		return nil, NotFoundError{Entity: EntityHospital, ID: id}
	}
	var changes []Change
	for _, did := range g.hospitalDepartments.dropParent(id) {
		d := g.departments[did]
		changes = append(changes, Updated(EntityDepartment, did, d, d))
	}
	for _, pid := range g.hospitalPatients.dropParent(id) {
		p := g.patients[pid]
		changes = append(changes, Updated(EntityPatient, pid, p, p))
	}
	delete(g.hospitals, id)
	return append(changes, Deleted(EntityHospital, id, h)), nil
}
