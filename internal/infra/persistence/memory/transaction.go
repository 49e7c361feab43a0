package memory

import (
	"hospitalcore/pkg/domain"
)

// transaction is a mutation set applied to a cloned graph. Mutators shadow
// the embedded Graph methods so every change is recorded for the rules engine.
type transaction struct {
	*domain.Graph
	changes []domain.Change
}

func (tx *transaction) record(changes ...domain.Change) {
	tx.changes = append(tx.changes, changes...)
}

// CreateHospital registers a new hospital.
func (tx *transaction) CreateHospital(h domain.Hospital) (domain.Hospital, error) {
	h, err := tx.RegisterHospital(h)
	if err != nil {
		return domain.Hospital{}, err
	}
	tx.record(domain.Created(domain.EntityHospital, h.ID(), h))
	return h, nil
}

// CreateDepartment registers a new, unattached department.
func (tx *transaction) CreateDepartment(d domain.Department) (domain.Department, error) {
	d, err := tx.RegisterDepartment(d)
	if err != nil {
		return domain.Department{}, err
	}
	tx.record(domain.Created(domain.EntityDepartment, d.ID(), d))
	return d, nil
}

// CreateRoom registers a room under the department it was built for.
func (tx *transaction) CreateRoom(r domain.Room) (domain.Room, error) {
	r, err := tx.RegisterRoom(r)
	if err != nil {
		return domain.Room{}, err
	}
	tx.record(domain.Created(domain.EntityRoom, r.ID(), r))
	return r, nil
}

// CreatePhysician registers a new, unassigned physician.
func (tx *transaction) CreatePhysician(m domain.Physician) (domain.Physician, error) {
	m, err := tx.RegisterPhysician(m)
	if err != nil {
		return domain.Physician{}, err
	}
	tx.record(domain.Created(domain.EntityPhysician, m.ID(), m))
	return m, nil
}

// CreatePatient registers a patient together with its clinical history.
func (tx *transaction) CreatePatient(p domain.Patient) (domain.Patient, domain.ClinicalHistory, error) {
	p, h, err := tx.RegisterPatient(p)
	if err != nil {
		return domain.Patient{}, domain.ClinicalHistory{}, err
	}
	tx.record(
		domain.Created(domain.EntityPatient, p.ID(), p),
		domain.Created(domain.EntityClinicalHistory, h.ID(), h),
	)
	return p, h, nil
}

// CreateAppointment records an appointment on its patient, physician and room.
func (tx *transaction) CreateAppointment(a domain.Appointment) (domain.Appointment, error) {
	a, err := tx.RecordAppointment(a)
	if err != nil {
		return domain.Appointment{}, err
	}
	tx.record(domain.Created(domain.EntityAppointment, a.ID(), a))
	return a, nil
}

// relink runs a relationship mutation and records it as an update of child.
func relink[T any](tx *transaction, entity domain.EntityType, child domain.ID, find func(domain.ID) (T, bool), mutate func() error) error {
	if err := mutate(); err != nil {
		return err
	}
	if child == "" {
		return nil
	}
	if rec, ok := find(child); ok {
		tx.record(domain.Updated(entity, child, rec, rec))
	}
	return nil
}

func (tx *transaction) AddDepartment(hospitalID, departmentID domain.ID) error {
	return relink(tx, domain.EntityDepartment, departmentID, tx.Department, func() error {
		return tx.Graph.AddDepartment(hospitalID, departmentID)
	})
}

func (tx *transaction) SetDepartmentHospital(departmentID, hospitalID domain.ID) error {
	return relink(tx, domain.EntityDepartment, departmentID, tx.Department, func() error {
		return tx.Graph.SetDepartmentHospital(departmentID, hospitalID)
	})
}

func (tx *transaction) AddPatient(hospitalID, patientID domain.ID) error {
	return relink(tx, domain.EntityPatient, patientID, tx.Patient, func() error {
		return tx.Graph.AddPatient(hospitalID, patientID)
	})
}

func (tx *transaction) SetPatientHospital(patientID, hospitalID domain.ID) error {
	return relink(tx, domain.EntityPatient, patientID, tx.Patient, func() error {
		return tx.Graph.SetPatientHospital(patientID, hospitalID)
	})
}

func (tx *transaction) AddPhysician(departmentID, physicianID domain.ID) error {
	return relink(tx, domain.EntityPhysician, physicianID, tx.Physician, func() error {
		return tx.Graph.AddPhysician(departmentID, physicianID)
	})
}

func (tx *transaction) SetPhysicianDepartment(physicianID, departmentID domain.ID) error {
	return relink(tx, domain.EntityPhysician, physicianID, tx.Physician, func() error {
		return tx.Graph.SetPhysicianDepartment(physicianID, departmentID)
	})
}

func (tx *transaction) SetRoomDepartment(roomID, departmentID domain.ID) error {
	return relink(tx, domain.EntityRoom, roomID, tx.Room, func() error {
		return tx.Graph.SetRoomDepartment(roomID, departmentID)
	})
}

// SetAppointmentStatus changes an appointment's status.
func (tx *transaction) SetAppointmentStatus(id domain.ID, status domain.AppointmentStatus) (domain.Appointment, error) {
	before, _ := tx.Appointment(id)
	after, err := tx.Graph.SetAppointmentStatus(id, status)
	if err != nil {
		return domain.Appointment{}, err
	}
	tx.record(domain.Updated(domain.EntityAppointment, id, before, after))
	return after, nil
}

func (tx *transaction) remove(fn func(domain.ID) ([]domain.Change, error), id domain.ID) error {
	changes, err := fn(id)
	if err != nil {
		return err
	}
	tx.record(changes...)
	return nil
}

// DeleteHospital removes a hospital together with its departments (and their
// rooms) and its patients.
func (tx *transaction) DeleteHospital(id domain.ID) error {
	if _, ok := tx.Hospital(id); !ok {
		return domain.NotFoundError{Entity: domain.EntityHospital, ID: id}
	}
	for _, d := range tx.HospitalDepartments(id) {
		if err := tx.DeleteDepartment(d.ID()); err != nil {
			return err
		}
	}
	for _, p := range tx.HospitalPatients(id) {
		if err := tx.DeletePatient(p.ID()); err != nil {
			return err
		}
	}
	return tx.remove(tx.RemoveHospital, id)
}

// DeleteDepartment removes a department and its rooms; its physicians stay
// registered without a department.
func (tx *transaction) DeleteDepartment(id domain.ID) error {
	return tx.remove(tx.RemoveDepartment, id)
}

// DeleteRoom removes a room and the appointments booked in it.
func (tx *transaction) DeleteRoom(id domain.ID) error {
	return tx.remove(tx.RemoveRoom, id)
}

// DeletePhysician removes a physician and its appointments.
func (tx *transaction) DeletePhysician(id domain.ID) error {
	return tx.remove(tx.RemovePhysician, id)
}

// DeletePatient removes a patient, its clinical history and its appointments.
func (tx *transaction) DeletePatient(id domain.ID) error {
	return tx.remove(tx.RemovePatient, id)
}

// DeleteAppointment removes an appointment from every list holding it.
func (tx *transaction) DeleteAppointment(id domain.ID) error {
	return tx.remove(tx.RemoveAppointment, id)
}
