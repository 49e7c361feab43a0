package core

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"hospitalcore/internal/infra/persistence/memory"
	"hospitalcore/internal/scheduling"
	"hospitalcore/pkg/domain"
)

// Service exposes transactional operations over the hospital graph. Every
// mutation runs in one store transaction and is traced, measured, logged and
// audited.
type Service struct {
	store     domain.PersistentStore
	scheduler domain.Scheduler
	logger    zerolog.Logger
	metrics   MetricsRecorder
	tracer    Tracer
	audit     AuditRecorder
	clock     Clock
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger used for transaction events.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetricsRecorder sets the metrics sink. Nil keeps the no-op recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the span factory. Nil keeps the no-op tracer.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithAuditRecorder sets the audit sink. Nil keeps the no-op recorder.
func WithAuditRecorder(a AuditRecorder) Option {
	return func(s *Service) {
		if a != nil {
			s.audit = a
		}
	}
}

// WithScheduler replaces the default appointment scheduler.
func WithScheduler(sch domain.Scheduler) Option {
	return func(s *Service) {
		if sch != nil {
			s.scheduler = sch
		}
	}
}

// WithClock sets the time source for durations, audit timestamps, upcoming
// appointment reports and the default scheduler.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		logger:  zerolog.Nop(),
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		audit:   noopAudit{},
		clock:   ClockFunc(time.Now),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scheduler == nil {
		s.scheduler = scheduling.NewManager(scheduling.WithClock(s.clock.Now))
	}
	return s
}

// NewInMemoryService creates a service over an in-memory store with the given
// rules engine. A nil engine uses NewDefaultRulesEngine.
func NewInMemoryService(engine *domain.RulesEngine, opts ...Option) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// Close releases the store when it holds external resources.
func (s *Service) Close() error {
	if c, ok := s.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type operation struct {
	name   string
	entity domain.EntityType
	action domain.Action
}

// run executes fn in a store transaction. fn returns the id of the primary
// record it touched, which is reported in the audit entry.
func (s *Service) run(ctx context.Context, op operation, fn func(tx domain.Transaction) (domain.ID, error)) (domain.Result, error) {
	ctx, span := s.tracer.Start(ctx, op.name)
	started := s.clock.Now()

	var id domain.ID
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		id, err = fn(tx)
		return err
	})

	s.finish(ctx, span, op, started, id, res, err)
	return res, err
}

// finish closes the span and reports the operation to metrics, the log and
// the audit trail.
func (s *Service) finish(ctx context.Context, span TraceSpan, op operation, started time.Time, id domain.ID, res domain.Result, err error) {
	elapsed := s.clock.Now().Sub(started)
	span.End(err)
	s.metrics.Observe(ctx, op.name, err == nil, elapsed)
	s.metrics.ObserveViolations(ctx, res)

	entry := AuditEntry{
		Operation:  op.name,
		Entity:     op.entity,
		Action:     op.action,
		EntityID:   id,
		Status:     AuditStatusSuccess,
		Violations: len(res.Violations),
		Duration:   elapsed,
		Timestamp:  started,
	}
	event := s.logger.Debug()
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
		event = s.logger.Warn().Err(err)
		var blocked domain.RuleViolationError
		if errors.As(err, &blocked) {
			event = event.Bool("blocked", true)
		}
	}
	event.
		Str("operation", op.name).
		Str("entity_id", string(id)).
		Int("violations", len(res.Violations)).
		Dur("duration", elapsed).
		Msg("transaction")
	for _, v := range res.Violations {
		if v.Severity == domain.SeverityWarn {
			s.logger.Warn().
				Str("rule", v.Rule).
				Str("entity", string(v.Entity)).
				Str("entity_id", string(v.EntityID)).
				Msg(v.Message)
		}
	}
	s.audit.Record(ctx, entry)
}

// RunInTransaction runs fn as one named unit of work with the same
// reporting as the typed operations. Use it to apply several mutations
// atomically.
func (s *Service) RunInTransaction(ctx context.Context, name string, fn func(tx domain.Transaction) error) (domain.Result, error) {
	return s.run(ctx, operation{name: name, action: domain.ActionUpdate}, func(tx domain.Transaction) (domain.ID, error) {
		return "", fn(tx)
	})
}

// CreateHospital registers a new hospital.
func (s *Service) CreateHospital(ctx context.Context, hospital domain.Hospital) (domain.Hospital, domain.Result, error) {
	var created domain.Hospital
	res, err := s.run(ctx, operation{"create_hospital", domain.EntityHospital, domain.ActionCreate}, func(tx domain.Transaction) (domain.ID, error) {
		var err error
		created, err = tx.CreateHospital(hospital)
		return created.ID(), err
	})
	return created, res, err
}

// CreateDepartment registers a department and, when hospitalID is set,
// attaches it to that hospital in the same transaction.
func (s *Service) CreateDepartment(ctx context.Context, department domain.Department, hospitalID domain.ID) (domain.Department, domain.Result, error) {
	var created domain.Department
	res, err := s.run(ctx, operation{"create_department", domain.EntityDepartment, domain.ActionCreate}, func(tx domain.Transaction) (domain.ID, error) {
		var err error
		if created, err = tx.CreateDepartment(department); err != nil {
			return "", err
		}
		if hospitalID != "" {
			if err := tx.AddDepartment(hospitalID, created.ID()); err != nil {
				return created.ID(), err
			}
		}
		return created.ID(), nil
	})
	return created, res, err
}

// CreateRoom registers a room under the department it names.
func (s *Service) CreateRoom(ctx context.Context, room domain.Room) (domain.Room, domain.Result, error) {
	var created domain.Room
	res, err := s.run(ctx, operation{"create_room", domain.EntityRoom, domain.ActionCreate}, func(tx domain.Transaction) (domain.ID, error) {
		var err error
		created, err = tx.CreateRoom(room)
		return created.ID(), err
	})
	return created, res, err
}

// RegisterPhysician registers a physician, optionally joining departmentID.
func (s *Service) RegisterPhysician(ctx context.Context, physician domain.Physician, departmentID domain.ID) (domain.Physician, domain.Result, error) {
	var created domain.Physician
	res, err := s.run(ctx, operation{"register_physician", domain.EntityPhysician, domain.ActionCreate}, func(tx domain.Transaction) (domain.ID, error) {
		var err error
		if created, err = tx.CreatePhysician(physician); err != nil {
			return "", err
		}
		if departmentID != "" {
			if err := tx.AddPhysician(departmentID, created.ID()); err != nil {
				return created.ID(), err
			}
		}
		return created.ID(), nil
	})
	return created, res, err
}

// AdmitPatient registers a patient, opening its clinical history, and
// attaches it to hospitalID when set.
func (s *Service) AdmitPatient(ctx context.Context, patient domain.Patient, hospitalID domain.ID) (domain.Patient, domain.ClinicalHistory, domain.Result, error) {
	var (
		created domain.Patient
		history domain.ClinicalHistory
	)
	res, err := s.run(ctx, operation{"admit_patient", domain.EntityPatient, domain.ActionCreate}, func(tx domain.Transaction) (domain.ID, error) {
		var err error
		if created, history, err = tx.CreatePatient(patient); err != nil {
			return "", err
		}
		if hospitalID != "" {
			if err := tx.AddPatient(hospitalID, created.ID()); err != nil {
				return created.ID(), err
			}
		}
		return created.ID(), nil
	})
	return created, history, res, err
}

// AssignDepartment moves a department under hospitalID.
func (s *Service) AssignDepartment(ctx context.Context, hospitalID, departmentID domain.ID) (domain.Result, error) {
	return s.run(ctx, operation{"assign_department", domain.EntityDepartment, domain.ActionUpdate}, func(tx domain.Transaction) (domain.ID, error) {
		return departmentID, tx.AddDepartment(hospitalID, departmentID)
	})
}

// AssignPhysician moves a physician into departmentID.
func (s *Service) AssignPhysician(ctx context.Context, departmentID, physicianID domain.ID) (domain.Result, error) {
	return s.run(ctx, operation{"assign_physician", domain.EntityPhysician, domain.ActionUpdate}, func(tx domain.Transaction) (domain.ID, error) {
		return physicianID, tx.AddPhysician(departmentID, physicianID)
	})
}

// TransferPatient moves a patient to hospitalID. An empty hospitalID
// discharges the patient from its current hospital.
func (s *Service) TransferPatient(ctx context.Context, patientID, hospitalID domain.ID) (domain.Result, error) {
	return s.run(ctx, operation{"transfer_patient", domain.EntityPatient, domain.ActionUpdate}, func(tx domain.Transaction) (domain.ID, error) {
		return patientID, tx.SetPatientHospital(patientID, hospitalID)
	})
}

// MoveRoom reassigns a room to another department.
func (s *Service) MoveRoom(ctx context.Context, roomID, departmentID domain.ID) (domain.Result, error) {
	return s.run(ctx, operation{"move_room", domain.EntityRoom, domain.ActionUpdate}, func(tx domain.Transaction) (domain.ID, error) {
		return roomID, tx.SetRoomDepartment(roomID, departmentID)
	})
}

// ScheduleAppointment books an appointment through the configured scheduler.
// Scheduler failures are returned as produced.
func (s *Service) ScheduleAppointment(ctx context.Context, req domain.AppointmentRequest) (domain.Appointment, domain.Result, error) {
	var booked domain.Appointment
	res, err := s.run(ctx, operation{"schedule_appointment", domain.EntityAppointment, domain.ActionCreate}, func(tx domain.Transaction) (domain.ID, error) {
		var err error
		booked, err = s.scheduler.ScheduleAppointment(ctx, tx, req)
		return booked.ID(), err
	})
	return booked, res, err
}

// UpdateAppointmentStatus moves an appointment to status.
func (s *Service) UpdateAppointmentStatus(ctx context.Context, id domain.ID, status domain.AppointmentStatus) (domain.Appointment, domain.Result, error) {
	var updated domain.Appointment
	res, err := s.run(ctx, operation{"update_appointment_status", domain.EntityAppointment, domain.ActionUpdate}, func(tx domain.Transaction) (domain.ID, error) {
		var err error
		updated, err = tx.SetAppointmentStatus(id, status)
		return id, err
	})
	return updated, res, err
}

func (s *Service) remove(ctx context.Context, name string, entity domain.EntityType, id domain.ID, del func(domain.Transaction, domain.ID) error) (domain.Result, error) {
	return s.run(ctx, operation{name, entity, domain.ActionDelete}, func(tx domain.Transaction) (domain.ID, error) {
		return id, del(tx, id)
	})
}

// DeleteHospital removes a hospital with its departments, rooms and patients.
func (s *Service) DeleteHospital(ctx context.Context, id domain.ID) (domain.Result, error) {
	return s.remove(ctx, "delete_hospital", domain.EntityHospital, id, domain.Transaction.DeleteHospital)
}

// DeleteDepartment removes a department and its rooms.
func (s *Service) DeleteDepartment(ctx context.Context, id domain.ID) (domain.Result, error) {
	return s.remove(ctx, "delete_department", domain.EntityDepartment, id, domain.Transaction.DeleteDepartment)
}

// DeleteRoom removes a room and the appointments booked in it.
func (s *Service) DeleteRoom(ctx context.Context, id domain.ID) (domain.Result, error) {
	return s.remove(ctx, "delete_room", domain.EntityRoom, id, domain.Transaction.DeleteRoom)
}

// DeletePhysician removes a physician and its appointments.
func (s *Service) DeletePhysician(ctx context.Context, id domain.ID) (domain.Result, error) {
	return s.remove(ctx, "delete_physician", domain.EntityPhysician, id, domain.Transaction.DeletePhysician)
}

// DeletePatient removes a patient, its history and its appointments.
func (s *Service) DeletePatient(ctx context.Context, id domain.ID) (domain.Result, error) {
	return s.remove(ctx, "delete_patient", domain.EntityPatient, id, domain.Transaction.DeletePatient)
}

// DeleteAppointment removes a single appointment.
func (s *Service) DeleteAppointment(ctx context.Context, id domain.ID) (domain.Result, error) {
	return s.remove(ctx, "delete_appointment", domain.EntityAppointment, id, domain.Transaction.DeleteAppointment)
}
