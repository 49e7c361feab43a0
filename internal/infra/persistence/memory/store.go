// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"sync"
	"time"

	"hospitalcore/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var (
	_ domain.PersistentStore = (*Store)(nil)
	_ domain.Transaction     = (*transaction)(nil)
)

// Store provides an in-memory transactional store for the hospital graph.
// Each transaction works on a clone that replaces the live graph on commit.
type Store struct {
	mu     sync.RWMutex
	graph  *domain.Graph
	engine *domain.RulesEngine
	opts   []domain.GraphOption
	hook   CommitHook
}

// CommitHook receives the state about to replace the live graph. It runs
// under the store's write lock; an error aborts the commit and keeps the
// previous graph.
type CommitHook func(ctx context.Context, next domain.Snapshot) error

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine, opts ...domain.GraphOption) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		graph:  domain.NewGraph(opts...),
		engine: engine,
		opts:   opts,
	}
}

// RulesEngine exposes the configured engine.
func (s *Store) RulesEngine() *domain.RulesEngine {
	return s.engine
}

// SetCommitHook installs hook for every later commit and import.
func (s *Store) SetCommitHook(hook CommitHook) {
	s.mu.Lock()
	s.hook = hook
	s.mu.Unlock()
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Errors from fn, rule evaluation failures, blocking violations and commit
// hook failures leave the store untouched.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) (domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{Graph: s.graph.Clone()}
	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	res, err := s.engine.Evaluate(ctx, tx.Graph, tx.changes)
	if err != nil {
		return domain.Result{}, err
	}
	if res.HasBlocking() {
		return res, domain.RuleViolationError{Result: res}
	}

	if err := s.commit(ctx, tx.Graph); err != nil {
		return res, err
	}
	return res, nil
}

// commit must be called with the write lock held.
func (s *Store) commit(ctx context.Context, g *domain.Graph) error {
	if s.hook != nil {
		if err := s.hook(ctx, g.Snapshot()); err != nil {
			return err
		}
	}
	s.graph = g
	return nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.graph.Clone()
	s.mu.RUnlock()
	return fn(snapshot)
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Snapshot()
}

// ImportState replaces the store state with the provided snapshot after
// verifying its relationships and evaluating the rules engine over the whole
// graph. A blocking result rejects the import with domain.RuleViolationError.
func (s *Store) ImportState(snapshot domain.Snapshot) error {
	g, err := domain.GraphFromSnapshot(snapshot, s.opts...)
	if err != nil {
		return err
	}
	ctx := context.Background()
	res, err := s.engine.Evaluate(ctx, g, nil)
	if err != nil {
		return err
	}
	if res.HasBlocking() {
		return domain.RuleViolationError{Result: res}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, g)
}

// read returns the committed graph. It is never mutated in place, so callers
// may keep using it after the lock is released.
func (s *Store) read() *domain.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// FindPhysicianByLicense looks a physician up by license number.
func (s *Store) FindPhysicianByLicense(license string) (domain.Physician, bool) {
	return s.read().FindPhysicianByLicense(license)
}

// FindPatientByDNI looks a patient up by DNI.
func (s *Store) FindPatientByDNI(dni string) (domain.Patient, bool) {
	return s.read().FindPatientByDNI(dni)
}

// PhysiciansBySpecialty lists physicians of a specialty ordered by surname.
func (s *Store) PhysiciansBySpecialty(sp domain.Specialty) []domain.Physician {
	return domain.PhysiciansBySpecialty(s.read(), sp)
}

// UpcomingAppointments lists active appointments after the instant, earliest first.
func (s *Store) UpcomingAppointments(after time.Time) []domain.Appointment {
	return domain.UpcomingAppointments(s.read(), after)
}

// CountPatients counts the patients registered with a hospital.
func (s *Store) CountPatients(hospitalID domain.ID) int {
	return domain.CountPatients(s.read(), hospitalID)
}

// CountAppointmentsByStatus tallies appointments per status.
func (s *Store) CountAppointmentsByStatus() map[domain.AppointmentStatus]int {
	return domain.CountAppointmentsByStatus(s.read())
}
