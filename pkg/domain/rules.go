package domain

import (
	"context"
	"fmt"
	"strings"
)

// Change describes a mutation applied to an entity during a transaction.
// Before is nil for creations and After is nil for deletions.
type Change struct {
	Entity EntityType
	Action Action
	ID     ID
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate the recorded mutations.
const (
	ActionCreate Action = "create"
	// ActionUpdate also covers relationship changes; the record itself may
	// be unchanged.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Created records the creation of a record.
func Created(entity EntityType, id ID, after any) Change {
	return Change{Entity: entity, Action: ActionCreate, ID: id, After: after}
}

// Updated records a change to a record or to one of its links.
func Updated(entity EntityType, id ID, before, after any) Change {
	return Change{Entity: entity, Action: ActionUpdate, ID: id, Before: before, After: after}
}

// Deleted records the removal of a record.
func Deleted(entity EntityType, id ID, before any) Change {
	return Change{Entity: entity, Action: ActionDelete, ID: id, Before: before}
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID ID
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	var msgs []string
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			msgs = append(msgs, fmt.Sprintf("%s: %s", v.Rule, v.Message))
		}
	}
	if len(msgs) == 0 {
		return "transaction blocked by rules"
	}
	return "transaction blocked by rules: " + strings.Join(msgs, "; ")
}

// RuleView provides read-only access to the graph for rule evaluation.
type RuleView = TransactionView

// Rule defines an evaluation executed within a transaction boundary.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view, changes)
		if err != nil {
			return Result{}, fmt.Errorf("rule %s: %w", rule.Name(), err)
		}
		combined.Merge(res)
	}
	return combined, nil
}
