package core

import "hospitalcore/pkg/domain"

// Rule names reported in violations.
const (
	RuleRelationshipIntegrity = "relationship_integrity"
	RuleUniqueIdentity        = "unique_identity"
	RuleDepartmentSpecialty   = "department_specialty"
)

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(RelationshipIntegrityRule())
	engine.Register(UniqueIdentityRule())
	engine.Register(DepartmentSpecialtyRule())
	return engine
}
