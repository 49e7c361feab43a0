package core

import (
	"context"

	"hospitalcore/pkg/domain"
)

// RelationshipIntegrityRule blocks any commit that leaves a two-way
// association out of sync.
func RelationshipIntegrityRule() domain.Rule {
	return relationshipIntegrityRule{}
}

type relationshipIntegrityRule struct{}

func (relationshipIntegrityRule) Name() string { return RuleRelationshipIntegrity }

func (relationshipIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, issue := range view.Verify() {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     RuleRelationshipIntegrity,
			Severity: domain.SeverityBlock,
			Message:  issue.String(),
			Entity:   issue.Entity,
			EntityID: issue.ID,
		})
	}
	return res, nil
}
