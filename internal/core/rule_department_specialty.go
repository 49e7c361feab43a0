package core

import (
	"context"
	"fmt"

	"hospitalcore/pkg/domain"
)

// DepartmentSpecialtyRule warns when a physician joins a department of a
// different specialty. It only inspects physicians touched by the
// transaction.
func DepartmentSpecialtyRule() domain.Rule {
	return departmentSpecialtyRule{}
}

type departmentSpecialtyRule struct{}

func (departmentSpecialtyRule) Name() string { return RuleDepartmentSpecialty }

func (departmentSpecialtyRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	checked := make(map[domain.ID]struct{})
	for _, change := range changes {
		if change.Entity != domain.EntityPhysician || change.Action == domain.ActionDelete {
			continue
		}
		if _, done := checked[change.ID]; done {
			continue
		}
		checked[change.ID] = struct{}{}

		physician, ok := view.Physician(change.ID)
		if !ok {
			continue
		}
		dept, assigned := view.PhysicianDepartment(change.ID)
		if !assigned || dept.Specialty() == physician.Specialty() {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     RuleDepartmentSpecialty,
			Severity: domain.SeverityWarn,
			Message: fmt.Sprintf("physician %s (%s) assigned to %s department %s",
				physician.FullName(), physician.Specialty(), dept.Specialty(), dept.Name()),
			Entity:   domain.EntityPhysician,
			EntityID: physician.ID(),
		})
	}
	return res, nil
}
