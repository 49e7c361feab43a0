package core

import (
	"context"
	"fmt"

	"hospitalcore/pkg/domain"
)

// UniqueIdentityRule blocks natural-key collisions: a DNI may appear once per
// role, license numbers, hospital names and room numbers once overall.
func UniqueIdentityRule() domain.Rule {
	return uniqueIdentityRule{}
}

type uniqueIdentityRule struct{}

func (uniqueIdentityRule) Name() string { return RuleUniqueIdentity }

func (uniqueIdentityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	seen := make(map[string]domain.ID)
	claim := func(entity domain.EntityType, field, key string, id domain.ID) {
		slot := string(entity) + "/" + field + "/" + key
		if first, dup := seen[slot]; dup {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     RuleUniqueIdentity,
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s %s %q already used by %s", entity, field, key, first),
				Entity:   entity,
				EntityID: id,
			})
			return
		}
		seen[slot] = id
	}

	for _, h := range view.Hospitals() {
		claim(domain.EntityHospital, "name", h.Name(), h.ID())
	}
	for _, r := range view.Rooms() {
		claim(domain.EntityRoom, "number", r.Number(), r.ID())
	}
	for _, m := range view.Physicians() {
		claim(domain.EntityPhysician, "dni", m.DNI(), m.ID())
		claim(domain.EntityPhysician, "license", m.License().String(), m.ID())
	}
	for _, p := range view.Patients() {
		claim(domain.EntityPatient, "dni", p.DNI(), p.ID())
	}
	return res, nil
}
