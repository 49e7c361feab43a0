package domain

import (
	"regexp"
	"strings"
	"time"
)

var (
	dniPattern     = regexp.MustCompile(`^\d{7,8}$`)
	licensePattern = regexp.MustCompile(`^MP-\d{4,6}$`)
)

// RequireNonBlank returns value unchanged unless it is empty or whitespace.
func RequireNonBlank(value, field string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", &ValidationError{Field: field, Reason: "must not be blank"}
	}
	return value, nil
}

// RequireDNI accepts exactly 7 or 8 decimal digits.
func RequireDNI(value string) (string, error) {
	if !dniPattern.MatchString(value) {
		return "", &ValidationError{Field: "dni", Reason: "must have 7 or 8 digits"}
	}
	return value, nil
}

// RequireLicense accepts MP- followed by 4 to 6 digits.
func RequireLicense(value string) (string, error) {
	if !licensePattern.MatchString(value) {
		return "", &ValidationError{Field: "license_number", Reason: "must look like MP-12345"}
	}
	return value, nil
}

// guard runs validators in order and keeps the first failure, so a
// constructor can check every field and return once.
type guard struct {
	err error
}

func (g *guard) nonBlank(value, field string) string {
	if g.err != nil {
		return value
	}
	out, err := RequireNonBlank(value, field)
	g.err = err
	return out
}

func (g *guard) dni(value string) string {
	if g.err != nil {
		return value
	}
	out, err := RequireDNI(value)
	g.err = err
	return out
}

func (g *guard) id(value ID, field string) ID {
	if g.err == nil && strings.TrimSpace(string(value)) == "" {
		g.err = &ValidationError{Field: field, Reason: "must not be empty"}
	}
	return value
}

func (g *guard) date(value time.Time, field string) time.Time {
	if g.err == nil && value.IsZero() {
		g.err = &ValidationError{Field: field, Reason: "must be set"}
	}
	return value
}

func (g *guard) check(ok bool, field, reason string) {
	if g.err == nil && !ok {
		g.err = &ValidationError{Field: field, Reason: reason}
	}
}
