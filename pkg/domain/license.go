package domain

import "encoding/json"

// LicenseNumber is a physician's regulatory identifier. The zero value is not
// a valid license; use NewLicenseNumber.
type LicenseNumber struct {
	value string
}

// NewLicenseNumber validates value against the MP-NNNN[NN] format.
func NewLicenseNumber(value string) (LicenseNumber, error) {
	v, err := RequireLicense(value)
	if err != nil {
		return LicenseNumber{}, err
	}
	return LicenseNumber{value: v}, nil
}

// MustLicenseNumber is NewLicenseNumber for fixtures; it panics on error.
func MustLicenseNumber(value string) LicenseNumber {
	l, err := NewLicenseNumber(value)
	if err != nil {
		panic(err)
	}
	return l
}

// String returns the license text.
func (l LicenseNumber) String() string { return l.value }

// IsZero reports whether l was never constructed.
func (l LicenseNumber) IsZero() bool { return l.value == "" }

// MarshalJSON encodes the license as a JSON string.
func (l LicenseNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.value)
}

// UnmarshalJSON re-validates the stored text.
func (l *LicenseNumber) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewLicenseNumber(raw)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
