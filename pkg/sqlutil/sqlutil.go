// Package sqlutil builds query text for the backend command endpoint. The
// backend accepts only literal SQL strings (no bind parameters), so every
// caller-supplied value is quote-escaped and screened for injection patterns
// before it is spliced into a statement.
package sqlutil

import (
	"fmt"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/georgeGeorgakakos/optimusddc/pkg/apperrors"
)

// Escape doubles single quotes so the value can sit inside a SQL string
// literal.
func Escape(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// InjectionCheck describes an argument that failed the injection screen.
type InjectionCheck struct {
	Name        string
	Fingerprint string
}

// CheckArgument screens a caller-supplied string for SQL injection patterns.
// Returns nil when the value is clean.
func CheckArgument(name, value string) *InjectionCheck {
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}
	return &InjectionCheck{Name: name, Fingerprint: string(fingerprint)}
}

// GuardArguments screens every named argument and returns ErrUnsafeArgument
// naming the first offender. Arguments reach this point straight from the
// REST surface, so a hit here is a caller-contract violation, not backend
// data quality.
func GuardArguments(args map[string]string) error {
	for name, value := range args {
		if check := CheckArgument(name, value); check != nil {
			return fmt.Errorf("%w: %s (fingerprint %s)", apperrors.ErrUnsafeArgument, name, check.Fingerprint)
		}
	}
	return nil
}
