package domain

import (
	"fmt"
	"strings"
)

// NumericalError reports non-finite values where a computation requires
// finite input, e.g. a Sinkhorn marginal that normalizes to NaN or Inf.
type NumericalError struct {
	Op     string
	Detail string
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

// ArgumentError reports a value outside a closed set of accepted arguments.
type ArgumentError struct {
	Name    string
	Value   string
	Allowed []string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%q parameter must be one of [%s]; %q given",
		e.Name, strings.Join(e.Allowed, ", "), e.Value)
}
