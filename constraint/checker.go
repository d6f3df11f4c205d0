// Package constraint implements plan.ConstraintChecker using
// go-playground/validator's validate:"..." struct tags on user operator
// types.
package constraint

import (
	"github.com/go-playground/validator/v10"

	"github.com/tarungka/flowplan/plan"
)

// Checker adapts a *validator.Validate to plan.ConstraintChecker.
type Checker struct {
	v *validator.Validate
}

// New returns a Checker using validator's default tag ("validate").
func New() *Checker {
	return &Checker{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Check implements plan.ConstraintChecker. Operators with no validate
// tags report no violations; a non-struct operator value is reported as a
// single violation with an empty path.
func (c *Checker) Check(userOperator any) []plan.ConstraintViolation {
	err := c.v.Struct(userOperator)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// Not a struct (or some other non-field error): report it as a
		// single violation against the operator itself rather than
		// dropping it silently.
		return []plan.ConstraintViolation{{Path: "", Message: err.Error()}}
	}
	violations := make([]plan.ConstraintViolation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, plan.ConstraintViolation{
			Path:    fe.Namespace(),
			Message: fe.Error(),
		})
	}
	return violations
}
