package plan

// ConstraintChecker is the field-level validation capability injected into
// the validator: the core only cares that it returns a list of (path,
// message) pairs for a given user operator value, never which validation
// framework produced them.
type ConstraintChecker interface {
	Check(userOperator any) []ConstraintViolation
}

// noopConstraintChecker is used when a Plan is validated without an
// injected checker; it reports no violations, which is a valid (if
// unhelpful) implementation of the capability.
type noopConstraintChecker struct{}

func (noopConstraintChecker) Check(any) []ConstraintViolation { return nil }
