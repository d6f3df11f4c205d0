package plan

import (
	"fmt"

	"github.com/tarungka/flowplan/internal/logger"
)

// Validate runs the full multi-pass validator, stopping at the first
// failure found. A successful call leaves every operator's
// metric-aggregator metadata populated so the validated plan is
// self-describing. The outcome is logged: Warn on failure, Info on
// success.
func (p *Plan) Validate() error {
	if err := p.validate(); err != nil {
		logger.AdHocLogger.Warn().Err(err).Msg("plan validation failed")
		return err
	}
	logger.AdHocLogger.Info().Int("operators", p.operators.Len()).Msg("plan validation succeeded")
	return nil
}

func (p *Plan) validate() error {
	operators := p.Operators()

	// Pass 1: reset scratch.
	for _, om := range operators {
		logger.AdHocLogger.Trace().Str("operator", om.name).Msg("resetting validation scratch")
		om.resetScratch()
	}

	// Pass 2: per-operator checks.
	for _, om := range operators {
		if violations := p.checker.Check(om.userOperator); len(violations) > 0 {
			return &ConstraintViolationError{Operator: om.name, Violations: violations}
		}
		if !om.partitionable {
			if err := checkNotPartitionable(om); err != nil {
				return err
			}
		}
		if !om.checkpointableWithinAppWindow {
			cw, _ := GetAttr(om.attrs, CheckpointWindowCount)
			aw, _ := GetAttr(om.attrs, ApplicationWindowCount)
			if aw == 0 || cw%aw != 0 {
				return singleValidationError(CauseCheckpointWindow, om.name,
					fmt.Sprintf("checkpoint window count %d is not a multiple of application window count %d for operator %s", cw, aw, om.name), nil)
			}
		}

		multiInputThreadLocal := false
		for _, port := range om.InputPorts() {
			s, bound := om.inputStreams.Get(port.name)
			if !bound {
				if !port.Optional() {
					return singleValidationError(CauseUnconnectedPort, om.name,
						fmt.Sprintf("input port connection required: %s.%s", om.name, port.name), nil)
				}
				continue
			}
			if s.Locality() == LocalityThreadLocal && om.inputStreams.Len() > 1 {
				multiInputThreadLocal = true
			}
		}
		if multiInputThreadLocal {
			if err := validateThreadLocal(om); err != nil {
				return err
			}
		}

		hasOutputStream := om.outputStreams.Len() > 0
		requiresOutput := false
		for _, port := range om.OutputPorts() {
			if !port.Optional() {
				requiresOutput = true
			}
			if _, bound := om.outputStreams.Get(port.name); !bound && !port.Optional() {
				return singleValidationError(CauseUnconnectedPort, om.name,
					fmt.Sprintf("output port connection required: %s.%s", om.name, port.name), nil)
			}
		}
		if !hasOutputStream && requiresOutput {
			return singleValidationError(CauseMissingOutput, om.name,
				fmt.Sprintf("operator %s has no output stream but declares a required output port", om.name), nil)
		}
	}

	// Pass 3: cycle detection.
	if cycles := detectCycles(operators); len(cycles) > 0 {
		failures := make([]ValidationFailure, 0, len(cycles))
		for _, c := range cycles {
			failures = append(failures, ValidationFailure{
				Cause:   CauseCycle,
				Message: fmt.Sprintf("cycle detected among operators: %v", c),
				Cycle:   c,
			})
		}
		return &ValidationError{Failures: failures}
	}

	// Pass 4: dangling streams.
	for _, s := range p.Streams() {
		if s.Source() == nil || len(s.Sinks()) == 0 {
			return singleValidationError(CauseDanglingStream, "",
				fmt.Sprintf("stream %s has no source or no sinks", s.ID()), nil)
		}
	}

	// Pass 5: root operator typing. Every root must implement the
	// input-operator capability; an operator implementing it but wired
	// mid-graph is not an error, since a capable type is free to be used
	// as a non-root in a given plan.
	for _, om := range operators {
		_, capable := om.userOperator.(RootCapable)
		if _, isRoot := p.roots.Get(om.name); isRoot && !capable {
			return singleValidationError(CauseNonInputRoot, om.name,
				fmt.Sprintf("root operator %s does not implement the input-operator capability", om.name), nil)
		}
	}

	// Pass 6: processing-mode propagation.
	if err := propagateProcessingModes(p); err != nil {
		return err
	}

	// Pass 7: metric-aggregator inference.
	for _, om := range operators {
		if agg := InferMetricAggregator(om); agg != nil {
			om.metricAggregator = agg
			PutAttr(om.attrs, MetricsAggregatorAttr, agg)
		}
	}

	return nil
}

// checkNotPartitionable enforces the !partitionable check: an operator
// that declares itself not partitionable must not carry a
// parallel-partition attribute on any input port, must not carry an
// explicit partitioner attribute, and must not implement the partitioner
// capability without an explicit override.
func checkNotPartitionable(om *OperatorMeta) error {
	for _, port := range om.InputPorts() {
		if v, ok := GetAttr(port.attrs, PartitionParallelAttr); ok && v {
			return singleValidationError(CausePartitioner, om.name,
				fmt.Sprintf("operator %s is not partitionable but port %s carries a parallel-partition attribute", om.name, port.name), nil)
		}
	}
	if HasAttr(om.attrs, PartitionerAttr) {
		return singleValidationError(CausePartitioner, om.name,
			fmt.Sprintf("operator %s is not partitionable but carries an explicit partitioner attribute", om.name), nil)
	}
	if _, ok := om.userOperator.(PartitionerCapable); ok {
		return singleValidationError(CausePartitioner, om.name,
			fmt.Sprintf("operator %s is not partitionable but its type implements the partitioner capability", om.name), nil)
	}
	return nil
}
