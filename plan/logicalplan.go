package plan

import (
	"time"

	"github.com/google/uuid"

	"github.com/tarungka/flowplan/internal/logger"
)

// Plan owns every operator and stream in a build: name-keyed operators,
// id-keyed streams, the incrementally-maintained root set, and plan-level
// attributes. Construction and validation are single-threaded; the plan
// provides no internal locking of its own.
type Plan struct {
	operators *orderedMap[string, *OperatorMeta]
	streams   *orderedMap[string, *Stream]
	roots     *orderedMap[string, struct{}]
	attrs     *AttributeMap

	checker       ConstraintChecker
	storageAgent  StorageAgent
	statsRecorder StatsRecorder
}

// NewPlan creates an empty plan.
func NewPlan() *Plan {
	p := &Plan{
		operators: newOrderedMap[string, *OperatorMeta](),
		streams:   newOrderedMap[string, *Stream](),
		roots:     newOrderedMap[string, struct{}](),
		checker:   noopConstraintChecker{},
	}
	p.attrs = newAttributeMap(nil)
	return p
}

func (p *Plan) Attributes() *AttributeMap { return p.attrs }

// SetConstraintChecker injects the field-level validation capability used
// by validate(). A nil checker restores the no-op default.
func (p *Plan) SetConstraintChecker(c ConstraintChecker) {
	if c == nil {
		c = noopConstraintChecker{}
	}
	p.checker = c
}

// SetStorageAgent injects the capability validate()-adjacent code uses to
// persist/restore operator instances.
func (p *Plan) SetStorageAgent(a StorageAgent) { p.storageAgent = a }

// SetStatsRecorder injects the event-consumer capability. AddOperator and
// RemoveOperator feed it a real event on every mutation.
func (p *Plan) SetStatsRecorder(r StatsRecorder) { p.statsRecorder = r }

// recordEvent forwards ev to the configured StatsRecorder, if any. A sink
// failure is logged, not propagated: losing an audit event must never
// fail the plan mutation that produced it.
func (p *Plan) recordEvent(ev Event) {
	if p.statsRecorder == nil {
		return
	}
	if err := p.statsRecorder.RecordOperators([]Event{ev}, time.Now().UnixMilli()); err != nil {
		logger.AdHocLogger.Warn().Err(err).Str("operator", ev.OperatorName).Msg("failed to record plan event")
	}
}

// NewStreamID returns a fresh, globally unique stream identifier.
func NewStreamID() string { return uuid.NewString() }

// AddOperator inserts a new operator under name, running port-mapping
// introspection immediately so a duplicate-port-name failure surfaces
// before the operator is considered part of the plan. Fails if name is
// already bound to a different operator instance; re-adding the same
// instance under its own name is a no-op.
func (p *Plan) AddOperator(name string, userOp any) (*OperatorMeta, error) {
	if existing, ok := p.operators.Get(name); ok {
		if existing.userOperator != userOp {
			return nil, &DuplicateError{Kind: "operator", ID: name}
		}
		return existing, nil
	}
	om := newOperatorMeta(name, userOp, p, p.attrs)
	if err := om.ensureIntrospected(); err != nil {
		return nil, err
	}
	p.operators.Set(name, om)
	p.roots.Set(name, struct{}{})
	p.recordEvent(NewCreateOperatorEvent(om.name, om.id))
	return om, nil
}

// Operator resolves an operator by its stable name.
func (p *Plan) Operator(name string) (*OperatorMeta, bool) { return p.operators.Get(name) }

// Operators returns every operator in insertion order.
func (p *Plan) Operators() []*OperatorMeta { return p.operators.Values() }

// RemoveOperator detaches om from the plan: every input-port sink it owns
// is unbound from the stream it was attached to, and every stream whose
// source was one of om's output ports is removed entirely.
func (p *Plan) RemoveOperator(om *OperatorMeta) {
	for _, port := range om.InputPorts() {
		if s, ok := om.inputStreams.Get(port.name); ok {
			s.removeSink(port)
			om.inputStreams.Delete(port.name)
		}
	}
	for _, port := range om.OutputPorts() {
		if s, ok := om.outputStreams.Get(port.name); ok {
			s.Remove()
		}
	}
	p.operators.Delete(om.name)
	p.roots.Delete(om.name)
	p.recordEvent(NewRemoveOperatorEvent(om.name, om.id))
}

// AddStream creates an empty stream under id. Fails on a duplicate id.
func (p *Plan) AddStream(id string) (*Stream, error) {
	if _, ok := p.streams.Get(id); ok {
		return nil, &DuplicateError{Kind: "stream", ID: id}
	}
	s := newStream(id, p)
	p.streams.Set(id, s)
	return s, nil
}

// Stream resolves a stream by id.
func (p *Plan) Stream(id string) (*Stream, bool) { return p.streams.Get(id) }

// Streams returns every stream in insertion order.
func (p *Plan) Streams() []*Stream { return p.streams.Values() }

// Roots returns the current root set: operators with no inbound stream,
// in the order they entered the set.
func (p *Plan) Roots() []*OperatorMeta {
	out := make([]*OperatorMeta, 0, p.roots.Len())
	for _, name := range p.roots.Keys() {
		if om, ok := p.operators.Get(name); ok {
			out = append(out, om)
		}
	}
	return out
}

func (p *Plan) removeFromRootSet(name string) { p.roots.Delete(name) }

func (p *Plan) addToRootSet(name string) {
	if _, ok := p.operators.Get(name); ok {
		p.roots.Set(name, struct{}{})
	}
}

func (p *Plan) unregisterStream(id string) { p.streams.Delete(id) }
