package plan

import "sync"

// PortKind distinguishes an input port from an output port.
type PortKind int

const (
	InputPortKind PortKind = iota
	OutputPortKind
)

func (k PortKind) String() string {
	if k == OutputPortKind {
		return "output"
	}
	return "input"
}

// PortAnnotations carries the declarative flags an operator author attaches
// to a port field. Optional marks a port that validate() does not require
// to be connected; AppDataQuery/AppDataResult are domain-specific marks
// alongside Optional used by application-data query/result ports.
type PortAnnotations struct {
	Optional      bool
	AppDataQuery  bool
	AppDataResult bool
}

// InputPort is the marker field type an operator author embeds to declare
// an input port. Port-mapping introspection (plan/introspect.go) discovers
// fields of this type by name and materializes a *Port descriptor for each.
type InputPort struct {
	PortAnnotations
}

// OutputPort is the output-port counterpart of InputPort.
type OutputPort struct {
	PortAnnotations
}

// Port is the live descriptor behind an InputPort/OutputPort field, owned
// by the operator that declared it. The back-reference to the owner is by
// name rather than pointer, since a pointer would form a cycle (port ->
// operator -> port map -> port); Plan resolves the name on demand instead.
type Port struct {
	name        string
	kind        PortKind
	annotations PortAnnotations
	attrs       *AttributeMap
	owner       string
	plan        *Plan

	unifierOnce sync.Once
	unifier     *OperatorMeta
	sliderOnce  sync.Once
	slider      *OperatorMeta
}

func newPort(name string, kind PortKind, ann PortAnnotations, owner string, p *Plan) *Port {
	return &Port{
		name:        name,
		kind:        kind,
		annotations: ann,
		attrs:       newAttributeMap(nil),
		owner:       owner,
		plan:        p,
	}
}

func (p *Port) Name() string              { return p.name }
func (p *Port) Kind() PortKind            { return p.kind }
func (p *Port) Optional() bool            { return p.annotations.Optional }
func (p *Port) AppDataQuery() bool        { return p.annotations.AppDataQuery }
func (p *Port) AppDataResult() bool       { return p.annotations.AppDataResult }
func (p *Port) Attributes() *AttributeMap { return p.attrs }

// Owner resolves the weak back-reference to the operator that declared
// this port.
func (p *Port) Owner() (*OperatorMeta, bool) {
	return p.plan.Operator(p.owner)
}

// Unifier lazily creates the sub-operator that merges partitioned sink
// streams arriving at this output port at physical-plan time. Only
// meaningful on output ports; input ports never fan in on a single port.
func (p *Port) Unifier() *OperatorMeta {
	if p.kind != OutputPortKind {
		return nil
	}
	p.unifierOnce.Do(func() {
		p.unifier = newSubOperator(p.owner+"."+p.name+".unifier", &unifierOperator{})
	})
	return p.unifier
}

// Slider lazily creates the optional windowed-slide sub-operator chained
// after the unifier, used by partitioned aggregation at physical-plan time.
func (p *Port) Slider() *OperatorMeta {
	if p.kind != OutputPortKind {
		return nil
	}
	p.sliderOnce.Do(func() {
		p.slider = newSubOperator(p.owner+"."+p.name+".slider", &sliderOperator{})
	})
	return p.slider
}

// unifierOperator and sliderOperator are placeholder user-operator values
// for the sub-operators a Port lazily creates; the physical planner that
// would give them real behavior is out of scope here.
type unifierOperator struct{}
type sliderOperator struct{}

func newSubOperator(name string, userOp any) *OperatorMeta {
	om := &OperatorMeta{
		name:          name,
		id:            nextOperatorID(),
		userOperator:  userOp,
		inputStreams:  newOrderedMap[string, *Stream](),
		outputStreams: newOrderedMap[string, *Stream](),
		inputPorts:    newOrderedMap[string, *Port](),
		outputPorts:   newOrderedMap[string, *Port](),
		attrs:         newAttributeMap(nil),
	}
	return om
}
