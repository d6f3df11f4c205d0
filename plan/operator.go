package plan

import (
	"reflect"
	"sync/atomic"

	"github.com/tarungka/flowplan/partition"
)

var operatorIDSeq atomic.Int64

// nextOperatorID returns a process-global, monotonically decreasing
// operator id. On deserialization, the counter is moved down to the
// smallest id seen so restored and newly created operators never collide.
func nextOperatorID() int64 {
	return operatorIDSeq.Add(-1)
}

// SeedOperatorIDSequence lowers the operator id counter to maxSeen (if it
// is not already at or below it) so newly created operators never collide
// with ids loaded from storage. maxSeen should be the smallest (most
// negative) id observed in the rehydrated plan.
func SeedOperatorIDSequence(maxSeen int64) {
	for {
		cur := operatorIDSeq.Load()
		if maxSeen >= cur {
			return
		}
		if operatorIDSeq.CompareAndSwap(cur, maxSeen) {
			return
		}
	}
}

// Partitionable is implemented by a user operator whose Go type wants to
// override the default partitionable=true class-level flag.
type Partitionable interface {
	Partitionable() bool
}

// CheckpointableWithinAppWindow is the checkpointableWithinAppWindow
// counterpart of Partitionable.
type CheckpointableWithinAppWindow interface {
	CheckpointableWithinAppWindow() bool
}

// PartitionerCapable is satisfied by a user operator whose Go type can
// partition itself.
type PartitionerCapable interface {
	Partitions(n int) []partition.Partition
}

// RootCapable marks a user operator that may legally sit at a plan root,
// ingesting data from outside the plan rather than from an upstream
// operator.
type RootCapable interface {
	RootCapable()
}

// OperatorMeta holds everything the plan tracks about one operator: its
// user-supplied value, its port adjacency, its attributes, and the
// transient scratch the validator uses.
type OperatorMeta struct {
	name         string
	id           int64
	userOperator any

	inputStreams  *orderedMap[string, *Stream]
	outputStreams *orderedMap[string, *Stream]
	inputPorts    *orderedMap[string, *Port]
	outputPorts   *orderedMap[string, *Port]

	attrs *AttributeMap

	partitionable                 bool
	checkpointableWithinAppWindow bool

	// Tarjan scratch, reset at the start of every validate().
	visited bool
	nindex  int
	lowlink int

	// OIO scratch: two fields rather than one nullable sentinel, so a
	// zero root value can't be confused with "not yet computed".
	oioVisited bool
	oioRoot    *OperatorMeta

	metricAggregator *MetricAggregator

	plan          *Plan
	introspected  bool
	introspectErr error
}

func newOperatorMeta(name string, userOp any, p *Plan, planAttrs *AttributeMap) *OperatorMeta {
	om := &OperatorMeta{
		name:          name,
		id:            nextOperatorID(),
		userOperator:  userOp,
		inputStreams:  newOrderedMap[string, *Stream](),
		outputStreams: newOrderedMap[string, *Stream](),
		inputPorts:    newOrderedMap[string, *Port](),
		outputPorts:   newOrderedMap[string, *Port](),
		attrs:         newAttributeMap(planAttrs),
		plan:          p,
	}
	om.partitionable = true
	om.checkpointableWithinAppWindow = true
	if pc, ok := userOp.(Partitionable); ok {
		om.partitionable = pc.Partitionable()
	}
	if cc, ok := userOp.(CheckpointableWithinAppWindow); ok {
		om.checkpointableWithinAppWindow = cc.CheckpointableWithinAppWindow()
	}
	return om
}

func (om *OperatorMeta) Name() string              { return om.name }
func (om *OperatorMeta) ID() int64                 { return om.id }
func (om *OperatorMeta) UserOperator() any         { return om.userOperator }
func (om *OperatorMeta) Attributes() *AttributeMap { return om.attrs }
func (om *OperatorMeta) Partitionable() bool       { return om.partitionable }
func (om *OperatorMeta) CheckpointableWithinAppWindow() bool {
	return om.checkpointableWithinAppWindow
}

// ensureIntrospected runs port discovery at most once per operator and
// remembers its outcome; AddOperator surfaces a non-nil result immediately,
// later callers get the same cached error.
func (om *OperatorMeta) ensureIntrospected() error {
	if om.introspected {
		return om.introspectErr
	}
	om.introspectErr = introspectPorts(om)
	om.introspected = true
	return om.introspectErr
}

func (om *OperatorMeta) InputPort(name string) (*Port, bool) {
	_ = om.ensureIntrospected()
	return om.inputPorts.Get(name)
}

func (om *OperatorMeta) OutputPort(name string) (*Port, bool) {
	_ = om.ensureIntrospected()
	return om.outputPorts.Get(name)
}

func (om *OperatorMeta) InputPorts() []*Port {
	_ = om.ensureIntrospected()
	return om.inputPorts.Values()
}

func (om *OperatorMeta) OutputPorts() []*Port {
	_ = om.ensureIntrospected()
	return om.outputPorts.Values()
}

// InputStreams returns the operator's input-port -> stream adjacency in
// insertion order.
func (om *OperatorMeta) InputStreams() []*Stream { return om.inputStreams.Values() }

// OutputStreams returns the operator's output-port -> stream adjacency in
// insertion order.
func (om *OperatorMeta) OutputStreams() []*Stream { return om.outputStreams.Values() }

func (om *OperatorMeta) resetScratch() {
	om.visited = false
	om.nindex = 0
	om.lowlink = 0
	om.oioVisited = false
	om.oioRoot = nil
}

// Equal compares two operators by name, id, user-operator value, and
// attributes; it deliberately includes the attribute map rather than
// defining a separate hash that excludes it, since Go maps have no usable
// hash anyway.
func (om *OperatorMeta) Equal(other *OperatorMeta) bool {
	if other == nil {
		return false
	}
	if om.name != other.name || om.id != other.id {
		return false
	}
	if !reflect.DeepEqual(om.userOperator, other.userOperator) {
		return false
	}
	a, b := om.attrs.entries(), other.attrs.entries()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !reflect.DeepEqual(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}
