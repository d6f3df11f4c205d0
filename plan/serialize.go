package plan

import (
	"encoding/gob"
	"fmt"
	"io"
	"reflect"
	"sync"
	"time"
)

func init() {
	gob.Register(ProcessingMode(0))
	gob.Register(time.Duration(0))
	gob.Register(&MetricAggregator{})
}

// StorageAgent is the external capability operator instances are handed
// to for checkpoint-style storage; the plan never assumes a
// specific backend. The default implementation (storage/badgerstore)
// realizes it as a path-addressable byte store. When a Plan has a
// StorageAgent set, Serialize hands it each operator's UserOperator keyed
// by operator name instead of inlining it in the gob stream, and
// DeserializePlan retrieves it back through the same agent.
type StorageAgent interface {
	Store(key string, operatorInstance any) error
	Retrieve(key string, template any) error
}

var (
	operatorTypeMu sync.Mutex
	operatorTypes  = make(map[string]reflect.Type)
)

// RegisterOperatorType registers sample's concrete pointer type both with
// gob (for the inline, no-StorageAgent encoding path) and with this
// package's own name->type table, which DeserializePlan needs to build a
// template value to hand StorageAgent.Retrieve before it knows the
// operator's type from anything else on the wire. Every concrete operator
// type a caller plans to serialize through a StorageAgent must be
// registered here.
func RegisterOperatorType(sample any) {
	t := reflect.TypeOf(sample)
	gob.Register(sample)
	operatorTypeMu.Lock()
	operatorTypes[t.String()] = t
	operatorTypeMu.Unlock()
}

func lookupOperatorType(name string) (reflect.Type, bool) {
	operatorTypeMu.Lock()
	defer operatorTypeMu.Unlock()
	t, ok := operatorTypes[name]
	return t, ok
}

// operatorSnapshot, portAttrSnapshot, streamSnapshot and planSnapshot are
// the wire shapes Serialize/DeserializePlan exchange. Ports themselves are
// not snapshotted: re-running introspection against the restored user
// operator value reconstructs them deterministically, since a port's
// field type and annotations live on the operator's Go struct.
type operatorSnapshot struct {
	Name                          string
	ID                            int64
	UserOperator                  any // set only when no StorageAgent is configured
	ExternallyStored              bool
	UserOperatorType              string // set only when ExternallyStored
	Attrs                         []attrEntry
	Partitionable                 bool
	CheckpointableWithinAppWindow bool
}

type portAttrSnapshot struct {
	OperatorName string
	PortName     string
	Kind         PortKind
	Attrs        []attrEntry
}

type portRef struct {
	OperatorName string
	PortName     string
}

type streamSnapshot struct {
	ID             string
	SourceOperator string
	SourcePort     string
	Sinks          []portRef
	Locality       Locality
}

type planSnapshot struct {
	Operators     []operatorSnapshot
	PortAttrs     []portAttrSnapshot
	Streams       []streamSnapshot
	Attrs         []attrEntry
	MinOperatorID int64
}

func (p *Plan) snapshot() (planSnapshot, error) {
	var snap planSnapshot
	var minID int64
	for _, om := range p.Operators() {
		os := operatorSnapshot{
			Name:                          om.name,
			ID:                            om.id,
			Attrs:                         om.attrs.entries(),
			Partitionable:                 om.partitionable,
			CheckpointableWithinAppWindow: om.checkpointableWithinAppWindow,
		}
		if p.storageAgent != nil {
			if err := p.storageAgent.Store(om.name, om.userOperator); err != nil {
				return planSnapshot{}, &SerializationError{Op: "store", Err: err}
			}
			os.ExternallyStored = true
			os.UserOperatorType = fmt.Sprintf("%T", om.userOperator)
		} else {
			os.UserOperator = om.userOperator
		}
		snap.Operators = append(snap.Operators, os)
		if om.id < minID {
			minID = om.id
		}
		for _, port := range om.InputPorts() {
			if entries := port.attrs.entries(); len(entries) > 0 {
				snap.PortAttrs = append(snap.PortAttrs, portAttrSnapshot{OperatorName: om.name, PortName: port.name, Kind: InputPortKind, Attrs: entries})
			}
		}
		for _, port := range om.OutputPorts() {
			if entries := port.attrs.entries(); len(entries) > 0 {
				snap.PortAttrs = append(snap.PortAttrs, portAttrSnapshot{OperatorName: om.name, PortName: port.name, Kind: OutputPortKind, Attrs: entries})
			}
		}
	}
	for _, s := range p.Streams() {
		ss := streamSnapshot{ID: s.id, Locality: s.locality}
		if s.source != nil {
			if owner, ok := s.source.Owner(); ok {
				ss.SourceOperator = owner.name
				ss.SourcePort = s.source.name
			}
		}
		for _, sink := range s.sinks {
			if owner, ok := sink.Owner(); ok {
				ss.Sinks = append(ss.Sinks, portRef{OperatorName: owner.name, PortName: sink.name})
			}
		}
		snap.Streams = append(snap.Streams, ss)
	}
	snap.Attrs = p.attrs.entries()
	snap.MinOperatorID = minID
	return snap, nil
}

// Serialize writes a self-contained encoding of the plan's structure to w
// (the `dt-conf.ser` artifact). When a StorageAgent is set on p,
// every operator's UserOperator is handed to it keyed by operator name
// and only a type reference is inlined; otherwise the UserOperator is
// gob-encoded inline, and its concrete type must already be registered
// with gob.Register (or RegisterOperatorType) by the caller — gob's
// ordinary requirement for encoding a value behind an interface.
func (p *Plan) Serialize(w io.Writer) error {
	snap, err := p.snapshot()
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(w).Encode(snap); err != nil {
		return &SerializationError{Op: "serialize", Err: err}
	}
	return nil
}

// DeserializePlan rebuilds a plan from bytes written by Serialize. Port
// descriptors are rebuilt by re-running introspection against each
// restored user operator, then port-level attributes are rebound from the
// snapshot; plan- and operator-level attributes rebind by their string
// identity token. The operator id sequencer is seeded at the smallest id
// seen, so new operators, whose ids count down from there, never collide
// with restored ones.
//
// agent must be non-nil if the plan was serialized with a StorageAgent
// set (Serialize left ExternallyStored operators out of the wire bytes);
// it is otherwise ignored and may be nil.
func DeserializePlan(r io.Reader, agent StorageAgent) (*Plan, error) {
	var snap planSnapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, &SerializationError{Op: "deserialize", Err: err}
	}

	p := NewPlan()
	for _, e := range snap.Attrs {
		if err := p.attrs.putByName(e.Name, e.Value); err != nil {
			return nil, err
		}
	}
	for _, os := range snap.Operators {
		userOp := os.UserOperator
		if os.ExternallyStored {
			if agent == nil {
				return nil, &SerializationError{Op: "deserialize", Err: fmt.Errorf("plan: operator %q was stored externally, but DeserializePlan was called with a nil StorageAgent", os.Name)}
			}
			t, ok := lookupOperatorType(os.UserOperatorType)
			if !ok {
				return nil, &SerializationError{Op: "deserialize", Err: fmt.Errorf("plan: operator type %q was never registered with RegisterOperatorType", os.UserOperatorType)}
			}
			instance := reflect.New(t.Elem())
			if err := agent.Retrieve(os.Name, instance.Interface()); err != nil {
				return nil, &SerializationError{Op: "retrieve", Err: err}
			}
			userOp = instance.Interface()
		}
		om, err := p.AddOperator(os.Name, userOp)
		if err != nil {
			return nil, err
		}
		om.id = os.ID
		om.partitionable = os.Partitionable
		om.checkpointableWithinAppWindow = os.CheckpointableWithinAppWindow
		for _, e := range os.Attrs {
			if err := om.attrs.putByName(e.Name, e.Value); err != nil {
				return nil, err
			}
		}
	}
	for _, pa := range snap.PortAttrs {
		om, ok := p.Operator(pa.OperatorName)
		if !ok {
			continue
		}
		var port *Port
		if pa.Kind == InputPortKind {
			port, ok = om.InputPort(pa.PortName)
		} else {
			port, ok = om.OutputPort(pa.PortName)
		}
		if !ok {
			continue
		}
		for _, e := range pa.Attrs {
			if err := port.attrs.putByName(e.Name, e.Value); err != nil {
				return nil, err
			}
		}
	}
	for _, ss := range snap.Streams {
		s, err := p.AddStream(ss.ID)
		if err != nil {
			return nil, err
		}
		s.locality = ss.Locality
		if ss.SourceOperator != "" {
			if om, ok := p.Operator(ss.SourceOperator); ok {
				if port, ok := om.OutputPort(ss.SourcePort); ok {
					if err := s.SetSource(port); err != nil {
						return nil, err
					}
				}
			}
		}
		for _, ref := range ss.Sinks {
			if om, ok := p.Operator(ref.OperatorName); ok {
				if port, ok := om.InputPort(ref.PortName); ok {
					if err := s.AddSink(port); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	SeedOperatorIDSequence(snap.MinOperatorID)
	return p, nil
}
