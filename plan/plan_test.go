package plan

import "testing"

func rootNames(p *Plan) map[string]bool {
	out := make(map[string]bool)
	for _, om := range p.Roots() {
		out[om.Name()] = true
	}
	return out
}

// Universal property 1: the final root set equals {op | op has no inbound stream}.
func TestRootSetMatchesInboundStreams(t *testing.T) {
	p := NewPlan()
	a, err := p.AddOperator("A", &rootOperator{})
	if err != nil {
		t.Fatalf("AddOperator A: %v", err)
	}
	b, err := p.AddOperator("B", &passThroughOperator{})
	if err != nil {
		t.Fatalf("AddOperator B: %v", err)
	}
	c, err := p.AddOperator("C", &sinkOperator{})
	if err != nil {
		t.Fatalf("AddOperator C: %v", err)
	}

	outA, _ := a.OutputPort("Out")
	inB, _ := b.InputPort("In")
	outB, _ := b.OutputPort("Out")
	inC, _ := c.InputPort("In")

	wire(t, p, outA, inB)
	wire(t, p, outB, inC)

	roots := rootNames(p)
	if len(roots) != 1 || !roots["A"] {
		t.Fatalf("roots = %v, want {A}", roots)
	}
}

// Universal property 2: after stream.Remove(), every former sink whose
// operator has no remaining inbound streams is again a root.
func TestStreamRemoveRepromotesRoots(t *testing.T) {
	p := NewPlan()
	a, _ := p.AddOperator("A", &rootOperator{})
	b, _ := p.AddOperator("B", &sinkOperator{})

	outA, _ := a.OutputPort("Out")
	inB, _ := b.InputPort("In")
	s := wire(t, p, outA, inB)

	if rootNames(p)["B"] {
		t.Fatalf("B should not be a root while connected")
	}
	s.Remove()
	if !rootNames(p)["B"] {
		t.Fatalf("B should be re-promoted to root after stream removal")
	}
}

func TestAddOperatorDuplicateNameDifferentInstanceFails(t *testing.T) {
	p := NewPlan()
	if _, err := p.AddOperator("A", &rootOperator{}); err != nil {
		t.Fatalf("first AddOperator: %v", err)
	}
	_, err := p.AddOperator("A", &rootOperator{})
	if err == nil {
		t.Fatalf("expected a duplicate-operator error")
	}
	if _, ok := err.(*DuplicateError); !ok {
		t.Fatalf("expected *DuplicateError, got %T", err)
	}
}

func TestAddOperatorSameInstanceIsNoOp(t *testing.T) {
	p := NewPlan()
	op := &rootOperator{}
	om1, err := p.AddOperator("A", op)
	if err != nil {
		t.Fatalf("AddOperator: %v", err)
	}
	om2, err := p.AddOperator("A", op)
	if err != nil {
		t.Fatalf("re-AddOperator same instance: %v", err)
	}
	if om1 != om2 {
		t.Fatalf("expected the same *OperatorMeta back")
	}
}

func TestAddStreamDuplicateIDFails(t *testing.T) {
	p := NewPlan()
	if _, err := p.AddStream("s1"); err != nil {
		t.Fatalf("first AddStream: %v", err)
	}
	_, err := p.AddStream("s1")
	if err == nil {
		t.Fatalf("expected a duplicate-stream error")
	}
}

func TestSetSourceFailsWhenOutputAlreadyBound(t *testing.T) {
	p := NewPlan()
	a, _ := p.AddOperator("A", &rootOperator{})
	outA, _ := a.OutputPort("Out")

	s1, _ := p.AddStream(NewStreamID())
	if err := s1.SetSource(outA); err != nil {
		t.Fatalf("SetSource s1: %v", err)
	}
	s2, _ := p.AddStream(NewStreamID())
	if err := s2.SetSource(outA); err == nil {
		t.Fatalf("expected wiring error on second SetSource to the same output port")
	}
}

func TestAddSinkFailsWhenInputAlreadyBound(t *testing.T) {
	p := NewPlan()
	b, _ := p.AddOperator("B", &sinkOperator{})
	inB, _ := b.InputPort("In")

	s1, _ := p.AddStream(NewStreamID())
	if err := s1.AddSink(inB); err != nil {
		t.Fatalf("AddSink s1: %v", err)
	}
	s2, _ := p.AddStream(NewStreamID())
	if err := s2.AddSink(inB); err == nil {
		t.Fatalf("expected wiring error on second AddSink to the same input port")
	}
}

func TestRemoveOperatorDropsSourcedStreamsEntirely(t *testing.T) {
	p := NewPlan()
	a, _ := p.AddOperator("A", &rootOperator{})
	b, _ := p.AddOperator("B", &sinkOperator{})
	outA, _ := a.OutputPort("Out")
	inB, _ := b.InputPort("In")
	s := wire(t, p, outA, inB)

	p.RemoveOperator(a)

	if _, ok := p.Stream(s.ID()); ok {
		t.Fatalf("stream sourced from a removed operator must be removed entirely")
	}
	if !rootNames(p)["B"] {
		t.Fatalf("B should be re-promoted to root once its only inbound stream is gone")
	}
}

func TestRemoveOperatorDetachesOwnedSinks(t *testing.T) {
	p := NewPlan()
	a, _ := p.AddOperator("A", &rootOperator{})
	b, _ := p.AddOperator("B", &passThroughOperator{})
	c, _ := p.AddOperator("C", &sinkOperator{})
	outA, _ := a.OutputPort("Out")
	inB, _ := b.InputPort("In")
	outB, _ := b.OutputPort("Out")
	inC, _ := c.InputPort("In")
	s1 := wire(t, p, outA, inB)
	wire(t, p, outB, inC)

	p.RemoveOperator(b)

	if _, ok := p.Operator("B"); ok {
		t.Fatalf("B should no longer be present")
	}
	// s1's source (A) survives; B was only a sink on it.
	if _, ok := p.Stream(s1.ID()); !ok {
		t.Fatalf("stream sourced elsewhere must survive removal of a sink operator")
	}
}

// recordingStatsRecorder collects every event handed to it, standing in
// for eventlog.Log so this package's tests don't need a real bbolt
// database to exercise the AddOperator/RemoveOperator wiring.
type recordingStatsRecorder struct {
	operators []Event
}

func (r *recordingStatsRecorder) RecordOperators(events []Event, timestamp int64) error {
	r.operators = append(r.operators, events...)
	return nil
}

func (r *recordingStatsRecorder) RecordContainers(containers map[string]any, timestamp int64) error {
	return nil
}

func TestAddAndRemoveOperatorEmitStatsRecorderEvents(t *testing.T) {
	p := NewPlan()
	rec := &recordingStatsRecorder{}
	p.SetStatsRecorder(rec)

	a, _ := p.AddOperator("A", &rootOperator{})
	if len(rec.operators) != 1 || rec.operators[0].Type != EventCreateOperator || rec.operators[0].OperatorName != "A" {
		t.Fatalf("expected one create-operator event for A, got %+v", rec.operators)
	}

	p.RemoveOperator(a)
	if len(rec.operators) != 2 || rec.operators[1].Type != EventRemoveOperator || rec.operators[1].OperatorName != "A" {
		t.Fatalf("expected a remove-operator event for A after create, got %+v", rec.operators)
	}
}

// Universal property 5: the set of port descriptors is stable across
// repeated introspections.
func TestPortDescriptorsStableAcrossRepeatedAccess(t *testing.T) {
	p := NewPlan()
	a, _ := p.AddOperator("A", &rootOperator{})
	p1 := a.OutputPorts()
	p2 := a.OutputPorts()
	if len(p1) != len(p2) {
		t.Fatalf("port count changed across calls: %d vs %d", len(p1), len(p2))
	}
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("port descriptor identity changed across calls at index %d", i)
		}
	}
}

func TestDuplicatePortFieldNameFails(t *testing.T) {
	p := NewPlan()
	type base struct {
		Out OutputPort
	}
	type collide struct {
		base
		Out OutputPort
	}
	_, err := p.AddOperator("X", &collide{})
	if err == nil {
		t.Fatalf("expected duplicate-port error")
	}
	if _, ok := err.(*DuplicateError); !ok {
		t.Fatalf("expected *DuplicateError, got %T", err)
	}
}
