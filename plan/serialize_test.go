package plan

import (
	"bytes"
	"encoding/gob"
	"testing"
)

func init() {
	gob.Register(&rootOperator{})
	gob.Register(&sinkOperator{})
}

// Universal property 4: serialize -> deserialize -> serialize produces
// byte-identical output.
func TestSerializeDeserializeRoundTripIsByteIdentical(t *testing.T) {
	p := NewPlan()
	a, _ := p.AddOperator("A", &rootOperator{})
	b, _ := p.AddOperator("B", &sinkOperator{})
	outA, _ := a.OutputPort("Out")
	inB, _ := b.InputPort("In")
	wire(t, p, outA, inB)
	PutAttr(a.Attributes(), ApplicationWindowCount, 5)

	var buf1 bytes.Buffer
	if err := p.Serialize(&buf1); err != nil {
		t.Fatalf("first Serialize: %v", err)
	}

	p2, err := DeserializePlan(bytes.NewReader(buf1.Bytes()), nil)
	if err != nil {
		t.Fatalf("DeserializePlan: %v", err)
	}

	var buf2 bytes.Buffer
	if err := p2.Serialize(&buf2); err != nil {
		t.Fatalf("second Serialize: %v", err)
	}

	if !bytes.Equal(buf1.Bytes(), buf2.Bytes()) {
		t.Fatalf("round-trip output differs: %d bytes vs %d bytes", buf1.Len(), buf2.Len())
	}
}

func TestDeserializePlanRestoresAttributesAndWiring(t *testing.T) {
	p := NewPlan()
	a, _ := p.AddOperator("A", &rootOperator{})
	b, _ := p.AddOperator("B", &sinkOperator{})
	outA, _ := a.OutputPort("Out")
	inB, _ := b.InputPort("In")
	wire(t, p, outA, inB)
	PutAttr(a.Attributes(), ApplicationWindowCount, 9)

	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	p2, err := DeserializePlan(bytes.NewReader(buf.Bytes()), nil)
	if err != nil {
		t.Fatalf("DeserializePlan: %v", err)
	}

	a2, ok := p2.Operator("A")
	if !ok {
		t.Fatalf("operator A missing after deserialize")
	}
	v, ok := GetAttr(a2.Attributes(), ApplicationWindowCount)
	if !ok || v != 9 {
		t.Fatalf("ApplicationWindowCount = %v, %v, want 9, true", v, ok)
	}
	if len(p2.Streams()) != 1 {
		t.Fatalf("expected 1 stream after deserialize, got %d", len(p2.Streams()))
	}
}

// fakeStorageAgent is an in-memory StorageAgent test double, standing in
// for storage/badgerstore so this package's tests don't need a real
// badger database to exercise the delegation path.
type fakeStorageAgent struct {
	values map[string][]byte
}

func newFakeStorageAgent() *fakeStorageAgent {
	return &fakeStorageAgent{values: make(map[string][]byte)}
}

func (a *fakeStorageAgent) Store(key string, operatorInstance any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(operatorInstance); err != nil {
		return err
	}
	a.values[key] = buf.Bytes()
	return nil
}

func (a *fakeStorageAgent) Retrieve(key string, template any) error {
	return gob.NewDecoder(bytes.NewReader(a.values[key])).Decode(template)
}

// TestSerializeDelegatesUserOperatorToStorageAgent covers the
// storage-agent handoff: Serialize must not inline UserOperator when a
// StorageAgent is set, and DeserializePlan must rehydrate it through the
// same agent rather than from the wire bytes.
func TestSerializeDelegatesUserOperatorToStorageAgent(t *testing.T) {
	RegisterOperatorType(&rootOperator{})

	p := NewPlan()
	agent := newFakeStorageAgent()
	p.SetStorageAgent(agent)
	a, _ := p.AddOperator("A", &rootOperator{})
	PutAttr(a.Attributes(), ApplicationWindowCount, 3)

	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(agent.values) != 1 {
		t.Fatalf("expected 1 operator stored in the agent, got %d", len(agent.values))
	}

	p2, err := DeserializePlan(bytes.NewReader(buf.Bytes()), agent)
	if err != nil {
		t.Fatalf("DeserializePlan: %v", err)
	}
	a2, ok := p2.Operator("A")
	if !ok {
		t.Fatalf("operator A missing after deserialize")
	}
	if _, ok := a2.UserOperator().(*rootOperator); !ok {
		t.Fatalf("UserOperator() = %T, want *rootOperator", a2.UserOperator())
	}
	if v, ok := GetAttr(a2.Attributes(), ApplicationWindowCount); !ok || v != 3 {
		t.Fatalf("ApplicationWindowCount = %v, %v, want 3, true", v, ok)
	}
}

// TestDeserializePlanRejectsExternallyStoredOperatorWithoutAgent covers
// the case where a nil StorageAgent must not silently produce a
// zero-value operator.
func TestDeserializePlanRejectsExternallyStoredOperatorWithoutAgent(t *testing.T) {
	RegisterOperatorType(&rootOperator{})

	p := NewPlan()
	p.SetStorageAgent(newFakeStorageAgent())
	p.AddOperator("A", &rootOperator{})

	var buf bytes.Buffer
	if err := p.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if _, err := DeserializePlan(bytes.NewReader(buf.Bytes()), nil); err == nil {
		t.Fatalf("expected an error deserializing an externally-stored plan with a nil agent")
	}
}
