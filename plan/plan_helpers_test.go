package plan

// testOperator is a minimal user operator used across the validator test
// suite: up to two named input ports and one output port, each field
// individually marked optional by the test.
type testOperator struct {
	In1 InputPort
	In2 InputPort
	Out OutputPort
}

func (testOperator) RootCapable() {}

// rootOperator is a plain root-eligible operator with a single output.
type rootOperator struct {
	Out OutputPort
}

func (rootOperator) RootCapable() {}

// passThroughOperator has one required input and one required output,
// used to build linear chains (S1/S2/S4/S5).
type passThroughOperator struct {
	In  InputPort
	Out OutputPort
}

// sinkOperator has one required input and no outputs.
type sinkOperator struct {
	In InputPort
}

// metricOperator exercises §4.H / S6: an autoMetric-tagged field plus an
// accessor-style auto metric reported through AutoMetricProvider.
type metricOperator struct {
	In       InputPort
	BytesIn  int64 `autoMetric:"true"`
	Untagged float64
}

func (m metricOperator) AutoMetricAccessors() []AutoMetricAccessor {
	return []AutoMetricAccessor{{Name: "rate", Value: float64(0)}}
}

// wire connects an output port to a fresh stream feeding one or more sink
// ports, returning the created stream.
func wire(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, p *Plan, source *Port, sinks ...*Port) *Stream {
	t.Helper()
	s, err := p.AddStream(NewStreamID())
	if err != nil {
		t.Fatalf("AddStream: %v", err)
	}
	if err := s.SetSource(source); err != nil {
		t.Fatalf("SetSource: %v", err)
	}
	for _, sink := range sinks {
		if err := s.AddSink(sink); err != nil {
			t.Fatalf("AddSink: %v", err)
		}
	}
	return s
}
