package plan

// Locality is a placement hint constraining how the physical planner
// co-locates the two endpoints of a stream.
type Locality int

const (
	LocalityUnspecified Locality = iota
	LocalityNodeLocal
	LocalityContainerLocal
	LocalityThreadLocal
	LocalityRackLocal
)

func (l Locality) String() string {
	switch l {
	case LocalityNodeLocal:
		return "NODE_LOCAL"
	case LocalityContainerLocal:
		return "CONTAINER_LOCAL"
	case LocalityThreadLocal:
		return "THREAD_LOCAL"
	case LocalityRackLocal:
		return "RACK_LOCAL"
	default:
		return "UNSPECIFIED"
	}
}

// Stream is a directed multi-sink edge: one source output-port, an ordered
// list of sink input-ports, and a locality hint.
type Stream struct {
	id       string
	source   *Port
	sinks    []*Port
	locality Locality
	plan     *Plan
}

func newStream(id string, p *Plan) *Stream {
	return &Stream{id: id, plan: p}
}

func (s *Stream) ID() string             { return s.id }
func (s *Stream) Source() *Port          { return s.source }
func (s *Stream) Sinks() []*Port         { return append([]*Port(nil), s.sinks...) }
func (s *Stream) Locality() Locality     { return s.locality }
func (s *Stream) SetLocality(l Locality) { s.locality = l }

// SetSource binds this stream's source to port. Fails if port's owning
// operator already has a stream bound to that output port.
func (s *Stream) SetSource(port *Port) error {
	if port.kind != OutputPortKind {
		return &WiringError{Op: "setSource", Detail: "port " + port.name + " is not an output port"}
	}
	owner, ok := port.Owner()
	if !ok {
		return &WiringError{Op: "setSource", Detail: "port " + port.name + " has no resolvable owner"}
	}
	if existing, bound := owner.outputStreams.Get(port.name); bound && existing != s {
		return &WiringError{Op: "setSource", Detail: "output port " + owner.name + "." + port.name + " already bound to a stream"}
	}
	s.source = port
	owner.outputStreams.Set(port.name, s)
	return nil
}

// AddSink binds an additional sink to this stream. Fails if the sink's
// input port is already bound to any stream. Removes the sink operator
// from the plan's root set, since it now has an inbound stream.
func (s *Stream) AddSink(port *Port) error {
	if port.kind != InputPortKind {
		return &WiringError{Op: "addSink", Detail: "port " + port.name + " is not an input port"}
	}
	owner, ok := port.Owner()
	if !ok {
		return &WiringError{Op: "addSink", Detail: "port " + port.name + " has no resolvable owner"}
	}
	if _, bound := owner.inputStreams.Get(port.name); bound {
		return &WiringError{Op: "addSink", Detail: "input port " + owner.name + "." + port.name + " already bound to a stream"}
	}
	owner.inputStreams.Set(port.name, s)
	s.sinks = append(s.sinks, port)
	if s.plan != nil {
		s.plan.removeFromRootSet(owner.name)
	}
	return nil
}

// removeSink detaches a single sink port from the stream without touching
// its source or any other sink, used when the sink's owning operator is
// being removed from the plan but the stream itself (and its other sinks,
// if any) survive.
func (s *Stream) removeSink(port *Port) {
	for i, sp := range s.sinks {
		if sp == port {
			s.sinks = append(s.sinks[:i], s.sinks[i+1:]...)
			return
		}
	}
}

// Remove detaches every sink (re-promoting newly-isolated operators back
// to the root set), clears the source, and unregisters the stream from
// its plan.
func (s *Stream) Remove() {
	for _, sinkPort := range s.sinks {
		owner, ok := sinkPort.Owner()
		if !ok {
			continue
		}
		owner.inputStreams.Delete(sinkPort.name)
		if owner.inputStreams.Len() == 0 && s.plan != nil {
			s.plan.addToRootSet(owner.name)
		}
	}
	s.sinks = nil
	if s.source != nil {
		if owner, ok := s.source.Owner(); ok {
			owner.outputStreams.Delete(s.source.name)
		}
		s.source = nil
	}
	if s.plan != nil {
		s.plan.unregisterStream(s.id)
	}
}
