package plan

// tarjanState is the explicit scratch a validate() run threads through
// detectCycles; a fresh one is allocated per validation pass.
type tarjanState struct {
	nodeIndex int
	stack     []*OperatorMeta
	onStack   map[*OperatorMeta]bool
	cycles    [][]string
}

// detectCycles runs Tarjan's strongly-connected-components algorithm from
// every unvisited operator and reports every cycle found: self-loops as
// singletons, and every multi-operator strongly connected component.
func detectCycles(operators []*OperatorMeta) [][]string {
	ts := &tarjanState{onStack: make(map[*OperatorMeta]bool, len(operators))}
	for _, om := range operators {
		if !om.visited {
			strongConnect(ts, om)
		}
	}
	return ts.cycles
}

func strongConnect(ts *tarjanState, om *OperatorMeta) {
	om.visited = true
	om.nindex = ts.nodeIndex
	om.lowlink = ts.nodeIndex
	ts.nodeIndex++
	ts.stack = append(ts.stack, om)
	ts.onStack[om] = true

	for _, s := range om.OutputStreams() {
		for _, sinkPort := range s.Sinks() {
			successor, ok := sinkPort.Owner()
			if !ok {
				continue
			}
			if successor == om {
				ts.cycles = append(ts.cycles, []string{om.name})
				continue
			}
			if !successor.visited {
				strongConnect(ts, successor)
				if successor.lowlink < om.lowlink {
					om.lowlink = successor.lowlink
				}
			} else if ts.onStack[successor] {
				if successor.nindex < om.lowlink {
					om.lowlink = successor.nindex
				}
			}
		}
	}

	if om.lowlink != om.nindex {
		return
	}
	var connected []string
	for {
		n2 := ts.stack[len(ts.stack)-1]
		ts.stack = ts.stack[:len(ts.stack)-1]
		ts.onStack[n2] = false
		connected = append(connected, n2.name)
		if n2 == om {
			break
		}
	}
	if len(connected) > 1 {
		ts.cycles = append(ts.cycles, connected)
	}
}
