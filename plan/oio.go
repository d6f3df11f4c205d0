package plan

import "fmt"

// getOioRoot memoizes an operator's OIO root:
//   - 0 inputs: the operator is its own root.
//   - 1 input: if that stream is THREAD_LOCAL, the root is the source
//     operator's root; otherwise the operator is its own root.
//   - >1 inputs: delegate to validateThreadLocal, which sets oioRoot as a
//     side effect, then return whatever it computed.
//
// Two fields (oioVisited, oioRoot) keep the "not yet computed" sentinel
// separate from the payload, rather than overloading a single nullable
// field for both.
func getOioRoot(om *OperatorMeta) (*OperatorMeta, error) {
	if om.oioVisited {
		return om.oioRoot, nil
	}
	switch om.inputStreams.Len() {
	case 0:
		om.oioRoot = om
		om.oioVisited = true
	case 1:
		s := om.inputStreams.Values()[0]
		if s.Locality() == LocalityThreadLocal {
			src, ok := s.Source().Owner()
			if !ok {
				return nil, &WiringError{Op: "validateOIO", Detail: "stream " + s.id + " has no resolvable source"}
			}
			root, err := getOioRoot(src)
			if err != nil {
				return nil, err
			}
			om.oioRoot = root
		} else {
			om.oioRoot = om
		}
		om.oioVisited = true
	default:
		if err := validateThreadLocal(om); err != nil {
			return nil, err
		}
	}
	return om.oioRoot, nil
}

// validateThreadLocal is the multi-input OIO consistency pass: every
// input of an operator with more than one input and at least one
// THREAD_LOCAL input stream must be THREAD_LOCAL, and all of them must
// trace back to the same OIO root.
func validateThreadLocal(om *OperatorMeta) error {
	if om.oioVisited {
		return nil
	}
	var commonRoot *OperatorMeta
	for _, s := range om.inputStreams.Values() {
		if s.Locality() != LocalityThreadLocal {
			return singleValidationError(CauseOIOTopology, om.name,
				fmt.Sprintf("operator %s has a thread-local input alongside a non-thread-local input", om.name), nil)
		}
		src, ok := s.Source().Owner()
		if !ok {
			return &WiringError{Op: "validateOIO", Detail: "stream " + s.id + " has no resolvable source"}
		}
		root, err := getOioRoot(src)
		if err != nil {
			return err
		}
		if commonRoot == nil {
			commonRoot = root
		} else if commonRoot != root {
			return singleValidationError(CauseOIOTopology, om.name,
				fmt.Sprintf("thread-local fan-in to %s traces to divergent OIO roots %s and %s", om.name, commonRoot.name, root.name), nil)
		}
	}
	om.oioRoot = commonRoot
	om.oioVisited = true
	return nil
}
