package plan

import "fmt"

// ProcessingMode is the delivery-semantics contract of an operator.
type ProcessingMode int

const (
	ProcessingModeUnspecified ProcessingMode = iota
	AtMostOnce
	AtLeastOnce
	ExactlyOnce
)

func (m ProcessingMode) String() string {
	switch m {
	case AtMostOnce:
		return "AT_MOST_ONCE"
	case AtLeastOnce:
		return "AT_LEAST_ONCE"
	case ExactlyOnce:
		return "EXACTLY_ONCE"
	default:
		return "UNSPECIFIED"
	}
}

// propagateProcessingModes runs a DFS from every root that visits an
// operator only once every one of its input-source operators has already
// been visited, propagating/validating AT_MOST_ONCE/EXACTLY_ONCE
// compatibility along the way.
func propagateProcessingModes(p *Plan) error {
	visited := make(map[*OperatorMeta]bool)
	for _, root := range p.Roots() {
		if err := propagateProcessingMode(root, visited); err != nil {
			return err
		}
	}
	return nil
}

func propagateProcessingMode(om *OperatorMeta, visited map[*OperatorMeta]bool) error {
	for _, s := range om.InputStreams() {
		if s.Source() == nil {
			continue
		}
		src, ok := s.Source().Owner()
		if ok && !visited[src] {
			// an upstream sibling path hasn't reached src yet; this
			// operator will be revisited once it has.
			return nil
		}
	}
	if visited[om] {
		return nil
	}
	visited[om] = true

	pm, _ := GetAttr(om.attrs, ProcessingModeAttr)
	for _, s := range om.OutputStreams() {
		for _, sinkPort := range s.Sinks() {
			sinkOm, ok := sinkPort.Owner()
			if !ok {
				continue
			}
			sinkPM, sinkHas := GetAttr(sinkOm.attrs, ProcessingModeAttr)
			if !sinkHas {
				switch pm {
				case AtMostOnce:
					PutAttr(sinkOm.attrs, ProcessingModeAttr, pm)
				case ExactlyOnce:
					return singleValidationError(CauseProcessingMode, sinkOm.name,
						fmt.Sprintf("processing mode for %s should be AT_MOST_ONCE for source %s/%s", sinkOm.name, om.name, pm), nil)
				}
			} else if (pm == AtMostOnce && sinkPM != pm) || (pm == ExactlyOnce && sinkPM != AtMostOnce) {
				return singleValidationError(CauseProcessingMode, sinkOm.name,
					fmt.Sprintf("processing mode %s/%s not valid for source %s/%s", sinkOm.name, sinkPM, om.name, pm), nil)
			}
			if err := propagateProcessingMode(sinkOm, visited); err != nil {
				return err
			}
		}
	}
	return nil
}
