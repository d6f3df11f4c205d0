package plan

import "reflect"

var (
	inputPortType  = reflect.TypeOf(InputPort{})
	outputPortType = reflect.TypeOf(OutputPort{})
)

// introspectPorts scans a user operator's declared and inherited
// (embedded) fields for InputPort/OutputPort markers and materializes a
// *Port descriptor for each. Discovery runs once per operator, on first
// demand.
func introspectPorts(om *OperatorMeta) error {
	rv := reflect.ValueOf(om.userOperator)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	seen := make(map[string]PortKind)
	return walkOperatorFields(om, rv, seen)
}

func walkOperatorFields(om *OperatorMeta, v reflect.Value, seen map[string]PortKind) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			// unexported named field: not a port. Unexported embedded
			// structs are still walked, since their exported fields are
			// promoted onto the operator.
			continue
		}
		fv := v.Field(i)
		switch {
		case f.Type == inputPortType:
			ann := fv.Interface().(InputPort).PortAnnotations
			if err := registerPort(om, f.Name, InputPortKind, ann, seen); err != nil {
				return err
			}
		case f.Type == outputPortType:
			ann := fv.Interface().(OutputPort).PortAnnotations
			if err := registerPort(om, f.Name, OutputPortKind, ann, seen); err != nil {
				return err
			}
		case f.Anonymous:
			embedded := fv
			for embedded.Kind() == reflect.Pointer {
				if embedded.IsNil() {
					embedded = reflect.Value{}
					break
				}
				embedded = embedded.Elem()
			}
			if embedded.IsValid() && embedded.Kind() == reflect.Struct {
				if err := walkOperatorFields(om, embedded, seen); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func registerPort(om *OperatorMeta, name string, kind PortKind, ann PortAnnotations, seen map[string]PortKind) error {
	if _, dup := seen[name]; dup {
		return &DuplicateError{Kind: "port", ID: om.name + "." + name}
	}
	seen[name] = kind
	p := newPort(name, kind, ann, om.name, om.plan)
	if kind == InputPortKind {
		om.inputPorts.Set(name, p)
	} else {
		om.outputPorts.Set(name, p)
	}
	return nil
}
