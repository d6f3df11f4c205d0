package plan

import "reflect"

// MetricType is the aggregation function inferred for an auto-metric field
// or accessor.
type MetricType int

const (
	MetricSumLong MetricType = iota
	MetricSumDouble
)

func (t MetricType) String() string {
	if t == MetricSumDouble {
		return "sum-double"
	}
	return "sum-long"
}

// MetricField is one entry of an inferred metric aggregator.
type MetricField struct {
	Name string
	Type MetricType
}

// MetricAggregator is the metric-aggregator metadata attached to an
// operator during validation.
type MetricAggregator struct {
	Fields           []MetricField
	DimensionsScheme any
}

// AutoMetricAccessor is one bean-style read accessor an operator reports
// for metric inference; Value only needs to carry the accessor's static
// type, it is never read for its runtime value by the plan itself.
type AutoMetricAccessor struct {
	Name  string
	Value any
}

// AutoMetricProvider lets a user operator report accessor-derived metrics
// in addition to the autoMetric-tagged fields introspection finds
// directly; it is the idiomatic substitute for scanning bean getters by
// naming convention, returned as a slice (not a map) to keep inference
// order deterministic.
type AutoMetricProvider interface {
	AutoMetricAccessors() []AutoMetricAccessor
}

// DimensionsSchemeProvider lets a user operator supply the dimensions
// scheme bundled into its metric-aggregator metadata.
type DimensionsSchemeProvider interface {
	DimensionsScheme() any
}

const autoMetricTag = "autoMetric"

// InferMetricAggregator derives the metric aggregator for om. If the
// operator already carries an explicit METRICS_AGGREGATOR attribute, that
// value is returned unchanged and nothing is scanned.
func InferMetricAggregator(om *OperatorMeta) *MetricAggregator {
	if explicit, ok := GetAttr(om.attrs, MetricsAggregatorAttr); ok && explicit != nil {
		return explicit
	}

	seen := make(map[string]bool)
	var fields []MetricField

	rv := reflect.ValueOf(om.userOperator)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			break
		}
		rv = rv.Elem()
	}
	if rv.IsValid() && rv.Kind() == reflect.Struct {
		walkAutoMetricFields(rv, seen, &fields)
	}

	if provider, ok := om.userOperator.(AutoMetricProvider); ok {
		for _, acc := range provider.AutoMetricAccessors() {
			if seen[acc.Name] {
				continue
			}
			if mt, ok := metricTypeOfValue(acc.Value); ok {
				fields = append(fields, MetricField{Name: acc.Name, Type: mt})
				seen[acc.Name] = true
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	agg := &MetricAggregator{Fields: fields}
	if dims, ok := om.userOperator.(DimensionsSchemeProvider); ok {
		agg.DimensionsScheme = dims.DimensionsScheme()
	}
	return agg
}

func walkAutoMetricFields(v reflect.Value, seen map[string]bool, out *[]MetricField) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		fv := v.Field(i)
		if f.Anonymous {
			embedded := fv
			for embedded.Kind() == reflect.Pointer {
				if embedded.IsNil() {
					embedded = reflect.Value{}
					break
				}
				embedded = embedded.Elem()
			}
			if embedded.IsValid() && embedded.Kind() == reflect.Struct {
				walkAutoMetricFields(embedded, seen, out)
			}
			continue
		}
		if f.Tag.Get(autoMetricTag) != "true" || seen[f.Name] {
			continue
		}
		if mt, ok := metricTypeOfKind(f.Type.Kind()); ok {
			*out = append(*out, MetricField{Name: f.Name, Type: mt})
			seen[f.Name] = true
		}
	}
}

func metricTypeOfValue(v any) (MetricType, bool) {
	return metricTypeOfKind(reflect.ValueOf(v).Kind())
}

func metricTypeOfKind(k reflect.Kind) (MetricType, bool) {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return MetricSumLong, true
	case reflect.Float32, reflect.Float64:
		return MetricSumDouble, true
	default:
		return 0, false
	}
}
