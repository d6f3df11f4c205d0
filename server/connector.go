package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tarungka/flowplan/plan"
)

// PlanRouter mounts the plan introspection endpoints. No handler adds or
// removes operators or streams; /validate runs Plan.Validate, which resets
// validator scratch and stores validation-derived attributes (inherited
// processing modes, metric aggregators) on the plan's operators.
func PlanRouter(p *plan.Plan) chi.Router {
	router := chi.NewRouter()
	router.Get("/", getPlan(p))
	router.Get("/validate", getPlanValidate(p))
	router.Get("/metrics/{operator}", getOperatorMetrics(p))
	return router
}

func getPlan(p *plan.Plan) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary := PlanSummary{}
		for _, om := range p.Operators() {
			summary.Operators = append(summary.Operators, om.Name())
		}
		for _, s := range p.Streams() {
			summary.Streams = append(summary.Streams, s.ID())
		}
		for _, om := range p.Roots() {
			summary.Roots = append(summary.Roots, om.Name())
		}
		SendResponse(w, true, summary, "")
	}
}

func getPlanValidate(p *plan.Plan) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := p.Validate(); err != nil {
			SendResponseWithHeader(w, false, nil, err.Error(), http.StatusUnprocessableEntity, nil)
			return
		}
		SendResponse(w, true, nil, "")
	}
}

func getOperatorMetrics(p *plan.Plan) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "operator")
		om, ok := p.Operator(name)
		if !ok {
			SendResponseWithHeader(w, false, nil, "operator not found: "+name, http.StatusNotFound, nil)
			return
		}
		agg := plan.InferMetricAggregator(om)
		summary := MetricSummary{Operator: name}
		if agg != nil {
			for _, f := range agg.Fields {
				summary.Fields = append(summary.Fields, f.Name+":"+f.Type.String())
			}
		}
		SendResponse(w, true, summary, "")
	}
}
