package server

type ResponseModel struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PlanSummary is the JSON shape returned by GET /plan.
type PlanSummary struct {
	Operators []string `json:"operators"`
	Streams   []string `json:"streams"`
	Roots     []string `json:"roots"`
}

// MetricSummary is the JSON shape returned by GET /plan/metrics/{operator}.
type MetricSummary struct {
	Operator string   `json:"operator"`
	Fields   []string `json:"fields"`
}
