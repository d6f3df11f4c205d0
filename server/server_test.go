package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tarungka/flowplan/plan"
)

type twoInOperator struct {
	In1 plan.InputPort
	In2 plan.InputPort
	Out plan.OutputPort
}

type passThroughOperator struct {
	In  plan.InputPort
	Out plan.OutputPort
}

type rootOperator struct {
	Out plan.OutputPort
}

func (rootOperator) RootCapable() {}

func cyclicPlan(t *testing.T) *plan.Plan {
	t.Helper()
	p := plan.NewPlan()
	a, _ := p.AddOperator("A", &rootOperator{})
	b, _ := p.AddOperator("B", &twoInOperator{})
	c, _ := p.AddOperator("C", &passThroughOperator{})

	outA, _ := a.OutputPort("Out")
	in1B, _ := b.InputPort("In1")
	in2B, _ := b.InputPort("In2")
	outB, _ := b.OutputPort("Out")
	inC, _ := c.InputPort("In")
	outC, _ := c.OutputPort("Out")

	must := func(err error) {
		if err != nil {
			t.Fatalf("wiring: %v", err)
		}
	}
	s1, err := p.AddStream(plan.NewStreamID())
	must(err)
	must(s1.SetSource(outA))
	must(s1.AddSink(in1B))
	s2, err := p.AddStream(plan.NewStreamID())
	must(err)
	must(s2.SetSource(outB))
	must(s2.AddSink(inC))
	s3, err := p.AddStream(plan.NewStreamID())
	must(err)
	must(s3.SetSource(outC))
	must(s3.AddSink(in2B))

	return p
}

func TestPlanValidateReportsCycle(t *testing.T) {
	p := cyclicPlan(t)
	router := chi.NewRouter()
	router.Mount("/plan", PlanRouter(p))
	req := httptest.NewRequest(http.MethodGet, "/plan/validate", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	var resp ResponseModel
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected success=false for a cyclic plan")
	}
	if !strings.Contains(resp.Error, "cycle") {
		t.Fatalf("expected a cycle report, got error %q", resp.Error)
	}
}

func TestGetPlanListsOperators(t *testing.T) {
	p := plan.NewPlan()
	if _, err := p.AddOperator("A", &rootOperator{}); err != nil {
		t.Fatalf("AddOperator: %v", err)
	}
	router := chi.NewRouter()
	router.Mount("/plan", PlanRouter(p))
	req := httptest.NewRequest(http.MethodGet, "/plan/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp struct {
		Data PlanSummary `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data.Operators) != 1 || resp.Data.Operators[0] != "A" {
		t.Fatalf("operators = %v, want [A]", resp.Data.Operators)
	}
}
