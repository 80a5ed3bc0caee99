// internal/agent/evaluate_test.go
package agent

import (
	"strings"
	"testing"

	"github.com/signalnine/sdwanwatch/internal/sdwan"
)

var testRows = [][]string{
	{"1", "CHECK_8.8.8.8", "1", "0", "0.020", "0.001", "1000", "1000", "0.000", "root", "285", "291", "576", "wan1"},
	{"2", "CHECK_1.1.1.1", "2", "1", "0.030", "0.002", "1000", "900", "13.333", "root", "281", "279", "560", "wan2"},
}

func defaults(string) sdwan.ParameterSet { return sdwan.DefaultParameters() }

func TestEvaluate(t *testing.T) {
	results := Evaluate("fw1", testRows, defaults)
	if len(results) != 2 {
		t.Fatalf("Evaluate returned %d results, want 2", len(results))
	}

	first, second := results[0], results[1]
	if first.Device != "fw1" || first.Item != "1" {
		t.Errorf("first = %s/%s, want fw1/1", first.Device, first.Item)
	}
	if first.Severity != sdwan.OK {
		t.Errorf("first Severity = %v, want OK", first.Severity)
	}
	if want := "[Interface wan1] - Alive [CHECK_8.8.8.8]"; first.Summary != want {
		t.Errorf("first Summary = %q, want %q", first.Summary, want)
	}
	if len(first.Observations) != 8 {
		t.Errorf("first has %d observations, want 8", len(first.Observations))
	}

	if second.Item != "2" || second.Severity != sdwan.Crit {
		t.Errorf("second = %s %v, want 2 CRIT", second.Item, second.Severity)
	}
}

func TestEvaluateDuplicateIDs(t *testing.T) {
	rows := [][]string{
		{"1", "CHECK_A", "1", "0", "0.020", "0.001", "1000", "1000", "0.000", "root", "285", "291", "576"},
		{"1", "CHECK_B", "2", "1", "0.020", "0.001", "1000", "0", "100.000", "root", "285", "291", "576"},
	}
	results := Evaluate("fw1", rows, defaults)
	if len(results) != 2 {
		t.Fatalf("Evaluate returned %d results, want 2", len(results))
	}
	if results[0].Severity != sdwan.OK {
		t.Errorf("first Severity = %v, want OK", results[0].Severity)
	}
	if results[1].Severity != sdwan.Crit {
		t.Errorf("second Severity = %v, want CRIT", results[1].Severity)
	}
	if want := "[Interface sequence 2] - Dead [CHECK_B]"; results[1].Summary != want {
		t.Errorf("second Summary = %q, want %q", results[1].Summary, want)
	}
}

func TestEvaluateMalformed(t *testing.T) {
	results := Evaluate("fw1", [][]string{{"x"}}, defaults)
	if len(results) != 1 {
		t.Fatalf("Evaluate returned %d results, want 1", len(results))
	}
	r := results[0]
	if r.Severity != sdwan.Unknown || r.Item != "" {
		t.Errorf("result = %+v, want device-level UNKNOWN", r)
	}
	if !strings.HasPrefix(r.Summary, "no data this cycle") {
		t.Errorf("Summary = %q", r.Summary)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	if results := Evaluate("fw1", nil, defaults); len(results) != 0 {
		t.Errorf("Evaluate(nil) returned %d results, want 0", len(results))
	}
}

func TestEvaluateItemParams(t *testing.T) {
	params := func(item string) sdwan.ParameterSet {
		p := sdwan.DefaultParameters()
		if item == "1" {
			p.Latency = sdwan.Levels{Warn: 0.01, Crit: 0.05}
		}
		return p
	}
	results := Evaluate("fw1", testRows, params)
	if results[0].Severity != sdwan.Warn {
		t.Errorf("item 1 Severity = %v, want WARN", results[0].Severity)
	}
}

func TestCheckItemUnknown(t *testing.T) {
	records, err := sdwan.Decode(testRows)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	r := CheckItem("fw1", records, "9", defaults)
	if r.Severity != sdwan.Unknown {
		t.Errorf("Severity = %v, want UNKNOWN", r.Severity)
	}
	if !strings.Contains(r.Summary, "unknown item") {
		t.Errorf("Summary = %q, want unknown item", r.Summary)
	}
}
