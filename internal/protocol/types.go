// internal/protocol/types.go
package protocol

import (
	"time"

	"github.com/signalnine/sdwanwatch/internal/sdwan"
)

// CheckReport is sent from agent to collector once per poll cycle
type CheckReport struct {
	Hostname  string        `json:"hostname"`
	Timestamp time.Time     `json:"timestamp"`
	Results   []CheckResult `json:"results"`
}

// Observation is the wire form of one metric line
type Observation struct {
	Label    string         `json:"label"`
	Metric   string         `json:"metric"`
	Value    float64        `json:"value"`
	Unit     string         `json:"unit,omitempty"`
	Levels   *sdwan.Levels  `json:"levels,omitempty"`
	Severity sdwan.Severity `json:"severity"`
	Text     string         `json:"text"`
}

// CheckResult is the state line of one item followed by its metric lines.
// Item is empty when the whole device could not be evaluated.
type CheckResult struct {
	Device       string         `json:"device"`
	Item         string         `json:"item"`
	Severity     sdwan.Severity `json:"severity"`
	Summary      string         `json:"summary"`
	Observations []Observation  `json:"observations,omitempty"`
}

// NewCheckResult converts classifier output to its wire form
func NewCheckResult(device, item string, v sdwan.Verdict, obs []sdwan.MetricObservation) CheckResult {
	res := CheckResult{
		Device:       device,
		Item:         item,
		Severity:     v.Severity,
		Summary:      v.Summary,
		Observations: make([]Observation, 0, len(obs)),
	}
	for _, o := range obs {
		res.Observations = append(res.Observations, Observation{
			Label:    o.Label,
			Metric:   o.Metric,
			Value:    o.Value,
			Unit:     string(o.Unit),
			Levels:   o.Levels,
			Severity: o.Severity,
			Text:     o.Text,
		})
	}
	return res
}

// StoredResult is what we persist to SQLite
type StoredResult struct {
	ID           int64          `json:"id"`
	Hostname     string         `json:"hostname"`
	Device       string         `json:"device"`
	Item         string         `json:"item"`
	Severity     sdwan.Severity `json:"severity"`
	Summary      string         `json:"summary"`
	Observations []Observation  `json:"observations"`
	CheckedAt    time.Time      `json:"checked_at"`
	CreatedAt    time.Time      `json:"created_at"`
}
