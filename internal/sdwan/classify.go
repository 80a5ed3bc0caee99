// internal/sdwan/classify.go
package sdwan

import "fmt"

// Verdict is the overall result for one link in one poll
type Verdict struct {
	Severity Severity `json:"severity"`
	Summary  string   `json:"summary"`
}

// Bound tells which side of a threshold pair raises an alert
type Bound int

const (
	NoBound Bound = iota
	Upper
	Lower
)

// Unit is the display unit of an observation
type Unit string

const (
	UnitPercent       Unit = "%"
	UnitSeconds       Unit = "s"
	UnitCount         Unit = ""
	UnitBitsPerSecond Unit = "bit/s"
)

// MetricObservation is one labeled measurement of a link.
// Levels is nil for informational metrics and for disabled threshold pairs.
type MetricObservation struct {
	Label    string
	Metric   string // time-series name
	Value    float64
	Unit     Unit
	Levels   *Levels
	Bound    Bound
	Severity Severity
	Text     string
}

// Classify derives the verdict and the eight metric observations for one link.
//
// Only link state, packet loss, latency and jitter decide the verdict. Every
// threshold-bearing observation also carries its own severity, which is for
// display only: a bandwidth floor breach does not raise the verdict.
func Classify(rec LinkRecord, p ParameterSet) (Verdict, []MetricObservation) {
	verdict := Verdict{
		Severity: overallSeverity(rec, p),
		Summary:  fmt.Sprintf("[Interface %s] - %s [%s]", rec.PortLabel(), rec.State, rec.Name),
	}

	obs := []MetricObservation{
		observe("PacketLoss", "pl", rec.PacketLossPercent, UnitPercent, Upper, p.PacketLoss),
		observe("Latency", "e2e_latency", rec.LatencySeconds, UnitSeconds, Upper, p.Latency),
		observe("Jitter", "jitter", rec.JitterSeconds, UnitSeconds, Upper, p.Jitter),
		observe("PacketSend", "if_out_pkts", float64(rec.PacketsSent), UnitCount, NoBound, Levels{}),
		observe("PacketRecv", "if_in_pkts", float64(rec.PacketsReceived), UnitCount, NoBound, Levels{}),
		observe("BandwidthIn", "if_in_bps", rec.BandwidthIn(), UnitBitsPerSecond, Lower, p.BandwidthIn),
		observe("BandwidthOut", "if_out_bps", rec.BandwidthOut(), UnitBitsPerSecond, Lower, p.BandwidthOut),
		observe("BandwidthBi", "if_total_bps", rec.BandwidthBi(), UnitBitsPerSecond, Lower, p.BandwidthBi),
	}
	return verdict, obs
}

func overallSeverity(rec LinkRecord, p ParameterSet) Severity {
	causes := []struct {
		value  float64
		levels Levels
	}{
		{rec.PacketLossPercent, p.PacketLoss},
		{rec.LatencySeconds, p.Latency},
		{rec.JitterSeconds, p.Jitter},
	}

	warnHit := false
	critHit := rec.State == Dead
	for _, c := range causes {
		switch c.levels.upper(c.value) {
		case Crit:
			critHit = true
		case Warn:
			warnHit = true
		}
	}

	switch {
	case critHit:
		return Crit
	case warnHit:
		return Warn
	default:
		return OK
	}
}

func observe(label, metric string, value float64, unit Unit, bound Bound, levels Levels) MetricObservation {
	o := MetricObservation{
		Label:  label,
		Metric: metric,
		Value:  value,
		Unit:   unit,
	}
	if bound != NoBound && levels.Enabled() {
		l := levels
		o.Levels = &l
		o.Bound = bound
		if bound == Upper {
			o.Severity = levels.upper(value)
		} else {
			o.Severity = levels.lower(value)
		}
	}
	o.Text = o.render()
	return o
}

// upper checks value against ceilings; a zero side is ignored
func (l Levels) upper(v float64) Severity {
	switch {
	case l.Crit != 0 && v >= l.Crit:
		return Crit
	case l.Warn != 0 && v >= l.Warn:
		return Warn
	default:
		return OK
	}
}

// lower checks value against floors; a zero side is ignored
func (l Levels) lower(v float64) Severity {
	switch {
	case l.Crit != 0 && v <= l.Crit:
		return Crit
	case l.Warn != 0 && v <= l.Warn:
		return Warn
	default:
		return OK
	}
}
