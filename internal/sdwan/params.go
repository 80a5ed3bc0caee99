// internal/sdwan/params.go
package sdwan

// Levels is a warn/crit threshold pair. The zero pair disables the check.
type Levels struct {
	Warn float64 `yaml:"warn" json:"warn"`
	Crit float64 `yaml:"crit" json:"crit"`
}

// Enabled reports whether the pair carries a real threshold
func (l Levels) Enabled() bool {
	return l.Warn != 0 || l.Crit != 0
}

// ParameterSet holds the thresholds applied to one monitored link.
// PacketLoss, Latency and Jitter are upper bounds; the bandwidth pairs are
// floors in bit/s.
type ParameterSet struct {
	PacketLoss   Levels `yaml:"packet_loss" json:"packet_loss"`
	Latency      Levels `yaml:"latency" json:"latency"`
	Jitter       Levels `yaml:"jitter" json:"jitter"`
	BandwidthIn  Levels `yaml:"bandwidth_in" json:"bandwidth_in"`
	BandwidthOut Levels `yaml:"bandwidth_out" json:"bandwidth_out"`
	BandwidthBi  Levels `yaml:"bandwidth_bi" json:"bandwidth_bi"`
}

// DefaultParameters mirrors the rule defaults offered for new links:
// loss 5/10 %, latency 5/10 s, everything else off.
func DefaultParameters() ParameterSet {
	return ParameterSet{
		PacketLoss: Levels{Warn: 5, Crit: 10},
		Latency:    Levels{Warn: 5, Crit: 10},
	}
}

// LegacyParameters is the fixed-level configuration of older deployments:
// only packet loss and the bidirectional bandwidth floor are checked.
func LegacyParameters() ParameterSet {
	return ParameterSet{
		PacketLoss:  Levels{Warn: 5, Crit: 10},
		BandwidthBi: Levels{Warn: 70, Crit: 80},
	}
}
