// internal/sdwan/record.go
package sdwan

import "fmt"

// LinkState is the device-reported state of a member link
type LinkState int

const (
	Alive LinkState = 0
	Dead  LinkState = 1
)

func (s LinkState) String() string {
	switch s {
	case Alive:
		return "Alive"
	case Dead:
		return "Dead"
	default:
		return fmt.Sprintf("LinkState(%d)", int(s))
	}
}

// LinkRecord is one SD-WAN member link health-check row, as of one poll
type LinkRecord struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Sequence          int       `json:"sequence"`
	State             LinkState `json:"state"`
	LatencySeconds    float64   `json:"latency_seconds"`
	JitterSeconds     float64   `json:"jitter_seconds"`
	PacketsSent       uint64    `json:"packets_sent"`
	PacketsReceived   uint64    `json:"packets_received"`
	PacketLossPercent float64   `json:"packet_loss_percent"`
	Vdom              string    `json:"vdom"`
	BandwidthInRaw    int64     `json:"bandwidth_in_raw"`
	BandwidthOutRaw   int64     `json:"bandwidth_out_raw"`
	BandwidthBiRaw    int64     `json:"bandwidth_bi_raw"`
	InterfaceName     string    `json:"interface_name,omitempty"` // empty in the 13-column layout
}

// BandwidthScale converts device bandwidth units (hundreds of kbit/s) to bit/s
const BandwidthScale = 100 * 1000

func (r LinkRecord) BandwidthIn() float64  { return float64(r.BandwidthInRaw) * BandwidthScale }
func (r LinkRecord) BandwidthOut() float64 { return float64(r.BandwidthOutRaw) * BandwidthScale }
func (r LinkRecord) BandwidthBi() float64  { return float64(r.BandwidthBiRaw) * BandwidthScale }

// PortLabel names the link in summaries: the interface if known, else its sequence.
func (r LinkRecord) PortLabel() string {
	if r.InterfaceName != "" {
		return r.InterfaceName
	}
	return fmt.Sprintf("sequence %d", r.Sequence)
}
