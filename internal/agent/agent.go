// internal/agent/agent.go
package agent

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/signalnine/sdwanwatch/internal/config"
	"github.com/signalnine/sdwanwatch/internal/protocol"
	"github.com/signalnine/sdwanwatch/internal/sdwan"
	"github.com/signalnine/sdwanwatch/internal/snmp"
)

// Agent polls FortiGates and sends check results to the collector
type Agent struct {
	cfg     *config.AgentConfig
	client  *http.Client
	fetcher snmp.Fetcher
	log     *zap.Logger
}

// New creates a new agent
func New(cfg *config.AgentConfig, fetcher snmp.Fetcher, log *zap.Logger) *Agent {
	transport := &http.Transport{}
	if cfg.TLSSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Agent{
		cfg:     cfg,
		fetcher: fetcher,
		log:     log,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// Run starts the agent loop
func (a *Agent) Run(ctx context.Context) error {
	a.log.Info("agent starting",
		zap.String("hostname", a.cfg.Hostname),
		zap.String("collector", a.cfg.CollectorURL),
		zap.Duration("interval", a.cfg.PollInterval),
		zap.Int("devices", len(a.cfg.Devices)))

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	// Run immediately on start
	if err := a.RunOnce(ctx); err != nil {
		a.log.Error("collection failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			a.log.Info("agent shutting down")
			return nil
		case <-ticker.C:
			if err := a.RunOnce(ctx); err != nil {
				a.log.Error("collection failed", zap.Error(err))
			}
		}
	}
}

// RunOnce polls all devices and delivers one report
func (a *Agent) RunOnce(ctx context.Context) error {
	report := a.Poll(ctx)

	worst := sdwan.OK
	for _, r := range report.Results {
		worst = sdwan.Worst(worst, r.Severity)
	}
	a.log.Info("sending check report",
		zap.Int("results", len(report.Results)),
		zap.Stringer("worst", worst))

	if a.cfg.SpoolPath != "" {
		a.flushSpool(ctx)
	}

	if err := a.send(ctx, report); err != nil {
		if a.cfg.SpoolPath != "" {
			if werr := WriteSpool(a.cfg.SpoolPath, report); werr != nil {
				a.log.Error("spool write failed", zap.Error(werr))
			}
		}
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// flushSpool resends a report left over from a failed cycle
func (a *Agent) flushSpool(ctx context.Context) {
	pending, err := ReadSpool(a.cfg.SpoolPath)
	if err != nil {
		a.log.Warn("spool read failed", zap.Error(err))
		return
	}
	if pending == nil {
		return
	}
	if err := a.send(ctx, *pending); err != nil {
		a.log.Warn("spooled report still undeliverable", zap.Error(err))
		return
	}
	a.log.Info("delivered spooled report", zap.Time("timestamp", pending.Timestamp))
	if err := ClearSpool(a.cfg.SpoolPath); err != nil {
		a.log.Warn("spool clear failed", zap.Error(err))
	}
}

// Poll fetches and classifies every configured device once.
// Devices are polled concurrently; results keep the configured device order.
func (a *Agent) Poll(ctx context.Context) protocol.CheckReport {
	perDevice := make([][]protocol.CheckResult, len(a.cfg.Devices))

	var wg sync.WaitGroup
	for i, d := range a.cfg.Devices {
		wg.Add(1)
		go func(i int, d config.DeviceConfig) {
			defer wg.Done()
			perDevice[i] = a.pollDevice(ctx, d)
		}(i, d)
	}
	wg.Wait()

	report := protocol.CheckReport{
		Hostname:  a.cfg.Hostname,
		Timestamp: time.Now().UTC(),
	}
	for _, results := range perDevice {
		report.Results = append(report.Results, results...)
	}
	return report
}

func (a *Agent) pollDevice(ctx context.Context, d config.DeviceConfig) []protocol.CheckResult {
	name := d.DisplayName()
	rows, err := a.fetcher.Fetch(ctx, targetFor(d))
	if err != nil {
		a.log.Warn("fetch failed", zap.String("device", name), zap.Error(err))
		return []protocol.CheckResult{Unavailable(name, err)}
	}

	results := Evaluate(name, rows, a.cfg.ParamsFor)
	a.log.Debug("device polled",
		zap.String("device", name),
		zap.Int("rows", len(rows)),
		zap.Int("results", len(results)))
	return results
}

func targetFor(d config.DeviceConfig) snmp.Target {
	t := snmp.Target{
		Name:    d.DisplayName(),
		Address: d.Address,
		Credentials: snmp.Credentials{
			Version:   d.Version,
			Community: d.Community,
		},
	}
	if d.V3 != nil {
		t.Credentials.V3 = &snmp.AuthV3{
			User:      d.V3.User,
			AuthProto: d.V3.AuthProto,
			AuthPass:  d.V3.AuthPass,
			PrivProto: d.V3.PrivProto,
			PrivPass:  d.V3.PrivPass,
		}
	}
	return t
}

func (a *Agent) send(ctx context.Context, report protocol.CheckReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.cfg.CollectorURL, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("collector returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
