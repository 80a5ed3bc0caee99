// internal/snmp/gosnmp_collector.go
package snmp

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

// GoSNMPCollector is the Fetcher backed by gosnmp
type GoSNMPCollector struct {
	Timeout  time.Duration
	Retries  int
	BulkSize uint8
}

// NewGoSNMP returns a collector with a 3s timeout, one retry and 20 repetitions per bulk request
func NewGoSNMP() *GoSNMPCollector {
	return &GoSNMPCollector{
		Timeout:  3 * time.Second,
		Retries:  1,
		BulkSize: 20,
	}
}

// Fetch checks the vendor predicate and walks the health-check table
func (c *GoSNMPCollector) Fetch(ctx context.Context, t Target) ([][]string, error) {
	sn, err := c.openSession(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", t.Address, err)
	}
	defer sn.Conn.Close()

	sysOID, err := getString(sn, SysObjectIDOID)
	if err != nil {
		return nil, fmt.Errorf("get sysObjectID: %w", err)
	}
	if !Detect(sysOID) {
		return nil, fmt.Errorf("%s (sysObjectID %s): %w", t.Address, sysOID, ErrNotDetected)
	}

	var pdus []gosnmp.SnmpPDU
	err = sn.BulkWalk(HealthCheckTable, func(p gosnmp.SnmpPDU) error {
		pdus = append(pdus, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk health-check table: %w", err)
	}
	return AssembleRows(HealthCheckTable, pdus), nil
}

func (c *GoSNMPCollector) openSession(ctx context.Context, t Target) (*gosnmp.GoSNMP, error) {
	host, port := splitHostPort(t.Address, 161)
	cfg := &gosnmp.GoSNMP{
		Context:        ctx,
		Target:         host,
		Port:           port,
		Transport:      "udp",
		Timeout:        c.Timeout,
		Retries:        c.Retries,
		MaxOids:        gosnmp.MaxOids,
		MaxRepetitions: uint32(c.BulkSize),
	}

	cred := t.Credentials
	switch strings.ToLower(cred.Version) {
	case "v3":
		if cred.V3 == nil {
			return nil, fmt.Errorf("v3 credentials missing")
		}
		cfg.Version = gosnmp.Version3
		cfg.SecurityModel = gosnmp.UserSecurityModel
		cfg.MsgFlags = gosnmp.NoAuthNoPriv
		u := &gosnmp.UsmSecurityParameters{UserName: cred.V3.User}
		if cred.V3.AuthPass != "" {
			u.AuthenticationPassphrase = cred.V3.AuthPass
			u.AuthenticationProtocol = authProtocol(cred.V3.AuthProto)
			cfg.MsgFlags = gosnmp.AuthNoPriv
			if cred.V3.PrivPass != "" {
				u.PrivacyPassphrase = cred.V3.PrivPass
				u.PrivacyProtocol = privProtocol(cred.V3.PrivProto)
				cfg.MsgFlags = gosnmp.AuthPriv
			}
		}
		cfg.SecurityParameters = u
	default:
		cfg.Version = gosnmp.Version2c
		cfg.Community = firstNonEmpty(cred.Community, "public")
	}

	if err := cfg.Connect(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AssembleRows groups table PDUs (base.column.index) into text rows ordered
// by first-seen index. Each row spans columns 1..13, or 1..14 when the
// interface name is present; missing cells are left empty so that the
// decoder reports them.
func AssembleRows(base string, pdus []gosnmp.SnmpPDU) [][]string {
	prefix := normalizeOID(base) + "."
	var order []string
	cells := map[string]map[int]string{}

	for _, p := range pdus {
		name := normalizeOID(p.Name)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		parts := strings.SplitN(strings.TrimPrefix(name, prefix), ".", 2)
		if len(parts) != 2 {
			continue
		}
		col, err := strconv.Atoi(parts[0])
		if err != nil || col < 1 || col > MaxColumn {
			continue
		}
		idx := parts[1]
		if _, ok := cells[idx]; !ok {
			cells[idx] = map[int]string{}
			order = append(order, idx)
		}
		cells[idx][col] = valueToString(p.Value)
	}

	rows := make([][]string, 0, len(order))
	for _, idx := range order {
		width := MaxColumn - 1
		if _, ok := cells[idx][MaxColumn]; ok {
			width = MaxColumn
		}
		row := make([]string, width)
		for col, v := range cells[idx] {
			row[col-1] = v
		}
		rows = append(rows, row)
	}
	return rows
}

// Helpers

func getString(sn *gosnmp.GoSNMP, oid string) (string, error) {
	p, err := sn.Get([]string{oid})
	if err != nil {
		return "", err
	}
	if len(p.Variables) == 0 {
		return "", fmt.Errorf("no value for %s", oid)
	}
	return valueToString(p.Variables[0].Value), nil
}

func valueToString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	// Some devices return OctetString as []byte; make it printable.
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

func authProtocol(name string) gosnmp.SnmpV3AuthProtocol {
	switch strings.ToUpper(name) {
	case "MD5":
		return gosnmp.MD5
	case "SHA224":
		return gosnmp.SHA224
	case "SHA256":
		return gosnmp.SHA256
	case "SHA384":
		return gosnmp.SHA384
	case "SHA512":
		return gosnmp.SHA512
	default:
		return gosnmp.SHA
	}
}

func privProtocol(name string) gosnmp.SnmpV3PrivProtocol {
	switch strings.ToUpper(name) {
	case "DES":
		return gosnmp.DES
	case "AES192":
		return gosnmp.AES192
	case "AES256":
		return gosnmp.AES256
	default:
		return gosnmp.AES
	}
}

func splitHostPort(addr string, def uint16) (string, uint16) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, def
	}
	p, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || p == 0 {
		return host, def
	}
	return host, uint16(p)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
