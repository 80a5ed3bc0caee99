// internal/collector/handler.go
package collector

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/signalnine/sdwanwatch/internal/protocol"
	"github.com/signalnine/sdwanwatch/internal/sdwan"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 1000
)

// IngestHandler handles POST /ingest requests from agents
type IngestHandler struct {
	db              *DB
	apiKey          string
	maxPayloadBytes int64
	log             *zap.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(db *DB, apiKey string, maxPayloadBytes int64, log *zap.Logger) *IngestHandler {
	return &IngestHandler{
		db:              db,
		apiKey:          apiKey,
		maxPayloadBytes: maxPayloadBytes,
		log:             log,
	}
}

func authorized(r *http.Request, apiKey string) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == apiKey
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if !authorized(r, h.apiKey) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Check content length
	if r.ContentLength > h.maxPayloadBytes {
		http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
		return
	}

	// Read body with limit
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxPayloadBytes+1))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	if int64(len(body)) > h.maxPayloadBytes {
		http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
		return
	}

	var report protocol.CheckReport
	if err := json.Unmarshal(body, &report); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if report.Hostname == "" || report.Timestamp.IsZero() {
		http.Error(w, "hostname and timestamp are required", http.StatusBadRequest)
		return
	}

	if len(report.Results) == 0 {
		writeJSON(w, map[string]string{"status": "skipped", "reason": "no results"})
		return
	}

	worst := sdwan.OK
	for _, res := range report.Results {
		worst = sdwan.Worst(worst, res.Severity)
	}

	if err := h.db.InsertReport(&report); err != nil {
		h.log.Error("store report failed", zap.String("hostname", report.Hostname), zap.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.log.Info("report stored",
		zap.String("hostname", report.Hostname),
		zap.Int("results", len(report.Results)),
		zap.Stringer("worst", worst))

	writeJSON(w, map[string]interface{}{
		"status":  "stored",
		"results": len(report.Results),
		"worst":   worst,
	})
}

// ResultsHandler handles GET /results. With a device it returns that
// device's history (optionally one item); without, recent non-OK results.
type ResultsHandler struct {
	db     *DB
	apiKey string
	log    *zap.Logger
}

// NewResultsHandler creates a new results query handler
func NewResultsHandler(db *DB, apiKey string, log *zap.Logger) *ResultsHandler {
	return &ResultsHandler{db: db, apiKey: apiKey, log: log}
}

func (h *ResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if !authorized(r, h.apiKey) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}

	var results []protocol.StoredResult
	if device := q.Get("device"); device != "" {
		results, err = h.db.QueryByItem(device, q.Get("item"), limit)
	} else {
		results, err = h.db.QueryNonOK(limit)
	}
	if err != nil {
		h.log.Error("query failed", zap.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []protocol.StoredResult{}
	}
	writeJSON(w, results)
}

// SummaryHandler handles GET /summary: result counts per severity
type SummaryHandler struct {
	db     *DB
	apiKey string
	log    *zap.Logger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(db *DB, apiKey string, log *zap.Logger) *SummaryHandler {
	return &SummaryHandler{db: db, apiKey: apiKey, log: log}
}

func (h *SummaryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if !authorized(r, h.apiKey) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	counts, err := h.db.SeverityCounts()
	if err != nil {
		h.log.Error("summary failed", zap.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	out := make(map[string]int, len(counts))
	for sev, n := range counts {
		out[sev.String()] = n
	}
	writeJSON(w, out)
}

func parseLimit(s string) (int, error) {
	if s == "" {
		return defaultQueryLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, strconv.ErrSyntax
	}
	if n > maxQueryLimit {
		n = maxQueryLimit
	}
	return n, nil
}
