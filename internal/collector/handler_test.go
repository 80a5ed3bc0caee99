// internal/collector/handler_test.go
package collector

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/signalnine/sdwanwatch/internal/protocol"
)

func TestIngestHandlerAuth(t *testing.T) {
	db := openTestDB(t)
	handler := NewIngestHandler(db, "secret-key", 1<<20, zap.NewNop())

	// No auth header
	req := httptest.NewRequest("POST", "/ingest", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	// Wrong auth
	req = httptest.NewRequest("POST", "/ingest", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestIngestHandlerMethod(t *testing.T) {
	handler := NewIngestHandler(openTestDB(t), "secret", 1<<20, zap.NewNop())

	req := httptest.NewRequest("GET", "/ingest", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestIngestHandlerPayloadLimit(t *testing.T) {
	// 100 byte limit
	handler := NewIngestHandler(openTestDB(t), "secret", 100, zap.NewNop())

	// Large payload
	bigPayload := make([]byte, 200)
	req := httptest.NewRequest("POST", "/ingest", bytes.NewReader(bigPayload))
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestIngestHandlerInvalid(t *testing.T) {
	handler := NewIngestHandler(openTestDB(t), "secret", 1<<20, zap.NewNop())

	for name, body := range map[string]string{
		"not json":     "{",
		"no hostname":  `{"timestamp":"2026-02-03T12:00:00Z","results":[]}`,
		"bad severity": `{"hostname":"h","timestamp":"2026-02-03T12:00:00Z","results":[{"device":"fw1","severity":"BAD"}]}`,
	} {
		req := httptest.NewRequest("POST", "/ingest", bytes.NewReader([]byte(body)))
		req.Header.Set("Authorization", "Bearer secret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: Status = %d, want %d", name, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestIngestHandlerSkipsEmpty(t *testing.T) {
	handler := NewIngestHandler(openTestDB(t), "secret", 1<<20, zap.NewNop())

	body, _ := json.Marshal(protocol.CheckReport{Hostname: "poller-1", Timestamp: time.Now()})
	req := httptest.NewRequest("POST", "/ingest", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["status"] != "skipped" {
		t.Errorf("status = %q, want skipped", resp["status"])
	}
}

func TestIngestHandlerSuccess(t *testing.T) {
	db := openTestDB(t)
	handler := NewIngestHandler(db, "secret", 1<<20, zap.NewNop())

	body, _ := json.Marshal(testReport(time.Now()))
	req := httptest.NewRequest("POST", "/ingest", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d. Body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Status  string `json:"status"`
		Results int    `json:"results"`
		Worst   string `json:"worst"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Decode response: %v", err)
	}
	if resp.Status != "stored" || resp.Results != 3 || resp.Worst != "CRIT" {
		t.Errorf("response = %+v, want stored/3/CRIT", resp)
	}

	// Verify stored in DB
	results, _ := db.QueryByItem("fw1", "", 10)
	if len(results) != 2 {
		t.Errorf("DB has %d results for fw1, want 2", len(results))
	}
}

func TestResultsHandler(t *testing.T) {
	db := openTestDB(t)
	db.InsertReport(testReport(time.Now()))
	handler := NewResultsHandler(db, "secret", zap.NewNop())

	tests := []struct {
		query string
		code  int
		want  int
	}{
		{"/results?device=fw1", http.StatusOK, 2},
		{"/results?device=fw1&item=2", http.StatusOK, 1},
		{"/results?device=fw9", http.StatusOK, 0},
		{"/results", http.StatusOK, 2},
		{"/results?device=fw1&limit=1", http.StatusOK, 1},
		{"/results?limit=abc", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", tt.query, nil)
		req.Header.Set("Authorization", "Bearer secret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != tt.code {
			t.Errorf("%s: Status = %d, want %d", tt.query, rec.Code, tt.code)
			continue
		}
		if tt.code != http.StatusOK {
			continue
		}
		var got []protocol.StoredResult
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("%s: decode: %v", tt.query, err)
		}
		if len(got) != tt.want {
			t.Errorf("%s: got %d results, want %d", tt.query, len(got), tt.want)
		}
	}
}

func TestSummaryHandler(t *testing.T) {
	db := openTestDB(t)
	db.InsertReport(testReport(time.Now()))
	handler := NewSummaryHandler(db, "secret", zap.NewNop())

	req := httptest.NewRequest("GET", "/summary", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var got map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["OK"] != 1 || got["CRIT"] != 1 || got["UNKNOWN"] != 1 {
		t.Errorf("summary = %v, want one each of OK/CRIT/UNKNOWN", got)
	}

	req = httptest.NewRequest("POST", "/summary", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST Status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
