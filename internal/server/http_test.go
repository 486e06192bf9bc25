package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xnoubis/rosetta/pkg/embeddings"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.StatePath = filepath.Join(t.TempDir(), "terrain.state")
	cfg.Embedder = embeddings.Config{Provider: "pseudo", Dimension: 16}
	return cfg
}

func testServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return s
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func getPath(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const ingestText = `The traveler crossed the ridge at dawn and saw the valley open below.
Rivers braided through the lowland, feeding terraced fields and slow canals.
In the market town, copper bells rang from the tower above the grain exchange.
Merchants argued over the price of salt while children chased geese between stalls.
At night the observatory on the hill tracked slow wheels of unfamiliar stars.
The astronomer kept her notebooks in a locked drawer beside the brass key.`

func TestHealthz(t *testing.T) {
	s := testServer(t, testConfig(t))
	rec := getPath(t, s.Handler(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("healthz expected 200, got %d", rec.Code)
	}
}

func TestEndpointsRequireIngest(t *testing.T) {
	s := testServer(t, testConfig(t))
	h := s.Handler()

	for _, path := range []string{"/terrain/step", "/terrain/run", "/terrain/coverage"} {
		if rec := postJSON(t, h, path, map[string]any{}); rec.Code != http.StatusNotFound {
			t.Errorf("%s on empty server: expected 404, got %d", path, rec.Code)
		}
	}
	if rec := getPath(t, h, "/terrain/stats"); rec.Code != http.StatusNotFound {
		t.Errorf("stats on empty server: expected 404, got %d", rec.Code)
	}
}

func TestIngestAndWalk(t *testing.T) {
	s := testServer(t, testConfig(t))
	h := s.Handler()

	rec := postJSON(t, h, "/terrain/ingest", IngestRequest{Source: "tale", Text: ingestText, K: 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("ingest failed with %d: %s", rec.Code, rec.Body.String())
	}
	var ing IngestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &ing); err != nil {
		t.Fatal(err)
	}
	if ing.Fragments == 0 {
		t.Fatal("ingest produced no fragments")
	}
	if !strings.HasPrefix(ing.Start, "tale:") {
		t.Errorf("start cursor %q does not carry the source prefix", ing.Start)
	}

	rec = postJSON(t, h, "/terrain/step", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("step failed with %d: %s", rec.Code, rec.Body.String())
	}
	var step StepResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &step); err != nil {
		t.Fatal(err)
	}
	if step.Step != 1 {
		t.Errorf("after one step counter is %d, want 1", step.Step)
	}
	if step.Turn != 1 && step.Turn != -1 {
		t.Errorf("turn must be ±1, got %d", step.Turn)
	}

	rec = postJSON(t, h, "/terrain/run", RunRequest{Steps: 30})
	if rec.Code != http.StatusOK {
		t.Fatalf("run failed with %d: %s", rec.Code, rec.Body.String())
	}
	var report RunReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.ID == "" {
		t.Error("run report has no id")
	}
	if report.Stats.Steps != 31 {
		t.Errorf("cumulative steps after 1+30 is %d, want 31", report.Stats.Steps)
	}

	rec = getPath(t, h, "/terrain/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats failed with %d", rec.Code)
	}
	var stats StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Fragments != ing.Fragments {
		t.Errorf("stats fragments %d, want %d", stats.Fragments, ing.Fragments)
	}
	if stats.Stats.Coverage <= 0 || stats.Stats.Coverage > 1 {
		t.Errorf("coverage %v out of range", stats.Stats.Coverage)
	}

	rec = getPath(t, h, "/terrain/runs")
	var runs RunsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs.Runs) != 1 {
		t.Errorf("got %d run reports, want 1", len(runs.Runs))
	}

	rec = getPath(t, h, "/terrain/snaps")
	if rec.Code != http.StatusOK {
		t.Fatalf("snaps failed with %d", rec.Code)
	}
}

func TestLookupEndpoint(t *testing.T) {
	s := testServer(t, testConfig(t))
	h := s.Handler()

	if rec := postJSON(t, h, "/terrain/ingest", IngestRequest{Text: ingestText}); rec.Code != http.StatusOK {
		t.Fatalf("ingest failed: %s", rec.Body.String())
	}

	rec := postJSON(t, h, "/terrain/lookup", LookupRequest{Query: "brass key", K: 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("lookup failed with %d: %s", rec.Code, rec.Body.String())
	}
	var resp LookupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Matches) == 0 || len(resp.Matches) > 3 {
		t.Errorf("got %d matches, want 1..3", len(resp.Matches))
	}
	for i := 1; i < len(resp.Matches); i++ {
		if resp.Matches[i].Similarity > resp.Matches[i-1].Similarity {
			t.Errorf("matches are not sorted descending")
		}
	}

	if rec := postJSON(t, h, "/terrain/lookup", LookupRequest{}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty query: expected 400, got %d", rec.Code)
	}
}

func TestIngestValidation(t *testing.T) {
	s := testServer(t, testConfig(t))
	h := s.Handler()

	if rec := postJSON(t, h, "/terrain/ingest", IngestRequest{}); rec.Code != http.StatusBadRequest {
		t.Errorf("neither text nor folder: expected 400, got %d", rec.Code)
	}
	req := IngestRequest{Text: "x", Folder: "y"}
	if rec := postJSON(t, h, "/terrain/ingest", req); rec.Code != http.StatusBadRequest {
		t.Errorf("both text and folder: expected 400, got %d", rec.Code)
	}
	req = IngestRequest{Text: ingestText, Precision: "int4"}
	if rec := postJSON(t, h, "/terrain/ingest", req); rec.Code != http.StatusBadRequest {
		t.Errorf("bad precision: expected 400, got %d", rec.Code)
	}
}

func TestAuthToken(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuthToken = "test-secret-token"
	s := testServer(t, cfg)
	h := s.Handler()

	// healthz stays open
	if rec := getPath(t, h, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz expected 200, got %d", rec.Code)
	}

	if rec := getPath(t, h, "/terrain/stats"); rec.Code != http.StatusUnauthorized {
		t.Errorf("protected expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/terrain/runs", nil)
	req.Header.Add("Authorization", "Bearer test-secret-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("protected with token expected 200, got %d", rec.Code)
	}
}

func TestStatePersistsAcrossServers(t *testing.T) {
	cfg := testConfig(t)

	s1 := testServer(t, cfg)
	h := s1.Handler()
	if rec := postJSON(t, h, "/terrain/ingest", IngestRequest{Text: ingestText}); rec.Code != http.StatusOK {
		t.Fatalf("ingest failed: %s", rec.Body.String())
	}
	if rec := postJSON(t, h, "/terrain/run", RunRequest{Steps: 12}); rec.Code != http.StatusOK {
		t.Fatalf("run failed: %s", rec.Body.String())
	}

	s2 := testServer(t, cfg)
	rec := getPath(t, s2.Handler(), "/terrain/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats on reloaded server failed with %d", rec.Code)
	}
	var stats StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Stats.Steps != 12 {
		t.Errorf("reloaded walk is at step %d, want 12", stats.Stats.Steps)
	}
}

func TestLoadConfigStrict(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "good.yaml")
	writeFile(t, path, "listen_addr: \":9095\"\nwalk:\n  k: 4\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ListenAddr != ":9095" || cfg.Walk.K != 4 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	// Unset fields keep their defaults.
	if cfg.StatePath != "terrain.state" {
		t.Errorf("state path default lost: %q", cfg.StatePath)
	}

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "listn_addr: \":9095\"\n")
	if _, err := LoadConfig(bad); err == nil {
		t.Error("unknown keys must be rejected")
	}

	prec := filepath.Join(dir, "prec.yaml")
	writeFile(t, prec, "walk:\n  precision: int8\n")
	if _, err := LoadConfig(prec); err == nil {
		t.Error("invalid precision must be rejected")
	}
}
