package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/pipeline"
	"github.com/mvollan/stirlingforge/pkg/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return NewServer(pipeline.NewRunner(nil, logger), st, "", logger)
}

func postDesign(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/designs/", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestCreateDesign(t *testing.T) {
	srv := testServer(t)

	rec := postDesign(t, srv, `{}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	snap, err := design.UnmarshalSnapshot(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if snap.RunID == "" || len(snap.Components) != 8 {
		t.Errorf("unexpected snapshot: run_id=%q components=%d", snap.RunID, len(snap.Components))
	}

	// The snapshot is persisted and retrievable.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/designs/"+snap.RunID, nil)
	getRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(getRec, req)
	if getRec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", getRec.Code)
	}
	got, err := design.UnmarshalSnapshot(getRec.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if got.RunID != snap.RunID {
		t.Errorf("got run %q, want %q", got.RunID, snap.RunID)
	}
}

func TestCreateDesignWithOverrides(t *testing.T) {
	srv := testServer(t)
	rec := postDesign(t, srv, `{"overrides":{"power_bore":14}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	snap, err := design.UnmarshalSnapshot(rec.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range snap.Parameters {
		if p.Name == "power_bore" && p.Value != 14 {
			t.Errorf("override not applied: %v", p.Value)
		}
	}
}

func TestCreateDesignInvalidOverride(t *testing.T) {
	srv := testServer(t)

	rec := postDesign(t, srv, `{"overrides":{"warp_factor":9}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != "INVALID_PARAMETER" {
		t.Errorf("error code = %q", body.Error.Code)
	}
}

func TestCreateDesignMalformedBody(t *testing.T) {
	srv := testServer(t)
	rec := postDesign(t, srv, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetDesignNotFound(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/designs/nope", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListDesigns(t *testing.T) {
	srv := testServer(t)
	if rec := postDesign(t, srv, `{}`); rec.Code != http.StatusCreated {
		t.Fatal(rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/designs/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		RunIDs []string `json:"run_ids"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.RunIDs) != 1 {
		t.Errorf("got %d run ids, want 1", len(body.RunIDs))
	}
}

func TestHealthz(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
