package records

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "github.com/yungbote/claimintake-backend/internal/pkg/errors"
	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func newTestStore(t *testing.T, handler http.HandlerFunc) Store {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store, err := NewAirtable(testLogger(t), AirtableConfig{
		APIKey:  "key",
		BaseID:  "appBASE",
		BaseURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("NewAirtable: %v", err)
	}
	return store
}

func TestFindOnePassesFilterAndAuth(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method: got %s", r.Method)
		}
		if r.URL.Path != "/v0/appBASE/Claims" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("authorization: got %q", got)
		}
		if got := r.URL.Query().Get("filterByFormula"); got != `LOWER({Email}) = "a@x.com"` {
			t.Errorf("filterByFormula: got %q", got)
		}
		if got := r.URL.Query().Get("maxRecords"); got != "1" {
			t.Errorf("maxRecords: got %q", got)
		}
		_, _ = w.Write([]byte(`{"records":[{"id":"rec00000000000042","fields":{"Email":"a@x.com"}}]}`))
	})

	rec, err := store.FindOne(context.Background(), "Claims", EqFold("Email", "A@X.com"))
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if rec.ID != "rec00000000000042" || rec.Str("Email") != "a@x.com" {
		t.Fatalf("record: got %+v", rec)
	}
}

func TestFindOneMissingIsNotFound(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"records":[]}`))
	})

	_, err := store.FindOne(context.Background(), "Claims", EqFold("Email", "a@x.com"))
	if !errors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}

func TestCreatePostsTypecastFields(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Fields   map[string]any `json:"fields"`
			Typecast bool           `json:"typecast"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if !req.Typecast {
			t.Errorf("typecast must be set")
		}
		if req.Fields["Name"] != "Marine" {
			t.Errorf("fields: got %v", req.Fields)
		}
		_, _ = w.Write([]byte(`{"id":"rec00000000000001","fields":{"Name":"Marine"}}`))
	})

	rec, err := store.Create(context.Background(), "Classes", Fields{"Name": "Marine"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID != "rec00000000000001" {
		t.Fatalf("record id: got %q", rec.ID)
	}
}

func TestUpdatePatchesRecordPath(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method: got %s", r.Method)
		}
		if r.URL.Path != "/v0/appBASE/Claims/rec00000000000042" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"rec00000000000042","fields":{"Notes":"merged"}}`))
	})

	rec, err := store.Update(context.Background(), "Claims", "rec00000000000042", Fields{"Notes": "merged"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Str("Notes") != "merged" {
		t.Fatalf("record: got %+v", rec)
	}
}

func TestGetOrCreateByNameCreatesOnlyWhenAbsent(t *testing.T) {
	var created int
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"records":[]}`))
		case http.MethodPost:
			created++
			_, _ = w.Write([]byte(`{"id":"rec00000000000009","fields":{"Name":"Hail"}}`))
		}
	})

	rec, wasCreated, err := store.GetOrCreateByName(context.Background(), "Classes", "Name", "Hail")
	if err != nil {
		t.Fatalf("GetOrCreateByName: %v", err)
	}
	if !wasCreated || rec.ID != "rec00000000000009" || created != 1 {
		t.Fatalf("created=%v id=%q posts=%d", wasCreated, rec.ID, created)
	}
}

func TestGetOrCreateByNameReturnsExisting(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			t.Errorf("no create may happen when the name exists")
		}
		_, _ = w.Write([]byte(`{"records":[{"id":"rec00000000000011","fields":{"Name":"Hail"}}]}`))
	})

	rec, wasCreated, err := store.GetOrCreateByName(context.Background(), "Classes", "Name", "hail")
	if err != nil {
		t.Fatalf("GetOrCreateByName: %v", err)
	}
	if wasCreated || rec.ID != "rec00000000000011" {
		t.Fatalf("created=%v id=%q", wasCreated, rec.ID)
	}
}

func TestNon2xxSurfacesStatus(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"type":"INVALID_REQUEST"}}`))
	})

	_, err := store.Create(context.Background(), "Claims", Fields{"Email": "a@x.com"})
	if err == nil {
		t.Fatalf("want error on 422")
	}
}
