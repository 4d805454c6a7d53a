// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/xrecommender/internal/database"
	"github.com/tomtom215/xrecommender/internal/embedding"
	"github.com/tomtom215/xrecommender/internal/models"
	"github.com/tomtom215/xrecommender/internal/recommend"
)

const testDim = 3

// testEnv is a full handler stack over an in-memory badger store.
type testEnv struct {
	db      *database.DB
	updater *recommend.Updater
	engine  *recommend.Engine
	handler *Handler
	server  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(database.Options{InMemory: true, Dimension: testDim}, zerolog.Nop())
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	cfg := recommend.DefaultConfig()
	cfg.Workers = 2

	updater := recommend.NewUpdater(db, cfg, zerolog.Nop())
	engine, err := recommend.NewEngine(db, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	updater.SetInvalidator(engine)
	explainer := recommend.NewExplainer(db, cfg, zerolog.Nop())

	handler := NewHandler(db, updater, engine, explainer)
	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.RateLimitDisabled = true
	router := NewRouter(handler, NewChiMiddleware(mwCfg))

	return &testEnv{
		db:      db,
		updater: updater,
		engine:  engine,
		handler: handler,
		server:  router.SetupChi(),
	}
}

func (e *testEnv) createUser(t *testing.T, name string) int {
	t.Helper()
	u := &models.User{Username: name}
	if err := e.db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%q) error = %v", name, err)
	}
	return u.ID
}

func (e *testEnv) createBook(t *testing.T, title string, emb embedding.Vector, keywords ...string) int {
	t.Helper()
	ctx := context.Background()
	b := &models.Book{Title: title, Cover: "https://covers.example/" + title + ".jpg", Embedding: emb}
	for _, word := range keywords {
		kw, err := e.db.EnsureKeyword(ctx, word)
		if err != nil {
			t.Fatalf("EnsureKeyword(%q) error = %v", word, err)
		}
		b.KeywordIDs = append(b.KeywordIDs, kw.ID)
	}
	if err := e.db.CreateBook(ctx, b); err != nil {
		t.Fatalf("CreateBook(%q) error = %v", title, err)
	}
	return b.ID
}

func (e *testEnv) rate(t *testing.T, userID, bookID int, value float64) {
	t.Helper()
	if _, err := e.updater.Rate(context.Background(), userID, bookID, value); err != nil {
		t.Fatalf("Rate(%d, %d, %v) error = %v", userID, bookID, value, err)
	}
}

// do sends a request through the full router.
func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

// decodeEnvelope unmarshals the API envelope, decoding data into dst when
// dst is non-nil.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, dst any) models.APIResponse {
	t.Helper()

	var raw struct {
		Status   string           `json:"status"`
		Data     json.RawMessage  `json:"data"`
		Metadata models.Metadata  `json:"metadata"`
		Error    *models.APIError `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	if dst != nil && len(raw.Data) > 0 && string(raw.Data) != "null" {
		if err := json.Unmarshal(raw.Data, dst); err != nil {
			t.Fatalf("Failed to decode data %s: %v", raw.Data, err)
		}
	}
	return models.APIResponse{Status: raw.Status, Metadata: raw.Metadata, Error: raw.Error}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", w.Code, want, w.Body.String())
	}
}

func expectErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, w, status)
	resp := decodeEnvelope(t, w, nil)
	if resp.Status != "error" {
		t.Errorf("envelope status = %q, want error", resp.Status)
	}
	if resp.Error == nil || resp.Error.Code != code {
		t.Errorf("error = %+v, want code %s", resp.Error, code)
	}
}
