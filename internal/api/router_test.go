package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/codec"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/config"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/domain"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/logger"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/project"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/repository"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/service"
)

// stubWiki reports every page as existing, except on endpoints listed in down.
type stubWiki struct {
	down map[string]bool
}

func (s *stubWiki) QueryPages(_ context.Context, endpoint string, keys []domain.PageKey) ([]domain.PageInfo, error) {
	if s.down[endpoint] {
		return nil, &domain.TransportError{Endpoint: endpoint, Status: http.StatusServiceUnavailable, Err: errors.New("unavailable")}
	}
	out := make([]domain.PageInfo, len(keys))
	for i, k := range keys {
		if id, ok := k.ID(); ok {
			out[i] = domain.PageInfo{PageID: id, Title: "Page " + strconv.FormatInt(id, 10)}
			continue
		}
		title, _ := k.Title()
		out[i] = domain.PageInfo{PageID: int64(len(title)), Title: title, Description: "About " + title}
	}
	return out, nil
}

type testServer struct {
	handler http.Handler
	wiki    *stubWiki
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	site := project.SiteContext{Host: "en.wikipedia.org", ScriptPath: "/w", ArticlePath: "/wiki/$1"}
	resolver := project.NewResolver(site)
	wiki := &stubWiki{down: map[string]bool{}}

	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "api.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)

	aggregator := service.NewAggregator(
		service.NewBatchFetcher(wiki, resolver),
		service.NewCardEnricher(resolver),
		resolver,
	)
	lists := service.NewListService(repository.NewListRepository(db), aggregator, codec.New(resolver))
	log := logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard, ServiceName: "test"})

	router := SetupRouter(aggregator, lists, site, &config.ServerConfig{
		Mode: "test",
		CORS: config.CORSConfig{AllowAllOrigins: true},
	}, log)

	return &testServer{handler: router, wiki: wiki}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type cardsBody struct {
	Cards []domain.Card `json:"cards"`
	Total int           `json:"total"`
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "en.wikipedia.org", body["site"])
}

func TestCards(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/cards", map[string]any{
		"entries": []map[string]any{
			{"id": "a", "project": "fr", "title": "Lune"},
			{"project": "@local", "pageid": 42},
			{"id": "c", "project": "en", "title": "Moon"},
		},
		"group_by_project": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[cardsBody](t, rec)
	require.Equal(t, 3, body.Total)
	// groups in order of first appearance; @local and en share one group
	assert.Equal(t, "a", body.Cards[0].EntryID)
	assert.Equal(t, "https://fr.wikipedia.org", body.Cards[0].Project)
	assert.Equal(t, "1", body.Cards[1].EntryID)
	assert.Equal(t, "Page 42", body.Cards[1].Title)
	assert.Equal(t, "c", body.Cards[2].EntryID)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Moon", body.Cards[2].URL)
}

func TestCards_Errors(t *testing.T) {
	srv := newTestServer(t)

	t.Run("entry without key", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/v1/cards", map[string]any{
			"entries": []map[string]any{{"project": "en"}},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("size limit", func(t *testing.T) {
		entries := make([]map[string]any, service.MaxKeysPerProject+1)
		for i := range entries {
			entries[i] = map[string]any{"project": "en", "pageid": i + 1}
		}
		rec := srv.do(t, http.MethodPost, "/api/v1/cards", map[string]any{"entries": entries})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("remote wiki down", func(t *testing.T) {
		srv.wiki.down["https://de.wikipedia.org/w/api.php"] = true
		rec := srv.do(t, http.MethodPost, "/api/v1/cards", map[string]any{
			"entries": []map[string]any{
				{"project": "en", "title": "Moon"},
				{"project": "de", "title": "Mond"},
			},
		})
		assert.Equal(t, http.StatusBadGateway, rec.Code)

		body := decode[map[string]string](t, rec)
		assert.NotEmpty(t, body["request_id"])
		assert.Equal(t, rec.Header().Get("X-Request-ID"), body["request_id"])
	})
}

func TestShare(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/share", map[string]any{
		"name": "Moons",
		"list": map[string]any{"en": []any{"Moon", 7}, "fr": []any{"Lune"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode[map[string]string](t, rec)["token"]
	require.NotEmpty(t, token)

	rec = srv.do(t, http.MethodGet, "/api/v1/share?token="+token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	shared := decode[service.SharedList](t, rec)
	assert.Equal(t, "Moons", shared.Name)
	require.Len(t, shared.Cards, 3)
	assert.Equal(t, "Moon", shared.Cards[0].Title)
	assert.Equal(t, "Page 7", shared.Cards[1].Title)
	assert.Equal(t, "Lune", shared.Cards[2].Title)
}

func TestShare_BadToken(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/share?token=%25%25garbage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Empty(t, body["cards"])
	assert.NotEmpty(t, body["error"])

	rec = srv.do(t, http.MethodGet, "/api/v1/share", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLists(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/lists", map[string]any{"name": "Reading", "description": "later"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	list := decode[domain.ReadingList](t, rec)
	base := "/api/v1/lists/" + strconv.FormatUint(uint64(list.ID), 10)

	rec = srv.do(t, http.MethodPost, base+"/entries", map[string]any{"project": "en", "title": "Moon"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	moon := decode[domain.ReadingListEntry](t, rec)

	rec = srv.do(t, http.MethodPost, base+"/entries", map[string]any{"project": "fr", "pageid": 3})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, http.MethodGet, base+"/cards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cards := decode[cardsBody](t, rec)
	require.Equal(t, 2, cards.Total)
	assert.Equal(t, strconv.FormatUint(uint64(moon.ID), 10), cards.Cards[0].EntryID)

	rec = srv.do(t, http.MethodDelete, base+"/entries/"+strconv.FormatUint(uint64(moon.ID), 10), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodGet, base+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[map[string]string](t, rec)["token"]

	rec = srv.do(t, http.MethodPost, "/api/v1/lists/import", map[string]any{"token": token})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	imported := decode[domain.ReadingList](t, rec)
	assert.Equal(t, "Reading", imported.Name)
	assert.NotEqual(t, list.ID, imported.ID)

	rec = srv.do(t, http.MethodGet, "/api/v1/lists/"+strconv.FormatUint(uint64(imported.ID), 10)+"/cards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cards = decode[cardsBody](t, rec)
	require.Equal(t, 1, cards.Total)
	assert.Equal(t, "Page 3", cards.Cards[0].Title)
}

func TestLists_Errors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{name: "missing name", method: http.MethodPost, path: "/api/v1/lists", body: map[string]any{}, want: http.StatusBadRequest},
		{name: "bad id", method: http.MethodGet, path: "/api/v1/lists/abc", want: http.StatusBadRequest},
		{name: "unknown list", method: http.MethodGet, path: "/api/v1/lists/99", want: http.StatusNotFound},
		{name: "unknown list cards", method: http.MethodGet, path: "/api/v1/lists/99/cards", want: http.StatusNotFound},
		{name: "bad import token", method: http.MethodPost, path: "/api/v1/lists/import", body: map[string]any{"token": "!!"}, want: http.StatusBadRequest},
		{name: "entry without key", method: http.MethodPost, path: "/api/v1/lists/1/entries", body: map[string]any{"project": "en"}, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.True(t, strings.Contains(rec.Body.String(), "error"))
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cards", nil)
	req.Header.Set("Origin", "https://fr.wikipedia.org")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
