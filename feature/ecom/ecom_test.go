package ecom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"catalog-sync/core/apiclient"
	"catalog-sync/core/models"
	"catalog-sync/core/update"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type call struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// shop is an in-memory product backend.
type shop struct {
	mu         sync.Mutex
	calls      []call
	products   map[string]map[string]any
	images     map[string][]map[string]any
	failSrc    map[string]bool
	failDelete bool
	nextID     int
}

func newShop() *shop {
	return &shop{
		products: map[string]map[string]any{},
		images:   map[string][]map[string]any{},
		failSrc:  map[string]bool{},
		nextID:   500,
	}
}

func (s *shop) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Method != http.MethodGet {
			n++
		}
	}
	return n
}

func (s *shop) posts() []call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []call
	for _, c := range s.calls {
		if c.Method == http.MethodPost {
			out = append(out, c)
		}
	}
	return out
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *shop) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
	raw, _ := io.ReadAll(r.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &c.Body)
	}
	s.calls = append(s.calls, c)

	parts := strings.Split(strings.TrimPrefix(strings.TrimSuffix(r.URL.Path, ".json"), "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "products":
		var found []map[string]any
		for _, p := range s.products {
			if p["sku"] == r.URL.Query().Get("sku") {
				found = append(found, p)
			}
		}
		if len(found) == 0 {
			reply(w, 404, map[string]any{"error": "no products"})
			return
		}
		reply(w, 200, map[string]any{"products": found})
	case len(parts) == 2:
		p, ok := s.products[parts[1]]
		if !ok {
			reply(w, 404, map[string]any{})
			return
		}
		if r.Method == http.MethodPut {
			var body struct {
				Product map[string]any `json:"product"`
			}
			_ = json.Unmarshal(raw, &body)
			for k, v := range body.Product {
				p[k] = v
			}
		}
		reply(w, 200, map[string]any{"product": p})
	case len(parts) == 3 && r.Method == http.MethodGet:
		reply(w, 200, map[string]any{"images": s.images[parts[1]]})
	case len(parts) == 3 && r.Method == http.MethodPost:
		var body struct {
			Image map[string]any `json:"image"`
		}
		_ = json.Unmarshal(raw, &body)
		if s.failSrc[fmt.Sprint(body.Image["src"])] {
			reply(w, 422, map[string]any{"error": "bad image"})
			return
		}
		s.nextID++
		img := map[string]any{"id": s.nextID, "src": body.Image["src"], "sortOrder": body.Image["sortOrder"]}
		s.images[parts[1]] = append(s.images[parts[1]], img)
		reply(w, 201, map[string]any{"image": img})
	case len(parts) == 4 && r.Method == http.MethodDelete:
		if s.failDelete {
			reply(w, 500, map[string]any{})
			return
		}
		imgs := s.images[parts[1]]
		for i, img := range imgs {
			if fmt.Sprint(img["id"]) == parts[3] {
				s.images[parts[1]] = append(imgs[:i], imgs[i+1:]...)
				break
			}
		}
		reply(w, 200, map[string]any{})
	default:
		reply(w, 404, map[string]any{})
	}
}

func newTestClient(t *testing.T, s *shop) *Client {
	t.Helper()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	client, err := NewClient(&models.Credentials{AccessToken: "tok", ShopID: "9"},
		Config{BaseURL: srv.URL, Config: apiclient.Config{MaxAttempts: 1}})
	require.NoError(t, err)
	return client
}

func imagesRequest(urls string) models.UpdateRequest {
	return models.UpdateRequest{
		Match:     models.Match{SKU: "A2", EcomID: "200"},
		Backend:   models.BackendEcom,
		Operation: models.OpImages,
		Desired:   map[string]string{FieldImages: urls},
	}
}

func TestLookup(t *testing.T) {
	s := newShop()
	s.products["200"] = map[string]any{"id": 200, "sku": "A2"}
	lookup := NewLookup(newTestClient(t, s))

	id, err := lookup.FindBySKU(context.Background(), "A2")
	require.NoError(t, err)
	assert.Equal(t, "200", id)
	assert.Contains(t, s.calls[0].Query, "limit=1")

	id, err = lookup.FindBySKU(context.Background(), "A1")
	require.NoError(t, err)
	assert.Empty(t, id)

	s.products["201"] = map[string]any{"id": 201, "sku": "A2"}
	ids, err := lookup.FindByManufacturerSKU(context.Background(), "A2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"200", "201"}, ids)
}

func TestDescriptions(t *testing.T) {
	s := newShop()
	s.products["200"] = map[string]any{"id": 200, "description": "Short", "content": "old long"}
	u := update.NewFieldUpdater(NewDescriptions(newTestClient(t, s)), zap.NewNop())
	req := models.UpdateRequest{
		Match:   models.Match{SKU: "A2", EcomID: "200"},
		Backend: models.BackendEcom,
		Desired: map[string]string{FieldShort: "Short", FieldLong: "New long"},
	}

	res := u.Apply(context.Background(), req, update.Options{})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, map[string]string{FieldLong: "New long"}, res.Changes)

	put := s.calls[len(s.calls)-1]
	assert.Equal(t, http.MethodPut, put.Method)
	assert.Equal(t, "/products/200.json", put.Path)
	assert.Equal(t, map[string]any{"product": map[string]any{"content": "New long"}}, put.Body)

	again := u.Apply(context.Background(), req, update.Options{})
	assert.True(t, again.Success)
	assert.Equal(t, update.NoteUpToDate, again.Note)
	assert.Equal(t, 1, s.writes())
}

func TestDescriptions_MissingProductID(t *testing.T) {
	s := newShop()
	u := update.NewFieldUpdater(NewDescriptions(newTestClient(t, s)), zap.NewNop())

	res := u.Apply(context.Background(), models.UpdateRequest{
		Match:   models.Match{SKU: "A1", RetailID: "100"},
		Desired: map[string]string{FieldShort: "x"},
	}, update.Options{})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, models.ErrMissingID.Error())
	assert.Empty(t, s.calls)
}

func TestImages_AppendSkipsExisting(t *testing.T) {
	s := newShop()
	s.images["200"] = []map[string]any{{"id": 1, "src": "https://cdn.test/u1.jpg", "sortOrder": 1}}
	u := NewImages(newTestClient(t, s), ModeAppend, zap.NewNop())

	res := u.Apply(context.Background(), imagesRequest("https://cdn.test/u1.jpg, https://cdn.test/u2.jpg"), update.Options{})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, map[string]string{"https://cdn.test/u2.jpg": "2"}, res.Changes)

	posts := s.posts()
	require.Len(t, posts, 1)
	assert.Equal(t, map[string]any{"image": map[string]any{"src": "https://cdn.test/u2.jpg", "sortOrder": float64(2)}}, posts[0].Body)

	again := u.Apply(context.Background(), imagesRequest("https://cdn.test/u1.jpg,https://cdn.test/u2.jpg"), update.Options{})
	assert.True(t, again.Success)
	assert.Equal(t, NoteAllExisting, again.Note)
	assert.Len(t, s.posts(), 1)
}

func TestImages_AppendForced(t *testing.T) {
	s := newShop()
	s.images["200"] = []map[string]any{{"id": 1, "src": "https://cdn.test/u1.jpg"}}
	u := NewImages(newTestClient(t, s), ModeAppend, zap.NewNop())

	res := u.Apply(context.Background(), imagesRequest("https://cdn.test/u1.jpg"), update.Options{Force: true})
	require.True(t, res.Success)
	assert.Equal(t, map[string]string{"https://cdn.test/u1.jpg": "2"}, res.Changes)
}

func TestImages_Replace(t *testing.T) {
	s := newShop()
	s.images["200"] = []map[string]any{
		{"id": 1, "src": "https://cdn.test/a.jpg"},
		{"id": 2, "src": "https://cdn.test/b.jpg"},
	}
	s.failDelete = true
	u := NewImages(newTestClient(t, s), ModeReplace, zap.NewNop())

	res := u.Apply(context.Background(), imagesRequest("https://cdn.test/x.jpg,https://cdn.test/y.jpg"), update.Options{})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, map[string]string{
		"https://cdn.test/x.jpg": "1",
		"https://cdn.test/y.jpg": "2",
	}, res.Changes)

	var deletes int
	for _, c := range s.calls {
		if c.Method == http.MethodDelete {
			deletes++
		}
	}
	assert.Equal(t, 2, deletes)
}

func TestImages_PartialFailure(t *testing.T) {
	s := newShop()
	s.failSrc["https://cdn.test/bad.jpg"] = true
	u := NewImages(newTestClient(t, s), ModeAppend, zap.NewNop())

	res := u.Apply(context.Background(), imagesRequest("https://cdn.test/ok.jpg,https://cdn.test/bad.jpg"), update.Options{})
	assert.True(t, res.Success)
	assert.Equal(t, "1 image uploads failed", res.Error)
	assert.Len(t, res.Changes, 1)

	s.failSrc["https://cdn.test/worse.jpg"] = true
	all := u.Apply(context.Background(), imagesRequest("https://cdn.test/worse.jpg,https://cdn.test/bad.jpg"), update.Options{})
	assert.False(t, all.Success)
	assert.Equal(t, update.StageWrite, all.Stage)
	assert.Contains(t, all.Error, "all 2 image uploads failed")
}

func TestImages_InvalidURLsDropped(t *testing.T) {
	s := newShop()
	core, logs := observer.New(zapcore.WarnLevel)
	u := NewImages(newTestClient(t, s), ModeAppend, zap.New(core))

	res := u.Apply(context.Background(), imagesRequest("ftp://x/a.jpg, not a url ,"), update.Options{})
	assert.True(t, res.Success)
	assert.Equal(t, NoteNoValidURLs, res.Note)
	assert.Empty(t, s.calls)
	assert.Equal(t, 2, logs.FilterMessage("Dropping invalid image URL").Len())
}

func TestImages_DryRunAndSkip(t *testing.T) {
	s := newShop()
	client := newTestClient(t, s)

	res := NewImages(client, ModeReplace, nil).Apply(context.Background(),
		imagesRequest("https://cdn.test/a.jpg"), update.Options{DryRun: true})
	assert.True(t, res.Success)
	assert.Equal(t, map[string]string{"https://cdn.test/a.jpg": "replace"}, res.Changes)

	skipped := NewImages(client, ModeSkip, nil).Apply(context.Background(),
		imagesRequest("https://cdn.test/a.jpg"), update.Options{})
	assert.True(t, skipped.Success)
	assert.Equal(t, NoteSkipped, skipped.Note)

	assert.Empty(t, s.calls)
}

func TestImages_StatePath(t *testing.T) {
	s := newShop()
	var states []update.State
	u := NewImages(newTestClient(t, s), ModeAppend, nil)

	u.Apply(context.Background(), imagesRequest("https://cdn.test/a.jpg"), update.Options{
		Observe: func(_ models.UpdateRequest, st update.State) { states = append(states, st) },
	})
	assert.Equal(t, []update.State{
		update.StatePending, update.StateFetching, update.StateWriting, update.StateSuccess,
	}, states)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseURLs(" a, ,b ,"))
	assert.Nil(t, ParseURLs(""))

	valid, invalid := ValidateURLs([]string{"HTTPS://x/y", "http://", "www.x.com"})
	assert.Equal(t, []string{"HTTPS://x/y"}, valid)
	assert.Equal(t, []string{"http://", "www.x.com"}, invalid)

	m, err := ParseImageMode("")
	assert.NoError(t, err)
	assert.Equal(t, ModeAppend, m)
	_, err = ParseImageMode("merge")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestBackend(t *testing.T) {
	_, err := NewBackend(&models.Credentials{AccessToken: "t"}, Config{ImageMode: "merge"}, nil)
	assert.ErrorIs(t, err, models.ErrValidation)

	b, err := NewBackend(&models.Credentials{AccessToken: "t", ShopID: "9"}, Config{BaseURL: "http://localhost"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "9", b.Client().ShopID())
	ups := b.Updaters(context.Background())
	require.Len(t, ups, 2)
	assert.Equal(t, models.OpImages, ups[1].Name())

	skip, err := NewBackend(&models.Credentials{AccessToken: "t"}, Config{BaseURL: "http://localhost", ImageMode: "skip"}, nil)
	require.NoError(t, err)
	assert.Len(t, skip.Updaters(context.Background()), 1)
}
