package foodapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, country string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL, Country: country, Timeout: 2 * time.Second}, logging.Discard())
}

const searchBody = `{"products":[
	{"code":"4600000000001","product_name":"Молоко 3.2%","brands":"Домик","nutriments":{"energy-kcal_100g":60,"proteins_100g":"2,9","fat_100g":3.2,"carbohydrates_100g":4.7}},
	{"code":"","product_name":"no code"},
	{"code":4600000000002,"generic_name":"Кефир","nutriments":{"energy-kj_100g":209.2}},
	{"code":"4600000000003","nutriments":{}}
]}`

func TestSearch_CountryFirstAndNormalises(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/cgi/search.pl", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "молоко", q.Get("search_terms"))
		assert.Equal(t, "1", q.Get("search_simple"))
		assert.Equal(t, "process", q.Get("action"))
		assert.Equal(t, "1", q.Get("json"))
		assert.Equal(t, "30", q.Get("page_size"))
		assert.Equal(t, searchFields, q.Get("fields"))
		assert.Equal(t, "russia", q.Get("countries_tags_en"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(searchBody))
	}, "russia")

	got, err := c.Search(context.Background(), "  молоко ", 100)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "4600000000001", got[0].Code)
	assert.Equal(t, "Молоко 3.2%", got[0].Name)
	assert.Equal(t, "Домик", got[0].Brand)
	require.NotNil(t, got[0].Protein)
	assert.InDelta(t, 2.9, *got[0].Protein, 1e-9)

	assert.Equal(t, "4600000000002", got[1].Code)
	assert.Equal(t, "Кефир", got[1].Name)
	require.NotNil(t, got[1].Kcal)
	assert.InDelta(t, 50, *got[1].Kcal, 1e-6)

	assert.Equal(t, unnamedProduct, got[2].Name)
	_, ok := got[2].Per100g()
	assert.False(t, ok)

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestSearch_FallsBackWithoutCountry(t *testing.T) {
	var withCountry, without int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("countries_tags_en") != "" {
			atomic.AddInt32(&withCountry, 1)
			_, _ = w.Write([]byte(`{"products":[]}`))
			return
		}
		atomic.AddInt32(&without, 1)
		_, _ = w.Write([]byte(searchBody))
	}, "russia")

	got, err := c.Search(context.Background(), "milk", 5)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.EqualValues(t, 1, withCountry)
	assert.EqualValues(t, 1, without)
}

func TestSearch_CachesResults(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(searchBody))
	}, "")

	_, err := c.Search(context.Background(), "Milk", 10)
	require.NoError(t, err)
	_, err = c.Search(context.Background(), " milk ", 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	_, err = c.Search(context.Background(), "milk", 11)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}, "")

	got, err := c.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_FailureIsImportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, "russia")

	_, err := c.Search(context.Background(), "milk", 10)
	require.Error(t, err)
	var ierr *common.ImportError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, SourceName, ierr.Source)
	assert.ErrorIs(t, err, common.ErrImport)
}

func TestSearch_BadJSONIsImportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}, "")

	_, err := c.Search(context.Background(), "milk", 10)
	assert.ErrorIs(t, err, common.ErrImport)
}

func TestProduct(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/product/4600000000001.json":
			_, _ = w.Write([]byte(`{"status":1,"product":{"product_name":"Творог 5%","brands":"Простоквашино",
				"nutriments":{"energy-kcal_100g":121,"proteins_100g":16,"fat_100g":5,"carbohydrates_100g":3}}}`))
		case "/api/v2/product/0000.json":
			_, _ = w.Write([]byte(`{"status":0,"status_verbose":"product not found"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, "")

	p, err := c.Product(context.Background(), "4600000000001")
	require.NoError(t, err)
	assert.Equal(t, "4600000000001", p.Code)
	per, ok := p.Per100g()
	require.True(t, ok)
	assert.InDelta(t, 121, per.Kcal, 1e-9)
	assert.InDelta(t, 16, per.Protein, 1e-9)

	_, err = c.Product(context.Background(), "0000")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, err, common.ErrImport)

	_, err = c.Product(context.Background(), "1111")
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = c.Product(context.Background(), " ")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestProduct_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Options{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, logging.Discard())

	_, err := c.Product(context.Background(), "1")
	assert.ErrorIs(t, err, common.ErrImport)
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, 1, ClampPageSize(-3))
	assert.Equal(t, 10, ClampPageSize(10))
	assert.Equal(t, MaxPageSize, ClampPageSize(500))
}

func TestSearchCache_Expires(t *testing.T) {
	c := newSearchCache(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.put("k", []Product{{Code: "1"}})
	got, ok := c.get("k")
	require.True(t, ok)
	assert.Len(t, got, 1)

	now = now.Add(2 * time.Minute)
	_, ok = c.get("k")
	assert.False(t, ok)
}
