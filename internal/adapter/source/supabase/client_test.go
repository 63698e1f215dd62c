package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/library", r.URL.Path)
		assert.Equal(t, "*,series(*)", r.URL.Query().Get("select"))
		assert.Equal(t, "added_at.desc,id.asc", r.URL.Query().Get("order"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon", r.Header.Get("Authorization"))
		w.Write([]byte(`[
			{"id": "l1", "series_id": "s1", "added_at": "2024-03-01T10:00:00Z",
			 "series": {"id": "s1", "title": "Saga", "publisher": "Image", "year": 2012}}
		]`))
	}))
	defer srv.Close()

	entries, err := NewClient(srv.URL, "anon", nil).Library(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Series)
	assert.Equal(t, "Saga", entries[0].Series.Title)
	assert.Equal(t, 2024, entries[0].AddedAt.Year())
}

func TestIssuesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/issues", r.URL.Path)
		assert.Equal(t, "eq.s1", r.URL.Query().Get("series_id"))
		assert.Equal(t, "number.asc", r.URL.Query().Get("order"))
		w.Write([]byte(`[{"id": "i1", "series_id": "s1", "number": 1}, {"id": "i2", "series_id": "s1", "number": 2}]`))
	}))
	defer srv.Close()

	issues, err := NewClient(srv.URL, "anon", nil).Issues(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, issues, 2)
	assert.Equal(t, 2, issues[1].Number)
}

func TestUnconfiguredSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	_, err := c.Series(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	_, err = c.Library(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	_, err = c.Issues(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Zero(t, hits.Load())
}

func TestErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/v1/series" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "column does not exist"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "anon", nil)
	_, err := c.Series(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuthFailed)

	_, err = c.Library(context.Background())
	assert.ErrorContains(t, err, "column does not exist")
}
