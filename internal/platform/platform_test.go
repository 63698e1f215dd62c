package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStreams struct {
	err error
}

func (f *fakeStreams) GetStream(_ context.Context, q domain.StreamQuery) (*domain.StreamResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.StreamResult{
		Provider: "fake",
		Sources:  []domain.StreamSource{{URL: "https://cdn/" + q.Title + ".m3u8", Quality: "auto", IsM3U8: true}},
		Headers:  map[string]string{"Referer": "https://host/"},
	}, nil
}

type fakeCloud struct{}

func (fakeCloud) Library(context.Context) ([]domain.LibraryEntry, error) {
	return []domain.LibraryEntry{{ID: "1", SeriesID: "s1", Series: &domain.Series{ID: "s1", Title: "Saga"}}}, nil
}

func (fakeCloud) Series(context.Context) ([]domain.Series, error) {
	return []domain.Series{{ID: "s1", Title: "Saga"}}, nil
}

func (fakeCloud) Issues(_ context.Context, seriesID string) ([]domain.Issue, error) {
	if seriesID != "s1" {
		return nil, domain.ErrNotFound
	}
	return []domain.Issue{{ID: "i1", SeriesID: "s1", Number: 1}}, nil
}

type fakeFetcher struct{}

func (fakeFetcher) Fetch(_ context.Context, rawURL string, header http.Header) ([]byte, error) {
	if rawURL == "https://missing" {
		return nil, domain.ErrNotFound
	}
	return []byte(rawURL + "|" + header.Get("X-User-Agent")), nil
}

// serveHelper starts a helper on a fresh socket and returns its path
func serveHelper(t *testing.T, direct *Direct) string {
	t.Helper()

	// unix socket paths have a short length limit, so avoid t.TempDir
	dir, err := os.MkdirTemp("", "mq")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "h.sock")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewHelper(direct, "test", adapter.NullLogger()).Serve(ctx, socket) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		_, err := os.Stat(socket)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	return socket
}

func TestDesktopRoundTrip(t *testing.T) {
	socket := serveHelper(t, NewDirect(&fakeStreams{}, fakeCloud{}, fakeFetcher{}))

	d := NewDesktop(socket, adapter.NullLogger())
	require.NoError(t, d.Handshake(context.Background()))
	assert.Equal(t, "desktop", d.Name())

	res, err := d.GetStream(context.Background(), domain.StreamQuery{Title: "Dune", Kind: domain.KindMovie})
	require.NoError(t, err)
	assert.Equal(t, "fake", res.Provider)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "https://cdn/Dune.m3u8", res.Sources[0].URL)
	assert.Equal(t, "https://host/", res.Headers["Referer"])

	body, err := d.Fetcher().Fetch(context.Background(), "https://subs", http.Header{"X-User-Agent": {"ua"}})
	require.NoError(t, err)
	assert.Equal(t, "https://subs|ua", string(body))

	_, err = d.Fetcher().Fetch(context.Background(), "https://missing", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDesktopCloud(t *testing.T) {
	socket := serveHelper(t, NewDirect(&fakeStreams{}, fakeCloud{}, fakeFetcher{}))

	d := NewDesktop(socket, adapter.NullLogger())
	require.NoError(t, d.Handshake(context.Background()))

	cloud := d.CloudAPI()
	require.NotNil(t, cloud)

	lib, err := cloud.Library(context.Background())
	require.NoError(t, err)
	require.Len(t, lib, 1)
	assert.Equal(t, "Saga", lib[0].Series.Title)

	issues, err := cloud.Issues(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, issues, 1)

	_, err = cloud.Issues(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDesktopCloudNotConfigured(t *testing.T) {
	socket := serveHelper(t, NewDirect(&fakeStreams{}, nil, fakeFetcher{}))

	d := NewDesktop(socket, adapter.NullLogger())
	require.NoError(t, d.Handshake(context.Background()))
	assert.Nil(t, d.CloudAPI())

	// the cloud client is still reachable by path and reports the tag
	_, err := desktopCloud{d}.Library(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestDesktopStreamErrorsKeepSentinel(t *testing.T) {
	socket := serveHelper(t, NewDirect(&fakeStreams{err: domain.ErrNoStream}, nil, fakeFetcher{}))

	d := NewDesktop(socket, adapter.NullLogger())
	_, err := d.GetStream(context.Background(), domain.StreamQuery{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNoStream)
}

func TestDesktopOffline(t *testing.T) {
	d := NewDesktop(filepath.Join(os.TempDir(), "marquee-missing.sock"), adapter.NullLogger())
	err := d.Handshake(context.Background())
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestResolveAutoFallsBackToDirect(t *testing.T) {
	cfg := adapter.DefaultConfig()
	cfg.Platform.Mode = adapter.PlatformAuto
	cfg.Platform.Socket = filepath.Join(os.TempDir(), "marquee-missing.sock")

	caps, err := Resolve(context.Background(), cfg, adapter.NullLogger())
	require.NoError(t, err)
	assert.Equal(t, "direct", caps.Name())
	assert.Nil(t, caps.CloudAPI())
}

func TestResolveAutoPrefersHelper(t *testing.T) {
	socket := serveHelper(t, NewDirect(&fakeStreams{}, nil, fakeFetcher{}))

	cfg := adapter.DefaultConfig()
	cfg.Platform.Mode = adapter.PlatformAuto
	cfg.Platform.Socket = socket

	caps, err := Resolve(context.Background(), cfg, adapter.NullLogger())
	require.NoError(t, err)
	assert.Equal(t, "desktop", caps.Name())
}

func TestResolveDesktopRequiresHelper(t *testing.T) {
	cfg := adapter.DefaultConfig()
	cfg.Platform.Mode = adapter.PlatformDesktop
	cfg.Platform.Socket = filepath.Join(os.TempDir(), "marquee-missing.sock")

	_, err := Resolve(context.Background(), cfg, adapter.NullLogger())
	assert.ErrorIs(t, err, domain.ErrServerOffline)

	cfg.Platform.Mode = "bogus"
	_, err = Resolve(context.Background(), cfg, adapter.NullLogger())
	assert.Error(t, err)
}

func TestDirectWithoutStreams(t *testing.T) {
	d := NewDirect(nil, nil, nil)
	_, err := d.GetStream(context.Background(), domain.StreamQuery{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.NotNil(t, d.Fetcher())
}

func TestRequestIDEchoed(t *testing.T) {
	h := NewHelper(NewDirect(&fakeStreams{}, nil, fakeFetcher{}), "v", adapter.NullLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set(requestIDHeader, "abc")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", rec.Header().Get(requestIDHeader))
	assert.JSONEq(t, `{"version":"v","cloud":false}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestErrorCodes(t *testing.T) {
	for _, ec := range errorCodes {
		code, status := encodeError(ec.err)
		assert.Equal(t, ec.code, code)
		assert.Equal(t, ec.status, status)
		assert.ErrorIs(t, decodeError(errorBody{Code: code, Error: "detail"}, status), ec.err)
	}

	code, status := encodeError(errors.New("boom"))
	assert.Equal(t, "internal", code)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.EqualError(t, decodeError(errorBody{}, http.StatusTeapot), "helper: I'm a teapot")
}
