package httpapi

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// app.Test opens a fresh connection per request, so buffer reuse across
// keep-alive requests only shows up on a real listener.
func TestStoredValuesSurviveKeepAliveReuse(t *testing.T) {
	f := newFixture(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go f.app.Listener(ln)
	t.Cleanup(func() { f.app.Shutdown() })

	base := "http://" + ln.Addr().String()
	client := &http.Client{Transport: &http.Transport{MaxConnsPerHost: 1, MaxIdleConnsPerHost: 1}}
	defer client.CloseIdleConnections()

	send := func(method, path string) (int, map[string]any) {
		t.Helper()
		req, err := http.NewRequest(method, base+path, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		out := map[string]any{}
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &out), string(raw))
		}
		return resp.StatusCode, out
	}

	code, _ := send(http.MethodPost, "/api/v1/preferences/favorites/paris")
	require.Equal(t, http.StatusOK, code)
	code, _ = send(http.MethodGet, "/api/v1/weather?city=paris")
	require.Equal(t, http.StatusOK, code)
	code, _ = send(http.MethodDelete, "/api/v1/preferences/favorites/lyonx")
	require.Equal(t, http.StatusOK, code)
	code, body := send(http.MethodGet, "/api/v1/weather?city=romex")
	assert.Equal(t, http.StatusNotFound, code, "an unknown city is not served from another city's cache entry")
	assert.Equal(t, "LocationNotFound", body["kind"])

	assert.Equal(t, []string{"paris"}, f.prefs.Current().FavoriteCities)
	assert.Equal(t, []string{"paris"}, f.cache.Cities())
}
