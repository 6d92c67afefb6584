package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/marcus/fastly-stats/internal/config"
	"github.com/marcus/fastly-stats/internal/document"
	"github.com/marcus/fastly-stats/internal/fastly"
	"github.com/stretchr/testify/require"
)

const statsBody = `{"status":"success","meta":{"by":"minute"},"msg":null,"data":[{"start_time":1000,"requests":5},{"start_time":1060,"requests":7}]}`

// fakeAPI serves a fixed body and records every request it receives.
type fakeAPI struct {
	srv      *httptest.Server
	hits     atomic.Int32
	lastURL  atomic.Value
	lastKey  atomic.Value
	builders int
}

func newFakeAPI(t *testing.T, status int, body string) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.lastURL.Store(r.URL.String())
		f.lastKey.Store(r.Header.Get("Fastly-Key"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) factory() clientFactory {
	return func(s *config.Settings) apiClient {
		f.builders++
		return fastly.New(f.srv.URL, s.Token, s.Timeout)
	}
}

func runCLI(t *testing.T, newClient clientFactory, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd(newClient)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestStatsText(t *testing.T) {
	t.Setenv(config.EnvToken, "env-token")
	api := newFakeAPI(t, http.StatusOK, statsBody)

	out, _, err := runCLI(t, api.factory(), "stats", "--service", "svc")
	require.NoError(t, err)
	require.Equal(t, "1000\t5\n1060\t7\n", out)
	require.Equal(t, "/stats/service/svc?by=minute", api.lastURL.Load())
	require.Equal(t, "env-token", api.lastKey.Load())
}

func TestStatsQueryParams(t *testing.T) {
	api := newFakeAPI(t, http.StatusOK, `{"data":[]}`)

	_, _, err := runCLI(t, api.factory(), "--token", "flag-token", "stats",
		"--service", "svc", "--by", "hour", "--from", "2026-02-18T12:00:00Z", "--to", "now")
	require.NoError(t, err)
	require.Equal(t, "/stats/service/svc?by=hour&from=1771416000&to=now", api.lastURL.Load())
	require.Equal(t, "flag-token", api.lastKey.Load())
}

func TestStatsEmptyFlagsUseDefaults(t *testing.T) {
	t.Setenv(config.EnvToken, "k")
	api := newFakeAPI(t, http.StatusOK, `{"data":[]}`)

	_, _, err := runCLI(t, api.factory(), "stats", "--service", "svc", "--by", "", "--from", "", "--to", "")
	require.NoError(t, err)
	require.Equal(t, "/stats/service/svc?by=minute", api.lastURL.Load())
}

func TestStatsNoData(t *testing.T) {
	t.Setenv(config.EnvToken, "k")
	api := newFakeAPI(t, http.StatusOK, `{"status":"success"}`)

	out, _, err := runCLI(t, api.factory(), "stats", "--service", "svc")
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestStatsJSONFlagsEquivalent(t *testing.T) {
	t.Setenv(config.EnvToken, "k")
	api := newFakeAPI(t, http.StatusOK, statsBody)

	local, _, err := runCLI(t, api.factory(), "stats", "--service", "svc", "--json")
	require.NoError(t, err)
	global, _, err := runCLI(t, api.factory(), "--format", "json", "stats", "--service", "svc")
	require.NoError(t, err)
	require.Equal(t, local, global)

	back, err := document.Parse([]byte(local))
	require.NoError(t, err)
	require.Equal(t, document.MustParse(statsBody).Interface(), back.Interface())
}

func TestStatsChart(t *testing.T) {
	t.Setenv(config.EnvToken, "k")
	t.Setenv("COLUMNS", "80")
	api := newFakeAPI(t, http.StatusOK, statsBody)

	out, _, err := runCLI(t, api.factory(), "stats", "--service", "svc", "--chart")
	require.NoError(t, err)
	require.Contains(t, out, "requests 1970-01-01T00:16:40Z .. 1970-01-01T00:17:40Z")

	// --json wins over --chart.
	out, stderr, err := runCLI(t, api.factory(), "stats", "--service", "svc", "--chart", "--json")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "{"))
	require.Contains(t, stderr, "Warning: --chart is ignored with JSON output")
}

func TestSummary(t *testing.T) {
	t.Setenv(config.EnvToken, "k")
	body := `{"status":"success","data":{"hit_ratio":0.9731,"requests":123456}}`
	api := newFakeAPI(t, http.StatusOK, body)

	text, _, err := runCLI(t, api.factory(), "summary", "--service", "svc")
	require.NoError(t, err)
	js, _, err := runCLI(t, api.factory(), "summary", "--service", "svc", "--json")
	require.NoError(t, err)

	require.Equal(t, text, js)
	require.True(t, strings.HasSuffix(js, "\n"))
	back, err := document.Parse([]byte(js))
	require.NoError(t, err)
	require.Equal(t, document.MustParse(body).Interface(), back.Interface())
	require.Equal(t, "/service/svc/stats/summary", api.lastURL.Load())
}

func TestMissingTokenMakesNoRequest(t *testing.T) {
	t.Setenv(config.EnvToken, "")
	api := newFakeAPI(t, http.StatusOK, statsBody)

	for _, args := range [][]string{
		{"stats", "--service", "svc"},
		{"summary", "--service", "svc"},
	} {
		out, _, err := runCLI(t, api.factory(), args...)
		require.ErrorIs(t, err, config.ErrMissingToken)
		require.Empty(t, out)
	}
	require.Zero(t, api.builders)
	require.Zero(t, api.hits.Load())
}

func TestInvalidFormat(t *testing.T) {
	t.Setenv(config.EnvToken, "k")
	api := newFakeAPI(t, http.StatusOK, statsBody)

	_, _, err := runCLI(t, api.factory(), "--format", "yaml", "stats", "--service", "svc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid format")
	require.Zero(t, api.hits.Load())
}

func TestServiceRequired(t *testing.T) {
	t.Setenv(config.EnvToken, "k")
	api := newFakeAPI(t, http.StatusOK, statsBody)

	_, _, err := runCLI(t, api.factory(), "stats")
	require.Error(t, err)
	require.Contains(t, err.Error(), `"service"`)

	_, _, err = runCLI(t, api.factory(), "summary", "--service", " ")
	require.Error(t, err)
	require.Zero(t, api.hits.Load())
}

func TestErrorStatus(t *testing.T) {
	t.Setenv(config.EnvToken, "bad")
	api := newFakeAPI(t, http.StatusUnauthorized, `{"msg":"Provided credentials are missing or invalid"}`)

	out, _, err := runCLI(t, api.factory(), "stats", "--service", "svc")
	require.ErrorIs(t, err, fastly.ErrUnauthorized)
	require.Equal(t, "fetch stats: HTTP 401: Provided credentials are missing or invalid", err.Error())
	require.Empty(t, out)
}

func TestMalformedResponse(t *testing.T) {
	t.Setenv(config.EnvToken, "k")
	api := newFakeAPI(t, http.StatusOK, `not json`)

	_, _, err := runCLI(t, api.factory(), "summary", "--service", "svc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestAPIURLFlag(t *testing.T) {
	t.Setenv(config.EnvToken, "k")
	api := newFakeAPI(t, http.StatusOK, statsBody)

	out, _, err := runCLI(t, defaultClient, "--api-url", api.srv.URL, "stats", "--service", "svc")
	require.NoError(t, err)
	require.Equal(t, "1000\t5\n1060\t7\n", out)
	require.EqualValues(t, 1, api.hits.Load())
}

func TestVerboseLogsRequest(t *testing.T) {
	t.Setenv(config.EnvToken, "secret-token")
	api := newFakeAPI(t, http.StatusOK, statsBody)

	_, stderr, err := runCLI(t, defaultClient, "--api-url", api.srv.URL, "-v", "stats", "--service", "svc")
	require.NoError(t, err)
	require.Contains(t, stderr, "fastly request")
	require.Contains(t, stderr, "status=200")
	require.NotContains(t, stderr, "secret-token")
}

func TestHelpListsCommands(t *testing.T) {
	out, _, err := runCLI(t, defaultClient, "--help")
	require.NoError(t, err)
	require.Contains(t, out, "Query Commands:")
	require.Contains(t, out, "stats")
	require.Contains(t, out, "summary")
	require.NotContains(t, out, "api-url")
}

func TestVersionFlag(t *testing.T) {
	prev := version
	t.Cleanup(func() { SetVersion(prev) })
	SetVersion("v1.2.3")

	out, _, err := runCLI(t, defaultClient, "--version")
	require.NoError(t, err)
	require.Equal(t, "fastly-stats version v1.2.3\n", out)
}
