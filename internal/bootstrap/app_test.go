package bootstrap

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitgap-client/internal/shared/config"
	"fitgap-client/internal/tokenstore"
)

func testConfig(t *testing.T, baseURL string) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		APIBaseURL:     baseURL,
		Profile:        "default",
		DurableStore:   "file",
		StateDir:       filepath.Join(dir, "state"),
		EphemeralStore: "file",
		RuntimeDir:     filepath.Join(dir, "run"),
		SessionID:      "42",
		CallbackAddr:   "127.0.0.1:3000",
		ExportStore:    "local",
		ExportDir:      filepath.Join(dir, "reports"),
		LogLevel:       "error",
	}
}

func TestBuildPersistsTiersOnDisk(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "http://127.0.0.1:1")

	app, err := Build(ctx, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Tokens.SetIdentity(ctx, "tok", tokenstore.UserSummary{ID: "u1", Role: "JOBSEEKER"}))
	require.NoError(t, app.Tokens.SetAuthToken(ctx, "auth"))
	assert.FileExists(t, filepath.Join(cfg.StateDir, "default", "tokens.json"))
	assert.FileExists(t, filepath.Join(cfg.RuntimeDir, "session-42.json"))

	again, err := Build(ctx, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	tok, err := again.Tokens.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
}

func TestBuildRejectsPathLikeProfile(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Profile = "../other"

	_, err := Build(context.Background(), cfg, &bytes.Buffer{})
	require.Error(t, err)
}

func TestBuildPostgresNeedsURL(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.DurableStore = "postgres"

	_, err := Build(context.Background(), cfg, &bytes.Buffer{})
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestBuildDefaultsRedirectToCallbackAddr(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.GoogleClientID = "client"

	app, err := Build(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:3000/login/callback", app.Google.RedirectURL())
}

func TestUnauthorizedResponseRevokesSession(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"expired"}}`))
	}))
	defer srv.Close()

	out := &bytes.Buffer{}
	app, err := Build(ctx, testConfig(t, srv.URL), out)
	require.NoError(t, err)
	require.NoError(t, app.Tokens.SetIdentity(ctx, "tok", tokenstore.UserSummary{ID: "u1", Role: "JOBSEEKER"}))

	err = app.MyPagePage().Load(ctx)
	require.Error(t, err)

	tok, err := app.Tokens.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
	assert.Equal(t, "/login", app.Nav.Last())
	assert.Contains(t, out.String(), "-> /login")
}

func TestExporterUsesLocalDir(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	app, err := Build(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)

	exp, err := app.Exporter(context.Background())
	require.NoError(t, err)
	require.NotNil(t, exp)
	same, _ := app.Exporter(context.Background())
	assert.Same(t, exp, same)
}
