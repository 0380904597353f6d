package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitgap-client/internal/analyses"
	"fitgap-client/internal/mypage"
	"fitgap-client/internal/quota"
	"fitgap-client/internal/session"
	"fitgap-client/internal/signals"
	"fitgap-client/internal/testkit"
)

type server struct {
	mu      sync.Mutex
	mux     *http.ServeMux
	saves   int32
	resumes string
	lastRaw string
	created map[string]string
}

func newServer(resumes string) *server {
	s := &server{mux: http.NewServeMux(), resumes: resumes}
	s.mux.HandleFunc("GET /api/mypage", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"user":{"id":"u1","role":"JOBSEEKER"},"resumes":` + s.resumes + `,"postings":[]}}`))
	})
	s.mux.HandleFunc("GET /api/v1/analyze/session/by-resume/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"analysis":{"signal":"yellow"}}}`))
	})
	s.mux.HandleFunc("PUT /api/mypage/resume", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.saves, 1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		s.lastRaw = body["raw_text"]
		s.mu.Unlock()
		_, _ = w.Write([]byte(`{"data":{"resume_id":42}}`))
	})
	s.mux.HandleFunc("DELETE /api/v1/resumes/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"이력서를 찾을 수 없습니다."}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{}}`))
	})
	s.mux.HandleFunc("POST /api/v1/analyze/session", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		s.created = body
		s.mu.Unlock()
		_, _ = w.Write([]byte(`{"data":{"analysis_id":"a9"}}`))
	})
	return s
}

func (s *server) snapshot() (string, map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRaw, s.created
}

func newPage(env *testkit.Env) *Page {
	return NewPage(Deps{
		Guard:    env.Session,
		MyPage:   mypage.NewClient(env.Gateway),
		Resumes:  NewClient(env.Gateway),
		Analyses: analyses.NewClient(env.Gateway),
		Handles:  env.Store,
		Nav:      env.Nav,
	})
}

func TestLoadResumeAndSignal(t *testing.T) {
	srv := newServer(`[{"id":"r1","raw_text":"Go"}]`)
	env := testkit.NewEnv(t, srv.mux)
	env.Login(t, session.RoleJobseeker)

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))
	require.Len(t, page.Resumes(), 1)
	assert.Equal(t, 0, page.Remaining())
	sig, ok := page.Signal()
	assert.True(t, ok)
	assert.Equal(t, signals.Yellow, sig)
}

func TestLoadCompanyIsBlockedInline(t *testing.T) {
	env := testkit.NewEnv(t, newServer(`[]`).mux)
	env.Login(t, session.RoleCompany)

	page := newPage(env)
	err := page.Load(context.Background())
	assert.ErrorIs(t, err, session.ErrRoleForbidden)
	assert.Equal(t, msgRoleForbidden, page.Banner.Message())
	assert.Empty(t, env.Nav.Paths())
}

func TestCreateSecondResumeBlockedBeforeNetwork(t *testing.T) {
	srv := newServer(`[{"id":"r1"}]`)
	env := testkit.NewEnv(t, srv.mux)
	env.Login(t, session.RoleJobseeker)

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))

	_, err := page.Create(context.Background(), "second résumé")
	assert.ErrorIs(t, err, quota.ErrLimitReached)
	assert.Zero(t, atomic.LoadInt32(&srv.saves))
	assert.NotEmpty(t, page.Banner.Message())
}

func TestCreateStoresHandleAndPrepends(t *testing.T) {
	srv := newServer(`[]`)
	env := testkit.NewEnv(t, srv.mux)
	env.Login(t, session.RoleJobseeker)

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))

	id, err := page.Create(context.Background(), "Go developer")
	require.NoError(t, err)
	assert.Equal(t, "42", id)
	raw, _ := srv.snapshot()
	assert.Equal(t, "Go developer", raw)

	stored, _ := env.Store.ResumeID(context.Background())
	assert.Equal(t, "42", stored)
	require.Len(t, page.Resumes(), 1)
	assert.Equal(t, "42", page.Resumes()[0].ID.String())
	assert.Equal(t, 0, page.Remaining())
}

func TestCreateEmptyTextSkipsNetwork(t *testing.T) {
	srv := newServer(`[]`)
	env := testkit.NewEnv(t, srv.mux)
	env.Login(t, session.RoleJobseeker)

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))

	_, err := page.Create(context.Background(), "   ")
	require.Error(t, err)
	assert.Zero(t, atomic.LoadInt32(&srv.saves))
	assert.Equal(t, msgEmptyText, page.Banner.Message())
}

func TestReplaceOverwritesExisting(t *testing.T) {
	srv := newServer(`[{"id":"r1","raw_text":"old"}]`)
	env := testkit.NewEnv(t, srv.mux)
	env.Login(t, session.RoleJobseeker)

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))

	_, err := page.Replace(context.Background(), "new text")
	require.NoError(t, err)
	require.Len(t, page.Resumes(), 1)
	assert.Equal(t, "new text", page.Resumes()[0].RawText)
}

func TestDeleteClearsHandle(t *testing.T) {
	srv := newServer(`[{"id":"r1"}]`)
	env := testkit.NewEnv(t, srv.mux)
	env.Login(t, session.RoleJobseeker)
	require.NoError(t, env.Store.SetResumeID(context.Background(), "r1"))

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))
	require.NoError(t, page.Delete(context.Background()))

	stored, _ := env.Store.ResumeID(context.Background())
	assert.Empty(t, stored)
	assert.Empty(t, page.Resumes())
	assert.Equal(t, 1, page.Remaining())
}

func TestDeleteStaleIDSurfacesInline(t *testing.T) {
	srv := newServer(`[{"id":"missing"}]`)
	env := testkit.NewEnv(t, srv.mux)
	env.Login(t, session.RoleJobseeker)

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))
	require.Error(t, page.Delete(context.Background()))
	assert.Equal(t, "이력서를 찾을 수 없습니다.", page.Banner.Message())
	assert.Len(t, page.Resumes(), 1)
}

func TestAnalyzeUsesStoredHandleAndNavigates(t *testing.T) {
	srv := newServer(`[{"id":"r1"}]`)
	env := testkit.NewEnv(t, srv.mux)
	env.Login(t, session.RoleJobseeker)
	require.NoError(t, env.Store.SetResumeID(context.Background(), "r7"))

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))

	id, err := page.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a9", id)
	_, created := srv.snapshot()
	assert.Equal(t, "r7", created["resume_id"])
	assert.Equal(t, "/analysis/a9", env.Nav.Last())
}

func TestAnalyzeWithoutResume(t *testing.T) {
	env := testkit.NewEnv(t, newServer(`[]`).mux)
	env.Login(t, session.RoleJobseeker)

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))

	_, err := page.Analyze(context.Background())
	assert.True(t, errors.Is(err, ErrNoResume))
	assert.Equal(t, msgNoResume, page.Banner.Message())
}
