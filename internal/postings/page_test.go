package postings

import (
	"context"
	"encoding/json"
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

// fakeServer keeps postings in memory, newest first.
type fakeServer struct {
	mu       sync.Mutex
	postings []map[string]any
	creates  int32
	next     int
	analyze  func(w http.ResponseWriter, body map[string]string)
	pairReq  map[string]string
	revoked  bool
}

func (s *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/mypage", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"user":     map[string]any{"id": "c1", "role": "COMPANY"},
			"resumes":  []any{},
			"postings": s.postings,
		}})
	})
	mux.HandleFunc("GET /api/v1/analyze/session/by-posting/{id}", func(w http.ResponseWriter, r *http.Request) {
		if s.revoked {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.PathValue("id") == "p2" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"analysis":{"signal":"green"}}}`))
	})
	mux.HandleFunc("POST /postings", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.creates, 1)
		var body CreateRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		s.next++
		id := 100 + s.next
		s.postings = append([]map[string]any{{"id": id, "company_name": body.CompanyName}}, s.postings...)
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"posting_id": id, "company_name": body.CompanyName, "created_at": "2026-10-19T09:00:00Z",
		}})
	})
	mux.HandleFunc("POST /api/v1/analyze/session", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		s.pairReq = body
		s.mu.Unlock()
		if s.analyze != nil {
			s.analyze(w, body)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"analysis_id":"a1"}}`))
	})
	return mux
}

func (s *fakeServer) lastPair() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pairReq
}

func newPage(env *testkit.Env) *Page {
	return NewPage(Deps{
		Guard:    env.Session,
		MyPage:   mypage.NewClient(env.Gateway),
		Postings: NewClient(env.Gateway),
		Analyses: analyses.NewClient(env.Gateway),
		Handle:   env.Store,
		Nav:      env.Nav,
	})
}

func TestLoadMergesSignalsWithoutFailing(t *testing.T) {
	srv := &fakeServer{postings: []map[string]any{{"id": "p1"}, {"id": "p2"}, {"id": "p3"}}}
	env := testkit.NewEnv(t, srv.handler())
	env.Login(t, session.RoleCompany)

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))
	assert.Empty(t, page.Banner.Message())
	assert.Equal(t, signals.Map{"p1": signals.Green, "p3": signals.Green}, page.Signals())
	assert.Equal(t, 0, page.Remaining())
}

func TestLoadRevokedDuringSignalsIsUnauthenticated(t *testing.T) {
	srv := &fakeServer{postings: []map[string]any{{"id": "p1"}, {"id": "p3"}}, revoked: true}
	env := testkit.NewEnv(t, srv.handler())
	env.Login(t, session.RoleCompany)

	page := newPage(env)
	err := page.Load(context.Background())
	assert.ErrorIs(t, err, session.ErrUnauthenticated)
	assert.Equal(t, []string{"/login"}, env.Nav.Paths())
	assert.Equal(t, session.StateAnonymous, env.Session.State())
	access, _ := env.Store.AccessToken(context.Background())
	assert.Empty(t, access)
}

func TestLoadJobseekerIsBlockedInline(t *testing.T) {
	env := testkit.NewEnv(t, (&fakeServer{}).handler())
	env.Login(t, session.RoleJobseeker)

	page := newPage(env)
	assert.ErrorIs(t, page.Load(context.Background()), session.ErrRoleForbidden)
	assert.Equal(t, msgRoleForbidden, page.Banner.Message())
	assert.Empty(t, env.Nav.Paths())
}

func TestCreateFourthPostingBlockedBeforeNetwork(t *testing.T) {
	srv := &fakeServer{postings: []map[string]any{{"id": "p1"}, {"id": "p2"}, {"id": "p3"}}}
	env := testkit.NewEnv(t, srv.handler())
	env.Login(t, session.RoleCompany)

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))

	_, err := page.Create(context.Background(), CreateRequest{CompanyName: "Acme", RawText: "Go backend"})
	assert.ErrorIs(t, err, quota.ErrLimitReached)
	assert.Zero(t, atomic.LoadInt32(&srv.creates))
	assert.Equal(t, "공고는 최대 3개까지 작성할 수 있습니다.", page.Banner.Message())
}

func TestCreateThenFetchListsNewPostingFirst(t *testing.T) {
	srv := &fakeServer{postings: []map[string]any{{"id": "p1"}}}
	env := testkit.NewEnv(t, srv.handler())
	env.Login(t, session.RoleCompany)

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))

	res, err := page.Create(context.Background(), CreateRequest{CompanyName: "Acme", RawText: "Go backend"})
	require.NoError(t, err)
	assert.Equal(t, "101", res.Posting.ID.String())
	assert.Equal(t, "101", page.Postings()[0].ID.String())

	summary, err := mypage.NewClient(env.Gateway).Fetch(context.Background(), "")
	require.NoError(t, err)
	require.NotEmpty(t, summary.Postings)
	assert.Equal(t, res.Posting.ID, summary.Postings[0].ID)
}

func TestCreatePairsWithStoredResumeAndNavigates(t *testing.T) {
	srv := &fakeServer{}
	env := testkit.NewEnv(t, srv.handler())
	env.Login(t, session.RoleCompany)
	require.NoError(t, env.Store.SetResumeID(context.Background(), "r5"))

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))

	res, err := page.Create(context.Background(), CreateRequest{CompanyName: "Acme", RawText: "Go backend"})
	require.NoError(t, err)
	assert.True(t, res.Pairing.Paired())
	assert.Equal(t, "r5", srv.lastPair()["resume_id"])
	assert.Equal(t, "101", srv.lastPair()["posting_id"])
	assert.Equal(t, "/analysis/a1", env.Nav.Last())
}

func TestCreateKeepsPostingWhenPairingFails(t *testing.T) {
	srv := &fakeServer{analyze: func(w http.ResponseWriter, _ map[string]string) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"message":"이력서가 없습니다."}}`))
	}}
	env := testkit.NewEnv(t, srv.handler())
	env.Login(t, session.RoleCompany)

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))

	res, err := page.Create(context.Background(), CreateRequest{CompanyName: "Acme", RawText: "Go backend"})
	require.NoError(t, err)
	assert.Error(t, res.Pairing.Err)
	assert.Len(t, page.Postings(), 1)
	assert.Empty(t, page.Banner.Message())
	assert.Empty(t, env.Nav.Paths())
}

func TestCreateRecordsSignalWhenNotPairable(t *testing.T) {
	srv := &fakeServer{analyze: func(w http.ResponseWriter, _ map[string]string) {
		_, _ = w.Write([]byte(`{"data":{"signal":"yellow"}}`))
	}}
	env := testkit.NewEnv(t, srv.handler())
	env.Login(t, session.RoleCompany)

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))

	res, err := page.Create(context.Background(), CreateRequest{CompanyName: "Acme", RawText: "Go backend"})
	require.NoError(t, err)
	assert.False(t, res.Pairing.Paired())
	sig, ok := page.Signals().Get("101")
	assert.True(t, ok)
	assert.Equal(t, signals.Yellow, sig)
}

func TestCreateEmptyBodySkipsNetwork(t *testing.T) {
	srv := &fakeServer{}
	env := testkit.NewEnv(t, srv.handler())
	env.Login(t, session.RoleCompany)

	page := newPage(env)
	require.NoError(t, page.Load(context.Background()))

	_, err := page.Create(context.Background(), CreateRequest{CompanyName: "Acme", RawText: " "})
	require.Error(t, err)
	assert.Zero(t, atomic.LoadInt32(&srv.creates))
	assert.Equal(t, msgEmptyText, page.Banner.Message())
}
