package mypage

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitgap-client/internal/analyses"
	"fitgap-client/internal/session"
	"fitgap-client/internal/signals"
	"fitgap-client/internal/testkit"
)

func companyMux(fetches *int32) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/mypage", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(fetches, 1)
		_, _ = w.Write([]byte(`{"data":{"user":{"id":1,"email":"hr@acme.io","nickname":"acme","role":"COMPANY"},"profile":{"companyName":"Acme"},"resumes":[],"postings":[{"id":"p1"},{"id":"p2"},{"id":"p3"}]}}`))
	})
	mux.HandleFunc("GET /api/v1/analyze/session/by-posting/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "p1":
			_, _ = w.Write([]byte(`{"data":{"analysis":{"signal":"green"}}}`))
		case "p2":
			_, _ = w.Write([]byte(`{"data":{"analysis":{"signal":"yellow"}}}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	return mux
}

func TestLoadMergesPostingSignalsAndToleratesFailures(t *testing.T) {
	var fetches int32
	env := testkit.NewEnv(t, companyMux(&fetches))
	env.Login(t, session.RoleCompany)

	page := NewPage(env.Session, NewClient(env.Gateway), analyses.NewClient(env.Gateway))
	require.NoError(t, page.Load(context.Background()))

	snap := page.Snapshot()
	assert.Empty(t, page.Banner.Message())
	assert.Equal(t, "hr@acme.io", snap.Summary.User.Email)
	assert.Equal(t, signals.Map{"p1": signals.Green, "p2": signals.Yellow}, snap.PostingSignals)
}

func TestLoadWithoutTokenRedirectsBeforeFetch(t *testing.T) {
	var fetches int32
	env := testkit.NewEnv(t, companyMux(&fetches))

	page := NewPage(env.Session, NewClient(env.Gateway), analyses.NewClient(env.Gateway))
	err := page.Load(context.Background())
	assert.ErrorIs(t, err, session.ErrUnauthenticated)
	assert.Zero(t, atomic.LoadInt32(&fetches))
	assert.Equal(t, session.PathLogin, env.Nav.Last())
}

func TestLoadFailureSetsBanner(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/mypage", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	env := testkit.NewEnv(t, mux)
	env.Login(t, session.RoleJobseeker)

	page := NewPage(env.Session, NewClient(env.Gateway), analyses.NewClient(env.Gateway))
	require.Error(t, page.Load(context.Background()))
	assert.Equal(t, MsgFetchFailed, page.Banner.Message())
}

func TestLoadUnauthorizedRevokesSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/mypage", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"토큰이 만료되었습니다."}}`))
	})
	env := testkit.NewEnv(t, mux)
	env.Login(t, session.RoleJobseeker)

	page := NewPage(env.Session, NewClient(env.Gateway), analyses.NewClient(env.Gateway))
	require.Error(t, page.Load(context.Background()))

	access, _ := env.Store.AccessToken(context.Background())
	assert.Empty(t, access)
	assert.Equal(t, session.StateAnonymous, env.Session.State())
	assert.Equal(t, session.PathLogin, env.Nav.Last())
	assert.Empty(t, page.Banner.Message(), "a revoked session must not update the stale page")
}

func TestLoadJobseekerResumeSignal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/mypage", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"user":{"id":"u1","role":"JOBSEEKER"},"resumes":[{"id":"r1","raw_text":"Go developer"}],"postings":[]}}`))
	})
	mux.HandleFunc("GET /api/v1/analyze/session/by-resume/r1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"analysis":{"signal":"red"}}}`))
	})
	env := testkit.NewEnv(t, mux)
	env.Login(t, session.RoleJobseeker)

	page := NewPage(env.Session, NewClient(env.Gateway), analyses.NewClient(env.Gateway))
	require.NoError(t, page.Load(context.Background()))
	assert.Equal(t, signals.Red, page.Snapshot().ResumeSignal)
	assert.Empty(t, page.Snapshot().PostingSignals)
}

func TestSaveNicknameMirrorsIntoStoredUser(t *testing.T) {
	var got map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/mypage/nickname", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"data":{"nickname":"새닉네임"}}`))
	})
	env := testkit.NewEnv(t, mux)
	env.Login(t, session.RoleJobseeker)

	page := NewPage(env.Session, NewClient(env.Gateway), analyses.NewClient(env.Gateway))
	require.NoError(t, page.SaveNickname(context.Background(), " 새닉네임 "))

	assert.Equal(t, "새닉네임", got["nickname"])
	user, _, _ := env.Store.User(context.Background())
	assert.Equal(t, "새닉네임", user.Nickname)
	assert.Equal(t, "새닉네임", page.Snapshot().Summary.User.Nickname)
}

func TestSaveNicknameRejectsEmpty(t *testing.T) {
	env := testkit.NewEnv(t, http.NewServeMux())
	env.Login(t, session.RoleJobseeker)

	page := NewPage(env.Session, NewClient(env.Gateway), analyses.NewClient(env.Gateway))
	require.Error(t, page.SaveNickname(context.Background(), "  "))
	assert.Equal(t, "닉네임을 입력해주세요.", page.Banner.Message())
}
