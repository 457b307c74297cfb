package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeJudge struct {
	logins       atomic.Int64
	rejectFirst  int32
	rejected     atomic.Int32
	token        string
	submitID     int64
	status       *int
	problemFound bool
}

func (f *fakeJudge) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		f.logins.Add(1)
		if f.token == "" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Authorization", f.token)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/submit-problem-judge", func(w http.ResponseWriter, r *http.Request) {
		if f.maybeReject(w, r) {
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"submitId": f.submitID}})
	})
	mux.HandleFunc("/api/get-submission-detail", func(w http.ResponseWriter, r *http.Request) {
		if f.maybeReject(w, r) {
			return
		}
		submission := map[string]any{}
		if f.status != nil {
			submission["status"] = *f.status
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"submission": submission}})
	})
	mux.HandleFunc("/api/get-problem-detail", func(w http.ResponseWriter, r *http.Request) {
		if f.maybeReject(w, r) {
			return
		}
		if !f.problemFound {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"problemId": r.URL.Query().Get("problemId")}})
	})
	return mux
}

func (f *fakeJudge) maybeReject(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != f.token {
		w.WriteHeader(http.StatusUnauthorized)
		return true
	}
	if f.rejected.Load() < f.rejectFirst {
		f.rejected.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		return true
	}
	return false
}

func newTestClient(t *testing.T, judge *fakeJudge) *Client {
	t.Helper()
	server := httptest.NewServer(judge.handler())
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:  server.URL,
		Username: "bot",
		Password: "secret",
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestClientLoginCachesToken(t *testing.T) {
	judge := &fakeJudge{token: "Bearer abc", submitID: 42}
	client := newTestClient(t, judge)

	require.NoError(t, client.Login(context.Background()))
	require.EqualValues(t, 1, judge.logins.Load())

	// The cached token is reused; the authenticated call succeeds
	// without a second login.
	id, err := client.Submit(context.Background(), "1001", "print()", "Python3")
	require.NoError(t, err)
	require.EqualValues(t, 42, id)
	require.EqualValues(t, 1, judge.logins.Load())
}

func TestClientLoginWithoutTokenFails(t *testing.T) {
	judge := &fakeJudge{}
	client := newTestClient(t, judge)

	err := client.Login(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestClientSubmitLogsInLazily(t *testing.T) {
	judge := &fakeJudge{token: "Bearer abc", submitID: 42}
	client := newTestClient(t, judge)

	id, err := client.Submit(context.Background(), "1001", "print('hi')", "Python3")
	require.NoError(t, err)
	require.EqualValues(t, 42, id)
	require.EqualValues(t, 1, judge.logins.Load())
}

func TestClientRetriesOnceAfterAuthRejection(t *testing.T) {
	judge := &fakeJudge{token: "Bearer abc", submitID: 7, rejectFirst: 1}
	client := newTestClient(t, judge)
	require.NoError(t, client.Login(context.Background()))

	id, err := client.Submit(context.Background(), "1001", "print('hi')", "Python3")
	require.NoError(t, err)
	require.EqualValues(t, 7, id)
	// first login plus exactly one re-login
	require.EqualValues(t, 2, judge.logins.Load())
}

func TestClientSurfacesRepeatedAuthRejection(t *testing.T) {
	judge := &fakeJudge{token: "Bearer abc", submitID: 7, rejectFirst: 2}
	client := newTestClient(t, judge)
	require.NoError(t, client.Login(context.Background()))

	_, err := client.Submit(context.Background(), "1001", "print('hi')", "Python3")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, "submit", reqErr.Operation)
}

func TestClientResultReportsMissingStatus(t *testing.T) {
	judge := &fakeJudge{token: "Bearer abc"}
	client := newTestClient(t, judge)

	_, ok, err := client.Result(context.Background(), 9)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestClientResultReturnsStatus(t *testing.T) {
	status := StatusAccepted
	judge := &fakeJudge{token: "Bearer abc", status: &status}
	client := newTestClient(t, judge)

	got, ok, err := client.Result(context.Background(), 9)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StatusAccepted, got)
}

func TestClientProblemExists(t *testing.T) {
	judge := &fakeJudge{token: "Bearer abc", problemFound: true}
	client := newTestClient(t, judge)

	exists, reason := client.ProblemExists(context.Background(), "1001")
	require.True(t, exists)
	require.Empty(t, reason)
}

func TestClientProblemExistsFailsClosed(t *testing.T) {
	judge := &fakeJudge{token: "Bearer abc", problemFound: false}
	client := newTestClient(t, judge)

	exists, reason := client.ProblemExists(context.Background(), "9999")
	require.False(t, exists)
	require.NotEmpty(t, reason)
}

func TestClientProblemExistsTreatsNetworkErrorAsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/login" {
			w.Header().Set("Authorization", "Bearer abc")
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, Username: "bot", Password: "secret", Logger: zerolog.Nop()})
	require.NoError(t, err)

	exists, reason := client.ProblemExists(context.Background(), "1001")
	require.False(t, exists)
	require.Contains(t, reason, fmt.Sprint(http.StatusBadGateway))
}

func TestClientCloseIsIdempotent(t *testing.T) {
	judge := &fakeJudge{token: "Bearer abc", submitID: 7}
	client := newTestClient(t, judge)
	require.NoError(t, client.Login(context.Background()))

	client.Close()
	client.Close()

	// Close drops the cached token, so the next call logs in again.
	_, err := client.Submit(context.Background(), "1001", "print()", "Python3")
	require.NoError(t, err)
	require.EqualValues(t, 2, judge.logins.Load())
}
