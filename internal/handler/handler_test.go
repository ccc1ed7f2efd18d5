package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pawpoll/internal/auth"
	"github.com/sakif/pawpoll/internal/handler"
	"github.com/sakif/pawpoll/internal/repository/sqlite"
	"github.com/sakif/pawpoll/internal/service"
)

type testEnv struct {
	db       *sqlite.DB
	votes    *handler.VoteHandler
	comments *handler.CommentHandler
	profiles *handler.ProfileHandler
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := quietLogger()
	return &testEnv{
		db:       db,
		votes:    handler.NewVoteHandler(service.NewVoteService(db.Votes(), logger), logger),
		comments: handler.NewCommentHandler(service.NewCommentService(db.Comments(), logger), logger),
		profiles: handler.NewProfileHandler(service.NewProfileService(db.Profiles(), logger), logger),
	}
}

// newRequest builds a request whose context carries caller, the way
// auth.RequireAuth would after validating a cookie. An empty caller means
// anonymous.
func newRequest(method, target, caller string, body any) *http.Request {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req = req.WithContext(auth.WithEmail(req.Context(), caller))
	}
	return req
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func assertSuccess(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
}
