package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"voting/internal/dto"
	"voting/internal/jwtsigner"
	"voting/internal/service/impl"
	"voting/internal/store"
	"voting/pkg/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
	clock   *testClock
}

func newTestAPI(t *testing.T, rateLimit int) *testAPI {
	t.Helper()
	gdb, err := db.OpenGorm(db.Config{
		Driver:       db.DriverSQLite,
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	st := store.New(gdb)
	require.NoError(t, st.Migrate(context.Background()))

	clock := &testClock{now: time.Now().UTC()}
	signer, err := jwtsigner.New(jwtsigner.AlgHS256, "test-secret", "kid-1", "voting-test")
	require.NoError(t, err)

	tokens := impl.NewTokenService(impl.TokenConfig{Audience: "client", AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour}, signer, st)
	passwords := impl.NewPasswordServiceArgon2idWith(impl.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}, 1)
	topics := impl.NewTopicRegistry(st, impl.TopicRegistryConfig{Now: clock.Now})

	h := NewRouter(RouterConfig{RateLimitPerMinute: rateLimit}, Services{
		Auth:   impl.NewAuthServiceImpl(st, passwords, tokens),
		Tokens: tokens,
		Topics: topics,
		Votes:  impl.NewVoteLedger(st, topics, clock.Now),
	})
	return &testAPI{t: t, handler: h, clock: clock}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (a *testAPI) register(name, cpf string) dto.AuthResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/register", "", map[string]any{"name": name, "cpf": cpf, "password": "secret1"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.AuthResponse](a.t, rec)
}

func (a *testAPI) createTopic(token string) dto.TopicResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/topics", token, map[string]any{"title": "Budget", "description": "Approve the budget"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.TopicEnvelope](a.t, rec).Topic
}

func (a *testAPI) startSession(token string, id uint, duration int) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.do(http.MethodPost, topicPath(id, "/session"), token, map[string]any{"duration": duration})
}

func topicPath(id uint, suffix string) string {
	return "/topics/" + strconv.FormatUint(uint64(id), 10) + suffix
}

func TestHealthAndJWKS(t *testing.T) {
	api := newTestAPI(t, 0)

	rec := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = api.do(http.MethodGet, "/v1/oauth/jwks", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[dto.JWKSResponse](t, rec).Keys)
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t, 0)

	reg := api.register("Alice", "123.456.789-01")
	assert.Equal(t, "12345678901", reg.User.CPF)
	assert.NotEmpty(t, reg.Token)
	assert.NotEmpty(t, reg.Refresh)

	rec := api.do(http.MethodPost, "/register", "", map[string]any{"name": "Dup", "cpf": "12345678901", "password": "secret1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[dto.ErrorResponse](t, rec).Details["cpf"])

	rec = api.do(http.MethodPost, "/login", "", map[string]any{"cpf": "12345678901", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[dto.AuthResponse](t, rec)
	assert.Equal(t, reg.User.ID, login.User.ID)

	rec = api.do(http.MethodPost, "/login", "", map[string]any{"cpf": "12345678901", "password": "wrong!"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[dto.ErrorResponse](t, rec)
	assert.Equal(t, "login failed", body.Error)
	assert.NotEmpty(t, body.Details["non_field_errors"])
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t, 0)

	rec := api.do(http.MethodPost, "/register", "", map[string]any{"name": "", "cpf": "123", "password": "123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[dto.ErrorResponse](t, rec)
	for _, field := range []string{"name", "cpf", "password"} {
		assert.NotEmpty(t, body.Details[field], field)
	}

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString("{not json"))
	out := httptest.NewRecorder()
	api.handler.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestRefreshToken(t *testing.T) {
	api := newTestAPI(t, 0)
	reg := api.register("Alice", "12345678901")

	rec := api.do(http.MethodPost, "/token/refresh", "", map[string]any{"refresh": reg.Refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fresh := decode[dto.TokenResponse](t, rec)
	assert.NotEmpty(t, fresh.Token)

	rec = api.do(http.MethodPost, "/token/refresh", "", map[string]any{"refresh": reg.Refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodPost, "/token/refresh", "", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/topics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodPost, "/topics", fresh.Token, map[string]any{"title": "T", "description": "D"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestTopicsRequireAuth(t *testing.T) {
	api := newTestAPI(t, 0)
	owner := api.register("Alice", "12345678901")
	topic := api.createTopic(owner.Token)

	cases := []struct {
		method, path, token string
	}{
		{http.MethodPost, "/topics", ""},
		{http.MethodPost, "/topics", "garbage"},
		{http.MethodPost, topicPath(topic.ID, "/session"), ""},
		{http.MethodPost, topicPath(topic.ID, "/vote"), ""},
	}
	for _, tc := range cases {
		rec := api.do(tc.method, tc.path, tc.token, map[string]any{"title": "T", "description": "D", "vote": "YES"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
		assert.NotEmpty(t, decode[dto.ErrorResponse](t, rec).Error)
	}
}

func TestCreateTopic(t *testing.T) {
	api := newTestAPI(t, 0)
	owner := api.register("Alice", "12345678901")

	topic := api.createTopic(owner.Token)
	assert.Equal(t, "WAITING", topic.Status)
	assert.Equal(t, 60, topic.SessionDuration)
	assert.Nil(t, topic.SessionStartedAt)
	assert.Equal(t, owner.User.ID, topic.CreatedBy)
	assert.Equal(t, "Alice", topic.CreatedByName)
	assert.False(t, topic.IsSessionActive)

	rec := api.do(http.MethodPost, "/topics", owner.Token, map[string]any{"title": "", "description": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[dto.ErrorResponse](t, rec)
	assert.Equal(t, "error creating topic", body.Error)
	assert.NotEmpty(t, body.Details["title"])
	assert.NotEmpty(t, body.Details["description"])

	rec = api.do(http.MethodGet, topicPath(topic.ID, ""), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, topic.ID, decode[dto.TopicResponse](t, rec).ID)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/topics/999", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/topics/abc", "", nil).Code)
}

func TestStartSession(t *testing.T) {
	api := newTestAPI(t, 0)
	owner := api.register("Alice", "12345678901")
	topic := api.createTopic(owner.Token)

	rec := api.do(http.MethodPost, topicPath(topic.ID, "/session"), owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode[dto.TopicEnvelope](t, rec)
	assert.Equal(t, "Session started. Duration: 60 minutes", env.Message)
	assert.Equal(t, "OPEN", env.Topic.Status)
	assert.True(t, env.Topic.IsSessionActive)

	rec = api.startSession(owner.Token, topic.ID, 5)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[dto.ErrorResponse](t, rec).Error, "Session open")

	other := api.createTopic(owner.Token)
	rec = api.startSession(owner.Token, other.ID, 1441)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[dto.ErrorResponse](t, rec).Details["duration"])

	assert.Equal(t, http.StatusNotFound, api.startSession(owner.Token, 999, 5).Code)
}

func TestVotingFlowAndResult(t *testing.T) {
	api := newTestAPI(t, 0)
	alice := api.register("Alice", "11111111111")
	bob := api.register("Bob", "22222222222")
	topic := api.createTopic(alice.Token)

	rec := api.do(http.MethodPost, topicPath(topic.ID, "/vote"), alice.Token, map[string]any{"vote": "YES"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "session not active", decode[dto.ErrorResponse](t, rec).Error)

	require.Equal(t, http.StatusOK, api.startSession(alice.Token, topic.ID, 10).Code)

	rec = api.do(http.MethodPost, topicPath(topic.ID, "/vote"), alice.Token, map[string]any{"vote": "YES"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decode[dto.VoteEnvelope](t, rec)
	assert.Equal(t, "YES", env.Vote.Vote)
	assert.NotZero(t, env.Vote.ID)

	rec = api.do(http.MethodPost, topicPath(topic.ID, "/vote"), bob.Token, map[string]any{"vote": "NO"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, topicPath(topic.ID, "/vote"), alice.Token, map[string]any{"vote": "NO"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "already voted", decode[dto.ErrorResponse](t, rec).Error)

	rec = api.do(http.MethodGet, topicPath(topic.ID, "/result"), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[dto.ResultResponse](t, rec)
	assert.Equal(t, topic.ID, res.TopicID)
	assert.Equal(t, "Budget", res.TopicTitle)
	assert.Equal(t, "OPEN", res.TopicStatus)
	assert.EqualValues(t, 2, res.TotalVotes)
	assert.EqualValues(t, 1, res.YesVotes)
	assert.EqualValues(t, 1, res.NoVotes)
	assert.Equal(t, map[string]int64{"YES": 1, "NO": 1}, res.Results)
}

func TestInvalidVoteChoice(t *testing.T) {
	api := newTestAPI(t, 0)
	alice := api.register("Alice", "11111111111")
	topic := api.createTopic(alice.Token)
	require.Equal(t, http.StatusOK, api.startSession(alice.Token, topic.ID, 10).Code)

	rec := api.do(http.MethodPost, topicPath(topic.ID, "/vote"), alice.Token, map[string]any{"vote": "MAYBE"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[dto.ErrorResponse](t, rec).Details["vote"])
}

func TestSessionExpiresLazily(t *testing.T) {
	api := newTestAPI(t, 0)
	alice := api.register("Alice", "11111111111")
	topic := api.createTopic(alice.Token)
	require.Equal(t, http.StatusOK, api.startSession(alice.Token, topic.ID, 1).Code)

	api.clock.Advance(2 * time.Minute)

	rec := api.do(http.MethodGet, topicPath(topic.ID, ""), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[dto.TopicResponse](t, rec)
	assert.Equal(t, "CLOSED", got.Status)
	assert.False(t, got.IsSessionActive)

	rec = api.do(http.MethodPost, topicPath(topic.ID, "/vote"), alice.Token, map[string]any{"vote": "YES"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "session not active", decode[dto.ErrorResponse](t, rec).Error)

	rec = api.do(http.MethodGet, "/topics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]dto.TopicResponse](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "CLOSED", list[0].Status)

	res := decode[dto.ResultResponse](t, api.do(http.MethodGet, topicPath(topic.ID, "/result"), "", nil))
	assert.Equal(t, "CLOSED", res.TopicStatus)
	assert.Zero(t, res.TotalVotes)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	api := newTestAPI(t, 2)
	body := map[string]any{"cpf": "12345678901", "password": "secret1"}

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/login", "", body).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, api.do(http.MethodPost, "/login", "", body).Code)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/topics", "", nil).Code)
}

func TestVoteWithNonStringChoice(t *testing.T) {
	api := newTestAPI(t, 0)
	alice := api.register("Alice", "11111111111")
	topic := api.createTopic(alice.Token)
	require.Equal(t, http.StatusOK, api.startSession(alice.Token, topic.ID, 10).Code)

	rec := api.do(http.MethodPost, topicPath(topic.ID, "/vote"), alice.Token, map[string]any{"vote": 5})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, []string{`"5" is not a valid choice.`}, decode[dto.ErrorResponse](t, rec).Details["vote"])

	rec = api.do(http.MethodPost, topicPath(topic.ID, "/vote"), alice.Token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"This field is required."}, decode[dto.ErrorResponse](t, rec).Details["vote"])
}

func TestCreateTopicFieldErrors(t *testing.T) {
	api := newTestAPI(t, 0)
	alice := api.register("Alice", "11111111111")

	rec := api.do(http.MethodPost, "/topics", alice.Token, map[string]any{
		"title": "x", "description": "y", "session_duration": "abc",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"A valid integer is required."}, decode[dto.ErrorResponse](t, rec).Details["session_duration"])

	rec = api.do(http.MethodPost, "/topics", alice.Token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	details := decode[dto.ErrorResponse](t, rec).Details
	assert.NotEmpty(t, details["title"])
	assert.NotEmpty(t, details["description"])

	rec = api.do(http.MethodPost, topicPath(1, "/session"), alice.Token, map[string]any{"duration": "ten"})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"A valid integer is required."}, decode[dto.ErrorResponse](t, rec).Details["duration"])
}
