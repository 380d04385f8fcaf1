package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/AstralSaints-Server/config"
	"github.com/jacl-coder/AstralSaints-Server/internal/auth"
	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

func newTestGateway(t *testing.T) (*Gateway, http.Handler) {
	t.Helper()
	tb, err := tables.Default()
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{GamePort: 8081, GatewayPort: 8080},
		Auth:   config.AuthConfig{JWTSecret: "secret", TokenTTLHours: 1, Issuer: "astralsaints"},
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL())
	g := NewGateway(cfg, tb, tokens, Stores{})
	h := g.createHandler()
	t.Cleanup(g.rateLimiter.Close)
	return g, h
}

func do(h http.Handler, method, target string, body string, header map[string]string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decode 解析统一响应，data 写入 out
func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) APIResponse {
	t.Helper()
	var raw struct {
		APIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return raw.APIResponse
}

func TestGuestLogin(t *testing.T) {
	g, h := newTestGateway(t)

	rec := do(h, http.MethodPost, "/auth/guest", `{"name":"  ace  "}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	assert.True(t, decode(t, rec, &resp).Success)
	assert.Equal(t, "ace", resp.Name)

	claims, err := g.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.PlayerID, claims.PlayerID)

	rec = do(h, http.MethodGet, "/auth/validate", "", map[string]string{"Authorization": "Bearer " + resp.Token})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuestLoginDefaultsName(t *testing.T) {
	_, h := newTestGateway(t)

	rec := do(h, http.MethodPost, "/auth/guest", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	decode(t, rec, &resp)
	assert.True(t, strings.HasPrefix(resp.Name, "guest-"))
}

func TestGuestLoginRejects(t *testing.T) {
	_, h := newTestGateway(t)

	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "/auth/guest", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/auth/guest", "{", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/auth/guest", `{"name":"abcdefghijklmnopq"}`, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/auth/validate?token=bad", "", nil).Code)
}

func TestShipsCatalog(t *testing.T) {
	g, h := newTestGateway(t)

	rec := do(h, http.MethodGet, "/ships", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ships []ShipInfo
	decode(t, rec, &ships)
	require.Len(t, ships, len(g.tables.Ships))
	for i := 1; i < len(ships); i++ {
		assert.Less(t, ships[i-1].ID, ships[i].ID)
	}
	defaults := 0
	for _, s := range ships {
		if s.Default {
			defaults++
			assert.Equal(t, g.tables.DefaultShip, s.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestShipDetail(t *testing.T) {
	_, h := newTestGateway(t)

	rec := do(h, http.MethodGet, "/ships/phoenix", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail ShipDetail
	decode(t, rec, &detail)
	assert.Equal(t, "phoenix", detail.ID)
	assert.NotEmpty(t, detail.Evolutions)

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/ships/nope", "", nil).Code)
}

func TestSkillsCatalog(t *testing.T) {
	g, h := newTestGateway(t)

	rec := do(h, http.MethodGet, "/skills", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var skills []SkillInfo
	decode(t, rec, &skills)
	assert.Len(t, skills, len(g.tables.Skills))
}

func TestCatalogIsCached(t *testing.T) {
	_, h := newTestGateway(t)

	first := do(h, http.MethodGet, "/ships", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := do(h, http.MethodGet, "/ships", "", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))

	third := do(h, http.MethodGet, "/ships", "", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, third.Code)
}

func TestErrorsAreNotCached(t *testing.T) {
	_, h := newTestGateway(t)

	do(h, http.MethodGet, "/ships/nope", "", nil)
	rec := do(h, http.MethodGet, "/ships/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestSecurityAndCORSHeaders(t *testing.T) {
	_, h := newTestGateway(t)

	rec := do(h, http.MethodOptions, "/auth/guest", "", map[string]string{"Origin": "http://example.com"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "AstralSaints", rec.Header().Get("Server"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2)
	defer rl.Close()
	rl.ExemptPrefixes = []string{"/health"}

	now := time.Now()
	rl.now = func() time.Time { return now }

	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/ships", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/ships", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodGet, "/ships", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "", nil).Code)

	// 其他客户端不受影响
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/ships", "", map[string]string{"X-Forwarded-For": "10.0.0.9, 10.0.0.1"}).Code)

	// 窗口滑过之后恢复
	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/ships", "", nil).Code)
}

func TestGameProxy(t *testing.T) {
	g, h := newTestGateway(t)
	token, _, err := g.tokens.Issue("p-1", "guest")
	require.NoError(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodGet, "/game/health?token="+token, "", nil).Code)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("backend:" + r.URL.Path))
	}))
	defer backend.Close()

	instance, err := g.RegisterService(ServiceGame, backend.URL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/game/health", "", nil).Code)

	rec := do(h, http.MethodGet, "/game/health?token="+token, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "backend:/health", rec.Body.String())

	assert.True(t, g.UnregisterService(ServiceGame, instance.ID))
	assert.False(t, g.UnregisterService(ServiceGame, instance.ID))
}

func TestHealthCheckMarksDownServices(t *testing.T) {
	g, _ := newTestGateway(t)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	instance, err := g.RegisterService(ServiceGame, backend.URL)
	require.NoError(t, err)

	g.checkServicesHealth()
	assert.True(t, instance.Health)

	backend.Close()
	g.checkServicesHealth()
	assert.False(t, instance.Health)
	assert.Nil(t, g.getServiceInstance(ServiceGame))
}

func TestRegisterServiceRejectsBadURL(t *testing.T) {
	g, _ := newTestGateway(t)
	_, err := g.RegisterService(ServiceGame, "::not a url")
	assert.Error(t, err)
}

// fakeBoard 可控失败的排行榜
type fakeBoard struct {
	entries []models.LeaderboardEntry
	err     error
}

func (f *fakeBoard) GetLeaderboard(ctx context.Context, scoreType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	return f.entries, f.err
}

type fakeRecords struct {
	records []models.SessionRecord
	top     []models.LeaderboardEntry
	player  string
	limit   int
}

func (f *fakeRecords) RecentRecords(ctx context.Context, playerID string, limit int) ([]models.SessionRecord, error) {
	f.player, f.limit = playerID, limit
	return f.records, nil
}

func (f *fakeRecords) TopEntries(ctx context.Context, scoreType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	f.limit = limit
	return f.top, nil
}

func statsMux(h *StatsHandler) http.Handler {
	mux := http.NewServeMux()
	h.RegisterHandlers(mux)
	return mux
}

func TestLeaderboardPrefersRedis(t *testing.T) {
	board := &fakeBoard{entries: []models.LeaderboardEntry{{PlayerID: "redis", Score: 10, Rank: 1}}}
	records := &fakeRecords{top: []models.LeaderboardEntry{{PlayerID: "pg", Score: 5, Rank: 1}}}
	h := statsMux(NewStatsHandler(board, records))

	rec := do(h, http.MethodGet, "/stats/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.LeaderboardEntry
	decode(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "redis", entries[0].PlayerID)
}

func TestLeaderboardFallsBackToRecords(t *testing.T) {
	board := &fakeBoard{err: errors.New("redis down")}
	records := &fakeRecords{top: []models.LeaderboardEntry{{PlayerID: "pg", Score: 5, Rank: 1}}}
	h := statsMux(NewStatsHandler(board, records))

	rec := do(h, http.MethodGet, "/stats/leaderboard?type=kills&limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.LeaderboardEntry
	decode(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "pg", entries[0].PlayerID)
	assert.Equal(t, 5, records.limit)
}

func TestLeaderboardErrors(t *testing.T) {
	h := statsMux(NewStatsHandler(nil, nil))

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/stats/leaderboard?type=wins", "", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodGet, "/stats/leaderboard", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/stats/leaderboard/refresh", "", nil).Code)
}

func TestLeaderboardRefresh(t *testing.T) {
	sh := NewStatsHandler(nil, nil)
	called := false
	sh.refresh = func(ctx context.Context) error {
		called = true
		return nil
	}
	h := statsMux(sh)

	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "/stats/leaderboard/refresh", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/stats/leaderboard/refresh", "", nil).Code)
	assert.True(t, called)
}

func TestRecentSessions(t *testing.T) {
	records := &fakeRecords{records: []models.SessionRecord{{ID: "s-1", PlayerID: "p-1", Score: 900}}}
	h := statsMux(NewStatsHandler(nil, records))

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/stats/sessions", "", nil).Code)

	rec := do(h, http.MethodGet, "/stats/sessions?player=p-1&limit=500", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got []models.SessionRecord
	decode(t, rec, &got)
	require.Len(t, got, 1)
	assert.Equal(t, int64(900), got[0].Score)
	assert.Equal(t, "p-1", records.player)
	assert.Equal(t, 10, records.limit, "超出范围的 limit 使用默认值")

	h = statsMux(NewStatsHandler(nil, nil))
	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodGet, "/stats/sessions?player=p-1", "", nil).Code)
}
