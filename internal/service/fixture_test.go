package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"shiftdesk/config"
	"shiftdesk/internal/model"
	"shiftdesk/internal/repository"
	"shiftdesk/pkg/redis"
)

const testPassword = "Passw0rd!"

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-tests",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 168 * time.Hour,
		},
		Leave: config.LeaveConfig{AutoDenyInsufficient: true, MaxRequestDays: 60},
		Cache: config.CacheConfig{DashboardTTL: 30 * time.Second},
	}
}

// fixture 两个团队：team-a（agent、peer、lead），team-b（otherLead），外加一名 WFM
type fixture struct {
	cfg    *config.Config
	repo   *repository.Repository
	m      *mockRepos
	events *eventSink
	logger *zap.Logger

	agent     *model.User
	peer      *model.User
	lead      *model.User
	otherLead *model.User
	wfm       *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, m := newMockRepos()
	logger := zap.NewNop()

	teamA, teamB := "team-a", "team-b"
	m.team.teams[teamA] = &model.Team{TeamID: teamA, Name: "一组", IsActive: true}
	m.team.teams[teamB] = &model.Team{TeamID: teamB, Name: "二组", IsActive: true}

	f := &fixture{
		cfg:    newTestConfig(),
		repo:   repo,
		m:      m,
		events: newEventSink(repo, nil, logger),
		logger: logger,
	}
	f.agent = m.user.add(newTestUser(t, "u-agent", "张三", "agent@example.com", model.RoleAgent, &teamA))
	f.peer = m.user.add(newTestUser(t, "u-peer", "李四", "peer@example.com", model.RoleAgent, &teamA))
	f.lead = m.user.add(newTestUser(t, "u-lead", "王组长", "lead@example.com", model.RoleTeamLead, &teamA))
	f.otherLead = m.user.add(newTestUser(t, "u-lead-b", "赵组长", "leadb@example.com", model.RoleTeamLead, &teamB))
	f.wfm = m.user.add(newTestUser(t, "u-wfm", "钱经理", "wfm@example.com", model.RoleWorkforceManager, nil))
	return f
}

func newTestUser(t *testing.T, id, name, email, role string, teamID *string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	return &model.User{
		UserID:       id,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		TeamID:       teamID,
		IsActive:     true,
	}
}

func callerOf(u *model.User) Caller {
	return Caller{UserID: u.UserID, Role: u.Role, TeamID: u.TeamIDValue()}
}

func mustParseDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatalf("解析日期失败: %v", err)
	}
	return d
}

// fakeCache 内存版 Cache，记录读写次数
type fakeCache struct {
	data    map[string][]byte
	gets    int
	sets    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dst interface{}) error {
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dst)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	c.sets++
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *fakeCache) DeletePrefix(_ context.Context, prefix string) error {
	c.deletes++
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

// fakeBlacklist 内存版 Token 黑名单
type fakeBlacklist struct {
	revoked map[string]time.Duration
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{revoked: make(map[string]time.Duration)}
}

func (b *fakeBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	b.revoked[jti] = ttl
	return nil
}

func (b *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := b.revoked[jti]
	return ok, nil
}
