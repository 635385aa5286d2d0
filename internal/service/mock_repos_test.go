package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"shiftdesk/internal/model"
	"shiftdesk/internal/repository"
	pkgerrors "shiftdesk/pkg/errors"
)

// ── 测试装配 ──

type mockRepos struct {
	user         *mockUserRepo
	team         *mockTeamRepo
	leaveType    *mockLeaveTypeRepo
	leaveBalance *mockLeaveBalanceRepo
	leave        *mockLeaveRequestRepo
	shift        *mockShiftRepo
	shiftConfig  *mockShiftConfigRepo
	swap         *mockSwapRequestRepo
	skill        *mockSkillRepo
	distribution *mockDistributionRepo
	overtime     *mockOvertimeRepo
	notification *mockNotificationRepo
	dashboard    *mockDashboardRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		user:         newMockUserRepo(),
		team:         newMockTeamRepo(),
		leaveType:    newMockLeaveTypeRepo(),
		leaveBalance: newMockLeaveBalanceRepo(),
		shiftConfig:  newMockShiftConfigRepo(),
		skill:        newMockSkillRepo(),
		distribution: &mockDistributionRepo{},
		overtime:     &mockOvertimeRepo{},
		notification: &mockNotificationRepo{},
		dashboard:    &mockDashboardRepo{},
	}
	m.leave = newMockLeaveRequestRepo(m.user)
	m.shift = newMockShiftRepo(m.user)
	m.swap = newMockSwapRequestRepo(m.user)

	repo := &repository.Repository{
		User:         m.user,
		Team:         m.team,
		LeaveType:    m.leaveType,
		LeaveBalance: m.leaveBalance,
		LeaveRequest: m.leave,
		Shift:        m.shift,
		ShiftConfig:  m.shiftConfig,
		SwapRequest:  m.swap,
		Skill:        m.skill,
		Distribution: m.distribution,
		Overtime:     m.overtime,
		Notification: m.notification,
		Dashboard:    m.dashboard,
	}
	return repo, m
}

var idSeq int

func nextID(prefix string) string {
	idSeq++
	return fmt.Sprintf("%s-%04d", prefix, idSeq)
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(u *model.User) *model.User {
	if u.Version == 0 {
		u.Version = 1
	}
	m.users[u.UserID] = u
	return u
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.UserID == "" {
		user.UserID = nextID("user")
	}
	user.Version = 1
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) List(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if filters != nil {
			if filters.Role != "" && u.Role != filters.Role {
				continue
			}
			if filters.TeamID != "" && u.TeamIDValue() != filters.TeamID {
				continue
			}
			if filters.Keyword != "" && !strings.Contains(u.Name, filters.Keyword) && !strings.Contains(u.Email, filters.Keyword) {
				continue
			}
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	total := int64(len(result))
	if offset >= len(result) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	stored, ok := m.users[user.UserID]
	if !ok || stored.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version++
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

// ── Mock TeamRepository ──

type mockTeamRepo struct {
	teams map[string]*model.Team
}

func newMockTeamRepo() *mockTeamRepo {
	return &mockTeamRepo{teams: make(map[string]*model.Team)}
}

func (m *mockTeamRepo) Create(_ context.Context, team *model.Team) error {
	if team.TeamID == "" {
		team.TeamID = nextID("team")
	}
	m.teams[team.TeamID] = team
	return nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, id string) (*model.Team, error) {
	if t, ok := m.teams[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) GetByName(_ context.Context, name string) (*model.Team, error) {
	for _, t := range m.teams {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) List(_ context.Context) ([]model.Team, error) {
	var result []model.Team
	for _, t := range m.teams {
		result = append(result, *t)
	}
	return result, nil
}

func (m *mockTeamRepo) BatchCountMembers(_ context.Context, _ []string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

// ── Mock LeaveTypeRepository ──

type mockLeaveTypeRepo struct {
	types map[string]*model.LeaveType
}

func newMockLeaveTypeRepo() *mockLeaveTypeRepo {
	return &mockLeaveTypeRepo{types: map[string]*model.LeaveType{
		"annual": {Code: "annual", Name: "年假", TracksBalance: true, IsActive: true},
		"sick":   {Code: "sick", Name: "病假", TracksBalance: true, IsActive: true},
		"unpaid": {Code: "unpaid", Name: "无薪假", TracksBalance: false, IsActive: true},
	}}
}

func (m *mockLeaveTypeRepo) Create(_ context.Context, lt *model.LeaveType) error {
	if _, ok := m.types[lt.Code]; ok {
		return repository.ErrDuplicate
	}
	m.types[lt.Code] = lt
	return nil
}

func (m *mockLeaveTypeRepo) GetByCode(_ context.Context, code string) (*model.LeaveType, error) {
	if lt, ok := m.types[code]; ok {
		cp := *lt
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeaveTypeRepo) List(_ context.Context, includeInactive bool) ([]model.LeaveType, error) {
	var result []model.LeaveType
	for _, lt := range m.types {
		if includeInactive || lt.IsActive {
			result = append(result, *lt)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockLeaveTypeRepo) Update(_ context.Context, lt *model.LeaveType) error {
	m.types[lt.Code] = lt
	return nil
}

// ── Mock LeaveBalanceRepository ──

type mockLeaveBalanceRepo struct {
	balances map[string]*model.LeaveBalance // userID:leaveType
}

func newMockLeaveBalanceRepo() *mockLeaveBalanceRepo {
	return &mockLeaveBalanceRepo{balances: make(map[string]*model.LeaveBalance)}
}

func (m *mockLeaveBalanceRepo) set(userID, leaveType string, balance, used float64) {
	m.balances[userID+":"+leaveType] = &model.LeaveBalance{
		UserID: userID, LeaveType: leaveType, BalanceDays: balance, UsedDays: used, Version: 1,
	}
}

func (m *mockLeaveBalanceRepo) Get(_ context.Context, userID, leaveType string) (*model.LeaveBalance, error) {
	if b, ok := m.balances[userID+":"+leaveType]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeaveBalanceRepo) ListByUser(_ context.Context, userID string) ([]model.LeaveBalance, error) {
	var result []model.LeaveBalance
	for _, b := range m.balances {
		if b.UserID == userID {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LeaveType < result[j].LeaveType })
	return result, nil
}

func (m *mockLeaveBalanceRepo) List(_ context.Context, userIDs []string) ([]model.LeaveBalance, error) {
	var result []model.LeaveBalance
	for _, b := range m.balances {
		for _, id := range userIDs {
			if b.UserID == id {
				result = append(result, *b)
			}
		}
	}
	return result, nil
}

func (m *mockLeaveBalanceRepo) Upsert(_ context.Context, balances []model.LeaveBalance) error {
	for _, b := range balances {
		key := b.UserID + ":" + b.LeaveType
		if existing, ok := m.balances[key]; ok {
			existing.BalanceDays = b.BalanceDays
			existing.Version++
			continue
		}
		cp := b
		cp.Version = 1
		m.balances[key] = &cp
	}
	return nil
}

func (m *mockLeaveBalanceRepo) AdjustUsed(_ context.Context, userID, leaveType string, delta float64, _ string) error {
	b, ok := m.balances[userID+":"+leaveType]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.UsedDays += delta
	if b.UsedDays < 0 {
		b.UsedDays = 0
	}
	b.Version++
	return nil
}

// ── Mock LeaveRequestRepository ──

type mockLeaveRequestRepo struct {
	users *mockUserRepo
	reqs  map[string]*model.LeaveRequest
}

func newMockLeaveRequestRepo(users *mockUserRepo) *mockLeaveRequestRepo {
	return &mockLeaveRequestRepo{users: users, reqs: make(map[string]*model.LeaveRequest)}
}

func (m *mockLeaveRequestRepo) Create(_ context.Context, req *model.LeaveRequest) error {
	if req.LeaveRequestID == "" {
		req.LeaveRequestID = nextID("leave")
	}
	req.Version = 1
	req.CreatedAt = time.Now()
	cp := *req
	cp.User = nil
	m.reqs[req.LeaveRequestID] = &cp
	return nil
}

func (m *mockLeaveRequestRepo) withUser(lr model.LeaveRequest) *model.LeaveRequest {
	if u, ok := m.users.users[lr.UserID]; ok {
		cp := *u
		lr.User = &cp
	}
	return &lr
}

func (m *mockLeaveRequestRepo) GetByID(_ context.Context, id string) (*model.LeaveRequest, error) {
	if lr, ok := m.reqs[id]; ok {
		return m.withUser(*lr), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeaveRequestRepo) List(_ context.Context, filters *repository.LeaveRequestListFilters, offset, limit int) ([]model.LeaveRequest, int64, error) {
	var result []model.LeaveRequest
	for _, lr := range m.reqs {
		if filters.UserID != "" && lr.UserID != filters.UserID {
			continue
		}
		if filters.TeamID != "" {
			u, ok := m.users.users[lr.UserID]
			if !ok || u.TeamIDValue() != filters.TeamID {
				continue
			}
		}
		if len(filters.Statuses) > 0 && !containsString(filters.Statuses, lr.Status) {
			continue
		}
		result = append(result, *m.withUser(*lr))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LeaveRequestID < result[j].LeaveRequestID })
	return result, int64(len(result)), nil
}

func (m *mockLeaveRequestRepo) UpdateStatus(_ context.Context, req *model.LeaveRequest) error {
	stored, ok := m.reqs[req.LeaveRequestID]
	if !ok || stored.Version != req.Version {
		return pkgerrors.ErrOptimisticLock
	}
	req.Version++
	cp := *req
	cp.User = nil
	m.reqs[req.LeaveRequestID] = &cp
	return nil
}

func (m *mockLeaveRequestRepo) Delete(_ context.Context, id string, version int, _ string) error {
	stored, ok := m.reqs[id]
	if !ok || stored.Version != version {
		return pkgerrors.ErrOptimisticLock
	}
	delete(m.reqs, id)
	return nil
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	users  *mockUserRepo
	shifts map[string]*model.Shift
}

func newMockShiftRepo(users *mockUserRepo) *mockShiftRepo {
	return &mockShiftRepo{users: users, shifts: make(map[string]*model.Shift)}
}

func (m *mockShiftRepo) add(userID, date, shiftType string) *model.Shift {
	d, _ := time.Parse(model.DateLayout, date)
	sh := &model.Shift{ShiftID: nextID("shift"), UserID: userID, Date: d, ShiftType: shiftType, Version: 1}
	m.shifts[sh.ShiftID] = sh
	return sh
}

func (m *mockShiftRepo) find(userID string, date time.Time) *model.Shift {
	for _, sh := range m.shifts {
		if sh.UserID == userID && sh.Date.Equal(date) {
			return sh
		}
	}
	return nil
}

// snapshot userID|date -> shift_type，用于断言班次是否变化
func (m *mockShiftRepo) snapshot() map[string]string {
	out := make(map[string]string, len(m.shifts))
	for _, sh := range m.shifts {
		out[sh.UserID+"|"+sh.Date.Format(model.DateLayout)] = sh.ShiftType
	}
	return out
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if sh, ok := m.shifts[id]; ok {
		cp := *sh
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) GetByUserAndDate(_ context.Context, userID string, date time.Time) (*model.Shift, error) {
	if sh := m.find(userID, date); sh != nil {
		cp := *sh
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) List(_ context.Context, filters *repository.ShiftListFilters) ([]model.Shift, error) {
	var result []model.Shift
	for _, sh := range m.shifts {
		if sh.Date.Before(filters.From) || sh.Date.After(filters.To) {
			continue
		}
		if len(filters.UserIDs) > 0 && !containsString(filters.UserIDs, sh.UserID) {
			continue
		}
		u, ok := m.users.users[sh.UserID]
		if filters.TeamID != "" && (!ok || u.TeamIDValue() != filters.TeamID) {
			continue
		}
		cp := *sh
		if ok {
			user := *u
			cp.User = &user
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].UserID < result[j].UserID
	})
	return result, nil
}

func (m *mockShiftRepo) Upsert(_ context.Context, shift *model.Shift) error {
	if existing := m.find(shift.UserID, shift.Date); existing != nil {
		existing.ShiftType = shift.ShiftType
		existing.Notes = shift.Notes
		existing.Version++
		return nil
	}
	cp := *shift
	cp.ShiftID = nextID("shift")
	cp.Version = 1
	m.shifts[cp.ShiftID] = &cp
	return nil
}

func (m *mockShiftRepo) BatchUpsert(ctx context.Context, shifts []model.Shift) error {
	for i := range shifts {
		if err := m.Upsert(ctx, &shifts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.shifts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.shifts, id)
	return nil
}

// Exchange 与数据库实现相同的语义：逐日交换双方的排班
func (m *mockShiftRepo) Exchange(_ context.Context, requesterID, targetID string, requesterDate, targetDate time.Time) error {
	dates := []time.Time{requesterDate}
	if !targetDate.Equal(requesterDate) {
		dates = append(dates, targetDate)
	}
	for _, d := range dates {
		if m.find(requesterID, d) == nil && m.find(targetID, d) == nil {
			return repository.ErrShiftNotFound
		}
	}
	for _, d := range dates {
		a, b := m.find(requesterID, d), m.find(targetID, d)
		switch {
		case a != nil && b != nil:
			a.ShiftType, b.ShiftType = b.ShiftType, a.ShiftType
			a.Version++
			b.Version++
		case a != nil:
			a.UserID = targetID
			a.Version++
		case b != nil:
			b.UserID = requesterID
			b.Version++
		}
	}
	return nil
}

// ── Mock ShiftConfigRepository ──

type mockShiftConfigRepo struct {
	configs map[string]*model.ShiftConfiguration
}

func newMockShiftConfigRepo() *mockShiftConfigRepo {
	return &mockShiftConfigRepo{configs: map[string]*model.ShiftConfiguration{
		"morning": {Code: "morning", Name: "早班", StartTime: "08:00", EndTime: "16:00", IsActive: true, Version: 1},
		"evening": {Code: "evening", Name: "晚班", StartTime: "16:00", EndTime: "00:00", IsActive: true, Version: 1},
		"night":   {Code: "night", Name: "夜班", StartTime: "22:00", EndTime: "06:00", IsActive: true, Version: 1},
		"off":     {Code: "off", Name: "休息", StartTime: "00:00", EndTime: "00:00", IsActive: true, Version: 1},
	}}
}

func (m *mockShiftConfigRepo) Create(_ context.Context, cfg *model.ShiftConfiguration) error {
	if _, ok := m.configs[cfg.Code]; ok {
		return repository.ErrDuplicate
	}
	cfg.Version = 1
	m.configs[cfg.Code] = cfg
	return nil
}

func (m *mockShiftConfigRepo) GetByCode(_ context.Context, code string) (*model.ShiftConfiguration, error) {
	if c, ok := m.configs[code]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftConfigRepo) List(_ context.Context, includeInactive bool) ([]model.ShiftConfiguration, error) {
	var result []model.ShiftConfiguration
	for _, c := range m.configs {
		if includeInactive || c.IsActive {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockShiftConfigRepo) Update(_ context.Context, cfg *model.ShiftConfiguration) error {
	stored, ok := m.configs[cfg.Code]
	if !ok || stored.Version != cfg.Version {
		return pkgerrors.ErrOptimisticLock
	}
	cfg.Version++
	cp := *cfg
	m.configs[cfg.Code] = &cp
	return nil
}

// ── Mock SwapRequestRepository ──

type mockSwapRequestRepo struct {
	users *mockUserRepo
	reqs  map[string]*model.SwapRequest
}

func newMockSwapRequestRepo(users *mockUserRepo) *mockSwapRequestRepo {
	return &mockSwapRequestRepo{users: users, reqs: make(map[string]*model.SwapRequest)}
}

func (m *mockSwapRequestRepo) withUsers(sr model.SwapRequest) *model.SwapRequest {
	if u, ok := m.users.users[sr.RequesterID]; ok {
		cp := *u
		sr.Requester = &cp
	}
	if u, ok := m.users.users[sr.TargetUserID]; ok {
		cp := *u
		sr.TargetUser = &cp
	}
	return &sr
}

func (m *mockSwapRequestRepo) Create(_ context.Context, req *model.SwapRequest) error {
	if req.SwapRequestID == "" {
		req.SwapRequestID = nextID("swap")
	}
	req.Version = 1
	req.CreatedAt = time.Now()
	cp := *req
	cp.Requester, cp.TargetUser = nil, nil
	m.reqs[req.SwapRequestID] = &cp
	return nil
}

func (m *mockSwapRequestRepo) GetByID(_ context.Context, id string) (*model.SwapRequest, error) {
	if sr, ok := m.reqs[id]; ok {
		return m.withUsers(*sr), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSwapRequestRepo) List(_ context.Context, filters *repository.SwapRequestListFilters, _, _ int) ([]model.SwapRequest, int64, error) {
	var result []model.SwapRequest
	for _, sr := range m.reqs {
		if filters.ParticipantID != "" && sr.RequesterID != filters.ParticipantID && sr.TargetUserID != filters.ParticipantID {
			continue
		}
		if filters.TeamID != "" {
			u, ok := m.users.users[sr.RequesterID]
			if !ok || u.TeamIDValue() != filters.TeamID {
				continue
			}
		}
		if len(filters.Statuses) > 0 && !containsString(filters.Statuses, sr.Status) {
			continue
		}
		result = append(result, *m.withUsers(*sr))
	}
	return result, int64(len(result)), nil
}

func (m *mockSwapRequestRepo) UpdateStatus(_ context.Context, req *model.SwapRequest) error {
	stored, ok := m.reqs[req.SwapRequestID]
	if !ok || stored.Version != req.Version {
		return pkgerrors.ErrOptimisticLock
	}
	req.Version++
	cp := *req
	cp.Requester, cp.TargetUser = nil, nil
	m.reqs[req.SwapRequestID] = &cp
	return nil
}

func (m *mockSwapRequestRepo) Delete(_ context.Context, id string, version int, _ string) error {
	stored, ok := m.reqs[id]
	if !ok || stored.Version != version {
		return pkgerrors.ErrOptimisticLock
	}
	delete(m.reqs, id)
	return nil
}

// ── Mock SkillRepository ──

type mockSkillRepo struct {
	skills     map[string]*model.Skill
	userSkills map[string][]model.UserSkill
}

func newMockSkillRepo() *mockSkillRepo {
	return &mockSkillRepo{skills: make(map[string]*model.Skill), userSkills: make(map[string][]model.UserSkill)}
}

func (m *mockSkillRepo) Create(_ context.Context, skill *model.Skill) error {
	for _, s := range m.skills {
		if s.Name == skill.Name {
			return repository.ErrDuplicate
		}
	}
	if skill.SkillID == "" {
		skill.SkillID = nextID("skill")
	}
	m.skills[skill.SkillID] = skill
	return nil
}

func (m *mockSkillRepo) GetByID(_ context.Context, id string) (*model.Skill, error) {
	if s, ok := m.skills[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSkillRepo) List(_ context.Context) ([]model.Skill, error) {
	var result []model.Skill
	for _, s := range m.skills {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSkillRepo) ListByIDs(_ context.Context, ids []string) ([]model.Skill, error) {
	var result []model.Skill
	for _, id := range ids {
		if s, ok := m.skills[id]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSkillRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.skills[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.skills, id)
	return nil
}

func (m *mockSkillRepo) ListUserSkills(_ context.Context, userID string) ([]model.UserSkill, error) {
	result := make([]model.UserSkill, 0, len(m.userSkills[userID]))
	for _, us := range m.userSkills[userID] {
		us.Skill = m.skills[us.SkillID]
		result = append(result, us)
	}
	return result, nil
}

func (m *mockSkillRepo) ReplaceUserSkills(_ context.Context, userID string, skills []model.UserSkill) error {
	m.userSkills[userID] = skills
	return nil
}

// ── Mock Settings / Notification / Dashboard ──

type mockDistributionRepo struct {
	settings []model.DistributionSetting
}

func (m *mockDistributionRepo) List(_ context.Context) ([]model.DistributionSetting, error) {
	return m.settings, nil
}

func (m *mockDistributionRepo) ReplaceAll(_ context.Context, settings []model.DistributionSetting) error {
	m.settings = settings
	return nil
}

type mockOvertimeRepo struct {
	setting *model.OvertimeSetting
}

func (m *mockOvertimeRepo) Get(_ context.Context) (*model.OvertimeSetting, error) {
	if m.setting == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m.setting
	return &cp, nil
}

func (m *mockOvertimeRepo) Update(_ context.Context, setting *model.OvertimeSetting) error {
	if m.setting == nil || m.setting.Version != setting.Version {
		return pkgerrors.ErrOptimisticLock
	}
	setting.Version++
	cp := *setting
	m.setting = &cp
	return nil
}

type mockNotificationRepo struct {
	items []model.Notification
}

func (m *mockNotificationRepo) BatchCreate(_ context.Context, notifications []model.Notification) error {
	for _, n := range notifications {
		n.NotificationID = nextID("notif")
		m.items = append(m.items, n)
	}
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, _, _ int) ([]model.Notification, int64, error) {
	var result []model.Notification
	for _, n := range m.items {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			result = append(result, n)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	for i := range m.items {
		if m.items[i].NotificationID == id && m.items[i].UserID == userID {
			m.items[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// countFor 某用户某类型的通知数
func (m *mockNotificationRepo) countFor(userID, typ string) int {
	n := 0
	for _, item := range m.items {
		if item.UserID == userID && item.Type == typ {
			n++
		}
	}
	return n
}

type mockDashboardRepo struct {
	leave       repository.StatusCounts
	swap        repository.StatusCounts
	approved    int64
	shiftCounts []repository.ShiftCount
	calls       int
}

func (m *mockDashboardRepo) CountLeaveByStatus(_ context.Context, _ string) (*repository.StatusCounts, error) {
	m.calls++
	c := m.leave
	return &c, nil
}

func (m *mockDashboardRepo) CountSwapByStatus(_ context.Context, _ string) (*repository.StatusCounts, error) {
	c := m.swap
	return &c, nil
}

func (m *mockDashboardRepo) CountApprovedLeaveInRange(_ context.Context, _, _ time.Time, _ string) (int64, error) {
	return m.approved, nil
}

func (m *mockDashboardRepo) CountShiftsByDateAndType(_ context.Context, _, _ time.Time, _ string) ([]repository.ShiftCount, error) {
	return m.shiftCounts, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
