package workflow

import (
	"time"

	"shiftdesk/internal/model"
)

// ParseDate 解析 YYYY-MM-DD，结果为 UTC 零点
func ParseDate(s string) (time.Time, error) {
	return time.Parse(model.DateLayout, s)
}

// DateOnly 截断到 UTC 零点
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RequestedDays 请假天数，首尾两天都计入；end 早于 start 时返回 0
func RequestedDays(start, end time.Time) int {
	s, e := DateOnly(start), DateOnly(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// SameDay 是否为同一日历日
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
