package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"shiftdesk/internal/dto"
)

func TestExportSchedule(t *testing.T) {
	f := newFixture(t)
	svc := NewExportService(f.repo, f.logger)
	f.m.shift.add(f.agent.UserID, "2024-03-01", "morning")
	f.m.shift.add(f.peer.UserID, "2024-03-02", "night")
	f.m.shift.add(f.otherLead.UserID, "2024-03-01", "evening")

	buf, filename, err := svc.ExportSchedule(context.Background(), callerOf(f.lead), &dto.ExportScheduleRequest{
		From: "2024-03-01", To: "2024-03-03",
	})
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if filename != "排班表_2024-03-01_2024-03-03.xlsx" {
		t.Errorf("文件名不正确: %s", filename)
	}

	x, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出的文件应可打开: %v", err)
	}
	defer x.Close()

	rows, err := x.GetRows("排班表")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	// 标题 + 表头 + 本团队 2 名成员
	if len(rows) != 4 {
		t.Fatalf("期望 4 行，实际=%d", len(rows))
	}
	if !strings.HasPrefix(rows[1][1], "03-01") {
		t.Errorf("表头第一列日期不正确: %s", rows[1][1])
	}
	want := map[string][]string{
		"张三": {"早班", "-", "-"},
		"李四": {"-", "夜班", "-"},
	}
	for _, row := range rows[2:] {
		exp, ok := want[row[0]]
		if !ok {
			t.Errorf("不应导出成员 %s", row[0])
			continue
		}
		for i, v := range exp {
			if row[i+1] != v {
				t.Errorf("%s 第 %d 天期望 %s，实际=%s", row[0], i+1, v, row[i+1])
			}
		}
	}
}

func TestExportSchedule_Errors(t *testing.T) {
	f := newFixture(t)
	svc := NewExportService(f.repo, f.logger)
	ctx := context.Background()

	_, _, err := svc.ExportSchedule(ctx, callerOf(f.wfm), &dto.ExportScheduleRequest{From: "2024-03-01", To: "2024-03-03"})
	if !errors.Is(err, ErrExportNoShifts) {
		t.Errorf("期望 ErrExportNoShifts，实际: %v", err)
	}

	_, _, err = svc.ExportSchedule(ctx, Caller{UserID: "u-x", Role: "agent"}, &dto.ExportScheduleRequest{From: "2024-03-01", To: "2024-03-03"})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("无团队成员不能导出，实际: %v", err)
	}
}

func TestColName(t *testing.T) {
	cases := map[int]string{1: "A", 26: "Z", 27: "AA", 32: "AF"}
	for n, want := range cases {
		if got := colName(n); got != want {
			t.Errorf("colName(%d) 期望 %s，实际=%s", n, want, got)
		}
	}
}
