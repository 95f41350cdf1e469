package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stustanet/sprechstundensystem-ng/config"
	"github.com/stustanet/sprechstundensystem-ng/internal/dto"
	"github.com/stustanet/sprechstundensystem-ng/internal/model"
	"github.com/stustanet/sprechstundensystem-ng/internal/repository"
)

// ── 运行时配置模块业务错误 ──

var (
	ErrSettingUnknownKey    = errors.New("未知的配置键")
	ErrSettingInvalidActive = errors.New("激活的变体不属于该配置键")
	ErrSettingValueMissing  = errors.New("变体缺少提交的值")
	ErrSettingInvalidDelete = errors.New("待删除的变体不属于该配置键")
)

// SettingService 运行时配置业务接口
//
// 三个变更命令（AddVariant / SaveVariants / DeleteVariant）由边界层
// 按请求显式构造成单独调用，核心逻辑不感知原始表单形态。
// 每次提交只执行一个命令；前置条件不满足时返回上面的单个业务错误。
type SettingService interface {
	// Resolve 返回键的生效值：激活变体优先，否则取注入的编译期默认值
	Resolve(ctx context.Context, key model.SettingKey) (string, error)
	List(ctx context.Context) ([]dto.SettingGroupResponse, error)
	AddVariant(ctx context.Context, key model.SettingKey) (*dto.SettingVariantResponse, error)
	SaveVariants(ctx context.Context, key model.SettingKey, req *dto.SaveVariantsRequest) error
	DeleteVariant(ctx context.Context, key model.SettingKey, id string) error
}

type settingService struct {
	defaults config.SettingDefaults
	repo     *repository.Repository
	logger   *zap.Logger
}

// NewSettingService 创建 SettingService 实例
// defaults 为各键的编译期兜底值，显式注入，不走全局状态
func NewSettingService(defaults config.SettingDefaults, repo *repository.Repository, logger *zap.Logger) SettingService {
	return &settingService{defaults: defaults, repo: repo, logger: logger}
}

// ────────────────────── Resolve ──────────────────────

func (s *settingService) Resolve(ctx context.Context, key model.SettingKey) (string, error) {
	if !key.Valid() {
		return "", ErrSettingUnknownKey
	}

	setting, err := s.repo.Setting.GetActive(ctx, string(key))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.defaultFor(key), nil
		}
		s.logger.Error("查询激活配置失败", zap.String("key", string(key)), zap.Error(err))
		return "", err
	}

	return setting.Value, nil
}

func (s *settingService) defaultFor(key model.SettingKey) string {
	switch key {
	case model.SettingSender:
		return s.defaults.Sender
	case model.SettingMailingList:
		return s.defaults.MailingList
	case model.SettingReminderNote:
		return s.defaults.ReminderNote
	case model.SettingAppointmentLocation:
		return s.defaults.AppointmentLocation
	}
	return ""
}

// ────────────────────── List ──────────────────────

func (s *settingService) List(ctx context.Context) ([]dto.SettingGroupResponse, error) {
	groups := make([]dto.SettingGroupResponse, 0, len(model.SettingKeys))

	for _, key := range model.SettingKeys {
		variants, err := s.repo.Setting.ListByName(ctx, string(key))
		if err != nil {
			s.logger.Error("查询配置变体失败", zap.String("key", string(key)), zap.Error(err))
			return nil, err
		}

		resolved, err := s.Resolve(ctx, key)
		if err != nil {
			return nil, err
		}

		group := dto.SettingGroupResponse{
			Key:         string(key),
			VerboseName: key.VerboseName(),
			Resolved:    resolved,
			Variants:    make([]dto.SettingVariantResponse, 0, len(variants)),
		}
		for _, v := range variants {
			group.Variants = append(group.Variants, dto.SettingVariantResponse{
				ID:     v.SettingID,
				Value:  v.Value,
				Active: v.Active,
			})
		}
		groups = append(groups, group)
	}

	return groups, nil
}

// ────────────────────── AddVariant ──────────────────────

func (s *settingService) AddVariant(ctx context.Context, key model.SettingKey) (*dto.SettingVariantResponse, error) {
	if !key.Valid() {
		return nil, ErrSettingUnknownKey
	}

	variant := &model.Setting{
		Name:   string(key),
		Value:  "",
		Active: false,
	}
	if err := s.repo.Setting.Create(ctx, variant); err != nil {
		s.logger.Error("新增配置变体失败", zap.String("key", string(key)), zap.Error(err))
		return nil, err
	}

	return &dto.SettingVariantResponse{
		ID:     variant.SettingID,
		Value:  variant.Value,
		Active: variant.Active,
	}, nil
}

// ────────────────────── SaveVariants ──────────────────────

func (s *settingService) SaveVariants(ctx context.Context, key model.SettingKey, req *dto.SaveVariantsRequest) error {
	if !key.Valid() {
		return ErrSettingUnknownKey
	}

	variants, err := s.repo.Setting.ListByName(ctx, string(key))
	if err != nil {
		s.logger.Error("查询配置变体失败", zap.String("key", string(key)), zap.Error(err))
		return err
	}

	// 激活行必须是该键的变体之一
	activeFound := false
	for _, v := range variants {
		if v.SettingID == req.ActiveID {
			activeFound = true
			break
		}
	}
	if !activeFound {
		return ErrSettingInvalidActive
	}

	// 每个既有变体都必须带新值；恰好一行被激活
	for i := range variants {
		value, ok := req.Values[variants[i].SettingID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrSettingValueMissing, variants[i].SettingID)
		}
		variants[i].Value = value
		variants[i].Active = variants[i].SettingID == req.ActiveID
	}

	if err := s.repo.Setting.UpdateBatch(ctx, variants); err != nil {
		s.logger.Error("保存配置变体失败", zap.String("key", string(key)), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── DeleteVariant ──────────────────────

func (s *settingService) DeleteVariant(ctx context.Context, key model.SettingKey, id string) error {
	if !key.Valid() {
		return ErrSettingUnknownKey
	}

	variants, err := s.repo.Setting.ListByName(ctx, string(key))
	if err != nil {
		s.logger.Error("查询配置变体失败", zap.String("key", string(key)), zap.Error(err))
		return err
	}

	found := false
	for _, v := range variants {
		if v.SettingID == id {
			found = true
			break
		}
	}
	if !found {
		return ErrSettingInvalidDelete
	}

	if err := s.repo.Setting.Delete(ctx, id); err != nil {
		s.logger.Error("删除配置变体失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}
