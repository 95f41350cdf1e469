package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/stustanet/sprechstundensystem-ng/internal/model"
)

// SettingRepository 运行时配置数据访问接口
type SettingRepository interface {
	Create(ctx context.Context, setting *model.Setting) error
	GetByID(ctx context.Context, id string) (*model.Setting, error)
	GetActive(ctx context.Context, name string) (*model.Setting, error)
	ListByName(ctx context.Context, name string) ([]model.Setting, error)
	Update(ctx context.Context, setting *model.Setting) error
	UpdateBatch(ctx context.Context, settings []model.Setting) error
	Delete(ctx context.Context, id string) error
}

type settingRepo struct {
	db *gorm.DB
}

// NewSettingRepo 创建 SettingRepository 实例
func NewSettingRepo(db *gorm.DB) SettingRepository {
	return &settingRepo{db: db}
}

func (r *settingRepo) Create(ctx context.Context, setting *model.Setting) error {
	return r.db.WithContext(ctx).Create(setting).Error
}

func (r *settingRepo) GetByID(ctx context.Context, id string) (*model.Setting, error) {
	var setting model.Setting
	err := r.db.WithContext(ctx).
		Where("setting_id = ?", id).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingRepo) GetActive(ctx context.Context, name string) (*model.Setting, error) {
	var setting model.Setting
	err := r.db.WithContext(ctx).
		Where("name = ? AND active = TRUE", name).
		Order("created_at").
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingRepo) ListByName(ctx context.Context, name string) ([]model.Setting, error) {
	var settings []model.Setting
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Order("created_at").
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *settingRepo) Update(ctx context.Context, setting *model.Setting) error {
	return r.db.WithContext(ctx).Save(setting).Error
}

// UpdateBatch 在一个事务内保存全部变体（save 动作的原子提交）
func (r *settingRepo) UpdateBatch(ctx context.Context, settings []model.Setting) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range settings {
			if err := tx.Save(&settings[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *settingRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Setting{}, "setting_id = ?", id).Error
}
