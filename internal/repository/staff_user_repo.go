package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/stustanet/sprechstundensystem-ng/internal/model"
)

// StaffUserRepository 登录账号数据访问接口
type StaffUserRepository interface {
	Create(ctx context.Context, user *model.StaffUser) error
	GetByID(ctx context.Context, id string) (*model.StaffUser, error)
	GetByUsername(ctx context.Context, username string) (*model.StaffUser, error)
	List(ctx context.Context) ([]model.StaffUser, error)
	Update(ctx context.Context, user *model.StaffUser) error
	DeleteByUsername(ctx context.Context, username string) error
}

type staffUserRepo struct {
	db *gorm.DB
}

// NewStaffUserRepo 创建 StaffUserRepository 实例
func NewStaffUserRepo(db *gorm.DB) StaffUserRepository {
	return &staffUserRepo{db: db}
}

func (r *staffUserRepo) Create(ctx context.Context, user *model.StaffUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *staffUserRepo) GetByID(ctx context.Context, id string) (*model.StaffUser, error) {
	var user model.StaffUser
	err := r.db.WithContext(ctx).
		Where("staff_user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *staffUserRepo) GetByUsername(ctx context.Context, username string) (*model.StaffUser, error) {
	var user model.StaffUser
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *staffUserRepo) List(ctx context.Context) ([]model.StaffUser, error) {
	var users []model.StaffUser
	err := r.db.WithContext(ctx).
		Order("username").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *staffUserRepo) Update(ctx context.Context, user *model.StaffUser) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *staffUserRepo) DeleteByUsername(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).Delete(&model.StaffUser{}, "username = ?", username).Error
}
