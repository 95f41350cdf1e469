package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/stustanet/sprechstundensystem-ng/internal/model"
)

// HonorarySemesterRepository 荣誉学期数据访问接口
type HonorarySemesterRepository interface {
	Create(ctx context.Context, hs *model.HonorarySemester) error
	GetByID(ctx context.Context, id string) (*model.HonorarySemester, error)
	ListByAdmin(ctx context.Context, adminID string) ([]model.HonorarySemester, error)
	Update(ctx context.Context, hs *model.HonorarySemester) error
	Delete(ctx context.Context, id string) error
}

type honorarySemesterRepo struct {
	db *gorm.DB
}

// NewHonorarySemesterRepo 创建 HonorarySemesterRepository 实例
func NewHonorarySemesterRepo(db *gorm.DB) HonorarySemesterRepository {
	return &honorarySemesterRepo{db: db}
}

func (r *honorarySemesterRepo) Create(ctx context.Context, hs *model.HonorarySemester) error {
	return r.db.WithContext(ctx).Create(hs).Error
}

func (r *honorarySemesterRepo) GetByID(ctx context.Context, id string) (*model.HonorarySemester, error) {
	var hs model.HonorarySemester
	err := r.db.WithContext(ctx).
		Where("honorary_semester_id = ?", id).
		First(&hs).Error
	if err != nil {
		return nil, err
	}
	return &hs, nil
}

func (r *honorarySemesterRepo) ListByAdmin(ctx context.Context, adminID string) ([]model.HonorarySemester, error) {
	var list []model.HonorarySemester
	err := r.db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("date DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *honorarySemesterRepo) Update(ctx context.Context, hs *model.HonorarySemester) error {
	return r.db.WithContext(ctx).Save(hs).Error
}

func (r *honorarySemesterRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.HonorarySemester{}, "honorary_semester_id = ?", id).Error
}
