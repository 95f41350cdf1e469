package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/stustanet/sprechstundensystem-ng/internal/model"
)

// AppointmentRepository 坐班时段数据访问接口
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	CreateBatch(ctx context.Context, appointments []model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	ListAll(ctx context.Context) ([]model.Appointment, error)
	ListInInterval(ctx context.Context, from, to time.Time) ([]model.Appointment, error)
	ListByAdmin(ctx context.Context, adminID string) ([]model.Appointment, error)
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]model.Appointment, error)
	ListDueReminders(ctx context.Context, now, until time.Time) ([]model.Appointment, error)
	ExistsCoveringDay(ctx context.Context, dayStart, dayEnd time.Time) (bool, error)
	ExistsStartingAfter(ctx context.Context, t time.Time) (bool, error)
	CountByAdminSince(ctx context.Context, adminID string, t time.Time) (int64, error)
	CountByAdminInRange(ctx context.Context, adminID string, from, to time.Time) (int64, error)
	Update(ctx context.Context, appointment *model.Appointment) error
	ReplaceAdmins(ctx context.Context, appointment *model.Appointment, admins []model.Admin) error
	Delete(ctx context.Context, id string) error
}

// appointmentRepo AppointmentRepository 的 GORM 实现
type appointmentRepo struct {
	db *gorm.DB
}

// NewAppointmentRepo 创建 AppointmentRepository 实例
func NewAppointmentRepo(db *gorm.DB) AppointmentRepository {
	return &appointmentRepo{db: db}
}

func (r *appointmentRepo) Create(ctx context.Context, appointment *model.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *appointmentRepo) CreateBatch(ctx context.Context, appointments []model.Appointment) error {
	if len(appointments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&appointments).Error
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	var appointment model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Admins").
		Where("appointment_id = ?", id).
		First(&appointment).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepo) ListAll(ctx context.Context) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Admins").
		Order("start_time").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepo) ListInInterval(ctx context.Context, from, to time.Time) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Admins").
		Where("start_time >= ? AND start_time < ?", from, to).
		Order("start_time").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepo) ListByAdmin(ctx context.Context, adminID string) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Admins").
		Joins("JOIN appointment_admins aa ON aa.appointment_id = appointments.appointment_id").
		Where("aa.admin_id = ?", adminID).
		Order("start_time").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepo) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Admins").
		Where("start_time >= ?", now).
		Order("start_time").
		Limit(limit).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepo) ListDueReminders(ctx context.Context, now, until time.Time) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Admins").
		Where("reminder_sent = FALSE AND start_time > ? AND end_time <= ?", now, until).
		Order("start_time").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepo) ExistsCoveringDay(ctx context.Context, dayStart, dayEnd time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("start_time >= ? AND end_time <= ?", dayStart, dayEnd).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *appointmentRepo) ExistsStartingAfter(ctx context.Context, t time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("start_time >= ?", t).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *appointmentRepo) CountByAdminSince(ctx context.Context, adminID string, t time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Joins("JOIN appointment_admins aa ON aa.appointment_id = appointments.appointment_id").
		Where("aa.admin_id = ? AND start_time >= ?", adminID, t).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepo) CountByAdminInRange(ctx context.Context, adminID string, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Joins("JOIN appointment_admins aa ON aa.appointment_id = appointments.appointment_id").
		Where("aa.admin_id = ? AND start_time >= ? AND end_time <= ?", adminID, from, to).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepo) Update(ctx context.Context, appointment *model.Appointment) error {
	return r.db.WithContext(ctx).
		Omit("Admins").
		Save(appointment).Error
}

func (r *appointmentRepo) ReplaceAdmins(ctx context.Context, appointment *model.Appointment, admins []model.Admin) error {
	return r.db.WithContext(ctx).
		Model(appointment).
		Association("Admins").
		Replace(admins)
}

func (r *appointmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Appointment{}, "appointment_id = ?", id).Error
}
