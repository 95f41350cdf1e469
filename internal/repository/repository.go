package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Admin            AdminRepository
	HonorarySemester HonorarySemesterRepository
	Appointment      AppointmentRepository
	Setting          SettingRepository
	StaffUser        StaffUserRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Admin:            NewAdminRepo(db),
		HonorarySemester: NewHonorarySemesterRepo(db),
		Appointment:      NewAppointmentRepo(db),
		Setting:          NewSettingRepo(db),
		StaffUser:        NewStaffUserRepo(db),
	}
}
