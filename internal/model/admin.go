package model

import "time"

// Admin 管理员档案表 — 对应 admins
//
// Admin 是坐班人员的档案（与登录账号 StaffUser 无关），
// 通过 appointment_admins 多对多关联到 Appointment。
type Admin struct {
	AdminID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"       json:"admin_id"`
	FirstName string `gorm:"type:varchar(255);not null;uniqueIndex:uq_admin_name" json:"first_name"`
	LastName  string `gorm:"type:varchar(255);not null;uniqueIndex:uq_admin_name" json:"last_name"`
	Email     string `gorm:"type:varchar(255);not null"                           json:"email"`
	BaseModel

	// 关联
	HonorarySemesters []HonorarySemester `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"honorary_semesters,omitempty"`
	Appointments      []Appointment      `gorm:"many2many:appointment_admins"                   json:"appointments,omitempty"`
}

// TableName 指定表名
func (Admin) TableName() string { return "admins" }

// Name 全名
func (a *Admin) Name() string {
	return a.FirstName + " " + a.LastName
}

// HonorarySemester 荣誉学期表 — 对应 honorary_semesters
//
// 一条记录代表某次向 Admin 授予的荣誉学期，随 Admin 级联删除。
type HonorarySemester struct {
	HonorarySemesterID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"honorary_semester_id"`
	Date               time.Time `gorm:"type:date;not null"                             json:"date"`
	AdminID            string    `gorm:"type:uuid;not null"                             json:"admin_id"`
	BaseModel
}

// TableName 指定表名
func (HonorarySemester) TableName() string { return "honorary_semesters" }
