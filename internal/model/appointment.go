package model

import "time"

// Appointment 坐班时段表 — 对应 appointments
//
// 不变量：end_time > start_time（在表单边界校验，不做存储约束）。
// reminder_sent 只会由提醒批处理单调地从 false 翻转为 true。
// 所有默认列表均按 start_time 升序。
type Appointment struct {
	AppointmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"appointment_id"`
	StartTime     time.Time `gorm:"type:timestamptz;not null;index"                json:"start_time"`
	EndTime       time.Time `gorm:"type:timestamptz;not null"                      json:"end_time"`
	ReminderSent  bool      `gorm:"not null;default:false"                         json:"reminder_sent"`
	BaseModel

	// 关联
	Admins []Admin `gorm:"many2many:appointment_admins" json:"admins,omitempty"`
}

// TableName 指定表名
func (Appointment) TableName() string { return "appointments" }
