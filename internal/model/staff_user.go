package model

// StaffUser 登录账号表 — 对应 staff_users
//
// 团队内部的登录身份，与坐班档案 Admin 相互独立。
type StaffUser struct {
	StaffUserID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"staff_user_id"`
	Username     string `gorm:"type:varchar(150);not null;uniqueIndex"         json:"username"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	BaseModel
}

// TableName 指定表名
func (StaffUser) TableName() string { return "staff_users" }
