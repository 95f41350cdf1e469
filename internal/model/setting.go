package model

// SettingKey 运行时配置键（封闭枚举）
type SettingKey string

const (
	SettingSender              SettingKey = "sender"
	SettingMailingList         SettingKey = "mailing_list"
	SettingReminderNote        SettingKey = "reminder_note"
	SettingAppointmentLocation SettingKey = "appointment_location"
)

// SettingKeys 全部合法配置键（列表页与校验使用）
var SettingKeys = []SettingKey{
	SettingSender,
	SettingMailingList,
	SettingReminderNote,
	SettingAppointmentLocation,
}

// Valid 判断键是否属于封闭枚举
func (k SettingKey) Valid() bool {
	switch k {
	case SettingSender, SettingMailingList, SettingReminderNote, SettingAppointmentLocation:
		return true
	}
	return false
}

// VerboseName 键的展示名称
func (k SettingKey) VerboseName() string {
	switch k {
	case SettingSender:
		return "Absender"
	case SettingMailingList:
		return "Mailingliste"
	case SettingReminderNote:
		return "Hinweis zur Sprechstunde"
	case SettingAppointmentLocation:
		return "Ort"
	}
	return string(k)
}

// Setting 运行时配置变体表 — 对应 settings
//
// 同一个 name 下可以有多条候选行（变体），应用层保证至多一条 active。
// 解析时激活行的值优先，否则回退到注入的编译期默认值。
type Setting struct {
	SettingID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"setting_id"`
	Name      string `gorm:"type:varchar(255);not null;index"               json:"name"`
	Value     string `gorm:"type:text;not null;default:''"                  json:"value"`
	Active    bool   `gorm:"not null;default:false"                         json:"active"`
	BaseModel
}

// TableName 指定表名
func (Setting) TableName() string { return "settings" }
