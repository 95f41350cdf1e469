package dto

// ── 坐班时段模块 DTO ──

// AdminBrief 时段上已报名管理员的简要信息
type AdminBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AppointmentResponse 坐班时段响应
//
// Comment 为日历注释：节假日名称优先，否则为授课时段名称。
type AppointmentResponse struct {
	ID           string       `json:"id"`
	StartTime    string       `json:"start_time"` // RFC 3339
	EndTime      string       `json:"end_time"`
	ReminderSent bool         `json:"reminder_sent"`
	Comment      string       `json:"comment"`
	Admins       []AdminBrief `json:"admins"`
}

// PlanCursor 月份分页游标
type PlanCursor struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// PlanMonth 计划视图中的一个月窗口
type PlanMonth struct {
	Year         int                   `json:"year"`
	Month        int                   `json:"month"`
	Appointments []AppointmentResponse `json:"appointments"`
}

// PlanRequest 计划视图查询参数
type PlanRequest struct {
	Year  int `form:"year"  binding:"omitempty,min=2000,max=2200"`
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
}

// PlanResponse 计划视图响应（连续两个月窗口 + 前后翻页游标）
type PlanResponse struct {
	Months   []PlanMonth `json:"months"`
	Previous PlanCursor  `json:"previous"`
	Next     PlanCursor  `json:"next"`
}

// DraftResponse 生成器产出的默认时段草稿
type DraftResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// DraftsRequest 草稿生成查询参数
type DraftsRequest struct {
	Months int `form:"months" binding:"omitempty,min=1,max=12"`
}

// CreateAppointmentsRequest 批量创建请求
// 每个元素为 RFC 3339 起始时间；结束时间固定为起始 +30 分钟
type CreateAppointmentsRequest struct {
	StartTimes []string `json:"start_times" binding:"required,min=1,dive,required"`
}

// UpdateAppointmentRequest 编辑请求（拆分的日期 + 起止时刻字段）
type UpdateAppointmentRequest struct {
	Date      string   `json:"date"       binding:"required,datetime=2006-01-02"`
	StartTime string   `json:"start_time" binding:"required,datetime=15:04"`
	EndTime   string   `json:"end_time"   binding:"required,datetime=15:04"`
	AdminIDs  []string `json:"admin_ids"  binding:"dive,uuid"`
}

// UpcomingAppointmentResponse 公开 API 的即将到来时段条目
type UpcomingAppointmentResponse struct {
	Start int64 `json:"start"` // Unix 秒
	End   int64 `json:"end"`
	Count int   `json:"count"` // 已报名管理员数
}
