package dto

// ── 管理员模块 DTO ──

// HonorarySemesterResponse 荣誉学期条目
type HonorarySemesterResponse struct {
	ID   string `json:"id"`
	Date string `json:"date"` // YYYY-MM-DD
}

// AdminResponse 管理员档案响应
//
// HonorarySemesterCount / AppointmentsSinceAward 为派生字段：
// 后者统计最近一次荣誉学期授予日之后坐班的次数
// （授予当天的坐班计入该次荣誉学期，不计入新计数）。
type AdminResponse struct {
	ID                     string                     `json:"id"`
	FirstName              string                     `json:"first_name"`
	LastName               string                     `json:"last_name"`
	Name                   string                     `json:"name"`
	Email                  string                     `json:"email"`
	HonorarySemesterCount  int                        `json:"honorary_semester_count"`
	AppointmentsSinceAward int64                      `json:"appointments_since_award"`
	HonorarySemesters      []HonorarySemesterResponse `json:"honorary_semesters"`
}

// CreateAdminRequest 新建管理员请求
type CreateAdminRequest struct {
	FirstName string `json:"first_name" binding:"required,max=255"`
	LastName  string `json:"last_name"  binding:"required,max=255"`
	Email     string `json:"email"      binding:"required,email"`
}

// HonoraryEntryRequest 荣誉学期条目（带标签的显式条目）
//
// ID 为空表示新增条目；非空表示更新既有条目的日期。
// 请求中未出现的既有条目将被删除。
type HonoraryEntryRequest struct {
	ID   *string `json:"id"   binding:"omitempty,uuid"`
	Date string  `json:"date" binding:"required,datetime=2006-01-02"`
}

// UpdateAdminRequest 更新管理员请求（含荣誉学期列表差量）
type UpdateAdminRequest struct {
	FirstName         string                 `json:"first_name" binding:"required,max=255"`
	LastName          string                 `json:"last_name"  binding:"required,max=255"`
	Email             string                 `json:"email"      binding:"required,email"`
	HonorarySemesters []HonoraryEntryRequest `json:"honorary_semesters" binding:"dive"`
}

// StatisticsRequest 坐班统计查询参数
type StatisticsRequest struct {
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date"   binding:"omitempty,datetime=2006-01-02"`
}

// AdminStatisticsResponse 单个管理员的坐班统计
type AdminStatisticsResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	AppointmentCount int64  `json:"appointment_count"`
}

// StatisticsResponse 坐班统计响应
type StatisticsResponse struct {
	FromDate string                    `json:"from_date"`
	ToDate   string                    `json:"to_date"`
	Admins   []AdminStatisticsResponse `json:"admins"`
}

// PersonResponse 公开 API 的管理员条目
type PersonResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
