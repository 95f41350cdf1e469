package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stustanet/sprechstundensystem-ng/internal/dto"
	"github.com/stustanet/sprechstundensystem-ng/internal/service"
	"github.com/stustanet/sprechstundensystem-ng/pkg/response"
)

// 公开 appointments.json 的默认条数
const defaultUpcomingLimit = 2

// AppointmentHandler 值班时段模块 HTTP 处理器
type AppointmentHandler struct {
	appointmentSvc service.AppointmentService
	exportSvc      service.ExportService
}

// NewAppointmentHandler 创建 AppointmentHandler
func NewAppointmentHandler(appointmentSvc service.AppointmentService, exportSvc service.ExportService) *AppointmentHandler {
	return &AppointmentHandler{appointmentSvc: appointmentSvc, exportSvc: exportSvc}
}

// Plan 排班视图（公开，访客只能看当月及以后）
// GET /api/v1/plan?year=&month=
func (h *AppointmentHandler) Plan(c *gin.Context) {
	var req dto.PlanRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.appointmentSvc.Plan(c.Request.Context(), &req, IsAuthenticated(c))
	if err != nil {
		h.handleAppointmentError(c, err)
		return
	}
	response.OK(c, result)
}

// Drafts 候选时段列表
// GET /api/v1/appointments/drafts?months=
func (h *AppointmentHandler) Drafts(c *gin.Context) {
	var req dto.DraftsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Months == 0 {
		req.Months = 1
	}

	result, err := h.appointmentSvc.Drafts(c.Request.Context(), req.Months)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// CreateAppointments 批量创建时段
// POST /api/v1/appointments
func (h *AppointmentHandler) CreateAppointments(c *gin.Context) {
	var req dto.CreateAppointmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.appointmentSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleAppointmentError(c, err)
		return
	}
	response.Created(c, result)
}

// GetAppointment 时段详情
// GET /api/v1/appointments/:id
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	result, err := h.appointmentSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAppointmentError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateAppointment 更新时段的时间与报名名单
// PUT /api/v1/appointments/:id
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var req dto.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.appointmentSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleAppointmentError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteAppointment 删除时段（仅限无人报名的）
// DELETE /api/v1/appointments/:id
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	if err := h.appointmentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleAppointmentError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListUpcoming 公开的未来时段 JSON API
// GET /appointments.json?elements=
func (h *AppointmentHandler) ListUpcoming(c *gin.Context) {
	limit := defaultUpcomingLimit
	if raw := c.Query("elements"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
		limit = parsed
	}

	result, err := h.appointmentSvc.Upcoming(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AllCalendar 全部时段的 iCalendar 订阅源
// GET /calendar/all.ics
func (h *AppointmentHandler) AllCalendar(c *gin.Context) {
	out, err := h.exportSvc.AllAppointmentsICS(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\"Sprechstundenplan.ics\"")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(out))
}

func (h *AppointmentHandler) handleAppointmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAppointmentNotFound):
		response.NotFound(c, 13001, "值班时段不存在")
	case errors.Is(err, service.ErrAppointmentStaffed):
		response.UnprocessableEntity(c, 13002, "仍有管理员报名的时段不能删除")
	case errors.Is(err, service.ErrAppointmentInvalidTimes):
		response.UnprocessableEntity(c, 13003, "时段时间不合法")
	case errors.Is(err, service.ErrPlanForbidden):
		response.Forbidden(c, 13004, "访客不能翻阅过去的排班")
	case errors.Is(err, service.ErrAdminNotFound):
		response.UnprocessableEntity(c, 12001, "报名名单包含不存在的管理员")
	default:
		response.InternalError(c)
	}
}
