package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stustanet/sprechstundensystem-ng/internal/dto"
	"github.com/stustanet/sprechstundensystem-ng/internal/service"
	"github.com/stustanet/sprechstundensystem-ng/pkg/response"
)

// AdminHandler 管理员档案模块 HTTP 处理器
type AdminHandler struct {
	adminSvc  service.AdminService
	exportSvc service.ExportService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(adminSvc service.AdminService, exportSvc service.ExportService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, exportSvc: exportSvc}
}

// ListAdmins 管理员列表
// GET /api/v1/admins
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	result, err := h.adminSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// GetAdmin 管理员详情
// GET /api/v1/admins/:id
func (h *AdminHandler) GetAdmin(c *gin.Context) {
	result, err := h.adminSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAdminError(c, err)
		return
	}
	response.OK(c, result)
}

// CreateAdmin 新建管理员
// POST /api/v1/admins
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req dto.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.adminSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateAdmin 更新管理员（含荣誉学期列表差量）
// PUT /api/v1/admins/:id
func (h *AdminHandler) UpdateAdmin(c *gin.Context) {
	var req dto.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.adminSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteAdmin 删除管理员
// DELETE /api/v1/admins/:id
func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	if err := h.adminSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleAdminError(c, err)
		return
	}
	response.OK(c, nil)
}

// Statistics 坐班统计
// GET /api/v1/admins/statistics?from_date=&to_date=
func (h *AdminHandler) Statistics(c *gin.Context) {
	var req dto.StatisticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.adminSvc.Statistics(c.Request.Context(), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}
	response.OK(c, result)
}

// ExportStatistics 坐班统计导出为 Excel
// GET /api/v1/admins/statistics/export?from_date=&to_date=
func (h *AdminHandler) ExportStatistics(c *gin.Context) {
	var req dto.StatisticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	stats, err := h.adminSvc.Statistics(c.Request.Context(), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	buf, filename, err := h.exportSvc.StatisticsXLSX(c.Request.Context(), stats)
	if err != nil {
		response.InternalError(c)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// AdminCalendar 单个管理员的 iCalendar 订阅源
// GET /calendar/admins/:id（兼容带 .ics 后缀的订阅地址）
func (h *AdminHandler) AdminCalendar(c *gin.Context) {
	id := strings.TrimSuffix(c.Param("id"), ".ics")

	out, name, err := h.exportSvc.AdminICS(c.Request.Context(), id)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	encodedFilename := url.QueryEscape("Sprechstunden von " + name + ".ics")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(out))
}

// ListPersons 公开的管理员 JSON API
// GET /persons.json
func (h *AdminHandler) ListPersons(c *gin.Context) {
	result, err := h.adminSvc.ListPersons(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) handleAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAdminNotFound):
		response.NotFound(c, 12001, "管理员不存在")
	case errors.Is(err, service.ErrAdminNameTaken):
		response.UnprocessableEntity(c, 12002, "同名管理员已存在")
	case errors.Is(err, service.ErrHonoraryNotOwned):
		response.UnprocessableEntity(c, 12003, "荣誉学期条目不属于该管理员")
	case errors.Is(err, service.ErrStatisticsInvalid):
		response.BadRequest(c, 12004, "统计区间不合法")
	default:
		response.InternalError(c)
	}
}
