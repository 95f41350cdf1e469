package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/stustanet/sprechstundensystem-ng/internal/dto"
	"github.com/stustanet/sprechstundensystem-ng/internal/model"
	"github.com/stustanet/sprechstundensystem-ng/internal/service"
	"github.com/stustanet/sprechstundensystem-ng/pkg/response"
)

// SettingHandler 运行时配置模块 HTTP 处理器
type SettingHandler struct {
	settingSvc service.SettingService
}

// NewSettingHandler 创建 SettingHandler
func NewSettingHandler(settingSvc service.SettingService) *SettingHandler {
	return &SettingHandler{settingSvc: settingSvc}
}

// ListSettings 所有配置键及其变体
// GET /api/v1/settings
func (h *SettingHandler) ListSettings(c *gin.Context) {
	result, err := h.settingSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// AddVariant 给某个配置键新增一个空变体
// POST /api/v1/settings/:key/variants
func (h *SettingHandler) AddVariant(c *gin.Context) {
	key := model.SettingKey(c.Param("key"))

	result, err := h.settingSvc.AddVariant(c.Request.Context(), key)
	if err != nil {
		h.handleSettingError(c, err)
		return
	}
	response.Created(c, result)
}

// SaveVariants 保存某个键的全部变体值并切换激活行
// PUT /api/v1/settings/:key/variants
func (h *SettingHandler) SaveVariants(c *gin.Context) {
	key := model.SettingKey(c.Param("key"))

	var req dto.SaveVariantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.settingSvc.SaveVariants(c.Request.Context(), key, &req); err != nil {
		h.handleSettingError(c, err)
		return
	}
	response.OK(c, nil)
}

// DeleteVariant 删除某个键的一个变体
// DELETE /api/v1/settings/:key/variants/:id
func (h *SettingHandler) DeleteVariant(c *gin.Context) {
	key := model.SettingKey(c.Param("key"))

	if err := h.settingSvc.DeleteVariant(c.Request.Context(), key, c.Param("id")); err != nil {
		h.handleSettingError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *SettingHandler) handleSettingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSettingUnknownKey):
		response.NotFound(c, 14001, "未知的配置键")
	case errors.Is(err, service.ErrSettingInvalidActive):
		response.UnprocessableEntity(c, 14002, "激活的变体不属于该配置键")
	case errors.Is(err, service.ErrSettingValueMissing):
		response.UnprocessableEntity(c, 14003, "变体缺少提交的值")
	case errors.Is(err, service.ErrSettingInvalidDelete):
		response.UnprocessableEntity(c, 14004, "待删除的变体不属于该配置键")
	default:
		response.InternalError(c)
	}
}
