package handler

import "github.com/stustanet/sprechstundensystem-ng/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	Admin       *AdminHandler
	Appointment *AppointmentHandler
	Setting     *SettingHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Admin:       NewAdminHandler(svc.Admin, svc.Export),
		Appointment: NewAppointmentHandler(svc.Appointment, svc.Export),
		Setting:     NewSettingHandler(svc.Setting),
	}
}
