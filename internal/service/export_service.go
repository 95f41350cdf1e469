package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stustanet/sprechstundensystem-ng/config"
	"github.com/stustanet/sprechstundensystem-ng/internal/dto"
	"github.com/stustanet/sprechstundensystem-ng/internal/model"
	"github.com/stustanet/sprechstundensystem-ng/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("导出文件生成失败")

// iCalendar UID 的主机后缀
const icsUIDSuffix = "@sprechstunden.stusta.net"

// ExportService 日历与统计导出业务接口
type ExportService interface {
	// AllAppointmentsICS 导出全部时段为 iCalendar 订阅源
	AllAppointmentsICS(ctx context.Context) (string, error)
	// AdminICS 导出某位管理员报名的全部时段，事件带参与者列表
	AdminICS(ctx context.Context, adminID string) (string, string, error)
	// StatisticsXLSX 导出区间坐班统计为 Excel 工作簿
	StatisticsXLSX(ctx context.Context, stats *dto.StatisticsResponse) (*bytes.Buffer, string, error)
}

type exportService struct {
	appCfg   *config.AppConfig
	repo     *repository.Repository
	settings SettingService
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(appCfg *config.AppConfig, repo *repository.Repository, settings SettingService, logger *zap.Logger) ExportService {
	return &exportService{appCfg: appCfg, repo: repo, settings: settings, logger: logger}
}

// ────────────────────── AllAppointmentsICS ──────────────────────

func (s *exportService) AllAppointmentsICS(ctx context.Context) (string, error) {
	appointments, err := s.repo.Appointment.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询全部时段失败", zap.Error(err))
		return "", err
	}

	location, err := s.settings.Resolve(ctx, model.SettingAppointmentLocation)
	if err != nil {
		return "", err
	}

	cal := s.newCalendar("Sprechstundenplan")
	for i := range appointments {
		s.addEvent(cal, &appointments[i], "Sprechstunde", location, false)
	}

	return cal.Serialize(), nil
}

// ────────────────────── AdminICS ──────────────────────

func (s *exportService) AdminICS(ctx context.Context, adminID string) (string, string, error) {
	admin, err := s.repo.Admin.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrAdminNotFound
		}
		s.logger.Error("查询管理员失败", zap.String("id", adminID), zap.Error(err))
		return "", "", err
	}

	appointments, err := s.repo.Appointment.ListByAdmin(ctx, adminID)
	if err != nil {
		s.logger.Error("查询管理员时段失败", zap.String("id", adminID), zap.Error(err))
		return "", "", err
	}

	location, err := s.settings.Resolve(ctx, model.SettingAppointmentLocation)
	if err != nil {
		return "", "", err
	}

	name := admin.Name()
	cal := s.newCalendar(fmt.Sprintf("Sprechstunden von %s", name))
	for i := range appointments {
		s.addEvent(cal, &appointments[i], "Sprechstunde", location, true)
	}

	return cal.Serialize(), name, nil
}

// ────────────────────── StatisticsXLSX ──────────────────────

func (s *exportService) StatisticsXLSX(_ context.Context, stats *dto.StatisticsResponse) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Statistik"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 30)
	f.SetColWidth(sheetName, "B", "B", 16)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Sprechstunden %s bis %s", stats.FromDate, stats.ToDate))
	f.MergeCell(sheetName, "A1", "B1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	f.SetCellValue(sheetName, "A2", "Admin")
	f.SetCellValue(sheetName, "B2", "Sprechstunden")

	row := 3
	for _, entry := range stats.Admins {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), entry.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), entry.AppointmentCount)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("sprechstunden_%s_%s.xlsx", stats.FromDate, stats.ToDate)
	return buf, filename, nil
}

// ── 辅助函数 ──

func (s *exportService) newCalendar(name string) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//StuStaNet//Sprechstunden//DE")
	cal.SetXWRCalName(name)
	return cal
}

func (s *exportService) addEvent(cal *ics.Calendar, appointment *model.Appointment, summary, location string, attendees bool) {
	loc := s.appCfg.Location()

	event := cal.AddEvent(appointment.AppointmentID + icsUIDSuffix)
	event.SetDtStampTime(time.Now().UTC())
	event.SetStartAt(appointment.StartTime.In(loc))
	event.SetEndAt(appointment.EndTime.In(loc))
	event.SetSummary(summary)
	if location != "" {
		event.SetLocation(location)
	}
	if attendees {
		for _, admin := range appointment.Admins {
			event.AddAttendee(admin.Email, ics.WithCN(admin.Name()))
		}
	}
}
