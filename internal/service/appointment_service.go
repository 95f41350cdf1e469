package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stustanet/sprechstundensystem-ng/config"
	"github.com/stustanet/sprechstundensystem-ng/internal/calendar"
	"github.com/stustanet/sprechstundensystem-ng/internal/dto"
	"github.com/stustanet/sprechstundensystem-ng/internal/model"
	"github.com/stustanet/sprechstundensystem-ng/internal/repository"
)

// ── 值班时段模块业务错误 ──

var (
	ErrAppointmentNotFound     = errors.New("值班时段不存在")
	ErrAppointmentStaffed      = errors.New("仍有管理员报名的时段不能删除")
	ErrAppointmentInvalidTimes = errors.New("结束时间必须晚于开始时间")
	ErrPlanForbidden           = errors.New("匿名访客不能翻阅过去的排班")
)

// 默认生成的时段长度：周一 / 周四 19:00 起 30 分钟
const (
	draftStartHour   = 19
	draftDuration    = 30 * time.Minute
	planWindowMonths = 2
)

// AppointmentService 值班时段业务接口
type AppointmentService interface {
	// Plan 返回从 (year, month) 起两个整月的排班视图，并附带前后翻页游标
	Plan(ctx context.Context, req *dto.PlanRequest, isStaff bool) (*dto.PlanResponse, error)
	// Drafts 生成可报名的候选时段：未来 months 个月内所有尚无时段覆盖的周一与周四
	Drafts(ctx context.Context, months int) ([]dto.DraftResponse, error)
	Create(ctx context.Context, req *dto.CreateAppointmentsRequest) ([]dto.AppointmentResponse, error)
	Get(ctx context.Context, id string) (*dto.AppointmentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	// Delete 仅允许删除没有任何报名的时段
	Delete(ctx context.Context, id string) error
	// Upcoming 返回未来最近 limit 条时段的公开 JSON 形态（Unix 时间戳 + 报名人数）
	Upcoming(ctx context.Context, limit int) ([]dto.UpcomingAppointmentResponse, error)
}

type appointmentService struct {
	appCfg *config.AppConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAppointmentService 创建 AppointmentService 实例
func NewAppointmentService(appCfg *config.AppConfig, repo *repository.Repository, logger *zap.Logger) AppointmentService {
	return &appointmentService{
		appCfg: appCfg,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── Plan ──────────────────────

func (s *appointmentService) Plan(ctx context.Context, req *dto.PlanRequest, isStaff bool) (*dto.PlanResponse, error) {
	loc := s.appCfg.Location()
	today := s.now().In(loc)

	year, month := today.Year(), int(today.Month())
	if req.Year != 0 {
		year = req.Year
	}
	if req.Month != 0 {
		month = req.Month
	}

	windowStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	currentMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)

	// 访客只能看当月及以后
	if !isStaff && windowStart.Before(currentMonth) {
		return nil, ErrPlanForbidden
	}

	resp := &dto.PlanResponse{
		Months: make([]dto.PlanMonth, 0, planWindowMonths),
	}

	for i := 0; i < planWindowMonths; i++ {
		monthStart := calendar.AddMonths(windowStart, i)
		monthEnd := calendar.AddMonths(windowStart, i+1)

		appointments, err := s.repo.Appointment.ListInInterval(ctx, monthStart, monthEnd)
		if err != nil {
			s.logger.Error("查询月度排班失败", zap.Time("month", monthStart), zap.Error(err))
			return nil, err
		}

		pm := dto.PlanMonth{
			Year:         monthStart.Year(),
			Month:        int(monthStart.Month()),
			Appointments: make([]dto.AppointmentResponse, 0, len(appointments)),
		}
		for i := range appointments {
			pm.Appointments = append(pm.Appointments, *s.toResponse(&appointments[i], today))
		}
		resp.Months = append(resp.Months, pm)
	}

	prev := calendar.AddMonths(windowStart, -planWindowMonths)
	next := calendar.AddMonths(windowStart, planWindowMonths)
	resp.Previous = dto.PlanCursor{Year: prev.Year(), Month: int(prev.Month())}
	resp.Next = dto.PlanCursor{Year: next.Year(), Month: int(next.Month())}

	return resp, nil
}

// ────────────────────── Drafts ──────────────────────

func (s *appointmentService) Drafts(ctx context.Context, months int) ([]dto.DraftResponse, error) {
	loc := s.appCfg.Location()
	today := s.now().In(loc)

	drafts := make([]dto.DraftResponse, 0)
	seen := make(map[string]bool)

	for i := 0; i < months; i++ {
		target := calendar.AddMonths(today, i)
		for _, day := range calendar.MonthGrid(target.Year(), target.Month(), loc) {
			if wd := day.Weekday(); wd != time.Monday && wd != time.Thursday {
				continue
			}
			dayKey := day.Format("2006-01-02")
			if seen[dayKey] {
				continue
			}
			seen[dayKey] = true

			dayEnd := day.AddDate(0, 0, 1)
			exists, err := s.repo.Appointment.ExistsCoveringDay(ctx, day, dayEnd)
			if err != nil {
				s.logger.Error("检查当天既有时段失败", zap.Time("day", day), zap.Error(err))
				return nil, err
			}
			if exists {
				continue
			}

			start := time.Date(day.Year(), day.Month(), day.Day(), draftStartHour, 0, 0, 0, loc)
			drafts = append(drafts, dto.DraftResponse{
				StartTime: start.Format(time.RFC3339),
				EndTime:   start.Add(draftDuration).Format(time.RFC3339),
			})
		}
	}

	return drafts, nil
}

// ────────────────────── Create ──────────────────────

func (s *appointmentService) Create(ctx context.Context, req *dto.CreateAppointmentsRequest) ([]dto.AppointmentResponse, error) {
	loc := s.appCfg.Location()
	today := s.now().In(loc)

	appointments := make([]model.Appointment, 0, len(req.StartTimes))
	for _, raw := range req.StartTimes {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, ErrAppointmentInvalidTimes
		}
		start = start.In(loc)
		appointments = append(appointments, model.Appointment{
			StartTime: start,
			EndTime:   start.Add(draftDuration),
		})
	}

	if err := s.repo.Appointment.CreateBatch(ctx, appointments); err != nil {
		s.logger.Error("批量创建时段失败", zap.Int("count", len(appointments)), zap.Error(err))
		return nil, err
	}

	resp := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		resp = append(resp, *s.toResponse(&appointments[i], today))
	}
	return resp, nil
}

// ────────────────────── Get / Update / Delete ──────────────────────

func (s *appointmentService) Get(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	appointment, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(appointment, s.now().In(s.appCfg.Location())), nil
}

func (s *appointmentService) Update(ctx context.Context, id string, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	loc := s.appCfg.Location()

	day, err := time.ParseInLocation("2006-01-02", req.Date, loc)
	if err != nil {
		return nil, ErrAppointmentInvalidTimes
	}
	startClock, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return nil, ErrAppointmentInvalidTimes
	}
	endClock, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return nil, ErrAppointmentInvalidTimes
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), startClock.Hour(), startClock.Minute(), 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), endClock.Hour(), endClock.Minute(), 0, 0, loc)
	if !end.After(start) {
		return nil, ErrAppointmentInvalidTimes
	}

	admins := make([]model.Admin, 0, len(req.AdminIDs))
	for _, adminID := range req.AdminIDs {
		admin, err := s.repo.Admin.GetByID(ctx, adminID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAdminNotFound
			}
			return nil, err
		}
		admins = append(admins, *admin)
	}

	appointment.StartTime = start
	appointment.EndTime = end
	if err := s.repo.Appointment.Update(ctx, appointment); err != nil {
		s.logger.Error("更新时段失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if err := s.repo.Appointment.ReplaceAdmins(ctx, appointment, admins); err != nil {
		s.logger.Error("更新时段报名失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	appointment.Admins = admins

	return s.toResponse(appointment, s.now().In(loc)), nil
}

func (s *appointmentService) Delete(ctx context.Context, id string) error {
	appointment, err := s.getAppointment(ctx, id)
	if err != nil {
		return err
	}
	if len(appointment.Admins) > 0 {
		return ErrAppointmentStaffed
	}
	if err := s.repo.Appointment.Delete(ctx, id); err != nil {
		s.logger.Error("删除时段失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Upcoming ──────────────────────

func (s *appointmentService) Upcoming(ctx context.Context, limit int) ([]dto.UpcomingAppointmentResponse, error) {
	appointments, err := s.repo.Appointment.ListUpcoming(ctx, s.now(), limit)
	if err != nil {
		s.logger.Error("查询未来时段失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.UpcomingAppointmentResponse, 0, len(appointments))
	for i := range appointments {
		resp = append(resp, dto.UpcomingAppointmentResponse{
			Start: appointments[i].StartTime.Unix(),
			End:   appointments[i].EndTime.Unix(),
			Count: len(appointments[i].Admins),
		})
	}
	return resp, nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *appointmentService) getAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	appointment, err := s.repo.Appointment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("查询时段失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return appointment, nil
}

// toResponse 组装时段响应，并为当天补上节假日 / 停课期标注
func (s *appointmentService) toResponse(appointment *model.Appointment, asOf time.Time) *dto.AppointmentResponse {
	loc := s.appCfg.Location()
	start := appointment.StartTime.In(loc)

	comment := ""
	if holiday, name := calendar.IsHoliday(start); holiday {
		comment = name
	} else if lecture, note := calendar.LectureTime(start, asOf); !lecture {
		comment = note
	}

	admins := make([]dto.AdminBrief, 0, len(appointment.Admins))
	for _, a := range appointment.Admins {
		admins = append(admins, dto.AdminBrief{
			ID:   a.AdminID,
			Name: a.Name(),
		})
	}

	return &dto.AppointmentResponse{
		ID:           appointment.AppointmentID,
		StartTime:    start.Format(time.RFC3339),
		EndTime:      appointment.EndTime.In(loc).Format(time.RFC3339),
		ReminderSent: appointment.ReminderSent,
		Comment:      comment,
		Admins:       admins,
	}
}
