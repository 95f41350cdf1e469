package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stustanet/sprechstundensystem-ng/config"
	"github.com/stustanet/sprechstundensystem-ng/internal/calendar"
	"github.com/stustanet/sprechstundensystem-ng/internal/dto"
	"github.com/stustanet/sprechstundensystem-ng/internal/model"
	"github.com/stustanet/sprechstundensystem-ng/internal/repository"
)

// ── 管理员模块业务错误 ──

var (
	ErrAdminNotFound     = errors.New("管理员不存在")
	ErrAdminNameTaken    = errors.New("同名管理员已存在")
	ErrHonoraryNotOwned  = errors.New("荣誉学期条目不属于该管理员")
	ErrStatisticsInvalid = errors.New("统计区间不合法")
)

// 统计默认区间：今天前后各三个月
const statisticsDefaultMonths = 3

// AdminService 管理员档案业务接口
type AdminService interface {
	Create(ctx context.Context, req *dto.CreateAdminRequest) (*dto.AdminResponse, error)
	Get(ctx context.Context, id string) (*dto.AdminResponse, error)
	List(ctx context.Context) ([]dto.AdminResponse, error)
	// Update 同时处理荣誉学期列表的差量：
	// 带 ID 的条目更新日期，不带 ID 的新增，请求中缺席的既有条目删除
	Update(ctx context.Context, id string, req *dto.UpdateAdminRequest) (*dto.AdminResponse, error)
	Delete(ctx context.Context, id string) error
	// Statistics 按区间统计每位管理员的坐班次数，只含至少一次的，按次数降序
	Statistics(ctx context.Context, req *dto.StatisticsRequest) (*dto.StatisticsResponse, error)
	// ListPersons 公开 JSON API 的管理员列表
	ListPersons(ctx context.Context) ([]dto.PersonResponse, error)
}

type adminService struct {
	appCfg *config.AppConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAdminService 创建 AdminService 实例
func NewAdminService(appCfg *config.AppConfig, repo *repository.Repository, logger *zap.Logger) AdminService {
	return &adminService{
		appCfg: appCfg,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── Create ──────────────────────

func (s *adminService) Create(ctx context.Context, req *dto.CreateAdminRequest) (*dto.AdminResponse, error) {
	if _, err := s.repo.Admin.GetByName(ctx, req.FirstName, req.LastName); err == nil {
		return nil, ErrAdminNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("检查管理员重名失败", zap.Error(err))
		return nil, err
	}

	admin := &model.Admin{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	if err := s.repo.Admin.Create(ctx, admin); err != nil {
		s.logger.Error("创建管理员失败", zap.Error(err))
		return nil, err
	}

	return s.toResponse(ctx, admin)
}

// ────────────────────── Get / List ──────────────────────

func (s *adminService) Get(ctx context.Context, id string) (*dto.AdminResponse, error) {
	admin, err := s.getAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, admin)
}

func (s *adminService) List(ctx context.Context) ([]dto.AdminResponse, error) {
	admins, err := s.repo.Admin.List(ctx)
	if err != nil {
		s.logger.Error("查询管理员列表失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.AdminResponse, 0, len(admins))
	for i := range admins {
		r, err := s.toResponse(ctx, &admins[i])
		if err != nil {
			return nil, err
		}
		resp = append(resp, *r)
	}
	return resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *adminService) Update(ctx context.Context, id string, req *dto.UpdateAdminRequest) (*dto.AdminResponse, error) {
	admin, err := s.getAdmin(ctx, id)
	if err != nil {
		return nil, err
	}

	// 改名时仍须保持姓名唯一
	if req.FirstName != admin.FirstName || req.LastName != admin.LastName {
		if other, err := s.repo.Admin.GetByName(ctx, req.FirstName, req.LastName); err == nil && other.AdminID != id {
			return nil, ErrAdminNameTaken
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	loc := s.appCfg.Location()

	// 荣誉学期差量：先按既有条目建表，逐条消化请求，剩下的删除
	existing := make(map[string]*model.HonorarySemester, len(admin.HonorarySemesters))
	for i := range admin.HonorarySemesters {
		existing[admin.HonorarySemesters[i].HonorarySemesterID] = &admin.HonorarySemesters[i]
	}
	keep := make(map[string]bool, len(req.HonorarySemesters))

	for _, entry := range req.HonorarySemesters {
		date, err := time.ParseInLocation("2006-01-02", entry.Date, loc)
		if err != nil {
			return nil, err
		}

		if entry.ID == nil {
			hs := &model.HonorarySemester{Date: date, AdminID: id}
			if err := s.repo.HonorarySemester.Create(ctx, hs); err != nil {
				s.logger.Error("创建荣誉学期失败", zap.Error(err))
				return nil, err
			}
			continue
		}

		hs, ok := existing[*entry.ID]
		if !ok {
			return nil, ErrHonoraryNotOwned
		}
		keep[*entry.ID] = true
		if !hs.Date.Equal(date) {
			hs.Date = date
			if err := s.repo.HonorarySemester.Update(ctx, hs); err != nil {
				s.logger.Error("更新荣誉学期失败", zap.String("id", hs.HonorarySemesterID), zap.Error(err))
				return nil, err
			}
		}
	}

	for hsID := range existing {
		if keep[hsID] {
			continue
		}
		if err := s.repo.HonorarySemester.Delete(ctx, hsID); err != nil {
			s.logger.Error("删除荣誉学期失败", zap.String("id", hsID), zap.Error(err))
			return nil, err
		}
	}

	admin.FirstName = req.FirstName
	admin.LastName = req.LastName
	admin.Email = req.Email
	if err := s.repo.Admin.Update(ctx, admin); err != nil {
		s.logger.Error("更新管理员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 重新加载以拿到最新的荣誉学期列表
	admin, err = s.getAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, admin)
}

// ────────────────────── Delete ──────────────────────

func (s *adminService) Delete(ctx context.Context, id string) error {
	if _, err := s.getAdmin(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Admin.Delete(ctx, id); err != nil {
		s.logger.Error("删除管理员失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Statistics ──────────────────────

func (s *adminService) Statistics(ctx context.Context, req *dto.StatisticsRequest) (*dto.StatisticsResponse, error) {
	loc := s.appCfg.Location()
	today := s.now().In(loc)
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)

	from := calendar.AddMonths(midnight, -statisticsDefaultMonths)
	to := calendar.AddMonths(midnight, statisticsDefaultMonths)

	var err error
	if req.FromDate != "" {
		from, err = time.ParseInLocation("2006-01-02", req.FromDate, loc)
		if err != nil {
			return nil, ErrStatisticsInvalid
		}
	}
	if req.ToDate != "" {
		to, err = time.ParseInLocation("2006-01-02", req.ToDate, loc)
		if err != nil {
			return nil, ErrStatisticsInvalid
		}
	}
	if !to.After(from) {
		return nil, ErrStatisticsInvalid
	}
	// 区间按整天取闭：截止日当天的时段也计入
	toEnd := to.AddDate(0, 0, 1)

	admins, err := s.repo.Admin.List(ctx)
	if err != nil {
		s.logger.Error("查询管理员列表失败", zap.Error(err))
		return nil, err
	}

	entries := make([]dto.AdminStatisticsResponse, 0, len(admins))
	for i := range admins {
		count, err := s.repo.Appointment.CountByAdminInRange(ctx, admins[i].AdminID, from, toEnd)
		if err != nil {
			s.logger.Error("统计坐班次数失败", zap.String("admin_id", admins[i].AdminID), zap.Error(err))
			return nil, err
		}
		if count < 1 {
			continue
		}
		entries = append(entries, dto.AdminStatisticsResponse{
			ID:               admins[i].AdminID,
			Name:             admins[i].Name(),
			AppointmentCount: count,
		})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].AppointmentCount > entries[b].AppointmentCount
	})

	return &dto.StatisticsResponse{
		FromDate: from.Format("2006-01-02"),
		ToDate:   to.Format("2006-01-02"),
		Admins:   entries,
	}, nil
}

// ────────────────────── ListPersons ──────────────────────

func (s *adminService) ListPersons(ctx context.Context) ([]dto.PersonResponse, error) {
	admins, err := s.repo.Admin.List(ctx)
	if err != nil {
		s.logger.Error("查询管理员列表失败", zap.Error(err))
		return nil, err
	}

	persons := make([]dto.PersonResponse, 0, len(admins))
	for i := range admins {
		persons = append(persons, dto.PersonResponse{
			ID:    admins[i].AdminID,
			Name:  admins[i].Name(),
			Email: admins[i].Email,
		})
	}
	return persons, nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *adminService) getAdmin(ctx context.Context, id string) (*model.Admin, error) {
	admin, err := s.repo.Admin.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		s.logger.Error("查询管理员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return admin, nil
}

// toResponse 组装管理员响应并计算派生字段。
// 最近一次荣誉学期授予当天的坐班计入该次授予，从次日零点起才进入新计数。
func (s *adminService) toResponse(ctx context.Context, admin *model.Admin) (*dto.AdminResponse, error) {
	resp := &dto.AdminResponse{
		ID:                    admin.AdminID,
		FirstName:             admin.FirstName,
		LastName:              admin.LastName,
		Name:                  admin.Name(),
		Email:                 admin.Email,
		HonorarySemesterCount: len(admin.HonorarySemesters),
		HonorarySemesters:     make([]dto.HonorarySemesterResponse, 0, len(admin.HonorarySemesters)),
	}

	for _, hs := range admin.HonorarySemesters {
		resp.HonorarySemesters = append(resp.HonorarySemesters, dto.HonorarySemesterResponse{
			ID:   hs.HonorarySemesterID,
			Date: hs.Date.Format("2006-01-02"),
		})
	}

	// 计数起点：有荣誉学期则取最近授予日的次日零点，否则从纪元起算
	since := time.Time{}
	if len(admin.HonorarySemesters) > 0 {
		// 预加载时已按日期降序排列
		award := admin.HonorarySemesters[0].Date
		loc := s.appCfg.Location()
		since = time.Date(award.Year(), award.Month(), award.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	}

	count, err := s.repo.Appointment.CountByAdminSince(ctx, admin.AdminID, since)
	if err != nil {
		s.logger.Error("统计荣誉学期坐班失败", zap.String("admin_id", admin.AdminID), zap.Error(err))
		return nil, err
	}
	resp.AppointmentsSinceAward = count

	return resp, nil
}
