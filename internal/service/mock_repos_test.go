package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/stustanet/sprechstundensystem-ng/config"
	"github.com/stustanet/sprechstundensystem-ng/internal/model"
	"github.com/stustanet/sprechstundensystem-ng/internal/repository"
	"github.com/stustanet/sprechstundensystem-ng/pkg/mailer"
)

// testAppConfig 测试用应用配置
func testAppConfig() *config.AppConfig {
	return &config.AppConfig{
		Timezone:              "Europe/Berlin",
		UnderstaffedThreshold: 2,
		LookaheadWeeks:        8,
		OrganizerEmail:        "vorstand@stusta.net",
		SettingDefaults: config.SettingDefaults{
			Sender:              "admins@stusta.net",
			MailingList:         "admins@lists.stusta.net",
			ReminderNote:        "",
			AppointmentLocation: "Haus 10, Raum 0000",
		},
	}
}

func newTestRepo() *repository.Repository {
	honorary := newMockHonorarySemesterRepo()
	return &repository.Repository{
		Admin:            newMockAdminRepo(honorary),
		HonorarySemester: honorary,
		Appointment:      newMockAppointmentRepo(),
		Setting:          newMockSettingRepo(),
		StaffUser:        newMockStaffUserRepo(),
	}
}

// ── Mock AdminRepository ──

// mockAdminRepo 借用荣誉学期 mock 模拟 GORM 的预加载
type mockAdminRepo struct {
	admins   map[string]*model.Admin
	honorary *mockHonorarySemesterRepo
	seq      int
}

func newMockAdminRepo(honorary *mockHonorarySemesterRepo) *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[string]*model.Admin), honorary: honorary}
}

func (m *mockAdminRepo) Create(_ context.Context, admin *model.Admin) error {
	if admin.AdminID == "" {
		m.seq++
		admin.AdminID = fmt.Sprintf("admin-%d", m.seq)
	}
	m.admins[admin.AdminID] = admin
	return nil
}

func (m *mockAdminRepo) GetByID(ctx context.Context, id string) (*model.Admin, error) {
	if a, ok := m.admins[id]; ok {
		copied := *a
		copied.HonorarySemesters, _ = m.honorary.ListByAdmin(ctx, id)
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) GetByName(_ context.Context, firstName, lastName string) (*model.Admin, error) {
	for _, a := range m.admins {
		if a.FirstName == firstName && a.LastName == lastName {
			copied := *a
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) List(ctx context.Context) ([]model.Admin, error) {
	result := make([]model.Admin, 0, len(m.admins))
	for _, a := range m.admins {
		copied := *a
		copied.HonorarySemesters, _ = m.honorary.ListByAdmin(ctx, a.AdminID)
		result = append(result, copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].LastName != result[j].LastName {
			return result[i].LastName < result[j].LastName
		}
		return result[i].FirstName < result[j].FirstName
	})
	return result, nil
}

func (m *mockAdminRepo) Update(_ context.Context, admin *model.Admin) error {
	m.admins[admin.AdminID] = admin
	return nil
}

func (m *mockAdminRepo) Delete(_ context.Context, id string) error {
	delete(m.admins, id)
	return nil
}

// ── Mock HonorarySemesterRepository ──

type mockHonorarySemesterRepo struct {
	entries map[string]*model.HonorarySemester
	seq     int
}

func newMockHonorarySemesterRepo() *mockHonorarySemesterRepo {
	return &mockHonorarySemesterRepo{entries: make(map[string]*model.HonorarySemester)}
}

func (m *mockHonorarySemesterRepo) Create(_ context.Context, hs *model.HonorarySemester) error {
	if hs.HonorarySemesterID == "" {
		m.seq++
		hs.HonorarySemesterID = fmt.Sprintf("hs-%d", m.seq)
	}
	m.entries[hs.HonorarySemesterID] = hs
	return nil
}

func (m *mockHonorarySemesterRepo) GetByID(_ context.Context, id string) (*model.HonorarySemester, error) {
	if hs, ok := m.entries[id]; ok {
		copied := *hs
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHonorarySemesterRepo) ListByAdmin(_ context.Context, adminID string) ([]model.HonorarySemester, error) {
	var result []model.HonorarySemester
	for _, hs := range m.entries {
		if hs.AdminID == adminID {
			result = append(result, *hs)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (m *mockHonorarySemesterRepo) Update(_ context.Context, hs *model.HonorarySemester) error {
	m.entries[hs.HonorarySemesterID] = hs
	return nil
}

func (m *mockHonorarySemesterRepo) Delete(_ context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

// ── Mock AppointmentRepository ──

type mockAppointmentRepo struct {
	appointments map[string]*model.Appointment
	seq          int
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[string]*model.Appointment)}
}

func (m *mockAppointmentRepo) Create(_ context.Context, appointment *model.Appointment) error {
	if appointment.AppointmentID == "" {
		m.seq++
		appointment.AppointmentID = fmt.Sprintf("appt-%d", m.seq)
	}
	m.appointments[appointment.AppointmentID] = appointment
	return nil
}

func (m *mockAppointmentRepo) CreateBatch(ctx context.Context, appointments []model.Appointment) error {
	for i := range appointments {
		if err := m.Create(ctx, &appointments[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id string) (*model.Appointment, error) {
	if a, ok := m.appointments[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAppointmentRepo) sorted(filter func(*model.Appointment) bool) []model.Appointment {
	var result []model.Appointment
	for _, a := range m.appointments {
		if filter == nil || filter(a) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result
}

func (m *mockAppointmentRepo) ListAll(_ context.Context) ([]model.Appointment, error) {
	return m.sorted(nil), nil
}

func (m *mockAppointmentRepo) ListInInterval(_ context.Context, from, to time.Time) ([]model.Appointment, error) {
	return m.sorted(func(a *model.Appointment) bool {
		return !a.StartTime.Before(from) && a.StartTime.Before(to)
	}), nil
}

func (m *mockAppointmentRepo) ListByAdmin(_ context.Context, adminID string) ([]model.Appointment, error) {
	return m.sorted(func(a *model.Appointment) bool {
		for _, admin := range a.Admins {
			if admin.AdminID == adminID {
				return true
			}
		}
		return false
	}), nil
}

func (m *mockAppointmentRepo) ListUpcoming(_ context.Context, now time.Time, limit int) ([]model.Appointment, error) {
	result := m.sorted(func(a *model.Appointment) bool { return a.StartTime.After(now) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockAppointmentRepo) ListDueReminders(_ context.Context, now, until time.Time) ([]model.Appointment, error) {
	return m.sorted(func(a *model.Appointment) bool {
		return !a.ReminderSent && a.StartTime.After(now) && !a.EndTime.After(until)
	}), nil
}

func (m *mockAppointmentRepo) ExistsCoveringDay(_ context.Context, dayStart, dayEnd time.Time) (bool, error) {
	for _, a := range m.appointments {
		if !a.StartTime.Before(dayStart) && !a.EndTime.After(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAppointmentRepo) ExistsStartingAfter(_ context.Context, t time.Time) (bool, error) {
	for _, a := range m.appointments {
		if a.StartTime.After(t) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAppointmentRepo) CountByAdminSince(_ context.Context, adminID string, t time.Time) (int64, error) {
	var count int64
	for _, a := range m.appointments {
		if a.StartTime.Before(t) {
			continue
		}
		for _, admin := range a.Admins {
			if admin.AdminID == adminID {
				count++
				break
			}
		}
	}
	return count, nil
}

func (m *mockAppointmentRepo) CountByAdminInRange(_ context.Context, adminID string, from, to time.Time) (int64, error) {
	var count int64
	for _, a := range m.appointments {
		if a.StartTime.Before(from) || a.EndTime.After(to) {
			continue
		}
		for _, admin := range a.Admins {
			if admin.AdminID == adminID {
				count++
				break
			}
		}
	}
	return count, nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, appointment *model.Appointment) error {
	existing, ok := m.appointments[appointment.AppointmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	// Save 不触碰多对多关联
	admins := existing.Admins
	copied := *appointment
	copied.Admins = admins
	m.appointments[appointment.AppointmentID] = &copied
	return nil
}

func (m *mockAppointmentRepo) ReplaceAdmins(_ context.Context, appointment *model.Appointment, admins []model.Admin) error {
	existing, ok := m.appointments[appointment.AppointmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	existing.Admins = admins
	return nil
}

func (m *mockAppointmentRepo) Delete(_ context.Context, id string) error {
	delete(m.appointments, id)
	return nil
}

// ── Mock SettingRepository ──

type mockSettingRepo struct {
	settings map[string]*model.Setting
	seq      int
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{settings: make(map[string]*model.Setting)}
}

func (m *mockSettingRepo) Create(_ context.Context, setting *model.Setting) error {
	if setting.SettingID == "" {
		m.seq++
		setting.SettingID = fmt.Sprintf("setting-%d", m.seq)
	}
	m.settings[setting.SettingID] = setting
	return nil
}

func (m *mockSettingRepo) GetByID(_ context.Context, id string) (*model.Setting, error) {
	if s, ok := m.settings[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSettingRepo) GetActive(_ context.Context, name string) (*model.Setting, error) {
	for _, s := range m.settings {
		if s.Name == name && s.Active {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSettingRepo) ListByName(_ context.Context, name string) ([]model.Setting, error) {
	var result []model.Setting
	for _, s := range m.settings {
		if s.Name == name {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SettingID < result[j].SettingID })
	return result, nil
}

func (m *mockSettingRepo) Update(_ context.Context, setting *model.Setting) error {
	m.settings[setting.SettingID] = setting
	return nil
}

func (m *mockSettingRepo) UpdateBatch(ctx context.Context, settings []model.Setting) error {
	for i := range settings {
		copied := settings[i]
		if err := m.Update(ctx, &copied); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockSettingRepo) Delete(_ context.Context, id string) error {
	delete(m.settings, id)
	return nil
}

// ── Mock StaffUserRepository ──

type mockStaffUserRepo struct {
	users map[string]*model.StaffUser
	seq   int
}

func newMockStaffUserRepo() *mockStaffUserRepo {
	return &mockStaffUserRepo{users: make(map[string]*model.StaffUser)}
}

func (m *mockStaffUserRepo) Create(_ context.Context, user *model.StaffUser) error {
	if user.StaffUserID == "" {
		m.seq++
		user.StaffUserID = fmt.Sprintf("staff-%d", m.seq)
	}
	m.users[user.StaffUserID] = user
	return nil
}

func (m *mockStaffUserRepo) GetByID(_ context.Context, id string) (*model.StaffUser, error) {
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffUserRepo) GetByUsername(_ context.Context, username string) (*model.StaffUser, error) {
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffUserRepo) List(_ context.Context) ([]model.StaffUser, error) {
	result := make([]model.StaffUser, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

func (m *mockStaffUserRepo) Update(_ context.Context, user *model.StaffUser) error {
	m.users[user.StaffUserID] = user
	return nil
}

func (m *mockStaffUserRepo) DeleteByUsername(_ context.Context, username string) error {
	for id, u := range m.users {
		if u.Username == username {
			delete(m.users, id)
		}
	}
	return nil
}

// ── Mock Mailer ──

type sentMail struct {
	Subject string
	From    string
	To      []string
	Body    string
}

type mockMailer struct {
	sent    []sentMail
	failFor map[string]error // 按收件人注入发送失败
}

func newMockMailer() *mockMailer {
	return &mockMailer{failFor: make(map[string]error)}
}

func (m *mockMailer) Send(_ context.Context, msg *mailer.Message) error {
	for _, to := range msg.To {
		if err, ok := m.failFor[to]; ok {
			return err
		}
	}
	m.sent = append(m.sent, sentMail{
		Subject: msg.Subject,
		From:    msg.From,
		To:      msg.To,
		Body:    msg.Body,
	})
	return nil
}
