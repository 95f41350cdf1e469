package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/stustanet/sprechstundensystem-ng/internal/dto"
	"github.com/stustanet/sprechstundensystem-ng/internal/model"
	"github.com/stustanet/sprechstundensystem-ng/internal/service"
	"github.com/stustanet/sprechstundensystem-ng/pkg/jwt"
	"github.com/stustanet/sprechstundensystem-ng/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	logoutErr     error
	changePassErr error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims) error {
	return m.logoutErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock AdminService ──

type mockAdminService struct {
	createResult  *dto.AdminResponse
	createErr     error
	getResult     *dto.AdminResponse
	getErr        error
	listResult    []dto.AdminResponse
	listErr       error
	updateResult  *dto.AdminResponse
	updateErr     error
	deleteErr     error
	statsResult   *dto.StatisticsResponse
	statsErr      error
	personsResult []dto.PersonResponse
	personsErr    error
}

func (m *mockAdminService) Create(_ context.Context, _ *dto.CreateAdminRequest) (*dto.AdminResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockAdminService) Get(_ context.Context, _ string) (*dto.AdminResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockAdminService) List(_ context.Context) ([]dto.AdminResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockAdminService) Update(_ context.Context, _ string, _ *dto.UpdateAdminRequest) (*dto.AdminResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockAdminService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}
func (m *mockAdminService) Statistics(_ context.Context, _ *dto.StatisticsRequest) (*dto.StatisticsResponse, error) {
	return m.statsResult, m.statsErr
}
func (m *mockAdminService) ListPersons(_ context.Context) ([]dto.PersonResponse, error) {
	return m.personsResult, m.personsErr
}

// ── Mock AppointmentService ──

type mockAppointmentService struct {
	planResult     *dto.PlanResponse
	planErr        error
	planWasStaff   bool
	draftsResult   []dto.DraftResponse
	draftsErr      error
	createResult   []dto.AppointmentResponse
	createErr      error
	getResult      *dto.AppointmentResponse
	getErr         error
	updateResult   *dto.AppointmentResponse
	updateErr      error
	deleteErr      error
	upcomingResult []dto.UpcomingAppointmentResponse
	upcomingErr    error
	upcomingLimit  int
}

func (m *mockAppointmentService) Plan(_ context.Context, _ *dto.PlanRequest, isStaff bool) (*dto.PlanResponse, error) {
	m.planWasStaff = isStaff
	return m.planResult, m.planErr
}
func (m *mockAppointmentService) Drafts(_ context.Context, _ int) ([]dto.DraftResponse, error) {
	return m.draftsResult, m.draftsErr
}
func (m *mockAppointmentService) Create(_ context.Context, _ *dto.CreateAppointmentsRequest) ([]dto.AppointmentResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockAppointmentService) Get(_ context.Context, _ string) (*dto.AppointmentResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockAppointmentService) Update(_ context.Context, _ string, _ *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockAppointmentService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}
func (m *mockAppointmentService) Upcoming(_ context.Context, limit int) ([]dto.UpcomingAppointmentResponse, error) {
	m.upcomingLimit = limit
	return m.upcomingResult, m.upcomingErr
}

// ── Mock SettingService ──

type mockSettingService struct {
	resolveResult string
	resolveErr    error
	listResult    []dto.SettingGroupResponse
	listErr       error
	addResult     *dto.SettingVariantResponse
	addErr        error
	saveErr       error
	deleteErr     error
}

func (m *mockSettingService) Resolve(_ context.Context, _ model.SettingKey) (string, error) {
	return m.resolveResult, m.resolveErr
}
func (m *mockSettingService) List(_ context.Context) ([]dto.SettingGroupResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockSettingService) AddVariant(_ context.Context, _ model.SettingKey) (*dto.SettingVariantResponse, error) {
	return m.addResult, m.addErr
}
func (m *mockSettingService) SaveVariants(_ context.Context, _ model.SettingKey, _ *dto.SaveVariantsRequest) error {
	return m.saveErr
}
func (m *mockSettingService) DeleteVariant(_ context.Context, _ model.SettingKey, _ string) error {
	return m.deleteErr
}

// ── Mock ExportService ──

type mockExportService struct {
	allICS    string
	allErr    error
	adminICS  string
	adminName string
	adminErr  error
	xlsxBuf   *bytes.Buffer
	xlsxName  string
	xlsxErr   error
}

func (m *mockExportService) AllAppointmentsICS(_ context.Context) (string, error) {
	return m.allICS, m.allErr
}
func (m *mockExportService) AdminICS(_ context.Context, _ string) (string, string, error) {
	return m.adminICS, m.adminName, m.adminErr
}
func (m *mockExportService) StatisticsXLSX(_ context.Context, _ *dto.StatisticsResponse) (*bytes.Buffer, string, error) {
	return m.xlsxBuf, m.xlsxName, m.xlsxErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func doJSON(h gin.HandlerFunc, method, path string, body io.Reader, auth bool) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	r := gin.New()
	if auth {
		r.Use(func(c *gin.Context) {
			c.Set("user_id", "test-user-id")
			c.Set("username", "testuser")
		})
	}
	r.Handle(method, "/*any", func(c *gin.Context) { h(c) })
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	w := doJSON(h.Login, "POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "vorstand",
		Password: "geheim123",
	}), false)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := doJSON(h.Login, "POST", "/auth/login", bytes.NewReader([]byte("invalid json")), false)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := doJSON(h.Login, "POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "vorstand",
		Password: "falsch",
	}), false)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AdminHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAdminHandler_CreateAdmin_Success(t *testing.T) {
	mock := &mockAdminService{
		createResult: &dto.AdminResponse{ID: "admin-1", Name: "Anna Admin"},
	}
	h := NewAdminHandler(mock, &mockExportService{})

	w := doJSON(h.CreateAdmin, "POST", "/admins", jsonBody(dto.CreateAdminRequest{
		FirstName: "Anna", LastName: "Admin", Email: "anna@stusta.net",
	}), true)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestAdminHandler_CreateAdmin_NameTaken(t *testing.T) {
	h := NewAdminHandler(&mockAdminService{createErr: service.ErrAdminNameTaken}, &mockExportService{})

	w := doJSON(h.CreateAdmin, "POST", "/admins", jsonBody(dto.CreateAdminRequest{
		FirstName: "Anna", LastName: "Admin", Email: "anna@stusta.net",
	}), true)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 12002 {
		t.Errorf("expected error code 12002, got %d", resp.Code)
	}
}

func TestAdminHandler_GetAdmin_NotFound(t *testing.T) {
	h := NewAdminHandler(&mockAdminService{getErr: service.ErrAdminNotFound}, &mockExportService{})

	w := doJSON(h.GetAdmin, "GET", "/admins/admin-weg", nil, true)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestAdminHandler_ListPersons_PlainJSON(t *testing.T) {
	mock := &mockAdminService{
		personsResult: []dto.PersonResponse{
			{ID: "admin-1", Name: "Anna Admin", Email: "anna@stusta.net"},
		},
	}
	h := NewAdminHandler(mock, &mockExportService{})

	w := doJSON(h.ListPersons, "GET", "/persons.json", nil, false)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	// 公开 API 直接返回数组，不套信封
	var persons []dto.PersonResponse
	if err := json.Unmarshal(w.Body.Bytes(), &persons); err != nil {
		t.Fatalf("expected plain JSON array: %v", err)
	}
	if len(persons) != 1 || persons[0].Name != "Anna Admin" {
		t.Errorf("unexpected payload: %+v", persons)
	}
}

func TestAdminHandler_AdminCalendar_TrimsSuffix(t *testing.T) {
	mock := &mockExportService{adminICS: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", adminName: "Anna Admin"}
	h := NewAdminHandler(&mockAdminService{}, mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/calendar/admins/admin-1.ics", nil)
	r := gin.New()
	r.GET("/calendar/admins/:id", h.AdminCalendar)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/calendar; charset=utf-8" {
		t.Errorf("unexpected content type: %s", ct)
	}
}

// ═══════════════════════════════════════════════════════════
// AppointmentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAppointmentHandler_Plan_GuestFlag(t *testing.T) {
	mock := &mockAppointmentService{planResult: &dto.PlanResponse{}}
	h := NewAppointmentHandler(mock, &mockExportService{})

	doJSON(h.Plan, "GET", "/plan", nil, false)
	if mock.planWasStaff {
		t.Error("guest request should not carry the staff flag")
	}

	doJSON(h.Plan, "GET", "/plan", nil, true)
	if !mock.planWasStaff {
		t.Error("authenticated request should carry the staff flag")
	}
}

func TestAppointmentHandler_Plan_PastForbidden(t *testing.T) {
	h := NewAppointmentHandler(&mockAppointmentService{planErr: service.ErrPlanForbidden}, &mockExportService{})

	w := doJSON(h.Plan, "GET", "/plan?year=2020&month=1", nil, false)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestAppointmentHandler_Delete_Staffed(t *testing.T) {
	h := NewAppointmentHandler(&mockAppointmentService{deleteErr: service.ErrAppointmentStaffed}, &mockExportService{})

	w := doJSON(h.DeleteAppointment, "DELETE", "/appointments/appt-1", nil, true)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 13002 {
		t.Errorf("expected error code 13002, got %d", resp.Code)
	}
}

func TestAppointmentHandler_ListUpcoming_DefaultLimit(t *testing.T) {
	mock := &mockAppointmentService{upcomingResult: []dto.UpcomingAppointmentResponse{}}
	h := NewAppointmentHandler(mock, &mockExportService{})

	w := doJSON(h.ListUpcoming, "GET", "/appointments.json", nil, false)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.upcomingLimit != 2 {
		t.Errorf("expected default limit 2, got %d", mock.upcomingLimit)
	}

	doJSON(h.ListUpcoming, "GET", "/appointments.json?elements=5", nil, false)
	if mock.upcomingLimit != 5 {
		t.Errorf("expected limit 5, got %d", mock.upcomingLimit)
	}
}

func TestAppointmentHandler_ListUpcoming_BadElements(t *testing.T) {
	h := NewAppointmentHandler(&mockAppointmentService{}, &mockExportService{})

	w := doJSON(h.ListUpcoming, "GET", "/appointments.json?elements=null", nil, false)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SettingHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSettingHandler_SaveVariants_Success(t *testing.T) {
	h := NewSettingHandler(&mockSettingService{})

	w := doJSON(h.SaveVariants, "PUT", "/settings/sender/variants", jsonBody(dto.SaveVariantsRequest{
		ActiveID: "11111111-1111-1111-1111-111111111111",
		Values:   map[string]string{"11111111-1111-1111-1111-111111111111": "x"},
	}), true)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSettingHandler_SaveVariants_UnknownKey(t *testing.T) {
	h := NewSettingHandler(&mockSettingService{saveErr: service.ErrSettingUnknownKey})

	w := doJSON(h.SaveVariants, "PUT", "/settings/bogus/variants", jsonBody(dto.SaveVariantsRequest{
		ActiveID: "11111111-1111-1111-1111-111111111111",
		Values:   map[string]string{"11111111-1111-1111-1111-111111111111": "x"},
	}), true)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 14001 {
		t.Errorf("expected error code 14001, got %d", resp.Code)
	}
}

func TestSettingHandler_DeleteVariant_NotOwned(t *testing.T) {
	h := NewSettingHandler(&mockSettingService{deleteErr: service.ErrSettingInvalidDelete})

	w := doJSON(h.DeleteVariant, "DELETE", "/settings/sender/variants/s-9", nil, true)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
}
