package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/vyaparbooks/ledger_core_app/internal/apperrors"
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	portssvc "github.com/vyaparbooks/ledger_core_app/internal/core/ports/services"
	"github.com/vyaparbooks/ledger_core_app/internal/core/services"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
	"github.com/vyaparbooks/ledger_core_app/internal/handlers"
	"github.com/vyaparbooks/ledger_core_app/internal/middleware"
)

// --- Mock VoucherService ---
type MockVoucherService struct {
	mock.Mock
}

func (m *MockVoucherService) GetVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherService) ListVouchers(ctx context.Context, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListVouchersResponse), args.Error(1)
}

func (m *MockVoucherService) CreateVoucher(ctx context.Context, req dto.CreateVoucherRequest, creatorUserID string) (*domain.Voucher, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherService) UpdateVoucher(ctx context.Context, voucherID string, req dto.UpdateVoucherRequest, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherService) DeleteVoucher(ctx context.Context, voucherID string, userID string) error {
	args := m.Called(ctx, voucherID, userID)
	return args.Error(0)
}

func (m *MockVoucherService) PostVoucher(ctx context.Context, voucherID string, allowFuture bool, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID, allowFuture, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherService) CancelVoucher(ctx context.Context, voucherID string, reason string, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherService) SchedulePostdated(ctx context.Context, voucherID string, req dto.SchedulePostdatedRequest, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherService) MarkProvisional(ctx context.Context, voucherID string, reason string, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherService) ConfirmProvisional(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherService) RejectProvisional(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.VoucherSvcFacade = (*MockVoucherService)(nil)

// --- Test Suite ---
type VoucherHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockVoucherService *MockVoucherService
	jwtSecret          string
}

func (suite *VoucherHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "ledger-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *VoucherHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockVoucherService = new(MockVoucherService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterVoucherRoutes(v1, suite.mockVoucherService)
}

func (suite *VoucherHandlerTestSuite) doRequest(method, url, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *VoucherHandlerTestSuite) TestCreateVoucher_Success() {
	userID := "user-1"
	voucherDate := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	created := &domain.Voucher{
		VoucherID:     "vch-1",
		VoucherType:   domain.VoucherTypeJournal,
		VoucherDate:   voucherDate,
		EffectiveDate: voucherDate,
		Status:        domain.VoucherDraft,
	}
	suite.mockVoucherService.On("CreateVoucher",
		mock.AnythingOfType("*context.valueCtx"),
		mock.MatchedBy(func(req dto.CreateVoucherRequest) bool {
			return req.VoucherType == domain.VoucherTypeJournal && len(req.Lines) == 2
		}),
		userID,
	).Return(created, nil).Once()

	body := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherTypeJournal,
		VoucherDate: voucherDate,
		Lines: []dto.CreateLineRequest{
			{AccountID: "cash", Debit: decimal.NewFromInt(500)},
			{AccountID: "capital", Credit: decimal.NewFromInt(500)},
		},
	}
	w := suite.doRequest(http.MethodPost, "/api/v1/vouchers", userID, body)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.VoucherResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("vch-1", resp.VoucherID)
	suite.Equal(domain.VoucherDraft, resp.Status)
	suite.mockVoucherService.AssertExpectations(suite.T())
}

func (suite *VoucherHandlerTestSuite) TestCreateVoucher_CreditLimitExceededMapsTo422() {
	userID := "user-1"
	creditErr := &apperrors.CreditLimitExceededError{
		CustomerID:  "cust-1",
		CreditLimit: decimal.NewFromInt(50000),
		Outstanding: decimal.NewFromInt(48000),
		Proposed:    decimal.NewFromInt(7000),
		Excess:      decimal.NewFromInt(5000),
	}
	suite.mockVoucherService.On("CreateVoucher",
		mock.AnythingOfType("*context.valueCtx"), mock.Anything, userID,
	).Return(nil, creditErr).Once()

	body := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherTypeSales,
		VoucherDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		PartyID:     "cust-1",
		Lines: []dto.CreateLineRequest{
			{AccountID: "cust-1", Debit: decimal.NewFromInt(7000)},
			{AccountID: "sales", Credit: decimal.NewFromInt(7000)},
		},
	}
	w := suite.doRequest(http.MethodPost, "/api/v1/vouchers", userID, body)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var resp map[string]any
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Contains(resp, "excess")
	suite.Contains(resp, "creditLimit")
	suite.mockVoucherService.AssertExpectations(suite.T())
}

func (suite *VoucherHandlerTestSuite) TestPostVoucher_ConcurrencyConflictMapsTo409() {
	userID := "user-1"
	suite.mockVoucherService.On("PostVoucher",
		mock.AnythingOfType("*context.valueCtx"), "vch-1", false, userID,
	).Return(nil, apperrors.ErrConcurrencyConflict).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/vouchers/vch-1/post", userID, nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockVoucherService.AssertExpectations(suite.T())
}

func (suite *VoucherHandlerTestSuite) TestPostVoucher_EffectiveDateNotArrivedMapsTo409() {
	userID := "user-1"
	suite.mockVoucherService.On("PostVoucher",
		mock.AnythingOfType("*context.valueCtx"), "vch-1", false, userID,
	).Return(nil, services.ErrEffectiveInFuture).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/vouchers/vch-1/post", userID, nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockVoucherService.AssertExpectations(suite.T())
}

func (suite *VoucherHandlerTestSuite) TestSchedulePostdated_NonFutureDateMapsTo400() {
	userID := "user-1"
	suite.mockVoucherService.On("SchedulePostdated",
		mock.AnythingOfType("*context.valueCtx"), "vch-1", mock.Anything, userID,
	).Return(nil, services.ErrScheduleNeedsFuture).Once()

	body := dto.SchedulePostdatedRequest{
		EffectiveDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Reason:        "cheque issued",
	}
	w := suite.doRequest(http.MethodPost, "/api/v1/vouchers/vch-1/schedule", userID, body)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockVoucherService.AssertExpectations(suite.T())
}

func (suite *VoucherHandlerTestSuite) TestGetVoucher_NotFoundMapsTo404() {
	userID := "user-1"
	suite.mockVoucherService.On("GetVoucherByID",
		mock.AnythingOfType("*context.valueCtx"), "missing",
	).Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/vouchers/missing", userID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockVoucherService.AssertExpectations(suite.T())
}

func (suite *VoucherHandlerTestSuite) TestMissingTokenRejected() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/vouchers/vch-1", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockVoucherService.AssertNotCalled(suite.T(), "GetVoucherByID", mock.Anything, mock.Anything)
}

// --- Run Test Suite ---
func TestVoucherHandler(t *testing.T) {
	suite.Run(t, new(VoucherHandlerTestSuite))
}
