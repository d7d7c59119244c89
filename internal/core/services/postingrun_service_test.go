package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	portssvc "github.com/vyaparbooks/ledger_core_app/internal/core/ports/services"
	"github.com/vyaparbooks/ledger_core_app/internal/core/services"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
)

// MockVoucherLifecycle is a mock type for the VoucherLifecycleSvc interface
type MockVoucherLifecycle struct {
	mock.Mock
}

func (m *MockVoucherLifecycle) PostVoucher(ctx context.Context, voucherID string, allowFuture bool, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID, allowFuture, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherLifecycle) CancelVoucher(ctx context.Context, voucherID string, reason string, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherLifecycle) SchedulePostdated(ctx context.Context, voucherID string, req dto.SchedulePostdatedRequest, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherLifecycle) MarkProvisional(ctx context.Context, voucherID string, reason string, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherLifecycle) ConfirmProvisional(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherLifecycle) RejectProvisional(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

// --- Test Suite Setup ---

type PostingRunServiceTestSuite struct {
	suite.Suite
	mockVoucherRepo *MockVoucherRepository
	mockLifecycle   *MockVoucherLifecycle
	service         portssvc.PostingRunSvc
}

func (suite *PostingRunServiceTestSuite) SetupTest() {
	suite.mockVoucherRepo = new(MockVoucherRepository)
	suite.mockLifecycle = new(MockVoucherLifecycle)
	suite.service = services.NewPostingRunService(suite.mockVoucherRepo, suite.mockLifecycle)
}

func dueVoucher(id, creator string) domain.Voucher {
	return domain.Voucher{
		VoucherID: id,
		Status:    domain.VoucherDraft,
		AutoPost:  true,
		AuditFields: domain.AuditFields{
			CreatedBy: creator,
		},
	}
}

// --- Test Cases ---

func (suite *PostingRunServiceTestSuite) TestProcessDuePostdated_PostsAllDue() {
	ctx := context.Background()
	asOf := time.Date(2025, time.May, 1, 1, 0, 0, 0, time.UTC)
	due := []domain.Voucher{dueVoucher("v1", "alice"), dueVoucher("v2", "bob")}

	suite.mockVoucherRepo.On("ListDueAutoPostVouchers", ctx, asOf).Return(due, nil)
	suite.mockLifecycle.On("PostVoucher", ctx, "v1", true, "alice").Return(&domain.Voucher{VoucherID: "v1", Status: domain.VoucherPosted}, nil)
	suite.mockLifecycle.On("PostVoucher", ctx, "v2", true, "bob").Return(&domain.Voucher{VoucherID: "v2", Status: domain.VoucherPosted}, nil)

	report, err := suite.service.ProcessDuePostdated(ctx, asOf)

	suite.NoError(err)
	suite.Equal(2, report.ProcessedCount)
	suite.Equal(0, report.ErrorCount)
	suite.mockLifecycle.AssertExpectations(suite.T())
}

func (suite *PostingRunServiceTestSuite) TestProcessDuePostdated_FailureDoesNotAbortBatch() {
	ctx := context.Background()
	asOf := time.Now().UTC()
	due := []domain.Voucher{dueVoucher("v1", "alice"), dueVoucher("v2", "alice"), dueVoucher("v3", "alice")}

	suite.mockVoucherRepo.On("ListDueAutoPostVouchers", ctx, asOf).Return(due, nil)
	suite.mockLifecycle.On("PostVoucher", ctx, "v1", true, "alice").Return(&domain.Voucher{VoucherID: "v1"}, nil)
	suite.mockLifecycle.On("PostVoucher", ctx, "v2", true, "alice").Return(nil, errors.New("account inactive"))
	suite.mockLifecycle.On("PostVoucher", ctx, "v3", true, "alice").Return(&domain.Voucher{VoucherID: "v3"}, nil)

	report, err := suite.service.ProcessDuePostdated(ctx, asOf)

	suite.NoError(err)
	suite.Equal(2, report.ProcessedCount)
	suite.Equal(1, report.ErrorCount)
	suite.Require().Len(report.Errors, 1)
	suite.Equal("v2", report.Errors[0].VoucherID)
	suite.Contains(report.Errors[0].Reason, "account inactive")
}

func (suite *PostingRunServiceTestSuite) TestProcessDuePostdated_EmptyRun() {
	ctx := context.Background()
	asOf := time.Now().UTC()
	suite.mockVoucherRepo.On("ListDueAutoPostVouchers", ctx, asOf).Return([]domain.Voucher{}, nil)

	report, err := suite.service.ProcessDuePostdated(ctx, asOf)

	suite.NoError(err)
	suite.Equal(0, report.ProcessedCount)
	suite.Equal(0, report.ErrorCount)
	suite.mockLifecycle.AssertNotCalled(suite.T(), "PostVoucher", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingRunServiceTestSuite) TestProcessDuePostdated_CancelledContextStopsRun() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	asOf := time.Now().UTC()
	due := []domain.Voucher{dueVoucher("v1", "alice")}
	suite.mockVoucherRepo.On("ListDueAutoPostVouchers", ctx, asOf).Return(due, nil)

	report, err := suite.service.ProcessDuePostdated(ctx, asOf)

	suite.ErrorIs(err, context.Canceled)
	suite.Equal(0, report.ProcessedCount)
	suite.mockLifecycle.AssertNotCalled(suite.T(), "PostVoucher", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPostingRunServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostingRunServiceTestSuite))
}
