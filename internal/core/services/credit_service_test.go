package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/vyaparbooks/ledger_core_app/internal/apperrors"
	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	portssvc "github.com/vyaparbooks/ledger_core_app/internal/core/ports/services"
	"github.com/vyaparbooks/ledger_core_app/internal/core/services"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
)

// MockCreditRepository is a mock type for the CreditRepositoryFacade interface
type MockCreditRepository struct {
	mock.Mock
}

func (m *MockCreditRepository) FindPolicyByCustomerID(ctx context.Context, customerID string) (*domain.CreditPolicy, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditPolicy), args.Error(1)
}

func (m *MockCreditRepository) SumOutstandingForCustomer(ctx context.Context, customerID string) (decimal.Decimal, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCreditRepository) SavePolicy(ctx context.Context, policy domain.CreditPolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

// --- Test Suite Setup ---

type CreditServiceTestSuite struct {
	suite.Suite
	mockCreditRepo  *MockCreditRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.CreditSvcFacade
}

func (suite *CreditServiceTestSuite) SetupTest() {
	suite.mockCreditRepo = new(MockCreditRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewCreditService(suite.mockCreditRepo, suite.mockAccountRepo)
}

func (suite *CreditServiceTestSuite) enabledPolicy(limit int64) *domain.CreditPolicy {
	return &domain.CreditPolicy{
		CustomerID:  "cust-1",
		CreditLimit: decimal.NewFromInt(limit),
		Enabled:     true,
	}
}

// --- Test Cases ---

func (suite *CreditServiceTestSuite) TestCheckCredit_WithinLimitPasses() {
	ctx := context.Background()
	suite.mockCreditRepo.On("FindPolicyByCustomerID", ctx, "cust-1").Return(suite.enabledPolicy(50000), nil)
	suite.mockCreditRepo.On("SumOutstandingForCustomer", ctx, "cust-1").Return(decimal.NewFromInt(40000), nil)

	result, err := suite.service.CheckCredit(ctx, "cust-1", decimal.NewFromInt(9000))

	suite.NoError(err)
	suite.Require().NotNil(result)
	suite.False(result.Exceeded)
	suite.True(result.Projected.Equal(decimal.NewFromInt(49000)))
}

func (suite *CreditServiceTestSuite) TestCheckCredit_ExceededReportsExcess() {
	ctx := context.Background()
	suite.mockCreditRepo.On("FindPolicyByCustomerID", ctx, "cust-1").Return(suite.enabledPolicy(50000), nil)
	suite.mockCreditRepo.On("SumOutstandingForCustomer", ctx, "cust-1").Return(decimal.NewFromInt(40000), nil)

	result, err := suite.service.CheckCredit(ctx, "cust-1", decimal.NewFromInt(15000))

	suite.Require().Error(err)
	var creditErr *apperrors.CreditLimitExceededError
	suite.Require().ErrorAs(err, &creditErr)
	suite.True(creditErr.Excess.Equal(decimal.NewFromInt(5000)))
	// The breakdown is returned alongside the refusal.
	suite.Require().NotNil(result)
	suite.True(result.Exceeded)
	suite.True(result.Excess.Equal(decimal.NewFromInt(5000)))
}

func (suite *CreditServiceTestSuite) TestCheckCredit_ExactLimitPasses() {
	ctx := context.Background()
	suite.mockCreditRepo.On("FindPolicyByCustomerID", ctx, "cust-1").Return(suite.enabledPolicy(50000), nil)
	suite.mockCreditRepo.On("SumOutstandingForCustomer", ctx, "cust-1").Return(decimal.NewFromInt(40000), nil)

	result, err := suite.service.CheckCredit(ctx, "cust-1", decimal.NewFromInt(10000))

	suite.NoError(err)
	suite.False(result.Exceeded)
}

func (suite *CreditServiceTestSuite) TestCheckCredit_NoPolicyMeansUnlimited() {
	ctx := context.Background()
	suite.mockCreditRepo.On("FindPolicyByCustomerID", ctx, "cust-1").Return(nil, apperrors.ErrNotFound)

	result, err := suite.service.CheckCredit(ctx, "cust-1", decimal.NewFromInt(1000000))

	suite.NoError(err)
	suite.False(result.Exceeded)
	suite.mockCreditRepo.AssertNotCalled(suite.T(), "SumOutstandingForCustomer", mock.Anything, mock.Anything)
}

func (suite *CreditServiceTestSuite) TestCheckCredit_DisabledPolicySkipsEvaluation() {
	ctx := context.Background()
	policy := suite.enabledPolicy(100)
	policy.Enabled = false
	suite.mockCreditRepo.On("FindPolicyByCustomerID", ctx, "cust-1").Return(policy, nil)

	result, err := suite.service.CheckCredit(ctx, "cust-1", decimal.NewFromInt(5000))

	suite.NoError(err)
	suite.False(result.Exceeded)
	suite.mockCreditRepo.AssertNotCalled(suite.T(), "SumOutstandingForCustomer", mock.Anything, mock.Anything)
}

func (suite *CreditServiceTestSuite) TestUpsertPolicy_NegativeLimitRejected() {
	ctx := context.Background()
	req := dto.UpsertCreditPolicyRequest{CreditLimit: decimal.NewFromInt(-1)}

	_, err := suite.service.UpsertPolicy(ctx, "cust-1", req, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockCreditRepo.AssertNotCalled(suite.T(), "SavePolicy", mock.Anything, mock.Anything)
}

func (suite *CreditServiceTestSuite) TestUpsertPolicy_Success() {
	ctx := context.Background()
	req := dto.UpsertCreditPolicyRequest{CreditLimit: decimal.NewFromInt(75000), Enabled: true}
	suite.mockAccountRepo.On("FindAccountByID", ctx, "cust-1").Return(&domain.Account{AccountID: "cust-1"}, nil)
	suite.mockCreditRepo.On("SavePolicy", ctx, mock.MatchedBy(func(p domain.CreditPolicy) bool {
		return p.CustomerID == "cust-1" && p.CreditLimit.Equal(decimal.NewFromInt(75000)) && p.Enabled
	})).Return(nil)

	policy, err := suite.service.UpsertPolicy(ctx, "cust-1", req, "user-1")

	suite.NoError(err)
	suite.Require().NotNil(policy)
	suite.Equal("user-1", policy.CreatedBy)
	suite.WithinDuration(time.Now().UTC(), policy.CreatedAt, 5*time.Second)
	suite.mockCreditRepo.AssertExpectations(suite.T())
}

func (suite *CreditServiceTestSuite) TestUpsertPolicy_UnknownCustomerRejected() {
	ctx := context.Background()
	req := dto.UpsertCreditPolicyRequest{CreditLimit: decimal.NewFromInt(100)}
	suite.mockAccountRepo.On("FindAccountByID", ctx, "ghost").Return(nil, apperrors.ErrNotFound)

	_, err := suite.service.UpsertPolicy(ctx, "ghost", req, "user-1")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestCreditServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CreditServiceTestSuite))
}
