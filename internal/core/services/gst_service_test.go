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

// MockGSTRepository is a mock type for the GSTReconRepositoryFacade interface
type MockGSTRepository struct {
	mock.Mock
}

func (m *MockGSTRepository) FindEntriesByStatus(ctx context.Context, statuses []domain.GSTMatchStatus) ([]domain.GSTReconEntry, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GSTReconEntry), args.Error(1)
}

func (m *MockGSTRepository) Summarize(ctx context.Context) (*domain.GSTReconSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GSTReconSummary), args.Error(1)
}

func (m *MockGSTRepository) FindPurchaseBills(ctx context.Context, from, to time.Time) ([]domain.PurchaseBillRef, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PurchaseBillRef), args.Error(1)
}

func (m *MockGSTRepository) SaveEntries(ctx context.Context, entries []domain.GSTReconEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockGSTRepository) UpdateEntryMatch(ctx context.Context, entryID string, status domain.GSTMatchStatus, matchedVoucherID string) error {
	args := m.Called(ctx, entryID, status, matchedVoucherID)
	return args.Error(0)
}

// --- Test Suite Setup ---

var (
	gstUnresolvedStatuses = []domain.GSTMatchStatus{domain.GSTPending, domain.GSTMismatched, domain.GSTMissingInBooks}
	gstMatchedStatuses    = []domain.GSTMatchStatus{domain.GSTMatched}
)

type GSTServiceTestSuite struct {
	suite.Suite
	mockGSTRepo *MockGSTRepository
	service     portssvc.GSTReconSvcFacade
}

func (suite *GSTServiceTestSuite) SetupTest() {
	suite.mockGSTRepo = new(MockGSTRepository)
	suite.service = services.NewGSTService(suite.mockGSTRepo)
}

func feedEntry(id, gstin, invoiceNo string, value int64) domain.GSTReconEntry {
	return domain.GSTReconEntry{
		EntryID:       id,
		SupplierGSTIN: gstin,
		InvoiceNo:     invoiceNo,
		InvoiceDate:   time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
		InvoiceValue:  decimal.NewFromInt(value),
		Status:        domain.GSTPending,
	}
}

func purchaseBill(voucherID, gstin, invoiceNo string, value int64) domain.PurchaseBillRef {
	return domain.PurchaseBillRef{
		VoucherID:     voucherID,
		SupplierGSTIN: gstin,
		InvoiceNo:     invoiceNo,
		InvoiceDate:   time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
		InvoiceValue:  decimal.NewFromInt(value),
	}
}

func matchWindow() dto.RunGSTMatchRequest {
	return dto.RunGSTMatchRequest{
		From: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC),
	}
}

// --- Test Cases ---

func (suite *GSTServiceTestSuite) TestImportFeed_NormalizesSupplierGSTIN() {
	ctx := context.Background()
	suite.mockGSTRepo.On("SaveEntries", ctx, mock.MatchedBy(func(entries []domain.GSTReconEntry) bool {
		return len(entries) == 1 &&
			entries[0].SupplierGSTIN == "29ABCDE1234F1Z5" &&
			entries[0].InvoiceNo == "INV-42" &&
			entries[0].Status == domain.GSTPending &&
			entries[0].EntryID != ""
	})).Return(nil)

	count, err := suite.service.ImportFeed(ctx, dto.ImportGSTFeedRequest{
		Rows: []dto.GSTFeedRow{{
			SupplierGSTIN: " 29abcde1234f1z5 ",
			InvoiceNo:     " INV-42 ",
			InvoiceDate:   time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
			InvoiceValue:  decimal.NewFromInt(1180),
			ITCAmount:     decimal.NewFromInt(180),
		}},
	}, "user-1")

	suite.NoError(err)
	suite.Equal(1, count)
	suite.mockGSTRepo.AssertExpectations(suite.T())
}

func (suite *GSTServiceTestSuite) TestImportFeed_NegativeInvoiceValueRejected() {
	ctx := context.Background()

	_, err := suite.service.ImportFeed(ctx, dto.ImportGSTFeedRequest{
		Rows: []dto.GSTFeedRow{{
			SupplierGSTIN: "29ABCDE1234F1Z5",
			InvoiceNo:     "INV-43",
			InvoiceDate:   time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
			InvoiceValue:  decimal.NewFromInt(-500),
		}},
	}, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockGSTRepo.AssertNotCalled(suite.T(), "SaveEntries", mock.Anything, mock.Anything)
}

func (suite *GSTServiceTestSuite) TestRunMatch_BucketsOutcomes() {
	ctx := context.Background()
	unresolved := []domain.GSTReconEntry{
		feedEntry("g1", "29ABCDE1234F1Z5", "INV-1", 1180),
		feedEntry("g2", "29ABCDE1234F1Z5", "INV-2", 1250),
		feedEntry("g3", "27ZZZZZ9999Z9Z9", "INV-9", 700),
	}
	bills := []domain.PurchaseBillRef{
		purchaseBill("v1", "29ABCDE1234F1Z5", "INV-1", 1180),
		purchaseBill("v2", "29ABCDE1234F1Z5", "INV-2", 1180),
	}
	suite.mockGSTRepo.On("FindEntriesByStatus", ctx, gstUnresolvedStatuses).Return(unresolved, nil)
	suite.mockGSTRepo.On("FindEntriesByStatus", ctx, gstMatchedStatuses).Return([]domain.GSTReconEntry{}, nil)
	suite.mockGSTRepo.On("FindPurchaseBills", ctx, mock.Anything, mock.Anything).Return(bills, nil)
	suite.mockGSTRepo.On("UpdateEntryMatch", ctx, "g1", domain.GSTMatched, "v1").Return(nil)
	suite.mockGSTRepo.On("UpdateEntryMatch", ctx, "g2", domain.GSTMismatched, "v2").Return(nil)
	suite.mockGSTRepo.On("UpdateEntryMatch", ctx, "g3", domain.GSTMissingInBooks, "").Return(nil)
	suite.mockGSTRepo.On("Summarize", ctx).Return(&domain.GSTReconSummary{Total: 3, Matched: 1, Mismatched: 1, MissingInBooks: 1}, nil)

	report, err := suite.service.RunMatch(ctx, matchWindow(), "user-1")

	suite.NoError(err)
	suite.Require().NotNil(report)
	suite.Equal(3, report.Evaluated)
	suite.Equal(1, report.Matched)
	suite.Equal(1, report.Mismatched)
	suite.Equal(1, report.MissingInBooks)
	suite.Require().NotNil(report.Summary)
	suite.Equal(1, report.Summary.Matched)
	suite.mockGSTRepo.AssertExpectations(suite.T())
}

func (suite *GSTServiceTestSuite) TestRunMatch_DuplicateBookedBillsSurfaceAsMismatch() {
	ctx := context.Background()
	unresolved := []domain.GSTReconEntry{feedEntry("g1", "29ABCDE1234F1Z5", "INV-1", 1180)}
	bills := []domain.PurchaseBillRef{
		purchaseBill("v1", "29ABCDE1234F1Z5", "INV-1", 1180),
		purchaseBill("v2", "29ABCDE1234F1Z5", "INV-1", 1180),
	}
	suite.mockGSTRepo.On("FindEntriesByStatus", ctx, gstUnresolvedStatuses).Return(unresolved, nil)
	suite.mockGSTRepo.On("FindEntriesByStatus", ctx, gstMatchedStatuses).Return([]domain.GSTReconEntry{}, nil)
	suite.mockGSTRepo.On("FindPurchaseBills", ctx, mock.Anything, mock.Anything).Return(bills, nil)
	suite.mockGSTRepo.On("UpdateEntryMatch", ctx, "g1", domain.GSTMismatched, "").Return(nil)
	suite.mockGSTRepo.On("Summarize", ctx).Return(&domain.GSTReconSummary{Total: 1, Mismatched: 1}, nil)

	report, err := suite.service.RunMatch(ctx, matchWindow(), "user-1")

	suite.NoError(err)
	suite.Require().NotNil(report)
	suite.Equal(1, report.Mismatched)
	suite.Equal(0, report.MissingInBooks)
	suite.mockGSTRepo.AssertExpectations(suite.T())
}

func (suite *GSTServiceTestSuite) TestRunMatch_MatchedBillsStayConsumed() {
	// A bill already bound to a MATCHED feed row is not offered again, so a
	// duplicate feed row for the same invoice lands in MISSING_IN_BOOKS
	// instead of stealing the bill.
	ctx := context.Background()
	already := feedEntry("g1", "29ABCDE1234F1Z5", "INV-1", 1180)
	already.Status = domain.GSTMatched
	already.MatchedVoucherID = "v1"
	duplicate := feedEntry("g2", "29ABCDE1234F1Z5", "INV-1", 1180)
	suite.mockGSTRepo.On("FindEntriesByStatus", ctx, gstUnresolvedStatuses).Return([]domain.GSTReconEntry{duplicate}, nil)
	suite.mockGSTRepo.On("FindEntriesByStatus", ctx, gstMatchedStatuses).Return([]domain.GSTReconEntry{already}, nil)
	suite.mockGSTRepo.On("FindPurchaseBills", ctx, mock.Anything, mock.Anything).Return([]domain.PurchaseBillRef{
		purchaseBill("v1", "29ABCDE1234F1Z5", "INV-1", 1180),
	}, nil)
	suite.mockGSTRepo.On("UpdateEntryMatch", ctx, "g2", domain.GSTMissingInBooks, "").Return(nil)
	suite.mockGSTRepo.On("Summarize", ctx).Return(&domain.GSTReconSummary{Total: 2, Matched: 1, MissingInBooks: 1}, nil)

	report, err := suite.service.RunMatch(ctx, matchWindow(), "user-1")

	suite.NoError(err)
	suite.Equal(1, report.MissingInBooks)
	suite.Equal(0, report.Matched)
	suite.mockGSTRepo.AssertExpectations(suite.T())
}

func (suite *GSTServiceTestSuite) TestRunMatch_UnchangedOutcomeSkipsWrite() {
	// Re-running over unchanged data must not rewrite rows that land in the
	// same bucket with the same counterpart.
	ctx := context.Background()
	stale := feedEntry("g1", "27ZZZZZ9999Z9Z9", "INV-9", 700)
	stale.Status = domain.GSTMissingInBooks
	suite.mockGSTRepo.On("FindEntriesByStatus", ctx, gstUnresolvedStatuses).Return([]domain.GSTReconEntry{stale}, nil)
	suite.mockGSTRepo.On("FindEntriesByStatus", ctx, gstMatchedStatuses).Return([]domain.GSTReconEntry{}, nil)
	suite.mockGSTRepo.On("FindPurchaseBills", ctx, mock.Anything, mock.Anything).Return([]domain.PurchaseBillRef{}, nil)
	suite.mockGSTRepo.On("Summarize", ctx).Return(&domain.GSTReconSummary{Total: 1, MissingInBooks: 1}, nil)

	report, err := suite.service.RunMatch(ctx, matchWindow(), "user-1")

	suite.NoError(err)
	suite.Equal(1, report.MissingInBooks)
	suite.mockGSTRepo.AssertNotCalled(suite.T(), "UpdateEntryMatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GSTServiceTestSuite) TestRunMatch_WindowEndBeforeStartRejected() {
	ctx := context.Background()
	req := dto.RunGSTMatchRequest{
		From: time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err := suite.service.RunMatch(ctx, req, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockGSTRepo.AssertNotCalled(suite.T(), "FindPurchaseBills", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GSTServiceTestSuite) TestListEntries_PassesStatusFilter() {
	ctx := context.Background()
	want := []domain.GSTReconEntry{feedEntry("g1", "29ABCDE1234F1Z5", "INV-1", 1180)}
	suite.mockGSTRepo.On("FindEntriesByStatus", ctx, []domain.GSTMatchStatus{domain.GSTMismatched}).Return(want, nil)

	got, err := suite.service.ListEntries(ctx, []domain.GSTMatchStatus{domain.GSTMismatched})

	suite.NoError(err)
	suite.Equal(want, got)
}

func TestGSTServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GSTServiceTestSuite))
}
