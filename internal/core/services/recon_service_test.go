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

// MockReconRepository is a mock type for the ReconRepositoryFacade interface
type MockReconRepository struct {
	mock.Mock
}

func (m *MockReconRepository) FindSessionByID(ctx context.Context, sessionID string) (*domain.ReconSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconSession), args.Error(1)
}

func (m *MockReconRepository) FindExternalEntries(ctx context.Context, sessionID string) ([]domain.ExternalEntry, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExternalEntry), args.Error(1)
}

func (m *MockReconRepository) FindMatchLinks(ctx context.Context, sessionID string) ([]domain.MatchLink, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MatchLink), args.Error(1)
}

func (m *MockReconRepository) ListSessions(ctx context.Context, bankAccountID string, limit int, offset int) ([]domain.ReconSession, error) {
	args := m.Called(ctx, bankAccountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconSession), args.Error(1)
}

func (m *MockReconRepository) SaveSession(ctx context.Context, session domain.ReconSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockReconRepository) SaveExternalEntries(ctx context.Context, entries []domain.ExternalEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockReconRepository) SaveMatchLink(ctx context.Context, link domain.MatchLink, entryStatus domain.MatchStatus) error {
	args := m.Called(ctx, link, entryStatus)
	return args.Error(0)
}

func (m *MockReconRepository) UpdateEntryStatus(ctx context.Context, entryID string, status domain.MatchStatus) error {
	args := m.Called(ctx, entryID, status)
	return args.Error(0)
}

func (m *MockReconRepository) ReplaceManualLinks(ctx context.Context, entryID string, links []domain.MatchLink) error {
	args := m.Called(ctx, entryID, links)
	return args.Error(0)
}

func (m *MockReconRepository) ApproveSession(ctx context.Context, sessionID string, note string, userID string, now time.Time) error {
	args := m.Called(ctx, sessionID, note, userID, now)
	return args.Error(0)
}

// --- Test Suite Setup ---

type ReconServiceTestSuite struct {
	suite.Suite
	mockReconRepo   *MockReconRepository
	mockAccountRepo *MockAccountRepository
	mockPostingRepo *MockVoucherRepository
	service         portssvc.ReconSvcFacade
}

func (suite *ReconServiceTestSuite) SetupTest() {
	suite.mockReconRepo = new(MockReconRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockPostingRepo = new(MockVoucherRepository)
	suite.service = services.NewReconService(suite.mockReconRepo, suite.mockAccountRepo, suite.mockPostingRepo)
}

func (suite *ReconServiceTestSuite) openSession() *domain.ReconSession {
	return &domain.ReconSession{
		SessionID:        "sess-1",
		BankAccountID:    "bank",
		PeriodStart:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:        time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		StatementOpening: decimal.NewFromInt(1000),
		StatementClosing: decimal.NewFromInt(2000),
		Status:           domain.ReconSessionOpen,
	}
}

func (suite *ReconServiceTestSuite) stubBookPostings(session *domain.ReconSession, postings []domain.LedgerPosting) {
	suite.mockPostingRepo.On("ListPostingsByAccount", mock.Anything, session.BankAccountID, session.PeriodStart, session.PeriodEnd, mock.Anything, mock.Anything).
		Return(postings, nil, nil)
}

func statementCredit(id string, amount int64, day int) domain.ExternalEntry {
	return domain.ExternalEntry{
		EntryID:   id,
		SessionID: "sess-1",
		EntryDate: time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.NewFromInt(amount),
		Direction: domain.Credit,
		Status:    domain.MatchPending,
		Ordinal:   1,
	}
}

func bankPosting(id string, amount int64, day int) domain.LedgerPosting {
	return domain.LedgerPosting{
		PostingID: id,
		AccountID: "bank",
		Amount:    decimal.NewFromInt(amount),
		PostedAt:  time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
	}
}

// --- Test Cases ---

func (suite *ReconServiceTestSuite) TestCreateSession_Success() {
	ctx := context.Background()
	req := dto.CreateSessionRequest{
		BankAccountID:    "bank",
		PeriodStart:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:        time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		StatementOpening: decimal.NewFromInt(1000),
		StatementClosing: decimal.NewFromInt(2000),
	}
	suite.mockAccountRepo.On("FindAccountByID", ctx, "bank").Return(&domain.Account{AccountID: "bank", IsActive: true}, nil)
	suite.mockReconRepo.On("SaveSession", ctx, mock.MatchedBy(func(s domain.ReconSession) bool {
		return s.BankAccountID == "bank" &&
			s.Status == domain.ReconSessionOpen &&
			s.StatementClosing.Equal(decimal.NewFromInt(2000)) &&
			s.CreatedBy == "user-1"
	})).Return(nil)

	session, err := suite.service.CreateSession(ctx, req, "user-1")

	suite.NoError(err)
	suite.Require().NotNil(session)
	suite.NotEmpty(session.SessionID)
	suite.Equal(domain.ReconSessionOpen, session.Status)
	suite.mockReconRepo.AssertExpectations(suite.T())
}

func (suite *ReconServiceTestSuite) TestCreateSession_PeriodEndBeforeStartRejected() {
	ctx := context.Background()
	req := dto.CreateSessionRequest{
		BankAccountID: "bank",
		PeriodStart:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	session, err := suite.service.CreateSession(ctx, req, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(session)
	suite.mockReconRepo.AssertNotCalled(suite.T(), "SaveSession", mock.Anything, mock.Anything)
}

func (suite *ReconServiceTestSuite) TestImportExternalEntries_ContinuesOrdinals() {
	ctx := context.Background()
	session := suite.openSession()
	existing := []domain.ExternalEntry{statementCredit("e1", 100, 2), statementCredit("e2", 200, 3)}
	suite.mockReconRepo.On("FindSessionByID", ctx, "sess-1").Return(session, nil)
	suite.mockReconRepo.On("FindExternalEntries", ctx, "sess-1").Return(existing, nil)
	suite.mockReconRepo.On("SaveExternalEntries", ctx, mock.MatchedBy(func(entries []domain.ExternalEntry) bool {
		return len(entries) == 2 &&
			entries[0].Ordinal == 3 && entries[1].Ordinal == 4 &&
			entries[0].Status == domain.MatchPending &&
			entries[0].SessionID == "sess-1"
	})).Return(nil)

	count, err := suite.service.ImportExternalEntries(ctx, "sess-1", dto.ImportExternalEntriesRequest{
		Entries: []dto.ExternalEntryInput{
			{EntryDate: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(300), Direction: domain.Credit},
			{EntryDate: time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(400), Direction: domain.Debit},
		},
	}, "user-1")

	suite.NoError(err)
	suite.Equal(2, count)
	suite.mockReconRepo.AssertExpectations(suite.T())
}

func (suite *ReconServiceTestSuite) TestImportExternalEntries_ApprovedSessionRejected() {
	ctx := context.Background()
	session := suite.openSession()
	session.Status = domain.ReconSessionApproved
	suite.mockReconRepo.On("FindSessionByID", ctx, "sess-1").Return(session, nil)

	_, err := suite.service.ImportExternalEntries(ctx, "sess-1", dto.ImportExternalEntriesRequest{
		Entries: []dto.ExternalEntryInput{{EntryDate: time.Now(), Amount: decimal.NewFromInt(1), Direction: domain.Credit}},
	}, "user-1")

	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockReconRepo.AssertNotCalled(suite.T(), "SaveExternalEntries", mock.Anything, mock.Anything)
}

func (suite *ReconServiceTestSuite) TestAutoMatch_LinksExactCounterpart() {
	ctx := context.Background()
	session := suite.openSession()
	suite.mockReconRepo.On("FindSessionByID", ctx, "sess-1").Return(session, nil)
	suite.mockReconRepo.On("FindExternalEntries", ctx, "sess-1").Return([]domain.ExternalEntry{statementCredit("e1", 500, 10)}, nil)
	suite.mockReconRepo.On("FindMatchLinks", ctx, "sess-1").Return([]domain.MatchLink{}, nil)
	suite.stubBookPostings(session, []domain.LedgerPosting{bankPosting("p1", 500, 10)})
	suite.mockReconRepo.On("SaveMatchLink", ctx, mock.MatchedBy(func(link domain.MatchLink) bool {
		return link.EntryID == "e1" && link.PostingID == "p1" && !link.IsManual
	}), domain.MatchAuto).Return(nil)

	report, err := suite.service.AutoMatch(ctx, "sess-1", "user-1")

	suite.NoError(err)
	suite.Require().NotNil(report)
	suite.Equal(1, report.Evaluated)
	suite.Equal(1, report.AutoMatched)
	suite.Equal(0, report.Unmatched)
	suite.mockReconRepo.AssertExpectations(suite.T())
}

func (suite *ReconServiceTestSuite) TestAutoMatch_DebitEntryMatchesNegatedPosting() {
	// A DEBIT on the statement is money out of the account, which the books
	// carry as a negative movement on the bank account's debit-normal side.
	ctx := context.Background()
	session := suite.openSession()
	withdrawal := statementCredit("e1", 200, 12)
	withdrawal.Direction = domain.Debit
	suite.mockReconRepo.On("FindSessionByID", ctx, "sess-1").Return(session, nil)
	suite.mockReconRepo.On("FindExternalEntries", ctx, "sess-1").Return([]domain.ExternalEntry{withdrawal}, nil)
	suite.mockReconRepo.On("FindMatchLinks", ctx, "sess-1").Return([]domain.MatchLink{}, nil)
	suite.stubBookPostings(session, []domain.LedgerPosting{bankPosting("p1", -200, 12)})
	suite.mockReconRepo.On("SaveMatchLink", ctx, mock.MatchedBy(func(link domain.MatchLink) bool {
		return link.EntryID == "e1" && link.PostingID == "p1"
	}), domain.MatchAuto).Return(nil)

	report, err := suite.service.AutoMatch(ctx, "sess-1", "user-1")

	suite.NoError(err)
	suite.Equal(1, report.AutoMatched)
	suite.mockReconRepo.AssertExpectations(suite.T())
}

func (suite *ReconServiceTestSuite) TestAutoMatch_SkipsResolvedAndConsumedPostings() {
	// A second pass over an already-decided session changes nothing: the
	// resolved entry is skipped and its posting stays unavailable, so the
	// remaining entry has no counterpart left.
	ctx := context.Background()
	session := suite.openSession()
	resolved := statementCredit("e1", 500, 10)
	resolved.Status = domain.MatchManual
	pending := statementCredit("e2", 500, 11)
	suite.mockReconRepo.On("FindSessionByID", ctx, "sess-1").Return(session, nil)
	suite.mockReconRepo.On("FindExternalEntries", ctx, "sess-1").Return([]domain.ExternalEntry{resolved, pending}, nil)
	suite.mockReconRepo.On("FindMatchLinks", ctx, "sess-1").Return([]domain.MatchLink{
		{LinkID: "l1", SessionID: "sess-1", EntryID: "e1", PostingID: "p1", IsManual: true},
	}, nil)
	suite.stubBookPostings(session, []domain.LedgerPosting{bankPosting("p1", 500, 10)})
	suite.mockReconRepo.On("UpdateEntryStatus", ctx, "e2", domain.MatchUnfound).Return(nil)

	report, err := suite.service.AutoMatch(ctx, "sess-1", "user-1")

	suite.NoError(err)
	suite.Equal(1, report.Skipped)
	suite.Equal(1, report.Unmatched)
	suite.Equal(0, report.AutoMatched)
	suite.mockReconRepo.AssertNotCalled(suite.T(), "SaveMatchLink", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconServiceTestSuite) TestAutoMatch_ApprovedSessionRejected() {
	ctx := context.Background()
	session := suite.openSession()
	session.Status = domain.ReconSessionApproved
	suite.mockReconRepo.On("FindSessionByID", ctx, "sess-1").Return(session, nil)

	_, err := suite.service.AutoMatch(ctx, "sess-1", "user-1")

	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *ReconServiceTestSuite) TestManualMatch_ReplacesLinksAndMarksEntry() {
	ctx := context.Background()
	session := suite.openSession()
	suite.mockReconRepo.On("FindSessionByID", ctx, "sess-1").Return(session, nil)
	suite.mockReconRepo.On("FindExternalEntries", ctx, "sess-1").Return([]domain.ExternalEntry{statementCredit("e1", 500, 10)}, nil)
	suite.mockReconRepo.On("ReplaceManualLinks", ctx, "e1", mock.MatchedBy(func(links []domain.MatchLink) bool {
		return len(links) == 2 && links[0].PostingID == "p1" && links[1].PostingID == "p2" &&
			links[0].IsManual && links[1].IsManual
	})).Return(nil)
	suite.mockReconRepo.On("UpdateEntryStatus", ctx, "e1", domain.MatchManual).Return(nil)

	err := suite.service.ManualMatch(ctx, "sess-1", dto.ManualMatchRequest{
		EntryID:    "e1",
		PostingIDs: []string{"p1", "p2"},
	}, "user-1")

	suite.NoError(err)
	suite.mockReconRepo.AssertExpectations(suite.T())
}

func (suite *ReconServiceTestSuite) TestManualMatch_UnknownEntryRejected() {
	ctx := context.Background()
	session := suite.openSession()
	suite.mockReconRepo.On("FindSessionByID", ctx, "sess-1").Return(session, nil)
	suite.mockReconRepo.On("FindExternalEntries", ctx, "sess-1").Return([]domain.ExternalEntry{}, nil)

	err := suite.service.ManualMatch(ctx, "sess-1", dto.ManualMatchRequest{
		EntryID:    "missing",
		PostingIDs: []string{"p1"},
	}, "user-1")

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockReconRepo.AssertNotCalled(suite.T(), "ReplaceManualLinks", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconServiceTestSuite) TestUnmatchEntry_ReturnsEntryToPending() {
	ctx := context.Background()
	session := suite.openSession()
	suite.mockReconRepo.On("FindSessionByID", ctx, "sess-1").Return(session, nil)
	suite.mockReconRepo.On("ReplaceManualLinks", ctx, "e1", []domain.MatchLink(nil)).Return(nil)
	suite.mockReconRepo.On("UpdateEntryStatus", ctx, "e1", domain.MatchPending).Return(nil)

	err := suite.service.UnmatchEntry(ctx, "sess-1", "e1", "user-1")

	suite.NoError(err)
	suite.mockReconRepo.AssertExpectations(suite.T())
}

func (suite *ReconServiceTestSuite) TestGetSession_ComputesDifference() {
	// Statement closes at 2000. Books close at 800, with one unlinked book
	// posting of 50 and one unmatched external credit of 150:
	// difference = 2000 - (800 + 50 - 150) = 1300.
	ctx := context.Background()
	session := suite.openSession()
	unmatched := statementCredit("e1", 150, 20)
	unmatched.Status = domain.MatchUnfound
	matched := statementCredit("e2", 500, 10)
	matched.Status = domain.MatchAuto
	suite.mockReconRepo.On("FindSessionByID", ctx, "sess-1").Return(session, nil)
	suite.mockReconRepo.On("FindExternalEntries", ctx, "sess-1").Return([]domain.ExternalEntry{unmatched, matched}, nil)
	suite.mockReconRepo.On("FindMatchLinks", ctx, "sess-1").Return([]domain.MatchLink{
		{LinkID: "l1", SessionID: "sess-1", EntryID: "e2", PostingID: "p1"},
	}, nil)
	suite.stubBookPostings(session, []domain.LedgerPosting{bankPosting("p1", 500, 10), bankPosting("p2", 50, 15)})
	suite.mockPostingRepo.On("SumPostingsForAccount", ctx, "bank", session.PeriodEnd).Return(decimal.NewFromInt(800), nil)

	resp, err := suite.service.GetSession(ctx, "sess-1")

	suite.NoError(err)
	suite.Require().NotNil(resp)
	suite.Equal(2, resp.Summary.TotalExternal)
	suite.Equal(1, resp.Summary.AutoMatched)
	suite.Equal(1, resp.Summary.Unmatched)
	suite.True(resp.Summary.UnmatchedBookSum.Equal(decimal.NewFromInt(50)))
	suite.True(resp.Summary.UnmatchedExtSum.Equal(decimal.NewFromInt(150)))
	suite.True(resp.Summary.BookClosing.Equal(decimal.NewFromInt(800)))
	suite.True(resp.Summary.Difference.Equal(decimal.NewFromInt(1300)))
	suite.Len(resp.Entries, 2)
	suite.Len(resp.Links, 1)
}

func (suite *ReconServiceTestSuite) TestApproveSession_Archives() {
	ctx := context.Background()
	session := suite.openSession()
	suite.mockReconRepo.On("FindSessionByID", ctx, "sess-1").Return(session, nil)
	suite.mockReconRepo.On("ApproveSession", ctx, "sess-1", "difference explained by pending cheque", "user-1", mock.Anything).Return(nil)

	err := suite.service.ApproveSession(ctx, "sess-1", dto.ApproveSessionRequest{Note: "difference explained by pending cheque"}, "user-1")

	suite.NoError(err)
	suite.mockReconRepo.AssertExpectations(suite.T())
}

func (suite *ReconServiceTestSuite) TestApproveSession_AlreadyApprovedIsIdempotent() {
	ctx := context.Background()
	session := suite.openSession()
	session.Status = domain.ReconSessionApproved
	suite.mockReconRepo.On("FindSessionByID", ctx, "sess-1").Return(session, nil)

	err := suite.service.ApproveSession(ctx, "sess-1", dto.ApproveSessionRequest{}, "user-1")

	suite.NoError(err)
	suite.mockReconRepo.AssertNotCalled(suite.T(), "ApproveSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconServiceTestSuite))
}
