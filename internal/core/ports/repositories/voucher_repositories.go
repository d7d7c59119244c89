package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
)

// VoucherReader defines read operations for voucher data
type VoucherReader interface {
	// FindVoucherByID retrieves a voucher header by its unique identifier.
	FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// FindVoucherByIDForUpdate retrieves a voucher and locks its row within
	// a transaction. Serializes lifecycle transitions on the same voucher.
	FindVoucherByIDForUpdate(ctx context.Context, tx pgx.Tx, voucherID string) (*domain.Voucher, error)

	// FindLinesByVoucherID retrieves the ordered line entries of a voucher.
	FindLinesByVoucherID(ctx context.Context, voucherID string) ([]domain.LineEntry, error)

	// ListVouchers retrieves a token-paginated list of vouchers, optionally
	// filtered by status and type.
	ListVouchers(ctx context.Context, status *domain.VoucherStatus, voucherType *domain.VoucherType, limit int, nextToken *string) ([]domain.Voucher, *string, error)

	// ListDueAutoPostVouchers retrieves DRAFT vouchers flagged for automatic
	// posting whose effective date is on or before asOf.
	ListDueAutoPostVouchers(ctx context.Context, asOf time.Time) ([]domain.Voucher, error)
}

// VoucherWriter defines write operations for voucher data
type VoucherWriter interface {
	// SaveVoucher persists a new draft voucher with its line entries.
	SaveVoucher(ctx context.Context, voucher domain.Voucher, lines []domain.LineEntry) error

	// UpdateVoucher updates mutable header fields of a draft voucher.
	UpdateVoucher(ctx context.Context, voucher domain.Voucher) error

	// UpdateVoucherStatusInTx moves a voucher to a new status within the
	// given transaction, storing the optional reason.
	UpdateVoucherStatusInTx(ctx context.Context, tx pgx.Tx, voucherID string, status domain.VoucherStatus, reason string, userID string, now time.Time) error

	// DeleteVoucher removes a draft voucher and its lines.
	DeleteVoucher(ctx context.Context, voucherID string) error
}

// PostingReader defines read operations for ledger postings
type PostingReader interface {
	// FindPostingsByVoucherID retrieves the postings created by a voucher,
	// excluding reversal postings unless includeReversals is set.
	FindPostingsByVoucherID(ctx context.Context, voucherID string, includeReversals bool) ([]domain.LedgerPosting, error)

	// ListPostingsByAccount retrieves a token-paginated posting sequence for
	// an account within a date range, ordered by posting time.
	ListPostingsByAccount(ctx context.Context, accountID string, from, to time.Time, limit int, nextToken *string) ([]domain.LedgerPosting, *string, error)

	// SumPostingsForAccount sums the signed posting amounts for an account
	// up to the given timestamp. Used for as-of balance reconstruction.
	SumPostingsForAccount(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error)
}

// PostingWriter defines write operations for ledger postings
type PostingWriter interface {
	// InsertPostingsInTx appends immutable postings within the given
	// transaction. Postings are never updated or deleted afterwards.
	InsertPostingsInTx(ctx context.Context, tx pgx.Tx, postings []domain.LedgerPosting) error
}

// VoucherRepositoryFacade combines all voucher-related repository interfaces
type VoucherRepositoryFacade interface {
	VoucherReader
	VoucherWriter
	PostingReader
	PostingWriter
}

// VoucherRepositoryWithTx extends VoucherRepositoryFacade with transaction capabilities
type VoucherRepositoryWithTx interface {
	VoucherRepositoryFacade
	TransactionManager
}
