package services

import (
	"context"
	"time"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
	"github.com/vyaparbooks/ledger_core_app/internal/dto"
)

// VoucherReaderSvc defines read operations for vouchers
type VoucherReaderSvc interface {
	// GetVoucherByID retrieves a voucher with its line entries.
	GetVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// ListVouchers retrieves a filtered, token-paginated list of vouchers.
	ListVouchers(ctx context.Context, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error)
}

// VoucherWriterSvc defines create/update/delete operations for draft vouchers
type VoucherWriterSvc interface {
	// CreateVoucher validates and persists a new draft voucher.
	CreateVoucher(ctx context.Context, req dto.CreateVoucherRequest, creatorUserID string) (*domain.Voucher, error)

	// UpdateVoucher updates mutable header fields while the voucher is a draft.
	UpdateVoucher(ctx context.Context, voucherID string, req dto.UpdateVoucherRequest, userID string) (*domain.Voucher, error)

	// DeleteVoucher removes a voucher; permitted only in draft.
	DeleteVoucher(ctx context.Context, voucherID string, userID string) error
}

// VoucherLifecycleSvc defines the lifecycle transitions of a voucher
type VoucherLifecycleSvc interface {
	// PostVoucher transitions a draft or provisional voucher to posted,
	// applying its ledger effect atomically. Safe to retry.
	PostVoucher(ctx context.Context, voucherID string, allowFuture bool, userID string) (*domain.Voucher, error)

	// CancelVoucher transitions a posted voucher to cancelled by appending
	// the exact negation of its postings. Safe to retry.
	CancelVoucher(ctx context.Context, voucherID string, reason string, userID string) (*domain.Voucher, error)

	// SchedulePostdated defers a draft voucher's ledger effect to a future
	// effective date.
	SchedulePostdated(ctx context.Context, voucherID string, req dto.SchedulePostdatedRequest, userID string) (*domain.Voucher, error)

	// MarkProvisional excludes a draft voucher from the ledger until confirmed.
	MarkProvisional(ctx context.Context, voucherID string, reason string, userID string) (*domain.Voucher, error)

	// ConfirmProvisional posts a provisional voucher through the normal
	// posting path and clears the provisional flag.
	ConfirmProvisional(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error)

	// RejectProvisional returns a provisional voucher to draft.
	RejectProvisional(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error)
}

// VoucherSvcFacade combines all voucher-related service interfaces
type VoucherSvcFacade interface {
	VoucherReaderSvc
	VoucherWriterSvc
	VoucherLifecycleSvc
}

// PostingRunSvc runs the scheduled posting batch for due post-dated vouchers.
type PostingRunSvc interface {
	// ProcessDuePostdated posts every auto-post draft voucher due on or
	// before asOf, one voucher per commit, accumulating per-item errors.
	ProcessDuePostdated(ctx context.Context, asOf time.Time) (*domain.PostingRunReport, error)
}
