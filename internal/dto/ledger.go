package dto

import (
	"time"

	"github.com/vyaparbooks/ledger_core_app/internal/core/domain"
)

// AccountHistoryParams bounds an account statement query. The token resumes
// a previous page, making the sequence lazy and restartable.
type AccountHistoryParams struct {
	From      time.Time `form:"from" time_format:"2006-01-02"`
	To        time.Time `form:"to" time_format:"2006-01-02"`
	Limit     int       `form:"limit"`
	NextToken *string   `form:"nextToken"`
}

// AccountHistoryResponse is one page of an account's posting history.
type AccountHistoryResponse struct {
	AccountID string                 `json:"accountID"`
	Postings  []domain.LedgerPosting `json:"postings"`
	NextToken *string                `json:"nextToken,omitempty"`
}
