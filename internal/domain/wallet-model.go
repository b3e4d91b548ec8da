package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionEarning    TransactionType = "earning"
	TransactionPayout     TransactionType = "payout"
	TransactionAdjustment TransactionType = "adjustment"
)

type TransactionStatus string

const (
	TransactionRequested  TransactionStatus = "requested"
	TransactionPending    TransactionStatus = "pending"
	TransactionConfirmed  TransactionStatus = "confirmed"
	TransactionCanceled   TransactionStatus = "canceled"
	TransactionInProgress TransactionStatus = "in_progress"
	TransactionSentToBank TransactionStatus = "sent_to_bank"
	TransactionPaid       TransactionStatus = "paid"
	TransactionDenied     TransactionStatus = "denied"
)

var (
	// ConfirmedLikeStatuses are the statuses counted in a wallet balance.
	ConfirmedLikeStatuses = []TransactionStatus{
		TransactionConfirmed, TransactionInProgress, TransactionSentToBank, TransactionPaid,
	}
	// AwaitingApprovalStatuses are payouts an admin has not acted on yet.
	AwaitingApprovalStatuses = []TransactionStatus{TransactionRequested, TransactionPending}
	// ActiveCashoutStatuses are payouts not yet settled either way.
	ActiveCashoutStatuses = []TransactionStatus{TransactionRequested, TransactionPending, TransactionSentToBank}
)

func (s TransactionStatus) In(set []TransactionStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func (s TransactionStatus) ConfirmedLike() bool {
	return s.In(ConfirmedLikeStatuses)
}

type Wallet struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;uniqueIndex" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// WalletTransaction amounts are always positive; direction comes from Type.
type WalletTransaction struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	WalletID      uint              `gorm:"not null;index" json:"wallet_id"`
	Type          TransactionType   `gorm:"type:varchar(20);not null" json:"type"`
	Amount        decimal.Decimal   `gorm:"type:numeric(18,2);not null" json:"amount"`
	Status        TransactionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	RelatedTaskID *uint             `gorm:"index" json:"related_task_id,omitempty"`
	Description   *string           `gorm:"type:text" json:"description,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// SignedAmount is the contribution of t to the balance if it is confirmed-like.
func (t WalletTransaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionPayout {
		return t.Amount.Neg()
	}
	return t.Amount
}
