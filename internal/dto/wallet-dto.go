package dto

import (
	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/shopspring/decimal"
)

type PayoutRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
}

type AdjustmentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
}

type WalletResponse struct {
	ID                 uint            `json:"id"`
	UserID             uint            `json:"user_id"`
	Balance            decimal.Decimal `json:"balance"`
	OutstandingPayouts decimal.Decimal `json:"outstanding_payouts"`
	AvailableBalance   decimal.Decimal `json:"available_balance"`
}

type WalletAdminSummary struct {
	Wallet         WalletResponse             `json:"wallet"`
	PhoneNumber    string                     `json:"phone_number"`
	ShabaNumber    *string                    `json:"shaba_number,omitempty"`
	ActiveCashouts []domain.WalletTransaction `json:"active_cashouts"`
	ActiveTotal    decimal.Decimal            `json:"active_cashout_total"`
}
