package services

import (
	"fmt"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"github.com/shopspring/decimal"
)

// The helpers below run inside an open transaction and expect the wallet row
// to be locked by the caller (lockWallet).

// BalanceOf is the balance implied by txns: confirmed-like earnings and
// adjustments minus confirmed-like payouts. Other statuses are ignored.
func BalanceOf(txns []domain.WalletTransaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range txns {
		if t.Status.ConfirmedLike() {
			balance = balance.Add(t.SignedAmount())
		}
	}
	return balance
}

func sumAmounts(txns []domain.WalletTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.Amount)
	}
	return total
}

// lockWallet returns the user's wallet, creating it if needed, with its row lock held.
func lockWallet(r *repository.Repositories, userID uint) (*domain.Wallet, error) {
	w, err := r.Wallets.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	return r.Wallets.LockByID(w.ID)
}

// refreshBalance recomputes the stored balance from the transaction log.
func refreshBalance(r *repository.Repositories, wallet *domain.Wallet) error {
	txns, err := r.Wallets.ListTransactions(wallet.ID, domain.ConfirmedLikeStatuses, 0, 0)
	if err != nil {
		return err
	}
	balance := BalanceOf(txns)
	if err := r.Wallets.UpdateBalance(wallet.ID, balance); err != nil {
		return err
	}
	wallet.Balance = balance
	return nil
}

func outstandingPayouts(r *repository.Repositories, walletID uint) (decimal.Decimal, error) {
	awaiting, err := r.Wallets.ListPayouts(walletID, domain.AwaitingApprovalStatuses, 0)
	if err != nil {
		return decimal.Zero, err
	}
	return sumAmounts(awaiting), nil
}

// creditTaskEarning books the confirmed earning for an approved task. A task
// is credited at most once per wallet.
func creditTaskEarning(r *repository.Repositories, task *domain.Task) (*domain.WalletTransaction, error) {
	wallet, err := lockWallet(r, *task.AssignedUserID)
	if err != nil {
		return nil, err
	}

	exists, err := r.Wallets.HasConfirmedEarning(wallet.ID, task.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrAlreadyProcessed
	}

	taskID := task.ID
	desc := fmt.Sprintf("Earning from task #%d", task.ID)
	earning := &domain.WalletTransaction{
		WalletID:      wallet.ID,
		Type:          domain.TransactionEarning,
		Amount:        task.Price,
		Status:        domain.TransactionConfirmed,
		RelatedTaskID: &taskID,
		Description:   &desc,
	}
	if err := r.Wallets.CreateTransaction(earning); err != nil {
		return nil, err
	}
	if err := refreshBalance(r, wallet); err != nil {
		return nil, err
	}
	return earning, nil
}

func validAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.Validationf("amount must be positive")
	}
	if !amount.Equal(amount.Round(2)) {
		return domain.Validationf("amount supports at most two decimal places")
	}
	return nil
}
