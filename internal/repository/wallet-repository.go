package repository

import (
	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletRepository interface {
	GetOrCreate(userID uint) (*domain.Wallet, error)
	FindByUserID(userID uint) (*domain.Wallet, error)
	// LockByID loads the wallet row and, on Postgres, holds its row lock
	// until the surrounding transaction ends.
	LockByID(walletID uint) (*domain.Wallet, error)
	List(limit, offset int) ([]domain.Wallet, error)
	UpdateBalance(walletID uint, balance decimal.Decimal) error

	CreateTransaction(txn *domain.WalletTransaction) error
	FindTransactionByID(txnID uint) (*domain.WalletTransaction, error)
	ListTransactions(walletID uint, statuses []domain.TransactionStatus, limit, offset int) ([]domain.WalletTransaction, error)
	// ListPayouts returns payouts of the wallet in statuses, optionally only
	// those created before beforeID.
	ListPayouts(walletID uint, statuses []domain.TransactionStatus, beforeID uint) ([]domain.WalletTransaction, error)
	ListByType(txType domain.TransactionType, statuses []domain.TransactionStatus, limit, offset int) ([]domain.WalletTransaction, error)
	// TransitionStatus moves the transaction to `to` only if its current
	// status is in from.
	TransitionStatus(txnID uint, from []domain.TransactionStatus, to domain.TransactionStatus) (bool, error)
	HasConfirmedEarning(walletID, taskID uint) (bool, error)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (w *walletRepository) GetOrCreate(userID uint) (*domain.Wallet, error) {
	wallet := &domain.Wallet{UserID: userID, Balance: decimal.Zero}
	res := w.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(wallet)
	if res.Error != nil && !IsUniqueViolation(res.Error) {
		return nil, res.Error
	}
	if res.Error == nil && res.RowsAffected == 1 {
		return wallet, nil
	}
	return w.FindByUserID(userID)
}

func (w *walletRepository) FindByUserID(userID uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := w.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, notFound(err, domain.ErrWalletNotFound)
	}
	return &wallet, nil
}

func (w *walletRepository) LockByID(walletID uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := forUpdate(w.db).First(&wallet, walletID).Error; err != nil {
		return nil, notFound(err, domain.ErrWalletNotFound)
	}
	return &wallet, nil
}

func (w *walletRepository) List(limit, offset int) ([]domain.Wallet, error) {
	var wallets []domain.Wallet
	if err := paginate(w.db.Order("id ASC"), limit, offset).Find(&wallets).Error; err != nil {
		return nil, err
	}
	return wallets, nil
}

func (w *walletRepository) UpdateBalance(walletID uint, balance decimal.Decimal) error {
	return w.db.Model(&domain.Wallet{}).Where("id = ?", walletID).Update("balance", balance).Error
}

func (w *walletRepository) CreateTransaction(txn *domain.WalletTransaction) error {
	err := w.db.Create(txn).Error
	if IsUniqueViolation(err) {
		return domain.ErrAlreadyProcessed
	}
	return err
}

func (w *walletRepository) FindTransactionByID(txnID uint) (*domain.WalletTransaction, error) {
	var txn domain.WalletTransaction
	if err := w.db.First(&txn, txnID).Error; err != nil {
		return nil, notFound(err, domain.ErrTransactionNotFound)
	}
	return &txn, nil
}

func (w *walletRepository) ListTransactions(walletID uint, statuses []domain.TransactionStatus, limit, offset int) ([]domain.WalletTransaction, error) {
	q := w.db.Where("wallet_id = ?", walletID).Order("id DESC")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var txns []domain.WalletTransaction
	if err := paginate(q, limit, offset).Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (w *walletRepository) ListPayouts(walletID uint, statuses []domain.TransactionStatus, beforeID uint) ([]domain.WalletTransaction, error) {
	q := w.db.Where("wallet_id = ? AND type = ? AND status IN ?", walletID, domain.TransactionPayout, statuses)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}

	var txns []domain.WalletTransaction
	if err := q.Order("id ASC").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (w *walletRepository) ListByType(txType domain.TransactionType, statuses []domain.TransactionStatus, limit, offset int) ([]domain.WalletTransaction, error) {
	q := w.db.Where("type = ?", txType).Order("id ASC")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var txns []domain.WalletTransaction
	if err := paginate(q, limit, offset).Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (w *walletRepository) TransitionStatus(txnID uint, from []domain.TransactionStatus, to domain.TransactionStatus) (bool, error) {
	res := w.db.Model(&domain.WalletTransaction{}).
		Where("id = ? AND status IN ?", txnID, from).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

func (w *walletRepository) HasConfirmedEarning(walletID, taskID uint) (bool, error) {
	var count int64
	err := w.db.Model(&domain.WalletTransaction{}).
		Where("wallet_id = ? AND related_task_id = ? AND type = ? AND status = ?",
			walletID, taskID, domain.TransactionEarning, domain.TransactionConfirmed).
		Count(&count).Error
	return count > 0, err
}
