package services

import (
	"context"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/helper"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"go.uber.org/zap"
)

const defaultPayoutDescription = "Wallet checkout request"

type WalletService interface {
	GetWallet(ctx context.Context, userID uint) (*dto.WalletResponse, error)
	Transactions(ctx context.Context, userID uint, limit, offset int) ([]domain.WalletTransaction, error)
	// RequestPayout records a payout request. It does not move the balance.
	RequestPayout(ctx context.Context, userID uint, input dto.PayoutRequest) (*domain.WalletTransaction, error)

	// Admin
	ApprovePayout(ctx context.Context, actor Identity, txnID uint) (*domain.WalletTransaction, error)
	CompletePayout(ctx context.Context, actor Identity, txnID uint) (*domain.WalletTransaction, error)
	DenyPayout(ctx context.Context, actor Identity, txnID uint) (*domain.WalletTransaction, error)
	ListPayouts(ctx context.Context, actor Identity, status string, limit, offset int) ([]domain.WalletTransaction, error)
	Adjust(ctx context.Context, actor Identity, userID uint, input dto.AdjustmentRequest) (*domain.WalletTransaction, error)
	Recompute(ctx context.Context, actor Identity, userID uint) (*dto.WalletResponse, error)
	AdminSummary(ctx context.Context, actor Identity, userID uint) (*dto.WalletAdminSummary, error)
}

type walletService struct {
	base
}

func NewWalletService(d Deps) WalletService {
	return &walletService{base: newBase(d, "wallet")}
}

func (s *walletService) GetWallet(ctx context.Context, userID uint) (*dto.WalletResponse, error) {
	var resp *dto.WalletResponse
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		if _, err := r.Users.FindByID(userID); err != nil {
			return err
		}
		var err error
		resp, err = s.snapshot(r, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// snapshot reconciles the wallet and reports its balances.
func (s *walletService) snapshot(r *repository.Repositories, userID uint) (*dto.WalletResponse, error) {
	wallet, err := lockWallet(r, userID)
	if err != nil {
		return nil, err
	}
	if err := refreshBalance(r, wallet); err != nil {
		return nil, err
	}
	outstanding, err := outstandingPayouts(r, wallet.ID)
	if err != nil {
		return nil, err
	}
	return &dto.WalletResponse{
		ID:                 wallet.ID,
		UserID:             wallet.UserID,
		Balance:            wallet.Balance,
		OutstandingPayouts: outstanding,
		AvailableBalance:   wallet.Balance.Sub(outstanding),
	}, nil
}

func (s *walletService) Transactions(ctx context.Context, userID uint, limit, offset int) ([]domain.WalletTransaction, error) {
	r := s.store.Repos(ctx)
	wallet, err := r.Wallets.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	return r.Wallets.ListTransactions(wallet.ID, nil, limit, offset)
}

func (s *walletService) RequestPayout(ctx context.Context, userID uint, input dto.PayoutRequest) (*domain.WalletTransaction, error) {
	if err := validAmount(input.Amount); err != nil {
		return nil, err
	}

	desc := helper.TrimPtr(input.Description)
	if desc == nil {
		d := defaultPayoutDescription
		desc = &d
	}

	var payout *domain.WalletTransaction
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		if _, err := r.Users.FindByID(userID); err != nil {
			return err
		}
		wallet, err := lockWallet(r, userID)
		if err != nil {
			return err
		}
		if err := refreshBalance(r, wallet); err != nil {
			return err
		}
		outstanding, err := outstandingPayouts(r, wallet.ID)
		if err != nil {
			return err
		}
		if input.Amount.GreaterThan(wallet.Balance.Sub(outstanding)) {
			return domain.ErrInsufficientBalance
		}

		payout = &domain.WalletTransaction{
			WalletID:    wallet.ID,
			Type:        domain.TransactionPayout,
			Amount:      input.Amount,
			Status:      domain.TransactionRequested,
			Description: desc,
		}
		return r.Wallets.CreateTransaction(payout)
	})
	s.metrics.ledgerOp("payout_request", err)
	if err != nil {
		return nil, err
	}

	s.events.publish(Event{Type: EventPayoutRequested, ActorID: actorRef(userID), Entity: "wallet_transaction", EntityID: payout.ID, Note: payout.Amount.String(), OccurredAt: s.clock.Now()})
	return payout, nil
}

// ApprovePayout sends an awaiting payout to the bank. The balance must cover
// it after reserving every awaiting payout of the wallet requested earlier.
func (s *walletService) ApprovePayout(ctx context.Context, actor Identity, txnID uint) (*domain.WalletTransaction, error) {
	if err := requirePermission(actor, domain.PermissionManageWallets); err != nil {
		return nil, err
	}

	var payout *domain.WalletTransaction
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		wallet, txn, err := s.lockPayout(r, txnID)
		if err != nil {
			return err
		}
		if !txn.Status.In(domain.AwaitingApprovalStatuses) {
			return domain.Conflictf("payout is %s, not awaiting approval", txn.Status)
		}

		if err := refreshBalance(r, wallet); err != nil {
			return err
		}
		earlier, err := r.Wallets.ListPayouts(wallet.ID, domain.AwaitingApprovalStatuses, txn.ID)
		if err != nil {
			return err
		}
		available := wallet.Balance.Sub(sumAmounts(earlier))
		if txn.Amount.GreaterThan(available) {
			s.log.Info("payout approval exceeds available balance",
				zap.Uint("transaction_id", txn.ID),
				zap.String("amount", txn.Amount.String()),
				zap.String("available", available.String()),
			)
			return domain.ErrInsufficientBalance
		}

		payout, err = s.transition(r, wallet, txn, domain.AwaitingApprovalStatuses, domain.TransactionSentToBank)
		return err
	})
	s.metrics.ledgerOp("payout_approve", err)
	if err != nil {
		return nil, err
	}

	s.events.publish(Event{Type: EventPayoutApproved, ActorID: actorRef(actor.UserID), Entity: "wallet_transaction", EntityID: payout.ID, OccurredAt: s.clock.Now()})
	return payout, nil
}

func (s *walletService) CompletePayout(ctx context.Context, actor Identity, txnID uint) (*domain.WalletTransaction, error) {
	payout, err := s.settle(ctx, actor, txnID,
		[]domain.TransactionStatus{domain.TransactionSentToBank}, domain.TransactionPaid)
	s.metrics.ledgerOp("payout_complete", err)
	if err != nil {
		return nil, err
	}
	s.events.publish(Event{Type: EventPayoutPaid, ActorID: actorRef(actor.UserID), Entity: "wallet_transaction", EntityID: payout.ID, OccurredAt: s.clock.Now()})
	return payout, nil
}

// DenyPayout cancels a payout. Denied payouts leave the balance.
func (s *walletService) DenyPayout(ctx context.Context, actor Identity, txnID uint) (*domain.WalletTransaction, error) {
	payout, err := s.settle(ctx, actor, txnID,
		[]domain.TransactionStatus{domain.TransactionRequested, domain.TransactionSentToBank}, domain.TransactionDenied)
	s.metrics.ledgerOp("payout_deny", err)
	if err != nil {
		return nil, err
	}
	s.events.publish(Event{Type: EventPayoutDenied, ActorID: actorRef(actor.UserID), Entity: "wallet_transaction", EntityID: payout.ID, OccurredAt: s.clock.Now()})
	return payout, nil
}

func (s *walletService) settle(ctx context.Context, actor Identity, txnID uint, from []domain.TransactionStatus, to domain.TransactionStatus) (*domain.WalletTransaction, error) {
	if err := requirePermission(actor, domain.PermissionManageWallets); err != nil {
		return nil, err
	}

	var payout *domain.WalletTransaction
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		wallet, txn, err := s.lockPayout(r, txnID)
		if err != nil {
			return err
		}
		if !txn.Status.In(from) {
			return domain.Conflictf("payout is %s, cannot move to %s", txn.Status, to)
		}
		payout, err = s.transition(r, wallet, txn, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payout, nil
}

// lockPayout locks the payout's wallet, then re-reads the payout so its
// status cannot change underneath the caller.
func (s *walletService) lockPayout(r *repository.Repositories, txnID uint) (*domain.Wallet, *domain.WalletTransaction, error) {
	txn, err := r.Wallets.FindTransactionByID(txnID)
	if err != nil {
		return nil, nil, err
	}
	if txn.Type != domain.TransactionPayout {
		return nil, nil, domain.Validationf("transaction %d is not a payout", txn.ID)
	}
	wallet, err := r.Wallets.LockByID(txn.WalletID)
	if err != nil {
		return nil, nil, err
	}
	txn, err = r.Wallets.FindTransactionByID(txnID)
	if err != nil {
		return nil, nil, err
	}
	return wallet, txn, nil
}

func (s *walletService) transition(r *repository.Repositories, wallet *domain.Wallet, txn *domain.WalletTransaction, from []domain.TransactionStatus, to domain.TransactionStatus) (*domain.WalletTransaction, error) {
	ok, err := r.Wallets.TransitionStatus(txn.ID, from, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Conflictf("payout %d changed concurrently", txn.ID)
	}
	if err := refreshBalance(r, wallet); err != nil {
		return nil, err
	}
	return r.Wallets.FindTransactionByID(txn.ID)
}

func (s *walletService) ListPayouts(ctx context.Context, actor Identity, status string, limit, offset int) ([]domain.WalletTransaction, error) {
	if err := requirePermission(actor, domain.PermissionManageWallets); err != nil {
		return nil, err
	}
	statuses := domain.ActiveCashoutStatuses
	if status != "" {
		statuses = []domain.TransactionStatus{domain.TransactionStatus(status)}
	}
	return s.store.Repos(ctx).Wallets.ListByType(domain.TransactionPayout, statuses, limit, offset)
}

// Adjust books a confirmed credit to the user's wallet.
func (s *walletService) Adjust(ctx context.Context, actor Identity, userID uint, input dto.AdjustmentRequest) (*domain.WalletTransaction, error) {
	if err := requirePermission(actor, domain.PermissionManageWallets); err != nil {
		return nil, err
	}
	if err := validAmount(input.Amount); err != nil {
		return nil, err
	}

	var adj *domain.WalletTransaction
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		if _, err := r.Users.FindByID(userID); err != nil {
			return err
		}
		wallet, err := lockWallet(r, userID)
		if err != nil {
			return err
		}
		adj = &domain.WalletTransaction{
			WalletID:    wallet.ID,
			Type:        domain.TransactionAdjustment,
			Amount:      input.Amount,
			Status:      domain.TransactionConfirmed,
			Description: helper.TrimPtr(input.Description),
		}
		if err := r.Wallets.CreateTransaction(adj); err != nil {
			return err
		}
		return refreshBalance(r, wallet)
	})
	s.metrics.ledgerOp("adjustment", err)
	if err != nil {
		return nil, err
	}

	s.events.publish(Event{Type: EventWalletAdjusted, ActorID: actorRef(actor.UserID), Entity: "wallet_transaction", EntityID: adj.ID, Note: adj.Amount.String(), OccurredAt: s.clock.Now()})
	return adj, nil
}

func (s *walletService) Recompute(ctx context.Context, actor Identity, userID uint) (*dto.WalletResponse, error) {
	if err := requirePermission(actor, domain.PermissionManageWallets); err != nil {
		return nil, err
	}
	return s.GetWallet(ctx, userID)
}

func (s *walletService) AdminSummary(ctx context.Context, actor Identity, userID uint) (*dto.WalletAdminSummary, error) {
	if err := requirePermission(actor, domain.PermissionManageWallets); err != nil {
		return nil, err
	}

	var summary *dto.WalletAdminSummary
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		user, err := r.Users.FindByID(userID)
		if err != nil {
			return err
		}
		snap, err := s.snapshot(r, userID)
		if err != nil {
			return err
		}
		active, err := r.Wallets.ListPayouts(snap.ID, domain.ActiveCashoutStatuses, 0)
		if err != nil {
			return err
		}
		if active == nil {
			active = []domain.WalletTransaction{}
		}

		summary = &dto.WalletAdminSummary{
			Wallet:         *snap,
			PhoneNumber:    user.PhoneNumber,
			ShabaNumber:    user.ShabaNumber,
			ActiveCashouts: active,
			ActiveTotal:    sumAmounts(active),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
