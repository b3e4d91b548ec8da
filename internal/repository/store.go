package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repositories bundles every repository bound to the same *gorm.DB, which is
// either the root connection or an open transaction.
type Repositories struct {
	Users      UserRepository
	KYC        KYCRepository
	Media      MediaRepository
	Tasks      TaskRepository
	Wallets    WalletRepository
	OTPs       OTPRepository
	Roles      RoleRepository
	Businesses BusinessRepository
	Audit      AuditRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		KYC:        NewKYCRepository(db),
		Media:      NewMediaRepository(db),
		Tasks:      NewTaskRepository(db),
		Wallets:    NewWalletRepository(db),
		OTPs:       NewOTPRepository(db),
		Roles:      NewRoleRepository(db),
		Businesses: NewBusinessRepository(db),
		Audit:      NewAuditRepository(db),
	}
}

// Store hands out repositories and runs units of work atomically.
type Store interface {
	Repos(ctx context.Context) *Repositories
	// Atomic runs fn inside one database transaction. fn must only use the
	// repositories it is given.
	Atomic(ctx context.Context, fn func(r *Repositories) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Repos(ctx context.Context) *Repositories {
	return NewRepositories(s.db.WithContext(ctx))
}

func (s *gormStore) Atomic(ctx context.Context, fn func(r *Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// forUpdate adds SELECT ... FOR UPDATE where the dialect supports row locks.
// SQLite serialises writers on its own.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// IsUniqueViolation reports whether err came from a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error, kind error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return kind
	}
	return err
}

func paginate(db *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	return db
}
