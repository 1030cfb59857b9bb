// Package repository implements the persistence store on top of GORM.
package repository

import (
	"context"

	"snapshare/internal/models"
	"snapshare/internal/observability"

	"gorm.io/gorm"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)
	ListUsernamesByIDs(ctx context.Context, ids []uint) (map[uint]string, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns a new AccountRepository implementation.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts the account. The unique indexes on username and email are the
// authority on duplicates; a violation comes back as a DuplicateKeyError.
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	defer observability.TrackQuery("insert", "accounts")()

	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if isUniqueConstraintError(err) {
			field := violatedColumn(err, "username", "email")
			if field == "email" {
				return models.NewDuplicateKeyError("email", "Email already registered")
			}
			return models.NewDuplicateKeyError("username", "Username already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, notFoundOrInternal(err, "Account", id)
	}
	return &account, nil
}

// GetByUsername is an exact, case-sensitive match.
func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		return nil, notFoundOrInternal(err, "Account", username)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, notFoundOrInternal(err, "Account", email)
	}
	return &account, nil
}

// ExistsUsername is the cheap pre-check Register runs before hashing.
func (r *accountRepository) ExistsUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Account{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// ListUsernamesByIDs resolves display names for a set of account ids in one query.
func (r *accountRepository) ListUsernamesByIDs(ctx context.Context, ids []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	defer observability.TrackQuery("select", "accounts")()

	var rows []models.Account
	if err := r.db.WithContext(ctx).Select("id", "username").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, a := range rows {
		names[a.ID] = a.Username
	}
	return names, nil
}
