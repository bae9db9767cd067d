package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/you/authsvc/domain"
)

// AccountRepositoryImpl implements domain.AccountRepository using GORM
type AccountRepositoryImpl struct {
	db *gorm.DB
}

// DBAccount represents the database model for Account (with GORM tags).
// OTP expiries are stored as unix seconds; zero means no outstanding code.
type DBAccount struct {
	ID                 string `gorm:"primaryKey;size:36"`
	Name               string `gorm:"size:255"`
	Email              string `gorm:"uniqueIndex;size:255"`
	PasswordHash       string `gorm:"column:password"`
	Verified           bool   `gorm:"index"`
	VerifyOTP          string `gorm:"column:verify_otp;size:16"`
	VerifyOTPExpiresAt int64  `gorm:"column:verify_otp_expires_at"`
	ResetOTP           string `gorm:"column:reset_otp;size:16"`
	ResetOTPExpiresAt  int64  `gorm:"column:reset_otp_expires_at"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName returns the table name for GORM
func (DBAccount) TableName() string {
	return "accounts"
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) domain.AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

// Create implements domain.AccountRepository. A duplicate email surfaces as
// ErrAccountExists even when two registrations race past the service-level
// existence check.
func (r *AccountRepositoryImpl) Create(ctx context.Context, account *domain.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	dbAccount := r.domainToDB(account)
	if err := r.db.WithContext(ctx).Create(dbAccount).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAccountExists
		}
		return err
	}
	account.CreatedAt = dbAccount.CreatedAt
	account.UpdatedAt = dbAccount.UpdatedAt
	return nil
}

// FindByEmail implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var dbAccount DBAccount
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&dbAccount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbAccount), nil
}

// FindByID implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	var dbAccount DBAccount
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbAccount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbAccount), nil
}

// SetOTP implements domain.AccountRepository. A single UPDATE statement
// overwrites the purpose's slot, so an older outstanding code can never
// survive next to the new one.
func (r *AccountRepositoryImpl) SetOTP(ctx context.Context, accountID string, purpose domain.OTPPurpose, code string, expiresAt time.Time) error {
	codeCol, expCol, err := otpColumns(purpose)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&DBAccount{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{codeCol: code, expCol: expiresAt.Unix()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ConsumeOTP implements domain.AccountRepository. The conditional UPDATE is
// the compare-and-swap: it clears the slot only when the stored code matches
// and the expiry has not passed, so at most one concurrent caller wins.
func (r *AccountRepositoryImpl) ConsumeOTP(ctx context.Context, accountID string, purpose domain.OTPPurpose, code string, now time.Time) error {
	codeCol, expCol, err := otpColumns(purpose)
	if err != nil {
		return err
	}
	if code == "" {
		return domain.ErrOTPInvalidOrExpired
	}

	res := r.db.WithContext(ctx).Model(&DBAccount{}).
		Where("id = ? AND "+codeCol+" = ? AND "+expCol+" >= ?", accountID, code, now.Unix()).
		Updates(map[string]interface{}{codeCol: "", expCol: 0})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOTPInvalidOrExpired
	}
	return nil
}

// MarkVerified implements domain.AccountRepository. Verification is
// monotonic; there is no path back to unverified.
func (r *AccountRepositoryImpl) MarkVerified(ctx context.Context, accountID string) error {
	res := r.db.WithContext(ctx).Model(&DBAccount{}).
		Where("id = ?", accountID).
		Update("verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// UpdatePassword implements domain.AccountRepository
func (r *AccountRepositoryImpl) UpdatePassword(ctx context.Context, accountID string, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&DBAccount{}).
		Where("id = ?", accountID).
		Update("password", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func otpColumns(purpose domain.OTPPurpose) (codeCol, expCol string, err error) {
	switch purpose {
	case domain.OTPPurposeVerify:
		return "verify_otp", "verify_otp_expires_at", nil
	case domain.OTPPurposeReset:
		return "reset_otp", "reset_otp_expires_at", nil
	default:
		return "", "", errors.New("unknown otp purpose")
	}
}

// domainToDB converts a domain account to the database model
func (r *AccountRepositoryImpl) domainToDB(account *domain.Account) *DBAccount {
	return &DBAccount{
		ID:                 account.ID,
		Name:               account.Name,
		Email:              account.Email,
		PasswordHash:       account.PasswordHash,
		Verified:           account.Verified,
		VerifyOTP:          account.VerifyOTP,
		VerifyOTPExpiresAt: unixOrZero(account.VerifyOTPExpiresAt),
		ResetOTP:           account.ResetOTP,
		ResetOTPExpiresAt:  unixOrZero(account.ResetOTPExpiresAt),
	}
}

// dbToDomain converts a database account to the domain model
func (r *AccountRepositoryImpl) dbToDomain(dbAccount *DBAccount) *domain.Account {
	return &domain.Account{
		ID:                 dbAccount.ID,
		Name:               dbAccount.Name,
		Email:              dbAccount.Email,
		PasswordHash:       dbAccount.PasswordHash,
		Verified:           dbAccount.Verified,
		VerifyOTP:          dbAccount.VerifyOTP,
		VerifyOTPExpiresAt: timeOrZero(dbAccount.VerifyOTPExpiresAt),
		ResetOTP:           dbAccount.ResetOTP,
		ResetOTPExpiresAt:  timeOrZero(dbAccount.ResetOTPExpiresAt),
		CreatedAt:          dbAccount.CreatedAt,
		UpdatedAt:          dbAccount.UpdatedAt,
	}
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrZero(unix int64) time.Time {
	if unix == 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}
