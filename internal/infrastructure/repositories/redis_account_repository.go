package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/you/authsvc/domain"
)

// consumeRetries bounds the optimistic-lock retry loop when concurrent
// writers keep touching the same account key.
const consumeRetries = 5

// RedisAccountRepositoryImpl implements domain.AccountRepository using Redis.
// Accounts live as JSON at account:{id}; account:email:{email} indexes the id.
// OTP mutations run inside WATCH/MULTI transactions so the read-modify-write
// on an account's slots is a compare-and-swap.
type RedisAccountRepositoryImpl struct {
	client *redis.Client
	prefix string
}

type redisAccount struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"password"`
	Verified           bool      `json:"verified"`
	VerifyOTP          string    `json:"verify_otp"`
	VerifyOTPExpiresAt int64     `json:"verify_otp_expires_at"`
	ResetOTP           string    `json:"reset_otp"`
	ResetOTPExpiresAt  int64     `json:"reset_otp_expires_at"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewRedisAccountRepository creates a new Redis-backed account repository
func NewRedisAccountRepository(client *redis.Client) domain.AccountRepository {
	return &RedisAccountRepositoryImpl{client: client, prefix: "account:"}
}

func (r *RedisAccountRepositoryImpl) accountKey(id string) string {
	return r.prefix + id
}

func (r *RedisAccountRepositoryImpl) emailKey(email string) string {
	return r.prefix + "email:" + email
}

// Create implements domain.AccountRepository. The email index is claimed
// with SETNX first, so two racing registrations for one email cannot both
// succeed.
func (r *RedisAccountRepositoryImpl) Create(ctx context.Context, account *domain.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	claimed, err := r.client.SetNX(ctx, r.emailKey(account.Email), account.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to claim email index: %w", err)
	}
	if !claimed {
		return domain.ErrAccountExists
	}

	data, err := json.Marshal(r.domainToStored(account))
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	if err := r.client.Set(ctx, r.accountKey(account.ID), data, 0).Err(); err != nil {
		// Release the index so the email is not orphaned.
		r.client.Del(ctx, r.emailKey(account.Email))
		return err
	}
	return nil
}

// FindByEmail implements domain.AccountRepository
func (r *RedisAccountRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	id, err := r.client.Get(ctx, r.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByID implements domain.AccountRepository
func (r *RedisAccountRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	data, err := r.client.Get(ctx, r.accountKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	var stored redisAccount
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return r.storedToDomain(&stored), nil
}

// SetOTP implements domain.AccountRepository
func (r *RedisAccountRepositoryImpl) SetOTP(ctx context.Context, accountID string, purpose domain.OTPPurpose, code string, expiresAt time.Time) error {
	return r.update(ctx, accountID, func(stored *redisAccount) error {
		switch purpose {
		case domain.OTPPurposeVerify:
			stored.VerifyOTP = code
			stored.VerifyOTPExpiresAt = expiresAt.Unix()
		case domain.OTPPurposeReset:
			stored.ResetOTP = code
			stored.ResetOTPExpiresAt = expiresAt.Unix()
		default:
			return errors.New("unknown otp purpose")
		}
		return nil
	})
}

// ConsumeOTP implements domain.AccountRepository
func (r *RedisAccountRepositoryImpl) ConsumeOTP(ctx context.Context, accountID string, purpose domain.OTPPurpose, code string, now time.Time) error {
	if code == "" {
		return domain.ErrOTPInvalidOrExpired
	}
	return r.update(ctx, accountID, func(stored *redisAccount) error {
		var storedCode string
		var storedExp int64
		switch purpose {
		case domain.OTPPurposeVerify:
			storedCode, storedExp = stored.VerifyOTP, stored.VerifyOTPExpiresAt
		case domain.OTPPurposeReset:
			storedCode, storedExp = stored.ResetOTP, stored.ResetOTPExpiresAt
		default:
			return errors.New("unknown otp purpose")
		}

		if storedCode == "" || storedCode != code || storedExp < now.Unix() {
			return domain.ErrOTPInvalidOrExpired
		}

		if purpose == domain.OTPPurposeVerify {
			stored.VerifyOTP = ""
			stored.VerifyOTPExpiresAt = 0
		} else {
			stored.ResetOTP = ""
			stored.ResetOTPExpiresAt = 0
		}
		return nil
	})
}

// MarkVerified implements domain.AccountRepository
func (r *RedisAccountRepositoryImpl) MarkVerified(ctx context.Context, accountID string) error {
	return r.update(ctx, accountID, func(stored *redisAccount) error {
		stored.Verified = true
		return nil
	})
}

// UpdatePassword implements domain.AccountRepository
func (r *RedisAccountRepositoryImpl) UpdatePassword(ctx context.Context, accountID string, passwordHash string) error {
	return r.update(ctx, accountID, func(stored *redisAccount) error {
		stored.PasswordHash = passwordHash
		return nil
	})
}

// update runs mutate inside a WATCH/MULTI transaction on the account key.
// If another writer modifies the key between the read and the EXEC, the
// transaction fails and is retried from a fresh read.
func (r *RedisAccountRepositoryImpl) update(ctx context.Context, accountID string, mutate func(*redisAccount) error) error {
	key := r.accountKey(accountID)

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.ErrAccountNotFound
			}
			return err
		}

		var stored redisAccount
		if err := json.Unmarshal([]byte(data), &stored); err != nil {
			return fmt.Errorf("failed to unmarshal account: %w", err)
		}

		if err := mutate(&stored); err != nil {
			return err
		}
		stored.UpdatedAt = time.Now()

		updated, err := json.Marshal(&stored)
		if err != nil {
			return fmt.Errorf("failed to marshal account: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for i := 0; i < consumeRetries; i++ {
		err := r.client.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("account update contended: %w", redis.TxFailedErr)
}

func (r *RedisAccountRepositoryImpl) domainToStored(account *domain.Account) *redisAccount {
	return &redisAccount{
		ID:                 account.ID,
		Name:               account.Name,
		Email:              account.Email,
		PasswordHash:       account.PasswordHash,
		Verified:           account.Verified,
		VerifyOTP:          account.VerifyOTP,
		VerifyOTPExpiresAt: unixOrZero(account.VerifyOTPExpiresAt),
		ResetOTP:           account.ResetOTP,
		ResetOTPExpiresAt:  unixOrZero(account.ResetOTPExpiresAt),
		CreatedAt:          account.CreatedAt,
		UpdatedAt:          account.UpdatedAt,
	}
}

func (r *RedisAccountRepositoryImpl) storedToDomain(stored *redisAccount) *domain.Account {
	return &domain.Account{
		ID:                 stored.ID,
		Name:               stored.Name,
		Email:              stored.Email,
		PasswordHash:       stored.PasswordHash,
		Verified:           stored.Verified,
		VerifyOTP:          stored.VerifyOTP,
		VerifyOTPExpiresAt: timeOrZero(stored.VerifyOTPExpiresAt),
		ResetOTP:           stored.ResetOTP,
		ResetOTPExpiresAt:  timeOrZero(stored.ResetOTPExpiresAt),
		CreatedAt:          stored.CreatedAt,
		UpdatedAt:          stored.UpdatedAt,
	}
}
