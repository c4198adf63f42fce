package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisMaxRetries = 4

// RedisStore persists accounts in Redis: one record key per account plus an
// email index key mapping the normalized address to the account ID. Both are
// written inside WATCH/MULTI transactions so email reservation is atomic
// with record creation and updates are version-checked.
type RedisStore struct {
	redis  *redis.Client
	prefix string
}

// NewRedisStore describes the newredisstore operation and its observable behavior.
//
// NewRedisStore may return an error when input validation, dependency calls, or security checks fail.
// NewRedisStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "acct"
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
	}
}

func (s *RedisStore) recordKey(id string) string {
	return s.prefix + ":id:" + id
}

func (s *RedisStore) emailKey(email string) string {
	return s.prefix + ":email:" + strings.ToLower(email)
}

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Create(ctx context.Context, acct *Account) error {
	if acct == nil || acct.ID == "" || acct.Email == "" {
		return errors.New("account record incomplete")
	}

	acct.Version = 1
	encoded, err := encodeRecord(acct)
	if err != nil {
		return err
	}

	emailKey := s.emailKey(acct.Email)
	recordKey := s.recordKey(acct.ID)

	for i := 0; i < redisMaxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			_, err := tx.Get(ctx, emailKey).Result()
			if err == nil {
				return ErrDuplicateEmail
			}
			if !errors.Is(err, redis.Nil) {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, emailKey, acct.ID, 0)
				pipe.Set(ctx, recordKey, encoded, 0)
				return nil
			})
			return err
		}, emailKey)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, ErrDuplicateEmail) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("%w: %v", ErrBackend, err)
		}
		return nil
	}

	return fmt.Errorf("%w: create transaction retries exhausted", ErrBackend)
}

// GetByID describes the getbyid operation and its observable behavior.
//
// GetByID may return an error when input validation, dependency calls, or security checks fail.
// GetByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) GetByID(ctx context.Context, id string) (*Account, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	data, err := s.redis.Get(ctx, s.recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}

	return decodeRecord(data)
}

// GetByEmail describes the getbyemail operation and its observable behavior.
//
// GetByEmail may return an error when input validation, dependency calls, or security checks fail.
// GetByEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	if email == "" {
		return nil, ErrNotFound
	}

	id, err := s.redis.Get(ctx, s.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}

	return s.GetByID(ctx, id)
}

// Update describes the update operation and its observable behavior.
//
// Update may return an error when input validation, dependency calls, or security checks fail.
// Update does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Update(ctx context.Context, acct *Account) error {
	if acct == nil || acct.ID == "" {
		return ErrNotFound
	}

	key := s.recordKey(acct.ID)

	err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}

		stored, err := decodeRecord(data)
		if err != nil {
			return err
		}
		if stored.Version != acct.Version {
			return ErrVersionConflict
		}

		next := acct.Clone()
		next.Version = acct.Version + 1
		encoded, err := encodeRecord(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		acct.Version++
		return nil
	case err == redis.TxFailedErr:
		// A concurrent writer advanced the record between read and commit.
		return ErrVersionConflict
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrVersionConflict):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
}
