package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultEmailCodeTTL = 15 * time.Minute
	CodeResetPrefix     = "email:code:reset"

	// two-phase keys: a code becomes usable only after the mail went out
	PendingSuffix   = "pending"
	ConfirmedSuffix = "confirmed"
	AttemptsSuffix  = "attempts"

	// MaxCodeAttempts wrong guesses burn the confirmed code.
	MaxCodeAttempts = 5
)

var (
	ErrEmailNotFound       = errors.New("email code not found")
	ErrEmailCodeDelFailed  = errors.New("email code delete failed")
	ErrCodePendingFailed   = errors.New("code pending failed")
	ErrCodeConfirmedFailed = errors.New("code confirmed failed")
)

// promoteScript moves the pending value to the confirmed key atomically.
var promoteScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then
  return 0
end
redis.call("SET", KEYS[2], val, "PX", ARGV[1])
redis.call("DEL", KEYS[1], KEYS[3])
return 1
`)

// missScript counts a wrong guess against the confirmed code. The counter
// expires together with the code; reaching the limit deletes both.
var missScript = redis.NewScript(`
local ttl = redis.call("PTTL", KEYS[1])
if ttl <= 0 then
  return -1
end
local n = redis.call("INCR", KEYS[2])
if n == 1 then
  redis.call("PEXPIRE", KEYS[2], ttl)
end
if n >= tonumber(ARGV[1]) then
  redis.call("DEL", KEYS[1], KEYS[2])
end
return n
`)

type EmailRepository struct {
	RDB *redis.Client
	TTL time.Duration
}

// CodeTTL is how long a reset code stays valid.
func (e *EmailRepository) CodeTTL() time.Duration {
	if e.TTL > 0 {
		return e.TTL
	}
	return DefaultEmailCodeTTL
}

func resetKey(suffix, email string) string {
	return fmt.Sprintf("%s:%s:%s", CodeResetPrefix, suffix, email)
}

// ResetEmailCodePending stores a code that is not yet valid.
func (e *EmailRepository) ResetEmailCodePending(ctx context.Context, email, code string) error {
	if err := e.RDB.Set(ctx, resetKey(PendingSuffix, email), code, e.CodeTTL()).Err(); err != nil {
		return ErrCodePendingFailed
	}
	return nil
}

// MarkCodeConfirmed turns the pending code into the usable one.
func (e *EmailRepository) MarkCodeConfirmed(ctx context.Context, email string) error {
	px := int64(e.CodeTTL() / time.Millisecond)
	keys := []string{resetKey(PendingSuffix, email), resetKey(ConfirmedSuffix, email), resetKey(AttemptsSuffix, email)}
	res, err := promoteScript.Run(ctx, e.RDB, keys, px).Int()
	if err != nil || res != 1 {
		return ErrCodeConfirmedFailed
	}
	return nil
}

// DeleteCodePending is idempotent.
func (e *EmailRepository) DeleteCodePending(ctx context.Context, email string) error {
	if err := e.RDB.Del(ctx, resetKey(PendingSuffix, email)).Err(); err != nil {
		return ErrEmailCodeDelFailed
	}
	return nil
}

func (e *EmailRepository) GetResetConfirmed(ctx context.Context, email string) (string, error) {
	val, err := e.RDB.Get(ctx, resetKey(ConfirmedSuffix, email)).Result()
	if err != nil {
		return "", ErrEmailNotFound
	}
	return val, nil
}

// RecordFailedAttempt returns how many wrong codes were tried against the
// current one, or 0 when no code is outstanding.
func (e *EmailRepository) RecordFailedAttempt(ctx context.Context, email string) (int, error) {
	keys := []string{resetKey(ConfirmedSuffix, email), resetKey(AttemptsSuffix, email)}
	n, err := missScript.Run(ctx, e.RDB, keys, MaxCodeAttempts).Int()
	if err != nil {
		return 0, fmt.Errorf("record code attempt: %w", err)
	}
	if n < 0 {
		return 0, nil
	}
	return n, nil
}

// DeleteResetConfirmed drops the code together with its attempt counter.
func (e *EmailRepository) DeleteResetConfirmed(ctx context.Context, email string) error {
	if err := e.RDB.Del(ctx, resetKey(ConfirmedSuffix, email), resetKey(AttemptsSuffix, email)).Err(); err != nil {
		return ErrEmailCodeDelFailed
	}
	return nil
}
