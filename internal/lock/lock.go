package redlock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker serializes matching runs. Two uploads racing for the same
// driver must not interleave their deactivate-then-insert sequences,
// so every run takes the driver's lock before computing.
type Locker struct {
	client redis.UniversalClient
	key    string
	value  string // only the lock holder can unlock
}

func NewLocker(client redis.UniversalClient, key, value string) *Locker {
	return &Locker{
		client: client,
		key:    key,
		value:  value,
	}
}

// ForDriver returns a locker scoped to a single driver's matching runs.
// Runs for different drivers use different keys and never contend.
func ForDriver(client redis.UniversalClient, driverID, holder string) *Locker {
	return NewLocker(client, fmt.Sprintf("fuelmatch:driver:%s", driverID), holder)
}

func (l *Locker) Lock(ctx context.Context, timeout time.Duration) error {
	success, err := l.client.SetNX(ctx, l.key, l.value, timeout).Result()
	if err != nil {
		return err
	}
	if !success {
		return fmt.Errorf("lock for key %s is already held", l.key)
	}
	return nil
}

func (l *Locker) Unlock(ctx context.Context) error {
	script := "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end"
	result, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	if err != nil {
		return err
	}
	if result == int64(0) {
		return fmt.Errorf("unlock failed, either lock expired or you're not the lock holder for key %s", l.key)
	}
	return nil
}

