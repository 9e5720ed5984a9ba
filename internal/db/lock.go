package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrLockTimeout is returned when a lock could not be acquired in time.
var ErrLockTimeout = errors.New("timed out waiting for lock")

const (
	defaultLockTTL   = 30 * time.Second
	defaultLockWait  = 5 * time.Second
	minRetryInterval = 10 * time.Millisecond
	maxRetryInterval = 200 * time.Millisecond
)

// lockDocument is held in the bike_locks collection while a bike's bookings are being changed.
type lockDocument struct {
	ID        string    `bson:"_id"`
	Owner     string    `bson:"owner"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoBikeLocker is an advisory lock keyed by bike id, shared by every API instance.
// A lock left behind by a crashed holder is taken over once it expires.
type MongoBikeLocker struct {
	Collection *mongo.Collection
	TTL        time.Duration
	Wait       time.Duration
}

// Lock blocks until key is acquired, ctx ends or the wait budget runs out.
func (l *MongoBikeLocker) Lock(ctx context.Context, key string) (func(), error) {
	if l.Collection == nil {
		return nil, errNilCollection()
	}
	ttl := l.TTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	wait := l.Wait
	if wait <= 0 {
		wait = defaultLockWait
	}

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	owner := uuid.NewString()
	delay := minRetryInterval
	for {
		now := time.Now().UTC()
		_, err := l.Collection.InsertOne(ctx, lockDocument{
			ID:        key,
			Owner:     owner,
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
		})
		if err == nil {
			return l.release(key, owner), nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			if ctx.Err() != nil {
				return nil, ErrLockTimeout
			}
			return nil, err
		}

		res, err := l.Collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lte": now}})
		if err == nil && res.DeletedCount > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-time.After(delay):
		}
		if delay < maxRetryInterval {
			delay *= 2
		}
	}
}

func (l *MongoBikeLocker) release(key, owner string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = l.Collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner})
	}
}
