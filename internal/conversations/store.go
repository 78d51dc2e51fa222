package conversations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/pkg/cache"
)

const keyPrefix = "session:"

// store persists sessions as JSON in the cache. Every write refreshes the ttl
// and bumps the session revision. A generation claim older than lease is
// treated as abandoned and cleared before the next write.
type store struct {
	cache cache.System
	ttl   time.Duration
	lease time.Duration
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

func (st *store) create(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := st.cache.Set(ctx, key(s.ID), data, st.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (st *store) get(ctx context.Context, id uuid.UUID) (*Session, error) {
	data, err := st.cache.Get(ctx, key(id))
	if err != nil {
		return nil, mapCacheError(err)
	}
	return decode(data)
}

// update applies fn to the stored session under the cache's single-writer
// guarantee. fn may run more than once and must only mutate the session it
// is given. An error from fn leaves the stored session unchanged.
func (st *store) update(ctx context.Context, id uuid.UUID, now func() time.Time, fn func(*Session) error) (*Session, error) {
	var out *Session

	err := st.cache.Update(ctx, key(id), st.ttl, func(current []byte) ([]byte, error) {
		out = nil

		s, err := decode(current)
		if err != nil {
			return nil, err
		}

		at := now()
		if s.Generating != nil && at.Sub(*s.Generating) >= st.lease {
			s.Generating = nil
		}
		if err := fn(s); err != nil {
			return nil, err
		}
		s.Revision++
		s.UpdatedAt = at

		data, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("encode session: %w", err)
		}
		out = s
		return data, nil
	})
	if err != nil {
		return nil, mapCacheError(err)
	}
	return out, nil
}

func (st *store) delete(ctx context.Context, id uuid.UUID) error {
	return mapCacheError(st.cache.Delete(ctx, key(id)))
}

func decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Answers == nil {
		s.Answers = map[string]Answer{}
	}
	return &s, nil
}

func mapCacheError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cache.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, cache.ErrConflict):
		return ErrConflict
	}
	return err
}
