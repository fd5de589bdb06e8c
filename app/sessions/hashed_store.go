package sessions

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/alexedwards/scs/v2"
)

// HashedStore keys the wrapped store by HMAC-SHA256(secret, token), so
// whoever reads the session store sees digests, never usable tokens.
type HashedStore struct {
	inner  scs.Store
	secret []byte
}

func NewHashedStore(inner scs.Store, secret []byte) *HashedStore {
	return &HashedStore{inner: inner, secret: secret}
}

func (s *HashedStore) key(token string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *HashedStore) Find(token string) ([]byte, bool, error) {
	return s.inner.Find(s.key(token))
}

func (s *HashedStore) Commit(token string, b []byte, expiry time.Time) error {
	return s.inner.Commit(s.key(token), b, expiry)
}

func (s *HashedStore) Delete(token string) error {
	return s.inner.Delete(s.key(token))
}

// FindCtx, CommitCtx and DeleteCtx hand the request context to the inner
// store when it accepts one.
func (s *HashedStore) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	if cs, ok := s.inner.(scs.CtxStore); ok {
		return cs.FindCtx(ctx, s.key(token))
	}
	return s.Find(token)
}

func (s *HashedStore) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	if cs, ok := s.inner.(scs.CtxStore); ok {
		return cs.CommitCtx(ctx, s.key(token), b, expiry)
	}
	return s.Commit(token, b, expiry)
}

func (s *HashedStore) DeleteCtx(ctx context.Context, token string) error {
	if cs, ok := s.inner.(scs.CtxStore); ok {
		return cs.DeleteCtx(ctx, s.key(token))
	}
	return s.Delete(token)
}
