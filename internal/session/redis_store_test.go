package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"martdesk/api/internal/store"
)

func testRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rs, err := NewRedisStore("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { rs.Close() })
	return rs, mr
}

func testAccount() store.AdminAccount {
	return store.AdminAccount{
		ID:          "adm_1",
		Email:       "ops@martdesk.local",
		DisplayName: "Ops",
		Role:        "admin",
	}
}

func TestSaveAndLookupRefreshSession(t *testing.T) {
	rs, _ := testRedisStore(t)
	ctx := context.Background()

	if err := rs.SaveRefreshSession(ctx, "digest-1", testAccount(), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("save: %v", err)
	}

	account, err := rs.LookupRefreshSession(ctx, "digest-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if account.ID != "adm_1" || account.Role != "admin" || account.Email != "ops@martdesk.local" {
		t.Fatalf("account snapshot lost: %+v", account)
	}
}

func TestLookupUnknownTokenFails(t *testing.T) {
	rs, _ := testRedisStore(t)
	if _, err := rs.LookupRefreshSession(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for unknown token")
	}
}

func TestRevokeRemovesSession(t *testing.T) {
	rs, _ := testRedisStore(t)
	ctx := context.Background()

	if err := rs.SaveRefreshSession(ctx, "digest-2", testAccount(), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := rs.RevokeRefreshSession(ctx, "digest-2"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := rs.LookupRefreshSession(ctx, "digest-2"); err == nil {
		t.Fatalf("revoked token should not resolve")
	}
}

func TestSessionExpiresWithTTL(t *testing.T) {
	rs, mr := testRedisStore(t)
	ctx := context.Background()

	if err := rs.SaveRefreshSession(ctx, "digest-3", testAccount(), time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := rs.LookupRefreshSession(ctx, "digest-3"); err == nil {
		t.Fatalf("expired token should not resolve")
	}
}

func TestSaveRejectsAlreadyExpired(t *testing.T) {
	rs, _ := testRedisStore(t)
	if err := rs.SaveRefreshSession(context.Background(), "digest-4", testAccount(), time.Now().Add(-time.Minute)); err == nil {
		t.Fatalf("expected error for expired session")
	}
}
