package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/veribank/faceauth/internal/domain"
)

func newTestStore(t *testing.T) (*RedisLivenessSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLivenessSessionStore(client), mr
}

func testSession() domain.LivenessSession {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.LivenessSession{
		Token:          "liveness_1724900000000_abcd1234",
		UserID:         uuid.New(),
		Challenges:     []domain.Challenge{domain.ChallengeBlink, domain.ChallengeSmile},
		Cursor:         1,
		CapturedImages: []string{"frame-1"},
		Status:         domain.SessionActive,
		MaxAttempts:    3,
		CreatedAt:      now,
		ExpiresAt:      now.Add(10 * time.Minute),
	}
}

func TestLivenessStoreRoundtrip(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()
	session := testSession()

	if err := store.Put(ctx, session, 10*time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := store.Get(ctx, session.Token)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatalf("expected stored session")
	}
	if got.Token != session.Token || got.UserID != session.UserID {
		t.Fatalf("session identity mismatch: %+v", got)
	}
	if got.Cursor != 1 || len(got.CapturedImages) != 1 || got.Status != domain.SessionActive {
		t.Fatalf("session state mismatch: %+v", got)
	}
	if !got.ExpiresAt.Equal(session.ExpiresAt) {
		t.Fatalf("expiry mismatch: got %v want %v", got.ExpiresAt, session.ExpiresAt)
	}
}

func TestLivenessStoreGetMissing(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	got, err := store.Get(context.Background(), "liveness_0_missing")
	if err != nil {
		t.Fatalf("missing key must not error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil session for missing key, got %+v", got)
	}
}

func TestLivenessStoreDelete(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()
	session := testSession()

	if err := store.Put(ctx, session, time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Delete(ctx, session.Token); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	got, err := store.Get(ctx, session.Token)
	if err != nil || got != nil {
		t.Fatalf("expected session removed, got %+v err %v", got, err)
	}
}

func TestLivenessStoreKeyExpires(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()
	session := testSession()

	if err := store.Put(ctx, session, time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, session.Token)
	if err != nil {
		t.Fatalf("get after expiry failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected key reclaimed after ttl, got %+v", got)
	}
}
