package user

import (
	"context"
	"testing"
	"time"
)

func TestMemoryBlacklist(t *testing.T) {
	bl := NewMemoryBlacklist()
	ctx := context.Background()

	if err := bl.Add(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("add: %v", err)
	}

	found, err := bl.Contains(ctx, "jti-1")
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if !found {
		t.Fatalf("expected jti-1 to be blacklisted")
	}

	found, _ = bl.Contains(ctx, "jti-2")
	if found {
		t.Fatalf("expected unknown jti to pass")
	}
}

func TestMemoryBlacklistExpiry(t *testing.T) {
	bl := NewMemoryBlacklist()
	ctx := context.Background()

	// non-positive ttl means the token already expired, nothing to store
	if err := bl.Add(ctx, "jti-old", -time.Second); err != nil {
		t.Fatalf("add: %v", err)
	}
	if found, _ := bl.Contains(ctx, "jti-old"); found {
		t.Fatalf("expected expired token not to be stored")
	}

	bl.Add(ctx, "jti-short", time.Nanosecond)
	time.Sleep(5 * time.Millisecond)
	if found, _ := bl.Contains(ctx, "jti-short"); found {
		t.Fatalf("expected entry to lapse after its ttl")
	}
}
