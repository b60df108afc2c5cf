package cache

import (
	"context"
	"testing"
	"time"
)

func TestStore_InvalidateDatabaseHidesOldEntries(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemory("", 0))

	if err := s.Set(ctx, "shop", "k", "v1", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, err := s.Get(ctx, "shop", "k"); err != nil || got != "v1" {
		t.Fatalf("get: %q, %v", got, err)
	}

	s.InvalidateDatabase(ctx, "shop")

	if _, err := s.Get(ctx, "shop", "k"); !IsNotFound(err) {
		t.Fatalf("entry must be gone after invalidation, got %v", err)
	}

	// El namespace nuevo funciona normalmente.
	if err := s.Set(ctx, "shop", "k", "v2", 0); err != nil {
		t.Fatalf("set after invalidation: %v", err)
	}
	if got, _ := s.Get(ctx, "shop", "k"); got != "v2" {
		t.Fatalf("get after invalidation: %q", got)
	}
}

func TestStore_InvalidationIsPerDatabase(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemory("", 0))

	_ = s.Set(ctx, "shop", "k", "shop-v", 0)
	_ = s.Set(ctx, "crm", "k", "crm-v", 0)

	s.InvalidateDatabase(ctx, "shop")

	if _, err := s.Get(ctx, "shop", "k"); !IsNotFound(err) {
		t.Fatal("shop entry should be invalidated")
	}
	if got, err := s.Get(ctx, "crm", "k"); err != nil || got != "crm-v" {
		t.Fatalf("crm entry must survive: %q, %v", got, err)
	}
}

func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("p", 0)
	if err := c.Set(ctx, "k", "v", 20*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, err := c.Get(ctx, "k"); err != nil || got != "v" {
		t.Fatalf("get: %q, %v", got, err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("expected expiry, got %v", err)
	}
}
