package memory

import (
	"context"
	"errors"
	"testing"

	"brainquest/internal/domain"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore()

	if _, err := store.Get(ctx, "authToken"); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Set(ctx, "authToken", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, err := store.Get(ctx, "authToken"); err != nil || got != "abc" {
		t.Fatalf("expected abc, got %q (%v)", got, err)
	}
	if err := store.Remove(ctx, "authToken"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(ctx, "authToken"); err != nil {
		t.Fatalf("removing a missing key must succeed: %v", err)
	}
	if _, err := store.Get(ctx, "authToken"); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Fatalf("expected not found after remove, got %v", err)
	}
}
