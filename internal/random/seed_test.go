package random

import "testing"

func TestResolveSeedKeepsConfigured(t *testing.T) {
	seed, err := ResolveSeed(42)
	if err != nil {
		t.Fatalf("resolve seed: %v", err)
	}
	if seed != 42 {
		t.Fatalf("expected 42, got %d", seed)
	}
}

func TestResolveSeedGeneratesWhenZero(t *testing.T) {
	first, err := ResolveSeed(0)
	if err != nil {
		t.Fatalf("resolve seed: %v", err)
	}
	second, err := ResolveSeed(0)
	if err != nil {
		t.Fatalf("resolve seed: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct random seeds, got %d twice", first)
	}
}
