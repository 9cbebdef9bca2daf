package env

import "testing"

func TestGetFallback(t *testing.T) {
	t.Setenv("GG_TEST_VALUE", "")
	if got := Get("GG_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback got %q", got)
	}
	t.Setenv("GG_TEST_VALUE", "set")
	if got := Get("GG_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected set got %q", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("GG_TEST_BOOL", "true")
	if !Bool("GG_TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("GG_TEST_BOOL", "nope")
	if Bool("GG_TEST_BOOL", false) {
		t.Fatal("expected fallback for unparsable value")
	}
}
