package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("analysis", "The tenant shall pay rent.", "prose")
	b := Key("analysis", "The tenant shall pay rent.", "prose")
	if a != b {
		t.Error("Expected identical keys for identical input")
	}
	if !strings.HasPrefix(a, "clausescope:v1:analysis:") {
		t.Errorf("Unexpected key prefix: %s", a)
	}

	distinct := []string{
		Key("highlight", "The tenant shall pay rent.", "prose"),
		Key("analysis", "The tenant shall pay rent.", "openai"),
		Key("analysis", "The tenant shall pay rent!", "prose"),
		Key("analysis", "rent.", "prose", "The tenant shall pay "),
	}
	for _, k := range distinct {
		if k == a {
			t.Errorf("Expected key %s to differ from %s", k, a)
		}
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss for unknown key")
	}

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Errorf("Expected v, got %q (found=%v)", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss after delete")
	}

	_ = c.Set("a", []byte("1"), time.Minute)
	_ = c.Set("b", []byte("2"), time.Minute)
	_ = c.Clear()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after clear, got %d", c.Len())
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("short", []byte("v"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("Expected entry to expire")
	}
}

func TestJSONHelpers(t *testing.T) {
	type entry struct {
		Clauses []string `json:"clauses"`
	}

	c := NewMemoryCache(time.Minute, time.Minute)
	if err := SetJSON(c, "k", entry{Clauses: []string{"tenant pay rent"}}, 0); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var got entry
	if !GetJSON(c, "k", &got) {
		t.Fatal("Expected hit")
	}
	if len(got.Clauses) != 1 || got.Clauses[0] != "tenant pay rent" {
		t.Errorf("Unexpected entry: %+v", got)
	}

	_ = c.Set("bad", []byte("{"), 0)
	if GetJSON(c, "bad", &got) {
		t.Error("Expected undecodable entry to count as a miss")
	}
}

func TestNopCache(t *testing.T) {
	var c Cache = NopCache{}
	_ = c.Set("k", []byte("v"), time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("NopCache should never hit")
	}
}
