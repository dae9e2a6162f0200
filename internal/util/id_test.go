package util

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestNewIDLayout(t *testing.T) {
	now := time.UnixMilli(1718000000000)
	id := newIDAt("comment", now)

	if !strings.HasPrefix(id, "comment") {
		t.Fatalf("missing prefix: %q", id)
	}
	stamp := strconv.FormatInt(now.UnixMilli(), 36)
	rest := strings.TrimPrefix(id, "comment")
	if !strings.HasPrefix(rest, stamp) {
		t.Fatalf("expected base-36 timestamp %q after prefix, got %q", stamp, rest)
	}
	suffix := strings.TrimPrefix(rest, stamp)
	if len(suffix) != idSuffixSize {
		t.Fatalf("suffix length = %d, want %d", len(suffix), idSuffixSize)
	}
	for _, r := range suffix {
		if !strings.ContainsRune(idAlphabet, r) {
			t.Fatalf("suffix %q has non base-36 rune %q", suffix, r)
		}
	}
}

func TestNewIDEmptyPrefix(t *testing.T) {
	id := NewID("")
	if id == "" {
		t.Fatal("expected non-empty id")
	}
	if strings.ContainsAny(id, "-_ ") {
		t.Fatalf("unexpected characters in %q", id)
	}
}

func TestNewIDDistinct(t *testing.T) {
	seen := make(map[string]struct{}, 200)
	for i := 0; i < 200; i++ {
		id := NewID("user")
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id after %d draws: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestRandomSuffixDiscardsBiasedBytes(t *testing.T) {
	// 252..255 would fold onto '0'..'3'.
	src := bytes.NewReader(append(bytes.Repeat([]byte{255, 252}, 8), 0, 1, 2, 3, 35))
	if got := randomSuffix(src); got != "0123z" {
		t.Fatalf("suffix = %q, want %q", got, "0123z")
	}
}
