package util

import (
	"crypto/rand"
	"io"
	"strconv"
	"time"
)

const (
	idAlphabet   = "0123456789abcdefghijklmnopqrstuvwxyz"
	idSuffixSize = 5
)

// NewID returns prefix + base-36 unix millis + a short random base-36 suffix,
// e.g. "commentm1x9k2p0a3f7q". Unique enough for a local store, not guaranteed.
func NewID(prefix string) string {
	return newIDAt(prefix, time.Now())
}

func newIDAt(prefix string, now time.Time) string {
	return prefix + strconv.FormatInt(now.UnixMilli(), 36) + randomSuffix(rand.Reader)
}

// randomSuffix draws idSuffixSize base-36 chars from r. Bytes at or above the
// largest multiple of 36 are discarded so every char is equally likely.
func randomSuffix(r io.Reader) string {
	const limit = 256 - 256%len(idAlphabet)
	suffix := make([]byte, 0, idSuffixSize)
	var buf [idSuffixSize]byte
	for len(suffix) < idSuffixSize {
		want := buf[:idSuffixSize-len(suffix)]
		if _, err := io.ReadFull(r, want); err != nil {
			panic("util: read random: " + err.Error())
		}
		for _, v := range want {
			if int(v) < limit {
				suffix = append(suffix, idAlphabet[int(v)%len(idAlphabet)])
			}
		}
	}
	return string(suffix)
}
