package kv

import "testing"

func TestRetryBackoffBounds(t *testing.T) {
	for attempt := 1; attempt <= 12; attempt++ {
		want := min(retryBaseDelay<<min(attempt, 6), retryMaxDelay)
		for i := 0; i < 50; i++ {
			d := retryBackoff(attempt)
			if d < want/2 || d >= want {
				t.Fatalf("attempt %d: backoff %v outside [%v, %v)", attempt, d, want/2, want)
			}
		}
	}
	if retryBackoff(1) >= retryMaxDelay {
		t.Fatal("first retry should wait less than the cap")
	}
	if retryBackoff(100) < retryMaxDelay/2 {
		t.Fatal("late retries should stay near the cap")
	}
}
