// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeStandsStill(t *testing.T) {
	fake := Fake(epoch)
	if !fake.Now().Equal(epoch) {
		t.Errorf("Now() = %v, want %v", fake.Now(), epoch)
	}
	if !fake.Now().Equal(fake.Now()) {
		t.Error("fake time moved without Advance")
	}
}

func TestFakeAdvanceAndSince(t *testing.T) {
	fake := Fake(epoch)
	start := fake.Now()
	fake.Advance(90 * time.Second)
	if got := Since(fake, start); got != 90*time.Second {
		t.Errorf("Since = %v, want 90s", got)
	}

	later := epoch.Add(24 * time.Hour)
	fake.Set(later)
	if !fake.Now().Equal(later) {
		t.Errorf("Now() after Set = %v, want %v", fake.Now(), later)
	}
}

func TestFakeAdvanceNegativePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Advance(-1) did not panic")
		}
	}()
	Fake(epoch).Advance(-1)
}

func TestFakeConcurrentAdvance(t *testing.T) {
	fake := Fake(epoch)
	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			fake.Advance(time.Millisecond)
			_ = fake.Now()
		})
	}
	wg.Wait()
	if got := Since(fake, epoch); got != 100*time.Millisecond {
		t.Errorf("elapsed = %v, want 100ms", got)
	}
}

func TestRealMovesForward(t *testing.T) {
	wall := Real()
	first := wall.Now()
	if wall.Now().Before(first) {
		t.Error("real clock went backwards")
	}
}
