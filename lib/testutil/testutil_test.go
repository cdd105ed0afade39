// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"testing"
	"time"
)

// fakeT records Fatalf instead of stopping the test.
type fakeT struct {
	failed  bool
	message string
}

func (f *fakeT) Helper() {}

func (f *fakeT) Fatalf(format string, args ...any) {
	f.failed = true
	f.message = fmt.Sprintf(format, args...)
}

func TestID(t *testing.T) {
	if got := ID(0x81).String(); got != "81818181818181818181818181818181" {
		t.Errorf("ID(0x81) = %s", got)
	}
	if !ID(0).IsNil() {
		t.Error("ID(0) should be the nil ID")
	}
}

func TestPtr(t *testing.T) {
	value := "a0"
	pointer := Ptr(value)
	value = "changed"
	if *pointer != "a0" {
		t.Errorf("Ptr aliases its argument: %q", *pointer)
	}
}

func TestRequireClosed(t *testing.T) {
	closed := make(chan struct{})
	close(closed)
	var passing fakeT
	RequireClosed(&passing, closed, time.Second, "closed")
	if passing.failed {
		t.Errorf("RequireClosed failed on a closed channel: %s", passing.message)
	}

	var failing fakeT
	RequireClosed(&failing, make(chan struct{}), time.Millisecond, "waiting for %s", "workers")
	if !failing.failed {
		t.Fatal("RequireClosed passed on an open channel")
	}
	if failing.message != "timed out after 1ms waiting for channel close: waiting for workers" {
		t.Errorf("message = %q", failing.message)
	}
}
