package datadog

import (
	"sort"
	"testing"

	"cleanse/internal/metrics"
)

/*
TestNewBackend constructs a client against a UDP address (no agent needs to
listen) with namespace and global tags passed as client options, then drives
the full Backend surface. Namespace and tags are constructor options on the
statsd client; there is no post-construction configuration.
*/
func TestNewBackend(t *testing.T) {
	b, err := NewBackend(Config{
		Addr:       "127.0.0.1:8125",
		Namespace:  "cleanse",
		GlobalTags: []string{"job:patients"},
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter("cleanse_records_total", 3, metrics.Labels{"kind": "records_valid"})
	b.ObserveHistogram("cleanse_stage_duration_seconds", 0.25, metrics.Labels{"stage": "load"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

/*
TestNewBackend_NoOptions: empty namespace and tags construct without any
client options.
*/
func TestNewBackend_NoOptions(t *testing.T) {
	b, err := NewBackend(Config{Addr: "127.0.0.1:8125"})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

/*
TestNewBackend_EmptyAddr is rejected before touching the client.
*/
func TestNewBackend_EmptyAddr(t *testing.T) {
	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("expected error for empty Addr")
	}
}

/*
Test_labelsToTags: labels become "key:value" tags; empty labels become nil.
*/
func Test_labelsToTags(t *testing.T) {
	got := labelsToTags(metrics.Labels{"stage": "rules", "status": "success"})
	sort.Strings(got)
	if len(got) != 2 || got[0] != "stage:rules" || got[1] != "status:success" {
		t.Fatalf("tags=%v", got)
	}
	if labelsToTags(nil) != nil {
		t.Fatalf("nil labels should produce nil tags")
	}
}
