package storage

import (
	"testing"
	"time"
)

func TestBuildSnapshotPath(t *testing.T) {
	ts := time.Date(2026, time.February, 19, 4, 5, 0, 0, time.FixedZone("x", -5*3600))
	key, err := BuildSnapshotPath("products", "abc123", ts, "parquet")
	if err != nil {
		t.Fatalf("BuildSnapshotPath() error = %v", err)
	}
	want := "products/date=2026-02-19/snapshot-20260219T090500Z-abc123.parquet"
	if key != want {
		t.Fatalf("BuildSnapshotPath() = %q, want %q", key, want)
	}
}

func TestBuildLatestPath(t *testing.T) {
	key, err := BuildLatestPath("products", "csv")
	if err != nil {
		t.Fatalf("BuildLatestPath() error = %v", err)
	}
	if key != "products/latest.csv" {
		t.Fatalf("BuildLatestPath() = %q", key)
	}
}

func TestBuildPathRejectsInvalidComponent(t *testing.T) {
	if _, err := BuildSnapshotPath("../oops", "id", time.Now(), "csv"); err == nil {
		t.Fatal("expected invalid table name error")
	}
	if _, err := BuildSnapshotPath("products", "id", time.Now(), "../csv"); err == nil {
		t.Fatal("expected invalid format error")
	}
	if _, err := BuildLatestPath("products", ""); err == nil {
		t.Fatal("expected empty format error")
	}
}
