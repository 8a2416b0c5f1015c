package storage

import (
	"fmt"
	"path"
	"regexp"
	"time"
)

var (
	pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)
	formatPattern        = regexp.MustCompile(`^[a-z0-9]{1,16}$`)
)

// BuildSnapshotPath returns the immutable key of one published snapshot,
// e.g. products/date=2026-02-19/snapshot-20260219T090500Z-<id>.parquet.
func BuildSnapshotPath(tableName, snapshotID string, publishedAt time.Time, format string) (string, error) {
	if err := validatePathComponent(tableName, "table name"); err != nil {
		return "", err
	}
	if err := validatePathComponent(snapshotID, "snapshot id"); err != nil {
		return "", err
	}
	if !formatPattern.MatchString(format) {
		return "", fmt.Errorf("invalid snapshot format: %q", format)
	}
	ts := publishedAt.UTC()
	return path.Join(
		tableName,
		fmt.Sprintf("date=%04d-%02d-%02d", ts.Year(), ts.Month(), ts.Day()),
		fmt.Sprintf("snapshot-%s-%s.%s", ts.Format("20060102T150405Z"), snapshotID, format),
	), nil
}

// BuildLatestPath returns the key that always holds the newest snapshot of
// a table in the given format.
func BuildLatestPath(tableName, format string) (string, error) {
	if err := validatePathComponent(tableName, "table name"); err != nil {
		return "", err
	}
	if !formatPattern.MatchString(format) {
		return "", fmt.Errorf("invalid snapshot format: %q", format)
	}
	return path.Join(tableName, "latest."+format), nil
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}
