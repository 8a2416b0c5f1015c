package query

import (
	"regexp"
	"strings"
)

var (
	selectListPattern = regexp.MustCompile(`(?is)SELECT\s+(.+?)\s+FROM`)
	// Matches a single-argument call such as MAX(order_id).
	wrappedColumnPattern = regexp.MustCompile(`^\w+\s*\(\s*(\w+)\s*\)`)
)

// ExtractColumns returns the columns a SELECT statement exposes, in select
// list order, keeping only names known to schema. Aggregate wrappers are
// reduced to their argument. Text without a SELECT ... FROM clause yields an
// empty list.
func ExtractColumns(sqlText string, schema Schema) []string {
	match := selectListPattern.FindStringSubmatch(sqlText)
	if match == nil {
		return []string{}
	}

	columns := make([]string, 0)
	for _, candidate := range strings.Split(match[1], ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = wrappedColumnPattern.ReplaceAllString(candidate, "$1")
		candidate = strings.TrimSpace(candidate)
		if schema.Has(candidate) {
			columns = append(columns, candidate)
		}
	}
	return columns
}
