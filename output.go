package main

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	indexHeader  = "# Index\n"
	indexTrailer = "\n\n *This content is auto-generated and will be overwritten so please don't make manual changes to it.* \n"

	// YYYY-MM-DD-HH:MM:SS
	dateLayout = "2006-01-02-15:04:05"
)

// Sort orders accepted by --sort.
const (
	sortNone  = "none"
	sortPath  = "path"
	sortMtime = "mtime"
)

var sortOrders = []string{sortNone, sortPath, sortMtime}

// formatDate renders t in its own offset. Quoted output matches the index
// files written by earlier releases, which embedded the date as a quoted string.
func formatDate(t time.Time, quote bool) string {
	formatted := t.Format(dateLayout)
	if quote {
		return strconv.Quote(formatted)
	}
	return formatted
}

// renderIndex assembles the complete index document.
func renderIndex(docs []DocEntry, quoteDates bool) string {
	var builder strings.Builder
	builder.WriteString(indexHeader)
	for _, doc := range docs {
		builder.WriteString(fmt.Sprintf("- [%s](%s)  <sub>Last update: %s</sub>  \n",
			doc.Path, doc.Path, formatDate(doc.Updated, quoteDates)))
	}
	builder.WriteString(indexTrailer)
	return builder.String()
}

// sortEntries reorders docs in place. "none" keeps traversal order,
// "mtime" puts the most recently updated documents first.
func sortEntries(docs []DocEntry, order string) error {
	switch order {
	case sortNone, "":
	case sortPath:
		slices.SortStableFunc(docs, func(a, b DocEntry) int {
			return strings.Compare(a.Path, b.Path)
		})
	case sortMtime:
		slices.SortStableFunc(docs, func(a, b DocEntry) int {
			return cmp.Compare(b.Updated.UnixNano(), a.Updated.UnixNano())
		})
	default:
		return fmt.Errorf("unknown sort order '%s' (expected one of %s)", order, strings.Join(sortOrders, ", "))
	}
	return nil
}
