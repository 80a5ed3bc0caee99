// internal/sdwan/discover.go
package sdwan

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownItem is returned when no record carries the requested item id
var ErrUnknownItem = errors.New("unknown item")

// Discover returns one item id per record, in record order
func Discover(records []LinkRecord) []string {
	items := make([]string, 0, len(records))
	for _, r := range records {
		items = append(items, strconv.Itoa(r.ID))
	}
	return items
}

// Lookup selects the first record whose id matches item
func Lookup(records []LinkRecord, item string) (LinkRecord, error) {
	for _, r := range records {
		if strconv.Itoa(r.ID) == item {
			return r, nil
		}
	}
	return LinkRecord{}, fmt.Errorf("item %q: %w", item, ErrUnknownItem)
}
