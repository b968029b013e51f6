package domain

import (
	"fmt"
	"sort"
)

const (
	// CategoryCount is the fixed number of category lists. Every index
	// in 0..CategoryCount-1 is always initialized; a missing list is a
	// programming error, not an empty result.
	CategoryCount = 8

	// DefaultWatchlistIndex is the conventional "default watchlist" slot.
	DefaultWatchlistIndex = 5
)

// CategoryLists is the indexed family of tv-ticker sets used for
// watch/flag membership. Index range violations are usage errors.
type CategoryLists struct {
	lists [CategoryCount]map[string]struct{}
}

// NewCategoryLists returns lists with all slots initialized.
func NewCategoryLists() *CategoryLists {
	c := &CategoryLists{}
	for i := range c.lists {
		c.lists[i] = make(map[string]struct{})
	}
	return c
}

func (c *CategoryLists) checkIndex(idx int) error {
	if idx < 0 || idx >= CategoryCount {
		return fmt.Errorf("category index %d: %w", idx, ErrCategoryIndex)
	}
	return nil
}

// Toggle adds the ticker if absent, removes it if present. Returns the
// resulting membership.
func (c *CategoryLists) Toggle(idx int, ticker string) (bool, error) {
	if err := c.checkIndex(idx); err != nil {
		return false, err
	}
	if _, ok := c.lists[idx][ticker]; ok {
		delete(c.lists[idx], ticker)
		return false, nil
	}
	c.lists[idx][ticker] = struct{}{}
	return true, nil
}

// SetList replaces the whole list at idx.
func (c *CategoryLists) SetList(idx int, tickers []string) error {
	if err := c.checkIndex(idx); err != nil {
		return err
	}
	next := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		next[t] = struct{}{}
	}
	c.lists[idx] = next
	return nil
}

// Delete removes the ticker from the list at idx if present.
func (c *CategoryLists) Delete(idx int, ticker string) error {
	if err := c.checkIndex(idx); err != nil {
		return err
	}
	delete(c.lists[idx], ticker)
	return nil
}

// Contains reports membership of ticker in the list at idx.
func (c *CategoryLists) Contains(idx int, ticker string) (bool, error) {
	if err := c.checkIndex(idx); err != nil {
		return false, err
	}
	_, ok := c.lists[idx][ticker]
	return ok, nil
}

// List returns the tickers at idx sorted for deterministic iteration.
func (c *CategoryLists) List(idx int) ([]string, error) {
	if err := c.checkIndex(idx); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(c.lists[idx]))
	for t := range c.lists[idx] {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// UnionContains reports whether ticker is in any of the listed indices.
func (c *CategoryLists) UnionContains(indices []int, ticker string) (bool, error) {
	for _, idx := range indices {
		ok, err := c.Contains(idx, ticker)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Union returns the sorted union of the tickers at the listed indices.
func (c *CategoryLists) Union(indices []int) ([]string, error) {
	seen := make(map[string]struct{})
	for _, idx := range indices {
		if err := c.checkIndex(idx); err != nil {
			return nil, err
		}
		for t := range c.lists[idx] {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}
