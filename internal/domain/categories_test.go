package domain

import (
	"errors"
	"testing"
)

func TestCategoryLists_Initialized(t *testing.T) {
	c := NewCategoryLists()

	for idx := 0; idx < CategoryCount; idx++ {
		got, err := c.List(idx)
		if err != nil {
			t.Fatalf("List(%d) failed: %v", idx, err)
		}
		if got == nil {
			// empty is fine, nil slice is fine too; the list itself must answer
			continue
		}
	}
}

func TestCategoryLists_Toggle(t *testing.T) {
	c := NewCategoryLists()

	t.Run("adds when absent", func(t *testing.T) {
		member, err := c.Toggle(2, "HDFC")
		if err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
		if !member {
			t.Error("Expected membership after first toggle")
		}
	})

	t.Run("removes when present", func(t *testing.T) {
		member, err := c.Toggle(2, "HDFC")
		if err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
		if member {
			t.Error("Expected removal after second toggle")
		}
	})

	t.Run("out of range index fails", func(t *testing.T) {
		if _, err := c.Toggle(8, "HDFC"); !errors.Is(err, ErrCategoryIndex) {
			t.Errorf("Expected ErrCategoryIndex, got %v", err)
		}
		if _, err := c.Toggle(-1, "HDFC"); !errors.Is(err, ErrCategoryIndex) {
			t.Errorf("Expected ErrCategoryIndex, got %v", err)
		}
	})
}

func TestCategoryLists_SetListAndDelete(t *testing.T) {
	c := NewCategoryLists()

	if err := c.SetList(DefaultWatchlistIndex, []string{"TCS", "INFY", "TCS"}); err != nil {
		t.Fatalf("SetList failed: %v", err)
	}

	got, _ := c.List(DefaultWatchlistIndex)
	if len(got) != 2 {
		t.Errorf("Expected 2 distinct members, got %d", len(got))
	}

	if err := c.Delete(DefaultWatchlistIndex, "TCS"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	ok, _ := c.Contains(DefaultWatchlistIndex, "TCS")
	if ok {
		t.Error("TCS should be gone after Delete")
	}

	if err := c.SetList(99, nil); !errors.Is(err, ErrCategoryIndex) {
		t.Errorf("Expected ErrCategoryIndex, got %v", err)
	}
}

func TestCategoryLists_Union(t *testing.T) {
	c := NewCategoryLists()
	c.SetList(0, []string{"A", "B"})
	c.SetList(5, []string{"B", "C"})

	union, err := c.Union([]int{0, 5})
	if err != nil {
		t.Fatalf("Union failed: %v", err)
	}
	if len(union) != 3 {
		t.Errorf("Expected union of 3, got %v", union)
	}

	ok, err := c.UnionContains([]int{0, 5}, "C")
	if err != nil || !ok {
		t.Errorf("Expected C in union, ok=%v err=%v", ok, err)
	}
	ok, _ = c.UnionContains([]int{0}, "C")
	if ok {
		t.Error("C should not be in category 0")
	}

	if _, err := c.UnionContains([]int{0, 42}, "A"); !errors.Is(err, ErrCategoryIndex) {
		t.Errorf("Expected ErrCategoryIndex, got %v", err)
	}
}
