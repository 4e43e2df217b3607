package store

import (
	"errors"
	"testing"
)

type item struct {
	ID     string
	Status string
	Name   string
	Tags   []string
}

func (i item) GetID() string { return i.ID }

func cloneItem(i item) item {
	i.Tags = append([]string(nil), i.Tags...)
	return i
}

func seeded(t *testing.T) *Collection[item] {
	t.Helper()
	c := NewCollection[item](cloneItem)
	for _, it := range []item{
		{ID: "1", Status: "Active", Name: "Elena Park"},
		{ID: "2", Status: "Inactive", Name: "Marcus Reid"},
		{ID: "3", Status: "Active", Name: "Priya Raman"},
		{ID: "4", Status: "active", Name: "Tom Park"},
	} {
		if err := c.Insert(it); err != nil {
			t.Fatalf("Insert(%s): %v", it.ID, err)
		}
	}
	return c
}

func TestCollectionInsertRejectsDuplicatesAndEmptyIDs(t *testing.T) {
	c := seeded(t)
	if err := c.Insert(item{ID: "1"}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate insert err = %v, want ErrDuplicateID", err)
	}
	if err := c.Insert(item{}); !errors.Is(err, ErrEmptyID) {
		t.Errorf("empty id insert err = %v, want ErrEmptyID", err)
	}
	if c.Len() != 4 {
		t.Errorf("Len = %d, want 4", c.Len())
	}
}

func TestCollectionInsertUnless(t *testing.T) {
	c := seeded(t)
	errTaken := errors.New("name taken")
	sameName := func(n string) func(item) bool {
		return func(i item) bool { return i.Name == n }
	}

	if err := c.InsertUnless(item{ID: "5", Name: "Tom Park"}, sameName("Tom Park"), errTaken); !errors.Is(err, errTaken) {
		t.Errorf("clash err = %v, want errTaken", err)
	}
	if err := c.InsertUnless(item{ID: "5", Name: "Ana Cruz"}, sameName("Ana Cruz"), errTaken); err != nil {
		t.Fatalf("InsertUnless: %v", err)
	}
	if err := c.InsertUnless(item{ID: "5", Name: "Other"}, sameName("Other"), errTaken); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate id err = %v, want ErrDuplicateID", err)
	}
	if c.Len() != 5 {
		t.Errorf("Len = %d, want 5", c.Len())
	}
}

func TestCollectionFilterIsCaseSensitiveAndOrdered(t *testing.T) {
	c := seeded(t)
	got := c.Filter(Equals("Active", func(i item) string { return i.Status }))
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("Filter(Active) = %+v, want ids 1,3 in order", got)
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	c := seeded(t)
	got := c.Filter(Search("PARK", func(i item) string { return i.Name }))
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "4" {
		t.Fatalf("Search(PARK) = %+v", got)
	}
	if all := c.Filter(Search("  ", func(i item) string { return i.Name })); len(all) != 4 {
		t.Errorf("blank search returned %d records, want 4", len(all))
	}
}

func TestCollectionUpdate(t *testing.T) {
	c := seeded(t)

	got, err := c.Update("2", func(i *item) error {
		i.Status = "Active"
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Status != "Active" {
		t.Errorf("returned status = %q", got.Status)
	}

	boom := errors.New("boom")
	if _, err := c.Update("3", func(i *item) error {
		i.Status = "Changed"
		return boom
	}); !errors.Is(err, boom) {
		t.Errorf("Update err = %v, want boom", err)
	}
	if stored, _ := c.Get("3"); stored.Status != "Active" {
		t.Errorf("failed update leaked: status = %q", stored.Status)
	}

	if _, err := c.Update("1", func(i *item) error {
		i.ID = "other"
		return nil
	}); err == nil {
		t.Error("changing id should fail")
	}

	if _, err := c.Update("nope", func(*item) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) err = %v, want ErrNotFound", err)
	}
}

func TestCollectionReadsReturnCopies(t *testing.T) {
	c := NewCollection[item](cloneItem)
	if err := c.Insert(item{ID: "a", Tags: []string{"x"}}); err != nil {
		t.Fatal(err)
	}
	got, _ := c.Get("a")
	got.Tags[0] = "mutated"
	again, _ := c.Get("a")
	if again.Tags[0] != "x" {
		t.Errorf("stored record shared memory with caller: %v", again.Tags)
	}
}

func TestCollectionRemoveReindexes(t *testing.T) {
	c := seeded(t)
	if err := c.Remove("2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := c.Remove("2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove err = %v", err)
	}
	got, err := c.Get("4")
	if err != nil || got.Name != "Tom Park" {
		t.Errorf("Get after remove = %+v, %v", got, err)
	}
	ids := ""
	for _, it := range c.List() {
		ids += it.ID
	}
	if ids != "134" {
		t.Errorf("order after remove = %q, want 134", ids)
	}
}

func TestUpdateWhere(t *testing.T) {
	c := seeded(t)
	n := c.UpdateWhere(
		func(i item) bool { return i.Status == "Active" },
		func(i *item) { i.Status = "Inactive" },
	)
	if n != 2 {
		t.Errorf("UpdateWhere changed %d, want 2", n)
	}
	if got := c.Filter(Equals("Inactive", func(i item) string { return i.Status })); len(got) != 3 {
		t.Errorf("inactive count = %d, want 3", len(got))
	}
}
