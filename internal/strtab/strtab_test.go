package strtab

import "testing"

func TestTable(t *testing.T) {
	t.Run("OrdinalsAreContiguousAndNeverDeduped", func(t *testing.T) {
		tbl := New()
		first := tbl.Push("hi")
		second := tbl.Push("bye")
		third := tbl.Push("hi") // same content, distinct ordinal: spec §8 invariant 2
		if first != 0 || second != 1 || third != 2 {
			t.Errorf("expected ordinals 0,1,2, got %d,%d,%d", first, second, third)
		}
		if tbl.Len() != 3 {
			t.Errorf("expected length 3, got %d", tbl.Len())
		}
	})

	t.Run("EntriesPreserveInsertionOrder", func(t *testing.T) {
		tbl := New()
		tbl.Push("a")
		tbl.Push("b")
		entries := tbl.Entries()
		if len(entries) != 2 || entries[0] != "a" || entries[1] != "b" {
			t.Errorf("unexpected entries: %v", entries)
		}
	})
}
