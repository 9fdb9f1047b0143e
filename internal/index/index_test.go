package index

import "testing"

func TestSetGetRemove(t *testing.T) {
	idx := New()

	if _, ok := idx.Get("k"); ok {
		t.Fatal("expected no entry in a fresh index")
	}

	entry := Entry{Generation: 1, Offset: 0, Length: 10, Checksum: 42}
	if _, had := idx.Set("k", entry); had {
		t.Fatal("Set on a fresh key should report no previous entry")
	}

	got, ok := idx.Get("k")
	if !ok || got != entry {
		t.Fatalf("Get returned %+v, %v, want %+v, true", got, ok, entry)
	}

	replacement := Entry{Generation: 2, Offset: 20, Length: 5, Checksum: 7}
	old, had := idx.Set("k", replacement)
	if !had || old != entry {
		t.Fatalf("Set replacement: got old=%+v had=%v, want %+v, true", old, had, entry)
	}

	removed, had := idx.Remove("k")
	if !had || removed != replacement {
		t.Fatalf("Remove: got %+v, %v, want %+v, true", removed, had, replacement)
	}
	if _, ok := idx.Get("k"); ok {
		t.Fatal("expected no entry after Remove")
	}
}

func TestLenAndRange(t *testing.T) {
	idx := New()
	want := map[string]Entry{
		"a": {Generation: 1, Offset: 0, Length: 1},
		"b": {Generation: 1, Offset: 1, Length: 1},
		"c": {Generation: 2, Offset: 0, Length: 1},
	}
	for k, e := range want {
		idx.Set(k, e)
	}

	if idx.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", idx.Len(), len(want))
	}

	seen := make(map[string]Entry)
	idx.Range(func(key string, e Entry) { seen[key] = e })
	if len(seen) != len(want) {
		t.Fatalf("Range visited %d keys, want %d", len(seen), len(want))
	}
	for k, e := range want {
		if seen[k] != e {
			t.Fatalf("Range entry for %q = %+v, want %+v", k, seen[k], e)
		}
	}
}

func TestChecksumDetectsMutation(t *testing.T) {
	a := Checksum([]byte(`{"Set":{"key":"k","value":"v"}}`))
	b := Checksum([]byte(`{"Set":{"key":"k","value":"w"}}`))
	if a == b {
		t.Fatal("expected different bodies to hash differently")
	}
	if Checksum([]byte("same")) != Checksum([]byte("same")) {
		t.Fatal("expected identical bodies to hash identically")
	}
}
