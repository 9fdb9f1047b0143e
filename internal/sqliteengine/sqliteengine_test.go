package sqliteengine

import "testing"

func TestSetGetRemove(t *testing.T) {
	eng, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer eng.Close()

	if err := eng.Set("k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, found, err := eng.Get("k")
	if err != nil || !found || value != "v" {
		t.Fatalf("Get = %q, %v, %v; want v, true, nil", value, found, err)
	}

	if err := eng.Set("k", "v2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	value, found, err = eng.Get("k")
	if err != nil || !found || value != "v2" {
		t.Fatalf("Get after overwrite = %q, %v, %v; want v2, true, nil", value, found, err)
	}

	if err := eng.Remove("k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, found, err := eng.Get("k"); err != nil || found {
		t.Fatalf("Get after remove: found=%v err=%v, want false, nil", found, err)
	}
}

func TestRemoveMissingKeyFails(t *testing.T) {
	eng, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer eng.Close()

	if err := eng.Remove("missing"); err != ErrKeyNotFound {
		t.Fatalf("Remove(missing) = %v, want ErrKeyNotFound", err)
	}
}

func TestGetMissingKeyIsNotAnError(t *testing.T) {
	eng, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer eng.Close()

	if _, found, err := eng.Get("missing"); err != nil || found {
		t.Fatalf("Get(missing): found=%v err=%v, want false, nil", found, err)
	}
}
