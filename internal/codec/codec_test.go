package codec

import (
	"bytes"
	"io"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Record{
		NewSet("k", "v"),
		NewRemove("k"),
	}
	for _, rec := range cases {
		encoded, err := Encode(rec)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if encoded[len(encoded)-1] != '\n' {
			t.Fatalf("encoded record missing trailing newline: %q", encoded)
		}
		decoded, err := Decode(encoded[:len(encoded)-1])
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if decoded.Key() != rec.Key() {
			t.Fatalf("round trip changed key: got %q want %q", decoded.Key(), rec.Key())
		}
	}
}

func TestDecodeRejectsEmptyRecord(t *testing.T) {
	if _, err := Decode([]byte(`{}`)); err == nil {
		t.Fatal("expected error decoding a record with neither Set nor Remove populated")
	}
}

func TestStreamTracksOffsetsAcrossRecords(t *testing.T) {
	var buf bytes.Buffer
	for _, rec := range []Record{NewSet("a", "1"), NewSet("b", "2"), NewRemove("a")} {
		body, err := Encode(rec)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		buf.Write(body)
	}

	stream := NewStream(&buf, 0)
	var offsets []int64
	var keys []string
	for {
		rec, start, endExclusive, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		offsets = append(offsets, start, endExclusive)
		keys = append(keys, rec.Key())
	}

	if len(keys) != 3 {
		t.Fatalf("expected 3 records, got %d", len(keys))
	}
	if keys[0] != "a" || keys[1] != "b" || keys[2] != "a" {
		t.Fatalf("unexpected key order: %v", keys)
	}
	// Each record's start must be exactly one past the previous record's
	// end_exclusive, with no gap or overlap.
	for i := 1; i < 3; i++ {
		if offsets[2*i] != offsets[2*i-1]+1 {
			t.Fatalf("record %d starts at %d, want %d (one past record %d's end)", i, offsets[2*i], offsets[2*i-1]+1, i-1)
		}
	}
}
