package protocol

import (
	"bytes"
	"strings"
	"testing"
)

func TestRequestEncodeDecode(t *testing.T) {
	cases := []Request{
		NewGet("k"),
		NewSet("k", "v"),
		NewRemove("k"),
	}
	for _, req := range cases {
		body, err := Encode(req)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		dec := NewRequestDecoder(bytes.NewReader(body))
		got, err := dec.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !requestsEqual(got, req) {
			t.Fatalf("round trip changed request: got %+v want %+v", got, req)
		}
	}
}

func requestsEqual(a, b Request) bool {
	switch {
	case a.Get != nil || b.Get != nil:
		return a.Get != nil && b.Get != nil && *a.Get == *b.Get
	case a.Set != nil || b.Set != nil:
		return a.Set != nil && b.Set != nil && *a.Set == *b.Set
	case a.Remove != nil || b.Remove != nil:
		return a.Remove != nil && b.Remove != nil && *a.Remove == *b.Remove
	default:
		return true
	}
}

func TestOkResponseWithValueEncodesAsOkKey(t *testing.T) {
	value := "1"
	body, err := EncodeResponse(OkResponse(&value))
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	if got := string(body); got != `{"Ok":"1"}` {
		t.Fatalf("got %q, want {\"Ok\":\"1\"}", got)
	}
}

func TestOkResponseAbsentEncodesAsNull(t *testing.T) {
	body, err := EncodeResponse(OkResponse(nil))
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	if got := string(body); got != `{"Ok":null}` {
		t.Fatalf("got %q, want {\"Ok\":null}", got)
	}
}

func TestErrResponseEncodesAsErrKeyOnly(t *testing.T) {
	body, err := EncodeResponse(ErrResponse("key not found"))
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	got := string(body)
	if strings.Contains(got, `"Ok"`) {
		t.Fatalf("error response must not carry an Ok key: %q", got)
	}
	if got != `{"Err":"key not found"}` {
		t.Fatalf("got %q, want {\"Err\":\"key not found\"}", got)
	}
}

func TestResponseDecoderRoundTripsBothShapes(t *testing.T) {
	value := "v"
	responses := []Response{OkResponse(&value), OkResponse(nil), ErrResponse("boom")}

	var buf bytes.Buffer
	for _, resp := range responses {
		body, err := EncodeResponse(resp)
		if err != nil {
			t.Fatalf("EncodeResponse: %v", err)
		}
		buf.Write(body)
	}

	dec := NewResponseDecoder(&buf)
	for i, want := range responses {
		got, err := dec.Next()
		if err != nil {
			t.Fatalf("Next(%d): %v", i, err)
		}
		if got.Failed() != want.Failed() {
			t.Fatalf("response %d: Failed() = %v, want %v", i, got.Failed(), want.Failed())
		}
		if want.Failed() {
			if got.Err == nil || *got.Err != *want.Err {
				t.Fatalf("response %d: Err = %v, want %v", i, got.Err, want.Err)
			}
			continue
		}
		switch {
		case want.Value == nil && got.Value != nil:
			t.Fatalf("response %d: expected nil value, got %v", i, *got.Value)
		case want.Value != nil && (got.Value == nil || *got.Value != *want.Value):
			t.Fatalf("response %d: Value = %v, want %v", i, got.Value, want.Value)
		}
	}
}
