// Package protocol defines the wire frames exchanged between a
// kvs-client process and a kvs-server process: self-delimiting JSON
// objects, one request per line of reasoning but with no outer framing
// beyond JSON's own structure.
package protocol

import (
	"io"

	json "github.com/goccy/go-json"
)

// Request is the tagged union of frames a client may send. Exactly one
// of Get, Set, or Remove is populated.
type Request struct {
	Get    *GetRequest    `json:"Get,omitempty"`
	Set    *SetRequest    `json:"Set,omitempty"`
	Remove *RemoveRequest `json:"Remove,omitempty"`
}

type GetRequest struct {
	Key string `json:"key"`
}

type SetRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type RemoveRequest struct {
	Key string `json:"key"`
}

// NewGet builds a Get request frame.
func NewGet(key string) Request { return Request{Get: &GetRequest{Key: key}} }

// NewSet builds a Set request frame.
func NewSet(key, value string) Request { return Request{Set: &SetRequest{Key: key, Value: value}} }

// NewRemove builds a Remove request frame.
func NewRemove(key string) Request { return Request{Remove: &RemoveRequest{Key: key}} }

// Response is the frame sent back for every request, in order. Exactly
// one of Value or Err is meaningful: a successful response carries a
// Value (nil for Set/Remove acknowledgements and for a Get that found
// nothing), a failed response carries Err. The two encode as mutually
// exclusive JSON keys ({"Ok":...} or {"Err":"..."}), which plain struct
// tags can't express since {"Ok":null} is a valid, non-omitted value —
// hence the custom (Un)MarshalJSON below.
type Response struct {
	Value    *string
	Err      *string
	isFailed bool
}

// OkResponse builds a successful response. A nil value encodes as
// {"Ok":null}, matching Set/Remove acknowledgements and an absent Get.
func OkResponse(value *string) Response { return Response{Value: value} }

// ErrResponse builds a failure response carrying message.
func ErrResponse(message string) Response { return Response{Err: &message, isFailed: true} }

// Failed reports whether this response represents an Err frame.
func (r Response) Failed() bool { return r.isFailed }

type okFrame struct {
	Ok *string `json:"Ok"`
}

type errFrame struct {
	Err string `json:"Err"`
}

// MarshalJSON emits exactly one of {"Ok":...} or {"Err":"..."}.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.isFailed {
		msg := ""
		if r.Err != nil {
			msg = *r.Err
		}
		return json.Marshal(errFrame{Err: msg})
	}
	return json.Marshal(okFrame{Ok: r.Value})
}

// UnmarshalJSON parses either frame shape, setting Err/isFailed when
// the frame carried an "Err" key.
func (r *Response) UnmarshalJSON(data []byte) error {
	var probe struct {
		Ok  *string `json:"Ok"`
		Err *string `json:"Err"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Err != nil {
		r.Err = probe.Err
		r.isFailed = true
		return nil
	}
	r.Value = probe.Ok
	r.isFailed = false
	return nil
}

// Encode marshals req as a single self-delimiting JSON object.
func Encode(req Request) ([]byte, error) { return json.Marshal(req) }

// EncodeResponse marshals resp as a single self-delimiting JSON object.
func EncodeResponse(resp Response) ([]byte, error) { return json.Marshal(resp) }

// RequestDecoder reads a stream of concatenated Request frames with no
// delimiter beyond each object's own closing brace, mirroring
// serde_json::Deserializer::into_iter on the other end of this wire
// protocol.
type RequestDecoder struct {
	dec *json.Decoder
}

// NewRequestDecoder wraps r for decoding successive Request frames.
func NewRequestDecoder(r io.Reader) *RequestDecoder {
	return &RequestDecoder{dec: json.NewDecoder(r)}
}

// Next decodes the following Request frame. It returns io.EOF once the
// underlying stream is exhausted between frames.
func (d *RequestDecoder) Next() (Request, error) {
	var req Request
	if err := d.dec.Decode(&req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// ResponseDecoder reads a stream of concatenated Response frames, used
// by the client to read one reply per request sent.
type ResponseDecoder struct {
	dec *json.Decoder
}

// NewResponseDecoder wraps r for decoding successive Response frames.
func NewResponseDecoder(r io.Reader) *ResponseDecoder {
	return &ResponseDecoder{dec: json.NewDecoder(r)}
}

// Next decodes the following Response frame.
func (d *ResponseDecoder) Next() (Response, error) {
	var resp Response
	if err := d.dec.Decode(&resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}
