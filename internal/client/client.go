// Package client implements the kvs-client side of the wire protocol:
// one TCP connection, one request written at a time, one response read
// in reply.
package client

import (
	"bufio"
	"errors"
	"fmt"
	"net"

	"github.com/ignitekv/ignite/internal/protocol"
)

// ErrKeyNotFound is returned by Remove when the server reports the key
// had no entry.
var ErrKeyNotFound = errors.New("key not found")

// Client is a connected kvs wire-protocol client.
type Client struct {
	conn net.Conn
	dec  *protocol.ResponseDecoder
}

// Connect dials addr and returns a ready Client.
func Connect(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, dec: protocol.NewResponseDecoder(bufio.NewReader(conn))}, nil
}

func (c *Client) roundTrip(req protocol.Request) (protocol.Response, error) {
	body, err := protocol.Encode(req)
	if err != nil {
		return protocol.Response{}, err
	}
	if _, err := c.conn.Write(body); err != nil {
		return protocol.Response{}, err
	}
	return c.dec.Next()
}

// Get fetches the value stored under key. found is false when the
// server reports no value for key.
func (c *Client) Get(key string) (value string, found bool, err error) {
	resp, err := c.roundTrip(protocol.NewGet(key))
	if err != nil {
		return "", false, err
	}
	if resp.Failed() {
		return "", false, fmt.Errorf("%s", *resp.Err)
	}
	if resp.Value == nil {
		return "", false, nil
	}
	return *resp.Value, true, nil
}

// Set stores value under key.
func (c *Client) Set(key, value string) error {
	resp, err := c.roundTrip(protocol.NewSet(key, value))
	if err != nil {
		return err
	}
	if resp.Failed() {
		return fmt.Errorf("%s", *resp.Err)
	}
	return nil
}

// Remove deletes key, returning ErrKeyNotFound if the server reports it
// had no entry.
func (c *Client) Remove(key string) error {
	resp, err := c.roundTrip(protocol.NewRemove(key))
	if err != nil {
		return err
	}
	if resp.Failed() {
		if *resp.Err == ErrKeyNotFound.Error() {
			return ErrKeyNotFound
		}
		return fmt.Errorf("%s", *resp.Err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
