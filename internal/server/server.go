// Package server implements the TCP front-end for the key-value store:
// a sequential accept-then-serve loop matching the engine's
// single-threaded, unlocked design, one connection fully drained before
// the next is accepted.
package server

import (
	"context"
	"net"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/ignitekv/ignite/internal/protocol"
)

// Store is the capability surface a storage engine must expose to be
// served over the wire protocol. Both internal/engine.Engine and
// internal/sqliteengine.Engine satisfy it.
type Store interface {
	Set(key, value string) error
	Get(key string) (value string, found bool, err error)
	Remove(key string) error
}

// Server drives a Store over the TCP wire protocol.
type Server struct {
	store  Store
	log    *zap.SugaredLogger
	tracer trace.Tracer
}

// New builds a Server around store. tracer may be nil, in which case a
// no-op tracer is used.
func New(store Store, log *zap.SugaredLogger, tracer trace.Tracer) *Server {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Server{store: store, log: log, tracer: tracer}
}

// Run binds addr and serves connections until ctx is cancelled. A failed
// Accept is logged and the loop goes on accepting. Connections are
// accepted and served one at a time.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer listener.Close()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	if s.log != nil {
		s.log.Infow("server listening", "addr", addr)
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if s.log != nil {
				s.log.Errorw("accept failed", "error", err)
			}
			continue
		}
		s.serve(ctx, conn)
	}
}

// serve fully drains one connection's request stream before returning,
// keeping the server's access to the underlying store sequential.
func (s *Server) serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	connID := uuid.New().String()
	peer := conn.RemoteAddr().String()
	log := s.log
	if log != nil {
		log = log.With("connectionId", connID, "peer", peer)
	}

	decoder := protocol.NewRequestDecoder(conn)
	for {
		req, err := decoder.Next()
		if err != nil {
			if log != nil {
				log.Debugw("connection closed", "error", err)
			}
			return
		}

		resp := s.handle(ctx, connID, req, log)

		body, err := protocol.EncodeResponse(resp)
		if err != nil {
			if log != nil {
				log.Errorw("failed to encode response", "error", err)
			}
			return
		}
		if _, err := conn.Write(body); err != nil {
			if log != nil {
				log.Errorw("failed to write response", "error", err)
			}
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, connID string, req protocol.Request, log *zap.SugaredLogger) protocol.Response {
	ctx, span := s.tracer.Start(ctx, "server.handle", trace.WithAttributes(attribute.String("connection.id", connID)))
	defer span.End()

	switch {
	case req.Get != nil:
		return s.handleGet(ctx, req.Get, log)
	case req.Set != nil:
		return s.handleSet(ctx, req.Set, log)
	case req.Remove != nil:
		return s.handleRemove(ctx, req.Remove, log)
	default:
		return protocol.ErrResponse("malformed request: no operation specified")
	}
}

func (s *Server) handleGet(ctx context.Context, req *protocol.GetRequest, log *zap.SugaredLogger) protocol.Response {
	_, span := s.tracer.Start(ctx, "engine.get")
	defer span.End()

	value, found, err := s.store.Get(req.Key)
	if err != nil {
		if log != nil {
			log.Errorw("get failed", "key", req.Key, "error", err)
		}
		return protocol.ErrResponse(err.Error())
	}
	if !found {
		return protocol.OkResponse(nil)
	}
	return protocol.OkResponse(&value)
}

func (s *Server) handleSet(ctx context.Context, req *protocol.SetRequest, log *zap.SugaredLogger) protocol.Response {
	_, span := s.tracer.Start(ctx, "engine.set")
	defer span.End()

	if err := s.store.Set(req.Key, req.Value); err != nil {
		if log != nil {
			log.Errorw("set failed", "key", req.Key, "error", err)
		}
		return protocol.ErrResponse(err.Error())
	}
	return protocol.OkResponse(nil)
}

func (s *Server) handleRemove(ctx context.Context, req *protocol.RemoveRequest, log *zap.SugaredLogger) protocol.Response {
	_, span := s.tracer.Start(ctx, "engine.remove")
	defer span.End()

	if err := s.store.Remove(req.Key); err != nil {
		if log != nil {
			log.Errorw("remove failed", "key", req.Key, "error", err)
		}
		return protocol.ErrResponse(err.Error())
	}
	return protocol.OkResponse(nil)
}
