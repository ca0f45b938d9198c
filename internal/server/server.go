// The server package implements the wordgate protocol's serving side: a TCP
// listener that hands each accepted connection to a session handler.
//
// Service is strictly sequential. The accept loop does not take the next
// connection until the current session's peer has disconnected, so no two
// clients are ever served concurrently. A peer that never closes its
// connection starves every waiting client; this mirrors the protocol's
// documented behavior rather than an oversight to fix here.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/wordgate/wordgate/internal/core"
	"github.com/wordgate/wordgate/internal/wordstore"
)

const (
	// Encoded pages never go stale (the store is immutable) but there is no
	// reason to hold every page of a large store in memory forever.
	pageCacheExpiration = 5 * time.Minute
	pageCacheCleanup    = 10 * time.Minute
)

// Server serves the word sequence to connecting clients, one session at a time.
type Server struct {
	cfg    *core.Config
	store  *wordstore.Store
	logger *logrus.Logger

	// Memoized encoded responses keyed by "offset,count".
	pages *cache.Cache

	// Session history persistence; nil when the database is disabled.
	db *gorm.DB
}

// New creates a Server for the given store.
func New(cfg *core.Config, store *wordstore.Store, logger *logrus.Logger) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		logger: logger,
		pages:  cache.New(pageCacheExpiration, pageCacheCleanup),
	}
}

// SetDatabase enables session history persistence on the given connection.
func (s *Server) SetDatabase(db *gorm.DB) {
	s.db = db
}

// ListenAndServe opens the TCP socket for the configured address and enters
// the blocking accept loop. It returns once ctx is cancelled or the listener
// fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr, err := net.ResolveTCPAddr("tcp", s.cfg.ServerAddr())
	if err != nil {
		return fmt.Errorf("error resolving address %s: %w", s.cfg.ServerAddr(), err)
	}

	socket, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return fmt.Errorf("error listening on socket: %s", err.Error())
	}

	return s.Serve(ctx, socket)
}

// Serve runs the blocking accept loop on an already-bound listener. Each
// accepted connection is served to completion before the next Accept; see
// the package comment for why.
func (s *Server) Serve(ctx context.Context, socket net.Listener) error {
	defer s.logger.Info("server exiting")

	// Accept blocks with no way to take ctx, so unblock it by closing the
	// listener when the context ends.
	go func() {
		<-ctx.Done()
		_ = socket.Close()
	}()

	s.logger.Infof("waiting for connections on %v (store holds %d words)", socket.Addr(), s.store.Len())

	for {
		connection, err := socket.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warnf("failed to accept connection: %s", err.Error())
			continue
		}

		s.handleSession(connection)
	}
}
