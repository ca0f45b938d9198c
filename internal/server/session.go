package server

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/wordgate/wordgate/internal/core/data"
	"github.com/wordgate/wordgate/internal/wire"
)

var (
	sessionsTotal          = metrics.NewCounter("wordgate_sessions_total")
	requestsTotal          = metrics.NewCounter("wordgate_requests_total")
	malformedRequestsTotal = metrics.NewCounter("wordgate_malformed_requests_total")
	terminalResponsesTotal = metrics.NewCounter("wordgate_terminal_responses_total")
	wordsSentTotal         = metrics.NewCounter("wordgate_words_sent_total")
)

// session tracks the state of one persistent connection from accept to
// disconnect.
type session struct {
	id        uuid.UUID
	conn      net.Conn
	logger    *logrus.Entry
	startedAt time.Time

	requests          uint64
	terminalResponses uint64
	wordsSent         uint64
}

// handleSession serves one connected peer until it disconnects. Every request
// line gets exactly one response; a failed read or write ends the session
// with nothing further sent.
func (s *Server) handleSession(conn net.Conn) {
	sess := &session{
		id:        uuid.New(),
		conn:      conn,
		startedAt: time.Now(),
	}
	sess.logger = s.logger.WithFields(logrus.Fields{
		"session": sess.id.String(),
		"remote":  conn.RemoteAddr().String(),
	})

	sessionsTotal.Inc()
	sess.logger.Info("accepted connection")
	defer s.closeSession(sess)

	reader := bufio.NewReader(conn)
	for {
		// Requests are newline-delimited; accumulate bytes until the
		// terminator rather than trusting one read to return one request.
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			response := s.respond(sess, line)
			if _, werr := conn.Write(response); werr != nil {
				sess.logger.Warnf("failed to write response: %s", werr)
				return
			}
		}
		if err != nil {
			// Peer closed the connection or the read failed; either way the
			// session is over and no response is owed.
			return
		}
	}
}

// respond produces the single deterministic response for one request line.
// A malformed request is answered with the bare end marker, byte-identical
// to an out-of-range offset.
func (s *Server) respond(sess *session, line string) []byte {
	sess.requests++
	requestsTotal.Inc()

	req, err := wire.ParseRequest(line)
	if err != nil {
		malformedRequestsTotal.Inc()
		sess.terminalResponses++
		terminalResponsesTotal.Inc()
		sess.logger.Debugf("malformed request: %s", err)
		return wire.EncodePage(nil, true)
	}

	key := fmt.Sprintf("%d,%d", req.Offset, req.Count)
	if cached, found := s.pages.Get(key); found {
		response := cached.([]byte)
		sess.observe(req, response)
		return response
	}

	words, terminal := s.store.Page(req.Offset, req.Count)
	response := wire.EncodePage(words, terminal)
	s.pages.Set(key, response, cache.DefaultExpiration)

	sess.observe(req, response)
	return response
}

// observe updates the session and server counters for one served page.
func (sess *session) observe(req wire.Request, response []byte) {
	words, terminal := wire.DecodePage(string(response))
	if terminal {
		sess.terminalResponses++
		terminalResponsesTotal.Inc()
	}
	sess.wordsSent += uint64(len(words))
	wordsSentTotal.Add(len(words))
	sess.logger.Debugf("served offset=%d count=%d words=%d terminal=%t",
		req.Offset, req.Count, len(words), terminal)
}

// closeSession tears the connection down and, when persistence is enabled,
// records the completed session.
func (s *Server) closeSession(sess *session) {
	if err := sess.conn.Close(); err != nil {
		sess.logger.Warnf("failed to close client connection: %s", err)
	}
	sess.logger.Infof("disconnected after %d requests", sess.requests)

	if s.db == nil {
		return
	}
	record := &data.SessionRecord{
		SessionID:         sess.id.String(),
		RemoteAddr:        sess.conn.RemoteAddr().String(),
		StartedAt:         sess.startedAt,
		EndedAt:           time.Now(),
		Requests:          sess.requests,
		TerminalResponses: sess.terminalResponses,
		WordsSent:         sess.wordsSent,
	}
	if err := data.CreateSessionRecord(s.db, record); err != nil {
		sess.logger.Warnf("failed to persist session record: %s", err)
	}
}
