package ws

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	bridge "github.com/GriffinCanCode/trussfs/internal/api/http"
	"github.com/GriffinCanCode/trussfs/internal/domain/session"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/logging"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
	"github.com/GriffinCanCode/trussfs/internal/shared/handle"
	"github.com/GriffinCanCode/trussfs/internal/shared/types"
	"github.com/GriffinCanCode/trussfs/internal/watch"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
	maxFrame     = 4096
)

// Handler manages watcher streams.
type Handler struct {
	sessions *session.Manager
	metrics  *monitoring.Metrics
	log      *logging.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a stream handler accepting the given browser origins.
// "*" accepts any origin.
func NewHandler(sessions *session.Manager, metrics *monitoring.Metrics, log *logging.Logger, origins []string) *Handler {
	if log == nil {
		log = logging.NewNop()
	}
	h := &Handler{sessions: sessions, metrics: metrics, log: log.Named("ws")}
	h.upgrader = websocket.Upgrader{CheckOrigin: checkOrigin(origins)}
	return h
}

func checkOrigin(origins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
	}
}

// Stream upgrades the request and pushes the records of :handle until the
// watcher ends or the client goes away. Lookup failures are answered as
// plain HTTP errors before the upgrade.
func (h *Handler) Stream(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		reject(c, fserr.NotFound("session", c.Param("id")))
		return
	}
	wh, err := handle.Parse(c.Param("handle"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error(), Kind: fserr.KindMalformed.String()})
		return
	}
	w, err := s.Context.Watcher(wh)
	if err != nil {
		reject(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	st := &stream{
		conn:    conn,
		session: s,
		watcher: w,
		handle:  wh,
		metrics: h.metrics,
		log:     h.log.With(zap.String("session", s.ID), zap.Stringer("handle", wh)),
		control: make(chan string, 8),
	}
	st.serve(c.Request.Context())
}

func reject(c *gin.Context, err error) {
	kind := fserr.KindOf(err)
	c.AbortWithStatusJSON(bridge.StatusFor(kind), types.ErrorResponse{Error: err.Error(), Kind: kind.String()})
}

// stream is one live connection. Only serve writes to conn.
type stream struct {
	conn    *websocket.Conn
	session *session.Session
	watcher *watch.Watcher
	handle  handle.Handle
	metrics *monitoring.Metrics
	log     *logging.Logger
	control chan string
}

func (s *stream) serve(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()
	defer s.conn.Close()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		s.readLoop(ctx)
	}()

	if err := s.send(types.WSMessage{Type: "system", Handle: uint64(s.handle), Message: "watching"}); err != nil {
		return
	}
	// Records queued before the stream opened go out first.
	if err := s.flush(); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.watcher.Notify():
			if err := s.flush(); err != nil {
				return
			}
		case <-s.watcher.Done():
			s.closed()
			return
		case kind := <-s.control:
			var err error
			switch kind {
			case "ping":
				err = s.send(types.WSMessage{Type: "pong"})
			case "poll":
				err = s.flush()
			default:
				err = s.send(types.WSMessage{Type: "error", Message: "unknown message type " + kind})
			}
			if err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop decodes client frames and hands them to serve.
func (s *stream) readLoop(ctx context.Context) {
	s.conn.SetReadLimit(maxFrame)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.session.Touch()
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		s.session.Touch()

		var msg types.WSMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			msg.Type = "malformed"
		}
		s.metrics.RecordWSMessage("in", msg.Type)

		select {
		case s.control <- msg.Type:
		case <-ctx.Done():
			return
		}
	}
}

func (s *stream) flush() error {
	events := s.watcher.PollStrings()
	if len(events) == 0 {
		return nil
	}
	s.session.Touch()
	return s.send(types.WSMessage{Type: "events", Handle: uint64(s.handle), Events: events})
}

// closed reports the end of the watcher. Stop discards the queue, so only
// a fatal backend error leaves records worth flushing.
func (s *stream) closed() {
	_ = s.flush()
	msg := types.WSMessage{Type: "closed", Handle: uint64(s.handle), Message: "watcher stopped"}
	if err := s.watcher.Err(); err != nil {
		msg.Message = err.Error()
	}
	if s.send(msg) != nil {
		return
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *stream) send(msg types.WSMessage) error {
	msg.Timestamp = time.Now().Unix()
	data, err := sonic.Marshal(msg)
	if err != nil {
		return err
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.log.Debug("websocket write failed", zap.Error(err))
		return err
	}
	s.metrics.RecordWSMessage("out", msg.Type)
	return nil
}
