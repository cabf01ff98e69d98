package control

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"streamwall/internal/core/domain"
	"streamwall/internal/core/ports"
	"streamwall/internal/crdt"
	"streamwall/internal/infrastructure/monitoring"
	"streamwall/pkg/jsondiff"

	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options carries the connection timing knobs for the control server.
type Options struct {
	PingInterval  time.Duration
	PongTimeout   time.Duration
	WriteTimeout  time.Duration
	AllowedOrigin string

	// MessageLimiter, when set, builds a per-connection rate limiter for
	// inbound frames.
	MessageLimiter func() *rate.Limiter

	// MaxMessageSize caps inbound frame size in bytes; zero means no cap.
	MaxMessageSize int64
}

// Server owns every attached control connection. It relays layout document
// updates between replicas, pushes role-scoped state snapshots and deltas,
// and dispatches capability-gated actions to the core services.
type Server struct {
	opts    Options
	doc     *crdt.Doc
	state   ports.StateService
	tokens  ports.TokenService
	streams ports.StreamService
	delay   ports.DelayService
	wall    ports.WallController
	metrics *monitoring.PrometheusCollector
	logger  *zap.Logger

	upgrader websocket.Upgrader

	mu            sync.Mutex
	clients       map[string]*client
	displayStates map[int]json.RawMessage
}

func NewServer(
	doc *crdt.Doc,
	state ports.StateService,
	tokens ports.TokenService,
	streams ports.StreamService,
	delay ports.DelayService,
	wall ports.WallController,
	metrics *monitoring.PrometheusCollector,
	opts Options,
	logger *zap.Logger,
) *Server {
	s := &Server{
		opts:          opts,
		doc:           doc,
		state:         state,
		tokens:        tokens,
		streams:       streams,
		delay:         delay,
		wall:          wall,
		metrics:       metrics,
		logger:        logger,
		clients:       make(map[string]*client),
		displayStates: make(map[int]json.RawMessage),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return origin == s.opts.AllowedOrigin
		},
	}

	s.doc.OnUpdate(func(update []byte, origin string) {
		s.broadcastDocUpdate(update, origin)
		s.syncViews()
	})
	s.tokens.OnChange(s.handleTokenChange)
	s.syncViews()
	// Prime the auth section so the first admin snapshot already carries it.
	s.handleTokenChange()
	return s
}

// Run consumes the aggregator's snapshot channel and broadcasts deltas until
// the context is canceled. One goroutine owns all delta computation, which is
// what keeps per-connection delta chains consistent.
func (s *Server) Run(ctx context.Context) {
	updates := s.state.Subscribe()
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case snap := <-updates:
			if s.metrics != nil {
				custom := 0
				for _, st := range snap.Streams {
					if st.DataSource == domain.DataSourceCustom {
						custom++
					}
				}
				s.metrics.SetCustomStreamCount(custom)
			}
			s.broadcastState(snap)
		}
	}
}

// HandleConnection upgrades an authenticated request and services it until
// the peer disconnects. The caller has already resolved the identity.
func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error status (403 on origin
		// mismatch).
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &client{
		id:           uuid.NewString(),
		identity:     identity,
		conn:         conn,
		writeTimeout: s.opts.WriteTimeout,
	}

	s.attach(c)
	if s.metrics != nil {
		s.metrics.ClientConnected()
	}
	s.logger.Info("control client connected",
		zap.String("conn_id", c.id),
		zap.String("name", identity.Name),
		zap.String("role", string(identity.Role)))

	s.readLoop(r.Context(), c)

	s.detach(c)
	if s.metrics != nil {
		s.metrics.ClientDisconnected()
	}
	s.logger.Info("control client disconnected", zap.String("conn_id", c.id))
}

// attach registers the connection and primes it: the full role-scoped state
// snapshot, then the full layout document encoding. Holding the server mutex
// across both sends keeps them ordered ahead of any delta or incremental
// update this connection will observe.
func (s *Server) attach(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := s.state.Snapshot().View(c.identity.Role)
	if err := c.sendJSON(map[string]interface{}{"type": "state", "state": view}); err != nil {
		s.logger.Warn("failed to send initial state", zap.String("conn_id", c.id), zap.Error(err))
	}
	if err := c.send(websocket.BinaryMessage, s.doc.EncodeState()); err != nil {
		s.logger.Warn("failed to send initial doc state", zap.String("conn_id", c.id), zap.Error(err))
	}

	norm, err := jsondiff.Normalize(view)
	if err != nil {
		s.logger.Error("failed to normalize state view", zap.Error(err))
	}
	c.lastState = norm
	s.clients[c.id] = c
}

func (s *Server) detach(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c.id)
}

type frame struct {
	messageType int
	data        []byte
}

func (s *Server) readLoop(ctx context.Context, c *client) {
	if s.opts.MaxMessageSize > 0 {
		c.conn.SetReadLimit(s.opts.MaxMessageSize)
	}
	c.conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
		return nil
	})

	frames := make(chan frame, 10)
	errs := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			mt, data, err := c.conn.ReadMessage()
			if err != nil {
				errs <- err
				return
			}
			c.conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
			select {
			case frames <- frame{messageType: mt, data: data}:
			case <-done:
				return
			}
		}
	}()

	pingTicker := time.NewTicker(s.opts.PingInterval)
	defer pingTicker.Stop()

	var limiter *rate.Limiter
	if s.opts.MessageLimiter != nil {
		limiter = s.opts.MessageLimiter()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case f := <-frames:
			if limiter != nil && !limiter.Allow() {
				s.logger.Warn("message rate limit exceeded, dropping frame",
					zap.String("conn_id", c.id))
				continue
			}
			switch f.messageType {
			case websocket.BinaryMessage:
				s.handleBinary(ctx, c, f.data)
			case websocket.TextMessage:
				s.handleText(ctx, c, f.data)
			}

		case <-pingTicker.C:
			if err := c.ping(); err != nil {
				s.logger.Debug("ping failed", zap.String("conn_id", c.id), zap.Error(err))
				return
			}

		case err := <-errs:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("read error", zap.String("conn_id", c.id), zap.Error(err))
			}
			return
		}
	}
}

// handleBinary applies a layout document edit received from a client. The
// update is merged and relayed to every other connection; the sender never
// sees its own edit again.
func (s *Server) handleBinary(ctx context.Context, c *client, data []byte) {
	if !domain.RoleCan(c.identity.Role, domain.CapMutateStateDoc) {
		s.logger.Warn("unauthorized attempt to edit state doc",
			zap.String("conn_id", c.id),
			zap.String("name", c.identity.Name))
		if s.metrics != nil {
			s.metrics.UnauthorizedAttempt(string(c.identity.Role), string(domain.CapMutateStateDoc))
		}
		s.respond(c, nil, map[string]interface{}{"error": "unauthorized"})
		return
	}

	if err := s.doc.ApplyUpdate(data, c.id); err != nil {
		s.logger.Warn("rejected malformed doc update",
			zap.String("conn_id", c.id), zap.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.DocUpdateApplied(false)
	}
}

func (s *Server) handleText(ctx context.Context, c *client, data []byte) {
	env, act, err := domain.ParseAction(data)
	if err != nil {
		if act == nil && env.MsgType == "" {
			// Not even an envelope; drop it.
			s.logger.Warn("received unexpected ws data", zap.String("conn_id", c.id))
			return
		}
		s.respond(c, env.ID, map[string]interface{}{"error": err.Error()})
		return
	}

	if !domain.RoleCan(c.identity.Role, act.Capability()) {
		s.logger.Warn("unauthorized action",
			zap.String("conn_id", c.id),
			zap.String("name", c.identity.Name),
			zap.String("action", act.Type()))
		if s.metrics != nil {
			s.metrics.UnauthorizedAttempt(string(c.identity.Role), string(act.Capability()))
		}
		s.respond(c, env.ID, map[string]interface{}{"error": "unauthorized"})
		return
	}

	s.dispatch(ctx, c, env, act)
}

// respond sends an RPC-style response, echoing the request id verbatim when
// one was supplied.
func (s *Server) respond(c *client, id json.RawMessage, fields map[string]interface{}) {
	msg := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		msg[k] = v
	}
	msg["response"] = true
	if len(id) > 0 {
		msg["id"] = id
	}
	if err := c.sendJSON(msg); err != nil {
		s.logger.Debug("failed to send response", zap.String("conn_id", c.id), zap.Error(err))
	}
}

// broadcastState sends each connection the delta between the projection it
// last saw and the new snapshot, both scoped to its role.
func (s *Server) broadcastState(snap domain.Snapshot) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.clients {
		view := snap.View(c.identity.Role)
		norm, err := jsondiff.Normalize(view)
		if err != nil {
			s.logger.Error("failed to normalize state view", zap.Error(err))
			continue
		}
		delta, changed := jsondiff.Diff(c.lastState, norm)
		c.lastState = norm
		if !changed {
			continue
		}
		data, err := json.Marshal(map[string]interface{}{"type": "state-delta", "delta": delta})
		if err != nil {
			s.logger.Error("failed to encode state delta", zap.Error(err))
			continue
		}
		if err := c.send(websocket.TextMessage, data); err != nil {
			s.logger.Debug("failed to send state delta", zap.String("conn_id", c.id), zap.Error(err))
			continue
		}
		if s.metrics != nil {
			s.metrics.DeltaSent(len(data))
		}
	}

	if s.metrics != nil {
		s.metrics.ObserveBroadcastDuration(time.Since(start).Seconds())
	}
}

// broadcastDocUpdate relays a merged layout update to every connection
// except its origin.
func (s *Server) broadcastDocUpdate(update []byte, origin string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.clients {
		if c.id == origin {
			continue
		}
		if err := c.send(websocket.BinaryMessage, update); err != nil {
			s.logger.Debug("failed to relay doc update", zap.String("conn_id", c.id), zap.Error(err))
			continue
		}
		if s.metrics != nil {
			s.metrics.BroadcastBytes(len(update))
		}
	}
}

// syncViews rebuilds the per-cell view projection from the layout document
// and the latest display-state reports, and hands it to the aggregator.
func (s *Server) syncViews() {
	s.mu.Lock()
	cells := s.doc.Cells()
	views := make([]domain.ViewState, len(cells))
	for i, cell := range cells {
		views[i] = domain.ViewState{
			Idx:          cell.Idx,
			StreamID:     cell.StreamID,
			Width:        cell.Width,
			Height:       cell.Height,
			DisplayState: s.displayStates[cell.Idx],
		}
	}
	s.mu.Unlock()

	s.state.SetViewStates(views)
}

// SetDisplayStates records the opaque per-view statuses reported by the
// display layer and re-projects the views.
func (s *Server) SetDisplayStates(states map[int]json.RawMessage) {
	s.mu.Lock()
	s.displayStates = states
	s.mu.Unlock()
	s.syncViews()
}

// handleTokenChange re-projects auth state and evicts connections whose
// session no longer exists. Credential-less and admin connections stay.
func (s *Server) handleTokenChange() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	auth, err := s.tokens.AuthState(ctx)
	if err != nil {
		s.logger.Error("failed to load auth state", zap.Error(err))
		return
	}
	s.state.SetAuthState(auth)
	if s.metrics != nil {
		s.metrics.SetTokenCounts(len(auth.Invites), len(auth.Sessions))
	}

	live := make(map[string]bool, len(auth.Sessions))
	for _, session := range auth.Sessions {
		live[session.ID] = true
	}

	s.mu.Lock()
	var evicted []*client
	for _, c := range s.clients {
		if c.identity.Role == domain.RoleAdmin {
			continue
		}
		if c.identity.ID != "" && !live[c.identity.ID] {
			evicted = append(evicted, c)
		}
	}
	s.mu.Unlock()

	for _, c := range evicted {
		s.logger.Info("closing connection for revoked session",
			zap.String("conn_id", c.id),
			zap.String("name", c.identity.Name))
		c.conn.Close()
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}
