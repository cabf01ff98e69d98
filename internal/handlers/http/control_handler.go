package http

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"streamwall/internal/core/ports"
	"streamwall/internal/infrastructure/control"
	"streamwall/internal/infrastructure/middleware"
	"streamwall/internal/infrastructure/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

type ControlHandler struct {
	baseURL       string
	sessionMaxAge time.Duration
	tokens        ports.TokenService
	server        *control.Server
	metrics       *monitoring.PrometheusCollector
	templates     *template.Template
	logger        *zap.Logger
}

func NewControlHandler(
	baseURL string,
	sessionMaxAge time.Duration,
	tokens ports.TokenService,
	server *control.Server,
	metrics *monitoring.PrometheusCollector,
	logger *zap.Logger,
) (*ControlHandler, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &ControlHandler{
		baseURL:       baseURL,
		sessionMaxAge: sessionMaxAge,
		tokens:        tokens,
		server:        server,
		metrics:       metrics,
		templates:     templates,
		logger:        logger,
	}, nil
}

func (h *ControlHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/", h.ControlPage)
	router.GET("/invite/:token", h.RedeemInvite)
	router.GET("/ws", h.WebSocket)
	router.GET("/healthz", h.Health)
}

// ControlPage serves the control UI entry point with the role and websocket
// endpoint baked in.
func (h *ControlHandler) ControlPage(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)

	c.Header("Content-Type", "text/html; charset=utf-8")
	err := h.templates.ExecuteTemplate(c.Writer, "control.html", gin.H{
		"Role":       string(identity.Role),
		"WSEndpoint": h.wsEndpoint(),
	})
	if err != nil {
		h.logger.Error("failed to render control page", zap.Error(err))
	}
}

// RedeemInvite exchanges a single-use invite for a session cookie and sends
// the new collaborator to the control page.
func (h *ControlHandler) RedeemInvite(c *gin.Context) {
	session, err := h.tokens.RedeemInvite(c.Request.Context(), c.Param("token"))
	if err != nil {
		if h.metrics != nil {
			h.metrics.InviteRedemptionFailed()
		}
		c.Status(http.StatusForbidden)
		return
	}

	c.SetCookie(
		middleware.SessionCookieName,
		session.Secret,
		int(h.sessionMaxAge.Seconds()),
		"/",
		"",
		strings.HasPrefix(h.baseURL, "https://"),
		true,
	)
	c.Redirect(http.StatusFound, "/")
}

// WebSocket hands the connection to the control server. Plain GETs that are
// not upgrade requests get a 404, matching the rest of the unknown-route
// surface.
func (h *ControlHandler) WebSocket(c *gin.Context) {
	if !websocket.IsWebSocketUpgrade(c.Request) {
		c.Status(http.StatusNotFound)
		return
	}

	identity := middleware.IdentityFromContext(c)
	h.server.HandleConnection(c.Writer, c.Request, identity)
}

func (h *ControlHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ControlHandler) wsEndpoint() string {
	u, err := url.Parse(h.baseURL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	return u.String()
}
