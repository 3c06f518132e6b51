// Package server exposes the HTTP surface: the provider webhook (handshake
// and inbound deliveries) and a small operator API for incidents and
// sessions.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/makaohq/makao/internal/channel"
	"github.com/makaohq/makao/internal/emergency"
	"github.com/makaohq/makao/internal/router"
	"github.com/makaohq/makao/internal/session"
)

// Server wires the webhook and operator API onto a gin engine.
type Server struct {
	gin         *gin.Engine
	router      *router.Router
	engine      *emergency.Engine
	incidents   *emergency.IncidentStore
	sessions    session.Store
	verifyToken string
	appSecret   string

	wg sync.WaitGroup
}

// Opts configures a Server.
type Opts struct {
	Router    *router.Router
	Engine    *emergency.Engine
	Incidents *emergency.IncidentStore
	Sessions  session.Store

	// VerifyToken answers the provider's webhook subscription handshake.
	VerifyToken string

	// AppSecret verifies webhook signatures. Empty disables verification.
	AppSecret string
}

// New creates a Server and registers all routes.
func New(opts Opts) (*Server, error) {
	if opts.Router == nil {
		return nil, fmt.Errorf("server: router is required")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("server: emergency engine is required")
	}
	if opts.Incidents == nil {
		return nil, fmt.Errorf("server: incident store is required")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("server: session store is required")
	}
	if opts.VerifyToken == "" {
		return nil, fmt.Errorf("server: verify token is required")
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		gin:         gin.New(),
		router:      opts.Router,
		engine:      opts.Engine,
		incidents:   opts.Incidents,
		sessions:    opts.Sessions,
		verifyToken: opts.VerifyToken,
		appSecret:   opts.AppSecret,
	}
	s.gin.Use(gin.Recovery())

	s.gin.GET("/healthz", s.health)
	s.gin.GET("/webhook", s.verifyWebhook)
	s.gin.POST("/webhook", s.receiveWebhook)

	api := s.gin.Group("/api")
	api.GET("/incidents", s.listIncidents)
	api.GET("/incidents/:id", s.getIncident)
	api.POST("/incidents/:id/respond", s.respondIncident)
	api.POST("/incidents/:id/resolve", s.resolveIncident)
	api.GET("/sessions/:address", s.getSession)
	return s, nil
}

// Handler exposes the http.Handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.gin
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// verifyWebhook answers the provider's subscription handshake by echoing the
// challenge when the verify token matches.
func (s *Server) verifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")
	if mode == "subscribe" && token == s.verifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	c.String(http.StatusForbidden, "verification failed")
}

// receiveWebhook accepts an inbound delivery. The provider expects a prompt
// 200; message routing happens in the background, so slow sends or a slow
// database never trigger provider-side retries.
func (s *Server) receiveWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "unreadable body")
		return
	}
	if !channel.VerifySignature(s.appSecret, body, c.GetHeader("X-Hub-Signature-256")) {
		log.Printf("server: webhook signature rejected")
		c.String(http.StatusUnauthorized, "invalid signature")
		return
	}

	wh := channel.ParseWebhook(body)
	c.String(http.StatusOK, "ok")

	for _, msg := range wh.Messages {
		s.wg.Add(1)
		go func(m channel.InboundMessage) {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			s.router.Handle(ctx, m)
		}(msg)
	}
	for _, st := range wh.Statuses {
		if st.Status == "failed" {
			log.Printf("server: delivery failed for %s to %s", st.MessageID, st.RecipientID)
		}
	}
}

func (s *Server) listIncidents(c *gin.Context) {
	incidents, err := s.incidents.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, incidents)
}

func (s *Server) getIncident(c *gin.Context) {
	inc, err := s.incidents.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, emergency.ErrIncidentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, inc)
}

func (s *Server) respondIncident(c *gin.Context) {
	inc, err := s.engine.MarkResponding(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.lifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, inc)
}

func (s *Server) resolveIncident(c *gin.Context) {
	var req struct {
		Notes string `json:"notes"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
	}
	inc, err := s.engine.Resolve(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		s.lifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, inc)
}

func (s *Server) lifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, emergency.ErrIncidentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
	case errors.Is(err, emergency.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "incident already resolved"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) getSession(c *gin.Context) {
	sess, err := s.sessions.Get(c.Request.Context(), c.Param("address"))
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no live session"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// StartOpts configures Start.
type StartOpts struct {
	Port int
}

// Start serves until ctx is cancelled, then shuts down gracefully, waiting
// for in-flight webhook routing to finish.
func (s *Server) Start(ctx context.Context, opts StartOpts) error {
	if opts.Port == 0 {
		opts.Port = 8080
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: s.gin,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server: listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	log.Printf("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.wg.Wait()
	return nil
}
