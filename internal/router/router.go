// Package router dispatches inbound messages: it loads or creates the
// session, gives the emergency engine first claim, runs the workflow step for
// the current state, persists the session, and delivers the replies.
package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/makaohq/makao/internal/catalog"
	"github.com/makaohq/makao/internal/channel"
	"github.com/makaohq/makao/internal/directory"
	"github.com/makaohq/makao/internal/emergency"
	"github.com/makaohq/makao/internal/session"
	"github.com/makaohq/makao/internal/workflow"
)

// Router is the per-message dispatch pipeline.
type Router struct {
	sender       channel.Sender
	store        session.Store
	tenants      directory.Tenants
	engine       *emergency.Engine
	env          *workflow.Env
	handlers     map[session.State]workflow.StepFunc
	dedupe       *dedupe
	ttl          time.Duration
	historyLimit int
}

// RouterOpts configures a Router.
type RouterOpts struct {
	Sender  channel.Sender
	Store   session.Store
	Tenants directory.Tenants
	Engine  *emergency.Engine
	Env     *workflow.Env

	// TTL is the rolling session lifetime, refreshed on every message.
	TTL time.Duration

	// HistoryLimit bounds the per-session message history. Defaults to
	// session.DefaultHistoryLimit.
	HistoryLimit int

	// DedupeSize bounds the recent-message-id window. Defaults to 512.
	DedupeSize int
}

// New creates a Router.
func New(opts RouterOpts) (*Router, error) {
	if opts.Sender == nil {
		return nil, fmt.Errorf("router: sender is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("router: session store is required")
	}
	if opts.Tenants == nil {
		return nil, fmt.Errorf("router: tenant directory is required")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("router: emergency engine is required")
	}
	if opts.Env == nil {
		return nil, fmt.Errorf("router: workflow env is required")
	}
	if opts.TTL <= 0 {
		return nil, fmt.Errorf("router: ttl is required")
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = session.DefaultHistoryLimit
	}
	return &Router{
		sender:       opts.Sender,
		store:        opts.Store,
		tenants:      opts.Tenants,
		engine:       opts.Engine,
		env:          opts.Env,
		handlers:     workflow.Handlers(),
		dedupe:       newDedupe(opts.DedupeSize),
		ttl:          opts.TTL,
		historyLimit: opts.HistoryLimit,
	}, nil
}

// Handle processes one inbound message end to end. Redelivered messages are
// dropped by id, so a provider retry never advances a workflow twice.
func (r *Router) Handle(ctx context.Context, msg channel.InboundMessage) {
	if msg.ID != "" && r.dedupe.seen(msg.ID) {
		log.Printf("router: duplicate message %s from %s, dropped", msg.ID, msg.From)
		return
	}

	if msg.ID != "" {
		if err := r.sender.MarkRead(ctx, msg.ID); err != nil {
			log.Printf("router: mark read %s: %v", msg.ID, err)
		}
	}

	tenant, err := r.tenants.FindByAddress(ctx, msg.From)
	if err != nil {
		log.Printf("router: tenant lookup for %s: %v", msg.From, err)
	}

	s, err := r.store.Get(ctx, msg.From)
	switch {
	case errors.Is(err, session.ErrNotFound):
		s = session.New(msg.From, r.ttl)
		if tenant != nil {
			s.TenantID = tenant.ID
			if catalog.Supported(tenant.Language) {
				s.Language = tenant.Language
			}
		}
	case err != nil:
		log.Printf("router: load session for %s: %v", msg.From, err)
		return
	}

	s.Touch(r.ttl)
	s.AppendHistory("in", msg.Text, r.historyLimit)

	if r.engine.HandleInbound(ctx, s, tenant, msg) {
		r.persist(ctx, s)
		return
	}

	actions := r.dispatch(ctx, s, msg)
	r.persist(ctx, s)
	for _, a := range actions {
		r.deliver(ctx, s.Address, a)
	}
}

// dispatch runs the step handler for the session's state. A missing handler
// or a panic degrades gracefully: the session resets to idle and the tenant
// is asked to start over.
func (r *Router) dispatch(ctx context.Context, s *session.Session, msg channel.InboundMessage) (actions []workflow.Action) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("router: handler panic in state %q for %s: %v", s.State, s.Address, p)
			actions = r.degrade(s)
		}
	}()

	h, ok := r.handlers[s.State]
	if !ok {
		log.Printf("router: no handler for state %q, resetting %s", s.State, s.Address)
		return r.degrade(s)
	}
	return h(ctx, r.env, s, msg)
}

func (r *Router) degrade(s *session.Session) []workflow.Action {
	lang := s.Language
	s.ResetIdle()
	return []workflow.Action{{Kind: workflow.ActionText, Body: r.env.Catalog.Get("session_expired", lang)}}
}

// persist writes the session back. Losing a concurrent-update race drops this
// writer's copy; the winning update already carries the conversation forward.
func (r *Router) persist(ctx context.Context, s *session.Session) {
	err := r.store.Put(ctx, s)
	switch {
	case errors.Is(err, session.ErrConflict):
		log.Printf("router: concurrent update for %s, dropping stale write", s.Address)
	case err != nil:
		log.Printf("router: persist session for %s: %v", s.Address, err)
	}
}

// deliver sends one action, retrying once when the failure is retryable and
// honoring the provider's rate-limit hint.
func (r *Router) deliver(ctx context.Context, to string, a workflow.Action) {
	_, err := r.sendAction(ctx, to, a)
	if err == nil {
		return
	}
	var se *channel.SendError
	if !errors.As(err, &se) || !se.Retryable() {
		log.Printf("router: send to %s failed: %v", to, err)
		return
	}

	wait := se.RetryAfter
	if wait <= 0 {
		wait = time.Second
	}
	log.Printf("router: send to %s failed (%s), retrying in %s", to, se.Kind, wait)
	select {
	case <-ctx.Done():
		return
	case <-time.After(wait):
	}
	if _, err := r.sendAction(ctx, to, a); err != nil {
		log.Printf("router: retry to %s failed: %v", to, err)
	}
}

func (r *Router) sendAction(ctx context.Context, to string, a workflow.Action) (string, error) {
	switch a.Kind {
	case workflow.ActionButtons:
		return r.sender.SendButtons(ctx, to, a.Body, a.Buttons)
	case workflow.ActionList:
		return r.sender.SendList(ctx, to, a.Body, a.ButtonLabel, a.Sections)
	default:
		return r.sender.SendText(ctx, to, a.Body)
	}
}
