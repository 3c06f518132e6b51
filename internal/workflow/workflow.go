// Package workflow implements the guided conversation flows: the idle menu,
// resident onboarding, maintenance intake, and feedback collection. Each
// session state maps to a step handler that consumes one inbound message,
// mutates the session, and returns the replies to send.
package workflow

import (
	"context"
	"log"
	"strings"

	"github.com/makaohq/makao/internal/catalog"
	"github.com/makaohq/makao/internal/channel"
	"github.com/makaohq/makao/internal/directory"
	"github.com/makaohq/makao/internal/session"
)

// Action kinds.
const (
	ActionText    = "text"
	ActionButtons = "buttons"
	ActionList    = "list"
)

// Action is one outbound reply produced by a step handler. The router owns
// delivery, retries, and history recording.
type Action struct {
	Kind        string
	Body        string
	Buttons     []channel.Button
	ButtonLabel string
	Sections    []channel.ListSection
}

// Env bundles the collaborators step handlers need.
type Env struct {
	Catalog  *catalog.Catalog
	Tenants  directory.Tenants
	Recorder Recorder
}

// StepFunc handles one inbound message for a session in a given state.
type StepFunc func(ctx context.Context, env *Env, s *session.Session, msg channel.InboundMessage) []Action

// Handlers returns the state-to-handler dispatch table. States not present
// here (emergency_active) are handled outside the workflow package.
func Handlers() map[session.State]StepFunc {
	return map[session.State]StepFunc{
		session.StateIdle: handleIdle,

		session.StateOnboardingLanguage: handleOnboardingLanguage,
		session.StateOnboardingName:     handleOnboardingName,
		session.StateOnboardingMoveIn:   handleOnboardingMoveIn,
		session.StateOnboardingContact:  handleOnboardingContact,
		session.StateOnboardingComplete: handleTerminal,

		session.StateMaintenanceCategory:     handleMaintenanceCategory,
		session.StateMaintenanceDescription:  handleMaintenanceDescription,
		session.StateMaintenanceUrgency:      handleMaintenanceUrgency,
		session.StateMaintenanceConfirmation: handleMaintenanceConfirmation,

		session.StateFeedbackRating:   handleFeedbackRating,
		session.StateFeedbackComment:  handleFeedbackComment,
		session.StateFeedbackComplete: handleTerminal,
	}
}

func text(body string) Action {
	return Action{Kind: ActionText, Body: body}
}

func buttons(body string, btns ...channel.Button) Action {
	return Action{Kind: ActionButtons, Body: body, Buttons: btns}
}

func list(body, label string, sections ...channel.ListSection) Action {
	return Action{Kind: ActionList, Body: body, ButtonLabel: label, Sections: sections}
}

// handleIdle greets the resident and offers the workflow menu, or starts a
// workflow directly from a menu reply or a recognizable keyword.
func handleIdle(ctx context.Context, env *Env, s *session.Session, msg channel.InboundMessage) []Action {
	switch intent(msg) {
	case "maintenance":
		return startMaintenance(env, s)
	case "feedback":
		return startFeedback(env, s)
	case "onboarding":
		return startOnboarding(env, s)
	}
	return menu(ctx, env, s)
}

// handleTerminal covers the completed display states: the next message is
// treated as a fresh idle conversation.
func handleTerminal(ctx context.Context, env *Env, s *session.Session, msg channel.InboundMessage) []Action {
	s.ResetIdle()
	return handleIdle(ctx, env, s, msg)
}

// intent maps a menu button reply or a free-text keyword to a workflow name.
func intent(msg channel.InboundMessage) string {
	switch msg.ReplyID {
	case "menu_maintenance":
		return "maintenance"
	case "menu_feedback":
		return "feedback"
	case "menu_onboarding":
		return "onboarding"
	}
	lower := strings.ToLower(msg.Text)
	for _, kw := range []string{"maintenance", "repair", "broken", "issue", "tatizo", "fundi", "imeharibika"} {
		if strings.Contains(lower, kw) {
			return "maintenance"
		}
	}
	for _, kw := range []string{"feedback", "maoni", "complain", "rate"} {
		if strings.Contains(lower, kw) {
			return "feedback"
		}
	}
	for _, kw := range []string{"onboard", "register", "usajili", "jisajili"} {
		if strings.Contains(lower, kw) {
			return "onboarding"
		}
	}
	return ""
}

func menu(ctx context.Context, env *Env, s *session.Session) []Action {
	greeting := env.Catalog.Get("greeting_unknown", s.Language)
	if s.TenantID != "" {
		if t, err := env.Tenants.FindByID(ctx, s.TenantID); err != nil {
			log.Printf("workflow: look up tenant %s: %v", s.TenantID, err)
		} else if t != nil && t.Name != "" {
			greeting = env.Catalog.Render("greeting_known", s.Language, map[string]string{"name": firstName(t.Name)})
		}
	}
	return []Action{buttons(greeting,
		channel.Button{ID: "menu_maintenance", Title: env.Catalog.Get("menu_maintenance", s.Language)},
		channel.Button{ID: "menu_feedback", Title: env.Catalog.Get("menu_feedback", s.Language)},
		channel.Button{ID: "menu_onboarding", Title: env.Catalog.Get("menu_onboarding", s.Language)},
	)}
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}
