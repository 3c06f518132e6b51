package workflow

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/makaohq/makao/internal/catalog"
	"github.com/makaohq/makao/internal/channel"
	"github.com/makaohq/makao/internal/session"
)

func startOnboarding(env *Env, s *session.Session) []Action {
	s.BeginOnboarding()
	return []Action{languagePrompt(env, s)}
}

func languagePrompt(env *Env, s *session.Session) Action {
	return buttons(env.Catalog.Get("onboarding_language", s.Language),
		channel.Button{ID: "lang_en", Title: env.Catalog.Get("language_english", s.Language)},
		channel.Button{ID: "lang_sw", Title: env.Catalog.Get("language_swahili", s.Language)},
	)
}

func handleOnboardingLanguage(ctx context.Context, env *Env, s *session.Session, msg channel.InboundMessage) []Action {
	oc := s.Context.Onboarding
	lower := strings.ToLower(msg.Text)
	switch {
	case msg.ReplyID == "lang_en" || strings.Contains(lower, "english") || strings.Contains(lower, "kiingereza"):
		s.Language = catalog.LangEnglish
	case msg.ReplyID == "lang_sw" || strings.Contains(lower, "swahili"):
		s.Language = catalog.LangSwahili
	default:
		return []Action{languagePrompt(env, s)}
	}
	oc.CompletedSteps = append(oc.CompletedSteps, "language")
	s.State = session.StateOnboardingName
	return []Action{text(env.Catalog.Get("onboarding_name", s.Language))}
}

func handleOnboardingName(ctx context.Context, env *Env, s *session.Session, msg channel.InboundMessage) []Action {
	oc := s.Context.Onboarding
	name := strings.TrimSpace(msg.Text)
	if name == "" {
		return []Action{text(env.Catalog.Get("onboarding_name", s.Language))}
	}
	oc.Name = name
	oc.CompletedSteps = append(oc.CompletedSteps, "name")
	s.State = session.StateOnboardingMoveIn
	return []Action{text(env.Catalog.Render("onboarding_movein", s.Language,
		map[string]string{"name": firstName(name)}))}
}

func handleOnboardingMoveIn(ctx context.Context, env *Env, s *session.Session, msg channel.InboundMessage) []Action {
	oc := s.Context.Onboarding
	date, ok := ParseDate(msg.Text)
	if !ok {
		// Stay on this step until the resident sends a readable date.
		return []Action{text(env.Catalog.Get("onboarding_movein_invalid", s.Language))}
	}
	oc.MoveInDate = date
	oc.CompletedSteps = append(oc.CompletedSteps, "move_in")
	s.State = session.StateOnboardingContact
	return []Action{text(env.Catalog.Get("onboarding_contact", s.Language))}
}

func handleOnboardingContact(ctx context.Context, env *Env, s *session.Session, msg channel.InboundMessage) []Action {
	oc := s.Context.Onboarding
	name, phone, ok := ParseNamePhone(msg.Text)
	if !ok {
		return []Action{text(env.Catalog.Get("onboarding_contact_invalid", s.Language))}
	}
	oc.NextOfKinName = name
	oc.NextOfKinPhone = phone
	oc.CompletedSteps = append(oc.CompletedSteps, "next_of_kin")
	s.State = session.StateOnboardingComplete

	if s.TenantID != "" {
		if err := env.Tenants.UpdateOnboardingStatus(ctx, s.TenantID, "completed"); err != nil {
			log.Printf("workflow: mark tenant %s onboarded: %v", s.TenantID, err)
		}
	}
	return []Action{text(env.Catalog.Render("onboarding_complete", s.Language, map[string]string{
		"name":  firstName(oc.Name),
		"steps": strconv.Itoa(len(oc.CompletedSteps)),
	}))}
}
