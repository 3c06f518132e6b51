package workflow

import (
	"context"
	"log"
	"strings"

	"github.com/makaohq/makao/internal/channel"
	"github.com/makaohq/makao/internal/models"
	"github.com/makaohq/makao/internal/session"
)

var maintenanceCategories = []string{"plumbing", "electrical", "appliance", "structural", "other"}

// categoryKeywords maps free-text hints to a category for residents who type
// instead of picking from the list.
var categoryKeywords = map[string][]string{
	"plumbing":   {"plumb", "water", "leak", "pipe", "tap", "toilet", "mabomba", "maji"},
	"electrical": {"electric", "power", "socket", "light", "umeme", "stima"},
	"appliance":  {"appliance", "fridge", "cooker", "washer", "vifaa", "friji", "jiko"},
	"structural": {"wall", "roof", "door", "window", "crack", "jengo", "ukuta", "paa", "mlango"},
}

func startMaintenance(env *Env, s *session.Session) []Action {
	s.BeginMaintenance()
	return []Action{categoryPrompt(env, s)}
}

func categoryPrompt(env *Env, s *session.Session) Action {
	rows := make([]channel.ListRow, 0, len(maintenanceCategories))
	for _, cat := range maintenanceCategories {
		rows = append(rows, channel.ListRow{
			ID:    "cat_" + cat,
			Title: env.Catalog.Get("category_"+cat, s.Language),
		})
	}
	return list(env.Catalog.Get("maintenance_category", s.Language),
		env.Catalog.Get("choose", s.Language),
		channel.ListSection{Rows: rows})
}

func handleMaintenanceCategory(ctx context.Context, env *Env, s *session.Session, msg channel.InboundMessage) []Action {
	mc := s.Context.Maintenance
	cat := matchCategory(msg)
	if cat == "" {
		return []Action{
			text(env.Catalog.Get("maintenance_category_invalid", s.Language)),
			categoryPrompt(env, s),
		}
	}
	mc.Category = cat
	mc.CompletedSteps = append(mc.CompletedSteps, "category")
	s.State = session.StateMaintenanceDescription
	return []Action{text(env.Catalog.Get("maintenance_description", s.Language))}
}

func matchCategory(msg channel.InboundMessage) string {
	if cat, ok := strings.CutPrefix(msg.ReplyID, "cat_"); ok {
		for _, known := range maintenanceCategories {
			if cat == known {
				return cat
			}
		}
		return ""
	}
	lower := strings.ToLower(msg.Text)
	for _, cat := range maintenanceCategories {
		if strings.Contains(lower, cat) {
			return cat
		}
	}
	for cat, kws := range categoryKeywords {
		for _, kw := range kws {
			if strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return ""
}

func handleMaintenanceDescription(ctx context.Context, env *Env, s *session.Session, msg channel.InboundMessage) []Action {
	mc := s.Context.Maintenance
	desc := strings.TrimSpace(msg.Text)
	if desc == "" {
		return []Action{text(env.Catalog.Get("maintenance_description", s.Language))}
	}
	mc.Description = desc
	mc.CompletedSteps = append(mc.CompletedSteps, "description")
	s.State = session.StateMaintenanceUrgency
	return []Action{urgencyPrompt(env, s)}
}

func urgencyPrompt(env *Env, s *session.Session) Action {
	return buttons(env.Catalog.Get("maintenance_urgency", s.Language),
		channel.Button{ID: "urg_low", Title: env.Catalog.Get("urgency_low", s.Language)},
		channel.Button{ID: "urg_normal", Title: env.Catalog.Get("urgency_normal", s.Language)},
		channel.Button{ID: "urg_urgent", Title: env.Catalog.Get("urgency_urgent", s.Language)},
	)
}

func handleMaintenanceUrgency(ctx context.Context, env *Env, s *session.Session, msg channel.InboundMessage) []Action {
	mc := s.Context.Maintenance
	urgency := matchUrgency(msg)
	if urgency == "" {
		return []Action{
			text(env.Catalog.Get("maintenance_urgency_invalid", s.Language)),
			urgencyPrompt(env, s),
		}
	}
	mc.Urgency = urgency
	mc.CompletedSteps = append(mc.CompletedSteps, "urgency")
	s.State = session.StateMaintenanceConfirmation
	return []Action{buttons(
		env.Catalog.Render("maintenance_confirm", s.Language, map[string]string{
			"category":    env.Catalog.Get("category_"+mc.Category, s.Language),
			"urgency":     env.Catalog.Get("urgency_"+urgency, s.Language),
			"description": mc.Description,
		}),
		channel.Button{ID: "confirm_yes", Title: env.Catalog.Get("confirm_yes", s.Language)},
		channel.Button{ID: "confirm_no", Title: env.Catalog.Get("confirm_no", s.Language)},
	)}
}

func matchUrgency(msg channel.InboundMessage) string {
	switch msg.ReplyID {
	case "urg_low":
		return "low"
	case "urg_normal":
		return "normal"
	case "urg_urgent":
		return "urgent"
	}
	lower := strings.ToLower(msg.Text)
	switch {
	// "not urgent" must be checked before "urgent".
	case strings.Contains(lower, "not urgent") || strings.Contains(lower, "si ya haraka") || strings.Contains(lower, "low"):
		return "low"
	case strings.Contains(lower, "urgent") || strings.Contains(lower, "haraka"):
		return "urgent"
	case strings.Contains(lower, "normal") || strings.Contains(lower, "kawaida"):
		return "normal"
	}
	return ""
}

func handleMaintenanceConfirmation(ctx context.Context, env *Env, s *session.Session, msg channel.InboundMessage) []Action {
	mc := s.Context.Maintenance
	lower := strings.TrimSpace(strings.ToLower(msg.Text))
	switch {
	case msg.ReplyID == "confirm_no" || lower == "no" || lower == "hapana":
		s.ResetIdle()
		return []Action{text(env.Catalog.Get("maintenance_cancelled", s.Language))}
	case msg.ReplyID != "confirm_yes" && lower != "yes" && lower != "ndiyo" && lower != "sawa":
		return []Action{buttons(
			env.Catalog.Render("maintenance_confirm", s.Language, map[string]string{
				"category":    env.Catalog.Get("category_"+mc.Category, s.Language),
				"urgency":     env.Catalog.Get("urgency_"+mc.Urgency, s.Language),
				"description": mc.Description,
			}),
			channel.Button{ID: "confirm_yes", Title: env.Catalog.Get("confirm_yes", s.Language)},
			channel.Button{ID: "confirm_no", Title: env.Catalog.Get("confirm_no", s.Language)},
		)}
	}

	ticket := &models.MaintenanceTicket{
		TenantID:    s.TenantID,
		Category:    mc.Category,
		Description: mc.Description,
		Urgency:     mc.Urgency,
	}
	if s.TenantID != "" {
		if t, err := env.Tenants.FindByID(ctx, s.TenantID); err != nil {
			log.Printf("workflow: look up tenant %s for ticket: %v", s.TenantID, err)
		} else if t != nil {
			ticket.PropertyID = t.PropertyID
			ticket.UnitLabel = t.UnitLabel
		}
	}
	if err := env.Recorder.CreateTicket(ctx, ticket); err != nil {
		log.Printf("workflow: create ticket: %v", err)
		s.ResetIdle()
		return []Action{text(env.Catalog.Get("something_wrong", s.Language))}
	}
	mc.TicketID = ticket.ID
	mc.CompletedSteps = append(mc.CompletedSteps, "confirmation")

	reply := env.Catalog.Render("maintenance_confirmed", s.Language, map[string]string{
		"category":    env.Catalog.Get("category_"+mc.Category, s.Language),
		"ticket":      shortID(ticket.ID),
		"description": mc.Description,
	})
	s.ResetIdle()
	return []Action{text(reply)}
}

// shortID returns the leading segment of a UUID for human-facing references.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return strings.ToUpper(id[:i])
	}
	return id
}
