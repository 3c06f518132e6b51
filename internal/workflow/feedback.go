package workflow

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/makaohq/makao/internal/channel"
	"github.com/makaohq/makao/internal/models"
	"github.com/makaohq/makao/internal/session"
)

func startFeedback(env *Env, s *session.Session) []Action {
	s.BeginFeedback()
	return []Action{ratingPrompt(env, s)}
}

func ratingPrompt(env *Env, s *session.Session) Action {
	rows := make([]channel.ListRow, 0, 5)
	for i := 1; i <= 5; i++ {
		rows = append(rows, channel.ListRow{
			ID:    "rate_" + strconv.Itoa(i),
			Title: strings.Repeat("⭐", i),
		})
	}
	return list(env.Catalog.Get("feedback_rating", s.Language),
		env.Catalog.Get("choose", s.Language),
		channel.ListSection{Rows: rows})
}

func handleFeedbackRating(ctx context.Context, env *Env, s *session.Session, msg channel.InboundMessage) []Action {
	fc := s.Context.Feedback
	rating := matchRating(msg)
	if rating == 0 {
		return []Action{
			text(env.Catalog.Get("feedback_rating_invalid", s.Language)),
			ratingPrompt(env, s),
		}
	}
	fc.Rating = rating
	fc.CompletedSteps = append(fc.CompletedSteps, "rating")
	s.State = session.StateFeedbackComment
	return []Action{text(env.Catalog.Get("feedback_comment", s.Language))}
}

func matchRating(msg channel.InboundMessage) int {
	if v, ok := strings.CutPrefix(msg.ReplyID, "rate_"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 5 {
			return n
		}
		return 0
	}
	if n, err := strconv.Atoi(strings.TrimSpace(msg.Text)); err == nil && n >= 1 && n <= 5 {
		return n
	}
	return 0
}

func handleFeedbackComment(ctx context.Context, env *Env, s *session.Session, msg channel.InboundMessage) []Action {
	fc := s.Context.Feedback
	comment := strings.TrimSpace(msg.Text)
	lower := strings.ToLower(comment)
	if lower == "skip" || lower == "ruka" {
		comment = ""
	}
	fc.Comment = comment
	fc.CompletedSteps = append(fc.CompletedSteps, "comment")
	s.State = session.StateFeedbackComplete

	entry := &models.FeedbackEntry{
		TenantID: s.TenantID,
		Rating:   fc.Rating,
		Comment:  comment,
	}
	if s.TenantID != "" {
		if t, err := env.Tenants.FindByID(ctx, s.TenantID); err != nil {
			log.Printf("workflow: look up tenant %s for feedback: %v", s.TenantID, err)
		} else if t != nil {
			entry.PropertyID = t.PropertyID
		}
	}
	if err := env.Recorder.SaveFeedback(ctx, entry); err != nil {
		log.Printf("workflow: save feedback: %v", err)
		s.ResetIdle()
		return []Action{text(env.Catalog.Get("something_wrong", s.Language))}
	}
	return []Action{text(env.Catalog.Get("feedback_thanks", s.Language))}
}
