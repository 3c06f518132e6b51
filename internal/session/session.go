// Package session defines the conversational session state machine and its
// storage backends.
package session

import (
	"time"

	"github.com/google/uuid"
)

// State names the active conversation phase for a session.
type State string

const (
	StateIdle State = "idle"

	StateOnboardingLanguage State = "onboarding_language"
	StateOnboardingName     State = "onboarding_name"
	StateOnboardingMoveIn   State = "onboarding_movein"
	StateOnboardingContact  State = "onboarding_contact"
	StateOnboardingComplete State = "onboarding_complete"

	StateMaintenanceCategory     State = "maintenance_category"
	StateMaintenanceDescription  State = "maintenance_description"
	StateMaintenanceUrgency      State = "maintenance_urgency"
	StateMaintenanceConfirmation State = "maintenance_confirmation"

	StateFeedbackRating   State = "feedback_rating"
	StateFeedbackComment  State = "feedback_comment"
	StateFeedbackComplete State = "feedback_complete"

	// StateEmergencyActive supersedes every other state. It covers both the
	// type-confirmation holding phase and an open incident; the sub-phase
	// lives in EmergencyContext.
	StateEmergencyActive State = "emergency_active"
)

// DefaultHistoryLimit bounds the per-session recent-message history.
const DefaultHistoryLimit = 20

// Session is the durable conversational state for one messaging address.
type Session struct {
	ID        string         `json:"id"`
	Address   string         `json:"address"`
	TenantID  string         `json:"tenant_id,omitempty"`
	Language  string         `json:"language"`
	State     State          `json:"state"`
	Context   Context        `json:"context"`
	History   []HistoryEntry `json:"history,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	ExpiresAt time.Time      `json:"expires_at"`

	// Version backs optimistic concurrency in durable stores. Zero means
	// the session has never been persisted.
	Version int `json:"-"`
}

// HistoryEntry is one line of the bounded recent-message history. Operator
// visibility only — routing logic never reads it.
type HistoryEntry struct {
	Direction string    `json:"direction"` // "in" or "out"
	Text      string    `json:"text"`
	At        time.Time `json:"at"`
}

// Context carries the per-workflow sub-contexts. At most one of the workflow
// fields (Onboarding, Maintenance, Feedback) is populated at a time; Emergency
// may coexist with an interrupted workflow context until the incident
// resolves. Data holds free-form key/value pairs.
type Context struct {
	Onboarding  *OnboardingContext  `json:"onboarding,omitempty"`
	Maintenance *MaintenanceContext `json:"maintenance,omitempty"`
	Feedback    *FeedbackContext    `json:"feedback,omitempty"`
	Emergency   *EmergencyContext   `json:"emergency,omitempty"`
	Data        map[string]string   `json:"data,omitempty"`
}

// OnboardingContext tracks resident-onboarding progress.
type OnboardingContext struct {
	Name           string   `json:"name,omitempty"`
	MoveInDate     string   `json:"move_in_date,omitempty"` // normalized DD/MM/YYYY
	NextOfKinName  string   `json:"next_of_kin_name,omitempty"`
	NextOfKinPhone string   `json:"next_of_kin_phone,omitempty"`
	CompletedSteps []string `json:"completed_steps,omitempty"`
}

// MaintenanceContext tracks maintenance-intake progress.
type MaintenanceContext struct {
	Category       string   `json:"category,omitempty"`
	Description    string   `json:"description,omitempty"`
	Urgency        string   `json:"urgency,omitempty"`
	TicketID       string   `json:"ticket_id,omitempty"`
	CompletedSteps []string `json:"completed_steps,omitempty"`
}

// FeedbackContext tracks feedback-collection progress.
type FeedbackContext struct {
	Rating         int      `json:"rating,omitempty"`
	Comment        string   `json:"comment,omitempty"`
	CompletedSteps []string `json:"completed_steps,omitempty"`
}

// EmergencyContext is the transient working copy of an incident while the
// conversation is in emergency mode. The durable Incident record is the
// system of record.
type EmergencyContext struct {
	IncidentID           string    `json:"incident_id,omitempty"`
	Type                 string    `json:"type"`
	Confidence           string    `json:"confidence"`
	Description          string    `json:"description,omitempty"`
	AwaitingConfirmation bool      `json:"awaiting_confirmation,omitempty"`
	ReportedAt           time.Time `json:"reported_at"`
}

// New creates a fresh idle session for an address.
func New(address string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Address:   address,
		Language:  "en",
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session's expiry timestamp has passed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Touch refreshes the updated-at and expiry timestamps.
func (s *Session) Touch(ttl time.Duration) {
	now := time.Now().UTC()
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
}

// AppendHistory records a message in the bounded history, evicting the oldest
// entry beyond limit.
func (s *Session) AppendHistory(direction, text string, limit int) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	s.History = append(s.History, HistoryEntry{
		Direction: direction,
		Text:      text,
		At:        time.Now().UTC(),
	})
	if len(s.History) > limit {
		s.History = s.History[len(s.History)-limit:]
	}
}

// BeginOnboarding switches the session into the onboarding workflow, clearing
// any other workflow context.
func (s *Session) BeginOnboarding() *OnboardingContext {
	s.Context.Maintenance = nil
	s.Context.Feedback = nil
	s.Context.Onboarding = &OnboardingContext{}
	s.State = StateOnboardingLanguage
	return s.Context.Onboarding
}

// BeginMaintenance switches the session into the maintenance-intake workflow.
func (s *Session) BeginMaintenance() *MaintenanceContext {
	s.Context.Onboarding = nil
	s.Context.Feedback = nil
	s.Context.Maintenance = &MaintenanceContext{}
	s.State = StateMaintenanceCategory
	return s.Context.Maintenance
}

// BeginFeedback switches the session into the feedback workflow.
func (s *Session) BeginFeedback() *FeedbackContext {
	s.Context.Onboarding = nil
	s.Context.Maintenance = nil
	s.Context.Feedback = &FeedbackContext{}
	s.State = StateFeedbackRating
	return s.Context.Feedback
}

// BeginEmergency puts the session into emergency mode. The interrupted
// workflow context is preserved unmodified until the emergency resolves.
func (s *Session) BeginEmergency(ec *EmergencyContext) {
	s.Context.Emergency = ec
	s.State = StateEmergencyActive
}

// ResetIdle returns the session to idle and discards all workflow and
// emergency contexts. Interrupted workflows are not resumed.
func (s *Session) ResetIdle() {
	s.Context.Onboarding = nil
	s.Context.Maintenance = nil
	s.Context.Feedback = nil
	s.Context.Emergency = nil
	s.State = StateIdle
}

// Clone returns a deep copy, so stores can hand out sessions without sharing
// mutable state across goroutines.
func (s *Session) Clone() *Session {
	cp := *s
	cp.History = append([]HistoryEntry(nil), s.History...)
	if s.Context.Onboarding != nil {
		oc := *s.Context.Onboarding
		oc.CompletedSteps = append([]string(nil), s.Context.Onboarding.CompletedSteps...)
		cp.Context.Onboarding = &oc
	}
	if s.Context.Maintenance != nil {
		mc := *s.Context.Maintenance
		mc.CompletedSteps = append([]string(nil), s.Context.Maintenance.CompletedSteps...)
		cp.Context.Maintenance = &mc
	}
	if s.Context.Feedback != nil {
		fc := *s.Context.Feedback
		fc.CompletedSteps = append([]string(nil), s.Context.Feedback.CompletedSteps...)
		cp.Context.Feedback = &fc
	}
	if s.Context.Emergency != nil {
		ec := *s.Context.Emergency
		cp.Context.Emergency = &ec
	}
	if s.Context.Data != nil {
		cp.Context.Data = make(map[string]string, len(s.Context.Data))
		for k, v := range s.Context.Data {
			cp.Context.Data[k] = v
		}
	}
	return &cp
}
