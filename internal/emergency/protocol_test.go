package emergency

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/makaohq/makao/internal/alert"
	"github.com/makaohq/makao/internal/catalog"
	"github.com/makaohq/makao/internal/channel"
	"github.com/makaohq/makao/internal/directory"
	"github.com/makaohq/makao/internal/models"
	"github.com/makaohq/makao/internal/session"
)

type sent struct {
	to   string
	body string
}

type fakeSender struct {
	texts  []sent
	lists  []sent
	failTo map[string]error
}

func (f *fakeSender) SendText(_ context.Context, to, body string) (string, error) {
	if err := f.failTo[to]; err != nil {
		return "", err
	}
	f.texts = append(f.texts, sent{to, body})
	return "wamid.1", nil
}

func (f *fakeSender) SendTemplate(_ context.Context, to, _, _ string, _ []string) (string, error) {
	return "wamid.1", nil
}

func (f *fakeSender) SendMedia(_ context.Context, to, _, _, _ string) (string, error) {
	return "wamid.1", nil
}

func (f *fakeSender) SendButtons(_ context.Context, to, body string, _ []channel.Button) (string, error) {
	return "wamid.1", nil
}

func (f *fakeSender) SendList(_ context.Context, to, body, _ string, _ []channel.ListSection) (string, error) {
	f.lists = append(f.lists, sent{to, body})
	return "wamid.1", nil
}

func (f *fakeSender) SendLocation(_ context.Context, _ string, _, _ float64, _, _ string) (string, error) {
	return "wamid.1", nil
}

func (f *fakeSender) MarkRead(_ context.Context, _ string) error { return nil }

type fakeContacts struct {
	contacts []models.EmergencyContact
	err      error
}

func (f *fakeContacts) ContactsForProperty(_ context.Context, _ string) ([]models.EmergencyContact, error) {
	return f.contacts, f.err
}

func testEngine(t *testing.T, sender *fakeSender, contacts *fakeContacts) (*Engine, *IncidentStore, *session.MemoryStore) {
	t.Helper()
	incidents := openIncidentStore(t)
	sessions := session.NewMemoryStore()
	engine, err := NewEngine(EngineOpts{
		Sender:    sender,
		Incidents: incidents,
		Contacts:  contacts,
		Sessions:  sessions,
		Catalog:   catalog.Default(),
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine, incidents, sessions
}

func inbound(text string) channel.InboundMessage {
	return channel.InboundMessage{ID: "m1", From: "254712345678", Type: "text", Text: text}
}

var testTenant = &directory.TenantInfo{
	ID:         "tenant-1",
	Name:       "Wanjiku Kamau",
	Phone:      "254712345678",
	PropertyID: "prop-1",
	UnitLabel:  "A4",
}

// A high-confidence report mid-onboarding takes over immediately: incident
// opened, instructions sent, contacts notified, and the interrupted
// onboarding context kept for the record.
func TestHandleInbound_HighConfidenceTakeover(t *testing.T) {
	sender := &fakeSender{}
	contacts := &fakeContacts{contacts: []models.EmergencyContact{
		{PropertyID: "prop-1", Name: "Night Guard", Phone: "254700000001", Role: "security"},
		{PropertyID: "prop-1", Name: "Caretaker", Phone: "254700000002", Role: "manager"},
	}}
	engine, incidents, _ := testEngine(t, sender, contacts)
	ctx := context.Background()

	s := session.New("254712345678", time.Hour)
	s.TenantID = "tenant-1"
	s.BeginOnboarding()
	s.Context.Onboarding.Name = "Wanjiku"
	s.State = session.StateOnboardingMoveIn

	if !engine.HandleInbound(ctx, s, testTenant, inbound("FIRE! the kitchen is burning")) {
		t.Fatal("high-confidence detection must be consumed")
	}

	if s.State != session.StateEmergencyActive {
		t.Errorf("state = %q", s.State)
	}
	if s.Context.Emergency == nil || s.Context.Emergency.Type != TypeFire {
		t.Fatalf("emergency ctx = %+v", s.Context.Emergency)
	}
	if s.Context.Emergency.AwaitingConfirmation {
		t.Error("high confidence must not await confirmation")
	}
	// The interrupted workflow context survives the takeover.
	if s.Context.Onboarding == nil || s.Context.Onboarding.Name != "Wanjiku" {
		t.Errorf("onboarding context lost: %+v", s.Context.Onboarding)
	}

	// Reporter got instructions, both contacts got the alert.
	if len(sender.texts) != 3 {
		t.Fatalf("sends = %d, want 3", len(sender.texts))
	}
	if sender.texts[0].to != "254712345678" || !strings.Contains(sender.texts[0].body, "FIRE SAFETY") {
		t.Errorf("first send = %+v, want reporter instructions", sender.texts[0])
	}

	inc, err := incidents.Get(ctx, s.Context.Emergency.IncidentID)
	if err != nil {
		t.Fatalf("load incident: %v", err)
	}
	if inc.Type != TypeFire || inc.Status != models.IncidentActive || inc.PropertyID != "prop-1" {
		t.Errorf("incident = %+v", inc)
	}
	if len(inc.Notifications) != 2 {
		t.Errorf("notifications = %d, want 2", len(inc.Notifications))
	}
	if len(inc.Events) != 2 {
		t.Errorf("events = %d, want exactly report + notify", len(inc.Events))
	}
	if inc.Events[0].Label != "Emergency reported" || inc.Events[1].Label != "Emergency contacts notified" {
		t.Errorf("timeline = %q, %q", inc.Events[0].Label, inc.Events[1].Label)
	}
}

// A medium-confidence message asks for confirmation; cancelling hands the
// conversation back to the interrupted workflow.
func TestHandleInbound_MediumConfidenceConfirmAndCancel(t *testing.T) {
	sender := &fakeSender{}
	engine, incidents, _ := testEngine(t, sender, &fakeContacts{})
	ctx := context.Background()

	s := session.New("254712345678", time.Hour)
	s.BeginMaintenance()
	s.State = session.StateMaintenanceDescription

	if !engine.HandleInbound(ctx, s, testTenant, inbound("help please")) {
		t.Fatal("generic detection must be consumed")
	}
	if s.State != session.StateEmergencyActive || !s.Context.Emergency.AwaitingConfirmation {
		t.Fatalf("state = %q ctx = %+v", s.State, s.Context.Emergency)
	}
	if len(sender.lists) != 1 {
		t.Fatalf("confirmation prompt not sent: %+v", sender.lists)
	}

	cancel := channel.InboundMessage{ID: "m2", From: "254712345678", Type: "interactive", ReplyID: "emg_cancel", Text: "No emergency"}
	if !engine.HandleInbound(ctx, s, testTenant, cancel) {
		t.Fatal("confirmation reply must be consumed")
	}
	if s.State != session.StateMaintenanceDescription {
		t.Errorf("state = %q, want interrupted workflow restored", s.State)
	}
	if s.Context.Emergency != nil {
		t.Errorf("emergency ctx must be cleared")
	}
	if s.Context.Maintenance == nil {
		t.Errorf("maintenance context lost")
	}

	// No incident was ever opened.
	all, _ := incidents.List(ctx, "")
	if len(all) != 0 {
		t.Errorf("incidents = %d, want 0", len(all))
	}
}

func TestHandleInbound_ConfirmationActivates(t *testing.T) {
	sender := &fakeSender{}
	engine, incidents, _ := testEngine(t, sender, &fakeContacts{})
	ctx := context.Background()

	s := session.New("254712345678", time.Hour)
	engine.HandleInbound(ctx, s, testTenant, inbound("help"))

	reply := channel.InboundMessage{ID: "m2", From: "254712345678", Type: "interactive", ReplyID: "emg_flood", Text: "Flooding"}
	engine.HandleInbound(ctx, s, testTenant, reply)

	if s.Context.Emergency == nil || s.Context.Emergency.AwaitingConfirmation {
		t.Fatalf("emergency ctx = %+v", s.Context.Emergency)
	}
	if s.Context.Emergency.Type != TypeFlood {
		t.Errorf("type = %q", s.Context.Emergency.Type)
	}
	all, _ := incidents.List(ctx, "")
	if len(all) != 1 || all[0].Type != TypeFlood {
		t.Errorf("incidents = %+v", all)
	}
}

// One unreachable contact never blocks the rest of the fan-out, and the
// failure is recorded on the incident.
func TestFanOut_ContactFailureIsolated(t *testing.T) {
	sender := &fakeSender{failTo: map[string]error{
		"254700000001": errors.New("recipient unavailable"),
	}}
	contacts := &fakeContacts{contacts: []models.EmergencyContact{
		{PropertyID: "prop-1", Name: "Night Guard", Phone: "254700000001", Role: "security"},
		{PropertyID: "prop-1", Name: "Caretaker", Phone: "254700000002", Role: "manager"},
	}}
	engine, incidents, _ := testEngine(t, sender, contacts)
	ctx := context.Background()

	s := session.New("254712345678", time.Hour)
	engine.HandleInbound(ctx, s, testTenant, inbound("mwizi ameingia ndani"))

	inc, err := incidents.Get(ctx, s.Context.Emergency.IncidentID)
	if err != nil {
		t.Fatalf("load incident: %v", err)
	}
	if len(inc.Notifications) != 2 {
		t.Fatalf("notifications = %d, want both attempts recorded", len(inc.Notifications))
	}
	var delivered, failed int
	for _, n := range inc.Notifications {
		if n.Delivered {
			delivered++
		} else if n.Error != "" {
			failed++
		}
	}
	if delivered != 1 || failed != 1 {
		t.Errorf("delivered=%d failed=%d", delivered, failed)
	}
}

// Off-duty contacts are skipped.
func TestFanOut_RespectsDutyHours(t *testing.T) {
	sender := &fakeSender{}
	now := time.Now().UTC()
	offFrom := now.Add(2 * time.Hour).Format("15:04")
	offTo := now.Add(3 * time.Hour).Format("15:04")
	contacts := &fakeContacts{contacts: []models.EmergencyContact{
		{PropertyID: "prop-1", Name: "Day Guard", Phone: "254700000001", Role: "security", HoursFrom: offFrom, HoursTo: offTo},
		{PropertyID: "prop-1", Name: "Caretaker", Phone: "254700000002", Role: "manager"},
	}}
	engine, _, _ := testEngine(t, sender, contacts)

	s := session.New("254712345678", time.Hour)
	engine.HandleInbound(context.Background(), s, testTenant, inbound("fire!"))

	for _, m := range sender.texts {
		if m.to == "254700000001" {
			t.Errorf("off-duty contact was notified")
		}
	}
}

// Messages while an incident is open land on the timeline and are
// acknowledged, without re-running detection.
func TestHandleInbound_UpdateAppendsTimeline(t *testing.T) {
	sender := &fakeSender{}
	engine, incidents, _ := testEngine(t, sender, &fakeContacts{})
	ctx := context.Background()

	s := session.New("254712345678", time.Hour)
	engine.HandleInbound(ctx, s, testTenant, inbound("fire in the kitchen"))
	sender.texts = nil

	engine.HandleInbound(ctx, s, testTenant, inbound("the smoke is getting worse"))

	inc, _ := incidents.Get(ctx, s.Context.Emergency.IncidentID)
	last := inc.Events[len(inc.Events)-1]
	if last.Actor != "tenant" || !strings.Contains(last.Detail, "smoke") {
		t.Errorf("last event = %+v", last)
	}
	if len(sender.texts) != 1 {
		t.Fatalf("sends = %d, want one ack", len(sender.texts))
	}
}

// Resolution is operator-driven: the tenant is notified with the elapsed
// time and the session returns to idle. Resolving twice fails.
func TestResolve(t *testing.T) {
	sender := &fakeSender{}
	engine, _, sessions := testEngine(t, sender, &fakeContacts{})
	ctx := context.Background()

	s := session.New("254712345678", time.Hour)
	engine.HandleInbound(ctx, s, testTenant, inbound("fire in the kitchen"))
	if err := sessions.Put(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}
	incidentID := s.Context.Emergency.IncidentID
	sender.texts = nil

	inc, err := engine.Resolve(ctx, incidentID, "brigade confirmed out")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if inc.Status != models.IncidentResolved || inc.ResolvedAt == nil {
		t.Errorf("incident = %+v", inc)
	}

	if len(sender.texts) != 1 || !strings.Contains(sender.texts[0].body, "resolved") {
		t.Errorf("tenant notification = %+v", sender.texts)
	}

	got, err := sessions.Get(ctx, "254712345678")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.State != session.StateIdle || got.Context.Emergency != nil {
		t.Errorf("session not reset: state=%q", got.State)
	}

	if _, err := engine.Resolve(ctx, incidentID, "again"); !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("double resolve = %v", err)
	}
}

func TestMarkResponding(t *testing.T) {
	sender := &fakeSender{}
	engine, incidents, _ := testEngine(t, sender, &fakeContacts{})
	ctx := context.Background()

	s := session.New("254712345678", time.Hour)
	engine.HandleInbound(ctx, s, testTenant, inbound("flooding everywhere"))

	inc, err := engine.MarkResponding(ctx, s.Context.Emergency.IncidentID)
	if err != nil {
		t.Fatalf("mark responding: %v", err)
	}
	if inc.Status != models.IncidentResponding {
		t.Errorf("status = %q", inc.Status)
	}
	full, _ := incidents.Get(ctx, inc.ID)
	last := full.Events[len(full.Events)-1]
	if last.Label != "Responder acknowledged" {
		t.Errorf("last event = %+v", last)
	}
}

type capturedAlert struct {
	alerts []alert.Alert
	err    error
}

func (c *capturedAlert) Name() string { return "captured" }

func (c *capturedAlert) Send(_ context.Context, a alert.Alert) error {
	c.alerts = append(c.alerts, a)
	return c.err
}

// Activations are mirrored to the ops channel; a mirror failure never stops
// the protocol.
func TestActivate_MirrorsToOpsChannel(t *testing.T) {
	sender := &fakeSender{}
	incidents := openIncidentStore(t)
	mirror := &capturedAlert{}
	engine, err := NewEngine(EngineOpts{
		Sender:    sender,
		Incidents: incidents,
		Contacts:  &fakeContacts{},
		Sessions:  session.NewMemoryStore(),
		Catalog:   catalog.Default(),
		Alerts:    mirror,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	s := session.New("254712345678", time.Hour)
	engine.HandleInbound(context.Background(), s, testTenant, inbound("gas leak in the kitchen"))

	if len(mirror.alerts) != 1 {
		t.Fatalf("mirrored alerts = %d, want 1", len(mirror.alerts))
	}
	a := mirror.alerts[0]
	if a.Severity != alert.SeverityCritical || !strings.Contains(a.Title, "gas") {
		t.Errorf("alert = %+v", a)
	}
	if a.Fields["property"] != "prop-1" {
		t.Errorf("fields = %+v", a.Fields)
	}

	// Mirror failure: session still enters emergency mode.
	mirror.err = errors.New("slack down")
	s2 := session.New("254712345679", time.Hour)
	engine.HandleInbound(context.Background(), s2, testTenant, inbound("fire!"))
	if s2.State != session.StateEmergencyActive {
		t.Errorf("state = %q despite mirror failure", s2.State)
	}
}

func TestNewEngine_Validation(t *testing.T) {
	if _, err := NewEngine(EngineOpts{}); err == nil {
		t.Error("expected error for empty opts")
	}
}
