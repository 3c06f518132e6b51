package emergency

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/makaohq/makao/internal/alert"
	"github.com/makaohq/makao/internal/catalog"
	"github.com/makaohq/makao/internal/channel"
	"github.com/makaohq/makao/internal/directory"
	"github.com/makaohq/makao/internal/models"
	"github.com/makaohq/makao/internal/session"
)

// resumeStateKey stashes the interrupted workflow state while a medium
// confidence detection awaits confirmation, so a false positive can hand the
// conversation back where it left off.
const resumeStateKey = "resume_state"

// DefaultSendTimeout bounds each outbound send during the protocol.
const DefaultSendTimeout = 10 * time.Second

// Engine runs the emergency protocol: it takes over the conversation when a
// message trips detection, opens and escalates incidents, and resolves them
// on operator action. Message delivery and incident persistence are best
// effort; the protocol keeps going when either fails.
type Engine struct {
	sender      channel.Sender
	incidents   *IncidentStore
	contacts    directory.Contacts
	sessions    session.Store
	catalog     *catalog.Catalog
	alerts      alert.Adapter
	sendTimeout time.Duration
}

// EngineOpts configures an Engine.
type EngineOpts struct {
	Sender    channel.Sender
	Incidents *IncidentStore
	Contacts  directory.Contacts
	Sessions  session.Store
	Catalog   *catalog.Catalog

	// Alerts mirrors activations to an ops channel. Optional.
	Alerts alert.Adapter

	// SendTimeout bounds each outbound send. Defaults to DefaultSendTimeout.
	SendTimeout time.Duration
}

// NewEngine creates an emergency Engine.
func NewEngine(opts EngineOpts) (*Engine, error) {
	if opts.Sender == nil {
		return nil, fmt.Errorf("emergency: sender is required")
	}
	if opts.Incidents == nil {
		return nil, fmt.Errorf("emergency: incident store is required")
	}
	if opts.Contacts == nil {
		return nil, fmt.Errorf("emergency: contact directory is required")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("emergency: session store is required")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("emergency: catalog is required")
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}
	return &Engine{
		sender:      opts.Sender,
		incidents:   opts.Incidents,
		contacts:    opts.Contacts,
		sessions:    opts.Sessions,
		catalog:     opts.Catalog,
		alerts:      opts.Alerts,
		sendTimeout: opts.SendTimeout,
	}, nil
}

// HandleInbound gives the emergency protocol first claim on a message.
// Returns true when the message was consumed here, either because the session
// is already in emergency mode or because detection fired. The caller owns
// persisting the mutated session.
func (e *Engine) HandleInbound(ctx context.Context, s *session.Session, tenant *directory.TenantInfo, msg channel.InboundMessage) bool {
	if s.State == session.StateEmergencyActive && s.Context.Emergency != nil {
		if s.Context.Emergency.AwaitingConfirmation {
			e.handleConfirmation(ctx, s, tenant, msg)
		} else {
			e.handleUpdate(ctx, s, msg)
		}
		return true
	}

	det, ok := Detect(msg.Text)
	if !ok {
		return false
	}
	if det.Confidence == ConfidenceHigh {
		e.activate(ctx, s, tenant, det, msg.Text)
		return true
	}
	e.promptConfirmation(ctx, s, det)
	return true
}

// promptConfirmation holds a medium-confidence detection while the tenant
// confirms what is happening. The interrupted workflow state is stashed so a
// false positive can resume it.
func (e *Engine) promptConfirmation(ctx context.Context, s *session.Session, det Detection) {
	if s.State != session.StateIdle {
		if s.Context.Data == nil {
			s.Context.Data = map[string]string{}
		}
		s.Context.Data[resumeStateKey] = string(s.State)
	}
	s.BeginEmergency(&session.EmergencyContext{
		Type:                 det.Type,
		Confidence:           det.Confidence,
		AwaitingConfirmation: true,
		ReportedAt:           time.Now().UTC(),
	})

	rows := []channel.ListRow{
		{ID: "emg_fire", Title: e.catalog.Get("emergency_type_fire", s.Language)},
		{ID: "emg_flood", Title: e.catalog.Get("emergency_type_flood", s.Language)},
		{ID: "emg_other", Title: e.catalog.Get("emergency_type_other", s.Language)},
		{ID: "emg_cancel", Title: e.catalog.Get("emergency_cancel", s.Language)},
	}
	e.sendList(ctx, s.Address,
		e.catalog.Get("emergency_confirm", s.Language),
		e.catalog.Get("choose", s.Language),
		[]channel.ListSection{{Rows: rows}})
}

// handleConfirmation consumes the tenant's reply to a confirmation prompt.
func (e *Engine) handleConfirmation(ctx context.Context, s *session.Session, tenant *directory.TenantInfo, msg channel.InboundMessage) {
	lower := strings.TrimSpace(strings.ToLower(msg.Text))
	if msg.ReplyID == "emg_cancel" || lower == "no" || lower == "hapana" {
		e.cancel(ctx, s)
		return
	}

	det := Detection{Type: s.Context.Emergency.Type, Confidence: ConfidenceHigh}
	switch msg.ReplyID {
	case "emg_fire":
		det.Type = TypeFire
	case "emg_flood":
		det.Type = TypeFlood
	case "emg_other":
		det.Type = TypeOther
	default:
		// Free text: a fresh detection refines the type, otherwise the
		// message becomes the description for the pending type.
		if d, ok := Detect(msg.Text); ok {
			det.Type = d.Type
		}
	}
	e.activate(ctx, s, tenant, det, msg.Text)
}

// cancel abandons a pending confirmation and hands the conversation back to
// the interrupted workflow, or to idle.
func (e *Engine) cancel(ctx context.Context, s *session.Session) {
	s.Context.Emergency = nil
	s.State = session.StateIdle
	if prev, ok := s.Context.Data[resumeStateKey]; ok {
		s.State = session.State(prev)
		delete(s.Context.Data, resumeStateKey)
	}
	e.sendText(ctx, s.Address, e.catalog.Get("emergency_cancelled", s.Language))
}

// handleUpdate appends a tenant message to the open incident's timeline and
// acknowledges it.
func (e *Engine) handleUpdate(ctx context.Context, s *session.Session, msg channel.InboundMessage) {
	ec := s.Context.Emergency
	if ec.IncidentID != "" {
		if err := e.incidents.AppendEvent(ctx, ec.IncidentID, "tenant", "Tenant update", msg.Text); err != nil {
			log.Printf("emergency: append tenant update to %s: %v", ec.IncidentID, err)
		}
	}
	e.sendText(ctx, s.Address, e.catalog.Get("emergency_update_ack", s.Language))
}

// activate opens an incident and runs the escalation protocol: persist,
// instruct the reporter, fan out to property contacts, and mirror to ops.
// Each leg proceeds regardless of failures in the others.
func (e *Engine) activate(ctx context.Context, s *session.Session, tenant *directory.TenantInfo, det Detection, description string) {
	now := time.Now().UTC()
	inc := &models.Incident{
		ReporterPhone: s.Address,
		Type:          det.Type,
		Confidence:    det.Confidence,
		Description:   description,
		Status:        models.IncidentActive,
	}
	if tenant != nil {
		inc.TenantID = tenant.ID
		inc.PropertyID = tenant.PropertyID
		inc.UnitLabel = tenant.UnitLabel
	}
	if err := e.incidents.Create(ctx, inc); err != nil {
		// The protocol continues without a durable record rather than
		// leaving the tenant without instructions.
		log.Printf("emergency: persist incident for %s: %v", s.Address, err)
		inc.ID = ""
	}
	if inc.ID != "" {
		if err := e.incidents.AppendEvent(ctx, inc.ID, "tenant", "Emergency reported", description); err != nil {
			log.Printf("emergency: append report event: %v", err)
		}
	}

	delete(s.Context.Data, resumeStateKey)
	s.BeginEmergency(&session.EmergencyContext{
		IncidentID:  inc.ID,
		Type:        det.Type,
		Confidence:  det.Confidence,
		Description: description,
		ReportedAt:  now,
	})

	e.sendText(ctx, s.Address, e.catalog.Get("instructions_"+det.Type, s.Language))

	delivered, attempted := e.fanOut(ctx, inc, tenant, now)
	if inc.ID != "" && attempted > 0 {
		detail := fmt.Sprintf("%d of %d contacts reached", delivered, attempted)
		if err := e.incidents.AppendEvent(ctx, inc.ID, "system", "Emergency contacts notified", detail); err != nil {
			log.Printf("emergency: append notify event: %v", err)
		}
	}

	e.mirror(ctx, inc, tenant)
}

// fanOut notifies every on-duty emergency contact for the property. A failed
// send to one contact never blocks the rest; every attempt is logged on the
// incident.
func (e *Engine) fanOut(ctx context.Context, inc *models.Incident, tenant *directory.TenantInfo, now time.Time) (delivered, attempted int) {
	if inc.PropertyID == "" {
		log.Printf("emergency: no property for reporter %s, skipping contact fan-out", inc.ReporterPhone)
		return 0, 0
	}
	contacts, err := e.contacts.ContactsForProperty(ctx, inc.PropertyID)
	if err != nil {
		log.Printf("emergency: load contacts for %s: %v", inc.PropertyID, err)
		return 0, 0
	}

	reporter := inc.ReporterPhone
	if tenant != nil && tenant.Name != "" {
		reporter = tenant.Name
	}
	body := e.catalog.Render("emergency_contact_alert", catalog.LangEnglish, map[string]string{
		"type":     strings.ReplaceAll(inc.Type, "_", " "),
		"reporter": reporter,
		"property": inc.PropertyID,
		"unit":     inc.UnitLabel,
		"time":     now.Format("15:04 MST"),
	})

	for _, c := range contacts {
		if !onDuty(c, now) {
			continue
		}
		attempted++
		n := &models.IncidentNotification{
			IncidentID:  inc.ID,
			ContactName: c.Name,
			Phone:       c.Phone,
			Role:        c.Role,
		}
		if _, err := e.boundedSendText(ctx, c.Phone, body); err != nil {
			n.Error = err.Error()
			log.Printf("emergency: notify %s (%s): %v", c.Name, c.Phone, err)
		} else {
			n.Delivered = true
			delivered++
		}
		if inc.ID != "" {
			if err := e.incidents.RecordNotification(ctx, n); err != nil {
				log.Printf("emergency: record notification: %v", err)
			}
		}
	}
	return delivered, attempted
}

// mirror posts the activation to the ops alert channel.
func (e *Engine) mirror(ctx context.Context, inc *models.Incident, tenant *directory.TenantInfo) {
	if e.alerts == nil {
		return
	}
	fields := map[string]string{
		"type":       inc.Type,
		"confidence": inc.Confidence,
		"reporter":   inc.ReporterPhone,
	}
	if inc.ID != "" {
		fields["incident"] = inc.ID
	}
	if tenant != nil {
		fields["property"] = tenant.PropertyID
		fields["unit"] = tenant.UnitLabel
	}
	a := alert.Alert{
		Title:    "Emergency: " + strings.ReplaceAll(inc.Type, "_", " "),
		Body:     inc.Description,
		Severity: alert.SeverityCritical,
		Fields:   fields,
	}
	actx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	defer cancel()
	if err := e.alerts.Send(actx, a); err != nil {
		log.Printf("emergency: mirror alert via %s: %v", e.alerts.Name(), err)
	}
}

// Resolve closes an incident on operator action, notifies the reporter, and
// returns their session to idle. Interrupted workflows are not resumed.
func (e *Engine) Resolve(ctx context.Context, incidentID, notes string) (*models.Incident, error) {
	inc, err := e.incidents.Resolve(ctx, incidentID, notes)
	if err != nil {
		return nil, err
	}
	if err := e.incidents.AppendEvent(ctx, inc.ID, "system", "Incident resolved", notes); err != nil {
		log.Printf("emergency: append resolve event: %v", err)
	}

	s, err := e.sessions.Get(ctx, inc.ReporterPhone)
	if err != nil {
		log.Printf("emergency: load session for %s after resolve: %v", inc.ReporterPhone, err)
		return inc, nil
	}
	lang := s.Language
	e.sendText(ctx, s.Address, e.catalog.Render("emergency_resolved", lang, map[string]string{
		"duration": humanizeDuration(time.Since(inc.CreatedAt)),
	}))
	s.ResetIdle()
	if err := e.sessions.Put(ctx, s); err != nil {
		log.Printf("emergency: reset session for %s: %v", inc.ReporterPhone, err)
	}
	return inc, nil
}

// MarkResponding advances an incident to responding on operator action.
func (e *Engine) MarkResponding(ctx context.Context, incidentID string) (*models.Incident, error) {
	inc, err := e.incidents.UpdateStatus(ctx, incidentID, models.IncidentResponding)
	if err != nil {
		return nil, err
	}
	if err := e.incidents.AppendEvent(ctx, inc.ID, "contact", "Responder acknowledged", ""); err != nil {
		log.Printf("emergency: append responding event: %v", err)
	}
	return inc, nil
}

func (e *Engine) boundedSendText(ctx context.Context, to, body string) (string, error) {
	sctx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	defer cancel()
	return e.sender.SendText(sctx, to, body)
}

func (e *Engine) sendText(ctx context.Context, to, body string) {
	if _, err := e.boundedSendText(ctx, to, body); err != nil {
		log.Printf("emergency: send to %s: %v", to, err)
	}
}

func (e *Engine) sendList(ctx context.Context, to, body, label string, sections []channel.ListSection) {
	sctx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	defer cancel()
	if _, err := e.sender.SendList(sctx, to, body, label, sections); err != nil {
		log.Printf("emergency: send list to %s: %v", to, err)
	}
}

// onDuty checks a contact's availability window. Empty bounds mean always on
// duty; windows may wrap midnight.
func onDuty(c models.EmergencyContact, now time.Time) bool {
	if c.HoursFrom == "" || c.HoursTo == "" {
		return true
	}
	from, err1 := minutesOfDay(c.HoursFrom)
	to, err2 := minutesOfDay(c.HoursTo)
	if err1 != nil || err2 != nil {
		return true
	}
	cur := now.Hour()*60 + now.Minute()
	if from <= to {
		return cur >= from && cur < to
	}
	return cur >= from || cur < to
}

func minutesOfDay(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func humanizeDuration(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%d minutes", m)
}
