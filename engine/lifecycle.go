package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/safetrack/safetrack/repository/models"
)

// Sign outcomes.
const (
	OutcomeAwaitingOthers     = "AwaitingOthers"
	OutcomeAlreadySigned      = "AlreadySigned"
	OutcomeClosed             = "Closed"
	OutcomeClosedWithFindings = "ClosedWithFindings"
)

// SignResult reports what a sign transition did.
type SignResult struct {
	Outcome        string `json:"outcome"`
	RecordStatus   string `json:"record_status"`
	SignaturesDone int    `json:"signatures_done"`
	SignaturesNeed int    `json:"signatures_needed"`
	FollowUpID     string `json:"follow_up_id,omitempty"`
	NextScheduleID string `json:"next_schedule_id,omitempty"`
	Warning        string `json:"warning,omitempty"`
}

// Engine drives the inspection lifecycle: execution, multi-signature
// closure, and the recurrence and follow-up generators invoked from the
// closing transition. All state lives behind Store; the engine itself is
// stateless and safe to share.
type Engine struct {
	store    Store
	notifier Notifier
	config   Config
	audit    Auditor
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithAuditor attaches a transition journal.
func WithAuditor(a Auditor) Option {
	return func(e *Engine) { e.audit = a }
}

// WithClock overrides the engine clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine over the given collaborators.
func New(store Store, notifier Notifier, config Config, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		notifier: notifier,
		config:   config,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Participants returns the users required to sign a record: the
// inspector who created it plus any designated co-signers for its
// category, deduplicated.
func (e *Engine) Participants(record *models.InspectionRecord) ([]models.User, error) {
	return participants(e.store, record)
}

func participants(store Store, record *models.InspectionRecord) ([]models.User, error) {
	var result []models.User
	seen := make(map[string]bool)

	if record.InspectorID != "" {
		inspector, err := store.GetUser(record.InspectorID)
		if err != nil {
			return nil, persistenceErr("load inspector", err)
		}
		result = append(result, *inspector)
		seen[inspector.ID] = true
	}

	signers, err := store.CategorySigners(record.Category)
	if err != nil {
		return nil, persistenceErr("load category signers", err)
	}
	for _, signer := range signers {
		if !seen[signer.ID] {
			result = append(result, signer)
			seen[signer.ID] = true
		}
	}
	return result, nil
}

// ExecuteScheduleItem creates the inspection record for a planned
// occurrence, linked to it, with the standard checklist pre-populated
// for template-driven categories. The schedule item is not advanced to
// Done here; that happens on clean closure of the linked record.
func (e *Engine) ExecuteScheduleItem(actorID, scheduleID string) (*models.InspectionRecord, error) {
	var record *models.InspectionRecord

	err := e.store.InTransaction(func(tx Store) error {
		item, err := tx.GetScheduleItem(scheduleID)
		if err != nil {
			return notFoundErr("schedule item", scheduleID)
		}
		if item.Status == models.ScheduleStatusDone {
			return &Error{
				Code:    ErrCodeInvalidState,
				Message: "schedule item already executed",
				Detail:  fmt.Sprintf("schedule item %s is already marked Done", scheduleID),
			}
		}
		actor, err := tx.GetUser(actorID)
		if err != nil {
			return notFoundErr("user", actorID)
		}

		record = &models.InspectionRecord{
			ID:             newID("INS"),
			Category:       item.Category,
			InspectionDate: dateOnly(e.now()),
			AreaID:         item.AreaID,
			InspectorID:    actor.ID,
			InspectorRole:  inspectorRoleFor(actor),
			Status:         models.InspectionStatusInProgress,
			ScheduleItemID: &item.ID,
		}
		record.Items = TemplateItems(item.Category, record.ID)

		if err := tx.CreateInspection(record); err != nil {
			return persistenceErr("create inspection", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.recordTransition(record.ID, "", record.Status, actorID, "executed from schedule "+scheduleID)
	return record, nil
}

// CreateInspection creates an unlinked inspection record, with template
// items for template-driven categories.
func (e *Engine) CreateInspection(actorID, category, areaID string, date time.Time) (*models.InspectionRecord, error) {
	if _, ok := LookupCategory(category); !ok {
		return nil, &Error{
			Code:    ErrCodeInvalidState,
			Message: "unknown inspection category",
			Detail:  fmt.Sprintf("category %q is not registered", category),
		}
	}

	var record *models.InspectionRecord
	err := e.store.InTransaction(func(tx Store) error {
		actor, err := tx.GetUser(actorID)
		if err != nil {
			return notFoundErr("user", actorID)
		}
		if _, err := tx.GetArea(areaID); err != nil {
			return notFoundErr("area", areaID)
		}

		record = &models.InspectionRecord{
			ID:             newID("INS"),
			Category:       category,
			InspectionDate: dateOnly(date),
			AreaID:         areaID,
			InspectorID:    actor.ID,
			InspectorRole:  inspectorRoleFor(actor),
			Status:         models.InspectionStatusInProgress,
		}
		record.Items = TemplateItems(category, record.ID)

		if err := tx.CreateInspection(record); err != nil {
			return persistenceErr("create inspection", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.recordTransition(record.ID, "", record.Status, actorID, "created")
	return record, nil
}

// AddCheckItem appends an ad hoc checklist line to an open record.
func (e *Engine) AddCheckItem(recordID, label, itemStatus, observations string) (*models.CheckItem, error) {
	var item *models.CheckItem
	err := e.store.InTransaction(func(tx Store) error {
		record, err := tx.GetInspection(recordID)
		if err != nil {
			return notFoundErr("inspection", recordID)
		}
		if record.IsClosed() {
			return alreadyClosedErr(record)
		}
		item = &models.CheckItem{
			ID:           newID("CHK"),
			InspectionID: record.ID,
			Label:        label,
			ItemStatus:   itemStatus,
			Observations: observations,
			Position:     len(record.Items),
		}
		if err := tx.CreateCheckItem(item); err != nil {
			return persistenceErr("create check item", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateCheckItem changes the status and observations of one checklist
// line on an open record.
func (e *Engine) UpdateCheckItem(recordID, itemID, itemStatus, observations string) error {
	return e.store.InTransaction(func(tx Store) error {
		record, err := tx.GetInspection(recordID)
		if err != nil {
			return notFoundErr("inspection", recordID)
		}
		if record.IsClosed() {
			return alreadyClosedErr(record)
		}
		for i := range record.Items {
			if record.Items[i].ID != itemID {
				continue
			}
			record.Items[i].ItemStatus = itemStatus
			record.Items[i].Observations = observations
			if err := tx.UpdateCheckItem(&record.Items[i]); err != nil {
				return persistenceErr("update check item", err)
			}
			return nil
		}
		return notFoundErr("check item", itemID)
	})
}

// SetGeneralStatus records the overall compliance assessment on an open
// record. NonCompliant is the explicit marking that forces a closure
// with findings for categories whose items carry no pass/fail
// classification of their own.
func (e *Engine) SetGeneralStatus(recordID, generalStatus string) error {
	switch generalStatus {
	case models.GeneralStatusCompliant, models.GeneralStatusNonCompliant, models.GeneralStatusNotApplicable:
	default:
		return &Error{
			Code:    ErrCodeInvalidState,
			Message: "unknown general status",
			Detail:  fmt.Sprintf("general status %q is not one of Compliant, NonCompliant, NotApplicable", generalStatus),
		}
	}
	return e.store.InTransaction(func(tx Store) error {
		record, err := tx.GetInspection(recordID)
		if err != nil {
			return notFoundErr("inspection", recordID)
		}
		if record.IsClosed() {
			return alreadyClosedErr(record)
		}
		if err := tx.UpdateInspectionGeneralStatus(record.ID, generalStatus); err != nil {
			return persistenceErr("update general status", err)
		}
		return nil
	})
}

// Sign applies one participant's signature to a record and, when it is
// the last one required, closes the record: ClosedWithFindings plus a
// follow-up when any failing item exists, otherwise Closed plus schedule
// completion and recurrence for linked records. The whole transition is
// one atomic transaction over a locked read of the record.
func (e *Engine) Sign(actorID, recordID string) (*SignResult, error) {
	result := &SignResult{}
	var notices []notice
	var transitions []TransitionEvent

	err := e.store.InTransaction(func(tx Store) error {
		record, err := tx.GetInspectionForUpdate(recordID)
		if err != nil {
			return notFoundErr("inspection", recordID)
		}
		actor, err := tx.GetUser(actorID)
		if err != nil {
			return notFoundErr("user", actorID)
		}

		required, err := participants(tx, record)
		if err != nil {
			return err
		}
		if !containsUser(required, actor.ID) {
			return &Error{
				Code:    ErrCodeNotParticipant,
				Message: "user is not a participant of this inspection",
				Detail:  fmt.Sprintf("user %s is not required to sign inspection %s", actor.ID, record.ID),
			}
		}
		if record.SignedBy(actor.ID) {
			// Idempotent no-op: report a warning, leave all state as is.
			result.Outcome = OutcomeAlreadySigned
			result.RecordStatus = record.Status
			result.SignaturesDone = len(record.Signatures)
			result.SignaturesNeed = len(required)
			result.Warning = "signature already on record, nothing changed"
			return nil
		}
		if !actor.HasSignatureOnFile() {
			return &Error{
				Code:    ErrCodeNoSignatureOnFile,
				Message: "user has no registered signature",
				Detail:  fmt.Sprintf("user %s must register a digital signature before signing", actor.ID),
			}
		}
		if record.IsClosed() {
			return alreadyClosedErr(record)
		}
		if verr := ValidateBeforeSign(record); verr != nil {
			return verr
		}

		sig := &models.Signature{
			ID:            newID("SIG"),
			InspectionID:  record.ID,
			UserID:        actor.ID,
			SignatureBlob: actor.DigitalSignature,
			SignedAt:      e.now(),
		}
		if err := tx.CreateSignature(sig); err != nil {
			return persistenceErr("create signature", err)
		}

		signed := len(record.Signatures) + 1
		result.SignaturesDone = signed
		result.SignaturesNeed = len(required)

		if signed < len(required) {
			if err := tx.UpdateInspectionStatus(record.ID, models.InspectionStatusPendingSignatures); err != nil {
				return persistenceErr("update inspection status", err)
			}
			result.Outcome = OutcomeAwaitingOthers
			result.RecordStatus = models.InspectionStatusPendingSignatures
			transitions = append(transitions, e.transition(record, models.InspectionStatusPendingSignatures, actorID, "signature recorded, awaiting others"))
			return nil
		}

		// Last required signature: determine outcome class from the
		// item-level findings or an explicit NonCompliant assessment.
		if len(Findings(record)) > 0 || record.GeneralStatus == models.GeneralStatusNonCompliant {
			if err := tx.UpdateInspectionStatus(record.ID, models.InspectionStatusClosedWithFindings); err != nil {
				return persistenceErr("update inspection status", err)
			}
			days := e.config.Int(models.ConfigKeyFollowUpDays, DefaultFollowUpDays)
			child, err := GenerateFollowUp(tx, record, days, e.now())
			if err != nil {
				return err
			}
			result.Outcome = OutcomeClosedWithFindings
			result.RecordStatus = models.InspectionStatusClosedWithFindings
			result.FollowUpID = child.ID

			transitions = append(transitions, e.transition(record, models.InspectionStatusClosedWithFindings, actorID, "closed with findings"))
			notices = append(notices, e.supervisorNotice(tx, record))
			notices = append(notices, notice{
				userIDs: []string{record.InspectorID},
				title:   "Follow-up inspection generated",
				message: fmt.Sprintf("A follow-up for %s inspection %s is due on %s.", record.Category, record.ID, child.InspectionDate.Format("2006-01-02")),
				link:    "/inspection/" + child.ID,
			})
			return nil
		}

		if err := tx.UpdateInspectionStatus(record.ID, models.InspectionStatusClosed); err != nil {
			return persistenceErr("update inspection status", err)
		}
		result.Outcome = OutcomeClosed
		result.RecordStatus = models.InspectionStatusClosed
		transitions = append(transitions, e.transition(record, models.InspectionStatusClosed, actorID, "closed without findings"))

		if record.ScheduleItemID != nil {
			item, err := tx.GetScheduleItem(*record.ScheduleItemID)
			if err != nil {
				return notFoundErr("schedule item", *record.ScheduleItemID)
			}
			item.Status = models.ScheduleStatusDone
			if err := tx.UpdateScheduleItem(item); err != nil {
				return persistenceErr("update schedule item", err)
			}
			next, err := GenerateNextOccurrence(tx, item)
			if err != nil {
				return err
			}
			if next != nil {
				result.NextScheduleID = next.ID
				notices = append(notices, notice{
					userIDs: []string{record.InspectorID},
					title:   "Next inspection scheduled",
					message: fmt.Sprintf("The next %s inspection for this area was scheduled for %s.", item.Category, next.ScheduledDate.Format("2006-01-02")),
					link:    "/schedule/" + next.ID,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit side effects: notifications and journal entries are
	// fire-and-forget and must not undo the committed transition.
	e.dispatch(notices)
	for _, event := range transitions {
		e.record(event)
	}
	return result, nil
}

type notice struct {
	userIDs []string
	title   string
	message string
	link    string
}

func (e *Engine) supervisorNotice(tx Store, record *models.InspectionRecord) notice {
	group := e.config.Str(models.ConfigKeySupervisorGroup, "Jefes")
	members, err := tx.GroupMembers(group)
	if err != nil {
		log.Printf("supervisor group %q lookup failed: %v", group, err)
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return notice{
		userIDs: ids,
		title:   "Inspection closed with findings",
		message: fmt.Sprintf("%s inspection %s closed with findings and requires follow-up.", record.Category, record.ID),
		link:    "/inspection/" + record.ID,
	}
}

func (e *Engine) dispatch(notices []notice) {
	if e.notifier == nil || !e.config.Bool(models.ConfigKeyNotifyEnabled, true) {
		return
	}
	for _, n := range notices {
		if len(n.userIDs) == 0 {
			continue
		}
		e.notifier.Notify(n.userIDs, n.title, n.message, n.link)
	}
}

func (e *Engine) transition(record *models.InspectionRecord, to, actorID, note string) TransitionEvent {
	return TransitionEvent{
		InspectionID: record.ID,
		FromStatus:   record.Status,
		ToStatus:     to,
		ActorID:      actorID,
		Note:         note,
		At:           e.now(),
	}
}

func (e *Engine) recordTransition(inspectionID, from, to, actorID, note string) {
	e.record(TransitionEvent{
		InspectionID: inspectionID,
		FromStatus:   from,
		ToStatus:     to,
		ActorID:      actorID,
		Note:         note,
		At:           e.now(),
	})
}

func (e *Engine) record(event TransitionEvent) {
	if e.audit == nil {
		return
	}
	if err := e.audit.RecordTransition(event); err != nil {
		log.Printf("journal write failed for %s: %v", event.InspectionID, err)
	}
}

func alreadyClosedErr(record *models.InspectionRecord) *Error {
	return &Error{
		Code:    ErrCodeAlreadyClosed,
		Message: "inspection is already closed",
		Detail:  fmt.Sprintf("inspection %s has terminal status %s", record.ID, record.Status),
	}
}

func containsUser(users []models.User, id string) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

// inspectorRoleFor maps a user's role name onto the inspector role
// recorded on the inspection, defaulting to the SST team.
func inspectorRoleFor(u *models.User) string {
	switch u.RoleName {
	case models.RoleBrigadista, models.RoleEquipoSST, models.RoleCopasst:
		return u.RoleName
	}
	return models.RoleEquipoSST
}
