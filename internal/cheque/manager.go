package cheque

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	interfaces "github.com/sheikh-saqib/echeque-service/internal/interfaces"
	"github.com/sheikh-saqib/echeque-service/internal/metrics"
	"github.com/sheikh-saqib/echeque-service/internal/models"
	"github.com/sheikh-saqib/echeque-service/internal/models/events"
	"github.com/sheikh-saqib/echeque-service/internal/storage"
)

// DefaultTopic is the topic lifecycle events are published to unless overridden.
const DefaultTopic = "echeque_status_changed"

// Manager owns the cheque lifecycle. It is the only component that changes a
// cheque's status, and it serialises all operations on the same cheque id.
type Manager struct {
	store     interfaces.ChequeStore
	verifier  interfaces.CredentialVerifier
	publisher interfaces.EventPublisher
	topic     string
	logger    *zap.Logger
	metrics   *metrics.Metrics

	now   func() time.Time
	loc   *time.Location
	newID func() string

	muMap map[string]*chequeLock // per-cheque locks, see lockCheque
	mapMu sync.Mutex             // protects muMap
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLocation sets the timezone used to decide what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) { m.loc = loc }
}

// WithPublisher sends a ChequeStatusChanged event to topic after every committed transition.
func WithPublisher(p interfaces.EventPublisher, topic string) Option {
	return func(m *Manager) {
		m.publisher = p
		if topic != "" {
			m.topic = topic
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithIDGenerator replaces the UUIDv4 id generator.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.newID = gen }
}

// NewManager creates a Manager backed by store, checking sign credentials with verifier.
func NewManager(store interfaces.ChequeStore, verifier interfaces.CredentialVerifier, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		verifier: verifier,
		topic:    DefaultTopic,
		logger:   zap.NewNop(),
		now:      time.Now,
		loc:      time.Local,
		newID:    func() string { return uuid.New().String() },
		muMap:    make(map[string]*chequeLock),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IssueParams holds the inputs of a new cheque.
type IssueParams struct {
	Sender     string
	Receiver   string
	Amount     decimal.Decimal
	ChequeDate time.Time
	ExpiryDate time.Time
}

// Issue creates a new cheque in the Pending state.
// Amount sign and the ordering of the two dates are not checked.
func (m *Manager) Issue(ctx context.Context, p IssueParams) (models.Cheque, error) {
	var msgs []string
	if strings.TrimSpace(p.Sender) == "" {
		msgs = append(msgs, "sender_account is required")
	}
	if strings.TrimSpace(p.Receiver) == "" {
		msgs = append(msgs, "receiver_account is required")
	}
	if p.ChequeDate.IsZero() {
		msgs = append(msgs, "cheque_date is required")
	}
	if p.ExpiryDate.IsZero() {
		msgs = append(msgs, "expiry_date is required")
	}
	if len(msgs) > 0 {
		return models.Cheque{}, newError(KindValidation, strings.Join(msgs, "; "), nil)
	}

	now := m.now()
	c := models.Cheque{
		ID:         m.newID(),
		Sender:     p.Sender,
		Receiver:   p.Receiver,
		Amount:     p.Amount,
		ChequeDate: models.DateOf(p.ChequeDate, nil),
		ExpiryDate: models.DateOf(p.ExpiryDate, nil),
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := m.store.Create(ctx, c); err != nil {
		return models.Cheque{}, newError(KindInternal, "could not issue cheque", fmt.Errorf("creating cheque %s: %w", c.ID, err))
	}

	m.metrics.ObserveTransition("", models.StatusPending)
	m.logger.Info("cheque issued", zap.String("cheque_id", c.ID), zap.String("expiry_date", models.FormatDate(c.ExpiryDate)))
	m.publish(ctx, []events.ChequeStatusChanged{{ChequeID: c.ID, To: models.StatusPending, OccurredAt: now}})
	return c, nil
}

// Sign moves a Pending cheque to Signed.
//
// Checks run in order: the cheque exists, it is Pending, it has not expired, and the
// verifier accepts otp. An expired cheque is persisted as Expired before the call fails
// with an Expired error; the updated cheque is returned alongside that error.
// A rejected otp leaves the cheque untouched.
func (m *Manager) Sign(ctx context.Context, id, otp string) (models.Cheque, error) {
	return m.transition(ctx, id, func(c models.Cheque) decision {
		if c.Status != models.StatusPending {
			return decision{err: newError(KindInvalidTransition, "Cheque cannot be signed", nil)}
		}
		if c.ExpiredOn(m.today()) {
			return decision{to: models.StatusExpired, err: newError(KindExpired, "Cheque is expired", nil)}
		}
		if !m.verifier.Verify(ctx, id, otp) {
			return decision{err: newError(KindForbidden, "Invalid OTP", nil)}
		}
		return decision{to: models.StatusSigned}
	})
}

// Present clears a Signed cheque. Expiry is deliberately not re-checked: a cheque
// signed while valid stays presentable.
func (m *Manager) Present(ctx context.Context, id string) (models.Cheque, error) {
	return m.transition(ctx, id, func(c models.Cheque) decision {
		if c.Status != models.StatusSigned {
			return decision{err: newError(KindInvalidTransition, "Cheque not signed", nil)}
		}
		return decision{to: models.StatusCleared}
	})
}

// Revoke cancels any cheque that is not already Cleared or Cancelled, including Expired ones.
func (m *Manager) Revoke(ctx context.Context, id string) (models.Cheque, error) {
	return m.transition(ctx, id, func(c models.Cheque) decision {
		if c.Status == models.StatusCleared || c.Status == models.StatusCancelled {
			return decision{err: newError(KindInvalidTransition, "Cheque cannot be revoked", nil)}
		}
		return decision{to: models.StatusCancelled}
	})
}

// Status returns the cheque with its current status. A Pending or Signed cheque whose
// expiry date has passed is persisted as Expired first, so this read may write.
func (m *Manager) Status(ctx context.Context, id string) (models.Cheque, error) {
	return m.transition(ctx, id, func(c models.Cheque) decision {
		if c.Status.Live() && c.ExpiredOn(m.today()) {
			return decision{to: models.StatusExpired}
		}
		return decision{}
	})
}

// Peek returns the cheque with its effective status without persisting anything:
// an overdue Pending or Signed cheque is reported as Expired but left as stored.
func (m *Manager) Peek(ctx context.Context, id string) (models.Cheque, error) {
	c, err := m.load(ctx, id)
	if err != nil {
		return models.Cheque{}, err
	}
	if c.Status.Live() && c.ExpiredOn(m.today()) {
		c.Status = models.StatusExpired
	}
	return c, nil
}

// maxConflictRetries bounds how often transition re-reads a cheque that another
// process changed between load and commit.
const maxConflictRetries = 3

// decision is what an operation does with the cheque it loaded. A non-empty to is
// committed first; err is then returned to the caller together with the cheque.
type decision struct {
	to  models.Status
	err error
}

// transition runs decide against the stored cheque under the cheque lock and commits
// the result. The store only commits from the status decide saw, so when another
// process moved the cheque first the cheque is reloaded and decide runs again.
func (m *Manager) transition(ctx context.Context, id string, decide func(models.Cheque) decision) (models.Cheque, error) {
	var changes []events.ChequeStatusChanged
	defer func() { m.publish(ctx, changes) }()

	unlock := m.lockCheque(id)
	defer unlock()

	for attempt := 0; ; attempt++ {
		c, err := m.load(ctx, id)
		if err != nil {
			return models.Cheque{}, err
		}
		d := decide(c)
		if d.to == "" {
			if d.err != nil {
				return models.Cheque{}, d.err
			}
			return c, nil
		}

		change, err := m.commit(ctx, &c, d.to)
		if errors.Is(err, storage.ErrConflict) && attempt < maxConflictRetries {
			m.logger.Debug("cheque changed concurrently, retrying",
				zap.String("cheque_id", id),
				zap.Int("attempt", attempt+1),
			)
			continue
		}
		if err != nil {
			return models.Cheque{}, err
		}
		changes = append(changes, change)
		return c, d.err
	}
}

func (m *Manager) today() time.Time {
	return models.DateOf(m.now(), m.loc)
}

func (m *Manager) load(ctx context.Context, id string) (models.Cheque, error) {
	c, err := m.store.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Cheque{}, newError(KindNotFound, "Cheque not found", err)
	}
	if err != nil {
		return models.Cheque{}, newError(KindInternal, "could not load cheque", fmt.Errorf("loading cheque %s: %w", id, err))
	}
	return c, nil
}

// commit persists the move from c.Status to to and updates c in place. Callers must
// hold the cheque lock.
func (m *Manager) commit(ctx context.Context, c *models.Cheque, to models.Status) (events.ChequeStatusChanged, error) {
	at := m.now()
	from := c.Status
	if err := m.store.UpdateStatus(ctx, c.ID, from, to, at); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return events.ChequeStatusChanged{}, newError(KindNotFound, "Cheque not found", err)
		case errors.Is(err, storage.ErrConflict):
			return events.ChequeStatusChanged{}, newError(KindInvalidTransition, "Cheque status changed concurrently", err)
		}
		return events.ChequeStatusChanged{}, newError(KindInternal, "could not update cheque",
			fmt.Errorf("updating cheque %s to %s: %w", c.ID, to, err))
	}

	c.Status = to
	c.UpdatedAt = at

	m.metrics.ObserveTransition(from, to)
	if to == models.StatusExpired {
		m.logger.Info("cheque expired", zap.String("cheque_id", c.ID), zap.String("from", string(from)))
	} else {
		m.logger.Debug("cheque status changed",
			zap.String("cheque_id", c.ID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
	}
	return events.ChequeStatusChanged{ChequeID: c.ID, From: from, To: to, OccurredAt: at}, nil
}

// publish delivers events after the cheque lock is released. The transition is
// already committed, so failures are logged and counted but never returned.
func (m *Manager) publish(ctx context.Context, changes []events.ChequeStatusChanged) {
	if m.publisher == nil {
		return
	}
	for _, ev := range changes {
		if err := m.publisher.Publish(ctx, m.topic, ev.ChequeID, ev); err != nil {
			m.metrics.PublishFailed()
			m.logger.Warn("publishing cheque event failed",
				zap.String("cheque_id", ev.ChequeID),
				zap.String("to", string(ev.To)),
				zap.Error(err),
			)
		}
	}
}
