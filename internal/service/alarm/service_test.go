package alarm

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/pkg/logger"
	"github.com/mediiq/mediiq-api/pkg/metrics"
)

var testMetrics = metrics.New("alarmtest")

type fakeBroker struct {
	mu     sync.Mutex
	events []model.AlarmEvent
}

func (f *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event, ok := message.(model.AlarmEvent); ok {
		f.events = append(f.events, event)
	}
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (f *fakeBroker) Close() error { return nil }

func (f *fakeBroker) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func (f *fakeBroker) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeReminderRepo struct {
	mu      sync.Mutex
	active  map[uuid.UUID]bool
	snoozes map[uuid.UUID]*time.Time
	doses   []*model.DoseEvent
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{
		active:  make(map[uuid.UUID]bool),
		snoozes: make(map[uuid.UUID]*time.Time),
	}
}

func (f *fakeReminderRepo) Create(ctx context.Context, r *model.Reminder) error { return nil }

func (f *fakeReminderRepo) Get(ctx context.Context, scope string, id uuid.UUID) (*model.Reminder, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeReminderRepo) Update(ctx context.Context, r *model.Reminder) error { return nil }

func (f *fakeReminderRepo) Delete(ctx context.Context, scope string, id uuid.UUID) error {
	return nil
}

func (f *fakeReminderRepo) List(ctx context.Context, scope string) ([]*model.Reminder, error) {
	return nil, nil
}

func (f *fakeReminderRepo) ListActive(ctx context.Context) ([]*model.Reminder, error) {
	return nil, nil
}

func (f *fakeReminderRepo) SetActive(ctx context.Context, scope string, id uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[id] = active
	return nil
}

func (f *fakeReminderRepo) SetSnoozedUntil(ctx context.Context, scope string, id uuid.UUID, until *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snoozes[id] = until
	return nil
}

func (f *fakeReminderRepo) RecordDose(ctx context.Context, event *model.DoseEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doses = append(f.doses, event)
	return nil
}

func (f *fakeReminderRepo) ListDoses(ctx context.Context, scope string, reminderID uuid.UUID) ([]*model.DoseEvent, error) {
	return nil, nil
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func (f *fakeUserRepo) GetBySubject(ctx context.Context, subject string) (*model.User, error) {
	if u, ok := f.users[subject]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user *model.User) error { return nil }
func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error { return nil }
func (f *fakeUserRepo) SetPremium(ctx context.Context, subject string, premium bool) error {
	return nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeOutboxRepo) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.EventType)
	}
	return out
}

type fakeEmailService struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeEmailService) SendAdherenceAlert(ctx context.Context, to, memberName, medicine, dose string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}

type harness struct {
	svc       *Service
	broker    *fakeBroker
	reminders *fakeReminderRepo
	users     *fakeUserRepo
	outbox    *fakeOutboxRepo
	email     *fakeEmailService
}

func newHarness() *harness {
	h := &harness{
		broker:    &fakeBroker{},
		reminders: newFakeReminderRepo(),
		users:     &fakeUserRepo{users: make(map[string]*model.User)},
		outbox:    &fakeOutboxRepo{},
		email:     &fakeEmailService{},
	}
	h.svc = NewService(h.reminders, h.users, h.outbox, h.broker, h.email,
		logger.NewLogger(nil), testMetrics)
	return h
}

func testReminder(scope string) *model.Reminder {
	return &model.Reminder{
		Base:         model.Base{ID: uuid.New()},
		Scope:        scope,
		MedicineName: "Metformin",
		Dose:         "500mg",
		Time:         "08:00",
		SoundType:    model.SoundRingtone,
		Active:       true,
	}
}

func TestPresentStartsSingleSession(t *testing.T) {
	h := newHarness()
	defer h.svc.Shutdown()

	r := testReminder("guest")
	require.NoError(t, h.svc.Present(context.Background(), r))
	assert.True(t, h.svc.IsPresented("guest"))

	presented := h.svc.Presented("guest")
	require.NotNil(t, presented)
	assert.Equal(t, r.ID, presented.ReminderID)
	assert.Equal(t, "Metformin", presented.Medicine)
}

func TestPresentRejectsSecondAlarmForScope(t *testing.T) {
	h := newHarness()
	defer h.svc.Shutdown()

	require.NoError(t, h.svc.Present(context.Background(), testReminder("guest")))
	err := h.svc.Present(context.Background(), testReminder("guest"))
	assert.ErrorIs(t, err, ErrAlreadyPresenting)
}

func TestPresentAllowsConcurrentScopes(t *testing.T) {
	h := newHarness()
	defer h.svc.Shutdown()

	require.NoError(t, h.svc.Present(context.Background(), testReminder("guest")))
	require.NoError(t, h.svc.Present(context.Background(), testReminder("user-123")))
	assert.True(t, h.svc.IsPresented("guest"))
	assert.True(t, h.svc.IsPresented("user-123"))
}

func TestSessionEmitsToneAndVibration(t *testing.T) {
	h := newHarness()
	defer h.svc.Shutdown()

	require.NoError(t, h.svc.Present(context.Background(), testReminder("guest")))

	// The first pulses are emitted immediately on session start.
	require.Eventually(t, func() bool {
		types := h.broker.types()
		return contains(types, model.AlarmEventTonePulse) && contains(types, model.AlarmEventVibrate)
	}, time.Second, 10*time.Millisecond)
}

func TestVoiceSessionEmitsSpeech(t *testing.T) {
	h := newHarness()
	defer h.svc.Shutdown()

	r := testReminder("guest")
	r.SoundType = model.SoundVoice
	r.VoiceTone = model.VoiceToneStrict
	require.NoError(t, h.svc.Present(context.Background(), r))

	require.Eventually(t, func() bool {
		return contains(h.broker.types(), model.AlarmEventSpeak)
	}, time.Second, 10*time.Millisecond)
}

func TestDismissStopsAllDeliveryChannels(t *testing.T) {
	h := newHarness()

	r := testReminder("guest")
	require.NoError(t, h.svc.Present(context.Background(), r))
	require.Eventually(t, func() bool { return h.broker.count() > 0 },
		time.Second, 10*time.Millisecond)

	require.NoError(t, h.svc.Dismiss(context.Background(), "guest",
		&model.AlarmDisposition{Action: "take"}))
	assert.False(t, h.svc.IsPresented("guest"))

	// Dismiss blocks until the session goroutines exit; nothing may be
	// published afterwards.
	after := h.broker.count()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, h.broker.count())
}

func TestDismissTakeRecordsDoseAndDeactivates(t *testing.T) {
	h := newHarness()

	r := testReminder("guest")
	require.NoError(t, h.svc.Present(context.Background(), r))
	require.NoError(t, h.svc.Dismiss(context.Background(), "guest",
		&model.AlarmDisposition{Action: "take"}))

	require.Len(t, h.reminders.doses, 1)
	assert.Equal(t, model.DoseActionTaken, h.reminders.doses[0].Action)
	active, ok := h.reminders.active[r.ID]
	require.True(t, ok)
	assert.False(t, active)
}

func TestDismissSnoozeDefaultsToTenMinutes(t *testing.T) {
	h := newHarness()
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	h.svc.now = func() time.Time { return base }

	r := testReminder("guest")
	require.NoError(t, h.svc.Present(context.Background(), r))
	require.NoError(t, h.svc.Dismiss(context.Background(), "guest",
		&model.AlarmDisposition{Action: "snooze"}))

	until := h.reminders.snoozes[r.ID]
	require.NotNil(t, until)
	assert.Equal(t, base.Add(10*time.Minute), *until)

	require.Len(t, h.reminders.doses, 1)
	assert.Equal(t, model.DoseActionSnoozed, h.reminders.doses[0].Action)
}

func TestDismissSkipAlertsCaregiver(t *testing.T) {
	h := newHarness()
	h.users.users["user-123"] = &model.User{
		Subject:        "user-123",
		DisplayName:    "Asha",
		CaregiverEmail: "care@example.com",
	}

	r := testReminder("user-123")
	require.NoError(t, h.svc.Present(context.Background(), r))
	require.NoError(t, h.svc.Dismiss(context.Background(), "user-123",
		&model.AlarmDisposition{Action: "skip"}))

	require.Len(t, h.email.sent, 1)
	assert.Equal(t, "care@example.com", h.email.sent[0])

	// Skipping is a dose event but not a schedule change.
	require.Len(t, h.reminders.doses, 1)
	assert.Equal(t, model.DoseActionSkipped, h.reminders.doses[0].Action)
	_, deactivated := h.reminders.active[r.ID]
	assert.False(t, deactivated)
}

func TestGuestSkipSendsNoAlert(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.svc.Present(context.Background(), testReminder("guest")))
	require.NoError(t, h.svc.Dismiss(context.Background(), "guest",
		&model.AlarmDisposition{Action: "skip"}))
	assert.Empty(t, h.email.sent)
}

func TestDismissWithoutPresentedAlarm(t *testing.T) {
	h := newHarness()
	err := h.svc.Dismiss(context.Background(), "guest",
		&model.AlarmDisposition{Action: "take"})
	assert.Error(t, err)
}

func TestLifecycleEventsReachOutbox(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.svc.Present(context.Background(), testReminder("guest")))
	require.NoError(t, h.svc.Dismiss(context.Background(), "guest",
		&model.AlarmDisposition{Action: "take"}))

	types := h.outbox.eventTypes()
	assert.Equal(t, []string{model.AlarmEventTriggered, model.AlarmEventStopped}, types)
}

func TestShutdownStopsEverySession(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.svc.Present(context.Background(), testReminder("guest")))
	require.NoError(t, h.svc.Present(context.Background(), testReminder("user-123")))

	h.svc.Shutdown()
	assert.False(t, h.svc.IsPresented("guest"))
	assert.False(t, h.svc.IsPresented("user-123"))

	after := h.broker.count()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, h.broker.count())
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
