package alarm

import (
	"context"
	"sync"
	"time"

	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/pkg/logger"
	"github.com/mediiq/mediiq-api/pkg/messaging"
)

// session owns every delivery channel of one presented alarm: the tonal
// or voice cadence, the vibration cadence and the volume ramp. All of
// them stop, and their goroutines exit, before Stop returns — on every
// dismissal path, including shutdown.
type session struct {
	reminder    *model.Reminder
	profile     model.SoundProfile
	triggeredAt time.Time

	broker messaging.Broker
	logger *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	gain float64
}

func newSession(reminder *model.Reminder, broker messaging.Broker, logger *logger.Logger) *session {
	profile := profileFor(reminder.SoundType)
	return &session{
		reminder:    reminder,
		profile:     profile,
		triggeredAt: time.Now(),
		broker:      broker,
		logger:      logger.WithScope(reminder.Scope),
		gain:        profile.StartGain,
	}
}

func (s *session) start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel

	s.wg.Add(2)
	go s.runSound(ctx)
	go s.runVibration(ctx)

	if s.reminder.SoundType != model.SoundVoice && s.reminder.SoundType != model.SoundCustom {
		s.wg.Add(1)
		go s.runGainRamp(ctx)
	}
}

// stop cancels every channel and blocks until all of them have exited.
func (s *session) stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *session) runSound(ctx context.Context) {
	defer s.wg.Done()

	cadence := s.profile.Cadence
	if s.reminder.SoundType == model.SoundVoice {
		cadence = voiceCadence
	}

	ticker := time.NewTicker(cadence)
	defer ticker.Stop()

	// First pulse immediately; the modal opens with sound.
	s.emitSound(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.emitSound(ctx)
		}
	}
}

func (s *session) runVibration(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(vibrationCadence)
	defer ticker.Stop()

	s.emitVibration(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.emitVibration(ctx)
		}
	}
}

// runGainRamp raises perceived volume from a low start toward the cap
// so a sleeping user is woken gently.
func (s *session) runGainRamp(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(gainRampInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.gain += gainRampStep
			if s.gain > maxGain {
				s.gain = maxGain
			}
			s.mu.Unlock()
		}
	}
}

func (s *session) emitSound(ctx context.Context) {
	r := s.reminder
	event := model.AlarmEvent{
		Scope:      r.Scope,
		ReminderID: r.ID,
		EmittedAt:  time.Now(),
	}

	switch r.SoundType {
	case model.SoundVoice:
		event.Type = model.AlarmEventSpeak
		event.Phrase = voicePhrase(r.VoiceTone, r.MedicineName, r.Dose)
		event.VoiceTone = r.VoiceTone
		event.Gender = r.VoiceGender
		event.Locale = voiceLocale(r.VoiceTone)
	case model.SoundCustom:
		event.Type = model.AlarmEventReplay
		event.Sound = r.CustomSound
	default:
		s.mu.Lock()
		gain := s.gain
		s.mu.Unlock()
		event.Type = model.AlarmEventTonePulse
		event.Waveform = s.profile.Waveform
		event.Frequency = s.profile.Frequency
		event.Gain = gain
	}

	s.publish(ctx, event)
}

func (s *session) emitVibration(ctx context.Context) {
	s.publish(ctx, model.AlarmEvent{
		Type:       model.AlarmEventVibrate,
		Scope:      s.reminder.Scope,
		ReminderID: s.reminder.ID,
		Pattern:    vibrationPatterns[s.profile.Intensity],
		EmittedAt:  time.Now(),
	})
}

func (s *session) publish(ctx context.Context, event model.AlarmEvent) {
	// Delivery is best-effort; a broker hiccup must not kill the session.
	if err := s.broker.Publish(ctx, messaging.AlarmChannel(event.Scope), event); err != nil && ctx.Err() == nil {
		s.logger.Error(err, "failed to publish alarm event",
			"type", event.Type, "reminder_id", event.ReminderID.String())
	}
}
