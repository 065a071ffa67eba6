package model

import (
	"time"

	"github.com/google/uuid"
)

// Alarm event types published on the delivery channel while a reminder
// is presented. The client renders these as audio, speech and vibration.
const (
	AlarmEventTriggered = "ALARM_TRIGGERED"
	AlarmEventTonePulse = "ALARM_TONE_PULSE"
	AlarmEventSpeak     = "ALARM_SPEAK"
	AlarmEventVibrate   = "ALARM_VIBRATE"
	AlarmEventReplay    = "ALARM_REPLAY"
	AlarmEventStopped   = "ALARM_STOPPED"
)

type AlarmEvent struct {
	Type       string      `json:"type"`
	Scope      string      `json:"scope"`
	ReminderID uuid.UUID   `json:"reminder_id"`
	Medicine   string      `json:"medicine,omitempty"`
	Dose       string      `json:"dose,omitempty"`
	Waveform   string      `json:"waveform,omitempty"`
	Frequency  float64     `json:"frequency,omitempty"`
	Gain       float64     `json:"gain,omitempty"`
	Phrase     string      `json:"phrase,omitempty"`
	VoiceTone  VoiceTone   `json:"voice_tone,omitempty"`
	Gender     VoiceGender `json:"gender,omitempty"`
	Locale     string      `json:"locale,omitempty"`
	Sound      string      `json:"sound,omitempty"`
	Pattern    []int       `json:"pattern,omitempty"`
	EmittedAt  time.Time   `json:"emitted_at"`
}

// SoundProfile describes the tonal synthesis parameters and cadence for
// one sound type.
type SoundProfile struct {
	Waveform  string
	Frequency float64
	Cadence   time.Duration
	StartGain float64
	Intensity string
}

const (
	IntensitySoft   = "soft"
	IntensityMedium = "medium"
	IntensityStrong = "strong"
)

type AlarmDisposition struct {
	Action  string `json:"action" binding:"required,oneof=take snooze skip"`
	Minutes int    `json:"minutes" binding:"omitempty,min=1,max=720"`
}

// PresentedAlarm is the single reminder currently occupying the alarm
// state for a scope.
type PresentedAlarm struct {
	ReminderID  uuid.UUID `json:"reminder_id"`
	Medicine    string    `json:"medicine"`
	Dose        string    `json:"dose"`
	TriggeredAt time.Time `json:"triggered_at"`
}
