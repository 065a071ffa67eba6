package model

import (
	"time"

	"github.com/google/uuid"
)

type FoodContext string

const (
	FoodContextBeforeFood   FoodContext = "before_food"
	FoodContextAfterFood    FoodContext = "after_food"
	FoodContextEmptyStomach FoodContext = "empty_stomach"
	FoodContextAny          FoodContext = "any"
)

type RepeatKind string

const (
	RepeatDaily     RepeatKind = "daily"
	RepeatAlternate RepeatKind = "alternate"
	RepeatCustom    RepeatKind = "custom"
)

type SoundType string

const (
	SoundRingtone  SoundType = "ringtone"
	SoundMusical   SoundType = "musical"
	SoundZen       SoundType = "zen"
	SoundEmergency SoundType = "emergency"
	SoundSoft      SoundType = "soft"
	SoundLoud      SoundType = "loud"
	SoundVoice     SoundType = "voice"
	SoundCustom    SoundType = "custom"
)

type VoiceTone string

const (
	VoiceToneNormal   VoiceTone = "normal"
	VoiceToneStrict   VoiceTone = "strict"
	VoiceToneFriendly VoiceTone = "friendly"
	VoiceToneHindi    VoiceTone = "hindi"
)

type VoiceGender string

const (
	VoiceGenderFemale VoiceGender = "female"
	VoiceGenderMale   VoiceGender = "male"
)

// Reminder is one scheduled medicine dose. Time is a 24h "HH:MM" local
// time-of-day; Weekdays is consulted only when Repeat is "custom"
// (0=Sunday..6=Saturday, empty set means every day).
type Reminder struct {
	Base
	Scope        string       `db:"scope" json:"-"`
	MedicineName string       `db:"medicine_name" json:"medicine_name"`
	Dose         string       `db:"dose" json:"dose"`
	Time         string       `db:"time" json:"time"`
	FoodContext  FoodContext  `db:"food_context" json:"food_context"`
	Repeat       RepeatKind   `db:"repeat" json:"repeat"`
	Weekdays     WeekdaySet   `db:"weekdays" json:"weekdays,omitempty"`
	SoundType    SoundType    `db:"sound_type" json:"sound_type"`
	VoiceTone    VoiceTone    `db:"voice_tone" json:"voice_tone,omitempty"`
	VoiceGender  VoiceGender  `db:"voice_gender" json:"voice_gender,omitempty"`
	CustomSound  string       `db:"custom_sound" json:"custom_sound,omitempty"`
	Active       bool         `db:"active" json:"active"`
	SnoozedUntil *time.Time   `db:"snoozed_until" json:"snoozed_until,omitempty"`
}

type CreateReminderRequest struct {
	MedicineName string   `json:"medicine_name" binding:"required"`
	Dose         string   `json:"dose"`
	Time         string   `json:"time" binding:"required,timeofday"`
	FoodContext  string   `json:"food_context" binding:"omitempty,oneof=before_food after_food empty_stomach any"`
	Repeat       string   `json:"repeat" binding:"omitempty,oneof=daily alternate custom"`
	Weekdays     []int    `json:"weekdays" binding:"omitempty,dive,min=0,max=6"`
	SoundType    string   `json:"sound_type" binding:"omitempty,oneof=ringtone musical zen emergency soft loud voice custom"`
	VoiceTone    string   `json:"voice_tone" binding:"omitempty,oneof=normal strict friendly hindi"`
	VoiceGender  string   `json:"voice_gender" binding:"omitempty,oneof=female male"`
	CustomSound  string   `json:"custom_sound"`
}

type UpdateReminderRequest struct {
	MedicineName *string `json:"medicine_name"`
	Dose         *string `json:"dose"`
	Time         *string `json:"time" binding:"omitempty,timeofday"`
	FoodContext  *string `json:"food_context" binding:"omitempty,oneof=before_food after_food empty_stomach any"`
	Repeat       *string `json:"repeat" binding:"omitempty,oneof=daily alternate custom"`
	Weekdays     []int   `json:"weekdays" binding:"omitempty,dive,min=0,max=6"`
	SoundType    *string `json:"sound_type" binding:"omitempty,oneof=ringtone musical zen emergency soft loud voice custom"`
	VoiceTone    *string `json:"voice_tone" binding:"omitempty,oneof=normal strict friendly hindi"`
	VoiceGender  *string `json:"voice_gender" binding:"omitempty,oneof=female male"`
	CustomSound  *string `json:"custom_sound"`
}

type SnoozeReminderRequest struct {
	Minutes int `json:"minutes" binding:"required,min=1,max=720"`
}

// DoseEvent records a disposition taken on a presented alarm.
type DoseEvent struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Scope      string    `db:"scope" json:"-"`
	ReminderID uuid.UUID `db:"reminder_id" json:"reminder_id"`
	Action     string    `db:"action" json:"action"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
}

const (
	DoseActionTaken   = "taken"
	DoseActionSnoozed = "snoozed"
	DoseActionSkipped = "skipped"
)
