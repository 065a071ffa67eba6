package alarm

import (
	"fmt"
	"time"

	"github.com/mediiq/mediiq-api/internal/model"
)

// soundProfiles maps each tonal sound type to its synthesis parameters
// and replay cadence. Cadences span 0.6s (emergency) to 1.5s (zen).
var soundProfiles = map[model.SoundType]model.SoundProfile{
	model.SoundRingtone: {
		Waveform:  "sine",
		Frequency: 880,
		Cadence:   time.Second,
		StartGain: 0.2,
		Intensity: model.IntensityMedium,
	},
	model.SoundMusical: {
		Waveform:  "triangle",
		Frequency: 523.25,
		Cadence:   1200 * time.Millisecond,
		StartGain: 0.2,
		Intensity: model.IntensityMedium,
	},
	model.SoundZen: {
		Waveform:  "sine",
		Frequency: 396,
		Cadence:   1500 * time.Millisecond,
		StartGain: 0.1,
		Intensity: model.IntensitySoft,
	},
	model.SoundEmergency: {
		Waveform:  "square",
		Frequency: 1046.5,
		Cadence:   600 * time.Millisecond,
		StartGain: 0.4,
		Intensity: model.IntensityStrong,
	},
	model.SoundSoft: {
		Waveform:  "sine",
		Frequency: 440,
		Cadence:   1400 * time.Millisecond,
		StartGain: 0.1,
		Intensity: model.IntensitySoft,
	},
	model.SoundLoud: {
		Waveform:  "sawtooth",
		Frequency: 660,
		Cadence:   700 * time.Millisecond,
		StartGain: 0.5,
		Intensity: model.IntensityStrong,
	},
}

// vibrationPatterns holds on/off millisecond durations keyed by sound
// intensity, re-emitted on the vibration cadence while presenting.
var vibrationPatterns = map[string][]int{
	model.IntensitySoft:   {200, 300, 200},
	model.IntensityMedium: {300, 200, 300, 200, 300},
	model.IntensityStrong: {500, 100, 500, 100, 500, 100, 500},
}

const (
	vibrationCadence = 2 * time.Second
	voiceCadence     = 6 * time.Second
	gainRampInterval = 3 * time.Second
	gainRampStep     = 0.1
	maxGain          = 1.0
	customCadence    = 1500 * time.Millisecond
)

func profileFor(soundType model.SoundType) model.SoundProfile {
	if p, ok := soundProfiles[soundType]; ok {
		return p
	}
	switch soundType {
	case model.SoundVoice:
		return model.SoundProfile{Intensity: model.IntensityMedium}
	case model.SoundCustom:
		return model.SoundProfile{Cadence: customCadence, Intensity: model.IntensityMedium}
	}
	return soundProfiles[model.SoundRingtone]
}

// voicePhrase builds the spoken reminder from the tone template.
func voicePhrase(tone model.VoiceTone, medicine, dose string) string {
	if dose == "" {
		dose = "your dose"
	}
	switch tone {
	case model.VoiceToneStrict:
		return fmt.Sprintf("Attention. It is time to take %s, %s. Do not skip it.", medicine, dose)
	case model.VoiceToneFriendly:
		return fmt.Sprintf("Hey there! Just a little nudge to take %s, %s. You've got this!", medicine, dose)
	case model.VoiceToneHindi:
		return fmt.Sprintf("Dawai ka samay ho gaya hai. Kripya %s lijiye, %s.", medicine, dose)
	default:
		return fmt.Sprintf("It's time to take %s, %s.", medicine, dose)
	}
}

// voiceLocale picks the speech locale hint for a tone.
func voiceLocale(tone model.VoiceTone) string {
	if tone == model.VoiceToneHindi {
		return "hi-IN"
	}
	return "en-US"
}
