package domain

// VoiceGender selects which voice of a language is used for synthesis.
type VoiceGender string

// Supported voice genders. Female is the default.
const (
	VoiceGenderFemale VoiceGender = "female"
	VoiceGenderMale   VoiceGender = "male"
)

// VoiceGenders lists the genders in the order their audio is stored on a card.
func VoiceGenders() []VoiceGender {
	return []VoiceGender{VoiceGenderFemale, VoiceGenderMale}
}

// Language is an entry of the language catalog.
type Language struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	FemaleVoiceName string `json:"female_voice_name,omitempty"`
	MaleVoiceName   string `json:"male_voice_name,omitempty"`
}

// VoiceName returns the configured voice for gender, or "" if none is set.
func (l *Language) VoiceName(gender VoiceGender) string {
	if gender == VoiceGenderMale {
		return l.MaleVoiceName
	}
	return l.FemaleVoiceName
}
