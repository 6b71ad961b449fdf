package domain

import "time"

// User represents an authenticated studio account.
type User struct {
	ID        string
	Email     string
	Name      string
	Locale    string
	PhotoKey  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Settings holds per-user studio preferences. Provider keys are BYOK: the
// platform never supplies a shared credential, so an empty key means the
// matching provider is unavailable for that user.
type Settings struct {
	UserID             string
	OpenAIAPIKey       string
	GeminiAPIKey       string
	DefaultModel       string
	DefaultAspectRatio string
	Locale             string
	UpdatedAt          time.Time
}

// KeyForProvider returns the stored credential for a provider tag.
func (s Settings) KeyForProvider(provider string) string {
	switch provider {
	case "openai":
		return s.OpenAIAPIKey
	case "gemini":
		return s.GeminiAPIKey
	default:
		return ""
	}
}
