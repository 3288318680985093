package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	defaultRecentTopicWindow = 6
	defaultTopicHistoryLimit = 50
	defaultFrequentTopicMin  = 3
	defaultSessionLogLimit   = 20
)

// Settings are the runtime assistant tunables loaded from the parameter store.
type Settings struct {
	RecentTopicWindow int      `json:"recentTopicWindow"`
	TopicHistoryLimit int      `json:"topicHistoryLimit"`
	FrequentTopicMin  int      `json:"frequentTopicMin"`
	SessionLogLimit   int      `json:"sessionLogLimit"`
	TriggerPhrases    []string `json:"triggerPhrases"`
	CancelPhrases     []string `json:"cancelPhrases"`
	RestartPhrases    []string `json:"restartPhrases"`
}

// DefaultSettings returns the settings used when no overrides are configured.
func DefaultSettings() Settings {
	return Settings{}.WithDefaults()
}

// WithDefaults fills every unset value.
func (s Settings) WithDefaults() Settings {
	if s.RecentTopicWindow <= 0 {
		s.RecentTopicWindow = defaultRecentTopicWindow
	}
	if s.TopicHistoryLimit <= 0 {
		s.TopicHistoryLimit = defaultTopicHistoryLimit
	}
	if s.FrequentTopicMin <= 0 {
		s.FrequentTopicMin = defaultFrequentTopicMin
	}
	if s.SessionLogLimit <= 0 {
		s.SessionLogLimit = defaultSessionLogLimit
	}
	if len(s.TriggerPhrases) == 0 {
		s.TriggerPhrases = []string{"start interview", "begin interview", "onboarding", "update my profile", "update profile", "profile interview"}
	}
	if len(s.CancelPhrases) == 0 {
		s.CancelPhrases = []string{"stop interview", "cancel interview", "quit interview", "exit interview", "end interview", "stop", "cancel", "quit"}
	}
	if len(s.RestartPhrases) == 0 {
		s.RestartPhrases = []string{"restart interview", "redo interview", "start over"}
	}
	s.TriggerPhrases = normalizePhrases(s.TriggerPhrases)
	s.CancelPhrases = normalizePhrases(s.CancelPhrases)
	s.RestartPhrases = normalizePhrases(s.RestartPhrases)
	return s
}

// ParseSettings decodes a settings document. Empty input yields defaults.
func ParseSettings(raw string) (Settings, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSettings(), nil
	}
	var s Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Settings{}, fmt.Errorf("domain: decode settings: %w", err)
	}
	return s.WithDefaults(), nil
}

// MatchesPhrase reports whether text is one of the phrases. Single-word phrases
// must be the whole message; multi-word phrases may appear anywhere in it.
func MatchesPhrase(text string, phrases []string) bool {
	text = strings.Join(strings.Fields(strings.ToLower(text)), " ")
	text = strings.Trim(text, ".!? ")
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if text == p {
			return true
		}
		if strings.Contains(p, " ") && strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func normalizePhrases(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.Join(strings.Fields(strings.ToLower(p)), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
