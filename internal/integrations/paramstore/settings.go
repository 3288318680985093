package paramstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"student-agent/internal/domain"
)

const settingsPath = "/config/assistant"

// SettingsSource loads the assistant settings document stored under
// <prefix>/config/assistant. A missing parameter yields the defaults.
type SettingsSource struct {
	params Getter
	prefix string
}

func NewSettingsSource(g Getter, prefix string) (*SettingsSource, error) {
	if g == nil {
		return nil, errors.New("paramstore: getter must not be nil")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return nil, errors.New("paramstore: parameter prefix must not be empty")
	}
	return &SettingsSource{params: g, prefix: prefix}, nil
}

func (s *SettingsSource) LoadSettings(ctx context.Context) (domain.Settings, error) {
	raw, err := s.params.GetParameter(ctx, s.prefix+settingsPath)
	if errors.Is(err, ErrNotFound) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("paramstore: load settings: %w", err)
	}
	settings, err := domain.ParseSettings(raw)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("paramstore: load settings: %w", err)
	}
	return settings, nil
}
