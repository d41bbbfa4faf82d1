package generation

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultModels mirrors the sidebar choices offered to candidates.
var DefaultModels = []string{"gemini-1.5-flash-8b-latest", "gemma-7b", "flan-t5-xl"}

// Settings are the tuning knobs passed through to the provider.
type Settings struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// SettingsPatch carries a partial settings update; nil fields are kept.
type SettingsPatch struct {
	Model       *string  `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

func (p SettingsPatch) Apply(base Settings) Settings {
	out := base
	if p.Model != nil {
		out.Model = strings.TrimSpace(*p.Model)
	}
	if p.Temperature != nil {
		out.Temperature = *p.Temperature
	}
	if p.MaxTokens != nil {
		out.MaxTokens = *p.MaxTokens
	}
	return out
}

// Limits bound what a session may choose.
type Limits struct {
	Models         []string `json:"models"`
	MinTemperature float64  `json:"min_temperature"`
	MaxTemperature float64  `json:"max_temperature"`
	MinMaxTokens   int      `json:"min_max_tokens"`
	MaxMaxTokens   int      `json:"max_max_tokens"`
	Defaults       Settings `json:"defaults"`
}

func DefaultLimits() Limits {
	return Limits{
		Models:         slices.Clone(DefaultModels),
		MinTemperature: 0.0,
		MaxTemperature: 1.0,
		MinMaxTokens:   50,
		MaxMaxTokens:   300,
		Defaults: Settings{
			Model:       DefaultModels[0],
			Temperature: 0.7,
			MaxTokens:   150,
		},
	}
}

// SettingsError lists the settings that fall outside Limits.
type SettingsError struct {
	Fields  []string
	Reasons []string
}

func (e *SettingsError) Error() string {
	return "invalid generation settings: " + strings.Join(e.Reasons, "; ")
}

func (l Limits) AllowsModel(model string) bool {
	return slices.Contains(l.Models, model)
}

func (l Limits) Validate(s Settings) error {
	var serr SettingsError
	if !l.AllowsModel(s.Model) {
		serr.Fields = append(serr.Fields, "model")
		serr.Reasons = append(serr.Reasons, fmt.Sprintf("model %q is not offered", s.Model))
	}
	if s.Temperature < l.MinTemperature || s.Temperature > l.MaxTemperature {
		serr.Fields = append(serr.Fields, "temperature")
		serr.Reasons = append(serr.Reasons, fmt.Sprintf("temperature must be between %.1f and %.1f", l.MinTemperature, l.MaxTemperature))
	}
	if s.MaxTokens < l.MinMaxTokens || s.MaxTokens > l.MaxMaxTokens {
		serr.Fields = append(serr.Fields, "max_tokens")
		serr.Reasons = append(serr.Reasons, fmt.Sprintf("max_tokens must be between %d and %d", l.MinMaxTokens, l.MaxMaxTokens))
	}
	if len(serr.Fields) > 0 {
		return &serr
	}
	return nil
}
