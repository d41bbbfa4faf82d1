package generation

import (
	"errors"
	"testing"
)

func TestLimitsValidate(t *testing.T) {
	limits := DefaultLimits()
	if err := limits.Validate(limits.Defaults); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	err := limits.Validate(Settings{Model: "gpt-2", Temperature: 1.5, MaxTokens: 10})
	var serr *SettingsError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *SettingsError", err)
	}
	want := []string{"model", "temperature", "max_tokens"}
	if len(serr.Fields) != len(want) {
		t.Fatalf("Fields = %v, want %v", serr.Fields, want)
	}
	for i := range want {
		if serr.Fields[i] != want[i] {
			t.Fatalf("Fields = %v, want %v", serr.Fields, want)
		}
	}
}

func TestSettingsPatchApply(t *testing.T) {
	base := DefaultLimits().Defaults
	temp := 0.2
	got := SettingsPatch{Temperature: &temp}.Apply(base)
	if got.Temperature != 0.2 {
		t.Fatalf("Temperature = %v, want 0.2", got.Temperature)
	}
	if got.Model != base.Model || got.MaxTokens != base.MaxTokens {
		t.Fatalf("untouched fields changed: %+v", got)
	}
}
