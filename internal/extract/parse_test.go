package extract

import (
	"testing"
)

func TestParseUpdateSet_Plain(t *testing.T) {
	t.Parallel()

	got, err := parseUpdateSet(`{"name": "Lenin", "interests": ["robotica"], "has_intent_signal": true}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name == nil || *got.Name != "Lenin" {
		t.Errorf("Name = %v, want Lenin", got.Name)
	}
	if len(got.Interests) != 1 || got.Interests[0] != "robotica" {
		t.Errorf("Interests = %v, want [robotica]", got.Interests)
	}
	if !got.HasIntentSignal {
		t.Error("HasIntentSignal = false, want true")
	}
}

func TestParseUpdateSet_MarkdownFence(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"city\": \"Quito\"}\n```"
	got, err := parseUpdateSet(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.City == nil || *got.City != "Quito" {
		t.Errorf("City = %v, want Quito", got.City)
	}
}

func TestParseUpdateSet_SurroundingProse(t *testing.T) {
	t.Parallel()

	raw := `Aquí está el JSON solicitado: {"modality": "en linea"} ¡Espero que ayude!`
	got, err := parseUpdateSet(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Modality == nil || *got.Modality != "en linea" {
		t.Errorf("Modality = %v, want en linea", got.Modality)
	}
}

func TestParseUpdateSet_PythonLiterals(t *testing.T) {
	t.Parallel()

	got, err := parseUpdateSet(`{"is_public_university": True, "name": None, "has_intent_signal": False}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsPublicUniversity == nil || !*got.IsPublicUniversity {
		t.Errorf("IsPublicUniversity = %v, want true", got.IsPublicUniversity)
	}
	if got.Name != nil {
		t.Errorf("Name = %v, want nil from None", got.Name)
	}
	if got.HasIntentSignal {
		t.Error("HasIntentSignal = true, want false")
	}
}

func TestParseUpdateSet_PythonLiteralInString(t *testing.T) {
	t.Parallel()

	// "True" inside a string value must not be rewritten.
	got, err := parseUpdateSet(`{"interests": ["historia"], "name": "Trueman"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name == nil || *got.Name != "Trueman" {
		t.Errorf("Name = %v, want Trueman", got.Name)
	}
}

func TestParseUpdateSet_Malformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{"no object", "lo siento, no puedo ayudar con eso"},
		{"empty", ""},
		{"truncated", `{"name": "Len`},
		{"wrong types", `{"interests": "robotica"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseUpdateSet(tc.raw); err == nil {
				t.Errorf("parseUpdateSet(%q) succeeded, want error", tc.raw)
			}
		})
	}
}
