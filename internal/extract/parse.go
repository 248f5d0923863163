package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rumbo-ai/rumbo/pkg/profile"
)

// pyBoolRe matches Python-style boolean and null literals in value position.
// Some models echo the snake_case prompt back with Python spellings; these
// are normalized before structural parsing.
var pyBoolRe = regexp.MustCompile(`(?m)(:\s*)(True|False|None)\b`)

// parseUpdateSet turns the raw model output into a [profile.FieldUpdateSet].
// It strips markdown code fences and surrounding prose, normalizes boolean
// literal spellings, and then requires a well-formed JSON object. Anything
// that survives none of that is an error — which the caller converts into an
// empty update set.
func parseUpdateSet(raw string) (profile.FieldUpdateSet, error) {
	payload, err := extractObject(raw)
	if err != nil {
		return profile.FieldUpdateSet{}, err
	}

	payload = pyBoolRe.ReplaceAllStringFunc(payload, func(m string) string {
		switch {
		case strings.HasSuffix(m, "True"):
			return strings.TrimSuffix(m, "True") + "true"
		case strings.HasSuffix(m, "False"):
			return strings.TrimSuffix(m, "False") + "false"
		default:
			return strings.TrimSuffix(m, "None") + "null"
		}
	})

	var updates profile.FieldUpdateSet
	dec := json.NewDecoder(strings.NewReader(payload))
	if err := dec.Decode(&updates); err != nil {
		return profile.FieldUpdateSet{}, fmt.Errorf("decode update set: %w", err)
	}
	return updates, nil
}

// extractObject isolates the JSON object inside raw. Models wrap payloads in
// markdown fences ("```json … ```") or lead-in prose despite instructions;
// the first '{' through the last '}' is taken as the payload.
func extractObject(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return "", errors.New("no JSON object in response")
	}
	return s[start : end+1], nil
}
