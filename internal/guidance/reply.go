package guidance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rumbo-ai/rumbo/pkg/career"
	"github.com/rumbo-ai/rumbo/pkg/profile"
	"github.com/rumbo-ai/rumbo/pkg/provider/llm"
)

// counselorPrompt is the persona instruction for reply generation. The model
// receives the already-merged profile, so it answers from everything known
// about the user, not just the last message.
const counselorPrompt = `Eres "Rumbo", un orientador vocacional cálido y directo que conversa con estudiantes en español.

Usa el PERFIL del estudiante para personalizar tu respuesta: salúdalo por su nombre si lo conoces, y ten en cuenta su ciudad, sus intereses y sus materias fuertes y débiles.

Si la sección CARRERAS SUGERIDAS está presente, el estudiante pidió sugerencias: preséntale las opciones con una frase sobre por qué cada una encaja con su perfil. Si no está presente, responde a su mensaje de forma natural y, cuando tenga sentido, haz UNA pregunta que te ayude a conocerlo mejor (intereses, materias, ciudad).

No inventes carreras ni universidades que no estén en la lista. Responde en un máximo de dos párrafos.`

// replyTimeout bounds the counselor model call. On expiry the turn falls
// back to a canned reply rather than failing — the profile update already
// happened and must still be persisted and acknowledged.
const replyTimeout = 20 * time.Second

// generateReply produces the counselor's answer for one turn. matches are
// included in the prompt only when the user explicitly asked for suggestions
// (wantSuggestions); otherwise they would pull every conversation toward
// premature recommendations.
//
// Reply generation is best-effort: on model failure a deterministic fallback
// reply is returned along with the error for logging.
func generateReply(ctx context.Context, model llm.Provider, p *profile.UserProfile, matches []career.Match, message string, wantSuggestions bool) (string, error) {
	var b strings.Builder

	b.WriteString("PERFIL:\n")
	writeProfile(&b, p)

	if wantSuggestions && len(matches) > 0 {
		b.WriteString("\nCARRERAS SUGERIDAS:\n")
		for i, m := range matches {
			fmt.Fprintf(&b, "%d. %s — %s", i+1, m.Record.Name, m.Record.University)
			if m.Record.Modality != "" {
				fmt.Fprintf(&b, " (%s)", m.Record.Modality)
			}
			if m.Record.Description != "" {
				fmt.Fprintf(&b, ": %s", m.Record.Description)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nMENSAJE DEL ESTUDIANTE:\n")
	b.WriteString(message)

	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	resp, err := model.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: counselorPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: b.String()},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return fallbackReply(p, matches, wantSuggestions), err
	}
	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return fallbackReply(p, matches, wantSuggestions), fmt.Errorf("guidance: empty reply from model")
	}
	return reply, nil
}

// writeProfile renders the parts of a profile the counselor prompt needs.
// The interest vector is omitted — it means nothing to a language model.
func writeProfile(b *strings.Builder, p *profile.UserProfile) {
	if p.Name != "" {
		fmt.Fprintf(b, "- nombre: %s\n", p.Name)
	}
	if p.Preferences.City != "" {
		fmt.Fprintf(b, "- ciudad: %s\n", p.Preferences.City)
	}
	if p.Preferences.Modality != "" {
		fmt.Fprintf(b, "- modalidad preferida: %s\n", p.Preferences.Modality)
	}
	if p.Preferences.IsPublicUniversity != nil {
		if *p.Preferences.IsPublicUniversity {
			b.WriteString("- prefiere universidad pública\n")
		} else {
			b.WriteString("- prefiere universidad privada\n")
		}
	}
	writeList(b, "intereses", p.Interests)
	writeList(b, "habilidades", p.PerceivedSkills)
	writeList(b, "materias fuertes", p.StrongSubjects)
	writeList(b, "materias débiles", p.WeakSubjects)
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(items, ", "))
}

// fallbackReply is the canned answer used when the counselor model is
// unavailable. It still acknowledges the message and, when the user asked
// for suggestions, lists the retrieved careers plainly.
func fallbackReply(p *profile.UserProfile, matches []career.Match, wantSuggestions bool) string {
	var b strings.Builder
	if p.Name != "" {
		fmt.Fprintf(&b, "Gracias, %s. ", p.Name)
	} else {
		b.WriteString("Gracias. ")
	}
	b.WriteString("He guardado lo que me cuentas.")

	if wantSuggestions && len(matches) > 0 {
		b.WriteString(" Estas carreras encajan con tu perfil:")
		for _, m := range matches {
			fmt.Fprintf(&b, "\n- %s (%s)", m.Record.Name, m.Record.University)
		}
	}
	return b.String()
}
