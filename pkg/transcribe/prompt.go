package transcribe

import (
	"context"
	"fmt"
	"strings"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/pkg/store"
)

const maxTitleChars = 200

// buildInitialPrompt assembles Whisper's initial_prompt bias text from the
// hearing's state commission name, the global utility catalogue, and up to
// 200 chars of the hearing title (§4.5). CanaryScope's State schema carries
// no per-state commissioner roster the way the reference's hardcoded
// STATE_PROMPTS table does, so the utility names come from the
// (state-agnostic) catalogue rather than a curated per-state list; see
// DESIGN.md.
func buildInitialPrompt(ctx context.Context, entities *store.EntityStore, h *ent.Hearing) string {
	var b strings.Builder

	if st, err := entities.GetState(ctx, h.StateCode); err == nil {
		fmt.Fprintf(&b, "%s hearing transcript.", st.CommissionName)
	} else {
		b.WriteString("Public utility commission hearing transcript.")
	}

	if utilities, err := entities.ListUtilities(ctx); err == nil && len(utilities) > 0 {
		names := make([]string, 0, len(utilities))
		for _, u := range utilities {
			names = append(names, u.Name)
			names = append(names, u.Aliases...)
		}
		b.WriteString(" ")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString(".")
	}

	if h.Title != "" {
		title := h.Title
		if len(title) > maxTitleChars {
			title = title[:maxTitleChars]
		}
		fmt.Fprintf(&b, " Hearing: %s", title)
	}

	return b.String()
}
