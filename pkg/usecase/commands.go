package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/hemlix/simkb/pkg/domain/types"
)

// HelpText describes the chat commands and example questions. It is shared
// by the help command and the REPL welcome screen.
const HelpText = `# SIM-KB Chat

Ask me anything about the insurance carriers in the knowledge base!

## Example Questions:
- "What carriers do we have data for?"
- "Tell me about Protective Life"
- "How did Protective Life perform in Annuities?"
- "What are the BPSer team roles?"
- "Show me Protective Life's Annuity scorecard"
- "What documents do we have for Lincoln Financial?"

## Commands:
- clear - Clear conversation history
- stats - Show knowledge base statistics
- help  - Show this help message
- exit or quit - Exit the chat`

// runCommand intercepts chat commands before the LLM sees them. The second
// return value reports whether the message was a command.
func (uc *ChatUseCase) runCommand(ctx context.Context, sessionID types.SessionID, message string) (string, bool, error) {
	switch strings.ToLower(message) {
	case "clear":
		if err := uc.ClearSession(ctx, sessionID); err != nil {
			return "", true, err
		}
		return "Conversation history cleared", true, nil

	case "stats":
		stats, err := uc.Stats(ctx)
		if err != nil {
			return "", true, err
		}

		var b strings.Builder
		b.WriteString("# SIM-KB Statistics\n\n")
		fmt.Fprintf(&b, "- Organizations: %d\n", stats.Organizations)
		fmt.Fprintf(&b, "- Products: %d\n", stats.Products)
		fmt.Fprintf(&b, "- Roles: %d\n", stats.Roles)
		fmt.Fprintf(&b, "- Documents: %d\n", stats.Documents)
		fmt.Fprintf(&b, "- Chunks: %d\n", stats.Chunks)
		if !stats.SearchAvailable() {
			b.WriteString("\nSemantic search not available - run `simkb index` to enable")
		}
		return b.String(), true, nil

	case "help":
		return HelpText, true, nil

	case "exit", "quit":
		return "Goodbye!", true, nil
	}

	return "", false, nil
}
