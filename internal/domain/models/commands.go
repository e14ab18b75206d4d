package models

import "strings"

// CommandType enumerates supported chat command categories.
type CommandType string

const (
	CommandPurchase CommandType = "achat"
	CommandSale     CommandType = "vente"
	CommandExpense  CommandType = "depense"
	CommandNote     CommandType = "note"
	CommandSummary  CommandType = "bilan"
	CommandProjects CommandType = "projets"
	CommandUnknown  CommandType = "unknown"
)

var commandAliases = map[string]CommandType{
	"achat":    CommandPurchase,
	"buy":      CommandPurchase,
	"vente":    CommandSale,
	"sell":     CommandSale,
	"depense":  CommandExpense,
	"dépense":  CommandExpense,
	"expense":  CommandExpense,
	"note":     CommandNote,
	"journal":  CommandNote,
	"bilan":    CommandSummary,
	"summary":  CommandSummary,
	"projets":  CommandProjects,
	"projects": CommandProjects,
}

// Command represents a parsed instruction extracted from a chat message.
// Args keep their original case; only the command word is normalized.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	if t, ok := commandAliases[head]; ok {
		cmd.Type = t
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
