package session

import (
	"strings"

	"github.com/foxseedlab/tokpost/internal/discord"
)

const (
	commandStart   = "start"
	commandHelp    = "help"
	commandLogin   = "login"
	commandUpload  = "upload"
	commandCancel  = "cancel"
	commandHistory = "history"

	optionLoginName = "name"
)

func SlashCommandDefinitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{Name: commandStart, Description: slashCommandStartDescription},
		{Name: commandHelp, Description: slashCommandHelpDescription},
		{
			Name:        commandLogin,
			Description: slashCommandLoginDescription,
			Options: []discord.SlashCommandOption{
				{Name: optionLoginName, Description: slashCommandLoginNameOption, Required: true},
			},
		},
		{Name: commandUpload, Description: slashCommandUploadDescription},
		{Name: commandCancel, Description: slashCommandCancelDescription},
		{Name: commandHistory, Description: slashCommandHistoryDescription},
	}
}

func SlashCommandNames() []string {
	defs := SlashCommandDefinitions()
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return names
}

// parseCommand splits "/login alice" into ("login", ["alice"]). A "@bot"
// suffix on the command name is dropped.
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(text), "/"))
	if len(fields) == 0 {
		return "", nil
	}
	name := strings.ToLower(fields[0])
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return name, fields[1:]
}
