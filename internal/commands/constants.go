package commands

// TelegramCommands contains all commands and button labels for the bot
const (
	// Main commands
	Start         = "/start"
	Admin         = "/admin"
	CancelCommand = "/cancel"

	// Cancel is matched case-insensitively in any active stage
	Cancel = "cancel"

	// Top-level menu buttons
	Register  = "Register"
	Activate  = "Activate"
	Faculties = "Faculties"

	// Navigation buttons
	Back     = "Back"
	MainMenu = "Main Menu"
)
