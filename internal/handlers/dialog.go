package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"edu-info-bot/internal/commands"
	"edu-info-bot/internal/config"
	"edu-info-bot/internal/models"
	"edu-info-bot/internal/permissions"
	"edu-info-bot/internal/services"
	"edu-info-bot/pkg/eduapi"
)

// DialogHandler is the conversation state machine. Given the current stage,
// the incoming text and the stored conversation, it decides the transition,
// issues backend calls and emits the next prompt.
type DialogHandler struct {
	BaseHandler
	commandHandlers map[string]func(context.Context, telebot.Context) error
}

// NewDialogHandler creates a new dialog handler
func NewDialogHandler(
	api *eduapi.Client,
	stateService *services.ConversationService,
	permCtrl *permissions.Controller,
	notifier Notifier,
	config *config.Config,
	logger *logrus.Logger,
) *DialogHandler {
	handler := &DialogHandler{
		BaseHandler: NewBaseHandler(api, stateService, permCtrl, notifier, config, logger),
	}

	handler.initializeCommands()
	return handler
}

// initializeCommands initializes the top-level command handlers. /start is
// dispatched before stage handling and needs no entry here.
func (h *DialogHandler) initializeCommands() {
	h.commandHandlers = map[string]func(context.Context, telebot.Context) error{
		commands.Register:  h.handleRegister,
		commands.Admin:     h.handleAdmin,
		commands.Activate:  h.handleActivate,
		commands.Faculties: h.handleFaculties,
	}
}

// Handle handles a message from Telegram
func (h *DialogHandler) Handle(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	conv, err := h.stateService.GetState(userID)
	if err != nil {
		h.logger.Errorf("Failed to get state for user %d: %v", userID, err)
		h.stateService.ClearState(userID)
		conv = models.Conversation{}
	}

	// The cancel word works in any active stage; /start routes to the top
	// prompt without touching in-progress state.
	if isCancel(text) {
		return h.handleCancel(c, userID, conv)
	}
	if text == commands.Start {
		return h.handleStart(ctx, c)
	}

	switch conv.Stage {
	case models.StageFirstName:
		return h.handleFirstName(c, userID, text, conv)
	case models.StageLastName:
		return h.handleLastName(c, userID, text, conv)
	case models.StageAge:
		return h.handleAge(c, userID, text, conv)
	case models.StageGender:
		return h.handleGender(c, userID, text, conv)
	case models.StageCity:
		return h.handleCity(ctx, c, userID, text, conv)
	case models.StageTargetID:
		return h.handleTargetID(c, userID, text, conv)
	case models.StageDepartment:
		return h.handleDepartment(ctx, c, userID, text, conv)
	case models.StageEducationType:
		return h.handleEducationType(ctx, c, userID, text, conv)
	case models.StageFaculty:
		return h.handleFaculty(ctx, c, userID, text, conv)
	case models.StageProfile:
		return h.handleProfile(ctx, c, userID, text, conv)
	case models.StageDone:
		return h.handleDone(c, userID)
	default:
		return h.handleDefault(ctx, c, text)
	}
}

// handleDefault dispatches top-level commands outside any conversation
func (h *DialogHandler) handleDefault(ctx context.Context, c telebot.Context, text string) error {
	if handler, ok := h.commandHandlers[text]; ok {
		return handler(ctx, c)
	}

	return h.sendTextMessage(c, "I don't understand that. Press /start to go to the main menu.", h.createStartKeyboard())
}

// handleStart greets the user according to existence and activation status
func (h *DialogHandler) handleStart(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID

	user, err := h.api.FetchUser(ctx, userID)
	if err != nil {
		return h.failConversation(c, userID, err)
	}

	switch h.permCtrl.GetAccessType(user) {
	case permissions.None:
		return h.sendTextMessage(c, "You are not registered yet, please complete the registration.", h.createRegistrationKeyboard())
	case permissions.Pending:
		return h.sendTextMessage(c,
			fmt.Sprintf("Your account is awaiting activation. Your ID is %d, pass it to the administrator.", userID),
			h.createStartKeyboard())
	default:
		return h.sendTextMessage(c,
			fmt.Sprintf("Welcome to %s!", h.config.Telegram.BotName),
			h.createMainKeyboard())
	}
}

// handleCancel resets any active conversation and confirms the cancellation
func (h *DialogHandler) handleCancel(c telebot.Context, userID int64, conv models.Conversation) error {
	if !conv.Active() {
		return nil
	}

	h.stateService.ClearState(userID)
	return h.sendTextMessage(c, "Action cancelled. Press the button to start over.", h.createStartKeyboard())
}

// handleDone finishes the lookup conversation and returns to the main menu
func (h *DialogHandler) handleDone(c telebot.Context, userID int64) error {
	h.stateService.ClearState(userID)
	return h.sendTextMessage(c,
		fmt.Sprintf("Welcome to %s!", h.config.Telegram.BotName),
		h.createMainKeyboard())
}

// isCancel matches the cancel command or the bare cancel word, case-insensitively
func isCancel(text string) bool {
	return text == commands.CancelCommand || strings.EqualFold(text, commands.Cancel)
}
