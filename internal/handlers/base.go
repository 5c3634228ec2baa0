package handlers

import (
	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"edu-info-bot/internal/commands"
	"edu-info-bot/internal/config"
	"edu-info-bot/internal/models"
	"edu-info-bot/internal/permissions"
	"edu-info-bot/internal/services"
	"edu-info-bot/internal/validation"
	"edu-info-bot/pkg/eduapi"
)

// Notifier sends messages outside the scope of the inbound message, such as
// the activation notice to the target user. *telebot.Bot satisfies it.
type Notifier interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// chatRecipient addresses a chat by the verbatim id text an admin typed
type chatRecipient string

// Recipient returns the chat id
func (r chatRecipient) Recipient() string {
	return string(r)
}

// BaseHandler provides send and keyboard helpers shared by all stage groups
type BaseHandler struct {
	api          *eduapi.Client
	stateService *services.ConversationService
	permCtrl     *permissions.Controller
	notifier     Notifier
	config       *config.Config
	logger       *logrus.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(
	api *eduapi.Client,
	stateService *services.ConversationService,
	permCtrl *permissions.Controller,
	notifier Notifier,
	config *config.Config,
	logger *logrus.Logger,
) BaseHandler {
	return BaseHandler{
		api:          api,
		stateService: stateService,
		permCtrl:     permCtrl,
		notifier:     notifier,
		config:       config,
		logger:       logger,
	}
}

// sendTextMessage sends a text message with optional markup
func (h *BaseHandler) sendTextMessage(c telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	opts := &telebot.SendOptions{}

	if markup != nil {
		opts.ReplyMarkup = markup
	}

	if err := c.Send(text, opts); err != nil {
		h.logger.Errorf("Failed to send message: %v", err)
		return err
	}
	return nil
}

// sendErrorMessage sends the generic error message. The underlying error is
// never shown to the user.
func (h *BaseHandler) sendErrorMessage(c telebot.Context) error {
	return h.sendTextMessage(c, "Something went wrong, please try again later. Press /start to return to the main menu.", h.createStartKeyboard())
}

// failConversation logs the error, drops the conversation and sends the
// generic error message
func (h *BaseHandler) failConversation(c telebot.Context, userID int64, err error) error {
	h.logger.Errorf("Conversation failed for user %d: %v", userID, err)
	h.stateService.ClearState(userID)
	return h.sendErrorMessage(c)
}

// createStartKeyboard creates a keyboard with a start button
func (h *BaseHandler) createStartKeyboard() *telebot.ReplyMarkup {
	return replyKeyboard(commands.Start)
}

// createRegistrationKeyboard creates a keyboard with a register button
func (h *BaseHandler) createRegistrationKeyboard() *telebot.ReplyMarkup {
	return replyKeyboard(commands.Register)
}

// createMainKeyboard creates the main menu keyboard
func (h *BaseHandler) createMainKeyboard() *telebot.ReplyMarkup {
	return replyKeyboard(commands.Faculties)
}

// createAdminKeyboard creates the administrator menu keyboard
func (h *BaseHandler) createAdminKeyboard() *telebot.ReplyMarkup {
	return replyKeyboard(commands.Activate)
}

// createCancelKeyboard creates a keyboard with a cancel button
func (h *BaseHandler) createCancelKeyboard() *telebot.ReplyMarkup {
	return replyKeyboard(commands.Cancel)
}

// createGenderKeyboard creates the gender selection keyboard
func (h *BaseHandler) createGenderKeyboard() *telebot.ReplyMarkup {
	return replyKeyboard(validation.Genders...)
}

// createOptionsKeyboard creates a keyboard from an option mapping, one
// option per row, with any extra buttons appended below
func (h *BaseHandler) createOptionsKeyboard(options models.Options, extra ...string) *telebot.ReplyMarkup {
	labels := append(options.Names(), extra...)
	return replyKeyboard(labels...)
}

// removeKeyboard creates a remove-keyboard directive
func (h *BaseHandler) removeKeyboard() *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{RemoveKeyboard: true}
}

// replyKeyboard builds a one-button-per-row reply keyboard
func replyKeyboard(labels ...string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard: true,
	}

	rows := make([]telebot.Row, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, telebot.Row{telebot.Btn{Text: label}})
	}

	markup.Reply(rows...)
	return markup
}
