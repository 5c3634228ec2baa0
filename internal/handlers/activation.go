package handlers

import (
	"context"
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"edu-info-bot/internal/models"
	"edu-info-bot/internal/validation"
	"edu-info-bot/pkg/eduapi"
)

// handleAdmin shows the administrator menu to administrators
func (h *DialogHandler) handleAdmin(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID

	user, err := h.api.FetchUser(ctx, userID)
	if err != nil {
		return h.failConversation(c, userID, err)
	}

	switch {
	case !user.IsExist:
		return h.sendTextMessage(c, "You are not registered yet, please complete the registration.", h.createRegistrationKeyboard())
	case user.Admin:
		return h.sendTextMessage(c, "Administrator menu. Choose an action on the keyboard.", h.createAdminKeyboard())
	default:
		return h.sendTextMessage(c, "Unknown command. Press /start to go to the main menu.", h.createStartKeyboard())
	}
}

// handleActivate starts the activation flow. Non-admins are denied silently.
func (h *DialogHandler) handleActivate(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID

	user, err := h.api.FetchUser(ctx, userID)
	if err != nil {
		return h.failConversation(c, userID, err)
	}

	if !h.permCtrl.IsAdmin(user) {
		return nil
	}

	h.stateService.SetState(userID, models.Conversation{Stage: models.StageTargetID})
	return h.sendTextMessage(c, "Send the id of the user to activate:", h.removeKeyboard())
}

// handleTargetID stores the target id verbatim and asks for the department
func (h *DialogHandler) handleTargetID(c telebot.Context, userID int64, text string, conv models.Conversation) error {
	conv.TargetID = text
	conv.Stage = conv.Stage.Next()
	h.stateService.SetState(userID, conv)

	return h.sendTextMessage(c, "Send the department number to activate the account:", h.removeKeyboard())
}

// handleDepartment validates the department, issues the update and notifies
// both sides. A parse failure re-prompts and retains the conversation.
func (h *DialogHandler) handleDepartment(ctx context.Context, c telebot.Context, userID int64, text string, conv models.Conversation) error {
	department, err := validation.ValidateDepartment(text)
	if err != nil {
		h.logger.Debugf("Invalid department from user %d: %v", userID, err)
		return h.sendTextMessage(c, "Enter the department as a number, or press cancel.", h.createCancelKeyboard())
	}

	result, err := h.api.UpdateUser(ctx, conv.TargetID, department)
	if err != nil {
		return h.failConversation(c, userID, err)
	}

	h.stateService.ClearState(userID)

	switch result {
	case eduapi.UpdateActivated:
		if _, err := h.notifier.Send(chatRecipient(conv.TargetID),
			"Your account has been activated, press /start.",
			h.createStartKeyboard()); err != nil {
			h.logger.Errorf("Failed to notify user %s about activation: %v", conv.TargetID, err)
		}
		return h.sendTextMessage(c,
			fmt.Sprintf("Account %s activated, the user has been notified.", conv.TargetID),
			h.createAdminKeyboard())
	default:
		return h.sendTextMessage(c, "An account with this id does not exist, check the id.", h.createAdminKeyboard())
	}
}
