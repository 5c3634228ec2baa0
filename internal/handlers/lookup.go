package handlers

import (
	"context"
	"fmt"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"edu-info-bot/internal/commands"
	"edu-info-bot/internal/models"
	"edu-info-bot/internal/permissions"
)

// handleFaculties starts the lookup flow for activated users
func (h *DialogHandler) handleFaculties(ctx context.Context, c telebot.Context) error {
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
		return h.enterEducationType(ctx, c, userID)
	}
}

// enterEducationType fetches the education types and presents them. It
// always begins a fresh conversation, so no stale selections survive.
func (h *DialogHandler) enterEducationType(ctx context.Context, c telebot.Context, userID int64) error {
	options, err := h.api.ListEducationTypes(ctx)
	if err != nil {
		return h.failConversation(c, userID, err)
	}

	h.stateService.SetState(userID, models.Conversation{
		Stage:   models.StageEducationType,
		Options: options,
	})

	return h.sendTextMessage(c, "Choose an education type using the keyboard:", h.createOptionsKeyboard(options))
}

// enterFaculty fetches the faculties of the chosen education type and
// presents them
func (h *DialogHandler) enterFaculty(ctx context.Context, c telebot.Context, userID int64, typeID int) error {
	options, err := h.api.ListFaculties(ctx, typeID)
	if err != nil {
		return h.failConversation(c, userID, err)
	}

	h.stateService.SetState(userID, models.Conversation{
		Stage:         models.StageFaculty,
		EducationType: typeID,
		Options:       options,
	})

	return h.sendTextMessage(c, "Choose a faculty using the keyboard:", h.createOptionsKeyboard(options, commands.Back))
}

// handleEducationType resolves the selected education type and advances to
// the faculty stage
func (h *DialogHandler) handleEducationType(ctx context.Context, c telebot.Context, userID int64, text string, conv models.Conversation) error {
	typeID, ok := conv.Options[text]
	if !ok {
		return h.sendTextMessage(c, "Choose an education type using the keyboard:", h.createOptionsKeyboard(conv.Options))
	}

	return h.enterFaculty(ctx, c, userID, typeID)
}

// handleFaculty resolves the selected faculty and advances to the profile
// stage; "Back" re-enters the education type stage
func (h *DialogHandler) handleFaculty(ctx context.Context, c telebot.Context, userID int64, text string, conv models.Conversation) error {
	if strings.EqualFold(text, commands.Back) {
		return h.enterEducationType(ctx, c, userID)
	}

	facultyID, ok := conv.Options[text]
	if !ok {
		return h.sendTextMessage(c, "Choose a faculty using the keyboard:", h.createOptionsKeyboard(conv.Options, commands.Back))
	}

	options, err := h.api.ListProfiles(ctx, conv.EducationType, facultyID)
	if err != nil {
		return h.failConversation(c, userID, err)
	}

	conv.Faculty = facultyID
	conv.Options = options
	conv.Stage = conv.Stage.Next()
	h.stateService.SetState(userID, conv)

	return h.sendTextMessage(c, "Choose a profile using the keyboard:", h.createOptionsKeyboard(options, commands.Back, commands.MainMenu))
}

// handleProfile resolves the selected profile and presents its description;
// "Back" re-enters the faculty stage, "Main Menu" restarts the lookup
func (h *DialogHandler) handleProfile(ctx context.Context, c telebot.Context, userID int64, text string, conv models.Conversation) error {
	if strings.EqualFold(text, commands.Back) {
		return h.enterFaculty(ctx, c, userID, conv.EducationType)
	}
	if strings.EqualFold(text, commands.MainMenu) {
		return h.enterEducationType(ctx, c, userID)
	}

	profileID, ok := conv.Options[text]
	if !ok {
		return h.sendTextMessage(c, "Choose a profile using the keyboard:", h.createOptionsKeyboard(conv.Options, commands.Back, commands.MainMenu))
	}

	description, err := h.api.GetDescription(ctx, conv.EducationType, conv.Faculty, profileID)
	if err != nil {
		return h.failConversation(c, userID, err)
	}

	conv.Profile = profileID
	conv.Stage = conv.Stage.Next()
	h.stateService.SetState(userID, conv)

	return h.sendTextMessage(c, description, replyKeyboard(commands.MainMenu))
}
