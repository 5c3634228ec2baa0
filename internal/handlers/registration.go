package handlers

import (
	"context"
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"edu-info-bot/internal/models"
	"edu-info-bot/internal/validation"
)

// handleRegister starts the registration flow unless the user already exists
func (h *DialogHandler) handleRegister(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID

	user, err := h.api.FetchUser(ctx, userID)
	if err != nil {
		return h.failConversation(c, userID, err)
	}

	if user.IsExist {
		return h.sendTextMessage(c, "You are already registered. Press /start to go to the main menu.", h.createStartKeyboard())
	}

	h.stateService.SetState(userID, models.Conversation{Stage: models.StageFirstName})

	if err := h.sendTextMessage(c, "You can abort the registration at any point by sending \"cancel\".", nil); err != nil {
		return err
	}
	return h.sendTextMessage(c, "Enter your first name, for example Alexander:", h.removeKeyboard())
}

// handleFirstName stores the first name and asks for the last name
func (h *DialogHandler) handleFirstName(c telebot.Context, userID int64, text string, conv models.Conversation) error {
	conv.Registration.FirstName = text
	conv.Stage = conv.Stage.Next()
	h.stateService.SetState(userID, conv)

	return h.sendTextMessage(c, "Enter your last name, for example Smirnov:", h.createCancelKeyboard())
}

// handleLastName stores the last name and asks for the age
func (h *DialogHandler) handleLastName(c telebot.Context, userID int64, text string, conv models.Conversation) error {
	conv.Registration.LastName = text
	conv.Stage = conv.Stage.Next()
	h.stateService.SetState(userID, conv)

	return h.sendTextMessage(c, "Enter your age as a number, for example 25:", h.createCancelKeyboard())
}

// handleAge validates the age and asks for the gender. Invalid input
// re-prompts without advancing.
func (h *DialogHandler) handleAge(c telebot.Context, userID int64, text string, conv models.Conversation) error {
	age, err := validation.ValidateAge(text)
	if err != nil {
		h.logger.Debugf("Invalid age from user %d: %v", userID, err)
		return h.sendTextMessage(c, "That is not a number. Enter your age again, for example 25:", h.createCancelKeyboard())
	}

	conv.Registration.Age = age
	conv.Stage = conv.Stage.Next()
	h.stateService.SetState(userID, conv)

	return h.sendTextMessage(c, "Select your gender using the keyboard:", h.createGenderKeyboard())
}

// handleGender validates the gender and asks for the city
func (h *DialogHandler) handleGender(c telebot.Context, userID int64, text string, conv models.Conversation) error {
	if err := validation.ValidateGender(text); err != nil {
		h.logger.Debugf("Invalid gender from user %d: %v", userID, err)
		return h.sendTextMessage(c, "Unknown gender. Select your gender using the keyboard:", h.createGenderKeyboard())
	}

	conv.Registration.Gender = text
	conv.Stage = conv.Stage.Next()
	h.stateService.SetState(userID, conv)

	return h.sendTextMessage(c, "Enter your city:", h.removeKeyboard())
}

// handleCity completes the registration by creating the user in the backend
func (h *DialogHandler) handleCity(ctx context.Context, c telebot.Context, userID int64, text string, conv models.Conversation) error {
	conv.Registration.City = text
	conv.Registration.UserID = userID

	if err := h.sendTextMessage(c, "Registering, please wait...", nil); err != nil {
		return err
	}

	if err := h.api.CreateUser(ctx, conv.Registration); err != nil {
		return h.failConversation(c, userID, err)
	}

	h.stateService.ClearState(userID)
	return h.sendTextMessage(c,
		fmt.Sprintf("Your account is awaiting activation. Your ID is %d, pass it to the administrator.", userID),
		h.createStartKeyboard())
}
