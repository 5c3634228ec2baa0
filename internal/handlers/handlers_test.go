package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"edu-info-bot/internal/config"
	"edu-info-bot/internal/models"
	"edu-info-bot/internal/permissions"
	"edu-info-bot/internal/services"
	"edu-info-bot/pkg/eduapi"
)

// fakeContext implements the slice of telebot.Context the handlers touch.
// Calling any other method panics on the nil embedded interface.
type fakeContext struct {
	telebot.Context
	sender *telebot.User
	text   string
	sent   []string
}

func (c *fakeContext) Sender() *telebot.User { return c.sender }

func (c *fakeContext) Text() string { return c.text }

func (c *fakeContext) Send(what interface{}, opts ...interface{}) error {
	if text, ok := what.(string); ok {
		c.sent = append(c.sent, text)
	}
	return nil
}

func (c *fakeContext) lastSent() string {
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1]
}

type notifiedMessage struct {
	recipient string
	text      string
}

type fakeNotifier struct {
	notified []notifiedMessage
}

func (n *fakeNotifier) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	text, _ := what.(string)
	n.notified = append(n.notified, notifiedMessage{recipient: to.Recipient(), text: text})
	return &telebot.Message{}, nil
}

// recordingBackend serves canned responses keyed by "METHOD path" and
// records every request path in order.
type recordingBackend struct {
	mu        sync.Mutex
	paths     []string
	responses map[string]response
}

type response struct {
	status int
	body   string
}

func (b *recordingBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.paths = append(b.paths, r.Method+" "+r.URL.Path)
	b.mu.Unlock()

	resp, ok := b.responses[r.Method+" "+r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	w.Write([]byte(resp.body))
}

func (b *recordingBackend) requested(methodAndPath string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.paths {
		if p == methodAndPath {
			return true
		}
	}
	return false
}

func (b *recordingBackend) count(methodAndPath string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, p := range b.paths {
		if p == methodAndPath {
			n++
		}
	}
	return n
}

func newTestEngine(t *testing.T, backend *recordingBackend) (*DialogHandler, *services.ConversationService, *fakeNotifier) {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	api := eduapi.NewClient(config.BackendConfig{BaseURL: srv.URL, Token: "secret"}, logger)
	stateService := services.NewConversationService(logger)
	permCtrl := permissions.NewController(logger)
	notifier := &fakeNotifier{}
	cfg := &config.Config{Telegram: config.TelegramConfig{BotName: "EduInfoBot"}}

	return NewDialogHandler(api, stateService, permCtrl, notifier, cfg, logger), stateService, notifier
}

func sendText(t *testing.T, h *DialogHandler, userID int64, text string) *fakeContext {
	t.Helper()

	c := &fakeContext{sender: &telebot.User{ID: userID}, text: text}
	require.NoError(t, h.Handle(context.Background(), c))
	return c
}

func activeUser(body string) response {
	return response{status: http.StatusOK, body: body}
}

func lookupBackend() *recordingBackend {
	return &recordingBackend{responses: map[string]response{
		"GET /users/1/":            activeUser(`{"user_id": 1, "is_active": true, "admin": false}`),
		"GET /type/":               {http.StatusOK, `[{"id": 3, "name": "Bachelor"}, {"id": 4, "name": "Master"}]`},
		"GET /faculties/3/":        {http.StatusOK, `[{"id": 7, "name": "Engineering"}]`},
		"GET /profiles/3/7/":       {http.StatusOK, `[{"id": 9, "name": "Robotics"}]`},
		"GET /descriptions/3/7/9/": {http.StatusOK, `[{"id": 1, "name": "Everything about robotics."}]`},
	}}
}

func TestLookupSelectionCarriesIDs(t *testing.T) {
	backend := lookupBackend()
	h, stateService, _ := newTestEngine(t, backend)

	sendText(t, h, 1, "Faculties")
	conv, err := stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageEducationType, conv.Stage)

	sendText(t, h, 1, "Bachelor")
	sendText(t, h, 1, "Engineering")
	c := sendText(t, h, 1, "Robotics")

	// The description request carries the three resolved ids, never names
	require.True(t, backend.requested("GET /descriptions/3/7/9/"))
	require.Equal(t, "Everything about robotics.", c.lastSent())

	conv, err = stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageDone, conv.Stage)
	require.Equal(t, 3, conv.EducationType)
	require.Equal(t, 7, conv.Faculty)
	require.Equal(t, 9, conv.Profile)

	// Any input at the terminal stage ends the conversation
	sendText(t, h, 1, "whatever")
	conv, err = stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageNone, conv.Stage)
}

func TestLookupBackNavigation(t *testing.T) {
	backend := lookupBackend()
	h, stateService, _ := newTestEngine(t, backend)

	sendText(t, h, 1, "Faculties")
	sendText(t, h, 1, "Bachelor")
	require.Equal(t, 1, backend.count("GET /type/"))

	sendText(t, h, 1, "Back")

	// Education types are re-fetched and no stale selections survive
	require.Equal(t, 2, backend.count("GET /type/"))
	conv, err := stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageEducationType, conv.Stage)
	require.Zero(t, conv.EducationType)
	require.Zero(t, conv.Faculty)
	require.Zero(t, conv.Profile)
}

func TestLookupBackFromProfile(t *testing.T) {
	backend := lookupBackend()
	h, stateService, _ := newTestEngine(t, backend)

	sendText(t, h, 1, "Faculties")
	sendText(t, h, 1, "Bachelor")
	sendText(t, h, 1, "Engineering")
	sendText(t, h, 1, "Back")

	require.Equal(t, 2, backend.count("GET /faculties/3/"))
	conv, err := stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageFaculty, conv.Stage)
	require.Equal(t, 3, conv.EducationType)
	require.Zero(t, conv.Faculty)
}

func TestLookupMainMenuRestarts(t *testing.T) {
	backend := lookupBackend()
	h, stateService, _ := newTestEngine(t, backend)

	sendText(t, h, 1, "Faculties")
	sendText(t, h, 1, "Bachelor")
	sendText(t, h, 1, "Engineering")
	sendText(t, h, 1, "Main Menu")

	require.Equal(t, 2, backend.count("GET /type/"))
	conv, err := stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageEducationType, conv.Stage)
}

func TestLookupUnmatchedSelectionReprompts(t *testing.T) {
	backend := lookupBackend()
	h, stateService, _ := newTestEngine(t, backend)

	sendText(t, h, 1, "Faculties")
	sendText(t, h, 1, "Doctorate")

	conv, err := stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageEducationType, conv.Stage)
	require.False(t, backend.requested("GET /faculties/0/"))
}

func TestLookupGating(t *testing.T) {
	t.Run("unregistered user is redirected to registration", func(t *testing.T) {
		backend := &recordingBackend{responses: map[string]response{}}
		h, stateService, _ := newTestEngine(t, backend)

		c := sendText(t, h, 1, "Faculties")
		require.Contains(t, c.lastSent(), "not registered")

		conv, err := stateService.GetState(1)
		require.NoError(t, err)
		require.Equal(t, models.StageNone, conv.Stage)
	})

	t.Run("inactive user is told to wait", func(t *testing.T) {
		backend := &recordingBackend{responses: map[string]response{
			"GET /users/1/": activeUser(`{"user_id": 1, "is_active": false, "admin": false}`),
		}}
		h, stateService, _ := newTestEngine(t, backend)

		c := sendText(t, h, 1, "Faculties")
		require.Contains(t, c.lastSent(), "awaiting activation")

		conv, err := stateService.GetState(1)
		require.NoError(t, err)
		require.Equal(t, models.StageNone, conv.Stage)
	})
}

func TestLookupBackendFailureResetsConversation(t *testing.T) {
	backend := lookupBackend()
	backend.responses["GET /faculties/3/"] = response{http.StatusInternalServerError, ""}
	h, stateService, _ := newTestEngine(t, backend)

	sendText(t, h, 1, "Faculties")
	c := sendText(t, h, 1, "Bachelor")

	require.Contains(t, c.lastSent(), "Something went wrong")
	conv, err := stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageNone, conv.Stage)
}

func TestRegistrationFlow(t *testing.T) {
	backend := &recordingBackend{responses: map[string]response{
		"POST /users/": {http.StatusCreated, ""},
	}}
	h, stateService, _ := newTestEngine(t, backend)

	sendText(t, h, 1, "Register")
	conv, err := stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageFirstName, conv.Stage)

	sendText(t, h, 1, "John")
	sendText(t, h, 1, "Smith")

	// Non-numeric age re-prompts without advancing
	c := sendText(t, h, 1, "abc")
	require.Contains(t, c.lastSent(), "not a number")
	conv, err = stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageAge, conv.Stage)

	sendText(t, h, 1, "25")

	// Unknown gender re-prompts without advancing
	c = sendText(t, h, 1, "Dog")
	require.Contains(t, c.lastSent(), "Unknown gender")
	conv, err = stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageGender, conv.Stage)
	require.Equal(t, 25, conv.Registration.Age)

	sendText(t, h, 1, "Male")
	c = sendText(t, h, 1, "London")

	require.True(t, backend.requested("POST /users/"))
	require.Contains(t, c.lastSent(), "awaiting activation")

	conv, err = stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageNone, conv.Stage)
}

func TestRegisterWhenAlreadyRegistered(t *testing.T) {
	backend := &recordingBackend{responses: map[string]response{
		"GET /users/1/": activeUser(`{"user_id": 1, "is_active": true, "admin": false}`),
	}}
	h, stateService, _ := newTestEngine(t, backend)

	c := sendText(t, h, 1, "Register")
	require.Contains(t, c.lastSent(), "already registered")

	conv, err := stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageNone, conv.Stage)
}

func TestRegistrationBackendFailure(t *testing.T) {
	backend := &recordingBackend{responses: map[string]response{
		"POST /users/": {http.StatusInternalServerError, ""},
	}}
	h, stateService, _ := newTestEngine(t, backend)

	sendText(t, h, 1, "Register")
	sendText(t, h, 1, "John")
	sendText(t, h, 1, "Smith")
	sendText(t, h, 1, "25")
	sendText(t, h, 1, "Male")
	c := sendText(t, h, 1, "London")

	require.Contains(t, c.lastSent(), "Something went wrong")
	conv, err := stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageNone, conv.Stage)
}

func TestActivationFlow(t *testing.T) {
	backend := &recordingBackend{responses: map[string]response{
		"GET /users/1/":     activeUser(`{"user_id": 1, "is_active": true, "admin": true}`),
		"PATCH /users/555/": {http.StatusOK, ""},
	}}
	h, stateService, notifier := newTestEngine(t, backend)

	c := sendText(t, h, 1, "/admin")
	require.Contains(t, c.lastSent(), "Administrator menu")

	sendText(t, h, 1, "Activate")
	conv, err := stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageTargetID, conv.Stage)

	sendText(t, h, 1, "555")

	// A non-numeric department re-prompts and keeps the conversation
	c = sendText(t, h, 1, "abc")
	require.Contains(t, c.lastSent(), "department as a number")
	conv, err = stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageDepartment, conv.Stage)
	require.Equal(t, "555", conv.TargetID)

	c = sendText(t, h, 1, "12")

	require.True(t, backend.requested("PATCH /users/555/"))
	require.Contains(t, c.lastSent(), "activated")

	require.Len(t, notifier.notified, 1)
	require.Equal(t, "555", notifier.notified[0].recipient)
	require.Contains(t, notifier.notified[0].text, "activated")

	conv, err = stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageNone, conv.Stage)
}

func TestActivationTargetNotFound(t *testing.T) {
	backend := &recordingBackend{responses: map[string]response{
		"GET /users/1/": activeUser(`{"user_id": 1, "is_active": true, "admin": true}`),
	}}
	h, stateService, notifier := newTestEngine(t, backend)

	sendText(t, h, 1, "Activate")
	sendText(t, h, 1, "555")
	c := sendText(t, h, 1, "12")

	require.Contains(t, c.lastSent(), "does not exist")
	require.Empty(t, notifier.notified)

	conv, err := stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageNone, conv.Stage)
}

func TestActivationDeniedSilently(t *testing.T) {
	backend := &recordingBackend{responses: map[string]response{
		"GET /users/1/": activeUser(`{"user_id": 1, "is_active": true, "admin": false}`),
	}}
	h, stateService, _ := newTestEngine(t, backend)

	c := sendText(t, h, 1, "Activate")
	require.Empty(t, c.sent)

	conv, err := stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageNone, conv.Stage)
}

func TestCancelResetsAnyStage(t *testing.T) {
	backend := &recordingBackend{responses: map[string]response{}}
	h, stateService, _ := newTestEngine(t, backend)

	sendText(t, h, 1, "Register")
	sendText(t, h, 1, "John")

	c := sendText(t, h, 1, "CANCEL")
	require.Contains(t, c.lastSent(), "cancelled")

	conv, err := stateService.GetState(1)
	require.NoError(t, err)
	require.Equal(t, models.StageNone, conv.Stage)

	// Start after a cancel shows the prompt matching the user's status
	c = sendText(t, h, 1, "/start")
	require.Contains(t, c.lastSent(), "not registered")
}

func TestCancelOutsideConversationIsSilent(t *testing.T) {
	backend := &recordingBackend{responses: map[string]response{}}
	h, _, _ := newTestEngine(t, backend)

	c := sendText(t, h, 1, "cancel")
	require.Empty(t, c.sent)
}

func TestStartRouting(t *testing.T) {
	t.Run("active user gets the main menu", func(t *testing.T) {
		backend := &recordingBackend{responses: map[string]response{
			"GET /users/1/": activeUser(`{"user_id": 1, "is_active": true, "admin": false}`),
		}}
		h, _, _ := newTestEngine(t, backend)

		c := sendText(t, h, 1, "/start")
		require.Contains(t, c.lastSent(), "Welcome to EduInfoBot")
	})

	t.Run("start does not drop an in-progress conversation", func(t *testing.T) {
		backend := &recordingBackend{responses: map[string]response{}}
		h, stateService, _ := newTestEngine(t, backend)

		sendText(t, h, 1, "Register")
		sendText(t, h, 1, "John")
		sendText(t, h, 1, "/start")

		conv, err := stateService.GetState(1)
		require.NoError(t, err)
		require.Equal(t, models.StageLastName, conv.Stage)
	})
}

func TestUnknownTextOutsideConversation(t *testing.T) {
	backend := &recordingBackend{responses: map[string]response{}}
	h, _, _ := newTestEngine(t, backend)

	c := sendText(t, h, 1, "blah blah")
	require.Contains(t, c.lastSent(), "don't understand")
}
