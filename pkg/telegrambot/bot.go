package telegrambot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"edu-info-bot/internal/commands"
	"edu-info-bot/internal/config"
	"edu-info-bot/internal/handlers"
	"edu-info-bot/internal/permissions"
	"edu-info-bot/internal/services"
	"edu-info-bot/pkg/eduapi"
)

// Bot represents a Telegram bot
type Bot struct {
	bot       *telebot.Bot
	config    *config.Config
	handler   *handlers.DialogHandler
	logger    *logrus.Logger
	userLocks sync.Map
}

// NewBot creates a new Telegram bot
func NewBot(
	cfg *config.Config,
	stateService *services.ConversationService,
	apiClient *eduapi.Client,
	permCtrl *permissions.Controller,
	logger *logrus.Logger,
) (*Bot, error) {
	settings := telebot.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			logger.Errorf("Telegram bot error: %v", err)
			if c != nil {
				c.Send("An error occurred. Please try again later.")
			}
		},
	}

	b, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		config:  cfg,
		handler: handlers.NewDialogHandler(apiClient, stateService, permCtrl, b, cfg, logger),
		logger:  logger,
	}

	bot.setupMiddleware()

	return bot, nil
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting Telegram bot")

	go func() {
		<-ctx.Done()
		b.logger.Info("Stopping Telegram bot")
		b.bot.Stop()
	}()

	b.bot.Start()
	return nil
}

// setupMiddleware sets up the bot middleware and routes
func (b *Bot) setupMiddleware() {
	b.bot.Use(func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			b.logger.Infof("Received message from %d: %s", c.Sender().ID, c.Text())
			return next(c)
		}
	})

	b.bot.Handle(telebot.OnText, b.handleUpdate)
	b.bot.Handle(commands.Start, b.handleUpdate)
	b.bot.Handle(commands.Admin, b.handleUpdate)
	b.bot.Handle(commands.CancelCommand, b.handleUpdate)
}

// handleUpdate handles an update from Telegram. Updates for the same user
// are processed strictly one at a time; the conversation state is mutated
// across backend calls and must not interleave.
func (b *Bot) handleUpdate(c telebot.Context) error {
	userID := c.Sender().ID

	lock := b.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	ctx := context.Background()
	return b.handler.Handle(ctx, c)
}

// userLock returns the mutex serializing updates for one user
func (b *Bot) userLock(userID int64) *sync.Mutex {
	lock, _ := b.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
