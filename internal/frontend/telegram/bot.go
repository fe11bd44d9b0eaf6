// Package telegram is a chat frontend over the movie and TV stores.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/filmes/internal/core"
	"github.com/vadimtrunov/filmes/internal/metadata/tmdb"
	"github.com/vadimtrunov/filmes/internal/store"
)

// sender is the part of the Bot API used to reply.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot is the Telegram frontend.
// It implements the core.Frontend interface.
type Bot struct {
	api      *tgbotapi.BotAPI
	out      sender
	catalog  core.Catalog
	sessions *sessionManager
	logger   *slog.Logger
}

// compile-time check.
var _ core.Frontend = (*Bot)(nil)

// New creates a new Telegram Bot backed by catalog.
func New(token string, allowedUserIDs []int64, catalog core.Catalog, logger *slog.Logger) (*Bot, error) {
	if catalog == nil {
		return nil, fmt.Errorf("create telegram bot: catalog must not be nil")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Bot{
		api:      api,
		out:      api,
		catalog:  catalog,
		sessions: newSessionManager(allowedUserIDs),
		logger:   logger,
	}, nil
}

// Name returns the frontend name.
func (b *Bot) Name() string { return "telegram" }

// Start starts the long-polling loop. It blocks until ctx is canceled.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("telegram bot started",
		slog.String("username", b.api.Self.UserName),
	)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("telegram bot stopped")
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate dispatches an incoming Telegram update.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// newSession builds a user's stores and subscribes them so every new
// current record is sent as a card to the session's chat.
func (b *Bot) newSession() *session {
	s := &session{
		movies: store.NewMovieStore(b.catalog, b.logger),
		shows:  store.NewTVStore(b.catalog, b.logger),
	}
	deliver := func(rec tmdb.Record) {
		b.sendCard(s.chatID.Load(), rec)
	}
	s.stop = append(s.stop, s.movies.Subscribe(deliver), s.shows.Subscribe(deliver))
	return s
}

// sendCard sends a record as a poster with caption, or as text when it has no poster.
func (b *Bot) sendCard(chatID int64, rec tmdb.Record) {
	card := FormatCard(rec)

	if poster := tmdb.PosterURL(rec.PosterPath, "w500"); poster != "" && len(card) <= captionLimit {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(poster))
		photo.Caption = card
		photo.ParseMode = tgbotapi.ModeMarkdownV2
		_, err := b.out.Send(photo)
		if err == nil {
			return
		}
		b.logger.Debug("failed to send poster card, falling back to text",
			slog.String("url", poster),
			slog.String("error", err.Error()),
		)
	}

	msg := tgbotapi.NewMessage(chatID, card)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.out.Send(msg); err != nil {
		b.logger.Warn("failed to send markdown, retrying plain",
			slog.String("error", err.Error()),
		)
		b.sendText(chatID, rec.DisplayTitle())
	}
}
