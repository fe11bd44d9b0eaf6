package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/filmes/internal/metadata/tmdb"
	"github.com/vadimtrunov/filmes/internal/store"
)

const (
	unauthorizedMsg = "Desculpe, você não tem permissão para usar este bot."
	errorMsg        = "Não foi possível consultar o catálogo. Tente novamente."
	notFoundMsg     = "Nenhum título encontrado com esse identificador."
	invalidIDMsg    = "O identificador deve ser um número inteiro positivo."
	resetMsg        = "Sessão reiniciada."

	movieCallbackPrefix = "movie:" // inline button data for a movie result
	tvCallbackPrefix    = "tv:"    // inline button data for a show result

	maxButtonLabel = 30 // max characters in inline keyboard button label
)

const welcomeMsg = `Olá! Comandos disponíveis:
/filme <título> busca filmes
/serie <nome> busca séries
/movie <id> mostra um filme
/tv <id> mostra uma série
/reset reinicia a sessão`

// parseCommand splits "/cmd@bot args" into "cmd" and "args".
// ok is false when text is not a command.
func parseCommand(text string) (cmd, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(rest), head != ""
}

// handleMessage processes an incoming text message.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	b.logger.Debug("received message",
		slog.Int64("user_id", userID),
	)

	if !b.sessions.isAllowed(userID) {
		b.sendText(chatID, unauthorizedMsg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	cmd, args, ok := parseCommand(text)
	if !ok {
		// Plain text is a movie search.
		cmd, args = "filme", text
	}

	switch cmd {
	case "start", "help", "ajuda":
		b.sendText(chatID, welcomeMsg)
	case "reset":
		b.sessions.reset(userID)
		b.sendText(chatID, resetMsg)
	case "filme", "filmes":
		b.search(ctx, userID, chatID, args, false)
	case "serie", "series":
		b.search(ctx, userID, chatID, args, true)
	case "movie":
		b.showDetail(ctx, userID, chatID, args, false)
	case "tv":
		b.showDetail(ctx, userID, chatID, args, true)
	default:
		b.sendText(chatID, welcomeMsg)
	}
}

// handleCallback processes inline keyboard callback queries.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID

	b.logger.Debug("received callback",
		slog.Int64("user_id", userID),
		slog.String("data", cq.Data),
	)

	// Acknowledge the callback immediately.
	b.out.Send(tgbotapi.NewCallback(cq.ID, "")) //nolint:errcheck // best-effort ack

	if !b.sessions.isAllowed(userID) {
		return
	}

	switch {
	case strings.HasPrefix(cq.Data, movieCallbackPrefix):
		b.showDetail(ctx, userID, chatID, strings.TrimPrefix(cq.Data, movieCallbackPrefix), false)
	case strings.HasPrefix(cq.Data, tvCallbackPrefix):
		b.showDetail(ctx, userID, chatID, strings.TrimPrefix(cq.Data, tvCallbackPrefix), true)
	}
}

// search runs a search on the user's store and replies with a numbered list
// plus one button per result.
func (b *Bot) search(ctx context.Context, userID, chatID int64, query string, tv bool) {
	if query == "" {
		b.sendText(chatID, welcomeMsg)
		return
	}

	b.out.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)) //nolint:errcheck // best-effort typing indicator

	s := b.sessions.getOrCreate(userID, chatID, b.newSession)

	prefix := movieCallbackPrefix
	var (
		results []tmdb.Record
		err     error
	)
	if tv {
		prefix = tvCallbackPrefix
		results, err = s.shows.SearchTVShows(ctx, query)
	} else {
		results, err = s.movies.SearchMovies(ctx, query)
	}
	if err != nil {
		b.replyError(chatID, userID, err)
		return
	}

	msg := tgbotapi.NewMessage(chatID, FormatResults(query, results))
	if kb := buildResultsKeyboard(results, prefix); kb != nil {
		msg.ReplyMarkup = kb
	}
	if _, err := b.out.Send(msg); err != nil {
		b.logger.Error("failed to send results",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}

// showDetail fetches a record into the user's store. The card itself is sent
// by the session's subscription.
func (b *Bot) showDetail(ctx context.Context, userID, chatID int64, id string, tv bool) {
	b.out.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)) //nolint:errcheck // best-effort typing indicator

	s := b.sessions.getOrCreate(userID, chatID, b.newSession)

	var err error
	if tv {
		err = s.shows.GetTVDetail(ctx, id)
	} else {
		err = s.movies.GetMovieDetail(ctx, id)
	}
	if err != nil {
		b.replyError(chatID, userID, err)
	}
}

// replyError maps a store error to a user-facing message.
func (b *Bot) replyError(chatID, userID int64, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		b.sendText(chatID, invalidIDMsg)
	case store.IsNotFound(err):
		b.sendText(chatID, notFoundMsg)
	default:
		b.logger.Error("store error",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
		b.sendText(chatID, errorMsg)
	}
}

// sendText sends a plain text message (no parse mode).
func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.out.Send(msg); err != nil {
		b.logger.Error("failed to send message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}

// buildResultsKeyboard builds one button per result, one per row.
// Returns nil when there is nothing to select.
func buildResultsKeyboard(results []tmdb.Record, prefix string) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, rec := range limitResults(results) {
		if rec.ID <= 0 {
			continue
		}
		label := truncate(rec.DisplayTitle(), maxButtonLabel)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d. %s", i+1, label),
				prefix+strconv.Itoa(rec.ID),
			),
		))
	}

	if len(rows) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}
