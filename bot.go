// Imposterbox Telegram variant of the imposter game.
//
// One session per chat, driven entirely inside that chat: setup inputs are
// plain messages, the reveal and voting phases are inline keyboards on a
// single message that is edited in place as the game advances. Sessions are
// held in memory only; /newgame discards the chat's session outright.

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Seednode/imposterbox/games/imposter"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpMsg = "One player secretly lacks the shared word. Everyone views " +
	"their word privately in turn, discusses, then votes out a suspect.\n\n" +
	"/newgame - start a fresh game in this chat\n" +
	"/skip - keep the default player names\n" +
	"/help - this message"

type chatID = int64

type Bot struct {
	api   *tgbotapi.BotAPI
	cfg   *Config
	words *WordList

	mu       sync.Mutex
	sessions map[chatID]*imposter.Session
}

func newBot(cfg *Config, words *WordList) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.telegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}

	logf(cfg, "BOT: Authorized as @%s", api.Self.UserName)

	return &Bot{
		api:      api,
		cfg:      cfg,
		words:    words,
		sessions: make(map[chatID]*imposter.Session),
	}, nil
}

// run consumes updates until the context is done. Updates are handled one at
// a time, in order, so session access needs no further coordination beyond
// the per-map lock.
func (b *Bot) run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			switch {
			case update.Message != nil:
				b.handleMessage(update.Message)
			case update.CallbackQuery != nil:
				b.handleCallback(update.CallbackQuery)
			}
		}
	}
}

// session returns the chat's session, creating one on first access.
// The caller holds b.mu.
func (b *Bot) session(id chatID) *imposter.Session {
	s, ok := b.sessions[id]
	if !ok {
		s = imposter.NewSession()
		b.sessions[id] = s
	}
	return s
}

func (b *Bot) reply(id chatID, text string) {
	msg := tgbotapi.NewMessage(id, text)
	if _, err := b.api.Send(msg); err != nil {
		logf(b.cfg, "BOT: Send to %d failed: %v", id, err)
	}
}

func (b *Bot) handleMessage(m *tgbotapi.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := m.Chat.ID
	s := b.session(id)

	if m.IsCommand() {
		switch m.Command() {
		case "start", "help":
			b.reply(id, helpMsg)
		case "newgame":
			b.sessions[id] = imposter.NewSession()
			logf(b.cfg, "BOT: New game in chat %d", id)
			b.reply(id, fmt.Sprintf("New game. How many players? (%d-%d)", imposter.MinPlayers, imposter.MaxPlayers))
		case "skip":
			if err := s.SetNames(""); err != nil {
				b.reply(id, "Nothing to skip right now.")
				return
			}
			b.reply(id, fmt.Sprintf("Using default names. How many imposters? (%d-%d)", imposter.MinImposters, s.PlayerCount-1))
		}
		return
	}

	switch s.Stage {
	case imposter.StageAwaitingPlayerCount:
		n, err := strconv.Atoi(strings.TrimSpace(m.Text))
		if err != nil {
			b.reply(id, fmt.Sprintf("Send the number of players as a digit. (%d-%d)", imposter.MinPlayers, imposter.MaxPlayers))
			return
		}
		if err := s.SetPlayerCount(n); err != nil {
			b.reply(id, err.Error())
			return
		}
		b.reply(id, "Send the player names, separated by commas or newlines. Missing names are filled in, or /skip to use defaults.")

	case imposter.StageAwaitingNames:
		_ = s.SetNames(m.Text)
		b.reply(id, fmt.Sprintf("Players: %s.\nHow many imposters? (%d-%d)",
			strings.Join(s.PlayerNames, ", "), imposter.MinImposters, s.PlayerCount-1))

	case imposter.StageAwaitingImposterCount:
		n, err := strconv.Atoi(strings.TrimSpace(m.Text))
		if err != nil {
			b.reply(id, fmt.Sprintf("Send the number of imposters as a digit. (%d-%d)", imposter.MinImposters, s.PlayerCount-1))
			return
		}
		if err := s.SetImposterCount(n, b.words.Pick()); err != nil {
			b.reply(id, err.Error())
			return
		}
		b.sendRevealPrompt(id, s)

	default:
		// Game in progress; the inline keyboard drives these phases.
		b.reply(id, "The game is in progress. Use the buttons above, or /newgame to start over.")
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb.Message == nil {
		return
	}

	id := cb.Message.Chat.ID
	s := b.session(id)

	toast := ""

	switch {
	case cb.Data == "show":
		if _, err := s.RequestShow(); err != nil {
			toast = b.callbackFailure(err)
			break
		}
		b.editPrompt(id, cb.Message.MessageID, s)

	case cb.Data == "next":
		if err := s.RequestNext(); err != nil {
			toast = b.callbackFailure(err)
			break
		}
		b.editPrompt(id, cb.Message.MessageID, s)

	case strings.HasPrefix(cb.Data, "vote:"):
		target, err := strconv.Atoi(strings.TrimPrefix(cb.Data, "vote:"))
		if err != nil {
			break
		}
		if err := s.SelectTarget(target); err != nil {
			toast = b.callbackFailure(err)
			break
		}
		b.editPrompt(id, cb.Message.MessageID, s)

	case cb.Data == "confirm":
		if err := s.ConfirmVote(); err != nil {
			toast = b.callbackFailure(err)
			break
		}
		b.editPrompt(id, cb.Message.MessageID, s)
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, toast)); err != nil {
		logf(b.cfg, "BOT: Callback answer failed: %v", err)
	}
}

// callbackFailure maps a rejected action to a short toast. Stage mismatches
// are stale taps on an old keyboard and stay silent.
func (b *Bot) callbackFailure(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, imposter.ErrStageMismatch):
		return ""
	case errors.Is(err, imposter.ErrAlreadyRevealed):
		return "Already shown."
	case errors.Is(err, imposter.ErrNotYetRevealed):
		return "Show the word first."
	case errors.Is(err, imposter.ErrNoSelection):
		return "Pick someone first."
	case errors.Is(err, imposter.ErrInvalidTarget):
		return "That player does not exist."
	default:
		return err.Error()
	}
}

func (b *Bot) sendRevealPrompt(id chatID, s *imposter.Session) {
	text, keyboard := renderPrompt(s)
	msg := tgbotapi.NewMessage(id, text)
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		logf(b.cfg, "BOT: Send to %d failed: %v", id, err)
	}
}

func (b *Bot) editPrompt(id chatID, messageID int, s *imposter.Session) {
	text, keyboard := renderPrompt(s)

	if keyboard == nil {
		edit := tgbotapi.NewEditMessageText(id, messageID, text)
		if _, err := b.api.Send(edit); err != nil {
			logf(b.cfg, "BOT: Edit in %d failed: %v", id, err)
		}
		return
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(id, messageID, text, *keyboard)
	if _, err := b.api.Send(edit); err != nil {
		logf(b.cfg, "BOT: Edit in %d failed: %v", id, err)
	}
}

// renderPrompt builds the message text and inline keyboard for the session's
// current phase. Finished games render the tally with no keyboard.
func renderPrompt(s *imposter.Session) (string, *tgbotapi.InlineKeyboardMarkup) {
	switch s.Stage {
	case imposter.StageRevealing:
		current, _ := s.CurrentReveal()

		if !s.WordRevealed {
			text := fmt.Sprintf("Pass the phone to %s (%d / %d), then tap below.",
				current.Name, current.Index+1, s.PlayerCount)
			keyboard := tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("Show my word", "show"),
				),
			)
			return text, &keyboard
		}

		var text string
		if current.IsImposter {
			text = fmt.Sprintf("%s (%d / %d): you are the imposter. Blend in.",
				current.Name, current.Index+1, s.PlayerCount)
		} else {
			text = fmt.Sprintf("%s (%d / %d): the word is \"%s\".",
				current.Name, current.Index+1, s.PlayerCount, current.Word)
		}
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Next player", "next"),
			),
		)
		return text, &keyboard

	case imposter.StageVoting:
		voter, _ := s.CurrentVoter()
		text := fmt.Sprintf("%s (%d / %d): who is the imposter?",
			voter.Name, voter.Index+1, s.PlayerCount)
		keyboard := ballotKeyboard(s)
		return text, keyboard

	case imposter.StageFinished:
		results, _ := s.Results()
		return renderResults(results), nil
	}

	return "", nil
}

// ballotKeyboard lists every player as a target (self-votes included), marks
// the current selection, and offers confirmation once a target is selected.
func ballotKeyboard(s *imposter.Session) *tgbotapi.InlineKeyboardMarkup {
	selection := s.Votes[s.VoterIndex]

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, s.PlayerCount+1)
	for i, name := range s.PlayerNames {
		label := name
		if i == selection {
			label = "✓ " + name
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("vote:%d", i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Confirm vote", "confirm"),
	))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &keyboard
}

// renderResults formats the final tally. It reports the numbers only; who
// actually won is for the table to argue about.
func renderResults(r imposter.Result) string {
	var sb strings.Builder

	sb.WriteString("Game over!\n\n")
	if len(r.Imposters) == 1 {
		sb.WriteString(fmt.Sprintf("The imposter was: %s\n", r.Imposters[0]))
	} else {
		sb.WriteString(fmt.Sprintf("The imposters were: %s\n", strings.Join(r.Imposters, ", ")))
	}
	sb.WriteString(fmt.Sprintf("The word was: \"%s\"\n\nVotes:\n", r.Word))

	for i, count := range r.Counts {
		sb.WriteString(fmt.Sprintf("  %s: %d\n", r.Names[i], count))
	}

	sb.WriteString(fmt.Sprintf("\nMost accused: %s (%d votes)\n\nUse /newgame to play again.",
		strings.Join(r.MostAccused, ", "), r.MaxVotes))

	return sb.String()
}
