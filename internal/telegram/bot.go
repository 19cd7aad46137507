package telegram

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vacation-bot/internal/engine"
)

type Bot struct {
	api    *tgbotapi.BotAPI
	s      sender
	engine *engine.Engine
}

func New(botToken string, eng *engine.Engine) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:    api,
		s:      botAPISender{api: api},
		engine: eng,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
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
			if update.Message != nil {
				b.handleIncomingMessage(update.Message)
			}
		}
	}
}

func (b *Bot) handleIncomingMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	log.Printf("Incoming message from %d (@%s): %q", msg.From.ID, msg.From.UserName, msg.Text)

	var r engine.Reply
	switch {
	case msg.IsCommand():
		r = b.engine.OnCommand(msg.From.ID, msg.Command())
	case msg.Text != "":
		r = b.engine.OnText(msg.From.ID, msg.Text)
	default:
		// stickers, photos etc. get the unknown-command reply
		r = b.engine.OnCommand(msg.From.ID, "")
	}
	b.deliver(msg.Chat.ID, r)
}

func (b *Bot) deliver(chatID int64, r engine.Reply) {
	if r.Document != nil {
		if err := b.sendDocument(chatID, r.Document.Name, r.Document.Data); err != nil {
			log.Printf("failed to send document: %v", err)
		}
	}
	if r.Text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, r.Text)
	msg.ReplyMarkup = replyMarkup(r.Menu)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

// SendDocument delivers a file outside of a conversation, e.g. the nightly
// backup to the admin chat.
func (b *Bot) SendDocument(chatID int64, name string, data []byte) error {
	return b.sendDocument(chatID, name, data)
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	_, err := b.s.Send(doc)
	return err
}

// replyMarkup renders the engine menu as a reply keyboard, one button per
// row; an empty menu removes any previously shown keyboard.
func replyMarkup(menu []string) interface{} {
	if len(menu) == 0 {
		return tgbotapi.NewRemoveKeyboard(false)
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(menu))
	for _, label := range menu {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}
