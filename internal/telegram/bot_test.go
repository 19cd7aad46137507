package telegram

import (
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vacation-bot/internal/engine"
	"vacation-bot/internal/store"
)

type fakeSender struct{ sent []tgbotapi.Chattable }

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

type memStore struct{ tables store.Tables }

func (m *memStore) Load() (store.Tables, error) { return m.tables, nil }
func (m *memStore) Save(t store.Tables) error   { m.tables = t; return nil }
func (m *memStore) Update(fn func(*store.Tables) error) error {
	if err := fn(&m.tables); err != nil {
		return err
	}
	return nil
}
func (m *memStore) Export() (string, []byte, error) { return "data.xlsx", []byte("wb"), nil }

func newTestBot(st store.Store, adminID int64) (*Bot, *fakeSender) {
	fs := &fakeSender{}
	return &Bot{s: fs, engine: engine.New(st, adminID)}, fs
}

func message(userID, chatID int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	return msg
}

func TestStartPromptsRegistrationAndRemovesKeyboard(t *testing.T) {
	b, fs := newTestBot(&memStore{}, 0)

	b.handleIncomingMessage(message(42, 100, "/start"))

	if len(fs.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fs.sent))
	}
	mc, ok := fs.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("expected MessageConfig, got %T", fs.sent[0])
	}
	if !strings.Contains(mc.Text, "ФИО") {
		t.Fatalf("registration prompt missing: %q", mc.Text)
	}
	if _, ok := mc.ReplyMarkup.(tgbotapi.ReplyKeyboardRemove); !ok {
		t.Fatalf("expected keyboard removal, got %T", mc.ReplyMarkup)
	}
}

func TestRegistrationShowsMenuKeyboard(t *testing.T) {
	b, fs := newTestBot(&memStore{}, 0)

	b.handleIncomingMessage(message(42, 100, "/start"))
	b.handleIncomingMessage(message(42, 100, "Иванов Иван Иванович"))

	mc := fs.sent[len(fs.sent)-1].(tgbotapi.MessageConfig)
	kb, ok := mc.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok {
		t.Fatalf("expected reply keyboard, got %T", mc.ReplyMarkup)
	}
	if len(kb.Keyboard) != 2 {
		t.Fatalf("non-admin keyboard should have 2 rows, got %d", len(kb.Keyboard))
	}
	if kb.Keyboard[0][0].Text != engine.MenuEnterData {
		t.Fatalf("unexpected first button: %q", kb.Keyboard[0][0].Text)
	}
}

func TestAdminDownloadSendsDocumentThenConfirmation(t *testing.T) {
	admin := int64(999)
	ms := &memStore{tables: store.Tables{Users: []store.User{{ID: admin, FullName: "Admin"}}}}
	b, fs := newTestBot(ms, admin)

	b.handleIncomingMessage(message(admin, 200, "/start"))
	b.handleIncomingMessage(message(admin, 200, engine.MenuDownloadTable))

	var doc *tgbotapi.DocumentConfig
	var confirmation string
	for _, c := range fs.sent {
		switch v := c.(type) {
		case tgbotapi.DocumentConfig:
			doc = &v
		case tgbotapi.MessageConfig:
			confirmation = v.Text
		}
	}
	if doc == nil {
		t.Fatalf("document was not sent: %+v", fs.sent)
	}
	fb, ok := doc.File.(tgbotapi.FileBytes)
	if !ok || fb.Name != "data.xlsx" || len(fb.Bytes) == 0 {
		t.Fatalf("unexpected document payload: %+v", doc.File)
	}
	if confirmation != "Файл отправлен." {
		t.Fatalf("missing confirmation, last text %q", confirmation)
	}
}

func TestNonTextUpdateGetsUnknownCommandReply(t *testing.T) {
	b, fs := newTestBot(&memStore{}, 0)

	msg := &tgbotapi.Message{
		From:    &tgbotapi.User{ID: 1},
		Chat:    &tgbotapi.Chat{ID: 1},
		Sticker: &tgbotapi.Sticker{FileID: "abc"},
	}
	b.handleIncomingMessage(msg)

	if len(fs.sent) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(fs.sent))
	}
	mc := fs.sent[0].(tgbotapi.MessageConfig)
	if !strings.Contains(mc.Text, "не понимаю") {
		t.Fatalf("expected unknown-command reply, got %q", mc.Text)
	}
}
