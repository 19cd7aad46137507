package engine

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"vacation-bot/internal/session"
	"vacation-bot/internal/store"
)

const startCommand = "start"

// Sentinels abort an Update before its save so read-only outcomes never
// rewrite the backing resource.
var (
	errAlreadyRegistered = errors.New("already registered")
	errNotRegistered     = errors.New("not registered")
)

// Menu button labels double as the menu selection values coming back from
// the transport.
const (
	MenuEnterData     = "Внести данные"
	MenuViewData      = "Просмотреть внесённое"
	MenuDownloadTable = "Скачать таблицу"
)

const (
	msgWelcome           = "Добро пожаловать! Пожалуйста, введите ваше ФИО для регистрации:"
	msgAlreadyRegistered = "Вы уже зарегистрированы."
	msgEmptyName         = "ФИО не может быть пустым. Пожалуйста, введите ваше ФИО:"
	msgRegistered        = "Регистрация прошла успешно!"
	msgAskPeriod         = "Укажите период отпуска:"
	msgEmptyPeriod       = "Период отпуска не может быть пустым. Введите период отпуска:"
	msgAskImportance     = "Опишите, насколько важен отпуск в этот период:"
	msgEmptyImportance   = "Описание важности отпуска не может быть пустым. Опишите важность:"
	msgSaved             = "Ваши данные успешно сохранены!"
	msgNotRegistered     = "Ошибка: Пользователь не зарегистрирован. Используйте /start для регистрации."
	msgViewNotRegistered = "Вы не зарегистрированы. Пожалуйста, используйте /start для регистрации."
	msgMenuHint          = "Пожалуйста, выберите опцию из меню."
	msgNoAccess          = "У вас нет доступа к этой команде."
	msgNoData            = "У вас нет внесённых данных."
	msgFileSent          = "Файл отправлен."
	msgUnknownCommand    = "Извините, я не понимаю эту команду. Используйте /start для начала."
	msgStoreError        = "Произошла ошибка при работе с данными. Попробуйте ещё раз."
)

// Document is a file to deliver to the user.
type Document struct {
	Name string
	Data []byte
}

// Reply is the outbound side of one engine step: the text to send, the menu
// to present (nil removes any keyboard) and an optional file.
type Reply struct {
	Text     string
	Menu     []string
	Document *Document
}

// Engine drives the conversation: given a user identity and an inbound
// command, text or menu selection it advances that user's session state and
// reads or writes the store.
type Engine struct {
	store    store.Store
	sessions *session.Manager
	adminID  int64
}

func New(st store.Store, adminID int64) *Engine {
	return &Engine{
		store:    st,
		sessions: session.NewManager(),
		adminID:  adminID,
	}
}

// OnCommand handles bot commands. Only /start is understood; it restarts
// the conversation from any state.
func (e *Engine) OnCommand(userID int64, command string) Reply {
	if command != startCommand {
		return Reply{Text: msgUnknownCommand}
	}
	return e.restart(userID)
}

// OnText routes a plain text message according to the user's current step.
func (e *Engine) OnText(userID int64, text string) Reply {
	switch e.sessions.Get(userID).Step {
	case session.StepRegister:
		return e.register(userID, text)
	case session.StepMainMenu:
		return e.OnMenu(userID, text)
	case session.StepPeriod:
		return e.enterPeriod(userID, text)
	case session.StepImportance:
		return e.enterImportance(userID, text)
	default:
		return Reply{Text: msgUnknownCommand}
	}
}

// OnMenu handles a main-menu selection.
func (e *Engine) OnMenu(userID int64, choice string) Reply {
	switch choice {
	case MenuEnterData:
		e.sessions.Set(userID, session.State{Step: session.StepPeriod})
		return Reply{Text: msgAskPeriod}
	case MenuViewData:
		return e.viewData(userID)
	case MenuDownloadTable:
		return e.export(userID)
	default:
		return Reply{Text: msgMenuHint, Menu: e.menu(userID)}
	}
}

func (e *Engine) restart(userID int64) Reply {
	t, err := e.store.Load()
	if err != nil {
		log.Printf("restart: load store for %d: %v", userID, err)
		return Reply{Text: msgStoreError}
	}
	if _, ok := t.FindUser(userID); ok {
		e.sessions.Set(userID, session.State{Step: session.StepMainMenu})
		return Reply{Text: msgAlreadyRegistered, Menu: e.menu(userID)}
	}
	e.sessions.Set(userID, session.State{Step: session.StepRegister})
	return Reply{Text: msgWelcome}
}

func (e *Engine) register(userID int64, text string) Reply {
	name := strings.TrimSpace(text)
	if name == "" {
		return Reply{Text: msgEmptyName}
	}

	err := e.store.Update(func(t *store.Tables) error {
		if _, ok := t.FindUser(userID); ok {
			return errAlreadyRegistered
		}
		t.Users = append(t.Users, store.User{ID: userID, FullName: name})
		return nil
	})
	if errors.Is(err, errAlreadyRegistered) {
		e.sessions.Set(userID, session.State{Step: session.StepMainMenu})
		return Reply{Text: msgAlreadyRegistered, Menu: e.menu(userID)}
	}
	if err != nil {
		log.Printf("register %d: %v", userID, err)
		return Reply{Text: msgStoreError}
	}

	e.sessions.Set(userID, session.State{Step: session.StepMainMenu})
	return Reply{Text: msgRegistered, Menu: e.menu(userID)}
}

func (e *Engine) enterPeriod(userID int64, text string) Reply {
	period := strings.TrimSpace(text)
	if period == "" {
		return Reply{Text: msgEmptyPeriod}
	}
	e.sessions.Set(userID, session.State{Step: session.StepImportance, Period: period})
	return Reply{Text: msgAskImportance}
}

func (e *Engine) enterImportance(userID int64, text string) Reply {
	importance := strings.TrimSpace(text)
	if importance == "" {
		return Reply{Text: msgEmptyImportance}
	}

	st := e.sessions.Get(userID)
	err := e.store.Update(func(t *store.Tables) error {
		u, ok := t.FindUser(userID)
		if !ok {
			return errNotRegistered
		}
		t.Submissions = append(t.Submissions, store.Submission{
			UserID:     userID,
			FullName:   u.FullName,
			Period:     st.Period,
			Importance: importance,
		})
		return nil
	})
	if errors.Is(err, errNotRegistered) {
		e.sessions.Reset(userID)
		return Reply{Text: msgNotRegistered}
	}
	if err != nil {
		log.Printf("save submission for %d: %v", userID, err)
		return Reply{Text: msgStoreError}
	}

	e.sessions.Set(userID, session.State{Step: session.StepMainMenu})
	return Reply{Text: msgSaved, Menu: e.menu(userID)}
}

func (e *Engine) viewData(userID int64) Reply {
	t, err := e.store.Load()
	if err != nil {
		log.Printf("view data for %d: %v", userID, err)
		return Reply{Text: msgStoreError, Menu: e.menu(userID)}
	}
	u, ok := t.FindUser(userID)
	if !ok {
		return Reply{Text: msgViewNotRegistered, Menu: e.menu(userID)}
	}
	subs := t.UserSubmissions(userID)
	if len(subs) == 0 {
		return Reply{Text: msgNoData, Menu: e.menu(userID)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ваши данные, %s:\n", u.FullName)
	for _, s := range subs {
		fmt.Fprintf(&b, "\nПериод отпуска: %s\nВажность: %s\n", s.Period, s.Importance)
	}
	return Reply{Text: b.String(), Menu: e.menu(userID)}
}

func (e *Engine) export(userID int64) Reply {
	if !e.isAdmin(userID) {
		return Reply{Text: msgNoAccess, Menu: e.menu(userID)}
	}
	name, data, err := e.store.Export()
	if err != nil {
		log.Printf("export for admin %d: %v", userID, err)
		return Reply{Text: msgStoreError, Menu: e.menu(userID)}
	}
	return Reply{
		Text:     msgFileSent,
		Menu:     e.menu(userID),
		Document: &Document{Name: name, Data: data},
	}
}

func (e *Engine) isAdmin(userID int64) bool {
	return e.adminID != 0 && userID == e.adminID
}

// menu returns the main-menu rows; the export row is admin-only.
func (e *Engine) menu(userID int64) []string {
	rows := []string{MenuEnterData, MenuViewData}
	if e.isAdmin(userID) {
		rows = append(rows, MenuDownloadTable)
	}
	return rows
}
