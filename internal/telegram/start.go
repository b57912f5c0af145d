package telegram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"
	"github.com/Chitopro2255V/kichewebapp/internal/messages"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	textGreeting    = "¡Bienvenido! Aprende Maya K'iche'.\n\nUsa /register <nombre> para crear un usuario o /login <nombre> para continuar."
	textMainMenu    = "🏠 Menú principal\n\nElige una opción:"
	textAskName     = "Envía el nombre de usuario que quieres usar:"
	textPickLearner = "Selecciona tu usuario:"
	textNoLearners  = "No hay usuarios registrados. Usa /register <nombre>."
	textLoginFirst  = "Primero inicia sesión con /login <nombre> o regístrate con /register <nombre>."
)

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID
	defer h.lockUser(userID)()

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	st := h.state(userID)
	st.Awaiting = awaitingNothing

	if st.LearnerName == "" {
		return h.reply(c, textGreeting, nil)
	}
	return h.reply(c, messages.Welcome(st.LearnerName)+"\n\n"+textMainMenu, mainMenuMarkup())
}

// handleRegister handles /register [name]. Without a name the next text
// message is taken as the name.
func (h *Handler) handleRegister(c tele.Context) error {
	userID := c.Sender().ID
	defer h.lockUser(userID)()

	st := h.state(userID)
	name := strings.TrimSpace(c.Message().Payload)
	if name == "" {
		st.Awaiting = awaitingName
		return c.Send(textAskName)
	}
	return h.register(c, st, name)
}

func (h *Handler) register(c tele.Context, st *chatState, name string) error {
	learner, err := h.learners.Register(h.ctx(), name)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidName) && !errors.Is(err, domain.ErrDuplicateName) {
			h.logger.Error("Failed to register learner", zap.Error(err))
		}
		return c.Send(messages.ForError(err))
	}

	st.Awaiting = awaitingNothing
	h.signIn(st, learner.Name)
	return c.Send(messages.Registered(learner.Name)+"\n\n"+textMainMenu, mainMenuMarkup())
}

// handleLogin handles /login [name]. Without a name it lists the
// registered learners as buttons.
func (h *Handler) handleLogin(c tele.Context) error {
	userID := c.Sender().ID
	defer h.lockUser(userID)()

	st := h.state(userID)
	st.Awaiting = awaitingNothing

	name := strings.TrimSpace(c.Message().Payload)
	if name != "" {
		return h.login(c, st, name)
	}

	names, err := h.learners.Names(h.ctx())
	if err != nil {
		h.logger.Error("Failed to list learners", zap.Error(err))
		return c.Send(messages.GenericError)
	}
	if len(names) == 0 {
		return c.Send(textNoLearners)
	}

	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}
	for _, n := range names {
		// Telegram limits callback data to 64 bytes
		if len(n) > 50 {
			continue
		}
		rows = append(rows, markup.Row(markup.Data(n, btnLogin.Unique, n)))
	}
	markup.Inline(rows...)

	return c.Send(textPickLearner, markup)
}

func (h *Handler) login(c tele.Context, st *chatState, name string) error {
	learner, err := h.learners.Login(h.ctx(), name)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidName) {
			h.logger.Error("Failed to log in learner", zap.Error(err))
		}
		return h.reply(c, messages.ForError(err), nil)
	}

	h.signIn(st, learner.Name)
	text := fmt.Sprintf("%s\n\nPuntos: %d\n\n%s", messages.Welcome(learner.Name), learner.Points, textMainMenu)
	return h.reply(c, text, mainMenuMarkup())
}

// signIn switches the chat to name, keeping the points of any quiz left behind
func (h *Handler) signIn(st *chatState, name string) {
	h.abandonQuiz(st)
	st.LearnerName = name
	h.logger.Info("Learner signed in", zap.String("learner", name))
}

// handleText handles all text messages based on state
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	defer h.lockUser(userID)()
	st := h.state(userID)

	switch {
	case st.Awaiting == awaitingName:
		return h.register(c, st, text)

	case st.Quiz != nil && !st.Quiz.Finished():
		// Typing the answer works as well as pressing its button
		if _, pending := st.Quiz.Pending(); pending {
			return h.answer(c, st, text)
		}
		return h.sendQuestion(c, st, "")

	case st.LearnerName == "":
		return c.Send(textLoginFirst)

	default:
		return c.Send(textMainMenu, mainMenuMarkup())
	}
}
