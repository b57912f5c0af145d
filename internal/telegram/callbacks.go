package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Chitopro2255V/kichewebapp/internal/messages"
	"github.com/Chitopro2255V/kichewebapp/internal/quiz"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// ctx is the context for storage calls; telebot updates carry none
func (h *Handler) ctx() context.Context {
	return context.Background()
}

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// Already edited by another callback
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	// Always acknowledge callback before sending new message
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// reply edits the message when answering a callback and sends a new one otherwise
func (h *Handler) reply(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	var opts []interface{}
	if markup != nil {
		opts = append(opts, markup)
	}

	if c.Callback() != nil {
		if err := c.Edit(text, opts...); err != nil {
			if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
				return nil
			}
			return c.Send(text, opts...)
		}
		return c.Respond()
	}
	return c.Send(text, opts...)
}

// handleCallback handles callbacks whose unique did not reach a dedicated
// handler, e.g. buttons from messages sent by an older build.
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Clean data from all non-printable characters
	data := cleanCallbackData(callback.Data)
	h.logger.Info("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	unique, payload, _ := strings.Cut(data, "|")
	if callback.Unique != "" {
		unique, payload = callback.Unique, data
	}

	learnerOnly := RequireLearner(h, h.logger)
	switch unique {
	case btnLessons.Unique:
		return learnerOnly(h.handleLessons)(c)
	case btnExit.Unique:
		return learnerOnly(h.handleExit)(c)
	case btnMainMenu.Unique:
		return h.handleStart(c)
	case btnLogin.Unique:
		return h.loginByButton(c, payload)
	case btnLesson.Unique:
		return learnerOnly(func(c tele.Context) error { return h.startLesson(c, payload) })(c)
	case btnAnswer.Unique:
		return learnerOnly(func(c tele.Context) error { return h.answerByButton(c, payload) })(c)
	}

	// If it's not handled, acknowledge it anyway
	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}

func (h *Handler) handleLoginButton(c tele.Context) error {
	return h.loginByButton(c, c.Data())
}

func (h *Handler) loginByButton(c tele.Context, name string) error {
	userID := c.Sender().ID
	defer h.lockUser(userID)()

	return h.login(c, h.state(userID), name)
}

// handleLessons lists the lessons of every level as buttons
func (h *Handler) handleLessons(c tele.Context) error {
	userID := c.Sender().ID
	defer h.lockUser(userID)()

	st := h.state(userID)

	learner, err := h.learners.Login(h.ctx(), st.LearnerName)
	if err != nil {
		h.logger.Error("Failed to load learner", zap.String("learner", st.LearnerName), zap.Error(err))
		return h.reply(c, messages.GenericError, nil)
	}

	completed, err := h.learners.Completed(h.ctx(), st.LearnerName)
	if err != nil {
		h.logger.Warn("Failed to load progress", zap.String("learner", st.LearnerName), zap.Error(err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📚 Lecciones\n\nPuntos: %d\n", learner.Points)

	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}
	for _, lvl := range h.catalog.Levels() {
		fmt.Fprintf(&b, "\n%s:\n", lvl.Level.DisplayName())
		for _, l := range lvl.Lessons {
			mark := "▫️"
			if p, ok := completed[l.ID]; ok {
				mark = "✅ " + p.DisplayString()
			}
			if !h.rules.Playable(l) {
				fmt.Fprintf(&b, "%s %s (no disponible)\n", mark, l.Title)
				continue
			}
			fmt.Fprintf(&b, "%s %s\n", mark, l.Title)
			rows = append(rows, markup.Row(markup.Data(l.Title, btnLesson.Unique, strconv.Itoa(l.ID))))
		}
	}
	rows = append(rows, markup.Row(btnMainMenu))
	markup.Inline(rows...)

	return h.reply(c, b.String(), markup)
}

func (h *Handler) handleLessonButton(c tele.Context) error {
	return h.startLesson(c, c.Data())
}

// startLesson begins a quiz on the lesson with the given id and asks the
// first question
func (h *Handler) startLesson(c tele.Context, idStr string) error {
	userID := c.Sender().ID
	defer h.lockUser(userID)()

	st := h.state(userID)

	id, err := strconv.Atoi(strings.TrimSpace(idStr))
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: messages.LessonNotFound})
	}
	lesson, err := h.catalog.FindLesson(id)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: messages.LessonNotFound, ShowAlert: true})
	}

	h.abandonQuiz(st)

	qs, err := quiz.BeginLesson(lesson, append([]quiz.Option{quiz.WithConfig(h.rules)}, h.quizOpts...)...)
	if err != nil {
		h.logger.Error("Failed to begin lesson", zap.Int("lesson_id", id), zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: messages.ForError(err), ShowAlert: true})
	}

	if err := h.learners.StartLesson(h.ctx(), st.LearnerName, id); err != nil {
		h.logger.Warn("Lesson pointer not stored", zap.Int("lesson_id", id))
	}

	st.Quiz = qs
	h.logger.Info("Lesson started",
		zap.Int64("user_id", userID),
		zap.String("learner", st.LearnerName),
		zap.Int("lesson_id", id),
	)
	return h.sendQuestion(c, st, "")
}

// sendQuestion shows the next question, prefixed by feedback on the
// previous answer
func (h *Handler) sendQuestion(c tele.Context, st *chatState, feedback string) error {
	q, err := st.Quiz.NextQuestion()
	if err != nil {
		h.logger.Warn("Failed to build question",
			zap.Int("lesson_id", st.Quiz.Lesson().ID),
			zap.Error(err),
		)
		st.Quiz = nil
		return h.reply(c, messages.ForError(err), mainMenuMarkup())
	}
	st.Question++

	var b strings.Builder
	if feedback != "" {
		b.WriteString(feedback)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "%s\nPuntos: %d · Vidas: %s\n\n¿Cómo se dice «%s» en K'iche'?",
		st.Quiz.Lesson().Title, q.Score, strings.Repeat("❤️", q.Lives), q.Gloss)

	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}
	for i, choice := range q.Choices {
		data := fmt.Sprintf("%d|%d", st.Question, i)
		rows = append(rows, markup.Row(markup.Data(choice, btnAnswer.Unique, data)))
	}
	rows = append(rows, markup.Row(btnExit))
	markup.Inline(rows...)

	return h.reply(c, b.String(), markup)
}

func (h *Handler) handleAnswerButton(c tele.Context) error {
	return h.answerByButton(c, c.Data())
}

// answerByButton resolves "<question>|<choice index>" against the pending question
func (h *Handler) answerByButton(c tele.Context, data string) error {
	userID := c.Sender().ID
	defer h.lockUser(userID)()

	st := h.state(userID)

	qStr, idxStr, _ := strings.Cut(strings.TrimSpace(data), "|")
	question, err1 := strconv.Atoi(qStr)
	idx, err2 := strconv.Atoi(idxStr)
	if err1 != nil || err2 != nil {
		return c.Respond(&tele.CallbackResponse{Text: messages.GenericError})
	}

	if st.Quiz == nil || question != st.Question {
		return c.Respond(&tele.CallbackResponse{Text: "Esta pregunta ya no está activa"})
	}
	q, pending := st.Quiz.Pending()
	if !pending || idx < 0 || idx >= len(q.Choices) {
		return c.Respond(&tele.CallbackResponse{Text: "Esta pregunta ya no está activa"})
	}

	return h.answer(c, st, q.Choices[idx])
}

// answer submits choice and moves on to the next question or ends the lesson
func (h *Handler) answer(c tele.Context, st *chatState, choice string) error {
	res, err := st.Quiz.SubmitAnswer(choice)
	if err != nil {
		h.logger.Warn("Answer rejected", zap.Error(err))
		return h.reply(c, messages.GenericError, nil)
	}

	msg := messages.Outcome(res, h.rules.PointsPerCorrect)
	if !res.Outcome.Terminal() {
		return h.sendQuestion(c, st, msg.Text)
	}

	lessonID := st.Quiz.Lesson().ID
	st.Quiz = nil

	text := msg.Text
	if err := h.learners.RecordResult(h.ctx(), st.LearnerName, lessonID, res); err != nil {
		text += "\n\n" + messages.GenericError
	}

	return h.reply(c, text, mainMenuMarkup())
}

// handleExit leaves the current lesson keeping the points earned
func (h *Handler) handleExit(c tele.Context) error {
	userID := c.Sender().ID
	defer h.lockUser(userID)()

	st := h.state(userID)
	h.abandonQuiz(st)

	return h.reply(c, textMainMenu, mainMenuMarkup())
}

// abandonQuiz keeps the points of an unfinished quiz and drops it.
// The caller holds the user's lock.
func (h *Handler) abandonQuiz(st *chatState) {
	if st.Quiz == nil {
		return
	}
	status := st.Quiz.State()
	if !status.State.Terminal() {
		if err := h.learners.RecordExit(h.ctx(), st.LearnerName, status.LessonID, status.Score); err != nil {
			h.logger.Error("Failed to record abandoned lesson", zap.Error(err))
		}
	}
	st.Quiz = nil
}
