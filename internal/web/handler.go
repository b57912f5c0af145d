package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Chitopro2255V/kichewebapp/internal/catalog"
	"github.com/Chitopro2255V/kichewebapp/internal/domain"
	"github.com/Chitopro2255V/kichewebapp/internal/messages"
	"github.com/Chitopro2255V/kichewebapp/internal/quiz"
	"github.com/Chitopro2255V/kichewebapp/internal/service"

	"go.uber.org/zap"
)

// Handler serves the web interface
type Handler struct {
	catalog  *catalog.Catalog
	learners *service.LearnerService
	sessions *SessionStore
	tmpl     *TemplateRenderer
	logger   *zap.Logger

	mediaDir string
	rules    quiz.Config
	quizOpts []quiz.Option
}

// Option customizes a Handler
type Option func(*Handler)

// WithMediaDir serves lesson illustrations from dir under /media/.
func WithMediaDir(dir string) Option {
	return func(h *Handler) {
		h.mediaDir = dir
	}
}

// WithQuizOptions passes options to every quiz session started by the handler.
func WithQuizOptions(opts ...quiz.Option) Option {
	return func(h *Handler) {
		h.quizOpts = append(h.quizOpts, opts...)
	}
}

// NewHandler creates a new handler instance
func NewHandler(
	cat *catalog.Catalog,
	learners *service.LearnerService,
	sessions *SessionStore,
	logger *zap.Logger,
	opts ...Option,
) *Handler {
	h := &Handler{
		catalog:  cat,
		learners: learners,
		sessions: sessions,
		tmpl:     NewTemplateRenderer(),
		logger:   logger,
		rules:    quiz.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the HTTP handler with all routes and middleware
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /register", h.RegisterPage)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /logout", h.Logout)

	mux.HandleFunc("GET /lessons", h.requireLearner(h.Lessons))
	mux.HandleFunc("GET /lesson/{id}", h.requireLearner(h.StartLesson))
	mux.HandleFunc("GET /exercise", h.requireLearner(h.Exercise))
	mux.HandleFunc("POST /exercise", h.requireLearner(h.Answer))
	mux.HandleFunc("GET /exercise/exit", h.requireLearner(h.ExitLesson))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if h.mediaDir != "" {
		mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(h.mediaDir))))
	}

	return logRequests(h.logger, h.sessions.Middleware(mux))
}

// requireLearner redirects anonymous visitors home and serializes the
// requests of one session.
func (h *Handler) requireLearner(next func(http.ResponseWriter, *http.Request, *Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := GetSession(r.Context())
		if sess == nil || sess.LearnerName == "" {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		sess.mu.Lock()
		defer sess.mu.Unlock()

		next(w, r, sess)
	}
}

func (h *Handler) page(sess *Session, data map[string]interface{}) map[string]interface{} {
	if data == nil {
		data = make(map[string]interface{})
	}
	if sess != nil {
		data["Learner"] = sess.LearnerName
		data["Flashes"] = sess.PopFlashes()
	}
	return data
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	sess := GetSession(r.Context())
	if sess != nil {
		sess.mu.Lock()
		defer sess.mu.Unlock()
	}
	h.tmpl.Render(w, http.StatusOK, "index.html", h.page(sess, nil))
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.tmpl.Render(w, http.StatusOK, "register.html", map[string]interface{}{
		"Title": "Registro",
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")

	learner, err := h.learners.Register(r.Context(), name)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if !errors.Is(err, domain.ErrInvalidName) && !errors.Is(err, domain.ErrDuplicateName) {
			h.logger.Error("Failed to register learner", zap.Error(err))
			status = http.StatusInternalServerError
		}
		h.tmpl.Render(w, status, "register.html", map[string]interface{}{
			"Title": "Registro",
			"Name":  name,
			"Error": messages.ForError(err),
		})
		return
	}

	h.signIn(w, r, learner.Name, messages.Registered(learner.Name))
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, "")
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, errText string) {
	names, err := h.learners.Names(r.Context())
	if err != nil {
		h.logger.Error("Failed to list learners", zap.Error(err))
		errText = messages.GenericError
		status = http.StatusInternalServerError
	}

	h.tmpl.Render(w, status, "login.html", map[string]interface{}{
		"Title": "Entrar",
		"Names": names,
		"Error": errText,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	learner, err := h.learners.Login(r.Context(), r.FormValue("name"))
	if err != nil {
		status := http.StatusUnprocessableEntity
		errText := messages.SelectLearner
		switch {
		case errors.Is(err, domain.ErrNotFound):
			errText = messages.LearnerNotFound
		case errors.Is(err, domain.ErrInvalidName):
		default:
			h.logger.Error("Failed to log in learner", zap.Error(err))
			errText = messages.GenericError
			status = http.StatusInternalServerError
		}
		h.renderLogin(w, r, status, errText)
		return
	}

	h.signIn(w, r, learner.Name, messages.Welcome(learner.Name))
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, name, greeting string) {
	if old := GetSession(r.Context()); old != nil {
		old.mu.Lock()
		h.abandonQuiz(r.Context(), old)
		old.mu.Unlock()
		h.sessions.Delete(old.Token)
	}

	sess := h.sessions.Create(name)
	sess.Flash(messages.KindSuccess, greeting)
	h.sessions.setCookie(w, sess)

	h.logger.Info("Learner signed in", zap.String("learner", name))
	http.Redirect(w, r, "/lessons", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := GetSession(r.Context()); sess != nil {
		sess.mu.Lock()
		h.abandonQuiz(r.Context(), sess)
		sess.mu.Unlock()
		h.sessions.Delete(sess.Token)
	}
	clearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// abandonQuiz keeps the points of an unfinished quiz and drops it.
// The caller holds sess.mu.
func (h *Handler) abandonQuiz(ctx context.Context, sess *Session) {
	if sess.Quiz == nil {
		return
	}
	st := sess.Quiz.State()
	if !st.State.Terminal() {
		if err := h.learners.RecordExit(ctx, sess.LearnerName, st.LessonID, st.Score); err != nil {
			h.logger.Error("Failed to record abandoned lesson", zap.Error(err))
		}
	}
	sess.Quiz = nil
}

type lessonView struct {
	ID          int
	Title       string
	Kind        string
	Words       int
	Playable    bool
	CompletedOn string
}

type levelView struct {
	Name    string
	Lessons []lessonView
}

func (h *Handler) Lessons(w http.ResponseWriter, r *http.Request, sess *Session) {
	ctx := r.Context()

	learner, err := h.learners.Login(ctx, sess.LearnerName)
	if err != nil {
		h.logger.Error("Failed to load learner", zap.String("learner", sess.LearnerName), zap.Error(err))
		http.Error(w, messages.GenericError, http.StatusInternalServerError)
		return
	}

	completed, err := h.learners.Completed(ctx, sess.LearnerName)
	if err != nil {
		h.logger.Warn("Failed to load progress", zap.String("learner", sess.LearnerName), zap.Error(err))
	}

	var levels []levelView
	for _, lvl := range h.catalog.Levels() {
		view := levelView{Name: lvl.Level.DisplayName()}
		for _, l := range lvl.Lessons {
			lv := lessonView{
				ID:       l.ID,
				Title:    l.Title,
				Kind:     l.Kind,
				Words:    len(l.Content),
				Playable: h.rules.Playable(l),
			}
			if p, ok := completed[l.ID]; ok {
				lv.CompletedOn = p.DisplayString()
			}
			view.Lessons = append(view.Lessons, lv)
		}
		levels = append(levels, view)
	}

	h.tmpl.Render(w, http.StatusOK, "lessons.html", h.page(sess, map[string]interface{}{
		"Title":  "Lecciones",
		"Points": learner.Points,
		"Levels": levels,
	}))
}

func (h *Handler) StartLesson(w http.ResponseWriter, r *http.Request, sess *Session) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		sess.Flash(messages.KindError, messages.LessonNotFound)
		http.Redirect(w, r, "/lessons", http.StatusSeeOther)
		return
	}

	lesson, err := h.catalog.FindLesson(id)
	if err != nil {
		sess.Flash(messages.KindError, messages.LessonNotFound)
		http.Redirect(w, r, "/lessons", http.StatusSeeOther)
		return
	}

	h.abandonQuiz(r.Context(), sess)

	if !h.rules.Playable(lesson) {
		sess.Flash(messages.KindError, messages.LessonUnavailable)
		http.Redirect(w, r, "/lessons", http.StatusSeeOther)
		return
	}

	qs, err := quiz.BeginLesson(lesson, append([]quiz.Option{quiz.WithConfig(h.rules)}, h.quizOpts...)...)
	if err != nil {
		h.logger.Error("Failed to begin lesson", zap.Int("lesson_id", id), zap.Error(err))
		sess.Flash(messages.KindError, messages.ForError(err))
		http.Redirect(w, r, "/lessons", http.StatusSeeOther)
		return
	}

	if err := h.learners.StartLesson(r.Context(), sess.LearnerName, id); err != nil {
		// The pointer is informational; the lesson can still be played.
		h.logger.Warn("Lesson pointer not stored", zap.Int("lesson_id", id))
	}

	sess.Quiz = qs
	http.Redirect(w, r, "/exercise", http.StatusSeeOther)
}

// Exercise shows the pending question, asking the engine for a new one
// when none is pending. Reloading the page keeps the same question.
func (h *Handler) Exercise(w http.ResponseWriter, r *http.Request, sess *Session) {
	if sess.Quiz == nil {
		http.Redirect(w, r, "/lessons", http.StatusSeeOther)
		return
	}

	q, ok := sess.Quiz.Pending()
	if !ok {
		var err error
		q, err = sess.Quiz.NextQuestion()
		if err != nil {
			h.logger.Warn("Failed to build question", zap.Int("lesson_id", sess.Quiz.Lesson().ID), zap.Error(err))
			sess.Flash(messages.KindError, messages.ForError(err))
			sess.Quiz = nil
			http.Redirect(w, r, "/lessons", http.StatusSeeOther)
			return
		}
		sess.Question++
	}

	h.tmpl.Render(w, http.StatusOK, "exercise.html", h.page(sess, map[string]interface{}{
		"Title":       sess.Quiz.Lesson().Title,
		"LessonTitle": sess.Quiz.Lesson().Title,
		"Question":    q,
		"QuestionNo":  sess.Question,
	}))
}

func (h *Handler) Answer(w http.ResponseWriter, r *http.Request, sess *Session) {
	if sess.Quiz == nil {
		http.Redirect(w, r, "/lessons", http.StatusSeeOther)
		return
	}

	if r.FormValue("q") != strconv.Itoa(sess.Question) {
		// Form of an earlier question, sent again from the history
		http.Redirect(w, r, "/exercise", http.StatusSeeOther)
		return
	}

	res, err := sess.Quiz.SubmitAnswer(r.FormValue("answer"))
	if errors.Is(err, domain.ErrIllegalState) {
		// Resubmitted form: the question was already answered
		http.Redirect(w, r, "/exercise", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.logger.Error("Failed to submit answer", zap.Error(err))
		http.Error(w, messages.GenericError, http.StatusInternalServerError)
		return
	}

	msg := messages.Outcome(res, h.rules.PointsPerCorrect)
	sess.Flash(msg.Kind, msg.Text)

	if !res.Outcome.Terminal() {
		http.Redirect(w, r, "/exercise", http.StatusSeeOther)
		return
	}

	lessonID := sess.Quiz.Lesson().ID
	sess.Quiz = nil

	if err := h.learners.RecordResult(r.Context(), sess.LearnerName, lessonID, res); err != nil {
		sess.Flash(messages.KindError, messages.GenericError)
	}

	http.Redirect(w, r, "/lessons", http.StatusSeeOther)
}

func (h *Handler) ExitLesson(w http.ResponseWriter, r *http.Request, sess *Session) {
	h.abandonQuiz(r.Context(), sess)
	http.Redirect(w, r, "/lessons", http.StatusSeeOther)
}
