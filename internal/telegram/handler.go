package telegram

import (
	"sync"
	"time"

	"github.com/Chitopro2255V/kichewebapp/internal/catalog"
	"github.com/Chitopro2255V/kichewebapp/internal/quiz"
	"github.com/Chitopro2255V/kichewebapp/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

type awaiting int

const (
	awaitingNothing awaiting = iota
	awaitingName
)

// chatState is what the bot remembers about one Telegram user
type chatState struct {
	Awaiting    awaiting
	LearnerName string
	Quiz        *quiz.Session
	// Question numbers the inline keyboards so stale buttons are ignored
	Question int

	lastSeen time.Time
}

// Handler manages all bot interactions
type Handler struct {
	bot      *tele.Bot
	catalog  *catalog.Catalog
	learners *service.LearnerService
	logger   *zap.Logger

	rules    quiz.Config
	quizOpts []quiz.Option
	idleTTL  time.Duration
	now      func() time.Time

	// User states (in-memory state machine)
	states   map[int64]*chatState
	stateMux sync.RWMutex

	// Per-user locks so concurrent updates of one user are processed in order
	callbackLocks map[int64]*sync.Mutex
	callbackMux   sync.Mutex
}

// NewHandler creates a new handler instance. Chats idle for longer than
// idleTTL are forgotten by Sweep.
func NewHandler(
	bot *tele.Bot,
	cat *catalog.Catalog,
	learners *service.LearnerService,
	idleTTL time.Duration,
	logger *zap.Logger,
	opts ...quiz.Option,
) *Handler {
	return &Handler{
		bot:           bot,
		catalog:       cat,
		learners:      learners,
		logger:        logger,
		rules:         quiz.DefaultConfig(),
		quizOpts:      opts,
		idleTTL:       idleTTL,
		now:           time.Now,
		states:        make(map[int64]*chatState),
		callbackLocks: make(map[int64]*sync.Mutex),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	learnerOnly := RequireLearner(h, h.logger)

	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/register", h.handleRegister)
	h.bot.Handle("/login", h.handleLogin)
	h.bot.Handle("/lessons", h.handleLessons, learnerOnly)
	h.bot.Handle("/exit", h.handleExit, learnerOnly)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnLessons, h.handleLessons, learnerOnly)
	h.bot.Handle(&btnExit, h.handleExit, learnerOnly)
	h.bot.Handle(&btnMainMenu, h.handleStart)
	h.bot.Handle(&btnLogin, h.handleLoginButton)
	h.bot.Handle(&btnLesson, h.handleLessonButton, learnerOnly)
	h.bot.Handle(&btnAnswer, h.handleAnswerButton, learnerOnly)

	// Generic callback handler for dynamic data
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// lockUser serializes the updates of one user and returns the unlock func
func (h *Handler) lockUser(userID int64) func() {
	h.callbackMux.Lock()
	lock, exists := h.callbackLocks[userID]
	if !exists {
		lock = &sync.Mutex{}
		h.callbackLocks[userID] = lock
	}
	h.callbackMux.Unlock()

	lock.Lock()
	return lock.Unlock
}

// state returns the user's state, creating it on first contact. Callers
// hold the user's lock before touching the returned value.
func (h *Handler) state(userID int64) *chatState {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()

	st, exists := h.states[userID]
	if !exists {
		st = &chatState{}
		h.states[userID] = st
	}
	st.lastSeen = h.now()
	return st
}

// LearnerName returns the learner the user is logged in as, or ""
func (h *Handler) LearnerName(userID int64) string {
	h.stateMux.RLock()
	defer h.stateMux.RUnlock()

	if st, exists := h.states[userID]; exists {
		return st.LearnerName
	}
	return ""
}

// Sweep forgets chats idle since before now-idleTTL. Unfinished quizzes of
// forgotten chats are dropped without saving.
func (h *Handler) Sweep(now time.Time) int {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()

	removed := 0
	for userID, st := range h.states {
		if now.Sub(st.lastSeen) > h.idleTTL {
			delete(h.states, userID)
			removed++
		}
	}
	if removed > 0 {
		h.callbackMux.Lock()
		for userID := range h.callbackLocks {
			if _, alive := h.states[userID]; !alive {
				delete(h.callbackLocks, userID)
			}
		}
		h.callbackMux.Unlock()
	}
	return removed
}

// Inline keyboard buttons
var (
	btnLessons = tele.Btn{
		Unique: "lessons",
		Text:   "📚 Lecciones",
	}
	btnExit = tele.Btn{
		Unique: "exit",
		Text:   "🚪 Salir de la lección",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Menú principal",
	}

	// Dynamic buttons, the payload travels in Data
	btnLogin  = tele.Btn{Unique: "login"}
	btnLesson = tele.Btn{Unique: "lesson"}
	btnAnswer = tele.Btn{Unique: "answer"}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnLessons),
	)
	return menu
}
