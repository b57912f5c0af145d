// Package desktop is the fyne shell of the trainer. App holds the state of
// the single learner using the window; the ui files only draw it.
package desktop

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Chitopro2255V/kichewebapp/internal/catalog"
	"github.com/Chitopro2255V/kichewebapp/internal/domain"
	"github.com/Chitopro2255V/kichewebapp/internal/messages"
	"github.com/Chitopro2255V/kichewebapp/internal/quiz"

	"go.uber.org/zap"
)

// Learners is the part of service.LearnerService the desktop needs
type Learners interface {
	Register(ctx context.Context, name string) (*domain.Learner, error)
	Login(ctx context.Context, name string) (*domain.Learner, error)
	Names(ctx context.Context) ([]string, error)
	StartLesson(ctx context.Context, name string, lessonID int) error
	RecordResult(ctx context.Context, name string, lessonID int, res quiz.Result) error
	RecordExit(ctx context.Context, name string, lessonID int, score int) error
	Completed(ctx context.Context, name string) (map[int]domain.Progress, error)
}

// LessonItem is one row of the lessons screen
type LessonItem struct {
	ID          int
	Title       string
	Words       int
	Playable    bool
	CompletedOn string
}

// LevelItems groups the lessons of one level
type LevelItems struct {
	Name    string
	Lessons []LessonItem
}

// App is safe for concurrent use; the ui calls it from background goroutines.
type App struct {
	catalog  *catalog.Catalog
	learners Learners
	logger   *zap.Logger
	mediaDir string
	rules    quiz.Config
	quizOpts []quiz.Option

	mu      sync.Mutex
	learner string
	session *quiz.Session
}

func NewApp(cat *catalog.Catalog, learners Learners, mediaDir string, logger *zap.Logger, opts ...quiz.Option) *App {
	return &App{
		catalog:  cat,
		learners: learners,
		logger:   logger,
		mediaDir: mediaDir,
		rules:    quiz.DefaultConfig(),
		quizOpts: opts,
	}
}

// Learner returns the logged in learner name, "" if none
func (a *App) Learner() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.learner
}

// Register creates a learner and logs in as it
func (a *App) Register(ctx context.Context, name string) (*domain.Learner, error) {
	learner, err := a.learners.Register(ctx, name)
	if err != nil {
		return nil, err
	}
	a.switchTo(ctx, learner.Name)
	return learner, nil
}

// Login switches to an existing learner
func (a *App) Login(ctx context.Context, name string) (*domain.Learner, error) {
	learner, err := a.learners.Login(ctx, name)
	if err != nil {
		return nil, err
	}
	a.switchTo(ctx, learner.Name)
	return learner, nil
}

func (a *App) switchTo(ctx context.Context, name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.abandon(ctx)
	a.learner = name
}

// Logout leaves the current lesson and forgets the learner
func (a *App) Logout(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.abandon(ctx)
	a.learner = ""
}

func (a *App) Names(ctx context.Context) ([]string, error) {
	return a.learners.Names(ctx)
}

// Lessons returns the learner's points and the catalog annotated with
// availability and completion dates
func (a *App) Lessons(ctx context.Context) (int, []LevelItems, error) {
	name := a.Learner()
	if name == "" {
		return 0, nil, fmt.Errorf("%w: no learner logged in", domain.ErrIllegalState)
	}

	learner, err := a.learners.Login(ctx, name)
	if err != nil {
		return 0, nil, err
	}

	completed, err := a.learners.Completed(ctx, name)
	if err != nil {
		a.logger.Warn("Failed to load progress", zap.String("learner", name), zap.Error(err))
	}

	var levels []LevelItems
	for _, lvl := range a.catalog.Levels() {
		items := LevelItems{Name: lvl.Level.DisplayName()}
		for _, l := range lvl.Lessons {
			item := LessonItem{
				ID:       l.ID,
				Title:    l.Title,
				Words:    len(l.Content),
				Playable: a.rules.Playable(l),
			}
			if p, ok := completed[l.ID]; ok {
				item.CompletedOn = p.DisplayString()
			}
			items.Lessons = append(items.Lessons, item)
		}
		levels = append(levels, items)
	}
	return learner.Points, levels, nil
}

// BeginLesson starts a quiz on lesson id, keeping the points of a quiz in progress
func (a *App) BeginLesson(ctx context.Context, id int) (*domain.Lesson, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.learner == "" {
		return nil, fmt.Errorf("%w: no learner logged in", domain.ErrIllegalState)
	}

	lesson, err := a.catalog.FindLesson(id)
	if err != nil {
		return nil, err
	}
	if !a.rules.Playable(lesson) {
		return nil, fmt.Errorf("lesson %d: %w", id, domain.ErrInsufficientContent)
	}

	a.abandon(ctx)

	session, err := quiz.BeginLesson(lesson, append([]quiz.Option{quiz.WithConfig(a.rules)}, a.quizOpts...)...)
	if err != nil {
		return nil, err
	}
	a.session = session

	if err := a.learners.StartLesson(ctx, a.learner, id); err != nil {
		a.logger.Warn("Lesson pointer not stored", zap.Int("lesson_id", id))
	}
	return lesson, nil
}

// Question returns the pending question or asks the engine for a new one
func (a *App) Question() (quiz.Question, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return quiz.Question{}, fmt.Errorf("%w: no lesson in progress", domain.ErrIllegalState)
	}
	if q, ok := a.session.Pending(); ok {
		return q, nil
	}
	return a.session.NextQuestion()
}

// Answer grades choice. A finished lesson is saved and dropped; the
// returned message is what the learner should see.
func (a *App) Answer(ctx context.Context, choice string) (quiz.Result, messages.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return quiz.Result{}, messages.Message{}, fmt.Errorf("%w: no lesson in progress", domain.ErrIllegalState)
	}

	res, err := a.session.SubmitAnswer(choice)
	if err != nil {
		return quiz.Result{}, messages.Message{}, err
	}
	msg := messages.Outcome(res, a.rules.PointsPerCorrect)

	if res.Outcome.Terminal() {
		lessonID := a.session.Lesson().ID
		a.session = nil
		if err := a.learners.RecordResult(ctx, a.learner, lessonID, res); err != nil {
			return res, msg, err
		}
	}
	return res, msg, nil
}

// ExitLesson leaves the lesson in progress keeping the points earned
func (a *App) ExitLesson(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.abandon(ctx)
}

// InLesson reports whether a quiz is in progress
func (a *App) InLesson() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session != nil
}

// abandon records the points of an unfinished quiz. Callers hold a.mu.
func (a *App) abandon(ctx context.Context) {
	if a.session == nil {
		return
	}
	st := a.session.State()
	if !st.State.Terminal() {
		if err := a.learners.RecordExit(ctx, a.learner, st.LessonID, st.Score); err != nil {
			a.logger.Error("Failed to record abandoned lesson", zap.Error(err))
		}
	}
	a.session = nil
}

// MediaPath resolves an illustration reference to an existing file, or ""
func (a *App) MediaPath(ref string) string {
	if ref == "" || a.mediaDir == "" {
		return ""
	}
	path := filepath.Join(a.mediaDir, filepath.Base(ref))
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
