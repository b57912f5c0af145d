package desktop

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Chitopro2255V/kichewebapp/internal/catalog"
	"github.com/Chitopro2255V/kichewebapp/internal/domain"
	"github.com/Chitopro2255V/kichewebapp/internal/messages"
	"github.com/Chitopro2255V/kichewebapp/internal/quiz"
	"github.com/Chitopro2255V/kichewebapp/internal/service"
	"github.com/Chitopro2255V/kichewebapp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testContent = `{
  "basico": [
    {
      "id": 1,
      "titulo": "Saludos",
      "tipo": "vocabulario",
      "contenido": [
        {"maya": "Saqarik", "espanol": "Buenos días", "imagen": "sol.png"},
        {"maya": "Xqaq'ij", "espanol": "Buenas tardes"},
        {"maya": "Xokaq'ab'", "espanol": "Buenas noches"},
        {"maya": "Maltyox", "espanol": "Gracias"}
      ]
    },
    {
      "id": 2,
      "titulo": "Corta",
      "tipo": "vocabulario",
      "contenido": [{"maya": "Jun", "espanol": "Uno"}]
    }
  ]
}`

func newTestApp(t *testing.T, mediaDir string) (*App, *testutil.MockLearnerRepository) {
	t.Helper()

	cat, err := catalog.Load(strings.NewReader(testContent))
	require.NoError(t, err)

	repo := new(testutil.MockLearnerRepository)
	logger := testutil.NewTestLogger()
	return NewApp(cat, service.NewLearnerService(repo, logger), mediaDir, logger), repo
}

func loggedIn(t *testing.T, app *App, repo *testutil.MockLearnerRepository, points int) {
	t.Helper()
	repo.On("GetByName", mock.Anything, "Ixchel").Return(testutil.NewTestLearner(1, "Ixchel", points), nil)
	_, err := app.Login(context.Background(), "Ixchel")
	require.NoError(t, err)
}

func correctChoice(t *testing.T, app *App, q quiz.Question) string {
	t.Helper()
	app.mu.Lock()
	defer app.mu.Unlock()
	for _, w := range app.session.Lesson().Content {
		if w.Gloss == q.Gloss {
			return w.Target
		}
	}
	t.Fatalf("gloss %q not in lesson", q.Gloss)
	return ""
}

func TestApp_RegisterLogsIn(t *testing.T) {
	app, repo := newTestApp(t, "")
	repo.On("Create", mock.Anything, "Balam").Return(testutil.NewTestLearner(2, "Balam", 0), nil)

	learner, err := app.Register(context.Background(), " Balam ")

	require.NoError(t, err)
	assert.Equal(t, "Balam", learner.Name)
	assert.Equal(t, "Balam", app.Learner())
}

func TestApp_RegisterEmptyName(t *testing.T) {
	app, _ := newTestApp(t, "")

	_, err := app.Register(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrInvalidName)
	assert.Equal(t, messages.NameRequired, identifyErr(err))
	assert.Empty(t, app.Learner())
}

func TestApp_Lessons(t *testing.T) {
	app, repo := newTestApp(t, "")
	loggedIn(t, app, repo, 30)
	repo.On("CompletedLessons", mock.Anything, "Ixchel").Return([]domain.Progress{}, nil)

	points, levels, err := app.Lessons(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 30, points)
	require.Len(t, levels, 1)
	assert.Equal(t, "Básico", levels[0].Name)
	require.Len(t, levels[0].Lessons, 2)
	assert.True(t, levels[0].Lessons[0].Playable)
	assert.False(t, levels[0].Lessons[1].Playable)
}

func TestApp_LessonsRequiresLearner(t *testing.T) {
	app, _ := newTestApp(t, "")

	_, _, err := app.Lessons(context.Background())

	assert.ErrorIs(t, err, domain.ErrIllegalState)
}

func TestApp_BeginLessonUnplayable(t *testing.T) {
	app, repo := newTestApp(t, "")
	loggedIn(t, app, repo, 0)

	_, err := app.BeginLesson(context.Background(), 2)

	assert.ErrorIs(t, err, domain.ErrInsufficientContent)
	assert.False(t, app.InLesson())
}

func TestApp_LoseFlow(t *testing.T) {
	app, repo := newTestApp(t, "")
	loggedIn(t, app, repo, 0)
	repo.On("SetCurrentLesson", mock.Anything, "Ixchel", 1).Return(nil)
	repo.On("SaveResult", mock.Anything, domain.LessonResult{
		LearnerName: "Ixchel",
		LessonID:    1,
		Score:       10,
	}).Return(nil).Once()

	ctx := context.Background()
	_, err := app.BeginLesson(ctx, 1)
	require.NoError(t, err)

	q, err := app.Question()
	require.NoError(t, err)
	res, msg, err := app.Answer(ctx, correctChoice(t, app, q))
	require.NoError(t, err)
	assert.Equal(t, quiz.OutcomeCorrect, res.Outcome)
	assert.Equal(t, "¡Respuesta correcta! +10 puntos", msg.Text)

	for i := 0; i < 3; i++ {
		_, err := app.Question()
		require.NoError(t, err)
		res, msg, err = app.Answer(ctx, "nada")
		require.NoError(t, err)
	}

	assert.Equal(t, quiz.OutcomeLost, res.Outcome)
	assert.Equal(t, "Juego terminado. Puntos finales: 10", msg.Text)
	assert.False(t, app.InLesson())
	repo.AssertExpectations(t)
}

func TestApp_QuestionIsStableUntilAnswered(t *testing.T) {
	app, repo := newTestApp(t, "")
	loggedIn(t, app, repo, 0)
	repo.On("SetCurrentLesson", mock.Anything, "Ixchel", 1).Return(nil)

	_, err := app.BeginLesson(context.Background(), 1)
	require.NoError(t, err)

	first, err := app.Question()
	require.NoError(t, err)
	second, err := app.Question()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestApp_SwitchingLearnerKeepsPoints(t *testing.T) {
	app, repo := newTestApp(t, "")
	loggedIn(t, app, repo, 0)
	repo.On("SetCurrentLesson", mock.Anything, "Ixchel", 1).Return(nil)
	repo.On("GetByName", mock.Anything, "Balam").Return(testutil.NewTestLearner(2, "Balam", 0), nil)
	repo.On("SaveResult", mock.Anything, domain.LessonResult{
		LearnerName: "Ixchel",
		LessonID:    1,
		Score:       10,
	}).Return(nil).Once()

	ctx := context.Background()
	_, err := app.BeginLesson(ctx, 1)
	require.NoError(t, err)
	q, err := app.Question()
	require.NoError(t, err)
	_, _, err = app.Answer(ctx, correctChoice(t, app, q))
	require.NoError(t, err)

	_, err = app.Login(ctx, "Balam")
	require.NoError(t, err)

	assert.Equal(t, "Balam", app.Learner())
	assert.False(t, app.InLesson())
	repo.AssertExpectations(t)
}

func TestApp_MediaPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sol.png"), []byte("png"), 0o644))

	app, _ := newTestApp(t, dir)

	assert.Equal(t, filepath.Join(dir, "sol.png"), app.MediaPath("sol.png"))
	assert.Equal(t, filepath.Join(dir, "sol.png"), app.MediaPath("../sol.png"))
	assert.Empty(t, app.MediaPath("luna.png"))
	assert.Empty(t, app.MediaPath(""))
}
