package quiz

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"
)

// Question is what a shell shows the learner: a gloss to translate and
// the candidate targets to choose from.
type Question struct {
	Gloss    string
	MediaRef string
	Choices  []string
	Score    int
	Lives    int
}

// Result describes the effect of a submitted answer.
type Result struct {
	Outcome Outcome
	Score   int
	Lives   int
	// Answer is the correct target of the question just answered.
	Answer string
}

// Status is a snapshot of a session
type Status struct {
	State    State
	Score    int
	Lives    int
	LessonID int
}

type pendingQuestion struct {
	word    domain.WordPair
	choices []string
}

// Session runs one learner through one lesson.
// It is not safe for concurrent use; shells serialize access per learner.
type Session struct {
	lesson  *domain.Lesson
	cfg     Config
	rnd     *rand.Rand
	targets []string

	state   State
	score   int
	lives   int
	asked   map[string]struct{}
	pending *pendingQuestion
}

// BeginLesson starts a fresh session for lesson
func BeginLesson(lesson *domain.Lesson, opts ...Option) (*Session, error) {
	if lesson == nil {
		return nil, fmt.Errorf("%w: lesson is nil", domain.ErrContent)
	}
	if len(lesson.Content) == 0 {
		return nil, fmt.Errorf("%w: lesson %d has no words", domain.ErrContent, lesson.ID)
	}

	s := &Session{
		lesson: lesson,
		cfg:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.cfg.validate(); err != nil {
		return nil, err
	}

	if s.rnd == nil {
		seed := uint64(time.Now().UnixNano())
		s.rnd = rand.New(rand.NewPCG(seed, seed>>32|1))
	}

	s.targets = distinctTargets(lesson.Content)
	s.state = StateReady
	s.lives = s.cfg.Lives
	s.asked = make(map[string]struct{}, len(lesson.Content))

	return s, nil
}

// NextQuestion picks a not yet asked word of the lesson and builds a
// multiple-choice question for it. Once every gloss has been asked the
// cycle starts over. Calling it while a question is pending replaces that
// question.
func (s *Session) NextQuestion() (Question, error) {
	if s.state.Terminal() {
		return Question{}, fmt.Errorf("%w: session already %s", domain.ErrIllegalState, s.state)
	}

	if len(s.targets) < s.cfg.Choices {
		return Question{}, fmt.Errorf("%w: lesson %d has %d distinct words, %d required",
			domain.ErrInsufficientContent, s.lesson.ID, len(s.targets), s.cfg.Choices)
	}

	available := s.unasked()
	if len(available) == 0 {
		clear(s.asked)
		available = s.lesson.Content
	}

	word := available[s.rnd.IntN(len(available))]
	s.asked[word.Gloss] = struct{}{}

	choices := s.distractors(word.Target, s.cfg.Choices-1)
	choices = append(choices, word.Target)
	s.rnd.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	s.pending = &pendingQuestion{word: word, choices: choices}
	s.state = StateAwaitingAnswer

	return s.question(), nil
}

// SubmitAnswer grades choice against the pending question.
// On error the session is left untouched.
func (s *Session) SubmitAnswer(choice string) (Result, error) {
	if s.pending == nil {
		return Result{}, fmt.Errorf("%w: no question is pending", domain.ErrIllegalState)
	}

	answer := s.pending.word.Target
	s.pending = nil

	var outcome Outcome
	if choice == answer {
		s.score += s.cfg.PointsPerCorrect
		if s.score >= s.cfg.WinningScore {
			s.state = StateWon
			outcome = OutcomeWon
		} else {
			s.state = StateReady
			outcome = OutcomeCorrect
		}
	} else {
		s.lives--
		if s.lives <= 0 {
			s.state = StateLost
			outcome = OutcomeLost
		} else {
			s.state = StateReady
			outcome = OutcomeIncorrect
		}
	}

	return Result{
		Outcome: outcome,
		Score:   s.score,
		Lives:   s.lives,
		Answer:  answer,
	}, nil
}

// State returns a snapshot of the session.
func (s *Session) State() Status {
	return Status{
		State:    s.state,
		Score:    s.score,
		Lives:    s.lives,
		LessonID: s.lesson.ID,
	}
}

// Pending returns the question awaiting an answer, if any.
func (s *Session) Pending() (Question, bool) {
	if s.pending == nil {
		return Question{}, false
	}
	return s.question(), true
}

// Lesson returns the lesson being played.
func (s *Session) Lesson() *domain.Lesson {
	return s.lesson
}

// Finished reports whether the session reached a win or a loss.
func (s *Session) Finished() bool {
	return s.state.Terminal()
}

func (s *Session) question() Question {
	choices := make([]string, len(s.pending.choices))
	copy(choices, s.pending.choices)

	return Question{
		Gloss:    s.pending.word.Gloss,
		MediaRef: s.pending.word.MediaRef,
		Choices:  choices,
		Score:    s.score,
		Lives:    s.lives,
	}
}

func (s *Session) unasked() []domain.WordPair {
	available := make([]domain.WordPair, 0, len(s.lesson.Content))
	for _, w := range s.lesson.Content {
		if _, ok := s.asked[w.Gloss]; !ok {
			available = append(available, w)
		}
	}
	return available
}

// distractors samples n distinct targets other than correct, without
// replacement, using a partial Fisher-Yates shuffle over the candidate pool.
func (s *Session) distractors(correct string, n int) []string {
	pool := make([]string, 0, len(s.targets))
	for _, t := range s.targets {
		if t != correct {
			pool = append(pool, t)
		}
	}

	for i := 0; i < n; i++ {
		j := i + s.rnd.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:n]
}

func distinctTargets(content []domain.WordPair) []string {
	seen := make(map[string]struct{}, len(content))
	targets := make([]string, 0, len(content))
	for _, w := range content {
		if _, ok := seen[w.Target]; ok {
			continue
		}
		seen[w.Target] = struct{}{}
		targets = append(targets, w.Target)
	}
	return targets
}
