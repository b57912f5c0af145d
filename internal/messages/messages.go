// Package messages holds the learner-facing text shared by every shell.
package messages

import (
	"errors"
	"fmt"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"
	"github.com/Chitopro2255V/kichewebapp/internal/quiz"
)

// Kind tells shells how to style a message
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Message is a piece of feedback for the learner
type Message struct {
	Kind Kind
	Text string
}

const (
	LessonNotFound    = "Lección no encontrada"
	LessonUnavailable = "Lección no disponible: no tiene suficientes palabras"
	LearnerNotFound   = "Usuario no encontrado"
	NameRequired      = "Por favor ingresa un nombre de usuario"
	NameTaken         = "Este nombre de usuario ya existe"
	SelectLearner     = "Por favor selecciona un usuario"
	GenericError      = "Ocurrió un error. Inténtalo de nuevo más tarde."
)

func Registered(name string) string {
	return fmt.Sprintf("Usuario %s creado correctamente", name)
}

func Welcome(name string) string {
	return fmt.Sprintf("Hola %s!", name)
}

// Outcome describes the result of an answer. pointsPerCorrect is the
// amount shown on a correct answer.
func Outcome(res quiz.Result, pointsPerCorrect int) Message {
	switch res.Outcome {
	case quiz.OutcomeCorrect:
		return Message{KindSuccess, fmt.Sprintf("¡Respuesta correcta! +%d puntos", pointsPerCorrect)}
	case quiz.OutcomeWon:
		return Message{KindSuccess, fmt.Sprintf("¡Felicidades! Has completado la lección con %d puntos!", res.Score)}
	case quiz.OutcomeLost:
		return Message{KindError, fmt.Sprintf("Juego terminado. Puntos finales: %d", res.Score)}
	default:
		return Message{KindError, fmt.Sprintf("Respuesta incorrecta. La respuesta era %s. Te quedan %d vidas", res.Answer, res.Lives)}
	}
}

// ForError maps a domain error to the text shown to the learner.
func ForError(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidName):
		return NameRequired
	case errors.Is(err, domain.ErrDuplicateName):
		return NameTaken
	case errors.Is(err, domain.ErrInsufficientContent), errors.Is(err, domain.ErrContent):
		return LessonUnavailable
	case errors.Is(err, domain.ErrNotFound):
		return LearnerNotFound
	}
	return GenericError
}
