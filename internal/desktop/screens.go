package desktop

import (
	"context"
	"fmt"
	"strings"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"
	"github.com/Chitopro2255V/kichewebapp/internal/messages"
	"github.com/Chitopro2255V/kichewebapp/internal/quiz"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

func title(text string) *widget.Label {
	return widget.NewLabelWithStyle(text, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
}

// showHome offers registration and login, or the lessons when a learner is logged in
func (m *menu) showHome() {
	var buttons []fyne.CanvasObject

	if name := m.app.Learner(); name != "" {
		buttons = append(buttons,
			widget.NewLabelWithStyle(messages.Welcome(name), fyne.TextAlignCenter, fyne.TextStyle{}),
			widget.NewButton("Continuar con las lecciones", m.showLessons),
			widget.NewButton("Cambiar de usuario", func() {
				m.app.Logout(m.ctx)
				m.showHome()
			}),
		)
	} else {
		register := widget.NewButton("Nuevo usuario", m.showRegister)
		register.Importance = widget.HighImportance
		buttons = append(buttons,
			register,
			widget.NewButton("Usuario existente", m.showLogin),
		)
	}

	m.mainWindow.SetContent(
		container.NewVBox(
			layout.NewSpacer(),
			title(windowTitle),
			layout.NewSpacer(),
			container.NewCenter(container.NewVBox(buttons...)),
			layout.NewSpacer(),
		),
	)
}

func (m *menu) backButton(label string, to func()) *widget.Button {
	return widget.NewButton(label, to)
}

func (m *menu) showRegister() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Nombre de usuario")

	submit := func() {
		name := entry.Text

		var (
			learner *domain.Learner
			err     error
		)
		m.Async(
			func(ctx context.Context) {
				learner, err = m.app.Register(ctx, name)
			},
			func() {
				if err != nil {
					m.showError(err)
					return
				}
				m.showInfo("Registro", messages.Registered(learner.Name), m.showLessons)
			},
		)
	}
	entry.OnSubmitted = func(string) { submit() }

	button := widget.NewButton("Registrar", submit)
	button.Importance = widget.HighImportance

	m.mainWindow.SetContent(
		container.NewBorder(
			container.NewHBox(m.backButton("Inicio", m.showHome), layout.NewSpacer()),
			nil,
			nil,
			nil,
			container.NewVBox(
				layout.NewSpacer(),
				title("Registro de usuario"),
				container.New(layout.NewFormLayout(), widget.NewLabel("Nombre:"), entry),
				container.NewCenter(button),
				layout.NewSpacer(),
			),
		),
	)
	m.mainWindow.Canvas().Focus(entry)
}

// showLogin lists registered learners in a picker
func (m *menu) showLogin() {
	var (
		names []string
		err   error
	)
	m.Async(
		func(ctx context.Context) {
			names, err = m.app.Names(ctx)
		},
		func() {
			if err != nil {
				m.showError(err)
				return
			}
			m.drawLogin(names)
		},
	)
}

func (m *menu) drawLogin(names []string) {
	picker := widget.NewSelect(names, nil)
	picker.PlaceHolder = "Selecciona un usuario"

	enter := widget.NewButton("Entrar", func() {
		name := picker.Selected
		if name == "" {
			m.showInfo("Entrar", messages.SelectLearner, nil)
			return
		}

		var (
			learner *domain.Learner
			err     error
		)
		m.Async(
			func(ctx context.Context) {
				learner, err = m.app.Login(ctx, name)
			},
			func() {
				if err != nil {
					m.showError(err)
					return
				}
				m.showInfo("Entrar", messages.Welcome(learner.Name), m.showLessons)
			},
		)
	})
	enter.Importance = widget.HighImportance

	var body fyne.CanvasObject
	if len(names) == 0 {
		body = widget.NewLabel("No hay usuarios registrados.")
		enter.Disable()
	} else {
		body = picker
	}

	m.mainWindow.SetContent(
		container.NewBorder(
			container.NewHBox(m.backButton("Inicio", m.showHome), layout.NewSpacer()),
			nil,
			nil,
			nil,
			container.NewVBox(
				layout.NewSpacer(),
				title("Seleccionar usuario"),
				body,
				container.NewCenter(enter),
				layout.NewSpacer(),
			),
		),
	)
}

func (m *menu) showLessons() {
	var (
		points int
		levels []LevelItems
		err    error
	)
	m.Async(
		func(ctx context.Context) {
			points, levels, err = m.app.Lessons(ctx)
		},
		func() {
			if err != nil {
				m.showError(err)
				m.showHome()
				return
			}
			m.drawLessons(points, levels)
		},
	)
}

func (m *menu) drawLessons(points int, levels []LevelItems) {
	list := container.NewVBox()

	for _, lvl := range levels {
		list.Add(title(lvl.Name))
		for _, item := range lvl.Lessons {
			label := fmt.Sprintf("%s (%d palabras)", item.Title, item.Words)
			if item.CompletedOn != "" {
				label += " ✓ " + item.CompletedOn
			}

			id := item.ID
			button := widget.NewButton(label, func() { m.beginLesson(id) })
			if !item.Playable {
				button.SetText(item.Title + " (no disponible)")
				button.Disable()
			}
			list.Add(button)
		}
	}

	m.mainWindow.SetContent(
		container.NewBorder(
			container.NewHBox(
				m.backButton("Inicio", m.showHome),
				layout.NewSpacer(),
				widget.NewLabel(fmt.Sprintf("%s · Puntos: %d", m.app.Learner(), points)),
			),
			nil,
			nil,
			nil,
			container.NewVScroll(list),
		),
	)
}

func (m *menu) beginLesson(id int) {
	var (
		lesson *domain.Lesson
		err    error
	)
	m.Async(
		func(ctx context.Context) {
			lesson, err = m.app.BeginLesson(ctx, id)
		},
		func() {
			if err != nil {
				m.showError(err)
				return
			}
			m.showExercise(lesson.Title)
		},
	)
}

// showExercise draws the pending question with one button per choice
func (m *menu) showExercise(lessonTitle string) {
	q, err := m.app.Question()
	if err != nil {
		m.showError(err)
		m.showLessons()
		return
	}

	status := widget.NewLabel(fmt.Sprintf("Puntos: %d · Vidas: %s", q.Score, strings.Repeat("♥", q.Lives)))
	prompt := widget.NewLabelWithStyle(
		fmt.Sprintf("¿Cómo se dice «%s» en K'iche'?", q.Gloss),
		fyne.TextAlignCenter,
		fyne.TextStyle{Bold: true},
	)

	options := make([]fyne.CanvasObject, len(q.Choices))
	buttons := make([]*widget.Button, len(q.Choices))
	for i, choice := range q.Choices {
		buttons[i] = widget.NewButton(choice, nil)
		buttons[i].OnTapped = func() { m.answer(lessonTitle, choice, buttons) }
		options[i] = buttons[i]
	}

	content := container.NewVBox(layout.NewSpacer(), container.NewCenter(prompt))
	if path := m.app.MediaPath(q.MediaRef); path != "" {
		img := canvas.NewImageFromFile(path)
		img.FillMode = canvas.ImageFillContain
		img.SetMinSize(fyne.NewSize(160, 160))
		content.Add(img)
	}
	content.Add(layout.NewSpacer())
	content.Add(container.NewGridWithColumns(2, options...))
	content.Add(layout.NewSpacer())

	exit := widget.NewButton("Salir de la lección", func() {
		m.Async(
			func(ctx context.Context) { m.app.ExitLesson(ctx) },
			m.showLessons,
		)
	})

	m.mainWindow.SetContent(
		container.NewBorder(
			container.NewHBox(exit, layout.NewSpacer(), title(lessonTitle), layout.NewSpacer(), status),
			nil,
			nil,
			nil,
			content,
		),
	)
}

func (m *menu) answer(lessonTitle, choice string, buttons []*widget.Button) {
	for _, b := range buttons {
		b.Disable()
	}

	var (
		res quiz.Result
		msg messages.Message
		err error
	)
	m.Async(
		func(ctx context.Context) {
			res, msg, err = m.app.Answer(ctx, choice)
		},
		func() {
			if err != nil && msg.Text == "" {
				m.showError(err)
				m.showLessons()
				return
			}

			if !res.Outcome.Terminal() {
				heading := "Correcto"
				if msg.Kind == messages.KindError {
					heading = "Incorrecto"
				}
				m.showInfo(heading, msg.Text, func() { m.showExercise(lessonTitle) })
				return
			}

			text := msg.Text
			if err != nil {
				text += "\n\n" + messages.GenericError
			}
			m.showInfo(lessonTitle, text, m.showLessons)
		},
	)
}
