package desktop

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

type menu struct {
	ctx        context.Context
	app        *App
	mainWindow fyne.Window
	wg         *sync.WaitGroup
}

// Async calls async in a new goroutine and inUIGoroutine through fyne.Do.
// inUIGoroutine is skipped once the context is cancelled.
func (m *menu) Async(async func(context.Context), inUIGoroutine func()) {
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()

		async(m.ctx)

		if m.ctx.Err() == nil {
			fyne.Do(inUIGoroutine)
		}
	}()
}

func (m *menu) showError(err error) {
	if m.ctx.Err() != nil {
		return
	}
	showErr(err, m.mainWindow)
}

func (m *menu) showInfo(title, text string, onClosed func()) {
	lb := widget.NewLabel(text)
	lb.Alignment = fyne.TextAlignCenter
	lb.Wrapping = fyne.TextWrapWord

	dlg := dialog.NewCustom(title, "OK", lb, m.mainWindow)
	if onClosed != nil {
		dlg.SetOnClosed(onClosed)
	}
	dlg.Show()
}
