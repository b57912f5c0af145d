package desktop

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
)

const windowTitle = "Aprende Maya K'iche'"

// Run opens the main window and blocks until it is closed. A lesson still
// in progress when the window closes keeps its points.
func Run(app *App) {
	fyneApp := fyneapp.NewWithID("org.kiche.trainer")

	wg := &sync.WaitGroup{}

	defer wg.Wait()

	ctx, cancel := context.WithCancel(context.Background())

	defer cancel()

	mainWindow := fyneApp.NewWindow(windowTitle)

	mainWindow.Resize(fyne.NewSize(800, 600))

	m := &menu{
		ctx:        ctx,
		app:        app,
		mainWindow: mainWindow,
		wg:         wg,
	}
	m.showHome()

	mainWindow.ShowAndRun()

	app.Logout(context.Background())
}
