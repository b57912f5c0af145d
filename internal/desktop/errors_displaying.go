package desktop

import (
	"errors"

	"github.com/Chitopro2255V/kichewebapp/internal/domain"
	"github.com/Chitopro2255V/kichewebapp/internal/messages"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Returns a dialog styled similarly to the one of dialog.NewError(...).
func dialogOfTextErr(errText string, window fyne.Window) dialog.Dialog {
	lb := widget.NewLabel(errText)

	lb.Alignment = fyne.TextAlignCenter

	dlg := dialog.NewCustom("Error", "OK", lb, window)

	dlg.SetIcon(theme.ErrorIcon())

	return dlg
}

func identifyErr(err error) string {
	if errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidName) ||
		errors.Is(err, domain.ErrDuplicateName) ||
		errors.Is(err, domain.ErrInsufficientContent) {
		return messages.ForError(err)
	}
	return ""
}

func showErr(err error, window fyne.Window) {
	var (
		text = identifyErr(err)
		dlg  dialog.Dialog
	)

	if text == "" {
		dlg = dialog.NewError(err, window)
	} else {
		dlg = dialogOfTextErr(text, window)
	}

	dlg.Show()
}
