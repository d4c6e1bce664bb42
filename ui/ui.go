// Package ui is the fyne display surface. Widgets are only touched on the
// fyne goroutine: callbacks already run there, and every render call from
// the dispatcher is wrapped in fyne.Do.
package ui

import (
	"image/color"
	"log"
	"sync/atomic"

	"VoiceTasks/control"
	"VoiceTasks/i18n"
	"VoiceTasks/palette"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

var (
	titleColor = color.NRGBA{R: 0x21, G: 0x96, B: 0xf3, A: 0xff}
	timerColor = color.NRGBA{R: 0xd3, G: 0x2f, B: 0x2f, A: 0xff}
)

// Dispatcher receives the commands the window produces.
type Dispatcher interface {
	Post(cmd control.Command)
	Done() <-chan struct{}
}

// Window is the main application window.
type Window struct {
	app fyne.App
	win fyne.Window
	d   Dispatcher

	items    []string
	selected int
	stopped  atomic.Bool

	list         *widget.List
	taskEntry    *widget.Entry
	timerEntry   *widget.Entry
	timerText    *canvas.Text
	addButton    *widget.Button
	deleteButton *widget.Button
	clearButton  *widget.Button
	exitButton   *widget.Button
	startButton  *widget.Button
	gear         *TappableContainer
	menu         *fyne.Menu
}

// NewWindow builds the main window and, on desktop drivers, the tray menu.
func NewWindow(fyneApp fyne.App, d Dispatcher) *Window {
	title := fyneApp.Metadata().Name
	if title == "" {
		title = "VoiceTasks"
	}
	w := &Window{
		app:      fyneApp,
		win:      fyneApp.NewWindow(title),
		d:        d,
		selected: control.NoSelection,
	}

	w.menu = w.buildMenu()
	w.win.SetContent(w.buildContent())
	w.win.Resize(fyne.NewSize(600, 600))
	w.win.SetCloseIntercept(w.requestExit)
	w.win.Canvas().SetOnTypedKey(w.handleKey)

	if desk, ok := fyneApp.(desktop.App); ok {
		show := fyne.NewMenuItem(i18n.T("Show"), w.win.Show)
		quit := fyne.NewMenuItem(i18n.T("Quit"), w.requestExit)
		quit.IsQuit = true
		desk.SetSystemTrayMenu(fyne.NewMenu(title, show, quit))
	}
	return w
}

// ShowAndRun shows the window and runs the fyne event loop.
func (w *Window) ShowAndRun() {
	w.win.ShowAndRun()
	w.stopped.Store(true)
}

func (w *Window) buildContent() fyne.CanvasObject {
	gearText := canvas.NewText("⚙", titleColor)
	gearText.TextSize = 24
	w.gear = NewTappableContainer(gearText, w.showMenu, func(*fyne.PointEvent) { w.showMenu() })

	titleText := canvas.NewText(i18n.T("The To-Do List"), titleColor)
	titleText.TextSize = 22
	titleText.TextStyle.Bold = true

	w.taskEntry = widget.NewEntry()
	w.taskEntry.OnSubmitted = func(string) { w.addTask() }
	w.addButton = widget.NewButton(i18n.T("Add Task"), w.addTask)
	w.addButton.Importance = widget.HighImportance

	w.list = widget.NewList(
		func() int { return len(w.items) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id < len(w.items) {
				o.(*widget.Label).SetText(w.items[id])
			}
		},
	)
	w.list.OnSelected = func(id widget.ListItemID) { w.selected = id }
	w.list.OnUnselected = func(id widget.ListItemID) {
		if w.selected == id {
			w.selected = control.NoSelection
		}
	}

	w.deleteButton = widget.NewButton(i18n.T("Delete Task"), func() {
		w.d.Post(control.Delete(w.selected))
	})
	w.deleteButton.Importance = widget.DangerImportance
	w.clearButton = widget.NewButton(i18n.T("Delete All Tasks"), func() {
		w.d.Post(control.Command{Type: control.CmdClearAll})
	})
	w.clearButton.Importance = widget.DangerImportance
	w.exitButton = widget.NewButton(i18n.T("Exit"), w.requestExit)

	w.timerEntry = widget.NewEntry()
	w.timerEntry.SetPlaceHolder(i18n.T("mm:ss or seconds"))
	w.timerEntry.OnSubmitted = func(string) { w.startTimer() }
	w.startButton = widget.NewButton(i18n.T("Start Timer"), w.startTimer)
	w.startButton.Importance = widget.HighImportance

	w.timerText = canvas.NewText("00:00", timerColor)
	w.timerText.TextSize = 28
	w.timerText.TextStyle.Bold = true

	sizeEnforcer := canvas.NewRectangle(color.Transparent)
	sizeEnforcer.SetMinSize(fyne.NewSize(120, 0))
	timerInput := container.NewStack(sizeEnforcer, w.timerEntry)

	header := container.NewVBox(
		container.NewHBox(layout.NewSpacer(), w.gear),
		container.NewCenter(titleText),
		container.NewBorder(nil, nil, nil, w.addButton, w.taskEntry),
	)
	footer := container.NewVBox(
		container.NewCenter(container.NewHBox(w.deleteButton, w.clearButton, w.exitButton)),
		container.NewCenter(widget.NewLabel(i18n.T("Set Timer (in seconds):"))),
		container.NewCenter(container.NewHBox(timerInput, w.startButton)),
		container.NewCenter(w.timerText),
	)
	return container.NewPadded(container.NewBorder(header, footer, nil, nil, w.list))
}

func (w *Window) buildMenu() *fyne.Menu {
	themeItems := make([]*fyne.MenuItem, 0, len(palette.Swatches))
	for _, s := range palette.Swatches {
		token := s.Token
		themeItems = append(themeItems, fyne.NewMenuItem(s.Label, func() {
			w.d.Post(control.Theme(token))
		}))
	}
	colorTheme := fyne.NewMenuItem(i18n.T("Color Theme"), nil)
	colorTheme.ChildMenu = fyne.NewMenu("", themeItems...)

	return fyne.NewMenu("",
		fyne.NewMenuItem(i18n.T("Focus Mode"), func() {
			w.d.Post(control.Command{Type: control.CmdFocusMode})
		}),
		fyne.NewMenuItem(i18n.T("Timer"), w.startTimer),
		fyne.NewMenuItem(i18n.T("Alarm"), func() {
			w.d.Post(control.Command{Type: control.CmdAlarmMenu})
		}),
		fyne.NewMenuItem(i18n.T("Notepad"), w.openNotepad),
		colorTheme,
	)
}

func (w *Window) showMenu() {
	pos := fyne.CurrentApp().Driver().AbsolutePositionForObject(w.gear)
	pos = pos.Add(fyne.NewPos(0, w.gear.Size().Height))
	widget.ShowPopUpMenuAtPosition(w.menu, w.win.Canvas(), pos)
}

func (w *Window) addTask() {
	w.d.Post(control.Add(w.taskEntry.Text))
	w.taskEntry.SetText("")
}

func (w *Window) startTimer() {
	w.d.Post(control.StartTimer(w.timerEntry.Text))
}

func (w *Window) openNotepad() {
	notes := widget.NewMultiLineEntry()
	notes.Wrapping = fyne.TextWrapWord
	pad := w.app.NewWindow(i18n.T("Notepad"))
	pad.SetContent(notes)
	pad.Resize(fyne.NewSize(400, 400))
	pad.Show()
}

// requestExit routes closing through the dispatcher so workers stop
// first. If the dispatcher is already gone the app quits directly.
func (w *Window) requestExit() {
	select {
	case <-w.d.Done():
		w.app.Quit()
	default:
		w.d.Post(control.Command{Type: control.CmdExit})
	}
}

func (w *Window) handleKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyDelete:
		w.d.Post(control.Delete(w.selected))
	case fyne.KeyEscape:
		w.requestExit()
	}
}

// RenderTasks replaces the list contents and clears the selection.
func (w *Window) RenderTasks(tasks []string) {
	items := append([]string(nil), tasks...)
	fyne.Do(func() {
		w.items = items
		w.list.UnselectAll()
		w.selected = control.NoSelection
		w.list.Refresh()
	})
}

// RenderTimer shows the countdown text.
func (w *Window) RenderTimer(text string) {
	fyne.Do(func() {
		w.timerText.Text = text
		w.timerText.Refresh()
	})
}

// ShowAlert opens an information dialog.
func (w *Window) ShowAlert(message string) {
	fyne.Do(func() {
		dialog.ShowInformation(i18n.T("Timer Alert"), message, w.win)
	})
}

// ApplyTheme switches the background color.
func (w *Window) ApplyTheme(token string) {
	s, ok := palette.Lookup(token)
	if !ok {
		log.Printf("ui: unknown color theme %q", token)
		return
	}
	fyne.Do(func() {
		w.app.Settings().SetTheme(NewCustomTheme(s))
	})
}

// Close quits the fyne app, which returns from ShowAndRun.
func (w *Window) Close() {
	if w.stopped.Load() {
		return
	}
	fyne.Do(func() {
		w.app.Quit()
	})
}

// TappableContainer wraps any canvas object with tap handlers.
type TappableContainer struct {
	widget.BaseWidget
	Content           fyne.CanvasObject
	OnTappedPrimary   func()
	OnTappedSecondary func(e *fyne.PointEvent)
}

// NewTappableContainer wraps c, calling onP on a primary tap and onS on a
// secondary one.
func NewTappableContainer(c fyne.CanvasObject, onP func(), onS func(e *fyne.PointEvent)) *TappableContainer {
	t := &TappableContainer{
		Content:           c,
		OnTappedPrimary:   onP,
		OnTappedSecondary: onS,
	}
	t.ExtendBaseWidget(t)
	return t
}

// CreateRenderer renders the wrapped content unchanged.
func (t *TappableContainer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.Content)
}

// Tapped calls OnTappedPrimary if set.
func (t *TappableContainer) Tapped(_ *fyne.PointEvent) {
	if t.OnTappedPrimary != nil {
		t.OnTappedPrimary()
	}
}

// TappedSecondary calls OnTappedSecondary if set.
func (t *TappableContainer) TappedSecondary(e *fyne.PointEvent) {
	if t.OnTappedSecondary != nil {
		t.OnTappedSecondary(e)
	}
}
