// Package gui renders the desktop window and tray menu on top of a control.Service.
package gui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/offlinefirst/screenshotter/pkg/config"
	"github.com/offlinefirst/screenshotter/pkg/control"
	"github.com/offlinefirst/screenshotter/pkg/screenshots"
)

const (
	title            = "Screenshot Tool"
	backgroundNotice = "Running in background. Right-click the tray icon to exit."
)

// Controls is the subset of control.Service the window drives.
type Controls interface {
	Config() config.Settings
	SetIntervalInput(raw string) (int, error)
	SetDailyTime(value string) (string, error)
	Start()
	Stop()
	TriggerOnce(ctx context.Context) (screenshots.Result, error)
	Subscribe(fn func(control.Status)) func()
	Close() error
}

// UI owns the main window and the tray menu.
type UI struct {
	app    fyne.App
	window fyne.Window
	svc    Controls
	logger *slog.Logger
	ctx    context.Context

	intervalEntry *widget.Entry
	timeEntry     *widget.Entry
	status        *widget.Label

	unsubscribe func()
	exitOnce    sync.Once
}

// New builds the window and, on desktop drivers, the tray menu.
func New(ctx context.Context, a fyne.App, svc Controls, logger *slog.Logger) *UI {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	u := &UI{
		app:    a,
		window: a.NewWindow(title),
		svc:    svc,
		logger: logger,
		ctx:    ctx,
	}
	u.build()
	u.unsubscribe = svc.Subscribe(func(s control.Status) {
		fyne.Do(func() { u.setStatus(s.Message) })
	})
	u.window.SetCloseIntercept(u.hide)
	u.installTray()
	return u
}

// Window exposes the main window.
func (u *UI) Window() fyne.Window {
	return u.window
}

// Run shows the window and blocks in the fyne event loop.
func (u *UI) Run() {
	u.window.ShowAndRun()
}

func (u *UI) build() {
	settings := u.svc.Config()

	u.intervalEntry = widget.NewEntry()
	u.intervalEntry.SetText(strconv.Itoa(settings.IntervalSeconds))
	u.timeEntry = widget.NewEntry()
	u.timeEntry.SetText(settings.DailyTime)
	u.timeEntry.SetPlaceHolder("HH:MM")
	u.status = widget.NewLabel("")
	u.setStatus("Ready")

	u.window.SetContent(container.NewVBox(
		widget.NewLabel("Interval (seconds):"),
		u.intervalEntry,
		widget.NewButton("Set Interval", u.setInterval),
		widget.NewLabel("Specific Time (HH:MM):"),
		u.timeEntry,
		widget.NewButton("Set Specific Time", u.setSpecificTime),
		widget.NewButton("Take Screenshot", u.takeScreenshot),
		widget.NewButton("Start Automatic Screenshots", u.svc.Start),
		widget.NewButton("Stop Automatic Screenshots", u.svc.Stop),
		u.status,
	))
	u.window.Resize(fyne.NewSize(320, 0))
}

func (u *UI) setStatus(message string) {
	u.status.SetText("Status: " + message)
}

// StatusText reports the current status label.
func (u *UI) StatusText() string {
	return u.status.Text
}

func (u *UI) setInterval() {
	seconds, err := u.svc.SetIntervalInput(u.intervalEntry.Text)
	if err != nil {
		u.showError(err)
		return
	}
	dialog.ShowInformation("Info", fmt.Sprintf("Interval set to %d seconds", seconds), u.window)
}

func (u *UI) setSpecificTime() {
	daily, err := u.svc.SetDailyTime(u.timeEntry.Text)
	if err != nil {
		u.showError(err)
		return
	}
	u.timeEntry.SetText(daily)
	dialog.ShowInformation("Info", "Specific time set to "+daily, u.window)
}

func (u *UI) takeScreenshot() {
	go func() {
		if _, err := u.svc.TriggerOnce(u.ctx); err != nil {
			u.logger.Warn("manual screenshot failed", "error", err)
		}
	}()
}

func (u *UI) showError(err error) {
	var validation *config.ValidationError
	if errors.As(err, &validation) {
		dialog.ShowError(errors.New(control.UserMessage(err)), u.window)
		return
	}
	u.logger.Error("settings update failed", "error", err)
	dialog.ShowError(err, u.window)
}

func (u *UI) hide() {
	u.window.Hide()
	u.app.SendNotification(fyne.NewNotification(title, backgroundNotice))
}

func (u *UI) installTray() {
	desk, ok := u.app.(desktop.App)
	if !ok {
		return
	}
	show := fyne.NewMenuItem("Show", func() {
		u.window.Show()
		u.window.RequestFocus()
	})
	exit := fyne.NewMenuItem("Exit", u.Exit)
	exit.IsQuit = true
	desk.SetSystemTrayMenu(fyne.NewMenu(title, show, exit))
	if icon := trayIcon(); icon != nil {
		desk.SetSystemTrayIcon(icon)
	}
}

// Exit stops both timers and quits the event loop, releasing the tray.
func (u *UI) Exit() {
	u.exitOnce.Do(func() {
		if u.unsubscribe != nil {
			u.unsubscribe()
		}
		if err := u.svc.Close(); err != nil {
			u.logger.Warn("shutdown", "error", err)
		}
		u.app.Quit()
	})
}
