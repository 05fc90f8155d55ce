// Package host runs a child program on a pty and mirrors its screen into
// a text buffer drawn with tcell.
package host

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"termview/buffer"
	"termview/clipboardx"
	"termview/config"
	"termview/highlight"
	"termview/images"
	"termview/render"
	"termview/screen"
	"termview/ui"
)

const messageTimeout = 3 * time.Second

type App struct {
	cfg *config.Config
	log *zap.Logger

	scr   tcell.Screen
	child Child

	emu    *screen.Emulator
	buf    *buffer.Buffer
	reg    *render.Registry
	sess   *render.Session
	sched  *render.Scheduler
	store  *images.Store
	view   *ui.View
	status *ui.StatusBar

	rows, cols int
	msgUntil   time.Time
	exited     bool
	quit       bool
}

func New(cfg *config.Config, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{
		cfg:    cfg,
		log:    log,
		buf:    buffer.NewBuffer(),
		reg:    render.NewRegistry(),
		store:  images.NewStore(),
		status: ui.NewStatusBar(),
	}
	a.view = ui.NewView(a.buf, highlight.NewPalette(cfg.Palette), a.store)
	a.view.SetFocused(true)
	a.applyTheme(cfg)
	a.status.Title = cfg.DefaultTitle
	return a
}

// Run starts the configured shell and serves events until the user quits.
func (a *App) Run() error {
	scr, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := scr.Init(); err != nil {
		return err
	}
	defer scr.Fini()
	scr.EnableMouse()
	scr.SetStyle(tcell.StyleDefault)
	scr.Clear()

	rows, cols := viewSize(scr)
	proc, err := StartProcess(a.cfg.Shell, rows, cols)
	if err != nil {
		return fmt.Errorf("start %s: %w", a.cfg.Shell, err)
	}
	defer proc.Close()
	a.log.Info("started", zap.String("shell", a.cfg.Shell), zap.Int("rows", rows), zap.Int("cols", cols))

	a.start(scr, proc)
	go a.pump()

	if w, err := config.Watch(config.ConfigPath(), a.postConfig); err != nil {
		a.log.Warn("settings watch disabled", zap.Error(err))
	} else {
		defer w.Close()
	}

	for !a.quit {
		a.draw()
		ev := scr.PollEvent()
		if ev == nil {
			break
		}
		a.handleEvent(ev)
	}
	scr.Clear()
	return nil
}

func viewSize(scr tcell.Screen) (rows, cols int) {
	w, h := scr.Size()
	return max(h-1, 1), max(w, 1)
}

// start wires the emulator, session and scheduler to scr and child.
func (a *App) start(scr tcell.Screen, child Child) {
	a.scr = scr
	a.child = child
	a.rows, a.cols = viewSize(scr)

	opts := []screen.Option{
		screen.WithResponse(child),
		screen.WithHistoryLimit(a.cfg.ScrollbackHistorySize),
	}
	if a.cfg.ImageProtocol != config.ImagesNone {
		opts = append(opts, screen.WithImageHandler(a.placeImage))
	}
	a.emu = screen.NewEmulator(a.rows, a.cols, opts...)
	a.buf.SetHeight(a.rows)
	a.sched = render.NewScheduler(func() error { return a.sess.Render() }, a.wake)
	a.attach()
}

func (a *App) attach() {
	a.sess = a.reg.Attach(a.buf, a.emu, render.Options{
		MaxScrollback: a.cfg.ScrollbackHistorySize,
		DefaultTitle:  a.cfg.DefaultTitle,
		OnTitle:       func(title string) { a.status.Title = title },
		Trim:          a.store,
		Defer:         a.sched.Defer,
		Logger:        a.log,
	})
	a.status.Title = a.sess.Title()
}

func (a *App) wake() {
	ev := &renderEvent{}
	ev.SetEventNow()
	if err := a.scr.PostEvent(ev); err != nil {
		go a.scr.PostEventWait(ev)
	}
}

// pump reads child output until it ends and hands it to the event loop.
func (a *App) pump() {
	buf := make([]byte, 4096)
	for {
		n, err := a.child.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			ev := &OutputEvent{Data: data}
			ev.SetEventNow()
			a.scr.PostEventWait(ev)
		}
		if err != nil {
			ev := &exitEvent{Err: a.child.Wait()}
			ev.SetEventNow()
			a.scr.PostEventWait(ev)
			return
		}
	}
}

func (a *App) postConfig(cfg *config.Config, err error) {
	ev := &configEvent{Cfg: cfg, Err: err}
	ev.SetEventNow()
	a.scr.PostEvent(ev)
}

func (a *App) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *OutputEvent:
		a.emu.Write(ev.Data)
		a.sched.Request()
	case *renderEvent:
		if err := a.sched.Flush(); err != nil {
			a.log.Warn("render", zap.Error(err))
		}
	case *tcell.EventResize:
		a.scr.Sync()
		a.resize()
	case *tcell.EventKey:
		a.handleKey(ev)
	case *tcell.EventMouse:
		if a.view.HandleMouse(ev) {
			a.copySelection()
		}
	case *exitEvent:
		a.exited = true
		a.status.Exited = true
		msg := "process exited"
		if ev.Err != nil {
			msg = fmt.Sprintf("process exited: %v", ev.Err)
		}
		a.setMessage(msg)
		a.log.Info("child exited", zap.Error(ev.Err))
		a.sched.Request()
	case *configEvent:
		a.reload(ev.Cfg, ev.Err)
	}
}

func (a *App) resize() {
	rows, cols := viewSize(a.scr)
	if rows == a.rows && cols == a.cols {
		return
	}
	a.rows, a.cols = rows, cols
	a.emu.Resize(rows, cols)
	a.buf.SetHeight(rows)
	if err := a.child.Resize(rows, cols); err != nil {
		a.log.Warn("pty resize", zap.Error(err))
	}
	a.log.Debug("resize", zap.Int("rows", rows), zap.Int("cols", cols))
	a.sched.Request()
}

func (a *App) handleKey(ev *tcell.EventKey) {
	mods := ev.Modifiers()
	switch {
	case ev.Key() == tcell.KeyCtrlQ:
		a.quit = true
		return
	case mods&tcell.ModShift != 0 && ev.Key() == tcell.KeyPgUp:
		a.view.ScrollBy(-a.rows)
		return
	case mods&tcell.ModShift != 0 && ev.Key() == tcell.KeyPgDn:
		a.view.ScrollBy(a.rows)
		return
	case mods&tcell.ModAlt != 0 && ev.Key() == tcell.KeyRune:
		switch ev.Rune() {
		case 'c':
			a.copySelection()
			return
		case 'v':
			a.paste()
			return
		case 'k':
			a.clearHistory()
			return
		}
	}
	if a.exited {
		return
	}

	var data []byte
	if (ev.Key() == tcell.KeyBackspace || ev.Key() == tcell.KeyBackspace2) && mods&tcell.ModCtrl != 0 {
		data = a.deleteWord(false)
	} else if ev.Key() == tcell.KeyDelete && mods&tcell.ModCtrl != 0 {
		data = a.deleteWord(true)
	} else {
		data = ui.KeyBytes(ev, a.emu.Mode())
	}
	if len(data) == 0 {
		return
	}
	a.send(data)
}

// send writes input to the child and snaps the view back to the live
// screen once the pending output has been rendered.
func (a *App) send(data []byte) {
	if _, err := a.child.Write(data); err != nil {
		a.log.Warn("write to child", zap.Error(err))
		return
	}
	a.sched.Defer(func() {
		if err := a.sess.ShowCursor(true, true); err != nil {
			a.log.Warn("show cursor", zap.Error(err))
		}
	})
	a.sched.Request()
}

func (a *App) deleteWord(forward bool) []byte {
	key := "\x7f"
	if forward {
		key = "\x1b[3~"
	}
	n := 1
	if c, ok := a.buf.Caret(); ok {
		n = deleteWordCount(a.buf.Line(c.Line), c.Col, forward)
	}
	out := make([]byte, 0, n*len(key))
	for i := 0; i < n; i++ {
		out = append(out, key...)
	}
	return out
}

func (a *App) copySelection() {
	text := a.buf.GetSelectedText()
	if text == "" {
		return
	}
	clipboardx.Copy(text)
	a.setMessage("copied")
}

func (a *App) paste() {
	if a.exited {
		return
	}
	text := clipboardx.Read()
	if text == "" {
		return
	}
	a.send(clipboardx.PasteBytes(text, a.emu.Mode().BracketedPaste))
}

// clearHistory drops the scrollback by starting over on an empty buffer.
// The live screen is replayed into it on the next pass.
func (a *App) clearHistory() {
	a.reg.Detach(a.buf)
	a.buf.Reset()
	a.store.Clear()
	a.emu.Invalidate()
	a.attach()
	a.log.Debug("history cleared")
	a.sched.Request()
}

func (a *App) reload(cfg *config.Config, err error) {
	if err != nil {
		a.log.Warn("settings reload", zap.Error(err))
		a.setMessage("settings: " + err.Error())
		return
	}
	a.cfg = cfg
	a.sess.SetMaxScrollback(cfg.ScrollbackHistorySize)
	a.view.Palette = highlight.NewPalette(cfg.Palette)
	a.applyTheme(cfg)
	a.log.Info("settings reloaded", zap.String("theme", cfg.Theme), zap.String("palette", cfg.Palette))
	a.sched.Request()
}

func (a *App) applyTheme(cfg *config.Config) {
	theme := cfg.GetTheme()
	a.view.Theme = theme
	a.status.Theme = theme
}

// placeImage anchors an inline image at the buffer row the cursor will
// occupy once the queued history has been replayed. It runs inside the
// emulator's Write and must not call back into it.
func (a *App) placeImage(row int, data []byte) int {
	img, format, err := images.Decode(data)
	if err != nil {
		a.log.Debug("inline image", zap.Error(err))
		return 0
	}
	if n := a.scr.Colors(); n > 0 && n <= 256 {
		img = images.Quantize(img, n)
	}
	cols, rows := images.Layout(img, a.cols, a.rows)
	a.store.Add(a.sess.Offset()+row, images.Placement{Image: img, Cols: cols, Rows: rows})
	a.log.Debug("inline image", zap.String("format", format), zap.Int("row", row), zap.Int("cols", cols), zap.Int("rows", rows))
	return rows
}

func (a *App) setMessage(msg string) {
	a.status.Message = msg
	a.msgUntil = time.Now().Add(messageTimeout)
}

func (a *App) draw() {
	if a.status.Message != "" && time.Now().After(a.msgUntil) {
		a.status.Message = ""
	}
	w, h := a.scr.Size()
	a.view.Render(a.scr, 0, 0, w, max(h-1, 1))

	total := a.buf.RowCount()
	a.status.Rows = total
	a.status.Below = max(total-a.buf.ScrollY()-a.rows, 0)
	a.status.Render(a.scr, 0, h-1, w, 1)
	a.scr.Show()
}
