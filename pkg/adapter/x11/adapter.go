package x11

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ber2minsin/intime/internal/logging"
	"github.com/ber2minsin/intime/pkg/window"
)

// Adapter watches the focused X11 window and captures its contents. One
// xgb connection serves both duties; xgb multiplexes requests across
// goroutines.
type Adapter struct {
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo
	atoms  map[string]xproto.Atom
	poll   time.Duration
	log    zerolog.Logger
}

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

// New connects to the X server and interns the atoms the adapter needs.
func New(pollInterval time.Duration) (*Adapter, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	a := &Adapter{
		conn:   conn,
		root:   screen.Root,
		screen: screen,
		atoms:  make(map[string]xproto.Atom),
		poll:   pollInterval,
		log:    *logging.WithComponent("x11"),
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "failed to intern atom %s", name)
		}
		a.atoms[name] = reply.Atom
	}

	return a, nil
}

func (a *Adapter) IsAvailable() bool {
	return a.conn != nil
}

func (a *Adapter) Close() error {
	a.conn.Close()
	return nil
}

type subscription struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Stop halts the watch goroutine and waits until it has exited.
func (s *subscription) Stop() {
	s.once.Do(func() {
		close(s.stop)
	})
	<-s.done
}

// Watch polls the active window and publishes a notification whenever
// focus moves to another window or the focused window's title changes.
func (a *Adapter) Watch(sink window.Sink) (window.Subscription, error) {
	if sink == nil {
		return nil, errors.New("sink is required")
	}

	sub := &subscription{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go a.watchLoop(sink, sub)

	a.log.Info().Dur("poll_interval", a.poll).Msg("watching focused window")
	return sub, nil
}

func (a *Adapter) watchLoop(sink window.Sink, sub *subscription) {
	defer close(sub.done)

	ticker := time.NewTicker(a.poll)
	defer ticker.Stop()

	var lastWindow xproto.Window
	var lastTitle string

	for {
		select {
		case <-sub.stop:
			return
		case <-ticker.C:
		}

		win, err := a.activeWindow()
		if err != nil {
			continue
		}

		title := a.windowTitle(win)
		if win == lastWindow && title == lastTitle {
			continue
		}

		name, _ := a.windowClass(win)
		if name == "" {
			// windows without a class are transient popups, not apps
			continue
		}

		kind := window.KindForeground
		if win == lastWindow {
			kind = window.KindTitleChange
		}
		lastWindow = win
		lastTitle = title

		sink.Publish(window.Notification{
			Kind:    kind,
			AppName: name,
			AppPath: exePath(a.windowPID(win)),
			Title:   title,
			Window:  window.ID(win),
		})
	}
}

// activeWindow resolves the currently focused top-level window, retrying
// briefly because both sources go blank for a moment during focus
// transitions.
func (a *Adapter) activeWindow() (xproto.Window, error) {
	for i := 0; i < 5; i++ {
		win := a.activeWindowFromProperty()
		if win != 0 && a.hasName(win) {
			return win, nil
		}

		win = a.activeWindowFromInputFocus()
		if win != 0 && win != a.root {
			if top := a.topLevelParent(win); top != 0 && a.hasName(top) {
				return top, nil
			}
		}

		time.Sleep(20 * time.Millisecond)
	}

	return 0, errors.New("no active window found")
}

func (a *Adapter) property(win xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(a.conn, false, win, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (a *Adapter) activeWindowFromProperty() xproto.Window {
	data, err := a.property(a.root, a.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return xproto.Window(binary.LittleEndian.Uint32(data))
}

func (a *Adapter) activeWindowFromInputFocus() xproto.Window {
	reply, err := xproto.GetInputFocus(a.conn).Reply()
	if err != nil {
		return 0
	}
	return reply.Focus
}

func (a *Adapter) topLevelParent(win xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(a.conn, win).Reply()
		if err != nil || reply.Parent == a.root || reply.Parent == 0 {
			return win
		}
		win = reply.Parent
	}
}

func (a *Adapter) hasName(win xproto.Window) bool {
	data, _ := a.property(win, a.atoms["_NET_WM_NAME"], a.atoms["UTF8_STRING"], 1)
	if len(data) > 0 {
		return true
	}
	data, _ = a.property(win, a.atoms["WM_NAME"], xproto.AtomString, 1)
	return len(data) > 0
}

func (a *Adapter) windowTitle(win xproto.Window) string {
	data, err := a.property(win, a.atoms["_NET_WM_NAME"], a.atoms["UTF8_STRING"], 256)
	if err == nil && len(data) > 0 {
		return decodeText(data)
	}

	data, err = a.property(win, a.atoms["WM_NAME"], xproto.AtomString, 256)
	if err == nil && len(data) > 0 {
		return decodeText(data)
	}

	return ""
}

func (a *Adapter) windowClass(win xproto.Window) (instance, class string) {
	data, err := a.property(win, a.atoms["WM_CLASS"], xproto.AtomString, 256)
	if err != nil || len(data) == 0 {
		return "", ""
	}
	return parseClass(data)
}

func (a *Adapter) windowPID(win xproto.Window) uint32 {
	data, err := a.property(win, a.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data)
}

func decodeText(data []byte) string {
	return strings.TrimRight(string(data), "\x00")
}

// parseClass splits a WM_CLASS property into its instance and class
// parts, which arrive as two null-terminated strings.
func parseClass(data []byte) (instance, class string) {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

// exePath resolves a process's executable path. Sandboxed apps may hide
// /proc/<pid>/exe; the path is recorded empty in that case.
func exePath(pid uint32) string {
	if pid == 0 {
		return ""
	}
	path, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid))
	if err != nil {
		return ""
	}
	return path
}
