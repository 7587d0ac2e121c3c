package x11

import (
	"encoding/binary"
	"errors"
	"strings"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var errNoActiveWindow = errors.New("no active window found")

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

// client talks EWMH to the X server directly
type client struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

// focusedWindow is what the client reads off the active top-level window
type focusedWindow struct {
	title    string
	instance string
	class    string
	pid      uint32
}

func newClient() (*client, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}

	c := &client{
		conn:  conn,
		root:  xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms: make(map[string]xproto.Atom, len(atomNames)),
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, err
		}
		c.atoms[name] = reply.Atom
	}

	return c, nil
}

func (c *client) close() {
	c.conn.Close()
}

func (c *client) property(win xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(c.conn, false, win, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (c *client) activeFromProperty() xproto.Window {
	data, err := c.property(c.root, c.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return xproto.Window(binary.LittleEndian.Uint32(data))
}

func (c *client) activeFromInputFocus() xproto.Window {
	reply, err := xproto.GetInputFocus(c.conn).Reply()
	if err != nil {
		return 0
	}
	return reply.Focus
}

func (c *client) topLevel(win xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(c.conn, win).Reply()
		if err != nil || reply.Parent == c.root || reply.Parent == 0 {
			return win
		}
		win = reply.Parent
	}
}

func (c *client) named(win xproto.Window) bool {
	return c.name(win, 1) != ""
}

// activeWindow retries briefly since focus changes race with the query
func (c *client) activeWindow() (xproto.Window, error) {
	for i := 0; i < 5; i++ {
		if win := c.activeFromProperty(); win != 0 && c.named(win) {
			return win, nil
		}

		if win := c.activeFromInputFocus(); win != 0 && win != c.root {
			if top := c.topLevel(win); top != 0 && c.named(top) {
				return top, nil
			}
		}

		time.Sleep(20 * time.Millisecond)
	}
	return 0, errNoActiveWindow
}

func (c *client) name(win xproto.Window, length uint32) string {
	data, err := c.property(win, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"], length)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	data, err = c.property(win, c.atoms["WM_NAME"], xproto.AtomString, length)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}
	return ""
}

func (c *client) pid(win xproto.Window) uint32 {
	data, err := c.property(win, c.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data)
}

func (c *client) focused() (*focusedWindow, error) {
	win, err := c.activeWindow()
	if err != nil {
		return nil, err
	}

	fw := &focusedWindow{
		title: c.name(win, 256),
		pid:   c.pid(win),
	}
	if data, err := c.property(win, c.atoms["WM_CLASS"], xproto.AtomString, 256); err == nil {
		fw.instance, fw.class = splitWMClass(data)
	}
	return fw, nil
}

// splitWMClass splits the raw WM_CLASS value, two NUL-terminated strings
func splitWMClass(data []byte) (instance, class string) {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}
