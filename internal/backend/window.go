package backend

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Window is the host display surface the screen canvas is presented on.
type Window interface {
	Width() uint32
	Height() uint32
	RequestRedraw()
	Repaint(canvas Canvas) error
}

// TerminalWindow renders the screen canvas into a terminal using ANSI
// half-block cells, two pixel rows per text row. It stands in for a real
// windowing backend on headless hosts.
type TerminalWindow struct {
	width  uint32
	height uint32
	out    io.Writer

	redrawRequested bool

	status lipgloss.Style
}

// NewTerminalWindow creates a terminal window of the given pixel size.
func NewTerminalWindow(width, height uint32, out io.Writer) *TerminalWindow {
	return &TerminalWindow{
		width:  width,
		height: height,
		out:    out,
		status: lipgloss.NewStyle().Faint(true),
	}
}

// Width returns the window width in pixels.
func (w *TerminalWindow) Width() uint32 { return w.width }

// Height returns the window height in pixels.
func (w *TerminalWindow) Height() uint32 { return w.height }

// RequestRedraw marks the window dirty. TakeRedrawRequest reads and clears
// the flag; the runtime does not repaint in response to it.
func (w *TerminalWindow) RequestRedraw() {
	w.redrawRequested = true
}

// TakeRedrawRequest returns and clears the dirty flag.
func (w *TerminalWindow) TakeRedrawRequest() bool {
	r := w.redrawRequested
	w.redrawRequested = false
	return r
}

// Repaint draws the canvas. Each text row covers two pixel rows via the
// upper-half-block glyph with independent foreground and background colors.
func (w *TerminalWindow) Repaint(canvas Canvas) error {
	var sb strings.Builder

	for y := uint32(0); y+1 < canvas.Height(); y += 2 {
		for x := uint32(0); x < canvas.Width(); x++ {
			top := canvas.Pixel(x, y)
			bottom := canvas.Pixel(x, y+1)
			cell := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexColor(top))).
				Background(lipgloss.Color(hexColor(bottom)))
			sb.WriteString(cell.Render("▀"))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(w.status.Render(fmt.Sprintf("%dx%d", canvas.Width(), canvas.Height())))
	sb.WriteString("\n")

	_, err := io.WriteString(w.out, sb.String())
	return err
}

func hexColor(argb uint32) string {
	return fmt.Sprintf("#%06x", argb&0xFFFFFF)
}

// NullWindow discards all output. Used by tests and batch runs.
type NullWindow struct {
	W, H uint32
}

// Width returns the window width in pixels.
func (w *NullWindow) Width() uint32 { return w.W }

// Height returns the window height in pixels.
func (w *NullWindow) Height() uint32 { return w.H }

// RequestRedraw is a no-op.
func (w *NullWindow) RequestRedraw() {}

// Repaint is a no-op.
func (w *NullWindow) Repaint(Canvas) error { return nil }
