package frame

import (
	"gocv.io/x/gocv"
)

// QuitKey closes the demos when pressed in any window.
const QuitKey = 'q'

// Display owns the preview windows of a demo. A headless Display accepts
// every call and shows nothing, so pipelines run unchanged on servers.
type Display struct {
	headless bool
	windows  map[string]*gocv.Window
	order    []string
}

// NewDisplay returns a Display. Windows are created on first Show.
func NewDisplay(headless bool) *Display {
	return &Display{
		headless: headless,
		windows:  make(map[string]*gocv.Window),
	}
}

// Headless reports whether the display shows nothing.
func (d *Display) Headless() bool {
	return d == nil || d.headless
}

// Show draws img in the window called name.
func (d *Display) Show(name string, img gocv.Mat) {
	if d.Headless() || img.Empty() {
		return
	}
	w, ok := d.windows[name]
	if !ok {
		w = gocv.NewWindow(name)
		d.windows[name] = w
		d.order = append(d.order, name)
	}
	w.IMShow(img)
}

// Poll pumps window events for up to delay milliseconds and reports whether
// the quit key was pressed.
func (d *Display) Poll(delay int) bool {
	w := d.first()
	if w == nil {
		return false
	}
	if delay < 1 {
		delay = 1
	}
	return w.WaitKey(delay)&0xFF == QuitKey
}

// Wait blocks until any key is pressed in a window. It returns at once when
// nothing is shown.
func (d *Display) Wait() {
	if w := d.first(); w != nil {
		w.WaitKey(0)
	}
}

func (d *Display) first() *gocv.Window {
	if d.Headless() || len(d.order) == 0 {
		return nil
	}
	return d.windows[d.order[0]]
}

// Close destroys every window.
func (d *Display) Close() {
	if d == nil {
		return
	}
	for _, name := range d.order {
		d.windows[name].Close()
	}
	d.windows = make(map[string]*gocv.Window)
	d.order = nil
}
