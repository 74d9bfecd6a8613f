package runner

import (
	"image"
	"image/draw"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/intcode/intcode"
)

// GUI displays a live memory map of a running machine in a window.
type GUI struct {
	mu  sync.Mutex
	mem []int
	pc  int
	gen int // incremented by each Update

	drawn int // gen of the last frame uploaded to tex
	size  image.Point
	buf   screen.Buffer
	tex   screen.Texture
}

// NewGUI returns a GUI with nothing to show.
func NewGUI() *GUI {
	return &GUI{drawn: -1}
}

// Update records the memory and PC of m for display.
// It is safe to call from any goroutine.
func (g *GUI) Update(m *intcode.Machine) {
	g.mu.Lock()
	g.mem = append(g.mem[:0], m.Mem...)
	g.pc = m.PC
	g.gen++
	g.mu.Unlock()
}

// Frame renders the most recent update and returns its generation.
func (g *GUI) Frame() (*image.RGBA, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return MemoryImage(g.mem, g.pc), g.gen
}

// Run opens the window and refreshes it until exit is closed or the window
// is closed by the user.
func (g *GUI) Run(exit <-chan bool) (err error) {
	logger := zap.L().Named("gui")
	driver.Main(func(s screen.Screen) {
		var w screen.Window
		w, err = s.NewWindow(&screen.NewWindowOptions{Title: "intcode"})
		if err != nil {
			return
		}
		defer w.Release()

		type update struct{}
		go func() {
			t := time.NewTicker(time.Second / 60)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					return
				}
			}
		}()

		defer g.release()

		var sz size.Event
		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				g.drawn = -1

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case key.Event:
				if e.Code == key.CodeEscape && e.Direction == key.DirPress {
					return
				}

			case paint.Event:
				g.drawn = -1

			case update:
				changed, uerr := g.upload(s)
				if uerr != nil {
					err = uerr
					return
				}
				if changed {
					w.Scale(sz.Bounds(), g.tex, g.tex.Bounds(), draw.Src, nil)
					w.Publish()
				}

			case error:
				logger.Warn("window event", zap.Error(e))
			}
		}
	})
	return err
}

// upload copies the current frame into the window texture if it has
// changed since the last upload, and reports whether it did so.
func (g *GUI) upload(s screen.Screen) (changed bool, err error) {
	img, gen := g.Frame()
	if gen == g.drawn {
		return false, nil
	}
	if g.tex == nil || g.size != img.Bounds().Size() {
		g.release()
		g.size = img.Bounds().Size()
		if g.buf, err = s.NewBuffer(g.size); err != nil {
			return false, err
		}
		if g.tex, err = s.NewTexture(g.size); err != nil {
			return false, err
		}
	}
	draw.Draw(g.buf.RGBA(), g.buf.Bounds(), img, image.Point{}, draw.Src)
	g.tex.Upload(image.Point{}, g.buf, g.buf.Bounds())
	g.drawn = gen
	return true, nil
}

func (g *GUI) release() {
	if g.tex != nil {
		g.tex.Release()
		g.tex = nil
	}
	if g.buf != nil {
		g.buf.Release()
		g.buf = nil
	}
}
