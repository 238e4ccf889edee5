package host

import (
	"fmt"
	"image"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/c8/chip8"
)

// guiScale is the size of a CHIP-8 pixel in the window buffer.
const guiScale = 10

func (r *Runner) runGUI() (err error) {
	driver.Main(func(s screen.Screen) {
		err = r.gui(s)
	})
	return err
}

func (r *Runner) gui(s screen.Screen) error {
	var (
		small   = image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height))
		bufSize = small.Bounds().Size().Mul(guiScale)
	)
	w, err := s.NewWindow(&screen.NewWindowOptions{
		Title:  "c8",
		Width:  bufSize.X,
		Height: bufSize.Y,
	})
	if err != nil {
		return err
	}
	defer w.Release()

	buf, err := s.NewBuffer(bufSize)
	if err != nil {
		return err
	}
	defer buf.Release()
	tex, err := s.NewTexture(bufSize)
	if err != nil {
		return err
	}
	defer tex.Release()

	type update struct{}
	go func() {
		t := time.NewTicker(time.Second / TickRate)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				w.Send(update{})
			case <-r.done:
				w.Send(update{})
				return
			}
		}
	}()

	drawImage(small, chip8.Frame{})
	var (
		sz    size.Event
		dirty = true
	)
	for {
		e := w.NextEvent()

		select {
		case <-r.done:
			return nil
		default:
		}

		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return nil
			}

		case size.Event:
			sz = e
			if sz.WidthPx+sz.HeightPx == 0 {
				return nil
			}
			dirty = true

		case paint.Event:
			dirty = true

		case key.Event:
			if e.Code == key.CodeEscape {
				return nil
			}
			if k, ok := keyForCode(e.Code); ok && e.Direction != key.DirNone {
				r.keys.Set(k, e.Direction == key.DirPress)
			}

		case update:
			select {
			case fr := <-r.frames:
				drawImage(small, fr.Display)
				draw.NearestNeighbor.Scale(buf.RGBA(), buf.Bounds(), small, small.Bounds(), draw.Src, nil)
				tex.Upload(image.Point{}, buf, buf.Bounds())
				dirty = true
			default:
			}
			if dirty && sz.WidthPx > 0 {
				w.Scale(sz.Bounds(), tex, tex.Bounds(), draw.Src, nil)
				w.Publish()
				dirty = false
			}

		case error:
			log.Print(e)

		default:
			if r.cfg.Trace {
				format := "gui: got %#v"
				if _, ok := e.(fmt.Stringer); ok {
					format = "gui: got %v"
				}
				log.Printf(format, e)
			}
		}
	}
}
