package export

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/laneboard/pkg/model"
)

// Picture geometry, in pixels.
const (
	picMargin   = 24
	picHeader   = 56
	picLaneW    = 260
	picLaneGap  = 16
	picLaneHead = 36
	picCardH    = 44
	picCardGap  = 10
	picTextMax  = 32
)

var (
	colorBackdrop = color.RGBA{0xf5, 0xf6, 0xf8, 0xff}
	colorLaneBG   = color.RGBA{0xe4, 0xe7, 0xec, 0xff}
	colorCardBG   = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorStroke   = color.RGBA{0xb8, 0xbf, 0xc9, 0xff}
	colorText     = color.RGBA{0x1f, 0x23, 0x28, 0xff}
	colorSubtle   = color.RGBA{0x6a, 0x73, 0x7d, 0xff}
)

// laneAccent is the stripe colour of a lane header.
func laneAccent(lane model.LaneID) color.RGBA {
	switch lane {
	case model.LaneInProgress:
		return color.RGBA{0xf0, 0xb4, 0x29, 0xff}
	case model.LaneDone:
		return color.RGBA{0x2e, 0xa0, 0x43, 0xff}
	default:
		return color.RGBA{0x3b, 0x82, 0xf6, 0xff}
	}
}

type picCard struct {
	X, Y, W, H int
	Card       model.Card
}

type picLane struct {
	X, Y, W, H int
	Lane       model.LaneID
	Cards      []picCard
}

type picture struct {
	Width, Height int
	Title         string
	Lanes         []picLane
}

// buildPicture lays the lanes out side by side, each as tall as the fullest.
func buildPicture(s model.BoardState) picture {
	most := 0
	for _, lane := range model.Lanes {
		most = max(most, len(s.Lane(lane)))
	}
	laneH := picLaneHead + picCardGap + max(most, 1)*(picCardH+picCardGap)

	p := picture{
		Width:  2*picMargin + len(model.Lanes)*picLaneW + (len(model.Lanes)-1)*picLaneGap,
		Height: picMargin + picHeader + laneH + picMargin,
		Title:  fmt.Sprintf("Board: %d cards", s.TotalCards()),
	}
	for i, lane := range model.Lanes {
		pl := picLane{
			X:    picMargin + i*(picLaneW+picLaneGap),
			Y:    picMargin + picHeader,
			W:    picLaneW,
			H:    laneH,
			Lane: lane,
		}
		for j, c := range s.Lane(lane) {
			pl.Cards = append(pl.Cards, picCard{
				X:    pl.X + picCardGap,
				Y:    pl.Y + picLaneHead + picCardGap + j*(picCardH+picCardGap),
				W:    pl.W - 2*picCardGap,
				H:    picCardH,
				Card: c,
			})
		}
		p.Lanes = append(p.Lanes, pl)
	}
	return p
}

func saveSVG(s model.BoardState, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := renderSVG(f, buildPicture(s)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func renderSVG(w io.Writer, p picture) error {
	canvas := svg.New(w)
	canvas.Start(p.Width, p.Height)
	canvas.Rect(0, 0, p.Width, p.Height, "fill:"+css(colorBackdrop))
	canvas.Text(picMargin, picMargin+24, p.Title,
		fmt.Sprintf("fill:%s;font-size:18px;font-family:monospace;font-weight:bold", css(colorText)))

	for _, l := range p.Lanes {
		canvas.Roundrect(l.X, l.Y, l.W, l.H, 10, 10,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorLaneBG), css(colorStroke)))
		canvas.Rect(l.X, l.Y, l.W, 4, "fill:"+css(laneAccent(l.Lane)))
		canvas.Text(l.X+12, l.Y+24, fmt.Sprintf("%s (%d)", l.Lane.Title(), len(l.Cards)),
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
		for _, c := range l.Cards {
			canvas.Roundrect(c.X, c.Y, c.W, c.H, 6, 6,
				fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorCardBG), css(colorStroke)))
			canvas.Text(c.X+10, c.Y+19, truncate(c.Card.Text, picTextMax),
				fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorText)))
			canvas.Text(c.X+10, c.Y+35, c.Card.ID,
				fmt.Sprintf("fill:%s;font-size:10px;font-family:monospace", css(colorSubtle)))
		}
	}
	canvas.End()
	return nil
}

func savePNG(s model.BoardState, path string) error {
	return renderPNG(buildPicture(s)).SavePNG(path)
}

func renderPNG(p picture) *gg.Context {
	dc := gg.NewContext(p.Width, p.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorText)
	dc.DrawStringAnchored(p.Title, picMargin, picMargin+20, 0, 0.5)

	for _, l := range p.Lanes {
		x, y, w, h := float64(l.X), float64(l.Y), float64(l.W), float64(l.H)
		dc.SetColor(colorLaneBG)
		dc.DrawRoundedRectangle(x, y, w, h, 10)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1)
		dc.DrawRoundedRectangle(x, y, w, h, 10)
		dc.Stroke()
		dc.SetColor(laneAccent(l.Lane))
		dc.DrawRectangle(x, y, w, 4)
		dc.Fill()
		dc.SetColor(colorText)
		dc.DrawStringAnchored(fmt.Sprintf("%s (%d)", l.Lane.Title(), len(l.Cards)), x+12, y+20, 0, 0.5)

		for _, c := range l.Cards {
			drawCard(dc, c)
		}
	}
	return dc
}

func drawCard(dc *gg.Context, c picCard) {
	x, y, w, h := float64(c.X), float64(c.Y), float64(c.W), float64(c.H)
	dc.SetColor(colorCardBG)
	dc.DrawRoundedRectangle(x, y, w, h, 6)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.DrawRoundedRectangle(x, y, w, h, 6)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored(truncate(c.Card.Text, picTextMax), x+10, y+15, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(c.Card.ID, x+10, y+32, 0, 0.5)
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
