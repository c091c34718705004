package debug

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Spy 矩阵非零元素分布图
type Spy struct {
	Record
	Side vg.Length // 图像边长,0 为 6 英寸
}

// Plot 生成分布图,行号自上而下递增
func (s *Spy) Plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("matrix %dx%d, %d non-zeros", s.Record.Size, s.Record.Size, len(s.Matrix))
	p.X.Label.Text = "column"
	p.Y.Label.Text = "row"
	n := float64(max(s.Record.Size, 1))
	p.X.Min, p.X.Max = 0.5, n+0.5
	p.Y.Min, p.Y.Max = -n-0.5, -0.5
	p.Y.Tick.Marker = rowTicks{}
	p.Add(plotter.NewGrid())

	if len(s.Matrix) == 0 {
		return p, nil
	}
	xys := make(plotter.XYs, len(s.Matrix))
	for i, rc := range s.Matrix {
		xys[i].X = float64(rc[1])
		xys[i].Y = -float64(rc[0])
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Shape = draw.BoxGlyph{}
	scatter.GlyphStyle.Color = color.RGBA{R: 0x19, G: 0x87, B: 0xc7, A: 0xff}
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter)
	return p, nil
}

// Render 输出 SVG
func (s *Spy) Render(w io.Writer) error {
	p, err := s.Plot()
	if err != nil {
		return err
	}
	size := s.Side
	if size == 0 {
		size = 6 * vg.Inch
	}
	canvas := vgsvg.New(size, size)
	p.Draw(draw.New(canvas))
	_, err = canvas.WriteTo(w)
	return err
}

// rowTicks 纵轴显示正的行号
type rowTicks struct{}

func (rowTicks) Ticks(lo, hi float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(lo, hi)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = fmt.Sprintf("%g", -ticks[i].Value)
		}
	}
	return ticks
}
