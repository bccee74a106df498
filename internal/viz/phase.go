package viz

import "errors"

var (
	ErrShortTrajectory = errors.New("viz: phase portrait needs at least two samples")
	ErrSeriesMismatch  = errors.New("viz: displacement and velocity series differ in length")
)

// PhasePortrait renders a displacement-velocity trajectory as a braille
// plot. Consecutive samples are joined, so a closed orbit draws an ellipse
// and a decaying one a spiral. Zero axes appear when they fall inside the
// data range.
func PhasePortrait(xs, vs []float64, cols, rows int) (string, error) {
	if len(xs) != len(vs) {
		return "", ErrSeriesMismatch
	}
	if len(xs) < 2 {
		return "", ErrShortTrajectory
	}

	minX, maxX := seriesBounds(xs)
	minV, maxV := seriesBounds(vs)
	minX, maxX = padRange(minX, maxX)
	minV, maxV = padRange(minV, maxV)

	c := NewCanvas(cols, rows)
	pw, ph := c.PixelWidth(), c.PixelHeight()

	toX := func(x float64) int { return int((x - minX) / (maxX - minX) * float64(pw-1)) }
	toY := func(v float64) int { return ph - 1 - int((v-minV)/(maxV-minV)*float64(ph-1)) }

	if minX <= 0 && 0 <= maxX {
		c.VLine(toX(0), 0, ph-1)
	}
	if minV <= 0 && 0 <= maxV {
		c.Line(0, toY(0), pw-1, toY(0))
	}

	px, py := toX(xs[0]), toY(vs[0])
	for i := 1; i < len(xs); i++ {
		nx, ny := toX(xs[i]), toY(vs[i])
		c.Line(px, py, nx, ny)
		px, py = nx, ny
	}
	return c.String(), nil
}

// padRange widens a range by 10% on both sides; a degenerate range becomes
// a unit interval around the value.
func padRange(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		return lo - 0.5, hi + 0.5
	}
	return lo - span*0.1, hi + span*0.1
}

func seriesBounds(s []float64) (lo, hi float64) {
	lo, hi = s[0], s[0]
	for _, v := range s[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
