package viz

import (
	"image"
	"image/color"
	"image/gif"
	"os"
)

const (
	cellPxW = 8
	cellPxH = 16
)

// captureFrame rasterizes the canvas into a two-color paletted image,
// one filled rectangle per lit braille dot.
func captureFrame(c *Canvas) *image.Paletted {
	imgW := c.cols * cellPxW
	imgH := c.rows * cellPxH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})

	dotW, dotH := cellPxW/2, cellPxH/4
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			pattern := c.Rune(row, col) - brailleBase
			if pattern == 0 {
				continue
			}
			baseX, baseY := col*cellPxW, row*cellPxH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&dotBits[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, 1)
						}
					}
				}
			}
		}
	}
	return img
}

// saveGIF writes the recorded frames as a looping animation.
func saveGIF(path string, frames []*image.Paletted) error {
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 3)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
