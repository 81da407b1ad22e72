package utils

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"unicode"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const (
	avatarSize     = 100
	avatarFontSize = 50
)

// avatarPalette holds backgrounds dark enough for white glyphs.
var avatarPalette = []color.RGBA{
	{R: 0x1a, G: 0x73, B: 0xe8, A: 0xff},
	{R: 0xd9, G: 0x3b, B: 0x3b, A: 0xff},
	{R: 0x18, G: 0x8a, B: 0x51, A: 0xff},
	{R: 0x8e, G: 0x44, B: 0xad, A: 0xff},
	{R: 0xe6, G: 0x7e, B: 0x22, A: 0xff},
	{R: 0x2c, G: 0x3e, B: 0x50, A: 0xff},
	{R: 0xc2, G: 0x18, B: 0x5b, A: 0xff},
	{R: 0x00, G: 0x79, B: 0x8a, A: 0xff},
}

// LetterAvatarRenderer draws a single uppercase letter centered on a color
// tile and encodes it as PNG. The background color is derived from the
// letter, so renders are deterministic.
type LetterAvatarRenderer struct {
	font *truetype.Font
}

// NewLetterAvatarRenderer parses the embedded typeface once up front.
func NewLetterAvatarRenderer() (*LetterAvatarRenderer, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse avatar font: %w", err)
	}
	return &LetterAvatarRenderer{font: f}, nil
}

// Render produces the PNG avatar blob for one letter.
func (r *LetterAvatarRenderer) Render(letter rune) ([]byte, error) {
	letter = unicode.ToUpper(letter)

	img := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorFor(letter)), image.Point{}, draw.Src)

	face := truetype.NewFace(r.font, &truetype.Options{Size: avatarFontSize})
	defer face.Close()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}

	text := string(letter)
	width := d.MeasureString(text)
	metrics := face.Metrics()
	d.Dot = fixed.Point26_6{
		X: (fixed.I(avatarSize) - width) / 2,
		Y: fixed.I(avatarSize)/2 + (metrics.Ascent-metrics.Descent)/2,
	}
	d.DrawString(text)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

func colorFor(letter rune) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(string(letter)))
	return avatarPalette[h.Sum32()%uint32(len(avatarPalette))]
}
