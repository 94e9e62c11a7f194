package graphics

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Texture is a 2D RGBA texture resident on the device.
type Texture struct {
	id     uint32
	name   string
	path   string
	handle uint32
	width  int
	height int
	dev    Device
}

func (t *Texture) AssetID() uint32   { return t.id }
func (t *Texture) AssetName() string { return t.name }
func (t *Texture) Path() string      { return t.path }
func (t *Texture) Handle() uint32    { return t.handle }
func (t *Texture) Width() int        { return t.width }
func (t *Texture) Height() int       { return t.height }

// Release deletes the device texture.
func (t *Texture) Release() {
	if t.handle != 0 && t.dev != nil {
		t.dev.DeleteTexture(t.handle)
	}
	t.handle = 0
}

// Bind makes the texture current.
func (t *Texture) Bind() {
	t.dev.BindTexture(t.handle)
}

// DecodeImage decodes any registered image format into RGBA.
func DecodeImage(r io.Reader) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}

// NewTexture uploads img.
func NewTexture(dev Device, id uint32, name string, img *image.RGBA) (*Texture, error) {
	handle, err := dev.CreateTexture(img)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", name, err)
	}
	return &Texture{
		id:     id,
		name:   name,
		handle: handle,
		width:  img.Rect.Dx(),
		height: img.Rect.Dy(),
		dev:    dev,
	}, nil
}

// LoadTexture loads a 2D texture from a file
func LoadTexture(dev Device, id uint32, path string) (*Texture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file: %w", err)
	}
	defer file.Close()

	rgba, err := DecodeImage(file)
	if err != nil {
		return nil, err
	}
	t, err := NewTexture(dev, id, assetName(path), rgba)
	if err != nil {
		return nil, err
	}
	t.path = path
	return t, nil
}
