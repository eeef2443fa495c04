package service

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, mediaRoot, rel string, width, height int, fill color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}

	path := filepath.Join(mediaRoot, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
}

func decodeProcessed(t *testing.T, mediaRoot, rel string) image.Image {
	t.Helper()
	file, err := os.Open(filepath.Join(mediaRoot, rel))
	if err != nil {
		t.Fatalf("open processed image: %v", err)
	}
	defer file.Close()
	img, err := jpeg.Decode(file)
	if err != nil {
		t.Fatalf("decode processed image: %v", err)
	}
	return img
}

func TestProcessImageDownscalesAndRenames(t *testing.T) {
	mediaRoot := t.TempDir()
	writeTestPNG(t, mediaRoot, "newsletter/messages/wide.png", 1200, 400, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	newRel, err := ProcessImage(mediaRoot, "newsletter/messages/wide.png", HeroMaxWidth)
	if err != nil {
		t.Fatalf("process image: %v", err)
	}
	if newRel != "newsletter/messages/wide.jpg" {
		t.Fatalf("expected .jpg rename, got %q", newRel)
	}

	img := decodeProcessed(t, mediaRoot, newRel)
	if img.Bounds().Dx() != HeroMaxWidth {
		t.Fatalf("expected width %d, got %d", HeroMaxWidth, img.Bounds().Dx())
	}
	if img.Bounds().Dy() != 200 {
		t.Fatalf("expected proportional height 200, got %d", img.Bounds().Dy())
	}
}

func TestProcessImageKeepsSmallImagesUnscaled(t *testing.T) {
	mediaRoot := t.TempDir()
	writeTestPNG(t, mediaRoot, "wawasan/covers/small.png", 300, 150, color.RGBA{R: 200, G: 50, B: 50, A: 255})

	newRel, err := ProcessImage(mediaRoot, "wawasan/covers/small.png", CoverMaxWidth)
	if err != nil {
		t.Fatalf("process image: %v", err)
	}

	img := decodeProcessed(t, mediaRoot, newRel)
	if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 150 {
		t.Fatalf("small image must keep its dimensions, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestProcessImageFlattensTransparencyOntoWhite(t *testing.T) {
	mediaRoot := t.TempDir()
	writeTestPNG(t, mediaRoot, "hero.png", 100, 100, color.RGBA{})

	newRel, err := ProcessImage(mediaRoot, "hero.png", HeroMaxWidth)
	if err != nil {
		t.Fatalf("process image: %v", err)
	}

	img := decodeProcessed(t, mediaRoot, newRel)
	r, g, b, _ := img.At(50, 50).RGBA()
	// JPEG is lossy; near-white is close enough.
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Fatalf("transparent pixels must flatten to white, got r=%d g=%d b=%d", r>>8, g>>8, b>>8)
	}
}

func TestProcessImageMissingFile(t *testing.T) {
	if _, err := ProcessImage(t.TempDir(), "nope.png", HeroMaxWidth); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
