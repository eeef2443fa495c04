package service

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
)

const (
	// HeroMaxWidth caps newsletter hero images; email clients render a
	// 600px card so anything wider is wasted bytes.
	HeroMaxWidth = 600
	// CoverMaxWidth caps article cover images served on the site.
	CoverMaxWidth = 1200

	jpegQuality = 70
)

// ProcessImage normalizes an uploaded image stored at rel inside
// mediaRoot: transparency is flattened onto white, the image is
// downscaled proportionally when wider than maxWidth, and the result is
// written next to the original as a quality-reduced JPEG with a .jpg
// extension. The new media-relative path is returned. The original file
// is left on disk; callers keep the old path on any error.
func ProcessImage(mediaRoot, rel string, maxWidth int) (string, error) {
	srcPath := filepath.Join(mediaRoot, filepath.FromSlash(rel))

	file, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	flattened := flattenOnWhite(src)

	if maxWidth > 0 && flattened.Bounds().Dx() > maxWidth {
		flattened = downscale(flattened, maxWidth)
	}

	newRel := replaceExt(rel, ".jpg")
	dstPath := filepath.Join(mediaRoot, filepath.FromSlash(newRel))

	out, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, flattened, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}

	return newRel, nil
}

// flattenOnWhite composites the source over a white background so
// transparent regions do not turn black when encoded as JPEG.
func flattenOnWhite(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	return dst
}

func downscale(src *image.RGBA, maxWidth int) *image.RGBA {
	width := src.Bounds().Dx()
	height := src.Bounds().Dy()
	newHeight := height * maxWidth / width

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

func replaceExt(rel, newExt string) string {
	ext := filepath.Ext(rel)
	if ext == "" {
		return rel + newExt
	}
	return strings.TrimSuffix(rel, ext) + newExt
}
