package renderer

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveFrame(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}
	src.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	src.SetRGBA(2, 1, color.RGBA{10, 20, 30, 255})

	dir := t.TempDir()
	for index, name := range []string{"frame.png", "frame.bmp", "frame.tiff", "FRAME.TIF"} {
		path := filepath.Join(dir, name)
		if err := SaveFrame(src, path); err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		decoded, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("[spec %d] could not decode %s: %v", index, name, err)
		}

		for _, pt := range []image.Point{{0, 0}, {2, 1}, {1, 1}} {
			expR, expG, expB, _ := src.At(pt.X, pt.Y).RGBA()
			r, g, b, _ := decoded.At(pt.X, pt.Y).RGBA()
			if r != expR || g != expG || b != expB {
				t.Fatalf("[spec %d] expected pixel %v to be (%d, %d, %d); got (%d, %d, %d)", index, pt, expR, expG, expB, r, g, b)
			}
		}
	}
}

func TestSaveFrameUnsupportedFormat(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	path := filepath.Join(t.TempDir(), "frame.jpg")
	if err := SaveFrame(img, path); err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file to be created; got %v", err)
	}
}

func TestStampFrame(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 40))
	if err := StampFrame(img, "16 spp"); err != nil {
		t.Fatal(err)
	}

	var changed bool
	for _, v := range img.Pix {
		if v != 0 {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatal("expected caption pixels to be drawn")
	}
}
