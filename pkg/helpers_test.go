package pkg_test

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// createTestFile creates a generic file with a controlled modification time.
func createTestFile(t *testing.T, dir, name string, content []byte, modTime time.Time) string {
	t.Helper()
	filePath := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		t.Fatalf("Failed to create parent directory for %s: %v", filePath, err)
	}
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		t.Fatalf("Failed to write test file %s: %v", filePath, err)
	}
	if err := os.Chtimes(filePath, modTime, modTime); err != nil {
		t.Fatalf("Failed to change mod time for %s: %v", filePath, err)
	}
	return filePath
}

// createTestImage creates a small PNG, JPEG, or GIF image file.
func createTestImage(t *testing.T, dir, name string, format string, modTime time.Time) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{100, 200, 200, 255})
		}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case "gif":
		err = gif.Encode(&buf, img, &gif.Options{NumColors: 16})
	default:
		t.Fatalf("Unsupported image format for testing: %s", format)
	}
	if err != nil {
		t.Fatalf("Failed to encode test image %s: %v", name, err)
	}
	return createTestFile(t, dir, name, buf.Bytes(), modTime)
}

// createJPEGWithEXIF creates a valid JPEG carrying an EXIF DateTimeOriginal
// tag, by splicing a hand-built APP1 segment after the SOI marker.
func createJPEGWithEXIF(t *testing.T, dir, name, dateTimeOriginal string, modTime time.Time) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("Failed to encode test JPEG %s: %v", name, err)
	}
	encoded := buf.Bytes()

	app1 := buildExifAPP1(dateTimeOriginal)
	data := make([]byte, 0, len(encoded)+len(app1))
	data = append(data, encoded[:2]...) // SOI
	data = append(data, app1...)
	data = append(data, encoded[2:]...)
	return createTestFile(t, dir, name, data, modTime)
}

// buildExifAPP1 assembles a minimal little-endian TIFF with a single Exif
// sub-IFD holding DateTimeOriginal, wrapped in a JPEG APP1 segment.
func buildExifAPP1(dateTimeOriginal string) []byte {
	value := append([]byte(dateTimeOriginal), 0x00)

	var tiff bytes.Buffer
	u16 := func(v uint16) { binary.Write(&tiff, binary.LittleEndian, v) }
	u32 := func(v uint32) { binary.Write(&tiff, binary.LittleEndian, v) }

	tiff.WriteString("II")
	u16(0x2A)
	u32(8) // offset of IFD0

	// IFD0: single entry pointing at the Exif sub-IFD.
	u16(1)
	u16(0x8769) // ExifIFDPointer
	u16(4)      // LONG
	u32(1)
	u32(26) // IFD0 is 18 bytes starting at offset 8
	u32(0)  // no next IFD

	// Exif sub-IFD: DateTimeOriginal.
	u16(1)
	u16(0x9003) // DateTimeOriginal
	u16(2)      // ASCII
	u32(uint32(len(value)))
	u32(44) // value follows this 18-byte IFD at offset 26
	u32(0)

	tiff.Write(value)

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	length := len(payload) + 2
	app1 := []byte{0xFF, 0xE1, byte(length >> 8), byte(length & 0xFF)}
	return append(app1, payload...)
}
