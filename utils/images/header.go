// Package images reads pixel dimensions straight from raster image headers.
// Nothing here decodes image data.
package images

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupported is returned for file types without a header parser.
	ErrUnsupported = errors.New("unsupported image type")
	// ErrMalformed is returned when the header does not match its format.
	ErrMalformed = errors.New("malformed image header")
)

// Size is intrinsic image size in pixels.
type Size struct {
	Width  int
	Height int
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// ReadSize returns pixel dimensions of the image at path. Format is selected
// by file extension, only as many bytes as the header needs are read.
func ReadSize(path string) (Size, error) {
	var parse func(io.Reader) (Size, error)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		parse = readPNG
	case ".jpg", ".jpeg":
		parse = readJPEG
	case ".gif":
		parse = readGIF
	case ".bmp":
		parse = readBMP
	default:
		return Size{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}

	f, err := os.Open(path)
	if err != nil {
		return Size{}, err
	}
	defer f.Close()

	sz, err := parse(bufio.NewReaderSize(f, 512))
	if err != nil {
		return Size{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return sz, nil
}

// readPNG expects signature followed by IHDR chunk: width and height are
// big-endian uint32 at offsets 16 and 20.
func readPNG(r io.Reader) (Size, error) {
	var hdr [24]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Size{}, ErrMalformed
	}
	if !bytes.Equal(hdr[:8], pngSignature) {
		return Size{}, ErrMalformed
	}
	return Size{
		Width:  int(binary.BigEndian.Uint32(hdr[16:20])),
		Height: int(binary.BigEndian.Uint32(hdr[20:24])),
	}, nil
}

// isFrameMarker reports whether marker starts a frame (SOF0-SOF15). 0xC4
// (DHT), 0xC8 (JPG) and 0xCC (DAC) share the range but are not frames.
func isFrameMarker(m byte) bool {
	return m >= 0xC0 && m <= 0xCF && m != 0xC4 && m != 0xC8 && m != 0xCC
}

// hasNoLength reports markers which are not followed by segment length.
func hasNoLength(m byte) bool {
	return m == 0x01 || (m >= 0xD0 && m <= 0xD9)
}

func readJPEG(r io.Reader) (Size, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var soi [2]byte
	if _, err := io.ReadFull(br, soi[:]); err != nil || soi[0] != 0xFF || soi[1] != 0xD8 {
		return Size{}, ErrMalformed
	}

	for {
		b, err := br.ReadByte()
		if err != nil {
			return Size{}, ErrMalformed
		}
		if b != 0xFF {
			return Size{}, ErrMalformed
		}
		// skip fill bytes
		m := byte(0xFF)
		for m == 0xFF {
			if m, err = br.ReadByte(); err != nil {
				return Size{}, ErrMalformed
			}
		}
		if m == 0xD9 || m == 0xDA {
			// end of image or start of scan before any frame header
			return Size{}, ErrMalformed
		}
		if hasNoLength(m) {
			continue
		}

		var length uint16
		if err := binary.Read(br, binary.BigEndian, &length); err != nil || length < 2 {
			return Size{}, ErrMalformed
		}

		if isFrameMarker(m) {
			var frame struct {
				Precision uint8
				Height    uint16
				Width     uint16
			}
			if err := binary.Read(br, binary.BigEndian, &frame); err != nil {
				return Size{}, ErrMalformed
			}
			return Size{Width: int(frame.Width), Height: int(frame.Height)}, nil
		}

		if _, err := br.Discard(int(length) - 2); err != nil {
			return Size{}, ErrMalformed
		}
	}
}

// readGIF: logical screen descriptor follows 6 byte signature, little-endian.
func readGIF(r io.Reader) (Size, error) {
	var hdr [10]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Size{}, ErrMalformed
	}
	if sig := string(hdr[:6]); sig != "GIF87a" && sig != "GIF89a" {
		return Size{}, ErrMalformed
	}
	return Size{
		Width:  int(binary.LittleEndian.Uint16(hdr[6:8])),
		Height: int(binary.LittleEndian.Uint16(hdr[8:10])),
	}, nil
}

// readBMP reads BITMAPINFOHEADER dimensions. Height is negative for top-down
// bitmaps.
func readBMP(r io.Reader) (Size, error) {
	var hdr [26]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Size{}, ErrMalformed
	}
	if hdr[0] != 'B' || hdr[1] != 'M' {
		return Size{}, ErrMalformed
	}
	w := int32(binary.LittleEndian.Uint32(hdr[18:22]))
	h := int32(binary.LittleEndian.Uint32(hdr[22:26]))
	if h < 0 {
		h = -h
	}
	return Size{Width: int(w), Height: int(h)}, nil
}
