package images

import (
	"errors"
	"io"
	"os"

	"github.com/h2non/filetype"
)

// sniffLen is enough for every matcher filetype has.
const sniffLen = 261

// Sniff detects image type by content and returns its canonical extension
// (without dot) and MIME type. Both are empty when type is not recognized.
func Sniff(path string) (ext, mime string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", "", err
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return "", "", nil
	}
	return kind.Extension, kind.MIME.Value, nil
}
