// Package imageio loads carrier and encoded images and writes results to
// lossless formats only.
//
// Reading accepts JPEG, PNG, GIF and BMP. Writing accepts PNG and BMP; lossy
// or palette-reducing formats would destroy hidden bits and are refused.
package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

var (
	// ErrDecodeIO marks failures to read or decode an image file.
	ErrDecodeIO = errors.New("image decode failed")
	// ErrEncodeIO marks failures to encode or write an image file.
	ErrEncodeIO = errors.New("image encode failed")
	// ErrLossyFormat is returned for output formats that cannot preserve
	// least significant bits.
	ErrLossyFormat = errors.New("lossy output format")
	// ErrUnsupportedFormat is returned for unknown output extensions.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Operation names used in IOError.
const (
	OpDecode = "decode"
	OpEncode = "encode"
)

// IOError wraps the underlying failure of a decode or encode. errors.Is
// matches ErrDecodeIO or ErrEncodeIO by Op, and unwraps to Err.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s image: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool {
	switch target {
	case ErrDecodeIO:
		return e.Op == OpDecode
	case ErrEncodeIO:
		return e.Op == OpEncode
	}
	return false
}

// Load opens and decodes the image at path. It returns the image and the
// registered format name ("png", "jpeg", "gif", "bmp").
func Load(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &IOError{Op: OpDecode, Path: path, Err: err}
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", &IOError{Op: OpDecode, Path: path, Err: err}
	}
	return img, format, nil
}

// Decode decodes an image from r.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", &IOError{Op: OpDecode, Err: err}
	}
	return img, format, nil
}

// CheckOutput reports whether path has an extension Save can write.
func CheckOutput(path string) error {
	return checkExt(filepath.Ext(path))
}

func checkExt(ext string) error {
	switch strings.ToLower(ext) {
	case ".png", ".bmp":
		return nil
	case ".jpg", ".jpeg", ".gif":
		return fmt.Errorf("%w %q: use .png or .bmp", ErrLossyFormat, ext)
	default:
		return fmt.Errorf("%w %q: use .png or .bmp", ErrUnsupportedFormat, ext)
	}
}

// Encode writes img to w in the format named by ext (".png" or ".bmp").
func Encode(w io.Writer, ext string, img image.Image) error {
	if err := checkExt(ext); err != nil {
		return err
	}
	var err error
	switch strings.ToLower(ext) {
	case ".png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(w, img)
	case ".bmp":
		err = bmp.Encode(w, img)
	}
	if err != nil {
		return &IOError{Op: OpEncode, Err: err}
	}
	return nil
}

// Save writes img to path, choosing the format from the extension. The data
// goes to a temporary file in the same directory that is renamed into place
// only after a successful encode, so a failed Save never leaves a partial
// file at path.
func Save(path string, img image.Image) (err error) {
	ext := filepath.Ext(path)
	if err := checkExt(ext); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Op: OpEncode, Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := Encode(tmp, ext, img); err != nil {
		var ioe *IOError
		if errors.As(err, &ioe) {
			ioe.Path = path
		}
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return &IOError{Op: OpEncode, Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: OpEncode, Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &IOError{Op: OpEncode, Path: path, Err: err}
	}
	return nil
}
