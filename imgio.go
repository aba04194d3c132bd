package textsteg

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/bmp"
)

// Output containers. Only lossless formats are written, since anything else destroys the hidden bits.
const (
	FormatPNG = "png"
	FormatBMP = "bmp"
)

// UnsupportedFormatError is returned when asked to write an image in a container other than PNG or BMP.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("The output format %q is not supported. Only png and bmp keep the hidden bits intact.", e.Format)
}

// ImageInfo describes an image on disk without loading its pixels.
type ImageInfo struct {
	Path     string
	Format   string
	W, H     int
	Capacity int64 // The largest message in bytes that fits.
}

func (info ImageInfo) String() string {
	return fmt.Sprintf("%v: %dx%d px %v, %d B", info.Path, info.W, info.H, info.Format, info.Capacity)
}

// Primary methods

// LoadImage decodes the image at imgPath into a Buffer and returns it along with the name of its format.
func LoadImage(imgPath string, logger *slog.Logger) (*Buffer, string, error) {
	imgFile, err := os.Open(imgPath)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image %q: %w", imgPath, err)
	}

	defer func() {
		if closeErr := imgFile.Close(); closeErr != nil {
			logger.Error("could not close image", "path", imgPath, "error", closeErr)
		}
	}()

	img, format, err := image.Decode(imgFile)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image %q: %w", imgPath, err)
	}
	logger.Debug("Decoded image", "path", imgPath, "format", format, "colour_model", colourModelToStr(img))

	return FromImage(img), format, nil
}

// ImageCapacity reads only the header of the image at imgPath and reports how much text it can hold.
func ImageCapacity(imgPath string) (ImageInfo, error) {
	imgFile, err := os.Open(imgPath)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("could not open image %q: %w", imgPath, err)
	}
	defer imgFile.Close()

	conf, format, err := image.DecodeConfig(imgFile)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("could not read image %q: %w", imgPath, err)
	}

	return ImageInfo{
		Path:     imgPath,
		Format:   format,
		W:        conf.Width,
		H:        conf.Height,
		Capacity: Capacity(conf.Width, conf.Height),
	}, nil
}

// WriteImage saves buf to outPath and returns the path actually written.
// A .bmp extension selects BMP, .png selects PNG, and any other path has .png appended.
// BMP output is 24-bit, so translucent pixels come back fully opaque; the hidden bits are unaffected.
// The image is written to a temporary file next to the destination and renamed into place once complete.
func WriteImage(buf *Buffer, outPath string, logger *slog.Logger) (written string, err error) {
	outPath, format := ResolveOutPath(outPath)
	if format == FormatBMP && !buf.Opaque() {
		logger.Warn("BMP output drops transparency, every pixel will be written fully opaque", "path", outPath)
	}
	destDir, destName := filepath.Split(outPath)
	if destDir == "" {
		destDir = "."
	}

	outFile, err := os.CreateTemp(destDir, destName+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("could not create temporary destination for %q: %w", outPath, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", outFile.Name(), defErr)
		}
		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), outPath); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", outPath, defErr)
			}
		}
		if err != nil {
			if rmErr := os.Remove(outFile.Name()); rmErr != nil {
				logger.Error("could not remove temporary destination", "path", outFile.Name(), "error", rmErr)
			}
			written = ""
		}
	}()

	if err = EncodeImage(outFile, buf, format); err != nil {
		return "", fmt.Errorf("could not encode %v destination %q: %w", format, outPath, err)
	}
	if err = outFile.Sync(); err != nil {
		return "", fmt.Errorf("could not flush temporary destination %q: %w", outFile.Name(), err)
	}

	canRename = true
	logger.Debug("Encoded image", "path", outPath, "format", format)
	return outPath, nil
}

// EncodeImage writes buf to w in the given container format.
func EncodeImage(w io.Writer, buf *Buffer, format string) error {
	img := buf.Image()
	switch format {
	case FormatPNG:
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		return enc.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return &UnsupportedFormatError{Format: format}
	}
}

// ResolveOutPath picks the output container for a path, appending .png when the extension names neither.
func ResolveOutPath(outPath string) (string, string) {
	switch strings.ToLower(filepath.Ext(outPath)) {
	case "." + FormatBMP:
		return outPath, FormatBMP
	case "." + FormatPNG:
		return outPath, FormatPNG
	default:
		return outPath + "." + FormatPNG, FormatPNG
	}
}

// Helper functions

func colourModelToStr(img image.Image) string {
	switch img.(type) {
	case *image.Alpha16:
		return "Alpha16"
	case *image.Alpha:
		return "Alpha"
	case *image.CMYK:
		return "CMYK"
	case *image.Gray16:
		return "Gray16"
	case *image.Gray:
		return "Gray"
	case *image.NRGBA64:
		return "NRGBA64"
	case *image.NRGBA:
		return "NRGBA"
	case *image.RGBA64:
		return "RGBA64"
	case *image.RGBA:
		return "RGBA"
	case *image.NYCbCrA:
		return "NYCbCrA"
	case *image.YCbCr:
		return "YCbCr"
	case *image.Paletted:
		return "Paletted"
	default:
		return "<Unknown>"
	}
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
