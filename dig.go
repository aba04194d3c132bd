package textsteg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/zedseven/binmani"
	"github.com/zedseven/textsteg/internal/algos"
)

// Types

// DigConfig stores the configuration options for the Dig operation.
type DigConfig struct {
	ImagePath   string      // The path on disk to a supported image.
	OutPath     string      // The path on disk to write the recovered text to. Optional.
	Lenient     bool        // Whether to replace invalid UTF-8 with U+FFFD instead of failing.
	OutputLevel OutputLevel // The amount of output to provide.
}

// Primary methods

// Decode recovers a message previously hidden with Encode.
// It returns a *DecodeError if the hidden bytes are not valid UTF-8.
func Decode(src PixelSource) (string, error) {
	payload, err := digPayload(src)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(payload) {
		return "", &DecodeError{Payload: payload}
	}
	return string(payload), nil
}

// DecodeLenient is like Decode, but replaces each run of invalid UTF-8 bytes with U+FFFD instead of failing.
func DecodeLenient(src PixelSource) (string, error) {
	payload, err := digPayload(src)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(payload), string(utf8.RuneError)), nil
}

// Dig extracts the text hidden in an image on disk, and optionally saves it to a file.
func Dig(config DigConfig) (string, error) {
	// Input validation
	if len(config.ImagePath) <= 0 {
		return "", &InvalidFormatError{"ImagePath is empty."}
	}

	logger := NewLogger(os.Stderr, config.OutputLevel)
	logger.Debug("This tool has been set to display debug output.")

	logger.Info("Loading the image", "path", config.ImagePath)
	src, format, err := LoadImage(config.ImagePath, logger)
	if err != nil {
		return "", err
	}

	logInfo(logger, "Image info", "format", format, "width", src.Width(), "height", src.Height(),
		"slots", algos.SlotCount(src.Width(), src.Height()))

	logger.Info("Reading the message from the image")
	var text string
	if config.Lenient {
		text, err = DecodeLenient(src)
	} else {
		text, err = Decode(src)
	}
	if err != nil {
		var lenErr *InvalidLengthError
		if errors.As(err, &lenErr) {
			logger.Debug("Read length field", "length", lenErr.Length)
		}
		return "", err
	}

	logInfo(logger, "Message info", "bytes", len(text))

	if len(config.OutPath) > 0 {
		logger.Info("Writing the message", "path", config.OutPath)
		if err = os.WriteFile(config.OutPath, []byte(text), 0o644); err != nil {
			return "", fmt.Errorf("could not write message file %q: %w", config.OutPath, err)
		}
	}

	logger.Info("All done! c:")

	return text, nil
}

// Helper functions

// digPayload reads and validates the length field, then reads that many payload bytes.
func digPayload(src PixelSource) ([]byte, error) {
	w, h := src.Width(), src.Height()
	slots := algos.SlotCount(w, h)
	if slots < lengthFieldBits {
		return nil, &TruncatedLengthError{AvailableBits: slots}
	}

	next := algos.SequentialAddressor(slots)

	header := make([]byte, lengthFieldBytes)
	if err := digBytes(src, next, header); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header)
	if length == 0 || uint64(length) > maxMessageLength || frameBits(uint64(length)) > slots {
		return nil, &InvalidLengthError{Length: length, AvailableBits: slots}
	}

	payload := make([]byte, length)
	if err := digBytes(src, next, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// digBytes fills buf with bits read from the next slots, most-significant bit first.
func digBytes(src PixelSource, pos func() (uint64, error), buf []byte) error {
	w, h := src.Width(), src.Height()
	for i := range buf {
		for j := uint8(0); j < bitsPerByte; j++ {
			addr, err := pos()
			if err != nil {
				return &InvalidLengthError{AvailableBits: algos.SlotCount(w, h)}
			}
			x, y, c := algos.Locate(addr, w, h)

			readBit := uint16(src.ARGB(x, y)[c] & 1)
			buf[i] = byte(binmani.WriteTo(uint16(buf[i]), bitsPerByte-j-1, 1, readBit))
		}
	}
	return nil
}
