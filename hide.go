package textsteg

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/zedseven/binmani"
	"github.com/zedseven/textsteg/internal/algos"
)

// HideConfig stores the configuration options for the Hide operation.
type HideConfig struct {
	// ImagePath is the path on disk to a supported image.
	ImagePath string
	// Message is the text to hide. Ignored if MessagePath is set.
	Message string
	// MessagePath is the path on disk to a UTF-8 text file to hide.
	MessagePath string
	// OutPath is the path on disk to write the output image.
	// A .bmp extension writes a BMP, anything other than .png gets .png appended.
	// BMP output drops transparency.
	OutPath string
}

// Primary methods

// Encode hides message in a copy of src and returns the copy. src is never modified.
// message must be non-empty, valid UTF-8.
// Only the least-significant bits of the red, green and blue channels of the first
// 32 + 8*len(message) slots change; everything else, alpha included, is copied as-is.
func Encode(src PixelSource, message string) (*Buffer, error) {
	payload := []byte(message)
	if len(payload) == 0 {
		return nil, &EmptyMessageError{}
	}
	if !utf8.Valid(payload) {
		return nil, &InvalidTextError{Message: payload}
	}

	w, h := src.Width(), src.Height()
	slots := algos.SlotCount(w, h)
	required := frameBits(uint64(len(payload)))
	if uint64(len(payload)) > maxMessageLength || required > slots {
		return nil, &CapacityExceededError{RequiredBits: required, AvailableBits: slots}
	}

	frame := makeFrame(payload)
	dst := CloneBuffer(src)

	next := algos.SequentialAddressor(slots)
	for i := uint64(0); i < required; i++ {
		addr, err := next()
		if err != nil {
			return nil, &CapacityExceededError{RequiredBits: required, AvailableBits: slots, InnerError: err}
		}
		x, y, c := algos.Locate(addr, w, h)

		p := dst.ARGB(x, y)
		p[c] = uint8(binmani.WriteTo(uint16(p[c]), 0, 1, uint16(frameBit(frame, i))))
		dst.SetARGB(x, y, p)
	}

	return dst, nil
}

// Hide hides a text message in an image on disk, and saves the result to a new image.
// It returns the path the image was written to.
func Hide(config *HideConfig, outputLevel OutputLevel) (string, error) {
	// Input validation
	if len(config.ImagePath) <= 0 {
		return "", &InvalidFormatError{"ImagePath is empty."}
	}
	if len(config.OutPath) <= 0 {
		return "", &InvalidFormatError{"OutPath is empty."}
	}
	if len(config.Message) <= 0 && len(config.MessagePath) <= 0 {
		return "", &InvalidFormatError{"Neither Message nor MessagePath is set."}
	}

	logger := NewLogger(os.Stderr, outputLevel)
	logger.Debug("This tool has been set to display debug output.")

	message := config.Message
	if len(config.MessagePath) > 0 {
		logger.Info("Reading the message", "path", config.MessagePath)
		b, err := os.ReadFile(config.MessagePath)
		if err != nil {
			return "", fmt.Errorf("could not read message file %q: %w", config.MessagePath, err)
		}
		message = string(b)
	}

	logger.Info("Loading the image", "path", config.ImagePath)
	src, format, err := LoadImage(config.ImagePath, logger)
	if err != nil {
		return "", err
	}

	logInfo(logger, "Image info", "format", format, "width", src.Width(), "height", src.Height(),
		"slots", algos.SlotCount(src.Width(), src.Height()), "capacity", Capacity(src.Width(), src.Height()))
	logInfo(logger, "Message info", "bytes", len(message), "bits", frameBits(uint64(len(message))))
	logger.Debug("Frame header", "bits", fmt.Sprintf("%032b", uint32(len(message))))

	logger.Info("Encoding the message into the image")
	dst, err := Encode(src, message)
	if err != nil {
		var capErr *CapacityExceededError
		if errors.As(err, &capErr) {
			logger.Error("The message does not fit in the image", "required_bits", capErr.RequiredBits,
				"available_bits", capErr.AvailableBits)
		}
		return "", err
	}

	logger.Info("Writing the encoded image", "path", config.OutPath)
	outPath, err := WriteImage(dst, config.OutPath, logger)
	if err != nil {
		return "", err
	}

	logger.Info("All done! c:", "path", outPath)

	return outPath, nil
}
