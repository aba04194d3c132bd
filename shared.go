// Package textsteg hides UTF-8 text in the least-significant bits of an image's red, green and blue channels.
//
// A message is framed as a 32-bit big-endian byte count followed by the UTF-8 bytes, and the frame's bits are
// written most-significant-bit first into one channel LSB per slot, in the order defined by internal/algos.
package textsteg

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zedseven/textsteg/internal/algos"
)

const (
	bitsPerByte      uint8  = 8
	lengthFieldBytes int    = 4
	lengthFieldBits  uint64 = uint64(lengthFieldBytes) * uint64(bitsPerByte)
	maxMessageLength uint64 = math.MaxInt32
	VersionMax       uint8  = 1
	VersionMid       uint8  = 0
	VersionMin       uint8  = 0
)

// Error types

// InvalidFormatError is returned when a configuration value is missing or malformed.
type InvalidFormatError struct {
	ErrorDesc string
}

func (e *InvalidFormatError) Error() string {
	if len(e.ErrorDesc) > 0 {
		return e.ErrorDesc
	}
	return "The provided data is of an invalid format."
}

// EmptyMessageError is returned when asked to hide a zero-length message.
// A length of zero is reserved to mark images that carry nothing.
type EmptyMessageError struct{}

func (e *EmptyMessageError) Error() string {
	return "The message to hide is empty."
}

// InvalidTextError is returned when asked to hide bytes that are not valid UTF-8.
// Decode would refuse to return them, so they are refused up front.
type InvalidTextError struct {
	Message []byte
}

func (e *InvalidTextError) Error() string {
	return fmt.Sprintf("The %d B message to hide is not valid UTF-8 text.", len(e.Message))
}

// CapacityExceededError is returned when a framed message needs more slots than the image provides.
// Nothing is written when this is returned.
type CapacityExceededError struct {
	RequiredBits  uint64
	AvailableBits uint64
	InnerError    error
}

func (e *CapacityExceededError) Error() string {
	ret := fmt.Sprintf("There is not enough space available to store the message within the image: "+
		"%d bits are required but only %d are available.", e.RequiredBits, e.AvailableBits)
	if e.InnerError != nil {
		return fmt.Sprintf("%v Inner error: %v", ret, e.InnerError.Error())
	}
	return ret
}

func (e *CapacityExceededError) Unwrap() error {
	return e.InnerError
}

// TruncatedLengthError is returned when an image is too small to even hold the length field.
type TruncatedLengthError struct {
	AvailableBits uint64
}

func (e *TruncatedLengthError) Error() string {
	return fmt.Sprintf("The image only has %d bit slots, fewer than the %d needed for the length field.",
		e.AvailableBits, lengthFieldBits)
}

// InvalidLengthError is returned when the decoded length is zero, unrepresentable, or larger than the image could hold.
// This usually means the image never had a message hidden in it, or was re-encoded lossily.
type InvalidLengthError struct {
	Length        uint32
	AvailableBits uint64
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("The read message length (%d B) is not valid for an image with %d bit slots.",
		e.Length, e.AvailableBits)
}

// DecodeError is returned by Decode when the hidden bytes are not valid UTF-8.
type DecodeError struct {
	Payload []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("The %d B hidden payload is not valid UTF-8 text.", len(e.Payload))
}

// Library methods

// Version returns the version of the library.
func Version() string {
	return fmt.Sprintf("%02d.%02d.%02d", VersionMax, VersionMid, VersionMin)
}

// Capacity returns the largest message, in UTF-8 bytes, that fits in a width x height image.
func Capacity(width, height int) int64 {
	slots := algos.SlotCount(width, height)
	if slots < lengthFieldBits {
		return 0
	}
	n := (slots - lengthFieldBits) / uint64(bitsPerByte)
	if n > maxMessageLength {
		n = maxMessageLength
	}
	return int64(n)
}

// Shared methods

// frameBits returns the number of slots a frame carrying n payload bytes occupies.
func frameBits(n uint64) uint64 {
	return lengthFieldBits + n*uint64(bitsPerByte)
}

// makeFrame prefixes the payload with its big-endian length.
func makeFrame(payload []byte) []byte {
	frame := make([]byte, lengthFieldBytes+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[lengthFieldBytes:], payload)
	return frame
}

// frameBit returns bit i of the frame, counting from the most-significant bit of the first byte.
func frameBit(frame []byte, i uint64) uint8 {
	return (frame[i/uint64(bitsPerByte)] >> (bitsPerByte - 1 - uint8(i%uint64(bitsPerByte)))) & 1
}
