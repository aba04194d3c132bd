// Package algos defines the order in which hidden bits are laid out across an image.
package algos

import (
	"fmt"
)

// ChannelsPerPixel is the number of colour channels per pixel that carry data. Alpha is never used.
const ChannelsPerPixel = 3

// Channel identifies one of the data-carrying colour channels of a pixel.
type Channel uint8

const (
	ChannelRed   Channel = iota // The red channel, always the first slot of a pixel.
	ChannelGreen Channel = iota // The green channel.
	ChannelBlue  Channel = iota // The blue channel, always the last slot of a pixel.
)

// Returns the name of the channel, or "<unknown>" if unknown.
func (c Channel) String() string {
	switch c {
	case ChannelRed:
		return "red"
	case ChannelGreen:
		return "green"
	case ChannelBlue:
		return "blue"
	default:
		return "<unknown>"
	}
}

// Error types

// Thrown when an addressor is called but its pool of available addresses to hand out is empty.
type EmptyPoolError struct {
	Size uint64
}

func (e *EmptyPoolError) Error() string {
	return fmt.Sprintf("The pool of %d bit addresses is empty.", e.Size)
}

// Slot arithmetic

// SlotCount returns the number of usable bit slots in a width x height image.
func SlotCount(width, height int) uint64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	return uint64(width) * uint64(height) * ChannelsPerPixel
}

// Locate maps a linear slot index to the pixel coordinates and channel it addresses.
// Slots run across R, G and B within a pixel, then left to right, then top to bottom.
// The slot must be below SlotCount(width, height); anything else is a programming error.
func Locate(slot uint64, width, height int) (x, y int, c Channel) {
	if slot >= SlotCount(width, height) {
		panic(fmt.Sprintf("algos: slot %d is outside of a %dx%d image", slot, width, height))
	}
	pix := slot / ChannelsPerPixel
	c = Channel(slot % ChannelsPerPixel)
	// Would normally floor here, but since all values are >= 0, integer division handles this for us
	x = int(pix % uint64(width))
	y = int(pix / uint64(width))
	return
}

// Addressors

// SequentialAddressor hands out slots 0 through slots-1 in order, then returns an *EmptyPoolError.
func SequentialAddressor(slots uint64) func() (uint64, error) {
	var pos uint64
	return func() (uint64, error) {
		if pos >= slots {
			return 0, &EmptyPoolError{Size: slots}
		}
		pos++
		return pos - 1, nil
	}
}
