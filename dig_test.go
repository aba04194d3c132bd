package textsteg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zedseven/textsteg/internal/algos"
)

// plantBits writes data into the channel LSBs of buf from slot 0 on, most-significant bit first.
func plantBits(buf *Buffer, data []byte) {
	w, h := buf.Width(), buf.Height()
	for i := 0; i < len(data)*8; i++ {
		bit := (data[i/8] >> (7 - i%8)) & 1
		x, y, c := algos.Locate(uint64(i), w, h)
		p := buf.ARGB(x, y)
		p[c] = p[c]&0xfe | bit
		buf.SetARGB(x, y, p)
	}
}

func TestDecodeTruncatedLength(t *testing.T) {
	for _, dims := range [][2]int{{2, 2}, {1, 1}, {0, 0}, {10, 1}} {
		_, err := Decode(filledBuffer(dims[0], dims[1], Pixel{0xff, 0xff, 0xff, 0xff}))
		var truncErr *TruncatedLengthError
		require.True(t, errors.As(err, &truncErr), "%dx%d: %v", dims[0], dims[1], err)
		assert.Equal(t, algos.SlotCount(dims[0], dims[1]), truncErr.AvailableBits)
	}

	// 11x1 has 33 slots, enough to read the length
	_, err := Decode(NewBuffer(11, 1))
	var lenErr *InvalidLengthError
	assert.True(t, errors.As(err, &lenErr))
}

func TestDecodeZeroLength(t *testing.T) {
	for _, p := range []Pixel{{0, 0, 0, 0}, {0xfe, 0xfe, 0xfe, 0xff}, {0x10, 0x20, 0x30, 0x41}} {
		_, err := Decode(filledBuffer(8, 8, p))
		var lenErr *InvalidLengthError
		require.True(t, errors.As(err, &lenErr), "%v: %v", p, err)
		assert.Equal(t, uint32(0), lenErr.Length)
		assert.Equal(t, uint64(192), lenErr.AvailableBits)
	}
}

func TestDecodeLengthBeyondCapacity(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		length uint32
	}{
		{"just too long", []byte{0, 0, 0, 3}, 3},
		{"way too long", []byte{0, 0, 1, 0}, 256},
		{"sign bit set", []byte{0x80, 0, 0, 0}, 1 << 31},
		{"all ones", []byte{0xff, 0xff, 0xff, 0xff}, 0xffffffff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := NewBuffer(4, 4) // 48 slots, room for 2 bytes
			plantBits(buf, tt.header)

			_, err := Decode(buf)
			var lenErr *InvalidLengthError
			require.True(t, errors.As(err, &lenErr), "got %v", err)
			assert.Equal(t, tt.length, lenErr.Length)
			assert.Equal(t, uint64(48), lenErr.AvailableBits)
		})
	}
}

func TestDecodePlantedFrame(t *testing.T) {
	buf := noisyBuffer(5, 5, 3)
	plantBits(buf, []byte{0, 0, 0, 3, 'h', 'e', 'y'})

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, "hey", got)
}

func TestDecodeInvalidUTF8(t *testing.T) {
	buf := NewBuffer(4, 4)
	plantBits(buf, []byte{0, 0, 0, 2, 0xff, 0xfe})

	_, err := Decode(buf)
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr), "got %v", err)
	assert.Equal(t, []byte{0xff, 0xfe}, decErr.Payload)

	got, err := DecodeLenient(buf)
	require.NoError(t, err)
	assert.Equal(t, string(utf8.RuneError), got)
	assert.True(t, utf8.ValidString(got))
}

func TestDecodeLenientKeepsValidText(t *testing.T) {
	dst, err := Encode(noisyBuffer(10, 10, 9), "plain ✓ text")
	require.NoError(t, err)

	strict, err := Decode(dst)
	require.NoError(t, err)
	lenient, err := DecodeLenient(dst)
	require.NoError(t, err)
	assert.Equal(t, strict, lenient)
}

func TestDecodeLenientStillChecksLength(t *testing.T) {
	_, err := DecodeLenient(NewBuffer(2, 2))
	var truncErr *TruncatedLengthError
	assert.True(t, errors.As(err, &truncErr))

	_, err = DecodeLenient(NewBuffer(8, 8))
	var lenErr *InvalidLengthError
	assert.True(t, errors.As(err, &lenErr))
}

func TestDecodeTallerImage(t *testing.T) {
	// Extra rows below the frame don't move any slot.
	small, err := Encode(noisyBuffer(6, 4, 5), "rows")
	require.NoError(t, err)

	tall := noisyBuffer(6, 20, 6)
	for y := 0; y < small.Height(); y++ {
		for x := 0; x < small.Width(); x++ {
			tall.SetARGB(x, y, small.ARGB(x, y))
		}
	}

	got, err := Decode(tall)
	require.NoError(t, err)
	assert.Equal(t, "rows", got)
}

func writeTestImage(t *testing.T, dir, name string, buf *Buffer) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, format := ResolveOutPath(path)
	require.NoError(t, EncodeImage(f, buf, format))
	return path
}

func TestHideAndDigFiles(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeTestImage(t, dir, "cover.png", noisyOpaqueBuffer(32, 32, 1))

	outPath, err := Hide(&HideConfig{
		ImagePath: imgPath,
		Message:   "Встроить сообщение",
		OutPath:   filepath.Join(dir, "stego"),
	}, OutputNothing)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "stego.png"), outPath)

	textPath := filepath.Join(dir, "message.txt")
	text, err := Dig(DigConfig{ImagePath: outPath, OutPath: textPath})
	require.NoError(t, err)
	assert.Equal(t, "Встроить сообщение", text)

	written, err := os.ReadFile(textPath)
	require.NoError(t, err)
	assert.Equal(t, "Встроить сообщение", string(written))
}

func TestHideMessageFileToBMP(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeTestImage(t, dir, "cover.bmp", noisyOpaqueBuffer(20, 10, 2))

	msgPath := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(msgPath, []byte("from a file\n"), 0o644))

	outPath, err := Hide(&HideConfig{
		ImagePath:   imgPath,
		MessagePath: msgPath,
		OutPath:     filepath.Join(dir, "out.bmp"),
	}, OutputNothing)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.bmp"), outPath)

	text, err := Dig(DigConfig{ImagePath: outPath, Lenient: true})
	require.NoError(t, err)
	assert.Equal(t, "from a file\n", text)
}

func TestHideTooLargeLeavesNothingBehind(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeTestImage(t, dir, "small.png", noisyOpaqueBuffer(4, 4, 3))

	_, err := Hide(&HideConfig{
		ImagePath: imgPath,
		Message:   "far too long for sixteen pixels",
		OutPath:   filepath.Join(dir, "out.png"),
	}, OutputNothing)
	var capErr *CapacityExceededError
	require.True(t, errors.As(err, &capErr), "got %v", err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "small.png", entries[0].Name())
}

func TestHideRejectsBinaryMessageFile(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeTestImage(t, dir, "cover.png", noisyOpaqueBuffer(16, 16, 4))

	msgPath := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(msgPath, []byte{'h', 'i', 0xff, 0x00}, 0o644))

	_, err := Hide(&HideConfig{
		ImagePath:   imgPath,
		MessagePath: msgPath,
		OutPath:     filepath.Join(dir, "out.png"),
	}, OutputNothing)
	var textErr *InvalidTextError
	require.True(t, errors.As(err, &textErr), "got %v", err)

	_, err = os.Stat(filepath.Join(dir, "out.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHideConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config HideConfig
	}{
		{"no image", HideConfig{Message: "m", OutPath: "o.png"}},
		{"no output", HideConfig{ImagePath: "i.png", Message: "m"}},
		{"no message", HideConfig{ImagePath: "i.png", OutPath: "o.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Hide(&tt.config, OutputNothing)
			var fmtErr *InvalidFormatError
			assert.True(t, errors.As(err, &fmtErr), "got %v", err)
		})
	}
}

func TestHideMissingFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := Hide(&HideConfig{
		ImagePath: filepath.Join(dir, "missing.png"),
		Message:   "m",
		OutPath:   filepath.Join(dir, "out.png"),
	}, OutputNothing)
	assert.ErrorIs(t, err, os.ErrNotExist)

	imgPath := writeTestImage(t, dir, "cover.png", NewBuffer(8, 8))
	_, err = Hide(&HideConfig{
		ImagePath:   imgPath,
		MessagePath: filepath.Join(dir, "missing.txt"),
		OutPath:     filepath.Join(dir, "out.png"),
	}, OutputNothing)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDigValidationAndErrors(t *testing.T) {
	_, err := Dig(DigConfig{})
	var fmtErr *InvalidFormatError
	assert.True(t, errors.As(err, &fmtErr))

	dir := t.TempDir()
	imgPath := writeTestImage(t, dir, "blank.png", filledBuffer(8, 8, Pixel{0, 0, 0, 0xff}))
	_, err = Dig(DigConfig{ImagePath: imgPath})
	var lenErr *InvalidLengthError
	assert.True(t, errors.As(err, &lenErr), "got %v", err)
}
