// Package firmware parses Intel HEX firmware images into the sparse
// in-memory representation the HalfKay bootloader protocol streams from.
package firmware

import (
	"bufio"
	"os"
	"unicode/utf8"

	"github.com/petitechose-midi-studio/loader/internal/teensy41"
)

const (
	recordData              = 0x00
	recordEOF               = 0x01
	recordExtSegmentAddress = 0x02
	recordExtLinearAddress  = 0x04
)

// Image is the immutable result of a successful HEX load: the full flash
// span pre-filled with 0xFF, a presence mask recording which bytes the HEX
// file actually touched, and the derived write-set.
type Image struct {
	Data          []byte
	Present       []bool
	ByteCount     int
	NumBlocks     int
	BlocksToWrite []int
}

// Load parses the Intel HEX file at path into an Image sized for the
// Teensy 4.1 flash map.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errIO(err)
	}
	defer f.Close()

	img := &Image{
		Data:      make([]byte, teensy41.CodeSize),
		Present:   make([]bool, teensy41.CodeSize),
		NumBlocks: teensy41.NumBlocks,
	}
	for i := range img.Data {
		img.Data[i] = 0xFF
	}

	var extAddr uint32
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	done := false
	for scanner.Scan() {
		lineNo++
		if done {
			continue
		}
		raw := scanner.Bytes()
		line := trimCR(raw)
		if len(line) == 0 {
			continue
		}
		if !utf8.Valid(line) {
			return nil, errNotText(lineNo)
		}

		recType, offset, payload, stop, perr := parseLine(line, lineNo)
		if perr != nil {
			return nil, perr
		}
		if stop {
			done = true
			continue
		}

		switch recType {
		case recordData:
			if err := applyData(img, extAddr, offset, payload, lineNo); err != nil {
				return nil, err
			}
			img.ByteCount += len(payload)
		case recordEOF:
			done = true
		case recordExtSegmentAddress:
			if len(payload) == 2 {
				seg := uint32(payload[0])<<8 | uint32(payload[1])
				extAddr = seg << 4
			}
		case recordExtLinearAddress:
			if len(payload) == 2 {
				hi := uint32(payload[0])<<8 | uint32(payload[1])
				base := hi << 16
				if base >= teensy41.FlexSPIBase && base < teensy41.FlexSPIBase+teensy41.CodeSize {
					base -= teensy41.FlexSPIBase
				}
				extAddr = base
			}
		default:
			// unrecognized record types are silently ignored.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errIO(err)
	}

	img.BlocksToWrite = computeBlocksToWrite(img)
	return img, nil
}

func trimCR(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\r' {
		return b[:n-1]
	}
	return b
}

// parseLine decodes one physical line into (recordType, offset, payload).
// stop reports an EOF record was seen; like every other record it has
// already passed the length and checksum checks here.
func parseLine(line []byte, lineNo int) (recType byte, offset uint16, payload []byte, stop bool, err *Error) {
	if line[0] != ':' {
		return 0, 0, nil, false, errInvalidLine(lineNo, "missing leading ':'")
	}
	hexDigits := line[1:]
	if len(hexDigits)%2 != 0 {
		return 0, 0, nil, false, errInvalidLine(lineNo, "odd number of hex digits")
	}
	bytes, ok := decodeHexBytes(hexDigits)
	if !ok {
		return 0, 0, nil, false, errInvalidLine(lineNo, "invalid hex digit")
	}
	if len(bytes) < 5 {
		return 0, 0, nil, false, errInvalidLine(lineNo, "record too short")
	}

	declaredLen := int(bytes[0])
	if len(bytes) != declaredLen+5 {
		return 0, 0, nil, false, errInvalidLine(lineNo, "length field does not match physical length")
	}

	sum := byte(0)
	for _, b := range bytes[:len(bytes)-1] {
		sum += b
	}
	checksum := byte(-sum)
	if checksum != bytes[len(bytes)-1] {
		return 0, 0, nil, false, errInvalidChecksum(lineNo)
	}

	offset = uint16(bytes[1])<<8 | uint16(bytes[2])
	recType = bytes[3]
	payload = bytes[4 : 4+declaredLen]
	return recType, offset, payload, recType == recordEOF, nil
}

func decodeHexBytes(digits []byte) ([]byte, bool) {
	out := make([]byte, len(digits)/2)
	for i := range out {
		hi, ok1 := fromHexDigit(digits[2*i])
		lo, ok2 := fromHexDigit(digits[2*i+1])
		if !ok1 || !ok2 {
			return nil, false
		}
		out[i] = hi<<4 | lo
	}
	return out, true
}

func fromHexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

func applyData(img *Image, extAddr uint32, offset uint16, payload []byte, lineNo int) *Error {
	base := uint64(extAddr) + uint64(offset)
	for i, b := range payload {
		addr64 := base + uint64(i)
		if addr64 > 0xFFFFFFFF {
			return errAddressOverflow(lineNo)
		}
		addr := uint32(addr64)
		if addr >= teensy41.CodeSize {
			return errAddressOutOfRange(lineNo, addr)
		}
		img.Data[addr] = b
		img.Present[addr] = true
	}
	return nil
}

func computeBlocksToWrite(img *Image) []int {
	blocks := make([]int, 0, img.NumBlocks)
	for b := 0; b < img.NumBlocks; b++ {
		if b == 0 {
			blocks = append(blocks, b)
			continue
		}
		start := b * teensy41.BlockSize
		end := start + teensy41.BlockSize
		for a := start; a < end; a++ {
			if img.Present[a] && img.Data[a] != 0xFF {
				blocks = append(blocks, b)
				break
			}
		}
	}
	return blocks
}
