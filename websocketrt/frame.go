package websocketrt

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mrzaxaryan/securert/internal/rterr"
)

// frameReader parses frames from an io.Reader, grounded on the teacher's
// FrameReader (pkg/shockwave/websocket/frame.go) but without its custom
// buffer pool — each call allocates its own payload slice, since this
// runtime's connections are not a high-fanout server hot path.
type frameReader struct {
	r      io.Reader
	header [maxFrameHeaderSize]byte
}

func newFrameReader(r io.Reader) *frameReader {
	return &frameReader{r: r}
}

func (fr *frameReader) readFrame() (*Frame, error) {
	if _, err := io.ReadFull(fr.r, fr.header[:2]); err != nil {
		return nil, err
	}

	frame := &Frame{}
	b0 := fr.header[0]
	frame.Fin = b0&finalBit != 0
	frame.RSV1 = b0&rsv1Bit != 0
	frame.RSV2 = b0&rsv2Bit != 0
	frame.RSV3 = b0&rsv3Bit != 0
	frame.Opcode = b0 & opcodeMask

	b1 := fr.header[1]
	frame.Masked = b1&maskBit != 0
	payloadLen := uint64(b1 & lengthMask)

	if frame.Opcode > 0xA || (frame.Opcode > 0x2 && frame.Opcode < 0x8) {
		return nil, fmt.Errorf("websocketrt: invalid opcode %d: %w", frame.Opcode, rterr.ErrWsInvalidFrame)
	}
	if frame.IsControl() {
		if !frame.Fin {
			return nil, fmt.Errorf("websocketrt: fragmented control frame: %w", rterr.ErrWsInvalidFrame)
		}
		if payloadLen > maxControlFramePayload {
			return nil, fmt.Errorf("websocketrt: control frame payload too large: %w", rterr.ErrWsInvalidFrame)
		}
	}
	if frame.RSV1 || frame.RSV2 || frame.RSV3 {
		return nil, fmt.Errorf("websocketrt: reserved bits set: %w", rterr.ErrWsInvalidFrame)
	}

	headerSize := 2
	switch payloadLen {
	case 126:
		if _, err := io.ReadFull(fr.r, fr.header[2:4]); err != nil {
			return nil, err
		}
		frame.Length = uint64(binary.BigEndian.Uint16(fr.header[2:4]))
		headerSize = 4
	case 127:
		if _, err := io.ReadFull(fr.r, fr.header[2:10]); err != nil {
			return nil, err
		}
		frame.Length = binary.BigEndian.Uint64(fr.header[2:10])
		headerSize = 10
		if frame.Length&(1<<63) != 0 {
			return nil, fmt.Errorf("websocketrt: frame length high bit set: %w", rterr.ErrWsFrameTooLarge)
		}
	default:
		frame.Length = payloadLen
	}

	if frame.Length > maxMessageSize {
		return nil, fmt.Errorf("websocketrt: frame length %d exceeds limit: %w", frame.Length, rterr.ErrWsFrameTooLarge)
	}

	if frame.Masked {
		if _, err := io.ReadFull(fr.r, fr.header[headerSize:headerSize+4]); err != nil {
			return nil, err
		}
		copy(frame.MaskKey[:], fr.header[headerSize:headerSize+4])
	}

	if frame.Length > 0 {
		payload := make([]byte, frame.Length)
		if _, err := io.ReadFull(fr.r, payload); err != nil {
			return nil, err
		}
		if frame.Masked {
			maskBytes(payload, frame.MaskKey)
		}
		frame.Payload = payload
	}

	return frame, nil
}

// maxMessageSize bounds a single frame's declared payload length, matching
// the WebSocket Non-goal that caps message size rather than allowing
// unbounded server-directed allocation.
const maxMessageSize = 16 * 1024 * 1024

// frameWriter writes client-to-server frames, always masked per RFC 6455
// §5.1.
type frameWriter struct {
	w      io.Writer
	header [maxFrameHeaderSize]byte
}

func newFrameWriter(w io.Writer) *frameWriter {
	return &frameWriter{w: w}
}

func (fw *frameWriter) writeFrame(opcode byte, fin bool, payload []byte, maskKey [4]byte) error {
	b0 := opcode
	if fin {
		b0 |= finalBit
	}
	fw.header[0] = b0

	payloadLen := uint64(len(payload))
	headerSize := 2
	b1 := byte(maskBit)

	switch {
	case payloadLen <= 125:
		fw.header[1] = b1 | byte(payloadLen)
	case payloadLen <= 0xFFFF:
		fw.header[1] = b1 | 126
		binary.BigEndian.PutUint16(fw.header[2:4], uint16(payloadLen))
		headerSize = 4
	default:
		fw.header[1] = b1 | 127
		binary.BigEndian.PutUint64(fw.header[2:10], payloadLen)
		headerSize = 10
	}

	copy(fw.header[headerSize:headerSize+4], maskKey[:])
	headerSize += 4

	if _, err := fw.w.Write(fw.header[:headerSize]); err != nil {
		return fmt.Errorf("websocketrt: write frame header: %w", rterr.ErrWsWriteFailed)
	}

	if len(payload) > 0 {
		masked := make([]byte, len(payload))
		copy(masked, payload)
		maskBytes(masked, maskKey)
		if _, err := fw.w.Write(masked); err != nil {
			return fmt.Errorf("websocketrt: write frame payload: %w", rterr.ErrWsWriteFailed)
		}
	}
	return nil
}
