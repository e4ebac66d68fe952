package gemini

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"
)

// PCM parameters Gemini TTS uses when the MIME type does not say otherwise.
const (
	defaultSampleRate    = 24000
	defaultChannels      = 1
	defaultBitsPerSample = 16
)

type pcmFormat struct {
	sampleRate    int
	channels      int
	bitsPerSample int
}

// parsePCMMimeType reads rate and bit depth from MIME types such as
// "audio/L16;codec=pcm;rate=24000".
func parsePCMMimeType(mimeType string) pcmFormat {
	f := pcmFormat{
		sampleRate:    defaultSampleRate,
		channels:      defaultChannels,
		bitsPerSample: defaultBitsPerSample,
	}
	for _, part := range strings.Split(mimeType, ";") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "rate="):
			if v, err := strconv.Atoi(strings.TrimPrefix(part, "rate=")); err == nil && v > 0 {
				f.sampleRate = v
			}
		case strings.HasPrefix(strings.ToLower(part), "audio/l"):
			if v, err := strconv.Atoi(part[len("audio/l"):]); err == nil && v > 0 {
				f.bitsPerSample = v
			}
		}
	}
	return f
}

// encodeWAV prepends a canonical 44-byte RIFF header to little-endian PCM data.
func encodeWAV(pcm []byte, f pcmFormat) []byte {
	blockAlign := f.channels * f.bitsPerSample / 8
	byteRate := f.sampleRate * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(f.channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(f.sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(f.bitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
