package stream

import (
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// PCM output parameters for the decode pipeline.
const (
	sampleRate     = 48000
	channels       = 2
	frameSamples   = 960 // 20ms at 48kHz
	bytesPerSample = 2
	frameSize      = frameSamples * channels * bytesPerSample
)

// AudioHandle wraps a running ffmpeg decode process emitting signed 16-bit
// little-endian PCM.
type AudioHandle struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	once   sync.Once
}

// OpenAudio starts the decode process for a stream locator.
func OpenAudio(ffmpegPath, streamURL string) (*AudioHandle, error) {
	cmd := exec.Command(ffmpegPath,
		"-i", streamURL,
		"-f", "s16le",
		"-ar", fmt.Sprint(sampleRate),
		"-ac", fmt.Sprint(channels),
		"-loglevel", "quiet",
		"pipe:1")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open decode pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start decoder: %w", err)
	}

	return &AudioHandle{cmd: cmd, stdout: stdout}, nil
}

// Read returns the next 20ms PCM frame, io.EOF at end of stream. A short
// final frame is returned as-is.
func (h *AudioHandle) Read() ([]byte, error) {
	buf := make([]byte, frameSize)

	n, err := io.ReadFull(h.stdout, buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}

	return nil, err
}

// Cleanup stops the decode process and reaps it. Idempotent.
func (h *AudioHandle) Cleanup() {
	h.once.Do(func() {
		_ = h.stdout.Close()
		if h.cmd.Process != nil {
			_ = h.cmd.Process.Kill()
		}
		_ = h.cmd.Wait()
	})
}
