package media

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// alawFormatCode is the WAVE fmt chunk's wFormatCode for 8-bit A-law
// PCM, as written into every recording this package produces.
const alawFormatCode = 6

// OpenPlayback opens a WAV file for playback and seeks to the first
// byte of its "data" subchunk. It does not validate the fmt chunk or
// bound reads to the subchunk's declared size: once positioned, Read
// simply streams raw bytes straight from the file, matching files that
// are still being written to by a concurrent recorder.
func OpenPlayback(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(12, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	var hdr [8]byte
	for {
		if _, err := io.ReadFull(f, hdr[:]); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if string(hdr[:4]) == "data" {
			return f, nil
		}
		size := int64(binary.LittleEndian.Uint32(hdr[4:8]))
		if _, err := f.Seek(size, io.SeekCurrent); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: skip %q: %w", path, hdr[:4], err)
		}
	}
}

// Recorder writes raw A-law samples to a file, leaving room for a
// canonical RIFF/WAVE header that is only known once recording stops.
type Recorder struct {
	f        *os.File
	Path     string
	Channels int
	written  int64
	err      error
}

// CreateRecorder creates (or truncates) path and positions past the
// 44-byte header placeholder, ready to accept raw A-law bytes.
func CreateRecorder(path string, channels int) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(44, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	return &Recorder{f: f, Path: path, Channels: channels}, nil
}

// Write appends raw samples to the recording, remembering the first
// error seen so Close can decide whether a header is safe to write.
func (r *Recorder) Write(p []byte) (int, error) {
	n, err := r.f.Write(p)
	r.written += int64(n)
	if err != nil && r.err == nil {
		r.err = err
	}
	return n, err
}

// Bytes reports how many sample bytes have been written so far.
func (r *Recorder) Bytes() int64 { return r.written }

// Err reports the first write error seen, if any. A recording that hit
// a write error has no canonical header written by Close and should be
// discarded rather than handed to a recording handler.
func (r *Recorder) Err() error { return r.err }

// Close writes the canonical RIFF/WAVE header and closes the file. If
// a prior Write failed, Close skips the header (there is nothing
// trustworthy to describe) and just releases the file descriptor.
func (r *Recorder) Close() error {
	defer r.f.Close()
	if r.err != nil {
		return r.err
	}
	if _, err := r.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	channels := r.Channels
	if channels <= 0 {
		channels = 1
	}
	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(r.written+36))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], alawFormatCode)
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:28], 8000)
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(8000*channels))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(channels))
	binary.LittleEndian.PutUint16(hdr[34:36], 8)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(r.written))
	if _, err := r.f.Write(hdr[:]); err != nil {
		return err
	}
	return nil
}
