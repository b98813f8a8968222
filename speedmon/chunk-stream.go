package speedmon

import (
	"context"
	"io"
)

// ChunkStream delivers a byte stream as a sequence of chunks. NextChunk
// returns the length of the next chunk, or io.EOF once the stream is
// exhausted. A chunk may accompany io.EOF.
type ChunkStream interface {
	NextChunk(ctx context.Context) (int, error)
}

// ReaderChunkStream cuts an io.Reader into chunks of exactly ChunkSize bytes,
// except for the final one which may be shorter. SizeRead counts the bytes
// delivered so far.
type ReaderChunkStream struct {
	reader    io.Reader
	buf       []byte
	SizeRead  int64
	exhausted bool
}

func NewReaderChunkStream(r io.Reader, chunkSize int) *ReaderChunkStream {
	return &ReaderChunkStream{
		reader: r,
		buf:    make([]byte, chunkSize),
	}
}

// fill reads until buf is full. Only a clean io.EOF from the reader ends the
// stream; io.ErrUnexpectedEOF from a truncated transport is passed through.
func (s *ReaderChunkStream) fill() (int, error) {
	size := 0

	for size < len(s.buf) {
		n, err := s.reader.Read(s.buf[size:])
		size += n
		if err != nil {
			return size, err
		}
	}

	return size, nil
}

func (s *ReaderChunkStream) NextChunk(ctx context.Context) (int, error) {
	if s.exhausted {
		return 0, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	size, err := s.fill()
	s.SizeRead += int64(size)

	if err == io.EOF {
		s.exhausted = true
	}

	return size, err
}
