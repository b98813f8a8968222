package speedmon

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

const (
	minPayloadSize = MinPayloadWindows * Resolution // 6 MiB
)

// SampleStream drives one measurement run over the stream: every chunk is
// counted by the window sampler, every boundary is handed to the interval
// recorder, and the resulting intervals are converted into speed samples.
// Any failure aborts the run and discards what was captured so far.
func SampleStream(ctx context.Context, stream ChunkStream, timer *Timer, resolution int64, chunkSize int64) (*MeasurementRun, error) {
	sampler, err := NewWindowSampler(resolution, chunkSize, timer)
	if err != nil {
		return nil, err
	}

	recorder := OpenIntervalRecorder()
	defer recorder.Close()

	run := &MeasurementRun{
		Resolution: resolution,
	}

	initial := sampler.Start()
	run.Start = initial.Timestamp
	if err := recorder.Record(initial); err != nil {
		return nil, err
	}

	for {
		size, readErr := stream.NextChunk(ctx)

		if size > 0 {
			run.Size += int64(size)

			boundary, closed, err := sampler.Observe(size)
			if err != nil {
				return nil, err
			}
			if closed {
				if err := recorder.Record(boundary); err != nil {
					return nil, err
				}
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, streamFault("read body", readErr)
		}
	}

	run.End = timer.Now()
	run.Intervals = recorder.Close()

	run.Samples, err = GetSpeeds(run.Intervals, resolution)
	if err != nil {
		return nil, err
	}

	return run, nil
}

func NormalizeURL(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		return "https://" + rawURL
	}

	return rawURL
}

// CheckPayloadSize rejects responses whose declared size cannot fill
// MinPayloadWindows windows.
func CheckPayloadSize(resp *http.Response, minSize int64) error {
	if resp.ContentLength < 0 {
		return errors.Wrap(ErrPayloadTooSmall, "no Content-Length declared")
	}
	if resp.ContentLength < minSize {
		return errors.Wrapf(ErrPayloadTooSmall, "%d bytes declared, at least %d required", resp.ContentLength, minSize)
	}

	return nil
}

func flushHTTPResponse(resp *http.Response) (int64, error) {
	flushedSize, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return 0, err
	}
	err = resp.Body.Close()
	if err != nil {
		return 0, err
	}

	return flushedSize, nil
}

// MeasureDownlink fetches url and samples its body as it arrives.
func MeasureDownlink(ctx context.Context, client *http.Client, url string, clock Clock) (*MeasurementRun, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not build request")
	}
	// byte counts must be on-wire payload, not inflated content
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := client.Do(req)
	if err != nil {
		return nil, streamFault("request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = flushHTTPResponse(resp)
		return nil, streamFault("request", errors.Errorf("unexpected status %s", resp.Status))
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, streamFault("request", errors.New("invalid response body"))
	}

	if err := CheckPayloadSize(resp, minPayloadSize); err != nil {
		return nil, err
	}

	stream := NewReaderChunkStream(resp.Body, int(ChunkSize))
	run, err := SampleStream(ctx, stream, NewTimer(clock), Resolution, ChunkSize)
	if err != nil {
		return nil, err
	}
	if stream.SizeRead != resp.ContentLength {
		return nil, streamFault("read body", errors.Wrapf(io.ErrUnexpectedEOF, "got %d of %d declared bytes", stream.SizeRead, resp.ContentLength))
	}

	return run, nil
}

func Measure(ctx context.Context, client *http.Client, url string, clock Clock) (*Estimate, error) {
	run, err := MeasureDownlink(ctx, client, url, clock)
	if err != nil {
		return nil, err
	}

	return AggregateRun(run)
}
