package modelwire

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"
)

// sseDecoder turns a raw SSE byte stream into an ordered sequence of decoded
// JSON data payloads. It keeps one rolling buffer: each chunk read is
// appended, complete lines are split off, and a trailing partial line is held
// back until the next chunk (or EOF) completes it. The decoder never reads
// ahead of the chunk that produced the line it is parsing, so it works with
// providers that flush mid-event.
type sseDecoder struct {
	r       io.Reader
	scratch []byte
	pending []string // complete lines not yet consumed
	rest    string   // held-back partial line
	eof     bool
	logger  *slog.Logger
}

func newSSEDecoder(r io.Reader, logger *slog.Logger) *sseDecoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &sseDecoder{
		r:       r,
		scratch: make([]byte, 4096),
		logger:  logger,
	}
}

// Next returns the next decoded data payload. It returns io.EOF once the
// stream ends, whether by the [DONE] sentinel or by the reader running dry.
// Lines that are not data lines (event names, comments, blanks) are ignored;
// a data line that fails to decode is logged and skipped, never fatal.
func (d *sseDecoder) Next() (map[string]interface{}, error) {
	for {
		for len(d.pending) > 0 {
			line := strings.TrimSuffix(d.pending[0], "\r")
			d.pending = d.pending[1:]

			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimPrefix(line, "data:")
			data = strings.TrimPrefix(data, " ") // optional single leading space

			// The sentinel is not JSON; it just ends the stream.
			if data == "[DONE]" {
				d.eof = true
				d.pending = nil
				return nil, io.EOF
			}

			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(data), &payload); err != nil {
				d.logger.Warn("skipping malformed stream line", "error", err)
				continue
			}
			return payload, nil
		}

		if d.eof {
			return nil, io.EOF
		}

		n, err := d.r.Read(d.scratch)
		if n > 0 {
			d.feed(string(d.scratch[:n]))
		}
		if err == io.EOF {
			// A stream that ends mid-line still delivers that line.
			d.eof = true
			if d.rest != "" {
				d.pending = append(d.pending, d.rest)
				d.rest = ""
			}
			continue
		}
		if err != nil {
			return nil, err
		}
	}
}

func (d *sseDecoder) feed(chunk string) {
	buf := d.rest + chunk
	lines := strings.Split(buf, "\n")
	d.rest = lines[len(lines)-1]
	d.pending = append(d.pending, lines[:len(lines)-1]...)
}
