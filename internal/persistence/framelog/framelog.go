// Package framelog stores every turn of a run as zstd-compressed JSON lines
// so a run can be replayed into plots and animations without re-simulating.
package framelog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"epi-ca/internal/sims/epidemic"
)

// Version is written into every header.
const Version = 1

// Header is the first line of a frame log.
type Header struct {
	Version int             `json:"version"`
	Seed    int64           `json:"seed"`
	Config  epidemic.Config `json:"config"`
}

type record struct {
	Turn  int                `json:"turn"`
	Size  int                `json:"size"`
	Cells []byte             `json:"cells"`
	Raw   epidemic.RawCounts `json:"raw"`
}

// Writer appends observed turns to a compressed JSONL file.
type Writer struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// Create opens path for writing and writes the header line.
func Create(path string, h Header) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w := &Writer{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}
	h.Version = Version
	if err := w.writeLine(h); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// ObserveTurn appends one frame.
func (w *Writer) ObserveTurn(f epidemic.Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writeLine(record{Turn: f.Turn, Size: f.Size, Cells: f.Cells, Raw: f.Raw})
}

func (w *Writer) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	if w.w != nil {
		errs = append(errs, w.w.Flush())
		w.w = nil
	}
	if w.enc != nil {
		errs = append(errs, w.enc.Close())
		w.enc = nil
	}
	if w.f != nil {
		errs = append(errs, w.f.Close())
		w.f = nil
	}
	return errors.Join(errs...)
}

// Reader iterates the frames of a log.
type Reader struct {
	f      *os.File
	dec    *zstd.Decoder
	sc     *bufio.Scanner
	header Header
}

// Open reads the header of the log at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	r := &Reader{f: f, dec: dec, sc: sc}
	if !sc.Scan() {
		err := sc.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		_ = r.Close()
		return nil, fmt.Errorf("%s header: %w", path, err)
	}
	if err := json.Unmarshal(sc.Bytes(), &r.header); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("%s header: %w", path, err)
	}
	if r.header.Version != Version {
		_ = r.Close()
		return nil, fmt.Errorf("%s: unsupported version %d", path, r.header.Version)
	}
	return r, nil
}

// Header returns the run header.
func (r *Reader) Header() Header { return r.header }

// Next returns the next frame, or io.EOF after the last one.
func (r *Reader) Next() (epidemic.Frame, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return epidemic.Frame{}, err
		}
		return epidemic.Frame{}, io.EOF
	}
	var rec record
	if err := json.Unmarshal(r.sc.Bytes(), &rec); err != nil {
		return epidemic.Frame{}, err
	}
	if len(rec.Cells) != rec.Size*rec.Size {
		return epidemic.Frame{}, fmt.Errorf("turn %d: %w", rec.Turn, epidemic.ErrSizeMismatch)
	}
	return epidemic.Frame{
		Turn:   rec.Turn,
		Size:   rec.Size,
		Cells:  rec.Cells,
		Raw:    rec.Raw,
		Counts: rec.Raw.Normalize(r.header.Config.Normalization),
	}, nil
}

// Replay feeds every remaining frame to obs and returns the rebuilt series.
func (r *Reader) Replay(obs ...epidemic.Observer) (epidemic.Series, error) {
	var series epidemic.Series
	for {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			return series, nil
		}
		if err != nil {
			return series, err
		}
		series.Append(f.Counts)
		for _, o := range obs {
			if err := o.ObserveTurn(f); err != nil {
				return series, err
			}
		}
	}
}

// Close releases the decoder and file.
func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}
