package fs

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ainoio/ainoship/internal/domain"
	"github.com/ainoio/ainoship/internal/ports"
)

// followPoll is how often a followed file is re-read when no fsnotify event
// arrives.
const followPoll = time.Second

// JSONLSource implements ports.TransactionSource over newline-delimited JSON.
// Each line holds one transaction in the wire format. Lines that do not
// decode are logged and skipped.
type JSONLSource struct {
	reader  *bufio.Reader
	closer  io.Closer
	watcher *fsnotify.Watcher
	path    string
	logger  ports.Logger

	partial []byte
	line    int
}

// NewJSONLSource reads transactions from r until EOF.
func NewJSONLSource(r io.Reader, logger ports.Logger) *JSONLSource {
	return &JSONLSource{
		reader: bufio.NewReader(r),
		path:   "-",
		logger: logger,
	}
}

// OpenJSONLFile opens path for reading. With follow set the source never
// reaches EOF; it waits for the file to grow, like tail -f, until the
// context is done or the file is removed.
func OpenJSONLFile(path string, follow bool, logger ports.Logger) (*JSONLSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	s := &JSONLSource{
		reader: bufio.NewReader(f),
		closer: f,
		path:   path,
		logger: logger,
	}

	if follow {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create watcher: %w", err)
		}
		if err := w.Add(path); err != nil {
			w.Close()
			f.Close()
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
		s.watcher = w
	}

	return s, nil
}

// Next returns the next decodable transaction.
func (s *JSONLSource) Next(ctx context.Context) (domain.Transaction, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Transaction{}, err
		}

		chunk, err := s.reader.ReadBytes('\n')
		if len(chunk) > 0 {
			s.partial = append(s.partial, chunk...)
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			if s.watcher != nil {
				// keep the incomplete line until the writer finishes it
				if err := s.waitForWrite(ctx); err != nil {
					return domain.Transaction{}, err
				}
				continue
			}
			if len(bytes.TrimSpace(s.partial)) == 0 {
				return domain.Transaction{}, io.EOF
			}
		default:
			return domain.Transaction{}, fmt.Errorf("read %s: %w", s.path, err)
		}

		line := s.partial
		s.partial = nil
		s.line++

		tx, ok := s.decode(line)
		if ok {
			return tx, nil
		}
	}
}

func (s *JSONLSource) decode(line []byte) (domain.Transaction, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return domain.Transaction{}, false
	}

	var tx domain.Transaction
	if err := json.Unmarshal(line, &tx); err != nil {
		s.logger.Warn("skipping malformed line",
			ports.String("source", s.path),
			ports.Int("line", s.line),
			ports.Err(err),
		)
		return domain.Transaction{}, false
	}
	return tx, true
}

// waitForWrite blocks until the followed file changes, the poll interval
// passes or ctx is done. Removal or rename of the file ends the stream.
func (s *JSONLSource) waitForWrite(ctx context.Context) error {
	timer := time.NewTimer(followPoll)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timer.C:
			return nil

		case event, ok := <-s.watcher.Events:
			if !ok {
				return io.EOF
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				s.logger.Info("followed file went away", ports.String("source", s.path))
				return io.EOF
			}
			if event.Op&fsnotify.Write != 0 {
				return nil
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return io.EOF
			}
			s.logger.Warn("watch error", ports.String("source", s.path), ports.Err(err))
		}
	}
}

// Close releases the file and watcher.
func (s *JSONLSource) Close() error {
	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Close())
	}
	if s.closer != nil {
		errs = append(errs, s.closer.Close())
	}
	return errors.Join(errs...)
}
