package reporting

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/activecm/iptrack/datatypes/report"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxLogLine bounds a single log entry when reading the log back
const maxLogLine = 16 << 20

// Logbook appends reports to a JSON lines file. Entries are never edited
// or removed once written.
type Logbook struct {
	path string
	now  func() time.Time

	// wrap lets tests interpose on the write of a line
	wrap func(io.Writer) io.Writer
}

// NewLogbook creates a logbook at dir/name. Neither needs to exist yet.
func NewLogbook(dir, name string) *Logbook {
	return &Logbook{
		path: filepath.Join(dir, name),
		now:  time.Now,
	}
}

// Path returns the log file location
func (l *Logbook) Path() string {
	return l.path
}

// Append captures rep as a new LogEntry. The entry is encoded completely
// before the file is touched and written with a single write. If that
// write fails the file is truncated back to its previous size, so a failed
// append never leaves a partial line behind.
func (l *Logbook) Append(rep *report.Report) (report.LogEntry, error) {
	entry := report.LogEntry{
		ID:        uuid.New().String(),
		Timestamp: l.now(),
		Report:    rep,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return report.LogEntry{}, fmt.Errorf("could not encode log entry: %w", err)
	}
	line = append(line, '\n')

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return report.LogEntry{}, err
	}

	f, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return report.LogEntry{}, err
	}
	defer f.Close()

	size, err := trimPartialLine(f)
	if err != nil {
		return report.LogEntry{}, err
	}

	var w io.Writer = f
	if l.wrap != nil {
		w = l.wrap(f)
	}

	n, err := w.Write(line)
	if err == nil && n != len(line) {
		err = io.ErrShortWrite
	}
	if err != nil {
		if truncErr := f.Truncate(size); truncErr != nil {
			return report.LogEntry{}, fmt.Errorf("%v (truncate failed: %v)", err, truncErr)
		}
		return report.LogEntry{}, err
	}

	if err := f.Sync(); err != nil {
		return report.LogEntry{}, err
	}
	return entry, nil
}

// trimPartialLine drops anything after the last newline, left behind when
// a previous process died mid write. It returns the resulting size.
func trimPartialLine(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	size := info.Size()
	if size == 0 {
		return 0, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return 0, err
	}
	if last[0] == '\n' {
		return size, nil
	}

	// walk back in chunks until the previous newline is found
	const chunk = 4096
	end := size
	for end > 0 {
		start := end - chunk
		if start < 0 {
			start = 0
		}
		buf := make([]byte, end-start)
		if _, err := f.ReadAt(buf, start); err != nil && err != io.EOF {
			return 0, err
		}
		if idx := bytes.LastIndexByte(buf, '\n'); idx >= 0 {
			keep := start + int64(idx) + 1
			return keep, f.Truncate(keep)
		}
		end = start
	}
	return 0, f.Truncate(0)
}

// ReadLog parses every entry of the log at path in file order. Lines that
// are not valid entries are counted and skipped.
func ReadLog(path string) ([]report.LogEntry, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var entries []report.LogEntry
	skipped := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLogLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry report.LogEntry
		if err := json.Unmarshal(line, &entry); err != nil || entry.Report == nil {
			skipped++
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped, scanner.Err()
}
