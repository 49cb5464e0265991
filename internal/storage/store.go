package storage

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// delimiter separates fields within a stored row. The cipher output
// alphabet (digits and spaces) never contains it.
const delimiter = ","

// Row is one decoded line of a data file.
type Row struct {
	Line   int // 1-based position in the file
	Fields []string
}

// Store persists one entity type to one flat file. All operations take
// an exclusive lock so a read-modify-write such as OverwriteOne can
// never interleave with a concurrent Append on the same file.
type Store struct {
	mu     sync.Mutex
	path   string
	cipher *Cipher
}

// NewStore binds a Store to a file path using the given field cipher.
func NewStore(path string, cipher *Cipher) *Store {
	return &Store{path: path, cipher: cipher}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Append encodes the fields and writes them as one row at the end of
// the file, creating it if needed. The write is flushed before return.
func (s *Store) Append(fields []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", s.path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(s.encodeRow(fields)); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", s.path, err)
	}
	return nil
}

// LoadAll reads and decodes every row. A missing file yields an empty
// collection. Lines that fail to decode are skipped and reported as
// CorruptRecordError values in the second return; the caller decides
// whether to log or abort.
func (s *Store) LoadAll() ([]Row, []error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []error{fmt.Errorf("open %s: %w", s.path, err)}
	}
	defer f.Close()

	var (
		rows []Row
		errs []error
		line int
	)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line++
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		fields, err := s.decodeRow(sc.Text())
		if err != nil {
			errs = append(errs, &CorruptRecordError{Path: s.path, Line: line, Err: err})
			continue
		}
		rows = append(rows, Row{Line: line, Fields: fields})
	}
	if err := sc.Err(); err != nil {
		errs = append(errs, fmt.Errorf("read %s: %w", s.path, err))
	}
	return rows, errs
}

// OverwriteOne replaces the row whose first (ID) field decodes to id
// with the freshly encoded fields, keeping every other line verbatim
// and the replaced row in its original position. Rows are immutable
// text so an in-place update is a whole-file rewrite.
func (s *Store) OverwriteOne(id string, fields []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("open %s for rewrite: %w", s.path, err)
	}

	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	found := false
	var b strings.Builder
	for _, ln := range lines {
		if ln == "" {
			continue
		}
		if !found && s.rowID(ln) == id {
			b.WriteString(s.encodeRow(fields))
			found = true
			continue
		}
		b.WriteString(ln)
		b.WriteByte('\n')
	}
	if !found {
		return fmt.Errorf("%s: id %q: %w", s.path, id, ErrRowNotFound)
	}
	if err := os.WriteFile(s.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("rewrite %s: %w", s.path, err)
	}
	return nil
}

// Truncate empties the backing file, creating it if absent.
func (s *Store) Truncate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, nil, 0o644); err != nil {
		return fmt.Errorf("truncate %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) encodeRow(fields []string) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(s.cipher.Encode(f))
		b.WriteString(delimiter)
	}
	b.WriteByte('\n')
	return b.String()
}

func (s *Store) decodeRow(line string) ([]string, error) {
	parts := strings.Split(line, delimiter)
	// Trailing delimiter leaves one empty element at the end.
	if n := len(parts); n > 0 && strings.TrimSpace(parts[n-1]) == "" {
		parts = parts[:n-1]
	}
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		v, err := s.cipher.Decode(p)
		if err != nil {
			return nil, err
		}
		fields = append(fields, v)
	}
	return fields, nil
}

// rowID decodes only the first field of an encoded line. Undecodable
// prefixes return an empty string so corrupt rows are simply passed
// through by OverwriteOne.
func (s *Store) rowID(line string) string {
	head, _, _ := strings.Cut(line, delimiter)
	id, err := s.cipher.Decode(head)
	if err != nil {
		return ""
	}
	return id
}
