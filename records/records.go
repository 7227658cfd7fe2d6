package records

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxLineSize is the longest input line ForEach accepts.
const MaxLineSize = 1 << 20

var ErrMalformedRecord = errors.New("malformed record")

// MalformedError describes a data line that could not be split into fields.
type MalformedError struct {
	Line int // номер строки в файле, начиная с 1 (заголовок = 1)
	Text string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, ErrMalformedRecord, e.Text)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformedRecord
}

// Pair is one record of the filtered address file.
type Pair struct {
	First  string
	Second string
}

// SplitPair splits line on its first comma. Everything after the comma,
// further commas included, goes to Second.
func SplitPair(line string) (Pair, error) {
	first, second, ok := strings.Cut(line, ",")
	if !ok {
		return Pair{}, ErrMalformedRecord
	}
	return Pair{First: first, Second: second}, nil
}

// FirstField returns the text before the first comma, or the whole line
// when it has no comma.
func FirstField(line string) (string, error) {
	first, _, _ := strings.Cut(line, ",")
	if first == "" {
		return "", ErrMalformedRecord
	}
	return first, nil
}

// Line is a data line handed to the ForEach callback.
type Line struct {
	Number int
	Text   string
}

// Malformed returns a *MalformedError for this line.
func (l Line) Malformed() error {
	return &MalformedError{Line: l.Number, Text: l.Text}
}

// Stats describes what ForEach has read.
type Stats struct {
	HeaderSeen bool
	DataLines  int
}

// ForEach skips the header line of r and calls fn for every following line.
// Iteration stops at the first error returned by fn.
func ForEach(r io.Reader, fn func(Line) error) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	// Заголовок не проверяем, просто пропускаем
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return stats, fmt.Errorf("read header: %w", err)
		}
		return stats, nil
	}
	stats.HeaderSeen = true

	number := 1
	// Обрабатываем строку только после успешного чтения, иначе
	// последний перевод строки даст лишнюю пустую запись
	for scanner.Scan() {
		number++
		stats.DataLines++
		text := strings.TrimSuffix(scanner.Text(), "\r")
		if err := fn(Line{Number: number, Text: text}); err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read line %d: %w", number+1, err)
	}
	return stats, nil
}
