// The wire package defines the request/response format shared by the client
// and server. Both peers must apply these rules identically since the end
// marker is the only in-band signal on the wire.
package wire

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Delimiter separates the fields of a request and the words of a response.
	Delimiter = ","
	// Terminator ends every request and response line.
	Terminator = "\n"
	// EndMarker is the in-band token signalling that no further data follows.
	// It is sent as the final field of a response, or alone when there are no
	// words to attach.
	EndMarker = "EOF"
)

// Request is one page request: the index of the first word to return and the
// maximum number of words to return.
type Request struct {
	Offset int
	Count  int
}

// ParseRequest parses a request line of the form "<offset>,<count>". The
// trailing newline, if present, is stripped first. A missing delimiter, a
// non-numeric field, or a count below 1 is a parse error; the server answers
// all of these with the bare end marker, identically to an out-of-range
// offset.
func ParseRequest(line string) (Request, error) {
	line = strings.TrimSuffix(line, Terminator)

	offsetField, countField, found := strings.Cut(line, Delimiter)
	if !found {
		return Request{}, fmt.Errorf("request %q missing delimiter", line)
	}

	offset, err := strconv.Atoi(offsetField)
	if err != nil {
		return Request{}, fmt.Errorf("invalid offset %q: %w", offsetField, err)
	}
	count, err := strconv.Atoi(countField)
	if err != nil {
		return Request{}, fmt.Errorf("invalid count %q: %w", countField, err)
	}
	if count < 1 {
		return Request{}, fmt.Errorf("count %d out of range", count)
	}

	return Request{Offset: offset, Count: count}, nil
}

// Encode renders the request in its wire form, including the terminator.
func (r Request) Encode() []byte {
	return []byte(strconv.Itoa(r.Offset) + Delimiter + strconv.Itoa(r.Count) + Terminator)
}

// EncodePage renders a response line. A non-terminal page is the words joined
// by the delimiter; a terminal page carries the end marker as its final field.
// A terminal page with no words is the bare end marker.
func EncodePage(words []string, terminal bool) []byte {
	fields := words
	if terminal {
		fields = append(append([]string{}, words...), EndMarker)
	}
	return []byte(strings.Join(fields, Delimiter) + Terminator)
}

// DecodePage interprets a response line received by the client. The line may
// still carry its trailing newline. If the end marker appears anywhere in the
// line the page is terminal and only the words preceding the marker are
// returned; otherwise every field is a word.
func DecodePage(line string) (words []string, terminal bool) {
	line = strings.TrimSuffix(line, Terminator)

	if i := strings.Index(line, EndMarker); i >= 0 {
		prefix := strings.TrimSuffix(line[:i], Delimiter)
		return Split(prefix), true
	}
	return Split(line), false
}

// Split divides s on the delimiter, preserving empty segments, with one
// exception: an empty input yields no elements rather than a single empty
// element.
func Split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, Delimiter)
}
