package netio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/snappy"
)

// Format names a supported network input format.
type Format string

const (
	// FormatEdgeList is a whitespace-separated "source target [weight]"
	// link list.
	FormatEdgeList Format = "edgelist"
	// FormatPajek is the Pajek format with *Vertices and *Edges/*Arcs
	// sections.
	FormatPajek Format = "pajek"
)

// ReadFile opens a network file, transparently decompressing a .snappy
// suffix, and parses it in the given format.
func ReadFile(path string, format Format) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".snappy") {
		r = snappy.NewReader(f)
	}
	switch format {
	case FormatEdgeList:
		return ReadEdgeList(r)
	case FormatPajek:
		return ReadPajek(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ReadEdgeList parses a whitespace-separated link list. Lines starting
// with '#' or '%' are comments. A missing weight defaults to 1.
func ReadEdgeList(r io.Reader) (*Network, error) {
	network := NewNetwork()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, &ParseError{Line: lineNum, Text: line, Cause: ErrBadLine}
		}
		source, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Text: line, Cause: err}
		}
		target, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Text: line, Cause: err}
		}
		weight := 1.0
		if len(fields) > 2 {
			weight, err = strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, &ParseError{Line: lineNum, Text: line, Cause: err}
			}
		}
		network.AddLink(uint32(source), uint32(target), weight)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if network.NumNodes() == 0 {
		return nil, ErrNoNodes
	}
	return network, nil
}

// ReadPajek parses the Pajek format: a *Vertices section with optional
// quoted names and node weights, followed by *Edges or *Arcs sections.
func ReadPajek(r io.Reader) (*Network, error) {
	network := NewNetwork()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	section := ""
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		if strings.HasPrefix(line, "*") {
			section = strings.ToLower(strings.Fields(line)[0])
			continue
		}
		switch section {
		case "*vertices":
			if err := parsePajekVertex(network, line, lineNum); err != nil {
				return nil, err
			}
		case "*edges", "*arcs":
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return nil, &ParseError{Line: lineNum, Text: line, Cause: ErrBadLine}
			}
			source, err := strconv.ParseUint(fields[0], 10, 32)
			if err != nil {
				return nil, &ParseError{Line: lineNum, Text: line, Cause: err}
			}
			target, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				return nil, &ParseError{Line: lineNum, Text: line, Cause: err}
			}
			weight := 1.0
			if len(fields) > 2 {
				weight, err = strconv.ParseFloat(fields[2], 64)
				if err != nil {
					return nil, &ParseError{Line: lineNum, Text: line, Cause: err}
				}
			}
			network.AddLink(uint32(source), uint32(target), weight)
		default:
			return nil, &ParseError{Line: lineNum, Text: line, Cause: ErrUnknownFormat}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if network.NumNodes() == 0 {
		return nil, ErrNoNodes
	}
	return network, nil
}

func parsePajekVertex(network *Network, line string, lineNum int) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return &ParseError{Line: lineNum, Text: line, Cause: ErrBadLine}
	}
	id, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return &ParseError{Line: lineNum, Text: line, Cause: err}
	}
	name := ""
	rest := strings.TrimSpace(line[len(fields[0]):])
	if strings.HasPrefix(rest, `"`) {
		if end := strings.Index(rest[1:], `"`); end >= 0 {
			name = rest[1 : end+1]
			rest = strings.TrimSpace(rest[end+2:])
		}
	} else if len(fields) > 1 {
		name = fields[1]
		rest = strings.TrimSpace(rest[len(fields[1]):])
	}
	weight := 1.0
	if rest != "" {
		if w, err := strconv.ParseFloat(strings.Fields(rest)[0], 64); err == nil {
			weight = w
		}
	}
	network.AddNode(uint32(id), name, weight)
	return nil
}
