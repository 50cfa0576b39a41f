package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"cidrblock/internal/engine"
	"cidrblock/internal/model"
)

const rangeSeparator = " - "

// ClassifyLine decides how a single list line is treated.
func ClassifyLine(line string) model.Entry {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return model.Entry{Kind: model.EntrySkip}
	}

	// Format: 10.0.0.0/8 (kept verbatim) or 114.96.0.0 - 114.103.255.255
	if strings.Contains(line, "/") {
		return model.Entry{Kind: model.EntryCIDR, CIDR: line}
	}
	if strings.Contains(line, rangeSeparator) {
		parts := strings.Split(line, rangeSeparator)
		if len(parts) != 2 {
			return model.Entry{Kind: model.EntrySkip}
		}
		return model.Entry{
			Kind:  model.EntryRange,
			Start: strings.TrimSpace(parts[0]),
			End:   strings.TrimSpace(parts[1]),
		}
	}
	return model.Entry{Kind: model.EntrySkip}
}

// ParseBlockList reads a block list and returns the deduplicated CIDR set.
// A malformed range aborts parsing.
func ParseBlockList(r io.Reader) (*engine.BlockSet, error) {
	set := engine.NewBlockSet()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		entry := ClassifyLine(scanner.Text())
		switch entry.Kind {
		case model.EntryCIDR:
			set.Add(entry.CIDR)
		case model.EntryRange:
			if err := set.AddRange(entry.Start, entry.End); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading block list: %w", err)
	}
	return set, nil
}
