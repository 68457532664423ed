// Package tle reads NORAD two-line element sets.
package tle

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Element is one satellite's two-line element set.
type Element struct {
	NORADID int
	Name    string
	Epoch   time.Time
	Line1   string
	Line2   string
}

// Parse reads three-line (name + two lines) TLE text. Two-line sets without
// a name line are accepted too. Malformed sets are skipped with a warning.
func Parse(r io.Reader, logger *slog.Logger) ([]Element, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r\n "); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}

	var elements []Element
	for i := 0; i+1 < len(lines); {
		var name string
		if !strings.HasPrefix(lines[i], "1 ") {
			name = strings.TrimSpace(lines[i])
			i++
		}
		if i+1 >= len(lines) {
			break
		}
		line1, line2 := lines[i], lines[i+1]
		if !strings.HasPrefix(line1, "1 ") || !strings.HasPrefix(line2, "2 ") {
			logger.Warn("skipping malformed TLE entry", "component", "tle", "line_index", i, "name", name)
			if name == "" {
				i++
			}
			continue
		}
		i += 2

		el, err := parseElement(name, line1, line2)
		if err != nil {
			logger.Warn("skipping TLE entry", "component", "tle", "name", name, "error", err)
			continue
		}
		elements = append(elements, el)
	}

	return elements, nil
}

func parseElement(name, line1, line2 string) (Element, error) {
	if len(line1) < 32 {
		return Element{}, fmt.Errorf("line1 too short (%d chars)", len(line1))
	}

	// NORAD catalogue number: columns 3-7.
	noradStr := strings.TrimSpace(line1[2:7])
	noradID, err := strconv.Atoi(noradStr)
	if err != nil {
		return Element{}, fmt.Errorf("invalid NORAD ID %q", noradStr)
	}

	// Epoch: columns 19-32.
	epoch, err := parseEpoch(strings.TrimSpace(line1[18:32]))
	if err != nil {
		return Element{}, err
	}

	if name == "" {
		name = strconv.Itoa(noradID)
	}
	return Element{NORADID: noradID, Name: name, Epoch: epoch, Line1: line1, Line2: line2}, nil
}

// parseEpoch converts YYDDD.DDDDDDDD to a time. Years 57-99 are 19xx, 00-56 are 20xx.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", s[:2], err)
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	day, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", s[2:], err)
	}

	// Day 1 is January 1.
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration((day - 1) * float64(24*time.Hour))), nil
}

// Find returns the element for noradID.
func Find(elements []Element, noradID int) (Element, bool) {
	for _, el := range elements {
		if el.NORADID == noradID {
			return el, true
		}
	}
	return Element{}, false
}
