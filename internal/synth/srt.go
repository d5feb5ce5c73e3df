package synth

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/clipsmith/internal/timing"
)

// ParseSRTFile reads an SRT file and returns one WordTiming per cue.
func ParseSRTFile(path string) ([]timing.WordTiming, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	return ParseSRT(string(data)), nil
}

// ParseSRT converts SRT cues into word timings. Malformed blocks and cues
// with no text are skipped; cue text is joined onto one line.
func ParseSRT(content string) []timing.WordTiming {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSpace(content)
	words := []timing.WordTiming{}
	if content == "" {
		return words
	}

	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}
		if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err != nil {
			continue
		}
		parts := strings.Split(lines[1], "-->")
		if len(parts) != 2 {
			continue
		}
		start, err := parseSRTTimestamp(parts[0])
		if err != nil {
			continue
		}
		end, err := parseSRTTimestamp(parts[1])
		if err != nil {
			continue
		}
		text := strings.Join(strings.Fields(strings.Join(lines[2:], " ")), " ")
		if text == "" {
			continue
		}
		if end < start {
			end = start
		}
		words = append(words, timing.WordTiming{Word: text, Start: start, End: end})
	}
	return words
}

// parseSRTTimestamp parses "HH:MM:SS,mmm"; a period separator is accepted.
func parseSRTTimestamp(value string) (float64, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
