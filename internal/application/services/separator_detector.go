package services

import (
	"strings"
)

// separatorCandidates is the fixed priority order for delimiter detection
var separatorCandidates = []rune{',', ';', '\t', '|'}

// SeparatorDetector infers the field delimiter of a delimited text file
type SeparatorDetector struct{}

// NewSeparatorDetector creates a new separator detector
func NewSeparatorDetector() *SeparatorDetector {
	return &SeparatorDetector{}
}

// Detect samples the first three non-blank lines and returns the first
// candidate, in priority order, that occurs the same non-zero number of
// times in every sampled line. A single line carries no consistency signal,
// so files with fewer than two lines get the comma default. There is no
// error path.
func (d *SeparatorDetector) Detect(text string) rune {
	sample := sampleLines(text, 3)
	if len(sample) < 2 {
		return ','
	}

	for _, candidate := range separatorCandidates {
		if consistentCount(sample, candidate) {
			return candidate
		}
	}

	return ','
}

func sampleLines(text string, max int) []string {
	var sample []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sample = append(sample, line)
		if len(sample) == max {
			break
		}
	}
	return sample
}

func consistentCount(lines []string, sep rune) bool {
	want := strings.Count(lines[0], string(sep))
	if want == 0 {
		return false
	}
	for _, line := range lines[1:] {
		if strings.Count(line, string(sep)) != want {
			return false
		}
	}
	return true
}
