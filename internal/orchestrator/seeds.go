package orchestrator

import (
	"bufio"
	"math/rand"
	"os"
	"strings"
)

// loadSeeds reads path, one URL per line with blank lines ignored, and
// returns a uniform random sample of n lines drawn by rng. If the file
// holds fewer than n non-blank lines, every line is returned.
func loadSeeds(path string, n int, rng *rand.Rand) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if n >= len(lines) {
		return lines, nil
	}

	sampled := make([]string, len(lines))
	copy(sampled, lines)
	rng.Shuffle(len(sampled), func(i, j int) {
		sampled[i], sampled[j] = sampled[j], sampled[i]
	})
	return sampled[:n], nil
}
