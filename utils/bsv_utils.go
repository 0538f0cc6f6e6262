package utils

import (
	"bufio"
	"io"
	"os"
	"path"
	"strings"

	"segmenta.io/wbs/logger"
)

type GetHashFunc func(columns []string) uint64

// NewBSVReader streams the rows of a bar-separated dictionary file. Comment
// lines are skipped, rows are lowercased, and rows hashing equal under
// getHash are emitted only once.
func NewBSVReader(bsvPath string, getHash GetHashFunc) (<-chan []string, error) {
	_, fileName := path.Split(bsvPath)
	wbsLogger := logger.NewLogger("BSVReader (" + fileName + ")")

	f, err := os.Open(bsvPath)
	if err != nil {
		return nil, err
	}

	out := make(chan []string)

	go func() {
		defer f.Close()
		defer close(out)

		r := bufio.NewReader(f)

		var hashes = make(map[uint64]bool)

		for {
			line, err := r.ReadString('\n')
			if len(line) == 0 {
				if err == io.EOF {
					break
				} else if err != nil {
					wbsLogger.Error().Err(err)
					return
				}
			}

			if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
				continue
			}
			line = strings.ToLower(strings.Trim(line, "\n"))
			columns := strings.Split(line, "|")

			hash := getHash(columns)

			_, ok := hashes[hash]
			if !ok {
				hashes[hash] = true

				out <- columns
			}
		}
	}()

	return out, nil
}
