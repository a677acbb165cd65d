// Package chunker splits document pages into retrieval-sized fragments.
package chunker

import (
	"strconv"
	"strings"

	"pdfchat/internal/domain"
)

// DefaultSeparators is the fallback ladder tried in order: paragraph break,
// line break, word boundary, and finally a hard character cut.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveSplitter splits text into chunks of roughly chunkSize characters
// with overlap characters carried between adjacent chunks. When a piece is
// still too large for the current separator, it recurses with the next one.
type RecursiveSplitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewRecursiveSplitter creates a splitter. Zero or negative parameters fall
// back to the defaults of 800/100.
func NewRecursiveSplitter(chunkSize, overlap int, separators []string) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if overlap < 0 {
		overlap = 100
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &RecursiveSplitter{chunkSize: chunkSize, overlap: overlap, separators: separators}
}

// Chunk splits page texts into ordered fragments. Fragment indexes are
// global across the document so rank-order concatenation stays stable.
func (c *RecursiveSplitter) Chunk(documentID string, pages []string) ([]domain.Fragment, error) {
	var fragments []domain.Fragment
	idx := 0
	for pageNo, page := range pages {
		for _, text := range c.splitText(page, c.separators) {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			fragments = append(fragments, domain.Fragment{
				DocumentID: documentID,
				FragmentID: documentID + ":" + strconv.Itoa(idx),
				Text:       text,
				Index:      idx,
				Page:       pageNo + 1,
			})
			idx++
		}
	}
	return fragments, nil
}

func (c *RecursiveSplitter) splitText(text string, separators []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	// Pick the first separator that occurs in the text; the empty separator
	// always matches and means a hard cut.
	sep := separators[len(separators)-1]
	var remaining []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			remaining = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		pieces = hardCut(text, c.chunkSize)
	} else {
		pieces = strings.Split(text, sep)
	}

	var out []string
	var pending []string
	for _, piece := range pieces {
		if len(piece) < c.chunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			out = append(out, c.mergePieces(pending, sep)...)
			pending = nil
		}
		if len(remaining) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, c.splitText(piece, remaining)...)
		}
	}
	if len(pending) > 0 {
		out = append(out, c.mergePieces(pending, sep)...)
	}
	return out
}

// mergePieces packs small pieces into chunks up to chunkSize, keeping a tail
// of at most overlap characters when starting the next chunk.
func (c *RecursiveSplitter) mergePieces(pieces []string, sep string) []string {
	var chunks []string
	var window []string
	total := 0
	sepLen := len(sep)

	flush := func() {
		if len(window) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(window, sep))
		if joined != "" {
			chunks = append(chunks, joined)
		}
	}

	for _, p := range pieces {
		pLen := len(p)
		if total > 0 && total+sepLen+pLen > c.chunkSize {
			flush()
			// Drop from the front until the carried tail fits the overlap.
			for total > c.overlap && len(window) > 0 {
				total -= len(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}
		if total > 0 {
			total += sepLen
		}
		window = append(window, p)
		total += pLen
	}
	flush()
	return chunks
}

func hardCut(text string, size int) []string {
	var out []string
	runes := []rune(text)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
