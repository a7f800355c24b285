// Package chunker splits lesson text into sentence-aligned, overlapping passages.
package chunker

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// passageNamespace seeds deterministic passage IDs.
var passageNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("courserag:passage"))

// Processor splits lesson text into chunks of whole sentences.
// It implements the Chunker interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// FromSettings creates a processor from chunking settings.
func FromSettings(s domain.ChunkingSettings) *Processor {
	return New(WithChunkSize(s.Size), WithOverlap(s.Overlap))
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured target size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// span is a byte range [start, end) of the lesson text. runeStart and
// runeEnd are the same bounds counted in characters; sizes are measured
// with them.
type span struct {
	start, end         int
	runeStart, runeEnd int
}

// width is the character length of the sentences a through b.
func width(spans []span, a, b int) int {
	return spans[b].runeEnd - spans[a].runeStart
}

// Chunk splits the lesson content into passages.
//
// Sentences are accumulated greedily while the chunk stays within the target
// size. A sentence longer than the target becomes a chunk of its own. Each
// chunk after the first repeats the trailing sentences of its predecessor
// that fit in the overlap, and always contains at least one new sentence.
func (p *Processor) Chunk(courseTitle string, lesson domain.Lesson) []domain.Passage {
	text := lesson.Content
	if strings.TrimSpace(text) == "" {
		return nil
	}

	header := domain.PassageHeader(courseTitle, lesson.Number)
	var passages []domain.Passage

	for _, r := range p.ranges(sentenceSpans(text)) {
		content := text[r.start:r.end]
		idx := len(passages)
		passages = append(passages, domain.Passage{
			ID:           PassageID(courseTitle, lesson.Number, idx),
			CourseTitle:  courseTitle,
			LessonNumber: lesson.Number,
			ChunkIndex:   idx,
			Content:      content,
			Start:        r.start,
			End:          r.end,
			Text:         header + strings.TrimSpace(content),
		})
	}

	return passages
}

// ranges groups sentence spans into chunk ranges.
func (p *Processor) ranges(spans []span) []span {
	n := len(spans)
	if n == 0 {
		return nil
	}

	var out []span
	first, reach := 0, 0
	for {
		last := reach
		for last+1 < n && width(spans, first, last+1) <= p.chunkSize {
			last++
		}
		out = append(out, span{start: spans[first].start, end: spans[last].end})
		if last == n-1 {
			return out
		}

		next := last + 1
		for o := last; o > first; o-- {
			if width(spans, o, last) > p.overlap {
				break
			}
			next = o
		}
		// Drop overlap sentences that would push the next sentence past the target.
		for next <= last && width(spans, next, last+1) > p.chunkSize {
			next++
		}

		first, reach = next, last+1
	}
}

// SplitSentences returns the sentences of text. Concatenating them yields text.
// A boundary is terminal punctuation followed by whitespace; the whitespace
// stays with the preceding sentence.
func SplitSentences(text string) []string {
	spans := sentenceSpans(text)
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = text[s.start:s.end]
	}
	return out
}

func sentenceSpans(text string) []span {
	var spans []span
	start, runeStart, runes := 0, 0, 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		runes++
		if !isTerminal(r) || i >= len(text) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(next) {
			continue
		}
		for i < len(text) {
			ws, wsSize := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(ws) {
				break
			}
			i += wsSize
			runes++
		}
		spans = append(spans, span{start: start, end: i, runeStart: runeStart, runeEnd: runes})
		start, runeStart = i, runes
	}
	if start < len(text) {
		spans = append(spans, span{start: start, end: len(text), runeStart: runeStart, runeEnd: runes})
	}
	return spans
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// PassageID derives the stable ID of a passage from its position.
func PassageID(courseTitle string, lessonNumber, chunkIndex int) string {
	key := courseTitle + "\x1f" + strconv.Itoa(lessonNumber) + "\x1f" + strconv.Itoa(chunkIndex)
	return uuid.NewSHA1(passageNamespace, []byte(key)).String()
}
