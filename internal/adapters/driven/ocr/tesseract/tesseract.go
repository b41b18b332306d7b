// Package tesseract provides an OCR engine backed by the tesseract CLI.
// The image is piped on stdin and word boxes are read back as TSV.
package tesseract

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// Default configuration values.
const (
	DefaultCommand  = "tesseract"
	DefaultLanguage = "eng"
)

// Config holds configuration for the tesseract engine.
type Config struct {
	// Command is the tesseract binary name or path.
	Command string

	// Language is passed as -l (e.g. "eng", "eng+deu").
	Language string
}

// runFunc executes a command with stdin and returns stdout.
type runFunc func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)

// Engine runs tesseract as a subprocess.
type Engine struct {
	command  string
	language string
	run      runFunc
}

// New creates an engine. It returns domain.ErrOCRUnavailable when the
// binary cannot be found on PATH.
func New(cfg Config) (*Engine, error) {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}

	path, err := exec.LookPath(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w: %w", domain.ErrOCRUnavailable, err)
	}

	return &Engine{command: path, language: cfg.Language, run: execRun}, nil
}

// Process recognises text in an encoded image.
func (e *Engine) Process(ctx context.Context, image []byte) (domain.OCRResult, error) {
	if len(image) == 0 {
		return domain.OCRResult{}, fmt.Errorf("tesseract: %w: empty image", domain.ErrInvalidInput)
	}

	start := time.Now()
	out, err := e.run(ctx, e.command, []string{"stdin", "stdout", "-l", e.language, "tsv"}, image)
	if err != nil {
		return domain.OCRResult{}, fmt.Errorf("tesseract: %w: %w", domain.ErrProvider, err)
	}

	result, err := ParseTSV(out)
	if err != nil {
		return domain.OCRResult{}, fmt.Errorf("tesseract: %w: %w", domain.ErrProvider, err)
	}
	result.Language = e.language
	result.ProcessingTime = time.Since(start)
	return result, nil
}

func execRun(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// tsv column indexes.
const (
	colBlock  = 2
	colPar    = 3
	colLine   = 4
	colLeft   = 6
	colTop    = 7
	colWidth  = 8
	colHeight = 9
	colConf   = 10
	colText   = 11
	numCols   = 12
)

type lineKey struct{ block, par, line int }

// ParseTSV turns tesseract TSV output into an OCRResult with one region
// per recognised line. Confidence is the mean word confidence scaled to [0, 1].
func ParseTSV(data []byte) (domain.OCRResult, error) {
	var (
		result  domain.OCRResult
		order   []lineKey
		lines   = map[lineKey]*domain.Region{}
		counts  = map[lineKey]int{}
		total   float64
		words   int
		scanner = bufio.NewScanner(bytes.NewReader(data))
		header  = true
	)

	for scanner.Scan() {
		if header {
			header = false
			if strings.HasPrefix(scanner.Text(), "level") {
				continue
			}
		}

		cols := strings.Split(scanner.Text(), "\t")
		if len(cols) < numCols {
			continue
		}
		text := strings.TrimSpace(cols[colText])
		conf, err := strconv.ParseFloat(cols[colConf], 64)
		if err != nil || conf < 0 || text == "" {
			continue
		}

		ints := make([]int, colConf)
		for i := colBlock; i < colConf; i++ {
			if ints[i], err = strconv.Atoi(cols[i]); err != nil {
				return domain.OCRResult{}, fmt.Errorf("bad tsv column %d: %w", i, err)
			}
		}

		key := lineKey{ints[colBlock], ints[colPar], ints[colLine]}
		r, ok := lines[key]
		if !ok {
			r = &domain.Region{X: ints[colLeft], Y: ints[colTop]}
			lines[key] = r
			order = append(order, key)
		}
		extend(r, ints[colLeft], ints[colTop], ints[colWidth], ints[colHeight])
		if r.Text != "" {
			r.Text += " "
		}
		r.Text += text
		r.Confidence += conf / 100
		counts[key]++

		total += conf / 100
		words++
	}
	if err := scanner.Err(); err != nil {
		return domain.OCRResult{}, err
	}
	if words == 0 {
		return result, nil
	}

	texts := make([]string, 0, len(order))
	for _, key := range order {
		r := lines[key]
		r.Confidence /= float64(counts[key])
		result.Regions = append(result.Regions, *r)
		texts = append(texts, r.Text)
	}
	result.Text = strings.Join(texts, "\n")
	result.Confidence = total / float64(words)
	return result, nil
}

// extend grows r to cover the given box.
func extend(r *domain.Region, x, y, w, h int) {
	right := max(r.X+r.Width, x+w)
	bottom := max(r.Y+r.Height, y+h)
	r.X = min(r.X, x)
	r.Y = min(r.Y, y)
	r.Width = right - r.X
	r.Height = bottom - r.Y
}

// IsUnavailable reports whether err means no OCR engine is installed.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrOCRUnavailable)
}
