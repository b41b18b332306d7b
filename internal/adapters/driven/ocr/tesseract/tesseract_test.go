package tesseract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nova/internal/core/domain"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t640\t480\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t20\t50\t12\t90\tHello\n" +
	"5\t1\t1\t1\t1\t2\t70\t18\t60\t14\t80\tworld\n" +
	"5\t1\t1\t1\t2\t1\t10\t40\t40\t12\t70\tsecond\n" +
	"5\t1\t1\t1\t2\t2\t60\t40\t10\t12\t-1\t \n"

func TestParseTSV(t *testing.T) {
	result, err := ParseTSV([]byte(sampleTSV))
	require.NoError(t, err)

	assert.Equal(t, "Hello world\nsecond", result.Text)
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)
	require.Len(t, result.Regions, 2)

	first := result.Regions[0]
	assert.Equal(t, "Hello world", first.Text)
	assert.InDelta(t, 0.85, first.Confidence, 1e-9)
	assert.Equal(t, 10, first.X)
	assert.Equal(t, 18, first.Y)
	assert.Equal(t, 120, first.Width)
	assert.Equal(t, 14, first.Height)
}

func TestParseTSV_NoWords(t *testing.T) {
	result, err := ParseTSV([]byte("level\tpage_num\n"))
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestNew_MissingBinary(t *testing.T) {
	_, err := New(Config{Command: "nova-no-such-ocr-binary"})
	assert.True(t, IsUnavailable(err))
}

func TestProcess(t *testing.T) {
	var gotArgs []string
	e := &Engine{
		command:  "tesseract",
		language: "deu",
		run: func(_ context.Context, _ string, args []string, stdin []byte) ([]byte, error) {
			gotArgs = args
			assert.Equal(t, []byte("img"), stdin)
			return []byte(sampleTSV), nil
		},
	}

	result, err := e.Process(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, []string{"stdin", "stdout", "-l", "deu", "tsv"}, gotArgs)
	assert.Equal(t, "deu", result.Language)
	assert.Len(t, result.Regions, 2)
}

func TestProcess_Errors(t *testing.T) {
	e := &Engine{
		run: func(context.Context, string, []string, []byte) ([]byte, error) {
			return nil, errors.New("exit status 1")
		},
	}

	_, err := e.Process(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.Process(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, domain.ErrProvider)
}
