package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_ReadLine(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedValue string
		expectedErr   error
	}{
		{name: "successful read", input: "test input\n", expectedValue: "test input"},
		{name: "read with extra whitespace", input: "  test input  \n", expectedValue: "test input"},
		{name: "empty line", input: "\n", expectedValue: ""},
		{name: "last line without newline", input: "no newline", expectedValue: "no newline"},
		{name: "end of input", input: "", expectedErr: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewLineReader(strings.NewReader(tt.input), nil)

			result, err := r.ReadLine(context.Background())
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedValue, result)
		})
	}
}

func TestLineReader_ContextCancellation(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	r := NewLineReader(pr, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestLineReader_Ask(t *testing.T) {
	var out bytes.Buffer
	r := NewLineReader(strings.NewReader("\nAsha\n"), &out)
	ctx := context.Background()

	answer, err := r.Ask(ctx, "Currency", "USD")
	require.NoError(t, err)
	assert.Equal(t, "USD", answer, "empty answer takes the default")
	assert.Contains(t, out.String(), "Currency [USD]")

	answer, err = r.Ask(ctx, "Name", "")
	require.NoError(t, err)
	assert.Equal(t, "Asha", answer)
}

func TestLineReader_AskRequired(t *testing.T) {
	var out bytes.Buffer
	r := NewLineReader(strings.NewReader("\n  \nasha@example.com\n"), &out)

	answer, err := r.AskRequired(context.Background(), "Email")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", answer)
	assert.Equal(t, 2, strings.Count(out.String(), "Email is required"))
}

func TestNewLineReader_NilInput(t *testing.T) {
	assert.Panics(t, func() { NewLineReader(nil, nil) })
}
