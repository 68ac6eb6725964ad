package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	var gotSystem, gotPrompt string
	m := &Metrics{}
	tr := newTranslator(func(_ context.Context, system, prompt string) (string, error) {
		gotSystem, gotPrompt = system, prompt
		return "  # 제목\n- 요점  \n", nil
	}, "gpt-3.5-turbo", m)

	out, err := tr.Translate(context.Background(), "Hello world")
	require.NoError(t, err)
	assert.Equal(t, "# 제목\n- 요점", out)
	assert.Equal(t, translateSystemPrompt, gotSystem)
	assert.True(t, strings.HasSuffix(gotPrompt, "\n\nHello world"), "transcript must follow the instructions")
	assert.Contains(t, gotPrompt, "한국어로 자연스럽게 번역")
	assert.EqualValues(t, 1, m.LLMCalls.Load())
	assert.EqualValues(t, 0, m.LLMErrors.Load())
}

func TestTranslateError(t *testing.T) {
	m := &Metrics{}
	tr := newTranslator(func(context.Context, string, string) (string, error) {
		return "", errors.New("429 too many requests")
	}, "m", m)

	out, err := tr.Translate(context.Background(), "x")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.True(t, IsRemote(err))
	assert.EqualValues(t, 1, m.LLMErrors.Load())
}

func TestTranslateNilMetrics(t *testing.T) {
	tr := newTranslator(func(context.Context, string, string) (string, error) {
		return "   ", nil
	}, "m", nil)
	out, err := tr.Translate(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, out)
}
