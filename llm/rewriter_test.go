package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/llm"
)

type fakeMessages struct {
	reply   *anthropic.Message
	err     error
	lastReq anthropic.MessageNewParams
}

func (f *fakeMessages) New(_ context.Context, body anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.lastReq = body
	return f.reply, f.err
}

func textReply(text string) *anthropic.Message {
	return &anthropic.Message{Content: []anthropic.ContentBlockUnion{{Type: "text", Text: text}}}
}

func TestRewrite_ReturnsCleanText(t *testing.T) {
	fake := &fakeMessages{reply: textReply("  \"I am unwell and need to rest today.\" ")}
	rw := llm.NewWithClient(fake, "", nil)

	out, err := rw.Rewrite(context.Background(), "sick cant come", leave.LeaveSick)

	require.NoError(t, err)
	assert.Equal(t, "I am unwell and need to rest today.", out)
	assert.Equal(t, anthropic.Model(llm.DefaultModel), fake.lastReq.Model)
}

func TestRewrite_APIError(t *testing.T) {
	rw := llm.NewWithClient(&fakeMessages{err: errors.New("529 overloaded")}, "", nil)

	_, err := rw.Rewrite(context.Background(), "sick", leave.LeaveSick)

	assert.ErrorContains(t, err, "overloaded")
}

func TestRewrite_NoTextBlock(t *testing.T) {
	rw := llm.NewWithClient(&fakeMessages{reply: &anthropic.Message{}}, "", nil)

	_, err := rw.Rewrite(context.Background(), "sick", leave.LeaveSick)

	assert.Error(t, err)
}

func TestRewrite_FailureFallsBackInExtractor(t *testing.T) {
	// GIVEN: A failing model behind the extractor
	x := &leave.Extractor{Rewriter: llm.NewWithClient(&fakeMessages{err: errors.New("timeout")}, "", nil)}

	// WHEN
	intent, err := x.Extract(context.Background(), leave.ExtractInput{Text: "fever today"})

	// THEN: The reason still comes back, type untouched
	require.NoError(t, err)
	assert.Equal(t, "Fever today", intent.RewrittenReason)
	assert.Equal(t, leave.LeaveSick, intent.LeaveType)
}
