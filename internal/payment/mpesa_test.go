package payment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFlow() *Flow {
	return NewFlow(decimal.NewFromInt(1500), 0, 0)
}

func TestFlow_HappyPath(t *testing.T) {
	f := newTestFlow()
	require.Equal(t, StagePrompt, f.Stage())

	require.NoError(t, f.RequestPrompt(context.Background(), "254712345678"))
	require.Equal(t, StagePINEntry, f.Stage())
	assert.Equal(t, "254712345678", f.Phone())

	require.NoError(t, f.SubmitPIN(context.Background(), "1234"))
	require.Equal(t, StageComplete, f.Stage())
	assert.Regexp(t, `^MP-[0-9A-Z]{8}$`, f.Receipt())
}

func TestFlow_InvalidPhoneStaysAtPrompt(t *testing.T) {
	cases := []string{"12345", "0712345678", "254812345678", "25471234567", "2547123456789", ""}

	for _, phone := range cases {
		f := newTestFlow()
		err := f.RequestPrompt(context.Background(), phone)
		require.ErrorIs(t, err, ErrInvalidPhone, "phone %q", phone)
		require.Equal(t, StagePrompt, f.Stage(), "phone %q", phone)
	}
}

func TestFlow_InvalidPINStaysAtPINEntry(t *testing.T) {
	for _, pin := range []string{"123", "12345", "12a4", ""} {
		f := newTestFlow()
		require.NoError(t, f.RequestPrompt(context.Background(), "254112345678"))

		err := f.SubmitPIN(context.Background(), pin)
		require.ErrorIs(t, err, ErrInvalidPIN, "pin %q", pin)
		require.Equal(t, StagePINEntry, f.Stage(), "pin %q", pin)
	}
}

func TestFlow_TransitionGuards(t *testing.T) {
	f := newTestFlow()

	// PIN before prompt
	require.ErrorIs(t, f.SubmitPIN(context.Background(), "1234"), ErrIllegalTransition)

	require.NoError(t, f.RequestPrompt(context.Background(), "254712345678"))

	// second prompt after the first succeeded
	require.ErrorIs(t, f.RequestPrompt(context.Background(), "254712345678"), ErrIllegalTransition)

	require.NoError(t, f.SubmitPIN(context.Background(), "1234"))

	// terminal stage accepts nothing
	require.ErrorIs(t, f.SubmitPIN(context.Background(), "1234"), ErrIllegalTransition)
}

func TestFlow_Cancel(t *testing.T) {
	t.Run("allowed from prompt", func(t *testing.T) {
		f := newTestFlow()
		require.NoError(t, f.Cancel())
		require.Equal(t, StageCancelled, f.Stage())
	})

	t.Run("allowed from pin entry", func(t *testing.T) {
		f := newTestFlow()
		require.NoError(t, f.RequestPrompt(context.Background(), "254712345678"))
		require.NoError(t, f.Cancel())
		require.Equal(t, StageCancelled, f.Stage())
	})

	t.Run("refused once complete", func(t *testing.T) {
		f := newTestFlow()
		require.NoError(t, f.RequestPrompt(context.Background(), "254712345678"))
		require.NoError(t, f.SubmitPIN(context.Background(), "1234"))
		require.ErrorIs(t, f.Cancel(), ErrCannotCancel)
	})

	t.Run("refused once cancelled", func(t *testing.T) {
		f := newTestFlow()
		require.NoError(t, f.Cancel())
		require.ErrorIs(t, f.Cancel(), ErrCannotCancel)
	})
}

func TestFlow_ContextCancelDuringDelay(t *testing.T) {
	f := NewFlow(decimal.NewFromInt(100), time.Minute, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.RequestPrompt(ctx, "254712345678")
	require.ErrorIs(t, err, context.Canceled)
	// the flow backs off to PROMPT so the buyer can retry
	require.Equal(t, StagePrompt, f.Stage())
}
