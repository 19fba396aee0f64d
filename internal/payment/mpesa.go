package payment

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Stage is the position of an M-Pesa flow in its state machine:
//
//	PROMPT -> PROCESSING -> PIN_ENTRY -> PROCESSING -> COMPLETE
//
// Cancellation is allowed from PROMPT and PIN_ENTRY only and lands in
// CANCELLED without producing anything.
type Stage string

const (
	StagePrompt     Stage = "PROMPT"
	StageProcessing Stage = "PROCESSING"
	StagePINEntry   Stage = "PIN_ENTRY"
	StageComplete   Stage = "COMPLETE"
	StageCancelled  Stage = "CANCELLED"
)

var (
	ErrInvalidPhone      = errors.New("invalid mpesa phone number, expected format 254XXXXXXXXX")
	ErrInvalidPIN        = errors.New("mpesa pin must be exactly 4 digits")
	ErrIllegalTransition = errors.New("illegal mpesa stage transition")
	ErrCannotCancel      = errors.New("mpesa flow cannot be cancelled at this stage")
)

// Kenyan mobile numbers in international format: 2547XXXXXXXX or 2541XXXXXXXX.
var phonePattern = regexp.MustCompile(`^254[17]\d{8}$`)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// Flow is one interactive M-Pesa payment attempt. It is not safe for
// concurrent use; each flow belongs to a single buyer interaction.
type Flow struct {
	stage       Stage
	amount      decimal.Decimal
	phone       string
	receipt     string
	promptDelay time.Duration
	settleDelay time.Duration
}

func NewFlow(amount decimal.Decimal, promptDelay, settleDelay time.Duration) *Flow {
	return &Flow{
		stage:       StagePrompt,
		amount:      amount,
		promptDelay: promptDelay,
		settleDelay: settleDelay,
	}
}

func (f *Flow) Stage() Stage            { return f.stage }
func (f *Flow) Phone() string           { return f.phone }
func (f *Flow) Amount() decimal.Decimal { return f.amount }

// Receipt returns the confirmation code; empty until the flow completes.
func (f *Flow) Receipt() string { return f.receipt }

// RequestPrompt validates the payer's phone number and moves the flow through
// the simulated network delay to PIN entry. An invalid number leaves the flow
// at PROMPT.
func (f *Flow) RequestPrompt(ctx context.Context, phone string) error {
	if f.stage != StagePrompt {
		return ErrIllegalTransition
	}
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}

	f.phone = phone
	f.stage = StageProcessing
	if err := sleepFor(ctx, f.promptDelay); err != nil {
		f.stage = StagePrompt
		return err
	}
	f.stage = StagePINEntry
	return nil
}

// SubmitPIN validates the credential and settles the payment. The simulated
// settlement always succeeds once the PIN is well-formed.
func (f *Flow) SubmitPIN(ctx context.Context, pin string) error {
	if f.stage != StagePINEntry {
		return ErrIllegalTransition
	}
	if !pinPattern.MatchString(pin) {
		return ErrInvalidPIN
	}

	f.stage = StageProcessing
	if err := sleepFor(ctx, f.settleDelay); err != nil {
		f.stage = StagePINEntry
		return err
	}
	f.receipt = newReference("MP")
	f.stage = StageComplete
	return nil
}

// Cancel aborts the flow. Only the two user-facing stages can be abandoned;
// PROCESSING and the terminal stages cannot.
func (f *Flow) Cancel() error {
	if f.stage != StagePrompt && f.stage != StagePINEntry {
		return ErrCannotCancel
	}
	f.stage = StageCancelled
	return nil
}

func sleepFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
