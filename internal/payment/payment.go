// Package payment simulates a payment gateway. Outcomes are deterministic and
// never touch the network; the only multi-step method is M-Pesa, which models
// the prompt/PIN interaction of the real product.
package payment

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodCard    Method = "card"
	MethodMpesa   Method = "mpesa"
	MethodBank    Method = "bank"
	MethodPaypal  Method = "paypal"
	MethodUnknown Method = "unknown"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// Outcome is what a method variant reports back to the checkout flow. Details
// carries the method-specific receipt (card last4, bank instructions, ...).
type Outcome struct {
	Method  Method            `json:"method"`
	Status  Status            `json:"status"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type CardDetails struct {
	Number string `json:"cardNumber"`
	Name   string `json:"cardName"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

type MpesaDetails struct {
	Phone string `json:"mpesaNumber"`
	PIN   string `json:"pin,omitempty"`
}

// Details is the tagged union of method-specific inputs. At most one field is
// set, matching the initiated Method.
type Details struct {
	Card  *CardDetails  `json:"cardDetails,omitempty"`
	Mpesa *MpesaDetails `json:"mpesaDetails,omitempty"`
}

// Simulator implements every method variant behind one initiate contract.
type Simulator struct {
	// BankTransferCompletes controls whether bank transfers are optimistically
	// marked completed despite settlement happening out-of-band.
	BankTransferCompletes bool

	// PromptDelay and SettleDelay apply to the interactive M-Pesa flow only.
	PromptDelay time.Duration
	SettleDelay time.Duration
}

func NewSimulator(bankTransferCompletes bool, promptDelay, settleDelay time.Duration) *Simulator {
	return &Simulator{
		BankTransferCompletes: bankTransferCompletes,
		PromptDelay:           promptDelay,
		SettleDelay:           settleDelay,
	}
}

// Initiate runs the single-shot payment for the given method. A failed outcome
// means the input was malformed and nothing was charged; callers must not
// create any order state when Status is StatusFailed.
func (s *Simulator) Initiate(ctx context.Context, amount decimal.Decimal, method Method, det Details) Outcome {
	switch method {
	case MethodCard:
		return s.initiateCard(det.Card)
	case MethodMpesa:
		return s.initiateMpesa(ctx, amount, det.Mpesa)
	case MethodBank:
		return s.initiateBank()
	case MethodPaypal:
		return s.initiatePaypal()
	default:
		// No payment info provided: the order is created pending, matching the
		// storefront's cash-on-delivery-like fallback.
		return Outcome{Method: MethodUnknown, Status: StatusPending}
	}
}

func (s *Simulator) initiateCard(det *CardDetails) Outcome {
	if det == nil || det.Number == "" || det.Name == "" || det.Expiry == "" || det.CVV == "" {
		return Outcome{Method: MethodCard, Status: StatusFailed, Reason: "missing card fields"}
	}

	last4 := det.Number
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}

	return Outcome{
		Method: MethodCard,
		Status: StatusCompleted,
		Details: map[string]string{
			"last4":  last4,
			"expiry": det.Expiry,
		},
	}
}

func (s *Simulator) initiateMpesa(ctx context.Context, amount decimal.Decimal, det *MpesaDetails) Outcome {
	if det == nil {
		return Outcome{Method: MethodMpesa, Status: StatusFailed, Reason: "missing mpesa details"}
	}

	// Drive the same state machine the interactive flow uses, without the
	// simulated delays: the one-shot path runs inside a checkout request.
	flow := NewFlow(amount, 0, 0)
	if err := flow.RequestPrompt(ctx, det.Phone); err != nil {
		return Outcome{Method: MethodMpesa, Status: StatusFailed, Reason: err.Error()}
	}
	pin := det.PIN
	if pin == "" {
		// The storefront checkout form collects only the phone number; PIN
		// entry happens on the handset in the real product.
		pin = "0000"
	}
	if err := flow.SubmitPIN(ctx, pin); err != nil {
		return Outcome{Method: MethodMpesa, Status: StatusFailed, Reason: err.Error()}
	}

	return Outcome{
		Method: MethodMpesa,
		Status: StatusCompleted,
		Details: map[string]string{
			"phone":   det.Phone,
			"receipt": flow.Receipt(),
		},
	}
}

func (s *Simulator) initiateBank() Outcome {
	status := StatusPending
	if s.BankTransferCompletes {
		status = StatusCompleted
	}

	return Outcome{
		Method: MethodBank,
		Status: status,
		Details: map[string]string{
			"bankName":        "Kenya Commercial Bank (KCB)",
			"accountNumber":   "1234567890",
			"accountName":     "DroneZone Kenya Ltd",
			"branch":          "Nairobi Main Branch",
			"swiftCode":       "KCBLKENX",
			"referenceNumber": newReference("BT"),
			"instructions":    "Please use the reference number when making your transfer.",
		},
	}
}

func (s *Simulator) initiatePaypal() Outcome {
	return Outcome{
		Method: MethodPaypal,
		Status: StatusCompleted,
		Details: map[string]string{
			"transaction": newReference("PP"),
		},
	}
}

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newReference makes a short reconciliation id like "BT-K4J29QZX".
func newReference(prefix string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte('-')
	for i := 0; i < 8; i++ {
		b.WriteByte(referenceAlphabet[rand.Intn(len(referenceAlphabet))])
	}
	return b.String()
}
