package profile

import (
	"encoding/json"
	"fmt"
)

// PayoutMethod discriminates the payout variants.
type PayoutMethod string

const (
	PayoutBank   PayoutMethod = "bank"
	PayoutPayPal PayoutMethod = "paypal"
	PayoutStripe PayoutMethod = "stripe"
)

// BankPayout is a direct-deposit destination.
type BankPayout struct {
	AccountHolderName string `json:"accountHolderName"`
	AccountNumber     string `json:"accountNumber"`
	RoutingNumber     string `json:"routingNumber"`
}

// PayPalPayout is a PayPal destination.
type PayPalPayout struct {
	Email string `json:"email"`
}

// StripePayout is a Stripe connected-account destination.
type StripePayout struct {
	AccountID string `json:"accountId"`
}

// PayoutDetails is a tagged union over the three payout variants,
// keyed on the "method" field. Exactly one variant is set.
type PayoutDetails struct {
	Method PayoutMethod
	Bank   *BankPayout
	PayPal *PayPalPayout
	Stripe *StripePayout
}

// Describe returns a short human-readable summary of the destination.
func (p PayoutDetails) Describe() string {
	switch p.Method {
	case PayoutBank:
		if p.Bank == nil {
			return "Bank account"
		}
		return fmt.Sprintf("Bank account %s", p.Bank.AccountNumber)
	case PayoutPayPal:
		if p.PayPal == nil {
			return "PayPal"
		}
		return fmt.Sprintf("PayPal (%s)", p.PayPal.Email)
	case PayoutStripe:
		if p.Stripe == nil {
			return "Stripe"
		}
		return fmt.Sprintf("Stripe (%s)", p.Stripe.AccountID)
	default:
		return "Unknown payout method"
	}
}

// payoutWire is the flat JSON shape shared by all variants.
type payoutWire struct {
	Method PayoutMethod `json:"method"`

	AccountHolderName string `json:"accountHolderName,omitempty"`
	AccountNumber     string `json:"accountNumber,omitempty"`
	RoutingNumber     string `json:"routingNumber,omitempty"`

	Email string `json:"email,omitempty"`

	AccountID string `json:"accountId,omitempty"`
}

// MarshalJSON flattens the active variant into the wire shape.
func (p PayoutDetails) MarshalJSON() ([]byte, error) {
	w := payoutWire{Method: p.Method}
	switch p.Method {
	case PayoutBank:
		if p.Bank == nil {
			return nil, fmt.Errorf("bank payout details missing")
		}
		w.AccountHolderName = p.Bank.AccountHolderName
		w.AccountNumber = p.Bank.AccountNumber
		w.RoutingNumber = p.Bank.RoutingNumber
	case PayoutPayPal:
		if p.PayPal == nil {
			return nil, fmt.Errorf("paypal payout details missing")
		}
		w.Email = p.PayPal.Email
	case PayoutStripe:
		if p.Stripe == nil {
			return nil, fmt.Errorf("stripe payout details missing")
		}
		w.AccountID = p.Stripe.AccountID
	default:
		return nil, fmt.Errorf("unknown payout method %q", p.Method)
	}
	return json.Marshal(w)
}

// UnmarshalJSON picks the variant named by the method discriminant.
func (p *PayoutDetails) UnmarshalJSON(data []byte) error {
	var w payoutWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*p = PayoutDetails{Method: w.Method}
	switch w.Method {
	case PayoutBank:
		p.Bank = &BankPayout{
			AccountHolderName: w.AccountHolderName,
			AccountNumber:     w.AccountNumber,
			RoutingNumber:     w.RoutingNumber,
		}
	case PayoutPayPal:
		p.PayPal = &PayPalPayout{Email: w.Email}
	case PayoutStripe:
		p.Stripe = &StripePayout{AccountID: w.AccountID}
	default:
		return fmt.Errorf("unknown payout method %q", w.Method)
	}
	return nil
}
