package workshop

import (
	"fmt"
	"strings"
)

// OverpaymentPolicy decides what happens to a payment above the remaining
// balance of an order or a salary period.
type OverpaymentPolicy string

const (
	// OverpaymentAccept records the payment as given; the balance goes negative.
	OverpaymentAccept OverpaymentPolicy = "accept"
	// OverpaymentReject refuses it with a ValidationError.
	OverpaymentReject OverpaymentPolicy = "reject"
)

func ParseOverpaymentPolicy(s string) (OverpaymentPolicy, error) {
	switch OverpaymentPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", OverpaymentAccept:
		return OverpaymentAccept, nil
	case OverpaymentReject:
		return OverpaymentReject, nil
	default:
		return "", fmt.Errorf("unknown overpayment policy %q", s)
	}
}
