/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

// NackReason is the reason code an upstream gives for not satisfying an Interest.
type NackReason int

// Nack reasons recognized by the forwarding core.
const (
	NackReasonNone        NackReason = 0
	NackReasonCongestion  NackReason = 50
	NackReasonDuplicate   NackReason = 100
	NackReasonNoRoute     NackReason = 150
)

func (r NackReason) String() string {
	switch r {
	case NackReasonCongestion:
		return "congestion"
	case NackReasonDuplicate:
		return "duplicate"
	case NackReasonNoRoute:
		return "no-route"
	default:
		return "none"
	}
}

// Nack wraps the Interest it responds to plus a reason code.
type Nack struct {
	Interest *Interest
	Reason   NackReason
}

// NewNack builds a Nack for the given Interest and reason.
func NewNack(interest *Interest, reason NackReason) *Nack {
	return &Nack{Interest: interest, Reason: reason}
}

func (n *Nack) String() string {
	return "Nack(" + n.Interest.Name().String() + ", " + n.Reason.String() + ")"
}
