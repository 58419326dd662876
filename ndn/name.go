/* corefwd - an NDN forwarding core
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package ndn defines the packet-level data model shared by every
// table and pipeline in the forwarding core: names, Interests, Data,
// and Nacks. It deliberately does not implement TLV wire encoding or
// signature verification - those are the face subsystem's concern.
package ndn

import (
	"strconv"
	"strings"
)

// GenericNameComponent is the default component type used when a name
// is parsed from a URI without an explicit type marker.
const GenericNameComponent uint16 = 8

// NameComponent is a single opaque (type, value) pair within a Name.
type NameComponent struct {
	Typ uint16
	Val []byte
}

// NewGenericComponent creates a generic name component from a string.
func NewGenericComponent(value string) NameComponent {
	return NameComponent{Typ: GenericNameComponent, Val: []byte(value)}
}

// Equals reports whether two name components have the same type and value.
func (c NameComponent) Equals(other NameComponent) bool {
	if c.Typ != other.Typ || len(c.Val) != len(other.Val) {
		return false
	}
	for i := range c.Val {
		if c.Val[i] != other.Val[i] {
			return false
		}
	}
	return true
}

// DeepCopy returns an independent copy of the component.
func (c NameComponent) DeepCopy() NameComponent {
	val := make([]byte, len(c.Val))
	copy(val, c.Val)
	return NameComponent{Typ: c.Typ, Val: val}
}

// String renders the component the way it would appear in a name URI.
func (c NameComponent) String() string {
	if c.Typ == GenericNameComponent {
		return escapeComponent(c.Val)
	}
	return strconv.Itoa(int(c.Typ)) + "=" + escapeComponent(c.Val)
}

func escapeComponent(val []byte) string {
	var b strings.Builder
	for _, ch := range val {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9',
			ch == '-', ch == '.', ch == '_', ch == '~':
			b.WriteByte(ch)
		default:
			b.WriteString("%")
			const hex = "0123456789ABCDEF"
			b.WriteByte(hex[ch>>4])
			b.WriteByte(hex[ch&0xf])
		}
	}
	return b.String()
}

// Name is an ordered sequence of name components. It is the primary
// key for every table in the forwarding core.
type Name []NameComponent

// NameFromString parses a "/"-delimited URI into a Name. Component
// values are taken literally; percent-escapes are not decoded, which
// is sufficient for the forwarding core's own tests and config
// (an escaped wire-format parser belongs to the face subsystem).
func NameFromString(uri string) Name {
	uri = strings.TrimPrefix(uri, "/")
	if uri == "" {
		return Name{}
	}
	parts := strings.Split(uri, "/")
	name := make(Name, 0, len(parts))
	for _, p := range parts {
		name = append(name, NewGenericComponent(p))
	}
	return name
}

// Size returns the number of components in the name.
func (n Name) Size() int {
	return len(n)
}

// At returns the component at the given index.
func (n Name) At(index int) NameComponent {
	return n[index]
}

// Append returns a new name with the component appended.
func (n Name) Append(c NameComponent) Name {
	out := make(Name, len(n), len(n)+1)
	copy(out, n)
	return append(out, c)
}

// DeepCopy returns an independent copy of the name.
func (n Name) DeepCopy() Name {
	out := make(Name, len(n))
	for i, c := range n {
		out[i] = c.DeepCopy()
	}
	return out
}

// Equals reports whether two names have identical components.
func (n Name) Equals(other Name) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if !n[i].Equals(other[i]) {
			return false
		}
	}
	return true
}

// PrefixOf reports whether n is a prefix of (or equal to) other.
func (n Name) PrefixOf(other Name) bool {
	if len(n) > len(other) {
		return false
	}
	for i := range n {
		if !n[i].Equals(other[i]) {
			return false
		}
	}
	return true
}

// Compare returns -1, 0, or 1 using NDN canonical name ordering:
// shorter names sort before longer ones that share the shorter name
// as a prefix; otherwise the first differing component is compared
// lexicographically by (length, value).
func (n Name) Compare(other Name) int {
	for i := 0; i < len(n) && i < len(other); i++ {
		a, b := n[i], other[i]
		if len(a.Val) != len(b.Val) {
			if len(a.Val) < len(b.Val) {
				return -1
			}
			return 1
		}
		for j := range a.Val {
			if a.Val[j] != b.Val[j] {
				if a.Val[j] < b.Val[j] {
					return -1
				}
				return 1
			}
		}
	}
	switch {
	case len(n) < len(other):
		return -1
	case len(n) > len(other):
		return 1
	default:
		return 0
	}
}

// String renders the name as a "/"-prefixed URI for logging.
func (n Name) String() string {
	if len(n) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, c := range n {
		b.WriteByte('/')
		b.WriteString(c.String())
	}
	return b.String()
}

// IsLocalhost reports whether the name begins with the /localhost scope marker.
func (n Name) IsLocalhost() bool {
	return len(n) > 0 && n[0].Typ == GenericNameComponent && string(n[0].Val) == "localhost"
}
