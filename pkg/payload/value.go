// Package payload converts request and response bodies between their wire
// form and a logical value suitable for inspection and mutation. The wire
// encoding is classified once at decode time into a tagged Value; re-encoding
// a replacement value infers its target encoding from that tag, so a mutated
// body goes back onto the wire in the same encoding family it arrived in.
package payload

// Kind tags the wire encoding family of a decoded body.
type Kind int

const (
	// KindNone marks an absent body (no payload at all).
	KindNone Kind = iota
	// KindText marks a textual body: JSON, or any other text passed through.
	KindText
	// KindForm marks a name/value form body (urlencoded or multipart).
	KindForm
	// KindOpaque marks a binary body carried through untouched.
	KindOpaque
)

// String returns the kind name used in logs and event records.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindText:
		return "text"
	case KindForm:
		return "form"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// formEncoding distinguishes the two form wire encodings.
type formEncoding int

const (
	formURLEncoded formEncoding = iota
	formMultipart
)

// Value is a decoded body: the logical value plus enough about the original
// wire form to re-encode a replacement. The logical value is any parsed JSON
// structure or raw text for KindText, a map[string]string for KindForm (last
// value wins on duplicate field names), raw bytes for KindOpaque, and nil for
// KindNone.
type Value struct {
	kind     Kind
	data     any
	raw      []byte
	formEnc  formEncoding
	boundary string
}

// Kind returns the wire encoding family.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether there was no body at all.
func (v Value) IsAbsent() bool { return v.kind == KindNone }

// Data returns the logical value handed to capture callbacks.
func (v Value) Data() any { return v.data }

// Raw returns the original wire bytes.
func (v Value) Raw() []byte { return v.raw }
