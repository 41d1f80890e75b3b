// Package hpack implements the encoder-side HPACK dynamic table described in
// RFC 7541. It maintains a bounded-memory, FIFO-ordered index of previously
// emitted header fields and decides, for each outgoing header, whether to
// emit it as a fully indexed reference, a name-indexed literal, a literal
// with incremental indexing, or a never-indexed literal.
//
// Wire-level integer/string encoding, Huffman coding, frame I/O, and the
// decoder-side table are out of scope for this package.
package hpack

// Kind identifies which variant of Header a value represents.
type Kind uint8

const (
	// KindField is an ordinary (name, value) header field.
	KindField Kind = iota
	KindAuthority
	KindMethod
	KindScheme
	KindPath
	KindStatus
)

// Header is a single outgoing HTTP/2 header, either an ordinary field or one
// of the pseudo-header kinds singled out by the HPACK static table.
type Header struct {
	kind  Kind
	name  string
	value string

	// sensitive marks a header that must never enter the dynamic table,
	// even as the reason a later insertion reuses its name.
	sensitive bool
}

// NewField constructs an ordinary header field.
func NewField(name, value string) Header {
	return Header{kind: KindField, name: name, value: value}
}

// NewSensitiveField constructs an ordinary header field that must never be
// added to the dynamic table (e.g. an Authorization or Cookie value).
func NewSensitiveField(name, value string) Header {
	return Header{kind: KindField, name: name, value: value, sensitive: true}
}

// NewAuthority constructs a :authority pseudo-header.
func NewAuthority(value string) Header {
	return Header{kind: KindAuthority, name: ":authority", value: value}
}

// NewMethod constructs a :method pseudo-header.
func NewMethod(value string) Header {
	return Header{kind: KindMethod, name: ":method", value: value}
}

// NewScheme constructs a :scheme pseudo-header.
func NewScheme(value string) Header {
	return Header{kind: KindScheme, name: ":scheme", value: value}
}

// NewPath constructs a :path pseudo-header.
func NewPath(value string) Header {
	return Header{kind: KindPath, name: ":path", value: value}
}

// NewStatus constructs a :status pseudo-header.
func NewStatus(value string) Header {
	return Header{kind: KindStatus, name: ":status", value: value}
}

// Kind reports which variant this header is.
func (h Header) Kind() Kind { return h.kind }

// Name returns the header's name identity, used as the hash-map key.
// Pseudo-headers use their canonical colon-prefixed name.
func (h Header) Name() string { return h.name }

// Value returns the header's value.
func (h Header) Value() string { return h.value }

// ValueEq reports whether two headers carry byte-equal values.
func (h Header) ValueEq(other Header) bool { return h.value == other.value }

// Len is the HPACK entry accounting cost: name bytes + value bytes + 32.
func (h Header) Len() int { return len(h.name) + len(h.value) + 32 }

// IsSensitive reports whether the header must never be added to the
// dynamic table.
func (h Header) IsSensitive() bool { return h.sensitive }

// skipValueIndexNames lists headers nghttp2 indexes by name only, never by
// value, because their values are rarely repeated verbatim across requests.
var skipValueIndexNames = map[string]bool{
	"age":               true,
	"content-length":    true,
	"etag":              true,
	"if-modified-since": true,
	"if-none-match":     true,
	"location":          true,
	"set-cookie":        true,
}

// SkipValueIndex reports whether this header should only ever be indexed by
// name, never inserted into the dynamic table as a full value match. :path
// follows the same policy as the nghttp2-derived name list above.
func (h Header) SkipValueIndex() bool {
	if h.kind == KindPath {
		return true
	}
	return skipValueIndexNames[h.name]
}
