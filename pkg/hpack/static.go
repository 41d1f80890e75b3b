package hpack

// Static table — RFC 7541 Appendix A. 61 predefined entries, never evicted,
// indexed 1-61. Dynamic table indices start at 62 (dynOffset in table.go).
//
// staticEntries is addressed directly by static index; index 0 is unused.
var staticEntries = [...]Header{
	{}, // 0 unused
	{kind: KindAuthority, name: ":authority"},                          // 1
	{kind: KindMethod, name: ":method", value: "GET"},                  // 2
	{kind: KindMethod, name: ":method", value: "POST"},                 // 3
	{kind: KindPath, name: ":path", value: "/"},                        // 4
	{kind: KindPath, name: ":path", value: "/index.html"},              // 5
	{kind: KindScheme, name: ":scheme", value: "http"},                 // 6
	{kind: KindScheme, name: ":scheme", value: "https"},                // 7
	{kind: KindStatus, name: ":status", value: "200"},                  // 8
	{kind: KindStatus, name: ":status", value: "204"},                  // 9
	{kind: KindStatus, name: ":status", value: "206"},                  // 10
	{kind: KindStatus, name: ":status", value: "304"},                  // 11
	{kind: KindStatus, name: ":status", value: "400"},                  // 12
	{kind: KindStatus, name: ":status", value: "404"},                  // 13
	{kind: KindStatus, name: ":status", value: "500"},                  // 14
	{kind: KindField, name: "accept-charset"},                          // 15
	{kind: KindField, name: "accept-encoding", value: "gzip, deflate"}, // 16
	{kind: KindField, name: "accept-language"},                         // 17
	{kind: KindField, name: "accept-ranges"},                           // 18
	{kind: KindField, name: "accept"},                                  // 19
	{kind: KindField, name: "access-control-allow-origin"},             // 20
	{kind: KindField, name: "age"},                                     // 21
	{kind: KindField, name: "allow"},                                   // 22
	{kind: KindField, name: "authorization"},                           // 23
	{kind: KindField, name: "cache-control"},                           // 24
	{kind: KindField, name: "content-disposition"},                     // 25
	{kind: KindField, name: "content-encoding"},                        // 26
	{kind: KindField, name: "content-language"},                        // 27
	{kind: KindField, name: "content-length"},                          // 28
	{kind: KindField, name: "content-location"},                        // 29
	{kind: KindField, name: "content-range"},                           // 30
	{kind: KindField, name: "content-type"},                            // 31
	{kind: KindField, name: "cookie"},                                  // 32
	{kind: KindField, name: "date"},                                    // 33
	{kind: KindField, name: "etag"},                                    // 34
	{kind: KindField, name: "expect"},                                  // 35
	{kind: KindField, name: "expires"},                                 // 36
	{kind: KindField, name: "from"},                                    // 37
	{kind: KindField, name: "host"},                                    // 38
	{kind: KindField, name: "if-match"},                                // 39
	{kind: KindField, name: "if-modified-since"},                       // 40
	{kind: KindField, name: "if-none-match"},                           // 41
	{kind: KindField, name: "if-range"},                                // 42
	{kind: KindField, name: "if-unmodified-since"},                     // 43
	{kind: KindField, name: "last-modified"},                           // 44
	{kind: KindField, name: "link"},                                    // 45
	{kind: KindField, name: "location"},                                // 46
	{kind: KindField, name: "max-forwards"},                            // 47
	{kind: KindField, name: "proxy-authenticate"},                      // 48
	{kind: KindField, name: "proxy-authorization"},                     // 49
	{kind: KindField, name: "range"},                                   // 50
	{kind: KindField, name: "referer"},                                 // 51
	{kind: KindField, name: "refresh"},                                 // 52
	{kind: KindField, name: "retry-after"},                             // 53
	{kind: KindField, name: "server"},                                  // 54
	{kind: KindField, name: "set-cookie"},                              // 55
	{kind: KindField, name: "strict-transport-security"},               // 56
	{kind: KindField, name: "transfer-encoding"},                       // 57
	{kind: KindField, name: "user-agent"},                              // 58
	{kind: KindField, name: "vary"},                                    // 59
	{kind: KindField, name: "via"},                                     // 60
	{kind: KindField, name: "www-authenticate"},                        // 61
}

// StaticTableSize is the number of entries in the static table.
const StaticTableSize = 61

// staticFieldIndex maps an ordinary field name to its static index, built
// once at init time so StaticLookup stays O(1) for the common case.
var staticFieldIndex map[string]int

func init() {
	staticFieldIndex = make(map[string]int, StaticTableSize)
	for i := 15; i <= StaticTableSize; i++ {
		staticFieldIndex[staticEntries[i].name] = i
	}
}

// StaticLookup checks the static table for the header. It returns the
// static index and whether the stored value also matches; ok is false only
// for an ordinary field name with no static table entry at all.
//
// This is a pure function of the header: pseudo-headers are matched by
// kind and value directly, while ordinary fields fall back to the name map.
func StaticLookup(h Header) (index int, valueMatches bool, ok bool) {
	switch h.kind {
	case KindAuthority:
		return 1, false, true
	case KindMethod:
		switch h.value {
		case "GET":
			return 2, true, true
		case "POST":
			return 3, true, true
		default:
			return 2, false, true
		}
	case KindPath:
		switch h.value {
		case "/":
			return 4, true, true
		case "/index.html":
			return 5, true, true
		default:
			return 4, false, true
		}
	case KindScheme:
		switch h.value {
		case "http":
			return 6, true, true
		case "https":
			return 7, true, true
		default:
			return 6, false, true
		}
	case KindStatus:
		switch h.value {
		case "200":
			return 8, true, true
		case "204":
			return 9, true, true
		case "206":
			return 10, true, true
		case "304":
			return 11, true, true
		case "400":
			return 12, true, true
		case "404":
			return 13, true, true
		case "500":
			return 14, true, true
		default:
			return 8, false, true
		}
	default:
		idx, found := staticFieldIndex[h.name]
		if !found {
			return 0, false, false
		}
		if idx == 16 {
			return 16, h.value == "gzip, deflate", true
		}
		return idx, false, true
	}
}

// GetStaticEntry returns the static table entry at the given 1-based index,
// or the zero Header if index is out of range.
func GetStaticEntry(index int) Header {
	if index < 1 || index > StaticTableSize {
		return Header{}
	}
	return staticEntries[index]
}
