package hdraft

// Static tables: two fixed, side-specific lists of common header pairs,
// concatenated after the dynamic table in the index space. Modeled on
// shockwave/pkg/shockwave/http2/hpack_static.go's layout and lookup-map
// pattern, split by side (the contents aren't pinned anywhere else; a
// real deployment pins this with a captured test-vector file — here,
// vectors/static_tables.yaml is that source of truth).

var clientStaticTable = []HeaderField{
	{":authority", ""},
	{":method", "GET"},
	{":method", "POST"},
	{":path", "/"},
	{":path", "/index.html"},
	{":scheme", "http"},
	{":scheme", "https"},
	{"accept", ""},
	{"accept-charset", ""},
	{"accept-encoding", "gzip, deflate"},
	{"accept-language", ""},
	{"authorization", ""},
	{"cache-control", ""},
	{"cookie", ""},
	{"host", ""},
	{"if-modified-since", ""},
	{"if-none-match", ""},
	{"referer", ""},
	{"user-agent", ""},
}

var serverStaticTable = []HeaderField{
	{":status", "200"},
	{":status", "204"},
	{":status", "206"},
	{":status", "304"},
	{":status", "400"},
	{":status", "404"},
	{":status", "500"},
	{"age", ""},
	{"cache-control", ""},
	{"content-encoding", ""},
	{"content-length", ""},
	{"content-type", ""},
	{"date", ""},
	{"etag", ""},
	{"expires", ""},
	{"last-modified", ""},
	{"location", ""},
	{"server", ""},
	{"set-cookie", ""},
	{"vary", ""},
	{"via", ""},
	{"www-authenticate", ""},
}

// staticTableLookup maps "name" and "name\x00value" to a 0-based index
// into the corresponding static table slice, mirroring hpack_static.go's
// staticTableLookup.
type staticTableLookup map[string]int

var (
	clientStaticLookup staticTableLookup
	serverStaticLookup staticTableLookup
)

func buildStaticLookup(table []HeaderField) staticTableLookup {
	m := make(staticTableLookup, len(table)*2)
	for i, e := range table {
		if _, exists := m[e.Name]; !exists {
			m[e.Name] = i
		}
		if e.Value != "" {
			m[e.Name+"\x00"+e.Value] = i
		}
	}
	return m
}

func init() {
	clientStaticLookup = buildStaticLookup(clientStaticTable)
	serverStaticLookup = buildStaticLookup(serverStaticTable)
}

func staticTableFor(side Side) []HeaderField {
	if side == SideServer {
		return serverStaticTable
	}
	return clientStaticTable
}

func staticLookupFor(side Side) staticTableLookup {
	if side == SideServer {
		return serverStaticLookup
	}
	return clientStaticLookup
}

// getStaticEntry returns the static table entry at the given 0-based
// index, or false if out of range.
func getStaticEntry(side Side, index int) (HeaderField, bool) {
	table := staticTableFor(side)
	if index < 0 || index >= len(table) {
		return HeaderField{}, false
	}
	return table[index], true
}

// findStaticIndex searches the side's static table. Returns (index, exact)
// where index is 0-based and exact reports whether both name and value
// matched.
func findStaticIndex(side Side, name, value string) (index int, exact bool) {
	lookup := staticLookupFor(side)
	if value != "" {
		if idx, ok := lookup[name+"\x00"+value]; ok {
			return idx, true
		}
	}
	if idx, ok := lookup[name]; ok {
		return idx, false
	}
	return -1, false
}
