package hdraft

// Indexing policy: headers deemed non-cacheable use the "without
// indexing" form so high-entropy values don't pollute the table. The list
// differs subtly by side; shape grounded on the dontIndex map in the
// martinthomson-minhq hc.HpackEncoder.shouldIndex reference material.

var clientNonCacheable = map[string]bool{
	":path":             true,
	"if-modified-since": true,
	"if-none-match":     true,
	"authorization":     true,
	"cookie":            true,
}

var serverNonCacheable = map[string]bool{
	"content-length": true,
	"etag":           true,
	"set-cookie":     true,
	"date":           true,
	"expires":        true,
	"last-modified":  true,
}

func isNonCacheable(side Side, name string) bool {
	if side == SideServer {
		return serverNonCacheable[name]
	}
	return clientNonCacheable[name]
}
