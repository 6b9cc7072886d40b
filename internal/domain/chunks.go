package domain

// Rand is the injectable random source used for chunk selection, so tests
// can supply deterministic sequences.
type Rand interface {
	Intn(n int) int
}

// ChunkCatalog is the fixed list of required letter chunks a submitted word
// must contain. Curated for English letter frequency: common enough that
// most turns are winnable, rare enough that some force real thinking.
var ChunkCatalog = []string{
	// Very common digraphs
	"an", "ar", "at", "ed", "en", "er", "es", "in",
	"is", "it", "le", "nd", "ng", "nt", "on", "or",
	"ou", "re", "st", "te", "th", "ti",

	// Common trigraphs
	"and", "ant", "ate", "ble", "ent", "est", "ing",
	"ion", "ite", "men", "ous", "per", "pro", "ter",
	"tio", "ver",

	// Awkward but fair
	"ck", "ft", "gh", "mp", "nk", "pl", "rt", "sh",
	"sk", "sp", "tr", "tw", "wh",

	// Hard mode
	"act", "ept", "ift", "mpt", "nge", "rch", "rld",
	"rse", "sque", "tch", "umb", "urb", "ynx",
}

// PickChunk selects a chunk uniformly at random from the catalog, never
// returning the previous chunk twice in a row when the catalog has other
// members. A single-entry catalog is allowed to repeat.
func PickChunk(r Rand, catalog []string, previous string) string {
	if len(catalog) == 0 {
		return ""
	}
	if len(catalog) == 1 {
		return catalog[0]
	}

	prevIdx := -1
	for idx, chunk := range catalog {
		if chunk == previous {
			prevIdx = idx
			break
		}
	}
	if prevIdx < 0 {
		return catalog[r.Intn(len(catalog))]
	}

	// Draw from the catalog minus the previous entry, keeping the remaining
	// candidates equally likely
	i := r.Intn(len(catalog) - 1)
	if i >= prevIdx {
		i++
	}
	return catalog[i]
}
