package convert

// PairID derives the trade identifier shared by both legs of a fill from the
// two participating order ids: the lexicographically smaller id, "_", the
// larger id. Both sides of a fill are converted by different invocations
// (each side arrives in its own order's message), so the id must come out
// identical regardless of which order is primary. Equal ids keep input order.
func PairID(id1, id2 string) string {
	if id1 <= id2 {
		return id1 + "_" + id2
	}
	return id2 + "_" + id1
}
