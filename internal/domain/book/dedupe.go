package book

// Dedupe returns books with later repeats of an id removed. The first
// occurrence is kept and relative order is preserved. The input is not
// modified.
func Dedupe(books []Book) []Book {
	seen := make(map[string]struct{}, len(books))
	out := make([]Book, 0, len(books))
	for _, b := range books {
		if _, ok := seen[b.ID]; ok {
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}
	return out
}
