package domain

// allowedCategories is the fixed registry of category labels.
// Order is stable and surfaced verbatim by the categories endpoint.
var allowedCategories = []string{
	"Drama",
	"Sci-Fi",
	"Mystery",
	"Romance",
	"Fantasy",
	"Non-Fiction",
	"Biography",
	"History",
	"Horror",
	"Adventure",
}

var categorySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(allowedCategories))
	for _, c := range allowedCategories {
		set[c] = struct{}{}
	}
	return set
}()

// Categories returns the allowed category labels in registry order.
func Categories() []string {
	out := make([]string, len(allowedCategories))
	copy(out, allowedCategories)
	return out
}

// IsCategory reports whether label belongs to the registry. Matching is exact.
func IsCategory(label string) bool {
	_, ok := categorySet[label]
	return ok
}
