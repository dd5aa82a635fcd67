package types

// Category identifies one of the five clothing slots. Each category has its
// own independently trained classifier and its own persisted artifact.
type Category string

const (
	CategoryTops      Category = "tops"
	CategoryBottoms   Category = "bottoms"
	CategoryShoes     Category = "shoes"
	CategoryOuter     Category = "outer"
	CategoryAccessory Category = "accessory"
)

// KnownCategories returns the fixed, ordered set of clothing categories.
// Recommendation results always contain exactly this key set.
func KnownCategories() []Category {
	return []Category{
		CategoryTops,
		CategoryBottoms,
		CategoryShoes,
		CategoryOuter,
		CategoryAccessory,
	}
}

// localizedCategoryNames maps the Japanese category labels found in legacy
// source data to canonical category names. Both historical spellings of
// "shoes" and "accessory" appear in recorded data.
var localizedCategoryNames = map[string]Category{
	"トップス":   CategoryTops,
	"ボトムス":   CategoryBottoms,
	"シューズ":   CategoryShoes,
	"靴":      CategoryShoes,
	"アウター":   CategoryOuter,
	"アクセサリー": CategoryAccessory,
	"小物":     CategoryAccessory,
}

// CanonicalCategory normalizes a raw category label (canonical English or
// localized Japanese) to its canonical Category. The second return value
// reports whether the label was recognized.
func CanonicalCategory(raw string) (Category, bool) {
	if c, ok := localizedCategoryNames[raw]; ok {
		return c, true
	}
	c := Category(raw)
	if c.IsValid() {
		return c, true
	}
	return "", false
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryTops, CategoryBottoms, CategoryShoes, CategoryOuter, CategoryAccessory:
		return true
	}
	return false
}
