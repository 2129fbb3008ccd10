package entity

type Category string

const (
	CategoryGreenSpaces Category = "green_spaces"
	CategoryGarbage     Category = "garbage"
	CategoryRoad        Category = "road"
	CategorySAU         Category = "sau"
	CategoryAds         Category = "ads"
	CategoryLandscaping Category = "landscaping"
	CategoryOther       Category = "other"
)

// Categories lists every category in keyboard order.
var Categories = []Category{
	CategoryGreenSpaces,
	CategoryGarbage,
	CategoryRoad,
	CategorySAU,
	CategoryAds,
	CategoryLandscaping,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryGreenSpaces: "🌳 Green spaces",
	CategoryGarbage:     "🗑 Garbage",
	CategoryRoad:        "🚧 Roads",
	CategorySAU:         "🏚 Abandoned structures",
	CategoryAds:         "📋 Illegal ads",
	CategoryLandscaping: "🏗 Landscaping",
	CategoryOther:       "❓ Other",
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label is the button text shown to users.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// CategoryByLabel maps a button text back to its category.
func CategoryByLabel(label string) (Category, bool) {
	for c, l := range categoryLabels {
		if l == label {
			return c, true
		}
	}
	return "", false
}

// CategoryLabels returns the button texts in keyboard order.
func CategoryLabels() []string {
	labels := make([]string, 0, len(Categories))
	for _, c := range Categories {
		labels = append(labels, c.Label())
	}
	return labels
}
