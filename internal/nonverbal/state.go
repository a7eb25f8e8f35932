// Package nonverbal holds the classified-state domain: the label vocabulary
// produced by the inference service, the transition-counting aggregator and
// the behavioral metrics engine.
package nonverbal

// Category is one of the three observed behavior channels.
type Category string

const (
	CategoryEye   Category = "eye"
	CategoryHead  Category = "head"
	CategoryMouth Category = "mouth"
)

// Label values as emitted by the inference service.
const (
	LabelLookingLeft  = "Looking Left"
	LabelLookingRight = "Looking Right"
	LabelLookingUp    = "Looking Up"
	LabelLookingDown  = "Looking Down"
	LabelCenter       = "Center"
	LabelSpeaking     = "Speaking"
	LabelSilent       = "Silent"

	// LabelUnknown stands in for an absent or unrecognized reading.
	LabelUnknown = "unknown"
)

// categories in a fixed processing order.
var categories = []Category{CategoryEye, CategoryHead, CategoryMouth}

// Categories returns the behavior channels in processing order.
func Categories() []Category {
	return categories
}

// allowed is the label domain per category. Labels outside these sets are
// never counted by the aggregator.
var allowed = map[Category][]string{
	CategoryEye:   {LabelLookingLeft, LabelLookingRight, LabelLookingUp, LabelLookingDown},
	CategoryHead:  {LabelLookingLeft, LabelLookingRight, LabelLookingUp, LabelLookingDown, LabelCenter},
	CategoryMouth: {LabelSpeaking, LabelSilent},
}

// AllowedLabels returns the label domain for a category.
func AllowedLabels(c Category) []string {
	return allowed[c]
}

// InDomain reports whether label belongs to the category's label domain.
func InDomain(c Category, label string) bool {
	for _, l := range allowed[c] {
		if l == label {
			return true
		}
	}
	return false
}

// ClassifiedState is the per-frame output of the inference service. Instances
// are ephemeral point samples; they are discarded after aggregation.
type ClassifiedState struct {
	Eye   string
	Head  string
	Mouth string
}

// Label returns the label for the given category.
func (s ClassifiedState) Label(c Category) string {
	switch c {
	case CategoryEye:
		return s.Eye
	case CategoryHead:
		return s.Head
	case CategoryMouth:
		return s.Mouth
	default:
		return ""
	}
}
