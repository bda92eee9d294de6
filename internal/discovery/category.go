package discovery

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Category is one of the fixed blog categories, or CategoryAll.
type Category string

const (
	CategoryAll        Category = "All"
	CategoryMedicine   Category = "Thuốc"
	CategoryVitamins   Category = "Vitamin & Khoáng chất"
	CategoryNutrition  Category = "Dinh dưỡng"
	CategoryHealth     Category = "Sức khỏe"
	CategoryBeauty     Category = "Làm đẹp"
	CategoryMotherBaby Category = "Mẹ & Bé"
)

// Categories lists the selectable filter values in display order, All first.
var Categories = []Category{
	CategoryAll,
	CategoryMedicine,
	CategoryVitamins,
	CategoryNutrition,
	CategoryHealth,
	CategoryBeauty,
	CategoryMotherBaby,
}

// ParseCategory matches s against the fixed set. Input is trimmed and
// NFC-normalized first, so decomposed Vietnamese diacritics coming from a
// pasted URL still match. Matching ignores case.
func ParseCategory(s string) (Category, bool) {
	s = norm.NFC.String(strings.TrimSpace(s))
	if s == "" {
		return CategoryAll, false
	}
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return CategoryAll, false
}

// Next returns the category after c in Categories, wrapping around.
func (c Category) Next() Category {
	return c.step(1)
}

// Prev returns the category before c in Categories, wrapping around.
func (c Category) Prev() Category {
	return c.step(-1)
}

func (c Category) step(delta int) Category {
	idx := 0
	for i, cat := range Categories {
		if cat == c {
			idx = i
			break
		}
	}
	n := len(Categories)
	return Categories[((idx+delta)%n+n)%n]
}

// Class is the presentation class a category badge is drawn with.
type Class int

const (
	ClassDefault Class = iota
	ClassMedicine
	ClassSupplement
	ClassNutrition
	ClassWellness
	ClassBeauty
	ClassFamily
)

var categoryClasses = map[Category]Class{
	CategoryMedicine:   ClassMedicine,
	CategoryVitamins:   ClassSupplement,
	CategoryNutrition:  ClassNutrition,
	CategoryHealth:     ClassWellness,
	CategoryBeauty:     ClassBeauty,
	CategoryMotherBaby: ClassFamily,
}

// CategoryClass returns the presentation class for a category name as
// received from the post service. Unknown names and All map to ClassDefault.
func CategoryClass(name string) Class {
	c, ok := ParseCategory(name)
	if !ok {
		return ClassDefault
	}
	if class, found := categoryClasses[c]; found {
		return class
	}
	return ClassDefault
}
