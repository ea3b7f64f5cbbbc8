package intake

import "sort"

// Item is one renderable row of the form: either a simple field or a
// smart-field assignment.
type Item struct {
	Field *FormField       `json:"field,omitempty"`
	Smart *SmartAssignment `json:"smart,omitempty"`
}

// SortOrder returns the item's global position.
func (it Item) SortOrder() int {
	if it.Field != nil {
		return it.Field.SortOrder
	}
	if it.Smart != nil {
		return it.Smart.SortOrder
	}
	return 0
}

// SectionName returns the item's section, defaulting to "other".
func (it Item) SectionName() string {
	name := ""
	if it.Field != nil {
		name = it.Field.Section
	} else if it.Smart != nil {
		name = it.Smart.Section
	}
	if name == "" {
		return SectionOther
	}
	return name
}

// Section is a titled group of items in display order.
type Section struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// GroupSections merges fields and smart assignments into one ordered
// list and groups it by section. Items keep their global sort order
// inside each section; sections themselves are ordered by the smallest
// sort order among their members, so a section's position follows its
// earliest field. Deterministic, and idempotent over its own output.
func GroupSections(fields []FormField, smarts []SmartAssignment) []Section {
	items := make([]Item, 0, len(fields)+len(smarts))
	for i := range fields {
		items = append(items, Item{Field: &fields[i]})
	}
	for i := range smarts {
		items = append(items, Item{Smart: &smarts[i]})
	}
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].SortOrder() < items[b].SortOrder()
	})

	index := map[string]int{}
	var sections []Section
	for _, it := range items {
		name := it.SectionName()
		pos, ok := index[name]
		if !ok {
			pos = len(sections)
			index[name] = pos
			sections = append(sections, Section{Name: name})
		}
		sections[pos].Items = append(sections[pos].Items, it)
	}
	return sections
}
