package nbt

// FindByName returns every tag in the tree rooted at root whose name is name,
// in depth-first pre-order. The root itself is included when it matches.
// List elements are unnamed, so they only match an empty name.
func FindByName(root Tag, name string) []Tag {
	var found []Tag
	walk(root, func(t Tag) {
		if t.Name() == name {
			found = append(found, t)
		}
	})

	return found
}

// FindFirst returns the first match of FindByName, or nil.
func FindFirst(root Tag, name string) Tag {
	if matches := FindByName(root, name); len(matches) > 0 {
		return matches[0]
	}

	return nil
}

func walk(t Tag, fn func(Tag)) {
	if t == nil {
		return
	}
	fn(t)
	switch t := t.(type) {
	case *Compound:
		for _, child := range t.items {
			walk(child, fn)
		}
	case *List:
		for _, child := range t.items {
			walk(child, fn)
		}
	}
}
