package todo

// ReplaceByID returns a copy of list with the todo sharing updated's id
// swapped for updated. Order and every other entry are kept.
func ReplaceByID(list []Todo, updated Todo) []Todo {
	out := make([]Todo, len(list))

	for i, t := range list {
		if t.ID == updated.ID {
			out[i] = updated
			continue
		}
		out[i] = t
	}

	return out
}

// RemoveByID returns a copy of list without the todo with the given id.
func RemoveByID(list []Todo, id string) []Todo {
	out := make([]Todo, 0, len(list))

	for _, t := range list {
		if t.ID != id {
			out = append(out, t)
		}
	}

	return out
}
