package todo

import "strings"

// SearchResult is the outcome of SearchTodos.
type SearchResult struct {
	Todos       []Todo
	TodoMatches int // todos whose title contains the term
	ItemMatches int // items, across all todos, whose title or description contains the term
}

// SearchTodos performs a case-insensitive substring search over todo titles
// and item titles and descriptions. A todo is returned once when it matches by
// title or through any of its items. Callers treat an empty term as "no
// search" and should not call this with one.
func SearchTodos(todos []Todo, term string) SearchResult {
	needle := strings.ToLower(term)
	result := SearchResult{Todos: make([]Todo, 0, len(todos))}

	for _, t := range todos {
		titleHit := strings.Contains(strings.ToLower(t.Title), needle)
		if titleHit {
			result.TodoMatches++
		}

		itemHits := 0
		for _, item := range t.Items {
			if itemMatches(item, needle) {
				itemHits++
			}
		}
		result.ItemMatches += itemHits

		if titleHit || itemHits > 0 {
			result.Todos = append(result.Todos, t)
		}
	}
	return result
}

func itemMatches(item Item, needle string) bool {
	return strings.Contains(strings.ToLower(item.Title), needle) ||
		strings.Contains(strings.ToLower(item.Description), needle)
}
