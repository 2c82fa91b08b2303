// Package partition groups card records by set code.
package partition

import (
	"strings"

	"setsplitter/internal/models"
)

// Table maps set codes to their cards. Keys lists the codes in the order
// each one first appeared in the input.
type Table struct {
	Keys   []string
	Groups map[string][]models.Card
}

// BySet groups cards by their uppercased set code. Cards keep their input
// order within each group.
func BySet(cards []models.Card) *Table {
	table := &Table{
		Groups: make(map[string][]models.Card),
	}

	for _, card := range cards {
		code := Key(card.Set)
		if _, seen := table.Groups[code]; !seen {
			table.Keys = append(table.Keys, code)
		}

		table.Groups[code] = append(table.Groups[code], card)
	}

	return table
}

// Key normalizes a set code to the group key.
func Key(set string) string {
	return strings.ToUpper(set)
}

// Len returns the number of groups.
func (t *Table) Len() int {
	return len(t.Keys)
}

// Cards returns the total number of cards across all groups.
func (t *Table) Cards() int {
	total := 0
	for _, group := range t.Groups {
		total += len(group)
	}

	return total
}
