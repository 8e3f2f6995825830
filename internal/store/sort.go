package store

import (
	"sort"

	"github.com/MrSnakeDoc/subguard/internal/domain"
)

// SortByCreated orders commitments oldest first, breaking ties by id.
func SortByCreated(list []*domain.Commitment) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
