package post

import (
	"sort"
	"strings"
)

// SortNewestFirst orders posts by CreateDate descending, then by title and ID
// for a stable order. Posts without a CreateDate sort last.
func SortNewestFirst(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		switch {
		case a.CreateDate == nil && b.CreateDate != nil:
			return false
		case a.CreateDate != nil && b.CreateDate == nil:
			return true
		case a.CreateDate != nil && !a.CreateDate.Equal(*b.CreateDate):
			return a.CreateDate.After(*b.CreateDate)
		}
		ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if ta != tb {
			return ta < tb
		}
		return a.ID < b.ID
	})
}
