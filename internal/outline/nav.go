package outline

// Nav holds the linear previous/next links for a page.
type Nav struct {
	Prev    int  `json:"prev"`
	Next    int  `json:"next"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// Navigate returns the neighbours of current in a document of count pages.
// A current page outside [0, count) has no neighbours.
func Navigate(current, count int) Nav {
	var nav Nav
	if current < 0 || current >= count {
		return nav
	}
	if current-1 >= 0 {
		nav.Prev, nav.HasPrev = current-1, true
	}
	if current+1 < count {
		nav.Next, nav.HasNext = current+1, true
	}
	return nav
}
