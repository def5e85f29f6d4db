package metrics

// TotalPages returns ceil(total / pageSize); 0 when there is nothing to show.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Pager is the state of a previous/next pagination control.
type Pager struct {
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// NewPager derives the pagination control for page of a result with total
// rows at pageSize rows per page.
func NewPager(page, total, pageSize int) Pager {
	tp := TotalPages(total, pageSize)
	return Pager{
		Page:       page,
		TotalPages: tp,
		HasPrev:    page > 1,
		HasNext:    page < tp,
	}
}

// Visible reports whether the control is shown at all.
func (p Pager) Visible() bool {
	return p.TotalPages > 1
}
