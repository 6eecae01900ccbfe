package util

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Window is the slice [From, To) of a result set of Total items that a
// page covers. Pages past the end yield an empty window at Total.
type Window struct {
	Page int
	Size int
	From int
	To   int
}

func Paginate(page, size, total int) Window {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}

	w := Window{Page: page, Size: size, From: total, To: total}
	// compare in page units so (page-1)*size is only computed when it fits
	if page-1 <= total/size {
		w.From = min((page-1)*size, total)
		w.To = min(w.From+size, total)
	}
	return w
}
