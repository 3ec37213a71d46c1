package util

type Page struct {
	Page   int
	Offset int
	Limit  int
}

// Normalize turns a 1-based page number and page size into an offset window.
// Sizes outside 1..100 fall back to 10.
func Normalize(page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return Page{Page: page, Offset: (page - 1) * size, Limit: size}
}

func PageCount(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}
