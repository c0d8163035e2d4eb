package misc

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PagedBody struct {
	List  interface{} `json:"list"`
	Total uint64      `json:"total"`
}

type PageQuery struct {
	Page int `form:"page" json:"page" binding:"omitempty,gte=1"`
	Size int `form:"size" json:"size" binding:"omitempty,gte=1,lte=100"`
}

// Normalize returns the effective page (1-based) and page size.
func (q PageQuery) Normalize() (int, int) {
	page, size := q.Page, q.Size
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

func (q PageQuery) Offset() int {
	page, size := q.Normalize()
	return (page - 1) * size
}
