package utils

// PageMeta метаданные страницы результата
type PageMeta struct {
	Total       int64 `json:"total"`
	LastPage    int   `json:"lastPage"`
	CurrentPage int   `json:"currentPage"`
	PerPage     int   `json:"perPage"`
	Prev        *int  `json:"prev"`
	Next        *int  `json:"next"`
}

// PaginatedResult страница данных с метаданными
type PaginatedResult[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// NormalizePage приводит номер страницы и размер к допустимым значениям
func NormalizePage(page, perPage, defaultPerPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage < 1 {
		perPage = 10
	}
	return page, perPage
}

// Paginate собирает результат страницы
func Paginate[T any](data []T, total int64, page, perPage int) PaginatedResult[T] {
	if data == nil {
		data = []T{}
	}

	lastPage := int((total + int64(perPage) - 1) / int64(perPage))

	meta := PageMeta{
		Total:       total,
		LastPage:    lastPage,
		CurrentPage: page,
		PerPage:     perPage,
	}
	if page > 1 {
		prev := page - 1
		meta.Prev = &prev
	}
	if page < lastPage {
		next := page + 1
		meta.Next = &next
	}

	return PaginatedResult[T]{Data: data, Meta: meta}
}
