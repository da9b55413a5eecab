package entity

// Page is one page of catalog entries plus the paging metadata
// reported by the store.
type Page struct {
	Items      []Entry
	Page       int
	Size       int
	TotalItems int64
	TotalPages int
}
