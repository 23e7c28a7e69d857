package model

type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

type SortField struct {
	Field string    `json:"field"`
	Order SortOrder `json:"order"`
}

// Criteria is an exact-match field filter. Keys are column names and must be
// validated against the entity's allow-list before reaching the store.
type Criteria map[string]any

// Patch holds the columns a partial update touches. Unspecified columns keep
// their stored values.
type Patch map[string]any

type FindParams struct {
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Sort  []SortField `json:"sort,omitempty"`
}

func (p FindParams) Normalized() FindParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 200 {
		p.Limit = 200
	}
	return p
}

func (p FindParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
