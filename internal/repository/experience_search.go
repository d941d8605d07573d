package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/immersive-venue-booking/internal/model"
)

// Page bounds for Search.  MaxPage keeps (page-1)*pageSize a sane OFFSET.
const (
	MaxPage     = 10000
	MaxPageSize = 100
)

// ExperienceSearchQuery defines filters & pagination for searching the
// catalog.  Empty fields do not filter.
type ExperienceSearchQuery struct {
	Name     string
	City     string // only experiences offered at a venue in this city
	Popular  *bool
	New      *bool
	MaxPrice model.Money // 0 = no limit
	Page     int
	PageSize int
}

// Search returns one page of matching experiences plus the total number of
// matches.
func (r *ExperienceRepo) Search(ctx context.Context, q ExperienceSearchQuery) ([]model.Experience, int64, error) {
	where := []string{}
	args := []any{}

	if q.Name != "" {
		where = append(where, "LOWER(e.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Name)+"%")
	}
	if q.City != "" {
		where = append(where, `EXISTS (SELECT 1 FROM venue_experiences ve
            JOIN venues v ON v.id = ve.venue_id
            WHERE ve.experience_id = e.id AND LOWER(v.city) = ?)`)
		args = append(args, strings.ToLower(q.City))
	}
	if q.Popular != nil {
		where = append(where, "e.is_popular = ?")
		args = append(args, *q.Popular)
	}
	if q.New != nil {
		where = append(where, "e.is_new = ?")
		args = append(args, *q.New)
	}
	if q.MaxPrice > 0 {
		where = append(where, "e.price_cents <= ?")
		args = append(args, int64(q.MaxPrice))
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM experiences e WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	dataSQL := `SELECT ` + experienceColumns + ` FROM experiences e WHERE ` + cond + `
        ORDER BY e.is_popular DESC, e.id ASC
        LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), q.PageSize, (q.Page-1)*q.PageSize)

	items, err := r.list(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
