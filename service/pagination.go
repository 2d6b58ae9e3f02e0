package service

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// normalizePage clamps skip/take to sane bounds
func normalizePage(skip, take int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if take <= 0 {
		take = defaultPageSize
	}
	if take > maxPageSize {
		take = maxPageSize
	}
	return skip, take
}

// normalizeLimit clamps a result limit
func normalizeLimit(limit int) int {
	_, limit = normalizePage(0, limit)
	return limit
}
