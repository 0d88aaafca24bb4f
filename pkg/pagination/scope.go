package pagination

import "gorm.io/gorm"

// Scope applies keyset pagination on (created_at, id). Newest rows come first
// unless ascending is set. It fetches one extra row so Trim can tell whether
// another page exists.
func Scope(table string, params Params, ascending bool) (func(*gorm.DB) *gorm.DB, error) {
	cursor, err := ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	createdAt, id := table+".created_at", table+".id"
	return func(db *gorm.DB) *gorm.DB {
		op, dir := "<", "DESC"
		if ascending {
			op, dir = ">", "ASC"
		}
		if cursor != nil {
			db = db.Where(
				"("+createdAt+" "+op+" ?) OR ("+createdAt+" = ? AND "+id+" "+op+" ?)",
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
			)
		}
		return db.
			Order(createdAt + " " + dir).
			Order(id + " " + dir).
			Limit(LimitWithBuffer(params.Limit))
	}, nil
}
