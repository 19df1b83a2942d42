package crm

import (
	"strings"

	domain "github.com/example/crm-backend/domain/crm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applyListQuery adds the filters and ordering of q to db. Column names come
// from the field whitelist, never from the caller.
func applyListQuery(db *gorm.DB, q domain.ListQuery, fields domain.FieldSet) (*gorm.DB, error) {
	preds, err := q.Predicates(fields)
	if err != nil {
		return nil, err
	}
	terms, err := q.SortTerms(fields)
	if err != nil {
		return nil, err
	}

	for _, p := range preds {
		col := p.Column
		switch p.Op {
		case domain.OpExact:
			db = db.Where(col+" = ?", p.Args[0])
		case domain.OpIExact:
			db = db.Where("LOWER("+col+") = LOWER(?)", p.Args[0])
		case domain.OpIContains:
			pattern := "%" + likeEscaper.Replace(strings.ToLower(p.Args[0].(string))) + "%"
			db = db.Where("LOWER("+col+`) LIKE ? ESCAPE '\'`, pattern)
		case domain.OpLT:
			db = db.Where(col+" < ?", p.Args[0])
		case domain.OpLTE:
			db = db.Where(col+" <= ?", p.Args[0])
		case domain.OpGT:
			db = db.Where(col+" > ?", p.Args[0])
		case domain.OpGTE:
			db = db.Where(col+" >= ?", p.Args[0])
		case domain.OpIn:
			db = db.Where(col+" IN ?", p.Args)
		}
	}

	for _, t := range terms {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: t.Column}, Desc: t.Desc})
	}
	return db, nil
}
