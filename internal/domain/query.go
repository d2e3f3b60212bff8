package domain

// Op is a comparison operator understood by document-store collaborators.
type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
)

type Predicate struct {
	Field string
	Op    Op
	Value interface{}
}

// Query is a collection-scoped predicate list plus an optional ordering.
// Stores evaluate it; callers only build it.
type Query struct {
	Predicates []Predicate
	OrderBy    string
	Descending bool
}

// NewQuery returns an empty query matching every document.
func NewQuery() Query { return Query{} }

// Where appends a predicate and returns the extended query.
func (q Query) Where(field string, op Op, value interface{}) Query {
	preds := make([]Predicate, len(q.Predicates), len(q.Predicates)+1)
	copy(preds, q.Predicates)
	q.Predicates = append(preds, Predicate{Field: field, Op: op, Value: value})
	return q
}

// Eq is shorthand for Where(field, OpEq, value).
func (q Query) Eq(field string, value interface{}) Query {
	return q.Where(field, OpEq, value)
}

// Newest orders results by field, descending.
func (q Query) Newest(field string) Query {
	q.OrderBy = field
	q.Descending = true
	return q
}

// Equality returns the value of the first equality predicate on field.
func (q Query) Equality(field string) (interface{}, bool) {
	for _, p := range q.Predicates {
		if p.Field == field && p.Op == OpEq {
			return p.Value, true
		}
	}
	return nil, false
}

// Document attribute names used in queries.
const (
	FieldStatus      = "status"
	FieldCategory    = "category"
	FieldPostedBy    = "posted_by"
	FieldDate        = "date"
	FieldUserID      = "user_id"
	FieldIsRead      = "is_read"
	FieldCreatedAt   = "created_at"
	FieldLostItemID  = "lost_item_id"
	FieldFoundItemID = "found_item_id"
)
