package dag

// Condition is the tagged variant from spec.md §3. Like TaskInput, it is a
// closed, exhaustive marker interface; internal/condition does the
// evaluating.
type Condition interface {
	isCondition()
}

// CompareOp is one of the five comparison operators (spec.md §4.3).
type CompareOp string

const (
	OpEqual        CompareOp = "="
	OpNotEqual     CompareOp = "!="
	OpLessThan     CompareOp = "<"
	OpLessOrEqual  CompareOp = "<="
	OpIn           CompareOp = "in"
)

// CompareCondition is `=`/`!=`/`<`/`<=`/`in` over two TaskInput operands.
type CompareCondition struct {
	Op  CompareOp
	LHS TaskInput
	RHS TaskInput
}

func (CompareCondition) isCondition() {}

// LogicalOp is `and`/`or`.
type LogicalOp string

const (
	OpAnd LogicalOp = "and"
	OpOr  LogicalOp = "or"
)

// LogicalCondition recurses on two sub-Conditions.
type LogicalCondition struct {
	Op  LogicalOp
	LHS Condition
	RHS Condition
}

func (LogicalCondition) isCondition() {}

// NotCondition negates a sub-Condition.
type NotCondition struct {
	Value Condition
}

func (NotCondition) isCondition() {}
