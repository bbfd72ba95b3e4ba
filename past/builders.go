package past

// Builder constructors for every node kind, so callers outside this
// package (frontend/pyast, tests) can construct trees without reaching
// into baseNode directly.

func NewConstant(line int, value interface{}) *Constant {
	return &Constant{baseNode: baseNode{LineNumber: line}, Value: value}
}

func NewName(line int, id string) *Name {
	return &Name{baseNode: baseNode{LineNumber: line}, ID: id}
}

func NewBinOp(line int, op string, left, right Expr) *BinOp {
	return &BinOp{baseNode: baseNode{LineNumber: line}, Op: op, Left: left, Right: right}
}

func NewUnaryOp(line int, op string, operand Expr) *UnaryOp {
	return &UnaryOp{baseNode: baseNode{LineNumber: line}, Op: op, Operand: operand}
}

func NewBoolOp(line int, op string, values []Expr) *BoolOp {
	return &BoolOp{baseNode: baseNode{LineNumber: line}, Op: op, Values: values}
}

func NewCompare(line int, left Expr, ops []string, comparators []Expr) *Compare {
	return &Compare{baseNode: baseNode{LineNumber: line}, Left: left, Ops: ops, Comparators: comparators}
}

func NewCall(line int, fn Expr, args []Expr, keywords []Keyword) *Call {
	return &Call{baseNode: baseNode{LineNumber: line}, Func: fn, Args: args, Keywords: keywords}
}

func NewAttribute(line int, value Expr, attr string) *Attribute {
	return &Attribute{baseNode: baseNode{LineNumber: line}, Value: value, Attr: attr}
}

func NewExprStmt(line int, value Expr) *ExprStmt {
	return &ExprStmt{baseNode: baseNode{LineNumber: line}, Value: value}
}

func NewAssign(line int, targets []Expr, value Expr) *Assign {
	return &Assign{baseNode: baseNode{LineNumber: line}, Targets: targets, Value: value}
}

func NewAugAssign(line int, target Expr, op string, value Expr) *AugAssign {
	return &AugAssign{baseNode: baseNode{LineNumber: line}, Target: target, Op: op, Value: value}
}

func NewIf(line int, test Expr, body, orelse []Stmt) *If {
	return &If{baseNode: baseNode{LineNumber: line}, Test: test, Body: body, OrElse: orelse}
}

func NewWhile(line int, test Expr, body, orelse []Stmt) *While {
	return &While{baseNode: baseNode{LineNumber: line}, Test: test, Body: body, OrElse: orelse}
}

func NewFor(line int, target, iter Expr, body, orelse []Stmt) *For {
	return &For{baseNode: baseNode{LineNumber: line}, Target: target, Iter: iter, Body: body, OrElse: orelse}
}

func NewBreak(line int) *Break {
	return &Break{baseNode: baseNode{LineNumber: line}}
}

func NewContinue(line int) *Continue {
	return &Continue{baseNode: baseNode{LineNumber: line}}
}

func NewMatch(line int, subject Expr, cases []MatchCase) *Match {
	return &Match{baseNode: baseNode{LineNumber: line}, Subject: subject, Cases: cases}
}

func NewMatchValue(line int, value Expr) *MatchValue {
	return &MatchValue{baseNode: baseNode{LineNumber: line}, Value: value}
}

func NewMatchSingleton(line int, value interface{}) *MatchSingleton {
	return &MatchSingleton{baseNode: baseNode{LineNumber: line}, Value: value}
}
