package http

import "strings"

// Expression is the body of every request: one command line and the pid of
// the client sending it.
type Expression struct {
	Expr string `json:"expression"`
	Pid  int    `json:"pid"`
}

func newExpression(expr string, pid int) *Expression {
	return &Expression{Expr: expr, Pid: pid}
}

// command returns the name of the command, without its arguments.
func (e *Expression) command() string {
	name, _, _ := strings.Cut(strings.TrimSpace(e.Expr), " ")
	return name
}
