package http

import (
	"fmt"
	"net/http"

	"github.com/derekparker/trie"

	e "smug/error"
	"smug/service"
	"smug/utils"
)

type Router struct {
	method string
	path   string
	fn     func(ctx *Context)
}

type processor struct {
	prowler service.Executor
	router  []*Router
	trie    *trie.Trie
}

func (p *processor) route(method, path string) func(ctx *Context) {
	node, found := p.trie.Find(utils.MD5(methodPath(method, path)))
	if found {
		fn := node.Meta().(func(ctx *Context))
		return fn
	}

	return nil
}

func (p *processor) worker(ctx *Context) {
	req := ctx.request
	fn := p.route(req.method, req.path)
	if fn == nil {
		ctx.respFailed(http.StatusNotFound, http.StatusText(http.StatusNotFound))
		return
	}

	fn(ctx)
}

func newProcessor(x service.Executor) *processor {
	proc := &processor{
		prowler: x,
	}

	register(proc)
	return proc
}

func register(p *processor) {
	r := []*Router{
		{
			method: http.MethodGet,
			path:   "/smug",
			fn: func(ctx *Context) {
				ctx.respSuccess(hello{Name: service.Name, Pid: p.prowler.Pid()})
			},
		},
		{
			method: http.MethodPost,
			path:   "/exec",
			fn: func(ctx *Context) {
				expr := ctx.expr
				if ctx.logger != nil {
					ctx.logger.Debugf("client %d runs %s", expr.Pid, expr.command())
				}

				out, err := p.prowler.Exec(expr.Expr)
				if err != nil {
					status := http.StatusInternalServerError
					if e.IsUsage(err) {
						status = http.StatusBadRequest
					}
					ctx.respFailed(status, err.Error())
					return
				}

				ctx.respSuccess(out)
			},
		},
	}

	p.router = r

	t := trie.New()
	for _, router := range p.router {
		md5 := utils.MD5(methodPath(router.method, router.path))
		t.Add(md5, router.fn)
	}

	p.trie = t
}

func methodPath(method, path string) string {
	return fmt.Sprintf("%s:%s", method, path)
}
