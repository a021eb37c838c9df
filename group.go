package urlmap

import (
	"github.com/valyala/fasthttp"

	"github.com/fasthttp/urlmap/rule"
)

// Group registers routes under a path prefix. Endpoints of a named group
// are prefixed with "name.", so "users.detail" is the "detail" endpoint of
// the "users" group.
type Group struct {
	router *Router
	prefix string
	name   string
}

// Group returns a new subgroup. Prefixes and names are joined.
func (g *Group) Group(prefix, name string) *Group {
	validateGroupPath(prefix)
	validateName(name)

	if len(g.prefix) > 0 && prefix == "/" && name == "" {
		return g
	}

	sub := &Group{
		router: g.router,
		prefix: joinPath(g.prefix, prefix),
		name:   g.name,
	}

	if name != "" {
		sub.name = joinEndpoint(g.name, name)
	}

	return sub
}

// Prefix returns the path prefix of the group.
func (g *Group) Prefix() string {
	return g.prefix
}

// Name returns the endpoint prefix of the group.
func (g *Group) Name() string {
	return g.name
}

// GET is a shortcut for group.Handle(fasthttp.MethodGet, pattern, endpoint, handler)
func (g *Group) GET(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	g.Handle(fasthttp.MethodGet, pattern, endpoint, handler, opts...)
}

// HEAD is a shortcut for group.Handle(fasthttp.MethodHead, pattern, endpoint, handler)
func (g *Group) HEAD(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	g.Handle(fasthttp.MethodHead, pattern, endpoint, handler, opts...)
}

// POST is a shortcut for group.Handle(fasthttp.MethodPost, pattern, endpoint, handler)
func (g *Group) POST(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	g.Handle(fasthttp.MethodPost, pattern, endpoint, handler, opts...)
}

// PUT is a shortcut for group.Handle(fasthttp.MethodPut, pattern, endpoint, handler)
func (g *Group) PUT(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	g.Handle(fasthttp.MethodPut, pattern, endpoint, handler, opts...)
}

// PATCH is a shortcut for group.Handle(fasthttp.MethodPatch, pattern, endpoint, handler)
func (g *Group) PATCH(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	g.Handle(fasthttp.MethodPatch, pattern, endpoint, handler, opts...)
}

// DELETE is a shortcut for group.Handle(fasthttp.MethodDelete, pattern, endpoint, handler)
func (g *Group) DELETE(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	g.Handle(fasthttp.MethodDelete, pattern, endpoint, handler, opts...)
}

// OPTIONS is a shortcut for group.Handle(fasthttp.MethodOptions, pattern, endpoint, handler)
func (g *Group) OPTIONS(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	g.Handle(fasthttp.MethodOptions, pattern, endpoint, handler, opts...)
}

// ANY is a shortcut for group.Handle(router.MethodWild, pattern, endpoint, handler)
//
// WARNING: Use only for routes where the request method is not important
func (g *Group) ANY(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	g.Handle(MethodWild, pattern, endpoint, handler, opts...)
}

// ServeFiles serves files from the given file system root under the group
// prefix. See Router.ServeFiles.
func (g *Group) ServeFiles(pattern string, rootPath string) {
	validatePath(pattern)
	pattern = joinPath(g.prefix, pattern)

	g.router.GET(pattern, joinEndpoint(g.name, staticEndpoint), fsHandler(pattern, rootPath))
}

// ServeFilesCustom serves files from the given file system settings under
// the group prefix. See Router.ServeFilesCustom.
func (g *Group) ServeFilesCustom(pattern string, fs *fasthttp.FS) {
	validatePath(pattern)
	pattern = joinPath(g.prefix, pattern)

	g.router.GET(pattern, joinEndpoint(g.name, staticEndpoint), fsCustomHandler(pattern, fs))
}

// Handle registers a new request handler with the given method, pattern and
// endpoint under the group prefix and name.
func (g *Group) Handle(method, pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	validatePath(pattern)

	g.router.Handle(method, joinPath(g.prefix, pattern), joinEndpoint(g.name, endpoint), handler, opts...)
}
