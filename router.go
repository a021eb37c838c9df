package urlmap

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/savsgio/gotils"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fasthttp/urlmap/rule"
)

// MethodWild wild HTTP method
const MethodWild = "*"

var (
	questionMark = byte('?')

	// MatchedEndpointParam is the param name under which the endpoint of the
	// matched rule is stored, if Router.SaveMatchedEndpoint is set.
	MatchedEndpointParam = fmt.Sprintf("__matchedEndpoint::%s__", gotils.RandBytes(make([]byte, 15)))

	// wildMethods are the methods accepted by ANY routes.
	wildMethods = []string{
		fasthttp.MethodGet,
		fasthttp.MethodHead,
		fasthttp.MethodPost,
		fasthttp.MethodPut,
		fasthttp.MethodDelete,
		fasthttp.MethodPatch,
		fasthttp.MethodOptions,
		fasthttp.MethodTrace,
		fasthttp.MethodConnect,
	}
)

// Router is a fasthttp.RequestHandler dispatching requests to the handlers
// of the matched endpoints.
type Router struct {
	mu      sync.Mutex
	routes  []*route
	binding atomic.Pointer[binding]

	logger  *zap.Logger
	metrics *matchMetrics

	// ServerName, URLScheme and ScriptName bind the URLs built with URL.
	ServerName string
	URLScheme  string
	ScriptName string

	// If enabled, adds the endpoint of the matched rule onto the ctx.UserValue context
	// before invoking the handler.
	// The endpoint is stored under MatchedEndpointParam.
	SaveMatchedEndpoint bool

	// Enables automatic redirection if the current route can't be matched but a
	// handler for the path with (without) the trailing slash exists.
	// For example if /foo/ is requested but a route only exists for /foo, the
	// client is redirected to /foo with http status code 301 for GET requests
	// and 308 for all other request methods.
	RedirectTrailingSlash bool

	// If enabled, the router checks if another method is allowed for the
	// current route, if the current request can not be routed.
	// If this is the case, the request is answered with 'Method Not Allowed'
	// and HTTP status code 405.
	// If no other Method is allowed, the request is delegated to the NotFound
	// handler.
	HandleMethodNotAllowed bool

	// If enabled, the router automatically replies to OPTIONS requests.
	// Custom OPTIONS handlers take priority over automatic replies.
	HandleOPTIONS bool

	// An optional fasthttp.RequestHandler that is called on automatic OPTIONS requests.
	// The handler is only called if HandleOPTIONS is true and no OPTIONS
	// handler for the specific path was set.
	// The "Allowed" header is set before calling the handler.
	GlobalOPTIONS fasthttp.RequestHandler

	// Configurable fasthttp.RequestHandler which is called when no matching route is
	// found. If it is not set, default NotFound is used.
	NotFound fasthttp.RequestHandler

	// Configurable fasthttp.RequestHandler which is called when a request
	// cannot be routed and HandleMethodNotAllowed is true.
	// If it is not set, ctx.Error with fasthttp.StatusMethodNotAllowed is used.
	// The "Allow" header with allowed request methods is set before the handler
	// is called.
	MethodNotAllowed fasthttp.RequestHandler

	// Function to handle panics recovered from http handlers.
	// It should be used to generate a error page and return the http error code
	// 500 (Internal Server Error).
	// The handler can be used to keep your server from crashing because of
	// unrecovered panics.
	PanicHandler func(*fasthttp.RequestCtx, interface{})
}

// route is one (pattern, endpoint) registration with its handlers by method.
type route struct {
	pattern  string
	endpoint string
	opts     []rule.Option
	methods  []string
	handlers map[string]fasthttp.RequestHandler
}

func (rt *route) handler(method string) fasthttp.RequestHandler {
	if h := rt.handlers[method]; h != nil {
		return h
	}

	if h := rt.handlers[MethodWild]; h != nil {
		return h
	}

	if method == fasthttp.MethodHead {
		return rt.handlers[fasthttp.MethodGet]
	}

	return nil
}

func (rt *route) rule() (*rule.Rule, error) {
	methods := make([]string, 0, len(rt.methods))

	for _, m := range rt.methods {
		if m == MethodWild {
			methods = append(methods, wildMethods...)
		} else {
			methods = append(methods, m)
		}
	}

	opts := append(append([]rule.Option(nil), rt.opts...), rule.WithMethods(methods...))

	return rule.New(rt.pattern, rt.endpoint, opts...)
}

// binding is the frozen state served by Handler.
type binding struct {
	adapter *Adapter
	routes  map[*rule.Rule]*route

	// globalAllowed is the Allow header of server-wide OPTIONS requests.
	globalAllowed string
}

// lookup returns the handler of the first rule accepting path and method
// that has one. Every rule accepts HEAD and OPTIONS, so the rule returned
// by Match may have no handler while a later one has. A nil handler with a
// nil error means the method is only implicitly allowed.
func (b *binding) lookup(path, method string) (Result, fasthttp.RequestHandler, error) {
	res, err := b.adapter.Match(path, method)
	if err != nil {
		return res, nil, err
	}

	method = rule.NormalizeMethod(method)

	h := b.routes[res.Rule].handler(method)
	if h != nil {
		return res, h, nil
	}

	b.adapter.Table().Each(path, method, func(r *rule.Rule, values rule.Values) bool {
		if h = b.routes[r].handler(method); h != nil {
			res = Result{Endpoint: r.Endpoint(), Values: values, Rule: r}
			return false
		}

		return true
	})

	return res, h, nil
}

// New returns a new initialized Router.
// Trailing slash redirection, 405 and OPTIONS handling are enabled by default.
func New(opts ...Option) *Router {
	o := newOptions(opts)

	return &Router{
		logger:                 o.logger,
		metrics:                newMatchMetrics(o.registerer),
		RedirectTrailingSlash:  true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
	}
}

// Group returns a new group. Its routes are registered under prefix and
// their endpoints are prefixed with "name.".
func (r *Router) Group(prefix, name string) *Group {
	validateGroupPath(prefix)
	validateName(name)

	if prefix == "/" {
		prefix = ""
	}

	return &Group{router: r, prefix: prefix, name: name}
}

// GET is a shortcut for router.Handle(fasthttp.MethodGet, pattern, endpoint, handler)
func (r *Router) GET(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	r.Handle(fasthttp.MethodGet, pattern, endpoint, handler, opts...)
}

// HEAD is a shortcut for router.Handle(fasthttp.MethodHead, pattern, endpoint, handler)
func (r *Router) HEAD(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	r.Handle(fasthttp.MethodHead, pattern, endpoint, handler, opts...)
}

// OPTIONS is a shortcut for router.Handle(fasthttp.MethodOptions, pattern, endpoint, handler)
func (r *Router) OPTIONS(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	r.Handle(fasthttp.MethodOptions, pattern, endpoint, handler, opts...)
}

// POST is a shortcut for router.Handle(fasthttp.MethodPost, pattern, endpoint, handler)
func (r *Router) POST(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	r.Handle(fasthttp.MethodPost, pattern, endpoint, handler, opts...)
}

// PUT is a shortcut for router.Handle(fasthttp.MethodPut, pattern, endpoint, handler)
func (r *Router) PUT(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	r.Handle(fasthttp.MethodPut, pattern, endpoint, handler, opts...)
}

// PATCH is a shortcut for router.Handle(fasthttp.MethodPatch, pattern, endpoint, handler)
func (r *Router) PATCH(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	r.Handle(fasthttp.MethodPatch, pattern, endpoint, handler, opts...)
}

// DELETE is a shortcut for router.Handle(fasthttp.MethodDelete, pattern, endpoint, handler)
func (r *Router) DELETE(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	r.Handle(fasthttp.MethodDelete, pattern, endpoint, handler, opts...)
}

// ANY is a shortcut for router.Handle(router.MethodWild, pattern, endpoint, handler)
//
// WARNING: Use only for routes where the request method is not important
func (r *Router) ANY(pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	r.Handle(MethodWild, pattern, endpoint, handler, opts...)
}

// Handle registers a new request handler for the given method, rule pattern
// and endpoint.
//
// Registering the same pattern and endpoint again adds a method to the same
// rule; rule options are taken from the first registration. A static
// pattern belongs to a single endpoint: registering it under another one
// panics.
//
// Handle panics on invalid input, including malformed patterns. It may be
// called after the router started serving, but not concurrently with
// Handler.
func (r *Router) Handle(method, pattern, endpoint string, handler fasthttp.RequestHandler, opts ...rule.Option) {
	switch {
	case len(method) == 0:
		panic("method must not be empty")
	case len(pattern) < 1 || pattern[0] != '/':
		panic("path must begin with '/' in path '" + pattern + "'")
	case len(endpoint) == 0:
		panic("endpoint must not be empty in path '" + pattern + "'")
	case handler == nil:
		panic("handler must not be nil")
	}

	method = rule.NormalizeMethod(method)

	r.mu.Lock()
	defer r.mu.Unlock()

	rt := r.findRoute(pattern, endpoint)
	if rt == nil {
		rt = &route{
			pattern:  pattern,
			endpoint: endpoint,
			opts:     opts,
			handlers: make(map[string]fasthttp.RequestHandler),
		}

		rl, err := rt.rule()
		if err != nil {
			panic(err.Error())
		}

		// A second static rule on the same path would never be reached.
		if rl.IsStatic() {
			if owner := r.findPattern(pattern); owner != nil {
				panic("path '" + pattern + "' is already registered for endpoint '" + owner.endpoint + "'")
			}
		}

		r.routes = append(r.routes, rt)
	}

	if rt.handlers[method] != nil {
		panic("a handler is already registered for method '" + method + "' in path '" + pattern + "'")
	}

	rt.handlers[method] = handler
	rt.methods = append(rt.methods, method)

	r.binding.Store(nil)
}

func (r *Router) findPattern(pattern string) *route {
	for _, rt := range r.routes {
		if rt.pattern == pattern {
			return rt
		}
	}

	return nil
}

func (r *Router) findRoute(pattern, endpoint string) *route {
	for _, rt := range r.routes {
		if rt.pattern == pattern && rt.endpoint == endpoint {
			return rt
		}
	}

	return nil
}

// ServeFiles serves files from the given file system root.
// The pattern must end with "/<path:filepath>", files are then served from the local
// path /defined/root/dir/<path:filepath>.
// For example if root is "/etc" and <path:filepath> is "passwd", the local file
// "/etc/passwd" would be served.
// Internally a fasthttp.FSHandler is used, therefore http.NotFound is used instead
// of the Router's NotFound handler. The endpoint is "static".
// Use:
//
//	router.ServeFiles("/src/<path:filepath>", "./")
func (r *Router) ServeFiles(pattern string, rootPath string) {
	r.GET(pattern, staticEndpoint, fsHandler(pattern, rootPath))
}

// ServeFilesCustom serves files from the given file system settings.
// The pattern must end with "/<path:filepath>", files are then served from the local
// path /defined/root/dir/<path:filepath>.
// For example if root is "/etc" and <path:filepath> is "passwd", the local file
// "/etc/passwd" would be served.
// Internally a fasthttp.FSHandler is used, therefore http.NotFound is used instead
// of the Router's NotFound handler. The endpoint is "static".
// Use:
//
//	router.ServeFilesCustom("/src/<path:filepath>", *customFS)
func (r *Router) ServeFilesCustom(pattern string, fs *fasthttp.FS) {
	r.GET(pattern, staticEndpoint, fsCustomHandler(pattern, fs))
}

func fsHandler(pattern, rootPath string) fasthttp.RequestHandler {
	prefix := staticPrefix(pattern)

	return fasthttp.FSHandler(rootPath, strings.Count(prefix, "/"))
}

func fsCustomHandler(pattern string, fs *fasthttp.FS) fasthttp.RequestHandler {
	prefix := staticPrefix(pattern)
	stripSlashes := strings.Count(prefix, "/")

	if fs.PathRewrite == nil && stripSlashes > 0 {
		fs.PathRewrite = fasthttp.NewPathSlashesStripper(stripSlashes)
	}

	return fs.NewRequestHandler()
}

const (
	staticEndpoint = "static"
	staticSuffix   = "/<path:filepath>"
)

func staticPrefix(pattern string) string {
	if !strings.HasSuffix(pattern, staticSuffix) {
		panic("path must end with " + staticSuffix + " in path '" + pattern + "'")
	}

	return pattern[:len(pattern)-len(staticSuffix)]
}

// Freeze compiles the registered routes and returns their Table.
// Handler calls Freeze on its first request.
func (r *Router) Freeze() *Table {
	return r.bound().adapter.Table()
}

func (r *Router) bound() *binding {
	if b := r.binding.Load(); b != nil {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b := r.binding.Load(); b != nil {
		return b
	}

	m := NewMap(WithLogger(r.logger))
	routes := make(map[*rule.Rule]*route, len(r.routes))

	for _, rt := range r.routes {
		rl, err := rt.rule()
		if err != nil {
			panic(err.Error())
		}

		if err := m.Add(rl); err != nil {
			panic(err.Error())
		}

		routes[rl] = rt
	}

	table := m.Freeze()
	b := &binding{
		adapter: table.Bind(r.ServerName, WithScheme(r.URLScheme), WithScriptName(r.ScriptName)),
		routes:  routes,
	}

	if len(r.routes) > 0 {
		b.globalAllowed = strings.Join(table.Methods(), ", ")
	}

	r.binding.Store(b)

	return b
}

// URL builds the URL of endpoint. See Adapter.Build.
func (r *Router) URL(endpoint string, values rule.Values, opts ...BuildOption) (string, error) {
	return r.bound().adapter.Build(endpoint, values, opts...)
}

func (r *Router) recv(ctx *fasthttp.RequestCtx) {
	if rcv := recover(); rcv != nil {
		r.logger.Error("panic recovered",
			zap.Any("panic", rcv),
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
		)

		r.PanicHandler(ctx, rcv)
	}
}

// Lookup allows the manual lookup of a method + path combo.
// This is e.g. useful to build a framework around this router.
// If the path was found, it returns the handler function and stores the
// matched values as ctx user values. Otherwise the second return value
// indicates whether a redirection to the same path with an extra / without
// the trailing slash should be performed.
func (r *Router) Lookup(method, path string, ctx *fasthttp.RequestCtx) (fasthttp.RequestHandler, bool) {
	b := r.bound()

	res, h, err := b.lookup(path, method)
	if err == nil {
		if h != nil {
			r.saveValues(ctx, res)
		}

		return h, false
	}

	return nil, r.tsr(b, path, method)
}

func (r *Router) saveValues(ctx *fasthttp.RequestCtx, res Result) {
	for k, v := range res.Values {
		ctx.SetUserValue(k, v)
	}

	if r.SaveMatchedEndpoint {
		ctx.SetUserValue(MatchedEndpointParam, res.Endpoint)
	}
}

// tsr reports whether the slash-toggled path matches.
func (r *Router) tsr(b *binding, path, method string) bool {
	toggled, ok := toggleTrailingSlash(path)
	if !ok {
		return false
	}

	_, err := b.adapter.Match(toggled, method)

	return err == nil
}

// Handler makes the router implement the fasthttp.RequestHandler interface.
func (r *Router) Handler(ctx *fasthttp.RequestCtx) {
	if r.PanicHandler != nil {
		defer r.recv(ctx)
	}

	path := gotils.B2S(ctx.Path())
	method := gotils.B2S(ctx.Method())
	b := r.bound()

	res, h, err := b.lookup(path, method)
	if err == nil {
		if h != nil {
			r.metrics.observe(outcomeMatched)
			r.saveValues(ctx, res)
			h(ctx)

			return
		}

		if r.HandleOPTIONS && method == fasthttp.MethodOptions {
			r.metrics.observe(outcomeOptions)
			r.options(ctx, b.adapter.AllowedMethods(path))

			return
		}

		// HEAD or OPTIONS accepted by the rule without a handler.
		err = &MethodNotAllowedError{Path: path, Method: method, Allowed: b.adapter.AllowedMethods(path)}
	}

	var mnaErr *MethodNotAllowedError
	if errors.As(err, &mnaErr) && r.HandleMethodNotAllowed {
		r.metrics.observe(outcomeMethodNotAllowed)
		ctx.Response.Header.Set(fasthttp.HeaderAllow, strings.Join(mnaErr.Allowed, ", "))

		if r.MethodNotAllowed != nil {
			r.MethodNotAllowed(ctx)
		} else {
			ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
			ctx.SetBodyString(fasthttp.StatusMessage(fasthttp.StatusMethodNotAllowed))
		}

		return
	}

	if r.HandleOPTIONS && method == fasthttp.MethodOptions && (path == "*" || path == "/*") && b.globalAllowed != "" { // server-wide
		r.metrics.observe(outcomeOptions)
		ctx.Response.Header.Set(fasthttp.HeaderAllow, b.globalAllowed)

		if r.GlobalOPTIONS != nil {
			r.GlobalOPTIONS(ctx)
		}

		return
	}

	if r.RedirectTrailingSlash && method != fasthttp.MethodConnect && path != "/" && r.tsr(b, path, method) {
		r.metrics.observe(outcomeRedirect)
		r.redirectTrailingSlash(ctx, path, method)

		return
	}

	// Handle 404
	r.metrics.observe(outcomeNotFound)

	if r.NotFound != nil {
		r.NotFound(ctx)
	} else {
		ctx.Error(fasthttp.StatusMessage(fasthttp.StatusNotFound), fasthttp.StatusNotFound)
	}
}

func (r *Router) options(ctx *fasthttp.RequestCtx, allowed []string) {
	ctx.Response.Header.Set(fasthttp.HeaderAllow, strings.Join(allowed, ", "))

	if r.GlobalOPTIONS != nil {
		r.GlobalOPTIONS(ctx)
	}
}

func (r *Router) redirectTrailingSlash(ctx *fasthttp.RequestCtx, path, method string) {
	// Moved Permanently, request with GET method
	code := fasthttp.StatusMovedPermanently
	if method != fasthttp.MethodGet {
		// Permanent Redirect, request with same method
		code = fasthttp.StatusPermanentRedirect
	}

	uri := bytebufferpool.Get()

	if len(path) > 1 && path[len(path)-1] == '/' {
		uri.SetString(path[:len(path)-1])
	} else {
		uri.SetString(path)
		uri.WriteString("/")
	}

	queryBuf := ctx.URI().QueryString()
	if len(queryBuf) > 0 {
		uri.WriteByte(questionMark)
		uri.Write(queryBuf)
	}

	ctx.Redirect(uri.String(), code)

	bytebufferpool.Put(uri)
}

// List returns all registered patterns grouped by method
func (r *Router) List() map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make(map[string][]string)

	for _, rt := range r.routes {
		for _, m := range rt.methods {
			list[m] = append(list[m], rt.pattern)
		}
	}

	return list
}
