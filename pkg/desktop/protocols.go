package desktop

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpproxy"

	"github.com/holon-run/mozhelper/pkg/capability"
	helperlog "github.com/holon-run/mozhelper/pkg/log"
	"github.com/holon-run/mozhelper/pkg/pathutil"
)

// builtinProtocols are schemes every desktop session can open.
var builtinProtocols = []string{
	"file", "ftp", "http", "https", "sftp", "smb", "fish",
	"webdav", "webdavs", "mailto", "man", "info", "help", "trash",
}

// mailServiceName is reported for mailto when the handler is the desktop's
// internal mail service rather than a named client.
const mailServiceName = "KDE"

// Protocols implements capability.ProtocolResolver.
type Protocols struct {
	cache    *ProtocolCache
	builtin  map[string]bool
	apps     *Applications
	run      Runner
	proxyFor func(*url.URL) (*url.URL, error)
}

// ProtocolsConfig configures a Protocols resolver.
type ProtocolsConfig struct {
	Cache *ProtocolCache
	// Extra are schemes treated as known in addition to the built-in set.
	Extra []string
	Apps  *Applications
	Run   Runner
	// Proxy overrides the proxy settings read from the environment.
	Proxy *httpproxy.Config
}

// NewProtocols creates a resolver from cfg.
func NewProtocols(cfg ProtocolsConfig) *Protocols {
	builtin := make(map[string]bool, len(builtinProtocols)+len(cfg.Extra))
	for _, s := range builtinProtocols {
		builtin[s] = true
	}
	for _, s := range cfg.Extra {
		builtin[strings.ToLower(strings.TrimSpace(s))] = true
	}
	proxy := cfg.Proxy
	if proxy == nil {
		proxy = httpproxy.FromEnvironment()
	}
	cache := cfg.Cache
	if cache == nil {
		cache = NewProtocolCache(DefaultProtocolCacheSize)
	}
	return &Protocols{
		cache:    cache,
		builtin:  builtin,
		apps:     cfg.Apps,
		run:      cfg.Run,
		proxyFor: proxy.ProxyFunc(),
	}
}

// ResolveProxy returns the proxy URL for rawURL, or "" for direct access.
func (p *Protocols) ResolveProxy(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	proxy, err := p.proxyFor(u)
	if err != nil {
		return "", fmt.Errorf("proxy lookup for %s: %w", u.Redacted(), err)
	}
	if proxy == nil {
		return "", nil
	}
	return proxy.String(), nil
}

// IsKnownProtocol reports whether scheme can be opened on this desktop.
func (p *Protocols) IsKnownProtocol(ctx context.Context, scheme string) bool {
	scheme = strings.ToLower(strings.TrimSpace(scheme))
	if scheme == "" {
		return false
	}
	if known, ok := p.cache.Get(scheme); ok {
		return known
	}
	known := p.builtin[scheme]
	if !known {
		_, err := p.handlerID(ctx, scheme)
		known = err == nil
	}
	p.cache.Add(scheme, known)
	return known
}

// AppNameForProtocol returns the name of the application handling scheme.
func (p *Protocols) AppNameForProtocol(ctx context.Context, scheme string) (string, error) {
	scheme = strings.ToLower(strings.TrimSpace(scheme))
	id, err := p.handlerID(ctx, scheme)
	if err != nil {
		return "", err
	}
	app, err := p.apps.Lookup(id)
	if err != nil {
		return "", err
	}
	if pathutil.FirstField(app.Exec) == "kmailservice" {
		return mailServiceName, nil
	}
	return app.Name, nil
}

func (p *Protocols) handlerID(ctx context.Context, scheme string) (string, error) {
	if scheme == "" || strings.ContainsAny(scheme, "/ \t") {
		return "", fmt.Errorf("scheme %q: %w", scheme, capability.ErrNotFound)
	}
	out, err := p.run(ctx, "xdg-mime", "query", "default", "x-scheme-handler/"+scheme)
	if err != nil {
		helperlog.Debug("scheme handler query failed", "scheme", scheme, "error", err)
		return "", fmt.Errorf("scheme %q: %w", scheme, capability.ErrNotFound)
	}
	id := firstLine(out)
	if id == "" {
		return "", fmt.Errorf("scheme %q: %w", scheme, capability.ErrNotFound)
	}
	return id, nil
}
