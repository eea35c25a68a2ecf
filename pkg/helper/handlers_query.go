package helper

import (
	"context"
	"net"
	"net/url"
	"strings"

	"github.com/holon-run/mozhelper/pkg/capability"
	helperlog "github.com/holon-run/mozhelper/pkg/log"
)

func (h *Helper) handleCheck(ctx context.Context) bool {
	if !h.in.ReadArguments(1) {
		return false
	}
	requested := h.in.Argument()
	if !h.in.AllArgumentsUsed() {
		return false
	}
	// A version that does not parse reads as 0, like the other numeric
	// arguments.
	version := lenientInt(requested)
	if version <= ProtocolVersion {
		return true
	}
	helperlog.Warn("helper version too old", "requested", version, "supported", ProtocolVersion)
	return false
}

func (h *Helper) handleGetProxy(ctx context.Context) bool {
	if !h.in.ReadArguments(1) {
		return false
	}
	target := h.in.Argument()
	if !h.in.AllArgumentsUsed() {
		return false
	}
	proxy, err := h.caps.Protocols.ResolveProxy(ctx, target)
	if err != nil {
		capabilityFailed(CommandGetProxy, err)
		return false
	}
	line, ok := proxyLine(proxy)
	if !ok {
		helperlog.Warn("unusable proxy url", "proxy", proxy)
		return false
	}
	h.out.WriteLine(line)
	return true
}

// proxyLine renders a proxy URL in PAC result syntax.
func proxyLine(proxy string) (string, bool) {
	if proxy == "" || proxy == "DIRECT" {
		return "DIRECT", true
	}
	u, err := url.Parse(proxy)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	port := u.Port()
	kind := "PROXY"
	switch strings.ToLower(u.Scheme) {
	case "socks", "socks4", "socks5", "socks5h":
		kind = "SOCKS"
		if port == "" {
			port = "1080"
		}
	case "https":
		if port == "" {
			port = "443"
		}
	default:
		if port == "" {
			port = "80"
		}
	}
	return kind + " " + net.JoinHostPort(u.Hostname(), port), true
}

func (h *Helper) handleHandlerExists(ctx context.Context) bool {
	if !h.in.ReadArguments(1) {
		return false
	}
	scheme := h.in.Argument()
	if !h.in.AllArgumentsUsed() {
		return false
	}
	return h.caps.Protocols.IsKnownProtocol(ctx, scheme)
}

func (h *Helper) handleGetFromExtension(ctx context.Context) bool {
	if !h.in.ReadArguments(1) {
		return false
	}
	ext := h.in.Argument()
	if !h.in.AllArgumentsUsed() {
		return false
	}
	if ext == "" {
		return false
	}
	mt, err := h.caps.Mime.ByExtension(ctx, ext)
	if err != nil {
		capabilityFailed(CommandGetFromExtension, err)
		return false
	}
	return h.writeMimeInfo(ctx, CommandGetFromExtension, mt)
}

func (h *Helper) handleGetFromType(ctx context.Context) bool {
	if !h.in.ReadArguments(1) {
		return false
	}
	name := h.in.Argument()
	if !h.in.AllArgumentsUsed() {
		return false
	}
	if mt, err := h.caps.Mime.ByName(ctx, name); err == nil {
		return h.writeMimeInfo(ctx, CommandGetFromType, mt)
	}
	// The browser also asks for scheme handlers through GETFROMTYPE.
	app, err := h.caps.Protocols.AppNameForProtocol(ctx, name)
	if err != nil || app == "" {
		if err != nil {
			capabilityFailed(CommandGetFromType, err)
		}
		return false
	}
	h.out.WriteLine(name)
	h.out.WriteLine(name)
	h.out.WriteLine(app)
	return true
}

func (h *Helper) writeMimeInfo(ctx context.Context, cmd Command, mt capability.MimeType) bool {
	app, err := h.caps.Mime.PreferredApplication(ctx, mt.Name)
	if err != nil {
		capabilityFailed(cmd, err)
		return false
	}
	h.out.WriteLine(mt.Name)
	h.out.WriteLine(mt.Comment)
	h.out.WriteLine(app.Name)
	return true
}

func (h *Helper) handleGetAppDescForScheme(ctx context.Context) bool {
	if !h.in.ReadArguments(1) {
		return false
	}
	scheme := h.in.Argument()
	if !h.in.AllArgumentsUsed() {
		return false
	}
	app, err := h.caps.Protocols.AppNameForProtocol(ctx, scheme)
	if err != nil {
		capabilityFailed(CommandGetAppDescForScheme, err)
		return false
	}
	if app == "" {
		return false
	}
	h.out.WriteLine(app)
	return true
}
