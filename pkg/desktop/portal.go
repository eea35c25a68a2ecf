package desktop

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"

	"github.com/holon-run/mozhelper/pkg/capability"
	helperlog "github.com/holon-run/mozhelper/pkg/log"
	"github.com/holon-run/mozhelper/pkg/pathutil"
)

const (
	portalDest       = "org.freedesktop.portal.Desktop"
	portalPath       = "/org/freedesktop/portal/desktop"
	fileChooserIface = "org.freedesktop.portal.FileChooser"
	requestIface     = "org.freedesktop.portal.Request"
	responseSignal   = requestIface + ".Response"

	// Response codes of org.freedesktop.portal.Request.Response.
	responseSuccess   = 0
	responseCancelled = 1

	ruleGlob = 0
	ruleMime = 1
)

// ApplicationDir is where the application picker starts browsing.
var ApplicationDir = "/usr/bin"

// portalFilter is the a(sa(us)) filter entry of the FileChooser portal.
type portalFilter struct {
	Name  string
	Rules []portalRule
}

type portalRule struct {
	Kind    uint32
	Pattern string
}

// Portal implements capability.FileChooser with xdg-desktop-portal.
type Portal struct {
	bus *Bus
}

// NewPortal creates a Portal on bus.
func NewPortal(bus *Bus) *Portal {
	return &Portal{bus: bus}
}

// ChooseOpen shows the portal's open dialog.
func (p *Portal) ChooseOpen(ctx context.Context, req capability.OpenRequest) (capability.Selection, error) {
	filters := portalFilters(req.Filters)
	options := map[string]dbus.Variant{
		"multiple": dbus.MakeVariant(req.Multiple),
		"modal":    dbus.MakeVariant(true),
	}
	addFilterOptions(options, filters, req.FilterIndex)
	if req.StartDir != "" {
		options["current_folder"] = bytesVariant(req.StartDir)
	}

	results, err := p.request(ctx, "OpenFile", req.Parent, req.Title, options)
	if err != nil {
		return capability.Selection{}, err
	}
	return capability.Selection{
		FilterIndex: selectedFilter(results, filters, req.FilterIndex),
		URIs:        resultURIs(results),
	}, nil
}

// ChooseSave shows the portal's save dialog. A suggested path is split into
// the starting folder and the proposed name.
func (p *Portal) ChooseSave(ctx context.Context, req capability.SaveRequest) (capability.Selection, error) {
	filters := portalFilters(req.Filters)
	options := map[string]dbus.Variant{
		"modal": dbus.MakeVariant(true),
	}
	addFilterOptions(options, filters, req.FilterIndex)
	folder, name := splitSuggested(req.Suggested)
	if folder != "" {
		options["current_folder"] = bytesVariant(folder)
	}
	if name != "" {
		options["current_name"] = dbus.MakeVariant(name)
	}

	results, err := p.request(ctx, "SaveFile", req.Parent, req.Title, options)
	if err != nil {
		return capability.Selection{}, err
	}
	return capability.Selection{
		FilterIndex: selectedFilter(results, filters, req.FilterIndex),
		URIs:        resultURIs(results),
	}, nil
}

// ChooseDirectory shows the portal's open dialog in directory mode.
func (p *Portal) ChooseDirectory(ctx context.Context, req capability.DirectoryRequest) (string, error) {
	options := map[string]dbus.Variant{
		"directory": dbus.MakeVariant(true),
		"modal":     dbus.MakeVariant(true),
	}
	if req.StartDir != "" {
		options["current_folder"] = bytesVariant(req.StartDir)
	}
	results, err := p.request(ctx, "OpenFile", req.Parent, req.Title, options)
	if err != nil {
		return "", err
	}
	uris := resultURIs(results)
	if len(uris) == 0 {
		return "", capability.ErrCancelled
	}
	return uris[0], nil
}

// ChooseApplication lets the user pick an executable. The portal has no
// application chooser, so this is an open dialog rooted at ApplicationDir.
func (p *Portal) ChooseApplication(ctx context.Context, title string, parent int64) (string, error) {
	if title == "" {
		title = "Choose Application"
	}
	options := map[string]dbus.Variant{
		"modal":          dbus.MakeVariant(true),
		"current_folder": bytesVariant(ApplicationDir),
	}
	results, err := p.request(ctx, "OpenFile", parent, title, options)
	if err != nil {
		return "", err
	}
	for _, uri := range resultURIs(results) {
		if path, ok := pathutil.LocalPath(uri); ok {
			return path, nil
		}
	}
	return "", capability.ErrCancelled
}

// request calls a FileChooser method and blocks until the portal answers
// on the request object.
func (p *Portal) request(ctx context.Context, method string, parent int64, title string, options map[string]dbus.Variant) (map[string]dbus.Variant, error) {
	conn, err := p.bus.Conn()
	if err != nil {
		return nil, err
	}
	names := conn.Names()
	if len(names) == 0 {
		return nil, errors.New("session bus connection has no unique name")
	}

	token := handleToken()
	options["handle_token"] = dbus.MakeVariant(token)
	expected := requestPath(names[0], token)

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	match := responseMatch(expected)
	if err := conn.AddMatchSignal(match...); err != nil {
		return nil, fmt.Errorf("failed to watch portal response: %w", err)
	}
	defer func() { _ = conn.RemoveMatchSignal(match...) }()

	var handle dbus.ObjectPath
	call := conn.Object(portalDest, portalPath).CallWithContext(ctx, fileChooserIface+"."+method, 0, parentWindow(parent), title, options)
	if err := call.Store(&handle); err != nil {
		return nil, fmt.Errorf("portal %s failed: %w", method, err)
	}
	if handle != expected {
		// Portals older than the handle_token convention pick their own path.
		helperlog.Debug("portal returned unexpected request path", "expected", expected, "handle", handle)
		legacy := responseMatch(handle)
		if err := conn.AddMatchSignal(legacy...); err != nil {
			return nil, fmt.Errorf("failed to watch portal response: %w", err)
		}
		defer func() { _ = conn.RemoveMatchSignal(legacy...) }()
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				return nil, errors.New("session bus connection closed")
			}
			if sig.Name != responseSignal || sig.Path != handle {
				continue
			}
			return decodeResponse(sig.Body)
		}
	}
}

func responseMatch(path dbus.ObjectPath) []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(requestIface),
		dbus.WithMatchMember("Response"),
	}
}

func decodeResponse(body []interface{}) (map[string]dbus.Variant, error) {
	var code uint32
	var results map[string]dbus.Variant
	if err := dbus.Store(body, &code, &results); err != nil {
		return nil, fmt.Errorf("malformed portal response: %w", err)
	}
	switch code {
	case responseSuccess:
		return results, nil
	case responseCancelled:
		return nil, capability.ErrCancelled
	default:
		return nil, fmt.Errorf("portal request ended with code %d", code)
	}
}

// handleToken returns a token usable as an object path element.
func handleToken() string {
	return "mozhelper_" + strings.ReplaceAll(uuid.NewString(), "-", "_")
}

// requestPath is the request object the portal creates for sender and token.
func requestPath(sender, token string) dbus.ObjectPath {
	s := strings.ReplaceAll(strings.TrimPrefix(sender, ":"), ".", "_")
	return dbus.ObjectPath(portalPath + "/request/" + s + "/" + token)
}

// parentWindow formats an X11 window id as a portal parent window handle.
func parentWindow(id int64) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("x11:%x", id)
}

// bytesVariant encodes a path as the nul-terminated byte array the portal
// expects for folder and file options.
func bytesVariant(path string) dbus.Variant {
	return dbus.MakeVariant(append([]byte(path), 0))
}

func portalFilters(filters []capability.Filter) []portalFilter {
	out := make([]portalFilter, 0, len(filters))
	for _, f := range filters {
		pf := portalFilter{Name: f.Label}
		for _, p := range f.Patterns {
			pf.Rules = append(pf.Rules, portalRule{Kind: ruleGlob, Pattern: p})
		}
		for _, m := range f.MimeTypes {
			pf.Rules = append(pf.Rules, portalRule{Kind: ruleMime, Pattern: m})
		}
		out = append(out, pf)
	}
	return out
}

func addFilterOptions(options map[string]dbus.Variant, filters []portalFilter, index int) {
	if len(filters) == 0 {
		return
	}
	options["filters"] = dbus.MakeVariant(filters)
	if index >= 0 && index < len(filters) {
		options["current_filter"] = dbus.MakeVariant(filters[index])
	}
}

// selectedFilter maps the portal's current_filter result back to an index
// into filters, falling back to the requested index.
func selectedFilter(results map[string]dbus.Variant, filters []portalFilter, requested int) int {
	v, ok := results["current_filter"]
	if !ok {
		return requested
	}
	var name string
	switch value := v.Value().(type) {
	case []interface{}:
		if len(value) > 0 {
			name, _ = value[0].(string)
		}
	case portalFilter:
		name = value.Name
	}
	for i, f := range filters {
		if f.Name == name {
			return i
		}
	}
	return requested
}

func resultURIs(results map[string]dbus.Variant) []string {
	v, ok := results["uris"]
	if !ok {
		return nil
	}
	uris, _ := v.Value().([]string)
	return uris
}

// splitSuggested separates a suggested save target into folder and name.
func splitSuggested(suggested string) (folder, name string) {
	if suggested == "" {
		return "", ""
	}
	if path, ok := pathutil.LocalPath(suggested); ok {
		if strings.HasSuffix(suggested, "/") {
			return path, ""
		}
		return filepath.Dir(path), filepath.Base(path)
	}
	return "", suggested
}
