package helper

import (
	"context"

	"github.com/holon-run/mozhelper/pkg/capability"
)

const (
	browserName     = "firefox"
	argAllTypes     = "ALLTYPES"
	eventDownloaded = "downloadfinished"
)

// browserSpellings are the values the desktop uses for this browser.
var browserSpellings = map[string]bool{
	"MozillaFirefox":         true,
	"MozillaFirefox.desktop": true,
	"!firefox":               true,
	"!/usr/bin/firefox":      true,
	"firefox":                true,
	"firefox.desktop":        true,
}

func (h *Helper) handleIsDefaultBrowser(ctx context.Context) bool {
	if !h.in.ReadArguments(0) {
		return false
	}
	if !h.in.AllArgumentsUsed() {
		return false
	}
	current, err := h.caps.Config.DefaultBrowser()
	if err != nil {
		capabilityFailed(CommandIsDefaultBrowser, err)
		return false
	}
	return browserSpellings[current]
}

func (h *Helper) handleSetDefaultBrowser(ctx context.Context) bool {
	if !h.in.ReadArguments(1) {
		return false
	}
	allTypes := h.in.Argument() == argAllTypes
	if !h.in.AllArgumentsUsed() {
		return false
	}
	if err := h.caps.Config.SetDefaultBrowser(browserName, allTypes); err != nil {
		capabilityFailed(CommandSetDefaultBrowser, err)
		return false
	}
	return true
}

func (h *Helper) handleDownloadFinished(ctx context.Context) bool {
	if !h.in.ReadArguments(1) {
		return false
	}
	download := h.in.Argument()
	if !h.in.AllArgumentsUsed() {
		return false
	}
	err := h.caps.Notifier.Emit(ctx, capability.Notification{
		Event: eventDownloaded,
		Title: h.opts.DownloadTitle,
		Text:  download + " : " + h.opts.DownloadComment,
	})
	if err != nil {
		capabilityFailed(CommandDownloadFinished, err)
		return false
	}
	return true
}
