package helper

import (
	"context"
	"path/filepath"

	helperlog "github.com/holon-run/mozhelper/pkg/log"
	"github.com/holon-run/mozhelper/pkg/pathutil"
)

const argMimeType = "MIMETYPE"

// selectingFileManagers accept "--select <path>" to highlight a file.
var selectingFileManagers = map[string]bool{
	"dolphin":   true,
	"konqueror": true,
	"nautilus":  true,
}

func (h *Helper) handleOpen(ctx context.Context) bool {
	if !h.in.ReadArguments(1) {
		return false
	}
	target := h.in.Argument()
	mimeType, _, ok := h.flagValue(argMimeType)
	if !h.in.AllArgumentsUsed() || !ok {
		return false
	}

	// The declared type is used only when an application claims it.
	if mimeType != "" {
		if _, err := h.caps.Mime.ByName(ctx, mimeType); err == nil {
			if app, err := h.caps.Mime.PreferredApplication(ctx, mimeType); err == nil {
				if err := h.caps.Launcher.LaunchService(ctx, app.ID, target); err != nil {
					capabilityFailed(CommandOpen, err)
					return false
				}
				return true
			}
		}
	}
	if err := h.caps.Launcher.LaunchURL(ctx, target); err != nil {
		capabilityFailed(CommandOpen, err)
		return false
	}
	return true
}

func (h *Helper) handleReveal(ctx context.Context) bool {
	if !h.in.ReadArguments(1) {
		return false
	}
	path := h.in.Argument()
	if !h.in.AllArgumentsUsed() {
		return false
	}

	if app, err := h.caps.Mime.PreferredApplication(ctx, "inode/directory"); err == nil {
		program := pathutil.FirstField(app.Exec)
		if selectingFileManagers[filepath.Base(program)] {
			exe, err := h.caps.Launcher.FindExecutable(program)
			if err != nil {
				capabilityFailed(CommandReveal, err)
				return false
			}
			if err := h.caps.Launcher.LaunchCommand(ctx, exe, "--select", path); err != nil {
				capabilityFailed(CommandReveal, err)
				return false
			}
			return true
		}
	}
	if err := h.caps.Launcher.LaunchURL(ctx, pathutil.FileURL(pathutil.ParentDir(path))); err != nil {
		capabilityFailed(CommandReveal, err)
		return false
	}
	return true
}

func (h *Helper) handleRun(ctx context.Context) bool {
	if !h.in.ReadArguments(2) {
		return false
	}
	command := h.in.Argument()
	arg := h.in.Argument()
	if !h.in.AllArgumentsUsed() {
		return false
	}
	if err := h.caps.Launcher.LaunchCommand(ctx, command, arg); err != nil {
		capabilityFailed(CommandRun, err)
		return false
	}
	return true
}

func (h *Helper) handleGetDefaultFeedReader(ctx context.Context) bool {
	if !h.in.ReadArguments(0) {
		return false
	}
	if !h.in.AllArgumentsUsed() {
		return false
	}
	if h.opts.FeedReader == "" {
		return false
	}
	// The browser wants the full path.
	reader, err := h.caps.Launcher.FindExecutable(h.opts.FeedReader)
	if err != nil {
		capabilityFailed(CommandGetDefaultFeedReader, err)
		return false
	}
	h.out.WriteLine(reader)
	return true
}

func (h *Helper) handleOpenMail(ctx context.Context) bool {
	if !h.in.ReadArguments(0) {
		return false
	}
	if !h.in.AllArgumentsUsed() {
		return false
	}
	client := h.opts.MailClient
	if client == "" {
		return false
	}
	var err error
	if h.opts.MailInTerminal && h.opts.Terminal != "" {
		helperlog.Debug("starting mail client in terminal", "terminal", h.opts.Terminal, "client", client)
		err = h.caps.Launcher.LaunchCommand(ctx, h.opts.Terminal, "-e", client)
	} else {
		err = h.caps.Launcher.LaunchService(ctx, client)
	}
	if err != nil {
		capabilityFailed(CommandOpenMail, err)
		return false
	}
	return true
}

func (h *Helper) handleOpenNews(ctx context.Context) bool {
	if !h.in.ReadArguments(0) {
		return false
	}
	if !h.in.AllArgumentsUsed() {
		return false
	}
	if h.opts.NewsClient == "" {
		return false
	}
	if err := h.caps.Launcher.LaunchService(ctx, h.opts.NewsClient); err != nil {
		capabilityFailed(CommandOpenNews, err)
		return false
	}
	return true
}
