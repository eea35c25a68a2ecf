package helper

import (
	"context"
	"strconv"

	"github.com/holon-run/mozhelper/pkg/capability"
	helperlog "github.com/holon-run/mozhelper/pkg/log"
	"github.com/holon-run/mozhelper/pkg/pathutil"
)

const (
	argMultiple = "MULTIPLE"

	defaultOpenTitle = "Open"
	defaultSaveTitle = "Save As"
)

func (h *Helper) handleAppsDialog(ctx context.Context) bool {
	if !h.in.ReadArguments(1) {
		return false
	}
	title := h.in.Argument()
	parent := h.in.ArgumentParent()
	if !h.in.AllArgumentsUsed() {
		return false
	}
	command, err := h.caps.Files.ChooseApplication(ctx, title, parent)
	if err != nil {
		capabilityFailed(CommandAppsDialog, err)
		return false
	}
	program := pathutil.FirstField(command)
	if program == "" {
		return false
	}
	exe, err := h.caps.Launcher.FindExecutable(program)
	if err != nil || exe == "" {
		helperlog.Warn("chosen application is not executable", "command", command)
		return false
	}
	h.out.WriteLine(pathutil.FileURL(exe))
	return true
}

func (h *Helper) handleGetOpen(ctx context.Context, wantURL bool) bool {
	if !h.in.ReadArguments(4) {
		return false
	}
	startDir := h.in.Argument()
	filters := parseFilters(h.in.Argument())
	filterIndex := lenientInt(h.in.Argument())
	title := h.in.Argument()
	multiple := h.in.IsArgument(argMultiple)
	parent := h.in.ArgumentParent()
	if !h.in.AllArgumentsUsed() {
		return false
	}
	if title == "" {
		title = defaultOpenTitle
	}
	cmd := CommandGetOpenFileName
	if wantURL {
		cmd = CommandGetOpenURL
	}

	sel, err := h.caps.Files.ChooseOpen(ctx, capability.OpenRequest{
		Title:       title,
		StartDir:    startDir,
		Filters:     filters,
		FilterIndex: clampFilter(filterIndex, len(filters)),
		Multiple:    multiple,
		LocalOnly:   !wantURL,
		Parent:      parent,
	})
	if err != nil {
		capabilityFailed(cmd, err)
		return false
	}
	results := selectionLines(sel.URIs, wantURL)
	if !multiple && len(results) > 1 {
		results = results[:1]
	}
	if len(results) == 0 {
		return false
	}
	h.out.WriteLine(strconv.Itoa(sel.FilterIndex))
	for _, r := range results {
		h.out.WriteLine(r)
	}
	return true
}

func (h *Helper) handleGetSave(ctx context.Context, wantURL bool) bool {
	if !h.in.ReadArguments(4) {
		return false
	}
	suggested := h.in.Argument()
	filters := parseFilters(h.in.Argument())
	filterIndex := lenientInt(h.in.Argument())
	title := h.in.Argument()
	parent := h.in.ArgumentParent()
	if !h.in.AllArgumentsUsed() {
		return false
	}
	if title == "" {
		title = defaultSaveTitle
	}
	cmd := CommandGetSaveFileName
	if wantURL {
		cmd = CommandGetSaveURL
	}

	sel, err := h.caps.Files.ChooseSave(ctx, capability.SaveRequest{
		Title:       title,
		Suggested:   suggested,
		Filters:     filters,
		FilterIndex: clampFilter(filterIndex, len(filters)),
		LocalOnly:   !wantURL,
		Parent:      parent,
	})
	if err != nil {
		capabilityFailed(cmd, err)
		return false
	}
	results := selectionLines(sel.URIs, wantURL)
	if len(results) == 0 {
		return false
	}
	h.out.WriteLine(strconv.Itoa(sel.FilterIndex))
	h.out.WriteLine(results[0])
	return true
}

func (h *Helper) handleGetDirectory(ctx context.Context, wantURL bool) bool {
	if !h.in.ReadArguments(2) {
		return false
	}
	startDir := h.in.Argument()
	title := h.in.Argument()
	parent := h.in.ArgumentParent()
	if !h.in.AllArgumentsUsed() {
		return false
	}
	cmd := CommandGetDirectoryFileName
	if wantURL {
		cmd = CommandGetDirectoryURL
	}

	uri, err := h.caps.Files.ChooseDirectory(ctx, capability.DirectoryRequest{
		Title:     title,
		StartDir:  startDir,
		LocalOnly: !wantURL,
		Parent:    parent,
	})
	if err != nil {
		capabilityFailed(cmd, err)
		return false
	}
	results := selectionLines([]string{uri}, wantURL)
	if len(results) == 0 {
		return false
	}
	h.out.WriteLine(results[0])
	return true
}

// selectionLines converts dialog URIs into reply lines: URIs as-is for the
// URL commands, local paths for the file name commands. Entries that are
// empty, or not local when a path is wanted, are dropped.
func selectionLines(uris []string, wantURL bool) []string {
	var lines []string
	for _, uri := range uris {
		if uri == "" {
			continue
		}
		if wantURL {
			lines = append(lines, uri)
			continue
		}
		if path, ok := pathutil.LocalPath(uri); ok {
			lines = append(lines, path)
		}
	}
	return lines
}
