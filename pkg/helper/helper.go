// Package helper is the command dispatcher and session loop of the desktop
// integration helper. It reads one command at a time from the browser,
// runs the bound handler against the host capabilities and writes the
// reply.
package helper

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/holon-run/mozhelper/pkg/capability"
	helperlog "github.com/holon-run/mozhelper/pkg/log"
	"github.com/holon-run/mozhelper/pkg/protocol"
)

// ProtocolVersion is the highest protocol revision this helper implements.
// CHECK succeeds for any requested version up to and including it.
const ProtocolVersion = 6

// Options holds the host preferences handlers fall back on when the
// desktop has no setting of its own.
type Options struct {
	// FeedReader is the executable reported by GETDEFAULTFEEDREADER.
	FeedReader string
	// NewsClient is the desktop id launched by OPENNEWS.
	NewsClient string
	// MailClient is the desktop id (or command, with MailInTerminal)
	// launched by OPENMAIL.
	MailClient     string
	MailInTerminal bool
	// Terminal wraps MailClient when MailInTerminal is set.
	Terminal string
	// DownloadTitle and DownloadComment make up the notification sent by
	// DOWNLOADFINISHED.
	DownloadTitle   string
	DownloadComment string
}

// DefaultOptions returns the preferences used when no config file exists.
func DefaultOptions() Options {
	return Options{
		FeedReader:      "akregator",
		NewsClient:      "knode",
		MailClient:      "kmail",
		Terminal:        "konsole",
		DownloadTitle:   "Download finished",
		DownloadComment: "The file has been downloaded",
	}
}

type handlerFunc func(ctx context.Context) bool

// Helper binds the command table to one input and output stream.
type Helper struct {
	caps     capability.Capabilities
	opts     Options
	in       *protocol.Reader
	out      *protocol.Writer
	handlers map[Command]handlerFunc
}

// New creates a Helper reading commands from r and writing replies to w.
func New(caps capability.Capabilities, opts Options, r io.Reader, w io.Writer) (*Helper, error) {
	if err := caps.Validate(); err != nil {
		return nil, err
	}
	h := &Helper{
		caps: caps,
		opts: opts,
		in:   protocol.NewReader(r),
		out:  protocol.NewWriter(w),
	}
	h.handlers = map[Command]handlerFunc{
		CommandCheck:                h.handleCheck,
		CommandGetProxy:             h.handleGetProxy,
		CommandHandlerExists:        h.handleHandlerExists,
		CommandGetFromExtension:     h.handleGetFromExtension,
		CommandGetFromType:          h.handleGetFromType,
		CommandGetAppDescForScheme:  h.handleGetAppDescForScheme,
		CommandAppsDialog:           h.handleAppsDialog,
		CommandGetOpenFileName:      func(ctx context.Context) bool { return h.handleGetOpen(ctx, false) },
		CommandGetOpenURL:           func(ctx context.Context) bool { return h.handleGetOpen(ctx, true) },
		CommandGetSaveFileName:      func(ctx context.Context) bool { return h.handleGetSave(ctx, false) },
		CommandGetSaveURL:           func(ctx context.Context) bool { return h.handleGetSave(ctx, true) },
		CommandGetDirectoryFileName: func(ctx context.Context) bool { return h.handleGetDirectory(ctx, false) },
		CommandGetDirectoryURL:      func(ctx context.Context) bool { return h.handleGetDirectory(ctx, true) },
		CommandOpen:                 h.handleOpen,
		CommandReveal:               h.handleReveal,
		CommandRun:                  h.handleRun,
		CommandGetDefaultFeedReader: h.handleGetDefaultFeedReader,
		CommandOpenMail:             h.handleOpenMail,
		CommandOpenNews:             h.handleOpenNews,
		CommandIsDefaultBrowser:     h.handleIsDefaultBrowser,
		CommandSetDefaultBrowser:    h.handleSetDefaultBrowser,
		CommandDownloadFinished:     h.handleDownloadFinished,
	}
	for _, c := range Commands() {
		if h.handlers[c] == nil {
			return nil, fmt.Errorf("no handler registered for %s", c)
		}
	}
	return h, nil
}

// SetTracer logs every line crossing the wire through t.
func (h *Helper) SetTracer(t protocol.Tracer) {
	h.in.SetTracer(t)
	h.out.SetTracer(t)
}

// Dispatch runs the handler bound to token and returns its outcome. An
// unknown token has its argument block skipped and fails.
func (h *Helper) Dispatch(ctx context.Context, token string) (ok bool) {
	cmd, found := ParseCommand(token)
	if !found {
		helperlog.Warn("unknown command", "command", token)
		h.skipArguments()
		return false
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var perr *protocol.PreconditionError
		if err, isErr := r.(error); !isErr || !errors.As(err, &perr) {
			panic(r)
		}
		helperlog.Error("handler broke the argument contract", "command", cmd, "error", perr)
		h.in.Reset()
		ok = false
	}()
	return h.handlers[cmd](ctx)
}

func (h *Helper) skipArguments() {
	if h.in.ReadArguments(0) {
		h.in.Reset()
	}
}

// flagValue consumes an optional "<flag> <value>" pair. ok is false when
// the flag is present without a value.
func (h *Helper) flagValue(flag string) (value string, present, ok bool) {
	if !h.in.IsArgument(flag) {
		return "", false, true
	}
	if h.in.Len() == 0 {
		helperlog.Warn("flag given without a value", "flag", flag)
		return "", true, false
	}
	return h.in.Argument(), true, true
}

func capabilityFailed(cmd Command, err error) {
	if errors.Is(err, capability.ErrCancelled) || errors.Is(err, capability.ErrNotFound) {
		helperlog.Debug("capability declined", "command", cmd, "reason", err)
		return
	}
	helperlog.Warn("capability failed", "command", cmd, "error", err)
}
