package helper

import (
	"context"
	"time"

	helperlog "github.com/holon-run/mozhelper/pkg/log"
)

// Run serves commands until the input ends. Each command is handled to
// completion and answered before the next line is read; a handler blocked
// in a dialog holds the session for as long as the dialog stays open.
//
// End of input, or any input error, ends the session with a nil error and
// no reply for a command that was cut short. ctx is only checked between
// commands.
func (h *Helper) Run(ctx context.Context) error {
	served := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		token, err := h.in.ReadLine()
		if err != nil {
			helperlog.Debug("input closed, exiting", "commands", served)
			return nil
		}

		start := time.Now()
		ok := h.Dispatch(ctx, token)
		if h.in.EOF() {
			helperlog.Debug("input closed before command completed", "command", token)
			return nil
		}
		helperlog.Debug("command finished", "command", token, "ok", ok, "duration", time.Since(start))

		if err := h.out.WriteStatus(ok); err != nil {
			return err
		}
		served++
	}
}
