// Package prompt drives the recovery flow over plain line-oriented input and output, for use when
// stdin is not a terminal (pipes, scripts, CI).
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"content-portal/client/internal/recovery/domain"
	"content-portal/client/internal/recovery/service"
)

// BackCommand entered at any prompt abandons the flow and returns to sign-in.
const BackCommand = ".back"

// ErrInputClosed means input ended before the flow completed.
var ErrInputClosed = errors.New("prompt: input closed")

var labels = map[domain.Field]string{
	domain.FieldEmail:              "Email",
	domain.FieldVerifyCode:         "Verification code",
	domain.FieldNewPassword:        "New password",
	domain.FieldConfirmNewPassword: "Confirm new password",
}

// Result reports how a Run ended.
type Result struct {
	// Completed is true when the password was reset.
	Completed bool
	// SignIn is true when the user typed BackCommand.
	SignIn bool
}

// Runner reads one value per prompt from in and writes prompts and notices to out.
type Runner struct {
	ctrl  *service.Controller
	lines chan string
	errc  chan error
	out   io.Writer
}

// NewRunner returns a runner driving ctrl. It reads in line by line on its own goroutine.
func NewRunner(ctrl *service.Controller, in io.Reader, out io.Writer) *Runner {
	r := &Runner{
		ctrl:  ctrl,
		lines: make(chan string),
		errc:  make(chan error, 1),
		out:   out,
	}
	go r.scan(in)
	return r
}

func (r *Runner) scan(in io.Reader) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		r.lines <- strings.TrimRight(sc.Text(), "\r")
	}
	if err := sc.Err(); err != nil {
		r.errc <- fmt.Errorf("prompt: read input: %w", err)
	}
	close(r.lines)
}

// Run prompts for the active phase's fields and submits until the flow completes, the user
// returns to sign-in, input ends (ErrInputClosed) or ctx is done.
// For the email field an empty line keeps the current value.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	for {
		s := r.ctrl.State()
		for _, f := range domain.PhaseFields(s.Phase) {
			line, err := r.ask(ctx, f, s.Value(f))
			if err != nil {
				return Result{}, err
			}
			if line == BackCommand {
				r.ctrl.ReturnToSignIn()
				fmt.Fprintln(r.out, "Returning to sign in.")
				return Result{SignIn: true}, nil
			}
			if line == "" && f == domain.FieldEmail && s.Value(f) != "" {
				continue
			}
			r.ctrl.EditField(f, line)
		}

		req, err := r.ctrl.Begin()
		switch {
		case errors.Is(err, service.ErrValidation):
			st := r.ctrl.State()
			for _, f := range domain.PhaseFields(st.Phase) {
				if msg, bad := st.FieldErrors[f]; bad {
					fmt.Fprintf(r.out, "  %s: %s\n", labels[f], msg)
				}
			}
			continue
		case err != nil:
			return Result{}, err
		}
		fmt.Fprintln(r.out, "sending…")
		res := r.ctrl.Finish(ctx, req, r.ctrl.Dispatch(ctx, req))
		printNotice(r.out, res.State.Notice)
		if res.Completed {
			return Result{Completed: true}, nil
		}
	}
}

func (r *Runner) ask(ctx context.Context, f domain.Field, current string) (string, error) {
	if f == domain.FieldEmail && current != "" {
		fmt.Fprintf(r.out, "%s [%s]: ", labels[f], current)
	} else {
		fmt.Fprintf(r.out, "%s: ", labels[f])
	}
	select {
	case <-ctx.Done():
		fmt.Fprintln(r.out)
		return "", ctx.Err()
	case line, ok := <-r.lines:
		if !ok {
			fmt.Fprintln(r.out)
			select {
			case err := <-r.errc:
				return "", err
			default:
				return "", ErrInputClosed
			}
		}
		return line, nil
	}
}

func printNotice(w io.Writer, n domain.Notice) {
	switch n.Kind {
	case domain.NoticeError:
		fmt.Fprintf(w, "error: %s\n", n.Message)
	case domain.NoticeInfo:
		fmt.Fprintln(w, n.Message)
	}
}
