package main

import (
	"fmt"
	"io"

	"github.com/leeforge/resizer/errors"
	"github.com/leeforge/resizer/json"
	"github.com/urfave/cli/v2"
)

type ErrorResult struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

type CommandResult struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorResult `json:"error,omitempty"`
}

// textResult is implemented by command results with a plain text form.
type textResult interface {
	writeText(w io.Writer)
}

// action wraps a command body with result and error reporting.
func (a *cliApp) action(fn func(c *cli.Context) (any, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		data, err := fn(c)
		if err != nil {
			a.outputError(c, err)
			return err
		}
		return a.outputSuccess(c, data)
	}
}

func (a *cliApp) outputSuccess(c *cli.Context, data any) error {
	if c.Bool("json") {
		return json.NewEncoder(a.stdout).Encode(&CommandResult{Success: true, Data: data})
	}
	if r, ok := data.(textResult); ok {
		r.writeText(a.stdout)
	}
	return nil
}

func (a *cliApp) outputError(c *cli.Context, err error) {
	appErr := errors.FromError(err)
	if c.Bool("json") {
		_ = json.NewEncoder(a.stdout).Encode(&CommandResult{
			Error: &ErrorResult{
				Type:     string(appErr.Type),
				Message:  err.Error(),
				Severity: string(appErr.Severity()),
			},
		})
		return
	}

	label := "Error"
	if appErr.Severity() == errors.SeverityWarning {
		label = "Warning"
	}
	fmt.Fprintf(a.stderr, "%s: %v\n", label, err)
}
