package cycle

import (
	"context"
	"fmt"
	"os"

	"pressroom/internal/uniqueness"
)

// Checker runs the uniqueness guard against the current window without
// taking the cycle lock or writing anything.
type Checker struct {
	env *Env
}

// NewChecker returns a checker over env.
func NewChecker(env *Env) *Checker {
	return &Checker{env: env}
}

// Check parses the Markdown draft at path and returns the guard's verdict.
func (c *Checker) Check(ctx context.Context, path string) (uniqueness.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return uniqueness.Verdict{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return uniqueness.Verdict{}, fmt.Errorf("read draft: %w", err)
	}
	draft, err := uniqueness.ParseMarkdown(data)
	if err != nil {
		return uniqueness.Verdict{}, err
	}
	snap, err := c.env.State.Load()
	if err != nil {
		return uniqueness.Verdict{}, err
	}
	return c.env.Guard.Check(draft, snap.Records(), c.env.now()), nil
}
