package firewall

import (
	"context"
	"fmt"
	"strings"
)

// DryRun prints the command the wrapped backend would run and records it.
type DryRun struct {
	opts     Options
	backend  commander
	Commands []string
}

func (d *DryRun) Deny(_ context.Context, cidr string) error {
	tool, args := d.backend.command(cidr)
	name, argv := command(d.opts, tool, args...)
	line := strings.Join(append([]string{name}, argv...), " ")
	d.Commands = append(d.Commands, line)
	fmt.Fprintf(d.opts.Out, "would run: %s\n", line)
	return nil
}
