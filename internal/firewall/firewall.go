// Package firewall applies deny rules through an external packet-filter tool.
package firewall

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cidrblock/internal/model"
)

// ErrRuleApplication is returned when the firewall tool rejects a rule.
var ErrRuleApplication = errors.New("rule application failed")

// Firewall denies inbound traffic from a CIDR block.
type Firewall interface {
	Deny(ctx context.Context, cidr string) error
}

type Options struct {
	Sudo    bool
	Binary  string // overrides the backend's default tool name
	Chain   string // iptables only
	Service model.Service
	Runner  Runner
	DryRun  bool      // print commands instead of running them
	Out     io.Writer // dry-run only
}

// commander renders the tool invocation a backend would run for a CIDR.
type commander interface {
	command(cidr string) (tool string, args []string)
}

// New returns the backend registered under name: "ufw" or "iptables".
// "dry-run" is kept as shorthand for ufw with Options.DryRun set.
func New(name string, opts Options) (Firewall, error) {
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}

	var backend commander
	switch strings.ToLower(name) {
	case "ufw":
		backend = &UFW{opts: opts}
	case "iptables":
		if opts.Chain == "" {
			opts.Chain = "INPUT"
		}
		backend = &IPTables{opts: opts}
	case "dry-run", "dryrun":
		opts.DryRun = true
		backend = &UFW{opts: opts}
	default:
		return nil, fmt.Errorf("unknown firewall backend: %s", name)
	}

	if opts.DryRun {
		if opts.Out == nil {
			opts.Out = os.Stdout
		}
		return &DryRun{opts: opts, backend: backend}, nil
	}
	return backend.(Firewall), nil
}

// run executes tool with args, prefixed by sudo when configured.
func run(ctx context.Context, opts Options, cidr, tool string, args ...string) error {
	name, argv := command(opts, tool, args...)
	out, err := opts.Runner.Run(ctx, name, argv...)
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail != "" {
			return fmt.Errorf("%w: %s: %v: %s", ErrRuleApplication, cidr, err, detail)
		}
		return fmt.Errorf("%w: %s: %v", ErrRuleApplication, cidr, err)
	}
	return nil
}

func command(opts Options, tool string, args ...string) (string, []string) {
	if opts.Binary != "" {
		tool = opts.Binary
	}
	if opts.Sudo {
		return "sudo", append([]string{tool}, args...)
	}
	return tool, args
}
