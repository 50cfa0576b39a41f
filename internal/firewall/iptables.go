package firewall

import (
	"context"
	"strconv"
)

// IPTables inserts a DROP rule at the head of the configured chain.
type IPTables struct {
	opts Options
}

func (t *IPTables) Deny(ctx context.Context, cidr string) error {
	tool, args := t.command(cidr)
	return run(ctx, t.opts, cidr, tool, args...)
}

func (t *IPTables) command(cidr string) (string, []string) {
	args := []string{"-I", t.opts.Chain, "-s", cidr}
	if svc := t.opts.Service; !svc.Any() {
		proto := string(svc.Protocol)
		if proto == "" {
			proto = "tcp"
		}
		args = append(args, "-p", proto, "--dport", strconv.Itoa(svc.Port))
	}
	return "iptables", append(args, "-j", "DROP")
}
