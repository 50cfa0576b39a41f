package firewall

import (
	"context"
	"strconv"
)

// UFW adds rules with `ufw deny from <cidr>`.
type UFW struct {
	opts Options
}

func (u *UFW) Deny(ctx context.Context, cidr string) error {
	tool, args := u.command(cidr)
	return run(ctx, u.opts, cidr, tool, args...)
}

func (u *UFW) command(cidr string) (string, []string) {
	args := []string{"deny", "from", cidr}
	if svc := u.opts.Service; !svc.Any() {
		args = append(args, "to", "any", "port", strconv.Itoa(svc.Port))
		if svc.Protocol != "" {
			args = append(args, "proto", string(svc.Protocol))
		}
	}
	return "ufw", args
}
