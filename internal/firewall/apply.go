package firewall

import (
	"context"
	"log/slog"

	"cidrblock/internal/model"
)

// Apply denies each CIDR in order, one at a time. A failed rule is recorded
// and the next one is attempted; nothing is retried or rolled back.
func Apply(ctx context.Context, fw Firewall, cidrs []string, report func(model.ApplyResult)) model.ApplySummary {
	summary := model.ApplySummary{Total: len(cidrs)}
	for _, cidr := range cidrs {
		result := model.ApplyResult{CIDR: cidr}
		if err := fw.Deny(ctx, cidr); err != nil {
			result.Err = err
			summary.Failed = append(summary.Failed, result)
			slog.Warn("Failed to apply rule", "cidr", cidr, "error", err)
		} else {
			result.Applied = true
			summary.Applied++
			slog.Debug("Rule applied", "cidr", cidr)
		}
		if report != nil {
			report(result)
		}
	}
	return summary
}
