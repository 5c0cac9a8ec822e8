package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/good-yellow-bee/admon/internal/models"
)

// ReportPipelineFailure creates a task about the monitoring pipeline's own
// failure. It bypasses the fingerprint ledger and metric path entirely and
// is submitted at elevated priority: a broken monitor is itself a
// critical, invisible failure mode.
func (c *Client) ReportPipelineFailure(ctx context.Context, stage string, cause error) (TaskRef, error) {
	now := time.Now().UTC()
	task := Task{
		Name: fmt.Sprintf("[CRITICAL] admon pipeline failure: %s (%s)",
			stage, now.Format(models.DateFormat)),
		Description: fmt.Sprintf(
			"## Monitoring pipeline failure\n\n"+
				"The monitoring run failed in stage **%s** at %s.\n\n"+
				"```\n%v\n```\n\n"+
				"While this is unresolved, anomalies in managed accounts go undetected.\n\n"+
				"**Next steps:**\n"+
				"- [ ] Check admon logs for the full error chain\n"+
				"- [ ] Verify external API credentials and quotas\n"+
				"- [ ] Re-run with --debug once fixed\n",
			stage, now.Format(time.RFC3339), cause),
		Priority: models.SeverityCritical.TaskPriority(),
		Tags:     []string{"admon", "pipeline-failure"},
	}
	return c.CreateTask(ctx, task)
}
