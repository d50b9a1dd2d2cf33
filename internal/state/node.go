package state

import (
	"context"
	"fmt"

	"github.com/console-cowboy/icingactl/internal/model"
)

// NodeSetup runs the one-time node setup against the parent. Setup renames
// the self-signed certificate pair to .orig files, so the state is
// satisfied when both .orig files exist.
func NodeSetup(ctx context.Context, rc *RunContext, subject, parent, ticket string) *model.StateResult {
	cert := rc.certPath(subject + ".crt.orig")
	key := rc.certPath(subject + ".key.orig")

	if rc.Files.Exists(cert) && rc.Files.Exists(key) {
		return model.Unchanged(subject, "No execution needed. Node already configured.")
	}
	if rc.DryRun {
		return model.WouldChange(subject, "Node setup would be executed.")
	}

	cmd, err := rc.Commands.NodeSetup(ctx, subject, parent, ticket)
	if err != nil {
		return model.Failed(subject, fmt.Sprintf("FAILED. Node setup failed: %v", err))
	}
	if cmd.Retcode != 0 {
		return model.Failed(subject, fmt.Sprintf("FAILED. Node setup failed with output: %s", cmd.Stdout))
	}

	return model.Changed(subject, "Node setup executed.", map[string]string{
		"cert": "Node setup finished successfully.",
	})
}
