package state

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/console-cowboy/icingactl/internal/config"
	"github.com/console-cowboy/icingactl/internal/logger"
	"github.com/console-cowboy/icingactl/internal/model"
)

func testRunner(t *testing.T, commands *fakeCommands, dryRun bool) *Runner {
	t.Helper()

	log, err := logger.New(logger.Options{Level: "debug", Writer: &bytes.Buffer{}})
	require.NoError(t, err)

	rc := testContext(commands, nil, nil, dryRun)
	rc.Logger = log
	return NewRunner(rc)
}

func TestRunnerDispatchesTicketStep(t *testing.T) {
	t.Parallel()

	commands := &fakeCommands{result: CommandResult{Stdout: "abc123"}}
	runner := testRunner(t, commands, false)

	step := &config.Step{
		ID:      "parent_ticket",
		Type:    config.TypeGenerateTicket,
		Subject: "agent.domain.tld",
		Ticket: &config.TicketStep{
			Overwrite: true,
			Secret:    "SHARED_SECRET",
		},
	}

	res := runner.Run(context.Background(), step)

	require.Equal(t, model.StatusSuccess, res.Status)
	require.Equal(t, []string{"generate_ticket"}, commands.calls)
}

func TestRunnerDispatchesCertSteps(t *testing.T) {
	t.Parallel()

	commands := &fakeCommands{}
	runner := testRunner(t, commands, false)

	steps := []*config.Step{
		{
			ID:      "node_cert",
			Type:    config.TypeGenerateCert,
			Subject: "agent.domain.tld",
		},
		{
			ID:       "trust_parent",
			Type:     config.TypeSaveCert,
			Subject:  "agent.domain.tld",
			SaveCert: &config.SaveCertStep{Parent: "master.domain.tld"},
		},
		{
			ID:          "fetch_ca",
			Type:        config.TypeRequestCert,
			Subject:     "agent.domain.tld",
			RequestCert: &config.RequestCertStep{Parent: "master.domain.tld", Ticket: "abc123", Port: 5665},
		},
		{
			ID:        "setup",
			Type:      config.TypeNodeSetup,
			Subject:   "agent.domain.tld",
			NodeSetup: &config.NodeSetupStep{Parent: "master.domain.tld", Ticket: "abc123"},
		},
	}

	for _, step := range steps {
		res := runner.Run(context.Background(), step)
		require.Equal(t, model.StatusSuccess, res.Status, step.ID)
	}

	require.Equal(t, []string{"generate_cert", "save_cert", "request_cert", "node_setup"}, commands.calls)
}

func TestRunnerDryRunTouchesNothing(t *testing.T) {
	t.Parallel()

	commands := &fakeCommands{}
	runner := testRunner(t, commands, true)

	step := &config.Step{
		ID:      "node_cert",
		Type:    config.TypeGenerateCert,
		Subject: "agent.domain.tld",
	}

	res := runner.Run(context.Background(), step)

	require.Equal(t, model.StatusWouldChange, res.Status)
	require.Empty(t, res.Changes)
	require.Empty(t, commands.calls)
}

func TestRunnerRejectsUnknownType(t *testing.T) {
	t.Parallel()

	commands := &fakeCommands{}
	runner := testRunner(t, commands, false)

	step := &config.Step{
		ID:      "mystery",
		Type:    "mystery",
		Subject: "agent.domain.tld",
	}

	res := runner.Run(context.Background(), step)

	require.Equal(t, model.StatusFailed, res.Status)
	require.Contains(t, res.Message, "unknown state type")
	require.Empty(t, commands.calls)
}
