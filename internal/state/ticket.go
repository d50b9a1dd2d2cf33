package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/console-cowboy/icingactl/internal/model"
)

// OutputGrain selects grain storage for a generated ticket. Any other
// non-empty Output value is treated as a file path; empty keeps the ticket
// in the result message only.
const OutputGrain = "grain"

// TicketParams configures GenerateTicket.
type TicketParams struct {
	Subject   string
	Output    string
	Grain     string
	Key       string
	Overwrite bool
	Secret    string
}

// GenerateTicket generates an authentication ticket for Subject on the
// parent node and stores it according to Output: in a flat grain, nested
// under Key inside a grain mapping, in a file, or only in the result
// message. With Overwrite disabled an already-populated destination
// short-circuits without running the command.
func GenerateTicket(ctx context.Context, rc *RunContext, p TicketParams) *model.StateResult {
	switch {
	case p.Output == OutputGrain:
		switch {
		case p.Grain != "" && p.Key == "":
			if !p.Overwrite && rc.hasGrain(p.Grain) {
				return model.Unchanged(p.Subject, fmt.Sprintf("No execution needed. Grain %s already set", p.Grain))
			}
			if rc.DryRun {
				return model.WouldChange(p.Subject, fmt.Sprintf("Ticket generation would be executed, storing result in grain: %s", p.Grain))
			}
		case p.Grain != "":
			if !p.Overwrite {
				if _, ok := rc.grainMap(p.Grain)[p.Key]; ok {
					return model.Unchanged(p.Subject, fmt.Sprintf("No execution needed. Grain %s:%s already set", p.Grain, p.Key))
				}
			}
			if rc.DryRun {
				return model.WouldChange(p.Subject, fmt.Sprintf("Ticket generation would be executed, storing result in grain: %s:%s", p.Grain, p.Key))
			}
		default:
			// Caller usage error, reported before any probe or command
			// and regardless of dry-run.
			return model.Failed(p.Subject, "Error: output type 'grain' needs the grain parameter")
		}
	case p.Output != "":
		if !p.Overwrite && rc.Files.Exists(p.Output) {
			return model.Unchanged(p.Subject, fmt.Sprintf("No execution needed. File %s already set", p.Output))
		}
		if rc.DryRun {
			return model.WouldChange(p.Subject, fmt.Sprintf("Ticket generation would be executed, storing result in file: %s", p.Output))
		}
	default:
		if rc.DryRun {
			return model.WouldChange(p.Subject, "Ticket generation would be executed, not storing result")
		}
	}

	cmd, err := rc.Commands.GenerateTicket(ctx, p.Subject, p.Secret)
	if err != nil {
		return model.Failed(p.Subject, fmt.Sprintf("FAILED. Ticket generation failed: %v", err))
	}
	if cmd.Retcode != 0 {
		return model.Failed(p.Subject, fmt.Sprintf("FAILED. Ticket generation failed with output: %s", cmd.Stdout))
	}

	ticket := strings.TrimSpace(cmd.Stdout)

	switch {
	case p.Output == OutputGrain:
		if p.Key == "" {
			if err := rc.Grains.Set(p.Grain, ticket); err != nil {
				return model.Failed(p.Subject, fmt.Sprintf("FAILED. Could not store ticket in grain %s: %v", p.Grain, err))
			}
			return model.Changed(p.Subject, ticket, map[string]string{
				"ticket": fmt.Sprintf("Executed. Output into grain: %s", p.Grain),
			})
		}
		value := rc.grainMap(p.Grain)
		value[p.Key] = ticket
		if err := rc.Grains.Set(p.Grain, value); err != nil {
			return model.Failed(p.Subject, fmt.Sprintf("FAILED. Could not store ticket in grain %s:%s: %v", p.Grain, p.Key, err))
		}
		return model.Changed(p.Subject, ticket, map[string]string{
			"ticket": fmt.Sprintf("Executed. Output into grain: %s:%s", p.Grain, p.Key),
		})
	case p.Output != "":
		if err := rc.Files.WriteFile(p.Output, []byte(ticket)); err != nil {
			return model.Failed(p.Subject, fmt.Sprintf("FAILED. Could not write ticket to %s: %v", p.Output, err))
		}
		return model.Changed(p.Subject, ticket, map[string]string{
			"ticket": fmt.Sprintf("Executed. Output into %s", p.Output),
		})
	default:
		return model.Changed(p.Subject, ticket, map[string]string{"ticket": "Executed"})
	}
}
