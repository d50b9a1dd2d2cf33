package state

import (
	"context"
	"fmt"

	"github.com/console-cowboy/icingactl/internal/config"
	"github.com/console-cowboy/icingactl/internal/model"
)

// Runner applies parsed state steps through the action functions. Steps run
// sequentially; a failed step does not stop later ones, the caller decides
// what to do with the collected results.
type Runner struct {
	rc *RunContext
}

// NewRunner wraps a RunContext for step dispatch.
func NewRunner(rc *RunContext) *Runner {
	return &Runner{rc: rc}
}

// Context exposes the underlying RunContext.
func (r *Runner) Context() *RunContext {
	return r.rc
}

// Run dispatches a single step to its action and returns the result.
func (r *Runner) Run(ctx context.Context, step *config.Step) *model.StateResult {
	log := r.rc.Logger.WithFields(map[string]any{
		"step":    step.ID,
		"type":    step.Type,
		"subject": step.Subject,
	})
	log.Debug("applying state")

	var res *model.StateResult
	switch step.Type {
	case config.TypeGenerateTicket:
		res = GenerateTicket(ctx, r.rc, TicketParams{
			Subject:   step.Subject,
			Output:    step.Ticket.Output,
			Grain:     step.Ticket.Grain,
			Key:       step.Ticket.Key,
			Overwrite: step.Ticket.Overwrite,
			Secret:    step.Ticket.Secret,
		})
	case config.TypeGenerateCert:
		res = GenerateCert(ctx, r.rc, step.Subject)
	case config.TypeSaveCert:
		res = SaveCert(ctx, r.rc, step.Subject, step.SaveCert.Parent)
	case config.TypeRequestCert:
		res = RequestCert(ctx, r.rc, RequestCertParams{
			Subject: step.Subject,
			Parent:  step.RequestCert.Parent,
			Ticket:  step.RequestCert.Ticket,
			Port:    step.RequestCert.Port,
		})
	case config.TypeNodeSetup:
		res = NodeSetup(ctx, r.rc, step.Subject, step.NodeSetup.Parent, step.NodeSetup.Ticket)
	default:
		res = model.Failed(step.Subject, fmt.Sprintf("unknown state type %q", step.Type))
	}

	switch res.Status {
	case model.StatusFailed:
		log.Error(nil, res.Message)
	case model.StatusWouldChange:
		log.Info(res.Message)
	default:
		if len(res.Changes) == 0 {
			log.Debug(res.Message)
		} else {
			log.Info(res.Message)
		}
	}

	return res
}
