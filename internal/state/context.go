package state

import (
	"context"

	"github.com/console-cowboy/icingactl/internal/logger"
)

// CommandResult is the structured outcome of one external icinga2 command:
// the combined output text and the process return code.
type CommandResult struct {
	Stdout  string
	Retcode int
}

// TicketGenerator issues an authentication ticket for a node on the parent.
type TicketGenerator interface {
	GenerateTicket(ctx context.Context, subject, secret string) (CommandResult, error)
}

// CertGenerator creates the node's certificate and key pair.
type CertGenerator interface {
	GenerateCert(ctx context.Context, subject string) (CommandResult, error)
}

// CertSaver stores the trusted certificate of the parent node.
type CertSaver interface {
	SaveCert(ctx context.Context, subject, parent string) (CommandResult, error)
}

// CertRequester fetches the CA certificate from the parent node.
type CertRequester interface {
	RequestCert(ctx context.Context, subject, parent, ticket string, port int) (CommandResult, error)
}

// NodeConfigurer performs the one-time node setup against the parent.
type NodeConfigurer interface {
	NodeSetup(ctx context.Context, subject, parent, ticket string) (CommandResult, error)
}

// Commands bundles the per-action capabilities an execution backend provides.
type Commands interface {
	TicketGenerator
	CertGenerator
	CertSaver
	CertRequester
	NodeConfigurer
}

// Filesystem probes for existing files and writes ticket output files. The
// write is a single scoped operation; no handle outlives the call.
type Filesystem interface {
	Exists(path string) bool
	WriteFile(path string, data []byte) error
}

// GrainStore persists named facts about the managed node.
type GrainStore interface {
	Keys() []string
	Get(name string) any
	Set(name string, value any) error
}

// RunContext carries everything an action needs: the dry-run flag, the
// certificate directory, and the external collaborators. Actions are pure
// given a RunContext, which keeps them testable with stub collaborators.
type RunContext struct {
	DryRun   bool
	CertsDir string
	Files    Filesystem
	Grains   GrainStore
	Commands Commands
	Logger   *logger.Logger
}

func (rc *RunContext) hasGrain(name string) bool {
	for _, key := range rc.Grains.Keys() {
		if key == name {
			return true
		}
	}
	return false
}

// grainMap reads the named grain as a mapping, treating a missing grain as
// an empty mapping. Non-map values are replaced outright on the next write.
func (rc *RunContext) grainMap(name string) map[string]any {
	if !rc.hasGrain(name) {
		return map[string]any{}
	}
	if value, ok := rc.Grains.Get(name).(map[string]any); ok {
		return value
	}
	return map[string]any{}
}
