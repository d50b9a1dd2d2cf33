package state

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/console-cowboy/icingactl/internal/model"
)

// DefaultPort is the Icinga2 API port used when a request does not name one.
const DefaultPort = 5665

// TrustedParentCert is the file name under which the parent node's
// certificate is stored.
const TrustedParentCert = "trusted-parent.crt"

// CACert is the file name of the CA certificate fetched from the parent.
const CACert = "ca.crt"

func (rc *RunContext) certPath(name string) string {
	return filepath.Join(rc.CertsDir, name)
}

// GenerateCert generates the node certificate and key for subject. The
// state is satisfied when both files already exist.
func GenerateCert(ctx context.Context, rc *RunContext, subject string) *model.StateResult {
	cert := rc.certPath(subject + ".crt")
	key := rc.certPath(subject + ".key")

	if rc.Files.Exists(cert) && rc.Files.Exists(key) {
		return model.Unchanged(subject, fmt.Sprintf("No execution needed. Cert: %s and key: %s already generated.", cert, key))
	}
	if rc.DryRun {
		return model.WouldChange(subject, "Certificate and key generation would be executed")
	}

	cmd, err := rc.Commands.GenerateCert(ctx, subject)
	if err != nil {
		return model.Failed(subject, fmt.Sprintf("FAILED. Certificate generation failed: %v", err))
	}
	if cmd.Retcode != 0 {
		return model.Failed(subject, fmt.Sprintf("FAILED. Certificate generation failed with output: %s", cmd.Stdout))
	}

	return model.Changed(subject, "Certificate and key generated", map[string]string{
		"cert": fmt.Sprintf("Executed. Certificate saved: %s", cert),
		"key":  fmt.Sprintf("Executed. Key saved: %s", key),
	})
}

// SaveCert stores the trusted certificate of the parent node. The state is
// satisfied when the trusted-parent certificate already exists.
func SaveCert(ctx context.Context, rc *RunContext, subject, parent string) *model.StateResult {
	cert := rc.certPath(TrustedParentCert)

	if rc.Files.Exists(cert) {
		return model.Unchanged(subject, fmt.Sprintf("No execution needed. Cert: %s already saved.", cert))
	}
	if rc.DryRun {
		return model.WouldChange(subject, "Certificate save for icinga2 parent would be executed")
	}

	cmd, err := rc.Commands.SaveCert(ctx, subject, parent)
	if err != nil {
		return model.Failed(subject, fmt.Sprintf("FAILED. Certificate save failed: %v", err))
	}
	if cmd.Retcode != 0 {
		return model.Failed(subject, fmt.Sprintf("FAILED. Certificate save failed with output: %s", cmd.Stdout))
	}

	return model.Changed(subject, "Certificate for icinga2 parent saved", map[string]string{
		"cert": fmt.Sprintf("Executed. Certificate saved: %s", cert),
	})
}

// RequestCertParams configures RequestCert.
type RequestCertParams struct {
	Subject string
	Parent  string
	Ticket  string
	Port    int
}

// RequestCert fetches the CA certificate from the parent node using a
// previously generated ticket. The state is satisfied when the CA
// certificate already exists.
func RequestCert(ctx context.Context, rc *RunContext, p RequestCertParams) *model.StateResult {
	cert := rc.certPath(CACert)

	if rc.Files.Exists(cert) {
		return model.Unchanged(p.Subject, fmt.Sprintf("No execution needed. Cert: %s already exists.", cert))
	}
	if rc.DryRun {
		return model.WouldChange(p.Subject, "Certificate request from icinga2 parent would be executed")
	}

	port := p.Port
	if port == 0 {
		port = DefaultPort
	}

	cmd, err := rc.Commands.RequestCert(ctx, p.Subject, p.Parent, p.Ticket, port)
	if err != nil {
		return model.Failed(p.Subject, fmt.Sprintf("FAILED. Certificate request failed: %v", err))
	}
	if cmd.Retcode != 0 {
		return model.Failed(p.Subject, fmt.Sprintf("FAILED. Certificate request failed with output: %s", cmd.Stdout))
	}

	return model.Changed(p.Subject, "Certificate request from icinga2 parent executed", map[string]string{
		"cert": fmt.Sprintf("Executed. Certificate requested: %s", cert),
	})
}
