// Package icinga2 wraps the icinga2 binary's pki and node commands,
// implementing the command capabilities the state actions depend on.
package icinga2

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/console-cowboy/icingactl/internal/state"
)

// Certificate directories used by Icinga2. Releases from 2.8 on keep
// certificates under /var/lib, older ones under /etc.
const (
	modernCertsDir = "/var/lib/icinga2/certs"
	legacyCertsDir = "/etc/icinga2/pki"
)

var versionPattern = regexp.MustCompile(`r(\d+)\.(\d+)`)

// CLI executes icinga2 commands on the local node.
type CLI struct {
	bin      string
	certsDir string
}

var _ state.Commands = (*CLI)(nil)

// New locates the icinga2 binary and determines the certificate directory
// from its reported version. It fails when icinga2 is not installed.
func New(ctx context.Context) (*CLI, error) {
	bin, err := exec.LookPath("icinga2")
	if err != nil {
		return nil, fmt.Errorf("icinga2 not installed: %w", err)
	}

	c := &CLI{bin: bin}

	res, err := c.run(ctx, "--version")
	if err != nil {
		return nil, fmt.Errorf("icinga2 version probe failed: %w", err)
	}
	c.certsDir = certsDirForVersion(res.Stdout)

	return c, nil
}

// CertsDir returns the detected certificate directory.
func (c *CLI) CertsDir() string {
	return c.certsDir
}

// SetCertsDir overrides the detected certificate directory.
func (c *CLI) SetCertsDir(dir string) {
	c.certsDir = dir
}

// certsDirForVersion picks the certificate directory matching the version
// string reported by `icinga2 --version`.
func certsDirForVersion(output string) string {
	matches := versionPattern.FindStringSubmatch(output)
	if len(matches) != 3 {
		return modernCertsDir
	}

	major, _ := strconv.Atoi(matches[1])
	minor, _ := strconv.Atoi(matches[2])
	if major > 2 || (major == 2 && minor >= 8) {
		return modernCertsDir
	}
	return legacyCertsDir
}

func (c *CLI) certPath(name string) string {
	return filepath.Join(c.certsDir, name)
}

// run executes the binary with the given arguments, capturing combined
// output and the exit code. A non-zero exit is not an error here; the
// caller inspects Retcode.
func (c *CLI) run(ctx context.Context, args ...string) (state.CommandResult, error) {
	cmd := exec.CommandContext(ctx, c.bin, args...)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	retcode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return state.CommandResult{}, err
		}
		retcode = exitErr.ExitCode()
	}

	return state.CommandResult{
		Stdout:  strings.TrimSpace(buf.String()),
		Retcode: retcode,
	}, nil
}

// GenerateTicket issues a ticket for subject using the shared secret:
//
//	icinga2 pki ticket --cn <subject> --salt <secret>
func (c *CLI) GenerateTicket(ctx context.Context, subject, secret string) (state.CommandResult, error) {
	return c.run(ctx, "pki", "ticket", "--cn", subject, "--salt", secret)
}

// GenerateCert creates the node certificate and key pair:
//
//	icinga2 pki new-cert --cn <subject> --key <dir>/<subject>.key --cert <dir>/<subject>.crt
func (c *CLI) GenerateCert(ctx context.Context, subject string) (state.CommandResult, error) {
	return c.run(ctx,
		"pki", "new-cert",
		"--cn", subject,
		"--key", c.certPath(subject+".key"),
		"--cert", c.certPath(subject+".crt"),
	)
}

// SaveCert stores the trusted certificate of the parent node:
//
//	icinga2 pki save-cert --key … --cert … --trustedcert <dir>/trusted-parent.crt --host <parent>
func (c *CLI) SaveCert(ctx context.Context, subject, parent string) (state.CommandResult, error) {
	return c.run(ctx,
		"pki", "save-cert",
		"--key", c.certPath(subject+".key"),
		"--cert", c.certPath(subject+".crt"),
		"--trustedcert", c.certPath(state.TrustedParentCert),
		"--host", parent,
	)
}

// RequestCert fetches the CA certificate from the parent node:
//
//	icinga2 pki request --host <parent> --port <port> --ticket <ticket> --key … --cert … --trustedcert … --ca <dir>/ca.crt
func (c *CLI) RequestCert(ctx context.Context, subject, parent, ticket string, port int) (state.CommandResult, error) {
	return c.run(ctx,
		"pki", "request",
		"--host", parent,
		"--port", strconv.Itoa(port),
		"--ticket", ticket,
		"--key", c.certPath(subject+".key"),
		"--cert", c.certPath(subject+".crt"),
		"--trustedcert", c.certPath(state.TrustedParentCert),
		"--ca", c.certPath(state.CACert),
	)
}

// NodeSetup performs the one-time node setup against the parent:
//
//	icinga2 node setup --ticket <ticket> --endpoint <parent> --zone <subject> --parent_host <parent> --trustedcert …
func (c *CLI) NodeSetup(ctx context.Context, subject, parent, ticket string) (state.CommandResult, error) {
	return c.run(ctx,
		"node", "setup",
		"--ticket", ticket,
		"--endpoint", parent,
		"--zone", subject,
		"--parent_host", parent,
		"--trustedcert", c.certPath(state.TrustedParentCert),
	)
}
