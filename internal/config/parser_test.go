package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	icingaerrors "github.com/console-cowboy/icingactl/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "states.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validDocument = `
version: "1.0"
name: icinga2-agent
settings:
  certs_dir: /var/lib/icinga2/certs
steps:
  - id: parent_ticket
    type: generate_ticket
    subject: agent.domain.tld
    output: grain
    grain: icinga2_ticket
    secret: SHARED_SECRET
  - id: node_cert
    type: generate_cert
    subject: agent.domain.tld
  - id: trust_parent
    type: save_cert
    subject: agent.domain.tld
    parent: master.domain.tld
  - id: fetch_ca
    type: request_cert
    subject: agent.domain.tld
    parent: master.domain.tld
    ticket: abc123
  - id: setup
    type: node_setup
    subject: agent.domain.tld
    parent: master.domain.tld
    ticket: abc123
`

func TestParseConfigValidDocument(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(writeConfig(t, validDocument))
	require.NoError(t, err)

	require.Equal(t, "icinga2-agent", cfg.Name)
	require.Equal(t, "/var/lib/icinga2/certs", cfg.Settings.CertsDir)
	require.Len(t, cfg.Steps, 5)

	ticket := cfg.Steps[0]
	require.Equal(t, TypeGenerateTicket, ticket.Type)
	require.NotNil(t, ticket.Ticket)
	require.Equal(t, "grain", ticket.Ticket.Output)
	require.Equal(t, "icinga2_ticket", ticket.Ticket.Grain)
	require.True(t, ticket.Ticket.Overwrite, "overwrite defaults to true")
	require.False(t, ticket.Ticket.OverwriteSet)

	request := cfg.Steps[3]
	require.NotNil(t, request.RequestCert)
	require.Equal(t, 5665, request.RequestCert.Port, "port defaults to 5665")
}

func TestParseConfigExplicitOverwriteFalse(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(writeConfig(t, `
version: "1.0"
name: icinga2-agent
steps:
  - id: parent_ticket
    type: generate_ticket
    subject: agent.domain.tld
    output: /tmp/ticket.txt
    overwrite: false
    secret: SHARED_SECRET
`))
	require.NoError(t, err)

	ticket := cfg.Steps[0].Ticket
	require.NotNil(t, ticket)
	require.False(t, ticket.Overwrite)
	require.True(t, ticket.OverwriteSet)
}

func TestParseConfigCustomPort(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(writeConfig(t, `
version: "1.0"
name: icinga2-agent
steps:
  - id: fetch_ca
    type: request_cert
    subject: agent.domain.tld
    parent: master.domain.tld
    ticket: abc123
    port: 5699
`))
	require.NoError(t, err)
	require.Equal(t, 5699, cfg.Steps[0].RequestCert.Port)
}

func TestParseConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	var parseErr *icingaerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseConfigMalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig(writeConfig(t, "version: [unclosed"))

	var parseErr *icingaerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseConfigRejectsUnknownStepType(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig(writeConfig(t, `
version: "1.0"
name: icinga2-agent
steps:
  - id: mystery
    type: mystery
    subject: agent.domain.tld
`))

	var validationErr *icingaerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestParseConfigRejectsDuplicateStepIDs(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig(writeConfig(t, `
version: "1.0"
name: icinga2-agent
steps:
  - id: node_cert
    type: generate_cert
    subject: agent.domain.tld
  - id: node_cert
    type: generate_cert
    subject: agent.domain.tld
`))

	var validationErr *icingaerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, err.Error(), "duplicate step id")
}

func TestParseConfigRejectsMissingParent(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig(writeConfig(t, `
version: "1.0"
name: icinga2-agent
steps:
  - id: trust_parent
    type: save_cert
    subject: agent.domain.tld
`))

	var validationErr *icingaerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestParseConfigRejectsMissingTicket(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig(writeConfig(t, `
version: "1.0"
name: icinga2-agent
steps:
  - id: setup
    type: node_setup
    subject: agent.domain.tld
    parent: master.domain.tld
`))

	var validationErr *icingaerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}
