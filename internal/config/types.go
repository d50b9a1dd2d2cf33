package config

import (
	"gopkg.in/yaml.v3"
)

// Step type identifiers accepted in state documents.
const (
	TypeGenerateTicket = "generate_ticket"
	TypeGenerateCert   = "generate_cert"
	TypeSaveCert       = "save_cert"
	TypeRequestCert    = "request_cert"
	TypeNodeSetup      = "node_setup"
)

// Config represents a full node state document.
type Config struct {
	Version     string   `yaml:"version" validate:"required,semver"`
	Name        string   `yaml:"name" validate:"required,min=1,max=100"`
	Description string   `yaml:"description,omitempty"`
	Settings    Settings `yaml:"settings,omitempty"`
	Steps       []Step   `yaml:"steps" validate:"required,min=1,dive"`
}

// Settings holds global execution parameters.
type Settings struct {
	DryRun     bool   `yaml:"dry_run,omitempty"`
	Verbose    bool   `yaml:"verbose,omitempty"`
	CertsDir   string `yaml:"certs_dir,omitempty"`
	GrainsFile string `yaml:"grains_file,omitempty"`
}

// Step describes a single state to apply to the node.
type Step struct {
	ID      string `yaml:"id" validate:"required,step_id"`
	Type    string `yaml:"type" validate:"required,oneof=generate_ticket generate_cert save_cert request_cert node_setup"`
	Subject string `yaml:"subject" validate:"required,hostname_rfc1123"`

	Ticket      *TicketStep      `yaml:",inline,omitempty"`
	SaveCert    *SaveCertStep    `yaml:",inline,omitempty"`
	RequestCert *RequestCertStep `yaml:",inline,omitempty"`
	NodeSetup   *NodeSetupStep   `yaml:",inline,omitempty"`
}

// TicketStep configures ticket generation and where the ticket is stored.
type TicketStep struct {
	Output    string `yaml:"output,omitempty"`
	Grain     string `yaml:"grain,omitempty"`
	Key       string `yaml:"key,omitempty"`
	Overwrite bool   `yaml:"overwrite,omitempty"`
	Secret    string `yaml:"secret,omitempty"`

	// OverwriteSet records whether the document named the key explicitly.
	OverwriteSet bool `yaml:"-"`
}

// SaveCertStep configures saving the trusted parent certificate.
type SaveCertStep struct {
	Parent string `yaml:"parent" validate:"required,hostname_rfc1123"`
}

// RequestCertStep configures the CA certificate request.
type RequestCertStep struct {
	Parent string `yaml:"parent" validate:"required,hostname_rfc1123"`
	Ticket string `yaml:"ticket" validate:"required"`
	Port   int    `yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
}

// NodeSetupStep configures the one-time node setup.
type NodeSetupStep struct {
	Parent string `yaml:"parent" validate:"required,hostname_rfc1123"`
	Ticket string `yaml:"ticket" validate:"required"`
}

// UnmarshalYAML customises step decoding to populate type-specific structures without conflicts.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	type baseStep struct {
		ID      string `yaml:"id"`
		Type    string `yaml:"type"`
		Subject string `yaml:"subject"`
	}

	var base baseStep
	if err := value.Decode(&base); err != nil {
		return err
	}

	s.ID = base.ID
	s.Type = base.Type
	s.Subject = base.Subject

	s.Ticket = nil
	s.SaveCert = nil
	s.RequestCert = nil
	s.NodeSetup = nil

	switch base.Type {
	case TypeGenerateTicket:
		var ticket TicketStep
		if err := value.Decode(&ticket); err != nil {
			return err
		}
		ticket.OverwriteSet = hasYAMLKey(value, "overwrite")
		if !ticket.OverwriteSet {
			ticket.Overwrite = true
		}
		s.Ticket = &ticket
	case TypeSaveCert:
		var save SaveCertStep
		if err := value.Decode(&save); err != nil {
			return err
		}
		s.SaveCert = &save
	case TypeRequestCert:
		var request RequestCertStep
		if err := value.Decode(&request); err != nil {
			return err
		}
		if request.Port == 0 {
			request.Port = 5665
		}
		s.RequestCert = &request
	case TypeNodeSetup:
		var setup NodeSetupStep
		if err := value.Decode(&setup); err != nil {
			return err
		}
		s.NodeSetup = &setup
	}

	return nil
}

func hasYAMLKey(node *yaml.Node, key string) bool {
	if node == nil || node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
