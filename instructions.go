package sysconfig

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// InstructionSet is the ordered, typed form of a parsed configuration
// document, ready for an external applier. Building the set never touches
// system state.
type InstructionSet []Instruction

// Instruction is a closed union; every variant names one configuration step.
type Instruction interface {
	Kind() string
}

type NetworkKind string

const (
	NetworkDHCP          NetworkKind = "dhcp"
	NetworkDHCPStateful  NetworkKind = "dhcp-stateful"
	NetworkDHCPStateless NetworkKind = "dhcp-stateless"
	NetworkStatic        NetworkKind = "static"
)

type NetworkConfig struct {
	Kind    NetworkKind `json:"kind" yaml:"kind"`
	Address string      `json:"address,omitempty" yaml:"address,omitempty"`
}

type RootPasswordKind string

const (
	// A pre-computed crypt hash, passed through verbatim.
	RootPasswordHash RootPasswordKind = "hash"
	// A cleartext password; hashing it is the applier's job.
	RootPasswordClear RootPasswordKind = "clear"
)

type RootPassword struct {
	Kind  RootPasswordKind `json:"kind" yaml:"kind"`
	Value string           `json:"value" yaml:"value"`
}

type SetHostname struct {
	Hostname string `json:"hostname" yaml:"hostname"`
}

func (SetHostname) Kind() string { return "set-hostname" }

type SetKeymap struct {
	Layout string `json:"layout" yaml:"layout"`
}

func (SetKeymap) Kind() string { return "set-keymap" }

type SetTimezone struct {
	Zone string `json:"zone" yaml:"zone"`
}

func (SetTimezone) Kind() string { return "set-timezone" }

type SetTimeServer struct {
	Server string `json:"server" yaml:"server"`
}

func (SetTimeServer) Kind() string { return "set-timeserver" }

type SetLocale struct {
	Name    string `json:"name" yaml:"name"`
	Unicode bool   `json:"unicode" yaml:"unicode"`
}

func (SetLocale) Kind() string { return "set-locale" }

type SetupDNS struct {
	Domain      string   `json:"domain,omitempty" yaml:"domain,omitempty"`
	Search      string   `json:"search,omitempty" yaml:"search,omitempty"`
	Nameservers []string `json:"nameservers" yaml:"nameservers"`
}

func (SetupDNS) Kind() string { return "setup-dns" }

type AddRoute struct {
	Name    string `json:"name" yaml:"name"`
	Match   string `json:"match" yaml:"match"`
	Gateway string `json:"gateway" yaml:"gateway"`
}

func (AddRoute) Kind() string { return "add-route" }

type SetRootPassword struct {
	Password RootPassword `json:"password" yaml:"password"`
}

func (SetRootPassword) Kind() string { return "set-root-password" }

type CreateDataset struct {
	Name       string            `json:"name" yaml:"name"`
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

func (CreateDataset) Kind() string { return "create-dataset" }

type SetupTerminal struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Modules string `json:"modules,omitempty" yaml:"modules,omitempty"`
	Prompt  string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Type    string `json:"type" yaml:"type"`
}

func (SetupTerminal) Kind() string { return "setup-terminal" }

type ConfigureNetworkAdapter struct {
	Device  string         `json:"device" yaml:"device"`
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	IPv4    *NetworkConfig `json:"ipv4,omitempty" yaml:"ipv4,omitempty"`
	IPv6    *NetworkConfig `json:"ipv6,omitempty" yaml:"ipv6,omitempty"`
	Primary bool           `json:"primary" yaml:"primary"`
}

func (ConfigureNetworkAdapter) Kind() string { return "configure-network-adapter" }

var hashedPassword = regexp.MustCompile(`^\$\d\$`)

// BuildInstructions maps a parsed document onto the instruction set,
// keyword by keyword, in document order.
func BuildInstructions(doc *Document) (InstructionSet, error) {
	set := make(InstructionSet, 0, len(doc.Commands))
	for _, cmd := range doc.Commands {
		ins, err := buildInstruction(cmd)
		if err != nil {
			return nil, err
		}
		set = append(set, ins)
	}
	return set, nil
}

func buildInstruction(cmd *Command) (Instruction, error) {
	switch cmd.Word {
	case "hostname":
		name, err := positionalArg(cmd, 0)
		if err != nil {
			return nil, err
		}
		return SetHostname{Hostname: name}, nil

	case "keyboard":
		layout, err := positionalArg(cmd, 0)
		if err != nil {
			return nil, err
		}
		return SetKeymap{Layout: layout}, nil

	case "timezone":
		zone, err := positionalArg(cmd, 0)
		if err != nil {
			return nil, err
		}
		return SetTimezone{Zone: zone}, nil

	case "timeserver":
		server, err := positionalArg(cmd, 0)
		if err != nil {
			return nil, err
		}
		return SetTimeServer{Server: server}, nil

	case "system_locale":
		return buildLocale(cmd)

	case "terminal":
		return buildTerminal(cmd)

	case "network_interface":
		return buildNetworkAdapter(cmd)

	case "dataset":
		name, err := positionalArg(cmd, 0)
		if err != nil {
			return nil, err
		}
		return CreateDataset{Name: name, Properties: cmd.Options()}, nil

	case "setup_dns":
		opts := cmd.Options()
		return SetupDNS{
			Domain:      opts["domain"],
			Search:      opts["search"],
			Nameservers: cmd.Positionals(),
		}, nil

	case "route":
		return buildRoute(cmd)

	case "root_password":
		value, err := positionalArg(cmd, 0)
		if err != nil {
			return nil, err
		}
		kind := RootPasswordClear
		if hashedPassword.MatchString(value) {
			kind = RootPasswordHash
		}
		return SetRootPassword{Password: RootPassword{Kind: kind, Value: value}}, nil

	default:
		return nil, errors.Errorf("line %d: keyword %q is not known", cmd.Line, cmd.Word)
	}
}

func buildLocale(cmd *Command) (Instruction, error) {
	name, err := positionalArg(cmd, 0)
	if err != nil {
		return nil, err
	}

	// Locales without an explicit charset default to unicode.
	unicode := true
	if !strings.Contains(strings.ToUpper(name), ".UTF-8") && strings.Contains(name, ".") {
		unicode = false
	}
	return SetLocale{Name: name, Unicode: unicode}, nil
}

func buildTerminal(cmd *Command) (Instruction, error) {
	opts := cmd.Options()
	term := SetupTerminal{
		Name:    opts["name"],
		Label:   opts["label"],
		Modules: opts["module"],
		Prompt:  opts["prompt"],
		Type:    opts["type"],
	}
	if term.Type == "" {
		t, err := positionalArg(cmd, 0)
		if err != nil {
			return nil, err
		}
		term.Type = t
	}
	return term, nil
}

func buildRoute(cmd *Command) (Instruction, error) {
	args := cmd.Positionals()
	switch {
	case len(args) > 2:
		return AddRoute{Name: args[0], Match: args[1], Gateway: args[2]}, nil
	case len(args) == 2:
		// Short form: the route name doubles as the match.
		return AddRoute{Name: args[0], Match: args[0], Gateway: args[1]}, nil
	default:
		return nil, errors.Errorf("line %d: keyword %q requires a destination and a gateway",
			cmd.Line, cmd.Word)
	}
}

func buildNetworkAdapter(cmd *Command) (Instruction, error) {
	device, err := positionalArg(cmd, 0)
	if err != nil {
		return nil, err
	}

	adapter := ConfigureNetworkAdapter{Device: device}
	opts := cmd.Options()
	if opts == nil {
		// No named arguments at all means the adapter is only claimed, not
		// addressed; no DHCP defaults apply.
		return adapter, nil
	}

	adapter.Name = opts["name"]
	_, adapter.Primary = opts["primary"]

	static, hasStatic := opts["static"]
	static6, hasStatic6 := opts["static6"]
	switch {
	case hasStatic && strings.Contains(static, ":"):
		// A v6 literal handed to static configures the v6 side.
		adapter.IPv6 = &NetworkConfig{Kind: NetworkStatic, Address: static}
	case hasStatic && hasStatic6:
		adapter.IPv4 = &NetworkConfig{Kind: NetworkStatic, Address: static}
		adapter.IPv6 = &NetworkConfig{Kind: NetworkStatic, Address: static6}
	case hasStatic:
		adapter.IPv4 = &NetworkConfig{Kind: NetworkStatic, Address: static}
	case hasStatic6:
		adapter.IPv6 = &NetworkConfig{Kind: NetworkStatic, Address: static6}
	default:
		adapter.IPv4 = &NetworkConfig{Kind: NetworkDHCP}
		adapter.IPv6 = &NetworkConfig{Kind: NetworkDHCPStateful}
	}
	return adapter, nil
}

func positionalArg(cmd *Command, idx int) (string, error) {
	args := cmd.Positionals()
	if idx >= len(args) {
		return "", errors.Errorf("line %d: keyword %q requires at least %d positional argument(s)",
			cmd.Line, cmd.Word, idx+1)
	}
	return args[idx], nil
}
