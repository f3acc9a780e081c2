package definition

import (
	"strings"

	"token_trader/internal/app/port"
	"token_trader/internal/domain/entity"
)

// configProvider serves network definitions loaded from configuration.
type configProvider struct {
	byIdentifier map[string]entity.NetworkDefinition
	all          []entity.NetworkDefinition
}

// NewProvider builds a NetworkDefinitionProvider from the configured networks.
func NewProvider(networks []entity.NetworkDefinition) port.NetworkDefinitionProvider {
	p := &configProvider{
		byIdentifier: make(map[string]entity.NetworkDefinition, len(networks)),
		all:          networks,
	}
	for _, n := range networks {
		p.byIdentifier[strings.ToLower(n.Identifier)] = n
	}
	return p
}

func (p *configProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	out := make([]entity.NetworkDefinition, len(p.all))
	copy(out, p.all)
	return out
}

func (p *configProvider) GetNetworkDefinitionByName(nameOrIdentifier string) (entity.NetworkDefinition, bool) {
	n, ok := p.byIdentifier[strings.ToLower(nameOrIdentifier)]
	return n, ok
}
