package adapter

import (
	"net/http"
	"sort"

	"github.com/amishk599/ibwatch/internal/model"
)

// Registry maps connector type tags to Connectors. New board types are
// added by registering them here; the pipeline only looks them up.
type Registry struct {
	connectors map[string]model.Connector
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{connectors: make(map[string]model.Connector)}
}

// NewDefaultRegistry registers every built-in board type on client.
func NewDefaultRegistry(client *http.Client) *Registry {
	r := NewRegistry()
	r.Register(ConnectorGreenhouse, NewGreenhouseConnector(client))
	r.Register(ConnectorLever, NewLeverConnector(client))
	r.Register(ConnectorAshby, NewAshbyConnector(client))
	r.Register(ConnectorGem, NewGemConnector(client))
	return r
}

// Register adds or replaces the connector for connectorType.
func (r *Registry) Register(connectorType string, c model.Connector) {
	r.connectors[connectorType] = c
}

// Lookup returns the connector for connectorType.
func (r *Registry) Lookup(connectorType string) (model.Connector, bool) {
	c, ok := r.connectors[connectorType]
	return c, ok
}

// Types lists the registered connector types in sorted order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.connectors))
	for t := range r.connectors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Wrap replaces every registered connector with wrap(type, connector).
func (r *Registry) Wrap(wrap func(connectorType string, c model.Connector) model.Connector) {
	for t, c := range r.connectors {
		r.connectors[t] = wrap(t, c)
	}
}
