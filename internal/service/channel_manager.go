package service

import (
	"fmt"
	"sort"
	"sync"

	"icrelay/internal/constants"
	"icrelay/internal/models"
	"icrelay/internal/validation"
)

// ChannelManager maps logical destination names and ingress route ids to destinations
type ChannelManager struct {
	destinations map[string]models.Destination // name -> destination
	routes       map[string]string             // ingress channelId -> destination name
	defaultRoute string
	orderedNames []string
	mu           sync.RWMutex
}

// DefaultIngressRoutes is the route table used when none is configured
func DefaultIngressRoutes() map[string]string {
	return map[string]string{
		"ic-events":           constants.DestinationPublic,
		"general-ic":          constants.DestinationPublic,
		"supernatural-events": constants.DestinationSupernatural,
	}
}

// NewChannelManager creates a channel manager from configuration
func NewChannelManager(destinations []models.Destination, ingress models.IngressConfig) (*ChannelManager, error) {
	cm := &ChannelManager{
		destinations: make(map[string]models.Destination, len(destinations)),
		routes:       make(map[string]string),
		orderedNames: make([]string, 0, len(destinations)),
	}

	for _, dest := range destinations {
		if dest.Name == "" {
			return nil, fmt.Errorf("empty destination name in configuration")
		}
		if dest.ChannelID == "" {
			return nil, fmt.Errorf("empty channel id for destination %s", dest.Name)
		}
		if err := validation.ValidateSnowflake(dest.ChannelID, "channel id"); err != nil {
			return nil, fmt.Errorf("destination %s: %w", dest.Name, err)
		}
		if dest.HasMirror() {
			if err := validation.ValidateSnowflake(dest.AdminChannelID, "admin channel id"); err != nil {
				return nil, fmt.Errorf("destination %s: %w", dest.Name, err)
			}
		}
		if _, exists := cm.destinations[dest.Name]; exists {
			return nil, fmt.Errorf("duplicate destination name: %s", dest.Name)
		}
		cm.destinations[dest.Name] = dest
		cm.orderedNames = append(cm.orderedNames, dest.Name)
	}

	if len(cm.destinations) == 0 {
		return nil, fmt.Errorf("no destinations configured")
	}

	if len(ingress.Routes) == 0 {
		// default routes only cover the destinations that exist
		for routeID, name := range DefaultIngressRoutes() {
			if _, ok := cm.destinations[name]; ok {
				cm.routes[routeID] = name
			}
		}
	}
	for routeID, name := range ingress.Routes {
		if _, ok := cm.destinations[name]; !ok {
			return nil, fmt.Errorf("ingress route %s points at unknown destination %s", routeID, name)
		}
		cm.routes[routeID] = name
	}

	cm.defaultRoute = ingress.DefaultChannel
	if cm.defaultRoute == "" {
		cm.defaultRoute = constants.DefaultIngressChannel
	}
	if _, ok := cm.routes[cm.defaultRoute]; !ok {
		return nil, fmt.Errorf("default ingress channel %s has no route", cm.defaultRoute)
	}

	return cm, nil
}

// GetDestination returns the destination registered under name
func (cm *ChannelManager) GetDestination(name string) (models.Destination, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	dest, exists := cm.destinations[name]
	if !exists {
		return models.Destination{}, fmt.Errorf("no destination configured with name: %s", name)
	}
	return dest, nil
}

// ResolveIngressRoute maps an ingress channelId to its destination.
// Unknown or empty ids fall back to the default route.
func (cm *ChannelManager) ResolveIngressRoute(routeID string) (models.Destination, string) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	name, ok := cm.routes[routeID]
	if !ok {
		routeID = cm.defaultRoute
		name = cm.routes[routeID]
	}
	return cm.destinations[name], routeID
}

// GetDestinationNames returns destination names in configuration order
func (cm *ChannelManager) GetDestinationNames() []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return append([]string(nil), cm.orderedNames...)
}

// GetRouteIDs returns the known ingress route ids, sorted
func (cm *ChannelManager) GetRouteIDs() []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	ids := make([]string, 0, len(cm.routes))
	for id := range cm.routes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
