package discovery

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Resolver looks up the addresses of a service.
type Resolver interface {
	// ServiceAddresses returns the list of addresses of active instances of the given service.
	ServiceAddresses(ctx context.Context, serviceName string) ([]string, error)
}

// Registry defines a service registry.
type Registry interface {
	Resolver
	// Register creates a service instance record in the registry.
	Register(ctx context.Context, instanceID string, serviceName string, hostPort string) error
	// Deregister removes a service instance record from the registry.
	Deregister(ctx context.Context, instanceID string, serviceName string) error
	// ReportHealthyState is a push mechanism for reporting healthy state to the registry.
	ReportHealthyState(instanceID string, serviceName string) error
}

// ErrNotFound is returned when no service addresses are found.
var ErrNotFound = errors.New("no service addresses found")

// GenerateInstanceID generates a pseudo-random service instance identifier, using a service name suffixed by a uuid.
func GenerateInstanceID(serviceName string) string {
	return serviceName + "-" + uuid.NewString()
}
