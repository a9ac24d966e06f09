package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abhishek622/foodreview/pkg/discovery"
)

type serviceName string
type instanceID string

// Registry defines an in-memory service registry.
type Registry struct {
	sync.RWMutex
	serviceAddrs map[serviceName]map[instanceID]*serviceInstance
	ttl          time.Duration
	now          func() time.Time
}

type serviceInstance struct {
	hostPort   string
	lastActive time.Time
}

// NewRegistry creates a new in-memory service registry instance.
func NewRegistry() *Registry {
	return &Registry{
		serviceAddrs: map[serviceName]map[instanceID]*serviceInstance{},
		ttl:          5 * time.Second,
		now:          time.Now,
	}
}

// NewStaticRegistry creates a registry holding fixed addresses which never expire.
func NewStaticRegistry(name string, addrs ...string) *Registry {
	r := NewRegistry()
	r.ttl = 0
	for _, addr := range addrs {
		_ = r.Register(context.Background(), discovery.GenerateInstanceID(name), name, addr)
	}
	return r
}

// Register creates a service record in the registry.
func (r *Registry) Register(ctx context.Context, id string, name string, hostPort string) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.serviceAddrs[serviceName(name)]; !ok {
		r.serviceAddrs[serviceName(name)] = map[instanceID]*serviceInstance{}
	}
	r.serviceAddrs[serviceName(name)][instanceID(id)] = &serviceInstance{hostPort: hostPort, lastActive: r.now()}
	return nil
}

// Deregister removes a service record from the registry.
func (r *Registry) Deregister(ctx context.Context, id string, name string) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.serviceAddrs[serviceName(name)]; !ok {
		return nil
	}
	delete(r.serviceAddrs[serviceName(name)], instanceID(id))
	return nil
}

// ReportHealthyState is a push mechanism for reporting healthy state to the registry.
func (r *Registry) ReportHealthyState(id string, name string) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.serviceAddrs[serviceName(name)]; !ok {
		return errors.New("service is not registered yet")
	}
	inst, ok := r.serviceAddrs[serviceName(name)][instanceID(id)]
	if !ok {
		return errors.New("service instance is not registered yet")
	}
	inst.lastActive = r.now()
	return nil
}

// ServiceAddresses returns the list of addresses of active instances of the given service.
func (r *Registry) ServiceAddresses(ctx context.Context, name string) ([]string, error) {
	r.RLock()
	defer r.RUnlock()
	if len(r.serviceAddrs[serviceName(name)]) == 0 {
		return nil, discovery.ErrNotFound
	}
	var res []string
	for _, i := range r.serviceAddrs[serviceName(name)] {
		if r.ttl > 0 && i.lastActive.Before(r.now().Add(-r.ttl)) {
			continue
		}
		res = append(res, i.hostPort)
	}
	if len(res) == 0 {
		return nil, discovery.ErrNotFound
	}
	return res, nil
}
