package httputil

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"

	"github.com/abhishek622/foodreview/pkg/discovery"
)

// ServiceURL picks one of the registered instances of serviceName and returns its base URL.
// Addresses without a scheme are treated as plain http host:port pairs.
func ServiceURL(ctx context.Context, serviceName string, registry discovery.Resolver) (*url.URL, error) {
	addrs, err := registry.ServiceAddresses(ctx, serviceName)
	if err != nil {
		return nil, err
	}
	addr := addrs[rand.Intn(len(addrs))]
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parse %s address %q: %w", serviceName, addr, err)
	}
	return u, nil
}

// JoinPath appends an escaped path to the base URL and sets the query.
func JoinPath(base *url.URL, path string, query url.Values) *url.URL {
	u := base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u
}
