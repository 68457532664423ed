package lookup

import (
	"context"

	"github.com/seanssullivan/iss-spotter/internal/transport"
)

// DefaultAddressURL answers with {"ip": "<dotted quad>"}.
const DefaultAddressURL = "https://api.ipify.org?format=json"

// AddressResolver finds the caller's public IP address.
type AddressResolver interface {
	ResolveAddress(ctx context.Context) (IPAddress, error)
}

// HTTPAddressResolver asks an address-lookup service for the caller's IP.
type HTTPAddressResolver struct {
	getter transport.Getter
	url    string
}

// NewHTTPAddressResolver creates a resolver for url, or DefaultAddressURL when url is empty.
func NewHTTPAddressResolver(getter transport.Getter, url string) *HTTPAddressResolver {
	if url == "" {
		url = DefaultAddressURL
	}
	return &HTTPAddressResolver{getter: getter, url: url}
}

// ResolveAddress performs a single request and returns the "ip" field.
func (r *HTTPAddressResolver) ResolveAddress(ctx context.Context) (IPAddress, error) {
	doc, err := fetchObject(ctx, r.getter, r.url)
	if err != nil {
		return "", err
	}
	ip, err := stringField(r.url, doc, "ip")
	if err != nil {
		return "", err
	}
	return IPAddress(ip), nil
}
