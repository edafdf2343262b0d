package grpcserver

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "eventhub.Discovery"

type ListCategoriesRequest struct {
	CategoryID string `json:"category_id,omitempty"`
}

type ListCategoriesResponse struct {
	UpdatedAtUnix int64          `json:"updated_at_unix"`
	Categories    []CategoryView `json:"categories"`
}

type CompareRequest struct {
	Platform string `json:"platform,omitempty"`
	Sort     string `json:"sort,omitempty"`
}

type CompareResponse struct {
	Total int             `json:"total"`
	Items []ComparisonRow `json:"items"`
}

type ListVenuesRequest struct{}

type ListVenuesResponse struct {
	Degraded bool    `json:"degraded"`
	Venues   []Venue `json:"venues"`
}

// DiscoveryServer is the read side of the discovery API.
type DiscoveryServer interface {
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
	Compare(context.Context, *CompareRequest) (*CompareResponse, error)
	ListVenues(context.Context, *ListVenuesRequest) (*ListVenuesResponse, error)
}

func RegisterDiscoveryServer(s grpc.ServiceRegistrar, srv DiscoveryServer) {
	s.RegisterService(&discoveryServiceDesc, srv)
}

var discoveryServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DiscoveryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListCategories", Handler: listCategoriesHandler},
		{MethodName: "Compare", Handler: compareHandler},
		{MethodName: "ListVenues", Handler: listVenuesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "eventhub/discovery",
}

func listCategoriesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListCategoriesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiscoveryServer).ListCategories(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ListCategories"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DiscoveryServer).ListCategories(ctx, req.(*ListCategoriesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func compareHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CompareRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiscoveryServer).Compare(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Compare"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DiscoveryServer).Compare(ctx, req.(*CompareRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listVenuesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListVenuesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiscoveryServer).ListVenues(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ListVenues"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DiscoveryServer).ListVenues(ctx, req.(*ListVenuesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// DiscoveryClient calls the service over a connection, always with the
// JSON codec.
type DiscoveryClient struct {
	cc grpc.ClientConnInterface
}

func NewDiscoveryClient(cc grpc.ClientConnInterface) *DiscoveryClient {
	return &DiscoveryClient{cc: cc}
}

func (c *DiscoveryClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...)
}

func (c *DiscoveryClient) ListCategories(ctx context.Context, in *ListCategoriesRequest, opts ...grpc.CallOption) (*ListCategoriesResponse, error) {
	out := new(ListCategoriesResponse)
	if err := c.invoke(ctx, "ListCategories", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DiscoveryClient) Compare(ctx context.Context, in *CompareRequest, opts ...grpc.CallOption) (*CompareResponse, error) {
	out := new(CompareResponse)
	if err := c.invoke(ctx, "Compare", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DiscoveryClient) ListVenues(ctx context.Context, in *ListVenuesRequest, opts ...grpc.CallOption) (*ListVenuesResponse, error) {
	out := new(ListVenuesResponse)
	if err := c.invoke(ctx, "ListVenues", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
