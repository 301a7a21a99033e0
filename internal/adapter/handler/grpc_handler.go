package handler

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/rl1809/cart-store/internal/core/service"
)

// JSONCodecName is the content subtype clients must request.
const JSONCodecName = "json"

const cartServiceName = "cart.v1.CartService"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string { return JSONCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type ChangeQuantityRequest struct {
	ID    string `json:"id"`
	Delta int    `json:"delta"`
}

type RemoveItemRequest struct {
	ID string `json:"id"`
}

type GetCartRequest struct{}

type CheckoutRequest struct{}

// CartServiceServer is the server API for cart.v1.CartService.
type CartServiceServer interface {
	AddItem(context.Context, *AddInput) (*ProductGrid, error)
	ChangeQuantity(context.Context, *ChangeQuantityRequest) (*CartPage, error)
	RemoveItem(context.Context, *RemoveItemRequest) (*CartPage, error)
	GetCart(context.Context, *GetCartRequest) (*CartPage, error)
	Checkout(context.Context, *CheckoutRequest) (*Receipt, error)
}

type GRPCHandler struct {
	binder *ViewBinder
}

func NewGRPCHandler(binder *ViewBinder) *GRPCHandler {
	return &GRPCHandler{binder: binder}
}

func (h *GRPCHandler) AddItem(ctx context.Context, req *AddInput) (*ProductGrid, error) {
	grid, err := h.binder.AddToCart(ctx, *req)
	if err != nil {
		if errors.Is(err, ErrUnknownProduct) {
			return nil, status.Error(codes.NotFound, "unknown product")
		}
		if errors.Is(err, service.ErrInvalidID) {
			return nil, status.Error(codes.InvalidArgument, "missing product id")
		}
		return nil, status.Error(codes.Internal, "internal error")
	}
	return &grid, nil
}

func (h *GRPCHandler) ChangeQuantity(ctx context.Context, req *ChangeQuantityRequest) (*CartPage, error) {
	page := h.binder.ChangeQuantity(ctx, req.ID, req.Delta)
	return &page, nil
}

func (h *GRPCHandler) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartPage, error) {
	page := h.binder.RemoveFromCart(ctx, req.ID)
	return &page, nil
}

func (h *GRPCHandler) GetCart(ctx context.Context, req *GetCartRequest) (*CartPage, error) {
	page := h.binder.CartPage()
	return &page, nil
}

func (h *GRPCHandler) Checkout(ctx context.Context, req *CheckoutRequest) (*Receipt, error) {
	receipt := h.binder.Checkout(ctx)
	return &receipt, nil
}

func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&cartServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(CartServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CartServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + cartServiceName + "/" + method,
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(CartServiceServer), ctx, req.(*Req))
			})
		},
	}
}

var cartServiceDesc = grpc.ServiceDesc{
	ServiceName: cartServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("AddItem", CartServiceServer.AddItem),
		unaryHandler("ChangeQuantity", CartServiceServer.ChangeQuantity),
		unaryHandler("RemoveItem", CartServiceServer.RemoveItem),
		unaryHandler("GetCart", CartServiceServer.GetCart),
		unaryHandler("Checkout", CartServiceServer.Checkout),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cart/v1/cart.proto",
}

// CartServiceClient calls cart.v1.CartService with the JSON codec.
type CartServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCartServiceClient(cc grpc.ClientConnInterface) *CartServiceClient {
	return &CartServiceClient{cc: cc}
}

func (c *CartServiceClient) invoke(ctx context.Context, method string, in, out any) error {
	return c.cc.Invoke(ctx, "/"+cartServiceName+"/"+method, in, out, grpc.CallContentSubtype(JSONCodecName))
}

func (c *CartServiceClient) AddItem(ctx context.Context, in *AddInput) (*ProductGrid, error) {
	out := new(ProductGrid)
	if err := c.invoke(ctx, "AddItem", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) ChangeQuantity(ctx context.Context, in *ChangeQuantityRequest) (*CartPage, error) {
	out := new(CartPage)
	if err := c.invoke(ctx, "ChangeQuantity", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) RemoveItem(ctx context.Context, in *RemoveItemRequest) (*CartPage, error) {
	out := new(CartPage)
	if err := c.invoke(ctx, "RemoveItem", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) GetCart(ctx context.Context, in *GetCartRequest) (*CartPage, error) {
	out := new(CartPage)
	if err := c.invoke(ctx, "GetCart", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) Checkout(ctx context.Context, in *CheckoutRequest) (*Receipt, error) {
	out := new(Receipt)
	if err := c.invoke(ctx, "Checkout", in, out); err != nil {
		return nil, err
	}
	return out, nil
}
