package rpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/internal/calc"
	pkggrpc "github.com/Nicolas5241/TheCalcularoty/pkg/core/grpc"
)

// Client calls a remote lcc.v1.Calculator
type Client struct {
	conn *grpc.ClientConn
	own  bool
}

// NewClient wraps an existing connection. Close leaves conn open.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// DialClient connects to the calculator service at target
func DialClient(target string, opts ...grpc.DialOption) (*Client, error) {
	conn, err := pkggrpc.Dial(pkggrpc.DefaultClientConfig(target), opts...)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to connect to calculator").
			WithCode(mdwerror.CodeServiceUnavailable).
			WithDetail("target", target)
	}
	return &Client{conn: conn, own: true}, nil
}

// Close closes the connection if the client opened it
func (c *Client) Close() error {
	if c.own {
		return c.conn.Close()
	}
	return nil
}

// Invoke calls method with a raw Struct request
func (c *Client) Invoke(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Calculate sends req to the remote calculator. Request ids in ctx
// (pkg/core/grpc.WithRequestID) are propagated.
func (c *Client) Calculate(ctx context.Context, req calc.Request) (*calc.Result, error) {
	mode, err := req.Mode.MarshalText()
	if err != nil {
		return nil, mdwerror.Wrap(err, "invalid mode").WithCode(mdwerror.CodeInvalidInput)
	}
	in, err := structpb.NewStruct(map[string]interface{}{
		"inductance":  quantityMap(req.Inductance),
		"capacitance": quantityMap(req.Capacitance),
		"frequency":   quantityMap(req.Frequency),
		"mode":        string(mode),
		"targets": map[string]interface{}{
			"impedance":            req.Targets.Impedance,
			"inductive_reactance":  req.Targets.InductiveReactance,
			"capacitive_reactance": req.Targets.CapacitiveReactance,
			"resonant_frequency":   req.Targets.ResonantFrequency,
		},
	})
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to build request").WithCode(mdwerror.CodeInvalidInput)
	}

	out, err := c.Invoke(ctx, MethodCalculate, in)
	if err != nil {
		return nil, err
	}
	var result calc.Result
	if err := fromStruct(out, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Convert sends a conversion to the remote calculator
func (c *Client) Convert(ctx context.Context, req calc.ConvertRequest) (*calc.Conversion, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"value": req.Value,
		"kind":  req.Kind,
		"from":  req.From,
		"to":    req.To,
	})
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to build request").WithCode(mdwerror.CodeInvalidInput)
	}
	out, err := c.Invoke(ctx, MethodConvert, in)
	if err != nil {
		return nil, err
	}
	var conversion calc.Conversion
	if err := fromStruct(out, &conversion); err != nil {
		return nil, err
	}
	return &conversion, nil
}

func quantityMap(q calc.Quantity) map[string]interface{} {
	return map[string]interface{}{"value": q.Text, "unit": q.Unit}
}

func fromStruct(s *structpb.Struct, v interface{}) error {
	data, err := s.MarshalJSON()
	if err != nil {
		return mdwerror.Wrap(err, "failed to decode reply").WithCode(mdwerror.CodeInternal)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return mdwerror.Wrap(err, "failed to decode reply").WithCode(mdwerror.CodeInternal)
	}
	return nil
}
