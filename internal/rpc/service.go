// Package rpc exposes the LC calculator as the gRPC service
// lcc.v1.Calculator. Messages are google.protobuf.Struct values with the
// same shape as the JSON bodies of the HTTP API.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/internal/calc"
	"github.com/Nicolas5241/TheCalcularoty/internal/units"
	pkggrpc "github.com/Nicolas5241/TheCalcularoty/pkg/core/grpc"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/logging"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "lcc.v1.Calculator"

// Full method names
const (
	MethodCalculate = "/" + ServiceName + "/Calculate"
	MethodConvert   = "/" + ServiceName + "/Convert"
	MethodUnits     = "/" + ServiceName + "/Units"
)

// CalculatorServer is the server API of lcc.v1.Calculator
type CalculatorServer interface {
	Calculate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Convert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Units(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterCalculatorServer registers srv on s
func RegisterCalculatorServer(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&calculatorServiceDesc, srv)
}

var calculatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Calculate", Handler: unaryHandler(MethodCalculate, CalculatorServer.Calculate)},
		{MethodName: "Convert", Handler: unaryHandler(MethodConvert, CalculatorServer.Convert)},
		{MethodName: "Units", Handler: unaryHandler(MethodUnits, CalculatorServer.Units)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lcc/v1/calculator.proto",
}

type unaryMethod func(CalculatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, method unaryMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(CalculatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return method(srv.(CalculatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Service implements CalculatorServer over an orchestrator
type Service struct {
	calc     *calc.Orchestrator
	defaults calc.Defaults
	logger   *logging.Logger
}

// NewService creates the calculator service
func NewService(orchestrator *calc.Orchestrator, defaults calc.Defaults) *Service {
	return &Service{
		calc:     orchestrator,
		defaults: defaults,
		logger:   logging.New("rpc-calculator"),
	}
}

// Register adds svc to srv and reports the service as serving when the
// engine self test passes
func Register(ctx context.Context, srv *pkggrpc.Server, svc *Service) error {
	RegisterCalculatorServer(srv.GRPCServer(), svc)
	err := svc.calc.SelfTest(ctx)
	srv.SetServingStatus(ServiceName, err == nil)
	return err
}

// Calculate runs one calculation. The request has the fields inductance,
// capacitance and frequency ({value, unit}), mode and targets.
func (s *Service) Calculate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	mode, targets, err := s.defaults.Resolve(stringField(in, "mode"), targetsFrom(in))
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	req := calc.Request{
		Inductance:  quantityField(in, "inductance"),
		Capacitance: quantityField(in, "capacitance"),
		Frequency:   quantityField(in, "frequency"),
		Mode:        mode,
		Targets:     targets,
	}

	if id := pkggrpc.GetRequestID(ctx); id != "" {
		ctx = calc.WithRequestID(ctx, id)
	}
	result, err := s.calc.Calculate(ctx, req, nil)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return toStruct(result)
}

// Convert runs one unit conversion: {value, kind?, from, to?}
func (s *Service) Convert(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	conversion, err := calc.Convert(calc.ConvertRequest{
		Value: numberText(in.GetFields()["value"]),
		Kind:  stringField(in, "kind"),
		From:  stringField(in, "from"),
		To:    stringField(in, "to"),
	})
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return toStruct(conversion)
}

// Units lists the unit registries, optionally filtered by {kind}
func (s *Service) Units(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var kinds []units.Kind
	if name := stringField(in, "kind"); name != "" {
		kind, err := units.ParseKind(name)
		if err != nil {
			return nil, s.fail(ctx, err)
		}
		kinds = append(kinds, kind)
	}
	infos, err := units.Describe(kinds...)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return toStruct(map[string]interface{}{"kinds": infos})
}

func (s *Service) fail(ctx context.Context, err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		s.logger.WithRequestID(pkggrpc.GetRequestID(ctx)).Error("Calculator request failed", "error", err)
	}
	return st
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func quantityField(s *structpb.Struct, name string) calc.Quantity {
	q := s.GetFields()[name].GetStructValue()
	return calc.Quantity{
		Text: numberText(q.GetFields()["value"]),
		Unit: stringField(q, "unit"),
	}
}

// numberText returns a string value as is and a number value in its
// shortest float64 form.
func numberText(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'g', -1, 64)
	default:
		return ""
	}
}

func targetsFrom(s *structpb.Struct) calc.Targets {
	t := s.GetFields()["targets"].GetStructValue()
	return calc.Targets{
		Impedance:           stringField(t, "impedance"),
		InductiveReactance:  stringField(t, "inductive_reactance"),
		CapacitiveReactance: stringField(t, "capacitive_reactance"),
		ResonantFrequency:   stringField(t, "resonant_frequency"),
	}
}

// toStruct renders v through its JSON form so gRPC and HTTP replies agree.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode reply: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode reply: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode reply: %v", err)
	}
	return out, nil
}

// GRPCCode maps an error code onto a gRPC status code
func GRPCCode(code mdwerror.Code) codes.Code {
	switch code {
	case mdwerror.CodeInvalidInput, mdwerror.CodeInvalidFormat, mdwerror.CodeUnknownUnit, mdwerror.CodeInvalidQuantity:
		return codes.InvalidArgument
	case mdwerror.CodeUnderdetermined:
		return codes.FailedPrecondition
	case mdwerror.CodeNotFound:
		return codes.NotFound
	case mdwerror.CodeTimeout:
		return codes.DeadlineExceeded
	case mdwerror.CodeServiceUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func toStatus(err error) error {
	if err == nil {
		return nil
	}
	code := mdwerror.GetCode(err)
	st := status.New(GRPCCode(code), err.Error())
	details := map[string]interface{}{"code": string(code)}
	var e *mdwerror.Error
	if errors.As(err, &e) {
		for k, v := range e.Details() {
			details[k] = v
		}
	}
	if info, perr := structpb.NewStruct(stringify(details)); perr == nil {
		if withDetails, derr := st.WithDetails(info); derr == nil {
			st = withDetails
		}
	}
	return st.Err()
}

// stringify keeps detail values representable in a Struct
func stringify(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case string, bool, float64, nil:
			out[k] = x
		case int:
			out[k] = float64(x)
		default:
			data, err := json.Marshal(x)
			if err != nil {
				out[k] = ""
				continue
			}
			out[k] = string(data)
		}
	}
	return out
}
