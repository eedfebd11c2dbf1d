package stdlib

import (
	"context"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"github.com/jhump/protoreflect/grpcreflect"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/funvibe/lix/internal/boxed"
	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/value"
)

const (
	boxedTypeGrpcConn = "GrpcConn"
	boxedTypeGrpcMsg  = "GrpcMessage"
)

// BuildGrpcModule returns Grpc.dial/1 and Grpc.call/3 per spec.md §4.11,
// grounded in _examples/funvibe-funxy/internal/evaluator/builtins_grpc.go's
// GrpcConnObject/grpcConnect/grpcInvoke trio, but resolving method
// descriptors through the server's own reflection service
// (jhump/protoreflect's grpcreflect) instead of that file's
// grpcLoadProto/protoparse step — spec.md §4.11 calls this module "dynamic
// gRPC invocation via reflection" rather than proto-file loading, so there
// is no counterpart to builtins_grpc.go's on-disk .proto parsing here.
// Response messages come back as a Boxed GrpcMessage; registry exposes a
// per-field getter for each field resolved from the method's output
// descriptor so `dot` can read them by name (spec.md §4.12).
func BuildGrpcModule(registry *boxed.Registry) *module.Module {
	mod := module.NewModule("Grpc")
	mod.AddFunction("dial", nativeFn("Grpc.dial", grpcDialFn))
	mod.AddFunction("call", nativeFn("Grpc.call", grpcCallFn(registry)))
	return mod
}

func grpcDialFn(_ value.Interpreter, arg value.Value) value.Value {
	target := requireString("Grpc.dial/1", oneArg("Grpc.dial/1", arg))
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return hostError("grpc_dial_failed", err.Error())
	}
	return ok(value.BoxedVal(value.NewBoxed(boxedTypeGrpcConn, conn)))
}

// grpcCallFn returns a native closing over registry so a fresh per-field
// getter can be registered for every distinct response message the call
// produces (the response's fields aren't known until the method descriptor
// is resolved at call time).
func grpcCallFn(registry *boxed.Registry) func(value.Interpreter, value.Value) value.Value {
	return func(_ value.Interpreter, arg value.Value) value.Value {
		connV, methodV, reqV := threeArgs("Grpc.call/3", arg)
		conn := requireBoxed("Grpc.call/3", boxedTypeGrpcConn, connV).Data.(*grpc.ClientConn)
		methodPath := requireString("Grpc.call/3", methodV)
		if reqV.Kind() != value.KindMap {
			raise(badArg("Grpc.call/3 (request must be a map)", reqV))
		}

		ctx := context.Background()
		refClient := grpcreflect.NewClientAuto(ctx, conn)
		defer refClient.Reset()

		serviceName, methodName := splitMethodPath(methodPath)
		svcDesc, err := refClient.ResolveService(serviceName)
		if err != nil {
			return hostError("grpc_reflection_failed", err.Error())
		}
		methodDesc := svcDesc.FindMethodByName(methodName)
		if methodDesc == nil {
			return hostError("grpc_method_not_found", methodPath)
		}

		reqMsg := dynamic.NewMessage(methodDesc.GetInputType())
		if err := mapToDynamicMessage(reqV, reqMsg); err != nil {
			return hostError("grpc_request_build_failed", err.Error())
		}
		respMsg := dynamic.NewMessage(methodDesc.GetOutputType())

		if err := conn.Invoke(ctx, "/"+methodPath, reqMsg, respMsg); err != nil {
			return hostError("grpc_call_failed", err.Error())
		}
		registerMessageGetters(registry, methodDesc.GetOutputType())
		return ok(value.BoxedVal(value.NewBoxed(boxedTypeGrpcMsg, respMsg)))
	}
}

// splitMethodPath splits "package.Service/Method" into its service and
// method parts, the same split builtins_grpc.go's builtinGrpcInvoke does
// before prefixing the path with "/" for grpc.ClientConn.Invoke.
func splitMethodPath(path string) (service, method string) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i], path[i+1:]
		}
	}
	return path, ""
}

// mapToDynamicMessage copies a lix Map's string/int/real/string-bool fields
// onto msg by name, following
// _examples/funvibe-funxy/internal/evaluator/builtins_grpc.go's
// objectToDynamicMessage but over this VM's hamt Map rather than a Record.
func mapToDynamicMessage(m value.Value, msg *dynamic.Message) error {
	for _, item := range m.Map().Items() {
		if item.Key.Kind() != value.KindString && item.Key.Kind() != value.KindSymbol {
			continue
		}
		name := fieldKeyName(item.Key)
		var goVal any
		switch item.Value.Kind() {
		case value.KindString:
			goVal = item.Value.StringVal()
		case value.KindInt:
			goVal = item.Value.Int()
		case value.KindReal:
			goVal = item.Value.RealVal()
		case value.KindSymbol:
			name := item.Value.SymbolName()
			goVal = name == "true"
		default:
			continue
		}
		if err := msg.TrySetFieldByName(name, goVal); err != nil {
			return err
		}
	}
	return nil
}

func fieldKeyName(k value.Value) string {
	if k.Kind() == value.KindSymbol {
		return k.SymbolName()
	}
	return k.StringVal()
}

// registerMessageGetters wires one boxed.Registry getter per field of md
// onto GrpcMessage, so `ResponseBoxed.field_name` resolves via dot per
// spec.md §4.12. Re-registering the same field name is harmless
// (Registry.Register replaces, it doesn't append).
func registerMessageGetters(registry *boxed.Registry, md *desc.MessageDescriptor) {
	for _, fd := range md.GetFields() {
		name := fd.GetName()
		registry.Register(boxedTypeGrpcMsg, name, func(data any) (value.Value, error) {
			msg := data.(*dynamic.Message)
			v, err := msg.TryGetFieldByName(name)
			if err != nil {
				return value.Value{}, err
			}
			return goValueToLix(v), nil
		})
	}
}
