package jsonrpc2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"
)

var typeOfError = reflect.TypeOf((*error)(nil)).Elem()
var typeOfContext = reflect.TypeOf((*context.Context)(nil)).Elem()

// isExported returns true of a string is an exported (upper case) name.
func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// isExportedOrBuiltin returns true if a type is exported or a builtin.
func isExportedOrBuiltin(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return isExported(t.Name()) || t.PkgPath() == ""
}

// methodArgTypes returns the arg types and whether all the types are valid
// (exported or builtin). A context.Context in first position is injected and
// not counted as an argument.
func methodArgTypes(methodType reflect.Type) (argTypes []reflect.Type, hasCtx bool, ok bool) {
	argNum := methodType.NumIn()
	argTypes = make([]reflect.Type, 0, argNum)
	argPos := 1 // Skip receiver
	if argPos < argNum && methodType.In(argPos) == typeOfContext {
		hasCtx = true
		argPos++
	}
	for ; argPos < argNum; argPos++ {
		argType := methodType.In(argPos)
		if !isExportedOrBuiltin(argType) || argType == typeOfContext {
			return nil, hasCtx, false
		}
		argTypes = append(argTypes, argType)
	}
	return argTypes, hasCtx, true
}

// methodErrPos returns the return value index position of an error type for
// supported return layouts: (), (interface{}), (error), (interface{}, error)
func methodErrPos(methodType reflect.Type) (int, bool) {
	switch methodType.NumOut() {
	case 0:
		return -1, true
	case 1:
		if methodType.Out(0) == typeOfError {
			return 0, true
		}
		return -1, true
	case 2:
		if methodType.Out(1) == typeOfError {
			return 1, true
		}
	}
	return -1, false
}

// Methods returns a mapping of valid method names to Method definitions for a
// instance's receiver.
func Methods(receiver interface{}) (map[string]Method, error) {
	kind := reflect.TypeOf(receiver)
	val := reflect.ValueOf(receiver)
	if name := reflect.Indirect(val).Type().Name(); !isExported(name) {
		return nil, fmt.Errorf("receiver must be exported: %s", name)
	}

	methods := map[string]Method{}
	for i := 0; i < kind.NumMethod(); i++ {
		method := kind.Method(i)
		if method.PkgPath != "" {
			continue
		}
		m, err := newMethod(val, method)
		if err != nil {
			return nil, err
		}
		if m == nil {
			// Unexported arg types
			continue
		}
		methods[method.Name] = *m
	}
	return methods, nil
}

// MethodByName returns a single Method definition of the receiver.
func MethodByName(receiver interface{}, name string) (*Method, error) {
	val := reflect.ValueOf(receiver)
	method, ok := reflect.TypeOf(receiver).MethodByName(name)
	if !ok || method.PkgPath != "" {
		return nil, fmt.Errorf("method not found: %s", name)
	}
	m, err := newMethod(val, method)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("method has unexported argument types: %s", name)
	}
	return m, nil
}

func newMethod(receiver reflect.Value, method reflect.Method) (*Method, error) {
	argTypes, hasCtx, ok := methodArgTypes(method.Type)
	if !ok {
		return nil, nil
	}
	errPos, ok := methodErrPos(method.Type)
	if !ok {
		return nil, fmt.Errorf("unsupported return values in method: %s", method.Name)
	}
	return &Method{
		Receiver: receiver,
		Method:   method,
		ArgTypes: argTypes,
		ErrPos:   errPos,
		HasCtx:   hasCtx,
	}, nil
}

var _ Handler = &Method{}

// Method is the definition of a callable method. It implements Handler by
// decoding JSON params into its arguments.
type Method struct {
	Receiver reflect.Value
	Method   reflect.Method
	ArgTypes []reflect.Type
	ErrPos   int
	HasCtx   bool
}

// Call decodes params into the method's arguments and executes it.
func (m *Method) Call(ctx context.Context, params json.RawMessage) (interface{}, error) {
	args, err := m.decodeArgs(params)
	if err != nil {
		return nil, fmt.Errorf("invalid params: %s", err)
	}
	return m.CallValues(ctx, args)
}

// decodeArgs supports positional params (an array, one element per argument)
// and named params (an object decoded into a single argument).
func (m *Method) decodeArgs(params json.RawMessage) ([]reflect.Value, error) {
	switch kindOf(params) {
	case jsonInvalid, jsonNull:
		if len(m.ArgTypes) > 0 {
			return nil, errors.New("not enough arguments")
		}
		return nil, nil
	case jsonObject:
		if len(m.ArgTypes) != 1 {
			return nil, fmt.Errorf("named params require exactly one argument, method has %d", len(m.ArgTypes))
		}
		arg := reflect.New(m.ArgTypes[0])
		if err := json.Unmarshal(params, arg.Interface()); err != nil {
			return nil, err
		}
		return []reflect.Value{arg.Elem()}, nil
	case jsonArray:
	default:
		return nil, errors.New("params must be an array or an object")
	}

	var rawArgs []json.RawMessage
	if err := json.Unmarshal(params, &rawArgs); err != nil {
		return nil, err
	}
	if len(rawArgs) > len(m.ArgTypes) {
		return nil, errors.New("too many arguments")
	}
	if len(rawArgs) < len(m.ArgTypes) {
		return nil, errors.New("not enough arguments")
	}
	args := make([]reflect.Value, 0, len(m.ArgTypes))
	for i, rawArg := range rawArgs {
		arg := reflect.New(m.ArgTypes[i])
		if err := json.Unmarshal(rawArg, arg.Interface()); err != nil {
			return nil, fmt.Errorf("argument %d: %s", i, err)
		}
		args = append(args, arg.Elem())
	}
	return args, nil
}

// CallValues executes the method with already decoded arguments.
func (m *Method) CallValues(ctx context.Context, args []reflect.Value) (interface{}, error) {
	if len(args) != len(m.ArgTypes) {
		return nil, fmt.Errorf("invalid number of args: expected %d, got %d", len(m.ArgTypes), len(args))
	}

	arguments := []reflect.Value{m.Receiver}
	if m.HasCtx {
		arguments = append(arguments, reflect.ValueOf(&ctx).Elem())
	}
	arguments = append(arguments, args...)

	reply := m.Method.Func.Call(arguments)

	if len(reply) == 0 {
		return nil, nil
	}
	if m.ErrPos >= 0 && !reply[m.ErrPos].IsNil() {
		return nil, reply[m.ErrPos].Interface().(error)
	}
	if m.ErrPos == 0 {
		// Only an error return value
		return nil, nil
	}
	return reply[0].Interface(), nil
}
