package cli

import (
	"fmt"
	"strings"

	"github.com/cybertec-postgresql/dbal/internal/params"
)

// BuildParams turns --param and --type flag values into statement
// parameters. Values of the form name=value make the parameters named; all
// values must then use that form. Array typed values are comma separated.
func BuildParams(values, typeSpecs []string) (params.Params, params.Types, error) {
	named := len(values) > 0 && isPair(values[0])
	for _, v := range values {
		if isPair(v) != named {
			return params.Params{}, params.Types{}, fmt.Errorf("cannot mix positional and name=value parameters")
		}
	}

	if !named {
		types := make([]params.ParameterType, len(typeSpecs))
		for i, spec := range typeSpecs {
			typ, err := params.ParseType(spec)
			if err != nil {
				return params.Params{}, params.Types{}, err
			}
			types[i] = typ
		}
		out := make([]any, len(values))
		for i, v := range values {
			typ := params.String
			if i < len(types) {
				typ = types[i]
			}
			out[i] = parseValue(v, typ)
		}
		return params.Positional(out...), params.PositionalTypes(types...), nil
	}

	types := make(map[string]params.ParameterType, len(typeSpecs))
	for _, spec := range typeSpecs {
		name, typeName, ok := strings.Cut(spec, "=")
		if !ok {
			return params.Params{}, params.Types{}, fmt.Errorf("type %q must be name=type for named parameters", spec)
		}
		typ, err := params.ParseType(typeName)
		if err != nil {
			return params.Params{}, params.Types{}, err
		}
		types[strings.TrimPrefix(name, ":")] = typ
	}
	out := make(map[string]any, len(values))
	for _, v := range values {
		name, value, _ := strings.Cut(v, "=")
		name = strings.TrimPrefix(name, ":")
		out[name] = parseValue(value, types[name])
	}
	return params.Named(out), params.NamedTypes(types), nil
}

// isPair reports whether v looks like name=value with a valid parameter name
func isPair(v string) bool {
	name, _, ok := strings.Cut(v, "=")
	name = strings.TrimPrefix(name, ":")
	if !ok || name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func parseValue(v string, typ params.ParameterType) any {
	if !typ.IsArray() {
		return v
	}
	if v == "" {
		return []string{}
	}
	return strings.Split(v, ",")
}
