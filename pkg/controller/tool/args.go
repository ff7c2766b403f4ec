package tool

import (
	"github.com/gitscribe/gitscribe/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

func requiredString(args map[string]any, key string) (string, error) {
	s, err := optionalString(args, key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", goerr.Wrap(types.ErrInvalidArgument, "required parameter is missing", goerr.V("parameter", key))
	}
	return s, nil
}

func optionalString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", goerr.Wrap(types.ErrInvalidArgument, "parameter must be a string",
			goerr.V("parameter", key),
			goerr.V("value", v),
		)
	}
	return s, nil
}
