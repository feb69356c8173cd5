package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (auth.Identity, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return auth.Identity{}, auth.ErrMissingToken
	}

	identity, ok := user.(auth.Identity)

	if !ok {
		return auth.Identity{}, apperr.Internal("invalid user type in context", fmt.Errorf("got %T", user))
	}

	return identity, nil
}

// QueryID parses a required positive integer query parameter.
func QueryID(ctx *gin.Context, name string) (uint, error) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return 0, apperr.Validation("%s is required", name)
	}

	id, err := ParseID(raw)
	if err != nil {
		return 0, apperr.Validation("%s must be a positive integer", name)
	}

	return id, nil
}

// OptionalQueryID returns nil when the parameter is absent.
func OptionalQueryID(ctx *gin.Context, name string) (*uint, error) {
	if strings.TrimSpace(ctx.Query(name)) == "" {
		return nil, nil
	}

	id, err := QueryID(ctx, name)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

// QueryBool reads flags such as confirm=true. Anything unparsable is false.
func QueryBool(ctx *gin.Context, name string) bool {
	value, err := strconv.ParseBool(ctx.Query(name))
	return err == nil && value
}

func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}
