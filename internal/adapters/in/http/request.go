package http

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

// actorFrom reads the caller identity. The system role cannot be claimed over HTTP.
func actorFrom(c echo.Context) (kernel.Actor, error) {
	rawID := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
	if rawID == "" {
		return kernel.Actor{}, errs.NewValueIsRequiredError(HeaderActorID)
	}
	id, err := kernel.UUIDFromString(rawID)
	if err != nil {
		return kernel.Actor{}, err
	}

	role, err := kernel.ParseRole(strings.TrimSpace(c.Request().Header.Get(HeaderActorRole)))
	if err != nil {
		return kernel.Actor{}, err
	}

	return kernel.NewActor(id, role)
}

func requireRole(actor kernel.Actor, resource string, roles ...kernel.Role) error {
	for _, r := range roles {
		if actor.Is(r) {
			return nil
		}
	}
	return errs.NewForbiddenError(actor.String(), resource)
}

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return kernel.UUIDFromBytes(id[:])
}

func queryFloat(c echo.Context, name string) (float64, error) {
	var v float64
	if err := runtime.BindQueryParameter("form", true, true, name, c.QueryParams(), &v); err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return v, nil
}

func parseUUID(name, raw string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(strings.TrimSpace(raw))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}
