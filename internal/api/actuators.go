package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shetautnetjer/alienfan/internal/actuators"
	"github.com/shetautnetjer/alienfan/internal/engine"
)

type ActuatorDto struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	Backend        string `json:"backend"`
	Capability     string `json:"capability"`
	Duty           int    `json:"duty"`
	Rpm            int    `json:"rpm"`
	VerifyFailures int    `json:"verifyFailures"`
}

type DutyRequest struct {
	Duty int `json:"duty"`
}

func registerActuatorEndpoints(rest *echo.Echo, e *engine.Engine) {
	group := rest.Group("/actuator")

	group.GET("/", func(c echo.Context) error {
		return getActuators(c, e)
	})
	group.GET("/:"+urlParamId+"/", func(c echo.Context) error {
		return getActuator(c, e)
	})
	group.POST("/:"+urlParamId+"/duty/", func(c echo.Context) error {
		return postDuty(c, e)
	})
}

// returns a list of all actuators known to the engine
func getActuators(c echo.Context, e *engine.Engine) error {
	data := []ActuatorDto{}
	for _, actuator := range e.Actuators() {
		data = append(data, actuatorDto(actuator))
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getActuator(c echo.Context, e *engine.Engine) error {
	id := c.Param(urlParamId)
	for _, actuator := range e.Actuators() {
		if actuator.ID == id {
			return c.JSONPretty(http.StatusOK, actuatorDto(actuator), indentationChar)
		}
	}
	return returnNotFound(c, id)
}

// applies a one-shot duty value to a single actuator through the safety
// monitor, outside the regular tick
func postDuty(c echo.Context, e *engine.Engine) error {
	id := c.Param(urlParamId)

	var request DutyRequest
	if err := c.Bind(&request); err != nil {
		return c.JSONPretty(http.StatusBadRequest, &Result{
			Name:    "Bad request",
			Message: err.Error(),
		}, indentationChar)
	}

	if err := e.ApplyOnce(c.Request().Context(), id, request.Duty); err != nil {
		if errors.Is(err, engine.ErrNoSuchActuator) {
			return returnNotFound(c, id)
		}
		return returnError(c, err)
	}

	for _, actuator := range e.Actuators() {
		if actuator.ID == id {
			return c.JSONPretty(http.StatusOK, actuatorDto(actuator), indentationChar)
		}
	}
	return returnNotFound(c, id)
}

func actuatorDto(actuator *actuators.FanActuator) ActuatorDto {
	return ActuatorDto{
		ID:             actuator.ID,
		Label:          actuator.Label,
		Backend:        actuator.Backend().String(),
		Capability:     actuator.Capability().String(),
		Duty:           actuator.LastDuty(),
		Rpm:            actuator.LastRpm(),
		VerifyFailures: actuator.VerifyFailures(),
	}
}
