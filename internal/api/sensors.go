package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shetautnetjer/alienfan/internal/engine"
)

type SensorDto struct {
	ID string `json:"id"`
	// TemperatureMilli is the moving average in millidegrees celsius
	TemperatureMilli int `json:"temperatureMilli"`
}

func registerSensorEndpoints(rest *echo.Echo, e *engine.Engine) {
	group := rest.Group("/sensor")

	group.GET("/", func(c echo.Context) error {
		return getSensors(c, e)
	})
	group.GET("/:"+urlParamId+"/", func(c echo.Context) error {
		return getSensor(c, e)
	})
}

func getSensors(c echo.Context, e *engine.Engine) error {
	data := []SensorDto{}
	for _, sensor := range e.Sensors() {
		data = append(data, SensorDto{
			ID:               sensor.GetId(),
			TemperatureMilli: int(sensor.GetMovingAvg()),
		})
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getSensor(c echo.Context, e *engine.Engine) error {
	id := c.Param(urlParamId)
	for _, sensor := range e.Sensors() {
		if sensor.GetId() == id {
			return c.JSONPretty(http.StatusOK, SensorDto{
				ID:               sensor.GetId(),
				TemperatureMilli: int(sensor.GetMovingAvg()),
			}, indentationChar)
		}
	}
	return returnNotFound(c, id)
}
