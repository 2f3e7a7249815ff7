package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shetautnetjer/alienfan/internal/configuration"
	"github.com/shetautnetjer/alienfan/internal/engine"
	"github.com/shetautnetjer/alienfan/internal/policy"
)

type EngineDto struct {
	Mode    string            `json:"mode"`
	Policy  string            `json:"policy"`
	Ticks   int64             `json:"ticks"`
	Applied map[string]int    `json:"applied"`
	Errors  map[string]string `json:"errors"`
}

type ModeRequest struct {
	// Policy is a preset name, "feedback", "stress" or "restore"
	Policy string `json:"policy"`
	// Duty overrides the preset/stress duty when > 0
	Duty int `json:"duty"`
	// TargetTemp overrides the feedback target when > 0
	TargetTemp int `json:"targetTemp"`
}

func registerEngineEndpoints(rest *echo.Echo, e *engine.Engine) {
	group := rest.Group("/engine")

	group.GET("/", func(c echo.Context) error {
		return getEngine(c, e)
	})
	group.POST("/mode/", func(c echo.Context) error {
		return postMode(c, e)
	})
	group.POST("/restore/", func(c echo.Context) error {
		e.SetPolicy(policy.Restore{})
		return c.NoContent(http.StatusAccepted)
	})
}

func getEngine(c echo.Context, e *engine.Engine) error {
	return c.JSONPretty(http.StatusOK, EngineDto{
		Mode:    string(e.State().Mode()),
		Policy:  e.State().PolicyName(),
		Ticks:   e.Ticks(),
		Applied: e.State().Applied(),
		Errors:  e.State().LastErrors(),
	}, indentationChar)
}

func postMode(c echo.Context, e *engine.Engine) error {
	var request ModeRequest
	if err := c.Bind(&request); err != nil {
		return c.JSONPretty(http.StatusBadRequest, &Result{
			Name:    "Bad request",
			Message: err.Error(),
		}, indentationChar)
	}

	config := &configuration.CurrentConfig
	selected, err := policy.Parse(request.Policy, request.Duty, request.TargetTemp, config.Feedback, config.Stress)
	if err != nil {
		return c.JSONPretty(http.StatusBadRequest, &Result{
			Name:    "Unknown policy",
			Message: err.Error(),
		}, indentationChar)
	}

	e.SetPolicy(selected)
	return c.NoContent(http.StatusAccepted)
}
