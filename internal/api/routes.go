package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/validate").
			To(handler.Validate).
			Doc("Validate a candidate output in a single pass").
			Metadata(restfulspec.KeyOpenAPITags, []string{"guard"}).
			Reads(ValidateRequest{}).
			Writes(models.ValidationOutcome{}).
			Returns(200, "OK", models.ValidationOutcome{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(422, "Validation Aborted", models.ValidationOutcome{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/run").
			To(handler.Run).
			Doc("Run the full generate-validate-retry loop for a prompt").
			Metadata(restfulspec.KeyOpenAPITags, []string{"guard"}).
			Reads(RunRequest{}).
			Writes(models.ValidationOutcome{}).
			Returns(200, "OK", models.ValidationOutcome{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(422, "Validation Failed", models.ValidationOutcome{}).
			Returns(504, "Deadline Exceeded", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/calls").
			To(handler.ListCalls).
			Doc("List call history for this guard").
			Metadata(restfulspec.KeyOpenAPITags, []string{"history"}).
			Writes([]models.Call{}).
			Returns(200, "OK", []models.Call{}))

	ws.
		Route(ws.GET("/calls/{call_id}").
			To(handler.GetCall).
			Doc("Fetch one call's attempt history").
			Metadata(restfulspec.KeyOpenAPITags, []string{"history"}).
			Param(ws.PathParameter("call_id", "Call identifier").DataType("string")).
			Writes(models.Call{}).
			Returns(200, "OK", models.Call{}).
			Returns(404, "Call Not Found", middleware.ErrorResponse{}))

	container.Add(ws)

	config := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       "/apidocs.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}
	container.Add(restfulspec.NewOpenAPIService(config))
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Guard Agent API",
			Description: "Schema-driven validation and re-ask orchestration for LLM outputs",
			Version:     "1.0.0",
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "guard", Description: "Validation and guarded generation"}},
		{TagProps: spec.TagProps{Name: "history", Description: "Call audit trail"}},
		{TagProps: spec.TagProps{Name: "health"}},
	}
}
