package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	farmType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Farm",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"owner_name": &graphql.Field{Type: graphql.String},
			"location":   &graphql.Field{Type: geoPointType},
		},
	})

	fieldType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Field",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"farm_id":  &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"crop":     &graphql.Field{Type: graphql.String},
			"soil":     &graphql.Field{Type: graphql.String},
			"area_ha":  &graphql.Field{Type: graphql.Float},
			"centroid": &graphql.Field{Type: geoPointType},
		},
	})

	scheduleEventType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ScheduleEvent",
		Fields: graphql.Fields{
			"date":      &graphql.Field{Type: graphql.String},
			"net_mm":    &graphql.Field{Type: graphql.Float},
			"gross_mm":  &graphql.Field{Type: graphql.Float},
			"volume_m3": &graphql.Field{Type: graphql.Float},
		},
	})

	scheduleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Schedule",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.String},
			"field_id":          &graphql.Field{Type: graphql.String},
			"recommendation_mm": &graphql.Field{Type: graphql.Float},
			"window_days":       &graphql.Field{Type: graphql.Int},
			"confirmed":         &graphql.Field{Type: graphql.Boolean},
			"events":            &graphql.Field{Type: graphql.NewList(scheduleEventType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"farms": &graphql.Field{
				Type:        graphql.NewList(farmType),
				Description: "List all farms",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Farms.List(p.Context)
				},
			},
			"farm": &graphql.Field{
				Type:        farmType,
				Description: "Get a farm by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Farms.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"field": &graphql.Field{
				Type:        fieldType,
				Description: "Get a field by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Fields.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"fields": &graphql.Field{
				Type:        graphql.NewList(fieldType),
				Description: "List fields, optionally filtered by farm",
				Args: graphql.FieldConfigArgument{
					"farm_id": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Fields.List(p.Context, p.Args["farm_id"].(string))
				},
			},
			"fieldsNearby": &graphql.Field{
				Type:        graphql.NewList(fieldType),
				Description: "Find fields near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Fields.FindNearby(p.Context, lat, lon, radius, limit)
				},
			},
			"schedules": &graphql.Field{
				Type:        graphql.NewList(scheduleType),
				Description: "Saved schedules for a field, newest first",
				Args: graphql.FieldConfigArgument{
					"field_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Schedules.ListByField(p.Context, p.Args["field_id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
