// Package openapi builds the OpenAPI document describing the folio HTTP API.
package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/folio-cms/folio/internal/model"
	"github.com/folio-cms/folio/internal/session"
)

// SessionScheme is the security scheme name for the admin_token cookie.
const SessionScheme = "sessionCookie"

// collectionSpec describes one list endpoint for document generation.
type collectionSpec struct {
	path      string // URL path under /api
	tag       string
	schema    string // component schema name
	updatable bool   // has PUT
}

var collections = []collectionSpec{
	{path: "/api/projects", tag: "projects", schema: "Project", updatable: true},
	{path: "/api/skills", tag: "skills", schema: "Skill", updatable: true},
	{path: "/api/categories", tag: "categories", schema: "Category"},
}

// Generate returns the OpenAPI 3.1 document for the API served at baseURL.
func Generate(baseURL, version string) *openapi3.T {
	if version == "" {
		version = "1.0.0"
	}
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Folio API",
			Description: "Portfolio content API. Reads are public; writes need an administrator session cookie.",
			Version:     version,
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = componentSchemas()
	components.SecuritySchemes = openapi3.SecuritySchemes{
		SessionScheme: &openapi3.SecuritySchemeRef{
			Value: &openapi3.SecurityScheme{
				Type:        "apiKey",
				In:          "cookie",
				Name:        session.CookieName,
				Description: "Session token set by POST /api/auth/login.",
			},
		},
	}
	doc.Components = &components
	doc.Paths = openapi3.NewPaths()

	addAuthPaths(doc)
	for _, c := range collections {
		addCollectionPaths(doc, c)
	}
	addHeroPaths(doc)
	addContactPath(doc)

	return doc
}

func addAuthPaths(doc *openapi3.T) {
	login := operation("auth", "login", "Log in as the administrator")
	login.RequestBody = jsonBody(ref("Credentials"))
	login.Responses = newResponses("Logged in; session cookie set", ref("Response"), "400", "401", "429", "500")
	doc.Paths.Set("/api/auth/login", &openapi3.PathItem{Post: login})

	logout := operation("auth", "logout", "Clear the session cookie")
	logout.Responses = newResponses("Logged out", ref("Response"))
	doc.Paths.Set("/api/auth/logout", &openapi3.PathItem{Post: logout})

	refresh := secured(operation("auth", "refresh", "Reissue the session token with a fresh expiry"))
	refresh.Responses = newResponses("Session refreshed", ref("Response"), "401", "500")
	doc.Paths.Set("/api/auth/refresh", &openapi3.PathItem{Post: refresh})

	check := secured(operation("auth", "check", "Report the current session"))
	check.Responses = newResponses("Session is valid", dataEnvelope(ref("SessionInfo")), "401", "500")
	doc.Paths.Set("/api/auth/check", &openapi3.PathItem{Get: check})
}

func addCollectionPaths(doc *openapi3.T, c collectionSpec) {
	item := &openapi3.PathItem{}

	list := operation(c.tag, "list_"+c.tag, "List "+c.tag)
	list.Responses = newResponses("All "+c.tag, dataEnvelope(&openapi3.SchemaRef{
		Value: &openapi3.Schema{Type: &openapi3.Types{"array"}, Items: ref(c.schema)},
	}), "500")
	item.Get = list

	create := secured(operation(c.tag, "create_"+c.tag, "Create a "+singular(c.tag)))
	create.RequestBody = jsonBody(ref(c.schema))
	create.Responses = newResponses("Created", dataEnvelope(ref(c.schema)), "400", "401", "500")
	item.Post = create

	if c.updatable {
		update := secured(operation(c.tag, "update_"+c.tag, "Replace a "+singular(c.tag)+" by the id in the body"))
		update.RequestBody = jsonBody(ref(c.schema))
		update.Responses = newResponses("Updated", dataEnvelope(ref(c.schema)), "400", "401", "500")
		item.Put = update
	}

	del := secured(operation(c.tag, "delete_"+c.tag, "Delete a "+singular(c.tag)))
	del.Parameters = openapi3.Parameters{
		{Value: openapi3.NewQueryParameter("id").WithRequired(true).WithSchema(openapi3.NewStringSchema())},
	}
	del.Responses = newResponses("Deleted, or never existed", ref("Response"), "400", "401", "500")
	item.Delete = del

	doc.Paths.Set(c.path, item)
}

func addHeroPaths(doc *openapi3.T) {
	get := operation("hero", "get_hero", "Get the hero section")
	get.Responses = newResponses("The hero, or null data when unset", dataEnvelope(ref("Hero")), "500")

	save := secured(operation("hero", "save_hero", "Merge fields into the hero section"))
	save.RequestBody = jsonBody(ref("Hero"))
	save.Responses = newResponses("Saved", dataEnvelope(ref("Hero")), "400", "401", "500")

	doc.Paths.Set("/api/hero", &openapi3.PathItem{Get: get, Post: save})
}

func addContactPath(doc *openapi3.T) {
	send := operation("contact", "send_contact", "Relay a contact-form message to the site owner")
	send.RequestBody = jsonBody(ref("ContactMessage"))
	send.Responses = newResponses("Message sent", ref("Response"), "400", "429", "500")
	doc.Paths.Set("/api/send", &openapi3.PathItem{Post: send})
}

// ─── Component Schemas ──────────────────────────────────────────────────────

func componentSchemas() openapi3.Schemas {
	str := func() *openapi3.Schema { return openapi3.NewStringSchema() }
	strList := func() *openapi3.Schema { return openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()) }

	categories := make([]interface{}, 0, len(model.SkillCategories)+1)
	categories = append(categories, "")
	for _, c := range model.SkillCategories {
		categories = append(categories, c)
	}

	project := withMeta(openapi3.NewObjectSchema().
		WithProperty("title", str()).
		WithProperty("description", str()).
		WithProperty("img", str()).
		WithProperty("tags", strList()).
		WithProperty("category", strList()).
		WithProperty("liveUrl", str()).
		WithProperty("githubUrl", str()).
		WithProperty("gradient", str()))

	skill := withMeta(openapi3.NewObjectSchema().
		WithProperty("name", str()).
		WithProperty("img", str()).
		WithProperty("description", str()).
		WithProperty("proficiency", openapi3.NewIntegerSchema().WithMin(0).WithMax(100)).
		WithProperty("category", str().WithEnum(categories...)))

	category := withMeta(openapi3.NewObjectSchema().
		WithProperty("name", str()))

	socials := openapi3.NewObjectSchema().
		WithProperty("github", str()).
		WithProperty("linkedin", str()).
		WithProperty("instagram", str())

	hero := withMeta(openapi3.NewObjectSchema().
		WithProperty("title", str()).
		WithProperty("description", str()).
		WithProperty("typewriterWords", strList()).
		WithProperty("bannerUrl", str()).
		WithProperty("resumeUrl", str()).
		WithProperty("socials", socials))

	contact := openapi3.NewObjectSchema().
		WithProperty("name", str()).
		WithProperty("email", str().WithFormat("email")).
		WithProperty("subject", str()).
		WithProperty("message", str())
	contact.Required = []string{"name", "email", "subject", "message"}

	credentials := openapi3.NewObjectSchema().
		WithProperty("email", str()).
		WithProperty("password", str().WithFormat("password"))
	credentials.Required = []string{"email", "password"}

	response := openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("message", str())
	response.Required = []string{"success"}

	errorResponse := openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("message", str()).
		WithProperty("field", describe(str(), "Name of the rejected input on validation errors."))
	errorResponse.Required = []string{"success", "message"}

	return openapi3.Schemas{
		"Project":        project.NewRef(),
		"Skill":          skill.NewRef(),
		"Category":       category.NewRef(),
		"Hero":           hero.NewRef(),
		"ContactMessage": contact.NewRef(),
		"Credentials":    credentials.NewRef(),
		"SessionInfo":    openapi3.NewObjectSchema().WithProperty("email", str()).NewRef(),
		"Response":       response.NewRef(),
		"ErrorResponse":  errorResponse.NewRef(),
	}
}

// withMeta adds the server-maintained record fields.
func withMeta(s *openapi3.Schema) *openapi3.Schema {
	readOnly := func(schema *openapi3.Schema) *openapi3.Schema {
		schema.ReadOnly = true
		return schema
	}
	return s.
		WithProperty("id", describe(openapi3.NewStringSchema(), "Record id; required on PUT.")).
		WithProperty("createdAt", readOnly(describe(openapi3.NewInt64Schema(), "Unix milliseconds of the first write."))).
		WithProperty("updatedAt", readOnly(describe(openapi3.NewInt64Schema(), "Unix milliseconds of the last rewrite.")))
}

func describe(s *openapi3.Schema, desc string) *openapi3.Schema {
	s.Description = desc
	return s
}

// ─── Operation Helpers ──────────────────────────────────────────────────────

func operation(tag, id, summary string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		OperationID: id,
		Summary:     summary,
	}
}

func secured(op *openapi3.Operation) *openapi3.Operation {
	op.Security = &openapi3.SecurityRequirements{{SessionScheme: {}}}
	return op
}

func ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func jsonBody(schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(schema),
	}
}

// dataEnvelope wraps a payload schema in the {success, data} envelope.
func dataEnvelope(data *openapi3.SchemaRef) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"success", "data"},
			Properties: openapi3.Schemas{
				"success": openapi3.NewBoolSchema().NewRef(),
				"message": openapi3.NewStringSchema().NewRef(),
				"data":    data,
			},
		},
	}
}

var errorDescriptions = map[string]string{
	"400": "Bad request",
	"401": "Unauthorized",
	"429": "Too many requests",
	"500": "Internal server error",
}

// newResponses builds a 200 response plus the listed error responses, all of
// which share the ErrorResponse envelope.
func newResponses(description string, schema *openapi3.SchemaRef, errorCodes ...string) *openapi3.Responses {
	responses := openapi3.NewResponsesWithCapacity(1 + len(errorCodes))

	successDesc := description
	responses.Set("200", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &successDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	errorRef := ref("ErrorResponse")
	for _, code := range errorCodes {
		desc := errorDescriptions[code]
		responses.Set(code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &desc,
				Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
			},
		})
	}
	return responses
}

func singular(tag string) string {
	switch tag {
	case "categories":
		return "category"
	default:
		return tag[:len(tag)-1]
	}
}
