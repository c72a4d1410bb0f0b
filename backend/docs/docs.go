// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `go generate ./backend` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/auth/register": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Register a new user",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/auth/login": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "User login",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/user/profile": {
			"get": {
				"tags": [
					"users"
				],
				"summary": "Get user profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			},
			"put": {
				"tags": [
					"users"
				],
				"summary": "Update user profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/progress": {
			"get": {
				"tags": [
					"progress"
				],
				"summary": "Learner dashboard",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses": {
			"get": {
				"tags": [
					"courses"
				],
				"summary": "List courses",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			},
			"post": {
				"tags": [
					"courses"
				],
				"summary": "Create course",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}": {
			"get": {
				"tags": [
					"courses"
				],
				"summary": "Course details",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			},
			"put": {
				"tags": [
					"courses"
				],
				"summary": "Update course",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"courses"
				],
				"summary": "Delete course",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/enroll": {
			"post": {
				"tags": [
					"courses"
				],
				"summary": "Enroll in course",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/rate": {
			"post": {
				"tags": [
					"courses"
				],
				"summary": "Rate course",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/progress": {
			"get": {
				"tags": [
					"progress"
				],
				"summary": "Course progress",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/progress-summary": {
			"get": {
				"tags": [
					"courses"
				],
				"summary": "Class progress",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/certificate": {
			"post": {
				"tags": [
					"courses"
				],
				"summary": "Issue certificate",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"courses"
				],
				"summary": "Download certificate",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/analytics": {
			"get": {
				"tags": [
					"analytics"
				],
				"summary": "Course analytics",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/lessons": {
			"get": {
				"tags": [
					"lessons"
				],
				"summary": "List lessons",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			},
			"post": {
				"tags": [
					"lessons"
				],
				"summary": "Add lesson",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/lessons/{lessonId}": {
			"get": {
				"tags": [
					"lessons"
				],
				"summary": "Lesson details",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Lesson ID",
						"name": "lessonId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			},
			"put": {
				"tags": [
					"lessons"
				],
				"summary": "Update lesson",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Lesson ID",
						"name": "lessonId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"lessons"
				],
				"summary": "Delete lesson",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Lesson ID",
						"name": "lessonId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/lessons/{lessonId}/complete": {
			"post": {
				"tags": [
					"lessons"
				],
				"summary": "Mark lesson complete",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Lesson ID",
						"name": "lessonId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/lessons/{lessonId}/generate-practice": {
			"post": {
				"tags": [
					"lessons"
				],
				"summary": "Generate practice questions",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Lesson ID",
						"name": "lessonId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/lessons/{lessonId}/quiz": {
			"get": {
				"tags": [
					"quizzes"
				],
				"summary": "Get lesson quiz",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Lesson ID",
						"name": "lessonId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			},
			"post": {
				"tags": [
					"quizzes"
				],
				"summary": "Submit quiz answers",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Lesson ID",
						"name": "lessonId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			},
			"put": {
				"tags": [
					"quizzes"
				],
				"summary": "Create or replace lesson quiz",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Lesson ID",
						"name": "lessonId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/courses/{id}/lessons/{lessonId}/quiz/attempts": {
			"get": {
				"tags": [
					"quizzes"
				],
				"summary": "Quiz attempt history",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Course ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Lesson ID",
						"name": "lessonId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		}
	},
	"securityDefinitions": {
		"ApiKeyAuth": {
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Learning Platform API",
	Description:      "Courses, lessons, quizzes, progress tracking and certificates.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
