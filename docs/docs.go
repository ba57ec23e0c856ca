// Package docs registers the swagger document served under /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support",
            "url": "http://www.swagger.io/support",
            "email": "support@swagger.io"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/recommend": {
            "get": {
                "produces": ["application/json"],
                "tags": ["关键词推荐"],
                "summary": "推荐关键词",
                "parameters": [
                    {"type": "string", "description": "检索词", "name": "query", "in": "query", "required": true},
                    {"type": "integer", "description": "返回条数，默认 15", "name": "max", "in": "query"}
                ],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.RecommendationResponse"}}}
            }
        },
        "/api/compare": {
            "get": {
                "produces": ["application/json"],
                "tags": ["关键词推荐"],
                "summary": "比较关键词",
                "parameters": [
                    {"type": "string", "description": "检索词", "name": "query", "in": "query", "required": true},
                    {"type": "integer", "description": "返回条数，默认 10", "name": "max", "in": "query"}
                ],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.RecommendationResponse"}}}
            }
        },
        "/api/keywords/trend": {
            "get": {
                "produces": ["application/json"],
                "tags": ["关键词推荐"],
                "summary": "追加趋势关键词",
                "parameters": [
                    {"type": "string", "description": "检索词", "name": "query", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.TrendKeywordsResponse"}}}
            }
        },
        "/api/recommendation/latest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["历史记录"],
                "summary": "最近一次推荐结果",
                "parameters": [
                    {"type": "string", "description": "检索词", "name": "query", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.RecommendationResponse"}}}
            }
        },
        "/api/recommendation/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["历史记录"],
                "summary": "推荐历史",
                "parameters": [
                    {"type": "string", "description": "检索词", "name": "query", "in": "query"},
                    {"type": "integer", "description": "条数，默认 20，最多 200", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.HistoryResponse"}}}
            }
        },
        "/api/recommendation/run/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["历史记录"],
                "summary": "按 run_id 查询推荐结果",
                "parameters": [
                    {"type": "string", "description": "运行 ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.RecommendationResponse"}}}
            }
        }
    },
    "definitions": {
        "models.ScoreRecord": {
            "type": "object",
            "properties": {
                "keyword": {"type": "string"},
                "frequency_score": {"type": "number"},
                "trend_score": {"type": "number"},
                "total_score": {"type": "number"}
            }
        },
        "models.Recommendation": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "query": {"type": "string"},
                "mode": {"type": "string"},
                "top_category": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "keywords": {"type": "array", "items": {"$ref": "#/definitions/models.ScoreRecord"}},
                "created_at": {"type": "string"}
            }
        },
        "models.RecommendationResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 0},
                "message": {"type": "string", "example": "success"},
                "data": {"$ref": "#/definitions/models.Recommendation"}
            }
        },
        "models.HistoryResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 0},
                "message": {"type": "string", "example": "success"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/models.Recommendation"}}
            }
        },
        "models.TrendKeywordsResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 0},
                "message": {"type": "string", "example": "success"},
                "data": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "关键词推荐服务 API",
	Description:      "基于 Naver 购物、相关搜索、关键词规划器与数据实验室趋势的商品关键词推荐服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
