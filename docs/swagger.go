package docs

// @title 关键词推荐服务 API
// @version 1.0
// @description 基于 Naver 购物、相关搜索、关键词规划器与数据实验室趋势的商品关键词推荐服务
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @schemes http https
