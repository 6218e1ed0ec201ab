package app

import "github.com/gin-gonic/gin"

// APIModule registers JSON routes under /api/v1.
type APIModule interface {
	RegisterAPI(api *gin.RouterGroup)
}

// PageModule registers dashboard pages on a group that has loaded the
// session and issued a CSRF token.
type PageModule interface {
	RegisterPages(pages *gin.RouterGroup)
}
