package auth

import (
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAuthModuleRegisterAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	NewModule(&AuthHandler{}, stubVerifier("tok")).RegisterAPI(r.Group("/api/v1"))

	got := map[string]bool{}
	for _, route := range r.Routes() {
		got[route.Method+" "+route.Path] = true
	}
	if len(got) != 2 || !got["POST /api/v1/auth/login"] || !got["POST /api/v1/auth/logout"] {
		t.Errorf("routes = %v", got)
	}
}

func TestNewModule_PanicsOnMissingDeps(t *testing.T) {
	tests := []struct {
		name  string
		build func()
	}{
		{"nil handler", func() { NewModule(nil, stubVerifier("tok")) }},
		{"nil verifier", func() { NewModule(&AuthHandler{}, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("NewModule() expected panic, got none")
				}
			}()
			tt.build()
		})
	}
}
