// Package ui holds the view data shared by every dashboard page: the layout
// chrome and the permission-filtered navigation.
package ui

import (
	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/middleware"
	"github.com/learnhub/admin/internal/session"
)

const navContextKey = "ui_nav"

// NavItem is one navigation link, shown only to sessions holding Permission.
type NavItem struct {
	Title      string
	Href       string
	Icon       string
	Permission domain.Permission
}

// Navigation is the ordered list of dashboard sections.
type Navigation []NavItem

// Middleware makes n available to NewLayout.
func (n Navigation) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(navContextKey, n)
		c.Next()
	}
}

// Visible returns the items s may open.
func (n Navigation) Visible(s *session.Session) []NavItem {
	out := make([]NavItem, 0, len(n))
	for _, item := range n {
		if s.HasPermission(item.Permission) {
			out = append(out, item)
		}
	}
	return out
}

// Layout is the data every full page passes to the base layout.
type Layout struct {
	Title     string
	Active    string
	Session   *session.Session
	Nav       []NavItem
	CSRFToken string
}

// NewLayout builds the layout data of the current request. active is the
// Href of the highlighted navigation item.
func NewLayout(c *gin.Context, title, active string) Layout {
	s := middleware.CurrentSession(c)
	l := Layout{
		Title:     title,
		Active:    active,
		Session:   s,
		CSRFToken: middleware.GetCSRFToken(c),
	}
	if v, ok := c.Get(navContextKey); ok {
		if nav, ok := v.(Navigation); ok {
			l.Nav = nav.Visible(s)
		}
	}
	return l
}
