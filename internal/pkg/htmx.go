package pkg

import (
	"encoding/json"
	"maps"
	"net/http"

	"github.com/gin-gonic/gin"
)

// htmx request and response headers.
const (
	HeaderHXRequest    = "HX-Request"
	HeaderHXCurrentURL = "HX-Current-URL"
	HeaderHXTrigger    = "HX-Trigger"
	HeaderHXPushURL    = "HX-Push-Url"
	HeaderHXReplaceURL = "HX-Replace-Url"
	HeaderHXRedirect   = "HX-Redirect"
	HeaderHXReswap     = "HX-Reswap"
	HeaderHXRetarget   = "HX-Retarget"
)

// Client-side events raised through HX-Trigger.
const (
	EventShowToast   = "showToast"
	EventCloseModal  = "closeModal"
	EventRefreshList = "refreshList"
)

// Toast levels.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

const triggerKey = "_hx_trigger"

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(c *gin.Context) bool {
	return c.GetHeader(HeaderHXRequest) == "true"
}

// Trigger queues a client event for the HX-Trigger header. Events queued
// during one request are merged into a single header.
func Trigger(c *gin.Context, event string, detail any) {
	events := map[string]any{}
	if v, ok := c.Get(triggerKey); ok {
		events = maps.Clone(v.(map[string]any))
	}
	if detail == nil {
		detail = true
	}
	events[event] = detail
	c.Set(triggerKey, events)

	raw, err := json.Marshal(events)
	if err != nil {
		return
	}
	c.Header(HeaderHXTrigger, string(raw))
}

// Toast queues a showToast event.
func Toast(c *gin.Context, level, message string) {
	Trigger(c, EventShowToast, map[string]string{
		"message": message,
		"type":    level,
	})
}

// Redirect sends htmx requests to url with HX-Redirect and everything else
// with a 303.
func Redirect(c *gin.Context, url string) {
	if IsHTMX(c) {
		c.Header(HeaderHXRedirect, url)
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusSeeOther, url)
}

// NoSwap tells htmx to leave the page untouched.
func NoSwap(c *gin.Context) {
	c.Header(HeaderHXReswap, "none")
}
