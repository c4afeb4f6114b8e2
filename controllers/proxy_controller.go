package controllers

import (
	"io"

	"github.com/bmt-labs/checkout-bridge/utils"
	"github.com/gin-gonic/gin"
)

// ANY /api/pixelpay/*path
//
// Forwards raw widget calls to the gateway with server-held credentials
// injected, so the secret never reaches the browser. Responses are
// relayed verbatim.
func ProxyGateway(c *gin.Context) {
	path := c.Param("path")

	resp, err := gw.Forward(
		c.Request.Context(),
		c.Request.Method,
		path,
		c.Request.URL.RawQuery,
		c.ContentType(),
		c.Request.Body,
	)
	if err != nil {
		// Network failure between the bridge and the gateway.
		utils.LogError("Gateway proxy failed for %s: %v", path, err)
		utils.BadGateway(c, "Gateway unreachable", nil)
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", contentType)
	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		utils.LogError("Gateway proxy copy failed for %s: %v", path, err)
	}
}
