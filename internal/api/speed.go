package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultDownloadBytes = 25 << 20
	maxDownloadBytes     = 1 << 30
)

// payload is written repeatedly to build download bodies
var payload = make([]byte, 64*1024)

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
	c.Header("Pragma", "no-cache")
}

// SpeedDown streams ?bytes=N zero bytes (default 25 MiB, at most 1 GiB)
func SpeedDown(c *gin.Context) {
	size := int64(defaultDownloadBytes)
	if raw := c.Query("bytes"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 || n > maxDownloadBytes {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "bytes must be an integer between 0 and " + strconv.Itoa(maxDownloadBytes),
			})
			return
		}
		size = n
	}

	noStore(c)
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Length", strconv.FormatInt(size, 10))
	c.Status(http.StatusOK)

	for remaining := size; remaining > 0; {
		chunk := payload
		if remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}
		n, err := c.Writer.Write(chunk)
		if err != nil {
			// Client went away, usually because its test window closed
			return
		}
		remaining -= int64(n)
	}
}

// SpeedUp discards the request body and reports how much arrived
func SpeedUp(c *gin.Context) {
	n, err := io.Copy(io.Discard, c.Request.Body)
	noStore(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Failed to read body: " + err.Error(),
			"bytes":   n,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bytes": n})
}

// SpeedPing is the lightweight latency target
func SpeedPing(c *gin.Context) {
	noStore(c)
	c.Status(http.StatusNoContent)
}
