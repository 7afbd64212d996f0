package httpapi

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func ginLoggerMiddleware(c *gin.Context) {
	method := c.Request.Method
	path := c.Request.URL.Path

	start := time.Now()
	c.Next()
	stop := time.Since(start)

	statusCode := c.Writer.Status()
	dataLength := c.Writer.Size()
	if dataLength < 0 {
		dataLength = 0
	}

	entry := log.WithFields(logrus.Fields{
		"statusCode": statusCode,
		"latency":    int(math.Ceil(float64(stop.Nanoseconds()) / 1000000.0)),
		"clientIP":   c.ClientIP(),
		"dataLength": dataLength,
		"userAgent":  c.Request.UserAgent(),
	})

	if statusCode >= http.StatusInternalServerError {
		entry.Errorf("[%s] [%s] - 5XX internal error", method, path)
	} else if statusCode >= http.StatusBadRequest {
		entry.Warnf("[%s] [%s] - 4XX request error", method, path)
	} else {
		entry.Debugf("[%s] [%s]", method, path)
	}
}

func ginErrorHandlerMiddleware(c *gin.Context) {
	c.Next()

	statusCode := c.Writer.Status()
	log := log.WithField("status", statusCode)

	for errIndex, err := range c.Errors {
		if statusCode >= http.StatusInternalServerError {
			log.Errorf("Error #%02d - %s", errIndex+1, err)
		} else if statusCode >= http.StatusBadRequest {
			log.Debugf("Error #%02d - %s", errIndex+1, err)
		}
	}

	if len(c.Errors) > 0 {
		c.JSON(statusCode, httpError{Message: c.Errors.Last().Error()})
	}
}
