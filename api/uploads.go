package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UploadTransactions ingests a fuel-card statement file. Row-level
// rejections come back in the summary, not as an error status.
func (a Api) UploadTransactions(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File upload failed"})
		return
	}
	defer file.Close()

	summary, err := a.fuelmatch.UploadTransactions(c.Request.Context(), file, header.Filename)
	if err != nil {
		logrus.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process upload"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// UploadFuelLogs ingests a driver trip-sheet file.
func (a Api) UploadFuelLogs(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File upload failed"})
		return
	}
	defer file.Close()

	summary, err := a.fuelmatch.UploadFuelLogs(c.Request.Context(), file, header.Filename)
	if err != nil {
		logrus.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process upload"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
