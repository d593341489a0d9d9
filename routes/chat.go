package routes

import (
	"io"
	"net/http"

	"docuchat-backend/internal/config"
	"docuchat-backend/internal/logger"
	"docuchat-backend/models"
	"docuchat-backend/services"
	"docuchat-backend/utils"

	"github.com/gin-gonic/gin"
)

// SetupChatRoutes wires the pipeline to the HTTP surface: session
// lifecycle, document upload, querying and history retrieval.
func SetupChatRoutes(router *gin.Engine, cfg *config.Config, pipeline *services.Pipeline) {
	router.POST("/sessions", func(c *gin.Context) {
		session, err := pipeline.CreateSession()
		if err != nil {
			logger.Error("Failed to create session", "error", err)
			utils.RespondWithInternalError(c, "Failed to create session", nil)
			return
		}
		c.JSON(http.StatusCreated, session)
	})

	router.GET("/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessions": pipeline.ListSessions()})
	})

	router.DELETE("/sessions/:id", func(c *gin.Context) {
		if err := pipeline.DeleteSession(c.Param("id")); err != nil {
			logger.Error("Failed to delete session", "session_id", c.Param("id"), "error", err)
			utils.RespondWithInternalError(c, "Failed to delete session", nil)
			return
		}
		// Deleting an already-absent session succeeds the same way.
		c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
	})

	router.POST("/sessions/:id/upload", func(c *gin.Context) {
		sessionID := c.Param("id")

		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "Missing file upload", gin.H{"error": err.Error()})
			return
		}
		if fileHeader.Size > cfg.MaxFileSize {
			utils.RespondWithError(c, http.StatusRequestEntityTooLarge, "file_too_large",
				"Uploaded file exceeds the size limit", gin.H{
					"max_bytes":  cfg.MaxFileSize,
					"file_bytes": fileHeader.Size,
				})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read uploaded file", nil)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read uploaded file", nil)
			return
		}

		chunks, err := pipeline.Upload(c.Request.Context(), sessionID, data, fileHeader.Filename)
		if err != nil {
			logger.Warn("Upload failed", "session_id", sessionID, "filename", fileHeader.Filename, "error", err)
			utils.RespondWithPipelineError(c, err)
			return
		}

		logger.Info("Document indexed", "session_id", sessionID, "filename", fileHeader.Filename, "chunks", chunks)
		c.JSON(http.StatusOK, models.UploadResponse{
			Message:   "Document uploaded successfully",
			Chunks:    chunks,
			SessionID: sessionID,
		})
	})

	router.POST("/query", func(c *gin.Context) {
		var req models.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		mode, err := models.ParseMode(req.Mode)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid_mode", err.Error(), nil)
			return
		}

		resp, err := pipeline.Query(c.Request.Context(), req.SessionID, req.Question, mode)
		if err != nil {
			logger.Warn("Query failed", "session_id", req.SessionID, "mode", mode, "error", err)
			utils.RespondWithPipelineError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	})

	router.GET("/history/:id", func(c *gin.Context) {
		messages, err := pipeline.History(c.Param("id"))
		if err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session_id": c.Param("id"),
			"messages":   messages,
		})
	})
}
