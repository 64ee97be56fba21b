package controller

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docrag/models"
	"docrag/services"
)

// RAGController handles the HTTP requests for the RAG API. It depends on the
// RAGService to perform the actual business logic.
type RAGController struct {
	ragService services.RAGService
	processor  *services.DocumentProcessor
	uploadDir  string
}

// NewRAGController is a constructor function that creates a new RAGController.
// This is called from main.go to inject the service dependencies.
func NewRAGController(service services.RAGService, processor *services.DocumentProcessor, uploadDir string) *RAGController {
	return &RAGController{
		ragService: service,
		processor:  processor,
		uploadDir:  uploadDir,
	}
}

// UploadDocument is the Gin handler for the POST /api/upload endpoint. It
// stages the uploaded file on disk, extracts its text and runs it through
// the ingestion pipeline.
func (c *RAGController) UploadDocument(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing file in request: " + err.Error()})
		return
	}

	if !services.IsSupportedFile(fileHeader.Filename) {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Unsupported file type: %s. Use .pdf, .txt or .md", filepath.Ext(fileHeader.Filename)),
		})
		return
	}

	documentID := uuid.New().String()
	savedPath := filepath.Join(c.uploadDir, documentID+"_"+filepath.Base(fileHeader.Filename))
	if err := ctx.SaveUploadedFile(fileHeader, savedPath); err != nil {
		log.Printf("CONTROLLER: Failed to save upload %s: %v", fileHeader.Filename, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save uploaded file"})
		return
	}

	text, err := services.ExtractTextFromFile(savedPath)
	if err != nil {
		log.Printf("CONTROLLER: Failed to extract text from %s: %v", savedPath, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extract text from document"})
		return
	}

	chunks := c.processor.ChunkText(text)
	metadata := map[string]string{
		"filename":  fileHeader.Filename,
		"file_type": strings.ToLower(filepath.Ext(fileHeader.Filename)),
	}

	count, err := c.ragService.IndexDocument(ctx.Request.Context(), chunks, documentID, metadata)
	if err != nil {
		log.Printf("CONTROLLER: Failed to index document %s: %v", documentID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to index document"})
		return
	}

	ctx.JSON(http.StatusOK, models.UploadResponse{
		DocumentID:    documentID,
		Filename:      fileHeader.Filename,
		ChunksCreated: count,
		Message:       "Document uploaded and indexed successfully",
	})
}

// QueryDocuments is the Gin handler for the POST /api/query endpoint.
func (c *RAGController) QueryDocuments(ctx *gin.Context) {
	var req models.QueryRequest

	// Use Gin's binding to parse and validate the incoming JSON.
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.TopK == 0 {
		req.TopK = 3
	}

	answer, sources, err := c.ragService.Query(ctx.Request.Context(), req.Question, req.TopK)
	if err != nil {
		log.Printf("CONTROLLER: Query failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate an answer"})
		return
	}

	ctx.JSON(http.StatusOK, models.QueryResponse{
		Question: req.Question,
		Answer:   answer,
		Sources:  sources,
	})
}

// GetStats is the Gin handler for the GET /api/stats endpoint.
func (c *RAGController) GetStats(ctx *gin.Context) {
	stats, err := c.ragService.Stats(ctx.Request.Context())
	if err != nil {
		log.Printf("CONTROLLER: Failed to read stats: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read collection stats"})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// HealthCheck is the Gin handler for the GET /api/health endpoint. It always
// answers 200; readiness is carried in the body.
func (c *RAGController) HealthCheck(ctx *gin.Context) {
	stats, err := c.ragService.Stats(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusOK, models.HealthResponse{
			Status:  "unhealthy",
			Ready:   false,
			Message: fmt.Sprintf("Error: %v", err),
		})
		return
	}

	ctx.JSON(http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Ready:   true,
		Message: fmt.Sprintf("All systems operational. %d chunks indexed.", stats.TotalChunks),
	})
}
