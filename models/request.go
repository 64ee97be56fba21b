package models

// QueryRequest is the body of POST /api/query. TopK is optional; the
// handler substitutes the default when it is omitted.
type QueryRequest struct {
	Question string `json:"question" binding:"required"`
	TopK     int    `json:"top_k" binding:"omitempty,min=1,max=10"`
}
